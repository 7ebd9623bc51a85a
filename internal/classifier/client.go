// Package classifier is the HTTP client for the external gesture
// classification API. One call, one bounded re-authentication retry on 401,
// no other retries: a timeout is reported as a failure and the caller runs
// its rollback.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"rps_api/internal/domain"
	"rps_api/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
)

var classifierRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "classifier_requests_total",
		Help: "Total requests sent to the gesture classifier",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(classifierRequests)
}

const tokenTTL = 15 * time.Minute

// Client talks to the classifier API. The service token is minted locally
// with the shared secret and cached until close to expiry.
type Client struct {
	baseURL    string
	secret     []byte
	httpClient *http.Client
	tokens     *tokenCache
}

func New(baseURL, secret string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		secret:     []byte(secret),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     &tokenCache{},
	}
}

// Model describes one model the classifier API can serve.
type Model struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Accuracy float64 `json:"accuracy"`
}

// gesture verdicts come back as the classifier's class index
var gestureByClass = map[int]domain.Gesture{
	0: domain.GestureRock,
	1: domain.GesturePaper,
	2: domain.GestureScissors,
}

// Classify uploads an image and returns the gesture verdict. Unknown class
// indexes are an error, never a default gesture.
func (c *Client) Classify(ctx context.Context, filename, contentType string, image []byte) (domain.Gesture, error) {
	body := func() (io.Reader, string, error) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		part, err := w.CreateFormFile("file", filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(image); err != nil {
			return nil, "", err
		}
		if err := w.Close(); err != nil {
			return nil, "", err
		}
		return &buf, w.FormDataContentType(), nil
	}

	var out struct {
		Prediction int `json:"prediction"`
	}
	if err := c.do(ctx, http.MethodPost, "/predictions/", body, &out); err != nil {
		classifierRequests.WithLabelValues("error").Inc()
		return "", err
	}
	classifierRequests.WithLabelValues("ok").Inc()

	gesture, ok := gestureByClass[out.Prediction]
	if !ok {
		return "", domain.E(domain.KindClassification,
			fmt.Sprintf("classifier returned unknown class %d", out.Prediction))
	}
	return gesture, nil
}

// ListModels returns the models the classifier exposes.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	var models []Model
	if err := c.do(ctx, http.MethodGet, "/models/", nil, &models); err != nil {
		return nil, err
	}
	return models, nil
}

// Feedback reports whether a prediction turned out wrong, feeding the
// classifier's accuracy statistics.
func (c *Client) Feedback(ctx context.Context, modelID int64, wrongPrediction bool) error {
	path := "/models/" + strconv.FormatInt(modelID, 10) +
		"/statistics?wrong_prediction=" + strconv.FormatBool(wrongPrediction)
	return c.do(ctx, http.MethodPut, path, nil, nil)
}

// do performs one request with the cached token, retrying exactly once with a
// freshly minted token if the API answers 401.
func (c *Client) do(ctx context.Context, method, path string, makeBody func() (io.Reader, string, error), out any) error {
	token, ok := c.tokens.get()
	if !ok {
		var err error
		if token, err = c.mintToken(); err != nil {
			return domain.Wrap(domain.KindClassification, "failed to mint classifier token", err)
		}
	}

	resp, err := c.send(ctx, method, path, makeBody, token)
	if err != nil {
		return domain.Wrap(domain.KindClassification, "classifier request failed", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		_ = resp.Body.Close()
		c.tokens.evict()
		logger.Warn("classifier rejected token, re-authenticating once")
		if token, err = c.mintToken(); err != nil {
			return domain.Wrap(domain.KindClassification, "failed to mint classifier token", err)
		}
		if resp, err = c.send(ctx, method, path, makeBody, token); err != nil {
			return domain.Wrap(domain.KindClassification, "classifier request failed", err)
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.Wrap(domain.KindClassification, "failed to decode classifier response", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, makeBody func() (io.Reader, string, error), token string) (*http.Response, error) {
	var body io.Reader
	var contentType string
	if makeBody != nil {
		var err error
		if body, contentType, err = makeBody(); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.httpClient.Do(req)
}

// mintToken signs a short-lived service JWT with the shared secret and caches
// it.
func (c *Client) mintToken() (string, error) {
	now := time.Now()
	expiry := now.Add(tokenTTL)
	claims := jwt.MapClaims{
		"sub": "rps_api",
		"iat": now.Unix(),
		"exp": expiry.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", err
	}
	c.tokens.set(token, expiry)
	return token, nil
}

func statusError(resp *http.Response) error {
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	var msg string
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		msg = "classifier rejected credentials"
	case http.StatusForbidden:
		msg = "classifier refused the request"
	case http.StatusNotFound:
		msg = "classifier endpoint or model not found"
	case http.StatusBadRequest:
		msg = "classifier rejected the image"
	case http.StatusUnprocessableEntity:
		msg = "classifier could not process the image"
	default:
		msg = "classifier service error"
	}
	return domain.Wrap(domain.KindClassification, msg,
		fmt.Errorf("status %d: %s", resp.StatusCode, string(detail)))
}
