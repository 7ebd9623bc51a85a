package classifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rps_api/internal/domain"
)

func newTestClient(url string) *Client {
	return New(url, "test-secret", 5*time.Second)
}

func TestClassify_Success(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/predictions/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("file field missing: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"prediction": 2}`))
	}))
	defer srv.Close()

	g, err := newTestClient(srv.URL).Classify(context.Background(), "hand.png", "image/png", []byte("img"))
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if g != domain.GestureScissors {
		t.Fatalf("gesture = %q, want scissors", g)
	}
	if !strings.HasPrefix(gotAuth, "Bearer ") {
		t.Fatalf("missing bearer token, got %q", gotAuth)
	}
}

func TestClassify_ReauthRetryOnce(t *testing.T) {
	var calls int
	var tokens []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		tokens = append(tokens, r.Header.Get("Authorization"))
		if calls == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"prediction": 0}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	// stale cached token forces the 401 path
	c.tokens.set("stale-token", time.Now().Add(time.Hour))

	g, err := c.Classify(context.Background(), "hand.png", "image/png", []byte("img"))
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if g != domain.GestureRock {
		t.Fatalf("gesture = %q, want rock", g)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
	if tokens[0] == tokens[1] {
		t.Fatal("retry must carry a freshly minted token")
	}
}

func TestClassify_PersistentUnauthorizedFails(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Classify(context.Background(), "hand.png", "image/png", []byte("img"))
	if !domain.IsKind(err, domain.KindClassification) {
		t.Fatalf("err = %v, want classification kind", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want exactly one retry", calls)
	}
}

func TestClassify_ErrorStatuses(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusNotFound, http.StatusForbidden,
		http.StatusUnprocessableEntity, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		_, err := newTestClient(srv.URL).Classify(context.Background(), "hand.png", "image/png", []byte("img"))
		srv.Close()
		if !domain.IsKind(err, domain.KindClassification) {
			t.Errorf("status %d: err = %v, want classification kind", status, err)
		}
	}
}

func TestClassify_UnknownClassFailsLoud(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"prediction": 7}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Classify(context.Background(), "hand.png", "image/png", []byte("img"))
	if !domain.IsKind(err, domain.KindClassification) {
		t.Fatalf("err = %v, want classification kind", err)
	}
}

func TestClassify_TimeoutIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := New(srv.URL, "test-secret", 20*time.Millisecond)
	_, err := c.Classify(context.Background(), "hand.png", "image/png", []byte("img"))
	if !domain.IsKind(err, domain.KindClassification) {
		t.Fatalf("err = %v, want classification kind on timeout", err)
	}
}

func TestTokenCache_Expiry(t *testing.T) {
	var c tokenCache
	if _, ok := c.get(); ok {
		t.Fatal("empty cache must miss")
	}
	c.set("tok", time.Now().Add(time.Hour))
	if tok, ok := c.get(); !ok || tok != "tok" {
		t.Fatalf("get = %q %v, want cached token", tok, ok)
	}
	c.set("tok", time.Now().Add(time.Second)) // inside the slack window
	if _, ok := c.get(); ok {
		t.Fatal("token about to expire must miss")
	}
	c.set("tok", time.Now().Add(time.Hour))
	c.evict()
	if _, ok := c.get(); ok {
		t.Fatal("evicted token must miss")
	}
}
