package handlers

import (
	"net/http"

	"rps_api/internal/domain"
	"rps_api/internal/logger"
	"rps_api/internal/repository"
	"rps_api/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	AuthService    *service.AuthService
	MatchService   *service.MatchService
	GestureService *service.GestureService
	UserRepo       *repository.UserRepository
	StatsRepo      *repository.StatsRepository
}

func NewHandler(auth *service.AuthService, matches *service.MatchService,
	gestures *service.GestureService, users *repository.UserRepository,
	stats *repository.StatsRepository) *Handler {
	return &Handler{
		AuthService:    auth,
		MatchService:   matches,
		GestureService: gestures,
		UserRepo:       users,
		StatsRepo:      stats,
	}
}

func getUserID(c interface{ Get(string) (any, bool) }) (int64, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	switch v := uidVal.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// statusForKind maps domain error kinds to HTTP status codes. Unknown errors
// are internal.
func statusForKind(err error) int {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindBadInput, domain.KindSelfChallenge:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusForbidden
	case domain.KindInvalidState, domain.KindInvalidTransition, domain.KindAlreadySubmitted:
		return http.StatusConflict
	case domain.KindClassification:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error as JSON with the mapped status. Internal
// errors get a generic message so storage details never leak to clients.
func respondError(c *gin.Context, err error) {
	status := statusForKind(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "path", c.FullPath(), "error", err)
		msg = "internal server error"
	}
	c.JSON(status, gin.H{"error": msg})
}
