package handlers

import (
	"net/http"
	"strconv"

	"rps_api/internal/domain"

	"github.com/gin-gonic/gin"
)

type CreateMatchRequest struct {
	OpponentID int64 `json:"opponent_id" binding:"required"`
}

func (h *Handler) CreateMatch(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreateMatchRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	m, err := h.MatchService.Create(c.Request.Context(), userID, req.OpponentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

type RespondRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}

func (h *Handler) RespondToMatch(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	matchID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid match id"})
		return
	}

	var req RespondRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	m, err := h.MatchService.RespondToInvitation(c.Request.Context(), matchID, userID, *req.Accept)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) GetMatch(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	matchID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid match id"})
		return
	}

	m, moves, err := h.MatchService.Get(c.Request.Context(), matchID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"match": m, "moves": moves})
}

func (h *Handler) ListMatches(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	var status *domain.MatchStatus
	if v := c.Query("status"); v != "" {
		s, err := domain.ParseMatchStatus(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
			return
		}
		status = &s
	}

	matches, err := h.MatchService.List(c.Request.Context(), userID, status, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	if matches == nil {
		matches = []*domain.Match{}
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}
