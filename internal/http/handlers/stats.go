package handlers

import (
	"net/http"
	"strconv"

	"rps_api/internal/domain"
	"rps_api/internal/repository"

	"github.com/gin-gonic/gin"
)

// Leaderboard returns the ranked player standings. The sort key is validated
// against the known set before it goes anywhere near a query.
func (h *Handler) Leaderboard(c *gin.Context) {
	sortKey := domain.StatsSortKey(c.DefaultQuery("sort", string(domain.SortByWins)))
	if !domain.ValidStatsSortKey(sortKey) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sort key, use wins, losses, ties or games_played"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	entries, err := h.StatsRepo.Leaderboard(c.Request.Context(), sortKey, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	if entries == nil {
		entries = []repository.LeaderboardEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries, "sort": sortKey})
}

// MyStats returns the caller's own counters; a player with no recorded
// matches gets zeroes, not a 404.
func (h *Handler) MyStats(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	stats, err := h.StatsRepo.GetForPlayer(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
