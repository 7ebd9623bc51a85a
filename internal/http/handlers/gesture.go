package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// SubmitGesture accepts a multipart image under the "file" field, runs the
// ingestion chain and returns the round outcome together with the refreshed
// match.
func (h *Handler) SubmitGesture(c *gin.Context) {
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

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
		return
	}
	defer f.Close()

	image, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
		return
	}

	out, m, err := h.GestureService.Submit(c.Request.Context(), matchID, userID, fileHeader.Filename, image)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcome": out, "match": m})
}

type PredictionFeedbackRequest struct {
	ModelID         int64 `json:"model_id" binding:"required"`
	WrongPrediction bool  `json:"wrong_prediction"`
}

// ReportPrediction relays a wrong-classification report to the model API.
func (h *Handler) ReportPrediction(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	moveID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid move id"})
		return
	}

	var req PredictionFeedbackRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	if err := h.GestureService.ReportPrediction(c.Request.Context(), moveID, userID, req.ModelID, req.WrongPrediction); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "feedback recorded"})
}

// GetMoveImage streams the stored image of a move back to a participant.
func (h *Handler) GetMoveImage(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	moveID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid move id"})
		return
	}

	data, contentType, err := h.GestureService.GetImage(c.Request.Context(), moveID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, data)
}
