package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sales-voice/internal/domain"
	"sales-voice/internal/service"
	"sales-voice/internal/store"
)

const (
	defaultMessagesLimit = 50
	maxMessagesLimit     = 500
)

// TranscriptHandler mantiene dependencias para los endpoints del pipeline
// de transcripción: ingesta, finalización y lecturas por sala.
type TranscriptHandler struct {
	logger         *zap.Logger
	transcriptServ *service.TranscriptService
	sessionServ    *service.SessionService
	live           *store.LiveStore
}

func NewTranscriptHandler(
	logger *zap.Logger,
	transcriptServ *service.TranscriptService,
	sessionServ *service.SessionService,
	live *store.LiveStore,
) *TranscriptHandler {
	return &TranscriptHandler{
		logger:         logger,
		transcriptServ: transcriptServ,
		sessionServ:    sessionServ,
		live:           live,
	}
}

// Ingest maneja POST /ingest.
func (h *TranscriptHandler) Ingest(c *gin.Context) {
	var req struct {
		Text      string  `json:"text"`
		Speaker   string  `json:"speaker" binding:"required"`
		SentTS    float64 `json:"sent_ts"`
		RoomID    string  `json:"room_id" binding:"required"`
		UserEmail string  `json:"user_email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid ingest request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := h.transcriptServ.Ingest(c.Request.Context(), service.IngestInput{
		Text:      req.Text,
		Speaker:   req.Speaker,
		SentTS:    req.SentTS,
		RoomID:    req.RoomID,
		UserEmail: req.UserEmail,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage), errors.Is(err, service.ErrInvalidSpeaker):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			h.logger.Error("ingest failed", zap.Error(err), zap.String("room_id", req.RoomID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process transcript"})
		}
		return
	}

	resp := gin.H{
		"ok":            true,
		"room_id":       result.RoomID,
		"count_in_room": result.Count,
	}
	if result.Analysis != nil {
		resp["analysis"] = result.Analysis
	}
	if result.LatestCustomerText != "" {
		resp["latest_user_message"] = result.LatestCustomerText
	}
	c.JSON(http.StatusOK, resp)
}

// Finalize maneja POST /finalize.
func (h *TranscriptHandler) Finalize(c *gin.Context) {
	roomID := c.Query("room_id")
	if roomID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room_id required"})
		return
	}

	result, err := h.sessionServ.Finalize(c.Request.Context(), roomID, c.Query("user_email"))
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found in memory or database"})
			return
		}
		h.logger.Error("finalize failed", zap.Error(err), zap.String("room_id", roomID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":             true,
		"room_id":        result.RoomID,
		"durable_id":     result.DurableID,
		"total_messages": result.TotalMessages,
	})
}

// GetMessages maneja GET /messages/:room_id.
func (h *TranscriptHandler) GetMessages(c *gin.Context) {
	roomID := c.Param("room_id")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultMessagesLimit)))
	if err != nil || limit < 1 || limit > maxMessagesLimit {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "limit must be between 1 and 500"})
		return
	}

	messages := h.sessionServ.RecentMessages(c.Request.Context(), roomID, limit)
	if messages == nil {
		messages = []domain.Message{}
	}

	c.JSON(http.StatusOK, gin.H{
		"room_id":  roomID,
		"messages": messages,
	})
}

// GetAnalysis maneja GET /analysis/:room_id.
func (h *TranscriptHandler) GetAnalysis(c *gin.Context) {
	roomID := c.Param("room_id")

	resp := gin.H{"room_id": roomID, "analysis": nil}
	if analysis, ok := h.sessionServ.LatestAnalysis(roomID); ok {
		resp["analysis"] = analysis
	}
	c.JSON(http.StatusOK, resp)
}

// Health maneja GET /health.
func (h *TranscriptHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"rooms":  h.live.RoomCount(),
	})
}
