package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sales-voice/internal/realtime"
	"sales-voice/internal/store"
)

// RealtimeHandler emite credenciales de ingreso a sala y registra la
// relación sala→usuario al momento de crearla.
type RealtimeHandler struct {
	logger *zap.Logger
	tokens *realtime.TokenService
	live   *store.LiveStore
}

func NewRealtimeHandler(logger *zap.Logger, tokens *realtime.TokenService, live *store.LiveStore) *RealtimeHandler {
	return &RealtimeHandler{
		logger: logger,
		tokens: tokens,
		live:   live,
	}
}

// GetToken maneja POST /token.
func (h *RealtimeHandler) GetToken(c *gin.Context) {
	var req struct {
		RoomName        string `json:"room_name" binding:"required"`
		ParticipantName string `json:"participant_name" binding:"required"`
		UserEmail       string `json:"user_email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid token request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	// La creación de sala es la primera oportunidad de fijar dueño.
	if req.UserEmail != "" && h.live.SetOwnerOnce(req.RoomName, req.UserEmail) {
		h.logger.Info("room mapped to user", zap.String("room", req.RoomName), zap.String("user", req.UserEmail))
	}

	token, err := h.tokens.RoomToken(req.RoomName, req.ParticipantName)
	if err != nil {
		h.logger.Error("room token generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"url":   h.tokens.WSURL(),
		"room":  req.RoomName,
	})
}
