package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sales-voice/internal/domain"
	"sales-voice/internal/service"
)

// SessionHandler mantiene dependencias para lecturas de sesiones con dueño.
type SessionHandler struct {
	logger      *zap.Logger
	sessionServ *service.SessionService
}

func NewSessionHandler(logger *zap.Logger, sessionServ *service.SessionService) *SessionHandler {
	return &SessionHandler{
		logger:      logger,
		sessionServ: sessionServ,
	}
}

// ListSessions maneja GET /sessions.
func (h *SessionHandler) ListSessions(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	sessions := h.sessionServ.ListSessions(c.Request.Context(), claims.Email)
	if sessions == nil {
		sessions = []domain.SessionSummary{}
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// GetSession maneja GET /sessions/:id.
func (h *SessionHandler) GetSession(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	sessionID := c.Param("id")
	session, err := h.sessionServ.GetSession(c.Request.Context(), sessionID, claims.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied: you don't own this session"})
		case errors.Is(err, service.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		default:
			h.logger.Error("get session failed", zap.Error(err), zap.String("session_id", sessionID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch session"})
		}
		return
	}

	c.JSON(http.StatusOK, session)
}
