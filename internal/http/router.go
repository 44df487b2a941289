package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sales-voice/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	userH *UserHandler,
	transcriptH *TranscriptHandler,
	sessionH *SessionHandler,
	realtimeH *RealtimeHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y CORS (el dashboard corre aparte).
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), corsMiddleware())

	r.POST("/register", userH.Register)
	r.POST("/login", userH.Login)
	r.POST("/auth/refresh", userH.RefreshToken)
	r.POST("/auth/logout", userH.Logout)
	r.GET("/verify", JWTAuthMiddleware(jwtSvc), userH.Verify)

	r.POST("/token", realtimeH.GetToken)

	// Pipeline de transcripción: lo alimenta el agente de voz, sin auth.
	r.POST("/ingest", transcriptH.Ingest)
	r.POST("/finalize", transcriptH.Finalize)
	r.GET("/messages/:room_id", transcriptH.GetMessages)
	r.GET("/analysis/:room_id", transcriptH.GetAnalysis)
	r.GET("/health", transcriptH.Health)

	sessions := r.Group("/sessions", JWTAuthMiddleware(jwtSvc))
	sessions.GET("", sessionH.ListSessions)
	sessions.GET("/:id", sessionH.GetSession)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// corsMiddleware permite llamadas cross-origin del frontend de ventas.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
