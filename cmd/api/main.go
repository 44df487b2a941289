package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sales-voice/internal/config"
	"sales-voice/internal/db"
	apihttp "sales-voice/internal/http"
	"sales-voice/internal/llm"
	"sales-voice/internal/realtime"
	"sales-voice/internal/repository"
	"sales-voice/internal/service"
	"sales-voice/internal/store"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)
	sessionRepo := repository.NewPgSessionRepository(pool)

	live := store.NewLiveStore()

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger)
	analysisSvc := service.NewAnalysisService(llmClient, logger)
	transcriptSvc := service.NewTranscriptService(logger, live, messageRepo, analysisSvc)
	sessionSvc := service.NewSessionService(logger, live, sessionRepo, messageRepo, analysisSvc)

	var (
		loginLimiter service.LoginRateLimiter
		tokenStore   service.RefreshTokenStore
		redisClient  *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			loginLimiter = service.NewRedisLoginRateLimiter(redisClient, 10*time.Minute, 5)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	userSvc := service.NewUserService(logger, userRepo, loginLimiter)
	realtimeTokens := realtime.NewTokenService(cfg.LiveKitAPIKey, cfg.LiveKitAPISecret, cfg.LiveKitWSURL)

	userHandler := apihttp.NewUserHandler(logger, userSvc, jwtSvc)
	transcriptHandler := apihttp.NewTranscriptHandler(logger, transcriptSvc, sessionSvc, live)
	sessionHandler := apihttp.NewSessionHandler(logger, sessionSvc)
	realtimeHandler := apihttp.NewRealtimeHandler(logger, realtimeTokens, live)
	router := apihttp.NewRouter(logger, jwtSvc, userHandler, transcriptHandler, sessionHandler, realtimeHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
