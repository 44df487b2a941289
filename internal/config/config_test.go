package config

import (
	"os"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/sales")
	t.Setenv("LLM_API_KEY", "k")
	t.Setenv("LIVEKIT_API_KEY", "lk")
	t.Setenv("LIVEKIT_API_SECRET", "sk")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPPort != "8000" {
		t.Fatalf("unexpected port %q", cfg.HTTPPort)
	}
	if cfg.LLMBaseURL != "https://api.groq.com/openai/v1" || cfg.LLMModel != "llama-3.3-70b-versatile" {
		t.Fatalf("unexpected llm defaults: %q %q", cfg.LLMBaseURL, cfg.LLMModel)
	}
	if cfg.JWTAccessTTLMinutes != 1440 || cfg.JWTRefreshTTLMinutes != 43200 {
		t.Fatalf("unexpected jwt ttls: %d %d", cfg.JWTAccessTTLMinutes, cfg.JWTRefreshTTLMinutes)
	}
	if cfg.LiveKitWSURL != "ws://localhost:7880" {
		t.Fatalf("unexpected livekit url %q", cfg.LiveKitWSURL)
	}
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	// t.Setenv registra la restauración; el unset deja la variable ausente.
	t.Setenv("DATABASE_URL", "x")
	os.Unsetenv("DATABASE_URL")
	t.Setenv("LLM_API_KEY", "k")
	t.Setenv("LIVEKIT_API_KEY", "lk")
	t.Setenv("LIVEKIT_API_SECRET", "sk")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error without DATABASE_URL")
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPPort != "9000" || cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
}
