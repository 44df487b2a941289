package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8000"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	LLMAPIKey  string `env:"LLM_API_KEY,required"`
	LLMBaseURL string `env:"LLM_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	LLMModel   string `env:"LLM_MODEL" envDefault:"llama-3.3-70b-versatile"`

	JWTSecret            string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes  int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"1440"`
	JWTRefreshTTLMinutes int    `env:"JWT_REFRESH_TTL_MINUTES" envDefault:"43200"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	LiveKitAPIKey    string `env:"LIVEKIT_API_KEY,required"`
	LiveKitAPISecret string `env:"LIVEKIT_API_SECRET,required"`
	LiveKitWSURL     string `env:"LIVEKIT_WS_URL" envDefault:"ws://localhost:7880"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
