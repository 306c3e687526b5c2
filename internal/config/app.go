package config

import (
	"os"
	"strconv"
	"time"
)

type AppConfig struct {
	LLM    LLMConfig
	Server ServerConfig
}

// LLMConfig описывает доступ к провайдерам генерации текста.
type LLMConfig struct {
	Provider       string
	GeminiAPIKey   string
	GeminiModel    string
	MistralAPIKey  string
	MistralModel   string
	MistralBaseURL string
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

func LoadAppConfig() *AppConfig {
	return &AppConfig{
		LLM: LLMConfig{
			Provider:       getEnv("LLM_PROVIDER", ""),
			GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
			GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			MistralAPIKey:  getEnv("MISTRAL_API_KEY", ""),
			MistralModel:   getEnv("MISTRAL_MODEL", "mistral-large-latest"),
			MistralBaseURL: getEnv("MISTRAL_BASE_URL", "https://api.mistral.ai/v1"),
		},
		Server: ServerConfig{
			Port:            getEnvAsInt("SERVER_PORT", 5000),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
