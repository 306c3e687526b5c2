package llm

import (
	"context"
	"fmt"
	"strings"

	"interview-coach/internal/config"
	"interview-coach/internal/metrics"
)

// Client — контракт генерации текста. Любая ошибка для вызывающего кода
// эквивалентна "ответа нет": роли обязаны деградировать, а не падать.
type Client interface {
	Chat(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error)
}

// NewClient выбирает провайдера по конфигурации: явный LLM_PROVIDER, иначе
// по наличию ключей (Mistral, если задан только его ключ, иначе Gemini).
func NewClient(cfg config.LLMConfig) (Client, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		if cfg.MistralAPIKey != "" && cfg.GeminiAPIKey == "" {
			provider = "mistral"
		} else {
			provider = "gemini"
		}
	}

	switch provider {
	case "mistral":
		if cfg.MistralAPIKey == "" {
			return nil, fmt.Errorf("MISTRAL_API_KEY не установлен")
		}
		return NewMistralClient(cfg.MistralAPIKey, cfg.MistralModel, cfg.MistralBaseURL), nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY не установлен")
		}
		return NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel), nil
	default:
		return nil, fmt.Errorf("неизвестный LLM провайдер: %s", provider)
	}
}

// CountingClient оборачивает клиента и считает вызовы в метриках.
type CountingClient struct {
	inner   Client
	metrics *metrics.Metrics
}

func NewCountingClient(inner Client, m *metrics.Metrics) *CountingClient {
	return &CountingClient{inner: inner, metrics: m}
}

func (c *CountingClient) Chat(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	response, err := c.inner.Chat(ctx, systemPrompt, userPrompt, temperature)
	c.metrics.IncrementLLMCall(err == nil)
	return response, err
}
