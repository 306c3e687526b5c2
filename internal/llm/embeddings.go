package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"interview-coach/internal/config"
)

const defaultGeminiEmbeddingModel = "text-embedding-004"

// NewEmbeddingFunc возвращает функцию эмбеддингов для векторного индекса,
// согласованную с выбранным LLM провайдером.
func NewEmbeddingFunc(cfg config.LLMConfig) (chromem.EmbeddingFunc, error) {
	if cfg.MistralAPIKey != "" && (cfg.Provider == "mistral" || cfg.GeminiAPIKey == "") {
		return chromem.NewEmbeddingFuncMistral(cfg.MistralAPIKey), nil
	}
	if cfg.GeminiAPIKey != "" {
		return newGeminiEmbeddingFunc(cfg.GeminiAPIKey, defaultGeminiEmbeddingModel), nil
	}
	return nil, fmt.Errorf("нет ключа API для функции эмбеддингов")
}

type geminiEmbedRequest struct {
	Model   string        `json:"model"`
	Content geminiContent `json:"content"`
}

type geminiEmbedResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

// newGeminiEmbeddingFunc строит функцию эмбеддингов поверх embedContent API
// Gemini; chromem не предоставляет готовой.
func newGeminiEmbeddingFunc(apiKey, model string) chromem.EmbeddingFunc {
	client := &http.Client{Timeout: 60 * time.Second}

	return func(ctx context.Context, text string) ([]float32, error) {
		request := geminiEmbedRequest{
			Model:   "models/" + model,
			Content: geminiContent{Parts: []geminiPart{{Text: text}}},
		}
		jsonData, err := json.Marshal(request)
		if err != nil {
			return nil, fmt.Errorf("ошибка сериализации запроса: %w", err)
		}

		url := fmt.Sprintf("%s/%s:embedContent?key=%s", geminiBaseURL, model, apiKey)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
		if err != nil {
			return nil, fmt.Errorf("ошибка создания запроса: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("Gemini API недоступен: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения ответа: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("Gemini API: HTTP %d: %s", resp.StatusCode, string(body))
		}

		var parsed geminiEmbedResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, fmt.Errorf("ошибка парсинга ответа: %w", err)
		}
		if len(parsed.Embedding.Values) == 0 {
			return nil, fmt.Errorf("пустой эмбеддинг от Gemini")
		}
		return parsed.Embedding.Values, nil
	}
}
