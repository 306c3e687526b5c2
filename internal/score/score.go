package score

import (
	"strings"
	"unicode/utf8"
)

// Score представляет эвристическую оценку одного ответа кандидата.
// Все непрерывные поля лежат в диапазоне [0, 1].
type Score struct {
	Correctness  float64 `json:"correctness"`
	Confidence   float64 `json:"confidence"`
	Verbosity    float64 `json:"verbosity"`
	UsesExamples bool    `json:"uses_examples"`
}

func clamp(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}

// Answer вычисляет дешевую лексическую оценку ответа. Это детерминированная
// страховочная оценка на случай, когда структурированный анализ LLM недоступен.
func Answer(answer, question string) Score {
	text := strings.ToLower(strings.TrimSpace(answer))
	length := utf8.RuneCountInString(text)
	verbosity := clamp(float64(length) / 300.0)

	usesExamples := strings.Contains(text, "for example") ||
		strings.Contains(text, "например") ||
		strings.Contains(text, "example")

	base := 0.2
	if length > 40 {
		base += 0.2
	}
	if length > 120 {
		base += 0.2
	}
	if usesExamples {
		base += 0.1
	}
	if strings.Contains(text, "don't know") || strings.Contains(text, "не знаю") {
		base -= 0.3
	}
	if question != "" && echoesQuestion(text, question) {
		base += 0.1
	}

	confidence := 0.4 + 0.1
	if length > 80 {
		confidence = 0.4 + 0.4
	}

	return Score{
		Correctness:  clamp(base),
		Confidence:   clamp(confidence),
		Verbosity:    verbosity,
		UsesExamples: usesExamples,
	}
}

// echoesQuestion проверяет, встречается ли в ответе одно из первых трех слов вопроса.
func echoesQuestion(text, question string) bool {
	words := strings.Fields(strings.ToLower(question))
	if len(words) > 3 {
		words = words[:3]
	}
	for _, word := range words {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}
