package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ExtractJSONObject извлекает один JSON-объект из свободного текста ответа
// LLM: срезает markdown-ограждение, берет подстроку от первой '{' до
// последней '}' и, если она не парсится, пытается восстановить через
// jsonrepair. Любая неудача означает "структурированного ответа нет".
func ExtractJSONObject(raw string) ([]byte, error) {
	text := strings.TrimSpace(raw)
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("JSON-объект не найден в ответе")
	}

	candidate := text[start : end+1]
	if json.Valid([]byte(candidate)) {
		return []byte(candidate), nil
	}

	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return nil, fmt.Errorf("не удалось восстановить JSON: %w", err)
	}
	if !json.Valid([]byte(repaired)) {
		return nil, fmt.Errorf("восстановленный JSON невалиден")
	}
	return []byte(repaired), nil
}
