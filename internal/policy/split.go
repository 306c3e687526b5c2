package policy

import (
	"strings"
	"unicode/utf8"
)

// minAnswerRunes — минимальная длина восстановленной части-ответа, при которой
// разбиение считается состоявшимся. Короче — считаем реплику чистым встречным
// вопросом.
const minAnswerRunes = 15

// Маркеры перехода от ответа к встречному вопросу, в порядке приоритета.
var discourseMarkers = []string{
	"кстати,",
	"кстати",
	"а у меня вопрос",
	"у меня вопрос",
	"у меня встречный вопрос",
	"хотел спросить",
	"хотела спросить",
	"можно вопрос",
	"и еще вопрос",
	"by the way",
	"i have a question",
	"can i ask",
	"may i ask",
	"quick question",
}

// Вопросительные слова, с которых обычно начинается встречный вопрос.
var interrogatives = map[string]bool{
	"как": true, "почему": true, "что": true, "зачем": true, "какой": true,
	"какая": true, "какие": true, "когда": true, "где": true, "сколько": true,
	"кто": true, "можно": true,
	"what": true, "why": true, "how": true, "when": true, "where": true,
	"which": true, "who": true, "can": true, "could": true, "do": true,
	"does": true, "is": true, "are": true, "will": true,
}

// SplitResult — результат разбиения смешанной реплики.
// Answer пустой означает, что содержательной части-ответа восстановить
// не удалось и вся реплика — встречный вопрос.
type SplitResult struct {
	Answer   string
	Question string
}

// SplitReply разбивает реплику кандидата на часть-ответ и встречный вопрос.
// Стратегии применяются по порядку: явные дискурсивные маркеры, позиция
// вопросительного слова, граница последнего предложения. Разбиение заведомо
// эвристическое: при сомнении вся реплика трактуется как встречный вопрос.
func SplitReply(text string) SplitResult {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return SplitResult{}
	}

	if res, ok := splitByMarker(trimmed); ok {
		return res
	}
	if res, ok := splitByInterrogative(trimmed); ok {
		return res
	}
	if res, ok := splitBySentenceBoundary(trimmed); ok {
		return res
	}
	return SplitResult{Question: trimmed}
}

func splitByMarker(text string) (SplitResult, bool) {
	lower := strings.ToLower(text)
	for _, marker := range discourseMarkers {
		idx := strings.Index(lower, marker)
		if idx <= 0 {
			continue
		}
		answer := strings.TrimSpace(text[:idx])
		question := strings.TrimSpace(text[idx:])
		if substantial(answer) && strings.Contains(question, "?") {
			return SplitResult{Answer: answer, Question: question}, true
		}
	}
	return SplitResult{}, false
}

func splitByInterrogative(text string) (SplitResult, bool) {
	sentences := splitSentences(text)
	for i, sentence := range sentences {
		if i == 0 || !strings.HasSuffix(sentence, "?") {
			continue
		}
		words := strings.Fields(strings.ToLower(sentence))
		if len(words) == 0 || !interrogatives[strings.Trim(words[0], ",.:;")] {
			continue
		}
		answer := strings.TrimSpace(strings.Join(sentences[:i], " "))
		question := strings.TrimSpace(strings.Join(sentences[i:], " "))
		if substantial(answer) {
			return SplitResult{Answer: answer, Question: question}, true
		}
	}
	return SplitResult{}, false
}

func splitBySentenceBoundary(text string) (SplitResult, bool) {
	if !strings.HasSuffix(text, "?") {
		return SplitResult{}, false
	}
	sentences := splitSentences(text)
	if len(sentences) < 2 {
		return SplitResult{}, false
	}
	last := len(sentences) - 1
	answer := strings.TrimSpace(strings.Join(sentences[:last], " "))
	question := strings.TrimSpace(sentences[last])
	if substantial(answer) && !strings.HasSuffix(answer, "?") {
		return SplitResult{Answer: answer, Question: question}, true
	}
	return SplitResult{}, false
}

// splitSentences режет текст на предложения, сохраняя завершающий знак.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			sentence := strings.TrimSpace(current.String())
			if sentence != "" {
				sentences = append(sentences, sentence)
			}
			current.Reset()
		}
	}
	tail := strings.TrimSpace(current.String())
	if tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

func substantial(answer string) bool {
	return utf8.RuneCountInString(answer) >= minAnswerRunes
}
