package agents

import (
	"context"
	"sync"

	"interview-coach/internal/config"
)

// stubLLM — скриптованный LLM клиент для тестов: отдает ответы по очереди
// (последний повторяется) и запоминает промпты.
type stubLLM struct {
	mu        sync.Mutex
	responses []string
	err       error
	prompts   []string
}

func (s *stubLLM) Chat(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, userPrompt)
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", nil
	}
	response := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return response, nil
}

func (s *stubLLM) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

func (s *stubLLM) prompt(i int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prompts[i]
}

func testObserverConfig() config.ObserverConfig {
	return config.ObserverConfig{
		AnalysisSystemPrompt:       "system",
		AnalysisJSONPromptTemplate: "Вопрос: {question}\nОтвет: {answer}",
		InternalThoughtsPrefix:     "[Observer]: ",
		InternalNotes: config.InternalNotes{
			Hallucination: "Подозрение на галлюцинацию: {reason}",
			OffTopic:      "Ответ не по теме.",
			RoleReversal:  "Кандидат задал встречный вопрос.",
		},
		AnalysisFallbackNote: "LLM недоступен ({error}), оцениваем эвристикой.",
		ObserverErrorNote:    "Ошибка анализа.",
		LLMCooldownNote:      "LLM на паузе после ошибок.",
		DefaultTopic:         "General",
		LLMTimeoutSeconds:    1,
		LLMMaxRetries:        0,
		LLMCooldownSeconds:   60,
	}
}

func testInterviewerConfig() config.InterviewerConfig {
	return config.InterviewerConfig{
		SystemPrompt:               "system",
		InitialQuestionTemplate:    "Здравствуйте! Интервью на позицию {position}. Расскажите о себе.",
		QuestionPromptTemplate:     "topic={topic};action={action};history={history}",
		RoleReversalPromptTemplate: "Встречный вопрос: {user_question}",
		RephrasePromptTemplate:     "Переформулируй: {question}",
		BaseQuestions: []string{
			"Что такое индекс в базе данных?",
			"Чем процесс отличается от потока?",
			"Как работает HTTP запрос?",
		},
		DefaultTopic:            "General",
		MaxHistoryTurns:         4,
		MaxQuestionRetries:      1,
		ObserverTimeoutSeconds:  1,
		LLMTimeoutSeconds:       1,
		SpecificTopicCap:        3,
		TopicResetNote:          "[Interviewer]: возвращаемся к общим вопросам.",
		ObserverTimeoutThoughts: "[Observer]: не ответил вовремя, продолжаем без оценки.",
	}
}
