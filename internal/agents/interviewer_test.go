package agents

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-coach/internal/config"
	"interview-coach/internal/metrics"
	"interview-coach/internal/policy"
	"interview-coach/internal/score"
	"interview-coach/internal/session"
)

// runInterview прогоняет интервьюера по сценарию: фальшивый Observer отвечает
// заготовленными оценками по порядку, реплики кандидата отправляются после
// старта. Возвращает все исходящие сообщения и журнал.
func runInterview(t *testing.T, cfg config.InterviewerConfig, client *stubLLM, assessments []Assessment, replies []string) ([]OutMessage, *session.Logger) {
	t.Helper()

	commands := make(chan Command, len(replies)+1)
	observerInbox := make(chan AnalyzeRequest)
	out := make(chan OutMessage, 64)

	logger := session.NewLogger("team", session.Meta{Position: "Backend", Grade: "Junior"},
		config.FinalFeedbackConfig{}, cfg.DefaultTopic, "1")

	iv := NewInterviewer(cfg, testPolicy(), client, metrics.NewMetrics(), logger, commands, observerInbox, out)

	observerDone := make(chan struct{})
	go func() {
		defer close(observerDone)
		i := 0
		for req := range observerInbox {
			if i < len(assessments) {
				req.Reply <- assessments[i]
				i++
			}
			// Оценки закончились: Observer молчит, интервьюер уходит в таймаут.
		}
	}()

	commands <- Command{Kind: CmdStart}
	for _, reply := range replies {
		commands <- Command{Kind: CmdReply, UserReply: reply}
	}
	close(commands)

	go iv.Run()

	var messages []OutMessage
	for msg := range out {
		messages = append(messages, msg)
	}
	close(observerInbox)
	<-observerDone

	return messages, logger
}

func visibleTexts(messages []OutMessage) []string {
	var texts []string
	for _, msg := range messages {
		if msg.Type == OutVisible {
			texts = append(texts, msg.Text)
		}
	}
	return texts
}

func hasType(messages []OutMessage, typ OutType) bool {
	for _, msg := range messages {
		if msg.Type == typ {
			return true
		}
	}
	return false
}

func neutralAssessment(action string) Assessment {
	return Assessment{
		InternalThoughts: "[Observer]: средний ответ",
		Action:           action,
		Scores:           &score.Score{Correctness: 0.6, Confidence: 0.6, Verbosity: 0.2},
		Topic:            "General",
		SuggestedTopic:   "General",
		Status:           session.StatusConfirmed,
	}
}

func TestInterviewerStartEmitsInitialQuestion(t *testing.T) {
	messages, logger := runInterview(t, testInterviewerConfig(), &stubLLM{}, nil, nil)

	visible := visibleTexts(messages)
	require.Len(t, visible, 1)
	assert.Contains(t, visible[0], "Backend")
	require.Len(t, logger.History, 1)
	assert.Equal(t, visible[0], logger.History[0].Question)
	assert.Empty(t, logger.History[0].Answer)
}

func TestInterviewerNormalTurn(t *testing.T) {
	client := &stubLLM{responses: []string{
		`{"question": "Как устроено B-дерево?", "reasoning": "поднимаем сложность", "comment": "Хороший ответ!"}`,
	}}

	messages, logger := runInterview(t, testInterviewerConfig(), client,
		[]Assessment{neutralAssessment(policy.ActionIncrease)},
		[]string{"Индекс ускоряет выборки по столбцу"})

	visible := visibleTexts(messages)
	require.Len(t, visible, 2)
	assert.Contains(t, visible[1], "Хороший ответ!")
	assert.Contains(t, visible[1], "Как устроено B-дерево?")

	require.Len(t, logger.Turns, 1)
	assert.Equal(t, policy.ActionIncrease, logger.Turns[0].InterviewerAction)
	assert.Equal(t, "Индекс ускоряет выборки по столбцу", logger.Turns[0].UserMessage)
	require.NotNil(t, logger.Turns[0].Scores)

	require.Len(t, logger.Observations, 1)
	assert.Equal(t, session.StatusConfirmed, logger.Observations[0].Status)
}

func TestInterviewerStopIntentProducesNoTurn(t *testing.T) {
	stop := Assessment{
		InternalThoughts: "[Observer]: кандидат хочет завершить",
		Action:           policy.ActionStop,
		Flags:            Flags{StopIntent: true},
		Topic:            "General",
		SuggestedTopic:   "General",
		Status:           session.StatusConfirmed,
	}

	messages, logger := runInterview(t, testInterviewerConfig(), &stubLLM{},
		[]Assessment{stop}, []string{"Спасибо, давайте закончим"})

	assert.True(t, hasType(messages, OutStop))
	assert.Empty(t, logger.Turns)
	assert.Empty(t, logger.Observations)
}

func TestInterviewerPureRoleReversalDoesNotAdvance(t *testing.T) {
	reversal := Assessment{
		InternalThoughts: "[Observer]: встречный вопрос",
		Action:           policy.ActionSame,
		Flags:            Flags{RoleReversal: true},
		Topic:            "General",
		SuggestedTopic:   "General",
		Status:           session.StatusConfirmed,
		SubQuestion:      "Какой у вас стек?",
	}
	client := &stubLLM{responses: []string{
		"У нас Go и Postgres.",
		"Повторю вопрос другими словами: что такое индекс?",
	}}

	messages, logger := runInterview(t, testInterviewerConfig(), client,
		[]Assessment{reversal}, []string{"Какой у вас стек?"})

	visible := visibleTexts(messages)
	// Начальный вопрос, ответ на встречный вопрос, переформулировка.
	require.Len(t, visible, 3)
	assert.Equal(t, "У нас Go и Postgres.", visible[1])
	assert.Contains(t, visible[2], "индекс")

	// Состояние интервью не продвинулось.
	assert.Empty(t, logger.Turns)
	assert.Empty(t, logger.Observations)
}

func TestInterviewerMixedRoleReversal(t *testing.T) {
	mixed := Assessment{
		InternalThoughts: "[Observer]: ответ со встречным вопросом",
		Action:           policy.ActionSame,
		Scores:           &score.Score{Correctness: 0.7, Confidence: 0.6},
		Flags:            Flags{RoleReversal: true},
		Topic:            "Databases",
		SuggestedTopic:   "Databases",
		Status:           session.StatusConfirmed,
		SubQuestion:      "Кстати, какой у вас стек?",
		AnswerPortion:    "Индексы ускоряют чтение и замедляют запись.",
	}
	cfg := testInterviewerConfig()
	cfg.SubQuestionTransition = "А теперь вернемся к интервью."
	// Порядок обращений к LLM: сначала следующий вопрос, затем ответ на
	// встречный вопрос кандидата.
	client := &stubLLM{responses: []string{
		`{"question": "Когда индекс вредит?", "reasoning": "", "comment": ""}`,
		"У нас Go и Postgres.",
	}}

	messages, logger := runInterview(t, cfg, client,
		[]Assessment{mixed},
		[]string{"Индексы ускоряют чтение и замедляют запись. Кстати, какой у вас стек?"})

	visible := visibleTexts(messages)
	require.Len(t, visible, 3)
	assert.Contains(t, visible[1], "У нас Go и Postgres.")
	assert.Contains(t, visible[1], "вернемся к интервью")
	assert.Contains(t, visible[2], "Когда индекс вредит?")

	// В журнал попадает только содержательная часть реплики.
	require.Len(t, logger.Turns, 1)
	assert.Equal(t, "Индексы ускоряют чтение и замедляют запись.", logger.Turns[0].UserMessage)
}

func TestInterviewerObserverTimeout(t *testing.T) {
	cfg := testInterviewerConfig()
	cfg.ObserverTimeoutSeconds = 0.05
	disabled := false
	cfg.UseLLMQuestions = &disabled

	// Пустой список оценок: Observer молчит, срабатывает таймаут.
	messages, logger := runInterview(t, cfg, &stubLLM{}, nil, []string{"какой-то ответ"})

	visible := visibleTexts(messages)
	require.Len(t, visible, 2)

	require.Len(t, logger.Turns, 1)
	assert.Equal(t, policy.ActionSame, logger.Turns[0].InterviewerAction)
	assert.Contains(t, logger.Turns[0].InternalThoughts, "не ответил вовремя")
	assert.Nil(t, logger.Turns[0].Scores)
}

func TestInterviewerStaticQuestionRotation(t *testing.T) {
	cfg := testInterviewerConfig()
	disabled := false
	cfg.UseLLMQuestions = &disabled

	_, logger := runInterview(t, cfg, &stubLLM{},
		[]Assessment{neutralAssessment(policy.ActionSame), neutralAssessment(policy.ActionSame)},
		[]string{"первый ответ", "второй ответ"})

	// Два сгенерированных вопроса различаются: ротация не повторяет формулировки.
	var asked []string
	for _, entry := range logger.History {
		if entry.Answer == "" {
			asked = append(asked, entry.Question)
		}
	}
	require.Len(t, asked, 3)
	assert.NotEqual(t, asked[1], asked[2])
}

func TestInterviewerFallbackQuestionOnLLMError(t *testing.T) {
	client := &stubLLM{err: errors.New("сеть недоступна")}

	messages, _ := runInterview(t, testInterviewerConfig(), client,
		[]Assessment{neutralAssessment(policy.ActionSame)}, []string{"ответ"})

	visible := visibleTexts(messages)
	require.Len(t, visible, 2)
	assert.Contains(t, testInterviewerConfig().BaseQuestions, visible[1])
}

func TestInterviewerRepeatedQuestionRejected(t *testing.T) {
	cfg := testInterviewerConfig()
	cfg.RepeatAvoidanceNote = "Не повторяй вопросы."
	// LLM оба раза предлагает уже заданный начальный вопрос.
	initial := "Здравствуйте! Интервью на позицию Backend. Расскажите о себе."
	client := &stubLLM{responses: []string{
		`{"question": "` + initial + `", "reasoning": "", "comment": ""}`,
	}}

	messages, _ := runInterview(t, cfg, client,
		[]Assessment{neutralAssessment(policy.ActionSame)}, []string{"ответ"})

	visible := visibleTexts(messages)
	require.Len(t, visible, 2)
	// Повтор отвергнут, использован страховочный вопрос.
	assert.NotEqual(t, initial, visible[1])
	assert.Contains(t, cfg.BaseQuestions, visible[1])
}

func TestInterviewerTopicCapForcesDefault(t *testing.T) {
	cfg := testInterviewerConfig()
	cfg.SpecificTopicCap = 2
	client := &stubLLM{responses: []string{
		`{"question": "Вопрос про базы номер один?", "reasoning": "", "comment": ""}`,
		`{"question": "Вопрос про базы номер два?", "reasoning": "", "comment": ""}`,
	}}

	specific := neutralAssessment(policy.ActionSame)
	specific.Topic = "Databases"
	specific.SuggestedTopic = "Databases"

	_, _ = runInterview(t, cfg, client,
		[]Assessment{specific, specific},
		[]string{"первый ответ", "второй ответ"})

	// Первый вопрос генерируется в специфичной теме, второй — после
	// достижения лимита — в базовой.
	assert.Contains(t, client.prompt(0), "topic=Databases")
	assert.Contains(t, client.prompt(1), "topic=General")
}
