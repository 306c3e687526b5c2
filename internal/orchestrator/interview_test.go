package orchestrator

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-coach/internal/agents"
	"interview-coach/internal/config"
	"interview-coach/internal/metrics"
	"interview-coach/internal/policy"
	"interview-coach/internal/rag"
	"interview-coach/internal/session"
)

// downLLM имитирует полностью недоступный бекенд генерации.
type downLLM struct{}

func (downLLM) Chat(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	return "", errors.New("бекенд недоступен")
}

func testRuntimeConfig() *config.RuntimeConfig {
	cfg := &config.RuntimeConfig{}
	cfg.Policy.RoleReversalReply = "Отвечу и вернемся к интервью."
	cfg.Policy.ActionReasons = map[string]string{
		"increase": "сильный ответ",
		"same":     "средний ответ",
		"decrease": "слабый ответ",
	}

	in := &cfg.Interviewer
	in.SystemPrompt = "system"
	in.InitialQuestionTemplate = "Здравствуйте! Позиция {position}. Расскажите о себе."
	in.QuestionPromptTemplate = "topic={topic}"
	in.RoleReversalPromptTemplate = "q={user_question}"
	in.RephrasePromptTemplate = "r={question}"
	in.BaseQuestions = []string{"Что такое индекс?", "Чем процесс отличается от потока?"}
	in.DefaultTopic = "General"
	in.MaxHistoryTurns = 4
	in.ObserverTimeoutSeconds = 2
	in.LLMTimeoutSeconds = 1
	in.SpecificTopicCap = 3
	in.ObserverTimeoutThoughts = "[Observer]: молчит"

	ob := &cfg.Observer
	ob.AnalysisSystemPrompt = "system"
	ob.AnalysisJSONPromptTemplate = "q={question};a={answer}"
	ob.InternalThoughtsPrefix = "[Observer]: "
	ob.AnalysisFallbackNote = "LLM недоступен ({error})."
	ob.ObserverErrorNote = "ошибка"
	ob.LLMCooldownNote = "пауза"
	ob.DefaultTopic = "General"
	ob.LLMTimeoutSeconds = 1
	ob.LLMCooldownSeconds = 60

	mg := &cfg.Manager
	mg.SystemPrompt = "system"
	mg.ReportPromptTemplate = "turns={turns}"
	mg.LLMTimeoutSeconds = 1
	mg.MaxTurns = 12

	ff := &cfg.FinalFeedback
	ff.Recommendation.NoGaps = "Hire"
	ff.Recommendation.HasGaps = "No Hire"
	ff.Confidence.NoGaps = 75
	ff.Confidence.HasGaps = 40
	ff.SoftSkills.Clarity = "Average"
	ff.SoftSkills.HonestyNoGaps = "Clear answers"
	ff.SoftSkills.HonestyWithGaps = "Admitted gaps"
	ff.SoftSkills.Engagement = "Neutral"
	return cfg
}

// Интервью целиком на недоступном бекенде: вопросы из страховочного списка,
// оценки эвристические, отчет запасной.
func TestInterviewSurvivesLLMOutage(t *testing.T) {
	cfg := testRuntimeConfig()
	m := metrics.NewMetrics()
	logger := session.NewLogger("team", session.Meta{Position: "Backend", Grade: "Junior"},
		cfg.FinalFeedback, cfg.Interviewer.DefaultTopic, "1")
	retriever := rag.NewRetriever(config.RAGConfig{}, nil)

	iv := New(cfg, downLLM{}, m, retriever, logger)
	iv.Start()

	done := make(chan struct{})
	var visible []string
	go func() {
		defer close(done)
		for msg := range iv.Out() {
			if msg.Type == agents.OutVisible {
				visible = append(visible, msg.Text)
			}
		}
	}()

	iv.SendReply("Индекс это структура данных, она ускоряет выборки по столбцам таблицы")
	iv.SendReply("Процесс имеет свое адресное пространство, потоки разделяют память процесса")

	report := iv.Finalize()
	<-done

	// Приветствие и два вопроса из страховочного списка.
	require.Len(t, visible, 3)
	assert.Contains(t, visible[0], "Backend")
	assert.Equal(t, "Что такое индекс?", visible[1])

	assert.Len(t, logger.Turns, 2)
	assert.Equal(t, "Hire", report.Verdict.Recommendation)
	assert.Equal(t, report, logger.FinalFeedback())

	snapshot := m.GetSnapshot()
	assert.Equal(t, int64(1), snapshot.InterviewsStarted)
	assert.Equal(t, int64(1), snapshot.InterviewsCompleted)
	assert.Equal(t, int64(1), snapshot.ReportsGenerated)
	assert.Equal(t, int64(3), snapshot.QuestionsAsked)
}

// scriptedLLM маршрутизирует ответы по форме промпта: суждения Observer и
// вопросы интервьюера отдаются из своих очередей, промпт менеджера получает
// ошибку, чтобы финал проверял запасной отчет из наблюдений.
type scriptedLLM struct {
	mu        sync.Mutex
	analyses  []string
	questions []string
}

func (s *scriptedLLM) Chat(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case strings.HasPrefix(userPrompt, "q="):
		return shift(&s.analyses)
	case strings.HasPrefix(userPrompt, "topic="):
		return shift(&s.questions)
	default:
		return "", errors.New("бекенд недоступен")
	}
}

func shift(queue *[]string) (string, error) {
	if len(*queue) == 0 {
		return "", errors.New("сценарий исчерпан")
	}
	head := (*queue)[0]
	*queue = (*queue)[1:]
	return head, nil
}

func runScriptedInterview(t *testing.T, client *scriptedLLM, meta session.Meta, replies []string) (*session.Logger, session.FinalFeedback) {
	t.Helper()
	cfg := testRuntimeConfig()
	logger := session.NewLogger("team", meta, cfg.FinalFeedback, cfg.Interviewer.DefaultTopic, "2")
	iv := New(cfg, client, metrics.NewMetrics(), rag.NewRetriever(config.RAGConfig{}, nil), logger)
	iv.Start()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range iv.Out() {
		}
	}()

	for _, reply := range replies {
		iv.SendReply(reply)
	}
	report := iv.Finalize()
	<-done
	return logger, report
}

// Сильный кандидат: три уверенных ответа с высокой корректностью повышают
// сложность и дают рекомендацию Hire без пробелов в знаниях.
func TestInterviewIdealCandidate(t *testing.T) {
	analysis := `{"action":"increase","scores":{"correctness":0.95,"confidence":0.9},"notes":"точный развернутый ответ","status":"confirmed"}`
	client := &scriptedLLM{
		analyses: []string{analysis, analysis, analysis},
		questions: []string{
			`{"question":"Какие виды индексов вы знаете?","reasoning":"усложняем тему"}`,
			`{"question":"Как индекс влияет на скорость записи?","reasoning":"усложняем тему"}`,
			`{"question":"Когда индекс вредит производительности?","reasoning":"усложняем тему"}`,
		},
	}

	logger, report := runScriptedInterview(t, client,
		session.Meta{Position: "Backend", Grade: "Middle"}, []string{
			"Индекс это структура данных, она ускоряет выборки, например B-дерево по столбцу",
			"Составной индекс покрывает запросы по префиксу перечисленных столбцов",
			"Каждая запись обновляет все индексы таблицы, поэтому их число надо ограничивать",
		})

	require.Len(t, logger.Turns, 3)
	for _, turn := range logger.Turns {
		assert.Equal(t, policy.ActionIncrease, turn.InterviewerAction)
		require.NotNil(t, turn.Scores)
		assert.GreaterOrEqual(t, turn.Scores.Correctness, 0.9)
	}

	assert.Equal(t, "Hire", report.Verdict.Recommendation)
	assert.Equal(t, "Middle", report.Verdict.Grade)
	assert.Equal(t, 75, report.Verdict.ConfidenceScore)
	assert.Empty(t, report.TechnicalReview.KnowledgeGaps)
	assert.Equal(t, []string{"General"}, report.TechnicalReview.ConfirmedSkills)
	assert.Equal(t, "Clear answers", report.SoftSkills.Honesty)
}

// Средний кандидат: сложность не меняется, тема подтверждена.
func TestInterviewAverageCandidate(t *testing.T) {
	analysis := `{"action":"same","scores":{"correctness":0.6,"confidence":0.5},"notes":"верно, но поверхностно","status":"confirmed"}`
	client := &scriptedLLM{
		analyses:  []string{analysis, analysis},
		questions: []string{`{"question":"Что такое транзакция?"}`, `{"question":"Что такое дедлок?"}`},
	}

	logger, report := runScriptedInterview(t, client, session.Meta{Position: "Backend"}, []string{
		"Индекс ускоряет поиск по таблице",
		"Транзакция это группа операций, выполняемая целиком",
	})

	require.Len(t, logger.Turns, 2)
	for _, turn := range logger.Turns {
		assert.Equal(t, policy.ActionSame, turn.InterviewerAction)
	}
	assert.Equal(t, "Hire", report.Verdict.Recommendation)
	assert.Empty(t, report.TechnicalReview.KnowledgeGaps)
}

// Слабый кандидат: низкая корректность понижает сложность, статусы gap
// сводятся в отчет с пробелами и роадмапом.
func TestInterviewPoorCandidate(t *testing.T) {
	analysis := `{"action":"decrease","scores":{"correctness":0.2,"confidence":0.3},"notes":"ответ не по существу","status":"gap"}`
	client := &scriptedLLM{
		analyses:  []string{analysis, analysis},
		questions: []string{`{"question":"Что такое массив?"}`, `{"question":"Что такое цикл?"}`},
	}

	logger, report := runScriptedInterview(t, client, session.Meta{Position: "Backend", Grade: "Junior"}, []string{
		"Не знаю",
		"Затрудняюсь ответить",
	})

	require.Len(t, logger.Turns, 2)
	for _, turn := range logger.Turns {
		assert.Equal(t, policy.ActionDecrease, turn.InterviewerAction)
	}
	require.Len(t, logger.Observations, 2)
	for _, obs := range logger.Observations {
		assert.Equal(t, session.StatusGap, obs.Status)
	}

	assert.Equal(t, "No Hire", report.Verdict.Recommendation)
	assert.Equal(t, 40, report.Verdict.ConfidenceScore)
	// Повторы одной темы схлопываются.
	assert.Equal(t, []string{"General"}, report.TechnicalReview.KnowledgeGaps)
	assert.Equal(t, "Admitted gaps", report.SoftSkills.Honesty)
}

// Выдуманный факт: статус hallucination_suspect, действие
// correct_and_continue, правильный ответ попадает в наблюдение и отчет.
func TestInterviewHallucinationScenario(t *testing.T) {
	client := &scriptedLLM{
		analyses: []string{`{"action":"same","scores":{"correctness":0.3,"confidence":0.8},"notes":"фактическая ошибка","status":"confirmed","correct_answer":"Индекс ускоряет чтение, но замедляет запись","hallucination":true,"hallucination_reason":"выдуманное свойство индекса"}`},
		questions: []string{`{"question":"Что такое транзакция?"}`},
	}

	logger, report := runScriptedInterview(t, client, session.Meta{Position: "Backend"}, []string{
		"Индекс ускоряет и чтение и запись примерно в сто раз",
	})

	require.Len(t, logger.Turns, 1)
	assert.Equal(t, policy.ActionCorrectAndContinue, logger.Turns[0].InterviewerAction)

	require.Len(t, logger.Observations, 1)
	obs := logger.Observations[0]
	assert.Equal(t, session.StatusHallucinationSuspect, obs.Status)
	assert.Equal(t, "Индекс ускоряет чтение, но замедляет запись", obs.CorrectAnswer)

	assert.Equal(t, "No Hire", report.Verdict.Recommendation)
	assert.Equal(t, []string{"General"}, report.TechnicalReview.KnowledgeGaps)
	require.Len(t, report.PersonalRoadmap, 1)
	assert.Equal(t, "General", report.PersonalRoadmap[0].Topic)
}

func TestInterviewSaveWritesLog(t *testing.T) {
	cfg := testRuntimeConfig()
	logger := session.NewLogger("team", session.Meta{}, cfg.FinalFeedback, "General", "9")
	iv := New(cfg, downLLM{}, metrics.NewMetrics(), rag.NewRetriever(config.RAGConfig{}, nil), logger)
	iv.Start()

	go func() {
		for range iv.Out() {
		}
	}()
	iv.Finalize()

	dir := t.TempDir()
	path, err := iv.Save(dir)
	require.NoError(t, err)

	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)

	doc, err := session.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9", doc.SessionID)
}
