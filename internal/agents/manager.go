package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"interview-coach/internal/config"
	"interview-coach/internal/llm"
	"interview-coach/internal/prompts"
	"interview-coach/internal/session"
)

// Manager формирует финальный отчет о найме. Любой сбой LLM или невалидный
// отчет заменяется запасным отчетом, выводимым из наблюдений по правилам.
type Manager struct {
	cfg     config.ManagerConfig
	llm     llm.Client
	session *session.Logger
	inbox   <-chan FinalizeRequest
}

func NewManager(cfg config.ManagerConfig, client llm.Client, logger *session.Logger, inbox <-chan FinalizeRequest) *Manager {
	return &Manager{
		cfg:     cfg,
		llm:     client,
		session: logger,
		inbox:   inbox,
	}
}

func (m *Manager) Run() {
	for req := range m.inbox {
		req.Reply <- m.GenerateFeedback()
	}
}

// GenerateFeedback возвращает отчет от LLM или, при любом сбое, запасной
// отчет из журнала.
func (m *Manager) GenerateFeedback() session.FinalFeedback {
	prompt := prompts.Render(m.cfg.ReportPromptTemplate, map[string]string{
		"position":     positionOrDefault(m.session.Meta.Position),
		"grade":        gradeOrDefault(m.session.Meta.Grade),
		"experience":   m.session.Meta.Experience,
		"turns":        m.formatTurns(),
		"observations": m.formatObservations(),
		"stats":        m.formatStats(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), secondsToDuration(m.cfg.LLMTimeoutSeconds, 25*time.Second))
	response, err := m.llm.Chat(ctx, m.cfg.SystemPrompt, prompt, 0.2)
	cancel()
	if err != nil {
		log.Printf("Manager: ошибка LLM: %v. Используем запасной отчет.", err)
		return m.session.BuildFinalFeedback()
	}

	raw, err := llm.ExtractJSONObject(response)
	if err != nil {
		log.Printf("Manager: нераспознаваемый отчет: %v. Используем запасной отчет.", err)
		return m.session.BuildFinalFeedback()
	}

	var report session.FinalFeedback
	if err := json.Unmarshal(raw, &report); err != nil {
		log.Printf("Manager: невалидная схема отчета: %v. Используем запасной отчет.", err)
		return m.session.BuildFinalFeedback()
	}
	if err := validateReport(&report); err != nil {
		log.Printf("Manager: отчет отвергнут: %v. Используем запасной отчет.", err)
		return m.session.BuildFinalFeedback()
	}
	return report
}

// validateReport проверяет, что все перечислимые поля отчета лежат в
// допустимых словарях.
func validateReport(report *session.FinalFeedback) error {
	switch report.Verdict.Grade {
	case "Junior", "Middle", "Senior":
	default:
		return fmt.Errorf("недопустимый грейд: %q", report.Verdict.Grade)
	}
	switch report.Verdict.Recommendation {
	case "Hire", "No Hire", "Strong Hire":
	default:
		return fmt.Errorf("недопустимая рекомендация: %q", report.Verdict.Recommendation)
	}
	if report.Verdict.ConfidenceScore < 0 || report.Verdict.ConfidenceScore > 100 {
		return fmt.Errorf("confidence_score вне диапазона: %d", report.Verdict.ConfidenceScore)
	}
	switch report.SoftSkills.Clarity {
	case "Good", "Average", "Poor":
	default:
		return fmt.Errorf("недопустимая оценка clarity: %q", report.SoftSkills.Clarity)
	}
	switch report.SoftSkills.Honesty {
	case "Clear answers", "Admitted gaps", "Unclear":
	default:
		return fmt.Errorf("недопустимая оценка honesty: %q", report.SoftSkills.Honesty)
	}
	switch report.SoftSkills.Engagement {
	case "High", "Neutral", "Low":
	default:
		return fmt.Errorf("недопустимая оценка engagement: %q", report.SoftSkills.Engagement)
	}
	for _, topic := range report.TechnicalReview.Topics {
		switch topic.Status {
		case session.StatusConfirmed, session.StatusGap, session.StatusHallucinationSuspect:
		default:
			return fmt.Errorf("недопустимый статус темы %q: %q", topic.Topic, topic.Status)
		}
	}
	return nil
}

// formatTurns рендерит последние обмены стенограммы для промпта.
func (m *Manager) formatTurns() string {
	turns := m.session.Turns
	if max := m.cfg.MaxTurns; max > 0 && len(turns) > max {
		turns = turns[len(turns)-max:]
	}
	if len(turns) == 0 {
		return "(стенограмма пуста)"
	}
	var b strings.Builder
	for _, turn := range turns {
		fmt.Fprintf(&b, "[%d] Вопрос: %s\n", turn.TurnID, turn.AgentVisibleMessage)
		fmt.Fprintf(&b, "    Ответ: %s\n", turn.UserMessage)
	}
	return strings.TrimSpace(b.String())
}

func (m *Manager) formatObservations() string {
	if len(m.session.Observations) == 0 {
		return "(наблюдений нет)"
	}
	var b strings.Builder
	for _, obs := range m.session.Observations {
		fmt.Fprintf(&b, "- Тема: %s | Статус: %s", obs.Topic, obs.Status)
		if obs.Scores != nil {
			fmt.Fprintf(&b, " | correctness=%.2f, confidence=%.2f", obs.Scores.Correctness, obs.Scores.Confidence)
		}
		if obs.Notes != "" {
			b.WriteString(" | " + obs.Notes)
		}
		if obs.CorrectAnswer != "" {
			b.WriteString(" | Правильный ответ: " + obs.CorrectAnswer)
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// formatStats считает сводку по наблюдениям: счетчики статусов и средние
// оценки.
func (m *Manager) formatStats() string {
	observations := m.session.Observations
	if len(observations) == 0 {
		return "СТАТИСТИКА: наблюдений нет."
	}

	confirmed, gaps, hallucinations, scored := 0, 0, 0, 0
	sumCorrectness, sumConfidence := 0.0, 0.0
	for _, obs := range observations {
		switch obs.Status {
		case session.StatusConfirmed:
			confirmed++
		case session.StatusGap:
			gaps++
		case session.StatusHallucinationSuspect:
			hallucinations++
		}
		if obs.Scores != nil {
			scored++
			sumCorrectness += obs.Scores.Correctness
			sumConfidence += obs.Scores.Confidence
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "СТАТИСТИКА: наблюдений %d, подтверждено %d, пробелов %d, подозрений на галлюцинации %d.",
		len(observations), confirmed, gaps, hallucinations)
	if scored > 0 {
		fmt.Fprintf(&b, " Средняя корректность %.2f, средняя уверенность %.2f.",
			sumCorrectness/float64(scored), sumConfidence/float64(scored))
	}
	return b.String()
}
