package session

import (
	"time"

	"interview-coach/internal/config"
	"interview-coach/internal/score"
)

// Logger — журнал одного интервью: реплики, история вопрос/ответ и
// наблюдения по темам. Записи только добавляются; мутирует журнал только
// задача интервьюера (и координатор — финальный отчет), поэтому блокировки
// не нужны.
type Logger struct {
	TeamName     string
	SessionID    string
	Meta         Meta
	Turns        []Turn
	Observations []Observation
	History      []HistoryEntry

	feedbackConfig config.FinalFeedbackConfig
	defaultTopic   string
	override       *FinalFeedback
}

func NewLogger(teamName string, meta Meta, feedbackConfig config.FinalFeedbackConfig, defaultTopic, sessionID string) *Logger {
	return &Logger{
		TeamName:       teamName,
		SessionID:      sessionID,
		Meta:           meta,
		feedbackConfig: feedbackConfig,
		defaultTopic:   defaultTopic,
	}
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// LogTurn добавляет состоявшийся обмен репликами с очередным номером.
func (l *Logger) LogTurn(agentVisibleMessage, userMessage, internalThoughts, interviewerAction string, scores *score.Score) {
	l.Turns = append(l.Turns, Turn{
		TurnID:              len(l.Turns) + 1,
		Timestamp:           nowISO(),
		AgentVisibleMessage: agentVisibleMessage,
		UserMessage:         userMessage,
		InternalThoughts:    internalThoughts,
		InterviewerAction:   interviewerAction,
		Scores:              scores,
	})
}

// AddHistory добавляет пару вопрос/ответ (ответ может быть пустым).
func (l *Logger) AddHistory(question, answer string) {
	l.History = append(l.History, HistoryEntry{
		Timestamp: nowISO(),
		Question:  question,
		Answer:    answer,
	})
}

func (l *Logger) AddObservation(obs Observation) {
	if obs.Topic == "" {
		obs.Topic = l.defaultTopic
	}
	l.Observations = append(l.Observations, obs)
}

// SetFinalFeedback фиксирует отчет, полученный от менеджера; он замещает
// выводимый по правилам отчет при сериализации.
func (l *Logger) SetFinalFeedback(feedback FinalFeedback) {
	l.override = &feedback
}

// FinalFeedback возвращает зафиксированный отчет или, если его нет,
// выводит запасной из наблюдений.
func (l *Logger) FinalFeedback() FinalFeedback {
	if l.override != nil {
		return *l.override
	}
	return l.BuildFinalFeedback()
}

// ToDocument собирает сериализуемое представление интервью.
func (l *Logger) ToDocument() Document {
	return Document{
		TeamName:      l.TeamName,
		SessionID:     l.SessionID,
		Meta:          l.Meta,
		Turns:         l.Turns,
		FinalFeedback: l.FinalFeedback(),
	}
}
