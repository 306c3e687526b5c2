package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu                  sync.RWMutex
	InterviewsStarted   int64
	InterviewsCompleted int64
	QuestionsAsked      int64
	ReportsGenerated    int64
	LLMCallsTotal       int64
	LLMCallsSuccessful  int64
	LastUpdateTime      time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{
		LastUpdateTime: time.Now(),
	}
}

func (m *Metrics) IncrementInterviewsStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InterviewsStarted++
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementInterviewsCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InterviewsCompleted++
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementQuestionsAsked() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QuestionsAsked++
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementReportsGenerated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReportsGenerated++
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementLLMCall(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LLMCallsTotal++
	if success {
		m.LLMCallsSuccessful++
	}
	m.LastUpdateTime = time.Now()
}

// GetSnapshot возвращает копию счетчиков, пригодную для сериализации.
func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		InterviewsStarted:   m.InterviewsStarted,
		InterviewsCompleted: m.InterviewsCompleted,
		QuestionsAsked:      m.QuestionsAsked,
		ReportsGenerated:    m.ReportsGenerated,
		LLMCallsTotal:       m.LLMCallsTotal,
		LLMCallsSuccessful:  m.LLMCallsSuccessful,
		LastUpdateTime:      m.LastUpdateTime,
	}
}

type Snapshot struct {
	InterviewsStarted   int64     `json:"interviews_started"`
	InterviewsCompleted int64     `json:"interviews_completed"`
	QuestionsAsked      int64     `json:"questions_asked"`
	ReportsGenerated    int64     `json:"reports_generated"`
	LLMCallsTotal       int64     `json:"llm_calls_total"`
	LLMCallsSuccessful  int64     `json:"llm_calls_successful"`
	LastUpdateTime      time.Time `json:"last_update_time"`
}
