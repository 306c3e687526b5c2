package web

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"interview-coach/internal/agents"
	"interview-coach/internal/config"
	"interview-coach/internal/llm"
	"interview-coach/internal/metrics"
	"interview-coach/internal/orchestrator"
	"interview-coach/internal/rag"
	"interview-coach/internal/session"
)

// sessionTTL — время простоя, после которого веб-сессия закрывается
// фоновой очисткой.
const sessionTTL = 30 * time.Minute

// Message — одно сообщение интервью в ответе поллинга.
type Message struct {
	Type   string                 `json:"type"`
	Text   string                 `json:"text,omitempty"`
	Report *session.FinalFeedback `json:"report,omitempty"`
}

// webSession — одно интервью, идущее через поллинговый API. Горутина-насос
// перекладывает сообщения интервью в буфер pending, откуда их забирает
// /api/poll.
type webSession struct {
	id      string
	iv      *orchestrator.Interview
	logsDir string

	mu            sync.Mutex
	pending       []Message
	stopRequested bool
	completed     bool
	report        *session.FinalFeedback
	lastActivity  time.Time

	// inflight считает реплики, уже прошедшие проверку stopRequested, но еще
	// не переданные интервью; finish дожидается их перед остановкой.
	inflight sync.WaitGroup
}

// pump переносит сообщения интервью в буфер до закрытия исходящего канала.
// Сигнал остановки от Observer запускает завершение в отдельной горутине,
// чтобы насос продолжал разгружать канал до его закрытия.
func (s *webSession) pump() {
	for msg := range s.iv.Out() {
		if msg.Type == agents.OutStop {
			go s.finish()
			continue
		}
		s.mu.Lock()
		s.pending = append(s.pending, Message{Type: string(msg.Type), Text: msg.Text})
		s.lastActivity = time.Now()
		s.mu.Unlock()
	}
}

// finish завершает интервью ровно один раз: формирует отчет, кладет его в
// буфер и сохраняет лог. Повторные вызовы возвращают уже готовый отчет
// (или nil, пока первое завершение в процессе).
func (s *webSession) finish() *session.FinalFeedback {
	s.mu.Lock()
	if s.stopRequested {
		report := s.report
		s.mu.Unlock()
		return report
	}
	s.stopRequested = true
	s.mu.Unlock()

	s.inflight.Wait()
	report := s.iv.Finalize()

	s.mu.Lock()
	s.report = &report
	s.completed = true
	s.pending = append(s.pending,
		Message{Type: string(agents.OutFinalReport), Report: &report},
		Message{Type: string(agents.OutCompleted)},
	)
	s.lastActivity = time.Now()
	s.mu.Unlock()

	if path, err := s.iv.Save(s.logsDir); err != nil {
		log.Printf("Сессия %s: ошибка сохранения лога: %v", s.id, err)
	} else {
		log.Printf("Сессия %s: лог сохранен в %s", s.id, path)
	}
	return &report
}

// drain отдает накопленные сообщения и признак завершенности.
func (s *webSession) drain() ([]Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	messages := s.pending
	s.pending = nil
	s.lastActivity = time.Now()
	return messages, s.completed
}

// sendReply передает реплику кандидата; после запроса остановки реплики
// не принимаются. Сама передача идет вне мьютекса: буфер команд может быть
// полон, и ожидание места не должно блокировать поллинг сессии.
func (s *webSession) sendReply(text string) error {
	s.mu.Lock()
	if s.stopRequested {
		s.mu.Unlock()
		return fmt.Errorf("интервью завершено")
	}
	s.inflight.Add(1)
	s.lastActivity = time.Now()
	s.mu.Unlock()

	defer s.inflight.Done()
	s.iv.SendReply(text)
	return nil
}

func (s *webSession) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// SessionManager хранит активные веб-сессии и закрывает простаивающие.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*webSession

	runtime   *config.RuntimeConfig
	llm       llm.Client
	metrics   *metrics.Metrics
	retriever *rag.Retriever
	teamName  string
	logsDir   string
}

func NewSessionManager(runtime *config.RuntimeConfig, client llm.Client, m *metrics.Metrics, retriever *rag.Retriever, teamName, logsDir string) *SessionManager {
	return &SessionManager{
		sessions:  make(map[string]*webSession),
		runtime:   runtime,
		llm:       client,
		metrics:   m,
		retriever: retriever,
		teamName:  teamName,
		logsDir:   logsDir,
	}
}

// StartSession создает интервью для кандидата и возвращает идентификатор
// сессии. Идентификатор клиент передает в каждом последующем запросе.
func (m *SessionManager) StartSession(meta session.Meta) string {
	id := uuid.New().String()
	logger := session.NewLogger(m.teamName, meta, m.runtime.FinalFeedback, m.runtime.Interviewer.DefaultTopic, id)
	iv := orchestrator.New(m.runtime, m.llm, m.metrics, m.retriever, logger)

	s := &webSession{
		id:           id,
		iv:           iv,
		logsDir:      m.logsDir,
		lastActivity: time.Now(),
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	iv.Start()
	go s.pump()
	return id
}

func (m *SessionManager) Get(id string) (*webSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *SessionManager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// RunCleanup периодически закрывает простаивающие сессии до отмены
// контекста. Вызывается отдельной горутиной.
func (m *SessionManager) RunCleanup(stop <-chan struct{}, limiter *RateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.cleanupIdle()
			limiter.Cleanup()
		}
	}
}

func (m *SessionManager) cleanupIdle() {
	cutoff := time.Now().Add(-sessionTTL)

	m.mu.RLock()
	var expired []*webSession
	for _, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			expired = append(expired, s)
		}
	}
	m.mu.RUnlock()

	for _, s := range expired {
		log.Printf("Сессия %s: закрыта по таймауту простоя", s.id)
		s.finish()
		m.Remove(s.id)
	}
}
