package orchestrator

import (
	"path/filepath"

	"interview-coach/internal/agents"
	"interview-coach/internal/config"
	"interview-coach/internal/llm"
	"interview-coach/internal/metrics"
	"interview-coach/internal/policy"
	"interview-coach/internal/rag"
	"interview-coach/internal/session"
)

// Interview связывает три роли каналами и владеет их жизненным циклом.
// Каждая роль — одна горутина над своим входным каналом; завершение ролей —
// закрытие их каналов.
type Interview struct {
	metrics *metrics.Metrics
	Session *session.Logger

	commands      chan agents.Command
	observerInbox chan agents.AnalyzeRequest
	managerInbox  chan agents.FinalizeRequest
	out           chan agents.OutMessage

	observer    *agents.Observer
	interviewer *agents.Interviewer
	manager     *agents.Manager

	interviewerDone chan struct{}
	observerDone    chan struct{}
	managerDone     chan struct{}
}

func New(cfg *config.RuntimeConfig, client llm.Client, m *metrics.Metrics, retriever *rag.Retriever, logger *session.Logger) *Interview {
	pol := policy.New(cfg.Policy)

	iv := &Interview{
		metrics:         m,
		Session:         logger,
		commands:        make(chan agents.Command, 16),
		observerInbox:   make(chan agents.AnalyzeRequest),
		managerInbox:    make(chan agents.FinalizeRequest),
		out:             make(chan agents.OutMessage, 64),
		interviewerDone: make(chan struct{}),
		observerDone:    make(chan struct{}),
		managerDone:     make(chan struct{}),
	}

	iv.observer = agents.NewObserver(cfg.Observer, pol, client, retriever, iv.observerInbox)
	iv.interviewer = agents.NewInterviewer(cfg.Interviewer, pol, client, m, logger, iv.commands, iv.observerInbox, iv.out)
	iv.manager = agents.NewManager(cfg.Manager, client, logger, iv.managerInbox)
	return iv
}

// Start запускает горутины ролей и инициирует первый вопрос.
func (iv *Interview) Start() {
	go func() {
		iv.observer.Run()
		close(iv.observerDone)
	}()
	go func() {
		iv.interviewer.Run()
		close(iv.interviewerDone)
	}()
	go func() {
		iv.manager.Run()
		close(iv.managerDone)
	}()

	iv.metrics.IncrementInterviewsStarted()
	iv.commands <- agents.Command{Kind: agents.CmdStart}
}

// Out — поток сообщений интервью; закрывается вместе с интервьюером.
func (iv *Interview) Out() <-chan agents.OutMessage {
	return iv.out
}

// SendReply передает реплику кандидата интервьюеру.
func (iv *Interview) SendReply(text string) {
	iv.commands <- agents.Command{Kind: agents.CmdReply, UserReply: text}
}

// Finalize останавливает роли и запрашивает финальный отчет. Вызывать можно
// один раз; отправлять реплики после вызова нельзя. Порядок остановки
// важен: сначала интервьюер (он пишет в канал Observer), затем Observer,
// затем менеджер после выдачи отчета.
func (iv *Interview) Finalize() session.FinalFeedback {
	close(iv.commands)
	<-iv.interviewerDone
	close(iv.observerInbox)
	<-iv.observerDone

	reply := make(chan session.FinalFeedback, 1)
	iv.managerInbox <- agents.FinalizeRequest{Reply: reply}
	report := <-reply
	close(iv.managerInbox)
	<-iv.managerDone

	iv.Session.SetFinalFeedback(report)
	iv.metrics.IncrementReportsGenerated()
	iv.metrics.IncrementInterviewsCompleted()
	return report
}

// Save записывает лог интервью в директорию логов и возвращает путь к файлу.
func (iv *Interview) Save(logsDir string) (string, error) {
	path := filepath.Join(logsDir, session.LogFileName(iv.Session.SessionID))
	if err := iv.Session.Save(path); err != nil {
		return "", err
	}
	return path, nil
}
