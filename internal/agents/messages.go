package agents

import (
	"interview-coach/internal/score"
	"interview-coach/internal/session"
)

// CommandKind — тип входящей команды интервьюеру.
type CommandKind int

const (
	CmdStart CommandKind = iota
	CmdReply
)

// Command — сообщение во входной канал интервьюера.
type Command struct {
	Kind      CommandKind
	UserReply string
}

// OutType — тип исходящего сообщения интервью.
type OutType string

const (
	OutVisible     OutType = "visible"
	OutInternal    OutType = "internal"
	OutStatus      OutType = "status"
	OutStop        OutType = "stop"
	OutFinalReport OutType = "final_report"
	OutCompleted   OutType = "completed"
	OutError       OutType = "error"
)

// OutMessage — сообщение интервью наружу: видимая реплика кандидату,
// внутренняя диагностика или служебный сигнал.
type OutMessage struct {
	Type   OutType                `json:"type"`
	Text   string                 `json:"text,omitempty"`
	Report *session.FinalFeedback `json:"data,omitempty"`
}

// Flags — структурированные признаки из анализа ответа.
type Flags struct {
	HallucinationSuspect bool `json:"hallucination_suspect"`
	OffTopic             bool `json:"off_topic"`
	StopIntent           bool `json:"stop_intent"`
	RoleReversal         bool `json:"role_reversal"`
}

// Assessment — ответ Observer интервьюеру по одной реплике кандидата.
type Assessment struct {
	InternalThoughts string
	Action           string
	Scores           *score.Score
	Flags            Flags
	Topic            string
	SuggestedTopic   string
	Status           string
	CorrectAnswer    string
	// SubQuestion — извлеченный встречный вопрос кандидата, если он есть.
	SubQuestion string
	// AnswerPortion — содержательная часть смешанной реплики
	// "ответ + встречный вопрос"; пустая строка означает чистую смену ролей.
	AnswerPortion string
}

// AnalyzeRequest — запрос на анализ одной реплики. Reply — одноразовый
// канал емкостью 1: каждый запрос несет собственный слот для ответа, поэтому
// параллельные запросы не могут перепутать результаты. Отправитель читает
// канал один раз и выбрасывает его.
type AnalyzeRequest struct {
	UserReply    string
	LastQuestion string
	Topic        string
	Reply        chan Assessment
}

// FinalizeRequest — запрос финального отчета менеджеру; тот же одноразовый
// протокол ответа.
type FinalizeRequest struct {
	Reply chan session.FinalFeedback
}
