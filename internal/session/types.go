package session

import "interview-coach/internal/score"

// Статусы наблюдений по темам.
const (
	StatusConfirmed            = "confirmed"
	StatusGap                  = "gap"
	StatusHallucinationSuspect = "hallucination_suspect"
)

// Meta — данные кандидата, задаются при старте интервью.
type Meta struct {
	Name       string `json:"name"`
	Position   string `json:"position"`
	Grade      string `json:"grade"`
	Experience string `json:"experience"`
}

// Turn — один состоявшийся обмен репликами. Неизменяем после добавления.
type Turn struct {
	TurnID              int          `json:"turn_id"`
	Timestamp           string       `json:"timestamp"`
	AgentVisibleMessage string       `json:"agent_visible_message"`
	UserMessage         string       `json:"user_message"`
	InternalThoughts    string       `json:"internal_thoughts"`
	InterviewerAction   string       `json:"interviewer_action"`
	Scores              *score.Score `json:"scores,omitempty"`
}

// HistoryEntry — пара вопрос/ответ для восстановления контекста в промптах.
// Показанный, но еще не отвеченный вопрос — запись с пустым ответом.
type HistoryEntry struct {
	Timestamp string `json:"timestamp"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
}

// Observation — одно суждение по теме; формируется только по содержательным
// ответам кандидата.
type Observation struct {
	Topic         string       `json:"topic"`
	Status        string       `json:"status"`
	Notes         string       `json:"notes"`
	CorrectAnswer string       `json:"correct_answer,omitempty"`
	Scores        *score.Score `json:"scores,omitempty"`
}

// Структура финального отчета о найме.

type Verdict struct {
	Grade           string `json:"grade"`
	Recommendation  string `json:"recommendation"`
	ConfidenceScore int    `json:"confidence_score"`
}

type TopicReview struct {
	Topic         string `json:"topic"`
	Status        string `json:"status"`
	Notes         string `json:"notes"`
	CorrectAnswer string `json:"correct_answer,omitempty"`
}

type TechnicalReview struct {
	Topics          []TopicReview `json:"topics"`
	ConfirmedSkills []string      `json:"confirmed_skills"`
	KnowledgeGaps   []string      `json:"knowledge_gaps"`
}

type SoftSkills struct {
	Clarity    string `json:"clarity"`
	Honesty    string `json:"honesty"`
	Engagement string `json:"engagement"`
}

type RoadmapItem struct {
	Topic     string   `json:"topic"`
	Resources []string `json:"resources"`
}

type FinalFeedback struct {
	Verdict         Verdict         `json:"verdict"`
	TechnicalReview TechnicalReview `json:"technical_review"`
	SoftSkills      SoftSkills      `json:"soft_skills"`
	PersonalRoadmap []RoadmapItem   `json:"personal_roadmap"`
}

// Document — сериализуемый лог одного интервью.
type Document struct {
	TeamName      string        `json:"team_name"`
	SessionID     string        `json:"session_id"`
	Meta          Meta          `json:"meta"`
	Turns         []Turn        `json:"turns"`
	FinalFeedback FinalFeedback `json:"final_feedback"`
}
