package config

import "interview-coach/internal/policy"

// RuntimeConfig представляет конфигурацию интервью из config/runtime.yaml.
type RuntimeConfig struct {
	Policy        policy.Config       `yaml:"policy"`
	Interviewer   InterviewerConfig   `yaml:"interviewer"`
	Observer      ObserverConfig      `yaml:"observer"`
	Manager       ManagerConfig       `yaml:"manager"`
	FinalFeedback FinalFeedbackConfig `yaml:"final_feedback"`
}

// TopicRule связывает имя темы с ключевыми словами в тексте вопроса.
type TopicRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// InterviewerConfig содержит настройки роли интервьюера.
type InterviewerConfig struct {
	SystemPrompt                string      `yaml:"system_prompt"`
	InitialQuestionTemplate     string      `yaml:"initial_question_template"`
	QuestionPromptTemplate      string      `yaml:"question_prompt_template"`
	RoleReversalPromptTemplate  string      `yaml:"role_reversal_prompt_template"`
	RephrasePromptTemplate      string      `yaml:"rephrase_prompt_template"`
	RelevanceCheckTemplate      string      `yaml:"relevance_check_prompt_template"`
	IrrelevantQuestionReply     string      `yaml:"irrelevant_question_reply"`
	SubQuestionTransition       string      `yaml:"sub_question_transition"`
	BaseQuestions               []string    `yaml:"base_questions"`
	DefaultTopic                string      `yaml:"default_topic"`
	TopicMap                    []TopicRule `yaml:"topic_map"`
	MaxHistoryTurns             int         `yaml:"max_history_turns"`
	MaxQuestionRetries          int         `yaml:"max_question_retries"`
	RepeatAvoidanceNote         string      `yaml:"repeat_avoidance_note"`
	ObserverTimeoutSeconds      float64     `yaml:"observer_timeout_seconds"`
	LLMTimeoutSeconds           float64     `yaml:"llm_timeout_seconds"`
	UseLLMQuestions             *bool       `yaml:"use_llm_questions"`
	SpecificTopicCap            int         `yaml:"specific_topic_cap"`
	TopicResetNote              string      `yaml:"topic_reset_note"`
	ObserverTimeoutThoughts     string      `yaml:"observer_timeout_thoughts"`
	ObserverPendingMessage      string      `yaml:"observer_pending_message"`
	InterviewerInternalTemplate string      `yaml:"interviewer_internal_template"`
}

// LLMQuestionsEnabled трактует отсутствующий ключ use_llm_questions как true.
func (c InterviewerConfig) LLMQuestionsEnabled() bool {
	return c.UseLLMQuestions == nil || *c.UseLLMQuestions
}

// InternalNotes — шаблоны внутренних заметок Observer.
type InternalNotes struct {
	Hallucination string `yaml:"hallucination"`
	OffTopic      string `yaml:"off_topic"`
	RoleReversal  string `yaml:"role_reversal"`
}

// RAGConfig настраивает поиск опорных материалов.
type RAGConfig struct {
	Enabled      bool    `yaml:"enabled"`
	DataPath     string  `yaml:"data_path"`
	PersistPath  string  `yaml:"persist_path"`
	Collection   string  `yaml:"collection"`
	TopK         int     `yaml:"top_k"`
	MinRelevance float64 `yaml:"min_relevance"`
}

// ObserverConfig содержит настройки роли наблюдателя.
type ObserverConfig struct {
	AnalysisSystemPrompt       string        `yaml:"analysis_system_prompt"`
	AnalysisJSONPromptTemplate string        `yaml:"analysis_json_prompt_template"`
	InternalThoughtsPrefix     string        `yaml:"internal_thoughts_prefix"`
	InternalNotes              InternalNotes `yaml:"internal_notes"`
	AnalysisFallbackNote       string        `yaml:"analysis_fallback_note"`
	ObserverErrorNote          string        `yaml:"observer_error_note"`
	LLMCooldownNote            string        `yaml:"llm_cooldown_note"`
	DefaultTopic               string        `yaml:"default_topic"`
	LLMTimeoutSeconds          float64       `yaml:"llm_timeout_seconds"`
	LLMMaxRetries              int           `yaml:"llm_max_retries"`
	LLMCooldownSeconds         float64       `yaml:"llm_cooldown_seconds"`
	RAG                        RAGConfig     `yaml:"rag"`
}

// ManagerConfig содержит настройки роли менеджера.
type ManagerConfig struct {
	SystemPrompt         string  `yaml:"system_prompt"`
	ReportPromptTemplate string  `yaml:"report_prompt_template"`
	LLMTimeoutSeconds    float64 `yaml:"llm_timeout_seconds"`
	MaxTurns             int     `yaml:"max_turns"`
}

// FinalFeedbackConfig — пресеты для отчета, выводимого без участия LLM.
type FinalFeedbackConfig struct {
	Recommendation struct {
		NoGaps  string `yaml:"no_gaps"`
		HasGaps string `yaml:"has_gaps"`
	} `yaml:"recommendation"`
	Confidence struct {
		NoGaps  int `yaml:"no_gaps"`
		HasGaps int `yaml:"has_gaps"`
	} `yaml:"confidence"`
	SoftSkills struct {
		Clarity         string `yaml:"clarity"`
		HonestyNoGaps   string `yaml:"honesty_no_gaps"`
		HonestyWithGaps string `yaml:"honesty_with_gaps"`
		Engagement      string `yaml:"engagement"`
	} `yaml:"soft_skills"`
	RoadmapResourcesDefault []string `yaml:"roadmap_resources_default"`
}
