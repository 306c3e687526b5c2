package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"interview-coach/internal/prompts"
)

// Load загружает конфигурацию интервью из YAML файла, дополняет значениями
// по умолчанию и валидирует.
func Load(filename string) (*RuntimeConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", filename, err)
	}

	var cfg RuntimeConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга YAML: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка валидации конфигурации: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *RuntimeConfig) {
	in := &cfg.Interviewer
	if in.SystemPrompt == "" {
		in.SystemPrompt = prompts.DefaultInterviewerSystemPrompt
	}
	if in.InitialQuestionTemplate == "" {
		in.InitialQuestionTemplate = prompts.DefaultInitialQuestionTemplate
	}
	if in.QuestionPromptTemplate == "" {
		in.QuestionPromptTemplate = prompts.DefaultQuestionPromptTemplate
	}
	if in.RoleReversalPromptTemplate == "" {
		in.RoleReversalPromptTemplate = prompts.DefaultRoleReversalPromptTemplate
	}
	if in.RephrasePromptTemplate == "" {
		in.RephrasePromptTemplate = prompts.DefaultRephrasePromptTemplate
	}
	if in.RelevanceCheckTemplate == "" {
		in.RelevanceCheckTemplate = prompts.DefaultRelevanceCheckPromptTemplate
	}
	if in.DefaultTopic == "" {
		in.DefaultTopic = "General"
	}
	if in.MaxHistoryTurns <= 0 {
		in.MaxHistoryTurns = 4
	}
	if in.MaxQuestionRetries < 0 {
		in.MaxQuestionRetries = 0
	}
	if in.ObserverTimeoutSeconds <= 0 {
		in.ObserverTimeoutSeconds = 30
	}
	if in.LLMTimeoutSeconds <= 0 {
		in.LLMTimeoutSeconds = 20
	}
	if in.SpecificTopicCap <= 0 {
		in.SpecificTopicCap = 3
	}
	if in.ObserverTimeoutThoughts == "" {
		in.ObserverTimeoutThoughts = "[Observer]: не ответил вовремя, продолжаем без оценки."
	}

	ob := &cfg.Observer
	if ob.AnalysisSystemPrompt == "" {
		ob.AnalysisSystemPrompt = prompts.DefaultObserverSystemPrompt
	}
	if ob.AnalysisJSONPromptTemplate == "" {
		ob.AnalysisJSONPromptTemplate = prompts.DefaultAnalysisPromptTemplate
	}
	if ob.InternalThoughtsPrefix == "" {
		ob.InternalThoughtsPrefix = "[Observer]: "
	}
	if ob.InternalNotes.Hallucination == "" {
		ob.InternalNotes.Hallucination = "Подозрение на галлюцинацию: {reason}"
	}
	if ob.InternalNotes.OffTopic == "" {
		ob.InternalNotes.OffTopic = "Ответ не по теме."
	}
	if ob.InternalNotes.RoleReversal == "" {
		ob.InternalNotes.RoleReversal = "Кандидат задал встречный вопрос."
	}
	if ob.ObserverErrorNote == "" {
		ob.ObserverErrorNote = "Ошибка Observer."
	}
	if ob.DefaultTopic == "" {
		ob.DefaultTopic = in.DefaultTopic
	}
	if ob.LLMTimeoutSeconds <= 0 {
		ob.LLMTimeoutSeconds = 20
	}
	if ob.LLMMaxRetries < 0 {
		ob.LLMMaxRetries = 0
	}
	if ob.LLMCooldownSeconds <= 0 {
		ob.LLMCooldownSeconds = 30
	}
	if ob.RAG.TopK <= 0 {
		ob.RAG.TopK = 5
	}
	if ob.RAG.MinRelevance <= 0 {
		ob.RAG.MinRelevance = 0.6
	}
	if ob.RAG.Collection == "" {
		ob.RAG.Collection = "interview-qa"
	}

	mg := &cfg.Manager
	if mg.SystemPrompt == "" {
		mg.SystemPrompt = prompts.DefaultManagerSystemPrompt
	}
	if mg.ReportPromptTemplate == "" {
		mg.ReportPromptTemplate = prompts.DefaultReportPromptTemplate
	}
	if mg.LLMTimeoutSeconds <= 0 {
		mg.LLMTimeoutSeconds = 25
	}
	if mg.MaxTurns <= 0 {
		mg.MaxTurns = 12
	}
}

func validateConfig(cfg *RuntimeConfig) error {
	if len(cfg.Interviewer.BaseQuestions) == 0 {
		return fmt.Errorf("interviewer.base_questions не может быть пустым: это страховочный список вопросов")
	}

	if cfg.Policy.RoleReversalReply == "" {
		return fmt.Errorf("policy.role_reversal_reply обязателен")
	}
	for _, action := range []string{"increase", "same", "decrease"} {
		if cfg.Policy.ActionReasons[action] == "" {
			return fmt.Errorf("policy.action_reasons.%s обязателен", action)
		}
	}

	ff := &cfg.FinalFeedback
	if ff.Recommendation.NoGaps == "" || ff.Recommendation.HasGaps == "" {
		return fmt.Errorf("final_feedback.recommendation должен содержать no_gaps и has_gaps")
	}
	if ff.SoftSkills.Clarity == "" || ff.SoftSkills.HonestyNoGaps == "" ||
		ff.SoftSkills.HonestyWithGaps == "" || ff.SoftSkills.Engagement == "" {
		return fmt.Errorf("final_feedback.soft_skills заполнен не полностью")
	}

	for i, rule := range cfg.Interviewer.TopicMap {
		if rule.Name == "" {
			return fmt.Errorf("interviewer.topic_map[%d] должен иметь name", i)
		}
		if len(rule.Keywords) == 0 {
			return fmt.Errorf("interviewer.topic_map[%d] (%s) должен иметь keywords", i, rule.Name)
		}
	}

	return nil
}
