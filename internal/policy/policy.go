package policy

import "strings"

// Действия интервьюера по изменению сложности следующего вопроса.
const (
	ActionIncrease           = "increase"
	ActionSame               = "same"
	ActionDecrease           = "decrease"
	ActionStop               = "stop"
	ActionCorrectAndContinue = "correct_and_continue"
	ActionRedirect           = "redirect"
)

// Config содержит настраиваемые тексты политики.
type Config struct {
	RoleReversalReply string            `yaml:"role_reversal_reply"`
	ActionReasons     map[string]string `yaml:"action_reasons"`
}

// Policy отображает оценки в действия и распознает смену ролей по простой
// эвристике. Все методы чистые и тотальные.
type Policy struct {
	cfg Config
}

func New(cfg Config) *Policy {
	return &Policy{cfg: cfg}
}

// ActionFromScore возвращает действие и готовое обоснование из конфигурации.
func (p *Policy) ActionFromScore(correctness, confidence float64) (string, string) {
	reasons := p.cfg.ActionReasons
	if correctness > 0.8 && confidence > 0.7 {
		return ActionIncrease, reasons[ActionIncrease]
	}
	if correctness < 0.4 {
		return ActionDecrease, reasons[ActionDecrease]
	}
	return ActionSame, reasons[ActionSame]
}

// DetectRoleReversal — запасная эвристика на случай, когда структурированный
// флаг от LLM недоступен.
func (p *Policy) DetectRoleReversal(text string) bool {
	return strings.Contains(text, "?")
}

// RoleReversalReply возвращает заготовленный ответ на встречный вопрос.
func (p *Policy) RoleReversalReply() string {
	return p.cfg.RoleReversalReply
}
