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
	"interview-coach/internal/policy"
	"interview-coach/internal/prompts"
	"interview-coach/internal/rag"
	"interview-coach/internal/score"
	"interview-coach/internal/session"
)

// Observer оценивает реплики кандидата: эвристический скоринг, структурное
// суждение LLM и разбор встречных вопросов. Работает одной горутиной над
// каналом запросов и не трогает журнал — состояние интервью принадлежит
// интервьюеру.
type Observer struct {
	cfg       config.ObserverConfig
	policy    *policy.Policy
	llm       llm.Client
	retriever *rag.Retriever
	inbox     <-chan AnalyzeRequest

	// cooldownUntil читает и пишет только горутина Run.
	cooldownUntil time.Time
}

func NewObserver(cfg config.ObserverConfig, pol *policy.Policy, client llm.Client, retriever *rag.Retriever, inbox <-chan AnalyzeRequest) *Observer {
	return &Observer{
		cfg:       cfg,
		policy:    pol,
		llm:       client,
		retriever: retriever,
		inbox:     inbox,
	}
}

// Run обрабатывает запросы до закрытия входного канала. На каждый запрос
// пишется ровно один ответ в его одноразовый канал.
func (o *Observer) Run() {
	for req := range o.inbox {
		req.Reply <- o.analyze(req)
	}
}

// structuredAnalysis — схема структурного суждения LLM.
type structuredAnalysis struct {
	Action string `json:"action"`
	Scores struct {
		Correctness float64 `json:"correctness"`
		Confidence  float64 `json:"confidence"`
	} `json:"scores"`
	Notes               string `json:"notes"`
	Status              string `json:"status"`
	CorrectAnswer       string `json:"correct_answer"`
	Hallucination       bool   `json:"hallucination"`
	HallucinationReason string `json:"hallucination_reason"`
	OffTopic            bool   `json:"off_topic"`
	OffTopicReason      string `json:"off_topic_reason"`
	StopIntent          bool   `json:"stop_intent"`
	StopIntentReason    string `json:"stop_intent_reason"`
	RoleReversal        bool   `json:"role_reversal"`
	RoleReversalReason  string `json:"role_reversal_reason"`
	SuggestedTopic      string `json:"suggested_topic"`
}

// analyze всегда возвращает пригодную оценку: паника внутри анализа
// превращается в деградированный результат action=same.
func (o *Observer) analyze(req AnalyzeRequest) (result Assessment) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		topic = o.cfg.DefaultTopic
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("Observer: паника при анализе: %v", r)
			result = Assessment{
				InternalThoughts: fmt.Sprintf("%s%s %v", o.cfg.InternalThoughtsPrefix, o.cfg.ObserverErrorNote, r),
				Action:           policy.ActionSame,
				Topic:            topic,
				SuggestedTopic:   topic,
				Status:           session.StatusConfirmed,
			}
		}
	}()

	scores := score.Answer(req.UserReply, req.LastQuestion)
	analysis, analysisNote := o.getLLMAnalysis(req.LastQuestion, req.UserReply)

	// Желание завершить интервью перекрывает любой дальнейший анализ.
	if analysis != nil && analysis.StopIntent {
		thoughts := "Кандидат хочет завершить интервью."
		if analysis.StopIntentReason != "" {
			thoughts += " " + analysis.StopIntentReason
		}
		return Assessment{
			InternalThoughts: o.cfg.InternalThoughtsPrefix + thoughts,
			Action:           policy.ActionStop,
			Flags:            Flags{StopIntent: true},
			Topic:            topic,
			SuggestedTopic:   topic,
			Status:           session.StatusConfirmed,
		}
	}

	roleReversal := false
	if analysis != nil {
		roleReversal = analysis.RoleReversal
	} else {
		roleReversal = o.policy.DetectRoleReversal(req.UserReply)
	}

	subQuestion := ""
	answerPortion := ""
	if roleReversal {
		split := policy.SplitReply(req.UserReply)
		subQuestion = split.Question
		if split.Answer == "" {
			// Чистая смена ролей: содержательной части нет, оценивать нечего.
			return Assessment{
				InternalThoughts: o.cfg.InternalThoughtsPrefix + o.cfg.InternalNotes.RoleReversal,
				Action:           policy.ActionSame,
				Flags:            Flags{RoleReversal: true},
				Topic:            topic,
				SuggestedTopic:   topic,
				Status:           session.StatusConfirmed,
				SubQuestion:      subQuestion,
			}
		}
		answerPortion = split.Answer
		// Эвристика пересчитывается только по содержательной части.
		scores = score.Answer(answerPortion, req.LastQuestion)
	}

	var notes []string
	hallucination := false
	offTopic := false
	action, actionReason := o.policy.ActionFromScore(scores.Correctness, scores.Confidence)
	status := session.StatusConfirmed
	correctAnswer := ""
	suggested := topic

	if analysis != nil {
		// Суждение LLM главнее эвристики по корректности и уверенности;
		// verbosity и uses_examples остаются эвристическими.
		action = analysis.Action
		scores.Correctness = clamp01(analysis.Scores.Correctness)
		scores.Confidence = clamp01(analysis.Scores.Confidence)
		status = analysis.Status
		correctAnswer = analysis.CorrectAnswer
		if analysis.Notes != "" {
			actionReason = analysis.Notes
		}
		hallucination = analysis.Hallucination
		offTopic = analysis.OffTopic
		if hallucination {
			notes = append(notes, prompts.Render(o.cfg.InternalNotes.Hallucination,
				map[string]string{"reason": analysis.HallucinationReason}))
		}
		if offTopic {
			note := o.cfg.InternalNotes.OffTopic
			if analysis.OffTopicReason != "" {
				note = strings.TrimSpace(note + " " + analysis.OffTopicReason)
			}
			notes = append(notes, note)
		}
		if s := strings.TrimSpace(analysis.SuggestedTopic); s != "" {
			suggested = s
		}
	} else if o.cfg.AnalysisFallbackNote != "" {
		notes = append(notes, prompts.Render(o.cfg.AnalysisFallbackNote,
			map[string]string{"error": analysisNote}))
	}

	// Подозрение на галлюцинацию важнее ухода от темы.
	if hallucination {
		action = policy.ActionCorrectAndContinue
		status = session.StatusHallucinationSuspect
	} else if offTopic {
		action = policy.ActionRedirect
	}

	if actionReason != "" {
		notes = append(notes, actionReason)
	}
	if suggested != topic {
		notes = append(notes, "Рекомендую спросить про: "+suggested+".")
	}

	return Assessment{
		InternalThoughts: o.cfg.InternalThoughtsPrefix + strings.TrimSpace(strings.Join(notes, " ")),
		Action:           action,
		Scores:           &scores,
		Flags: Flags{
			HallucinationSuspect: hallucination,
			OffTopic:             offTopic,
			RoleReversal:         roleReversal,
		},
		Topic:          topic,
		SuggestedTopic: suggested,
		Status:         status,
		CorrectAnswer:  correctAnswer,
		SubQuestion:    subQuestion,
		AnswerPortion:  answerPortion,
	}
}

// getLLMAnalysis возвращает структурное суждение или nil и причину его
// отсутствия. Серия неудач включает cooldown, в течение которого LLM не
// вызывается вовсе.
func (o *Observer) getLLMAnalysis(question, answer string) (*structuredAnalysis, string) {
	if time.Now().Before(o.cooldownUntil) {
		note := o.cfg.LLMCooldownNote
		if note == "" {
			note = "LLM временно отключен после серии ошибок"
		}
		return nil, note
	}

	timeout := secondsToDuration(o.cfg.LLMTimeoutSeconds, 20*time.Second)

	reference := ""
	if o.retriever.IsAvailable() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		refs := o.retriever.Search(ctx, answer, o.cfg.RAG.TopK, float32(o.cfg.RAG.MinRelevance))
		cancel()
		reference = rag.FormatReferenceMaterials(refs)
	}

	prompt := prompts.Render(o.cfg.AnalysisJSONPromptTemplate, map[string]string{
		"question": question,
		"answer":   answer,
	})
	if reference != "" {
		prompt = reference + "\n" + prompt
	}

	var response string
	var lastErr error
	for attempt := 0; attempt <= o.cfg.LLMMaxRetries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		response, lastErr = o.llm.Chat(ctx, o.cfg.AnalysisSystemPrompt, prompt, 0.2)
		cancel()
		if lastErr == nil {
			break
		}
		log.Printf("Observer: ошибка LLM (попытка %d/%d): %v", attempt+1, o.cfg.LLMMaxRetries+1, lastErr)
		if attempt < o.cfg.LLMMaxRetries {
			time.Sleep(time.Duration(1<<attempt) * time.Second)
		}
	}
	if lastErr != nil {
		o.cooldownUntil = time.Now().Add(secondsToDuration(o.cfg.LLMCooldownSeconds, 30*time.Second))
		return nil, lastErr.Error()
	}

	raw, err := llm.ExtractJSONObject(response)
	if err != nil {
		return nil, fmt.Sprintf("нераспознаваемый ответ LLM: %v", err)
	}
	var analysis structuredAnalysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return nil, fmt.Sprintf("невалидная схема ответа LLM: %v", err)
	}

	switch analysis.Action {
	case policy.ActionIncrease, policy.ActionSame, policy.ActionDecrease:
	default:
		// Недопустимое действие обесценивает суждение целиком.
		return nil, fmt.Sprintf("недопустимое действие от LLM: %q", analysis.Action)
	}
	switch analysis.Status {
	case session.StatusConfirmed, session.StatusGap, session.StatusHallucinationSuspect:
	default:
		analysis.Status = session.StatusConfirmed
	}
	analysis.SuggestedTopic = strings.TrimSpace(analysis.SuggestedTopic)
	return &analysis, ""
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func secondsToDuration(seconds float64, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds * float64(time.Second))
}
