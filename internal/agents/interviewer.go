package agents

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"interview-coach/internal/config"
	"interview-coach/internal/llm"
	"interview-coach/internal/metrics"
	"interview-coach/internal/policy"
	"interview-coach/internal/prompts"
	"interview-coach/internal/session"
)

// Interviewer ведет диалог с кандидатом: задает вопросы, отправляет реплики
// на анализ Observer и единолично пишет в журнал интервью. Работает одной
// горутиной над каналом команд.
type Interviewer struct {
	cfg      config.InterviewerConfig
	policy   *policy.Policy
	llm      llm.Client
	metrics  *metrics.Metrics
	session  *session.Logger
	inbox    <-chan Command
	observer chan<- AnalyzeRequest
	out      chan<- OutMessage

	questionIndex      int
	specificTopicCount int
	currentTopic       string
}

func NewInterviewer(
	cfg config.InterviewerConfig,
	pol *policy.Policy,
	client llm.Client,
	m *metrics.Metrics,
	logger *session.Logger,
	inbox <-chan Command,
	observer chan<- AnalyzeRequest,
	out chan<- OutMessage,
) *Interviewer {
	return &Interviewer{
		cfg:          cfg,
		policy:       pol,
		llm:          client,
		metrics:      m,
		session:      logger,
		inbox:        inbox,
		observer:     observer,
		out:          out,
		currentTopic: cfg.DefaultTopic,
	}
}

// Run обрабатывает команды до закрытия входного канала, после чего закрывает
// исходящий канал — это сигнал завершения для потребителя сообщений.
func (i *Interviewer) Run() {
	defer close(i.out)
	for cmd := range i.inbox {
		switch cmd.Kind {
		case CmdStart:
			i.handleStart()
		case CmdReply:
			i.handleReply(cmd.UserReply)
		}
	}
}

func (i *Interviewer) handleStart() {
	question := prompts.Render(i.cfg.InitialQuestionTemplate, map[string]string{
		"position": positionOrDefault(i.session.Meta.Position),
	})
	i.metrics.IncrementQuestionsAsked()
	i.out <- OutMessage{Type: OutVisible, Text: question}
	i.session.AddHistory(question, "")
}

func (i *Interviewer) handleReply(userReply string) {
	lastQuestion := ""
	if n := len(i.session.History); n > 0 {
		lastQuestion = i.session.History[n-1].Question
	}

	reply := make(chan Assessment, 1)
	i.observer <- AnalyzeRequest{
		UserReply:    userReply,
		LastQuestion: lastQuestion,
		Topic:        i.topicFromQuestion(lastQuestion),
		Reply:        reply,
	}
	if i.cfg.ObserverPendingMessage != "" {
		i.out <- OutMessage{Type: OutStatus, Text: i.cfg.ObserverPendingMessage}
	}

	var asmt Assessment
	select {
	case asmt = <-reply:
	case <-time.After(secondsToDuration(i.cfg.ObserverTimeoutSeconds, 30*time.Second)):
		// Observer не успел: интервью продолжается с нейтральной оценкой.
		// Запоздалый ответ ляжет в буферизованный канал и будет выброшен
		// вместе с ним.
		asmt = Assessment{
			InternalThoughts: i.cfg.ObserverTimeoutThoughts,
			Action:           policy.ActionSame,
			Topic:            i.cfg.DefaultTopic,
			SuggestedTopic:   i.cfg.DefaultTopic,
			Status:           session.StatusConfirmed,
		}
	}

	if asmt.Flags.StopIntent {
		i.emitInternal(asmt.InternalThoughts)
		i.out <- OutMessage{Type: OutStop}
		return
	}

	// Чистая смена ролей: отвечаем на встречный вопрос и повторяем свой,
	// не продвигая состояние интервью.
	if asmt.Flags.RoleReversal && asmt.AnswerPortion == "" {
		i.emitInternal(asmt.InternalThoughts)
		subQuestion := asmt.SubQuestion
		if subQuestion == "" {
			subQuestion = userReply
		}
		i.out <- OutMessage{Type: OutVisible, Text: i.answerSubQuestion(subQuestion)}
		if lastQuestion != "" {
			rephrased := i.rephraseQuestion(lastQuestion)
			i.out <- OutMessage{Type: OutVisible, Text: rephrased}
			i.session.AddHistory(rephrased, "")
		}
		return
	}

	userMessage := userReply
	if asmt.Flags.RoleReversal && asmt.AnswerPortion != "" {
		userMessage = asmt.AnswerPortion
	}

	i.emitInternal(asmt.InternalThoughts + " (action=" + asmt.Action + ")")

	topic := i.resolveTopic(asmt)
	result := i.generateQuestion(asmt.Action, topic)

	interviewerThoughts := result.Reasoning
	if interviewerThoughts == "" && i.cfg.InterviewerInternalTemplate != "" {
		interviewerThoughts = prompts.Render(i.cfg.InterviewerInternalTemplate, map[string]string{
			"action": asmt.Action,
			"topic":  topic,
		})
	}
	if interviewerThoughts != "" {
		i.emitInternal(interviewerThoughts)
	}

	i.session.LogTurn(lastQuestion, userMessage,
		strings.TrimSpace(asmt.InternalThoughts+" "+interviewerThoughts),
		asmt.Action, asmt.Scores)
	i.session.AddHistory(lastQuestion, userMessage)
	i.recordObservation(asmt)

	// Смешанная реплика: сначала ответ на встречный вопрос, затем следующий
	// вопрос интервью.
	if asmt.Flags.RoleReversal && asmt.SubQuestion != "" {
		subAnswer := i.answerSubQuestion(asmt.SubQuestion)
		if i.cfg.SubQuestionTransition != "" {
			subAnswer = subAnswer + "\n\n" + i.cfg.SubQuestionTransition
		}
		i.out <- OutMessage{Type: OutVisible, Text: subAnswer}
	}

	text := result.Question
	if result.Comment != "" {
		text = result.Comment + "\n\n" + result.Question
	}
	i.metrics.IncrementQuestionsAsked()
	i.out <- OutMessage{Type: OutVisible, Text: text}
	i.session.AddHistory(result.Question, "")
}

func (i *Interviewer) emitInternal(text string) {
	if strings.TrimSpace(text) != "" {
		i.out <- OutMessage{Type: OutInternal, Text: text}
	}
}

// resolveTopic ведет счетчик подряд идущих специфичных тем и принудительно
// возвращает разговор к базовой теме при достижении лимита.
func (i *Interviewer) resolveTopic(asmt Assessment) string {
	topic := strings.TrimSpace(asmt.SuggestedTopic)
	if topic == "" {
		topic = asmt.Topic
	}
	if topic == "" {
		topic = i.cfg.DefaultTopic
	}

	if topic != i.cfg.DefaultTopic {
		i.specificTopicCount++
		if i.cfg.SpecificTopicCap > 0 && i.specificTopicCount >= i.cfg.SpecificTopicCap {
			topic = i.cfg.DefaultTopic
			i.specificTopicCount = 0
			if i.cfg.TopicResetNote != "" {
				i.emitInternal(i.cfg.TopicResetNote)
			}
		}
	} else {
		i.specificTopicCount = 0
	}
	i.currentTopic = topic
	return topic
}

func (i *Interviewer) recordObservation(asmt Assessment) {
	status := asmt.Status
	if status == "" {
		status = session.StatusConfirmed
	}
	if asmt.Flags.HallucinationSuspect {
		status = session.StatusHallucinationSuspect
	} else if status == session.StatusConfirmed && asmt.Scores != nil && asmt.Scores.Correctness < 0.4 {
		status = session.StatusGap
	}
	i.session.AddObservation(session.Observation{
		Topic:         asmt.Topic,
		Status:        status,
		Notes:         asmt.InternalThoughts,
		CorrectAnswer: asmt.CorrectAnswer,
		Scores:        asmt.Scores,
	})
}

// topicFromQuestion определяет тему по ключевым словам в тексте вопроса.
func (i *Interviewer) topicFromQuestion(question string) string {
	lower := strings.ToLower(question)
	for _, rule := range i.cfg.TopicMap {
		for _, keyword := range rule.Keywords {
			if keyword != "" && strings.Contains(lower, strings.ToLower(keyword)) {
				return rule.Name
			}
		}
	}
	return i.cfg.DefaultTopic
}

// questionResult — структурный ответ LLM на запрос следующего вопроса.
type questionResult struct {
	Question  string `json:"question"`
	Reasoning string `json:"reasoning"`
	Comment   string `json:"comment"`
}

// generateQuestion запрашивает следующий вопрос у LLM с повторами при
// повторении уже заданных формулировок; любой сбой заканчивается выбором
// статического вопроса по кругу.
func (i *Interviewer) generateQuestion(action, topic string) questionResult {
	if !i.cfg.LLMQuestionsEnabled() {
		return questionResult{Question: i.pickQuestion()}
	}

	basePrompt := prompts.Render(i.cfg.QuestionPromptTemplate, map[string]string{
		"position":        positionOrDefault(i.session.Meta.Position),
		"grade":           gradeOrDefault(i.session.Meta.Grade),
		"topic":           topic,
		"action":          action,
		"history":         i.formatHistory(),
		"asked_questions": i.formatAskedQuestions(),
	})
	timeout := secondsToDuration(i.cfg.LLMTimeoutSeconds, 20*time.Second)

	for attempt := 0; attempt <= i.cfg.MaxQuestionRetries; attempt++ {
		prompt := basePrompt
		if attempt > 0 && i.cfg.RepeatAvoidanceNote != "" {
			prompt += "\n\n" + i.cfg.RepeatAvoidanceNote
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		response, err := i.llm.Chat(ctx, i.cfg.SystemPrompt, prompt, 0.7)
		cancel()
		if err != nil {
			log.Printf("Interviewer: ошибка генерации вопроса: %v", err)
			return questionResult{Question: i.pickQuestion()}
		}

		candidate := strings.TrimSpace(response)
		if candidate == "" {
			continue
		}
		if raw, jerr := llm.ExtractJSONObject(candidate); jerr == nil {
			var result questionResult
			if json.Unmarshal(raw, &result) == nil {
				result.Question = strings.TrimSpace(result.Question)
				if result.Question != "" && !i.isRepeat(result.Question) {
					return result
				}
				continue
			}
		}
		// LLM ответил без JSON — принимаем сырой текст как вопрос.
		if !i.isRepeat(candidate) {
			return questionResult{Question: candidate}
		}
	}
	return questionResult{Question: i.pickQuestion()}
}

// pickQuestion выбирает статический вопрос по кругу, минуя уже заданные
// формулировки, пока есть незаданные.
func (i *Interviewer) pickQuestion() string {
	questions := i.cfg.BaseQuestions
	if len(questions) == 0 {
		return ""
	}
	for range questions {
		question := questions[i.questionIndex%len(questions)]
		i.questionIndex++
		if !i.isRepeat(question) {
			return question
		}
	}
	// Весь список уже задан: повтор — осознанный крайний случай, лучше
	// повторить вопрос, чем замолчать.
	question := questions[i.questionIndex%len(questions)]
	i.questionIndex++
	return question
}

func (i *Interviewer) isRepeat(question string) bool {
	normalized := normalizeQuestion(question)
	for _, entry := range i.session.History {
		if normalizeQuestion(entry.Question) == normalized {
			return true
		}
	}
	return false
}

func normalizeQuestion(question string) string {
	return strings.ToLower(strings.TrimSpace(question))
}

func (i *Interviewer) formatHistory() string {
	history := i.session.History
	if max := i.cfg.MaxHistoryTurns; max > 0 && len(history) > max {
		history = history[len(history)-max:]
	}
	if len(history) == 0 {
		return "(пока пусто)"
	}
	var b strings.Builder
	for _, entry := range history {
		b.WriteString("Q: " + entry.Question + "\n")
		if entry.Answer != "" {
			b.WriteString("A: " + entry.Answer + "\n")
		}
	}
	return strings.TrimSpace(b.String())
}

func (i *Interviewer) formatAskedQuestions() string {
	if len(i.session.History) == 0 {
		return "(пока нет)"
	}
	var b strings.Builder
	for _, entry := range i.session.History {
		if entry.Question != "" {
			b.WriteString("- " + entry.Question + "\n")
		}
	}
	return strings.TrimSpace(b.String())
}

// answerSubQuestion отвечает на встречный вопрос кандидата. Сначала проверяет
// уместность вопроса, затем генерирует ответ; любой сбой дает заготовленную
// реплику из политики.
func (i *Interviewer) answerSubQuestion(question string) string {
	timeout := secondsToDuration(i.cfg.LLMTimeoutSeconds, 20*time.Second)

	if i.cfg.RelevanceCheckTemplate != "" {
		prompt := prompts.Render(i.cfg.RelevanceCheckTemplate, map[string]string{
			"user_question": question,
		})
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		response, err := i.llm.Chat(ctx, i.cfg.SystemPrompt, prompt, 0.0)
		cancel()
		if err == nil {
			if raw, jerr := llm.ExtractJSONObject(response); jerr == nil {
				var check struct {
					Relevant bool `json:"relevant"`
				}
				if json.Unmarshal(raw, &check) == nil && !check.Relevant {
					if i.cfg.IrrelevantQuestionReply != "" {
						return i.cfg.IrrelevantQuestionReply
					}
					return i.policy.RoleReversalReply()
				}
			}
		}
	}

	prompt := prompts.Render(i.cfg.RoleReversalPromptTemplate, map[string]string{
		"user_question": question,
	})
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	response, err := i.llm.Chat(ctx, i.cfg.SystemPrompt, prompt, 0.7)
	cancel()
	if err != nil {
		log.Printf("Interviewer: ошибка ответа на встречный вопрос: %v", err)
		return i.policy.RoleReversalReply()
	}
	if answer := strings.TrimSpace(response); answer != "" {
		return answer
	}
	return i.policy.RoleReversalReply()
}

// rephraseQuestion переформулирует вопрос; при сбое возвращает исходный текст.
func (i *Interviewer) rephraseQuestion(question string) string {
	prompt := prompts.Render(i.cfg.RephrasePromptTemplate, map[string]string{
		"question": question,
	})
	ctx, cancel := context.WithTimeout(context.Background(), secondsToDuration(i.cfg.LLMTimeoutSeconds, 20*time.Second))
	response, err := i.llm.Chat(ctx, i.cfg.SystemPrompt, prompt, 0.7)
	cancel()
	if err != nil {
		return question
	}
	if rephrased := strings.TrimSpace(response); rephrased != "" {
		return rephrased
	}
	return question
}

func positionOrDefault(position string) string {
	if strings.TrimSpace(position) == "" {
		return "разработчик"
	}
	return position
}

func gradeOrDefault(grade string) string {
	if strings.TrimSpace(grade) == "" {
		return "Junior"
	}
	return grade
}
