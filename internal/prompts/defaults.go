package prompts

import "strings"

// Шаблоны по умолчанию. Используются, когда соответствующий ключ в
// config/runtime.yaml не задан. Плейсхолдеры вида {name} подставляются
// через Render.

const DefaultInterviewerSystemPrompt = `Ты опытный технический интервьюер. Ты ведешь собеседование вежливо и по делу: один конкретный вопрос за раз, без длинных вступлений. Отвечай на русском языке.`

const DefaultInitialQuestionTemplate = `Здравствуйте! Я проведу ваше техническое интервью на позицию {position}. Расскажите, пожалуйста, о вашем опыте: с какими технологиями вы работали и что делали на практике?`

const DefaultQuestionPromptTemplate = `Сгенерируй следующий вопрос для технического интервью.

ПОЗИЦИЯ: {position}, грейд {grade}.
ЦЕЛЕВАЯ ТЕМА: {topic}
ТРЕБУЕМОЕ ИЗМЕНЕНИЕ СЛОЖНОСТИ: {action} (increase — сложнее, decrease — проще, same — тот же уровень)

ПОСЛЕДНИЕ РЕПЛИКИ:
{history}

УЖЕ ЗАДАННЫЕ ВОПРОСЫ (не повторяй их):
{asked_questions}

Ответь строго одним JSON-объектом:
{"question": "текст вопроса", "reasoning": "краткое внутреннее обоснование выбора", "comment": "необязательный короткий комментарий кандидату: похвала за сильный ответ или подсказка при слабом, иначе пустая строка"}`

const DefaultRoleReversalPromptTemplate = `Кандидат на интервью задал тебе встречный вопрос: "{user_question}"

Ответь кратко (2-4 предложения), дружелюбно и по существу, после чего мягко верни разговор к интервью.`

const DefaultRephrasePromptTemplate = `Переформулируй вопрос интервью, сохранив его смысл, но другими словами: "{question}"

Ответь только текстом переформулированного вопроса.`

const DefaultRelevanceCheckPromptTemplate = `Кандидат на техническом интервью задал интервьюеру вопрос: "{user_question}"

Оцени, уместен ли этот вопрос в рамках собеседования. Ответь строго одним JSON-объектом: {"relevant": true или false, "reason": "краткое объяснение"}`

const DefaultObserverSystemPrompt = `Ты Observer — технический наблюдатель на интервью. Твоя задача — беспристрастно оценивать ответы кандидата и возвращать строго структурированный JSON без каких-либо пояснений вокруг него.`

const DefaultAnalysisPromptTemplate = `Проанализируй ответ кандидата на вопрос интервью.

Вопрос: {question}
Ответ: {answer}

Ответь строго одним JSON-объектом со всеми полями:
{
  "action": "increase | same | decrease",
  "scores": {"correctness": 0.0-1.0, "confidence": 0.0-1.0},
  "notes": "краткие заметки об ответе",
  "status": "confirmed | gap",
  "correct_answer": "правильный ответ, если обнаружен пробел, иначе пустая строка",
  "hallucination": false,
  "hallucination_reason": "",
  "off_topic": false,
  "off_topic_reason": "",
  "stop_intent": false,
  "stop_intent_reason": "",
  "role_reversal": false,
  "role_reversal_reason": "",
  "suggested_topic": "тема для следующего вопроса или пустая строка"
}

hallucination = true, если кандидат уверенно утверждает выдуманный или неверный факт.
stop_intent = true, если кандидат явно хочет завершить интервью.
role_reversal = true, если кандидат задает вопрос интервьюеру вместо ответа или вместе с ответом.`

const DefaultManagerSystemPrompt = `Ты Manager — нанимающий менеджер. На основе стенограммы интервью и наблюдений прими решение о найме. Отвечай строго одним JSON-объектом без текста вокруг.`

const DefaultReportPromptTemplate = `Прими решение о найме кандидата.

ПОЗИЦИЯ: {position}, заявленный грейд: {grade}, опыт: {experience}

СТЕНОГРАММА:
{turns}

НАБЛЮДЕНИЯ OBSERVER:
{observations}

{stats}

Ответь строго одним JSON-объектом:
{
  "verdict": {"grade": "Junior | Middle | Senior", "recommendation": "Hire | No Hire | Strong Hire", "confidence_score": 0-100},
  "technical_review": {
    "topics": [{"topic": "...", "status": "confirmed | gap | hallucination_suspect", "notes": "...", "correct_answer": "..."}],
    "confirmed_skills": ["..."],
    "knowledge_gaps": ["..."]
  },
  "soft_skills": {"clarity": "Good | Average | Poor", "honesty": "Clear answers | Admitted gaps | Unclear", "engagement": "High | Neutral | Low"},
  "personal_roadmap": [{"topic": "...", "resources": ["..."]}]
}`

// Render подставляет значения в плейсхолдеры вида {name}.
func Render(template string, vars map[string]string) string {
	if len(vars) == 0 {
		return template
	}
	pairs := make([]string, 0, len(vars)*2)
	for name, value := range vars {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
