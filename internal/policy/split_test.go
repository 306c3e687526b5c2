package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitReplyPureQuestion(t *testing.T) {
	res := SplitReply("А какой стек у вас в команде?")

	assert.Empty(t, res.Answer)
	assert.Equal(t, "А какой стек у вас в команде?", res.Question)
}

func TestSplitReplyByDiscourseMarker(t *testing.T) {
	res := SplitReply("Индексы ускоряют чтение и замедляют запись. Кстати, какой у вас стек?")

	assert.Equal(t, "Индексы ускоряют чтение и замедляют запись.", res.Answer)
	assert.Equal(t, "Кстати, какой у вас стек?", res.Question)
}

func TestSplitReplyByInterrogative(t *testing.T) {
	res := SplitReply("Процесс имеет свое адресное пространство. Почему вы спрашиваете об этом?")

	assert.Equal(t, "Процесс имеет свое адресное пространство.", res.Answer)
	assert.Equal(t, "Почему вы спрашиваете об этом?", res.Question)
}

func TestSplitReplyBySentenceBoundary(t *testing.T) {
	// Последнее предложение — вопрос, но без вопросительного слова в начале.
	res := SplitReply("Я использую Docker в каждом проекте. Это считается правильным ответом?")

	assert.Equal(t, "Я использую Docker в каждом проекте.", res.Answer)
	assert.Equal(t, "Это считается правильным ответом?", res.Question)
}

func TestSplitReplyShortAnswerTreatedAsQuestion(t *testing.T) {
	// "Да." короче порога содержательности, вся реплика — встречный вопрос.
	res := SplitReply("Да. Какой у вас стек?")

	assert.Empty(t, res.Answer)
	assert.Equal(t, "Да. Какой у вас стек?", res.Question)
}

func TestSplitReplyEmpty(t *testing.T) {
	res := SplitReply("   ")

	assert.Empty(t, res.Answer)
	assert.Empty(t, res.Question)
}
