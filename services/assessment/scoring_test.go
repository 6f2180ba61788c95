package assessment

import (
	"testing"

	courseModels "gaduka/models/course"

	"github.com/stretchr/testify/assert"
)

func option(id uint, correct bool) courseModels.ControlQuestionOption {
	opt := courseModels.ControlQuestionOption{IsCorrect: correct}
	opt.ID = id
	return opt
}

func TestScoreSingle(t *testing.T) {
	q := &courseModels.ControlQuestion{
		QuestionType: courseModels.QuestionSingle,
		Options:      []courseModels.ControlQuestionOption{option(1, true), option(2, false)},
	}

	assert.True(t, scoreQuestion(q, AnswerPayload{OptionIDs: []uint{1}}, nil))
	assert.False(t, scoreQuestion(q, AnswerPayload{OptionIDs: []uint{2}}, nil))
	assert.False(t, scoreQuestion(q, AnswerPayload{OptionIDs: []uint{1, 2}}, nil))
	assert.False(t, scoreQuestion(q, AnswerPayload{}, nil))
	assert.False(t, scoreQuestion(q, AnswerPayload{OptionIDs: []uint{99}}, nil))
}

func TestScoreMultiple(t *testing.T) {
	q := &courseModels.ControlQuestion{
		QuestionType: courseModels.QuestionMultiple,
		Options: []courseModels.ControlQuestionOption{
			option(1, true), option(2, true), option(3, false),
		},
	}

	assert.True(t, scoreQuestion(q, AnswerPayload{OptionIDs: []uint{1, 2}}, nil))
	assert.True(t, scoreQuestion(q, AnswerPayload{OptionIDs: []uint{2, 1}}, nil))
	// no partial credit
	assert.False(t, scoreQuestion(q, AnswerPayload{OptionIDs: []uint{1}}, nil))
	// extra selections fail the whole question
	assert.False(t, scoreQuestion(q, AnswerPayload{OptionIDs: []uint{1, 2, 3}}, nil))
	assert.False(t, scoreQuestion(q, AnswerPayload{}, nil))
}

func TestScoreMultipleNoCorrectOptions(t *testing.T) {
	q := &courseModels.ControlQuestion{
		QuestionType: courseModels.QuestionMultiple,
		Options:      []courseModels.ControlQuestionOption{option(1, false)},
	}
	// a broken question can never be answered correctly
	assert.False(t, scoreQuestion(q, AnswerPayload{}, nil))
	assert.False(t, scoreQuestion(q, AnswerPayload{OptionIDs: []uint{1}}, nil))
}

func TestScoreText(t *testing.T) {
	q := &courseModels.ControlQuestion{
		QuestionType:     courseModels.QuestionText,
		MinWords:         3,
		RequiredKeywords: `["горутина","канал"]`,
	}

	assert.True(t, scoreQuestion(q, AnswerPayload{Text: "Горутина пишет в канал"}, nil))
	// keyword missing
	assert.False(t, scoreQuestion(q, AnswerPayload{Text: "Горутина делает работу"}, nil))
	// too short
	assert.False(t, scoreQuestion(q, AnswerPayload{Text: "горутина канал"}, nil))
}

func TestScoreTextNoKeywords(t *testing.T) {
	q := &courseModels.ControlQuestion{
		QuestionType: courseModels.QuestionText,
		MinWords:     2,
	}
	assert.True(t, scoreQuestion(q, AnswerPayload{Text: "два слова"}, nil))
	assert.False(t, scoreQuestion(q, AnswerPayload{Text: "одно"}, nil))
}

func TestScorePracticeKind(t *testing.T) {
	q := &courseModels.ControlQuestion{
		QuestionType:   courseModels.QuestionText,
		QuestionKind:   courseModels.QuestionKindPractice,
		PracticeInput:  "2 2",
		PracticeOutput: "4",
	}

	assert.True(t, scoreQuestion(q, AnswerPayload{Code: "4"}, StubRunner{}))
	assert.False(t, scoreQuestion(q, AnswerPayload{Code: "5"}, StubRunner{}))
	// no runner or no code: never correct
	assert.False(t, scoreQuestion(q, AnswerPayload{Code: "4"}, nil))
	assert.False(t, scoreQuestion(q, AnswerPayload{}, StubRunner{}))
}

func TestScoreAnswersWeights(t *testing.T) {
	q1 := courseModels.ControlQuestion{
		QuestionType: courseModels.QuestionSingle,
		Weight:       2,
		Options:      []courseModels.ControlQuestionOption{option(1, true)},
	}
	q1.ID = 10
	q2 := courseModels.ControlQuestion{
		QuestionType: courseModels.QuestionSingle,
		Weight:       3,
		Options:      []courseModels.ControlQuestionOption{option(2, true)},
	}
	q2.ID = 20

	answers := map[uint]AnswerPayload{
		10: {OptionIDs: []uint{1}}, // correct, weight 2
		// q2 unanswered
	}
	score, maxScore := scoreAnswers([]courseModels.ControlQuestion{q1, q2}, answers, nil)
	assert.Equal(t, 2, score)
	assert.Equal(t, 5, maxScore)
}

func TestScorePercent(t *testing.T) {
	assert.Equal(t, 67, scorePercent(2, 3))
	assert.Equal(t, 33, scorePercent(1, 3))
	assert.Equal(t, 100, scorePercent(3, 3))
	assert.Equal(t, 0, scorePercent(0, 3))
	assert.Equal(t, 0, scorePercent(0, 0))
	// half rounds up
	assert.Equal(t, 13, scorePercent(1, 8))
	assert.Equal(t, 50, scorePercent(1, 2))
}
