package assessment

import (
	"encoding/json"
	"math"
	"strings"

	courseModels "gaduka/models/course"
)

// scoreAnswers grades every question of the lesson against the answer map.
// Unanswered questions score zero; partial credit is never awarded.
func scoreAnswers(questions []courseModels.ControlQuestion, answers map[uint]AnswerPayload, runner Runner) (score, maxScore int) {
	for i := range questions {
		q := &questions[i]
		maxScore += q.Weight

		payload, ok := answers[q.ID]
		if !ok {
			continue
		}
		if scoreQuestion(q, payload, runner) {
			score += q.Weight
		}
	}
	return score, maxScore
}

// scoreQuestion reports whether the answer earns the question's full weight.
func scoreQuestion(q *courseModels.ControlQuestion, payload AnswerPayload, runner Runner) bool {
	if q.QuestionKind == courseModels.QuestionKindPractice {
		return scorePractice(q, payload, runner)
	}

	switch q.QuestionType {
	case courseModels.QuestionSingle:
		return scoreSingle(q, payload)
	case courseModels.QuestionMultiple:
		return scoreMultiple(q, payload)
	case courseModels.QuestionText:
		return scoreText(q, payload)
	}
	return false
}

func scoreSingle(q *courseModels.ControlQuestion, payload AnswerPayload) bool {
	if len(payload.OptionIDs) != 1 {
		return false
	}
	for _, opt := range q.Options {
		if opt.ID == payload.OptionIDs[0] {
			return opt.IsCorrect
		}
	}
	return false
}

// scoreMultiple requires the answered set to equal the correct set exactly.
func scoreMultiple(q *courseModels.ControlQuestion, payload AnswerPayload) bool {
	correct := map[uint]bool{}
	for _, opt := range q.Options {
		if opt.IsCorrect {
			correct[opt.ID] = true
		}
	}
	if len(correct) == 0 {
		return false
	}

	selected := map[uint]bool{}
	for _, id := range payload.OptionIDs {
		selected[id] = true
	}
	if len(selected) != len(correct) {
		return false
	}
	for id := range correct {
		if !selected[id] {
			return false
		}
	}
	return true
}

// scoreText checks the word count and requires every keyword as a
// case-insensitive substring.
func scoreText(q *courseModels.ControlQuestion, payload AnswerPayload) bool {
	words := strings.Fields(payload.Text)
	if len(words) < q.MinWords {
		return false
	}

	var keywords []string
	if q.RequiredKeywords != "" {
		_ = json.Unmarshal([]byte(q.RequiredKeywords), &keywords)
	}
	lower := strings.ToLower(payload.Text)
	for _, kw := range keywords {
		if !strings.Contains(lower, strings.ToLower(kw)) {
			return false
		}
	}
	return true
}

// scorePractice runs the learner's code against the question's single
// input/output pair using the same runner contract as practice lessons.
func scorePractice(q *courseModels.ControlQuestion, payload AnswerPayload, runner Runner) bool {
	if runner == nil || payload.Code == "" {
		return false
	}
	language := payload.Language
	if language == "" {
		language = "python"
	}

	cases := []courseModels.LessonTestCase{{
		Input:          q.PracticeInput,
		ExpectedOutput: q.PracticeOutput,
	}}
	results, err := runner.Run(language, payload.Code, cases)
	if err != nil || len(results) == 0 {
		return false
	}
	return results[0].Passed
}

// scorePercent rounds half-up; zero questions score zero.
func scorePercent(score, maxScore int) int {
	if maxScore == 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(maxScore) * 100))
}
