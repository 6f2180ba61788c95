// Package screening filters course content for prohibited language before it
// reaches human moderation. The scan is a pure function over the course tree:
// no I/O, no state, only a list of human-readable reasons.
package screening

import (
	"fmt"
	"strings"

	courseModels "gaduka/models/course"
)

// bannedStems are matched case-insensitively as substrings; word boundaries
// are not required.
var bannedStems = []string{
	"бляд", "сука", "хуй", "ебан", "пидор",
	"fuck", "shit", "bitch", "cunt", "asshole",
}

// containsBanned reports whether any of the given fields contains a banned
// stem.
func containsBanned(fields ...string) bool {
	for _, f := range fields {
		if f == "" {
			continue
		}
		lower := strings.ToLower(f)
		for _, stem := range bannedStems {
			if strings.Contains(lower, stem) {
				return true
			}
		}
	}
	return false
}

// ScanCourse walks the course tree and returns one reason per offending
// entity, in tree order: course title, course description, sections, then
// lessons with their test cases, questions and options. An empty result means
// the course is clean.
func ScanCourse(c *courseModels.Course) []string {
	var reasons []string

	if containsBanned(c.Title) {
		reasons = append(reasons, fmt.Sprintf("Запрещенные слова в названии курса: %s", c.Title))
	}
	if containsBanned(c.Description) {
		reasons = append(reasons, "Запрещенные слова в описании курса")
	}

	for i := range c.Sections {
		s := &c.Sections[i]
		if containsBanned(s.Title, s.Description) {
			reasons = append(reasons, fmt.Sprintf("Запрещенные слова в разделе: %s", s.Title))
		}
	}

	for i := range c.Lessons {
		l := &c.Lessons[i]
		if reason, ok := scanLesson(l); ok {
			reasons = append(reasons, reason)
		}
	}

	return reasons
}

// scanLesson checks a lesson's own fields, its test cases, and its control
// questions, stopping at the first hit.
func scanLesson(l *courseModels.Lesson) (string, bool) {
	if containsBanned(l.Title, l.Content, l.PracticeTask, l.PracticeCodeTemplate) {
		return fmt.Sprintf("Запрещенные слова в уроке: %s", l.Title), true
	}

	for i := range l.TestCases {
		tc := &l.TestCases[i]
		if containsBanned(tc.Input, tc.ExpectedOutput) {
			return fmt.Sprintf("Запрещенные слова в тестах урока: %s", l.Title), true
		}
	}

	for i := range l.Questions {
		q := &l.Questions[i]
		if containsBanned(q.Prompt, q.PracticeInput, q.PracticeOutput) {
			return fmt.Sprintf("Запрещенные слова в вопросе урока: %s", l.Title), true
		}
		for j := range q.Options {
			if containsBanned(q.Options[j].Text) {
				return fmt.Sprintf("Запрещенные слова в вариантах ответа урока: %s", l.Title), true
			}
		}
	}

	return "", false
}
