package course

import "gorm.io/gorm"

// Question types.
const (
	QuestionSingle   = "single"
	QuestionMultiple = "multiple"
	QuestionText     = "text"
)

// Question kinds.
const (
	QuestionKindTheory   = "theory"
	QuestionKindPractice = "practice"
)

// ControlQuestion belongs exclusively to a control lesson.
type ControlQuestion struct {
	gorm.Model
	LessonID     uint   `json:"lesson_id" gorm:"index;not null"`
	QuestionType string `json:"question_type" gorm:"size:32;default:'single'"`
	QuestionKind string `json:"question_kind" gorm:"size:32;default:'theory'"`
	Prompt       string `json:"prompt" gorm:"type:text"`
	Order        int    `json:"order" gorm:"default:0"`
	Weight       int    `json:"weight" gorm:"default:1"`

	// text questions
	MinWords         int    `json:"min_words" gorm:"default:0"`
	RequiredKeywords string `json:"required_keywords" gorm:"type:text"` // JSON array of strings

	// practice-kind questions
	PracticeInput  string `json:"practice_input" gorm:"type:text"`
	PracticeOutput string `json:"practice_output" gorm:"type:text"`

	Options []ControlQuestionOption `json:"options,omitempty" gorm:"foreignKey:QuestionID"`
}

// ControlQuestionOption is a selectable answer for single/multiple questions.
type ControlQuestionOption struct {
	gorm.Model
	QuestionID uint   `json:"question_id" gorm:"index;not null"`
	Text       string `json:"text" gorm:"type:text"`
	IsCorrect  bool   `json:"is_correct" gorm:"default:false"`
	Order      int    `json:"order" gorm:"default:0"`
}
