package course

import (
	"time"

	"gorm.io/gorm"
)

// Course lifecycle statuses.
const (
	StatusDraft             = "draft"
	StatusPendingAuto       = "pending_auto"
	StatusAutoRejected      = "auto_rejected"
	StatusPendingModeration = "pending_moderation"
	StatusRejected          = "rejected"
	StatusApproved          = "approved"
)

// Lesson types.
const (
	LessonLecture  = "lecture"
	LessonPractice = "practice"
	LessonControl  = "control"
)

// Practice modes.
const (
	PracticeModeCode = "code"
	PracticeModeQuiz = "quiz"
)

// CourseCategory groups courses in the catalog.
type CourseCategory struct {
	gorm.Model
	Name        string `json:"name" gorm:"size:120;unique;not null"`
	Description string `json:"description" gorm:"type:text"`
	Order       int    `json:"order" gorm:"default:0"`
}

// Course is an author-created course moving through the moderation lifecycle.
// CreatorID is nil for platform-seeded courses.
type Course struct {
	gorm.Model
	Title            string     `json:"title"`
	Description      string     `json:"description" gorm:"type:text"`
	Price            float64    `json:"price" gorm:"default:0"` // RUB
	CreatorID        *uint      `json:"creator_id" gorm:"index"`
	CategoryID       *uint      `json:"category_id" gorm:"index"`
	Level            string     `json:"level" gorm:"size:50;default:'Начальный'"`
	DurationWeeks    int        `json:"duration_weeks" gorm:"default:0"`
	HasPractice      bool       `json:"has_practice" gorm:"default:false"`
	Status           string     `json:"status" gorm:"size:32;default:'draft'"`
	IsActive         bool       `json:"is_active" gorm:"default:true"`
	AutoRejectReason string     `json:"auto_reject_reason" gorm:"type:text"`
	ModeratorComment string     `json:"moderator_comment" gorm:"type:text"`
	SubmittedAt      *time.Time `json:"submitted_at"`
	ApprovedAt       *time.Time `json:"approved_at"`
	PayoutMethod     string     `json:"payout_method" gorm:"size:50"`
	PayoutDetails    string     `json:"payout_details"`
	IsDeleted        bool       `gorm:"default:false"`

	Sections []CourseSection `json:"sections,omitempty" gorm:"foreignKey:CourseID"`
	Lessons  []Lesson        `json:"lessons,omitempty" gorm:"foreignKey:CourseID"`
}

// CourseSection orders lessons inside a course.
type CourseSection struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	Title       string `json:"title" gorm:"size:200"`
	Description string `json:"description" gorm:"type:text"`
	Order       int    `json:"order" gorm:"default:0"`

	Lessons []Lesson `json:"lessons,omitempty" gorm:"foreignKey:SectionID"`
}

// Lesson is a single course unit: lecture text, a coding/quiz practice, or a
// timed control test.
type Lesson struct {
	gorm.Model
	CourseID  uint  `json:"course_id" gorm:"index;not null"`
	SectionID *uint `json:"section_id" gorm:"index"` // nil after its section is deleted

	Title      string `json:"title" gorm:"size:200"`
	Content    string `json:"content" gorm:"type:text"`
	Order      int    `json:"order" gorm:"default:0"`
	LessonType string `json:"lesson_type" gorm:"size:32;default:'lecture'"`

	PracticeMode         string `json:"practice_mode" gorm:"size:32;default:'code'"`
	PracticeCodeTemplate string `json:"practice_code_template" gorm:"type:text"`
	PracticeSolution     string `json:"practice_solution" gorm:"type:text"`
	PracticeTask         string `json:"practice_task" gorm:"type:text"`

	ControlTimeLimitMinutes int `json:"control_time_limit_minutes" gorm:"default:30"`
	ControlPassThreshold    int `json:"control_pass_threshold" gorm:"default:70"` // percent
	ControlLockMinutes      int `json:"control_lock_minutes" gorm:"default:10"`

	TestCases []LessonTestCase  `json:"test_cases,omitempty" gorm:"foreignKey:LessonID"`
	Questions []ControlQuestion `json:"questions,omitempty" gorm:"foreignKey:LessonID"`
}

// LessonTestCase feeds the code practice runner: stdin in, expected stdout out.
type LessonTestCase struct {
	gorm.Model
	LessonID       uint   `json:"lesson_id" gorm:"index;not null"`
	Input          string `json:"input" gorm:"type:text"`
	ExpectedOutput string `json:"expected_output" gorm:"type:text"`
	Order          int    `json:"order" gorm:"default:0"`
}
