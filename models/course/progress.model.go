package course

import (
	"time"

	"gorm.io/gorm"
)

// CourseProgress aggregates a user's advancement through a course. The set of
// completed lessons itself lives in LessonCompletion rows.
type CourseProgress struct {
	gorm.Model
	UserID        uint       `json:"user_id" gorm:"index;not null;uniqueIndex:idx_progress_user_course"`
	CourseID      uint       `json:"course_id" gorm:"index;not null;uniqueIndex:idx_progress_user_course"`
	StartedDate   time.Time  `json:"started_date"`
	CompletedDate *time.Time `json:"completed_date"`
	IsCompleted   bool       `json:"is_completed" gorm:"default:false"`
	Percent       int        `json:"percent" gorm:"default:0"`
}

// LessonCompletion marks a single lesson as done for a user.
type LessonCompletion struct {
	gorm.Model
	UserID   uint `json:"user_id" gorm:"index;not null;uniqueIndex:idx_completion_user_lesson"`
	CourseID uint `json:"course_id" gorm:"index;not null"`
	LessonID uint `json:"lesson_id" gorm:"index;not null;uniqueIndex:idx_completion_user_lesson"`
}
