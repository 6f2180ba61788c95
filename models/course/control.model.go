package course

import (
	"time"

	"gorm.io/gorm"
)

// Control session statuses.
const (
	SessionInProgress = "in_progress"
	SessionCompleted  = "completed"
)

// Control session phases. Phase is derived from visited questions, see
// ControlSession.Phase.
const (
	PhaseInitial = "initial"
	PhaseReview  = "review"
)

// ControlSession is the single live test session per (user, lesson). The
// question permutation is fixed at creation; answers and skipped sets are
// stored as JSON snapshots the same way attempts store theirs.
type ControlSession struct {
	gorm.Model
	UserID   uint   `json:"user_id" gorm:"index;not null;uniqueIndex:idx_control_session_user_lesson"`
	LessonID uint   `json:"lesson_id" gorm:"index;not null;uniqueIndex:idx_control_session_user_lesson"`
	Status   string `json:"status" gorm:"size:20;default:'in_progress'"`

	QuestionOrder    string    `json:"question_order" gorm:"type:text"` // JSON array of question IDs
	Answers          string    `json:"answers" gorm:"type:text"`        // JSON map question ID -> payload
	Skipped          string    `json:"skipped" gorm:"type:text"`        // JSON array of question IDs
	TimeLimitSeconds int       `json:"time_limit_seconds"`
	StartedAt        time.Time `json:"started_at"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// ControlAttempt is the immutable scored snapshot written when a session
// submits.
type ControlAttempt struct {
	gorm.Model
	UserID   uint   `json:"user_id" gorm:"index;not null"`
	LessonID uint   `json:"lesson_id" gorm:"index;not null"`
	Score    int    `json:"score"`
	MaxScore int    `json:"max_score"`
	Percent  int    `json:"percent"`
	Passed   bool   `json:"passed"`
	Answers  string `json:"answers" gorm:"type:text"` // JSON snapshot of submitted answers
}

// ControlLock is the post-failure cooldown for a control lesson. A nil
// LockedUntil (or one in the past) permits a new session.
type ControlLock struct {
	gorm.Model
	UserID         uint       `json:"user_id" gorm:"index;not null;uniqueIndex:idx_control_lock_user_lesson"`
	LessonID       uint       `json:"lesson_id" gorm:"index;not null;uniqueIndex:idx_control_lock_user_lesson"`
	LockedUntil    *time.Time `json:"locked_until"`
	FailedAttempts int        `json:"failed_attempts" gorm:"default:0"`
	LastScore      int        `json:"last_score" gorm:"default:0"`
}
