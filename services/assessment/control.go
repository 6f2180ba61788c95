package assessment

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"log"
	mathrand "math/rand"
	"time"

	"gaduka/database"
	"gaduka/models"
	courseModels "gaduka/models/course"
	"gaduka/services/apperr"
	"gaduka/services/payments"

	"gorm.io/gorm"
)

// AnswerPayload carries a learner's answer to one control question. Exactly
// one of the fields is meaningful for a given question type.
type AnswerPayload struct {
	OptionIDs []uint `json:"option_ids,omitempty"` // single / multiple
	Text      string `json:"text,omitempty"`       // text questions
	Code      string `json:"code,omitempty"`       // practice-kind questions
	Language  string `json:"language,omitempty"`
}

// SessionState is the decoded view of a ControlSession handed to callers.
type SessionState struct {
	Session       *courseModels.ControlSession `json:"session"`
	Phase         string                       `json:"phase"`
	QuestionOrder []uint                       `json:"question_order"`
	Answers       map[uint]AnswerPayload       `json:"answers"`
	Skipped       []uint                       `json:"skipped"`
	SecondsLeft   int64                        `json:"seconds_left"`
}

// StartControlSession opens (or resumes) the single live session for the
// user and control lesson. A running unexpired session is returned as-is; an
// expired one is auto-submitted first; an active lock blocks the start.
func StartControlSession(db *gorm.DB, user *models.User, lessonID uint, runner Runner) (*SessionState, *courseModels.ControlAttempt, error) {
	lesson, err := loadControlLesson(db, lessonID)
	if err != nil {
		return nil, nil, err
	}
	if !payments.HasAccess(db, user, lesson.CourseID) {
		return nil, nil, apperr.ErrAccessDenied
	}
	if err := checkLock(db, user.ID, lessonID); err != nil {
		return nil, nil, err
	}

	var session courseModels.ControlSession
	findErr := db.Where("user_id = ? AND lesson_id = ?", user.ID, lessonID).First(&session).Error
	if findErr != nil && !errors.Is(findErr, gorm.ErrRecordNotFound) {
		return nil, nil, findErr
	}

	var autoAttempt *courseModels.ControlAttempt
	if findErr == nil && session.Status == courseModels.SessionInProgress {
		if time.Now().Before(session.ExpiresAt) {
			return decodeSession(&session), nil, nil
		}
		// Deadline passed while the learner was away: close the stale
		// session with whatever was answered. This must commit even if a
		// fresh lock then blocks the restart.
		err := db.Transaction(func(tx *gorm.DB) error {
			var stale courseModels.ControlSession
			if err := database.ForUpdate(tx).
				Where("user_id = ? AND lesson_id = ?", user.ID, lessonID).
				First(&stale).Error; err != nil {
				return err
			}
			if stale.Status != courseModels.SessionInProgress {
				// A competing submit closed the session first.
				return nil
			}
			attempt, err := finalizeSession(tx, &stale, lesson, runner)
			if err != nil {
				return err
			}
			autoAttempt = attempt
			return nil
		})
		if err != nil {
			return nil, nil, err
		}
		if err := checkLock(db, user.ID, lessonID); err != nil {
			return nil, autoAttempt, err
		}
	}

	var state *SessionState
	err = db.Transaction(func(tx *gorm.DB) error {
		fresh, err := initSession(tx, &session, user.ID, lesson)
		if err != nil {
			return err
		}
		state = fresh
		return nil
	})
	if err != nil {
		return nil, autoAttempt, err
	}
	return state, autoAttempt, nil
}

// AnswerQuestion records an answer while the session runs. If the deadline
// has passed the session is auto-submitted instead and the produced attempt
// is returned.
func AnswerQuestion(db *gorm.DB, user *models.User, lessonID, questionID uint, payload AnswerPayload, runner Runner) (*SessionState, *courseModels.ControlAttempt, error) {
	return withLiveSession(db, user, lessonID, runner, func(tx *gorm.DB, session *courseModels.ControlSession, state *SessionState) error {
		if !containsID(state.QuestionOrder, questionID) {
			return apperr.NewValidation("question_id", "question does not belong to this test")
		}
		state.Answers[questionID] = payload
		state.Skipped = removeID(state.Skipped, questionID)
		return persistSession(tx, session, state)
	})
}

// SkipQuestion defers a question to the review phase without answering it.
func SkipQuestion(db *gorm.DB, user *models.User, lessonID, questionID uint, runner Runner) (*SessionState, *courseModels.ControlAttempt, error) {
	return withLiveSession(db, user, lessonID, runner, func(tx *gorm.DB, session *courseModels.ControlSession, state *SessionState) error {
		if !containsID(state.QuestionOrder, questionID) {
			return apperr.NewValidation("question_id", "question does not belong to this test")
		}
		if _, answered := state.Answers[questionID]; !answered && !containsID(state.Skipped, questionID) {
			state.Skipped = append(state.Skipped, questionID)
		}
		return persistSession(tx, session, state)
	})
}

// SubmitControlSession scores the live session, writes the immutable attempt,
// updates the lock, and completes the session.
func SubmitControlSession(db *gorm.DB, user *models.User, lessonID uint, runner Runner) (*courseModels.ControlAttempt, error) {
	lesson, err := loadControlLesson(db, lessonID)
	if err != nil {
		return nil, err
	}

	var attempt *courseModels.ControlAttempt
	err = db.Transaction(func(tx *gorm.DB) error {
		var session courseModels.ControlSession
		if err := database.ForUpdate(tx).
			Where("user_id = ? AND lesson_id = ?", user.ID, lessonID).
			First(&session).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NewValidation("lesson_id", "no active test session")
			}
			return err
		}
		if session.Status == courseModels.SessionCompleted {
			// A competing auto-submit held the row lock first; this call
			// reads the committed state and exits as a no-op.
			return apperr.ErrAlreadyCompleted
		}

		a, err := finalizeSession(tx, &session, lesson, runner)
		if err != nil {
			return err
		}
		attempt = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return attempt, nil
}

// withLiveSession wraps the shared answer/skip plumbing: load the session,
// auto-submit if expired, otherwise apply fn and persist.
func withLiveSession(db *gorm.DB, user *models.User, lessonID uint, runner Runner,
	fn func(tx *gorm.DB, session *courseModels.ControlSession, state *SessionState) error,
) (*SessionState, *courseModels.ControlAttempt, error) {
	lesson, err := loadControlLesson(db, lessonID)
	if err != nil {
		return nil, nil, err
	}

	var state *SessionState
	var autoAttempt *courseModels.ControlAttempt

	err = db.Transaction(func(tx *gorm.DB) error {
		var session courseModels.ControlSession
		if err := database.ForUpdate(tx).
			Where("user_id = ? AND lesson_id = ?", user.ID, lessonID).
			First(&session).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NewValidation("lesson_id", "no active test session")
			}
			return err
		}
		if session.Status != courseModels.SessionInProgress {
			return apperr.NewValidation("lesson_id", "no active test session")
		}

		if !time.Now().Before(session.ExpiresAt) {
			attempt, err := finalizeSession(tx, &session, lesson, runner)
			if err != nil {
				return err
			}
			autoAttempt = attempt
			state = decodeSession(&session)
			return nil
		}

		s := decodeSession(&session)
		if err := fn(tx, &session, s); err != nil {
			return err
		}
		state = decodeSession(&session)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return state, autoAttempt, nil
}

// initSession (re)initializes the session row with a fresh deterministic
// permutation and a new deadline.
func initSession(tx *gorm.DB, session *courseModels.ControlSession, userID uint, lesson *courseModels.Lesson) (*SessionState, error) {
	now := time.Now()

	ids := make([]uint, len(lesson.Questions))
	for i, q := range lesson.Questions {
		ids[i] = q.ID
	}
	shuffleQuestions(ids, sessionSeed(userID, lesson.ID, now.Unix()))

	orderJSON, _ := json.Marshal(ids)
	session.UserID = userID
	session.LessonID = lesson.ID
	session.Status = courseModels.SessionInProgress
	session.QuestionOrder = string(orderJSON)
	session.Answers = "{}"
	session.Skipped = "[]"
	session.TimeLimitSeconds = lesson.ControlTimeLimitMinutes * 60
	session.StartedAt = now
	session.ExpiresAt = now.Add(time.Duration(session.TimeLimitSeconds) * time.Second)

	if err := tx.Save(session).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A competing start created the (user, lesson) session first.
			return nil, apperr.ErrConflict
		}
		return nil, err
	}
	return decodeSession(session), nil
}

// finalizeSession scores the current answers, writes the attempt, applies the
// lock policy, and completes the session.
func finalizeSession(tx *gorm.DB, session *courseModels.ControlSession, lesson *courseModels.Lesson, runner Runner) (*courseModels.ControlAttempt, error) {
	state := decodeSession(session)

	score, maxScore := scoreAnswers(lesson.Questions, state.Answers, runner)
	percent := scorePercent(score, maxScore)
	passed := percent >= lesson.ControlPassThreshold

	attempt := courseModels.ControlAttempt{
		UserID:   session.UserID,
		LessonID: session.LessonID,
		Score:    score,
		MaxScore: maxScore,
		Percent:  percent,
		Passed:   passed,
		Answers:  session.Answers,
	}
	if err := tx.Create(&attempt).Error; err != nil {
		return nil, err
	}

	if err := applyLockPolicy(tx, session.UserID, session.LessonID, lesson, percent, passed); err != nil {
		return nil, err
	}

	session.Status = courseModels.SessionCompleted
	if err := tx.Save(session).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

// applyLockPolicy upserts the (user, lesson) lock: passing clears the
// cooldown, failing starts a fresh one and counts the attempt.
func applyLockPolicy(tx *gorm.DB, userID, lessonID uint, lesson *courseModels.Lesson, percent int, passed bool) error {
	var lock courseModels.ControlLock
	err := tx.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&lock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		lock = courseModels.ControlLock{UserID: userID, LessonID: lessonID}
	} else if err != nil {
		return err
	}

	lock.LastScore = percent
	if passed {
		lock.LockedUntil = nil
	} else {
		lock.FailedAttempts++
		until := time.Now().Add(time.Duration(lesson.ControlLockMinutes) * time.Minute)
		lock.LockedUntil = &until
	}
	return tx.Save(&lock).Error
}

// checkLock fails with LessonLockedError while the cooldown runs.
func checkLock(db *gorm.DB, userID, lessonID uint) error {
	var lock courseModels.ControlLock
	err := db.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&lock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if lock.LockedUntil != nil && lock.LockedUntil.After(time.Now()) {
		remaining := int64(time.Until(*lock.LockedUntil).Seconds())
		if remaining < 1 {
			remaining = 1
		}
		return &apperr.LessonLockedError{SecondsRemaining: remaining}
	}
	return nil
}

func loadControlLesson(db *gorm.DB, lessonID uint) (*courseModels.Lesson, error) {
	var lesson courseModels.Lesson
	err := db.Preload("Questions.Options").First(&lesson, lessonID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewValidation("lesson_id", "lesson not found")
		}
		return nil, err
	}
	if lesson.LessonType != courseModels.LessonControl {
		return nil, apperr.NewValidation("lesson_id", "lesson is not a control test")
	}
	return &lesson, nil
}

// decodeSession unpacks the JSON snapshots and derives the phase: initial
// until every question was visited once, review afterwards.
func decodeSession(session *courseModels.ControlSession) *SessionState {
	state := &SessionState{
		Session: session,
		Answers: map[uint]AnswerPayload{},
	}
	if err := json.Unmarshal([]byte(session.QuestionOrder), &state.QuestionOrder); err != nil {
		log.Printf("Error decoding question order of session %d: %v", session.ID, err)
	}
	if session.Answers != "" {
		if err := json.Unmarshal([]byte(session.Answers), &state.Answers); err != nil {
			log.Printf("Error decoding answers of session %d: %v", session.ID, err)
		}
	}
	if session.Skipped != "" {
		if err := json.Unmarshal([]byte(session.Skipped), &state.Skipped); err != nil {
			log.Printf("Error decoding skipped set of session %d: %v", session.ID, err)
		}
	}

	state.Phase = courseModels.PhaseReview
	for _, id := range state.QuestionOrder {
		if _, answered := state.Answers[id]; answered {
			continue
		}
		if containsID(state.Skipped, id) {
			continue
		}
		state.Phase = courseModels.PhaseInitial
		break
	}

	if remaining := int64(time.Until(session.ExpiresAt).Seconds()); remaining > 0 {
		state.SecondsLeft = remaining
	}
	return state
}

func persistSession(tx *gorm.DB, session *courseModels.ControlSession, state *SessionState) error {
	answersJSON, err := json.Marshal(state.Answers)
	if err != nil {
		return err
	}
	skippedJSON, err := json.Marshal(state.Skipped)
	if err != nil {
		return err
	}
	session.Answers = string(answersJSON)
	session.Skipped = string(skippedJSON)
	return tx.Save(session).Error
}

// sessionSeed keys the permutation on (user, lesson, start time) so a resumed
// session always sees the same order.
func sessionSeed(userID, lessonID uint, epoch int64) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d:%d:%d", userID, lessonID, epoch)
	return int64(h.Sum64())
}

func shuffleQuestions(ids []uint, seed int64) {
	r := mathrand.New(mathrand.NewSource(seed))
	r.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []uint, id uint) []uint {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
