// Package lifecycle drives a course through moderation:
// draft → pending_auto → (auto_rejected | pending_moderation) → (rejected | approved).
// The automatic content scan runs synchronously inside the submit transaction
// so its verdict commits atomically with the state change.
package lifecycle

import (
	"errors"
	"strings"
	"time"

	"gaduka/database"
	"gaduka/models"
	courseModels "gaduka/models/course"
	"gaduka/services/apperr"
	"gaduka/services/screening"

	"gorm.io/gorm"
)

// submittable lists the states a creator may submit from.
var submittable = map[string]bool{
	courseModels.StatusDraft:        true,
	courseModels.StatusAutoRejected: true,
	courseModels.StatusRejected:     true,
}

// SubmitForReview moves the creator's course into the moderation pipeline.
// The screener verdict decides between pending_moderation and auto_rejected.
func SubmitForReview(db *gorm.DB, user *models.User, courseID uint) (*courseModels.Course, error) {
	var result *courseModels.Course

	err := db.Transaction(func(tx *gorm.DB) error {
		course, err := loadCourseTree(tx, courseID)
		if err != nil {
			return err
		}

		if course.CreatorID == nil || *course.CreatorID != user.ID {
			return apperr.ErrAccessDenied
		}
		if !submittable[course.Status] {
			return apperr.ErrInvalidTransition
		}

		now := time.Now()
		course.Status = courseModels.StatusPendingAuto
		course.SubmittedAt = &now

		reasons := screening.ScanCourse(course)
		if len(reasons) == 0 {
			course.Status = courseModels.StatusPendingModeration
			course.AutoRejectReason = ""
		} else {
			course.Status = courseModels.StatusAutoRejected
			course.AutoRejectReason = strings.Join(reasons, "; ")
		}

		updates := map[string]interface{}{
			"status":             course.Status,
			"submitted_at":       course.SubmittedAt,
			"auto_reject_reason": course.AutoRejectReason,
		}
		if err := tx.Model(&courseModels.Course{}).Where("id = ?", course.ID).Updates(updates).Error; err != nil {
			return err
		}

		result = course
		return nil
	})

	return result, err
}

// Approve publishes a course from pending_moderation. Re-approving an already
// approved course is an idempotent no-op and writes no second log entry.
func Approve(db *gorm.DB, moderator *models.User, courseID uint) (*courseModels.Course, error) {
	if !moderator.IsModerator() {
		return nil, apperr.ErrAccessDenied
	}

	var result *courseModels.Course
	err := db.Transaction(func(tx *gorm.DB) error {
		course, err := lockCourse(tx, courseID)
		if err != nil {
			return err
		}

		if course.Status == courseModels.StatusApproved {
			result = course
			return nil
		}
		if course.Status != courseModels.StatusPendingModeration {
			return apperr.ErrInvalidTransition
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":            courseModels.StatusApproved,
			"approved_at":       &now,
			"moderator_comment": "",
		}
		if err := tx.Model(&courseModels.Course{}).Where("id = ?", course.ID).Updates(updates).Error; err != nil {
			return err
		}

		log := courseModels.CourseModerationLog{
			CourseID:    course.ID,
			ModeratorID: moderator.ID,
			Decision:    courseModels.DecisionApprove,
		}
		if err := tx.Create(&log).Error; err != nil {
			return err
		}

		course.Status = courseModels.StatusApproved
		course.ApprovedAt = &now
		course.ModeratorComment = ""
		result = course
		return nil
	})

	return result, err
}

// Reject returns a course to its author with the moderator's comment.
func Reject(db *gorm.DB, moderator *models.User, courseID uint, comment string) (*courseModels.Course, error) {
	if !moderator.IsModerator() {
		return nil, apperr.ErrAccessDenied
	}

	var result *courseModels.Course
	err := db.Transaction(func(tx *gorm.DB) error {
		course, err := lockCourse(tx, courseID)
		if err != nil {
			return err
		}

		if course.Status != courseModels.StatusPendingModeration {
			return apperr.ErrInvalidTransition
		}

		updates := map[string]interface{}{
			"status":            courseModels.StatusRejected,
			"moderator_comment": comment,
		}
		if err := tx.Model(&courseModels.Course{}).Where("id = ?", course.ID).Updates(updates).Error; err != nil {
			return err
		}

		log := courseModels.CourseModerationLog{
			CourseID:    course.ID,
			ModeratorID: moderator.ID,
			Decision:    courseModels.DecisionReject,
			Comment:     comment,
		}
		if err := tx.Create(&log).Error; err != nil {
			return err
		}

		course.Status = courseModels.StatusRejected
		course.ModeratorComment = comment
		result = course
		return nil
	})

	return result, err
}

// ReturnToDraft lets an administrator pull an approved course back for
// editing. Until resubmitted the course drops out of the catalog.
func ReturnToDraft(db *gorm.DB, admin *models.User, courseID uint) (*courseModels.Course, error) {
	if !admin.IsAdministrator() {
		return nil, apperr.ErrAccessDenied
	}

	var result *courseModels.Course
	err := db.Transaction(func(tx *gorm.DB) error {
		course, err := lockCourse(tx, courseID)
		if err != nil {
			return err
		}

		if course.Status != courseModels.StatusApproved {
			return apperr.ErrInvalidTransition
		}

		updates := map[string]interface{}{
			"status":      courseModels.StatusDraft,
			"approved_at": nil,
		}
		if err := tx.Model(&courseModels.Course{}).Where("id = ?", course.ID).Updates(updates).Error; err != nil {
			return err
		}

		log := courseModels.CourseModerationLog{
			CourseID:    course.ID,
			ModeratorID: admin.ID,
			Decision:    courseModels.DecisionReturnDraft,
		}
		if err := tx.Create(&log).Error; err != nil {
			return err
		}

		course.Status = courseModels.StatusDraft
		course.ApprovedAt = nil
		result = course
		return nil
	})

	return result, err
}

// lockCourse fetches the course row for a state transition under an exclusive
// row lock. Competing moderator decisions queue on the lock; the loser re-reads
// the committed status and hits the guard.
func lockCourse(tx *gorm.DB, courseID uint) (*courseModels.Course, error) {
	var course courseModels.Course
	if err := database.ForUpdate(tx).Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrCourseUnavailable
		}
		return nil, err
	}
	return &course, nil
}

// loadCourseTree fetches the course with everything the screener scans. The
// course row itself is locked so a competing submit serializes behind this one.
func loadCourseTree(tx *gorm.DB, courseID uint) (*courseModels.Course, error) {
	var course courseModels.Course
	err := database.ForUpdate(tx).
		Preload("Sections").
		Preload("Lessons.TestCases").
		Preload("Lessons.Questions.Options").
		Where("id = ? AND is_deleted = ?", courseID, false).
		First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrCourseUnavailable
		}
		return nil, err
	}
	return &course, nil
}
