package assessment

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"gaduka/models"
	courseModels "gaduka/models/course"
	"gaduka/services/apperr"
	"gaduka/services/payments"

	"gorm.io/gorm"
)

// CompleteLesson marks a lesson done for the user. When the last lesson of
// the course completes, the progress row is finalized and the course
// certificate (if one exists) is issued in the same transaction.
func CompleteLesson(db *gorm.DB, user *models.User, lessonID uint) (*courseModels.CourseProgress, error) {
	var lesson courseModels.Lesson
	if err := db.First(&lesson, lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewValidation("lesson_id", "lesson not found")
		}
		return nil, err
	}

	if !payments.HasAccess(db, user, lesson.CourseID) {
		return nil, apperr.ErrAccessDenied
	}

	var result *courseModels.CourseProgress
	err := db.Transaction(func(tx *gorm.DB) error {
		progress, err := getOrCreateProgress(tx, user.ID, lesson.CourseID)
		if err != nil {
			return err
		}

		var existing courseModels.LessonCompletion
		findErr := tx.Where("user_id = ? AND lesson_id = ?", user.ID, lessonID).First(&existing).Error
		if findErr == nil {
			// Re-completing a finished lesson changes nothing.
			result = progress
			return nil
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		completion := courseModels.LessonCompletion{
			UserID:   user.ID,
			CourseID: lesson.CourseID,
			LessonID: lessonID,
		}
		if err := tx.Create(&completion).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.ErrConflict
			}
			return err
		}

		if err := recomputeProgress(tx, progress); err != nil {
			return err
		}

		if progress.IsCompleted {
			if err := issueCertificate(tx, user.ID, lesson.CourseID); err != nil {
				return err
			}
		}

		result = progress
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func getOrCreateProgress(tx *gorm.DB, userID, courseID uint) (*courseModels.CourseProgress, error) {
	var progress courseModels.CourseProgress
	err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = courseModels.CourseProgress{
			UserID:      userID,
			CourseID:    courseID,
			StartedDate: time.Now(),
		}
		if err := tx.Create(&progress).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperr.ErrConflict
			}
			return nil, err
		}
		return &progress, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// recomputeProgress recounts completions against the course's lessons and
// finalizes the row when everything is done. Percent is floored, never
// rounded up past reality.
func recomputeProgress(tx *gorm.DB, progress *courseModels.CourseProgress) error {
	var totalLessons int64
	if err := tx.Model(&courseModels.Lesson{}).Where("course_id = ?", progress.CourseID).Count(&totalLessons).Error; err != nil {
		return err
	}
	var completed int64
	if err := tx.Model(&courseModels.LessonCompletion{}).
		Where("user_id = ? AND course_id = ?", progress.UserID, progress.CourseID).
		Count(&completed).Error; err != nil {
		return err
	}

	progress.Percent = 0
	if totalLessons > 0 {
		progress.Percent = int(completed * 100 / totalLessons)
	}

	wasCompleted := progress.IsCompleted
	progress.IsCompleted = totalLessons > 0 && completed == totalLessons
	if progress.IsCompleted && !wasCompleted {
		now := time.Now()
		progress.CompletedDate = &now
	}
	if !progress.IsCompleted {
		progress.CompletedDate = nil
	}

	return tx.Save(progress).Error
}

// issueCertificate creates the user's certificate for the course if a
// template exists and none was issued yet. Runs inside the completion
// transaction so a completed course can never lack its certificate.
func issueCertificate(tx *gorm.DB, userID, courseID uint) error {
	var template courseModels.Certificate
	err := tx.Where("course_id = ?", courseID).First(&template).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var existing courseModels.UserCertificate
	err = tx.Where("user_id = ? AND certificate_id = ?", userID, template.ID).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	code, err := GenerateVerificationCode()
	if err != nil {
		return err
	}

	cert := courseModels.UserCertificate{
		UserID:           userID,
		CertificateID:    template.ID,
		VerificationCode: code,
		IssuedAt:         time.Now(),
	}
	return tx.Create(&cert).Error
}

// VerifyCertificate resolves a verification code to the issued certificate,
// for third-party lookup.
func VerifyCertificate(db *gorm.DB, code string) (*courseModels.UserCertificate, error) {
	var cert courseModels.UserCertificate
	if err := db.Where("verification_code = ?", code).First(&cert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewValidation("code", "certificate not found")
		}
		return nil, err
	}
	return &cert, nil
}

// GenerateVerificationCode returns 32 hex characters from crypto/rand.
func GenerateVerificationCode() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
