package controllers

import (
	"errors"
	"log"

	"gaduka/database"
	"gaduka/middleware"
	courseModels "gaduka/models/course"
	"gaduka/services/assessment"
	"gaduka/services/payments"
	"gaduka/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CompleteLesson marks a lesson done and reports the updated progress. When
// the course is finished the issued certificate comes back too.
func CompleteLesson(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	lessonID := c.Locals("lessonID").(uint)

	progress, err := assessment.CompleteLesson(database.Database.Db, user, lessonID)
	if err != nil {
		return middleware.RespondCoreError(c, err)
	}

	response := fiber.Map{"progress": progress}

	if progress.IsCompleted {
		if cert := findIssuedCertificate(user.ID, progress.CourseID); cert != nil {
			response["certificate"] = cert
			notifyCertificate(user.Email, progress.CourseID, cert.VerificationCode)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson completed!", response)
}

// GetCourseProgress reports the user's progress and completed lesson IDs.
func GetCourseProgress(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)
	db := database.Database.Db

	if !payments.HasAccess(db, user, courseID) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
	}

	var progress courseModels.CourseProgress
	err := db.Where("user_id = ? AND course_id = ?", user.ID, courseID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
			"progress":      nil,
			"completed_ids": []uint{},
		})
	}
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch progress!", nil)
	}

	var completions []courseModels.LessonCompletion
	db.Where("user_id = ? AND course_id = ?", user.ID, courseID).Find(&completions)
	completedIDs := make([]uint, len(completions))
	for i, cc := range completions {
		completedIDs[i] = cc.LessonID
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"progress":      progress,
		"completed_ids": completedIDs,
	})
}

// RunPractice executes the learner's code against the lesson's test cases.
func RunPractice(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	lessonID := c.Locals("lessonID").(uint)
	reqData := c.Locals("validatedPractice").(*PracticePayload)

	db := database.Database.Db
	var lesson courseModels.Lesson
	if err := db.Preload("TestCases").First(&lesson, lessonID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}
	if lesson.LessonType != courseModels.LessonPractice || lesson.PracticeMode != courseModels.PracticeModeCode {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Lesson is not a code practice!", nil)
	}
	if !payments.HasAccess(db, user, lesson.CourseID) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
	}

	results, allPassed, err := assessment.RunPractice(assessment.ExecRunner{}, &lesson, reqData.Language, reqData.Code)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, err.Error(), nil)
	}

	// Only the aggregate result is stored; passing completes the lesson.
	if allPassed {
		if _, err := assessment.CompleteLesson(db, user, lessonID); err != nil {
			log.Printf("Error completing practice lesson %d for user %d: %v", lessonID, user.ID, err)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Practice executed!", fiber.Map{
		"results":    results,
		"all_passed": allPassed,
	})
}

func findIssuedCertificate(userID, courseID uint) *courseModels.UserCertificate {
	db := database.Database.Db

	var template courseModels.Certificate
	if err := db.Where("course_id = ?", courseID).First(&template).Error; err != nil {
		return nil
	}
	var cert courseModels.UserCertificate
	if err := db.Where("user_id = ? AND certificate_id = ?", userID, template.ID).First(&cert).Error; err != nil {
		return nil
	}
	return &cert
}

func notifyCertificate(email string, courseID uint, code string) {
	var course courseModels.Course
	if err := database.Database.Db.Where("id = ?", courseID).First(&course).Error; err != nil {
		return
	}
	go func() {
		if err := utils.SendCertificateEmail(email, course.Title, code); err != nil {
			log.Printf("Error sending certificate email to %s: %v", email, err)
		}
	}()
}
