package controllers

import (
	"log"

	"gaduka/database"
	"gaduka/middleware"
	"gaduka/models"
	courseModels "gaduka/models/course"
	"gaduka/utils"

	"github.com/gofiber/fiber/v2"

	"gaduka/services/lifecycle"
)

// GetModerationQueue lists courses waiting for a moderator decision.
func GetModerationQueue(c *fiber.Ctx) error {
	var courses []courseModels.Course
	if err := database.Database.Db.
		Where("status = ? AND is_deleted = ?", courseModels.StatusPendingModeration, false).
		Order("submitted_at asc").
		Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch moderation queue!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Moderation queue fetched successfully!", courses)
}

// ApproveCourse publishes a pending course. Repeating the call is a no-op.
func ApproveCourse(c *fiber.Ctx) error {
	moderator, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)

	course, err := lifecycle.Approve(database.Database.Db, moderator, courseID)
	if err != nil {
		return middleware.RespondCoreError(c, err)
	}

	notifyAuthor(course, courseModels.DecisionApprove, "")

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course approved!", course)
}

// RejectCourse returns a pending course to its author with a comment.
func RejectCourse(c *fiber.Ctx) error {
	moderator, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)
	reqData := c.Locals("validatedRejection").(*RejectionPayload)

	course, err := lifecycle.Reject(database.Database.Db, moderator, courseID, reqData.Comment)
	if err != nil {
		return middleware.RespondCoreError(c, err)
	}

	notifyAuthor(course, courseModels.DecisionReject, reqData.Comment)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course rejected.", course)
}

// ReturnCourseToDraft pulls an approved course back for editing (admin only).
func ReturnCourseToDraft(c *fiber.Ctx) error {
	admin, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)

	course, err := lifecycle.ReturnToDraft(database.Database.Db, admin, courseID)
	if err != nil {
		return middleware.RespondCoreError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course returned to draft.", course)
}

// GetModerationLog shows the decision history for a course.
func GetModerationLog(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	var logs []courseModels.CourseModerationLog
	if err := database.Database.Db.
		Where("course_id = ?", courseID).
		Order("created_at desc").
		Find(&logs).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch moderation log!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Moderation log fetched successfully!", logs)
}

// notifyAuthor emails the course creator about the decision, best-effort and
// off the request path.
func notifyAuthor(course *courseModels.Course, decision, comment string) {
	if course == nil || course.CreatorID == nil {
		return
	}

	var author models.User
	if err := database.Database.Db.Where("id = ?", *course.CreatorID).First(&author).Error; err != nil {
		return
	}

	go func() {
		if err := utils.SendModerationDecisionEmail(author.Email, course.Title, decision, comment); err != nil {
			log.Printf("Error sending moderation email to %s: %v", author.Email, err)
		}
	}()
}
