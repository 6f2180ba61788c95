package controllers

import (
	"gaduka/database"
	"gaduka/middleware"
	courseModels "gaduka/models/course"
	"gaduka/services/catalog"
	"gaduka/services/lifecycle"

	"github.com/gofiber/fiber/v2"
)

// CreateCourse creates a draft course owned by the current user.
func CreateCourse(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedCourse").(*CoursePayload)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	creatorID := user.ID
	course := courseModels.Course{
		Title:         reqData.Title,
		Description:   reqData.Description,
		Price:         reqData.Price,
		CategoryID:    reqData.CategoryID,
		Level:         reqData.Level,
		DurationWeeks: reqData.DurationWeeks,
		CreatorID:     &creatorID,
		Status:        courseModels.StatusDraft,
		PayoutMethod:  reqData.PayoutMethod,
		PayoutDetails: reqData.PayoutDetails,
	}
	if course.Level == "" {
		course.Level = "Начальный"
	}

	if err := database.Database.Db.Create(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

// GetAllCourses lists catalog-visible courses with pagination.
func GetAllCourses(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	db := database.Database.Db
	query := db.Model(&courseModels.Course{}).
		Where("is_deleted = ? AND is_active = ?", false, true).
		Where("status = ? OR creator_id IS NULL", courseModels.StatusApproved)

	var total int64
	query.Count(&total)

	var courses []courseModels.Course
	if err := query.Offset(offset).Limit(limit).Order("created_at desc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": courses,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// GetCourseDetails returns the full course tree for viewers allowed to see it.
func GetCourseDetails(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)

	db := database.Database.Db
	var course courseModels.Course
	if err := db.
		Preload("Sections.Lessons").
		Preload("Lessons").
		Where("id = ? AND is_deleted = ?", courseID, false).
		First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !catalog.CanView(user, &course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", course)
}

// CreateSection adds a section to the author's course.
func CreateSection(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)
	reqData := c.Locals("validatedSection").(*SectionPayload)

	db := database.Database.Db
	course, err := catalog.GetCourse(db, courseID)
	if err != nil {
		return middleware.RespondCoreError(c, err)
	}
	if !isOwner(user.ID, course) && !user.IsAdministrator() {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
	}

	section, err := catalog.CreateSection(db, courseID, reqData.Title, reqData.Description)
	if err != nil {
		return middleware.RespondCoreError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Section created successfully!", section)
}

// CreateLesson adds a lesson (lecture, practice, or control) to the course.
func CreateLesson(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)
	lesson := c.Locals("validatedLesson").(*courseModels.Lesson)
	lesson.CourseID = courseID

	db := database.Database.Db
	course, err := catalog.GetCourse(db, courseID)
	if err != nil {
		return middleware.RespondCoreError(c, err)
	}
	if !isOwner(user.ID, course) && !user.IsAdministrator() {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
	}

	if err := catalog.CreateLesson(db, lesson); err != nil {
		return middleware.RespondCoreError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", lesson)
}

// ReorderSections rewrites section order from the supplied permutation.
func ReorderSections(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)
	reqData := c.Locals("validatedReorder").(*ReorderPayload)

	db := database.Database.Db
	course, err := catalog.GetCourse(db, courseID)
	if err != nil {
		return middleware.RespondCoreError(c, err)
	}
	if !isOwner(user.ID, course) && !user.IsAdministrator() {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
	}

	if err := catalog.ReorderSections(db, courseID, reqData.IDs); err != nil {
		return middleware.RespondCoreError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Sections reordered successfully!", nil)
}

// ReorderLessons rewrites lesson order from the supplied permutation.
func ReorderLessons(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)
	reqData := c.Locals("validatedReorder").(*ReorderPayload)

	db := database.Database.Db
	course, err := catalog.GetCourse(db, courseID)
	if err != nil {
		return middleware.RespondCoreError(c, err)
	}
	if !isOwner(user.ID, course) && !user.IsAdministrator() {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
	}

	if err := catalog.ReorderLessons(db, courseID, reqData.IDs); err != nil {
		return middleware.RespondCoreError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lessons reordered successfully!", nil)
}

// DeleteSection removes a section; its lessons stay in the course.
func DeleteSection(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)
	sectionID := c.Locals("sectionID").(uint)

	db := database.Database.Db
	course, err := catalog.GetCourse(db, courseID)
	if err != nil {
		return middleware.RespondCoreError(c, err)
	}
	if !isOwner(user.ID, course) && !user.IsAdministrator() {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
	}

	if err := catalog.DeleteSection(db, sectionID); err != nil {
		return middleware.RespondCoreError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Section deleted successfully!", nil)
}

// SubmitCourse sends the course through automatic screening into moderation.
func SubmitCourse(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)

	course, err := lifecycle.SubmitForReview(database.Database.Db, user, courseID)
	if err != nil {
		return middleware.RespondCoreError(c, err)
	}

	if course.Status == courseModels.StatusAutoRejected {
		return middleware.JsonResponse(c, fiber.StatusOK, false, "Course rejected by automatic screening.", fiber.Map{
			"status":             course.Status,
			"auto_reject_reason": course.AutoRejectReason,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course submitted for moderation!", fiber.Map{
		"status":       course.Status,
		"submitted_at": course.SubmittedAt,
	})
}

// GetMyCourses lists the author's own courses in every status.
func GetMyCourses(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var courses []courseModels.Course
	if err := database.Database.Db.
		Where("creator_id = ? AND is_deleted = ?", user.ID, false).
		Order("created_at desc").
		Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", courses)
}

func isOwner(userID uint, course *courseModels.Course) bool {
	return course.CreatorID != nil && *course.CreatorID == userID
}
