package controllers

import (
	"gaduka/database"
	"gaduka/middleware"
	courseModels "gaduka/models/course"
	"gaduka/services/payments"

	"github.com/gofiber/fiber/v2"
)

// PurchaseCourse buys the course for the current user. The call is
// idempotent: a repeat purchase returns the existing enrollment.
func PurchaseCourse(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)
	reqData := c.Locals("validatedPurchase").(*PurchasePayload)

	result, err := payments.Purchase(database.Database.Db, user, courseID, reqData.PaymentMethod)
	if err != nil {
		return middleware.RespondCoreError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course purchased successfully!", result)
}

// GetMyEnrollments lists the user's enrollments with course info.
func GetMyEnrollments(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	type EnrollmentWithCourse struct {
		courseModels.CourseEnrollment
		CourseTitle string  `json:"course_title"`
		CoursePrice float64 `json:"course_price"`
	}

	var enrollments []courseModels.CourseEnrollment
	if err := database.Database.Db.
		Where("user_id = ?", user.ID).
		Order("created_at desc").
		Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	result := make([]EnrollmentWithCourse, len(enrollments))
	for i, e := range enrollments {
		var course courseModels.Course
		database.Database.Db.Where("id = ?", e.CourseID).First(&course)
		result[i] = EnrollmentWithCourse{
			CourseEnrollment: e,
			CourseTitle:      course.Title,
			CoursePrice:      course.Price,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": result,
		"total":       len(result),
	})
}

// GetMyOrders lists the user's order history.
func GetMyOrders(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var orders []courseModels.Order
	if err := database.Database.Db.
		Where("user_id = ?", user.ID).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch orders!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Orders fetched successfully!", orders)
}
