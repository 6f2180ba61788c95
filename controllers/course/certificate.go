package controllers

import (
	"gaduka/database"
	"gaduka/middleware"
	courseModels "gaduka/models/course"
	"gaduka/services/assessment"

	"github.com/gofiber/fiber/v2"
)

// GetUserCertificates lists every certificate issued to the current user.
func GetUserCertificates(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	type CertificateWithCourse struct {
		courseModels.UserCertificate
		CourseTitle string `json:"course_title"`
	}

	var certificates []courseModels.UserCertificate
	if err := database.Database.Db.
		Where("user_id = ?", user.ID).
		Order("issued_at desc").
		Find(&certificates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}

	result := make([]CertificateWithCourse, len(certificates))
	for i, cert := range certificates {
		var template courseModels.Certificate
		var course courseModels.Course
		if database.Database.Db.Where("id = ?", cert.CertificateID).First(&template).Error == nil {
			database.Database.Db.Where("id = ?", template.CourseID).First(&course)
		}
		result[i] = CertificateWithCourse{
			UserCertificate: cert,
			CourseTitle:     course.Title,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", result)
}

// VerifyCertificate resolves a verification code for third-party lookup.
// Public: no authentication required.
func VerifyCertificate(c *fiber.Ctx) error {
	code := c.Params("code")
	if len(code) != 32 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid verification code!", nil)
	}

	cert, err := assessment.VerifyCertificate(database.Database.Db, code)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate not found!", nil)
	}

	var template courseModels.Certificate
	var course courseModels.Course
	if database.Database.Db.Where("id = ?", cert.CertificateID).First(&template).Error == nil {
		database.Database.Db.Where("id = ?", template.CourseID).First(&course)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate is valid!", fiber.Map{
		"verification_code": cert.VerificationCode,
		"issued_at":         cert.IssuedAt,
		"course_title":      course.Title,
	})
}
