package middleware

import (
	"errors"

	"gaduka/database"
	"gaduka/models"
	"gaduka/services/apperr"

	"github.com/gofiber/fiber/v2"
)

// CurrentUser loads the authenticated user stored in locals by JWTMiddleware.
func CurrentUser(c *fiber.Ctx) (*models.User, bool) {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return nil, false
	}
	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return nil, false
	}
	return &user, true
}

// RequireModerator gates moderation endpoints.
func RequireModerator(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	if !user.IsModerator() {
		return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
	}
	return c.Next()
}

// RequireAdministrator gates admin-only endpoints.
func RequireAdministrator(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	if !user.IsAdministrator() {
		return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
	}
	return c.Next()
}

// RespondCoreError maps core error kinds onto HTTP responses so controllers
// stay uniform.
func RespondCoreError(c *fiber.Ctx, err error) error {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		return ValidationErrorResponse(c, map[string]string{ve.Field: ve.Message})
	}
	if locked, ok := apperr.AsLessonLocked(err); ok {
		return JsonResponse(c, fiber.StatusLocked, false, "Lesson is locked!", fiber.Map{
			"seconds_remaining": locked.SecondsRemaining,
		})
	}

	switch {
	case errors.Is(err, apperr.ErrAccessDenied):
		return JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
	case errors.Is(err, apperr.ErrCourseUnavailable):
		return JsonResponse(c, fiber.StatusNotFound, false, "Course not found or not available!", nil)
	case errors.Is(err, apperr.ErrInvalidTransition):
		return JsonResponse(c, fiber.StatusConflict, false, "Invalid course state for this action!", nil)
	case errors.Is(err, apperr.ErrAlreadyCompleted):
		return JsonResponse(c, fiber.StatusOK, true, "Already completed.", nil)
	case errors.Is(err, apperr.ErrSessionExpired):
		return JsonResponse(c, fiber.StatusGone, false, "Test session expired!", nil)
	case errors.Is(err, apperr.ErrConflict):
		return JsonResponse(c, fiber.StatusConflict, false, "Conflicting update, please retry!", nil)
	}
	return JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
}
