package courseRoutes

import (
	controllers "gaduka/controllers/course"
	"gaduka/middleware"
	validators "gaduka/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up moderation and admin course routes
func SetupAdminCourseRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin/course", middleware.JWTMiddleware, middleware.RequireModerator)

	adminGroup.Get("/moderation", controllers.GetModerationQueue)
	adminGroup.Get("/:id/moderation-log", validators.CourseIDParam("id"), controllers.GetModerationLog)
	adminGroup.Post("/:id/approve", validators.CourseIDParam("id"), controllers.ApproveCourse)
	adminGroup.Post("/:id/reject", validators.CourseIDParam("id"), validators.RejectCourse(), controllers.RejectCourse)

	// Pulling an approved course back to draft is admin-only.
	adminGroup.Post("/:id/return-draft", middleware.RequireAdministrator, validators.CourseIDParam("id"), controllers.ReturnCourseToDraft)
}
