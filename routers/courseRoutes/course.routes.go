package courseRoutes

import (
	controllers "gaduka/controllers/course"
	"gaduka/middleware"
	validators "gaduka/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all user-facing course routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")

	// Catalog
	courseGroup.Get("/list", middleware.JWTMiddleware, controllers.GetAllCourses)
	courseGroup.Get("/my", middleware.JWTMiddleware, controllers.GetMyCourses)
	courseGroup.Get("/:id", middleware.JWTMiddleware, validators.CourseIDParam("id"), controllers.GetCourseDetails)

	// Author course builder
	courseGroup.Post("/", middleware.JWTMiddleware, validators.CreateCourse(), controllers.CreateCourse)
	courseGroup.Post("/:id/section", middleware.JWTMiddleware, validators.CourseIDParam("id"), validators.CreateSection(), controllers.CreateSection)
	courseGroup.Post("/:id/lesson", middleware.JWTMiddleware, validators.CourseIDParam("id"), validators.CreateLesson(), controllers.CreateLesson)
	courseGroup.Put("/:id/sections/reorder", middleware.JWTMiddleware, validators.CourseIDParam("id"), validators.Reorder(), controllers.ReorderSections)
	courseGroup.Put("/:id/lessons/reorder", middleware.JWTMiddleware, validators.CourseIDParam("id"), validators.Reorder(), controllers.ReorderLessons)
	courseGroup.Delete("/:id/section/:section_id", middleware.JWTMiddleware, validators.CourseIDParam("id"), validators.SectionIDParam(), controllers.DeleteSection)
	courseGroup.Post("/:id/submit", middleware.JWTMiddleware, validators.CourseIDParam("id"), controllers.SubmitCourse)

	// Purchase
	courseGroup.Post("/:id/purchase", middleware.JWTMiddleware, validators.CourseIDParam("id"), validators.Purchase(), controllers.PurchaseCourse)

	// Learning
	courseGroup.Post("/:course_id/lesson/:lesson_id/complete", middleware.JWTMiddleware, validators.CourseIDParam("course_id"), validators.LessonIDParam(), controllers.CompleteLesson)
	courseGroup.Post("/:course_id/lesson/:lesson_id/practice/run", middleware.JWTMiddleware, validators.CourseIDParam("course_id"), validators.LessonIDParam(), validators.PracticeRun(), controllers.RunPractice)
	courseGroup.Get("/:course_id/progress", middleware.JWTMiddleware, validators.CourseIDParam("course_id"), controllers.GetCourseProgress)

	// Control tests
	controlGroup := app.Group("/control", middleware.JWTMiddleware)
	controlGroup.Post("/:lesson_id/start", validators.LessonIDParam(), controllers.StartControlTest)
	controlGroup.Post("/:lesson_id/question/:question_id/answer", validators.LessonIDParam(), validators.QuestionIDParam(), validators.Answer(), controllers.AnswerControlQuestion)
	controlGroup.Post("/:lesson_id/question/:question_id/skip", validators.LessonIDParam(), validators.QuestionIDParam(), controllers.SkipControlQuestion)
	controlGroup.Post("/:lesson_id/submit", validators.LessonIDParam(), controllers.SubmitControlTest)
	controlGroup.Get("/:lesson_id/attempts", validators.LessonIDParam(), controllers.GetControlAttempts)

	// User enrollments, orders, certificates
	userGroup := app.Group("/user", middleware.JWTMiddleware)
	userGroup.Get("/enrollments", controllers.GetMyEnrollments)
	userGroup.Get("/orders", controllers.GetMyOrders)
	userGroup.Get("/certificates", controllers.GetUserCertificates)

	// Public certificate verification
	app.Get("/certificate/verify/:code", controllers.VerifyCertificate)
}
