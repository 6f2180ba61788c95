package courseValidator

import (
	"strconv"
	"strings"

	"gaduka/middleware"
	courseModels "gaduka/models/course"

	controllers "gaduka/controllers/course"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// CourseIDParam parses and stores the :id route parameter.
func CourseIDParam(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params(param))
		if err != nil || id < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
		}
		c.Locals("courseID", uint(id))
		return c.Next()
	}
}

// SectionIDParam parses and stores the :section_id route parameter.
func SectionIDParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("section_id"))
		if err != nil || id < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid section ID!", nil)
		}
		c.Locals("sectionID", uint(id))
		return c.Next()
	}
}

// CreateCourse validates the course creation payload.
func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(controllers.CoursePayload)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			errors := make(map[string]string)
			for _, fe := range err.(validator.ValidationErrors) {
				errors[strings.ToLower(fe.Field())] = "Failed validation: " + fe.Tag()
			}
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

// CreateSection validates the section payload.
func CreateSection() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(controllers.SectionPayload)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		} else if len(strings.TrimSpace(reqData.Title)) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedSection", reqData)
		return c.Next()
	}
}

// CreateLesson validates the lesson payload, including the per-type fields.
func CreateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lesson := new(courseModels.Lesson)

		if err := c.BodyParser(lesson); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(lesson.Title) == "" {
			errors["title"] = "Title is required!"
		}

		switch lesson.LessonType {
		case "", courseModels.LessonLecture:
			lesson.LessonType = courseModels.LessonLecture
		case courseModels.LessonPractice:
			if lesson.PracticeMode != courseModels.PracticeModeCode && lesson.PracticeMode != courseModels.PracticeModeQuiz {
				errors["practice_mode"] = "Practice mode must be 'code' or 'quiz'!"
			}
			if lesson.PracticeMode == courseModels.PracticeModeCode && len(lesson.TestCases) == 0 {
				errors["test_cases"] = "Code practice requires at least one test case!"
			}
		case courseModels.LessonControl:
			if lesson.ControlTimeLimitMinutes < 1 {
				errors["control_time_limit_minutes"] = "Time limit must be at least 1 minute!"
			}
			if lesson.ControlPassThreshold < 0 || lesson.ControlPassThreshold > 100 {
				errors["control_pass_threshold"] = "Pass threshold must be between 0 and 100!"
			}
		default:
			errors["lesson_type"] = "Lesson type must be 'lecture', 'practice' or 'control'!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLesson", lesson)
		return c.Next()
	}
}

// Reorder validates a batch reorder request.
func Reorder() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(controllers.ReorderPayload)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if len(reqData.IDs) == 0 {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"ids": "Reorder list must not be empty!",
			})
		}

		c.Locals("validatedReorder", reqData)
		return c.Next()
	}
}

// RejectCourse validates the moderation rejection payload.
func RejectCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(controllers.RejectionPayload)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if strings.TrimSpace(reqData.Comment) == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"comment": "Rejection comment is required!",
			})
		}

		c.Locals("validatedRejection", reqData)
		return c.Next()
	}
}
