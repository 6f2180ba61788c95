package courseValidator

import (
	"strconv"
	"strings"

	"gaduka/middleware"
	"gaduka/services/assessment"

	controllers "gaduka/controllers/course"

	"github.com/gofiber/fiber/v2"
)

// LessonIDParam parses and stores the :lesson_id route parameter.
func LessonIDParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("lesson_id"))
		if err != nil || id < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid lesson ID!", nil)
		}
		c.Locals("lessonID", uint(id))
		return c.Next()
	}
}

// QuestionIDParam parses and stores the :question_id route parameter.
func QuestionIDParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("question_id"))
		if err != nil || id < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid question ID!", nil)
		}
		c.Locals("questionID", uint(id))
		return c.Next()
	}
}

// Purchase validates the purchase payload. The payment method is free-form;
// "admin" is reserved for the ledger itself.
func Purchase() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(controllers.PurchasePayload)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if strings.EqualFold(strings.TrimSpace(reqData.PaymentMethod), "admin") {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"payment_method": "Payment method 'admin' is reserved!",
			})
		}
		if strings.TrimSpace(reqData.PaymentMethod) == "" {
			reqData.PaymentMethod = "card"
		}

		c.Locals("validatedPurchase", reqData)
		return c.Next()
	}
}

// PracticeRun validates a code practice submission.
func PracticeRun() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(controllers.PracticePayload)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		if strings.TrimSpace(reqData.Code) == "" {
			errors["code"] = "Code is required!"
		}
		if !assessment.SupportedLanguage(reqData.Language) {
			errors["language"] = "Unsupported language!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedPractice", reqData)
		return c.Next()
	}
}

// Answer validates a control question answer payload.
func Answer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(assessment.AnswerPayload)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if len(reqData.OptionIDs) == 0 && strings.TrimSpace(reqData.Text) == "" && strings.TrimSpace(reqData.Code) == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"answer": "Answer payload must not be empty!",
			})
		}

		c.Locals("validatedAnswer", reqData)
		return c.Next()
	}
}
