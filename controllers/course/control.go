package controllers

import (
	"gaduka/database"
	"gaduka/middleware"
	courseModels "gaduka/models/course"
	"gaduka/services/assessment"

	"github.com/gofiber/fiber/v2"
)

// StartControlTest opens or resumes the test session for a control lesson.
func StartControlTest(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	lessonID := c.Locals("lessonID").(uint)

	state, autoAttempt, err := assessment.StartControlSession(database.Database.Db, user, lessonID, assessment.ExecRunner{})
	if err != nil {
		return middleware.RespondCoreError(c, err)
	}

	response := fiber.Map{"session": sessionResponse(state)}
	if autoAttempt != nil {
		// A stale session was closed on the way in.
		response["previous_attempt"] = autoAttempt
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Test session started!", response)
}

// AnswerControlQuestion records an answer for one question of the live
// session. An expired session is auto-submitted instead.
func AnswerControlQuestion(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	lessonID := c.Locals("lessonID").(uint)
	questionID := c.Locals("questionID").(uint)
	payload := c.Locals("validatedAnswer").(*assessment.AnswerPayload)

	state, attempt, err := assessment.AnswerQuestion(database.Database.Db, user, lessonID, questionID, *payload, assessment.ExecRunner{})
	if err != nil {
		return middleware.RespondCoreError(c, err)
	}
	if attempt != nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Time is up. Test submitted automatically.", fiber.Map{
			"attempt": attempt,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Answer recorded!", sessionResponse(state))
}

// SkipControlQuestion defers a question to the review phase.
func SkipControlQuestion(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	lessonID := c.Locals("lessonID").(uint)
	questionID := c.Locals("questionID").(uint)

	state, attempt, err := assessment.SkipQuestion(database.Database.Db, user, lessonID, questionID, assessment.ExecRunner{})
	if err != nil {
		return middleware.RespondCoreError(c, err)
	}
	if attempt != nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Time is up. Test submitted automatically.", fiber.Map{
			"attempt": attempt,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question skipped!", sessionResponse(state))
}

// SubmitControlTest scores the live session and reports the attempt.
func SubmitControlTest(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	lessonID := c.Locals("lessonID").(uint)

	attempt, err := assessment.SubmitControlSession(database.Database.Db, user, lessonID, assessment.ExecRunner{})
	if err != nil {
		return middleware.RespondCoreError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Test submitted!", fiber.Map{
		"attempt": attempt,
	})
}

// GetControlAttempts lists the user's past attempts for a lesson.
func GetControlAttempts(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	lessonID := c.Locals("lessonID").(uint)

	var attempts []courseModels.ControlAttempt
	if err := database.Database.Db.
		Where("user_id = ? AND lesson_id = ?", user.ID, lessonID).
		Order("created_at desc").
		Find(&attempts).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch attempts!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempts fetched successfully!", attempts)
}

// sessionResponse shapes the session state for clients: the question order,
// the current phase, what was answered or skipped, and the clock.
func sessionResponse(state *assessment.SessionState) fiber.Map {
	answeredIDs := make([]uint, 0, len(state.Answers))
	for id := range state.Answers {
		answeredIDs = append(answeredIDs, id)
	}

	return fiber.Map{
		"status":         state.Session.Status,
		"phase":          state.Phase,
		"question_order": state.QuestionOrder,
		"answered_ids":   answeredIDs,
		"skipped_ids":    state.Skipped,
		"seconds_left":   state.SecondsLeft,
		"expires_at":     state.Session.ExpiresAt,
	}
}
