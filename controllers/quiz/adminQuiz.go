package quizController

import (
	"encoding/json"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	quizModels "lms/models/quiz"
	quizValidator "lms/validators/quiz"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

// CreateQuiz creates a quiz for a lesson
func CreateQuiz(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedQuiz").(*quizValidator.CreateQuizRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", reqData.LessonID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	quiz := quizModels.Quiz{
		LessonID:         lesson.ID,
		Title:            reqData.Title,
		PassingScore:     reqData.PassingScore,
		MaxAttempts:      reqData.MaxAttempts,
		TimeLimitMinutes: reqData.TimeLimitMinutes,
	}

	if err := database.Database.Db.Create(&quiz).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create quiz!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz created successfully!", quiz)
}

// AddQuizQuestion adds a question to a quiz
func AddQuizQuestion(c *fiber.Ctx) error {
	quizID := c.Locals("quizID").(int)

	var quiz quizModels.Quiz
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", quizID, false).First(&quiz).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	reqData, ok := c.Locals("validatedQuestion").(*quizValidator.AddQuestionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var options datatypes.JSON
	if len(reqData.Options) > 0 {
		raw, err := json.Marshal(reqData.Options)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid question options!", nil)
		}
		options = datatypes.JSON(raw)
	}

	question := quizModels.QuizQuestion{
		QuizID:        quiz.ID,
		QuestionType:  quizModels.QuestionType(reqData.QuestionType),
		QuestionText:  reqData.QuestionText,
		Options:       options,
		CorrectAnswer: reqData.CorrectAnswer,
		Points:        reqData.Points,
		OrderIndex:    reqData.OrderIndex,
	}

	if err := database.Database.Db.Create(&question).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add question!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question added successfully!", question)
}
