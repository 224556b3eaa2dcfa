package quizValidator

import (
	"strconv"
	"strings"

	"lms/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// CreateQuizRequest is the payload for quiz creation
type CreateQuizRequest struct {
	LessonID         uint   `json:"lesson_id" validate:"required"`
	Title            string `json:"title" validate:"required,min=3,max=255"`
	PassingScore     int    `json:"passing_score" validate:"gte=0,lte=100"`
	MaxAttempts      *int   `json:"max_attempts" validate:"omitempty,gt=0"`
	TimeLimitMinutes *int   `json:"time_limit_minutes" validate:"omitempty,gt=0"`
}

// AddQuestionRequest is the payload for adding a question to a quiz
type AddQuestionRequest struct {
	QuestionType  string   `json:"question_type" validate:"required,oneof=multiple_choice true_false short_answer"`
	QuestionText  string   `json:"question_text" validate:"required"`
	Options       []string `json:"options" validate:"omitempty,min=2,dive,required"`
	CorrectAnswer string   `json:"correct_answer" validate:"required"`
	Points        int      `json:"points" validate:"gt=0"`
	OrderIndex    int      `json:"order_index" validate:"gte=0"`
}

// QuizID validates the :id route parameter as a quiz ID
func QuizID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("id"))
		if idStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Quiz ID is required!", nil)
		}

		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Quiz ID!", nil)
		}

		c.Locals("quizID", id)
		return c.Next()
	}
}

// CreateQuiz validates the quiz creation request
func CreateQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateQuizRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Title = strings.TrimSpace(reqData.Title)

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		c.Locals("validatedQuiz", reqData)
		return c.Next()
	}
}

// AddQuestion validates the question creation request
func AddQuestion() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(AddQuestionRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.QuestionText = strings.TrimSpace(reqData.QuestionText)
		reqData.CorrectAnswer = strings.TrimSpace(reqData.CorrectAnswer)

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		if reqData.QuestionType == "multiple_choice" && len(reqData.Options) == 0 {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"options": "Multiple choice questions require options!",
			})
		}

		c.Locals("validatedQuestion", reqData)
		return c.Next()
	}
}

// SubmitAttempt validates the quiz submission payload
func SubmitAttempt() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Answers map[string]string `json:"answers"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.Answers == nil {
			reqData.Answers = map[string]string{}
		}

		c.Locals("validatedQuizSubmission", reqData)
		return c.Next()
	}
}

// validationErrors flattens validator.ValidationErrors into a field->message map
func validationErrors(err error) map[string]string {
	errors := make(map[string]string)
	if fieldErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range fieldErrors {
			errors[strings.ToLower(fieldError.Field())] = "Failed on the '" + fieldError.Tag() + "' rule!"
		}
	} else {
		errors["request"] = "Invalid request data!"
	}
	return errors
}
