package quizController

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"lms/database"
	"lms/middleware"
	"lms/models"
	quizModels "lms/models/quiz"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Sentinel errors for the assessment flow
var (
	ErrQuizNotFound        = errors.New("quiz not found")
	ErrMaxAttemptsExceeded = errors.New("maximum attempts exceeded")
	ErrAttemptConflict     = errors.New("concurrent attempt submission, please retry")
)

// answersMatch compares a submitted answer against the correct one using
// case-insensitive, whitespace-trimmed equality.
func answersMatch(submitted, correct string) bool {
	return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(correct))
}

// SubmitAttempt grades a quiz submission and persists the attempt. Grading is
// synchronous; there is no resumable session state. The attempt cap is
// enforced by a transactional count plus the unique
// (quiz_id, user_id, attempt_number) index, which collapses concurrent
// submissions computing the same attempt number into a single winner.
func SubmitAttempt(db *gorm.DB, userID, quizID uint, answers map[string]string) (*quizModels.QuizAttempt, error) {
	var quiz quizModels.Quiz
	if err := db.Where("id = ? AND is_deleted = ?", quizID, false).First(&quiz).Error; err != nil {
		return nil, ErrQuizNotFound
	}

	var attempt quizModels.QuizAttempt

	err := db.Transaction(func(tx *gorm.DB) error {
		var attemptCount int64
		if err := tx.Model(&quizModels.QuizAttempt{}).
			Where("quiz_id = ? AND user_id = ?", quizID, userID).
			Count(&attemptCount).Error; err != nil {
			return err
		}

		if quiz.MaxAttempts != nil && attemptCount >= int64(*quiz.MaxAttempts) {
			return ErrMaxAttemptsExceeded
		}

		var questions []quizModels.QuizQuestion
		if err := tx.Where("quiz_id = ?", quizID).Order("order_index asc").Find(&questions).Error; err != nil {
			return err
		}

		score := 0
		totalPoints := 0
		for _, question := range questions {
			totalPoints += question.Points
			submitted, answered := answers[strconv.FormatUint(uint64(question.ID), 10)]
			if answered && answersMatch(submitted, question.CorrectAnswer) {
				score += question.Points
			}
		}

		percentage := utils.RoundPercentage(int64(score), int64(totalPoints))

		storedAnswers := datatypes.JSONMap{}
		for questionID, answer := range answers {
			storedAnswers[questionID] = answer
		}

		now := time.Now()
		attempt = quizModels.QuizAttempt{
			QuizID:        quizID,
			UserID:        userID,
			AttemptNumber: int(attemptCount) + 1,
			Answers:       storedAnswers,
			Score:         score,
			TotalPoints:   totalPoints,
			Percentage:    percentage,
			IsPassed:      percentage >= quiz.PassingScore,
			StartedAt:     now,
			CompletedAt:   now,
		}

		if err := tx.Create(&attempt).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAttemptConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &attempt, nil
}

// QuestionsForQuiz returns the quiz questions ordered by their index. The
// correct answer is blanked unless includeAnswers is set, so graded answers
// never leak to students.
func QuestionsForQuiz(db *gorm.DB, quizID uint, includeAnswers bool) ([]quizModels.QuizQuestion, error) {
	var quiz quizModels.Quiz
	if err := db.Where("id = ? AND is_deleted = ?", quizID, false).First(&quiz).Error; err != nil {
		return nil, ErrQuizNotFound
	}

	var questions []quizModels.QuizQuestion
	if err := db.Where("quiz_id = ?", quizID).Order("order_index asc").Find(&questions).Error; err != nil {
		return nil, err
	}

	if !includeAnswers {
		for i := range questions {
			questions[i].CorrectAnswer = ""
		}
	}

	return questions, nil
}

// SubmitQuizAttempt submits and grades the current user's quiz attempt
func SubmitQuizAttempt(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	quizID := c.Locals("quizID").(int)

	reqData, ok := c.Locals("validatedQuizSubmission").(*struct {
		Answers map[string]string `json:"answers"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	attempt, err := SubmitAttempt(database.Database.Db, userID, uint(quizID), reqData.Answers)
	if err != nil {
		switch {
		case errors.Is(err, ErrQuizNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
		case errors.Is(err, ErrMaxAttemptsExceeded):
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Maximum attempts exceeded for this quiz!", nil)
		case errors.Is(err, ErrAttemptConflict):
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Attempt submission conflict, please retry!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit attempt!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempt submitted!", fiber.Map{
		"attempt":      attempt,
		"score":        attempt.Score,
		"total_points": attempt.TotalPoints,
		"percentage":   attempt.Percentage,
		"is_passed":    attempt.IsPassed,
	})
}

// GetQuizQuestions returns the questions of a quiz. Instructors and admins
// receive the correct answers; students do not.
func GetQuizQuestions(c *fiber.Ctx) error {
	quizID := c.Locals("quizID").(int)

	role, _ := c.Locals("role").(string)
	includeAnswers := role == string(models.RoleInstructor) || role == string(models.RoleAdmin)

	questions, err := QuestionsForQuiz(database.Database.Db, uint(quizID), includeAnswers)
	if err != nil {
		if errors.Is(err, ErrQuizNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch questions!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Questions fetched successfully!", fiber.Map{
		"questions": questions,
		"total":     len(questions),
	})
}

// GetMyAttempts lists the current user's attempts for a quiz
func GetMyAttempts(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	quizID := c.Locals("quizID").(int)

	var attempts []quizModels.QuizAttempt
	if err := database.Database.Db.
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Order("attempt_number asc").Find(&attempts).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch attempts!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempts fetched successfully!", fiber.Map{
		"attempts": attempts,
		"total":    len(attempts),
	})
}
