package quizRoutes

import (
	controllers "lms/controllers/quiz"
	"lms/middleware"
	"lms/models"
	validators "lms/validators/quiz"

	"github.com/gofiber/fiber/v2"
)

// SetupQuizRoutes sets up quiz taking and quiz management routes
func SetupQuizRoutes(app *fiber.App) {
	quizGroup := app.Group("/quiz")

	quizGroup.Get("/:id/questions", middleware.JWTMiddleware, validators.QuizID(), controllers.GetQuizQuestions)
	quizGroup.Post("/:id/attempt", middleware.JWTMiddleware, validators.QuizID(), validators.SubmitAttempt(), controllers.SubmitQuizAttempt)
	quizGroup.Get("/:id/attempts", middleware.JWTMiddleware, validators.QuizID(), controllers.GetMyAttempts)

	adminGroup := app.Group("/admin/quiz",
		middleware.JWTMiddleware,
		middleware.RequireRole(models.RoleInstructor, models.RoleAdmin))

	adminGroup.Post("/", validators.CreateQuiz(), controllers.CreateQuiz)
	adminGroup.Post("/:id/question", validators.QuizID(), validators.AddQuestion(), controllers.AddQuizQuestion)
}
