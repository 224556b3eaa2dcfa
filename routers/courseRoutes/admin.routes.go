package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	"lms/models"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up catalog management routes for instructors and admins
func SetupAdminCourseRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin/course",
		middleware.JWTMiddleware,
		middleware.RequireRole(models.RoleInstructor, models.RoleAdmin))

	adminGroup.Post("/", validators.CreateCourse(), controllers.CreateCourse)
	adminGroup.Post("/:id/lesson", validators.CourseID(), validators.AddLesson(), controllers.AddLesson)
	adminGroup.Post("/:id/publish", validators.CourseID(), controllers.PublishCourse)
}
