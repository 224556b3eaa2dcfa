package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	"lms/models"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all course, enrollment, progress and certificate routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")

	// Course listing and details (published courses)
	courseGroup.Get("/list", middleware.JWTMiddleware, controllers.GetAllCourses)
	courseGroup.Get("/:id", middleware.JWTMiddleware, validators.CourseID(), controllers.GetCourseDetails)

	// Enrollment lifecycle
	courseGroup.Post("/:id/enroll", middleware.JWTMiddleware, validators.CourseID(), controllers.EnrollInCourse)
	courseGroup.Delete("/:id/enroll", middleware.JWTMiddleware, validators.CourseID(), controllers.UnenrollFromCourse)
	courseGroup.Post("/:id/complete", middleware.JWTMiddleware, validators.CourseID(), controllers.CompleteCourse)

	// Progress tracking
	courseGroup.Get("/:id/progress", middleware.JWTMiddleware, validators.CourseID(), controllers.GetCourseProgress)

	lessonGroup := app.Group("/lesson")
	lessonGroup.Put("/:id/progress", middleware.JWTMiddleware, validators.LessonID(), validators.LessonProgress(), controllers.RecordLessonProgress)

	// Certificates
	courseGroup.Post("/:id/certificate", middleware.JWTMiddleware, validators.CourseID(), controllers.GenerateCertificate)

	certificateGroup := app.Group("/certificate")
	certificateGroup.Get("/verify/:code", controllers.VerifyCertificate)
	certificateGroup.Post("/:id/regenerate",
		middleware.JWTMiddleware,
		middleware.RequireRole(models.RoleAdmin),
		validators.CertificateID(),
		controllers.RegenerateCertificate)

	// User-facing listings
	userGroup := app.Group("/user")
	userGroup.Get("/enrollments", middleware.JWTMiddleware, controllers.GetEnrollments)
	userGroup.Get("/certificates", middleware.JWTMiddleware, controllers.GetUserCertificates)
}
