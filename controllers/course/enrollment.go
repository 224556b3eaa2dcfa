package controllers

import (
	"errors"
	"time"

	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Enroll creates an enrollment for a student in an active course. The unique
// (user_id, course_id) index rejects concurrent duplicates.
func Enroll(db *gorm.DB, userID, courseID uint) (*courseModels.Enrollment, error) {
	var user models.User
	if err := db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return nil, ErrStudentNotFound
	}
	if user.Role != models.RoleStudent {
		return nil, ErrInvalidRole
	}

	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ? AND status = ? AND is_published = ?",
		courseID, false, "ACTIVE", true).First(&course).Error; err != nil {
		return nil, ErrCourseNotFound
	}

	enrollment := courseModels.Enrollment{
		UserID:   userID,
		CourseID: courseID,
	}
	if err := db.Create(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, err
	}

	return &enrollment, nil
}

// RecomputeProgress recalculates the enrollment percentage from completed
// lessons. Must run inside the same transaction as the lesson-progress write
// so no reader sees a completed lesson with a stale percentage.
//
// CompletionDate is set on the transition to 100 and never cleared afterwards:
// it is a historical record, even if lessons are later added or removed.
func RecomputeProgress(tx *gorm.DB, userID, courseID uint) (*courseModels.Enrollment, error) {
	var enrollment courseModels.Enrollment
	if err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error; err != nil {
		return nil, ErrEnrollmentNotFound
	}

	var total int64
	if err := tx.Model(&courseModels.Lesson{}).
		Where("course_id = ? AND is_deleted = ?", courseID, false).
		Count(&total).Error; err != nil {
		return nil, err
	}

	var completed int64
	if err := tx.Model(&courseModels.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = lesson_progresses.lesson_id").
		Where("lesson_progresses.user_id = ? AND lesson_progresses.is_completed = ?", userID, true).
		Where("lessons.course_id = ? AND lessons.is_deleted = ? AND lessons.deleted_at IS NULL", courseID, false).
		Count(&completed).Error; err != nil {
		return nil, err
	}

	percentage := utils.RoundPercentage(completed, total)
	isCompleted := percentage == 100

	updates := map[string]interface{}{
		"progress_percentage": percentage,
		"is_completed":        isCompleted,
	}
	if isCompleted && enrollment.CompletionDate == nil {
		now := time.Now()
		updates["completion_date"] = now
		enrollment.CompletionDate = &now
	}

	if err := tx.Model(&enrollment).Updates(updates).Error; err != nil {
		return nil, err
	}

	enrollment.ProgressPercentage = percentage
	enrollment.IsCompleted = isCompleted
	return &enrollment, nil
}

// ForceCompleteCourse marks the enrollment complete regardless of lesson state
// and issues the certificate. An already issued certificate is kept as is.
func ForceCompleteCourse(db *gorm.DB, userID, courseID uint) (*courseModels.Enrollment, *courseModels.Certificate, error) {
	var enrollment courseModels.Enrollment
	var certificate *courseModels.Certificate

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error; err != nil {
			return ErrEnrollmentNotFound
		}

		updates := map[string]interface{}{
			"progress_percentage": 100,
			"is_completed":        true,
		}
		if enrollment.CompletionDate == nil {
			now := time.Now()
			updates["completion_date"] = now
			enrollment.CompletionDate = &now
		}
		if err := tx.Model(&enrollment).Updates(updates).Error; err != nil {
			return err
		}
		enrollment.ProgressPercentage = 100
		enrollment.IsCompleted = true

		cert, err := IssueCertificate(tx, userID, courseID)
		if err != nil {
			if errors.Is(err, ErrCertificateExists) {
				return nil
			}
			return err
		}
		certificate = cert
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &enrollment, certificate, nil
}

// Unenroll removes the enrollment and every lesson-progress row for the
// course, in one transaction. Rows are hard-deleted so a later re-enrollment
// does not trip the unique indexes.
func Unenroll(db *gorm.DB, userID, courseID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var enrollment courseModels.Enrollment
		if err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error; err != nil {
			return ErrEnrollmentNotFound
		}

		if err := tx.Unscoped().
			Where("user_id = ? AND lesson_id IN (?)", userID,
				tx.Model(&courseModels.Lesson{}).Select("id").Where("course_id = ?", courseID)).
			Delete(&courseModels.LessonProgress{}).Error; err != nil {
			return err
		}

		return tx.Unscoped().Delete(&enrollment).Error
	})
}

// EnrollInCourse enrolls the current user in a course
func EnrollInCourse(c *fiber.Ctx) error {
	// Retrieve userId from JWT middleware
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	// Retrieve validated course ID
	courseID := c.Locals("courseID").(int)

	enrollment, err := Enroll(database.Database.Db, userID, uint(courseID))
	if err != nil {
		switch {
		case errors.Is(err, ErrStudentNotFound):
			return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
		case errors.Is(err, ErrInvalidRole):
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only students can enroll in courses!", nil)
		case errors.Is(err, ErrCourseNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found or not active!", nil)
		case errors.Is(err, ErrAlreadyEnrolled):
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "User already enrolled in this course!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrolled in course successfully!", enrollment)
}

// UnenrollFromCourse removes the current user's enrollment and progress
func UnenrollFromCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	if err := Unenroll(database.Database.Db, userID, uint(courseID)); err != nil {
		if errors.Is(err, ErrEnrollmentNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to unenroll from course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Unenrolled from course successfully!", nil)
}

// CompleteCourse force-completes the current user's enrollment and issues the
// completion certificate
func CompleteCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	enrollment, certificate, err := ForceCompleteCourse(database.Database.Db, userID, uint(courseID))
	if err != nil {
		if errors.Is(err, ErrEnrollmentNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to complete course!", nil)
	}

	if certificate != nil {
		utils.Notify(userID, "certificate_issued", "Certificate Issued",
			"Congratulations! Your course completion certificate is ready. Code: "+certificate.Code)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course completed!", fiber.Map{
		"enrollment":  enrollment,
		"certificate": certificate,
	})
}

// GetEnrollments lists the current user's enrollments with course info
func GetEnrollments(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	type EnrollmentWithCourse struct {
		courseModels.Enrollment
		CourseTitle       string `json:"course_title"`
		CourseDescription string `json:"course_description"`
	}

	var enrollments []courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ?", userID).Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	result := make([]EnrollmentWithCourse, len(enrollments))
	for i, e := range enrollments {
		var course courseModels.Course
		database.Database.Db.Where("id = ?", e.CourseID).First(&course)
		result[i] = EnrollmentWithCourse{
			Enrollment:        e,
			CourseTitle:       course.Title,
			CourseDescription: course.Description,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": result,
		"total":       len(result),
	})
}
