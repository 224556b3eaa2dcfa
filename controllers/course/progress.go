package controllers

import (
	"errors"
	"time"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// RecordProgress upserts the student's watch progress for a lesson and
// recomputes the enrollment percentage in the same transaction. CompletedAt is
// set the first time the lesson is completed and never cleared by later calls.
//
// The returned bool reports whether the enrollment crossed into completion on
// this call, so the caller can notify after commit.
func RecordProgress(db *gorm.DB, userID, lessonID uint, watchTimeSeconds int, completed *bool) (*courseModels.LessonProgress, bool, error) {
	var lesson courseModels.Lesson
	if err := db.Where("id = ? AND is_deleted = ?", lessonID, false).First(&lesson).Error; err != nil {
		return nil, false, ErrLessonNotFound
	}

	var enrollment courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ?", userID, lesson.CourseID).First(&enrollment).Error; err != nil {
		return nil, false, ErrNotEnrolled
	}
	wasCompleted := enrollment.IsCompleted

	var progress courseModels.LessonProgress
	var justCompleted bool

	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&progress).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			progress = courseModels.LessonProgress{
				UserID:   userID,
				LessonID: lessonID,
			}
		}

		progress.WatchTimeSeconds = watchTimeSeconds
		if completed != nil && *completed && !progress.IsCompleted {
			progress.IsCompleted = true
			if progress.CompletedAt == nil {
				now := time.Now()
				progress.CompletedAt = &now
			}
		}

		if err := tx.Save(&progress).Error; err != nil {
			return err
		}

		updated, err := RecomputeProgress(tx, userID, lesson.CourseID)
		if err != nil {
			return err
		}
		justCompleted = updated.IsCompleted && !wasCompleted
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return &progress, justCompleted, nil
}

// RecordLessonProgress records the current user's watch time for a lesson
func RecordLessonProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	lessonID := c.Locals("lessonID").(int)

	reqData, ok := c.Locals("validatedLessonProgress").(*struct {
		WatchTimeSeconds int   `json:"watch_time_seconds"`
		Completed        *bool `json:"completed"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	progress, courseCompleted, err := RecordProgress(database.Database.Db, userID, uint(lessonID), reqData.WatchTimeSeconds, reqData.Completed)
	if err != nil {
		switch {
		case errors.Is(err, ErrLessonNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
		case errors.Is(err, ErrNotEnrolled):
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record progress!", nil)
	}

	if courseCompleted {
		utils.Notify(userID, "course_completed", "Course Completed",
			"Congratulations! You have completed all lessons in this course.")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress recorded!", progress)
}

// GetCourseProgress gets the user's progress in a course
func GetCourseProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
	}

	var lessons []courseModels.Lesson
	database.Database.Db.Where("course_id = ? AND is_deleted = ?", courseID, false).Order("order_index asc").Find(&lessons)

	type LessonProgressView struct {
		LessonID         uint       `json:"lesson_id"`
		Title            string     `json:"title"`
		WatchTimeSeconds int        `json:"watch_time_seconds"`
		IsCompleted      bool       `json:"is_completed"`
		CompletedAt      *time.Time `json:"completed_at"`
	}

	result := make([]LessonProgressView, len(lessons))
	for i, lesson := range lessons {
		view := LessonProgressView{LessonID: lesson.ID, Title: lesson.Title}

		var progress courseModels.LessonProgress
		if err := database.Database.Db.Where("user_id = ? AND lesson_id = ?", userID, lesson.ID).First(&progress).Error; err == nil {
			view.WatchTimeSeconds = progress.WatchTimeSeconds
			view.IsCompleted = progress.IsCompleted
			view.CompletedAt = progress.CompletedAt
		}
		result[i] = view
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"enrollment": enrollment,
		"lessons":    result,
	})
}
