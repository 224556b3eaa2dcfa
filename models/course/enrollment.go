package course

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment tracks a user's enrollment in a course with progress
type Enrollment struct {
	gorm.Model
	UserID             uint       `json:"user_id" gorm:"not null;uniqueIndex:idx_enrollments_user_course"`
	CourseID           uint       `json:"course_id" gorm:"not null;uniqueIndex:idx_enrollments_user_course"`
	ProgressPercentage int        `json:"progress_percentage" gorm:"default:0"` // Completion percentage (0-100)
	IsCompleted        bool       `json:"is_completed" gorm:"default:false"`
	CompletionDate     *time.Time `json:"completion_date"`
}

// LessonProgress tracks a user's watch time and completion of a single lesson
type LessonProgress struct {
	gorm.Model
	UserID           uint       `json:"user_id" gorm:"not null;uniqueIndex:idx_lesson_progress_user_lesson"`
	LessonID         uint       `json:"lesson_id" gorm:"not null;uniqueIndex:idx_lesson_progress_user_lesson"`
	WatchTimeSeconds int        `json:"watch_time_seconds" gorm:"default:0"`
	IsCompleted      bool       `json:"is_completed" gorm:"default:false"`
	CompletedAt      *time.Time `json:"completed_at"` // Set once, never cleared
}
