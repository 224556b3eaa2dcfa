package quiz

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuestionType defines the kind of quiz question
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionTrueFalse      QuestionType = "true_false"
	QuestionShortAnswer    QuestionType = "short_answer"
)

// Quiz represents a graded quiz attached to a lesson
type Quiz struct {
	gorm.Model
	LessonID         uint   `json:"lesson_id" gorm:"index;not null"`
	Title            string `json:"title"`
	PassingScore     int    `json:"passing_score" gorm:"default:70"` // Percentage (0-100)
	MaxAttempts      *int   `json:"max_attempts"`                    // nil means unlimited
	TimeLimitMinutes *int   `json:"time_limit_minutes"`
	IsDeleted        bool   `gorm:"default:false"`
}

// QuizQuestion represents a single question within a quiz
type QuizQuestion struct {
	gorm.Model
	QuizID        uint           `json:"quiz_id" gorm:"index;not null"`
	QuestionType  QuestionType   `json:"question_type" gorm:"type:varchar(20);default:'multiple_choice'"`
	QuestionText  string         `json:"question_text" gorm:"type:text"`
	Options       datatypes.JSON `json:"options"` // JSON array of option texts, for multiple_choice
	CorrectAnswer string         `json:"correct_answer"`
	Points        int            `json:"points" gorm:"default:1"`
	OrderIndex    int            `json:"order_index" gorm:"default:0"`
}

// QuizAttempt represents a student's graded attempt at a quiz.
// Rows are append-only once written.
type QuizAttempt struct {
	gorm.Model
	QuizID        uint              `json:"quiz_id" gorm:"not null;uniqueIndex:idx_quiz_attempts_quiz_user_number"`
	UserID        uint              `json:"user_id" gorm:"not null;uniqueIndex:idx_quiz_attempts_quiz_user_number"`
	AttemptNumber int               `json:"attempt_number" gorm:"not null;uniqueIndex:idx_quiz_attempts_quiz_user_number"`
	Answers       datatypes.JSONMap `json:"answers"` // question_id -> submitted answer text
	Score         int               `json:"score"`
	TotalPoints   int               `json:"total_points"`
	Percentage    int               `json:"percentage"`
	IsPassed      bool              `json:"is_passed" gorm:"default:false"`
	StartedAt     time.Time         `json:"started_at"`
	CompletedAt   time.Time         `json:"completed_at"`
}
