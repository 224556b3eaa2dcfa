package quizController

import (
	"strconv"
	"testing"

	"lms/database"
	"lms/models"
	courseModels "lms/models/course"
	quizModels "lms/models/quiz"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	// A pooled second connection would see a fresh empty :memory: database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(database.Models()...))
	return db
}

func intPtr(i int) *int { return &i }

func questionKey(q *quizModels.QuizQuestion) string {
	return strconv.FormatUint(uint64(q.ID), 10)
}

// createScenarioQuiz builds a quiz with questions worth 10/5/15 points and a
// passing score of 70.
func createScenarioQuiz(t *testing.T, db *gorm.DB, maxAttempts *int) (*quizModels.Quiz, []*quizModels.QuizQuestion) {
	t.Helper()

	lesson := courseModels.Lesson{CourseID: 1, Title: "Structs and Interfaces"}
	require.NoError(t, db.Create(&lesson).Error)

	quiz := quizModels.Quiz{LessonID: lesson.ID, Title: "Checkpoint", PassingScore: 70, MaxAttempts: maxAttempts}
	require.NoError(t, db.Create(&quiz).Error)

	defs := []struct {
		text   string
		answer string
		points int
	}{
		{"What keyword declares a type?", "type", 10},
		{"Interfaces are satisfied implicitly (true/false)", "true", 5},
		{"What is an unnamed struct instance called?", "object", 15},
	}

	questions := make([]*quizModels.QuizQuestion, len(defs))
	for i, def := range defs {
		question := quizModels.QuizQuestion{
			QuizID:        quiz.ID,
			QuestionType:  quizModels.QuestionShortAnswer,
			QuestionText:  def.text,
			CorrectAnswer: def.answer,
			Points:        def.points,
			OrderIndex:    i + 1,
		}
		require.NoError(t, db.Create(&question).Error)
		questions[i] = &question
	}

	return &quiz, questions
}

func createTestStudent(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := models.User{Name: "Student", Email: "quiz-student@test.com", Role: models.RoleStudent}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func TestSubmitAttemptAllCorrect(t *testing.T) {
	db := setupTestDB(t)
	quiz, questions := createScenarioQuiz(t, db, nil)
	student := createTestStudent(t, db)

	answers := map[string]string{
		questionKey(questions[0]): "type",
		questionKey(questions[1]): "true",
		questionKey(questions[2]): "object",
	}

	attempt, err := SubmitAttempt(db, student.ID, quiz.ID, answers)
	require.NoError(t, err)
	assert.Equal(t, 30, attempt.Score)
	assert.Equal(t, 30, attempt.TotalPoints)
	assert.Equal(t, 100, attempt.Percentage)
	assert.True(t, attempt.IsPassed)
	assert.Equal(t, 1, attempt.AttemptNumber)
	assert.Equal(t, attempt.StartedAt, attempt.CompletedAt)
}

func TestSubmitAttemptPartialScore(t *testing.T) {
	db := setupTestDB(t)
	quiz, questions := createScenarioQuiz(t, db, nil)
	student := createTestStudent(t, db)

	// Only the 10-point question is answered correctly
	answers := map[string]string{
		questionKey(questions[0]): "type",
		questionKey(questions[1]): "false",
	}

	attempt, err := SubmitAttempt(db, student.ID, quiz.ID, answers)
	require.NoError(t, err)
	assert.Equal(t, 10, attempt.Score)
	assert.Equal(t, 30, attempt.TotalPoints)
	assert.Equal(t, 33, attempt.Percentage) // round(10/30*100)
	assert.False(t, attempt.IsPassed)
}

func TestAnswerMatchingIsCaseAndWhitespaceInsensitive(t *testing.T) {
	db := setupTestDB(t)
	quiz, questions := createScenarioQuiz(t, db, nil)
	student := createTestStudent(t, db)

	answers := map[string]string{
		questionKey(questions[0]): "  TYPE  ",
		questionKey(questions[1]): "True",
		questionKey(questions[2]): "OBJECT",
	}

	attempt, err := SubmitAttempt(db, student.ID, quiz.ID, answers)
	require.NoError(t, err)
	assert.Equal(t, 30, attempt.Score)
	assert.True(t, attempt.IsPassed)
}

func TestScoringIsDeterministic(t *testing.T) {
	db := setupTestDB(t)
	quiz, questions := createScenarioQuiz(t, db, nil)
	student := createTestStudent(t, db)

	answers := map[string]string{
		questionKey(questions[0]): "type",
		questionKey(questions[2]): "object",
	}

	first, err := SubmitAttempt(db, student.ID, quiz.ID, answers)
	require.NoError(t, err)
	second, err := SubmitAttempt(db, student.ID, quiz.ID, answers)
	require.NoError(t, err)

	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.TotalPoints, second.TotalPoints)
	assert.Equal(t, first.IsPassed, second.IsPassed)
	assert.Equal(t, first.AttemptNumber+1, second.AttemptNumber)
}

func TestSubmitAttemptUnknownQuiz(t *testing.T) {
	db := setupTestDB(t)
	student := createTestStudent(t, db)

	_, err := SubmitAttempt(db, student.ID, 9999, map[string]string{})
	assert.ErrorIs(t, err, ErrQuizNotFound)
}

func TestAttemptLimitEnforcedOnTheExtraAttempt(t *testing.T) {
	db := setupTestDB(t)
	quiz, questions := createScenarioQuiz(t, db, intPtr(2))
	student := createTestStudent(t, db)

	answers := map[string]string{questionKey(questions[0]): "type"}

	for i := 1; i <= 2; i++ {
		attempt, err := SubmitAttempt(db, student.ID, quiz.ID, answers)
		require.NoError(t, err)
		assert.Equal(t, i, attempt.AttemptNumber)
	}

	// The (max_attempts+1)-th submission is rejected
	_, err := SubmitAttempt(db, student.ID, quiz.ID, answers)
	assert.ErrorIs(t, err, ErrMaxAttemptsExceeded)

	var count int64
	db.Model(&quizModels.QuizAttempt{}).Where("quiz_id = ? AND user_id = ?", quiz.ID, student.ID).Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestUnlimitedAttemptsWhenNoCap(t *testing.T) {
	db := setupTestDB(t)
	quiz, questions := createScenarioQuiz(t, db, nil)
	student := createTestStudent(t, db)

	answers := map[string]string{questionKey(questions[0]): "type"}

	for i := 1; i <= 5; i++ {
		attempt, err := SubmitAttempt(db, student.ID, quiz.ID, answers)
		require.NoError(t, err)
		assert.Equal(t, i, attempt.AttemptNumber)
	}
}

func TestEmptyQuizScoresZero(t *testing.T) {
	db := setupTestDB(t)
	student := createTestStudent(t, db)

	lesson := courseModels.Lesson{CourseID: 1, Title: "Empty"}
	require.NoError(t, db.Create(&lesson).Error)
	quiz := quizModels.Quiz{LessonID: lesson.ID, Title: "No Questions", PassingScore: 70}
	require.NoError(t, db.Create(&quiz).Error)

	attempt, err := SubmitAttempt(db, student.ID, quiz.ID, map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, 0, attempt.Score)
	assert.Equal(t, 0, attempt.TotalPoints)
	assert.Equal(t, 0, attempt.Percentage)
	assert.False(t, attempt.IsPassed)
}

func TestQuestionsOrderedAndAnswersBlanked(t *testing.T) {
	db := setupTestDB(t)
	quiz, _ := createScenarioQuiz(t, db, nil)

	questions, err := QuestionsForQuiz(db, quiz.ID, false)
	require.NoError(t, err)
	require.Len(t, questions, 3)

	for i, question := range questions {
		assert.Equal(t, i+1, question.OrderIndex)
		assert.Empty(t, question.CorrectAnswer)
	}
}

func TestQuestionsWithAnswersForGraders(t *testing.T) {
	db := setupTestDB(t)
	quiz, _ := createScenarioQuiz(t, db, nil)

	questions, err := QuestionsForQuiz(db, quiz.ID, true)
	require.NoError(t, err)
	require.Len(t, questions, 3)
	assert.Equal(t, "type", questions[0].CorrectAnswer)
}

func TestQuestionsUnknownQuiz(t *testing.T) {
	db := setupTestDB(t)

	_, err := QuestionsForQuiz(db, 9999, false)
	assert.ErrorIs(t, err, ErrQuizNotFound)
}
