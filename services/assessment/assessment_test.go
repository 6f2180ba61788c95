package assessment

import (
	"testing"

	"gaduka/database"
	"gaduka/models"
	courseModels "gaduka/models/course"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.RunMigrations(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, email, role string) *models.User {
	t.Helper()
	u := models.User{Name: "Test", Email: email, Role: role, Password: "x"}
	require.NoError(t, db.Create(&u).Error)
	return &u
}

// createEnrolledCourse creates an approved course with a paid enrollment for
// the user, so access checks pass without going through the purchase flow.
func createEnrolledCourse(t *testing.T, db *gorm.DB, user *models.User) *courseModels.Course {
	t.Helper()
	c := courseModels.Course{
		Title:    "Курс",
		Status:   courseModels.StatusApproved,
		IsActive: true,
	}
	require.NoError(t, db.Create(&c).Error)

	enrollment := courseModels.CourseEnrollment{UserID: user.ID, CourseID: c.ID, IsPaid: true}
	require.NoError(t, db.Create(&enrollment).Error)
	return &c
}

func createLectureLesson(t *testing.T, db *gorm.DB, courseID uint, title string) *courseModels.Lesson {
	t.Helper()
	lesson := courseModels.Lesson{CourseID: courseID, Title: title, LessonType: courseModels.LessonLecture}
	require.NoError(t, db.Create(&lesson).Error)
	return &lesson
}

// createControlLesson builds a control lesson with three weight-1 single
// choice questions. The first option of each question is the correct one.
func createControlLesson(t *testing.T, db *gorm.DB, courseID uint) *courseModels.Lesson {
	t.Helper()
	lesson := courseModels.Lesson{
		CourseID:                courseID,
		Title:                   "Контрольная работа",
		LessonType:              courseModels.LessonControl,
		ControlTimeLimitMinutes: 30,
		ControlPassThreshold:    70,
		ControlLockMinutes:      10,
	}
	require.NoError(t, db.Create(&lesson).Error)

	for i := 0; i < 3; i++ {
		q := courseModels.ControlQuestion{
			LessonID:     lesson.ID,
			QuestionType: courseModels.QuestionSingle,
			QuestionKind: courseModels.QuestionKindTheory,
			Prompt:       "Вопрос",
			Weight:       1,
			Order:        i,
		}
		require.NoError(t, db.Create(&q).Error)
		require.NoError(t, db.Create(&courseModels.ControlQuestionOption{QuestionID: q.ID, Text: "Верно", IsCorrect: true}).Error)
		require.NoError(t, db.Create(&courseModels.ControlQuestionOption{QuestionID: q.ID, Text: "Неверно"}).Error)
	}
	return &lesson
}

// correctOption returns the ID of the correct option of a question.
func correctOption(t *testing.T, db *gorm.DB, questionID uint) uint {
	t.Helper()
	var opt courseModels.ControlQuestionOption
	require.NoError(t, db.Where("question_id = ? AND is_correct = ?", questionID, true).First(&opt).Error)
	return opt.ID
}

func wrongOption(t *testing.T, db *gorm.DB, questionID uint) uint {
	t.Helper()
	var opt courseModels.ControlQuestionOption
	require.NoError(t, db.Where("question_id = ? AND is_correct = ?", questionID, false).First(&opt).Error)
	return opt.ID
}

// StubRunner scores practice answers without executing anything: the code is
// compared verbatim to the expected output.
type StubRunner struct{}

func (StubRunner) Run(language, source string, cases []courseModels.LessonTestCase) ([]TestResult, error) {
	results := make([]TestResult, len(cases))
	for i, tc := range cases {
		results[i] = TestResult{
			Passed:   OutputMatches(source, tc.ExpectedOutput),
			Stdout:   source,
			Expected: tc.ExpectedOutput,
			Input:    tc.Input,
		}
	}
	return results, nil
}
