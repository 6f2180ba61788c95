package assessment

import (
	"testing"

	"gaduka/models"
	courseModels "gaduka/models/course"
	"gaduka/services/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteLessonPercentFloored(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "student@gaduka.ru", models.RoleUser)
	c := createEnrolledCourse(t, db, user)

	lessons := []*courseModels.Lesson{
		createLectureLesson(t, db, c.ID, "Первый"),
		createLectureLesson(t, db, c.ID, "Второй"),
		createLectureLesson(t, db, c.ID, "Третий"),
	}

	progress, err := CompleteLesson(db, user, lessons[0].ID)
	require.NoError(t, err)
	// 1/3 → 33, never 34
	assert.Equal(t, 33, progress.Percent)
	assert.False(t, progress.IsCompleted)
	assert.Nil(t, progress.CompletedDate)

	progress, err = CompleteLesson(db, user, lessons[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 66, progress.Percent)
}

func TestCompleteLessonIdempotent(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "student@gaduka.ru", models.RoleUser)
	c := createEnrolledCourse(t, db, user)
	lesson := createLectureLesson(t, db, c.ID, "Первый")
	createLectureLesson(t, db, c.ID, "Второй")

	first, err := CompleteLesson(db, user, lesson.ID)
	require.NoError(t, err)
	second, err := CompleteLesson(db, user, lesson.ID)
	require.NoError(t, err)

	assert.Equal(t, first.Percent, second.Percent)

	var completions int64
	require.NoError(t, db.Model(&courseModels.LessonCompletion{}).
		Where("user_id = ? AND lesson_id = ?", user.ID, lesson.ID).Count(&completions).Error)
	assert.EqualValues(t, 1, completions)
}

func TestCompleteCourseIssuesCertificate(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "student@gaduka.ru", models.RoleUser)
	c := createEnrolledCourse(t, db, user)

	template := courseModels.Certificate{CourseID: c.ID, Title: "Сертификат"}
	require.NoError(t, db.Create(&template).Error)

	a := createLectureLesson(t, db, c.ID, "Первый")
	b := createLectureLesson(t, db, c.ID, "Второй")

	_, err := CompleteLesson(db, user, a.ID)
	require.NoError(t, err)

	progress, err := CompleteLesson(db, user, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, progress.Percent)
	assert.True(t, progress.IsCompleted)
	assert.NotNil(t, progress.CompletedDate)

	var cert courseModels.UserCertificate
	require.NoError(t, db.Where("user_id = ? AND certificate_id = ?", user.ID, template.ID).First(&cert).Error)
	assert.Len(t, cert.VerificationCode, 32)
	assert.False(t, cert.IssuedAt.IsZero())

	found, err := VerifyCertificate(db, cert.VerificationCode)
	require.NoError(t, err)
	assert.Equal(t, cert.ID, found.ID)
}

func TestCompleteCourseCertificateIssuedOnce(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "student@gaduka.ru", models.RoleUser)
	c := createEnrolledCourse(t, db, user)

	template := courseModels.Certificate{CourseID: c.ID, Title: "Сертификат"}
	require.NoError(t, db.Create(&template).Error)

	lesson := createLectureLesson(t, db, c.ID, "Единственный")

	_, err := CompleteLesson(db, user, lesson.ID)
	require.NoError(t, err)
	_, err = CompleteLesson(db, user, lesson.ID)
	require.NoError(t, err)

	var certs int64
	require.NoError(t, db.Model(&courseModels.UserCertificate{}).Where("user_id = ?", user.ID).Count(&certs).Error)
	assert.EqualValues(t, 1, certs)
}

func TestCompleteCourseWithoutCertificateTemplate(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "student@gaduka.ru", models.RoleUser)
	c := createEnrolledCourse(t, db, user)
	lesson := createLectureLesson(t, db, c.ID, "Единственный")

	progress, err := CompleteLesson(db, user, lesson.ID)
	require.NoError(t, err)
	assert.True(t, progress.IsCompleted)

	var certs int64
	require.NoError(t, db.Model(&courseModels.UserCertificate{}).Count(&certs).Error)
	assert.EqualValues(t, 0, certs)
}

func TestCompleteLessonWithoutAccess(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "owner@gaduka.ru", models.RoleUser)
	outsider := createUser(t, db, "outsider@gaduka.ru", models.RoleUser)
	c := createEnrolledCourse(t, db, owner)
	lesson := createLectureLesson(t, db, c.ID, "Урок")

	_, err := CompleteLesson(db, outsider, lesson.ID)
	assert.ErrorIs(t, err, apperr.ErrAccessDenied)
}

func TestCompleteMissingLesson(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "student@gaduka.ru", models.RoleUser)

	_, err := CompleteLesson(db, user, 999)
	assert.True(t, apperr.IsValidation(err))
}

func TestVerifyCertificateUnknownCode(t *testing.T) {
	db := newTestDB(t)

	_, err := VerifyCertificate(db, "ffffffffffffffffffffffffffffffff")
	assert.True(t, apperr.IsValidation(err))
}

func TestGenerateVerificationCode(t *testing.T) {
	a, err := GenerateVerificationCode()
	require.NoError(t, err)
	b, err := GenerateVerificationCode()
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
