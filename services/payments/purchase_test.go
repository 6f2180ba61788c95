package payments

import (
	"testing"

	"gaduka/database"
	"gaduka/models"
	courseModels "gaduka/models/course"
	"gaduka/services/apperr"

	"github.com/stretchr/testify/assert"
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

func createApprovedCourse(t *testing.T, db *gorm.DB, creatorID *uint, price float64) *courseModels.Course {
	t.Helper()
	c := courseModels.Course{
		Title:     "Курс",
		Price:     price,
		CreatorID: creatorID,
		Status:    courseModels.StatusApproved,
		IsActive:  true,
	}
	require.NoError(t, db.Create(&c).Error)
	return &c
}

func TestPurchaseSplitsCommission(t *testing.T) {
	db := newTestDB(t)
	seller := createUser(t, db, "seller@gaduka.ru", models.RoleUser)
	buyer := createUser(t, db, "buyer@gaduka.ru", models.RoleUser)
	c := createApprovedCourse(t, db, &seller.ID, 1000)

	res, err := Purchase(db, buyer, c.ID, "card")
	require.NoError(t, err)

	require.NotNil(t, res.Enrollment)
	assert.True(t, res.Enrollment.IsPaid)
	assert.NotNil(t, res.Enrollment.PurchasedAt)

	require.NotNil(t, res.Order)
	assert.Equal(t, 1000.0, res.Order.Amount)
	assert.Equal(t, 200.0, res.Order.CommissionAmount)
	assert.Equal(t, 800.0, res.Order.PayoutAmount)
	assert.Equal(t, courseModels.OrderPaid, res.Order.Status)
	assert.Equal(t, "card", res.Order.PaymentMethod)
	assert.NotEmpty(t, res.Order.ReceiptNumber)
	require.NotNil(t, res.Order.SellerID)
	assert.Equal(t, seller.ID, *res.Order.SellerID)

	require.NotNil(t, res.Payout)
	assert.Equal(t, 800.0, res.Payout.Amount)
	assert.Equal(t, courseModels.PayoutPending, res.Payout.Status)
	assert.Equal(t, seller.ID, res.Payout.SellerID)
}

func TestPurchaseRoundsCommissionHalfUp(t *testing.T) {
	db := newTestDB(t)
	seller := createUser(t, db, "seller@gaduka.ru", models.RoleUser)
	buyer := createUser(t, db, "buyer@gaduka.ru", models.RoleUser)
	c := createApprovedCourse(t, db, &seller.ID, 999.99)

	res, err := Purchase(db, buyer, c.ID, "card")
	require.NoError(t, err)

	// 999.99 * 0.20 = 199.998 → 200.00
	assert.Equal(t, 200.0, res.Order.CommissionAmount)
	assert.InDelta(t, 799.99, res.Order.PayoutAmount, 0.0001)
}

func TestPurchaseIdempotent(t *testing.T) {
	db := newTestDB(t)
	seller := createUser(t, db, "seller@gaduka.ru", models.RoleUser)
	buyer := createUser(t, db, "buyer@gaduka.ru", models.RoleUser)
	c := createApprovedCourse(t, db, &seller.ID, 1000)

	first, err := Purchase(db, buyer, c.ID, "card")
	require.NoError(t, err)
	second, err := Purchase(db, buyer, c.ID, "card")
	require.NoError(t, err)

	assert.Equal(t, first.Enrollment.ID, second.Enrollment.ID)

	var enrollments, orders, payouts int64
	require.NoError(t, db.Model(&courseModels.CourseEnrollment{}).Where("user_id = ?", buyer.ID).Count(&enrollments).Error)
	require.NoError(t, db.Model(&courseModels.Order{}).Where("user_id = ?", buyer.ID).Count(&orders).Error)
	require.NoError(t, db.Model(&courseModels.PayoutTransaction{}).Count(&payouts).Error)
	assert.EqualValues(t, 1, enrollments)
	assert.EqualValues(t, 1, orders)
	assert.EqualValues(t, 1, payouts)
}

func TestPurchaseByAdministrator(t *testing.T) {
	db := newTestDB(t)
	seller := createUser(t, db, "seller@gaduka.ru", models.RoleUser)
	admin := createUser(t, db, "admin@gaduka.ru", models.RoleAdminLevel1)
	c := createApprovedCourse(t, db, &seller.ID, 500)

	res, err := Purchase(db, admin, c.ID, "card")
	require.NoError(t, err)

	assert.Equal(t, courseModels.PaymentMethodAdmin, res.Order.PaymentMethod)
	assert.Equal(t, 0.0, res.Order.CommissionAmount)
	assert.Equal(t, 0.0, res.Order.PayoutAmount)
	assert.Nil(t, res.Payout)

	var payouts int64
	require.NoError(t, db.Model(&courseModels.PayoutTransaction{}).Count(&payouts).Error)
	assert.EqualValues(t, 0, payouts)
}

func TestPurchaseFreeCourse(t *testing.T) {
	db := newTestDB(t)
	buyer := createUser(t, db, "buyer@gaduka.ru", models.RoleUser)
	c := createApprovedCourse(t, db, nil, 0)

	res, err := Purchase(db, buyer, c.ID, "card")
	require.NoError(t, err)

	assert.Equal(t, courseModels.PaymentMethodAdmin, res.Order.PaymentMethod)
	assert.Equal(t, 0.0, res.Order.Amount)
	assert.Nil(t, res.Payout)
	assert.True(t, HasAccess(db, buyer, c.ID))
}

func TestPurchaseHiddenCourse(t *testing.T) {
	db := newTestDB(t)
	seller := createUser(t, db, "seller@gaduka.ru", models.RoleUser)
	buyer := createUser(t, db, "buyer@gaduka.ru", models.RoleUser)

	draft := courseModels.Course{Title: "Черновик", CreatorID: &seller.ID, Status: courseModels.StatusDraft, IsActive: true, Price: 100}
	require.NoError(t, db.Create(&draft).Error)

	_, err := Purchase(db, buyer, draft.ID, "card")
	assert.ErrorIs(t, err, apperr.ErrCourseUnavailable)

	_, err = Purchase(db, buyer, 999, "card")
	assert.ErrorIs(t, err, apperr.ErrCourseUnavailable)
}

func TestHasAccess(t *testing.T) {
	db := newTestDB(t)
	seller := createUser(t, db, "seller@gaduka.ru", models.RoleUser)
	buyer := createUser(t, db, "buyer@gaduka.ru", models.RoleUser)
	admin := createUser(t, db, "admin@gaduka.ru", models.RoleSuperAdmin)
	c := createApprovedCourse(t, db, &seller.ID, 1000)

	assert.False(t, HasAccess(db, buyer, c.ID))
	assert.True(t, HasAccess(db, admin, c.ID))

	_, err := Purchase(db, buyer, c.ID, "card")
	require.NoError(t, err)
	assert.True(t, HasAccess(db, buyer, c.ID))
}

func TestDuplicateEnrollmentReportsDuplicatedKey(t *testing.T) {
	db := newTestDB(t)
	buyer := createUser(t, db, "buyer@gaduka.ru", models.RoleUser)
	c := createApprovedCourse(t, db, nil, 0)

	first := courseModels.CourseEnrollment{UserID: buyer.ID, CourseID: c.ID}
	require.NoError(t, db.Create(&first).Error)

	// the conflict mapping keys on the translated driver error
	second := courseModels.CourseEnrollment{UserID: buyer.ID, CourseID: c.ID}
	err := db.Create(&second).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, 200.0, RoundMoney(199.998))
	assert.Equal(t, 0.01, RoundMoney(0.005))
	assert.Equal(t, 123.45, RoundMoney(123.454))
	assert.Equal(t, 0.0, RoundMoney(0))
}

func TestCommissionRateDefault(t *testing.T) {
	assert.Equal(t, 0.20, CommissionRate())
}
