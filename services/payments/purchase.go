// Package payments is the enrollment and payment ledger: idempotent purchase,
// Order/PayoutTransaction records, the platform commission split, and the
// administrator bypass.
package payments

import (
	"errors"
	"math"
	"time"

	"gaduka/config"
	"gaduka/models"
	courseModels "gaduka/models/course"
	"gaduka/services/apperr"
	"gaduka/services/catalog"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultCommissionRate = 0.20

// PurchaseResult bundles what the purchase flow produced (or found).
type PurchaseResult struct {
	Enrollment *courseModels.CourseEnrollment `json:"enrollment"`
	Order      *courseModels.Order            `json:"order,omitempty"`
	Payout     *courseModels.PayoutTransaction `json:"payout,omitempty"`
}

// Purchase grants the user paid access to the course exactly once. A repeat
// call returns the existing enrollment without writing a new Order. When the
// buyer is an administrator or the course is free, the order is recorded with
// payment_method "admin" and zero money movement.
func Purchase(db *gorm.DB, user *models.User, courseID uint, paymentMethod string) (*PurchaseResult, error) {
	course, err := catalog.GetCourse(db, courseID)
	if err != nil {
		return nil, err
	}
	if !catalog.CatalogVisible(course) {
		return nil, apperr.ErrCourseUnavailable
	}

	var result PurchaseResult
	err = db.Transaction(func(tx *gorm.DB) error {
		var existing courseModels.CourseEnrollment
		findErr := tx.Where("user_id = ? AND course_id = ?", user.ID, course.ID).First(&existing).Error
		if findErr == nil && existing.IsPaid {
			result.Enrollment = &existing
			var order courseModels.Order
			if tx.Where("user_id = ? AND course_id = ? AND status = ?", user.ID, course.ID, courseModels.OrderPaid).
				Order("id desc").First(&order).Error == nil {
				result.Order = &order
			}
			return nil
		}
		if findErr != nil && !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		amount := course.Price
		method := paymentMethod
		if user.IsAdministrator() || amount == 0 {
			method = courseModels.PaymentMethodAdmin
		}

		commission := RoundMoney(amount * CommissionRate())
		payout := amount - commission
		if method == courseModels.PaymentMethodAdmin {
			commission = 0
			payout = 0
		}

		now := time.Now()
		if findErr == nil {
			existing.IsPaid = true
			existing.PurchasedAt = &now
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			result.Enrollment = &existing
		} else {
			enrollment := courseModels.CourseEnrollment{
				UserID:      user.ID,
				CourseID:    course.ID,
				IsPaid:      true,
				PurchasedAt: &now,
			}
			if err := tx.Create(&enrollment).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					// Duplicate purchase races resolve through the unique
					// (user, course) index.
					return apperr.ErrConflict
				}
				return err
			}
			result.Enrollment = &enrollment
		}

		order := courseModels.Order{
			UserID:           user.ID,
			CourseID:         course.ID,
			SellerID:         course.CreatorID,
			Amount:           amount,
			CommissionAmount: commission,
			PayoutAmount:     payout,
			Status:           courseModels.OrderPaid,
			PaymentMethod:    method,
			ReceiptNumber:    uuid.NewString(),
			PaidAt:           &now,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		result.Order = &order

		if course.CreatorID != nil && method != courseModels.PaymentMethodAdmin {
			payoutTx := courseModels.PayoutTransaction{
				OrderID:  order.ID,
				SellerID: *course.CreatorID,
				Amount:   payout,
				Status:   courseModels.PayoutPending,
			}
			if err := tx.Create(&payoutTx).Error; err != nil {
				return err
			}
			result.Payout = &payoutTx
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// HasAccess reports whether the user may consume the course's lessons: a paid
// enrollment or administrator rights.
func HasAccess(db *gorm.DB, user *models.User, courseID uint) bool {
	if user.IsAdministrator() {
		return true
	}
	var enrollment courseModels.CourseEnrollment
	err := db.Where("user_id = ? AND course_id = ? AND is_paid = ?", user.ID, courseID, true).First(&enrollment).Error
	return err == nil
}

// CommissionRate returns the configured platform commission, defaulting to
// 20%. The rate is configuration to leave room for per-seller overrides.
func CommissionRate() float64 {
	if config.AppConfig != nil && config.AppConfig.CommissionRate > 0 {
		return config.AppConfig.CommissionRate
	}
	return defaultCommissionRate
}

// RoundMoney rounds half-up to two decimal places.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
