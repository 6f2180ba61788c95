package course

import (
	"time"

	"gorm.io/gorm"
)

// Order statuses.
const (
	OrderPending   = "pending"
	OrderPaid      = "paid"
	OrderFailed    = "failed"
	OrderCancelled = "cancelled"
)

// Payout transaction statuses.
const (
	PayoutPending    = "pending"
	PayoutProcessing = "processing"
	PayoutPaid       = "paid"
	PayoutFailed     = "failed"
)

// PaymentMethodAdmin marks orders where no money moved: administrator grants
// and free courses. Such orders carry zero commission and no payout.
const PaymentMethodAdmin = "admin"

// CourseEnrollment grants a user access to a course. At most one row per
// (user, course); is_paid flips false→true exactly once.
type CourseEnrollment struct {
	gorm.Model
	UserID      uint       `json:"user_id" gorm:"index;not null;uniqueIndex:idx_enrollment_user_course"`
	CourseID    uint       `json:"course_id" gorm:"index;not null;uniqueIndex:idx_enrollment_user_course"`
	IsPaid      bool       `json:"is_paid" gorm:"default:false"`
	PurchasedAt *time.Time `json:"purchased_at"`
}

// Order is the ledger record of a purchase. SellerID is the course creator,
// nil for platform courses.
type Order struct {
	gorm.Model
	UserID           uint       `json:"user_id" gorm:"index;not null"`
	CourseID         uint       `json:"course_id" gorm:"index;not null"`
	SellerID         *uint      `json:"seller_id" gorm:"index"`
	Amount           float64    `json:"amount"`
	CommissionAmount float64    `json:"commission_amount"`
	PayoutAmount     float64    `json:"payout_amount"`
	Status           string     `json:"status" gorm:"size:20;default:'pending'"`
	PaymentMethod    string     `json:"payment_method" gorm:"size:50"`
	ReceiptNumber    string     `json:"receipt_number" gorm:"size:64;index"`
	PaidAt           *time.Time `json:"paid_at"`
}

// PayoutTransaction tracks the seller's share of a paid order. One-to-one
// with Order.
type PayoutTransaction struct {
	gorm.Model
	OrderID  uint    `json:"order_id" gorm:"uniqueIndex;not null"`
	SellerID uint    `json:"seller_id" gorm:"index;not null"`
	Amount   float64 `json:"amount"`
	Status   string  `json:"status" gorm:"size:20;default:'pending'"`
}

// Moderation decisions.
const (
	DecisionApprove     = "approve"
	DecisionReject      = "reject"
	DecisionReturnDraft = "return_draft"
)

// CourseModerationLog records every moderator decision on a course.
type CourseModerationLog struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	ModeratorID uint   `json:"moderator_id" gorm:"index;not null"`
	Decision    string `json:"decision" gorm:"size:20;not null"`
	Comment     string `json:"comment" gorm:"type:text"`
}
