package course

import (
	"time"

	"gorm.io/gorm"
)

// Certificate is the template awarded on course completion.
type Certificate struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"uniqueIndex;not null"`
	Title       string `json:"title" gorm:"size:200"`
	Description string `json:"description" gorm:"type:text"`
}

// UserCertificate is an issued certificate. VerificationCode is a 32-char hex
// string assigned at creation and never mutated.
type UserCertificate struct {
	gorm.Model
	UserID           uint      `json:"user_id" gorm:"index;not null;uniqueIndex:idx_user_certificate"`
	CertificateID    uint      `json:"certificate_id" gorm:"index;not null;uniqueIndex:idx_user_certificate"`
	VerificationCode string    `json:"verification_code" gorm:"size:32;uniqueIndex;not null"`
	IssuedAt         time.Time `json:"issued_at"`
}
