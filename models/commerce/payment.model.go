package commerce

import (
	"gorm.io/gorm"
)

// PaymentStatus defines the status of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// Payment tracks a course purchase, optionally discounted by a coupon
type Payment struct {
	gorm.Model
	UserID         uint          `json:"user_id" gorm:"index;not null"`
	CourseID       uint          `json:"course_id" gorm:"index;not null"`
	Amount         float64       `json:"amount" gorm:"not null"`          // Amount after discount
	OriginalAmount float64       `json:"original_amount" gorm:"not null"` // Course price at purchase time
	CouponID       *uint         `json:"coupon_id" gorm:"index"`
	PaymentMethod  string        `json:"payment_method" gorm:"type:varchar(50)"`
	Reference      string        `json:"reference" gorm:"type:varchar(64);uniqueIndex"` // Internal payment reference
	TransactionID  string        `json:"transaction_id" gorm:"type:varchar(100);index"` // Gateway transaction ID
	Status         PaymentStatus `json:"status" gorm:"type:varchar(20);default:'PENDING'"`
	RefundReason   string        `json:"refund_reason" gorm:"type:text"`
}
