package commerce

import (
	"time"

	"gorm.io/gorm"
)

// DiscountType defines how a coupon discount is computed
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Coupon represents a discount code applicable to course payments
type Coupon struct {
	gorm.Model
	Code          string       `json:"code" gorm:"uniqueIndex;not null"`
	DiscountType  DiscountType `json:"discount_type" gorm:"type:varchar(20);not null"`
	DiscountValue float64      `json:"discount_value" gorm:"not null"`
	MaxUses       *int         `json:"max_uses"` // nil means unlimited
	UsedCount     int          `json:"used_count" gorm:"default:0"`
	ExpiresAt     *time.Time   `json:"expires_at"`
	IsActive      bool         `json:"is_active" gorm:"default:true"`
}
