package utils

import (
	"log"

	"lms/database"
	commerceModels "lms/models/commerce"

	"github.com/jinzhu/now"
	"github.com/robfig/cron/v3"
)

// InitializeCouponScheduler sets up the coupon expiry scheduler
func InitializeCouponScheduler() {
	log.Println("[COUPON-SCHEDULER] Initializing coupon scheduler...")

	c := cron.New()

	// Run daily at midnight to deactivate expired coupons
	c.AddFunc("0 0 * * *", func() {
		log.Println("[COUPON-SCHEDULER] Running daily coupon expiry check...")
		DeactivateExpiredCoupons()
	})

	c.Start()
	log.Println("[COUPON-SCHEDULER] Coupon scheduler started - runs daily at midnight")
}

// DeactivateExpiredCoupons flags coupons whose expiry fell before the start of
// the current day. Validation also checks expiry at read time, so this is
// housekeeping, not enforcement.
func DeactivateExpiredCoupons() {
	db := database.Database.Db
	cutoff := now.BeginningOfDay()

	result := db.Model(&commerceModels.Coupon{}).
		Where("is_active = ? AND expires_at IS NOT NULL AND expires_at < ?", true, cutoff).
		Update("is_active", false)
	if result.Error != nil {
		log.Printf("[COUPON-SCHEDULER] Failed to deactivate expired coupons: %v", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		log.Printf("[COUPON-SCHEDULER] Deactivated %d expired coupon(s)", result.RowsAffected)
	}
}
