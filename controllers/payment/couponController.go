package paymentController

import (
	"errors"
	"time"

	"lms/database"
	"lms/middleware"
	commerceModels "lms/models/commerce"
	courseModels "lms/models/course"
	paymentValidator "lms/validators/payment"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Coupon rejection reasons
const (
	CouponNotFound      = "not_found"
	CouponInactive      = "inactive"
	CouponExpired       = "expired"
	CouponLimitExceeded = "limit_exceeded"
)

// CouponValidation is the outcome of checking a coupon against a course price
type CouponValidation struct {
	Valid          bool                   `json:"valid"`
	Coupon         *commerceModels.Coupon `json:"coupon,omitempty"`
	DiscountAmount float64                `json:"discount_amount,omitempty"`
	Reason         string                 `json:"reason,omitempty"`
}

// ValidateCouponForCourse checks a coupon code and computes the discount for a
// course. The discount is always clamped to [0, price].
func ValidateCouponForCourse(db *gorm.DB, code string, course *courseModels.Course) CouponValidation {
	var coupon commerceModels.Coupon
	if err := db.Where("code = ?", code).First(&coupon).Error; err != nil {
		return CouponValidation{Reason: CouponNotFound}
	}

	if !coupon.IsActive {
		return CouponValidation{Reason: CouponInactive}
	}

	if coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(time.Now()) {
		return CouponValidation{Reason: CouponExpired}
	}

	if coupon.MaxUses != nil && coupon.UsedCount >= *coupon.MaxUses {
		return CouponValidation{Reason: CouponLimitExceeded}
	}

	var discount float64
	switch coupon.DiscountType {
	case commerceModels.DiscountPercentage:
		discount = course.Price * coupon.DiscountValue / 100
	case commerceModels.DiscountFixed:
		discount = coupon.DiscountValue
	}

	// Clamp to [0, price]
	if discount < 0 {
		discount = 0
	}
	if discount > course.Price {
		discount = course.Price
	}

	return CouponValidation{Valid: true, Coupon: &coupon, DiscountAmount: discount}
}

// ValidateCoupon checks a coupon code against a course without consuming a use
func ValidateCoupon(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCouponCheck").(*paymentValidator.ValidateCouponRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", reqData.CourseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	result := ValidateCouponForCourse(database.Database.Db, reqData.Code, &course)
	if !result.Valid {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Coupon is not valid!", result)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Coupon is valid!", result)
}

// CreateCoupon creates a new discount coupon
func CreateCoupon(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCoupon").(*paymentValidator.CreateCouponRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	coupon := commerceModels.Coupon{
		Code:          reqData.Code,
		DiscountType:  commerceModels.DiscountType(reqData.DiscountType),
		DiscountValue: reqData.DiscountValue,
		MaxUses:       reqData.MaxUses,
		ExpiresAt:     reqData.ExpiresAt,
		IsActive:      true,
	}

	if err := database.Database.Db.Create(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Coupon code already exists!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create coupon!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Coupon created successfully!", coupon)
}

// ListCoupons lists all coupons
func ListCoupons(c *fiber.Ctx) error {
	var coupons []commerceModels.Coupon
	if err := database.Database.Db.Order("created_at desc").Find(&coupons).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch coupons!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Coupons fetched successfully!", fiber.Map{
		"coupons": coupons,
		"total":   len(coupons),
	})
}
