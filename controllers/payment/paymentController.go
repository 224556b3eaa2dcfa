package paymentController

import (
	"errors"

	"lms/config"
	"lms/database"
	"lms/middleware"
	"lms/models"
	commerceModels "lms/models/commerce"
	courseModels "lms/models/course"
	"lms/utils"
	paymentValidator "lms/validators/payment"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Sentinel errors for the payment flow
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrCourseNotFound      = errors.New("course not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrInvalidPaymentState = errors.New("payment is not in a valid state for this operation")
	ErrPaymentDeclined     = errors.New("payment declined by gateway")
)

// NewPayment creates a pending payment for a course, applying a coupon when it
// validates. The coupon's used_count is incremented with a conditional UPDATE
// so concurrent payments cannot overshoot max_uses; a coupon that loses the
// race is simply not applied.
func NewPayment(db *gorm.DB, userID, courseID uint, couponCode, method string) (*commerceModels.Payment, error) {
	var user models.User
	if err := db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return nil, ErrUserNotFound
	}

	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ? AND status = ? AND is_published = ?",
		courseID, false, "ACTIVE", true).First(&course).Error; err != nil {
		return nil, ErrCourseNotFound
	}

	var payment commerceModels.Payment

	err := db.Transaction(func(tx *gorm.DB) error {
		amount := course.Price
		var couponID *uint

		if couponCode != "" {
			validation := ValidateCouponForCourse(tx, couponCode, &course)
			if validation.Valid {
				result := tx.Model(&commerceModels.Coupon{}).
					Where("id = ? AND (max_uses IS NULL OR used_count < max_uses)", validation.Coupon.ID).
					UpdateColumn("used_count", gorm.Expr("used_count + 1"))
				if result.Error != nil {
					return result.Error
				}
				// RowsAffected 0 means a concurrent payment consumed the last
				// use between validation and increment; the coupon is skipped.
				if result.RowsAffected > 0 {
					amount = course.Price - validation.DiscountAmount
					couponID = &validation.Coupon.ID
				}
			}
		}

		payment = commerceModels.Payment{
			UserID:         userID,
			CourseID:       courseID,
			Amount:         utils.RoundCurrency(amount),
			OriginalAmount: course.Price,
			CouponID:       couponID,
			PaymentMethod:  method,
			Reference:      utils.GeneratePaymentReference(),
			Status:         commerceModels.PaymentStatusPending,
		}
		return tx.Create(&payment).Error
	})
	if err != nil {
		return nil, err
	}

	return &payment, nil
}

// CompletePayment marks a pending payment as completed and grants course
// access by creating the enrollment at 0% progress. The PENDING check is part
// of the conditional UPDATE, so of two concurrent completions only one flips
// the status and records its transaction ID.
func CompletePayment(db *gorm.DB, paymentID uint, transactionID string) (*commerceModels.Payment, error) {
	var payment commerceModels.Payment
	if err := db.Where("id = ?", paymentID).First(&payment).Error; err != nil {
		return nil, ErrPaymentNotFound
	}

	if config.AppConfig != nil && config.AppConfig.GatewayVerify {
		captured, err := utils.VerifyGatewayTransaction(transactionID)
		if err != nil {
			return nil, err
		}
		if !captured {
			if err := db.Model(&commerceModels.Payment{}).
				Where("id = ? AND status = ?", paymentID, commerceModels.PaymentStatusPending).
				Updates(map[string]interface{}{
					"status":         commerceModels.PaymentStatusFailed,
					"transaction_id": transactionID,
				}).Error; err != nil {
				return nil, err
			}
			return nil, ErrPaymentDeclined
		}
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&commerceModels.Payment{}).
			Where("id = ? AND status = ?", paymentID, commerceModels.PaymentStatusPending).
			Updates(map[string]interface{}{
				"status":         commerceModels.PaymentStatusCompleted,
				"transaction_id": transactionID,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInvalidPaymentState
		}
		payment.Status = commerceModels.PaymentStatusCompleted
		payment.TransactionID = transactionID

		enrollment := courseModels.Enrollment{
			UserID:   payment.UserID,
			CourseID: payment.CourseID,
		}
		if err := tx.Create(&enrollment).Error; err != nil {
			// An existing enrollment keeps its progress; payment still completes.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &payment, nil
}

// RefundCoursePayment marks a completed payment as refunded and revokes course
// access by removing the enrollment and its lesson progress. The coupon's
// used_count is not restored; the coupon counts as spent. The COMPLETED check
// is part of the conditional UPDATE, so a payment can be refunded only once.
func RefundCoursePayment(db *gorm.DB, paymentID uint, reason string) (*commerceModels.Payment, error) {
	var payment commerceModels.Payment
	if err := db.Where("id = ?", paymentID).First(&payment).Error; err != nil {
		return nil, ErrPaymentNotFound
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&commerceModels.Payment{}).
			Where("id = ? AND status = ?", paymentID, commerceModels.PaymentStatusCompleted).
			Updates(map[string]interface{}{
				"status":        commerceModels.PaymentStatusRefunded,
				"refund_reason": reason,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInvalidPaymentState
		}
		payment.Status = commerceModels.PaymentStatusRefunded
		payment.RefundReason = reason

		var enrollment courseModels.Enrollment
		if err := tx.Where("user_id = ? AND course_id = ?", payment.UserID, payment.CourseID).First(&enrollment).Error; err != nil {
			// Nothing to revoke
			return nil
		}

		if err := tx.Unscoped().
			Where("user_id = ? AND lesson_id IN (?)", payment.UserID,
				tx.Model(&courseModels.Lesson{}).Select("id").Where("course_id = ?", payment.CourseID)).
			Delete(&courseModels.LessonProgress{}).Error; err != nil {
			return err
		}

		return tx.Unscoped().Delete(&enrollment).Error
	})
	if err != nil {
		return nil, err
	}

	return &payment, nil
}

// CreatePayment creates a pending payment for the current user
func CreatePayment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedPayment").(*paymentValidator.CreatePaymentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	payment, err := NewPayment(database.Database.Db, userID, reqData.CourseID, reqData.CouponCode, reqData.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
		case errors.Is(err, ErrCourseNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found or not active!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create payment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Payment created successfully!", payment)
}

// ProcessPayment completes a pending payment and enrolls the payer
func ProcessPayment(c *fiber.Ctx) error {
	paymentID := c.Locals("paymentID").(int)

	reqData, ok := c.Locals("validatedProcessPayment").(*paymentValidator.ProcessPaymentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	payment, err := CompletePayment(database.Database.Db, uint(paymentID), reqData.TransactionID)
	if err != nil {
		switch {
		case errors.Is(err, ErrPaymentNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Payment not found!", nil)
		case errors.Is(err, ErrInvalidPaymentState):
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Payment is not pending!", nil)
		case errors.Is(err, ErrPaymentDeclined):
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Payment declined by gateway!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process payment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment processed successfully!", payment)
}

// RefundPayment refunds a completed payment and revokes course access
func RefundPayment(c *fiber.Ctx) error {
	paymentID := c.Locals("paymentID").(int)

	reqData, ok := c.Locals("validatedRefund").(*paymentValidator.RefundPaymentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	payment, err := RefundCoursePayment(database.Database.Db, uint(paymentID), reqData.Reason)
	if err != nil {
		switch {
		case errors.Is(err, ErrPaymentNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Payment not found!", nil)
		case errors.Is(err, ErrInvalidPaymentState):
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Only completed payments can be refunded!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to refund payment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment refunded successfully!", payment)
}

// GetUserPayments lists the current user's payments
func GetUserPayments(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var payments []commerceModels.Payment
	if err := database.Database.Db.Where("user_id = ?", userID).Order("created_at desc").Find(&payments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch payments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payments fetched successfully!", fiber.Map{
		"payments": payments,
		"total":    len(payments),
	})
}
