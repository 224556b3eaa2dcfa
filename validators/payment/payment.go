package paymentValidator

import (
	"strconv"
	"strings"
	"time"

	"lms/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// CreatePaymentRequest is the payload for starting a course payment
type CreatePaymentRequest struct {
	CourseID      uint   `json:"course_id" validate:"required"`
	CouponCode    string `json:"coupon_code"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=card upi netbanking wallet"`
}

// ProcessPaymentRequest is the payload for completing a payment
type ProcessPaymentRequest struct {
	TransactionID string `json:"transaction_id" validate:"required,max=100"`
}

// RefundPaymentRequest is the payload for refunding a payment
type RefundPaymentRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

// ValidateCouponRequest is the payload for checking a coupon against a course
type ValidateCouponRequest struct {
	Code     string `json:"code" validate:"required"`
	CourseID uint   `json:"course_id" validate:"required"`
}

// CreateCouponRequest is the payload for creating a coupon
type CreateCouponRequest struct {
	Code          string     `json:"code" validate:"required,min=3,max=50"`
	DiscountType  string     `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue float64    `json:"discount_value" validate:"gt=0"`
	MaxUses       *int       `json:"max_uses" validate:"omitempty,gt=0"`
	ExpiresAt     *time.Time `json:"expires_at"`
}

// PaymentID validates the :id route parameter as a payment ID
func PaymentID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("id"))
		if idStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Payment ID is required!", nil)
		}

		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Payment ID!", nil)
		}

		c.Locals("paymentID", id)
		return c.Next()
	}
}

// CreatePayment validates the payment creation request
func CreatePayment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreatePaymentRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.CouponCode = strings.ToUpper(strings.TrimSpace(reqData.CouponCode))

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		c.Locals("validatedPayment", reqData)
		return c.Next()
	}
}

// ProcessPayment validates the payment completion request
func ProcessPayment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ProcessPaymentRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.TransactionID = strings.TrimSpace(reqData.TransactionID)

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		c.Locals("validatedProcessPayment", reqData)
		return c.Next()
	}
}

// RefundPayment validates the refund request
func RefundPayment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(RefundPaymentRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Reason = strings.TrimSpace(reqData.Reason)

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		c.Locals("validatedRefund", reqData)
		return c.Next()
	}
}

// ValidateCoupon validates the coupon check request
func ValidateCoupon() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ValidateCouponRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Code = strings.ToUpper(strings.TrimSpace(reqData.Code))

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		c.Locals("validatedCouponCheck", reqData)
		return c.Next()
	}
}

// CreateCoupon validates the coupon creation request
func CreateCoupon() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateCouponRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Code = strings.ToUpper(strings.TrimSpace(reqData.Code))

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		if reqData.DiscountType == "percentage" && reqData.DiscountValue > 100 {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"discount_value": "Percentage discount cannot exceed 100!",
			})
		}

		if reqData.ExpiresAt != nil && reqData.ExpiresAt.Before(time.Now()) {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"expires_at": "Expiry date must be in the future!",
			})
		}

		c.Locals("validatedCoupon", reqData)
		return c.Next()
	}
}

// validationErrors flattens validator.ValidationErrors into a field->message map
func validationErrors(err error) map[string]string {
	errors := make(map[string]string)
	if fieldErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range fieldErrors {
			errors[strings.ToLower(fieldError.Field())] = "Failed on the '" + fieldError.Tag() + "' rule!"
		}
	} else {
		errors["request"] = "Invalid request data!"
	}
	return errors
}
