package paymentRoutes

import (
	controllers "lms/controllers/payment"
	"lms/middleware"
	"lms/models"
	validators "lms/validators/payment"

	"github.com/gofiber/fiber/v2"
)

// SetupPaymentRoutes sets up payment and coupon routes
func SetupPaymentRoutes(app *fiber.App) {
	paymentGroup := app.Group("/payment")

	paymentGroup.Post("/", middleware.JWTMiddleware, validators.CreatePayment(), controllers.CreatePayment)
	paymentGroup.Post("/:id/process", middleware.JWTMiddleware, validators.PaymentID(), validators.ProcessPayment(), controllers.ProcessPayment)
	paymentGroup.Get("/list", middleware.JWTMiddleware, controllers.GetUserPayments)

	paymentGroup.Post("/:id/refund",
		middleware.JWTMiddleware,
		middleware.RequireRole(models.RoleAdmin),
		validators.PaymentID(),
		validators.RefundPayment(),
		controllers.RefundPayment)

	couponGroup := app.Group("/coupon")
	couponGroup.Post("/validate", middleware.JWTMiddleware, validators.ValidateCoupon(), controllers.ValidateCoupon)

	adminCouponGroup := app.Group("/admin/coupon",
		middleware.JWTMiddleware,
		middleware.RequireRole(models.RoleAdmin))

	adminCouponGroup.Post("/", validators.CreateCoupon(), controllers.CreateCoupon)
	adminCouponGroup.Get("/list", controllers.ListCoupons)
}
