package paymentController

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lms/config"
	"lms/database"
	"lms/models"
	commerceModels "lms/models/commerce"
	courseModels "lms/models/course"
	paymentValidator "lms/validators/payment"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	// A pooled second connection would see a fresh empty :memory: database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(database.Models()...))
	return db
}

func intPtr(i int) *int { return &i }

func timePtr(v time.Time) *time.Time { return &v }

func createBuyer(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := models.User{Name: "Buyer", Email: "buyer@test.com", Role: models.RoleStudent}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createPaidCourse(t *testing.T, db *gorm.DB, price float64) *courseModels.Course {
	t.Helper()
	course := courseModels.Course{
		Title:       "Distributed Systems",
		Description: "CAP and friends",
		Price:       price,
		Status:      "ACTIVE",
		IsPublished: true,
	}
	require.NoError(t, db.Create(&course).Error)
	return &course
}

func createCoupon(t *testing.T, db *gorm.DB, coupon commerceModels.Coupon) *commerceModels.Coupon {
	t.Helper()
	require.NoError(t, db.Create(&coupon).Error)
	return &coupon
}

func TestValidateCouponNotFound(t *testing.T) {
	db := setupTestDB(t)
	course := createPaidCourse(t, db, 99.99)

	result := ValidateCouponForCourse(db, "NOPE", course)
	assert.False(t, result.Valid)
	assert.Equal(t, CouponNotFound, result.Reason)
}

func TestValidateCouponInactive(t *testing.T) {
	db := setupTestDB(t)
	course := createPaidCourse(t, db, 99.99)
	createCoupon(t, db, commerceModels.Coupon{
		Code: "OFF20", DiscountType: commerceModels.DiscountPercentage, DiscountValue: 20, IsActive: false,
	})

	result := ValidateCouponForCourse(db, "OFF20", course)
	assert.False(t, result.Valid)
	assert.Equal(t, CouponInactive, result.Reason)
}

func TestValidateCouponExpired(t *testing.T) {
	db := setupTestDB(t)
	course := createPaidCourse(t, db, 99.99)
	createCoupon(t, db, commerceModels.Coupon{
		Code: "OLD", DiscountType: commerceModels.DiscountFixed, DiscountValue: 10,
		ExpiresAt: timePtr(time.Now().Add(-time.Hour)), IsActive: true,
	})

	result := ValidateCouponForCourse(db, "OLD", course)
	assert.False(t, result.Valid)
	assert.Equal(t, CouponExpired, result.Reason)
}

func TestValidateCouponLimitExceeded(t *testing.T) {
	db := setupTestDB(t)
	course := createPaidCourse(t, db, 99.99)
	createCoupon(t, db, commerceModels.Coupon{
		Code: "MAXED", DiscountType: commerceModels.DiscountFixed, DiscountValue: 10,
		MaxUses: intPtr(5), UsedCount: 5, IsActive: true,
	})

	result := ValidateCouponForCourse(db, "MAXED", course)
	assert.False(t, result.Valid)
	assert.Equal(t, CouponLimitExceeded, result.Reason)
}

func TestValidateCouponPercentageDiscount(t *testing.T) {
	db := setupTestDB(t)
	course := createPaidCourse(t, db, 99.99)
	createCoupon(t, db, commerceModels.Coupon{
		Code: "OFF20", DiscountType: commerceModels.DiscountPercentage, DiscountValue: 20, IsActive: true,
	})

	result := ValidateCouponForCourse(db, "OFF20", course)
	require.True(t, result.Valid)
	assert.InDelta(t, 19.998, result.DiscountAmount, 0.0001)
}

func TestValidateCouponFixedDiscountClamped(t *testing.T) {
	db := setupTestDB(t)
	course := createPaidCourse(t, db, 50)
	createCoupon(t, db, commerceModels.Coupon{
		Code: "BIG", DiscountType: commerceModels.DiscountFixed, DiscountValue: 100, IsActive: true,
	})

	result := ValidateCouponForCourse(db, "BIG", course)
	require.True(t, result.Valid)
	assert.Equal(t, 50.0, result.DiscountAmount) // never more than the price
}

func TestNewPaymentWithoutCoupon(t *testing.T) {
	db := setupTestDB(t)
	buyer := createBuyer(t, db)
	course := createPaidCourse(t, db, 99.99)

	payment, err := NewPayment(db, buyer.ID, course.ID, "", "card")
	require.NoError(t, err)
	assert.Equal(t, 99.99, payment.Amount)
	assert.Equal(t, 99.99, payment.OriginalAmount)
	assert.Nil(t, payment.CouponID)
	assert.Equal(t, commerceModels.PaymentStatusPending, payment.Status)
	assert.Contains(t, payment.Reference, "PAY-")
}

func TestNewPaymentAppliesCoupon(t *testing.T) {
	db := setupTestDB(t)
	buyer := createBuyer(t, db)
	course := createPaidCourse(t, db, 99.99)
	coupon := createCoupon(t, db, commerceModels.Coupon{
		Code: "OFF20", DiscountType: commerceModels.DiscountPercentage, DiscountValue: 20, IsActive: true,
	})

	payment, err := NewPayment(db, buyer.ID, course.ID, "OFF20", "card")
	require.NoError(t, err)
	assert.Equal(t, 79.99, payment.Amount) // 99.99 - 19.998, rounded to cents
	assert.Equal(t, 99.99, payment.OriginalAmount)
	require.NotNil(t, payment.CouponID)
	assert.Equal(t, coupon.ID, *payment.CouponID)

	var updated commerceModels.Coupon
	require.NoError(t, db.First(&updated, coupon.ID).Error)
	assert.Equal(t, 1, updated.UsedCount)
}

func TestNewPaymentFixedCouponToZero(t *testing.T) {
	db := setupTestDB(t)
	buyer := createBuyer(t, db)
	course := createPaidCourse(t, db, 50)
	createCoupon(t, db, commerceModels.Coupon{
		Code: "BIG", DiscountType: commerceModels.DiscountFixed, DiscountValue: 100, IsActive: true,
	})

	payment, err := NewPayment(db, buyer.ID, course.ID, "BIG", "card")
	require.NoError(t, err)
	assert.Equal(t, 0.0, payment.Amount)
}

func TestNewPaymentIgnoresInvalidCoupon(t *testing.T) {
	db := setupTestDB(t)
	buyer := createBuyer(t, db)
	course := createPaidCourse(t, db, 99.99)

	payment, err := NewPayment(db, buyer.ID, course.ID, "NOPE", "card")
	require.NoError(t, err)
	assert.Equal(t, 99.99, payment.Amount)
	assert.Nil(t, payment.CouponID)
}

func TestNewPaymentCouponCapNeverOvershoots(t *testing.T) {
	db := setupTestDB(t)
	buyer := createBuyer(t, db)
	course := createPaidCourse(t, db, 100)
	coupon := createCoupon(t, db, commerceModels.Coupon{
		Code: "ONCE", DiscountType: commerceModels.DiscountFixed, DiscountValue: 10,
		MaxUses: intPtr(1), IsActive: true,
	})

	first, err := NewPayment(db, buyer.ID, course.ID, "ONCE", "card")
	require.NoError(t, err)
	assert.Equal(t, 90.0, first.Amount)

	// The last use is consumed; the next payment falls back to full price
	second, err := NewPayment(db, buyer.ID, course.ID, "ONCE", "card")
	require.NoError(t, err)
	assert.Equal(t, 100.0, second.Amount)
	assert.Nil(t, second.CouponID)

	var updated commerceModels.Coupon
	require.NoError(t, db.First(&updated, coupon.ID).Error)
	assert.Equal(t, 1, updated.UsedCount)
}

func TestNewPaymentUnknownCourse(t *testing.T) {
	db := setupTestDB(t)
	buyer := createBuyer(t, db)

	_, err := NewPayment(db, buyer.ID, 9999, "", "card")
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCompletePaymentEnrollsBuyer(t *testing.T) {
	db := setupTestDB(t)
	buyer := createBuyer(t, db)
	course := createPaidCourse(t, db, 99.99)

	payment, err := NewPayment(db, buyer.ID, course.ID, "", "card")
	require.NoError(t, err)

	completed, err := CompletePayment(db, payment.ID, "txn_12345")
	require.NoError(t, err)
	assert.Equal(t, commerceModels.PaymentStatusCompleted, completed.Status)
	assert.Equal(t, "txn_12345", completed.TransactionID)

	var enrollment courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", buyer.ID, course.ID).First(&enrollment).Error)
	assert.Equal(t, 0, enrollment.ProgressPercentage)
	assert.False(t, enrollment.IsCompleted)
}

func TestCompletePaymentRequiresPending(t *testing.T) {
	db := setupTestDB(t)
	buyer := createBuyer(t, db)
	course := createPaidCourse(t, db, 99.99)

	payment, err := NewPayment(db, buyer.ID, course.ID, "", "card")
	require.NoError(t, err)

	_, err = CompletePayment(db, payment.ID, "txn_1")
	require.NoError(t, err)

	_, err = CompletePayment(db, payment.ID, "txn_2")
	assert.ErrorIs(t, err, ErrInvalidPaymentState)

	// The losing completion does not overwrite the recorded transaction ID
	var updated commerceModels.Payment
	require.NoError(t, db.First(&updated, payment.ID).Error)
	assert.Equal(t, commerceModels.PaymentStatusCompleted, updated.Status)
	assert.Equal(t, "txn_1", updated.TransactionID)
}

func TestCompletePaymentGatewayDeclined(t *testing.T) {
	db := setupTestDB(t)
	buyer := createBuyer(t, db)
	course := createPaidCourse(t, db, 100)

	payment, err := NewPayment(db, buyer.ID, course.ID, "", "card")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","data":{"transaction_id":"txn_declined","state":"failed"}}`))
	}))
	defer srv.Close()

	config.AppConfig = &config.Config{GatewayApiURL: srv.URL + "/", GatewayVerify: true, GatewayTimeout: 5}
	defer func() { config.AppConfig = nil }()

	_, err = CompletePayment(db, payment.ID, "txn_declined")
	assert.ErrorIs(t, err, ErrPaymentDeclined)

	var updated commerceModels.Payment
	require.NoError(t, db.First(&updated, payment.ID).Error)
	assert.Equal(t, commerceModels.PaymentStatusFailed, updated.Status)
	assert.Equal(t, "txn_declined", updated.TransactionID)

	// A declined payment grants no course access
	var count int64
	db.Model(&courseModels.Enrollment{}).Where("user_id = ?", buyer.ID).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestCompletePaymentUnknown(t *testing.T) {
	db := setupTestDB(t)

	_, err := CompletePayment(db, 9999, "txn_x")
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestRefundRevokesEnrollment(t *testing.T) {
	db := setupTestDB(t)
	buyer := createBuyer(t, db)
	course := createPaidCourse(t, db, 100)
	coupon := createCoupon(t, db, commerceModels.Coupon{
		Code: "OFF10", DiscountType: commerceModels.DiscountFixed, DiscountValue: 10, IsActive: true,
	})

	payment, err := NewPayment(db, buyer.ID, course.ID, "OFF10", "card")
	require.NoError(t, err)
	_, err = CompletePayment(db, payment.ID, "txn_refund_me")
	require.NoError(t, err)

	refunded, err := RefundCoursePayment(db, payment.ID, "requested by user")
	require.NoError(t, err)
	assert.Equal(t, commerceModels.PaymentStatusRefunded, refunded.Status)
	assert.Equal(t, "requested by user", refunded.RefundReason)

	var count int64
	db.Model(&courseModels.Enrollment{}).Where("user_id = ? AND course_id = ?", buyer.ID, course.ID).Count(&count)
	assert.EqualValues(t, 0, count)

	// The coupon stays spent after the refund
	var updated commerceModels.Coupon
	require.NoError(t, db.First(&updated, coupon.ID).Error)
	assert.Equal(t, 1, updated.UsedCount)
}

func TestRefundRequiresCompleted(t *testing.T) {
	db := setupTestDB(t)
	buyer := createBuyer(t, db)
	course := createPaidCourse(t, db, 100)

	payment, err := NewPayment(db, buyer.ID, course.ID, "", "card")
	require.NoError(t, err)

	_, err = RefundCoursePayment(db, payment.ID, "too early")
	assert.ErrorIs(t, err, ErrInvalidPaymentState)
}

func TestRefundPaymentOnlyOnce(t *testing.T) {
	db := setupTestDB(t)
	buyer := createBuyer(t, db)
	course := createPaidCourse(t, db, 100)

	payment, err := NewPayment(db, buyer.ID, course.ID, "", "card")
	require.NoError(t, err)
	_, err = CompletePayment(db, payment.ID, "txn_1")
	require.NoError(t, err)

	_, err = RefundCoursePayment(db, payment.ID, "first request")
	require.NoError(t, err)

	// A second refund loses the conditional update and keeps the first reason
	_, err = RefundCoursePayment(db, payment.ID, "second request")
	assert.ErrorIs(t, err, ErrInvalidPaymentState)

	var updated commerceModels.Payment
	require.NoError(t, db.First(&updated, payment.ID).Error)
	assert.Equal(t, commerceModels.PaymentStatusRefunded, updated.Status)
	assert.Equal(t, "first request", updated.RefundReason)
}

func TestCreateCouponHandlerDuplicateCode(t *testing.T) {
	db := setupTestDB(t)
	database.Database = database.DbInstance{Db: db}

	app := fiber.New()
	app.Post("/coupon", func(c *fiber.Ctx) error {
		c.Locals("validatedCoupon", &paymentValidator.CreateCouponRequest{
			Code: "WELCOME10", DiscountType: "percentage", DiscountValue: 10,
		})
		return CreateCoupon(c)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/coupon", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodPost, "/coupon", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// Database failures other than a duplicate code are not reported as conflicts
	require.NoError(t, db.Migrator().DropTable(&commerceModels.Coupon{}))
	resp, err = app.Test(httptest.NewRequest(fiber.MethodPost, "/coupon", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
