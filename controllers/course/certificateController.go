package controllers

import (
	"errors"
	"time"

	"lms/config"
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const certificateCodeRetries = 3

// IssueCertificate creates the completion certificate for a (student, course)
// pair. The pair's unique index guarantees at most one certificate even under
// concurrent issuance; a random code collision is retried.
func IssueCertificate(tx *gorm.DB, userID, courseID uint) (*courseModels.Certificate, error) {
	var user models.User
	if err := tx.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return nil, ErrStudentNotFound
	}

	var course courseModels.Course
	if err := tx.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return nil, ErrCourseNotFound
	}

	var enrollment courseModels.Enrollment
	if err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error; err != nil {
		return nil, ErrCourseNotCompleted
	}
	if !enrollment.IsCompleted {
		return nil, ErrCourseNotCompleted
	}

	var existing courseModels.Certificate
	if err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error; err == nil {
		return nil, ErrCertificateExists
	}

	for attempt := 0; attempt < certificateCodeRetries; attempt++ {
		code := utils.GenerateCertificateCode(courseID, userID)
		certificate := courseModels.Certificate{
			UserID:         userID,
			CourseID:       courseID,
			Code:           code,
			CertificateURL: config.AppConfig.CertificateBaseURL + "/verify/" + code,
			IssuedAt:       time.Now(),
		}

		err := tx.Create(&certificate).Error
		if err == nil {
			return &certificate, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}

		// Duplicate key: either a concurrent issuance won the pair index, or
		// the random code collided. Re-check the pair before retrying.
		if err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error; err == nil {
			return nil, ErrCertificateExists
		}
	}

	return nil, errors.New("failed to allocate a unique certificate code")
}

// Regenerate assigns a fresh code and URL to an existing certificate while
// preserving its identity.
func Regenerate(db *gorm.DB, certificateID uint) (*courseModels.Certificate, error) {
	var certificate courseModels.Certificate
	if err := db.Where("id = ?", certificateID).First(&certificate).Error; err != nil {
		return nil, ErrCertificateNotFound
	}

	for attempt := 0; attempt < certificateCodeRetries; attempt++ {
		code := utils.GenerateCertificateCode(certificate.CourseID, certificate.UserID)
		certificate.Code = code
		certificate.CertificateURL = config.AppConfig.CertificateBaseURL + "/verify/" + code
		certificate.IssuedAt = time.Now()

		err := db.Save(&certificate).Error
		if err == nil {
			return &certificate, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
	}

	return nil, errors.New("failed to allocate a unique certificate code")
}

// FindCertificateByCode looks up a certificate by its public code. Pure read.
func FindCertificateByCode(db *gorm.DB, code string) (*courseModels.Certificate, error) {
	var certificate courseModels.Certificate
	if err := db.Where("code = ?", code).First(&certificate).Error; err != nil {
		return nil, ErrCertificateNotFound
	}
	return &certificate, nil
}

// GenerateCertificate issues a certificate for the current user's completed course
func GenerateCertificate(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var certificate *courseModels.Certificate
	err := database.Database.Db.Transaction(func(tx *gorm.DB) error {
		cert, err := IssueCertificate(tx, userID, uint(courseID))
		if err != nil {
			return err
		}
		certificate = cert
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrStudentNotFound):
			return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
		case errors.Is(err, ErrCourseNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		case errors.Is(err, ErrCourseNotCompleted):
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Please complete the course before requesting a certificate!", nil)
		case errors.Is(err, ErrCertificateExists):
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Certificate already issued!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to issue certificate!", nil)
	}

	utils.Notify(userID, "certificate_issued", "Certificate Issued",
		"Congratulations! Your course completion certificate is ready. Code: "+certificate.Code)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate issued successfully!", certificate)
}

// RegenerateCertificate re-issues an existing certificate with a new code
func RegenerateCertificate(c *fiber.Ctx) error {
	certificateID := c.Locals("certificateID").(int)

	certificate, err := Regenerate(database.Database.Db, uint(certificateID))
	if err != nil {
		if errors.Is(err, ErrCertificateNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to regenerate certificate!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate regenerated successfully!", certificate)
}

// VerifyCertificate validates a certificate code. Public, no side effects.
func VerifyCertificate(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Certificate code is required!", nil)
	}

	certificate, err := FindCertificateByCode(database.Database.Db, code)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate is valid!", certificate)
}

// GetUserCertificates gets all certificates for the current user
func GetUserCertificates(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	type CertificateWithCourse struct {
		courseModels.Certificate
		CourseTitle string `json:"course_title"`
	}

	var certificates []courseModels.Certificate
	if err := database.Database.Db.Where("user_id = ?", userID).Order("issued_at desc").Find(&certificates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}

	result := make([]CertificateWithCourse, len(certificates))
	for i, cert := range certificates {
		var course courseModels.Course
		database.Database.Db.Where("id = ?", cert.CourseID).First(&course)
		result[i] = CertificateWithCourse{
			Certificate: cert,
			CourseTitle: course.Title,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", fiber.Map{
		"certificates": result,
		"total":        len(result),
	})
}
