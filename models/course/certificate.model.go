package course

import (
	"time"

	"gorm.io/gorm"
)

// Certificate represents an issued certificate for course completion
type Certificate struct {
	gorm.Model
	UserID         uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_certificates_user_course"`
	CourseID       uint      `json:"course_id" gorm:"not null;uniqueIndex:idx_certificates_user_course"`
	Code           string    `json:"code" gorm:"uniqueIndex;not null"`
	CertificateURL string    `json:"certificate_url"`
	IssuedAt       time.Time `json:"issued_at"`
}
