package utils

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// RoundCurrency rounds a monetary amount to two decimal places
func RoundCurrency(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// RoundPercentage converts a ratio to a whole-number percentage
func RoundPercentage(part, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// GenerateCertificateCode builds a unique certificate code from the course,
// the student and a random token. The random part keeps codes collision-free
// under concurrent issuance; the DB unique index is the final arbiter.
func GenerateCertificateCode(courseID, userID uint) string {
	token := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	return fmt.Sprintf("CERT-%d-%d-%s", courseID, userID, token)
}

// GeneratePaymentReference returns a unique internal reference for a payment
func GeneratePaymentReference() string {
	return "PAY-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:16])
}
