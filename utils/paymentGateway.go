package utils

import (
	"fmt"
	"time"

	"lms/config"

	"github.com/go-resty/resty/v2"
)

// GatewayTransactionResponse represents the response from the payment gateway
// transaction lookup API
type GatewayTransactionResponse struct {
	Data struct {
		TransactionID string  `json:"transaction_id"`
		Amount        float64 `json:"amount"`
		State         string  `json:"state"` // captured, failed, pending
	} `json:"data"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// VerifyGatewayTransaction checks a transaction reference with the payment
// gateway and reports whether the funds were captured. Only called when
// GATEWAY_VERIFY is enabled.
func VerifyGatewayTransaction(transactionID string) (bool, error) {
	if transactionID == "" {
		return false, fmt.Errorf("transaction id is required")
	}

	client := resty.New().
		SetBaseURL(config.AppConfig.GatewayApiURL).
		SetTimeout(time.Duration(config.AppConfig.GatewayTimeout) * time.Second).
		SetHeader("Authorization", "Bearer "+config.AppConfig.GatewayApiKey)

	result := new(GatewayTransactionResponse)
	resp, err := client.R().
		SetResult(result).
		SetPathParam("id", transactionID).
		Get("transactions/{id}")
	if err != nil {
		return false, fmt.Errorf("failed to reach payment gateway: %v", err)
	}

	if resp.StatusCode() != 200 {
		return false, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode(), result.Message)
	}

	return result.Data.State == "captured", nil
}
