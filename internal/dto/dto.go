package dto

import "time"

type CreatePaymentRequest struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Currency    string  `json:"currency" validate:"required,oneof=USD EUR GBP CAD AUD"`
	Description string  `json:"description" validate:"required,max=500"`
	ReportID    string  `json:"reportId" validate:"required"`
	LeadID      string  `json:"leadId" validate:"required"`
}

type CreatePaymentResponse struct {
	PaymentSessionID string    `json:"paymentSessionId"`
	PaymentURL       string    `json:"paymentUrl"`
	RefID            string    `json:"refId"`
	ExpiresAt        time.Time `json:"expiresAt"`
}

type PaymentStatusResponse struct {
	PaymentSessionID string     `json:"paymentSessionId"`
	Status           string     `json:"status"`
	Amount           float64    `json:"amount"`
	Currency         string     `json:"currency"`
	Description      string     `json:"description"`
	CreatedAt        time.Time  `json:"createdAt"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	ErrorMessage     string     `json:"errorMessage,omitempty"`
}

// WebhookAck is always delivered with HTTP 200, even when processing failed
// internally, so the provider does not pile up redeliveries. Error carries a
// diagnostic for the provider's delivery log.
type WebhookAck struct {
	Received bool   `json:"received"`
	Error    string `json:"error,omitempty"`
}
