package model

// Wire shapes for the Paxos/Paxum API. All provider format knowledge lives
// here and in internal/client.

type PaxosTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type PaxosPaymentRequest struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
	RefID       string `json:"ref_id"`
}

type PaxosPaymentResponse struct {
	ID         string `json:"id"`
	RefID      string `json:"ref_id"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	Status     string `json:"status"`
	PaymentURL string `json:"payment_url,omitempty"`
	CreatedAt  string `json:"created_at"`
}

type PaxosStatementPayment struct {
	ID            string `json:"id"`
	RefID         string `json:"ref_id"`
	PaymentAmount string `json:"payment_amount"`
	PaymentStatus string `json:"payment_status"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type PaxosPaymentListResponse struct {
	Payments []PaxosStatementPayment `json:"payments"`
}

type WebhookPayload struct {
	Event string      `json:"event"`
	Data  WebhookData `json:"data"`
}

type WebhookData struct {
	RefID         string  `json:"ref_id"`
	PaymentAmount float64 `json:"payment_amount"`
	Status        string  `json:"status"`
	PaymentID     string  `json:"payment_id,omitempty"`
	TransactionID string  `json:"transaction_id,omitempty"`
	Error         string  `json:"error,omitempty"`
}
