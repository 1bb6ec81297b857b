package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"paxum-payment-service/internal/config"
	"paxum-payment-service/internal/model"
)

type PaxosClient interface {
	CreatePayment(ctx context.Context, req *model.PaxosPaymentRequest) (*model.PaxosPaymentResponse, error)
	GetPaymentByRefID(ctx context.Context, refID string) (*model.PaxosPaymentResponse, error)
	ListPayments(ctx context.Context, refIDs []string) ([]model.PaxosStatementPayment, error)
}

type paxosClientImpl struct {
	httpClient *http.Client
	baseApiURL string
	tokens     TokenManager
	logger     *zap.SugaredLogger
}

func NewPaxosClient(paxosCfg *config.Paxos, tokens TokenManager, logger *zap.SugaredLogger) PaxosClient {
	return &paxosClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL: paxosCfg.BaseApiURL,
		tokens:     tokens,
		logger:     logger,
	}
}

func (c *paxosClientImpl) CreatePayment(ctx context.Context, payment *model.PaxosPaymentRequest) (*model.PaxosPaymentResponse, error) {
	token, err := c.tokens.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get paxos access token: %w", err)
	}

	body, err := json.Marshal(payment)
	if err != nil {
		return nil, fmt.Errorf("marshal payment request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/payments", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Body: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, &RequestError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	var result model.PaxosPaymentResponse
	if err := decodeJSON(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("decode create payment response: %w", err)
	}

	return &result, nil
}

// GetPaymentByRefID queries the provider statement endpoint for a single
// ref_id. A nil result with nil error means the provider has no matching
// payment, which is a normal negative outcome, not a fault.
func (c *paxosClientImpl) GetPaymentByRefID(ctx context.Context, refID string) (*model.PaxosPaymentResponse, error) {
	payments, err := c.ListPayments(ctx, []string{refID})
	if err != nil {
		return nil, err
	}
	if len(payments) == 0 {
		return nil, nil
	}

	p := payments[0]
	return &model.PaxosPaymentResponse{
		ID:        p.ID,
		RefID:     p.RefID,
		Amount:    p.PaymentAmount,
		Currency:  "USD",
		Status:    p.PaymentStatus,
		CreatedAt: p.CreatedAt,
	}, nil
}

func (c *paxosClientImpl) ListPayments(ctx context.Context, refIDs []string) ([]model.PaxosStatementPayment, error) {
	token, err := c.tokens.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get paxos access token: %w", err)
	}

	query := url.Values{}
	for _, id := range refIDs {
		query.Add("ref_ids[]", id)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseApiURL+"/statements/payments?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Body: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, &RequestError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	var result model.PaxosPaymentListResponse
	if err := decodeJSON(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("decode payment list response: %w", err)
	}

	return result.Payments, nil
}

func decodeJSON(r io.Reader, v any) error {
	return json.NewDecoder(r).Decode(v)
}

var paxosStatusMap = map[string]model.PaymentStatus{
	"PAYMENT_STATUS_PENDING":    model.StatusPending,
	"PAYMENT_STATUS_PROCESSING": model.StatusProcessing,
	"PAYMENT_STATUS_COMPLETED":  model.StatusCompleted,
	"PAYMENT_STATUS_FAILED":     model.StatusFailed,
	"PAYMENT_STATUS_CANCELLED":  model.StatusCancelled,
}

// MapPaymentStatus translates a provider-native status into the internal
// enum. Unrecognized values map to pending rather than assuming an outcome;
// the provider may introduce statuses this client does not know yet.
func MapPaymentStatus(nativeStatus string, logger *zap.SugaredLogger) model.PaymentStatus {
	if status, ok := paxosStatusMap[nativeStatus]; ok {
		return status
	}
	logger.Warnw("unrecognized paxos payment status, defaulting to pending",
		"native_status", nativeStatus)
	return model.StatusPending
}
