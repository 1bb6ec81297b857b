package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"paxum-payment-service/internal/config"
	"paxum-payment-service/internal/model"
)

type staticTokens struct{}

func (staticTokens) GetToken(ctx context.Context) (string, error) { return "tok-static", nil }
func (staticTokens) ClearCache()                                  {}
func (staticTokens) Info() TokenInfo                              { return TokenInfo{HasToken: true} }

func newTestPaxosClient(baseURL string) PaxosClient {
	return NewPaxosClient(&config.Paxos{BaseApiURL: baseURL}, staticTokens{}, zap.NewNop().Sugar())
}

func TestPaxosClient_CreatePayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/payments", r.URL.Path)
		assert.Equal(t, "Bearer tok-static", r.Header.Get("Authorization"))

		var req model.PaxosPaymentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "500.00", req.Amount)
		assert.Equal(t, "USD", req.Currency)
		assert.Equal(t, "l1-r1-123", req.RefID)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(model.PaxosPaymentResponse{
			ID:         "pax-1",
			RefID:      req.RefID,
			Amount:     req.Amount,
			Currency:   req.Currency,
			Status:     "PAYMENT_STATUS_PENDING",
			PaymentURL: "https://pay.example/pax-1",
		})
	}))
	defer srv.Close()

	c := newTestPaxosClient(srv.URL)
	resp, err := c.CreatePayment(context.Background(), &model.PaxosPaymentRequest{
		Amount:      "500.00",
		Currency:    "USD",
		Description: "Growth report",
		RefID:       "l1-r1-123",
	})
	require.NoError(t, err)
	assert.Equal(t, "pax-1", resp.ID)
	assert.Equal(t, "https://pay.example/pax-1", resp.PaymentURL)
}

func TestPaxosClient_CreatePaymentHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"amount too small"}`))
	}))
	defer srv.Close()

	c := newTestPaxosClient(srv.URL)
	_, err := c.CreatePayment(context.Background(), &model.PaxosPaymentRequest{RefID: "x"})

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusUnprocessableEntity, reqErr.StatusCode)
	assert.Contains(t, reqErr.Body, "amount too small")
}

func TestPaxosClient_GetPaymentByRefID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/statements/payments", r.URL.Path)
			assert.Equal(t, "l1-r1-123", r.URL.Query().Get("ref_ids[]"))
			json.NewEncoder(w).Encode(model.PaxosPaymentListResponse{
				Payments: []model.PaxosStatementPayment{{
					ID:            "pax-1",
					RefID:         "l1-r1-123",
					PaymentAmount: "500.00",
					PaymentStatus: "PAYMENT_STATUS_COMPLETED",
				}},
			})
		}))
		defer srv.Close()

		c := newTestPaxosClient(srv.URL)
		resp, err := c.GetPaymentByRefID(context.Background(), "l1-r1-123")
		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, "pax-1", resp.ID)
		assert.Equal(t, "PAYMENT_STATUS_COMPLETED", resp.Status)
	})

	t.Run("not found is nil, not an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(model.PaxosPaymentListResponse{})
		}))
		defer srv.Close()

		c := newTestPaxosClient(srv.URL)
		resp, err := c.GetPaymentByRefID(context.Background(), "ghost")
		require.NoError(t, err)
		assert.Nil(t, resp)
	})

	t.Run("http failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		c := newTestPaxosClient(srv.URL)
		_, err := c.GetPaymentByRefID(context.Background(), "l1-r1-123")
		var reqErr *RequestError
		assert.True(t, errors.As(err, &reqErr))
	})
}

func TestMapPaymentStatus(t *testing.T) {
	logger := zap.NewNop().Sugar()

	tests := []struct {
		native string
		want   model.PaymentStatus
	}{
		{"PAYMENT_STATUS_PENDING", model.StatusPending},
		{"PAYMENT_STATUS_PROCESSING", model.StatusProcessing},
		{"PAYMENT_STATUS_COMPLETED", model.StatusCompleted},
		{"PAYMENT_STATUS_FAILED", model.StatusFailed},
		{"PAYMENT_STATUS_CANCELLED", model.StatusCancelled},
		// Unknown provider statuses stay conservative.
		{"PAYMENT_STATUS_SETTLED", model.StatusPending},
		{"", model.StatusPending},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MapPaymentStatus(tt.native, logger),
			"native status %q", tt.native)
	}
}
