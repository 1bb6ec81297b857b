package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"paxum-payment-service/internal/client"
	"paxum-payment-service/internal/dto"
	"paxum-payment-service/internal/model"
	"paxum-payment-service/internal/repository"
)

// sessionTTL is how long a pending session stays payable before it is
// reported as expired on the next status read.
const sessionTTL = 24 * time.Hour

const signatureHeader = "X-Paxos-Signature"

// ReportUnlocker is the report/lead management callback invoked when a
// payment completes. Owned by the surrounding application.
type ReportUnlocker interface {
	UnlockReport(ctx context.Context, leadID, reportID string) error
}

type PaymentService interface {
	CreateSession(ctx context.Context, req *dto.CreatePaymentRequest) (*dto.CreatePaymentResponse, error)
	GetStatus(ctx context.Context, refID string) (*dto.PaymentStatusResponse, error)
	HandleWebhook(ctx context.Context, headers http.Header, body []byte) *dto.WebhookAck
}

type paymentServiceImpl struct {
	paxosClient    client.PaxosClient
	sessionRepo    repository.PaymentSessionRepository
	webhookRepo    repository.WebhookEventRepository
	unlocker       ReportUnlocker
	webhookSecret  string
	payURLTemplate string
	validate       *validator.Validate
	logger         *zap.SugaredLogger
	now            func() time.Time
}

func NewPaymentService(
	paxosClient client.PaxosClient,
	sessionRepo repository.PaymentSessionRepository,
	webhookRepo repository.WebhookEventRepository,
	unlocker ReportUnlocker,
	webhookSecret string,
	payURLTemplate string,
	logger *zap.SugaredLogger,
) PaymentService {
	return &paymentServiceImpl{
		paxosClient:    paxosClient,
		sessionRepo:    sessionRepo,
		webhookRepo:    webhookRepo,
		unlocker:       unlocker,
		webhookSecret:  webhookSecret,
		payURLTemplate: payURLTemplate,
		validate:       validator.New(),
		logger:         logger,
		now:            time.Now,
	}
}

// CreateSession validates the purchase request, creates the remote payment
// and persists the local session only after the provider confirmed. A failed
// provider call leaves no partial state; the caller retries with a fresh
// attempt, which generates a new refId.
func (s *paymentServiceImpl) CreateSession(ctx context.Context, req *dto.CreatePaymentRequest) (*dto.CreatePaymentResponse, error) {
	if verr := s.validateCreate(req); verr != nil {
		return nil, verr
	}

	now := s.now()
	// leadId + reportId + timestamp keeps refIds unique across retried
	// purchases for the same lead/report pair.
	refID := fmt.Sprintf("%s-%s-%d", req.LeadID, req.ReportID, now.UnixMilli())
	amount := decimal.NewFromFloat(req.Amount)

	resp, err := s.paxosClient.CreatePayment(ctx, &model.PaxosPaymentRequest{
		Amount:      amount.StringFixed(2),
		Currency:    req.Currency,
		Description: req.Description,
		RefID:       refID,
	})
	if err != nil {
		return nil, fmt.Errorf("paxos create payment: %w", err)
	}

	paymentURL := resp.PaymentURL
	if paymentURL == "" {
		paymentURL = fmt.Sprintf(s.payURLTemplate, resp.ID)
	}

	session := &model.PaymentSession{
		ID:             uuid.NewString(),
		RefID:          refID,
		LeadID:         req.LeadID,
		ReportID:       req.ReportID,
		Amount:         amount,
		Currency:       req.Currency,
		Description:    req.Description,
		PaxosPaymentID: resp.ID,
		PaymentURL:     paymentURL,
		Status:         model.StatusPending,
		ExpiresAt:      now.Add(sessionTTL),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("store payment session: %w", err)
	}

	s.logger.Infow("payment session created",
		"ref_id", refID, "paxos_payment_id", resp.ID, "amount", amount.StringFixed(2))

	return &dto.CreatePaymentResponse{
		PaymentSessionID: session.ID,
		PaymentURL:       paymentURL,
		RefID:            refID,
		ExpiresAt:        session.ExpiresAt,
	}, nil
}

func (s *paymentServiceImpl) validateCreate(req *dto.CreatePaymentRequest) *ValidationError {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Messages: []string{err.Error()}}
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Field() {
		case "Amount":
			messages = append(messages, "amount must be greater than 0")
		case "Currency":
			messages = append(messages, "currency must be one of USD, EUR, GBP, CAD, AUD")
		case "Description":
			messages = append(messages, "description is required")
		case "ReportID":
			messages = append(messages, "reportId is required")
		case "LeadID":
			messages = append(messages, "leadId is required")
		default:
			messages = append(messages, fe.Error())
		}
	}
	return &ValidationError{Messages: messages}
}

// GetStatus resolves the current status for a refId, reconciling the
// persisted session with the provider's view. Expiry is evaluated lazily
// here; a session past its TTL and still non-terminal becomes expired
// without a provider round-trip.
func (s *paymentServiceImpl) GetStatus(ctx context.Context, refID string) (*dto.PaymentStatusResponse, error) {
	session, err := s.sessionRepo.FindByRefID(ctx, refID)
	if err != nil {
		return nil, fmt.Errorf("load payment session: %w", err)
	}

	if session != nil {
		if session.Status.IsTerminal() {
			return sessionView(session), nil
		}
		if session.Expired(s.now()) {
			if _, err := s.sessionRepo.UpdateStatusByRefID(ctx, refID, repository.StatusUpdate{
				Status: model.StatusExpired,
			}); err != nil {
				return nil, fmt.Errorf("expire payment session: %w", err)
			}
			session.Status = model.StatusExpired
			s.logger.Infow("payment session expired", "ref_id", refID)
			return sessionView(session), nil
		}
	}

	payment, err := s.paxosClient.GetPaymentByRefID(ctx, refID)
	if err != nil {
		return nil, fmt.Errorf("paxos get payment: %w", err)
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}

	status := client.MapPaymentStatus(payment.Status, s.logger)

	if session == nil {
		// Provider knows the payment but no local session exists, answer
		// from the provider record alone.
		amount, _ := decimal.NewFromString(payment.Amount)
		view := &dto.PaymentStatusResponse{
			PaymentSessionID: payment.ID,
			Status:           string(status),
			Amount:           amount.InexactFloat64(),
			Currency:         payment.Currency,
			Description:      "Paid report purchase",
			CreatedAt:        parseProviderTime(payment.CreatedAt, s.now()),
		}
		if status == model.StatusCompleted {
			now := s.now()
			view.CompletedAt = &now
		}
		return view, nil
	}

	if status != session.Status {
		update := repository.StatusUpdate{Status: status, PaxosPaymentID: payment.ID}
		if status == model.StatusCompleted {
			now := s.now()
			update.CompletedAt = &now
		}
		rows, err := s.sessionRepo.UpdateStatusByRefID(ctx, refID, update)
		if err != nil {
			return nil, fmt.Errorf("reconcile payment session: %w", err)
		}
		if rows > 0 {
			session.Status = status
			session.CompletedAt = update.CompletedAt
		}
		// rows == 0 means a concurrent write already made the session
		// terminal; the persisted status stands.
	}

	return sessionView(session), nil
}

func sessionView(session *model.PaymentSession) *dto.PaymentStatusResponse {
	return &dto.PaymentStatusResponse{
		PaymentSessionID: session.ID,
		Status:           string(session.Status),
		Amount:           session.Amount.InexactFloat64(),
		Currency:         session.Currency,
		Description:      session.Description,
		CreatedAt:        session.CreatedAt,
		CompletedAt:      session.CompletedAt,
		ErrorMessage:     session.ErrorMessage,
	}
}

func parseProviderTime(value string, fallback time.Time) time.Time {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return fallback
}

// HandleWebhook converts a provider push notification into the same state
// transitions as polling. It never fails in the transport sense: every
// outcome, including signature or payload problems, is acknowledged so the
// provider does not pile up redeliveries. Internal failures are logged and
// flagged on the stored event for operator follow-up.
func (s *paymentServiceImpl) HandleWebhook(ctx context.Context, headers http.Header, body []byte) *dto.WebhookAck {
	ack := &dto.WebhookAck{Received: true}

	if s.webhookSecret != "" {
		if !s.verifySignature(body, headers.Get(signatureHeader)) {
			s.logger.Warnw("webhook signature verification failed, event rejected")
			ack.Error = "invalid signature"
			return ack
		}
	}

	var payload model.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		s.logger.Warnw("malformed webhook payload", "error", err)
		ack.Error = "malformed payload"
		return ack
	}
	if payload.Event == "" || payload.Data.RefID == "" {
		s.logger.Warnw("webhook payload missing event or ref_id")
		ack.Error = "malformed payload"
		return ack
	}

	// The provider sends no event id, so the ledger key is composed from the
	// fields that identify a distinct notification.
	eventKey := fmt.Sprintf("%s:%s:%s", payload.Event, payload.Data.RefID, payload.Data.Status)

	processed, err := s.webhookRepo.Exists(ctx, eventKey)
	if err != nil {
		s.logger.Errorw("webhook ledger lookup failed", "event_key", eventKey, "error", err)
		ack.Error = "processing error"
		return ack
	}
	if processed {
		s.logger.Debugw("webhook replay ignored", "event_key", eventKey)
		return ack
	}

	if err := s.webhookRepo.Record(ctx, &model.WebhookEvent{
		EventKey:   eventKey,
		EventType:  payload.Event,
		RefID:      payload.Data.RefID,
		Payload:    string(body),
		ReceivedAt: s.now(),
	}); err != nil {
		s.logger.Errorw("webhook audit record failed", "event_key", eventKey, "error", err)
		ack.Error = "processing error"
		return ack
	}

	if err := s.dispatch(ctx, &payload); err != nil {
		s.logger.Errorw("webhook processing failed",
			"event", payload.Event, "ref_id", payload.Data.RefID, "error", err)
		if merr := s.webhookRepo.MarkFailed(ctx, eventKey, err.Error()); merr != nil {
			s.logger.Errorw("webhook mark failed errored", "event_key", eventKey, "error", merr)
		}
		ack.Error = "processing error"
		return ack
	}

	if err := s.webhookRepo.MarkProcessed(ctx, eventKey); err != nil {
		s.logger.Errorw("webhook mark processed errored", "event_key", eventKey, "error", err)
	}

	return ack
}

func (s *paymentServiceImpl) verifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (s *paymentServiceImpl) dispatch(ctx context.Context, payload *model.WebhookPayload) error {
	session, err := s.sessionRepo.FindByRefID(ctx, payload.Data.RefID)
	if err != nil {
		return fmt.Errorf("load payment session: %w", err)
	}
	if session == nil {
		s.logger.Warnw("webhook for unknown ref_id, no session mutated",
			"event", payload.Event, "ref_id", payload.Data.RefID)
		return nil
	}

	switch model.WebhookEventType(payload.Event) {
	case model.EventPaymentCompleted:
		return s.handlePaymentCompleted(ctx, session, payload)
	case model.EventPaymentFailed:
		return s.handlePaymentFailed(ctx, payload)
	case model.EventPaymentPending:
		return s.handlePaymentPending(ctx, payload)
	case model.EventPaymentCancelled:
		return s.handlePaymentCancelled(ctx, payload)
	default:
		s.logger.Warnw("unknown webhook event type acknowledged without action",
			"event", payload.Event, "ref_id", payload.Data.RefID)
		return nil
	}
}

func (s *paymentServiceImpl) handlePaymentCompleted(ctx context.Context, session *model.PaymentSession, payload *model.WebhookPayload) error {
	now := s.now()
	rows, err := s.sessionRepo.UpdateStatusByRefID(ctx, payload.Data.RefID, repository.StatusUpdate{
		Status:         model.StatusCompleted,
		PaxosPaymentID: payload.Data.PaymentID,
		CompletedAt:    &now,
	})
	if err != nil {
		return fmt.Errorf("mark session completed: %w", err)
	}
	if rows == 0 {
		// Already terminal, a redelivery or a poll got there first. The
		// unlock ran on the first transition, never again.
		return nil
	}

	s.logger.Infow("payment completed",
		"ref_id", payload.Data.RefID, "amount", payload.Data.PaymentAmount)

	if err := s.unlocker.UnlockReport(ctx, session.LeadID, session.ReportID); err != nil {
		return fmt.Errorf("unlock report: %w", err)
	}
	return nil
}

func (s *paymentServiceImpl) handlePaymentFailed(ctx context.Context, payload *model.WebhookPayload) error {
	_, err := s.sessionRepo.UpdateStatusByRefID(ctx, payload.Data.RefID, repository.StatusUpdate{
		Status:       model.StatusFailed,
		ErrorMessage: payload.Data.Error,
	})
	if err != nil {
		return fmt.Errorf("mark session failed: %w", err)
	}
	s.logger.Infow("payment failed", "ref_id", payload.Data.RefID, "reason", payload.Data.Error)
	return nil
}

func (s *paymentServiceImpl) handlePaymentPending(ctx context.Context, payload *model.WebhookPayload) error {
	_, err := s.sessionRepo.UpdateStatusByRefID(ctx, payload.Data.RefID, repository.StatusUpdate{
		Status: model.StatusProcessing,
	})
	if err != nil {
		return fmt.Errorf("mark session processing: %w", err)
	}
	return nil
}

func (s *paymentServiceImpl) handlePaymentCancelled(ctx context.Context, payload *model.WebhookPayload) error {
	_, err := s.sessionRepo.UpdateStatusByRefID(ctx, payload.Data.RefID, repository.StatusUpdate{
		Status: model.StatusCancelled,
	})
	if err != nil {
		return fmt.Errorf("mark session cancelled: %w", err)
	}
	s.logger.Infow("payment cancelled", "ref_id", payload.Data.RefID)
	return nil
}
