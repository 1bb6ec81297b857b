package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	StatusPending    PaymentStatus = "pending"
	StatusProcessing PaymentStatus = "processing"
	StatusCompleted  PaymentStatus = "completed"
	StatusFailed     PaymentStatus = "failed"
	StatusCancelled  PaymentStatus = "cancelled"
	StatusExpired    PaymentStatus = "expired"
)

// IsTerminal reports whether no further status transition is permitted.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// TerminalStatuses is the closed set of statuses from which no transition is
// permitted. Used by the repository layer as a guard on status writes.
func TerminalStatuses() []PaymentStatus {
	return []PaymentStatus{StatusCompleted, StatusFailed, StatusCancelled, StatusExpired}
}

func (s PaymentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// PaymentSession is the durable record of one paid-report purchase attempt.
// RefID is the only key usable to correlate provider webhooks with a session;
// it is immutable once assigned. Rows are never deleted, pending sessions age
// out via ExpiresAt.
type PaymentSession struct {
	ID             string          `gorm:"primaryKey;size:64;not null"`
	RefID          string          `gorm:"size:128;uniqueIndex;not null"`
	LeadID         string          `gorm:"size:64;index;not null"`
	ReportID       string          `gorm:"size:64;index;not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency       string          `gorm:"size:8;not null"`
	Description    string          `gorm:"size:512;not null"`
	PaxosPaymentID string          `gorm:"size:64;index"`
	PaymentURL     string          `gorm:"size:512"`
	Status         PaymentStatus   `gorm:"size:32;index;not null"`
	ErrorMessage   string          `gorm:"size:512"`
	Metadata       string          `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	CompletedAt    *time.Time
	ExpiresAt      time.Time `gorm:"index;not null"`
}

// Expired reports whether a still-pending session has outlived its TTL.
func (p *PaymentSession) Expired(now time.Time) bool {
	return !p.Status.IsTerminal() && now.After(p.ExpiresAt)
}

type WebhookEventType string

const (
	EventPaymentCompleted WebhookEventType = "payment.completed"
	EventPaymentFailed    WebhookEventType = "payment.failed"
	EventPaymentPending   WebhookEventType = "payment.pending"
	EventPaymentCancelled WebhookEventType = "payment.cancelled"
)

// WebhookEvent is the audit and idempotency ledger for inbound provider
// notifications. EventKey composes event type, ref_id and provider status
// because the provider payload carries no event id of its own.
type WebhookEvent struct {
	ID           uint   `gorm:"primaryKey"`
	EventKey     string `gorm:"size:256;uniqueIndex;not null"`
	EventType    string `gorm:"size:64;index;not null"`
	RefID        string `gorm:"size:128;index"`
	Payload      string `gorm:"type:text"`
	Processed    bool   `gorm:"index;not null"`
	ProcessedAt  *time.Time
	ErrorMessage string `gorm:"size:512"`
	ReceivedAt   time.Time
	CreatedAt    time.Time
}
