package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"paxum-payment-service/internal/model"
)

type PaymentSessionRepository interface {
	Create(ctx context.Context, session *model.PaymentSession) error
	FindByRefID(ctx context.Context, refID string) (*model.PaymentSession, error)
	UpdateStatusByRefID(ctx context.Context, refID string, update StatusUpdate) (int64, error)
}

// StatusUpdate carries the fields a reconciliation is allowed to touch.
type StatusUpdate struct {
	Status         model.PaymentStatus
	PaxosPaymentID string
	ErrorMessage   string
	CompletedAt    *time.Time
}

type paymentSessionRepoImpl struct {
	db *gorm.DB
}

func NewPaymentSessionRepository(db *gorm.DB) PaymentSessionRepository {
	return &paymentSessionRepoImpl{
		db: db,
	}
}

func (r *paymentSessionRepoImpl) Create(ctx context.Context, session *model.PaymentSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// FindByRefID returns (nil, nil) when no session matches, keeping "unknown
// refId" distinct from a store failure.
func (r *paymentSessionRepoImpl) FindByRefID(ctx context.Context, refID string) (*model.PaymentSession, error) {
	var session model.PaymentSession
	err := r.db.WithContext(ctx).
		Where("ref_id = ?", refID).
		First(&session).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &session, nil
}

// UpdateStatusByRefID applies a reconciled status as a guarded compare-and-set:
// the WHERE clause excludes terminal rows so a stale update can never regress
// a terminal status, regardless of delivery order. Returns the number of rows
// changed; zero means the session was missing or already terminal.
func (r *paymentSessionRepoImpl) UpdateStatusByRefID(ctx context.Context, refID string, update StatusUpdate) (int64, error) {
	values := map[string]interface{}{
		"status":     update.Status,
		"updated_at": time.Now(),
	}
	if update.PaxosPaymentID != "" {
		values["paxos_payment_id"] = update.PaxosPaymentID
	}
	if update.ErrorMessage != "" {
		values["error_message"] = update.ErrorMessage
	}
	if update.CompletedAt != nil {
		values["completed_at"] = update.CompletedAt
	}

	result := r.db.WithContext(ctx).Model(&model.PaymentSession{}).
		Where("ref_id = ? AND status NOT IN ?", refID, model.TerminalStatuses()).
		Updates(values)

	return result.RowsAffected, result.Error
}
