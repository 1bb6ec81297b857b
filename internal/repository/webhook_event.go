package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"paxum-payment-service/internal/model"
)

type WebhookEventRepository interface {
	Exists(ctx context.Context, eventKey string) (bool, error)
	Record(ctx context.Context, event *model.WebhookEvent) error
	MarkProcessed(ctx context.Context, eventKey string) error
	MarkFailed(ctx context.Context, eventKey string, errorMessage string) error
}

type webhookEventRepositoryImpl struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepositoryImpl{db: db}
}

// Exists reports whether an event with this key was already processed.
// Providers redeliver at least once; a hit here makes the replay a no-op.
func (r *webhookEventRepositoryImpl) Exists(ctx context.Context, eventKey string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.WebhookEvent{}).
		Where("event_key = ? AND processed = ?", eventKey, true).
		Count(&count).Error

	return count > 0, err
}

// Record stores the raw event for audit before any processing happens.
// Redeliveries of the same key keep the original row.
func (r *webhookEventRepositoryImpl) Record(ctx context.Context, event *model.WebhookEvent) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_key"}}, DoNothing: true}).
		Create(event).Error
}

func (r *webhookEventRepositoryImpl) MarkProcessed(ctx context.Context, eventKey string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.WebhookEvent{}).
		Where("event_key = ?", eventKey).
		Updates(map[string]interface{}{
			"processed":    true,
			"processed_at": now,
		}).Error
}

func (r *webhookEventRepositoryImpl) MarkFailed(ctx context.Context, eventKey string, errorMessage string) error {
	return r.db.WithContext(ctx).Model(&model.WebhookEvent{}).
		Where("event_key = ?", eventKey).
		Update("error_message", errorMessage).Error
}
