package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"paxum-payment-service/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.PaymentSession{}, &model.WebhookEvent{}))
	return db
}

func newSession(refID string, status model.PaymentStatus) *model.PaymentSession {
	return &model.PaymentSession{
		ID:          uuid.NewString(),
		RefID:       refID,
		LeadID:      "l1",
		ReportID:    "r1",
		Amount:      decimal.NewFromInt(500),
		Currency:    "USD",
		Description: "Growth report",
		Status:      status,
		ExpiresAt:   time.Now().Add(24 * time.Hour),
	}
}

func TestPaymentSessionRepository_CreateAndFind(t *testing.T) {
	repo := NewPaymentSessionRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newSession("l1-r1-1", model.StatusPending)))

	found, err := repo.FindByRefID(ctx, "l1-r1-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, model.StatusPending, found.Status)
	assert.True(t, found.Amount.Equal(decimal.NewFromInt(500)))

	missing, err := repo.FindByRefID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPaymentSessionRepository_UpdateStatusGuardsTerminal(t *testing.T) {
	repo := NewPaymentSessionRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newSession("l1-r1-2", model.StatusPending)))

	now := time.Now()
	rows, err := repo.UpdateStatusByRefID(ctx, "l1-r1-2", StatusUpdate{
		Status:      model.StatusCompleted,
		CompletedAt: &now,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	// A stale "pending" arriving after completion must not regress the row.
	rows, err = repo.UpdateStatusByRefID(ctx, "l1-r1-2", StatusUpdate{
		Status: model.StatusProcessing,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	found, err := repo.FindByRefID(ctx, "l1-r1-2")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, found.Status)
	require.NotNil(t, found.CompletedAt)
}

func TestPaymentSessionRepository_UpdateUnknownRefID(t *testing.T) {
	repo := NewPaymentSessionRepository(newTestDB(t))

	rows, err := repo.UpdateStatusByRefID(context.Background(), "ghost", StatusUpdate{
		Status: model.StatusFailed,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
}

func TestWebhookEventRepository_Ledger(t *testing.T) {
	repo := NewWebhookEventRepository(newTestDB(t))
	ctx := context.Background()

	key := "payment.completed:l1-r1-3:completed"

	exists, err := repo.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	event := &model.WebhookEvent{
		EventKey:   key,
		EventType:  "payment.completed",
		RefID:      "l1-r1-3",
		Payload:    `{"event":"payment.completed"}`,
		ReceivedAt: time.Now(),
	}
	require.NoError(t, repo.Record(ctx, event))

	// Unprocessed events do not count as seen; a retry may still run.
	exists, err = repo.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.MarkProcessed(ctx, key))

	exists, err = repo.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	// Redelivery of the same key keeps the original audit row.
	require.NoError(t, repo.Record(ctx, &model.WebhookEvent{
		EventKey:   key,
		EventType:  "payment.completed",
		ReceivedAt: time.Now(),
	}))
}

func TestWebhookEventRepository_MarkFailed(t *testing.T) {
	repo := NewWebhookEventRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, &model.WebhookEvent{
		EventKey:   "payment.failed:x:failed",
		EventType:  "payment.failed",
		ReceivedAt: time.Now(),
	}))
	require.NoError(t, repo.MarkFailed(ctx, "payment.failed:x:failed", "store unavailable"))

	exists, err := repo.Exists(ctx, "payment.failed:x:failed")
	require.NoError(t, err)
	assert.False(t, exists)
}
