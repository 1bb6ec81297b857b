package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPaymentStatusIsTerminal(t *testing.T) {
	for _, status := range []PaymentStatus{StatusCompleted, StatusFailed, StatusCancelled, StatusExpired} {
		assert.True(t, status.IsTerminal(), "expected %s to be terminal", status)
	}
	for _, status := range []PaymentStatus{StatusPending, StatusProcessing} {
		assert.False(t, status.IsTerminal(), "expected %s to be non-terminal", status)
	}
}

func TestPaymentStatusIsValid(t *testing.T) {
	assert.True(t, StatusPending.IsValid())
	assert.False(t, PaymentStatus("PAYMENT_STATUS_SETTLED").IsValid())
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()

	t.Run("pending past ttl", func(t *testing.T) {
		session := &PaymentSession{Status: StatusPending, ExpiresAt: now.Add(-time.Minute)}
		assert.True(t, session.Expired(now))
	})

	t.Run("pending inside ttl", func(t *testing.T) {
		session := &PaymentSession{Status: StatusPending, ExpiresAt: now.Add(time.Hour)}
		assert.False(t, session.Expired(now))
	})

	t.Run("terminal never expires", func(t *testing.T) {
		session := &PaymentSession{Status: StatusCompleted, ExpiresAt: now.Add(-time.Hour)}
		assert.False(t, session.Expired(now))
	})
}
