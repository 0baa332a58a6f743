package jobs

import (
	"io"
	"testing"
	"time"

	"log/slog"

	"github.com/stretchr/testify/assert"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPaymentPoller_NextRun(t *testing.T) {
	now := time.Now()

	t.Run("тикает с заданным интервалом", func(t *testing.T) {
		j := NewPaymentPoller(nil, 30*time.Second, testLogger())
		assert.Equal(t, now.Add(30*time.Second), j.NextRun(now))
	})

	t.Run("нулевой интервал заменяется дефолтным", func(t *testing.T) {
		j := NewPaymentPoller(nil, 0, testLogger())
		assert.Equal(t, now.Add(time.Minute), j.NextRun(now))
	})

	t.Run("имя джобы", func(t *testing.T) {
		assert.Equal(t, "payment-poller", NewPaymentPoller(nil, time.Minute, testLogger()).Name())
	})
}

func TestOrderExpirer_NextRun(t *testing.T) {
	now := time.Now()

	t.Run("тикает с заданным интервалом", func(t *testing.T) {
		j := NewOrderExpirer(nil, time.Minute, testLogger())
		assert.Equal(t, now.Add(time.Minute), j.NextRun(now))
	})

	t.Run("нулевой интервал заменяется дефолтным", func(t *testing.T) {
		j := NewOrderExpirer(nil, 0, testLogger())
		assert.Equal(t, now.Add(5*time.Minute), j.NextRun(now))
	})

	t.Run("имя джобы", func(t *testing.T) {
		assert.Equal(t, "order-expirer", NewOrderExpirer(nil, time.Minute, testLogger()).Name())
	})
}
