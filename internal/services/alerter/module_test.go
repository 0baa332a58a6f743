package alerter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestService_AlertDeduplication(t *testing.T) {
	t.Run("duplicate_within_window_is_suppressed", func(t *testing.T) {
		s := &Service{lastSent: make(map[string]time.Time)}

		assert.False(t, s.recentlySent("boom"))
		s.markSent("boom")

		assert.True(t, s.recentlySent("boom"))
		assert.False(t, s.recentlySent("другой текст"))
	})

	t.Run("alert_goes_out_again_after_window", func(t *testing.T) {
		s := &Service{lastSent: map[string]time.Time{
			"boom": time.Now().Add(-dedupWindow - time.Minute),
		}}

		assert.False(t, s.recentlySent("boom"))
	})

	t.Run("mark_sent_drops_stale_entries", func(t *testing.T) {
		s := &Service{lastSent: map[string]time.Time{
			"старый": time.Now().Add(-dedupWindow - time.Minute),
		}}

		s.markSent("новый")

		assert.Len(t, s.lastSent, 1)
		assert.Contains(t, s.lastSent, "новый")
	})
}
