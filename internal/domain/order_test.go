package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrder_IsPaymentExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name     string
		deadline *time.Time
		want     bool
	}{
		{
			name:     "без дедлайна заказ не истекает",
			deadline: nil,
			want:     false,
		},
		{
			name:     "дедлайн в будущем",
			deadline: &future,
			want:     false,
		},
		{
			name:     "дедлайн в прошлом",
			deadline: &past,
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{PaymentExpiresAt: tt.deadline}
			assert.Equal(t, tt.want, o.IsPaymentExpired(now))
		})
	}
}
