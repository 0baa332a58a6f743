package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"простая команда", "/start", "start"},
		{"команда с аргументами", "/coupon SALE10", "coupon"},
		{"команда с упоминанием бота", "/start@shop_bot", "start"},
		{"упоминание бота и аргументы", "/stock@shop_bot 5 off", "stock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCommand(tt.text))
		})
	}
}

func TestParseArgs(t *testing.T) {
	assert.Equal(t, "SALE10", ParseArgs("/coupon SALE10"))
	assert.Equal(t, "5 off", ParseArgs("/stock 5 off"))
	assert.Equal(t, "", ParseArgs("/orders"))
}
