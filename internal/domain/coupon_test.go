package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCoupon_Discount(t *testing.T) {
	tests := []struct {
		name         string
		discountType DiscountType
		value        decimal.Decimal
		amount       decimal.Decimal
		want         decimal.Decimal
	}{
		{
			name:         "процент от суммы",
			discountType: DiscountTypePercent,
			value:        decimal.NewFromInt(10),
			amount:       decimal.NewFromInt(200),
			want:         decimal.NewFromInt(20),
		},
		{
			name:         "дробный процент",
			discountType: DiscountTypePercent,
			value:        decimal.RequireFromString("2.5"),
			amount:       decimal.NewFromInt(80),
			want:         decimal.NewFromInt(2),
		},
		{
			name:         "фиксированная скидка",
			discountType: DiscountTypeFixed,
			value:        decimal.NewFromInt(30),
			amount:       decimal.NewFromInt(200),
			want:         decimal.NewFromInt(30),
		},
		{
			name:         "фиксированная скидка не превышает сумму заказа",
			discountType: DiscountTypeFixed,
			value:        decimal.NewFromInt(500),
			amount:       decimal.NewFromInt(200),
			want:         decimal.NewFromInt(200),
		},
		{
			name:         "сто процентов обнуляют заказ",
			discountType: DiscountTypePercent,
			value:        decimal.NewFromInt(100),
			amount:       decimal.NewFromInt(75),
			want:         decimal.NewFromInt(75),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Coupon{DiscountType: tt.discountType, DiscountValue: tt.value}
			got := c.Discount(tt.amount)
			assert.True(t, got.Equal(tt.want), "want %s, got %s", tt.want, got)
		})
	}
}
