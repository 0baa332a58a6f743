package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType тип скидки купона
type DiscountType string

const (
	DiscountTypePercent DiscountType = "percent" // процент от суммы
	DiscountTypeFixed   DiscountType = "fixed"   // фиксированная сумма
)

// Coupon промокод на скидку
type Coupon struct {
	ID             int64            `json:"id" db:"id"`
	Code           string           `json:"code" db:"code"`
	DiscountType   DiscountType     `json:"discount_type" db:"discount_type"`
	DiscountValue  decimal.Decimal  `json:"discount_value" db:"discount_value"`
	MinOrderAmount *decimal.Decimal `json:"min_order_amount,omitempty" db:"min_order_amount"`
	MaxRedemptions *int             `json:"max_redemptions,omitempty" db:"max_redemptions"` // nil = без лимита
	PerUserLimit   int              `json:"per_user_limit" db:"per_user_limit"`
	ValidFrom      *time.Time       `json:"valid_from,omitempty" db:"valid_from"`
	ValidUntil     *time.Time       `json:"valid_until,omitempty" db:"valid_until"`
	Active         bool             `json:"active" db:"active"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
}

// Discount размер скидки для суммы заказа
func (c *Coupon) Discount(amount decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch c.DiscountType {
	case DiscountTypePercent:
		discount = amount.Mul(c.DiscountValue).Div(decimal.NewFromInt(100))
	case DiscountTypeFixed:
		discount = c.DiscountValue
	}
	if discount.GreaterThan(amount) {
		return amount
	}
	return discount
}

// RedemptionStatus статус резервирования скидки или баллов под заказ
type RedemptionStatus string

const (
	RedemptionStatusReserved RedemptionStatus = "reserved" // зарезервировано при создании заказа
	RedemptionStatusApplied  RedemptionStatus = "applied"  // применено после оплаты
	RedemptionStatusRefunded RedemptionStatus = "refunded" // возвращено после отмены/истечения
)

// CouponRedemption применение купона к заказу, уникально по order_id
type CouponRedemption struct {
	ID        int64            `json:"id" db:"id"`
	CouponID  int64            `json:"coupon_id" db:"coupon_id"`
	UserID    uuid.UUID        `json:"user_id" db:"user_id"`
	OrderID   int64            `json:"order_id" db:"order_id"`
	Status    RedemptionStatus `json:"status" db:"status"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" db:"updated_at"`
}
