package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReferralLink реферальная ссылка пользователя со счётчиками
type ReferralLink struct {
	ID         int64     `json:"id" db:"id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	Code       string    `json:"code" db:"code"` // payload в /start ref_<code>
	Clicks     int       `json:"clicks" db:"clicks"`
	Signups    int       `json:"signups" db:"signups"`
	PaidOrders int       `json:"paid_orders" db:"paid_orders"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// RewardStatus статус реферальной награды
type RewardStatus string

const (
	RewardStatusPending RewardStatus = "pending" // создана, баллы ещё не начислены
	RewardStatusGranted RewardStatus = "granted" // баллы начислены рефереру
	RewardStatusRevoked RewardStatus = "revoked" // отозвана после отмены заказа
)

// ReferralReward награда за первый оплаченный заказ приведённого пользователя, уникально по order_id
type ReferralReward struct {
	ID            int64           `json:"id" db:"id"`
	LinkID        int64           `json:"link_id" db:"link_id"`
	RefereeUserID uuid.UUID       `json:"referee_user_id" db:"referee_user_id"`
	OrderID       int64           `json:"order_id" db:"order_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Status        RewardStatus    `json:"status" db:"status"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}
