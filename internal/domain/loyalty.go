package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoyaltyAccount счёт бонусных баллов пользователя, balance >= 0 гарантируется на уровне БД
type LoyaltyAccount struct {
	ID        int64           `json:"id" db:"id"`
	UserID    uuid.UUID       `json:"user_id" db:"user_id"`
	Balance   decimal.Decimal `json:"balance" db:"balance"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// LoyaltyTxKind тип операции по бонусному счёту
type LoyaltyTxKind string

const (
	LoyaltyTxAccrual    LoyaltyTxKind = "accrual"    // начисление за оплаченный заказ
	LoyaltyTxRedemption LoyaltyTxKind = "redemption" // списание при оплате заказа
	LoyaltyTxRefund     LoyaltyTxKind = "refund"     // возврат списанных баллов
	LoyaltyTxReferral   LoyaltyTxKind = "referral"   // награда за приведённого покупателя
	LoyaltyTxAdjustment LoyaltyTxKind = "adjustment" // ручная корректировка админом
)

// LoyaltyTransaction запись в леджере баллов, amount со знаком
type LoyaltyTransaction struct {
	ID        int64           `json:"id" db:"id"`
	AccountID int64           `json:"account_id" db:"account_id"`
	OrderID   *int64          `json:"order_id,omitempty" db:"order_id"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Kind      LoyaltyTxKind   `json:"kind" db:"kind"`
	Note      *string         `json:"note,omitempty" db:"note"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// LoyaltyReservation резерв баллов под заказ, уникально по order_id
type LoyaltyReservation struct {
	ID        int64            `json:"id" db:"id"`
	OrderID   int64            `json:"order_id" db:"order_id"`
	AccountID int64            `json:"account_id" db:"account_id"`
	Amount    decimal.Decimal  `json:"amount" db:"amount"`
	Status    RedemptionStatus `json:"status" db:"status"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" db:"updated_at"`
}
