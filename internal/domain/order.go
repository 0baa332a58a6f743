package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus статус заказа
type OrderStatus string

const (
	OrderStatusDraft           OrderStatus = "draft"            // черновик, создан но не выставлен счёт
	OrderStatusAwaitingPayment OrderStatus = "awaiting_payment" // ожидает оплаты
	OrderStatusPaid            OrderStatus = "paid"             // оплачен
	OrderStatusExpired         OrderStatus = "expired"          // срок оплаты истёк
	OrderStatusCancelled       OrderStatus = "cancelled"        // отменён (пользователем, админом или возвратом у провайдера)
)

func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal оплаченный заказ больше не меняет статус; expired/cancelled можно переоткрыть
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusPaid
}

// IsValid проверяет, что статус из известного набора
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusAwaitingPayment, OrderStatusPaid, OrderStatusExpired, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// Order заказ в магазине
type Order struct {
	ID               int64           `json:"id" db:"id"`
	PublicID         uuid.UUID       `json:"public_id" db:"public_id"` // публичный ID для пользователя и провайдера
	UserID           uuid.UUID       `json:"user_id" db:"user_id"`
	ProductID        int64           `json:"product_id" db:"product_id"`
	Quantity         int             `json:"quantity" db:"quantity"`
	Status           OrderStatus     `json:"status" db:"status"`
	TotalAmount      decimal.Decimal `json:"total_amount" db:"total_amount"` // итог с учётом купона и списанных баллов
	Currency         string          `json:"currency" db:"currency"`
	TrackID          *string         `json:"track_id,omitempty" db:"track_id"` // ID счёта у крипто-провайдера
	PayLink          *string         `json:"pay_link,omitempty" db:"pay_link"`
	ChargeID         *string         `json:"charge_id,omitempty" db:"charge_id"` // хэш первой транзакции оплаты
	PaymentExpiresAt *time.Time      `json:"payment_expires_at,omitempty" db:"payment_expires_at"`
	FulfilledAt      *time.Time      `json:"fulfilled_at,omitempty" db:"fulfilled_at"` // когда товар выдан покупателю
	ExtraAttrs       ExtraAttrs      `json:"extra_attrs,omitempty" db:"extra_attrs"`   // метаданные провайдера (JSONB)
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// IsPaymentExpired истёк ли срок оплаты
func (o *Order) IsPaymentExpired(now time.Time) bool {
	return o.PaymentExpiresAt != nil && now.After(*o.PaymentExpiresAt)
}

// TimelineEntry запись в истории заказа (append-only лог для админки)
type TimelineEntry struct {
	ID        int64       `json:"id" db:"id"`
	OrderID   int64       `json:"order_id" db:"order_id"`
	Status    OrderStatus `json:"status" db:"status"`
	Note      *string     `json:"note,omitempty" db:"note"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}

// OrderAnswer ответ покупателя на вопрос товара при оформлении
type OrderAnswer struct {
	ID        int64     `json:"id" db:"id"`
	OrderID   int64     `json:"order_id" db:"order_id"`
	Question  string    `json:"question" db:"question"`
	Answer    string    `json:"answer" db:"answer"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
