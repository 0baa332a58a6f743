package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IPaymentProvider интерфейс крипто-провайдера платежей
// Use case зависит только от этого интерфейса, не зная деталей реализации
type IPaymentProvider interface {
	// CreateInvoice выставляет счёт на оплату, возвращает track_id и ссылку на оплату
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error)

	// GetInvoiceStatus запрашивает статус счёта у провайдера
	GetInvoiceStatus(ctx context.Context, trackID string) (*InvoiceStatus, error)

	// AcceptedCurrencies список валют, которые принимает провайдер
	AcceptedCurrencies(ctx context.Context) ([]string, error)
}

// CreateInvoiceRequest запрос на выставление счёта
type CreateInvoiceRequest struct {
	OrderPublicID   uuid.UUID       // передаётся провайдеру как external order id
	Amount          decimal.Decimal
	Currency        string
	Description     string
	LifetimeMinutes int // срок жизни счёта у провайдера
	CallbackURL     string
}

// Invoice выставленный счёт
type Invoice struct {
	TrackID   string
	PayLink   string
	ExpiredAt *time.Time
}

// InvoiceTransaction транзакция оплаты счёта
type InvoiceTransaction struct {
	Hash          string
	Amount        decimal.Decimal
	Confirmations int
}

// InvoiceStatus текущее состояние счёта у провайдера
type InvoiceStatus struct {
	TrackID      string
	Status       string // статус провайдера как есть: paid, manual_accept, expired, refunded и т.д.
	Amount       decimal.Decimal
	Currency     string
	Transactions []InvoiceTransaction
}
