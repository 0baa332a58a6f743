package repository

import (
	"context"
	"time"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/ports/persistence"
	"github.com/google/uuid"
)

// IOrderRepo интерфейс для работы с заказами
type IOrderRepo interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetByPublicID(ctx context.Context, publicID uuid.UUID) (*domain.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Order, error)
	// ListRecent последние заказы магазина (админский обзор)
	ListRecent(ctx context.Context, limit int) ([]*domain.Order, error)
	// ListAwaitingPayment заказы со счётом у провайдера для поллера, старые первыми
	ListAwaitingPayment(ctx context.Context, batchSize int) ([]*domain.Order, error)
	// ListPaymentExpired заказы с истёкшим сроком оплаты для свипера
	ListPaymentExpired(ctx context.Context, now time.Time, batchSize int) ([]*domain.Order, error)

	// UpdateStatus переводит заказ из from в to; false если статус уже другой
	UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus) (bool, error)
	SetInvoice(ctx context.Context, id int64, trackID, payLink string, attrs domain.ExtraAttrs) error
	SetChargeID(ctx context.Context, id int64, chargeID string) error
	SetPaymentExpiresAt(ctx context.Context, id int64, expiresAt time.Time) error
	ClearInvoice(ctx context.Context, id int64) error
	// MarkFulfilled ставит отметку о выдаче; false если заказ уже выдан или не оплачен
	MarkFulfilled(ctx context.Context, id int64) (bool, error)

	CreateAnswer(ctx context.Context, answer *domain.OrderAnswer) error
	ListAnswers(ctx context.Context, orderID int64) ([]*domain.OrderAnswer, error)

	BeginTx(ctx context.Context) (persistence.Transaction, error)
	WithTransaction(ctx context.Context, fn func(context.Context, persistence.Transaction) error) error

	CreateTx(ctx context.Context, tx persistence.Transaction, order *domain.Order) error
}
