package repository

import (
	"context"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/ports/persistence"
)

// ITimelineRepo интерфейс для истории заказа (append-only лог)
type ITimelineRepo interface {
	Create(ctx context.Context, entry *domain.TimelineEntry) error
	ListByOrderID(ctx context.Context, orderID int64) ([]*domain.TimelineEntry, error)

	CreateTx(ctx context.Context, tx persistence.Transaction, entry *domain.TimelineEntry) error
}
