package kafka

import (
	"context"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
)

// IKafkaProducer публикация событий жизненного цикла заказа.
// Producer опционален, при пустой конфигурации заказы живут без событий
type IKafkaProducer interface {
	SendOrderEvent(ctx context.Context, order *domain.Order, event string) error
	Close() error
}
