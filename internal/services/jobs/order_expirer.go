package jobs

import (
	"context"
	"log/slog"
	"time"

	orderUsecase "github.com/admin/tg-bots/shop-bot/internal/usecases/order"
)

const orderExpirerName = "order-expirer"

// OrderExpirer джоба, которая закрывает заказы с истёкшим сроком оплаты.
// Поллер ловит expired от провайдера, но заказы без выставленного счёта
// (например, когда счёт не удалось создать) истекают только здесь
type OrderExpirer struct {
	orderService *orderUsecase.Service
	interval     time.Duration
	log          *slog.Logger
}

// NewOrderExpirer создаёт джобу закрытия просроченных заказов
func NewOrderExpirer(orderService *orderUsecase.Service, interval time.Duration, log *slog.Logger) *OrderExpirer {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &OrderExpirer{
		orderService: orderService,
		interval:     interval,
		log:          log,
	}
}

func (j *OrderExpirer) Name() string {
	return orderExpirerName
}

// NextRun следующий тик через фиксированный интервал
func (j *OrderExpirer) NextRun(now time.Time) time.Time {
	return now.Add(j.interval)
}

// Run переводит просроченные заказы в expired и уведомляет покупателей
func (j *OrderExpirer) Run(ctx context.Context) error {
	_, err := j.orderService.ExpireDueOrders(ctx)
	return err
}
