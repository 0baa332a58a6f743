package jobs

import (
	"context"
	"log/slog"
	"time"

	paymentUsecase "github.com/admin/tg-bots/shop-bot/internal/usecases/payment"
)

const paymentPollerName = "payment-poller"

// PaymentPoller джоба сверки выставленных счетов со статусом у провайдера,
// тикает с фиксированным интервалом
type PaymentPoller struct {
	paymentService *paymentUsecase.Service
	interval       time.Duration
	log            *slog.Logger
}

// NewPaymentPoller создаёт джобу поллинга платежей
func NewPaymentPoller(paymentService *paymentUsecase.Service, interval time.Duration, log *slog.Logger) *PaymentPoller {
	if interval <= 0 {
		interval = time.Minute
	}

	return &PaymentPoller{
		paymentService: paymentService,
		interval:       interval,
		log:            log,
	}
}

func (j *PaymentPoller) Name() string {
	return paymentPollerName
}

// NextRun следующий тик через фиксированный интервал
func (j *PaymentPoller) NextRun(now time.Time) time.Time {
	return now.Add(j.interval)
}

// Run сверяет пачку заказов в ожидании оплаты с провайдером
func (j *PaymentPoller) Run(ctx context.Context) error {
	_, err := j.paymentService.PollPendingOrders(ctx)
	return err
}
