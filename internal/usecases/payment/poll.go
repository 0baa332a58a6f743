package payment

import (
	"context"
	"fmt"
)

const defaultPollBatchSize = 50

// PollPendingOrders сверяет счета заказов в ожидании оплаты со статусом у
// провайдера, старые первыми. Ошибка по одному заказу не прерывает проход.
// Возвращает число заказов, чей локальный статус изменился
func (s *Service) PollPendingOrders(ctx context.Context) (int, error) {
	batchSize := s.PollBatchSize
	if batchSize <= 0 {
		batchSize = defaultPollBatchSize
	}

	orders, err := s.OrderRepo.ListAwaitingPayment(ctx, batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list awaiting orders: %w", err)
	}

	if len(orders) == 0 {
		return 0, nil
	}

	updated := 0
	for _, o := range orders {
		if ctx.Err() != nil {
			return updated, ctx.Err()
		}

		changed, err := s.RefreshOrderStatus(ctx, o)
		if err != nil {
			s.Log.Warn("failed to refresh order status",
				"order_id", o.ID,
				"error", err,
			)
			continue
		}
		if changed {
			updated++
		}
	}

	if updated > 0 {
		s.Log.Info("orders updated from provider", "checked", len(orders), "updated", updated)
	}

	return updated, nil
}
