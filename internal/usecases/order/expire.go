package order

import (
	"context"
	"fmt"
	"time"
)

const expireBatchSize = 100

// ExpireDueOrders переводит заказы с истёкшим сроком оплаты в expired и
// уведомляет покупателей. Возвращает число заказов, переведённых в expired
func (s *Service) ExpireDueOrders(ctx context.Context) (int, error) {
	orders, err := s.OrderRepo.ListPaymentExpired(ctx, time.Now(), expireBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list orders with expired payment: %w", err)
	}

	if len(orders) == 0 {
		return 0, nil
	}

	s.Log.Info("found orders with expired payment", "count", len(orders))

	// пауза между уведомлениями, чтобы не упереться в лимит Telegram на отправку
	expired := 0
	for i, o := range orders {
		if i > 0 {
			select {
			case <-ctx.Done():
				return expired, ctx.Err()
			case <-time.After(100 * time.Millisecond):
			}
		}

		changed, err := s.EnforceExpiration(ctx, o.ID)
		if err != nil {
			s.Log.Warn("failed to expire order",
				"order_id", o.ID,
				"error", err,
			)
			continue
		}
		if !changed {
			// заказ успели оплатить или отменить между выборкой и переводом
			continue
		}
		expired++

		buyer, err := s.UserRepo.GetByID(ctx, o.UserID)
		if err != nil {
			s.Log.Warn("failed to get buyer for expiry notification",
				"order_id", o.ID,
				"error", err,
			)
			continue
		}

		message := fmt.Sprintf("⌛ Срок оплаты заказа №%d истёк.\n\nВыставить новый счёт можно в «Мои заказы» — /orders", o.ID)
		if err := s.TelegramClient.SendMessage(ctx, buyer.TelegramChatID, message); err != nil {
			s.Log.Warn("failed to send expiry notification",
				"order_id", o.ID,
				"chat_id", buyer.TelegramChatID,
				"error", err,
			)
		}
	}

	s.Log.Info("expired orders processed", "count", expired)
	return expired, nil
}
