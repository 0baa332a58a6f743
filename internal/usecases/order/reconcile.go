package order

import (
	"context"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
)

// settlePaid сверяет side-леджеры после оплаты: закрепляет резервы купона и баллов,
// начисляет кэшбек, выдаёт реферальную награду и доставляет товар.
// Каждый шаг логирует свою ошибку и не мешает остальным: статус заказа
// уже изменён и не откатывается из-за сбоя леджера
func (s *Service) settlePaid(ctx context.Context, o *domain.Order) {
	if _, err := s.LoyaltyService.ApplyReservation(ctx, o.ID); err != nil {
		s.Log.Error("failed to apply loyalty reservation", "order_id", o.ID, "error", err)
	}
	if _, err := s.CouponService.Apply(ctx, o.ID); err != nil {
		s.Log.Error("failed to apply coupon redemption", "order_id", o.ID, "error", err)
	}

	cfg := s.SettingsService.Current()
	buyer, err := s.UserRepo.GetByID(ctx, o.UserID)
	if err != nil {
		s.Log.Error("failed to load buyer for settlement", "order_id", o.ID, "user_id", o.UserID, "error", err)
	} else {
		if err := s.LoyaltyService.Accrue(ctx, buyer.ID, o.ID, o.TotalAmount, cfg); err != nil {
			s.Log.Error("failed to accrue loyalty points", "order_id", o.ID, "error", err)
		}
		if err := s.ReferralService.RewardForPaidOrder(ctx, o, buyer, cfg); err != nil {
			s.Log.Error("failed to grant referral reward", "order_id", o.ID, "error", err)
		}
	}

	if _, err := s.EnsureFulfillment(ctx, o); err != nil {
		s.Log.Error("failed to fulfill paid order", "order_id", o.ID, "error", err)
	}
}

// releaseReservations освобождает резервы истёкшего или отменённого заказа:
// возвращает баллы, купон и остаток товара (если товар не был выдан)
func (s *Service) releaseReservations(ctx context.Context, o *domain.Order) {
	if err := s.LoyaltyService.RefundReservation(ctx, o.ID); err != nil {
		s.Log.Error("failed to refund loyalty reservation", "order_id", o.ID, "error", err)
	}
	if _, err := s.CouponService.Refund(ctx, o.ID); err != nil {
		s.Log.Error("failed to refund coupon redemption", "order_id", o.ID, "error", err)
	}
	if o.FulfilledAt == nil {
		if err := s.ProductRepo.RestoreStock(ctx, o.ProductID, o.Quantity); err != nil {
			s.Log.Error("failed to restore stock", "order_id", o.ID, "product_id", o.ProductID, "error", err)
		}
	}
}

// publishEvent отправляет событие жизненного цикла заказа в Kafka, если producer настроен
func (s *Service) publishEvent(ctx context.Context, o *domain.Order, event string) {
	if s.KafkaProducer == nil {
		return
	}
	if err := s.KafkaProducer.SendOrderEvent(ctx, o, event); err != nil {
		s.Log.Warn("failed to publish order event", "order_id", o.ID, "event", event, "error", err)
	}
}
