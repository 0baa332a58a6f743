package order

import (
	"context"
	"fmt"
	"time"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
)

// appendTimeline пишет запись в историю заказа; ошибка не прерывает основную операцию
func (s *Service) appendTimeline(ctx context.Context, orderID int64, status domain.OrderStatus, note string) {
	entry := &domain.TimelineEntry{
		OrderID:   orderID,
		Status:    status,
		CreatedAt: time.Now(),
	}
	if note != "" {
		entry.Note = &note
	}
	if err := s.TimelineRepo.Create(ctx, entry); err != nil {
		s.Log.Warn("failed to append order timeline", "order_id", orderID, "status", status, "error", err)
	}
}

// EnforceExpiration переводит просроченный заказ в expired и освобождает резервы.
// Повторный вызов ничего не делает: переход защищён guard-ом по статусу
func (s *Service) EnforceExpiration(ctx context.Context, orderID int64) (bool, error) {
	o, err := s.OrderRepo.GetByID(ctx, orderID)
	if err != nil {
		return false, err
	}

	if o.Status != domain.OrderStatusAwaitingPayment {
		return false, nil
	}
	if !o.IsPaymentExpired(time.Now()) {
		return false, nil
	}

	flipped, err := s.OrderRepo.UpdateStatus(ctx, orderID, domain.OrderStatusAwaitingPayment, domain.OrderStatusExpired)
	if err != nil {
		return false, err
	}
	if !flipped {
		return false, nil
	}

	s.appendTimeline(ctx, orderID, domain.OrderStatusExpired, "срок оплаты истёк")
	o.Status = domain.OrderStatusExpired
	s.releaseReservations(ctx, o)
	s.publishEvent(ctx, o, "order.expired")

	s.Log.Info("order expired", "order_id", orderID, "public_id", o.PublicID)
	return true, nil
}

// MarkPaid переводит заказ в paid, фиксирует charge id и запускает сверку леджеров.
// Guard по статусу делает вызов идемпотентным при гонке поллера и ручной проверки
func (s *Service) MarkPaid(ctx context.Context, orderID int64, chargeID *string) (bool, error) {
	flipped, err := s.OrderRepo.UpdateStatus(ctx, orderID, domain.OrderStatusAwaitingPayment, domain.OrderStatusPaid)
	if err != nil {
		return false, err
	}
	if !flipped {
		return false, nil
	}

	if chargeID != nil && *chargeID != "" {
		if err := s.OrderRepo.SetChargeID(ctx, orderID, *chargeID); err != nil {
			s.Log.Warn("failed to store charge id", "order_id", orderID, "error", err)
		}
	}

	note := "оплата получена"
	if chargeID != nil && *chargeID != "" {
		note = fmt.Sprintf("оплата получена, транзакция %s", *chargeID)
	}
	s.appendTimeline(ctx, orderID, domain.OrderStatusPaid, note)

	o, err := s.OrderRepo.GetByID(ctx, orderID)
	if err != nil {
		s.Log.Error("failed to reload paid order for reconciliation", "order_id", orderID, "error", err)
		return true, nil
	}

	s.settlePaid(ctx, o)
	s.publishEvent(ctx, o, "order.paid")

	s.Log.Info("order paid", "order_id", orderID, "public_id", o.PublicID, "total", o.TotalAmount)
	return true, nil
}

// CancelOrder отменяет заказ, ожидающий оплаты, или оплаченный заказ после возврата
// у провайдера; false если заказ уже в другом статусе
func (s *Service) CancelOrder(ctx context.Context, orderID int64, note string) (bool, error) {
	o, err := s.OrderRepo.GetByID(ctx, orderID)
	if err != nil {
		return false, err
	}

	if o.Status != domain.OrderStatusAwaitingPayment && o.Status != domain.OrderStatusPaid {
		return false, nil
	}
	wasPaid := o.Status == domain.OrderStatusPaid

	flipped, err := s.OrderRepo.UpdateStatus(ctx, orderID, o.Status, domain.OrderStatusCancelled)
	if err != nil {
		return false, err
	}
	if !flipped {
		return false, nil
	}

	s.appendTimeline(ctx, orderID, domain.OrderStatusCancelled, note)
	o.Status = domain.OrderStatusCancelled
	s.releaseReservations(ctx, o)
	if wasPaid {
		if err := s.ReferralService.RevokeRewardForOrder(ctx, orderID); err != nil {
			s.Log.Error("failed to revoke referral reward", "order_id", orderID, "error", err)
		}
	}
	s.publishEvent(ctx, o, "order.cancelled")

	s.Log.Info("order cancelled", "order_id", orderID, "public_id", o.PublicID, "was_paid", wasPaid)
	return true, nil
}

// ReopenForPayment переоткрывает истёкший или отменённый заказ: заново резервирует
// остаток, баллы и купон, сбрасывает старый счёт и задаёт новый срок оплаты
func (s *Service) ReopenForPayment(ctx context.Context, orderID int64) (*domain.Order, error) {
	o, err := s.OrderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch o.Status {
	case domain.OrderStatusPaid:
		return nil, domain.BusinessErrorf("order %d is already paid", orderID)
	case domain.OrderStatusAwaitingPayment:
		return nil, domain.BusinessErrorf("order %d is already awaiting payment", orderID)
	case domain.OrderStatusExpired, domain.OrderStatusCancelled:
	default:
		return nil, domain.BusinessErrorf("order %d cannot be reopened", orderID)
	}

	available, err := s.ProductRepo.DecrementStock(ctx, o.ProductID, o.Quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to decrement stock: %w", err)
	}
	if !available {
		return nil, domain.BusinessErrorf("product is out of stock")
	}

	if err := s.LoyaltyService.ReclaimReservation(ctx, orderID); err != nil {
		if restoreErr := s.ProductRepo.RestoreStock(ctx, o.ProductID, o.Quantity); restoreErr != nil {
			s.Log.Error("failed to restore stock on reopen abort", "order_id", orderID, "error", restoreErr)
		}
		return nil, err
	}

	if err := s.CouponService.Reclaim(ctx, orderID); err != nil {
		if refundErr := s.LoyaltyService.RefundReservation(ctx, orderID); refundErr != nil {
			s.Log.Error("failed to refund points on reopen abort", "order_id", orderID, "error", refundErr)
		}
		if restoreErr := s.ProductRepo.RestoreStock(ctx, o.ProductID, o.Quantity); restoreErr != nil {
			s.Log.Error("failed to restore stock on reopen abort", "order_id", orderID, "error", restoreErr)
		}
		return nil, err
	}

	flipped, err := s.OrderRepo.UpdateStatus(ctx, orderID, o.Status, domain.OrderStatusAwaitingPayment)
	if err != nil || !flipped {
		if refundErr := s.LoyaltyService.RefundReservation(ctx, orderID); refundErr != nil {
			s.Log.Error("failed to refund points on reopen abort", "order_id", orderID, "error", refundErr)
		}
		if _, couponErr := s.CouponService.Refund(ctx, orderID); couponErr != nil {
			s.Log.Error("failed to refund coupon on reopen abort", "order_id", orderID, "error", couponErr)
		}
		if restoreErr := s.ProductRepo.RestoreStock(ctx, o.ProductID, o.Quantity); restoreErr != nil {
			s.Log.Error("failed to restore stock on reopen abort", "order_id", orderID, "error", restoreErr)
		}
		if err != nil {
			return nil, err
		}
		return nil, domain.BusinessErrorf("order %d changed concurrently", orderID)
	}

	if err := s.OrderRepo.ClearInvoice(ctx, orderID); err != nil {
		s.Log.Warn("failed to clear stale invoice", "order_id", orderID, "error", err)
	}

	cfg := s.SettingsService.Current()
	expiresAt := time.Now().Add(time.Duration(cfg.InvoiceTimeoutMinutes) * time.Minute)
	if err := s.OrderRepo.SetPaymentExpiresAt(ctx, orderID, expiresAt); err != nil {
		s.Log.Warn("failed to set new payment deadline", "order_id", orderID, "error", err)
	}

	s.appendTimeline(ctx, orderID, domain.OrderStatusAwaitingPayment,
		fmt.Sprintf("заказ переоткрыт, оплата до %s", expiresAt.Format("02.01.2006 15:04")))

	reopened, err := s.OrderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, reopened, "order.reopened")
	s.Log.Info("order reopened for payment", "order_id", orderID, "expires_at", expiresAt)
	return reopened, nil
}
