package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/ports/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AnswerInput ответ покупателя на вопрос товара, собранный в чек-ауте
type AnswerInput struct {
	Question string
	Answer   string
}

// CreateOrderOptions опции оформления: купон, списание баллов, ответы на вопросы
type CreateOrderOptions struct {
	CouponCode   *string
	RedeemPoints decimal.Decimal
	Answers      []AnswerInput
}

// CreateOrder оформляет заказ: проверяет товар и остаток, применяет купон и баллы,
// создаёт заказ в статусе awaiting_payment со сроком оплаты из настроек и резервирует
// side-записи. Заказ и первые записи истории пишутся в одной транзакции
func (s *Service) CreateOrder(ctx context.Context, user *domain.User, productID int64, qty int, opts CreateOrderOptions) (*domain.Order, error) {
	if qty <= 0 {
		return nil, domain.BusinessErrorf("quantity must be positive")
	}

	product, err := s.ProductRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.BusinessErrorf("product %d not found", productID)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if !product.Active {
		return nil, domain.BusinessErrorf("product %s is not available", product.Name)
	}

	cfg := s.SettingsService.Current()
	total := product.Price.Mul(decimal.NewFromInt(int64(qty)))

	var appliedCoupon *domain.Coupon
	if opts.CouponCode != nil && *opts.CouponCode != "" {
		appliedCoupon, err = s.CouponService.Validate(ctx, *opts.CouponCode, user.ID, total)
		if err != nil {
			return nil, err
		}
		total = total.Sub(appliedCoupon.Discount(total))
	}

	redeemPoints := opts.RedeemPoints
	if redeemPoints.IsPositive() {
		if err := s.LoyaltyService.ValidateRedeem(ctx, user.ID, total, redeemPoints, cfg); err != nil {
			return nil, err
		}
		total = total.Sub(redeemPoints)
	}
	if total.IsNegative() {
		total = decimal.Zero
	}

	available, err := s.ProductRepo.DecrementStock(ctx, productID, qty)
	if err != nil {
		return nil, fmt.Errorf("failed to decrement stock: %w", err)
	}
	if !available {
		return nil, domain.BusinessErrorf("not enough stock for product %s", product.Name)
	}

	now := time.Now()
	expiresAt := now.Add(time.Duration(cfg.InvoiceTimeoutMinutes) * time.Minute)
	newOrder := &domain.Order{
		PublicID:         uuid.New(),
		UserID:           user.ID,
		ProductID:        productID,
		Quantity:         qty,
		Status:           domain.OrderStatusAwaitingPayment,
		TotalAmount:      total,
		Currency:         product.Currency,
		PaymentExpiresAt: &expiresAt,
		ExtraAttrs:       domain.ExtraAttrs{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = s.OrderRepo.WithTransaction(ctx, func(txCtx context.Context, tx persistence.Transaction) error {
		if err := s.OrderRepo.CreateTx(txCtx, tx, newOrder); err != nil {
			return err
		}

		draftNote := "заказ создан"
		if err := s.TimelineRepo.CreateTx(txCtx, tx, &domain.TimelineEntry{
			OrderID:   newOrder.ID,
			Status:    domain.OrderStatusDraft,
			Note:      &draftNote,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		awaitingNote := fmt.Sprintf("ожидает оплаты до %s", expiresAt.Format("02.01.2006 15:04"))
		return s.TimelineRepo.CreateTx(txCtx, tx, &domain.TimelineEntry{
			OrderID:   newOrder.ID,
			Status:    domain.OrderStatusAwaitingPayment,
			Note:      &awaitingNote,
			CreatedAt: now,
		})
	})
	if err != nil {
		s.Log.Error("failed to create order, restoring stock",
			"user_id", user.ID,
			"product_id", productID,
			"error", err,
		)
		if restoreErr := s.ProductRepo.RestoreStock(ctx, productID, qty); restoreErr != nil {
			s.Log.Error("failed to restore stock after order failure", "product_id", productID, "qty", qty, "error", restoreErr)
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if redeemPoints.IsPositive() {
		if err := s.LoyaltyService.Reserve(ctx, user.ID, newOrder.ID, redeemPoints); err != nil {
			s.abortCreatedOrder(ctx, newOrder, qty, "ошибка резервирования баллов")
			return nil, err
		}
	}

	if appliedCoupon != nil {
		if err := s.CouponService.Reserve(ctx, appliedCoupon, user.ID, newOrder.ID); err != nil {
			if redeemPoints.IsPositive() {
				if refundErr := s.LoyaltyService.RefundReservation(ctx, newOrder.ID); refundErr != nil {
					s.Log.Error("failed to refund points after coupon failure", "order_id", newOrder.ID, "error", refundErr)
				}
			}
			s.abortCreatedOrder(ctx, newOrder, qty, "ошибка резервирования купона")
			return nil, err
		}
	}

	for _, answer := range opts.Answers {
		if err := s.OrderRepo.CreateAnswer(ctx, &domain.OrderAnswer{
			OrderID:   newOrder.ID,
			Question:  answer.Question,
			Answer:    answer.Answer,
			CreatedAt: now,
		}); err != nil {
			s.Log.Warn("failed to store order answer", "order_id", newOrder.ID, "error", err)
		}
	}

	s.Log.Info("order created",
		"order_id", newOrder.ID,
		"public_id", newOrder.PublicID,
		"user_id", user.ID,
		"product_id", productID,
		"qty", qty,
		"total", total,
		"expires_at", expiresAt,
	)

	s.publishEvent(ctx, newOrder, "order.created")
	return newOrder, nil
}

// abortCreatedOrder откатывает только что созданный заказ, если резервирование
// side-записей провалилось: возвращает остаток и помечает заказ отменённым
func (s *Service) abortCreatedOrder(ctx context.Context, o *domain.Order, qty int, reason string) {
	if restoreErr := s.ProductRepo.RestoreStock(ctx, o.ProductID, qty); restoreErr != nil {
		s.Log.Error("failed to restore stock on order abort", "order_id", o.ID, "error", restoreErr)
	}

	flipped, err := s.OrderRepo.UpdateStatus(ctx, o.ID, domain.OrderStatusAwaitingPayment, domain.OrderStatusCancelled)
	if err != nil {
		s.Log.Error("failed to cancel aborted order", "order_id", o.ID, "error", err)
		return
	}
	if flipped {
		s.appendTimeline(ctx, o.ID, domain.OrderStatusCancelled, reason)
	}
}
