package coupon

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/ports/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service проверка, резервирование и применение купонов
type Service struct {
	CouponRepo repository.ICouponRepo
	Log        *slog.Logger
}

func New(couponRepo repository.ICouponRepo, log *slog.Logger) *Service {
	return &Service{
		CouponRepo: couponRepo,
		Log:        log,
	}
}

// Validate проверяет применимость купона к заказу пользователя.
// Лимит использований считается по невозвращённым применениям, так что
// купон с одним использованием освобождается после отмены заказа
func (s *Service) Validate(ctx context.Context, code string, userID uuid.UUID, orderAmount decimal.Decimal) (*domain.Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, domain.BusinessErrorf("coupon code is empty")
	}

	coupon, err := s.CouponRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.BusinessErrorf("coupon %s not found", code)
		}
		s.Log.Error("failed to get coupon", "code", code, "error", err)
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	if !coupon.Active {
		return nil, domain.BusinessErrorf("coupon %s is not active", code)
	}

	now := time.Now()
	if coupon.ValidFrom != nil && now.Before(*coupon.ValidFrom) {
		return nil, domain.BusinessErrorf("coupon %s is not valid yet", code)
	}
	if coupon.ValidUntil != nil && now.After(*coupon.ValidUntil) {
		return nil, domain.BusinessErrorf("coupon %s has expired", code)
	}

	if coupon.MinOrderAmount != nil && orderAmount.LessThan(*coupon.MinOrderAmount) {
		return nil, domain.BusinessErrorf("order amount %s is below coupon minimum %s", orderAmount, coupon.MinOrderAmount)
	}

	if coupon.MaxRedemptions != nil {
		total, err := s.CouponRepo.CountRedemptions(ctx, coupon.ID)
		if err != nil {
			s.Log.Error("failed to count coupon redemptions", "coupon_id", coupon.ID, "error", err)
			return nil, fmt.Errorf("failed to count coupon redemptions: %w", err)
		}
		if total >= *coupon.MaxRedemptions {
			return nil, domain.BusinessErrorf("coupon %s redemption limit reached", code)
		}
	}

	if coupon.PerUserLimit > 0 {
		used, err := s.CouponRepo.CountUserRedemptions(ctx, coupon.ID, userID)
		if err != nil {
			s.Log.Error("failed to count user coupon redemptions", "coupon_id", coupon.ID, "user_id", userID, "error", err)
			return nil, fmt.Errorf("failed to count user coupon redemptions: %w", err)
		}
		if used >= coupon.PerUserLimit {
			return nil, domain.BusinessErrorf("coupon %s already used", code)
		}
	}

	return coupon, nil
}

// Peek проверяет код без привязки к сумме заказа и лимитам пользователя
// (предпросмотр купона до оформления)
func (s *Service) Peek(ctx context.Context, code string) (*domain.Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, domain.BusinessErrorf("coupon code is empty")
	}

	coupon, err := s.CouponRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.BusinessErrorf("coupon %s not found", code)
		}
		s.Log.Error("failed to get coupon", "code", code, "error", err)
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	if !coupon.Active {
		return nil, domain.BusinessErrorf("coupon %s is not active", code)
	}

	now := time.Now()
	if coupon.ValidFrom != nil && now.Before(*coupon.ValidFrom) {
		return nil, domain.BusinessErrorf("coupon %s is not valid yet", code)
	}
	if coupon.ValidUntil != nil && now.After(*coupon.ValidUntil) {
		return nil, domain.BusinessErrorf("coupon %s has expired", code)
	}

	return coupon, nil
}

// Reserve фиксирует применение купона к заказу в статусе reserved
func (s *Service) Reserve(ctx context.Context, coupon *domain.Coupon, userID uuid.UUID, orderID int64) error {
	redemption := &domain.CouponRedemption{
		CouponID: coupon.ID,
		UserID:   userID,
		OrderID:  orderID,
		Status:   domain.RedemptionStatusReserved,
	}
	if err := s.CouponRepo.CreateRedemption(ctx, redemption); err != nil {
		s.Log.Error("failed to reserve coupon", "coupon_id", coupon.ID, "order_id", orderID, "error", err)
		return fmt.Errorf("failed to reserve coupon: %w", err)
	}
	return nil
}

// Apply закрепляет купон после оплаты заказа; false если резерв уже обработан
func (s *Service) Apply(ctx context.Context, orderID int64) (bool, error) {
	flipped, err := s.CouponRepo.UpdateRedemptionStatus(ctx, orderID, domain.RedemptionStatusReserved, domain.RedemptionStatusApplied)
	if err != nil {
		s.Log.Error("failed to apply coupon redemption", "order_id", orderID, "error", err)
		return false, fmt.Errorf("failed to apply coupon redemption: %w", err)
	}
	return flipped, nil
}

// Refund освобождает купон при отмене или истечении заказа; false если резерва не было
// или он уже обработан
func (s *Service) Refund(ctx context.Context, orderID int64) (bool, error) {
	redemption, err := s.CouponRepo.GetRedemptionByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		s.Log.Error("failed to get coupon redemption", "order_id", orderID, "error", err)
		return false, fmt.Errorf("failed to get coupon redemption: %w", err)
	}

	flipped, err := s.CouponRepo.UpdateRedemptionStatus(ctx, orderID, domain.RedemptionStatusReserved, domain.RedemptionStatusRefunded)
	if err != nil {
		s.Log.Error("failed to refund coupon redemption", "order_id", orderID, "error", err)
		return false, fmt.Errorf("failed to refund coupon redemption: %w", err)
	}
	if flipped {
		s.Log.Info("coupon redemption refunded", "order_id", orderID, "coupon_id", redemption.CouponID)
	}
	return flipped, nil
}

// Reclaim возвращает освобождённый купон обратно в резерв при переоткрытии заказа
func (s *Service) Reclaim(ctx context.Context, orderID int64) error {
	if _, err := s.CouponRepo.GetRedemptionByOrderID(ctx, orderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		s.Log.Error("failed to get coupon redemption", "order_id", orderID, "error", err)
		return fmt.Errorf("failed to get coupon redemption: %w", err)
	}

	// not flipped означает, что резерв уже удержан, это не ошибка
	if _, err := s.CouponRepo.UpdateRedemptionStatus(ctx, orderID, domain.RedemptionStatusRefunded, domain.RedemptionStatusReserved); err != nil {
		s.Log.Error("failed to re-reserve coupon", "order_id", orderID, "error", err)
		return fmt.Errorf("failed to re-reserve coupon: %w", err)
	}
	return nil
}

// CreateCoupon создаёт купон, код нормализуется к верхнему регистру
func (s *Service) CreateCoupon(ctx context.Context, coupon *domain.Coupon) error {
	coupon.Code = strings.ToUpper(strings.TrimSpace(coupon.Code))
	if coupon.Code == "" {
		return domain.BusinessErrorf("coupon code is empty")
	}
	if coupon.DiscountType != domain.DiscountTypePercent && coupon.DiscountType != domain.DiscountTypeFixed {
		return domain.BusinessErrorf("unknown discount type: %s", coupon.DiscountType)
	}
	if coupon.DiscountValue.IsNegative() || coupon.DiscountValue.IsZero() {
		return domain.BusinessErrorf("discount value must be positive")
	}
	if coupon.DiscountType == domain.DiscountTypePercent && coupon.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		return domain.BusinessErrorf("percent discount cannot exceed 100")
	}

	if _, err := s.CouponRepo.GetByCode(ctx, coupon.Code); err == nil {
		return domain.BusinessErrorf("coupon %s already exists", coupon.Code)
	} else if !errors.Is(err, sql.ErrNoRows) {
		s.Log.Error("failed to check coupon code", "code", coupon.Code, "error", err)
		return fmt.Errorf("failed to check coupon code: %w", err)
	}

	if err := s.CouponRepo.Create(ctx, coupon); err != nil {
		s.Log.Error("failed to create coupon", "code", coupon.Code, "error", err)
		return fmt.Errorf("failed to create coupon: %w", err)
	}

	s.Log.Info("coupon created", "code", coupon.Code, "discount_type", coupon.DiscountType, "discount_value", coupon.DiscountValue)
	return nil
}

// DeactivateCoupon выключает купон по коду
func (s *Service) DeactivateCoupon(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	coupon, err := s.CouponRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.BusinessErrorf("coupon %s not found", code)
		}
		s.Log.Error("failed to get coupon", "code", code, "error", err)
		return fmt.Errorf("failed to get coupon: %w", err)
	}

	if err := s.CouponRepo.SetActive(ctx, coupon.ID, false); err != nil {
		s.Log.Error("failed to deactivate coupon", "code", code, "error", err)
		return fmt.Errorf("failed to deactivate coupon: %w", err)
	}
	return nil
}

// ListCoupons список купонов для админки
func (s *Service) ListCoupons(ctx context.Context, limit int) ([]*domain.Coupon, error) {
	coupons, err := s.CouponRepo.List(ctx, limit)
	if err != nil {
		s.Log.Error("failed to list coupons", "error", err)
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	return coupons, nil
}
