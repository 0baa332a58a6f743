package loyalty

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"log/slog"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/ports/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service операции с бонусными баллами: резерв под заказ, начисление, возвраты
type Service struct {
	LoyaltyRepo repository.ILoyaltyRepo
	Log         *slog.Logger
}

func New(loyaltyRepo repository.ILoyaltyRepo, log *slog.Logger) *Service {
	return &Service{
		LoyaltyRepo: loyaltyRepo,
		Log:         log,
	}
}

// Balance возвращает баланс баллов, создавая счёт при первом обращении
func (s *Service) Balance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	account, err := s.LoyaltyRepo.GetOrCreateAccount(ctx, userID)
	if err != nil {
		s.Log.Error("failed to get loyalty account", "user_id", userID, "error", err)
		return decimal.Zero, fmt.Errorf("failed to get loyalty account: %w", err)
	}
	return account.Balance, nil
}

// History последние операции по счёту, новые первыми
func (s *Service) History(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.LoyaltyTransaction, error) {
	account, err := s.LoyaltyRepo.GetOrCreateAccount(ctx, userID)
	if err != nil {
		s.Log.Error("failed to get loyalty account", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get loyalty account: %w", err)
	}

	txs, err := s.LoyaltyRepo.ListTransactions(ctx, account.ID, limit)
	if err != nil {
		s.Log.Error("failed to list loyalty transactions", "account_id", account.ID, "error", err)
		return nil, fmt.Errorf("failed to list loyalty transactions: %w", err)
	}
	return txs, nil
}

// MaxRedeemable сколько баллов можно списать с заказа: не больше баланса
// и не больше доли суммы из настроек
func (s *Service) MaxRedeemable(balance, orderTotal decimal.Decimal, cfg domain.Settings) decimal.Decimal {
	limit := orderTotal.Mul(cfg.LoyaltyMaxRedeemPercent).Div(decimal.NewFromInt(100))
	if balance.LessThan(limit) {
		return balance
	}
	return limit
}

// ValidateRedeem проверяет, что запрошенное списание укладывается в баланс и лимит
func (s *Service) ValidateRedeem(ctx context.Context, userID uuid.UUID, orderTotal, points decimal.Decimal, cfg domain.Settings) error {
	if points.IsNegative() || points.IsZero() {
		return domain.BusinessErrorf("points must be positive")
	}

	balance, err := s.Balance(ctx, userID)
	if err != nil {
		return err
	}

	max := s.MaxRedeemable(balance, orderTotal, cfg)
	if points.GreaterThan(max) {
		s.Log.Debug("redeem request over limit",
			"user_id", userID,
			"points", points,
			"max", max,
		)
		return domain.BusinessErrorf("requested %s points, at most %s can be redeemed", points, max)
	}
	return nil
}

// Reserve списывает баллы под заказ и фиксирует резерв.
// Если резерв записать не удалось, списание компенсируется обратно
func (s *Service) Reserve(ctx context.Context, userID uuid.UUID, orderID int64, points decimal.Decimal) error {
	account, err := s.LoyaltyRepo.GetOrCreateAccount(ctx, userID)
	if err != nil {
		s.Log.Error("failed to get loyalty account", "user_id", userID, "error", err)
		return fmt.Errorf("failed to get loyalty account: %w", err)
	}

	note := fmt.Sprintf("reserved for order %d", orderID)
	applied, err := s.LoyaltyRepo.AdjustBalance(ctx, account.ID, points.Neg(), domain.LoyaltyTxRedemption, &orderID, &note)
	if err != nil {
		s.Log.Error("failed to debit loyalty balance", "account_id", account.ID, "order_id", orderID, "error", err)
		return fmt.Errorf("failed to debit loyalty balance: %w", err)
	}
	if !applied {
		return domain.BusinessErrorf("insufficient loyalty balance")
	}

	reservation := &domain.LoyaltyReservation{
		OrderID:   orderID,
		AccountID: account.ID,
		Amount:    points,
		Status:    domain.RedemptionStatusReserved,
	}
	if err := s.LoyaltyRepo.CreateReservation(ctx, reservation); err != nil {
		s.Log.Error("failed to create loyalty reservation, refunding debit",
			"account_id", account.ID,
			"order_id", orderID,
			"error", err,
		)
		refundNote := fmt.Sprintf("reservation failed for order %d", orderID)
		if _, refundErr := s.LoyaltyRepo.AdjustBalance(ctx, account.ID, points, domain.LoyaltyTxRefund, &orderID, &refundNote); refundErr != nil {
			s.Log.Error("failed to refund after reservation failure", "account_id", account.ID, "order_id", orderID, "error", refundErr)
		}
		return fmt.Errorf("failed to create loyalty reservation: %w", err)
	}

	return nil
}

// ApplyReservation закрепляет списание после оплаты заказа;
// false если резерв уже применён или возвращён
func (s *Service) ApplyReservation(ctx context.Context, orderID int64) (bool, error) {
	flipped, err := s.LoyaltyRepo.UpdateReservationStatus(ctx, orderID, domain.RedemptionStatusReserved, domain.RedemptionStatusApplied)
	if err != nil {
		s.Log.Error("failed to apply loyalty reservation", "order_id", orderID, "error", err)
		return false, fmt.Errorf("failed to apply loyalty reservation: %w", err)
	}
	return flipped, nil
}

// RefundReservation возвращает зарезервированные баллы при отмене или истечении заказа.
// Возврат происходит только при переходе reserved -> refunded, повторный вызов ничего не делает
func (s *Service) RefundReservation(ctx context.Context, orderID int64) error {
	reservation, err := s.LoyaltyRepo.GetReservationByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		s.Log.Error("failed to get loyalty reservation", "order_id", orderID, "error", err)
		return fmt.Errorf("failed to get loyalty reservation: %w", err)
	}

	flipped, err := s.LoyaltyRepo.UpdateReservationStatus(ctx, orderID, domain.RedemptionStatusReserved, domain.RedemptionStatusRefunded)
	if err != nil {
		s.Log.Error("failed to refund loyalty reservation", "order_id", orderID, "error", err)
		return fmt.Errorf("failed to refund loyalty reservation: %w", err)
	}
	if !flipped {
		return nil
	}

	note := fmt.Sprintf("refund for order %d", orderID)
	if _, err := s.LoyaltyRepo.AdjustBalance(ctx, reservation.AccountID, reservation.Amount, domain.LoyaltyTxRefund, &orderID, &note); err != nil {
		s.Log.Error("failed to credit refunded points", "account_id", reservation.AccountID, "order_id", orderID, "error", err)
		return fmt.Errorf("failed to credit refunded points: %w", err)
	}

	s.Log.Info("loyalty reservation refunded", "order_id", orderID, "amount", reservation.Amount)
	return nil
}

// ReclaimReservation заново удерживает баллы по возвращённому резерву при
// переоткрытии заказа. Если резерва нет или баллы ещё удержаны, ничего не делает
func (s *Service) ReclaimReservation(ctx context.Context, orderID int64) error {
	reservation, err := s.LoyaltyRepo.GetReservationByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		s.Log.Error("failed to get loyalty reservation", "order_id", orderID, "error", err)
		return fmt.Errorf("failed to get loyalty reservation: %w", err)
	}
	if reservation.Status != domain.RedemptionStatusRefunded {
		return nil
	}

	note := fmt.Sprintf("re-reserved for reopened order %d", orderID)
	applied, err := s.LoyaltyRepo.AdjustBalance(ctx, reservation.AccountID, reservation.Amount.Neg(), domain.LoyaltyTxRedemption, &orderID, &note)
	if err != nil {
		s.Log.Error("failed to re-debit loyalty balance", "account_id", reservation.AccountID, "order_id", orderID, "error", err)
		return fmt.Errorf("failed to re-debit loyalty balance: %w", err)
	}
	if !applied {
		return domain.BusinessErrorf("insufficient loyalty balance to reopen order")
	}

	flipped, err := s.LoyaltyRepo.UpdateReservationStatus(ctx, orderID, domain.RedemptionStatusRefunded, domain.RedemptionStatusReserved)
	if err != nil || !flipped {
		// конкурирующее переоткрытие уже удержало баллы, возвращаем своё списание
		refundNote := fmt.Sprintf("duplicate re-reserve for order %d", orderID)
		if _, refundErr := s.LoyaltyRepo.AdjustBalance(ctx, reservation.AccountID, reservation.Amount, domain.LoyaltyTxRefund, &orderID, &refundNote); refundErr != nil {
			s.Log.Error("failed to refund duplicate re-debit", "account_id", reservation.AccountID, "order_id", orderID, "error", refundErr)
		}
		if err != nil {
			return fmt.Errorf("failed to flip loyalty reservation: %w", err)
		}
	}
	return nil
}

// Accrue начисляет баллы за оплаченный заказ по проценту из настроек
func (s *Service) Accrue(ctx context.Context, userID uuid.UUID, orderID int64, orderTotal decimal.Decimal, cfg domain.Settings) error {
	amount := orderTotal.Mul(cfg.LoyaltyAccrualPercent).Div(decimal.NewFromInt(100)).Round(8)
	if amount.IsZero() || amount.IsNegative() {
		return nil
	}

	account, err := s.LoyaltyRepo.GetOrCreateAccount(ctx, userID)
	if err != nil {
		s.Log.Error("failed to get loyalty account", "user_id", userID, "error", err)
		return fmt.Errorf("failed to get loyalty account: %w", err)
	}

	note := fmt.Sprintf("accrual for order %d", orderID)
	if _, err := s.LoyaltyRepo.AdjustBalance(ctx, account.ID, amount, domain.LoyaltyTxAccrual, &orderID, &note); err != nil {
		s.Log.Error("failed to accrue loyalty points", "account_id", account.ID, "order_id", orderID, "error", err)
		return fmt.Errorf("failed to accrue loyalty points: %w", err)
	}

	s.Log.Info("loyalty points accrued", "user_id", userID, "order_id", orderID, "amount", amount)
	return nil
}

// AdminAdjust ручная корректировка баланса админом, false если ушло бы в минус
func (s *Service) AdminAdjust(ctx context.Context, userID uuid.UUID, delta decimal.Decimal, note string) (bool, error) {
	account, err := s.LoyaltyRepo.GetOrCreateAccount(ctx, userID)
	if err != nil {
		s.Log.Error("failed to get loyalty account", "user_id", userID, "error", err)
		return false, fmt.Errorf("failed to get loyalty account: %w", err)
	}

	applied, err := s.LoyaltyRepo.AdjustBalance(ctx, account.ID, delta, domain.LoyaltyTxAdjustment, nil, &note)
	if err != nil {
		s.Log.Error("failed to adjust loyalty balance", "account_id", account.ID, "error", err)
		return false, fmt.Errorf("failed to adjust loyalty balance: %w", err)
	}
	return applied, nil
}
