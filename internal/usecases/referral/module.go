package referral

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"log/slog"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/ports/repository"
	"github.com/google/uuid"
)

// Service реферальная программа: привязка приглашённых и награды
// за их первый оплаченный заказ
type Service struct {
	ReferralRepo repository.IReferralRepo
	LoyaltyRepo  repository.ILoyaltyRepo
	UserRepo     repository.IUserRepo
	Log          *slog.Logger
}

func New(
	referralRepo repository.IReferralRepo,
	loyaltyRepo repository.ILoyaltyRepo,
	userRepo repository.IUserRepo,
	log *slog.Logger,
) *Service {
	return &Service{
		ReferralRepo: referralRepo,
		LoyaltyRepo:  loyaltyRepo,
		UserRepo:     userRepo,
		Log:          log,
	}
}

// MyLink возвращает реферальную ссылку пользователя, создавая при первом обращении
func (s *Service) MyLink(ctx context.Context, userID uuid.UUID) (*domain.ReferralLink, error) {
	code := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	link, err := s.ReferralRepo.GetOrCreateLink(ctx, userID, code)
	if err != nil {
		s.Log.Error("failed to get referral link", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get referral link: %w", err)
	}
	return link, nil
}

// Attribute привязывает пользователя к рефереру по коду из /start payload.
// Клик считается всегда, регистрация засчитывается один раз на пользователя,
// самоприглашение молча игнорируется
func (s *Service) Attribute(ctx context.Context, user *domain.User, code string) error {
	link, err := s.ReferralRepo.GetLinkByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.Log.Debug("unknown referral code", "code", code, "user_id", user.ID)
			return nil
		}
		s.Log.Error("failed to get referral link by code", "code", code, "error", err)
		return fmt.Errorf("failed to get referral link by code: %w", err)
	}

	if link.UserID == user.ID {
		s.Log.Debug("self referral ignored", "user_id", user.ID, "code", code)
		return nil
	}

	if err := s.ReferralRepo.IncrementClicks(ctx, link.ID); err != nil {
		return err
	}

	attributed, err := s.UserRepo.SetReferredBy(ctx, user.ID, link.UserID)
	if err != nil {
		s.Log.Error("failed to set referrer", "user_id", user.ID, "referrer_id", link.UserID, "error", err)
		return fmt.Errorf("failed to set referrer: %w", err)
	}
	if !attributed {
		s.Log.Debug("user already attributed", "user_id", user.ID, "code", code)
		return nil
	}

	if err := s.ReferralRepo.IncrementSignups(ctx, link.ID); err != nil {
		return err
	}

	s.Log.Info("referral signup attributed",
		"user_id", user.ID,
		"referrer_id", link.UserID,
		"code", code,
	)
	return nil
}

// RewardForPaidOrder начисляет рефереру награду за первый оплаченный заказ
// приглашённого. Повторные заказы того же приглашённого награду не дают,
// повторный вызов для того же заказа ничего не меняет
func (s *Service) RewardForPaidOrder(ctx context.Context, order *domain.Order, buyer *domain.User, cfg domain.Settings) error {
	if buyer.ReferredBy == nil {
		return nil
	}
	if cfg.ReferralRewardAmount.IsZero() || cfg.ReferralRewardAmount.IsNegative() {
		return nil
	}

	link, err := s.ReferralRepo.GetLinkByUserID(ctx, *buyer.ReferredBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.Log.Warn("referrer has no link", "referrer_id", *buyer.ReferredBy, "order_id", order.ID)
			return nil
		}
		s.Log.Error("failed to get referrer link", "referrer_id", *buyer.ReferredBy, "error", err)
		return fmt.Errorf("failed to get referrer link: %w", err)
	}

	if _, err := s.ReferralRepo.GetRewardByOrderID(ctx, order.ID); err == nil {
		return nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		s.Log.Error("failed to check order reward", "order_id", order.ID, "error", err)
		return fmt.Errorf("failed to check order reward: %w", err)
	}

	granted, err := s.ReferralRepo.HasGrantedReward(ctx, link.ID, buyer.ID)
	if err != nil {
		return err
	}
	if granted {
		s.Log.Debug("referee already rewarded", "link_id", link.ID, "referee_user_id", buyer.ID)
		return nil
	}

	reward := &domain.ReferralReward{
		LinkID:        link.ID,
		RefereeUserID: buyer.ID,
		OrderID:       order.ID,
		Amount:        cfg.ReferralRewardAmount,
		Status:        domain.RewardStatusPending,
	}
	if err := s.ReferralRepo.CreateReward(ctx, reward); err != nil {
		return err
	}

	account, err := s.LoyaltyRepo.GetOrCreateAccount(ctx, link.UserID)
	if err != nil {
		s.Log.Error("failed to get referrer loyalty account", "referrer_id", link.UserID, "error", err)
		return fmt.Errorf("failed to get referrer loyalty account: %w", err)
	}

	note := fmt.Sprintf("referral reward for order %d", order.ID)
	if _, err := s.LoyaltyRepo.AdjustBalance(ctx, account.ID, reward.Amount, domain.LoyaltyTxReferral, &order.ID, &note); err != nil {
		s.Log.Error("failed to credit referral reward", "account_id", account.ID, "order_id", order.ID, "error", err)
		return fmt.Errorf("failed to credit referral reward: %w", err)
	}

	if _, err := s.ReferralRepo.UpdateRewardStatus(ctx, order.ID, domain.RewardStatusPending, domain.RewardStatusGranted); err != nil {
		return err
	}
	if err := s.ReferralRepo.IncrementPaidOrders(ctx, link.ID); err != nil {
		return err
	}

	s.Log.Info("referral reward granted",
		"order_id", order.ID,
		"referrer_id", link.UserID,
		"referee_user_id", buyer.ID,
		"amount", reward.Amount,
	)
	return nil
}

// RevokeRewardForOrder отзывает награду после отмены оплаченного заказа.
// Баллы списываются обратно, если реферер их ещё не потратил; иначе баланс
// остаётся как есть с предупреждением в логе
func (s *Service) RevokeRewardForOrder(ctx context.Context, orderID int64) error {
	reward, err := s.ReferralRepo.GetRewardByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		s.Log.Error("failed to get order reward", "order_id", orderID, "error", err)
		return fmt.Errorf("failed to get order reward: %w", err)
	}

	revoked, err := s.ReferralRepo.UpdateRewardStatus(ctx, orderID, domain.RewardStatusGranted, domain.RewardStatusRevoked)
	if err != nil {
		return err
	}
	if !revoked {
		return nil
	}

	link, err := s.ReferralRepo.GetLinkByID(ctx, reward.LinkID)
	if err != nil {
		s.Log.Error("failed to get reward link", "link_id", reward.LinkID, "error", err)
		return fmt.Errorf("failed to get reward link: %w", err)
	}

	account, err := s.LoyaltyRepo.GetOrCreateAccount(ctx, link.UserID)
	if err != nil {
		s.Log.Error("failed to get referrer loyalty account", "referrer_id", link.UserID, "error", err)
		return fmt.Errorf("failed to get referrer loyalty account: %w", err)
	}

	note := fmt.Sprintf("referral reward revoked for order %d", orderID)
	debited, err := s.LoyaltyRepo.AdjustBalance(ctx, account.ID, reward.Amount.Neg(), domain.LoyaltyTxAdjustment, &orderID, &note)
	if err != nil {
		s.Log.Error("failed to debit revoked reward", "account_id", account.ID, "order_id", orderID, "error", err)
		return fmt.Errorf("failed to debit revoked reward: %w", err)
	}
	if !debited {
		s.Log.Warn("referrer already spent revoked reward, balance left as is",
			"account_id", account.ID,
			"order_id", orderID,
			"amount", reward.Amount,
		)
	}

	s.Log.Info("referral reward revoked", "order_id", orderID, "link_id", reward.LinkID)
	return nil
}

// Stats счётчики реферальной ссылки пользователя
func (s *Service) Stats(ctx context.Context, userID uuid.UUID) (*domain.ReferralLink, error) {
	return s.MyLink(ctx, userID)
}
