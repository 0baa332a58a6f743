package referral

import (
	"context"
	"database/sql"
	"io"
	"testing"

	"log/slog"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/mocks"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_Attribute(t *testing.T) {
	referrerID := uuid.New()
	link := &domain.ReferralLink{ID: 1, UserID: referrerID, Code: "abc123"}

	t.Run("signup_is_attributed_once", func(t *testing.T) {
		newUser := &domain.User{ID: uuid.New()}

		referralRepo := new(mocks.MockReferralRepo)
		userRepo := new(mocks.MockUserRepo)
		referralRepo.On("GetLinkByCode", mock.Anything, "abc123").Return(link, nil)
		referralRepo.On("IncrementClicks", mock.Anything, int64(1)).Return(nil)
		userRepo.On("SetReferredBy", mock.Anything, newUser.ID, referrerID).Return(true, nil)
		referralRepo.On("IncrementSignups", mock.Anything, int64(1)).Return(nil)

		service := New(referralRepo, nil, userRepo, testLogger())
		err := service.Attribute(context.Background(), newUser, "abc123")

		require.NoError(t, err)
		referralRepo.AssertExpectations(t)
		userRepo.AssertExpectations(t)
	})

	t.Run("self_referral_is_ignored", func(t *testing.T) {
		referralRepo := new(mocks.MockReferralRepo)
		userRepo := new(mocks.MockUserRepo)
		referralRepo.On("GetLinkByCode", mock.Anything, "abc123").Return(link, nil)

		// владелец ссылки перешёл по ней сам
		service := New(referralRepo, nil, userRepo, testLogger())
		err := service.Attribute(context.Background(), &domain.User{ID: referrerID}, "abc123")

		require.NoError(t, err)
		referralRepo.AssertNotCalled(t, "IncrementClicks", mock.Anything, mock.Anything)
		userRepo.AssertNotCalled(t, "SetReferredBy", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown_code_is_ignored", func(t *testing.T) {
		referralRepo := new(mocks.MockReferralRepo)
		userRepo := new(mocks.MockUserRepo)
		referralRepo.On("GetLinkByCode", mock.Anything, "junk").Return(nil, sql.ErrNoRows)

		service := New(referralRepo, nil, userRepo, testLogger())
		err := service.Attribute(context.Background(), &domain.User{ID: uuid.New()}, "junk")

		require.NoError(t, err)
		referralRepo.AssertNotCalled(t, "IncrementClicks", mock.Anything, mock.Anything)
	})

	t.Run("already_attributed_user_keeps_first_referrer", func(t *testing.T) {
		attributedUser := &domain.User{ID: uuid.New()}

		referralRepo := new(mocks.MockReferralRepo)
		userRepo := new(mocks.MockUserRepo)
		referralRepo.On("GetLinkByCode", mock.Anything, "abc123").Return(link, nil)
		referralRepo.On("IncrementClicks", mock.Anything, int64(1)).Return(nil)
		// реферер уже выставлен другим кликом, повторная привязка не проходит
		userRepo.On("SetReferredBy", mock.Anything, attributedUser.ID, referrerID).Return(false, nil)

		service := New(referralRepo, nil, userRepo, testLogger())
		err := service.Attribute(context.Background(), attributedUser, "abc123")

		require.NoError(t, err)
		referralRepo.AssertNotCalled(t, "IncrementSignups", mock.Anything, mock.Anything)
	})
}

func TestService_RewardForPaidOrder(t *testing.T) {
	referrerID := uuid.New()
	buyerID := uuid.New()
	cfg := domain.DefaultSettings() // награда 100 баллов
	link := &domain.ReferralLink{ID: 1, UserID: referrerID, Code: "abc123"}
	order := &domain.Order{ID: 42, UserID: buyerID, Status: domain.OrderStatusPaid}

	buyer := func() *domain.User {
		ref := referrerID
		return &domain.User{ID: buyerID, ReferredBy: &ref}
	}

	t.Run("first_paid_order_grants_reward", func(t *testing.T) {
		referralRepo := new(mocks.MockReferralRepo)
		loyaltyRepo := new(mocks.MockLoyaltyRepo)
		referralRepo.On("GetLinkByUserID", mock.Anything, referrerID).Return(link, nil)
		referralRepo.On("GetRewardByOrderID", mock.Anything, int64(42)).Return(nil, sql.ErrNoRows)
		referralRepo.On("HasGrantedReward", mock.Anything, int64(1), buyerID).Return(false, nil)
		referralRepo.On("CreateReward", mock.Anything, mock.MatchedBy(func(r *domain.ReferralReward) bool {
			return r.OrderID == 42 && r.RefereeUserID == buyerID && r.Amount.Equal(cfg.ReferralRewardAmount)
		})).Return(nil)
		loyaltyRepo.On("GetOrCreateAccount", mock.Anything, referrerID).Return(&domain.LoyaltyAccount{ID: 9, UserID: referrerID}, nil)
		loyaltyRepo.On("AdjustBalance", mock.Anything, int64(9), mock.MatchedBy(func(d decimal.Decimal) bool {
			return d.Equal(cfg.ReferralRewardAmount)
		}), domain.LoyaltyTxReferral, mock.Anything, mock.Anything).Return(true, nil)
		referralRepo.On("UpdateRewardStatus", mock.Anything, int64(42), domain.RewardStatusPending, domain.RewardStatusGranted).Return(true, nil)
		referralRepo.On("IncrementPaidOrders", mock.Anything, int64(1)).Return(nil)

		service := New(referralRepo, loyaltyRepo, new(mocks.MockUserRepo), testLogger())
		err := service.RewardForPaidOrder(context.Background(), order, buyer(), cfg)

		require.NoError(t, err)
		referralRepo.AssertExpectations(t)
		loyaltyRepo.AssertExpectations(t)
	})

	t.Run("buyer_without_referrer_grants_nothing", func(t *testing.T) {
		referralRepo := new(mocks.MockReferralRepo)

		service := New(referralRepo, new(mocks.MockLoyaltyRepo), new(mocks.MockUserRepo), testLogger())
		err := service.RewardForPaidOrder(context.Background(), order, &domain.User{ID: buyerID}, cfg)

		require.NoError(t, err)
		referralRepo.AssertNotCalled(t, "GetLinkByUserID", mock.Anything, mock.Anything)
	})

	t.Run("repeat_call_for_same_order_grants_nothing", func(t *testing.T) {
		referralRepo := new(mocks.MockReferralRepo)
		referralRepo.On("GetLinkByUserID", mock.Anything, referrerID).Return(link, nil)
		referralRepo.On("GetRewardByOrderID", mock.Anything, int64(42)).Return(&domain.ReferralReward{
			ID:      1,
			LinkID:  1,
			OrderID: 42,
			Status:  domain.RewardStatusGranted,
		}, nil)

		service := New(referralRepo, new(mocks.MockLoyaltyRepo), new(mocks.MockUserRepo), testLogger())
		err := service.RewardForPaidOrder(context.Background(), order, buyer(), cfg)

		require.NoError(t, err)
		referralRepo.AssertNotCalled(t, "CreateReward", mock.Anything, mock.Anything)
	})

	t.Run("second_order_of_same_referee_grants_nothing", func(t *testing.T) {
		secondOrder := &domain.Order{ID: 43, UserID: buyerID, Status: domain.OrderStatusPaid}

		referralRepo := new(mocks.MockReferralRepo)
		referralRepo.On("GetLinkByUserID", mock.Anything, referrerID).Return(link, nil)
		referralRepo.On("GetRewardByOrderID", mock.Anything, int64(43)).Return(nil, sql.ErrNoRows)
		// награда за этого приглашённого уже была по первому заказу
		referralRepo.On("HasGrantedReward", mock.Anything, int64(1), buyerID).Return(true, nil)

		service := New(referralRepo, new(mocks.MockLoyaltyRepo), new(mocks.MockUserRepo), testLogger())
		err := service.RewardForPaidOrder(context.Background(), secondOrder, buyer(), cfg)

		require.NoError(t, err)
		referralRepo.AssertNotCalled(t, "CreateReward", mock.Anything, mock.Anything)
	})

	t.Run("zero_reward_setting_disables_program", func(t *testing.T) {
		cfg := cfg
		cfg.ReferralRewardAmount = decimal.Zero

		referralRepo := new(mocks.MockReferralRepo)
		service := New(referralRepo, new(mocks.MockLoyaltyRepo), new(mocks.MockUserRepo), testLogger())
		err := service.RewardForPaidOrder(context.Background(), order, buyer(), cfg)

		require.NoError(t, err)
		referralRepo.AssertNotCalled(t, "GetLinkByUserID", mock.Anything, mock.Anything)
	})
}

func TestService_RevokeRewardForOrder(t *testing.T) {
	referrerID := uuid.New()
	amount := decimal.NewFromInt(100)

	t.Run("granted_reward_is_debited_back", func(t *testing.T) {
		referralRepo := new(mocks.MockReferralRepo)
		loyaltyRepo := new(mocks.MockLoyaltyRepo)
		referralRepo.On("GetRewardByOrderID", mock.Anything, int64(42)).Return(&domain.ReferralReward{
			ID: 1, LinkID: 1, OrderID: 42, Amount: amount, Status: domain.RewardStatusGranted,
		}, nil)
		referralRepo.On("UpdateRewardStatus", mock.Anything, int64(42), domain.RewardStatusGranted, domain.RewardStatusRevoked).Return(true, nil)
		referralRepo.On("GetLinkByID", mock.Anything, int64(1)).Return(&domain.ReferralLink{ID: 1, UserID: referrerID}, nil)
		loyaltyRepo.On("GetOrCreateAccount", mock.Anything, referrerID).Return(&domain.LoyaltyAccount{ID: 9, UserID: referrerID}, nil)
		loyaltyRepo.On("AdjustBalance", mock.Anything, int64(9), mock.MatchedBy(func(d decimal.Decimal) bool {
			return d.Equal(amount.Neg())
		}), domain.LoyaltyTxAdjustment, mock.Anything, mock.Anything).Return(true, nil)

		service := New(referralRepo, loyaltyRepo, new(mocks.MockUserRepo), testLogger())
		err := service.RevokeRewardForOrder(context.Background(), 42)

		require.NoError(t, err)
		referralRepo.AssertExpectations(t)
		loyaltyRepo.AssertExpectations(t)
	})

	t.Run("no_reward_is_noop", func(t *testing.T) {
		referralRepo := new(mocks.MockReferralRepo)
		referralRepo.On("GetRewardByOrderID", mock.Anything, int64(42)).Return(nil, sql.ErrNoRows)

		service := New(referralRepo, new(mocks.MockLoyaltyRepo), new(mocks.MockUserRepo), testLogger())
		err := service.RevokeRewardForOrder(context.Background(), 42)

		require.NoError(t, err)
		referralRepo.AssertNotCalled(t, "UpdateRewardStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("spent_reward_leaves_balance_as_is", func(t *testing.T) {
		referralRepo := new(mocks.MockReferralRepo)
		loyaltyRepo := new(mocks.MockLoyaltyRepo)
		referralRepo.On("GetRewardByOrderID", mock.Anything, int64(42)).Return(&domain.ReferralReward{
			ID: 1, LinkID: 1, OrderID: 42, Amount: amount, Status: domain.RewardStatusGranted,
		}, nil)
		referralRepo.On("UpdateRewardStatus", mock.Anything, int64(42), domain.RewardStatusGranted, domain.RewardStatusRevoked).Return(true, nil)
		referralRepo.On("GetLinkByID", mock.Anything, int64(1)).Return(&domain.ReferralLink{ID: 1, UserID: referrerID}, nil)
		loyaltyRepo.On("GetOrCreateAccount", mock.Anything, referrerID).Return(&domain.LoyaltyAccount{ID: 9, UserID: referrerID}, nil)
		// реферер уже потратил баллы, списание в минус не проходит и это не ошибка
		loyaltyRepo.On("AdjustBalance", mock.Anything, int64(9), mock.Anything, domain.LoyaltyTxAdjustment, mock.Anything, mock.Anything).
			Return(false, nil)

		service := New(referralRepo, loyaltyRepo, new(mocks.MockUserRepo), testLogger())
		err := service.RevokeRewardForOrder(context.Background(), 42)

		require.NoError(t, err)
		loyaltyRepo.AssertExpectations(t)
	})
}
