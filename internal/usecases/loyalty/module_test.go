package loyalty

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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decimalEq(want decimal.Decimal) interface{} {
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}

func TestService_MaxRedeemable(t *testing.T) {
	cfg := domain.DefaultSettings() // лимит списания 50% суммы заказа
	service := New(nil, testLogger())

	tests := []struct {
		name    string
		balance decimal.Decimal
		total   decimal.Decimal
		want    decimal.Decimal
	}{
		{
			// баланса меньше лимита, списать можно весь баланс
			name:    "balance_below_limit",
			balance: decimal.NewFromInt(20),
			total:   decimal.NewFromInt(100),
			want:    decimal.NewFromInt(20),
		},
		{
			// баланс больше лимита, списание упирается в долю заказа
			name:    "balance_above_limit",
			balance: decimal.NewFromInt(90),
			total:   decimal.NewFromInt(100),
			want:    decimal.NewFromInt(50),
		},
		{
			name:    "zero_balance",
			balance: decimal.Zero,
			total:   decimal.NewFromInt(100),
			want:    decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.MaxRedeemable(tt.balance, tt.total, cfg)
			assert.True(t, got.Equal(tt.want), "want %s, got %s", tt.want, got)
		})
	}
}

func TestService_ValidateRedeem(t *testing.T) {
	userID := uuid.New()
	cfg := domain.DefaultSettings()

	tests := []struct {
		name       string
		points     decimal.Decimal
		setupMocks func(repo *mocks.MockLoyaltyRepo)
		wantErr    string
	}{
		{
			name:   "redeem_within_limit_passes",
			points: decimal.NewFromInt(30),
			setupMocks: func(repo *mocks.MockLoyaltyRepo) {
				repo.On("GetOrCreateAccount", mock.Anything, userID).Return(&domain.LoyaltyAccount{
					ID:      1,
					UserID:  userID,
					Balance: decimal.NewFromInt(40),
				}, nil)
			},
		},
		{
			name:       "zero_points_rejected",
			points:     decimal.Zero,
			setupMocks: func(repo *mocks.MockLoyaltyRepo) {},
			wantErr:    "points must be positive",
		},
		{
			// баланса хватает, но запрос выше доли заказа из настроек
			name:   "redeem_over_share_limit_rejected",
			points: decimal.NewFromInt(60),
			setupMocks: func(repo *mocks.MockLoyaltyRepo) {
				repo.On("GetOrCreateAccount", mock.Anything, userID).Return(&domain.LoyaltyAccount{
					ID:      1,
					UserID:  userID,
					Balance: decimal.NewFromInt(200),
				}, nil)
			},
			wantErr: "can be redeemed",
		},
		{
			name:   "redeem_over_balance_rejected",
			points: decimal.NewFromInt(30),
			setupMocks: func(repo *mocks.MockLoyaltyRepo) {
				repo.On("GetOrCreateAccount", mock.Anything, userID).Return(&domain.LoyaltyAccount{
					ID:      1,
					UserID:  userID,
					Balance: decimal.NewFromInt(10),
				}, nil)
			},
			wantErr: "can be redeemed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockLoyaltyRepo)
			tt.setupMocks(repo)

			service := New(repo, testLogger())
			err := service.ValidateRedeem(context.Background(), userID, decimal.NewFromInt(100), tt.points, cfg)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.True(t, domain.IsBusinessError(err))
			} else {
				require.NoError(t, err)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestService_Reserve(t *testing.T) {
	userID := uuid.New()
	points := decimal.NewFromInt(25)

	t.Run("debits_balance_and_creates_reservation", func(t *testing.T) {
		repo := new(mocks.MockLoyaltyRepo)
		repo.On("GetOrCreateAccount", mock.Anything, userID).Return(&domain.LoyaltyAccount{ID: 5, UserID: userID, Balance: decimal.NewFromInt(100)}, nil)
		repo.On("AdjustBalance", mock.Anything, int64(5), decimalEq(points.Neg()), domain.LoyaltyTxRedemption, mock.Anything, mock.Anything).
			Return(true, nil)
		repo.On("CreateReservation", mock.Anything, mock.MatchedBy(func(r *domain.LoyaltyReservation) bool {
			return r.OrderID == 42 && r.AccountID == 5 && r.Amount.Equal(points) && r.Status == domain.RedemptionStatusReserved
		})).Return(nil)

		service := New(repo, testLogger())
		err := service.Reserve(context.Background(), userID, 42, points)

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("insufficient_balance_is_business_error", func(t *testing.T) {
		repo := new(mocks.MockLoyaltyRepo)
		repo.On("GetOrCreateAccount", mock.Anything, userID).Return(&domain.LoyaltyAccount{ID: 5, UserID: userID, Balance: decimal.NewFromInt(1)}, nil)
		// constraint balance >= 0 в БД не пропустил списание
		repo.On("AdjustBalance", mock.Anything, int64(5), decimalEq(points.Neg()), domain.LoyaltyTxRedemption, mock.Anything, mock.Anything).
			Return(false, nil)

		service := New(repo, testLogger())
		err := service.Reserve(context.Background(), userID, 42, points)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "insufficient loyalty balance")
		assert.True(t, domain.IsBusinessError(err))
		repo.AssertNotCalled(t, "CreateReservation", mock.Anything, mock.Anything)
	})

	t.Run("failed_reservation_refunds_debit", func(t *testing.T) {
		repo := new(mocks.MockLoyaltyRepo)
		repo.On("GetOrCreateAccount", mock.Anything, userID).Return(&domain.LoyaltyAccount{ID: 5, UserID: userID, Balance: decimal.NewFromInt(100)}, nil)
		repo.On("AdjustBalance", mock.Anything, int64(5), decimalEq(points.Neg()), domain.LoyaltyTxRedemption, mock.Anything, mock.Anything).
			Return(true, nil)
		repo.On("CreateReservation", mock.Anything, mock.Anything).Return(sql.ErrConnDone)
		// списанные баллы возвращаются компенсирующей записью
		repo.On("AdjustBalance", mock.Anything, int64(5), decimalEq(points), domain.LoyaltyTxRefund, mock.Anything, mock.Anything).
			Return(true, nil)

		service := New(repo, testLogger())
		err := service.Reserve(context.Background(), userID, 42, points)

		require.Error(t, err)
		repo.AssertExpectations(t)
	})
}

func TestService_RefundReservation(t *testing.T) {
	amount := decimal.NewFromInt(25)

	t.Run("no_reservation_is_noop", func(t *testing.T) {
		repo := new(mocks.MockLoyaltyRepo)
		repo.On("GetReservationByOrderID", mock.Anything, int64(42)).Return(nil, sql.ErrNoRows)

		service := New(repo, testLogger())
		err := service.RefundReservation(context.Background(), 42)

		require.NoError(t, err)
		repo.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("reserved_points_are_credited_back", func(t *testing.T) {
		repo := new(mocks.MockLoyaltyRepo)
		repo.On("GetReservationByOrderID", mock.Anything, int64(42)).Return(&domain.LoyaltyReservation{
			ID:        1,
			OrderID:   42,
			AccountID: 5,
			Amount:    amount,
			Status:    domain.RedemptionStatusReserved,
		}, nil)
		repo.On("UpdateReservationStatus", mock.Anything, int64(42), domain.RedemptionStatusReserved, domain.RedemptionStatusRefunded).
			Return(true, nil)
		repo.On("AdjustBalance", mock.Anything, int64(5), decimalEq(amount), domain.LoyaltyTxRefund, mock.Anything, mock.Anything).
			Return(true, nil)

		service := New(repo, testLogger())
		err := service.RefundReservation(context.Background(), 42)

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("already_refunded_reservation_credits_nothing", func(t *testing.T) {
		repo := new(mocks.MockLoyaltyRepo)
		repo.On("GetReservationByOrderID", mock.Anything, int64(42)).Return(&domain.LoyaltyReservation{
			ID:        1,
			OrderID:   42,
			AccountID: 5,
			Amount:    amount,
			Status:    domain.RedemptionStatusRefunded,
		}, nil)
		repo.On("UpdateReservationStatus", mock.Anything, int64(42), domain.RedemptionStatusReserved, domain.RedemptionStatusRefunded).
			Return(false, nil)

		service := New(repo, testLogger())
		err := service.RefundReservation(context.Background(), 42)

		require.NoError(t, err)
		repo.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_Accrue(t *testing.T) {
	userID := uuid.New()
	cfg := domain.DefaultSettings() // кэшбек 5%

	t.Run("accrues_percent_of_order_total", func(t *testing.T) {
		repo := new(mocks.MockLoyaltyRepo)
		repo.On("GetOrCreateAccount", mock.Anything, userID).Return(&domain.LoyaltyAccount{ID: 5, UserID: userID}, nil)
		repo.On("AdjustBalance", mock.Anything, int64(5), decimalEq(decimal.NewFromInt(10)), domain.LoyaltyTxAccrual, mock.Anything, mock.Anything).
			Return(true, nil)

		service := New(repo, testLogger())
		err := service.Accrue(context.Background(), userID, 42, decimal.NewFromInt(200), cfg)

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("zero_accrual_skips_ledger", func(t *testing.T) {
		cfg := cfg
		cfg.LoyaltyAccrualPercent = decimal.Zero

		repo := new(mocks.MockLoyaltyRepo)
		service := New(repo, testLogger())
		err := service.Accrue(context.Background(), userID, 42, decimal.NewFromInt(200), cfg)

		require.NoError(t, err)
		repo.AssertNotCalled(t, "GetOrCreateAccount", mock.Anything, mock.Anything)
	})
}

func TestService_AdminAdjust(t *testing.T) {
	userID := uuid.New()

	t.Run("negative_adjustment_cannot_go_below_zero", func(t *testing.T) {
		repo := new(mocks.MockLoyaltyRepo)
		repo.On("GetOrCreateAccount", mock.Anything, userID).Return(&domain.LoyaltyAccount{ID: 5, UserID: userID, Balance: decimal.NewFromInt(3)}, nil)
		repo.On("AdjustBalance", mock.Anything, int64(5), decimalEq(decimal.NewFromInt(-10)), domain.LoyaltyTxAdjustment, mock.Anything, mock.Anything).
			Return(false, nil)

		service := New(repo, testLogger())
		applied, err := service.AdminAdjust(context.Background(), userID, decimal.NewFromInt(-10), "manual correction")

		require.NoError(t, err)
		assert.False(t, applied)
		repo.AssertExpectations(t)
	})
}
