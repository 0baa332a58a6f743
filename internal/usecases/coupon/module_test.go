package coupon

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"
	"time"

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

func activeCoupon() *domain.Coupon {
	return &domain.Coupon{
		ID:            1,
		Code:          "SALE10",
		DiscountType:  domain.DiscountTypePercent,
		DiscountValue: decimal.NewFromInt(10),
		Active:        true,
	}
}

func TestService_Validate(t *testing.T) {
	userID := uuid.New()
	orderAmount := decimal.NewFromInt(100)
	one := 1

	tests := []struct {
		name         string
		code         string
		setupMocks   func(repo *mocks.MockCouponRepo)
		wantErr      string
		wantBusiness bool
	}{
		{
			name: "valid_coupon_passes",
			code: "SALE10",
			setupMocks: func(repo *mocks.MockCouponRepo) {
				repo.On("GetByCode", mock.Anything, "SALE10").Return(activeCoupon(), nil)
			},
		},
		{
			// код нормализуется: пробелы и регистр не мешают применению
			name: "code_is_normalized_before_lookup",
			code: "  sale10 ",
			setupMocks: func(repo *mocks.MockCouponRepo) {
				repo.On("GetByCode", mock.Anything, "SALE10").Return(activeCoupon(), nil)
			},
		},
		{
			name:         "empty_code_rejected",
			code:         "   ",
			setupMocks:   func(repo *mocks.MockCouponRepo) {},
			wantErr:      "coupon code is empty",
			wantBusiness: true,
		},
		{
			name: "unknown_code_rejected",
			code: "NOPE",
			setupMocks: func(repo *mocks.MockCouponRepo) {
				repo.On("GetByCode", mock.Anything, "NOPE").Return(nil, sql.ErrNoRows)
			},
			wantErr:      "not found",
			wantBusiness: true,
		},
		{
			name: "inactive_coupon_rejected",
			code: "SALE10",
			setupMocks: func(repo *mocks.MockCouponRepo) {
				c := activeCoupon()
				c.Active = false
				repo.On("GetByCode", mock.Anything, "SALE10").Return(c, nil)
			},
			wantErr:      "not active",
			wantBusiness: true,
		},
		{
			name: "expired_coupon_rejected",
			code: "SALE10",
			setupMocks: func(repo *mocks.MockCouponRepo) {
				c := activeCoupon()
				until := time.Now().Add(-time.Hour)
				c.ValidUntil = &until
				repo.On("GetByCode", mock.Anything, "SALE10").Return(c, nil)
			},
			wantErr:      "expired",
			wantBusiness: true,
		},
		{
			name: "not_yet_valid_coupon_rejected",
			code: "SALE10",
			setupMocks: func(repo *mocks.MockCouponRepo) {
				c := activeCoupon()
				from := time.Now().Add(time.Hour)
				c.ValidFrom = &from
				repo.On("GetByCode", mock.Anything, "SALE10").Return(c, nil)
			},
			wantErr:      "not valid yet",
			wantBusiness: true,
		},
		{
			name: "order_below_min_amount_rejected",
			code: "SALE10",
			setupMocks: func(repo *mocks.MockCouponRepo) {
				c := activeCoupon()
				minAmount := decimal.NewFromInt(200)
				c.MinOrderAmount = &minAmount
				repo.On("GetByCode", mock.Anything, "SALE10").Return(c, nil)
			},
			wantErr:      "below coupon minimum",
			wantBusiness: true,
		},
		{
			// одноразовый купон: первое применение проходит
			name: "single_use_coupon_first_redemption_passes",
			code: "SALE10",
			setupMocks: func(repo *mocks.MockCouponRepo) {
				c := activeCoupon()
				c.MaxRedemptions = &one
				repo.On("GetByCode", mock.Anything, "SALE10").Return(c, nil)
				repo.On("CountRedemptions", mock.Anything, int64(1)).Return(0, nil)
			},
		},
		{
			// одноразовый купон: второе применение упирается в лимит
			name: "single_use_coupon_second_redemption_rejected",
			code: "SALE10",
			setupMocks: func(repo *mocks.MockCouponRepo) {
				c := activeCoupon()
				c.MaxRedemptions = &one
				repo.On("GetByCode", mock.Anything, "SALE10").Return(c, nil)
				repo.On("CountRedemptions", mock.Anything, int64(1)).Return(1, nil)
			},
			wantErr:      "redemption limit reached",
			wantBusiness: true,
		},
		{
			name: "per_user_limit_rejected",
			code: "SALE10",
			setupMocks: func(repo *mocks.MockCouponRepo) {
				c := activeCoupon()
				c.PerUserLimit = 1
				repo.On("GetByCode", mock.Anything, "SALE10").Return(c, nil)
				repo.On("CountUserRedemptions", mock.Anything, int64(1), userID).Return(1, nil)
			},
			wantErr:      "already used",
			wantBusiness: true,
		},
		{
			// сбой хранилища не маскируется под отказ бизнес-логики
			name: "repo_failure_is_not_business_error",
			code: "SALE10",
			setupMocks: func(repo *mocks.MockCouponRepo) {
				repo.On("GetByCode", mock.Anything, "SALE10").Return(nil, errors.New("connection refused"))
			},
			wantErr:      "failed to get coupon",
			wantBusiness: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockCouponRepo)
			tt.setupMocks(repo)

			service := New(repo, testLogger())
			coupon, err := service.Validate(context.Background(), tt.code, userID, orderAmount)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Equal(t, tt.wantBusiness, domain.IsBusinessError(err))
				assert.Nil(t, coupon)
			} else {
				require.NoError(t, err)
				require.NotNil(t, coupon)
				assert.Equal(t, "SALE10", coupon.Code)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestService_Apply(t *testing.T) {
	repo := new(mocks.MockCouponRepo)
	repo.On("UpdateRedemptionStatus", mock.Anything, int64(42), domain.RedemptionStatusReserved, domain.RedemptionStatusApplied).
		Return(true, nil).Once()
	repo.On("UpdateRedemptionStatus", mock.Anything, int64(42), domain.RedemptionStatusReserved, domain.RedemptionStatusApplied).
		Return(false, nil).Once()

	service := New(repo, testLogger())

	flipped, err := service.Apply(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, flipped)

	// резерв уже закреплён, повторный вызов ничего не меняет
	flipped, err = service.Apply(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, flipped)

	repo.AssertExpectations(t)
}

func TestService_Refund(t *testing.T) {
	t.Run("no_redemption_is_noop", func(t *testing.T) {
		repo := new(mocks.MockCouponRepo)
		repo.On("GetRedemptionByOrderID", mock.Anything, int64(7)).Return(nil, sql.ErrNoRows)

		service := New(repo, testLogger())
		flipped, err := service.Refund(context.Background(), 7)

		require.NoError(t, err)
		assert.False(t, flipped)
		repo.AssertExpectations(t)
	})

	t.Run("reserved_redemption_is_refunded", func(t *testing.T) {
		repo := new(mocks.MockCouponRepo)
		repo.On("GetRedemptionByOrderID", mock.Anything, int64(7)).Return(&domain.CouponRedemption{
			ID:       1,
			CouponID: 1,
			OrderID:  7,
			Status:   domain.RedemptionStatusReserved,
		}, nil)
		repo.On("UpdateRedemptionStatus", mock.Anything, int64(7), domain.RedemptionStatusReserved, domain.RedemptionStatusRefunded).
			Return(true, nil)

		service := New(repo, testLogger())
		flipped, err := service.Refund(context.Background(), 7)

		require.NoError(t, err)
		assert.True(t, flipped)
		repo.AssertExpectations(t)
	})
}

func TestService_CreateCoupon(t *testing.T) {
	tests := []struct {
		name       string
		coupon     *domain.Coupon
		setupMocks func(repo *mocks.MockCouponRepo)
		wantErr    string
	}{
		{
			name: "code_is_upcased_on_create",
			coupon: &domain.Coupon{
				Code:          "welcome",
				DiscountType:  domain.DiscountTypeFixed,
				DiscountValue: decimal.NewFromInt(5),
			},
			setupMocks: func(repo *mocks.MockCouponRepo) {
				repo.On("GetByCode", mock.Anything, "WELCOME").Return(nil, sql.ErrNoRows)
				repo.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Coupon) bool {
					return c.Code == "WELCOME"
				})).Return(nil)
			},
		},
		{
			name: "unknown_discount_type_rejected",
			coupon: &domain.Coupon{
				Code:          "BAD",
				DiscountType:  "half-price",
				DiscountValue: decimal.NewFromInt(5),
			},
			setupMocks: func(repo *mocks.MockCouponRepo) {},
			wantErr:    "unknown discount type",
		},
		{
			name: "zero_discount_rejected",
			coupon: &domain.Coupon{
				Code:          "ZERO",
				DiscountType:  domain.DiscountTypeFixed,
				DiscountValue: decimal.Zero,
			},
			setupMocks: func(repo *mocks.MockCouponRepo) {},
			wantErr:    "must be positive",
		},
		{
			name: "percent_over_hundred_rejected",
			coupon: &domain.Coupon{
				Code:          "BIG",
				DiscountType:  domain.DiscountTypePercent,
				DiscountValue: decimal.NewFromInt(150),
			},
			setupMocks: func(repo *mocks.MockCouponRepo) {},
			wantErr:    "cannot exceed 100",
		},
		{
			name: "duplicate_code_rejected",
			coupon: &domain.Coupon{
				Code:          "SALE10",
				DiscountType:  domain.DiscountTypePercent,
				DiscountValue: decimal.NewFromInt(10),
			},
			setupMocks: func(repo *mocks.MockCouponRepo) {
				repo.On("GetByCode", mock.Anything, "SALE10").Return(activeCoupon(), nil)
			},
			wantErr: "already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockCouponRepo)
			tt.setupMocks(repo)

			service := New(repo, testLogger())
			err := service.CreateCoupon(context.Background(), tt.coupon)

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
