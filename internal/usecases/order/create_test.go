package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestService_CreateOrder(t *testing.T) {
	buyer := testBuyer()

	t.Run("creates_awaiting_payment_order_with_deadline", func(t *testing.T) {
		service, m := newTestService()

		m.productRepo.On("GetByID", mock.Anything, int64(10)).Return(testProduct(10), nil)
		m.productRepo.On("DecrementStock", mock.Anything, int64(10), 2).Return(true, nil)
		m.orderRepo.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
		m.orderRepo.On("CreateTx", mock.Anything, mock.Anything, mock.AnythingOfType("*domain.Order")).
			Run(func(args mock.Arguments) {
				args.Get(2).(*domain.Order).ID = 1
			}).Return(nil)
		m.timelineRepo.On("CreateTx", mock.Anything, mock.Anything, mock.AnythingOfType("*domain.TimelineEntry")).Return(nil)

		got, err := service.CreateOrder(context.Background(), buyer, 10, 2, CreateOrderOptions{})

		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, domain.OrderStatusAwaitingPayment, got.Status)
		assert.NotEqual(t, uuid.Nil, got.PublicID)
		assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(100)), "want 100, got %s", got.TotalAmount)

		// дефолтный срок оплаты 30 минут от создания
		require.NotNil(t, got.PaymentExpiresAt)
		assert.WithinDuration(t, time.Now().Add(30*time.Minute), *got.PaymentExpiresAt, 5*time.Second)

		m.orderRepo.AssertExpectations(t)
		m.productRepo.AssertExpectations(t)
	})

	t.Run("coupon_discount_reduces_total_and_reserves", func(t *testing.T) {
		service, m := newTestService()
		code := "SALE10"

		m.productRepo.On("GetByID", mock.Anything, int64(10)).Return(testProduct(10), nil)
		m.couponRepo.On("GetByCode", mock.Anything, "SALE10").Return(&domain.Coupon{
			ID:            3,
			Code:          "SALE10",
			DiscountType:  domain.DiscountTypePercent,
			DiscountValue: decimal.NewFromInt(10),
			Active:        true,
		}, nil)
		m.productRepo.On("DecrementStock", mock.Anything, int64(10), 1).Return(true, nil)
		m.orderRepo.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
		m.orderRepo.On("CreateTx", mock.Anything, mock.Anything, mock.AnythingOfType("*domain.Order")).
			Run(func(args mock.Arguments) {
				args.Get(2).(*domain.Order).ID = 1
			}).Return(nil)
		m.timelineRepo.On("CreateTx", mock.Anything, mock.Anything, mock.AnythingOfType("*domain.TimelineEntry")).Return(nil)
		m.couponRepo.On("CreateRedemption", mock.Anything, mock.MatchedBy(func(r *domain.CouponRedemption) bool {
			return r.CouponID == 3 && r.OrderID == 1 && r.Status == domain.RedemptionStatusReserved
		})).Return(nil)

		got, err := service.CreateOrder(context.Background(), buyer, 10, 1, CreateOrderOptions{CouponCode: &code})

		require.NoError(t, err)
		assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(45)), "want 45, got %s", got.TotalAmount)
		m.couponRepo.AssertExpectations(t)
	})

	t.Run("redeemed_points_reduce_total_and_reserve", func(t *testing.T) {
		service, m := newTestService()

		m.productRepo.On("GetByID", mock.Anything, int64(10)).Return(testProduct(10), nil)
		m.loyaltyRepo.On("GetOrCreateAccount", mock.Anything, buyer.ID).Return(&domain.LoyaltyAccount{
			ID:      7,
			UserID:  buyer.ID,
			Balance: decimal.NewFromInt(100),
		}, nil)
		m.productRepo.On("DecrementStock", mock.Anything, int64(10), 1).Return(true, nil)
		m.orderRepo.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
		m.orderRepo.On("CreateTx", mock.Anything, mock.Anything, mock.AnythingOfType("*domain.Order")).
			Run(func(args mock.Arguments) {
				args.Get(2).(*domain.Order).ID = 1
			}).Return(nil)
		m.timelineRepo.On("CreateTx", mock.Anything, mock.Anything, mock.AnythingOfType("*domain.TimelineEntry")).Return(nil)
		m.loyaltyRepo.On("AdjustBalance", mock.Anything, int64(7), mock.MatchedBy(func(d decimal.Decimal) bool {
			return d.Equal(decimal.NewFromInt(-20))
		}), domain.LoyaltyTxRedemption, mock.Anything, mock.Anything).Return(true, nil)
		m.loyaltyRepo.On("CreateReservation", mock.Anything, mock.MatchedBy(func(r *domain.LoyaltyReservation) bool {
			return r.OrderID == 1 && r.Amount.Equal(decimal.NewFromInt(20))
		})).Return(nil)

		got, err := service.CreateOrder(context.Background(), buyer, 10, 1, CreateOrderOptions{
			RedeemPoints: decimal.NewFromInt(20),
		})

		require.NoError(t, err)
		assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(30)), "want 30, got %s", got.TotalAmount)
		m.loyaltyRepo.AssertExpectations(t)
	})

	t.Run("non_positive_quantity_rejected", func(t *testing.T) {
		service, m := newTestService()

		_, err := service.CreateOrder(context.Background(), buyer, 10, 0, CreateOrderOptions{})

		require.Error(t, err)
		assert.True(t, domain.IsBusinessError(err))
		m.productRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("inactive_product_rejected", func(t *testing.T) {
		service, m := newTestService()
		product := testProduct(10)
		product.Active = false
		m.productRepo.On("GetByID", mock.Anything, int64(10)).Return(product, nil)

		_, err := service.CreateOrder(context.Background(), buyer, 10, 1, CreateOrderOptions{})

		require.Error(t, err)
		assert.True(t, domain.IsBusinessError(err))
		m.productRepo.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("out_of_stock_rejected", func(t *testing.T) {
		service, m := newTestService()
		m.productRepo.On("GetByID", mock.Anything, int64(10)).Return(testProduct(10), nil)
		m.productRepo.On("DecrementStock", mock.Anything, int64(10), 5).Return(false, nil)

		_, err := service.CreateOrder(context.Background(), buyer, 10, 5, CreateOrderOptions{})

		require.Error(t, err)
		assert.True(t, domain.IsBusinessError(err))
		assert.Contains(t, err.Error(), "not enough stock")
		m.orderRepo.AssertNotCalled(t, "WithTransaction", mock.Anything, mock.Anything)
	})

	t.Run("failed_insert_restores_stock", func(t *testing.T) {
		service, m := newTestService()
		m.productRepo.On("GetByID", mock.Anything, int64(10)).Return(testProduct(10), nil)
		m.productRepo.On("DecrementStock", mock.Anything, int64(10), 1).Return(true, nil)
		m.orderRepo.On("WithTransaction", mock.Anything, mock.Anything).Return(errors.New("insert failed"))
		// списанный остаток возвращается, заказ не создан
		m.productRepo.On("RestoreStock", mock.Anything, int64(10), 1).Return(nil)

		_, err := service.CreateOrder(context.Background(), buyer, 10, 1, CreateOrderOptions{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create order")
		m.productRepo.AssertExpectations(t)
	})
}
