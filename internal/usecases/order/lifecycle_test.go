package order

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/mocks"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func awaitingOrder(id int64, buyer *domain.User, deadline time.Time) *domain.Order {
	return &domain.Order{
		ID:               id,
		PublicID:         uuid.New(),
		UserID:           buyer.ID,
		ProductID:        10,
		Quantity:         1,
		Status:           domain.OrderStatusAwaitingPayment,
		TotalAmount:      decimal.NewFromInt(50),
		Currency:         "USDT",
		PaymentExpiresAt: &deadline,
	}
}

// освобождение резервов для заказа без купона и баллов
func expectEmptyReservationRelease(m *serviceMocks, orderID int64) {
	m.loyaltyRepo.On("GetReservationByOrderID", mock.Anything, orderID).Return(nil, sql.ErrNoRows)
	m.couponRepo.On("GetRedemptionByOrderID", mock.Anything, orderID).Return(nil, sql.ErrNoRows)
}

func TestService_EnforceExpiration(t *testing.T) {
	buyer := testBuyer()

	t.Run("due_order_flips_to_expired_and_releases_stock", func(t *testing.T) {
		service, m := newTestService()
		o := awaitingOrder(42, buyer, time.Now().Add(-time.Hour))

		m.orderRepo.On("GetByID", mock.Anything, int64(42)).Return(o, nil)
		m.orderRepo.On("UpdateStatus", mock.Anything, int64(42), domain.OrderStatusAwaitingPayment, domain.OrderStatusExpired).
			Return(true, nil)
		m.timelineRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.TimelineEntry")).Return(nil)
		expectEmptyReservationRelease(m, 42)
		m.productRepo.On("RestoreStock", mock.Anything, int64(10), 1).Return(nil)

		changed, err := service.EnforceExpiration(context.Background(), 42)

		require.NoError(t, err)
		assert.True(t, changed)
		m.orderRepo.AssertExpectations(t)
		m.productRepo.AssertExpectations(t)
	})

	t.Run("second_run_is_noop", func(t *testing.T) {
		service, m := newTestService()
		o := awaitingOrder(42, buyer, time.Now().Add(-time.Hour))
		o.Status = domain.OrderStatusExpired

		m.orderRepo.On("GetByID", mock.Anything, int64(42)).Return(o, nil)

		changed, err := service.EnforceExpiration(context.Background(), 42)

		require.NoError(t, err)
		assert.False(t, changed)
		m.orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("future_deadline_is_noop", func(t *testing.T) {
		service, m := newTestService()
		o := awaitingOrder(42, buyer, time.Now().Add(time.Hour))

		m.orderRepo.On("GetByID", mock.Anything, int64(42)).Return(o, nil)

		changed, err := service.EnforceExpiration(context.Background(), 42)

		require.NoError(t, err)
		assert.False(t, changed)
		m.orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("lost_race_releases_nothing", func(t *testing.T) {
		service, m := newTestService()
		o := awaitingOrder(42, buyer, time.Now().Add(-time.Hour))

		m.orderRepo.On("GetByID", mock.Anything, int64(42)).Return(o, nil)
		// заказ оплатили между выборкой и переводом статуса
		m.orderRepo.On("UpdateStatus", mock.Anything, int64(42), domain.OrderStatusAwaitingPayment, domain.OrderStatusExpired).
			Return(false, nil)

		changed, err := service.EnforceExpiration(context.Background(), 42)

		require.NoError(t, err)
		assert.False(t, changed)
		m.productRepo.AssertNotCalled(t, "RestoreStock", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_MarkPaid(t *testing.T) {
	buyer := testBuyer()

	t.Run("stores_charge_settles_ledgers_and_delivers", func(t *testing.T) {
		service, m := newTestService()
		chargeID := "tx-hash-1"
		paid := awaitingOrder(42, buyer, time.Now().Add(time.Hour))
		paid.Status = domain.OrderStatusPaid

		m.orderRepo.On("UpdateStatus", mock.Anything, int64(42), domain.OrderStatusAwaitingPayment, domain.OrderStatusPaid).
			Return(true, nil)
		m.orderRepo.On("SetChargeID", mock.Anything, int64(42), "tx-hash-1").Return(nil)
		m.timelineRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.TimelineEntry")).Return(nil)
		m.orderRepo.On("GetByID", mock.Anything, int64(42)).Return(paid, nil)

		// сверка леджеров: резервов на заказе не было
		m.loyaltyRepo.On("UpdateReservationStatus", mock.Anything, int64(42), domain.RedemptionStatusReserved, domain.RedemptionStatusApplied).
			Return(false, nil)
		m.couponRepo.On("UpdateRedemptionStatus", mock.Anything, int64(42), domain.RedemptionStatusReserved, domain.RedemptionStatusApplied).
			Return(false, nil)
		m.userRepo.On("GetByID", mock.Anything, buyer.ID).Return(buyer, nil)
		m.loyaltyRepo.On("GetOrCreateAccount", mock.Anything, buyer.ID).Return(&domain.LoyaltyAccount{ID: 7, UserID: buyer.ID}, nil)
		m.loyaltyRepo.On("AdjustBalance", mock.Anything, int64(7), mock.Anything, domain.LoyaltyTxAccrual, mock.Anything, mock.Anything).
			Return(true, nil)

		// выдача товара
		m.orderRepo.On("MarkFulfilled", mock.Anything, int64(42)).Return(true, nil)
		m.productRepo.On("GetByID", mock.Anything, int64(10)).Return(testProduct(10), nil)
		m.tgClient.On("SendMessage", mock.Anything, buyer.TelegramChatID, mock.AnythingOfType("string")).Return(nil)

		changed, err := service.MarkPaid(context.Background(), 42, &chargeID)

		require.NoError(t, err)
		assert.True(t, changed)
		m.orderRepo.AssertCalled(t, "SetChargeID", mock.Anything, int64(42), "tx-hash-1")
		m.orderRepo.AssertCalled(t, "MarkFulfilled", mock.Anything, int64(42))
		m.tgClient.AssertNumberOfCalls(t, "SendMessage", 1)
	})

	t.Run("already_paid_is_noop", func(t *testing.T) {
		service, m := newTestService()
		chargeID := "tx-hash-1"

		m.orderRepo.On("UpdateStatus", mock.Anything, int64(42), domain.OrderStatusAwaitingPayment, domain.OrderStatusPaid).
			Return(false, nil)

		changed, err := service.MarkPaid(context.Background(), 42, &chargeID)

		require.NoError(t, err)
		assert.False(t, changed)
		m.orderRepo.AssertNotCalled(t, "SetChargeID", mock.Anything, mock.Anything, mock.Anything)
		m.orderRepo.AssertNotCalled(t, "MarkFulfilled", mock.Anything, mock.Anything)
	})

	t.Run("paid_event_reaches_kafka_when_producer_configured", func(t *testing.T) {
		service, m := newTestService()
		producer := new(mocks.MockKafkaProducer)
		service.KafkaProducer = producer

		paid := awaitingOrder(42, buyer, time.Now().Add(time.Hour))
		paid.Status = domain.OrderStatusPaid

		m.orderRepo.On("UpdateStatus", mock.Anything, int64(42), domain.OrderStatusAwaitingPayment, domain.OrderStatusPaid).
			Return(true, nil)
		m.timelineRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.TimelineEntry")).Return(nil)
		m.orderRepo.On("GetByID", mock.Anything, int64(42)).Return(paid, nil)
		m.loyaltyRepo.On("UpdateReservationStatus", mock.Anything, int64(42), domain.RedemptionStatusReserved, domain.RedemptionStatusApplied).
			Return(false, nil)
		m.couponRepo.On("UpdateRedemptionStatus", mock.Anything, int64(42), domain.RedemptionStatusReserved, domain.RedemptionStatusApplied).
			Return(false, nil)
		m.userRepo.On("GetByID", mock.Anything, buyer.ID).Return(buyer, nil)
		m.loyaltyRepo.On("GetOrCreateAccount", mock.Anything, buyer.ID).Return(&domain.LoyaltyAccount{ID: 7, UserID: buyer.ID}, nil)
		m.loyaltyRepo.On("AdjustBalance", mock.Anything, int64(7), mock.Anything, domain.LoyaltyTxAccrual, mock.Anything, mock.Anything).
			Return(true, nil)
		m.orderRepo.On("MarkFulfilled", mock.Anything, int64(42)).Return(true, nil)
		m.productRepo.On("GetByID", mock.Anything, int64(10)).Return(testProduct(10), nil)
		m.tgClient.On("SendMessage", mock.Anything, buyer.TelegramChatID, mock.AnythingOfType("string")).Return(nil)
		producer.On("SendOrderEvent", mock.Anything, paid, "order.paid").Return(nil)

		changed, err := service.MarkPaid(context.Background(), 42, nil)

		require.NoError(t, err)
		assert.True(t, changed)
		producer.AssertExpectations(t)
	})
}

func TestService_CancelOrder(t *testing.T) {
	buyer := testBuyer()

	t.Run("awaiting_order_is_cancelled_with_stock_restore", func(t *testing.T) {
		service, m := newTestService()
		o := awaitingOrder(42, buyer, time.Now().Add(time.Hour))

		m.orderRepo.On("GetByID", mock.Anything, int64(42)).Return(o, nil)
		m.orderRepo.On("UpdateStatus", mock.Anything, int64(42), domain.OrderStatusAwaitingPayment, domain.OrderStatusCancelled).
			Return(true, nil)
		m.timelineRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.TimelineEntry")).Return(nil)
		expectEmptyReservationRelease(m, 42)
		m.productRepo.On("RestoreStock", mock.Anything, int64(10), 1).Return(nil)

		changed, err := service.CancelOrder(context.Background(), 42, "отменён пользователем")

		require.NoError(t, err)
		assert.True(t, changed)
		// неоплаченный заказ не трогает реферальные награды
		m.referralRepo.AssertNotCalled(t, "GetRewardByOrderID", mock.Anything, mock.Anything)
	})

	t.Run("paid_fulfilled_order_keeps_stock_and_revokes_reward", func(t *testing.T) {
		service, m := newTestService()
		fulfilledAt := time.Now().Add(-time.Minute)
		o := awaitingOrder(42, buyer, time.Now().Add(time.Hour))
		o.Status = domain.OrderStatusPaid
		o.FulfilledAt = &fulfilledAt

		m.orderRepo.On("GetByID", mock.Anything, int64(42)).Return(o, nil)
		m.orderRepo.On("UpdateStatus", mock.Anything, int64(42), domain.OrderStatusPaid, domain.OrderStatusCancelled).
			Return(true, nil)
		m.timelineRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.TimelineEntry")).Return(nil)
		expectEmptyReservationRelease(m, 42)
		m.referralRepo.On("GetRewardByOrderID", mock.Anything, int64(42)).Return(nil, sql.ErrNoRows)

		changed, err := service.CancelOrder(context.Background(), 42, "возврат платежа у провайдера")

		require.NoError(t, err)
		assert.True(t, changed)
		// выданный товар не возвращается на остаток
		m.productRepo.AssertNotCalled(t, "RestoreStock", mock.Anything, mock.Anything, mock.Anything)
		m.referralRepo.AssertExpectations(t)
	})

	t.Run("expired_order_cannot_be_cancelled", func(t *testing.T) {
		service, m := newTestService()
		o := awaitingOrder(42, buyer, time.Now().Add(-time.Hour))
		o.Status = domain.OrderStatusExpired

		m.orderRepo.On("GetByID", mock.Anything, int64(42)).Return(o, nil)

		changed, err := service.CancelOrder(context.Background(), 42, "n/a")

		require.NoError(t, err)
		assert.False(t, changed)
		m.orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
