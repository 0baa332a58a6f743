package order

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestService_ExpireDueOrders(t *testing.T) {
	buyer := testBuyer()

	t.Run("expires_due_orders_and_notifies_buyers", func(t *testing.T) {
		service, m := newTestService()
		first := awaitingOrder(1, buyer, time.Now().Add(-time.Hour))
		second := awaitingOrder(2, buyer, time.Now().Add(-2*time.Hour))

		m.orderRepo.On("ListPaymentExpired", mock.Anything, mock.AnythingOfType("time.Time"), expireBatchSize).
			Return([]*domain.Order{first, second}, nil)
		m.orderRepo.On("GetByID", mock.Anything, int64(1)).Return(first, nil)
		m.orderRepo.On("GetByID", mock.Anything, int64(2)).Return(second, nil)
		m.orderRepo.On("UpdateStatus", mock.Anything, int64(1), domain.OrderStatusAwaitingPayment, domain.OrderStatusExpired).
			Return(true, nil)
		m.orderRepo.On("UpdateStatus", mock.Anything, int64(2), domain.OrderStatusAwaitingPayment, domain.OrderStatusExpired).
			Return(true, nil)
		m.timelineRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.TimelineEntry")).Return(nil)
		expectEmptyReservationRelease(m, 1)
		expectEmptyReservationRelease(m, 2)
		m.productRepo.On("RestoreStock", mock.Anything, int64(10), 1).Return(nil)
		m.userRepo.On("GetByID", mock.Anything, buyer.ID).Return(buyer, nil)
		m.tgClient.On("SendMessage", mock.Anything, buyer.TelegramChatID, mock.MatchedBy(func(msg string) bool {
			return strings.Contains(msg, "истёк")
		})).Return(nil)

		expired, err := service.ExpireDueOrders(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 2, expired)
		m.tgClient.AssertNumberOfCalls(t, "SendMessage", 2)
		m.productRepo.AssertNumberOfCalls(t, "RestoreStock", 2)
	})

	t.Run("empty_batch_is_noop", func(t *testing.T) {
		service, m := newTestService()

		m.orderRepo.On("ListPaymentExpired", mock.Anything, mock.AnythingOfType("time.Time"), expireBatchSize).
			Return([]*domain.Order{}, nil)

		expired, err := service.ExpireDueOrders(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 0, expired)
		m.orderRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("order_paid_in_flight_is_skipped", func(t *testing.T) {
		service, m := newTestService()
		o := awaitingOrder(1, buyer, time.Now().Add(-time.Hour))
		paid := awaitingOrder(1, buyer, time.Now().Add(-time.Hour))
		paid.Status = domain.OrderStatusPaid

		m.orderRepo.On("ListPaymentExpired", mock.Anything, mock.AnythingOfType("time.Time"), expireBatchSize).
			Return([]*domain.Order{o}, nil)
		// между выборкой и обработкой заказ успели оплатить
		m.orderRepo.On("GetByID", mock.Anything, int64(1)).Return(paid, nil)

		expired, err := service.ExpireDueOrders(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 0, expired)
		m.orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		m.tgClient.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
	})
}
