package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	paymentPort "github.com/admin/tg-bots/shop-bot/internal/ports/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestService_PollPendingOrders(t *testing.T) {
	t.Run("counts_only_orders_that_changed", func(t *testing.T) {
		service, m := newPaymentService()

		expiring := pendingOrder(1, "inv-1")
		overdue := time.Now().Add(-time.Hour)
		expiring.PaymentExpiresAt = &overdue
		waiting := pendingOrder(2, "inv-2")
		broken := pendingOrder(3, "inv-3")

		m.orderRepo.On("ListAwaitingPayment", mock.Anything, 3).
			Return([]*domain.Order{expiring, waiting, broken}, nil)

		// первый заказ истёк у провайдера и переводится в expired
		m.provider.On("GetInvoiceStatus", mock.Anything, "inv-1").Return(&paymentPort.InvoiceStatus{
			TrackID: "inv-1",
			Status:  "expired",
		}, nil)
		m.orderRepo.On("GetByID", mock.Anything, int64(1)).Return(expiring, nil)
		m.orderRepo.On("UpdateStatus", mock.Anything, int64(1), domain.OrderStatusAwaitingPayment, domain.OrderStatusExpired).
			Return(true, nil)
		m.timelineRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.TimelineEntry")).Return(nil)
		expectReleaseWithoutReservations(m, 1)
		m.productRepo.On("RestoreStock", mock.Anything, int64(10), 1).Return(nil)

		// второй всё ещё ждёт оплату
		m.provider.On("GetInvoiceStatus", mock.Anything, "inv-2").Return(&paymentPort.InvoiceStatus{
			TrackID: "inv-2",
			Status:  "waiting",
		}, nil)

		// по третьему провайдер недоступен, ошибка не прерывает проход
		m.provider.On("GetInvoiceStatus", mock.Anything, "inv-3").Return(nil, errors.New("gateway timeout"))

		updated, err := service.PollPendingOrders(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, updated)
		m.provider.AssertNumberOfCalls(t, "GetInvoiceStatus", 3)
	})

	t.Run("empty_batch_is_noop", func(t *testing.T) {
		service, m := newPaymentService()

		m.orderRepo.On("ListAwaitingPayment", mock.Anything, 3).Return([]*domain.Order{}, nil)

		updated, err := service.PollPendingOrders(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 0, updated)
		m.provider.AssertNotCalled(t, "GetInvoiceStatus", mock.Anything, mock.Anything)
	})

	t.Run("list_failure_bubbles_up", func(t *testing.T) {
		service, m := newPaymentService()

		m.orderRepo.On("ListAwaitingPayment", mock.Anything, 3).Return(nil, errors.New("connection refused"))

		updated, err := service.PollPendingOrders(context.Background())

		require.Error(t, err)
		assert.Equal(t, 0, updated)
	})

	t.Run("zero_batch_size_falls_back_to_default", func(t *testing.T) {
		service, m := newPaymentService()
		service.PollBatchSize = 0

		m.orderRepo.On("ListAwaitingPayment", mock.Anything, defaultPollBatchSize).
			Return([]*domain.Order{}, nil)

		_, err := service.PollPendingOrders(context.Background())

		require.NoError(t, err)
		m.orderRepo.AssertExpectations(t)
	})
}
