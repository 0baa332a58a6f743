package order

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestService_EnsureFulfillment(t *testing.T) {
	buyer := testBuyer()

	t.Run("delivers_exactly_once", func(t *testing.T) {
		service, m := newTestService()
		o := awaitingOrder(42, buyer, time.Now().Add(time.Hour))
		o.Status = domain.OrderStatusPaid

		// первый вызов ставит отметку о выдаче, второй упирается в guard
		m.orderRepo.On("MarkFulfilled", mock.Anything, int64(42)).Return(true, nil).Once()
		m.orderRepo.On("MarkFulfilled", mock.Anything, int64(42)).Return(false, nil).Once()
		m.productRepo.On("GetByID", mock.Anything, int64(10)).Return(testProduct(10), nil)
		m.userRepo.On("GetByID", mock.Anything, buyer.ID).Return(buyer, nil)
		m.tgClient.On("SendMessage", mock.Anything, buyer.TelegramChatID, mock.AnythingOfType("string")).Return(nil)
		m.timelineRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.TimelineEntry")).Return(nil)

		delivered, err := service.EnsureFulfillment(context.Background(), o)
		require.NoError(t, err)
		assert.True(t, delivered)

		again, err := service.EnsureFulfillment(context.Background(), o)
		require.NoError(t, err)
		assert.False(t, again)

		m.tgClient.AssertNumberOfCalls(t, "SendMessage", 1)
	})

	t.Run("digital_product_is_sent_as_document", func(t *testing.T) {
		service, m := newTestService()
		o := awaitingOrder(42, buyer, time.Now().Add(time.Hour))
		o.Status = domain.OrderStatusPaid
		contentKey := "products/guide.pdf"
		product := testProduct(10)
		product.ContentKey = &contentKey
		content := []byte("%PDF-1.7")

		m.orderRepo.On("MarkFulfilled", mock.Anything, int64(42)).Return(true, nil)
		m.productRepo.On("GetByID", mock.Anything, int64(10)).Return(product, nil)
		m.userRepo.On("GetByID", mock.Anything, buyer.ID).Return(buyer, nil)
		m.s3Client.On("FileSize", mock.Anything, "products/guide.pdf").Return(int64(len(content)), nil)
		m.s3Client.On("GetFile", mock.Anything, "products/guide.pdf").Return(content, nil)
		m.tgClient.On("SendDocument", mock.Anything, buyer.TelegramChatID, "guide.pdf", content, mock.AnythingOfType("string")).
			Return(nil)
		m.timelineRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.TimelineEntry")).Return(nil)

		delivered, err := service.EnsureFulfillment(context.Background(), o)

		require.NoError(t, err)
		assert.True(t, delivered)
		m.s3Client.AssertExpectations(t)
		m.tgClient.AssertExpectations(t)
	})

	t.Run("oversized_content_is_sent_as_link", func(t *testing.T) {
		service, m := newTestService()
		o := awaitingOrder(42, buyer, time.Now().Add(time.Hour))
		o.Status = domain.OrderStatusPaid
		contentKey := "products/archive.zip"
		product := testProduct(10)
		product.ContentKey = &contentKey

		m.orderRepo.On("MarkFulfilled", mock.Anything, int64(42)).Return(true, nil)
		m.productRepo.On("GetByID", mock.Anything, int64(10)).Return(product, nil)
		m.userRepo.On("GetByID", mock.Anything, buyer.ID).Return(buyer, nil)
		m.s3Client.On("FileSize", mock.Anything, "products/archive.zip").Return(int64(60<<20), nil)
		m.s3Client.On("GetPresignedURL", mock.Anything, "products/archive.zip", contentLinkTTL).
			Return("https://s3.example.com/products/archive.zip?sig=abc", nil)
		m.tgClient.On("SendMessage", mock.Anything, buyer.TelegramChatID, mock.MatchedBy(func(text string) bool {
			return strings.Contains(text, "https://s3.example.com/products/archive.zip")
		})).Return(nil)
		m.timelineRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.TimelineEntry")).Return(nil)

		delivered, err := service.EnsureFulfillment(context.Background(), o)

		require.NoError(t, err)
		assert.True(t, delivered)
		m.s3Client.AssertNotCalled(t, "GetFile", mock.Anything, mock.Anything)
		m.tgClient.AssertNotCalled(t, "SendDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("content_without_storage_keeps_mark_and_reports_error", func(t *testing.T) {
		service, m := newTestService()
		service.S3Client = nil
		o := awaitingOrder(42, buyer, time.Now().Add(time.Hour))
		o.Status = domain.OrderStatusPaid
		contentKey := "products/guide.pdf"
		product := testProduct(10)
		product.ContentKey = &contentKey

		m.orderRepo.On("MarkFulfilled", mock.Anything, int64(42)).Return(true, nil)
		m.productRepo.On("GetByID", mock.Anything, int64(10)).Return(product, nil)
		m.userRepo.On("GetByID", mock.Anything, buyer.ID).Return(buyer, nil)
		m.alerter.On("SendAlert", mock.Anything, mock.AnythingOfType("string")).Return(nil)

		delivered, err := service.EnsureFulfillment(context.Background(), o)

		// отметка уже стоит, чтобы сломанная доставка не дублировала товар
		assert.True(t, delivered)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage is not configured")
	})

	t.Run("delivery_failure_alerts_admins", func(t *testing.T) {
		service, m := newTestService()
		o := awaitingOrder(42, buyer, time.Now().Add(time.Hour))
		o.Status = domain.OrderStatusPaid

		m.orderRepo.On("MarkFulfilled", mock.Anything, int64(42)).Return(true, nil)
		m.productRepo.On("GetByID", mock.Anything, int64(10)).Return(testProduct(10), nil)
		m.userRepo.On("GetByID", mock.Anything, buyer.ID).Return(buyer, nil)
		m.tgClient.On("SendMessage", mock.Anything, buyer.TelegramChatID, mock.AnythingOfType("string")).
			Return(errors.New("chat not found"))
		m.alerter.On("SendAlert", mock.Anything, mock.MatchedBy(func(msg string) bool {
			return strings.Contains(msg, "Delivery Failed")
		})).Return(nil)

		delivered, err := service.EnsureFulfillment(context.Background(), o)

		assert.True(t, delivered)
		require.Error(t, err)
		m.alerter.AssertExpectations(t)
	})
}
