package mocks

import (
	"context"
	"time"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/ports/payment"
	"github.com/stretchr/testify/mock"
)

// MockTelegramClient двойник telegram.IClient
type MockTelegramClient struct {
	mock.Mock
}

func (m *MockTelegramClient) SendMessage(ctx context.Context, chatID int64, text string) error {
	args := m.Called(ctx, chatID, text)
	return args.Error(0)
}

func (m *MockTelegramClient) SendMessageWithKeyboard(ctx context.Context, chatID int64, text string, keyboard map[string]interface{}) error {
	args := m.Called(ctx, chatID, text, keyboard)
	return args.Error(0)
}

func (m *MockTelegramClient) EditMessageText(ctx context.Context, chatID int64, messageID int64, text string, keyboard map[string]interface{}) error {
	args := m.Called(ctx, chatID, messageID, text, keyboard)
	return args.Error(0)
}

func (m *MockTelegramClient) AnswerCallbackQuery(ctx context.Context, callbackID string, text string, showAlert bool) error {
	args := m.Called(ctx, callbackID, text, showAlert)
	return args.Error(0)
}

func (m *MockTelegramClient) SendDocument(ctx context.Context, chatID int64, filename string, data []byte, caption string) error {
	args := m.Called(ctx, chatID, filename, data, caption)
	return args.Error(0)
}

func (m *MockTelegramClient) UploadPhoto(ctx context.Context, chatID int64, filename string, data []byte, caption string, keyboard map[string]interface{}) (string, error) {
	args := m.Called(ctx, chatID, filename, data, caption, keyboard)
	return args.String(0), args.Error(1)
}

func (m *MockTelegramClient) SendPhotoByFileID(ctx context.Context, chatID int64, fileID string, caption string, keyboard map[string]interface{}) error {
	args := m.Called(ctx, chatID, fileID, caption, keyboard)
	return args.Error(0)
}

// MockPaymentProvider двойник payment.IPaymentProvider
type MockPaymentProvider struct {
	mock.Mock
}

func (m *MockPaymentProvider) CreateInvoice(ctx context.Context, req payment.CreateInvoiceRequest) (*payment.Invoice, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Invoice), args.Error(1)
}

func (m *MockPaymentProvider) GetInvoiceStatus(ctx context.Context, trackID string) (*payment.InvoiceStatus, error) {
	args := m.Called(ctx, trackID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.InvoiceStatus), args.Error(1)
}

func (m *MockPaymentProvider) AcceptedCurrencies(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockAlerterService двойник service.IAlerterService
type MockAlerterService struct {
	mock.Mock
}

func (m *MockAlerterService) SendAlert(ctx context.Context, message string) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

// MockKafkaProducer двойник kafka.IKafkaProducer
type MockKafkaProducer struct {
	mock.Mock
}

func (m *MockKafkaProducer) SendOrderEvent(ctx context.Context, order *domain.Order, event string) error {
	args := m.Called(ctx, order, event)
	return args.Error(0)
}

func (m *MockKafkaProducer) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockCache двойник cache.Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockS3Client двойник storage.IS3Client
type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) GetFile(ctx context.Context, path string) ([]byte, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockS3Client) FileSize(ctx context.Context, path string) (int64, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return 0, args.Error(1)
	}
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockS3Client) ListFiles(ctx context.Context, prefix string) ([]string, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockS3Client) GetPresignedURL(ctx context.Context, path string, expires time.Duration) (string, error) {
	args := m.Called(ctx, path, expires)
	return args.String(0), args.Error(1)
}
