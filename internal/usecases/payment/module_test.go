package payment

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"log/slog"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/mocks"
	paymentPort "github.com/admin/tg-bots/shop-bot/internal/ports/payment"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/coupon"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/loyalty"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/order"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/referral"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/settings"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type paymentMocks struct {
	provider     *mocks.MockPaymentProvider
	orderRepo    *mocks.MockOrderRepo
	timelineRepo *mocks.MockTimelineRepo
	productRepo  *mocks.MockProductRepo
	userRepo     *mocks.MockUserRepo
	couponRepo   *mocks.MockCouponRepo
	loyaltyRepo  *mocks.MockLoyaltyRepo
	referralRepo *mocks.MockReferralRepo
	tgClient     *mocks.MockTelegramClient
}

// newPaymentService собирает платёжный сервис поверх двойников: настоящий
// order.Service с настройками по умолчанию, без кэша, алертов и kafka
func newPaymentService() (*Service, *paymentMocks) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := &paymentMocks{
		provider:     new(mocks.MockPaymentProvider),
		orderRepo:    new(mocks.MockOrderRepo),
		timelineRepo: new(mocks.MockTimelineRepo),
		productRepo:  new(mocks.MockProductRepo),
		userRepo:     new(mocks.MockUserRepo),
		couponRepo:   new(mocks.MockCouponRepo),
		loyaltyRepo:  new(mocks.MockLoyaltyRepo),
		referralRepo: new(mocks.MockReferralRepo),
		tgClient:     new(mocks.MockTelegramClient),
	}

	orderService := order.New(
		m.orderRepo,
		m.timelineRepo,
		m.productRepo,
		m.userRepo,
		coupon.New(m.couponRepo, log),
		loyalty.New(m.loyaltyRepo, log),
		referral.New(m.referralRepo, m.loyaltyRepo, m.userRepo, log),
		settings.New(new(mocks.MockSettingsRepo), log),
		m.tgClient,
		nil,
		nil,
		nil,
		log,
	)

	service := New(m.provider, orderService, m.orderRepo, nil, nil, "", 3, log)
	return service, m
}

func pendingOrder(id int64, trackID string) *domain.Order {
	deadline := time.Now().Add(30 * time.Minute)
	o := &domain.Order{
		ID:               id,
		PublicID:         uuid.New(),
		UserID:           uuid.New(),
		ProductID:        10,
		Quantity:         1,
		Status:           domain.OrderStatusAwaitingPayment,
		TotalAmount:      decimal.NewFromInt(50),
		Currency:         "USDT",
		PaymentExpiresAt: &deadline,
	}
	if trackID != "" {
		o.TrackID = &trackID
	}
	return o
}

// освобождение резервов для заказа без купона и баллов
func expectReleaseWithoutReservations(m *paymentMocks, orderID int64) {
	m.loyaltyRepo.On("GetReservationByOrderID", mock.Anything, orderID).Return(nil, sql.ErrNoRows)
	m.couponRepo.On("GetRedemptionByOrderID", mock.Anything, orderID).Return(nil, sql.ErrNoRows)
}

func TestService_RefreshOrderStatus(t *testing.T) {
	t.Run("order_without_track_id_skips_provider", func(t *testing.T) {
		service, m := newPaymentService()

		changed, err := service.RefreshOrderStatus(context.Background(), pendingOrder(42, ""))

		require.NoError(t, err)
		assert.False(t, changed)
		m.provider.AssertNotCalled(t, "GetInvoiceStatus", mock.Anything, mock.Anything)
	})

	t.Run("vendor_paid_flips_order_and_stores_first_tx_hash", func(t *testing.T) {
		service, m := newPaymentService()
		o := pendingOrder(42, "inv-1")
		paid := pendingOrder(42, "inv-1")
		paid.Status = domain.OrderStatusPaid
		paid.UserID = o.UserID
		buyer := &domain.User{ID: o.UserID, TelegramChatID: 100500, FirstName: "Ivan"}

		m.provider.On("GetInvoiceStatus", mock.Anything, "inv-1").Return(&paymentPort.InvoiceStatus{
			TrackID: "inv-1",
			Status:  "paid",
			Transactions: []paymentPort.InvoiceTransaction{
				{Hash: "tx-hash-1", Amount: decimal.NewFromInt(50)},
				{Hash: "tx-hash-2", Amount: decimal.NewFromInt(1)},
			},
		}, nil)
		m.orderRepo.On("UpdateStatus", mock.Anything, int64(42), domain.OrderStatusAwaitingPayment, domain.OrderStatusPaid).
			Return(true, nil)
		// charge id берётся из первой транзакции счёта
		m.orderRepo.On("SetChargeID", mock.Anything, int64(42), "tx-hash-1").Return(nil)
		m.timelineRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.TimelineEntry")).Return(nil)
		m.orderRepo.On("GetByID", mock.Anything, int64(42)).Return(paid, nil)
		m.loyaltyRepo.On("UpdateReservationStatus", mock.Anything, int64(42), domain.RedemptionStatusReserved, domain.RedemptionStatusApplied).
			Return(false, nil)
		m.couponRepo.On("UpdateRedemptionStatus", mock.Anything, int64(42), domain.RedemptionStatusReserved, domain.RedemptionStatusApplied).
			Return(false, nil)
		m.userRepo.On("GetByID", mock.Anything, o.UserID).Return(buyer, nil)
		m.loyaltyRepo.On("GetOrCreateAccount", mock.Anything, o.UserID).Return(&domain.LoyaltyAccount{ID: 7, UserID: o.UserID}, nil)
		m.loyaltyRepo.On("AdjustBalance", mock.Anything, int64(7), mock.Anything, domain.LoyaltyTxAccrual, mock.Anything, mock.Anything).
			Return(true, nil)
		m.orderRepo.On("MarkFulfilled", mock.Anything, int64(42)).Return(true, nil)
		m.productRepo.On("GetByID", mock.Anything, int64(10)).Return(&domain.Product{
			ID: 10, Name: "Стартовый набор", Price: decimal.NewFromInt(50), Currency: "USDT", Active: true,
		}, nil)
		m.tgClient.On("SendMessage", mock.Anything, buyer.TelegramChatID, mock.AnythingOfType("string")).Return(nil)

		changed, err := service.RefreshOrderStatus(context.Background(), o)

		require.NoError(t, err)
		assert.True(t, changed)
		m.orderRepo.AssertCalled(t, "SetChargeID", mock.Anything, int64(42), "tx-hash-1")
	})

	t.Run("vendor_manual_accept_behaves_like_paid", func(t *testing.T) {
		service, m := newPaymentService()
		o := pendingOrder(42, "inv-1")

		m.provider.On("GetInvoiceStatus", mock.Anything, "inv-1").Return(&paymentPort.InvoiceStatus{
			TrackID: "inv-1",
			Status:  "manual_accept",
		}, nil)
		// заказ уже перевели в paid параллельным колбэком
		m.orderRepo.On("UpdateStatus", mock.Anything, int64(42), domain.OrderStatusAwaitingPayment, domain.OrderStatusPaid).
			Return(false, nil)

		changed, err := service.RefreshOrderStatus(context.Background(), o)

		require.NoError(t, err)
		assert.False(t, changed)
		m.orderRepo.AssertNotCalled(t, "SetChargeID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("vendor_expired_enforces_expiration", func(t *testing.T) {
		service, m := newPaymentService()
		o := pendingOrder(42, "inv-1")
		overdue := time.Now().Add(-time.Hour)
		o.PaymentExpiresAt = &overdue

		m.provider.On("GetInvoiceStatus", mock.Anything, "inv-1").Return(&paymentPort.InvoiceStatus{
			TrackID: "inv-1",
			Status:  "expired",
		}, nil)
		m.orderRepo.On("GetByID", mock.Anything, int64(42)).Return(o, nil)
		m.orderRepo.On("UpdateStatus", mock.Anything, int64(42), domain.OrderStatusAwaitingPayment, domain.OrderStatusExpired).
			Return(true, nil)
		m.timelineRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.TimelineEntry")).Return(nil)
		expectReleaseWithoutReservations(m, 42)
		m.productRepo.On("RestoreStock", mock.Anything, int64(10), 1).Return(nil)

		changed, err := service.RefreshOrderStatus(context.Background(), o)

		require.NoError(t, err)
		assert.True(t, changed)
		m.productRepo.AssertExpectations(t)
	})

	t.Run("vendor_refund_cancels_paid_order", func(t *testing.T) {
		service, m := newPaymentService()
		o := pendingOrder(42, "inv-1")
		fulfilledAt := time.Now().Add(-time.Minute)
		stored := pendingOrder(42, "inv-1")
		stored.Status = domain.OrderStatusPaid
		stored.FulfilledAt = &fulfilledAt

		m.provider.On("GetInvoiceStatus", mock.Anything, "inv-1").Return(&paymentPort.InvoiceStatus{
			TrackID: "inv-1",
			Status:  "refunded",
		}, nil)
		m.orderRepo.On("GetByID", mock.Anything, int64(42)).Return(stored, nil)
		m.orderRepo.On("UpdateStatus", mock.Anything, int64(42), domain.OrderStatusPaid, domain.OrderStatusCancelled).
			Return(true, nil)
		m.timelineRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.TimelineEntry")).Return(nil)
		expectReleaseWithoutReservations(m, 42)
		m.referralRepo.On("GetRewardByOrderID", mock.Anything, int64(42)).Return(nil, sql.ErrNoRows)

		changed, err := service.RefreshOrderStatus(context.Background(), o)

		require.NoError(t, err)
		assert.True(t, changed)
		// выданный товар после возврата на остаток не возвращается
		m.productRepo.AssertNotCalled(t, "RestoreStock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown_vendor_status_is_noop", func(t *testing.T) {
		service, m := newPaymentService()
		o := pendingOrder(42, "inv-1")

		m.provider.On("GetInvoiceStatus", mock.Anything, "inv-1").Return(&paymentPort.InvoiceStatus{
			TrackID: "inv-1",
			Status:  "waiting",
		}, nil)

		changed, err := service.RefreshOrderStatus(context.Background(), o)

		require.NoError(t, err)
		assert.False(t, changed)
		m.orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("provider_error_bubbles_up", func(t *testing.T) {
		service, m := newPaymentService()
		o := pendingOrder(42, "inv-1")

		m.provider.On("GetInvoiceStatus", mock.Anything, "inv-1").Return(nil, errors.New("gateway timeout"))

		changed, err := service.RefreshOrderStatus(context.Background(), o)

		require.Error(t, err)
		assert.False(t, changed)
	})
}

func TestService_CreateInvoiceForOrder(t *testing.T) {
	t.Run("stores_track_id_and_pay_link", func(t *testing.T) {
		service, m := newPaymentService()
		o := pendingOrder(42, "")

		m.provider.On("CreateInvoice", mock.Anything, mock.MatchedBy(func(req paymentPort.CreateInvoiceRequest) bool {
			return req.OrderPublicID == o.PublicID &&
				req.Amount.Equal(decimal.NewFromInt(50)) &&
				req.Currency == "USDT" &&
				req.LifetimeMinutes > 0
		})).Return(&paymentPort.Invoice{
			TrackID: "inv-1",
			PayLink: "https://oxapay.example/pay/inv-1",
		}, nil)
		m.orderRepo.On("SetInvoice", mock.Anything, int64(42), "inv-1", "https://oxapay.example/pay/inv-1",
			mock.MatchedBy(func(attrs domain.ExtraAttrs) bool {
				_, ok := attrs["invoice"]
				return ok
			})).Return(nil)
		trackID := "inv-1"
		stored := pendingOrder(42, "")
		stored.TrackID = &trackID
		m.orderRepo.On("GetByID", mock.Anything, int64(42)).Return(stored, nil)

		result, err := service.CreateInvoiceForOrder(context.Background(), o)

		require.NoError(t, err)
		require.NotNil(t, result.TrackID)
		assert.Equal(t, "inv-1", *result.TrackID)
		// провайдер не прислал свой срок, локальный дедлайн остаётся
		m.orderRepo.AssertNotCalled(t, "SetPaymentExpiresAt", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("provider_deadline_overrides_local_one", func(t *testing.T) {
		service, m := newPaymentService()
		o := pendingOrder(42, "")
		providerDeadline := time.Now().Add(45 * time.Minute).Truncate(time.Second)

		m.provider.On("CreateInvoice", mock.Anything, mock.AnythingOfType("payment.CreateInvoiceRequest")).
			Return(&paymentPort.Invoice{
				TrackID:   "inv-1",
				PayLink:   "https://oxapay.example/pay/inv-1",
				ExpiredAt: &providerDeadline,
			}, nil)
		m.orderRepo.On("SetInvoice", mock.Anything, int64(42), "inv-1", mock.AnythingOfType("string"), mock.Anything).
			Return(nil)
		m.orderRepo.On("SetPaymentExpiresAt", mock.Anything, int64(42), providerDeadline).Return(nil)
		m.orderRepo.On("GetByID", mock.Anything, int64(42)).Return(pendingOrder(42, "inv-1"), nil)

		_, err := service.CreateInvoiceForOrder(context.Background(), o)

		require.NoError(t, err)
		m.orderRepo.AssertCalled(t, "SetPaymentExpiresAt", mock.Anything, int64(42), providerDeadline)
	})

	t.Run("provider_failure_alerts_admins", func(t *testing.T) {
		service, m := newPaymentService()
		alerter := new(mocks.MockAlerterService)
		service.AlerterService = alerter
		o := pendingOrder(42, "")

		m.provider.On("CreateInvoice", mock.Anything, mock.AnythingOfType("payment.CreateInvoiceRequest")).
			Return(nil, errors.New("merchant api key invalid"))
		alerter.On("SendAlert", mock.Anything, mock.MatchedBy(func(msg string) bool {
			return strings.Contains(msg, "Invoice Creation Failed")
		})).Return(nil)

		_, err := service.CreateInvoiceForOrder(context.Background(), o)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create invoice")
		alerter.AssertExpectations(t)
		m.orderRepo.AssertNotCalled(t, "SetInvoice", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects_order_not_awaiting_payment", func(t *testing.T) {
		service, m := newPaymentService()
		o := pendingOrder(42, "")
		o.Status = domain.OrderStatusPaid

		_, err := service.CreateInvoiceForOrder(context.Background(), o)

		require.Error(t, err)
		assert.True(t, domain.IsBusinessError(err))
		m.provider.AssertNotCalled(t, "CreateInvoice", mock.Anything, mock.Anything)
	})
}

func TestService_AcceptedCurrencies(t *testing.T) {
	t.Run("without_cache_goes_to_provider", func(t *testing.T) {
		service, m := newPaymentService()

		m.provider.On("AcceptedCurrencies", mock.Anything).Return([]string{"USDT", "BTC", "TON"}, nil)

		currencies, err := service.AcceptedCurrencies(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []string{"USDT", "BTC", "TON"}, currencies)
	})

	t.Run("cache_hit_skips_provider", func(t *testing.T) {
		service, m := newPaymentService()
		cacheClient := new(mocks.MockCache)
		service.Cache = cacheClient

		cacheClient.On("Get", mock.Anything, currenciesCacheKey).Return(`["USDT","TON"]`, nil)

		currencies, err := service.AcceptedCurrencies(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []string{"USDT", "TON"}, currencies)
		m.provider.AssertNotCalled(t, "AcceptedCurrencies", mock.Anything)
	})

	t.Run("cache_miss_stores_provider_response", func(t *testing.T) {
		service, m := newPaymentService()
		cacheClient := new(mocks.MockCache)
		service.Cache = cacheClient

		cacheClient.On("Get", mock.Anything, currenciesCacheKey).Return("", errors.New("redis: nil"))
		m.provider.On("AcceptedCurrencies", mock.Anything).Return([]string{"USDT"}, nil)
		cacheClient.On("Set", mock.Anything, currenciesCacheKey, `["USDT"]`, currenciesCacheTTL).Return(nil)

		currencies, err := service.AcceptedCurrencies(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []string{"USDT"}, currencies)
		cacheClient.AssertExpectations(t)
	})
}
