package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"log/slog"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/ports/cache"
	paymentPort "github.com/admin/tg-bots/shop-bot/internal/ports/payment"
	"github.com/admin/tg-bots/shop-bot/internal/ports/repository"
	"github.com/admin/tg-bots/shop-bot/internal/ports/service"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/order"
)

const (
	currenciesCacheKey = "cryptopay:currencies"
	currenciesCacheTTL = time.Hour
)

// Service платёжный сценарий: выставление крипто-счетов и сверка их статуса
// с локальным статусом заказа
type Service struct {
	PaymentProvider paymentPort.IPaymentProvider
	OrderService    *order.Service
	OrderRepo       repository.IOrderRepo
	Cache           cache.Cache             // nil если Redis не настроен
	AlerterService  service.IAlerterService // nil если алерты не настроены
	CallbackURL     string                  // публичный URL для колбэков провайдера, может быть пустым
	PollBatchSize   int                     // сколько заказов сверять за один проход поллера
	Log             *slog.Logger
}

// New создаёт платёжный сервис
func New(
	paymentProvider paymentPort.IPaymentProvider,
	orderService *order.Service,
	orderRepo repository.IOrderRepo,
	cacheClient cache.Cache,
	alerterService service.IAlerterService,
	callbackURL string,
	pollBatchSize int,
	log *slog.Logger,
) *Service {
	return &Service{
		PaymentProvider: paymentProvider,
		OrderService:    orderService,
		OrderRepo:       orderRepo,
		Cache:           cacheClient,
		AlerterService:  alerterService,
		CallbackURL:     callbackURL,
		PollBatchSize:   pollBatchSize,
		Log:             log,
	}
}

// CreateInvoiceForOrder выставляет счёт у провайдера и сохраняет track_id,
// ссылку на оплату и метаданные провайдера на заказе
func (s *Service) CreateInvoiceForOrder(ctx context.Context, o *domain.Order) (*domain.Order, error) {
	if o.Status != domain.OrderStatusAwaitingPayment {
		return nil, domain.BusinessErrorf("order %d is not awaiting payment", o.ID)
	}

	// срок жизни счёта совпадает со сроком оплаты заказа
	lifetime := 1
	if o.PaymentExpiresAt != nil {
		if minutes := int(time.Until(*o.PaymentExpiresAt).Minutes()); minutes > lifetime {
			lifetime = minutes
		}
	}

	invoice, err := s.PaymentProvider.CreateInvoice(ctx, paymentPort.CreateInvoiceRequest{
		OrderPublicID:   o.PublicID,
		Amount:          o.TotalAmount,
		Currency:        o.Currency,
		Description:     fmt.Sprintf("Заказ №%d", o.ID),
		LifetimeMinutes: lifetime,
		CallbackURL:     s.CallbackURL,
	})
	if err != nil {
		s.Log.Error("invoice creation failed",
			"order_id", o.ID,
			"public_id", o.PublicID,
			"error", err,
		)
		if s.AlerterService != nil {
			msg := fmt.Sprintf("⚠️ Провайдер не выставил счёт\n\nЗаказ: %s\nСумма: %s %s\nОшибка: %s",
				o.PublicID, o.TotalAmount, o.Currency, err.Error())
			_ = s.AlerterService.SendAlert(ctx, msg)
		}
		return nil, fmt.Errorf("failed to create invoice at provider: %w", err)
	}

	attrs := o.ExtraAttrs
	if attrs == nil {
		attrs = domain.ExtraAttrs{}
	}
	attrs["invoice"] = map[string]interface{}{
		"track_id":    invoice.TrackID,
		"payment_url": invoice.PayLink,
	}

	if err := s.OrderRepo.SetInvoice(ctx, o.ID, invoice.TrackID, invoice.PayLink, attrs); err != nil {
		return nil, fmt.Errorf("failed to store invoice: %w", err)
	}

	// провайдер может вернуть собственный срок счёта, он авторитетнее локального
	if invoice.ExpiredAt != nil {
		if err := s.OrderRepo.SetPaymentExpiresAt(ctx, o.ID, *invoice.ExpiredAt); err != nil {
			s.Log.Warn("failed to align payment deadline with provider", "order_id", o.ID, "error", err)
		}
	}

	s.Log.Info("invoice created",
		"order_id", o.ID,
		"track_id", invoice.TrackID,
		"amount", o.TotalAmount,
		"currency", o.Currency,
	)

	return s.OrderRepo.GetByID(ctx, o.ID)
}

// RefreshOrderStatus сверяет статус счёта у провайдера с локальным статусом заказа.
// Маппинг фиксированный: paid/manual_accept -> paid, expired -> expired,
// refunded/refunding -> cancelled, остальные статусы заказ не меняют.
// Возвращает true, если локальный статус изменился
func (s *Service) RefreshOrderStatus(ctx context.Context, o *domain.Order) (bool, error) {
	if o.TrackID == nil || *o.TrackID == "" {
		return false, nil
	}

	status, err := s.PaymentProvider.GetInvoiceStatus(ctx, *o.TrackID)
	if err != nil {
		return false, fmt.Errorf("failed to get invoice status: %w", err)
	}

	s.Log.Debug("invoice status fetched",
		"order_id", o.ID,
		"track_id", *o.TrackID,
		"vendor_status", status.Status,
	)

	switch status.Status {
	case "paid", "manual_accept":
		var chargeID *string
		if len(status.Transactions) > 0 {
			chargeID = &status.Transactions[0].Hash
		}
		return s.OrderService.MarkPaid(ctx, o.ID, chargeID)

	case "expired":
		return s.OrderService.EnforceExpiration(ctx, o.ID)

	case "refunded", "refunding":
		return s.OrderService.CancelOrder(ctx, o.ID, "возврат платежа у провайдера")

	default:
		return false, nil
	}
}

// AcceptedCurrencies список валют провайдера с кэшированием в Redis на час.
// Без кэша каждый вызов идёт к провайдеру напрямую
func (s *Service) AcceptedCurrencies(ctx context.Context) ([]string, error) {
	if s.Cache != nil {
		if cached, err := s.Cache.Get(ctx, currenciesCacheKey); err == nil && cached != "" {
			var currencies []string
			if err := json.Unmarshal([]byte(cached), &currencies); err == nil {
				return currencies, nil
			}
			s.Log.Warn("failed to decode cached currencies", "key", currenciesCacheKey)
		}
	}

	currencies, err := s.PaymentProvider.AcceptedCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get accepted currencies: %w", err)
	}

	if s.Cache != nil {
		if encoded, err := json.Marshal(currencies); err == nil {
			if err := s.Cache.Set(ctx, currenciesCacheKey, string(encoded), currenciesCacheTTL); err != nil {
				s.Log.Warn("failed to cache currencies", "error", err)
			}
		}
	}

	return currencies, nil
}
