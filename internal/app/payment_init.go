package app

import (
	"fmt"

	cryptopayAdapter "github.com/admin/tg-bots/shop-bot/internal/adapters/secondary/cryptopay"
	"github.com/admin/tg-bots/shop-bot/internal/ports/repository"
	orderUsecase "github.com/admin/tg-bots/shop-bot/internal/usecases/order"
	paymentUsecase "github.com/admin/tg-bots/shop-bot/internal/usecases/payment"
)

// initPayment инициализирует крипто-провайдера и платёжный сценарий.
// Провайдер обязателен: без него магазину нечем принимать оплату
func (a *App) initPayment(
	orderService *orderUsecase.Service,
	orderRepo repository.IOrderRepo,
	external *externalServices,
) (*paymentUsecase.Service, error) {
	if a.cfg.Cryptopay == nil || a.cfg.Cryptopay.BaseURL == "" || a.cfg.Cryptopay.MerchantKey == "" {
		return nil, fmt.Errorf("cryptopay configuration is required: set CRYPTOPAY_BASE_URL and CRYPTOPAY_MERCHANT_KEY")
	}

	provider := cryptopayAdapter.NewClient(a.cfg.Cryptopay, a.log)

	paymentService := paymentUsecase.New(
		provider,
		orderService,
		orderRepo,
		external.Cache,   // может быть nil
		external.Alerter, // может быть nil
		a.cfg.Cryptopay.CallbackURL,
		a.cfg.Jobs.PollBatchSize,
		a.log,
	)

	a.log.Info("payment system initialized", "provider_url", a.cfg.Cryptopay.BaseURL)
	return paymentService, nil
}
