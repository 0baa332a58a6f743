package order

import (
	"io"

	"log/slog"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/mocks"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/coupon"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/loyalty"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/referral"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/settings"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// serviceMocks все двойники, из которых собирается сервис заказов
type serviceMocks struct {
	orderRepo    *mocks.MockOrderRepo
	timelineRepo *mocks.MockTimelineRepo
	productRepo  *mocks.MockProductRepo
	userRepo     *mocks.MockUserRepo
	couponRepo   *mocks.MockCouponRepo
	loyaltyRepo  *mocks.MockLoyaltyRepo
	referralRepo *mocks.MockReferralRepo
	tgClient     *mocks.MockTelegramClient
	s3Client     *mocks.MockS3Client
	alerter      *mocks.MockAlerterService
}

// newTestService собирает сервис заказов на mock-ах; side-сервисы настоящие,
// kafka не сконфигурирована, настройки дефолтные
func newTestService() (*Service, *serviceMocks) {
	m := &serviceMocks{
		orderRepo:    new(mocks.MockOrderRepo),
		timelineRepo: new(mocks.MockTimelineRepo),
		productRepo:  new(mocks.MockProductRepo),
		userRepo:     new(mocks.MockUserRepo),
		couponRepo:   new(mocks.MockCouponRepo),
		loyaltyRepo:  new(mocks.MockLoyaltyRepo),
		referralRepo: new(mocks.MockReferralRepo),
		tgClient:     new(mocks.MockTelegramClient),
		s3Client:     new(mocks.MockS3Client),
		alerter:      new(mocks.MockAlerterService),
	}

	log := testLogger()
	service := New(
		m.orderRepo,
		m.timelineRepo,
		m.productRepo,
		m.userRepo,
		coupon.New(m.couponRepo, log),
		loyalty.New(m.loyaltyRepo, log),
		referral.New(m.referralRepo, m.loyaltyRepo, m.userRepo, log),
		settings.New(new(mocks.MockSettingsRepo), log),
		m.tgClient,
		m.s3Client,
		nil,
		m.alerter,
		log,
	)
	return service, m
}

func testBuyer() *domain.User {
	return &domain.User{
		ID:             uuid.New(),
		TelegramUserID: 100500,
		TelegramChatID: 100500,
		FirstName:      "Ivan",
	}
}

func testProduct(id int64) *domain.Product {
	return &domain.Product{
		ID:       id,
		Name:     "Стартовый набор",
		Price:    decimal.NewFromInt(50),
		Currency: "USDT",
		Active:   true,
	}
}
