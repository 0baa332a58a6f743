package shop

import (
	"log/slog"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/ports/cache"
	"github.com/admin/tg-bots/shop-bot/internal/ports/repository"
	"github.com/admin/tg-bots/shop-bot/internal/ports/storage"
	"github.com/admin/tg-bots/shop-bot/internal/ports/telegram"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/coupon"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/loyalty"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/order"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/payment"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/referral"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/settings"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/support"
)

// размер страницы каталога
const catalogPageSize = 6

// Service бизнес-логика бота магазина: команды, колбэки и диалоги
type Service struct {
	UserRepo    repository.IUserRepo
	ProductRepo repository.IProductRepo
	CartRepo    repository.ICartRepo

	OrderService    *order.Service
	PaymentService  *payment.Service
	CouponService   *coupon.Service
	LoyaltyService  *loyalty.Service
	ReferralService *referral.Service
	SupportService  *support.Service
	SettingsService *settings.Service

	DraftCache     cache.IDraftCache
	S3Client       storage.IS3Client // может быть nil, тогда карточки без фото
	TelegramClient telegram.IClient

	AdminIDs    []int64 // telegram user id админов из конфига
	BotUsername string  // для реферальных ссылок t.me/<bot>?start=ref_<code>
	Log         *slog.Logger
}

// New создаёт новый сервис бизнес-логики магазина
func New(
	userRepo repository.IUserRepo,
	productRepo repository.IProductRepo,
	cartRepo repository.ICartRepo,
	orderService *order.Service,
	paymentService *payment.Service,
	couponService *coupon.Service,
	loyaltyService *loyalty.Service,
	referralService *referral.Service,
	supportService *support.Service,
	settingsService *settings.Service,
	draftCache cache.IDraftCache,
	s3Client storage.IS3Client,
	telegramClient telegram.IClient,
	adminIDs []int64,
	botUsername string,
	log *slog.Logger,
) *Service {
	return &Service{
		UserRepo:        userRepo,
		ProductRepo:     productRepo,
		CartRepo:        cartRepo,
		OrderService:    orderService,
		PaymentService:  paymentService,
		CouponService:   couponService,
		LoyaltyService:  loyaltyService,
		ReferralService: referralService,
		SupportService:  supportService,
		SettingsService: settingsService,
		DraftCache:      draftCache,
		S3Client:        s3Client,
		TelegramClient:  telegramClient,
		AdminIDs:        adminIDs,
		BotUsername:     botUsername,
		Log:             log,
	}
}

// isAdmin проверяет, входит ли пользователь в список админов из конфига
func (s *Service) isAdmin(user *domain.User) bool {
	for _, id := range s.AdminIDs {
		if id == user.TelegramUserID {
			return true
		}
	}
	return false
}
