package order

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/ports/kafka"
	"github.com/admin/tg-bots/shop-bot/internal/ports/repository"
	"github.com/admin/tg-bots/shop-bot/internal/ports/service"
	"github.com/admin/tg-bots/shop-bot/internal/ports/storage"
	"github.com/admin/tg-bots/shop-bot/internal/ports/telegram"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/coupon"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/loyalty"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/referral"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/settings"
	"github.com/google/uuid"
)

// Service жизненный цикл заказа: создание, статусные переходы, выдача товара
// и сверка side-леджеров (баллы, купоны, рефералка) при смене статуса
type Service struct {
	OrderRepo    repository.IOrderRepo
	TimelineRepo repository.ITimelineRepo
	ProductRepo  repository.IProductRepo
	UserRepo     repository.IUserRepo

	CouponService   *coupon.Service
	LoyaltyService  *loyalty.Service
	ReferralService *referral.Service
	SettingsService *settings.Service

	TelegramClient telegram.IClient
	S3Client       storage.IS3Client       // nil если хранилище не настроено
	KafkaProducer  kafka.IKafkaProducer    // nil если kafka не настроена
	AlerterService service.IAlerterService // nil если алерты не настроены
	Log            *slog.Logger
}

// New создаёт сервис заказов
func New(
	orderRepo repository.IOrderRepo,
	timelineRepo repository.ITimelineRepo,
	productRepo repository.IProductRepo,
	userRepo repository.IUserRepo,
	couponService *coupon.Service,
	loyaltyService *loyalty.Service,
	referralService *referral.Service,
	settingsService *settings.Service,
	telegramClient telegram.IClient,
	s3Client storage.IS3Client,
	kafkaProducer kafka.IKafkaProducer,
	alerterService service.IAlerterService,
	log *slog.Logger,
) *Service {
	return &Service{
		OrderRepo:       orderRepo,
		TimelineRepo:    timelineRepo,
		ProductRepo:     productRepo,
		UserRepo:        userRepo,
		CouponService:   couponService,
		LoyaltyService:  loyaltyService,
		ReferralService: referralService,
		SettingsService: settingsService,
		TelegramClient:  telegramClient,
		S3Client:        s3Client,
		KafkaProducer:   kafkaProducer,
		AlerterService:  alerterService,
		Log:             log,
	}
}

// GetByID возвращает заказ по внутреннему ID
func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	return s.OrderRepo.GetByID(ctx, id)
}

// GetByPublicID возвращает заказ по публичному UUID
func (s *Service) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*domain.Order, error) {
	return s.OrderRepo.GetByPublicID(ctx, publicID)
}

// ListUserOrders возвращает заказы пользователя, новые первыми
func (s *Service) ListUserOrders(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Order, error) {
	orders, err := s.OrderRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list user orders: %w", err)
	}
	return orders, nil
}

// ListRecentOrders последние заказы магазина для админки
func (s *Service) ListRecentOrders(ctx context.Context, limit int) ([]*domain.Order, error) {
	orders, err := s.OrderRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent orders: %w", err)
	}
	return orders, nil
}

// Timeline возвращает историю заказа для админки
func (s *Service) Timeline(ctx context.Context, orderID int64) ([]*domain.TimelineEntry, error) {
	return s.TimelineRepo.ListByOrderID(ctx, orderID)
}

// Answers возвращает ответы покупателя на вопросы товара
func (s *Service) Answers(ctx context.Context, orderID int64) ([]*domain.OrderAnswer, error) {
	return s.OrderRepo.ListAnswers(ctx, orderID)
}
