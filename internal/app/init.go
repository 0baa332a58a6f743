package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	server "github.com/admin/tg-bots/shop-bot/internal/adapters/primary/http"
	alerterController "github.com/admin/tg-bots/shop-bot/internal/adapters/primary/http/controllers/alerter"
	healthcheckController "github.com/admin/tg-bots/shop-bot/internal/adapters/primary/http/controllers/healthcheck"
	telegramController "github.com/admin/tg-bots/shop-bot/internal/adapters/primary/http/controllers/telegram"
	alerterAdapter "github.com/admin/tg-bots/shop-bot/internal/adapters/secondary/alerter"
	kafkaAdapter "github.com/admin/tg-bots/shop-bot/internal/adapters/secondary/kafka"
	"github.com/admin/tg-bots/shop-bot/internal/adapters/secondary/storage/inmemory"
	"github.com/admin/tg-bots/shop-bot/internal/adapters/secondary/storage/pg"
	redisAdapter "github.com/admin/tg-bots/shop-bot/internal/adapters/secondary/storage/redis"
	s3Adapter "github.com/admin/tg-bots/shop-bot/internal/adapters/secondary/storage/s3"
	tgAdapter "github.com/admin/tg-bots/shop-bot/internal/adapters/secondary/telegram"
	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/ports/cache"
	kafkaPort "github.com/admin/tg-bots/shop-bot/internal/ports/kafka"
	"github.com/admin/tg-bots/shop-bot/internal/ports/repository"
	"github.com/admin/tg-bots/shop-bot/internal/ports/service"
	"github.com/admin/tg-bots/shop-bot/internal/ports/storage"
	cartRepo "github.com/admin/tg-bots/shop-bot/internal/repository/cart"
	couponRepo "github.com/admin/tg-bots/shop-bot/internal/repository/coupon"
	loyaltyRepo "github.com/admin/tg-bots/shop-bot/internal/repository/loyalty"
	orderRepo "github.com/admin/tg-bots/shop-bot/internal/repository/order"
	productRepo "github.com/admin/tg-bots/shop-bot/internal/repository/product"
	referralRepo "github.com/admin/tg-bots/shop-bot/internal/repository/referral"
	settingsRepo "github.com/admin/tg-bots/shop-bot/internal/repository/settings"
	ticketRepo "github.com/admin/tg-bots/shop-bot/internal/repository/ticket"
	timelineRepo "github.com/admin/tg-bots/shop-bot/internal/repository/timeline"
	userRepo "github.com/admin/tg-bots/shop-bot/internal/repository/user"
	alerterService "github.com/admin/tg-bots/shop-bot/internal/services/alerter"
	jobScheduler "github.com/admin/tg-bots/shop-bot/internal/services/jobs"
	telegramService "github.com/admin/tg-bots/shop-bot/internal/services/telegram"
	couponUsecase "github.com/admin/tg-bots/shop-bot/internal/usecases/coupon"
	loyaltyUsecase "github.com/admin/tg-bots/shop-bot/internal/usecases/loyalty"
	orderUsecase "github.com/admin/tg-bots/shop-bot/internal/usecases/order"
	paymentUsecase "github.com/admin/tg-bots/shop-bot/internal/usecases/payment"
	referralUsecase "github.com/admin/tg-bots/shop-bot/internal/usecases/referral"
	settingsUsecase "github.com/admin/tg-bots/shop-bot/internal/usecases/settings"
	shopUsecase "github.com/admin/tg-bots/shop-bot/internal/usecases/shop"
	supportUsecase "github.com/admin/tg-bots/shop-bot/internal/usecases/support"
	"github.com/jmoiron/sqlx"
)

type Dependencies struct {
	DB              *sqlx.DB
	HTTPServer      *http.Server
	TelegramService *telegramService.Service
	TelegramClient  *tgAdapter.Client
	TelegramPoller  *tgAdapter.Poller
	KafkaProducer   *kafkaAdapter.Producer
	Cache           cache.Cache
	JobScheduler    *jobScheduler.Scheduler
}

// initDependencies собирает граф зависимостей: база, репозитории,
// внешние клиенты, бизнес-логика, транспорт
func (a *App) initDependencies(ctx context.Context) (*Dependencies, error) {
	db, err := a.initPostgres()
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	repos := a.initRepositories(db)

	tgClient, err := a.initTelegram(ctx)
	if err != nil {
		return nil, fmt.Errorf("init telegram: %w", err)
	}

	external := a.initExternalServices()
	kafkaProducer := a.initKafka()

	useCases, err := a.initUseCases(ctx, repos, tgClient, external, kafkaProducer)
	if err != nil {
		return nil, fmt.Errorf("init use cases: %w", err)
	}

	tgService := telegramService.New(useCases.Shop, a.log)

	httpServer := a.initHTTP(db, tgService, external.Alerter)

	poller, err := a.initTelegramMode(ctx, tgClient, tgService)
	if err != nil {
		return nil, fmt.Errorf("init telegram mode: %w", err)
	}

	scheduler := a.initJobScheduler(external.Alerter, useCases.Payment, useCases.Order)

	return &Dependencies{
		DB:              db,
		HTTPServer:      httpServer,
		TelegramService: tgService,
		TelegramClient:  tgClient,
		TelegramPoller:  poller,
		KafkaProducer:   kafkaProducer,
		Cache:           external.Cache,
		JobScheduler:    scheduler,
	}, nil
}

// repositories слой хранения, один пул на всех
type repositories struct {
	User     repository.IUserRepo
	Product  repository.IProductRepo
	Cart     repository.ICartRepo
	Order    repository.IOrderRepo
	Timeline repository.ITimelineRepo
	Coupon   repository.ICouponRepo
	Loyalty  repository.ILoyaltyRepo
	Referral repository.IReferralRepo
	Ticket   repository.ITicketRepo
	Settings repository.ISettingsRepo
}

// initRepositories поднимает репозитории поверх общего подключения
func (a *App) initRepositories(db *sqlx.DB) *repositories {
	store := pg.NewDB(db)
	return &repositories{
		User:     userRepo.New(store, a.log),
		Product:  productRepo.New(store, a.log),
		Cart:     cartRepo.New(store, a.log),
		Order:    orderRepo.New(store, a.log),
		Timeline: timelineRepo.New(store, a.log),
		Coupon:   couponRepo.New(store, a.log),
		Loyalty:  loyaltyRepo.New(store, a.log),
		Referral: referralRepo.New(store, a.log),
		Ticket:   ticketRepo.New(store, a.log),
		Settings: settingsRepo.New(store, a.log),
	}
}

// externalServices опциональные внешние клиенты; без любого из них
// магазин продолжает работать в урезанном режиме
type externalServices struct {
	Alerter  service.IAlerterService
	Cache    cache.Cache
	S3Client storage.IS3Client
}

// initExternalServices подключает алертер, Redis и S3
func (a *App) initExternalServices() *externalServices {
	services := &externalServices{}

	// алерты в служебный чат
	if a.cfg.Alerter != nil {
		alerterClient := alerterAdapter.NewClient(a.cfg.Alerter, a.log)
		services.Alerter = alerterService.New(alerterClient)
	}

	// кэш каталога и списка валют
	if a.cfg.Redis != nil {
		redisClient, err := a.cfg.Redis.NewConnection()
		if err != nil {
			a.log.Warn("redis unavailable, continuing without cache", "error", err)
		} else {
			services.Cache = redisAdapter.NewClient(redisClient)
			a.log.Info("redis cache connected")
		}
	}

	// S3 - опциональный, без него карточки товаров идут без фото,
	// а цифровые товары нельзя выдать файлом
	if a.cfg.S3 != nil {
		minioClient, err := a.cfg.S3.NewClient()
		if err != nil {
			a.log.Warn("s3 unavailable, continuing without it", "error", err)
		} else {
			services.S3Client = s3Adapter.NewClient(minioClient, a.cfg.S3.Bucket, a.log)
			a.log.Info("s3 storage connected", "bucket", a.cfg.S3.Bucket)
		}
	}

	return services
}

// initTelegram инициализирует Telegram клиент и регистрирует команды бота
func (a *App) initTelegram(ctx context.Context) (*tgAdapter.Client, error) {
	if a.cfg.Telegram == nil || a.cfg.Telegram.BotToken == "" {
		return nil, errors.New("telegram bot token is required")
	}

	client := tgAdapter.NewClient(a.cfg.Telegram.BotToken, a.log)

	botInfo, err := client.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("telegram token check failed: %w", err)
	}
	a.log.Info("telegram bot authorized", "username", botInfo.Username)

	if err := a.registerBotCommands(ctx, client); err != nil {
		a.log.Warn("bot command registration failed", "error", err)
	}

	return client, nil
}

// initKafka инициализирует Kafka producer для событий заказов
func (a *App) initKafka() *kafkaAdapter.Producer {
	if a.cfg.Kafka == nil || a.cfg.Kafka.Brokers == "" || a.cfg.Kafka.Topic == "" {
		a.log.Info("kafka is not configured, order events disabled")
		return nil
	}

	producer, err := kafkaAdapter.NewProducer(a.cfg.Kafka, a.log)
	if err != nil {
		a.log.Warn("kafka unavailable, order events disabled", "error", err)
		return nil
	}

	a.log.Info("kafka order events enabled", "topic", a.cfg.Kafka.Topic)
	return producer
}

// useCases собранная бизнес-логика приложения
type useCases struct {
	Settings *settingsUsecase.Service
	Order    *orderUsecase.Service
	Payment  *paymentUsecase.Service
	Shop     *shopUsecase.Service
}

// initUseCases собирает бизнес-логику, порядок диктуется зависимостями
func (a *App) initUseCases(
	ctx context.Context,
	repos *repositories,
	tgClient *tgAdapter.Client,
	external *externalServices,
	kafkaProducer *kafkaAdapter.Producer,
) (*useCases, error) {
	settingsService := settingsUsecase.New(repos.Settings, a.log)
	if err := settingsService.Load(ctx); err != nil {
		// на чистой базе настроек ещё нет, работаем на дефолтах
		a.log.Warn("settings load failed, using defaults", "error", err)
	}

	couponService := couponUsecase.New(repos.Coupon, a.log)
	loyaltyService := loyaltyUsecase.New(repos.Loyalty, a.log)
	referralService := referralUsecase.New(repos.Referral, repos.Loyalty, repos.User, a.log)
	supportService := supportUsecase.New(repos.Ticket, repos.User, tgClient, a.log)

	// заказам kafka producer передаётся интерфейсом, поэтому typed nil недопустим
	orderService := orderUsecase.New(
		repos.Order,
		repos.Timeline,
		repos.Product,
		repos.User,
		couponService,
		loyaltyService,
		referralService,
		settingsService,
		tgClient,
		external.S3Client,
		producerOrNil(kafkaProducer),
		external.Alerter,
		a.log,
	)

	paymentService, err := a.initPayment(orderService, repos.Order, external)
	if err != nil {
		return nil, err
	}

	shopService := shopUsecase.New(
		repos.User,
		repos.Product,
		repos.Cart,
		orderService,
		paymentService,
		couponService,
		loyaltyService,
		referralService,
		supportService,
		settingsService,
		inmemory.NewDraftCache(),
		external.S3Client,
		tgClient,
		a.cfg.Shop.AdminIDs,
		a.cfg.Shop.BotUsername,
		a.log,
	)

	return &useCases{
		Settings: settingsService,
		Order:    orderService,
		Payment:  paymentService,
		Shop:     shopService,
	}, nil
}

// initHTTP собирает сервер с контроллерами: пробы, webhook, алерт-хуки
func (a *App) initHTTP(
	db *sqlx.DB,
	tgService *telegramService.Service,
	alerterSvc service.IAlerterService,
) *http.Server {
	webhookSecret := ""
	if a.cfg.Telegram != nil {
		webhookSecret = a.cfg.Telegram.WebhookSecret
	}

	controllers := []server.Controller{
		healthcheckController.New(db, a.log),
		telegramController.New(tgService, webhookSecret, a.log),
	}

	if alerterSvc != nil {
		controllers = append(controllers, alerterController.New(alerterSvc, a.log))
	}

	return server.NewHTTPServer(a.cfg.Server, a.log, controllers...)
}

// initTelegramMode выбирает способ доставки обновлений Telegram
func (a *App) initTelegramMode(
	ctx context.Context,
	tgClient *tgAdapter.Client,
	tgService *telegramService.Service,
) (*tgAdapter.Poller, error) {
	a.log.Info("telegram update delivery",
		"use_webhook", a.cfg.Telegram.IsWebhookEnabled(),
		"webhook_url", a.cfg.Telegram.WebhookURL,
	)

	if a.cfg.Telegram.IsWebhookEnabled() {
		if err := a.setupWebhook(ctx, tgClient); err != nil {
			return nil, fmt.Errorf("setup webhook: %w", err)
		}
		return nil, nil // в webhook-режиме апдейты приходят через HTTP
	}

	a.log.Warn("polling mode enabled, intended for local development")

	handler := func(ctx context.Context, update *domain.Update) error {
		return tgService.HandleUpdate(ctx, update)
	}

	return tgAdapter.NewPoller(tgClient, a.cfg.Telegram, handler, a.log), nil
}

// initJobScheduler регистрирует фоновые джобы магазина
func (a *App) initJobScheduler(
	alerterSvc service.IAlerterService,
	paymentService *paymentUsecase.Service,
	orderService *orderUsecase.Service,
) *jobScheduler.Scheduler {
	scheduler := jobScheduler.NewScheduler(a.log, alerterSvc)

	pollInterval := time.Duration(a.cfg.Jobs.PollIntervalSeconds) * time.Second
	scheduler.Register(jobScheduler.NewPaymentPoller(paymentService, pollInterval, a.log))
	a.log.Info("payment poller job registered", "interval", pollInterval)

	expireInterval := time.Duration(a.cfg.Jobs.ExpireIntervalSeconds) * time.Second
	scheduler.Register(jobScheduler.NewOrderExpirer(orderService, expireInterval, a.log))
	a.log.Info("order expirer job registered", "interval", expireInterval)

	return scheduler
}

// setupWebhook регистрирует публичный URL в Bot API
func (a *App) setupWebhook(ctx context.Context, tgClient *tgAdapter.Client) error {
	if a.cfg.Telegram.WebhookURL == "" {
		return errors.New("webhook_url is required when use_webhook is true")
	}

	webhookURL := fmt.Sprintf("%s/webhook", a.cfg.Telegram.WebhookURL)

	if err := tgClient.SetWebhook(ctx, webhookURL, a.cfg.Telegram.WebhookSecret); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}

	a.log.Info("webhook registered", "webhook_url", webhookURL)
	return nil
}

// producerOrNil не даёт nil указателю стать непустым интерфейсом
func producerOrNil(p *kafkaAdapter.Producer) kafkaPort.IKafkaProducer {
	if p == nil {
		return nil
	}
	return p
}

// registerBotCommands выставляет меню команд бота
func (a *App) registerBotCommands(ctx context.Context, client *tgAdapter.Client) error {
	commands := []tgAdapter.BotCommand{
		{Command: "catalog", Description: "Каталог товаров"},
		{Command: "cart", Description: "Моя корзина"},
		{Command: "orders", Description: "Мои заказы"},
		{Command: "balance", Description: "Баллы и история"},
		{Command: "ref", Description: "Реферальная ссылка"},
		{Command: "coupon", Description: "Проверить промокод"},
		{Command: "support", Description: "Написать в поддержку"},
		{Command: "help", Description: "Справка"},
		{Command: "cancel", Description: "Отменить текущее действие"},
	}

	return client.SetMyCommands(ctx, commands)
}
