package telegram

import (
	"log/slog"

	"github.com/admin/tg-bots/shop-bot/internal/ports/service"
)

// Service роутинг обновлений Telegram в бизнес-логику магазина
type Service struct {
	BotService service.IBotService
	Log        *slog.Logger
}

func New(botService service.IBotService, log *slog.Logger) *Service {
	return &Service{
		BotService: botService,
		Log:        log,
	}
}
