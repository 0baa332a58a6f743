package service

import (
	"context"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
)

// IBotService интерфейс для бизнес-логики бота магазина
type IBotService interface {
	HandleCommand(ctx context.Context, user *domain.User, command string, args string, updateID int64) error
	HandleText(ctx context.Context, user *domain.User, text string, updateID int64) error
	HandleCallback(ctx context.Context, user *domain.User, callbackID string, data string, message *domain.Message) error
	GetOrCreateUser(ctx context.Context, tgUser *domain.TelegramUser, chat *domain.Chat, startPayload string) (*domain.User, error)
}
