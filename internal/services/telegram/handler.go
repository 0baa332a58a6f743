package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
)

// HandleUpdate входная точка всех обновлений, сюда сходятся webhook и polling
func (s *Service) HandleUpdate(ctx context.Context, update *domain.Update) error {
	if update == nil {
		return errors.New("nil update")
	}

	if update.Message != nil {
		return s.HandleMessage(ctx, update.Message, update.UpdateID)
	}
	if update.CallbackQuery != nil {
		return s.HandleCallbackQuery(ctx, update.CallbackQuery, update.UpdateID)
	}

	return nil
}

// HandleMessage роутит входящее сообщение: команды и свободный текст
func (s *Service) HandleMessage(ctx context.Context, message *domain.Message, updateID int64) error {
	if message == nil {
		return errors.New("nil message")
	}

	if message.From == nil || message.From.IsBot {
		s.Log.Debug("ignoring message from bot", "update_id", updateID)
		return nil
	}

	if message.Chat != nil && !message.Chat.IsPrivate() {
		s.Log.Warn("message from non-private chat ignored",
			"update_id", updateID,
			"chat_type", message.Chat.Type,
			"chat_id", message.Chat.ID,
		)
		return nil
	}

	if message.Text == nil {
		return nil
	}

	// payload диплинка /start нужен до создания пользователя,
	// чтобы реферальная атрибуция сработала на первом же визите
	startPayload := ""
	if message.IsCommand() && ParseCommand(*message.Text) == "start" {
		startPayload = ParseArgs(*message.Text)
	}

	user, err := s.loadUser(ctx, message.From, message.Chat, startPayload, updateID)
	if err != nil {
		return err
	}

	if user.IsBlocked {
		s.Log.Debug("ignoring message from blocked user",
			"user_id", user.ID,
			"update_id", updateID,
		)
		return nil
	}

	if message.IsCommand() {
		return s.BotService.HandleCommand(ctx, user, ParseCommand(*message.Text), ParseArgs(*message.Text), updateID)
	}

	return s.BotService.HandleText(ctx, user, *message.Text, updateID)
}

// HandleCallbackQuery обрабатывает нажатие inline-кнопки
func (s *Service) HandleCallbackQuery(ctx context.Context, callback *domain.CallbackQuery, updateID int64) error {
	if callback == nil {
		return errors.New("nil callback query")
	}

	if callback.From == nil || callback.From.IsBot {
		s.Log.Debug("ignoring callback from bot", "update_id", updateID)
		return nil
	}
	if callback.Data == nil || callback.Message == nil || callback.Message.Chat == nil {
		s.Log.Warn("callback query without data or source message", "update_id", updateID)
		return nil
	}
	if !callback.Message.Chat.IsPrivate() {
		s.Log.Warn("callback from non-private chat ignored",
			"update_id", updateID,
			"chat_type", callback.Message.Chat.Type,
		)
		return nil
	}

	user, err := s.loadUser(ctx, callback.From, callback.Message.Chat, "", updateID)
	if err != nil {
		return err
	}

	if user.IsBlocked {
		s.Log.Debug("ignoring callback from blocked user",
			"user_id", user.ID,
			"update_id", updateID,
		)
		return nil
	}

	return s.BotService.HandleCallback(ctx, user, callback.ID, *callback.Data, callback.Message)
}

// loadUser достаёт или регистрирует пользователя, от которого пришло обновление
func (s *Service) loadUser(ctx context.Context, from *domain.TelegramUser, chat *domain.Chat, startPayload string, updateID int64) (*domain.User, error) {
	user, err := s.BotService.GetOrCreateUser(ctx, from, chat, startPayload)
	if err != nil {
		s.Log.Error("get or create user failed",
			"error", err,
			"telegram_user_id", from.ID,
			"update_id", updateID,
		)
		return nil, fmt.Errorf("get or create user: %w", err)
	}
	return user, nil
}

// ParseCommand имя команды без слеша и @упоминания бота
func ParseCommand(text string) string {
	text = strings.TrimPrefix(text, "/")
	text, _, _ = strings.Cut(text, " ")
	name, _, _ := strings.Cut(text, "@")
	return name
}

// ParseArgs аргументы команды, всё после первого пробела
func ParseArgs(text string) string {
	_, args, _ := strings.Cut(text, " ")
	return strings.TrimSpace(args)
}
