package shop

import (
	"context"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/shop/texts"
)

// HandleSupport обрабатывает команду /support, переводит чат в режим диалога
// с поддержкой до /cancel
func (s *Service) HandleSupport(ctx context.Context, user *domain.User) error {
	s.setPendingAction(ctx, user, actionSupportDialog)
	return s.sendMessage(ctx, user.TelegramChatID, texts.SupportPrompt)
}

// handleSupportMessage текст в режиме поддержки уходит в открытый тикет
// пользователя (или открывает новый)
func (s *Service) handleSupportMessage(ctx context.Context, user *domain.User, text string) error {
	if _, err := s.SupportService.AddUserMessage(ctx, user.ID, text); err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}

	return s.sendMessage(ctx, user.TelegramChatID, texts.SupportReceived)
}
