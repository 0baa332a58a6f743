package shop

import (
	"context"
	"strings"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/shop/texts"
)

// HandleText обрабатывает текстовые сообщения; смысл текста зависит от
// текущего состояния диалога в user.pending_action
func (s *Service) HandleText(ctx context.Context, user *domain.User, text string, updateID int64) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if user.PendingAction == nil {
		return s.sendMessage(ctx, user.TelegramChatID, texts.HelpCommand)
	}

	switch *user.PendingAction {
	case actionCheckoutCoupon:
		return s.handleCouponInput(ctx, user, text)
	case actionCheckoutPoints:
		return s.handlePointsInput(ctx, user, text)
	case actionCheckoutAnswer:
		return s.handleAnswerInput(ctx, user, text)
	case actionSupportDialog:
		return s.handleSupportMessage(ctx, user, text)
	default:
		s.Log.Warn("unknown pending action, clearing",
			"user_id", user.ID,
			"action", *user.PendingAction,
		)
		s.clearPendingAction(ctx, user)
		return s.sendMessage(ctx, user.TelegramChatID, texts.HelpCommand)
	}
}
