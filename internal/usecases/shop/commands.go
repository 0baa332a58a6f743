package shop

import (
	"context"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/shop/texts"
)

func (s *Service) HandleCommand(ctx context.Context, user *domain.User, command string, args string, updateID int64) error {
	switch command {
	case "start":
		return s.HandleStart(ctx, user)
	case "help":
		return s.HandleHelp(ctx, user)
	case "catalog":
		return s.HandleCatalog(ctx, user)
	case "cart":
		return s.HandleCart(ctx, user)
	case "orders":
		return s.HandleOrders(ctx, user)
	case "balance":
		return s.HandleBalance(ctx, user)
	case "coupon":
		return s.HandleCoupon(ctx, user, args)
	case "ref":
		return s.HandleReferral(ctx, user)
	case "support":
		return s.HandleSupport(ctx, user)
	case "cancel":
		return s.HandleCancel(ctx, user)
	case "admin", "stock", "orders_admin", "coupon_new", "coupons", "coupon_off", "points", "tickets", "reply", "broadcast", "settings":
		if !s.isAdmin(user) {
			return s.sendMessage(ctx, user.TelegramChatID, texts.AdminOnly)
		}
		return s.handleAdminCommand(ctx, user, command, args)
	default:
		return s.sendMessage(ctx, user.TelegramChatID, texts.FormatUnknownCommand(command))
	}
}

// HandleStart обрабатывает команду /start; реферальный payload уже
// отработан в GetOrCreateUser
func (s *Service) HandleStart(ctx context.Context, user *domain.User) error {
	// LastSeenAt появляется со второго визита
	if user.LastSeenAt == nil {
		return s.sendMessage(ctx, user.TelegramChatID, texts.FormatWelcome(user.FirstName))
	}
	return s.sendMessage(ctx, user.TelegramChatID, texts.FormatWelcomeBack(user.FirstName))
}

// HandleHelp отвечает справкой по командам
func (s *Service) HandleHelp(ctx context.Context, user *domain.User) error {
	return s.sendMessage(ctx, user.TelegramChatID, texts.HelpCommand)
}

// HandleCancel сбрасывает незавершённый диалог (оформление, поддержка, ввод кода)
func (s *Service) HandleCancel(ctx context.Context, user *domain.User) error {
	if user.PendingAction == nil {
		return s.sendMessage(ctx, user.TelegramChatID, texts.NothingToCancel)
	}

	s.clearPendingAction(ctx, user)
	s.DraftCache.Delete(user.ID)
	return s.sendMessage(ctx, user.TelegramChatID, texts.ActionCancelled)
}

// setPendingAction запоминает состояние диалога в профиле пользователя
func (s *Service) setPendingAction(ctx context.Context, user *domain.User, action string) {
	user.PendingAction = &action
	if err := s.UserRepo.SetPendingAction(ctx, user.ID, &action); err != nil {
		s.Log.Warn("pending action not saved",
			"error", err,
			"user_id", user.ID,
			"action", action,
		)
	}
}

// clearPendingAction снимает состояние диалога
func (s *Service) clearPendingAction(ctx context.Context, user *domain.User) {
	user.PendingAction = nil
	if err := s.UserRepo.SetPendingAction(ctx, user.ID, nil); err != nil {
		s.Log.Warn("pending action not cleared",
			"error", err,
			"user_id", user.ID,
		)
	}
}
