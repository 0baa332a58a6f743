package shop

import (
	"context"
	"fmt"
	"strings"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/shop/texts"
)

// сколько операций показываем в истории баллов
const balanceHistoryLimit = 5

// HandleBalance обрабатывает команду /balance
func (s *Service) HandleBalance(ctx context.Context, user *domain.User) error {
	balance, err := s.LoyaltyService.Balance(ctx, user.ID)
	if err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}

	history, err := s.LoyaltyService.History(ctx, user.ID, balanceHistoryLimit)
	if err != nil {
		s.Log.Warn("failed to load loyalty history",
			"error", err,
			"user_id", user.ID,
		)
		history = nil
	}

	return s.sendMessage(ctx, user.TelegramChatID, texts.FormatBalance(balance, history))
}

// HandleReferral обрабатывает команду /ref: личная ссылка и статистика
func (s *Service) HandleReferral(ctx context.Context, user *domain.User) error {
	link, err := s.ReferralService.MyLink(ctx, user.ID)
	if err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}

	url := fmt.Sprintf("https://t.me/%s?start=%s%s", s.BotUsername, referralPayloadPrefix, link.Code)
	reward := s.SettingsService.Current().ReferralRewardAmount
	return s.sendMessage(ctx, user.TelegramChatID, texts.FormatReferralInfo(url, link, reward))
}

// HandleCoupon обрабатывает команду /coupon: проверка кода без оформления
func (s *Service) HandleCoupon(ctx context.Context, user *domain.User, args string) error {
	code := strings.TrimSpace(args)
	if code == "" {
		return s.sendMessage(ctx, user.TelegramChatID, texts.CouponUsage)
	}

	coupon, err := s.CouponService.Peek(ctx, code)
	if err != nil {
		if domain.IsBusinessError(err) {
			return s.sendMessage(ctx, user.TelegramChatID, "Такой промокод не найден или не действует 😕")
		}
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}

	return s.sendMessage(ctx, user.TelegramChatID, texts.FormatCouponValid(coupon))
}
