package shop

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/google/uuid"
)

// префикс реферального payload в /start
const referralPayloadPrefix = "ref_"

// GetOrCreateUser получает пользователя по Telegram ID или регистрирует нового.
// startPayload это аргумент deep-link из /start, используется для реферальной атрибуции.
func (s *Service) GetOrCreateUser(ctx context.Context, tgUser *domain.TelegramUser, chat *domain.Chat, startPayload string) (*domain.User, error) {
	user, err := s.UserRepo.GetByTelegramID(ctx, tgUser.ID)
	if err == nil && user != nil {
		if syncProfile(user, tgUser, chat) {
			user.UpdatedAt = time.Now()
			if err := s.UserRepo.Update(ctx, user); err != nil {
				s.Log.Warn("user profile sync failed",
					"error", err,
					"user_id", user.ID,
				)
			}
		}

		if err := s.UserRepo.UpdateLastSeen(ctx, user.ID); err != nil {
			s.Log.Warn("last seen update failed",
				"error", err,
				"user_id", user.ID,
			)
		}

		s.attributeReferral(ctx, user, startPayload)
		return user, nil
	}

	now := time.Now()
	user = &domain.User{
		ID:             uuid.New(),
		TelegramUserID: tgUser.ID,
		TelegramChatID: chat.ID,
		FirstName:      tgUser.FirstName,
		LastName:       tgUser.LastName,
		Username:       tgUser.Username,
		LanguageCode:   tgUser.LanguageCode,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.UserRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user tg=%d: %w", tgUser.ID, err)
	}

	s.Log.Info("new user registered",
		"user_id", user.ID,
		"telegram_user_id", user.TelegramUserID,
	)

	s.attributeReferral(ctx, user, startPayload)
	return user, nil
}

// syncProfile переносит свежие данные Telegram-профиля в карточку пользователя.
// Язык не затирается, если в апдейте его нет
func syncProfile(u *domain.User, tg *domain.TelegramUser, chat *domain.Chat) bool {
	changed := false

	if u.FirstName != tg.FirstName {
		u.FirstName = tg.FirstName
		changed = true
	}
	if !strPtrEqual(u.LastName, tg.LastName) {
		u.LastName = tg.LastName
		changed = true
	}
	if !strPtrEqual(u.Username, tg.Username) {
		u.Username = tg.Username
		changed = true
	}
	if tg.LanguageCode != nil && !strPtrEqual(u.LanguageCode, tg.LanguageCode) {
		u.LanguageCode = tg.LanguageCode
		changed = true
	}
	if u.TelegramChatID != chat.ID {
		u.TelegramChatID = chat.ID
		changed = true
	}

	return changed
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// attributeReferral привязывает пользователя к реферальной ссылке из /start ref_<code>.
// Повторные переходы и собственная ссылка отсекаются внутри ReferralService
func (s *Service) attributeReferral(ctx context.Context, user *domain.User, startPayload string) {
	if !strings.HasPrefix(startPayload, referralPayloadPrefix) {
		return
	}
	code := strings.TrimPrefix(startPayload, referralPayloadPrefix)
	if code == "" {
		return
	}

	if err := s.ReferralService.Attribute(ctx, user, code); err != nil {
		s.Log.Warn("failed to attribute referral",
			"error", err,
			"user_id", user.ID,
		)
	}
}
