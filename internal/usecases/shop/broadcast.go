package shop

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/shop/texts"
)

// пауза между сообщениями рассылки, держит нас ниже лимитов Bot API
const broadcastPause = 50 * time.Millisecond

// handleBroadcast рассылает текст всем пользователям магазина
func (s *Service) handleBroadcast(ctx context.Context, user *domain.User, args string) error {
	text := strings.TrimSpace(args)
	if text == "" {
		return s.sendMessage(ctx, user.TelegramChatID, texts.AdminBroadcastUsage)
	}

	chatIDs, err := s.UserRepo.ListChatIDs(ctx)
	if err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}

	s.Log.Info("broadcast started",
		"admin_id", user.ID,
		"recipients", len(chatIDs),
	)

	sent, failed := 0, 0
	for _, chatID := range chatIDs {
		if ctx.Err() != nil {
			break
		}
		if err := s.TelegramClient.SendMessage(ctx, chatID, text); err != nil {
			// заблокировавшие бота попадают сюда, это ожидаемо
			failed++
		} else {
			sent++
		}
		time.Sleep(broadcastPause)
	}

	s.Log.Info("broadcast finished",
		"sent", sent,
		"failed", failed,
	)

	return s.sendMessage(ctx, user.TelegramChatID,
		fmt.Sprintf("📣 Рассылка завершена\nДоставлено: %d\nНе доставлено: %d", sent, failed))
}
