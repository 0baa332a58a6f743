package shop

import (
	"context"
	"fmt"
)

// Обёртки над Telegram-клиентом: логируют неудачу и оборачивают ошибку,
// чтобы хендлеры не повторяли это на каждом вызове

func (s *Service) sendMessage(ctx context.Context, chatID int64, text string) error {
	return s.reportSend("send message",
		s.TelegramClient.SendMessage(ctx, chatID, text),
		"chat_id", chatID)
}

func (s *Service) sendMessageWithKeyboard(ctx context.Context, chatID int64, text string, keyboard map[string]interface{}) error {
	return s.reportSend("send message with keyboard",
		s.TelegramClient.SendMessageWithKeyboard(ctx, chatID, text, keyboard),
		"chat_id", chatID)
}

// editMessage переписывает текст и клавиатуру существующего сообщения,
// например при листании каталога
func (s *Service) editMessage(ctx context.Context, chatID, messageID int64, text string, keyboard map[string]interface{}) error {
	return s.reportSend("edit message",
		s.TelegramClient.EditMessageText(ctx, chatID, messageID, text, keyboard),
		"chat_id", chatID, "message_id", messageID)
}

func (s *Service) reportSend(op string, err error, attrs ...any) error {
	if err == nil {
		return nil
	}
	s.Log.Error(op+" failed", append(attrs, "error", err)...)
	return fmt.Errorf("%s: %w", op, err)
}

// answerCallback закрывает «часики» на кнопке; ошибка только логируется,
// потому что следом всё равно идёт ответ в чат
func (s *Service) answerCallback(ctx context.Context, callbackID, text string, showAlert bool) {
	if err := s.TelegramClient.AnswerCallbackQuery(ctx, callbackID, text, showAlert); err != nil {
		s.Log.Warn("failed to answer callback query",
			"error", err,
			"callback_id", callbackID,
		)
	}
}
