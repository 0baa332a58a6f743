package telegram

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// EditMessageTextRequest запрос на редактирование текста сообщения
type EditMessageTextRequest struct {
	ChatID      int64                  `json:"chat_id"`
	MessageID   int64                  `json:"message_id"`
	Text        string                 `json:"text"`
	ParseMode   string                 `json:"parse_mode,omitempty"`
	ReplyMarkup map[string]interface{} `json:"reply_markup,omitempty"`
}

// EditMessageText редактирует текст и клавиатуру уже отправленного сообщения
func (c *Client) EditMessageText(ctx context.Context, chatID int64, messageID int64, text string, keyboard map[string]interface{}) error {
	req := EditMessageTextRequest{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ReplyMarkup: keyboard,
	}

	if err := c.callJSON(ctx, "editMessageText", req, nil); err != nil {
		// повторное нажатие кнопки даёт тот же текст, Bot API отвечает 400
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusBadRequest &&
			strings.Contains(apiErr.Description, "message is not modified") {
			c.log.Debug("message not modified", "chat_id", chatID, "message_id", messageID)
			return nil
		}
		return err
	}

	c.log.Debug("message edited", "chat_id", chatID, "message_id", messageID)
	return nil
}
