package telegram

import (
	"context"
)

// AnswerCallbackQuery подтверждает нажатие inline-кнопки. С пустым text
// просто гасит "часики" на кнопке, с show_alert показывает всплывающее окно
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID string, text string, showAlert bool) error {
	payload := struct {
		CallbackQueryID string `json:"callback_query_id"`
		Text            string `json:"text,omitempty"`
		ShowAlert       bool   `json:"show_alert,omitempty"`
	}{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       showAlert,
	}

	if err := c.callJSON(ctx, "answerCallbackQuery", payload, nil); err != nil {
		return err
	}

	c.log.Debug("callback query answered", "callback_id", callbackID)
	return nil
}
