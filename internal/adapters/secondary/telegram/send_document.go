package telegram

import (
	"context"
	"strconv"
)

// SendDocument отправляет файл в чат (выдача цифрового товара)
func (c *Client) SendDocument(ctx context.Context, chatID int64, filename string, data []byte, caption string) error {
	fields := map[string]string{"chat_id": strconv.FormatInt(chatID, 10)}
	if caption != "" {
		fields["caption"] = caption
	}

	var result struct {
		MessageID int64 `json:"message_id"`
	}
	if err := c.callMultipart(ctx, "sendDocument", fields, "document", filename, data, &result); err != nil {
		return err
	}

	c.log.Debug("document sent",
		"chat_id", chatID,
		"message_id", result.MessageID,
		"filename", filename,
		"size", len(data),
	)
	return nil
}
