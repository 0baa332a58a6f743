package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// PhotoSize размер фото в ответе Bot API
type PhotoSize struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	FileSize     *int   `json:"file_size,omitempty"`
}

// UploadPhoto загружает фото байтами и возвращает file_id самого крупного
// размера, чтобы дальше слать то же фото без повторной загрузки
func (c *Client) UploadPhoto(ctx context.Context, chatID int64, filename string, data []byte, caption string, keyboard map[string]interface{}) (string, error) {
	fields := map[string]string{"chat_id": strconv.FormatInt(chatID, 10)}
	if caption != "" {
		fields["caption"] = caption
	}
	if keyboard != nil {
		markup, err := json.Marshal(keyboard)
		if err != nil {
			return "", fmt.Errorf("failed to marshal reply markup: %w", err)
		}
		fields["reply_markup"] = string(markup)
	}

	var result struct {
		MessageID int64       `json:"message_id"`
		Photo     []PhotoSize `json:"photo"`
	}
	if err := c.callMultipart(ctx, "sendPhoto", fields, "photo", filename, data, &result); err != nil {
		return "", err
	}
	if len(result.Photo) == 0 {
		return "", fmt.Errorf("no photo sizes in sendPhoto response")
	}

	// последний элемент массива самый крупный
	fileID := result.Photo[len(result.Photo)-1].FileID
	c.log.Debug("photo uploaded",
		"chat_id", chatID,
		"message_id", result.MessageID,
		"file_id", fileID,
	)
	return fileID, nil
}

// SendPhotoByFileID отправляет фото по уже известному file_id
func (c *Client) SendPhotoByFileID(ctx context.Context, chatID int64, fileID string, caption string, keyboard map[string]interface{}) error {
	payload := map[string]interface{}{
		"chat_id": chatID,
		"photo":   fileID,
	}
	if caption != "" {
		payload["caption"] = caption
	}
	if keyboard != nil {
		payload["reply_markup"] = keyboard
	}

	return c.callJSON(ctx, "sendPhoto", payload, nil)
}
