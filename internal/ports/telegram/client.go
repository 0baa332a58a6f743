package telegram

import (
	"context"
)

// IClient интерфейс для клиента Telegram API
type IClient interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendMessageWithKeyboard(ctx context.Context, chatID int64, text string, keyboard map[string]interface{}) error
	EditMessageText(ctx context.Context, chatID int64, messageID int64, text string, keyboard map[string]interface{}) error
	AnswerCallbackQuery(ctx context.Context, callbackID string, text string, showAlert bool) error
	// SendDocument отправляет файл (выдача цифрового товара)
	SendDocument(ctx context.Context, chatID int64, filename string, data []byte, caption string) error
	// UploadPhoto отправляет фото байтами и возвращает file_id для повторной отправки
	UploadPhoto(ctx context.Context, chatID int64, filename string, data []byte, caption string, keyboard map[string]interface{}) (string, error)
	// SendPhotoByFileID отправляет фото по известному file_id без загрузки байтов
	SendPhotoByFileID(ctx context.Context, chatID int64, fileID string, caption string, keyboard map[string]interface{}) error
}
