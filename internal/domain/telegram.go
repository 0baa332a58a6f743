package domain

// Входящие типы Bot API, https://core.telegram.org/bots/api

// типы чатов Telegram
const (
	ChatTypePrivate    = "private"
	ChatTypeGroup      = "group"
	ChatTypeSupergroup = "supergroup"
	ChatTypeChannel    = "channel"
)

const entityBotCommand = "bot_command"

// Update входящее обновление от Telegram
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// CallbackQuery нажатие inline-кнопки
type CallbackQuery struct {
	ID      string        `json:"id"`
	From    *TelegramUser `json:"from,omitempty"`
	Message *Message      `json:"message,omitempty"`
	Data    *string       `json:"data,omitempty"` // данные callback кнопки
}

// Message входящее сообщение
type Message struct {
	MessageID int64         `json:"message_id"`
	From      *TelegramUser `json:"from,omitempty"`
	Chat      *Chat         `json:"chat"`
	Date      int64         `json:"date"` // unix timestamp
	Text      *string       `json:"text,omitempty"`
	Entities  []Entity      `json:"entities,omitempty"`
}

// IsCommand отвечает, является ли сообщение командой боту.
// Опирается на entities, когда Telegram их прислал, иначе на префикс "/"
func (m *Message) IsCommand() bool {
	if m == nil || m.Text == nil || *m.Text == "" {
		return false
	}
	for _, e := range m.Entities {
		if e.Type == entityBotCommand {
			return e.Offset == 0
		}
	}
	return (*m.Text)[0] == '/'
}

// TelegramUser аккаунт Telegram; связь с domain.User идёт через telegram_id
type TelegramUser struct {
	ID           int64   `json:"id"`
	IsBot        bool    `json:"is_bot"`
	FirstName    string  `json:"first_name"`
	LastName     *string `json:"last_name,omitempty"`
	Username     *string `json:"username,omitempty"`
	LanguageCode *string `json:"language_code,omitempty"`
}

// Chat чат, из которого пришло сообщение
type Chat struct {
	ID        int64   `json:"id"`
	Type      string  `json:"type"`
	Title     *string `json:"title,omitempty"`
	Username  *string `json:"username,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

// IsPrivate личная переписка с ботом; магазин работает только в ней
func (c *Chat) IsPrivate() bool {
	return c != nil && c.Type == ChatTypePrivate
}

// Entity размеченный фрагмент текста: команда, упоминание, ссылка.
// Offset и Length считаются в UTF-16 кодовых единицах
type Entity struct {
	Type   string `json:"type"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
}
