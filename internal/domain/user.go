package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	TelegramUserID int64      `json:"telegram_user_id" db:"tg_id"`
	TelegramChatID int64      `json:"telegram_chat_id" db:"chat_id"`
	FirstName      string     `json:"first_name" db:"first_name"`
	LastName       *string    `json:"last_name,omitempty" db:"last_name"`
	Username       *string    `json:"username,omitempty" db:"username"`
	LanguageCode   *string    `json:"language_code,omitempty" db:"language_code"`
	PendingAction  *string    `json:"pending_action,omitempty" db:"pending_action"` // состояние диалога (ввод купона, ответ на вопрос товара и т.д.)
	ReferredBy     *uuid.UUID `json:"referred_by,omitempty" db:"referred_by"`       // кто привёл пользователя, выставляется один раз
	IsBlocked      bool       `json:"is_blocked" db:"is_blocked"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
	LastSeenAt     *time.Time `json:"last_seen_at,omitempty" db:"last_seen_at"`
}
