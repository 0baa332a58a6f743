package domain

import (
	"time"

	"github.com/google/uuid"
)

// TicketStatus статус тикета поддержки
type TicketStatus string

const (
	TicketStatusOpen     TicketStatus = "open"     // открыт, ждёт ответа админа
	TicketStatusAnswered TicketStatus = "answered" // админ ответил, ждём пользователя
	TicketStatusClosed   TicketStatus = "closed"
)

// AuthorRole автор сообщения в тикете
type AuthorRole string

const (
	AuthorRoleUser  AuthorRole = "user"
	AuthorRoleAdmin AuthorRole = "admin"
)

// SupportTicket обращение в поддержку
type SupportTicket struct {
	ID        int64        `json:"id" db:"id"`
	PublicID  uuid.UUID    `json:"public_id" db:"public_id"` // короткая ссылка для переписки с админом
	UserID    uuid.UUID    `json:"user_id" db:"user_id"`
	Subject   string       `json:"subject" db:"subject"`
	Status    TicketStatus `json:"status" db:"status"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}

// TicketMessage сообщение в переписке тикета
type TicketMessage struct {
	ID         int64      `json:"id" db:"id"`
	TicketID   int64      `json:"ticket_id" db:"ticket_id"`
	AuthorRole AuthorRole `json:"author_role" db:"author_role"`
	Body       string     `json:"body" db:"body"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}
