package repository

import (
	"context"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/google/uuid"
)

// ITicketRepo интерфейс для тикетов поддержки
type ITicketRepo interface {
	Create(ctx context.Context, ticket *domain.SupportTicket) error
	GetByID(ctx context.Context, id int64) (*domain.SupportTicket, error)
	GetByPublicID(ctx context.Context, publicID uuid.UUID) (*domain.SupportTicket, error)
	// GetOpenByUserID последний незакрытый тикет пользователя
	GetOpenByUserID(ctx context.Context, userID uuid.UUID) (*domain.SupportTicket, error)
	ListByStatus(ctx context.Context, status domain.TicketStatus, limit int) ([]*domain.SupportTicket, error)
	UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) error

	CreateMessage(ctx context.Context, msg *domain.TicketMessage) error
	ListMessages(ctx context.Context, ticketID int64) ([]*domain.TicketMessage, error)
}
