package ticketRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	ports "github.com/admin/tg-bots/shop-bot/internal/ports/repository"

	"log/slog"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/ports/persistence"
	"github.com/google/uuid"
)

type ticketColumns struct {
	TableName string
	ID        string
	PublicID  string
	UserID    string
	Subject   string
	Status    string
	CreatedAt string
	UpdatedAt string
}

type messageColumns struct {
	TableName  string
	ID         string
	TicketID   string
	AuthorRole string
	Body       string
	CreatedAt  string
}

type Repository struct {
	db       persistence.Persistence
	Log      *slog.Logger
	tickets  ticketColumns
	messages messageColumns
}

// New создаёт новый репозиторий для тикетов поддержки
func New(db persistence.Persistence, log *slog.Logger) ports.ITicketRepo {
	tickets := ticketColumns{
		TableName: "support_tickets",
		ID:        "id",
		PublicID:  "public_id",
		UserID:    "user_id",
		Subject:   "subject",
		Status:    "status",
		CreatedAt: "created_at",
		UpdatedAt: "updated_at",
	}
	messages := messageColumns{
		TableName:  "ticket_messages",
		ID:         "id",
		TicketID:   "ticket_id",
		AuthorRole: "author_role",
		Body:       "body",
		CreatedAt:  "created_at",
	}
	return &Repository{
		db:       db,
		Log:      log,
		tickets:  tickets,
		messages: messages,
	}
}

func (r *Repository) ticketSelect() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s",
		r.tickets.ID,
		r.tickets.PublicID,
		r.tickets.UserID,
		r.tickets.Subject,
		r.tickets.Status,
		r.tickets.CreatedAt,
		r.tickets.UpdatedAt)
}

// Create создаёт тикет
func (r *Repository) Create(ctx context.Context, ticket *domain.SupportTicket) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING %s`,
		r.tickets.TableName,
		r.tickets.PublicID,
		r.tickets.UserID,
		r.tickets.Subject,
		r.tickets.Status,
		r.tickets.CreatedAt,
		r.tickets.UpdatedAt,
		r.tickets.ID,
	)

	row := r.db.QueryRow(ctx, query,
		ticket.PublicID,
		ticket.UserID,
		ticket.Subject,
		string(ticket.Status),
		ticket.CreatedAt,
		ticket.UpdatedAt,
	)
	if err := row.Scan(&ticket.ID); err != nil {
		r.Log.Error("create support ticket failed",
			"error", err,
			"user_id", ticket.UserID,
		)
		return fmt.Errorf("create support ticket: %w", err)
	}

	r.Log.Debug("support ticket created",
		"ticket_id", ticket.ID,
		"user_id", ticket.UserID,
	)
	return nil
}

// GetByID получает тикет по внутреннему id
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.SupportTicket, error) {
	var ticket domain.SupportTicket

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.ticketSelect(),
		r.tickets.TableName,
		r.tickets.ID,
	)

	err := r.db.Get(ctx, &ticket, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("support ticket not found: %w", err)
		}
		r.Log.Error("get support ticket failed",
			"error", err,
			"ticket_id", id,
		)
		return nil, fmt.Errorf("get support ticket: %w", err)
	}

	return &ticket, nil
}

// GetByPublicID получает тикет по публичному id из команды /reply
func (r *Repository) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*domain.SupportTicket, error) {
	var ticket domain.SupportTicket

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.ticketSelect(),
		r.tickets.TableName,
		r.tickets.PublicID,
	)

	err := r.db.Get(ctx, &ticket, query, publicID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("support ticket not found: %w", err)
		}
		r.Log.Error("get support ticket by public id failed",
			"error", err,
			"public_id", publicID,
		)
		return nil, fmt.Errorf("get support ticket by public id: %w", err)
	}

	return &ticket, nil
}

// GetOpenByUserID последний незакрытый тикет пользователя
func (r *Repository) GetOpenByUserID(ctx context.Context, userID uuid.UUID) (*domain.SupportTicket, error) {
	var ticket domain.SupportTicket

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s != $2 ORDER BY %s DESC LIMIT 1`,
		r.ticketSelect(),
		r.tickets.TableName,
		r.tickets.UserID,
		r.tickets.Status,
		r.tickets.ID,
	)

	err := r.db.Get(ctx, &ticket, query, userID, string(domain.TicketStatusClosed))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("open support ticket not found: %w", err)
		}
		r.Log.Error("get open support ticket failed",
			"error", err,
			"user_id", userID,
		)
		return nil, fmt.Errorf("get open support ticket: %w", err)
	}

	return &ticket, nil
}

// ListByStatus возвращает тикеты в статусе, старые первыми
func (r *Repository) ListByStatus(ctx context.Context, status domain.TicketStatus, limit int) ([]*domain.SupportTicket, error) {
	var tickets []*domain.SupportTicket

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s LIMIT $2`,
		r.ticketSelect(),
		r.tickets.TableName,
		r.tickets.Status,
		r.tickets.ID,
	)

	if err := r.db.Select(ctx, &tickets, query, string(status), limit); err != nil {
		r.Log.Error("list support tickets failed",
			"error", err,
			"status", status,
		)
		return nil, fmt.Errorf("list support tickets: %w", err)
	}

	return tickets, nil
}

// UpdateStatus меняет статус тикета
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2 WHERE %s = $3`,
		r.tickets.TableName,
		r.tickets.Status,
		r.tickets.UpdatedAt,
		r.tickets.ID,
	)

	if err := r.db.Exec(ctx, query, string(status), time.Now(), id); err != nil {
		r.Log.Error("update support ticket status failed",
			"error", err,
			"ticket_id", id,
			"status", status,
		)
		return fmt.Errorf("update support ticket status: %w", err)
	}

	r.Log.Debug("support ticket status updated",
		"ticket_id", id,
		"status", status,
	)
	return nil
}

// CreateMessage добавляет сообщение в переписку тикета
func (r *Repository) CreateMessage(ctx context.Context, msg *domain.TicketMessage) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s) VALUES ($1, $2, $3, $4) RETURNING %s`,
		r.messages.TableName,
		r.messages.TicketID,
		r.messages.AuthorRole,
		r.messages.Body,
		r.messages.CreatedAt,
		r.messages.ID,
	)

	row := r.db.QueryRow(ctx, query,
		msg.TicketID,
		string(msg.AuthorRole),
		msg.Body,
		msg.CreatedAt,
	)
	if err := row.Scan(&msg.ID); err != nil {
		r.Log.Error("create ticket message failed",
			"error", err,
			"ticket_id", msg.TicketID,
		)
		return fmt.Errorf("create ticket message: %w", err)
	}

	return nil
}

// ListMessages возвращает переписку тикета в хронологическом порядке
func (r *Repository) ListMessages(ctx context.Context, ticketID int64) ([]*domain.TicketMessage, error) {
	var messages []*domain.TicketMessage

	query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s FROM %s WHERE %s = $1 ORDER BY %s`,
		r.messages.ID,
		r.messages.TicketID,
		r.messages.AuthorRole,
		r.messages.Body,
		r.messages.CreatedAt,
		r.messages.TableName,
		r.messages.TicketID,
		r.messages.ID,
	)

	if err := r.db.Select(ctx, &messages, query, ticketID); err != nil {
		r.Log.Error("list ticket messages failed",
			"error", err,
			"ticket_id", ticketID,
		)
		return nil, fmt.Errorf("list ticket messages: %w", err)
	}

	return messages, nil
}
