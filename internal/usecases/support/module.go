package support

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/ports/repository"
	"github.com/admin/tg-bots/shop-bot/internal/ports/telegram"
	"github.com/google/uuid"
)

// Service поддержка: тикеты и переписка пользователь-админ
type Service struct {
	TicketRepo     repository.ITicketRepo
	UserRepo       repository.IUserRepo
	TelegramClient telegram.IClient
	Log            *slog.Logger
}

func New(
	ticketRepo repository.ITicketRepo,
	userRepo repository.IUserRepo,
	telegramClient telegram.IClient,
	log *slog.Logger,
) *Service {
	return &Service{
		TicketRepo:     ticketRepo,
		UserRepo:       userRepo,
		TelegramClient: telegramClient,
		Log:            log,
	}
}

// OpenTicket создаёт тикет с первым сообщением. Если у пользователя уже есть
// незакрытый тикет, новое обращение добавляется в него
func (s *Service) OpenTicket(ctx context.Context, userID uuid.UUID, subject, body string) (*domain.SupportTicket, error) {
	subject = strings.TrimSpace(subject)
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domain.BusinessErrorf("ticket message is empty")
	}

	existing, err := s.TicketRepo.GetOpenByUserID(ctx, userID)
	if err == nil {
		if err := s.appendMessage(ctx, existing, domain.AuthorRoleUser, body); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		s.Log.Error("failed to check open tickets", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to check open tickets: %w", err)
	}

	if subject == "" {
		subject = truncate(body, 80)
	}

	now := time.Now()
	ticket := &domain.SupportTicket{
		PublicID:  uuid.New(),
		UserID:    userID,
		Subject:   subject,
		Status:    domain.TicketStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.TicketRepo.Create(ctx, ticket); err != nil {
		s.Log.Error("failed to create ticket", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	if err := s.TicketRepo.CreateMessage(ctx, &domain.TicketMessage{
		TicketID:   ticket.ID,
		AuthorRole: domain.AuthorRoleUser,
		Body:       body,
		CreatedAt:  now,
	}); err != nil {
		s.Log.Error("failed to store ticket message", "ticket_id", ticket.ID, "error", err)
		return nil, fmt.Errorf("failed to store ticket message: %w", err)
	}

	s.Log.Info("support ticket opened", "ticket_id", ticket.ID, "public_id", ticket.PublicID, "user_id", userID)
	return ticket, nil
}

// AddUserMessage добавляет сообщение пользователя в его открытый тикет.
// Если открытого тикета нет, создаётся новый
func (s *Service) AddUserMessage(ctx context.Context, userID uuid.UUID, body string) (*domain.SupportTicket, error) {
	ticket, err := s.TicketRepo.GetOpenByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s.OpenTicket(ctx, userID, "", body)
		}
		s.Log.Error("failed to get open ticket", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get open ticket: %w", err)
	}

	if err := s.appendMessage(ctx, ticket, domain.AuthorRoleUser, body); err != nil {
		return nil, err
	}
	return ticket, nil
}

// ReplyByAdmin отвечает пользователю от имени поддержки по публичному ID тикета
// и уведомляет его в чате
func (s *Service) ReplyByAdmin(ctx context.Context, ticketPublicID uuid.UUID, body string) (*domain.SupportTicket, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domain.BusinessErrorf("reply is empty")
	}

	ticket, err := s.TicketRepo.GetByPublicID(ctx, ticketPublicID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.BusinessErrorf("ticket %s not found", ticketPublicID)
		}
		s.Log.Error("failed to get ticket", "public_id", ticketPublicID, "error", err)
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, domain.BusinessErrorf("ticket %s is closed", ticketPublicID)
	}

	if err := s.appendMessage(ctx, ticket, domain.AuthorRoleAdmin, body); err != nil {
		return nil, err
	}

	user, err := s.UserRepo.GetByID(ctx, ticket.UserID)
	if err != nil {
		s.Log.Warn("failed to load ticket user for notification", "ticket_id", ticket.ID, "error", err)
		return ticket, nil
	}

	notification := fmt.Sprintf("💬 Ответ поддержки по обращению «%s»:\n\n%s", ticket.Subject, body)
	if err := s.TelegramClient.SendMessage(ctx, user.TelegramChatID, notification); err != nil {
		s.Log.Warn("failed to notify user about reply", "ticket_id", ticket.ID, "chat_id", user.TelegramChatID, "error", err)
	}

	return ticket, nil
}

// CloseTicket закрывает тикет
func (s *Service) CloseTicket(ctx context.Context, ticketPublicID uuid.UUID) error {
	ticket, err := s.TicketRepo.GetByPublicID(ctx, ticketPublicID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.BusinessErrorf("ticket %s not found", ticketPublicID)
		}
		s.Log.Error("failed to get ticket", "public_id", ticketPublicID, "error", err)
		return fmt.Errorf("failed to get ticket: %w", err)
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil
	}

	if err := s.TicketRepo.UpdateStatus(ctx, ticket.ID, domain.TicketStatusClosed); err != nil {
		s.Log.Error("failed to close ticket", "ticket_id", ticket.ID, "error", err)
		return fmt.Errorf("failed to close ticket: %w", err)
	}

	s.Log.Info("support ticket closed", "ticket_id", ticket.ID, "public_id", ticket.PublicID)
	return nil
}

// CloseOwnTicket закрывает открытый тикет пользователя (команда /cancel в диалоге поддержки)
func (s *Service) CloseOwnTicket(ctx context.Context, userID uuid.UUID) (bool, error) {
	ticket, err := s.TicketRepo.GetOpenByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		s.Log.Error("failed to get open ticket", "user_id", userID, "error", err)
		return false, fmt.Errorf("failed to get open ticket: %w", err)
	}

	if err := s.TicketRepo.UpdateStatus(ctx, ticket.ID, domain.TicketStatusClosed); err != nil {
		s.Log.Error("failed to close ticket", "ticket_id", ticket.ID, "error", err)
		return false, fmt.Errorf("failed to close ticket: %w", err)
	}
	return true, nil
}

// ListOpenTickets открытые тикеты для админки, старые первыми
func (s *Service) ListOpenTickets(ctx context.Context, limit int) ([]*domain.SupportTicket, error) {
	tickets, err := s.TicketRepo.ListByStatus(ctx, domain.TicketStatusOpen, limit)
	if err != nil {
		s.Log.Error("failed to list open tickets", "error", err)
		return nil, fmt.Errorf("failed to list open tickets: %w", err)
	}
	return tickets, nil
}

// Messages переписка тикета
func (s *Service) Messages(ctx context.Context, ticketID int64) ([]*domain.TicketMessage, error) {
	return s.TicketRepo.ListMessages(ctx, ticketID)
}

// appendMessage сохраняет сообщение и обновляет статус тикета в зависимости от автора:
// ответ админа переводит в answered, сообщение пользователя возвращает в open
func (s *Service) appendMessage(ctx context.Context, ticket *domain.SupportTicket, role domain.AuthorRole, body string) error {
	if err := s.TicketRepo.CreateMessage(ctx, &domain.TicketMessage{
		TicketID:   ticket.ID,
		AuthorRole: role,
		Body:       body,
		CreatedAt:  time.Now(),
	}); err != nil {
		s.Log.Error("failed to store ticket message", "ticket_id", ticket.ID, "error", err)
		return fmt.Errorf("failed to store ticket message: %w", err)
	}

	nextStatus := domain.TicketStatusOpen
	if role == domain.AuthorRoleAdmin {
		nextStatus = domain.TicketStatusAnswered
	}
	if ticket.Status != nextStatus {
		if err := s.TicketRepo.UpdateStatus(ctx, ticket.ID, nextStatus); err != nil {
			s.Log.Warn("failed to update ticket status", "ticket_id", ticket.ID, "error", err)
		} else {
			ticket.Status = nextStatus
		}
	}
	return nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
