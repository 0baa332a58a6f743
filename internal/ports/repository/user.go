package repository

import (
	"context"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/google/uuid"
)

// IUserRepo интерфейс для работы с профилями покупателей
type IUserRepo interface {
	Create(ctx context.Context, user *domain.User) error
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateLastSeen(ctx context.Context, userID uuid.UUID) error
	SetPendingAction(ctx context.Context, userID uuid.UUID, action *string) error
	// SetReferredBy выставляет реферера один раз; false если уже выставлен
	SetReferredBy(ctx context.Context, userID uuid.UUID, referrerID uuid.UUID) (bool, error)
	SetBlocked(ctx context.Context, userID uuid.UUID, blocked bool) error
	ListChatIDs(ctx context.Context) ([]int64, error)
}
