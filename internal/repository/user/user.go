package userRepo

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

type userColumns struct {
	TableName      string
	ID             string
	TelegramUserID string
	TelegramChatID string
	FirstName      string
	LastName       string
	Username       string
	LanguageCode   string
	PendingAction  string
	ReferredBy     string
	IsBlocked      string
	CreatedAt      string
	UpdatedAt      string
	LastSeenAt     string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns userColumns
}

// New создаёт новый репозиторий для работы с профилями покупателей
func New(db persistence.Persistence, log *slog.Logger) ports.IUserRepo {
	cols := userColumns{
		TableName:      "user_profiles",
		ID:             "id",
		TelegramUserID: "tg_id",
		TelegramChatID: "chat_id",
		FirstName:      "first_name",
		LastName:       "last_name",
		Username:       "username",
		LanguageCode:   "language_code",
		PendingAction:  "pending_action",
		ReferredBy:     "referred_by",
		IsBlocked:      "is_blocked",
		CreatedAt:      "created_at",
		UpdatedAt:      "updated_at",
		LastSeenAt:     "last_seen_at",
	}
	return &Repository{
		db:      db,
		Log:     log,
		columns: cols,
	}
}

// allColumns возвращает строку со всеми колонками (13 колонок)
func (r *Repository) allColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		r.columns.ID,
		r.columns.TelegramUserID,
		r.columns.TelegramChatID,
		r.columns.FirstName,
		r.columns.LastName,
		r.columns.Username,
		r.columns.LanguageCode,
		r.columns.PendingAction,
		r.columns.ReferredBy,
		r.columns.IsBlocked,
		r.columns.CreatedAt,
		r.columns.UpdatedAt,
		r.columns.LastSeenAt)
}

// Create создаёт нового покупателя
func (r *Repository) Create(ctx context.Context, user *domain.User) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		r.columns.TableName,
		r.allColumns(),
	)

	err := r.db.Exec(ctx, query,
		user.ID,
		user.TelegramUserID,
		user.TelegramChatID,
		user.FirstName,
		user.LastName,
		user.Username,
		user.LanguageCode,
		user.PendingAction,
		user.ReferredBy,
		user.IsBlocked,
		user.CreatedAt,
		user.UpdatedAt,
		user.LastSeenAt,
	)
	if err != nil {
		r.Log.Error("create user failed",
			"error", err,
			"telegram_user_id", user.TelegramUserID,
		)
		return fmt.Errorf("create user: %w", err)
	}

	r.Log.Debug("user created",
		"user_id", user.ID,
		"telegram_user_id", user.TelegramUserID,
	)
	return nil
}

// GetByTelegramID получает покупателя по Telegram ID
func (r *Repository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	var user domain.User

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.TelegramUserID,
	)

	err := r.db.Get(ctx, &user, query, telegramID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		r.Log.Error("get user by telegram_id failed",
			"error", err,
			"telegram_user_id", telegramID,
		)
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

// GetByID получает покупателя по внутреннему ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.ID,
	)

	err := r.db.Get(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.Log.Warn("user not found", "user_id", id)
			return nil, fmt.Errorf("user not found: %w", err)
		}
		r.Log.Error("get user failed",
			"error", err,
			"user_id", id,
		)
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

// Update обновляет профиль покупателя
func (r *Repository) Update(ctx context.Context, user *domain.User) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2, %s = $3, %s = $4, %s = $5, %s = $6 WHERE %s = $7`,
		r.columns.TableName,
		r.columns.TelegramChatID,
		r.columns.FirstName,
		r.columns.LastName,
		r.columns.Username,
		r.columns.LanguageCode,
		r.columns.UpdatedAt,
		r.columns.ID,
	)

	err := r.db.Exec(ctx, query,
		user.TelegramChatID,
		user.FirstName,
		user.LastName,
		user.Username,
		user.LanguageCode,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		r.Log.Error("update user failed",
			"error", err,
			"user_id", user.ID,
		)
		return fmt.Errorf("update user: %w", err)
	}

	r.Log.Debug("user updated", "user_id", user.ID)
	return nil
}

// UpdateLastSeen обновляет время последней активности
func (r *Repository) UpdateLastSeen(ctx context.Context, userID uuid.UUID) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1 WHERE %s = $2`,
		r.columns.TableName,
		r.columns.LastSeenAt,
		r.columns.ID,
	)

	if err := r.db.Exec(ctx, query, time.Now(), userID); err != nil {
		r.Log.Error("update last seen failed",
			"error", err,
			"user_id", userID,
		)
		return fmt.Errorf("update last seen: %w", err)
	}

	return nil
}

// SetPendingAction сохраняет состояние диалога (nil сбрасывает)
func (r *Repository) SetPendingAction(ctx context.Context, userID uuid.UUID, action *string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2 WHERE %s = $3`,
		r.columns.TableName,
		r.columns.PendingAction,
		r.columns.UpdatedAt,
		r.columns.ID,
	)

	if err := r.db.Exec(ctx, query, action, time.Now(), userID); err != nil {
		r.Log.Error("set pending action failed",
			"error", err,
			"user_id", userID,
		)
		return fmt.Errorf("set pending action: %w", err)
	}

	r.Log.Debug("pending action updated", "user_id", userID)
	return nil
}

// SetReferredBy выставляет реферера только если он ещё не выставлен;
// false если у пользователя уже есть реферер
func (r *Repository) SetReferredBy(ctx context.Context, userID uuid.UUID, referrerID uuid.UUID) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2 WHERE %s = $3 AND %s IS NULL`,
		r.columns.TableName,
		r.columns.ReferredBy,
		r.columns.UpdatedAt,
		r.columns.ID,
		r.columns.ReferredBy,
	)

	rowsAffected, err := r.db.ExecWithResult(ctx, query, referrerID, time.Now(), userID)
	if err != nil {
		r.Log.Error("set referred_by failed",
			"error", err,
			"user_id", userID,
			"referrer_id", referrerID,
		)
		return false, fmt.Errorf("set referred_by: %w", err)
	}

	if rowsAffected == 0 {
		r.Log.Debug("referred_by already set, skipping", "user_id", userID)
		return false, nil
	}

	r.Log.Debug("referred_by set",
		"user_id", userID,
		"referrer_id", referrerID,
	)
	return true, nil
}

// SetBlocked помечает покупателя заблокированным (бот не отвечает на его сообщения)
func (r *Repository) SetBlocked(ctx context.Context, userID uuid.UUID, blocked bool) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2 WHERE %s = $3`,
		r.columns.TableName,
		r.columns.IsBlocked,
		r.columns.UpdatedAt,
		r.columns.ID,
	)

	if err := r.db.Exec(ctx, query, blocked, time.Now(), userID); err != nil {
		r.Log.Error("set blocked flag failed",
			"error", err,
			"user_id", userID,
		)
		return fmt.Errorf("set blocked flag: %w", err)
	}

	r.Log.Debug("blocked flag updated", "user_id", userID, "blocked", blocked)
	return nil
}

// ListChatIDs возвращает chat_id всех незаблокированных покупателей для рассылки
func (r *Repository) ListChatIDs(ctx context.Context) ([]int64, error) {
	var chatIDs []int64

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = FALSE ORDER BY %s`,
		r.columns.TelegramChatID,
		r.columns.TableName,
		r.columns.IsBlocked,
		r.columns.CreatedAt,
	)

	if err := r.db.Select(ctx, &chatIDs, query); err != nil {
		r.Log.Error("list chat ids failed", "error", err)
		return nil, fmt.Errorf("list chat ids: %w", err)
	}

	return chatIDs, nil
}
