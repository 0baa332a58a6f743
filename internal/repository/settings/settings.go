package settingsRepo

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
)

type settingsColumns struct {
	TableName string
	Key       string
	Value     string
	UpdatedAt string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns settingsColumns
}

// New создаёт новый репозиторий для настроек магазина
func New(db persistence.Persistence, log *slog.Logger) ports.ISettingsRepo {
	columns := settingsColumns{
		TableName: "app_settings",
		Key:       "key",
		Value:     "value",
		UpdatedAt: "updated_at",
	}
	return &Repository{
		db:      db,
		Log:     log,
		columns: columns,
	}
}

// GetAll возвращает все настройки
func (r *Repository) GetAll(ctx context.Context) ([]*domain.AppSetting, error) {
	var settings []*domain.AppSetting

	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s ORDER BY %s`,
		r.columns.Key,
		r.columns.Value,
		r.columns.UpdatedAt,
		r.columns.TableName,
		r.columns.Key,
	)

	if err := r.db.Select(ctx, &settings, query); err != nil {
		r.Log.Error("get settings failed", "error", err)
		return nil, fmt.Errorf("get settings: %w", err)
	}

	return settings, nil
}

// Get получает настройку по ключу
func (r *Repository) Get(ctx context.Context, key string) (*domain.AppSetting, error) {
	var setting domain.AppSetting

	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s WHERE %s = $1`,
		r.columns.Key,
		r.columns.Value,
		r.columns.UpdatedAt,
		r.columns.TableName,
		r.columns.Key,
	)

	err := r.db.Get(ctx, &setting, query, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("setting not found: %w", err)
		}
		r.Log.Error("get setting failed",
			"error", err,
			"key", key,
		)
		return nil, fmt.Errorf("get setting: %w", err)
	}

	return &setting, nil
}

// Set записывает настройку, перезаписывая существующую
func (r *Repository) Set(ctx context.Context, key, value string) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3)
		ON CONFLICT (%s) DO UPDATE SET %s = EXCLUDED.%s, %s = EXCLUDED.%s`,
		r.columns.TableName,
		r.columns.Key,
		r.columns.Value,
		r.columns.UpdatedAt,
		r.columns.Key,
		r.columns.Value,
		r.columns.Value,
		r.columns.UpdatedAt,
		r.columns.UpdatedAt,
	)

	if err := r.db.Exec(ctx, query, key, value, time.Now()); err != nil {
		r.Log.Error("set setting failed",
			"error", err,
			"key", key,
		)
		return fmt.Errorf("set setting: %w", err)
	}

	r.Log.Debug("setting updated",
		"key", key,
		"value", value,
	)
	return nil
}
