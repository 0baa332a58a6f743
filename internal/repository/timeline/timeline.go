package timelineRepo

import (
	"context"
	"fmt"

	ports "github.com/admin/tg-bots/shop-bot/internal/ports/repository"

	"log/slog"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/ports/persistence"
)

type timelineColumns struct {
	TableName string
	ID        string
	OrderID   string
	Status    string
	Note      string
	CreatedAt string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns timelineColumns
}

// New создаёт новый репозиторий для истории заказов (append-only лог)
func New(db persistence.Persistence, log *slog.Logger) ports.ITimelineRepo {
	cols := timelineColumns{
		TableName: "order_timeline",
		ID:        "id",
		OrderID:   "order_id",
		Status:    "status",
		Note:      "note",
		CreatedAt: "created_at",
	}
	return &Repository{
		db:      db,
		Log:     log,
		columns: cols,
	}
}

// insertQuery общий INSERT для Create и CreateTx
func (r *Repository) insertQuery() string {
	return fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s) VALUES ($1, $2, $3, $4)`,
		r.columns.TableName,
		r.columns.OrderID,
		r.columns.Status,
		r.columns.Note,
		r.columns.CreatedAt,
	)
}

// Create добавляет запись в историю заказа
func (r *Repository) Create(ctx context.Context, entry *domain.TimelineEntry) error {
	err := r.db.Exec(ctx, r.insertQuery(),
		entry.OrderID,
		string(entry.Status),
		entry.Note,
		entry.CreatedAt,
	)
	if err != nil {
		r.Log.Error("create timeline entry failed",
			"error", err,
			"order_id", entry.OrderID,
			"status", entry.Status,
		)
		return fmt.Errorf("create timeline entry: %w", err)
	}

	r.Log.Debug("timeline entry created",
		"order_id", entry.OrderID,
		"status", entry.Status,
	)
	return nil
}

// CreateTx добавляет запись в историю внутри открытой транзакции
func (r *Repository) CreateTx(ctx context.Context, tx persistence.Transaction, entry *domain.TimelineEntry) error {
	err := tx.Exec(ctx, r.insertQuery(),
		entry.OrderID,
		string(entry.Status),
		entry.Note,
		entry.CreatedAt,
	)
	if err != nil {
		r.Log.Error("create timeline entry in tx failed",
			"error", err,
			"order_id", entry.OrderID,
			"status", entry.Status,
		)
		return fmt.Errorf("create timeline entry: %w", err)
	}

	return nil
}

// ListByOrderID возвращает историю заказа в порядке добавления
func (r *Repository) ListByOrderID(ctx context.Context, orderID int64) ([]*domain.TimelineEntry, error) {
	var entries []*domain.TimelineEntry

	query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s FROM %s WHERE %s = $1 ORDER BY %s`,
		r.columns.ID,
		r.columns.OrderID,
		r.columns.Status,
		r.columns.Note,
		r.columns.CreatedAt,
		r.columns.TableName,
		r.columns.OrderID,
		r.columns.ID,
	)

	if err := r.db.Select(ctx, &entries, query, orderID); err != nil {
		r.Log.Error("list timeline entries failed",
			"error", err,
			"order_id", orderID,
		)
		return nil, fmt.Errorf("list timeline entries: %w", err)
	}

	return entries, nil
}
