package cartRepo

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

type cartColumns struct {
	TableName string
	ID        string
	UserID    string
	UpdatedAt string
}

type itemColumns struct {
	TableName string
	ID        string
	CartID    string
	ProductID string
	Quantity  string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns cartColumns
	items   itemColumns
}

// New создаёт новый репозиторий для работы с корзинами
func New(db persistence.Persistence, log *slog.Logger) ports.ICartRepo {
	cols := cartColumns{
		TableName: "shopping_carts",
		ID:        "id",
		UserID:    "user_id",
		UpdatedAt: "updated_at",
	}
	items := itemColumns{
		TableName: "cart_items",
		ID:        "id",
		CartID:    "cart_id",
		ProductID: "product_id",
		Quantity:  "quantity",
	}
	return &Repository{
		db:      db,
		Log:     log,
		columns: cols,
		items:   items,
	}
}

// GetOrCreate возвращает корзину пользователя, создавая при первом обращении
func (r *Repository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	var cart domain.Cart

	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s WHERE %s = $1`,
		r.columns.ID,
		r.columns.UserID,
		r.columns.UpdatedAt,
		r.columns.TableName,
		r.columns.UserID,
	)

	err := r.db.Get(ctx, &cart, query, userID)
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		r.Log.Error("get cart failed",
			"error", err,
			"user_id", userID,
		)
		return nil, fmt.Errorf("get cart: %w", err)
	}

	// Корзины нет, создаём. ON CONFLICT на случай гонки двух обновлений
	insertQuery := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2)
		ON CONFLICT (%s) DO UPDATE SET %s = EXCLUDED.%s RETURNING %s, %s, %s`,
		r.columns.TableName,
		r.columns.UserID,
		r.columns.UpdatedAt,
		r.columns.UserID,
		r.columns.UpdatedAt,
		r.columns.UpdatedAt,
		r.columns.ID,
		r.columns.UserID,
		r.columns.UpdatedAt,
	)

	row := r.db.QueryRow(ctx, insertQuery, userID, time.Now())
	if err := row.StructScan(&cart); err != nil {
		r.Log.Error("create cart failed",
			"error", err,
			"user_id", userID,
		)
		return nil, fmt.Errorf("create cart: %w", err)
	}

	r.Log.Debug("cart created", "cart_id", cart.ID, "user_id", userID)
	return &cart, nil
}

// AddItem добавляет товар или увеличивает количество существующей позиции
func (r *Repository) AddItem(ctx context.Context, cartID, productID int64, qty int) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3)
		ON CONFLICT (%s, %s) DO UPDATE SET %s = %s.%s + EXCLUDED.%s`,
		r.items.TableName,
		r.items.CartID,
		r.items.ProductID,
		r.items.Quantity,
		r.items.CartID,
		r.items.ProductID,
		r.items.Quantity,
		r.items.TableName,
		r.items.Quantity,
		r.items.Quantity,
	)

	if err := r.db.Exec(ctx, query, cartID, productID, qty); err != nil {
		r.Log.Error("add cart item failed",
			"error", err,
			"cart_id", cartID,
			"product_id", productID,
		)
		return fmt.Errorf("add cart item: %w", err)
	}

	r.Log.Debug("cart item added",
		"cart_id", cartID,
		"product_id", productID,
		"qty", qty,
	)
	return r.touch(ctx, cartID)
}

// SetItemQuantity задаёт количество позиции; qty <= 0 удаляет позицию
func (r *Repository) SetItemQuantity(ctx context.Context, cartID, productID int64, qty int) error {
	if qty <= 0 {
		return r.RemoveItem(ctx, cartID, productID)
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3)
		ON CONFLICT (%s, %s) DO UPDATE SET %s = EXCLUDED.%s`,
		r.items.TableName,
		r.items.CartID,
		r.items.ProductID,
		r.items.Quantity,
		r.items.CartID,
		r.items.ProductID,
		r.items.Quantity,
		r.items.Quantity,
	)

	if err := r.db.Exec(ctx, query, cartID, productID, qty); err != nil {
		r.Log.Error("set cart item quantity failed",
			"error", err,
			"cart_id", cartID,
			"product_id", productID,
		)
		return fmt.Errorf("set cart item quantity: %w", err)
	}

	return r.touch(ctx, cartID)
}

// RemoveItem удаляет позицию из корзины
func (r *Repository) RemoveItem(ctx context.Context, cartID, productID int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		r.items.TableName,
		r.items.CartID,
		r.items.ProductID,
	)

	if err := r.db.Exec(ctx, query, cartID, productID); err != nil {
		r.Log.Error("remove cart item failed",
			"error", err,
			"cart_id", cartID,
			"product_id", productID,
		)
		return fmt.Errorf("remove cart item: %w", err)
	}

	return r.touch(ctx, cartID)
}

// ListItems возвращает позиции корзины вместе с данными товаров
func (r *Repository) ListItems(ctx context.Context, cartID int64) ([]*domain.CartItemView, error) {
	var items []*domain.CartItemView

	query := fmt.Sprintf(`SELECT i.%s, i.%s, i.%s, i.%s,
		p.name AS product_name, p.price, p.currency, p.active
		FROM %s i JOIN products p ON p.id = i.%s
		WHERE i.%s = $1 ORDER BY i.%s`,
		r.items.ID,
		r.items.CartID,
		r.items.ProductID,
		r.items.Quantity,
		r.items.TableName,
		r.items.ProductID,
		r.items.CartID,
		r.items.ID,
	)

	if err := r.db.Select(ctx, &items, query, cartID); err != nil {
		r.Log.Error("list cart items failed",
			"error", err,
			"cart_id", cartID,
		)
		return nil, fmt.Errorf("list cart items: %w", err)
	}

	return items, nil
}

// Clear очищает корзину после оформления заказа
func (r *Repository) Clear(ctx context.Context, cartID int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		r.items.TableName,
		r.items.CartID,
	)

	if err := r.db.Exec(ctx, query, cartID); err != nil {
		r.Log.Error("clear cart failed",
			"error", err,
			"cart_id", cartID,
		)
		return fmt.Errorf("clear cart: %w", err)
	}

	r.Log.Debug("cart cleared", "cart_id", cartID)
	return r.touch(ctx, cartID)
}

// touch обновляет updated_at корзины
func (r *Repository) touch(ctx context.Context, cartID int64) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1 WHERE %s = $2`,
		r.columns.TableName,
		r.columns.UpdatedAt,
		r.columns.ID,
	)

	if err := r.db.Exec(ctx, query, time.Now(), cartID); err != nil {
		r.Log.Warn("touch cart failed", "error", err, "cart_id", cartID)
	}
	return nil
}
