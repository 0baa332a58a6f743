package productRepo

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

type productColumns struct {
	TableName   string
	ID          string
	Name        string
	Description string
	Price       string
	Currency    string
	Active      string
	Stock       string
	ContentKey  string
	ImageKey    string
	ImageFileID string
	Question    string
	Position    string
	CreatedAt   string
	UpdatedAt   string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns productColumns
}

// New создаёт новый репозиторий для работы с каталогом
func New(db persistence.Persistence, log *slog.Logger) ports.IProductRepo {
	cols := productColumns{
		TableName:   "products",
		ID:          "id",
		Name:        "name",
		Description: "description",
		Price:       "price",
		Currency:    "currency",
		Active:      "active",
		Stock:       "stock",
		ContentKey:  "content_key",
		ImageKey:    "image_key",
		ImageFileID: "image_file_id",
		Question:    "question",
		Position:    "position",
		CreatedAt:   "created_at",
		UpdatedAt:   "updated_at",
	}
	return &Repository{
		db:      db,
		Log:     log,
		columns: cols,
	}
}

// allColumns возвращает строку со всеми колонками (14 колонок)
func (r *Repository) allColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		r.columns.ID,
		r.columns.Name,
		r.columns.Description,
		r.columns.Price,
		r.columns.Currency,
		r.columns.Active,
		r.columns.Stock,
		r.columns.ContentKey,
		r.columns.ImageKey,
		r.columns.ImageFileID,
		r.columns.Question,
		r.columns.Position,
		r.columns.CreatedAt,
		r.columns.UpdatedAt)
}

// Create создаёт новый товар, ID заполняется из БД
func (r *Repository) Create(ctx context.Context, product *domain.Product) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING %s`,
		r.columns.TableName,
		r.columns.Name,
		r.columns.Description,
		r.columns.Price,
		r.columns.Currency,
		r.columns.Active,
		r.columns.Stock,
		r.columns.ContentKey,
		r.columns.ImageKey,
		r.columns.Question,
		r.columns.Position,
		r.columns.CreatedAt,
		r.columns.UpdatedAt,
		r.columns.ID,
	)

	row := r.db.QueryRow(ctx, query,
		product.Name,
		product.Description,
		product.Price,
		product.Currency,
		product.Active,
		product.Stock,
		product.ContentKey,
		product.ImageKey,
		product.Question,
		product.Position,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err := row.Scan(&product.ID); err != nil {
		r.Log.Error("create product failed",
			"error", err,
			"name", product.Name,
		)
		return fmt.Errorf("create product: %w", err)
	}

	r.Log.Debug("product created",
		"product_id", product.ID,
		"name", product.Name,
	)
	return nil
}

// GetByID получает товар по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.ID,
	)

	err := r.db.Get(ctx, &product, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.Log.Warn("product not found", "product_id", id)
			return nil, fmt.Errorf("product not found: %w", err)
		}
		r.Log.Error("get product failed",
			"error", err,
			"product_id", id,
		)
		return nil, fmt.Errorf("get product: %w", err)
	}

	return &product, nil
}

// ListActive возвращает страницу активных товаров в порядке позиции
func (r *Repository) ListActive(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	var products []*domain.Product

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = TRUE ORDER BY %s, %s LIMIT $1 OFFSET $2`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.Active,
		r.columns.Position,
		r.columns.ID,
	)

	if err := r.db.Select(ctx, &products, query, limit, offset); err != nil {
		r.Log.Error("list active products failed", "error", err)
		return nil, fmt.Errorf("list active products: %w", err)
	}

	return products, nil
}

// ListAll возвращает страницу всех товаров, включая выключенные (админский обзор)
func (r *Repository) ListAll(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	var products []*domain.Product

	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s, %s LIMIT $1 OFFSET $2`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.Position,
		r.columns.ID,
	)

	if err := r.db.Select(ctx, &products, query, limit, offset); err != nil {
		r.Log.Error("list products failed", "error", err)
		return nil, fmt.Errorf("list products: %w", err)
	}

	return products, nil
}

// CountActive возвращает количество активных товаров (для пагинации каталога)
func (r *Repository) CountActive(ctx context.Context) (int, error) {
	var count int

	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = TRUE`,
		r.columns.TableName,
		r.columns.Active,
	)

	if err := r.db.Get(ctx, &count, query); err != nil {
		r.Log.Error("count active products failed", "error", err)
		return 0, fmt.Errorf("count active products: %w", err)
	}

	return count, nil
}

// Update обновляет товар
func (r *Repository) Update(ctx context.Context, product *domain.Product) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8, %s = $9, %s = $10 WHERE %s = $11`,
		r.columns.TableName,
		r.columns.Name,
		r.columns.Description,
		r.columns.Price,
		r.columns.Currency,
		r.columns.Stock,
		r.columns.ContentKey,
		r.columns.ImageKey,
		r.columns.Question,
		r.columns.Position,
		r.columns.UpdatedAt,
		r.columns.ID,
	)

	err := r.db.Exec(ctx, query,
		product.Name,
		product.Description,
		product.Price,
		product.Currency,
		product.Stock,
		product.ContentKey,
		product.ImageKey,
		product.Question,
		product.Position,
		time.Now(),
		product.ID,
	)
	if err != nil {
		r.Log.Error("update product failed",
			"error", err,
			"product_id", product.ID,
		)
		return fmt.Errorf("update product: %w", err)
	}

	r.Log.Debug("product updated", "product_id", product.ID)
	return nil
}

// SetActive включает или выключает товар в каталоге
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2 WHERE %s = $3`,
		r.columns.TableName,
		r.columns.Active,
		r.columns.UpdatedAt,
		r.columns.ID,
	)

	if err := r.db.Exec(ctx, query, active, time.Now(), id); err != nil {
		r.Log.Error("set product active flag failed",
			"error", err,
			"product_id", id,
		)
		return fmt.Errorf("set product active flag: %w", err)
	}

	r.Log.Debug("product active flag updated", "product_id", id, "active", active)
	return nil
}

// SetStock выставляет остаток товара; nil снимает лимит
func (r *Repository) SetStock(ctx context.Context, id int64, stock *int) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2 WHERE %s = $3`,
		r.columns.TableName,
		r.columns.Stock,
		r.columns.UpdatedAt,
		r.columns.ID,
	)

	if err := r.db.Exec(ctx, query, stock, time.Now(), id); err != nil {
		r.Log.Error("set product stock failed",
			"error", err,
			"product_id", id,
		)
		return fmt.Errorf("set product stock: %w", err)
	}

	r.Log.Debug("product stock updated", "product_id", id)
	return nil
}

// SetImageFileID запоминает telegram file_id картинки после первой отправки,
// чтобы не перекачивать байты из S3 на каждый показ карточки
func (r *Repository) SetImageFileID(ctx context.Context, id int64, fileID string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2 WHERE %s = $3`,
		r.columns.TableName,
		r.columns.ImageFileID,
		r.columns.UpdatedAt,
		r.columns.ID,
	)

	if err := r.db.Exec(ctx, query, fileID, time.Now(), id); err != nil {
		r.Log.Error("set product image file_id failed",
			"error", err,
			"product_id", id,
		)
		return fmt.Errorf("set product image file_id: %w", err)
	}

	return nil
}

// DecrementStock атомарно списывает остаток; false если остатка не хватает.
// У товаров без лимита (stock IS NULL) остаток остаётся NULL
func (r *Repository) DecrementStock(ctx context.Context, id int64, qty int) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = %s - $1, %s = $2 WHERE %s = $3 AND (%s IS NULL OR %s >= $1)`,
		r.columns.TableName,
		r.columns.Stock,
		r.columns.Stock,
		r.columns.UpdatedAt,
		r.columns.ID,
		r.columns.Stock,
		r.columns.Stock,
	)

	rowsAffected, err := r.db.ExecWithResult(ctx, query, qty, time.Now(), id)
	if err != nil {
		r.Log.Error("decrement stock failed",
			"error", err,
			"product_id", id,
			"qty", qty,
		)
		return false, fmt.Errorf("decrement stock: %w", err)
	}

	if rowsAffected == 0 {
		r.Log.Warn("not enough stock", "product_id", id, "qty", qty)
		return false, nil
	}

	return true, nil
}

// RestoreStock возвращает остаток после отмены или истечения заказа
func (r *Repository) RestoreStock(ctx context.Context, id int64, qty int) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = %s + $1, %s = $2 WHERE %s = $3 AND %s IS NOT NULL`,
		r.columns.TableName,
		r.columns.Stock,
		r.columns.Stock,
		r.columns.UpdatedAt,
		r.columns.ID,
		r.columns.Stock,
	)

	if err := r.db.Exec(ctx, query, qty, time.Now(), id); err != nil {
		r.Log.Error("restore stock failed",
			"error", err,
			"product_id", id,
			"qty", qty,
		)
		return fmt.Errorf("restore stock: %w", err)
	}

	r.Log.Debug("stock restored", "product_id", id, "qty", qty)
	return nil
}
