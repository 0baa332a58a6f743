package orderRepo

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

type orderColumns struct {
	TableName        string
	ID               string
	PublicID         string
	UserID           string
	ProductID        string
	Quantity         string
	Status           string
	TotalAmount      string
	Currency         string
	TrackID          string
	PayLink          string
	ChargeID         string
	PaymentExpiresAt string
	FulfilledAt      string
	ExtraAttrs       string
	CreatedAt        string
	UpdatedAt        string
}

type answerColumns struct {
	TableName string
	ID        string
	OrderID   string
	Question  string
	Answer    string
	CreatedAt string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns orderColumns
	answers answerColumns
}

// New создаёт новый репозиторий для работы с заказами
func New(db persistence.Persistence, log *slog.Logger) ports.IOrderRepo {
	cols := orderColumns{
		TableName:        "orders",
		ID:               "id",
		PublicID:         "public_id",
		UserID:           "user_id",
		ProductID:        "product_id",
		Quantity:         "quantity",
		Status:           "status",
		TotalAmount:      "total_amount",
		Currency:         "currency",
		TrackID:          "track_id",
		PayLink:          "pay_link",
		ChargeID:         "charge_id",
		PaymentExpiresAt: "payment_expires_at",
		FulfilledAt:      "fulfilled_at",
		ExtraAttrs:       "extra_attrs",
		CreatedAt:        "created_at",
		UpdatedAt:        "updated_at",
	}
	ans := answerColumns{
		TableName: "order_answers",
		ID:        "id",
		OrderID:   "order_id",
		Question:  "question",
		Answer:    "answer",
		CreatedAt: "created_at",
	}
	return &Repository{
		db:      db,
		Log:     log,
		columns: cols,
		answers: ans,
	}
}

// allColumns возвращает строку со всеми колонками (16 колонок)
func (r *Repository) allColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		r.columns.ID,
		r.columns.PublicID,
		r.columns.UserID,
		r.columns.ProductID,
		r.columns.Quantity,
		r.columns.Status,
		r.columns.TotalAmount,
		r.columns.Currency,
		r.columns.TrackID,
		r.columns.PayLink,
		r.columns.ChargeID,
		r.columns.PaymentExpiresAt,
		r.columns.FulfilledAt,
		r.columns.ExtraAttrs,
		r.columns.CreatedAt,
		r.columns.UpdatedAt)
}

// insertQuery общий INSERT для Create и CreateTx
func (r *Repository) insertQuery() string {
	return fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15) RETURNING %s`,
		r.columns.TableName,
		r.columns.PublicID,
		r.columns.UserID,
		r.columns.ProductID,
		r.columns.Quantity,
		r.columns.Status,
		r.columns.TotalAmount,
		r.columns.Currency,
		r.columns.TrackID,
		r.columns.PayLink,
		r.columns.ChargeID,
		r.columns.PaymentExpiresAt,
		r.columns.FulfilledAt,
		r.columns.ExtraAttrs,
		r.columns.CreatedAt,
		r.columns.UpdatedAt,
		r.columns.ID,
	)
}

// Create создаёт новый заказ, ID заполняется из БД
func (r *Repository) Create(ctx context.Context, order *domain.Order) error {
	attrsValue, err := order.ExtraAttrs.Value()
	if err != nil {
		r.Log.Error("marshal order extra_attrs failed",
			"error", err,
			"public_id", order.PublicID,
		)
		return fmt.Errorf("marshal extra_attrs: %w", err)
	}

	row := r.db.QueryRow(ctx, r.insertQuery(),
		order.PublicID,
		order.UserID,
		order.ProductID,
		order.Quantity,
		string(order.Status),
		order.TotalAmount,
		order.Currency,
		order.TrackID,
		order.PayLink,
		order.ChargeID,
		order.PaymentExpiresAt,
		order.FulfilledAt,
		attrsValue,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err := row.Scan(&order.ID); err != nil {
		r.Log.Error("create order failed",
			"error", err,
			"public_id", order.PublicID,
			"user_id", order.UserID,
		)
		return fmt.Errorf("create order: %w", err)
	}

	r.Log.Debug("order created",
		"order_id", order.ID,
		"public_id", order.PublicID,
		"user_id", order.UserID,
	)
	return nil
}

// CreateTx создаёт заказ внутри открытой транзакции
func (r *Repository) CreateTx(ctx context.Context, tx persistence.Transaction, order *domain.Order) error {
	attrsValue, err := order.ExtraAttrs.Value()
	if err != nil {
		return fmt.Errorf("marshal extra_attrs: %w", err)
	}

	row := tx.QueryRow(ctx, r.insertQuery(),
		order.PublicID,
		order.UserID,
		order.ProductID,
		order.Quantity,
		string(order.Status),
		order.TotalAmount,
		order.Currency,
		order.TrackID,
		order.PayLink,
		order.ChargeID,
		order.PaymentExpiresAt,
		order.FulfilledAt,
		attrsValue,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err := row.Scan(&order.ID); err != nil {
		r.Log.Error("create order in tx failed",
			"error", err,
			"public_id", order.PublicID,
		)
		return fmt.Errorf("create order: %w", err)
	}

	return nil
}

// GetByID получает заказ по внутреннему ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var order domain.Order

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.ID,
	)

	err := r.db.Get(ctx, &order, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.Log.Warn("order not found", "order_id", id)
			return nil, fmt.Errorf("order not found: %w", err)
		}
		r.Log.Error("get order failed",
			"error", err,
			"order_id", id,
		)
		return nil, fmt.Errorf("get order: %w", err)
	}

	return &order, nil
}

// GetByPublicID получает заказ по публичному UUID
func (r *Repository) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*domain.Order, error) {
	var order domain.Order

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.PublicID,
	)

	err := r.db.Get(ctx, &order, query, publicID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.Log.Warn("order not found by public_id", "public_id", publicID)
			return nil, fmt.Errorf("order not found: %w", err)
		}
		r.Log.Error("get order by public_id failed",
			"error", err,
			"public_id", publicID,
		)
		return nil, fmt.Errorf("get order: %w", err)
	}

	return &order, nil
}

// ListByUser возвращает заказы пользователя, новые первыми
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Order, error) {
	var orders []*domain.Order

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s DESC LIMIT $2`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.UserID,
		r.columns.CreatedAt,
	)

	if err := r.db.Select(ctx, &orders, query, userID, limit); err != nil {
		r.Log.Error("list orders by user failed",
			"error", err,
			"user_id", userID,
		)
		return nil, fmt.Errorf("list orders: %w", err)
	}

	return orders, nil
}

// ListRecent возвращает последние заказы магазина (админский обзор)
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]*domain.Order, error) {
	var orders []*domain.Order

	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s DESC LIMIT $1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.CreatedAt,
	)

	if err := r.db.Select(ctx, &orders, query, limit); err != nil {
		r.Log.Error("list recent orders failed", "error", err)
		return nil, fmt.Errorf("list recent orders: %w", err)
	}

	return orders, nil
}

// ListAwaitingPayment возвращает заказы со счётом у провайдера для поллера, старые первыми
func (r *Repository) ListAwaitingPayment(ctx context.Context, batchSize int) ([]*domain.Order, error) {
	var orders []*domain.Order

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s IS NOT NULL ORDER BY %s LIMIT $2`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.Status,
		r.columns.TrackID,
		r.columns.CreatedAt,
	)

	if err := r.db.Select(ctx, &orders, query, string(domain.OrderStatusAwaitingPayment), batchSize); err != nil {
		r.Log.Error("list awaiting payment orders failed", "error", err)
		return nil, fmt.Errorf("list awaiting payment orders: %w", err)
	}

	return orders, nil
}

// ListPaymentExpired возвращает заказы с истёкшим сроком оплаты для свипера
func (r *Repository) ListPaymentExpired(ctx context.Context, now time.Time, batchSize int) ([]*domain.Order, error) {
	var orders []*domain.Order

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s IS NOT NULL AND %s < $2 ORDER BY %s LIMIT $3`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.Status,
		r.columns.PaymentExpiresAt,
		r.columns.PaymentExpiresAt,
		r.columns.PaymentExpiresAt,
	)

	if err := r.db.Select(ctx, &orders, query, string(domain.OrderStatusAwaitingPayment), now, batchSize); err != nil {
		r.Log.Error("list payment expired orders failed", "error", err)
		return nil, fmt.Errorf("list payment expired orders: %w", err)
	}

	return orders, nil
}

// UpdateStatus переводит заказ из from в to; false если статус уже другой.
// Guard в WHERE защищает от гонки poller/handler/admin
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2 WHERE %s = $3 AND %s = $4`,
		r.columns.TableName,
		r.columns.Status,
		r.columns.UpdatedAt,
		r.columns.ID,
		r.columns.Status,
	)

	rowsAffected, err := r.db.ExecWithResult(ctx, query, string(to), time.Now(), id, string(from))
	if err != nil {
		r.Log.Error("update order status failed",
			"error", err,
			"order_id", id,
			"from", from,
			"to", to,
		)
		return false, fmt.Errorf("update order status: %w", err)
	}

	if rowsAffected == 0 {
		r.Log.Debug("order status unchanged, concurrent update or wrong status",
			"order_id", id,
			"from", from,
			"to", to,
		)
		return false, nil
	}

	r.Log.Debug("order status updated",
		"order_id", id,
		"from", from,
		"to", to,
	)
	return true, nil
}

// SetInvoice сохраняет track_id, ссылку на оплату и метаданные провайдера
func (r *Repository) SetInvoice(ctx context.Context, id int64, trackID, payLink string, attrs domain.ExtraAttrs) error {
	attrsValue, err := attrs.Value()
	if err != nil {
		return fmt.Errorf("marshal extra_attrs: %w", err)
	}

	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2, %s = $3, %s = $4 WHERE %s = $5`,
		r.columns.TableName,
		r.columns.TrackID,
		r.columns.PayLink,
		r.columns.ExtraAttrs,
		r.columns.UpdatedAt,
		r.columns.ID,
	)

	if err := r.db.Exec(ctx, query, trackID, payLink, attrsValue, time.Now(), id); err != nil {
		r.Log.Error("set invoice failed",
			"error", err,
			"order_id", id,
			"track_id", trackID,
		)
		return fmt.Errorf("set invoice: %w", err)
	}

	r.Log.Debug("invoice set",
		"order_id", id,
		"track_id", trackID,
	)
	return nil
}

// SetChargeID сохраняет хэш первой транзакции оплаты
func (r *Repository) SetChargeID(ctx context.Context, id int64, chargeID string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2 WHERE %s = $3`,
		r.columns.TableName,
		r.columns.ChargeID,
		r.columns.UpdatedAt,
		r.columns.ID,
	)

	if err := r.db.Exec(ctx, query, chargeID, time.Now(), id); err != nil {
		r.Log.Error("set charge_id failed",
			"error", err,
			"order_id", id,
		)
		return fmt.Errorf("set charge_id: %w", err)
	}

	return nil
}

// SetPaymentExpiresAt задаёт новый срок оплаты (переоткрытие заказа)
func (r *Repository) SetPaymentExpiresAt(ctx context.Context, id int64, expiresAt time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2 WHERE %s = $3`,
		r.columns.TableName,
		r.columns.PaymentExpiresAt,
		r.columns.UpdatedAt,
		r.columns.ID,
	)

	if err := r.db.Exec(ctx, query, expiresAt, time.Now(), id); err != nil {
		r.Log.Error("set payment_expires_at failed",
			"error", err,
			"order_id", id,
		)
		return fmt.Errorf("set payment_expires_at: %w", err)
	}

	return nil
}

// ClearInvoice сбрасывает устаревший счёт, чтобы выставить новый
func (r *Repository) ClearInvoice(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = NULL, %s = NULL, %s = $1 WHERE %s = $2`,
		r.columns.TableName,
		r.columns.TrackID,
		r.columns.PayLink,
		r.columns.UpdatedAt,
		r.columns.ID,
	)

	if err := r.db.Exec(ctx, query, time.Now(), id); err != nil {
		r.Log.Error("clear invoice failed",
			"error", err,
			"order_id", id,
		)
		return fmt.Errorf("clear invoice: %w", err)
	}

	r.Log.Debug("invoice cleared", "order_id", id)
	return nil
}

// MarkFulfilled ставит отметку о выдаче; false если заказ уже выдан или не оплачен
func (r *Repository) MarkFulfilled(ctx context.Context, id int64) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2 WHERE %s = $3 AND %s = $4 AND %s IS NULL`,
		r.columns.TableName,
		r.columns.FulfilledAt,
		r.columns.UpdatedAt,
		r.columns.ID,
		r.columns.Status,
		r.columns.FulfilledAt,
	)

	now := time.Now()
	rowsAffected, err := r.db.ExecWithResult(ctx, query, now, now, id, string(domain.OrderStatusPaid))
	if err != nil {
		r.Log.Error("mark order fulfilled failed",
			"error", err,
			"order_id", id,
		)
		return false, fmt.Errorf("mark order fulfilled: %w", err)
	}

	if rowsAffected == 0 {
		r.Log.Debug("order already fulfilled or not paid", "order_id", id)
		return false, nil
	}

	r.Log.Debug("order marked fulfilled", "order_id", id)
	return true, nil
}

// CreateAnswer сохраняет ответ покупателя на вопрос товара
func (r *Repository) CreateAnswer(ctx context.Context, answer *domain.OrderAnswer) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s) VALUES ($1, $2, $3, $4)`,
		r.answers.TableName,
		r.answers.OrderID,
		r.answers.Question,
		r.answers.Answer,
		r.answers.CreatedAt,
	)

	if err := r.db.Exec(ctx, query, answer.OrderID, answer.Question, answer.Answer, answer.CreatedAt); err != nil {
		r.Log.Error("create order answer failed",
			"error", err,
			"order_id", answer.OrderID,
		)
		return fmt.Errorf("create order answer: %w", err)
	}

	return nil
}

// ListAnswers возвращает ответы покупателя по заказу
func (r *Repository) ListAnswers(ctx context.Context, orderID int64) ([]*domain.OrderAnswer, error) {
	var answers []*domain.OrderAnswer

	query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s FROM %s WHERE %s = $1 ORDER BY %s`,
		r.answers.ID,
		r.answers.OrderID,
		r.answers.Question,
		r.answers.Answer,
		r.answers.CreatedAt,
		r.answers.TableName,
		r.answers.OrderID,
		r.answers.ID,
	)

	if err := r.db.Select(ctx, &answers, query, orderID); err != nil {
		r.Log.Error("list order answers failed",
			"error", err,
			"order_id", orderID,
		)
		return nil, fmt.Errorf("list order answers: %w", err)
	}

	return answers, nil
}

// BeginTx начинает транзакцию (создание заказа + записи истории атомарно)
func (r *Repository) BeginTx(ctx context.Context) (persistence.Transaction, error) {
	return r.db.BeginTx(ctx)
}

// WithTransaction выполняет функцию в транзакции
func (r *Repository) WithTransaction(ctx context.Context, fn func(context.Context, persistence.Transaction) error) error {
	return r.db.WithTransaction(ctx, fn)
}
