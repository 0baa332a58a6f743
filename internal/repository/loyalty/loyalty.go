package loyaltyRepo

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
	"github.com/shopspring/decimal"
)

type accountColumns struct {
	TableName string
	ID        string
	UserID    string
	Balance   string
	CreatedAt string
	UpdatedAt string
}

type txColumns struct {
	TableName string
	ID        string
	AccountID string
	OrderID   string
	Amount    string
	Kind      string
	Note      string
	CreatedAt string
}

type reservationColumns struct {
	TableName string
	ID        string
	OrderID   string
	AccountID string
	Amount    string
	Status    string
	CreatedAt string
	UpdatedAt string
}

type Repository struct {
	db           persistence.Persistence
	Log          *slog.Logger
	accounts     accountColumns
	transactions txColumns
	reservations reservationColumns
}

// New создаёт новый репозиторий для бонусных счетов, леджера и резервов
func New(db persistence.Persistence, log *slog.Logger) ports.ILoyaltyRepo {
	accounts := accountColumns{
		TableName: "loyalty_accounts",
		ID:        "id",
		UserID:    "user_id",
		Balance:   "balance",
		CreatedAt: "created_at",
		UpdatedAt: "updated_at",
	}
	transactions := txColumns{
		TableName: "loyalty_transactions",
		ID:        "id",
		AccountID: "account_id",
		OrderID:   "order_id",
		Amount:    "amount",
		Kind:      "kind",
		Note:      "note",
		CreatedAt: "created_at",
	}
	reservations := reservationColumns{
		TableName: "loyalty_reservations",
		ID:        "id",
		OrderID:   "order_id",
		AccountID: "account_id",
		Amount:    "amount",
		Status:    "status",
		CreatedAt: "created_at",
		UpdatedAt: "updated_at",
	}
	return &Repository{
		db:           db,
		Log:          log,
		accounts:     accounts,
		transactions: transactions,
		reservations: reservations,
	}
}

func (r *Repository) accountSelect() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s",
		r.accounts.ID,
		r.accounts.UserID,
		r.accounts.Balance,
		r.accounts.CreatedAt,
		r.accounts.UpdatedAt)
}

// GetOrCreateAccount возвращает счёт пользователя, создавая с нулевым балансом при первом обращении
func (r *Repository) GetOrCreateAccount(ctx context.Context, userID uuid.UUID) (*domain.LoyaltyAccount, error) {
	account, err := r.GetAccountByUserID(ctx, userID)
	if err == nil {
		return account, nil
	}

	now := time.Now()
	insertQuery := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s) VALUES ($1, 0, $2, $3)
		ON CONFLICT (%s) DO UPDATE SET %s = EXCLUDED.%s RETURNING %s`,
		r.accounts.TableName,
		r.accounts.UserID,
		r.accounts.Balance,
		r.accounts.CreatedAt,
		r.accounts.UpdatedAt,
		r.accounts.UserID,
		r.accounts.UpdatedAt,
		r.accounts.UpdatedAt,
		r.accountSelect(),
	)

	var created domain.LoyaltyAccount
	row := r.db.QueryRow(ctx, insertQuery, userID, now, now)
	if err := row.StructScan(&created); err != nil {
		r.Log.Error("create loyalty account failed",
			"error", err,
			"user_id", userID,
		)
		return nil, fmt.Errorf("create loyalty account: %w", err)
	}

	r.Log.Debug("loyalty account created",
		"account_id", created.ID,
		"user_id", userID,
	)
	return &created, nil
}

// GetAccountByUserID получает счёт пользователя
func (r *Repository) GetAccountByUserID(ctx context.Context, userID uuid.UUID) (*domain.LoyaltyAccount, error) {
	var account domain.LoyaltyAccount

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.accountSelect(),
		r.accounts.TableName,
		r.accounts.UserID,
	)

	err := r.db.Get(ctx, &account, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("loyalty account not found: %w", err)
		}
		r.Log.Error("get loyalty account failed",
			"error", err,
			"user_id", userID,
		)
		return nil, fmt.Errorf("get loyalty account: %w", err)
	}

	return &account, nil
}

// AdjustBalance атомарно меняет баланс и пишет запись в леджер в одной транзакции.
// Guard в WHERE не пускает баланс в минус; false если средств не хватает
func (r *Repository) AdjustBalance(ctx context.Context, accountID int64, delta decimal.Decimal, kind domain.LoyaltyTxKind, orderID *int64, note *string) (bool, error) {
	updateQuery := fmt.Sprintf(`UPDATE %s SET %s = %s + $1, %s = $2 WHERE %s = $3 AND %s + $1 >= 0`,
		r.accounts.TableName,
		r.accounts.Balance,
		r.accounts.Balance,
		r.accounts.UpdatedAt,
		r.accounts.ID,
		r.accounts.Balance,
	)

	insertQuery := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5, $6)`,
		r.transactions.TableName,
		r.transactions.AccountID,
		r.transactions.OrderID,
		r.transactions.Amount,
		r.transactions.Kind,
		r.transactions.Note,
		r.transactions.CreatedAt,
	)

	applied := false
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx persistence.Transaction) error {
		rowsAffected, err := tx.ExecWithResult(ctx, updateQuery, delta, time.Now(), accountID)
		if err != nil {
			return fmt.Errorf("adjust balance: %w", err)
		}
		if rowsAffected == 0 {
			// Недостаточно средств, откатываться нечему
			return nil
		}

		if err := tx.Exec(ctx, insertQuery, accountID, orderID, delta, string(kind), note, time.Now()); err != nil {
			return fmt.Errorf("record loyalty transaction: %w", err)
		}

		applied = true
		return nil
	})
	if err != nil {
		r.Log.Error("adjust loyalty balance failed",
			"error", err,
			"account_id", accountID,
			"delta", delta,
			"kind", kind,
		)
		return false, err
	}

	if !applied {
		r.Log.Warn("insufficient loyalty balance",
			"account_id", accountID,
			"delta", delta,
		)
		return false, nil
	}

	r.Log.Debug("loyalty balance adjusted",
		"account_id", accountID,
		"delta", delta,
		"kind", kind,
	)
	return true, nil
}

// ListTransactions возвращает историю операций по счёту, новые первыми
func (r *Repository) ListTransactions(ctx context.Context, accountID int64, limit int) ([]*domain.LoyaltyTransaction, error) {
	var transactions []*domain.LoyaltyTransaction

	query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s, %s, %s FROM %s WHERE %s = $1 ORDER BY %s DESC LIMIT $2`,
		r.transactions.ID,
		r.transactions.AccountID,
		r.transactions.OrderID,
		r.transactions.Amount,
		r.transactions.Kind,
		r.transactions.Note,
		r.transactions.CreatedAt,
		r.transactions.TableName,
		r.transactions.AccountID,
		r.transactions.ID,
	)

	if err := r.db.Select(ctx, &transactions, query, accountID, limit); err != nil {
		r.Log.Error("list loyalty transactions failed",
			"error", err,
			"account_id", accountID,
		)
		return nil, fmt.Errorf("list loyalty transactions: %w", err)
	}

	return transactions, nil
}

// CreateReservation резервирует баллы под заказ, UNIQUE(order_id) защищает от дублей
func (r *Repository) CreateReservation(ctx context.Context, res *domain.LoyaltyReservation) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING %s`,
		r.reservations.TableName,
		r.reservations.OrderID,
		r.reservations.AccountID,
		r.reservations.Amount,
		r.reservations.Status,
		r.reservations.CreatedAt,
		r.reservations.UpdatedAt,
		r.reservations.ID,
	)

	row := r.db.QueryRow(ctx, query,
		res.OrderID,
		res.AccountID,
		res.Amount,
		string(res.Status),
		res.CreatedAt,
		res.UpdatedAt,
	)
	if err := row.Scan(&res.ID); err != nil {
		r.Log.Error("create loyalty reservation failed",
			"error", err,
			"order_id", res.OrderID,
			"account_id", res.AccountID,
		)
		return fmt.Errorf("create loyalty reservation: %w", err)
	}

	r.Log.Debug("loyalty reservation created",
		"order_id", res.OrderID,
		"amount", res.Amount,
	)
	return nil
}

// GetReservationByOrderID получает резерв баллов по заказу
func (r *Repository) GetReservationByOrderID(ctx context.Context, orderID int64) (*domain.LoyaltyReservation, error) {
	var res domain.LoyaltyReservation

	query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s, %s, %s FROM %s WHERE %s = $1`,
		r.reservations.ID,
		r.reservations.OrderID,
		r.reservations.AccountID,
		r.reservations.Amount,
		r.reservations.Status,
		r.reservations.CreatedAt,
		r.reservations.UpdatedAt,
		r.reservations.TableName,
		r.reservations.OrderID,
	)

	err := r.db.Get(ctx, &res, query, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("loyalty reservation not found: %w", err)
		}
		r.Log.Error("get loyalty reservation failed",
			"error", err,
			"order_id", orderID,
		)
		return nil, fmt.Errorf("get loyalty reservation: %w", err)
	}

	return &res, nil
}

// UpdateReservationStatus переводит резерв из from в to; false если статус уже другой
func (r *Repository) UpdateReservationStatus(ctx context.Context, orderID int64, from, to domain.RedemptionStatus) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2 WHERE %s = $3 AND %s = $4`,
		r.reservations.TableName,
		r.reservations.Status,
		r.reservations.UpdatedAt,
		r.reservations.OrderID,
		r.reservations.Status,
	)

	rowsAffected, err := r.db.ExecWithResult(ctx, query, string(to), time.Now(), orderID, string(from))
	if err != nil {
		r.Log.Error("update loyalty reservation status failed",
			"error", err,
			"order_id", orderID,
			"from", from,
			"to", to,
		)
		return false, fmt.Errorf("update loyalty reservation status: %w", err)
	}

	if rowsAffected == 0 {
		r.Log.Debug("loyalty reservation status unchanged",
			"order_id", orderID,
			"from", from,
			"to", to,
		)
		return false, nil
	}

	r.Log.Debug("loyalty reservation status updated",
		"order_id", orderID,
		"from", from,
		"to", to,
	)
	return true, nil
}
