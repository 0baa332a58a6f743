package couponRepo

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

type couponColumns struct {
	TableName      string
	ID             string
	Code           string
	DiscountType   string
	DiscountValue  string
	MinOrderAmount string
	MaxRedemptions string
	PerUserLimit   string
	ValidFrom      string
	ValidUntil     string
	Active         string
	CreatedAt      string
}

type redemptionColumns struct {
	TableName string
	ID        string
	CouponID  string
	UserID    string
	OrderID   string
	Status    string
	CreatedAt string
	UpdatedAt string
}

type Repository struct {
	db          persistence.Persistence
	Log         *slog.Logger
	columns     couponColumns
	redemptions redemptionColumns
}

// New создаёт новый репозиторий для купонов и их применений
func New(db persistence.Persistence, log *slog.Logger) ports.ICouponRepo {
	cols := couponColumns{
		TableName:      "coupons",
		ID:             "id",
		Code:           "code",
		DiscountType:   "discount_type",
		DiscountValue:  "discount_value",
		MinOrderAmount: "min_order_amount",
		MaxRedemptions: "max_redemptions",
		PerUserLimit:   "per_user_limit",
		ValidFrom:      "valid_from",
		ValidUntil:     "valid_until",
		Active:         "active",
		CreatedAt:      "created_at",
	}
	reds := redemptionColumns{
		TableName: "coupon_redemptions",
		ID:        "id",
		CouponID:  "coupon_id",
		UserID:    "user_id",
		OrderID:   "order_id",
		Status:    "status",
		CreatedAt: "created_at",
		UpdatedAt: "updated_at",
	}
	return &Repository{
		db:          db,
		Log:         log,
		columns:     cols,
		redemptions: reds,
	}
}

// allColumns возвращает строку со всеми колонками купона (11 колонок)
func (r *Repository) allColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		r.columns.ID,
		r.columns.Code,
		r.columns.DiscountType,
		r.columns.DiscountValue,
		r.columns.MinOrderAmount,
		r.columns.MaxRedemptions,
		r.columns.PerUserLimit,
		r.columns.ValidFrom,
		r.columns.ValidUntil,
		r.columns.Active,
		r.columns.CreatedAt)
}

// Create создаёт новый купон, ID заполняется из БД
func (r *Repository) Create(ctx context.Context, coupon *domain.Coupon) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING %s`,
		r.columns.TableName,
		r.columns.Code,
		r.columns.DiscountType,
		r.columns.DiscountValue,
		r.columns.MinOrderAmount,
		r.columns.MaxRedemptions,
		r.columns.PerUserLimit,
		r.columns.ValidFrom,
		r.columns.ValidUntil,
		r.columns.Active,
		r.columns.CreatedAt,
		r.columns.ID,
	)

	row := r.db.QueryRow(ctx, query,
		coupon.Code,
		string(coupon.DiscountType),
		coupon.DiscountValue,
		coupon.MinOrderAmount,
		coupon.MaxRedemptions,
		coupon.PerUserLimit,
		coupon.ValidFrom,
		coupon.ValidUntil,
		coupon.Active,
		coupon.CreatedAt,
	)
	if err := row.Scan(&coupon.ID); err != nil {
		r.Log.Error("create coupon failed",
			"error", err,
			"code", coupon.Code,
		)
		return fmt.Errorf("create coupon: %w", err)
	}

	r.Log.Debug("coupon created",
		"coupon_id", coupon.ID,
		"code", coupon.Code,
	)
	return nil
}

// GetByCode получает купон по коду
func (r *Repository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	var coupon domain.Coupon

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.Code,
	)

	err := r.db.Get(ctx, &coupon, query, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("coupon not found: %w", err)
		}
		r.Log.Error("get coupon by code failed",
			"error", err,
			"code", code,
		)
		return nil, fmt.Errorf("get coupon: %w", err)
	}

	return &coupon, nil
}

// List возвращает купоны, новые первыми
func (r *Repository) List(ctx context.Context, limit int) ([]*domain.Coupon, error) {
	var coupons []*domain.Coupon

	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s DESC LIMIT $1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.CreatedAt,
	)

	if err := r.db.Select(ctx, &coupons, query, limit); err != nil {
		r.Log.Error("list coupons failed", "error", err)
		return nil, fmt.Errorf("list coupons: %w", err)
	}

	return coupons, nil
}

// SetActive включает или выключает купон
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1 WHERE %s = $2`,
		r.columns.TableName,
		r.columns.Active,
		r.columns.ID,
	)

	if err := r.db.Exec(ctx, query, active, id); err != nil {
		r.Log.Error("set coupon active flag failed",
			"error", err,
			"coupon_id", id,
		)
		return fmt.Errorf("set coupon active flag: %w", err)
	}

	r.Log.Debug("coupon active flag updated", "coupon_id", id, "active", active)
	return nil
}

// CountRedemptions все невозвращённые применения купона (reserved + applied)
func (r *Repository) CountRedemptions(ctx context.Context, couponID int64) (int, error) {
	var count int

	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1 AND %s != $2`,
		r.redemptions.TableName,
		r.redemptions.CouponID,
		r.redemptions.Status,
	)

	if err := r.db.Get(ctx, &count, query, couponID, string(domain.RedemptionStatusRefunded)); err != nil {
		r.Log.Error("count coupon redemptions failed",
			"error", err,
			"coupon_id", couponID,
		)
		return 0, fmt.Errorf("count coupon redemptions: %w", err)
	}

	return count, nil
}

// CountUserRedemptions невозвращённые применения купона пользователем
func (r *Repository) CountUserRedemptions(ctx context.Context, couponID int64, userID uuid.UUID) (int, error) {
	var count int

	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1 AND %s = $2 AND %s != $3`,
		r.redemptions.TableName,
		r.redemptions.CouponID,
		r.redemptions.UserID,
		r.redemptions.Status,
	)

	if err := r.db.Get(ctx, &count, query, couponID, userID, string(domain.RedemptionStatusRefunded)); err != nil {
		r.Log.Error("count user coupon redemptions failed",
			"error", err,
			"coupon_id", couponID,
			"user_id", userID,
		)
		return 0, fmt.Errorf("count user coupon redemptions: %w", err)
	}

	return count, nil
}

// CreateRedemption резервирует применение купона под заказ.
// UNIQUE(order_id) в схеме не даёт применить два купона к одному заказу
func (r *Repository) CreateRedemption(ctx context.Context, redemption *domain.CouponRedemption) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING %s`,
		r.redemptions.TableName,
		r.redemptions.CouponID,
		r.redemptions.UserID,
		r.redemptions.OrderID,
		r.redemptions.Status,
		r.redemptions.CreatedAt,
		r.redemptions.UpdatedAt,
		r.redemptions.ID,
	)

	row := r.db.QueryRow(ctx, query,
		redemption.CouponID,
		redemption.UserID,
		redemption.OrderID,
		string(redemption.Status),
		redemption.CreatedAt,
		redemption.UpdatedAt,
	)
	if err := row.Scan(&redemption.ID); err != nil {
		r.Log.Error("create coupon redemption failed",
			"error", err,
			"coupon_id", redemption.CouponID,
			"order_id", redemption.OrderID,
		)
		return fmt.Errorf("create coupon redemption: %w", err)
	}

	r.Log.Debug("coupon redemption created",
		"coupon_id", redemption.CouponID,
		"order_id", redemption.OrderID,
	)
	return nil
}

// GetRedemptionByOrderID получает применение купона по заказу
func (r *Repository) GetRedemptionByOrderID(ctx context.Context, orderID int64) (*domain.CouponRedemption, error) {
	var redemption domain.CouponRedemption

	query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s, %s, %s FROM %s WHERE %s = $1`,
		r.redemptions.ID,
		r.redemptions.CouponID,
		r.redemptions.UserID,
		r.redemptions.OrderID,
		r.redemptions.Status,
		r.redemptions.CreatedAt,
		r.redemptions.UpdatedAt,
		r.redemptions.TableName,
		r.redemptions.OrderID,
	)

	err := r.db.Get(ctx, &redemption, query, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("coupon redemption not found: %w", err)
		}
		r.Log.Error("get coupon redemption failed",
			"error", err,
			"order_id", orderID,
		)
		return nil, fmt.Errorf("get coupon redemption: %w", err)
	}

	return &redemption, nil
}

// UpdateRedemptionStatus переводит применение из from в to; false если статус уже другой
func (r *Repository) UpdateRedemptionStatus(ctx context.Context, orderID int64, from, to domain.RedemptionStatus) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2 WHERE %s = $3 AND %s = $4`,
		r.redemptions.TableName,
		r.redemptions.Status,
		r.redemptions.UpdatedAt,
		r.redemptions.OrderID,
		r.redemptions.Status,
	)

	rowsAffected, err := r.db.ExecWithResult(ctx, query, string(to), time.Now(), orderID, string(from))
	if err != nil {
		r.Log.Error("update coupon redemption status failed",
			"error", err,
			"order_id", orderID,
			"from", from,
			"to", to,
		)
		return false, fmt.Errorf("update coupon redemption status: %w", err)
	}

	if rowsAffected == 0 {
		r.Log.Debug("coupon redemption status unchanged",
			"order_id", orderID,
			"from", from,
			"to", to,
		)
		return false, nil
	}

	r.Log.Debug("coupon redemption status updated",
		"order_id", orderID,
		"from", from,
		"to", to,
	)
	return true, nil
}
