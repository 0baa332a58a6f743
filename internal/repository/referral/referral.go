package referralRepo

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

type linkColumns struct {
	TableName  string
	ID         string
	UserID     string
	Code       string
	Clicks     string
	Signups    string
	PaidOrders string
	CreatedAt  string
	UpdatedAt  string
}

type rewardColumns struct {
	TableName     string
	ID            string
	LinkID        string
	RefereeUserID string
	OrderID       string
	Amount        string
	Status        string
	CreatedAt     string
	UpdatedAt     string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	links   linkColumns
	rewards rewardColumns
}

// New создаёт новый репозиторий для реферальных ссылок и наград
func New(db persistence.Persistence, log *slog.Logger) ports.IReferralRepo {
	links := linkColumns{
		TableName:  "referral_links",
		ID:         "id",
		UserID:     "user_id",
		Code:       "code",
		Clicks:     "clicks",
		Signups:    "signups",
		PaidOrders: "paid_orders",
		CreatedAt:  "created_at",
		UpdatedAt:  "updated_at",
	}
	rewards := rewardColumns{
		TableName:     "referral_rewards",
		ID:            "id",
		LinkID:        "link_id",
		RefereeUserID: "referee_user_id",
		OrderID:       "order_id",
		Amount:        "amount",
		Status:        "status",
		CreatedAt:     "created_at",
		UpdatedAt:     "updated_at",
	}
	return &Repository{
		db:      db,
		Log:     log,
		links:   links,
		rewards: rewards,
	}
}

func (r *Repository) linkSelect() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s",
		r.links.ID,
		r.links.UserID,
		r.links.Code,
		r.links.Clicks,
		r.links.Signups,
		r.links.PaidOrders,
		r.links.CreatedAt,
		r.links.UpdatedAt)
}

func (r *Repository) rewardSelect() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s",
		r.rewards.ID,
		r.rewards.LinkID,
		r.rewards.RefereeUserID,
		r.rewards.OrderID,
		r.rewards.Amount,
		r.rewards.Status,
		r.rewards.CreatedAt,
		r.rewards.UpdatedAt)
}

// GetOrCreateLink возвращает ссылку пользователя, создавая с переданным кодом при первом обращении.
// При гонке ON CONFLICT по user_id возвращает уже существующую строку с её кодом
func (r *Repository) GetOrCreateLink(ctx context.Context, userID uuid.UUID, code string) (*domain.ReferralLink, error) {
	link, err := r.GetLinkByUserID(ctx, userID)
	if err == nil {
		return link, nil
	}

	now := time.Now()
	insertQuery := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s) VALUES ($1, $2, $3, $4)
		ON CONFLICT (%s) DO UPDATE SET %s = EXCLUDED.%s RETURNING %s`,
		r.links.TableName,
		r.links.UserID,
		r.links.Code,
		r.links.CreatedAt,
		r.links.UpdatedAt,
		r.links.UserID,
		r.links.UpdatedAt,
		r.links.UpdatedAt,
		r.linkSelect(),
	)

	var created domain.ReferralLink
	row := r.db.QueryRow(ctx, insertQuery, userID, code, now, now)
	if err := row.StructScan(&created); err != nil {
		r.Log.Error("create referral link failed",
			"error", err,
			"user_id", userID,
		)
		return nil, fmt.Errorf("create referral link: %w", err)
	}

	r.Log.Debug("referral link created",
		"link_id", created.ID,
		"user_id", userID,
		"code", created.Code,
	)
	return &created, nil
}

// GetLinkByCode получает ссылку по коду из /start payload
func (r *Repository) GetLinkByCode(ctx context.Context, code string) (*domain.ReferralLink, error) {
	var link domain.ReferralLink

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.linkSelect(),
		r.links.TableName,
		r.links.Code,
	)

	err := r.db.Get(ctx, &link, query, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("referral link not found: %w", err)
		}
		r.Log.Error("get referral link by code failed",
			"error", err,
			"code", code,
		)
		return nil, fmt.Errorf("get referral link by code: %w", err)
	}

	return &link, nil
}

// GetLinkByUserID получает ссылку пользователя
func (r *Repository) GetLinkByUserID(ctx context.Context, userID uuid.UUID) (*domain.ReferralLink, error) {
	var link domain.ReferralLink

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.linkSelect(),
		r.links.TableName,
		r.links.UserID,
	)

	err := r.db.Get(ctx, &link, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("referral link not found: %w", err)
		}
		r.Log.Error("get referral link failed",
			"error", err,
			"user_id", userID,
		)
		return nil, fmt.Errorf("get referral link: %w", err)
	}

	return &link, nil
}

// GetLinkByID получает ссылку по внутреннему идентификатору
func (r *Repository) GetLinkByID(ctx context.Context, id int64) (*domain.ReferralLink, error) {
	var link domain.ReferralLink

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.linkSelect(),
		r.links.TableName,
		r.links.ID,
	)

	err := r.db.Get(ctx, &link, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("referral link not found: %w", err)
		}
		r.Log.Error("get referral link by id failed",
			"error", err,
			"link_id", id,
		)
		return nil, fmt.Errorf("get referral link by id: %w", err)
	}

	return &link, nil
}

func (r *Repository) incrementCounter(ctx context.Context, linkID int64, column string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = %s + 1, %s = $1 WHERE %s = $2`,
		r.links.TableName,
		column,
		column,
		r.links.UpdatedAt,
		r.links.ID,
	)

	if err := r.db.Exec(ctx, query, time.Now(), linkID); err != nil {
		r.Log.Error("increment referral counter failed",
			"error", err,
			"link_id", linkID,
			"column", column,
		)
		return fmt.Errorf("increment referral counter: %w", err)
	}

	return nil
}

// IncrementClicks увеличивает счётчик переходов по ссылке
func (r *Repository) IncrementClicks(ctx context.Context, linkID int64) error {
	return r.incrementCounter(ctx, linkID, r.links.Clicks)
}

// IncrementSignups увеличивает счётчик регистраций по ссылке
func (r *Repository) IncrementSignups(ctx context.Context, linkID int64) error {
	return r.incrementCounter(ctx, linkID, r.links.Signups)
}

// IncrementPaidOrders увеличивает счётчик оплаченных заказов приглашённых
func (r *Repository) IncrementPaidOrders(ctx context.Context, linkID int64) error {
	return r.incrementCounter(ctx, linkID, r.links.PaidOrders)
}

// CreateReward создаёт награду за заказ, UNIQUE(order_id) защищает от дублей
func (r *Repository) CreateReward(ctx context.Context, reward *domain.ReferralReward) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING %s`,
		r.rewards.TableName,
		r.rewards.LinkID,
		r.rewards.RefereeUserID,
		r.rewards.OrderID,
		r.rewards.Amount,
		r.rewards.Status,
		r.rewards.CreatedAt,
		r.rewards.UpdatedAt,
		r.rewards.ID,
	)

	row := r.db.QueryRow(ctx, query,
		reward.LinkID,
		reward.RefereeUserID,
		reward.OrderID,
		reward.Amount,
		string(reward.Status),
		reward.CreatedAt,
		reward.UpdatedAt,
	)
	if err := row.Scan(&reward.ID); err != nil {
		r.Log.Error("create referral reward failed",
			"error", err,
			"order_id", reward.OrderID,
			"link_id", reward.LinkID,
		)
		return fmt.Errorf("create referral reward: %w", err)
	}

	r.Log.Debug("referral reward created",
		"order_id", reward.OrderID,
		"link_id", reward.LinkID,
		"amount", reward.Amount,
	)
	return nil
}

// GetRewardByOrderID получает награду по заказу
func (r *Repository) GetRewardByOrderID(ctx context.Context, orderID int64) (*domain.ReferralReward, error) {
	var reward domain.ReferralReward

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.rewardSelect(),
		r.rewards.TableName,
		r.rewards.OrderID,
	)

	err := r.db.Get(ctx, &reward, query, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("referral reward not found: %w", err)
		}
		r.Log.Error("get referral reward failed",
			"error", err,
			"order_id", orderID,
		)
		return nil, fmt.Errorf("get referral reward: %w", err)
	}

	return &reward, nil
}

// HasGrantedReward была ли уже начислена награда за этого приглашённого
func (r *Repository) HasGrantedReward(ctx context.Context, linkID int64, refereeUserID uuid.UUID) (bool, error) {
	var count int

	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1 AND %s = $2 AND %s = $3`,
		r.rewards.TableName,
		r.rewards.LinkID,
		r.rewards.RefereeUserID,
		r.rewards.Status,
	)

	if err := r.db.Get(ctx, &count, query, linkID, refereeUserID, string(domain.RewardStatusGranted)); err != nil {
		r.Log.Error("check granted rewards failed",
			"error", err,
			"link_id", linkID,
			"referee_user_id", refereeUserID,
		)
		return false, fmt.Errorf("check granted rewards: %w", err)
	}

	return count > 0, nil
}

// UpdateRewardStatus переводит награду из from в to; false если статус уже другой
func (r *Repository) UpdateRewardStatus(ctx context.Context, orderID int64, from, to domain.RewardStatus) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2 WHERE %s = $3 AND %s = $4`,
		r.rewards.TableName,
		r.rewards.Status,
		r.rewards.UpdatedAt,
		r.rewards.OrderID,
		r.rewards.Status,
	)

	rowsAffected, err := r.db.ExecWithResult(ctx, query, string(to), time.Now(), orderID, string(from))
	if err != nil {
		r.Log.Error("update referral reward status failed",
			"error", err,
			"order_id", orderID,
			"from", from,
			"to", to,
		)
		return false, fmt.Errorf("update referral reward status: %w", err)
	}

	if rowsAffected == 0 {
		r.Log.Debug("referral reward status unchanged",
			"order_id", orderID,
			"from", from,
			"to", to,
		)
		return false, nil
	}

	r.Log.Debug("referral reward status updated",
		"order_id", orderID,
		"from", from,
		"to", to,
	)
	return true, nil
}
