package repository

import (
	"context"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/google/uuid"
)

// ICouponRepo интерфейс для купонов и их применений
type ICouponRepo interface {
	Create(ctx context.Context, coupon *domain.Coupon) error
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
	List(ctx context.Context, limit int) ([]*domain.Coupon, error)
	SetActive(ctx context.Context, id int64, active bool) error

	// CountRedemptions все невозвращённые применения купона
	CountRedemptions(ctx context.Context, couponID int64) (int, error)
	// CountUserRedemptions невозвращённые применения купона пользователем
	CountUserRedemptions(ctx context.Context, couponID int64, userID uuid.UUID) (int, error)
	CreateRedemption(ctx context.Context, redemption *domain.CouponRedemption) error
	GetRedemptionByOrderID(ctx context.Context, orderID int64) (*domain.CouponRedemption, error)
	// UpdateRedemptionStatus переводит применение из from в to; false если статус уже другой
	UpdateRedemptionStatus(ctx context.Context, orderID int64, from, to domain.RedemptionStatus) (bool, error)
}
