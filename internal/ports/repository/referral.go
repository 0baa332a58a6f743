package repository

import (
	"context"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/google/uuid"
)

// IReferralRepo интерфейс для реферальных ссылок и наград
type IReferralRepo interface {
	// GetOrCreateLink возвращает ссылку пользователя, создавая с новым кодом при первом обращении
	GetOrCreateLink(ctx context.Context, userID uuid.UUID, code string) (*domain.ReferralLink, error)
	GetLinkByCode(ctx context.Context, code string) (*domain.ReferralLink, error)
	GetLinkByUserID(ctx context.Context, userID uuid.UUID) (*domain.ReferralLink, error)
	GetLinkByID(ctx context.Context, id int64) (*domain.ReferralLink, error)
	IncrementClicks(ctx context.Context, linkID int64) error
	IncrementSignups(ctx context.Context, linkID int64) error
	IncrementPaidOrders(ctx context.Context, linkID int64) error

	CreateReward(ctx context.Context, reward *domain.ReferralReward) error
	GetRewardByOrderID(ctx context.Context, orderID int64) (*domain.ReferralReward, error)
	// HasGrantedReward была ли уже награда за этого приглашённого (награда только за первый заказ)
	HasGrantedReward(ctx context.Context, linkID int64, refereeUserID uuid.UUID) (bool, error)
	// UpdateRewardStatus переводит награду из from в to; false если статус уже другой
	UpdateRewardStatus(ctx context.Context, orderID int64, from, to domain.RewardStatus) (bool, error)
}
