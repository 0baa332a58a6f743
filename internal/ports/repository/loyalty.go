package repository

import (
	"context"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ILoyaltyRepo интерфейс для бонусных счетов, леджера и резервов
type ILoyaltyRepo interface {
	// GetOrCreateAccount возвращает счёт пользователя, создавая при первом обращении
	GetOrCreateAccount(ctx context.Context, userID uuid.UUID) (*domain.LoyaltyAccount, error)
	GetAccountByUserID(ctx context.Context, userID uuid.UUID) (*domain.LoyaltyAccount, error)

	// AdjustBalance атомарно меняет баланс с constraint-проверкой balance >= 0 и пишет запись в леджер;
	// false если средств не хватает
	AdjustBalance(ctx context.Context, accountID int64, delta decimal.Decimal, kind domain.LoyaltyTxKind, orderID *int64, note *string) (bool, error)
	ListTransactions(ctx context.Context, accountID int64, limit int) ([]*domain.LoyaltyTransaction, error)

	CreateReservation(ctx context.Context, res *domain.LoyaltyReservation) error
	GetReservationByOrderID(ctx context.Context, orderID int64) (*domain.LoyaltyReservation, error)
	// UpdateReservationStatus переводит резерв из from в to; false если статус уже другой
	UpdateReservationStatus(ctx context.Context, orderID int64, from, to domain.RedemptionStatus) (bool, error)
}
