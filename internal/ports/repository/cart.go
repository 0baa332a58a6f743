package repository

import (
	"context"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/google/uuid"
)

// ICartRepo интерфейс для работы с корзинами
type ICartRepo interface {
	// GetOrCreate возвращает корзину пользователя, создавая при первом обращении
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	// AddItem добавляет товар или увеличивает количество существующей позиции
	AddItem(ctx context.Context, cartID, productID int64, qty int) error
	SetItemQuantity(ctx context.Context, cartID, productID int64, qty int) error
	RemoveItem(ctx context.Context, cartID, productID int64) error
	ListItems(ctx context.Context, cartID int64) ([]*domain.CartItemView, error)
	Clear(ctx context.Context, cartID int64) error
}
