package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart корзина пользователя (одна на пользователя)
type Cart struct {
	ID        int64     `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CartItem позиция в корзине
type CartItem struct {
	ID        int64 `json:"id" db:"id"`
	CartID    int64 `json:"cart_id" db:"cart_id"`
	ProductID int64 `json:"product_id" db:"product_id"`
	Quantity  int   `json:"quantity" db:"quantity"`
}

// CartItemView позиция корзины вместе с данными товара (join для отображения)
type CartItemView struct {
	CartItem
	ProductName string          `json:"product_name" db:"product_name"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Currency    string          `json:"currency" db:"currency"`
	Active      bool            `json:"active" db:"active"`
}

// Subtotal стоимость позиции
func (v *CartItemView) Subtotal() decimal.Decimal {
	return v.Price.Mul(decimal.NewFromInt(int64(v.Quantity)))
}
