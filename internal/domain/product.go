package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product товар в каталоге
type Product struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description *string         `json:"description,omitempty" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Currency    string          `json:"currency" db:"currency"`
	Active      bool            `json:"active" db:"active"`
	Stock       *int            `json:"stock,omitempty" db:"stock"`             // nil = без ограничения
	ContentKey  *string         `json:"content_key,omitempty" db:"content_key"` // ключ цифрового товара в S3
	ImageKey    *string         `json:"image_key,omitempty" db:"image_key"`     // ключ картинки товара в S3
	ImageFileID *string         `json:"image_file_id,omitempty" db:"image_file_id"` // telegram file_id после первой отправки
	Question    *string         `json:"question,omitempty" db:"question"`       // вопрос покупателю при оформлении
	Position    int             `json:"position" db:"position"`                 // порядок в каталоге
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// HasStock хватает ли остатка под количество
func (p *Product) HasStock(qty int) bool {
	return p.Stock == nil || *p.Stock >= qty
}
