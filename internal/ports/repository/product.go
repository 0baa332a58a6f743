package repository

import (
	"context"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
)

// IProductRepo интерфейс для работы с каталогом товаров
type IProductRepo interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	ListActive(ctx context.Context, limit, offset int) ([]*domain.Product, error)
	// ListAll страница всех товаров, включая выключенные (админский обзор)
	ListAll(ctx context.Context, limit, offset int) ([]*domain.Product, error)
	CountActive(ctx context.Context) (int, error)
	Update(ctx context.Context, product *domain.Product) error
	SetActive(ctx context.Context, id int64, active bool) error
	// SetStock выставляет остаток товара; nil снимает лимит
	SetStock(ctx context.Context, id int64, stock *int) error
	// SetImageFileID кэширует telegram file_id картинки товара после первой отправки
	SetImageFileID(ctx context.Context, id int64, fileID string) error
	// DecrementStock атомарно списывает остаток; false если остатка не хватает
	DecrementStock(ctx context.Context, id int64, qty int) (bool, error)
	// RestoreStock возвращает остаток после отмены/истечения заказа
	RestoreStock(ctx context.Context, id int64, qty int) error
}
