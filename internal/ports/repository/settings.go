package repository

import (
	"context"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
)

// ISettingsRepo интерфейс для настроек магазина в БД
type ISettingsRepo interface {
	GetAll(ctx context.Context) ([]*domain.AppSetting, error)
	Get(ctx context.Context, key string) (*domain.AppSetting, error)
	Set(ctx context.Context, key, value string) error
}
