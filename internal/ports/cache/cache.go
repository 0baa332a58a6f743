package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound промах кэша, различается через errors.Is
var ErrNotFound = errors.New("cache: key not found")

// Cache строковый кэш с TTL. Используется для списка валют провайдера и
// прочих недорогих в пересчёте значений, поэтому промах не является ошибкой
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}
