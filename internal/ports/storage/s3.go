package storage

import (
	"context"
	"time"
)

// IS3Client S3-совместимое хранилище (MinIO). Здесь лежат картинки каталога
// (image_key товара) и файлы цифровых товаров (content_key)
type IS3Client interface {
	GetFile(ctx context.Context, path string) ([]byte, error)
	FileSize(ctx context.Context, path string) (int64, error)
	ListFiles(ctx context.Context, prefix string) ([]string, error)
	GetPresignedURL(ctx context.Context, path string, expires time.Duration) (string, error)
}
