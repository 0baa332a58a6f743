package s3

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/admin/tg-bots/shop-bot/internal/ports/storage"
	"github.com/minio/minio-go/v7"
	"log/slog"
)

const defaultLinkTTL = 5 * time.Minute

// Client доступ к бакету магазина: картинки каталога и файлы цифровых товаров
type Client struct {
	minio  *minio.Client
	bucket string
	log    *slog.Logger
}

func NewClient(mc *minio.Client, bucket string, log *slog.Logger) storage.IS3Client {
	return &Client{minio: mc, bucket: bucket, log: log}
}

// GetFile скачивает объект целиком в память
func (c *Client) GetFile(ctx context.Context, path string) ([]byte, error) {
	obj, err := c.minio.GetObject(ctx, c.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", path, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", path, err)
	}
	return data, nil
}

// FileSize размер объекта без скачивания тела
func (c *Client) FileSize(ctx context.Context, path string) (int64, error) {
	info, err := c.minio.StatObject(ctx, c.bucket, path, minio.StatObjectOptions{})
	if err != nil {
		return 0, fmt.Errorf("stat object %s: %w", path, err)
	}
	return info.Size, nil
}

// ListFiles ключи объектов под префиксом, без псевдодиректорий
func (c *Client) ListFiles(ctx context.Context, prefix string) ([]string, error) {
	opts := minio.ListObjectsOptions{Prefix: prefix, Recursive: true}

	var keys []string
	for obj := range c.minio.ListObjects(ctx, c.bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects %s: %w", prefix, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

// GetPresignedURL временная ссылка на скачивание объекта
func (c *Client) GetPresignedURL(ctx context.Context, path string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = defaultLinkTTL
	}

	u, err := c.minio.PresignedGetObject(ctx, c.bucket, path, expires, nil)
	if err != nil {
		return "", fmt.Errorf("presign object %s: %w", path, err)
	}
	return u.String(), nil
}
