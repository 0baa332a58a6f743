package s3

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const connectProbeTimeout = 5 * time.Second

// Config S3-совместимое хранилище (MinIO). В бакете лежат цифровые
// товары и картинки каталога
type Config struct {
	Host      string `envconfig:"HOST" required:"true"`
	AccessKey string `envconfig:"ACCESS_KEY" required:"true"`
	SecretKey string `envconfig:"SECRET_KEY" required:"true"`
	Bucket    string `envconfig:"BUCKET" default:"shop-content"`
	UseSSL    bool   `envconfig:"USE_SSL" default:"false"`
}

// NewClient создаёт MinIO-клиент и проверяет, что бакет существует.
// Бакет не создаётся автоматически, это забота деплоя
func (c *Config) NewClient() (*minio.Client, error) {
	client, err := minio.New(c.Host, &minio.Options{
		Creds:  credentials.NewStaticV4(c.AccessKey, c.SecretKey, ""),
		Secure: c.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectProbeTimeout)
	defer cancel()

	switch exists, err := client.BucketExists(ctx, c.Bucket); {
	case err != nil:
		return nil, fmt.Errorf("check bucket %s: %w", c.Bucket, err)
	case !exists:
		return nil, fmt.Errorf("bucket %s does not exist", c.Bucket)
	}

	return client, nil
}
