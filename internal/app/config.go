package app

import (
	server "github.com/admin/tg-bots/shop-bot/internal/adapters/primary/http"
	alerterAdapter "github.com/admin/tg-bots/shop-bot/internal/adapters/secondary/alerter"
	cryptopayAdapter "github.com/admin/tg-bots/shop-bot/internal/adapters/secondary/cryptopay"
	kafkaAdapter "github.com/admin/tg-bots/shop-bot/internal/adapters/secondary/kafka"
	"github.com/admin/tg-bots/shop-bot/internal/adapters/secondary/storage/pg"
	redisAdapter "github.com/admin/tg-bots/shop-bot/internal/adapters/secondary/storage/redis"
	s3Adapter "github.com/admin/tg-bots/shop-bot/internal/adapters/secondary/storage/s3"
	"github.com/admin/tg-bots/shop-bot/internal/adapters/secondary/telegram"
	"github.com/admin/tg-bots/shop-bot/internal/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Postgres  *pg.Config               `envconfig:"POSTGRES"`
	Log       *logger.Config           `envconfig:"LOG"`
	Server    *server.Config           `envconfig:"APISERVER"`
	Telegram  *telegram.Config         `envconfig:"TELEGRAM"`
	Cryptopay *cryptopayAdapter.Config `envconfig:"CRYPTOPAY"`
	Redis     *redisAdapter.Config     `envconfig:"REDIS"`
	S3        *s3Adapter.Config        `envconfig:"S3"`
	Kafka     *kafkaAdapter.Config     `envconfig:"KAFKA"`
	Alerter   *alerterAdapter.Config   `envconfig:"ALERTER"`
	Shop      ShopConfig               `envconfig:"SHOP"`
	Jobs      JobsConfig               `envconfig:"JOBS"`
}

// ShopConfig настройки магазина, не требующие БД
type ShopConfig struct {
	BotUsername string  `envconfig:"BOT_USERNAME"` // для реферальных ссылок t.me/<bot>
	AdminIDs    []int64 `envconfig:"ADMIN_IDS"`    // telegram user id через запятую
}

// JobsConfig интервалы фоновых джоб
type JobsConfig struct {
	PollIntervalSeconds   int `envconfig:"POLL_INTERVAL_SECONDS" default:"60"`
	PollBatchSize         int `envconfig:"POLL_BATCH_SIZE" default:"50"`
	ExpireIntervalSeconds int `envconfig:"EXPIRE_INTERVAL_SECONDS" default:"300"`
}

func NewEnvConfig(envPrefix string) (*Config, error) {
	cfg := &Config{}

	_ = godotenv.Load("deployments/local/.env")

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
