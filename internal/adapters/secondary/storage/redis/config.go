package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config подключение к Redis. Таймауты в секундах, время жизни
// соединений пула в минутах
type Config struct {
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     string `envconfig:"PORT" default:"6379"`
	Username string `envconfig:"USERNAME"`
	Password string `envconfig:"PASSWORD"`
	Database int    `envconfig:"DATABASE" default:"0"`

	MaxRetries   int `envconfig:"MAX_RETRIES" default:"3"`
	DialTimeout  int `envconfig:"DIAL_TIMEOUT" default:"5"`
	ReadTimeout  int `envconfig:"READ_TIMEOUT" default:"3"`
	WriteTimeout int `envconfig:"WRITE_TIMEOUT" default:"3"`

	PoolSize        int `envconfig:"POOL_SIZE" default:"10"`
	MinIdleConns    int `envconfig:"MIN_IDLE_CONNS" default:"5"`
	ConnMaxLifetime int `envconfig:"CONN_MAX_LIFETIME" default:"30"`
	ConnMaxIdleTime int `envconfig:"CONN_MAX_IDLE_TIME" default:"5"`
}

// options переводит конфиг в redis.Options, нулевые и отрицательные
// значения заменяются дефолтами
func (c *Config) options() *redis.Options {
	return &redis.Options{
		Addr:            net.JoinHostPort(c.Host, c.Port),
		Username:        c.Username,
		Password:        c.Password,
		DB:              c.Database,
		MaxRetries:      positive(c.MaxRetries, 3),
		DialTimeout:     seconds(c.DialTimeout, 5),
		ReadTimeout:     seconds(c.ReadTimeout, 3),
		WriteTimeout:    seconds(c.WriteTimeout, 3),
		PoolSize:        positive(c.PoolSize, 10),
		MinIdleConns:    positive(c.MinIdleConns, 5),
		ConnMaxLifetime: minutes(c.ConnMaxLifetime, 30),
		ConnMaxIdleTime: minutes(c.ConnMaxIdleTime, 5),
	}
}

// NewConnection открывает клиент и проверяет его ping-ом
func (c *Config) NewConnection() (*redis.Client, error) {
	opts := c.options()
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

func positive(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func seconds(v, fallback int) time.Duration {
	return time.Duration(positive(v, fallback)) * time.Second
}

func minutes(v, fallback int) time.Duration {
	return time.Duration(positive(v, fallback)) * time.Minute
}
