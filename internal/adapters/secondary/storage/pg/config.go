package pg

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

const (
	poolMaxOpen        = 25
	poolMaxIdle        = 5
	poolConnLifetime   = 5 * time.Minute
	poolConnIdleTime   = 1 * time.Minute
	defaultStatementMs = 60000
)

type Config struct {
	Host                   string `envconfig:"HOST"`
	Port                   string `envconfig:"PORT"`
	Username               string `envconfig:"USERNAME"`
	Password               string `envconfig:"PASSWORD"`
	Database               string `envconfig:"DATABASE"`
	SSLMode                string `envconfig:"SSL_MODE"`
	StatementTimeoutMillis int    `envconfig:"STATEMENT_TIMEOUT" default:"60000"`
}

func (c *Config) dsn() string {
	parts := []string{
		"host=" + c.Host,
		"port=" + c.Port,
		"user=" + c.Username,
		"password=" + c.Password,
		"dbname=" + c.Database,
		"sslmode=" + c.SSLMode,
	}
	return strings.Join(parts, " ")
}

func (c *Config) statementTimeoutMs() int {
	if c.StatementTimeoutMillis <= 0 {
		return defaultStatementMs
	}
	return c.StatementTimeoutMillis
}

// NewConnection открывает пул соединений с PostgreSQL и проверяет его ping'ом.
// statement_timeout задаётся параметром сессии, поэтому действует на каждое
// соединение пула, а не только на то, где выполнялся SET.
func (c *Config) NewConnection() (*sqlx.DB, error) {
	pgCfg, err := pgx.ParseConfig(c.dsn())
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pgCfg.RuntimeParams["statement_timeout"] = strconv.Itoa(c.statementTimeoutMs())

	db, err := sqlx.Connect("pgx", stdlib.RegisterConnConfig(pgCfg))
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	db.SetMaxOpenConns(poolMaxOpen)
	db.SetMaxIdleConns(poolMaxIdle)
	db.SetConnMaxLifetime(poolConnLifetime)
	db.SetConnMaxIdleTime(poolConnIdleTime)

	return db, nil
}
