package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/admin/tg-bots/shop-bot/internal/adapters/secondary/storage/pg"
	"github.com/admin/tg-bots/shop-bot/internal/pkg/logger"
	"github.com/jmoiron/sqlx"
)

// App корень приложения: собирает зависимости из конфига и держит их
// жизненный цикл от старта до graceful shutdown
type App struct {
	name string
	cfg  *Config
	log  *slog.Logger
}

func New(name string, cfg *Config) *App {
	return &App{
		name: name,
		cfg:  cfg,
		log:  logger.New(name, cfg.Log),
	}
}

// Run блокируется до остановки приложения по контексту или фатальной ошибке
func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting application", "name", a.name)

	deps, err := a.initDependencies(ctx)
	if err != nil {
		return fmt.Errorf("init dependencies: %w", err)
	}

	return a.serve(ctx, deps)
}

// initPostgres подключается к PostgreSQL и доводит схему до актуальной версии
func (a *App) initPostgres() (*sqlx.DB, error) {
	db, err := a.cfg.Postgres.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	a.log.Info("postgres connected")

	if err := pg.RunMigrations(db, a.log); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return db, nil
}
