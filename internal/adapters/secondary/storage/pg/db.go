package pg

import (
	"context"

	"github.com/admin/tg-bots/shop-bot/internal/ports/persistence"
	"github.com/jmoiron/sqlx"
)

// queryRunner выполняет запросы поверх sqlx.ExtContext.
// Один и тот же набор методов работает и на пуле, и внутри транзакции.
type queryRunner struct {
	ext sqlx.ExtContext
}

// Get сканирует одну запись в структуру
func (q queryRunner) Get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.GetContext(ctx, q.ext, dest, query, args...)
}

// Select сканирует все записи в слайс структур
func (q queryRunner) Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.SelectContext(ctx, q.ext, dest, query, args...)
}

// Exec выполняет запрос, результат которого не нужен
func (q queryRunner) Exec(ctx context.Context, query string, args ...interface{}) error {
	_, err := q.ext.ExecContext(ctx, query, args...)
	return err
}

// ExecWithResult выполняет запрос и сообщает число затронутых строк
func (q queryRunner) ExecWithResult(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := q.ext.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// NamedExec выполняет именованный запрос (плейсхолдеры берутся из struct tags)
func (q queryRunner) NamedExec(ctx context.Context, query string, arg interface{}) error {
	_, err := sqlx.NamedExecContext(ctx, q.ext, query, arg)
	return err
}

// NamedExecWithResult вариант NamedExec с числом затронутых строк
func (q queryRunner) NamedExecWithResult(ctx context.Context, query string, arg interface{}) (int64, error) {
	res, err := sqlx.NamedExecContext(ctx, q.ext, query, arg)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// QueryRow возвращает одну строку для ручного сканирования
func (q queryRunner) QueryRow(ctx context.Context, query string, args ...interface{}) *sqlx.Row {
	return q.ext.QueryRowxContext(ctx, query, args...)
}

// DB точка входа репозиториев в PostgreSQL.
// Реализует persistence.Persistence, транзакции открываются через BeginTx/WithTransaction.
type DB struct {
	queryRunner
	pool *sqlx.DB
}

func NewDB(pool *sqlx.DB) *DB {
	return &DB{queryRunner: queryRunner{ext: pool}, pool: pool}
}

// BeginTx открывает транзакцию с настройками по умолчанию
func (d *DB) BeginTx(ctx context.Context) (persistence.Transaction, error) {
	tx, err := d.pool.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{queryRunner: queryRunner{ext: tx}, tx: tx}, nil
}

// WithTransaction выполняет fn в транзакции: commit при nil-ошибке, иначе rollback.
// Rollback в defer также страхует от паники внутри fn.
func (d *DB) WithTransaction(ctx context.Context, fn func(context.Context, persistence.Transaction) error) error {
	tx, err := d.BeginTx(ctx)
	if err != nil {
		return err
	}
	// после удачного Commit вернёт sql.ErrTxDone, это ожидаемо
	defer func() { _ = tx.Rollback() }()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Close закрывает пул соединений
func (d *DB) Close() error {
	return d.pool.Close()
}
