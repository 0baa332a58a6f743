package pg

import (
	"github.com/jmoiron/sqlx"
)

// Tx открытая транзакция. Запросы наследуются от queryRunner,
// здесь остаётся только управление жизненным циклом.
type Tx struct {
	queryRunner
	tx *sqlx.Tx
}

func (t *Tx) Commit() error {
	return t.tx.Commit()
}

func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}
