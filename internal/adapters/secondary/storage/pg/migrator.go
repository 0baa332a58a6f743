package pg

import (
	"embed"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"log/slog"

	"github.com/jmoiron/sqlx"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations доводит схему магазина до актуальной версии.
// Файлы migrations/NNNN_name.sql применяются по возрастанию номера; каждый
// применённый файл фиксируется в schema_migrations вместе со своим SQL в
// одной транзакции, так что упавшая миграция не оставляет полуприменённого следа
func RunMigrations(db *sqlx.DB, log *slog.Logger) error {
	log.Info("migrating database schema")

	if err := ensureMigrationsTable(db); err != nil {
		return err
	}

	files, err := loadMigrationFiles()
	if err != nil {
		return err
	}

	appliedVersions, err := loadAppliedVersions(db)
	if err != nil {
		return err
	}

	applied := 0
	for _, f := range files {
		if appliedVersions[f.version] {
			log.Debug("migration already applied", "version", f.version, "name", f.name)
			continue
		}

		log.Info("applying migration", "version", f.version, "name", f.name)
		if err := applyMigrationFile(db, f); err != nil {
			return fmt.Errorf("apply migration %04d_%s: %w", f.version, f.name, err)
		}
		applied++
	}

	log.Info("schema is up to date", "applied", applied, "total", len(files))
	return nil
}

type migrationFile struct {
	version int64
	name    string
	sql     string
}

// loadMigrationFiles читает встроенные SQL файлы и сортирует их по версии
func loadMigrationFiles() ([]migrationFile, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	files := make([]migrationFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		base := strings.TrimSuffix(entry.Name(), ".sql")
		versionStr, name, found := strings.Cut(base, "_")
		if !found {
			return nil, fmt.Errorf("invalid migration name %s: expected NNNN_name.sql", entry.Name())
		}
		version, err := strconv.ParseInt(versionStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid migration version in %s: %w", entry.Name(), err)
		}

		sqlBytes, err := migrationsFS.ReadFile(filepath.Join("migrations", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		files = append(files, migrationFile{version: version, name: name, sql: string(sqlBytes)})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].version < files[j].version })
	return files, nil
}

// loadAppliedVersions возвращает множество уже применённых версий
func loadAppliedVersions(db *sqlx.DB) (map[int64]bool, error) {
	var versions []int64
	if err := db.Select(&versions, "SELECT version FROM schema_migrations"); err != nil {
		return nil, fmt.Errorf("load applied versions: %w", err)
	}

	applied := make(map[int64]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}
	return applied, nil
}

// applyMigrationFile выполняет SQL и фиксирует версию в одной транзакции
func applyMigrationFile(db *sqlx.DB, f migrationFile) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(f.sql); err != nil {
		return fmt.Errorf("exec migration: %w", err)
	}

	if _, err := tx.Exec(
		"INSERT INTO schema_migrations (version, name, applied_at) VALUES ($1, $2, NOW())",
		f.version, f.name,
	); err != nil {
		return fmt.Errorf("record version: %w", err)
	}

	return tx.Commit()
}

// ensureMigrationsTable создаёт таблицу учёта применённых миграций
func ensureMigrationsTable(db *sqlx.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version BIGINT NOT NULL PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}
