package database

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Migration is one versioned schema change loaded from a .sql file.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Migrator applies pending schema migrations to the analytics store.
// Applied versions are recorded in schema_migrations, so both cmd binaries
// can run it on startup without stepping on each other's schema.
type Migrator struct {
	db     *DB
	logger *zap.Logger
}

// NewMigrator creates a migrator for the store.
func NewMigrator(db *DB, logger *zap.Logger) *Migrator {
	return &Migrator{
		db:     db,
		logger: logger,
	}
}

func (m *Migrator) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
	_, err := m.db.Exec(query)
	return err
}

func (m *Migrator) getAppliedMigrations() (map[int]bool, error) {
	rows, err := m.db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// RunMigrations applies every pending migration from migrationsDir in
// version order. Already-applied versions are skipped.
func (m *Migrator) RunMigrations(migrationsDir string) error {
	m.logger.Info("Starting database migrations", zap.String("dir", migrationsDir))

	if err := m.createMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	migrations, err := m.loadMigrations(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	for _, migration := range migrations {
		if applied[migration.Version] {
			m.logger.Debug("Skipping applied migration",
				zap.Int("version", migration.Version),
				zap.String("name", migration.Name))
			continue
		}

		m.logger.Info("Applying migration",
			zap.Int("version", migration.Version),
			zap.String("name", migration.Name))

		if err := m.applyMigration(migration); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", migration.Version, err)
		}
	}

	m.logger.Info("Database migrations completed successfully")
	return nil
}

// loadMigrations reads every .sql file under dir, sorted by version.
func (m *Migrator) loadMigrations(dir string) ([]Migration, error) {
	var migrations []Migration

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || !strings.HasSuffix(path, ".sql") {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", path, err)
		}

		// File names are "<version>_<name>.sql", e.g. 001_initial_schema.sql.
		filename := filepath.Base(path)
		var version int
		var name string
		if _, err := fmt.Sscanf(filename, "%d", &version); err != nil {
			return fmt.Errorf("invalid migration filename format: %s", filename)
		}

		parts := strings.SplitN(filename, "_", 2)
		if len(parts) == 2 {
			name = strings.TrimSuffix(parts[1], ".sql")
		}

		migrations = append(migrations, Migration{
			Version: version,
			Name:    name,
			SQL:     string(content),
		})

		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// applyMigration executes one migration and records its version, both in
// the same transaction so a failed migration leaves no trace.
func (m *Migrator) applyMigration(migration Migration) error {
	return m.db.WithTransaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(migration.SQL); err != nil {
			return fmt.Errorf("failed to execute migration SQL: %w", err)
		}

		_, err := tx.Exec(
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
			migration.Version,
			migration.Name,
		)
		if err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}

		return nil
	})
}
