package database

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(Config{
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func writeMigration(t *testing.T, dir, name, sql string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(sql), 0644))
}

func TestRunMigrationsAppliesInOrder(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()

	writeMigration(t, dir, "002_add_column.sql", "ALTER TABLE things ADD COLUMN label TEXT;")
	writeMigration(t, dir, "001_create_table.sql", "CREATE TABLE things (id INTEGER PRIMARY KEY);")

	migrator := NewMigrator(db, zap.NewNop())
	require.NoError(t, migrator.RunMigrations(dir))

	_, err := db.Exec("INSERT INTO things (label) VALUES ('a')")
	assert.NoError(t, err)

	var applied int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied))
	assert.Equal(t, 2, applied)
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()

	writeMigration(t, dir, "001_create_table.sql", "CREATE TABLE things (id INTEGER PRIMARY KEY);")

	migrator := NewMigrator(db, zap.NewNop())
	require.NoError(t, migrator.RunMigrations(dir))
	// A second run sees the recorded version and applies nothing.
	require.NoError(t, migrator.RunMigrations(dir))

	var applied int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied))
	assert.Equal(t, 1, applied)
}

func TestRunMigrationsRollsBackOnFailure(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()

	writeMigration(t, dir, "001_broken.sql", "CREATE TABLE broken (;")

	migrator := NewMigrator(db, zap.NewNop())
	require.Error(t, migrator.RunMigrations(dir))

	var applied int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied))
	assert.Zero(t, applied)
}

func TestRunMigrationsRejectsBadFilename(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()

	writeMigration(t, dir, "not_versioned.sql", "CREATE TABLE x (id INTEGER);")

	migrator := NewMigrator(db, zap.NewNop())
	assert.Error(t, migrator.RunMigrations(dir))
}

func TestWithTransactionCommits(t *testing.T) {
	db := newTestDB(t)
	_, err := db.Exec("CREATE TABLE things (id INTEGER PRIMARY KEY)")
	require.NoError(t, err)

	err = db.WithTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO things (id) VALUES (1)")
		return err
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM things").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestWithTransactionRollsBack(t *testing.T) {
	db := newTestDB(t)
	_, err := db.Exec("CREATE TABLE things (id INTEGER PRIMARY KEY)")
	require.NoError(t, err)

	err = db.WithTransaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO things (id) VALUES (1)"); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM things").Scan(&count))
	assert.Zero(t, count)
}
