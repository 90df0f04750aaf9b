package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"ecommerce-platform/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadMigrations_Sorted(t *testing.T) {
	migrations, err := LoadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "init", migrations[0].Name)
	for i := 1; i < len(migrations); i++ {
		assert.Less(t, migrations[i-1].Version, migrations[i].Version)
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.RunMigrations(ctx))
	require.NoError(t, db.RunMigrations(ctx))

	status, err := NewMigrator(db.DB, nil).Status(ctx)
	require.NoError(t, err)
	for _, s := range status {
		assert.True(t, s.Applied, "migration %d not applied", s.Version)
	}

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM carts").Scan(&n))
	assert.Zero(t, n)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.RunMigrations(ctx))

	boom := errors.New("boom")
	err := WithTx(ctx, db.DB, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO session_revocations (subject_id, principal, revoked_before) VALUES ($1, $2, CURRENT_TIMESTAMP)`,
			"u1", "user")
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM session_revocations").Scan(&n))
	assert.Zero(t, n)
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "shop.db?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate",
		DSN(configFor("sqlite3", "shop.db")))
	assert.Equal(t, "postgres://u@h/db", DSN(configFor("postgres", "postgres://u@h/db")))
}

func configFor(driver, url string) config.DatabaseConfig {
	return config.DatabaseConfig{Driver: driver, URL: url}
}
