//go:build integration

// Package dbtest starts a throwaway Postgres with the schema applied.
package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"cakeshop/internal/connections/database"
)

func Start(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	pg, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("cakeshop"),
		postgres.WithUsername("cakeshop"),
		postgres.WithPassword("cakeshop"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pg.Terminate(ctx); err != nil {
			t.Logf("terminate postgres: %v", err)
		}
	})

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sqlx.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.PingContext(ctx))
	require.NoError(t, database.MigrateUp(db))
	return db
}

// SeedCake inserts a cake with one size and returns its id.
func SeedCake(t *testing.T, db *sqlx.DB, name, size string, price, stock int) int {
	t.Helper()
	var id int
	require.NoError(t, db.QueryRow(`INSERT INTO cakes (name) VALUES ($1) RETURNING id`, name).Scan(&id))
	_, err := db.Exec(`INSERT INTO cake_sizes (cake_id, size, price, stock) VALUES ($1, $2, $3, $4)`, id, size, price, stock)
	require.NoError(t, err)
	return id
}

func Stock(t *testing.T, db *sqlx.DB, cakeID int, size string) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, `SELECT stock FROM cake_sizes WHERE cake_id = $1 AND size = $2`, cakeID, size))
	return n
}
