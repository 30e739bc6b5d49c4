package verify

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/qaops/backstop/types"
)

// smokeRow mirrors the smoke-test table.
type smokeRow struct {
	ID    int    `db:"id"`
	Name  string `db:"name"`
	Email string `db:"email"`
}

// storeSmokeCheck round-trips one row through an ephemeral SQLite file.
// The file is removed on every exit path.
func storeSmokeCheck(cfg Config) func(ctx context.Context) types.CheckResult {
	name := "Database Functionality"
	return func(ctx context.Context) types.CheckResult {
		if err := runStoreSmoke(ctx); err != nil {
			return types.CheckResult{Name: name, Detail: err.Error()}
		}
		return types.CheckResult{Name: name, Passed: true,
			Detail: "SQLite round trip ok"}
	}
}

func runStoreSmoke(ctx context.Context) error {
	tmp, err := os.CreateTemp("", "backstop-smoke-*.db")
	if err != nil {
		return fmt.Errorf("creating ephemeral store: %w", err)
	}
	path := tmp.Name()
	if err := tmp.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("closing ephemeral store file: %w", err)
	}
	return runStoreSmokeAt(ctx, path)
}

// runStoreSmokeAt round-trips a row through the store at path. The file
// is removed before returning, on success and failure alike.
func runStoreSmokeAt(ctx context.Context, path string) error {
	defer func() {
		_ = os.Remove(path)
	}()

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening ephemeral store: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx,
		`CREATE TABLE test_table (
			id INTEGER PRIMARY KEY,
			name TEXT,
			email TEXT
		)`); err != nil {
		return fmt.Errorf("creating table: %w", err)
	}

	if _, err := db.ExecContext(ctx,
		`INSERT INTO test_table (name, email) VALUES (?, ?)`,
		"Test User", "test@example.com"); err != nil {
		return fmt.Errorf("inserting row: %w", err)
	}

	var row smokeRow
	if err := db.GetContext(ctx, &row,
		`SELECT id, name, email FROM test_table WHERE id = 1`); err != nil {
		return fmt.Errorf("querying row: %w", err)
	}

	if row.Name != "Test User" {
		return fmt.Errorf("data retrieval mismatch: got name %q", row.Name)
	}
	return nil
}
