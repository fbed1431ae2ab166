package dbtest

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"warnetbook/internal/db"
)

// Postgres starts a throwaway Postgres with the schema migrated and returns a
// pool to it. The test is skipped under -short or when no container runtime
// is available.
func Postgres(t *testing.T) *sqlx.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Postgres integration test in short mode")
	}

	ctx := context.Background()
	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("docker.io/postgres:15.2-alpine"),
		postgres.WithDatabase("warnetbook"),
		postgres.WithUsername("warnetbook"),
		postgres.WithPassword("warnetbook"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable", "application_name=warnetbook-test")
	if err != nil {
		t.Fatalf("postgres connection string: %v", err)
	}

	database, err := db.Connect(dsn, 10*time.Second)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := db.RunMigrations(database, migrationsDir()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return database
}

func migrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}

// Seed helpers insert rows directly so integration tests do not depend on
// the services they exercise.

func SeedUser(t *testing.T, database *sqlx.DB, email, role string, balance int64) int {
	t.Helper()
	var id int
	err := database.QueryRowx(`
		INSERT INTO users (full_name, email, password_hash, role, money_balance)
		VALUES ($1, $2, 'x', $3, $4)
		RETURNING id`,
		email, email, role, balance,
	).Scan(&id)
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	if balance > 0 {
		// Keep the ledger invariant: balance equals the sum of completed entries.
		_, err = database.Exec(`
			INSERT INTO money_transactions (user_id, kind, amount, status, description, balance_after)
			VALUES ($1, 'topup', $2, 'completed', 'seed', $2)`, id, balance)
		if err != nil {
			t.Fatalf("seed opening balance for %s: %v", email, err)
		}
	}
	return id
}

func SeedVenue(t *testing.T, database *sqlx.DB, name string, regular, member int64, resources int) int {
	t.Helper()
	var id int
	err := database.QueryRowx(`
		INSERT INTO venues (name, address, regular_price_per_hour, member_price_per_hour, total_resources, operating_hours)
		VALUES ($1, 'Jl. Test 1', $2, $3, $4, '24/7')
		RETURNING id`,
		name, regular, member, resources,
	).Scan(&id)
	if err != nil {
		t.Fatalf("seed venue %s: %v", name, err)
	}
	return id
}

func SeedMembership(t *testing.T, database *sqlx.DB, userID, venueID int) {
	t.Helper()
	if _, err := database.Exec(`INSERT INTO memberships (user_id, venue_id) VALUES ($1, $2)`, userID, venueID); err != nil {
		t.Fatalf("seed membership: %v", err)
	}
}

// Balance reads users.money_balance.
func Balance(t *testing.T, database *sqlx.DB, userID int) int64 {
	t.Helper()
	var balance int64
	if err := database.Get(&balance, `SELECT money_balance FROM users WHERE id = $1`, userID); err != nil {
		t.Fatalf("read balance: %v", err)
	}
	return balance
}

// Count runs a COUNT(*) query.
func Count(t *testing.T, database *sqlx.DB, query string, args ...interface{}) int {
	t.Helper()
	var n int
	if err := database.Get(&n, query, args...); err != nil {
		t.Fatalf("count %q: %v", query, err)
	}
	return n
}
