// Package dbtest holds database helpers for tests: an in-process Transactor
// for service unit tests and a disposable Postgres for integration tests.
package dbtest

import (
	"context"
	"sync"
)

// Transactor runs fn directly and counts calls. After-commit hooks registered
// through db.AfterCommit run immediately since ctx carries no transaction.
type Transactor struct {
	mu    sync.Mutex
	calls int
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	t.calls++
	t.mu.Unlock()
	return fn(ctx)
}

func (t *Transactor) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}
