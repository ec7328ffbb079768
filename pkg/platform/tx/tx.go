// Package tx provides the single serialization point for state-changing
// operations and a context carrier for SQL transactions.
//
// The registry's execution model is single-writer: each mutating operation
// runs to completion with no interleaving, and preconditions are validated
// before the first mutation so a failed operation leaves no partial state.
// Serializer enforces the model for the in-memory wiring; Postgres stores
// additionally join a SQL transaction carried in context.
package tx

import (
	"context"
	"database/sql"
	"sync"
)

type ctxKey struct{}

var txKey = ctxKey{}

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// Serializer is a global serialization point. Writers run one at a time;
// readers run concurrently with each other but never observe a half-applied
// write. Blocking happens only while awaiting lock acquisition, never inside
// a transaction body.
type Serializer struct {
	mu sync.RWMutex
}

// NewSerializer constructs a Serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// Write runs fn while holding the exclusive write lock. fn must validate all
// preconditions before its first mutation; returning an error before mutating
// is how an operation aborts with no partial effect.
func (s *Serializer) Write(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

// Read runs fn while holding the shared read lock, giving it a consistent
// snapshot relative to in-flight writes.
func (s *Serializer) Read(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}
