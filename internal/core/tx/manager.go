// Package tx defines the transaction contract the domain layer depends
// on. The pgx-backed implementation lives in infrastructure/storage/postgres.
package tx

import (
	"context"
)

// Manager runs a function inside one database transaction.
// Posting a document, allocating batches and writing ledger entries all
// happen under a single Manager call so a failure rolls everything back.
type Manager interface {
	// RunInTransaction executes fn within a transaction: commit on nil,
	// rollback on error. Nested calls join the transaction already
	// carried by ctx.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager adds read-only transaction support for report and
// listing paths that must see one consistent snapshot.
type ReadOnlyManager interface {
	Manager

	// ReadOnly executes fn in a read-only transaction. Writes fail.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
