package repository

import "context"

// TxRunner runs a function inside one database transaction. The persistence
// package provides the pgx-backed implementation; tests substitute a
// pass-through.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
