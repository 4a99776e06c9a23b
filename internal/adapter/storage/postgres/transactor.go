package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// reviewTxOptions applies to review decisions; MarkReviewed's WHERE status='pending' is the guard.
var reviewTxOptions = pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite}

// Transactor implements ports.DBTransactor on top of a Pool.
type Transactor struct {
	pool Pool
	opts pgx.TxOptions
}

func NewTransactor(pool Pool) *Transactor {
	return &Transactor{pool: pool, opts: reviewTxOptions}
}

// Begin opens a read-write transaction for a review and its vendor insert.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := t.pool.BeginTx(ctx, t.opts)
	if err != nil {
		return nil, fmt.Errorf("begin review transaction: %w", err)
	}
	return tx, nil
}
