package memory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var errSQLUnsupported = errors.New("memory: SQL is not supported")

// Transactor implements ports.DBTransactor. Only one transaction is open at a time.
type Transactor struct {
	s *Store
}

// Begin waits for the running transaction, if any, to finish.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	select {
	case t.s.txSem <- struct{}{}:
		return &Tx{store: t.s}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Tx is the memory store's pgx.Tx. Only Commit and Rollback are meaningful.
type Tx struct {
	store *Store
	undo  []func()
	done  bool
}

func (t *Tx) Commit(context.Context) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.done {
		return pgx.ErrTxClosed
	}
	t.finish()
	return nil
}

// Rollback reverts every write made through t. It is a no-op after Commit,
// which lets callers defer it unconditionally.
func (t *Tx) Rollback(context.Context) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.done {
		return pgx.ErrTxClosed
	}
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.finish()
	return nil
}

func (t *Tx) finish() {
	t.done = true
	t.undo = nil
	<-t.store.txSem
}

func (t *Tx) Begin(context.Context) (pgx.Tx, error) { return nil, errSQLUnsupported }
func (t *Tx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, errSQLUnsupported
}
func (t *Tx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (t *Tx) LargeObjects() pgx.LargeObjects                       { return pgx.LargeObjects{} }
func (t *Tx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, errSQLUnsupported
}
func (t *Tx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errSQLUnsupported
}
func (t *Tx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, errSQLUnsupported }
func (t *Tx) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }
func (t *Tx) Conn() *pgx.Conn                                         { return nil }
