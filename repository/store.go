package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"aqwesitod-shop/db"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// PostgresStore runs engine operations against PostgreSQL
type PostgresStore struct {
	pool   *pgxpool.Pool
	budget db.TxBudget

	products   *ProductRepository
	carts      *CartRepository
	categories *CategoryRepository
}

// NewPostgresStore wraps an open pool. Close releases the pool.
func NewPostgresStore(pool *pgxpool.Pool, budget db.TxBudget) *PostgresStore {
	return &PostgresStore{
		pool:       pool,
		budget:     budget,
		products:   NewProductRepository(pool, true),
		carts:      NewCartRepository(pool),
		categories: NewCategoryRepository(pool),
	}
}

// Ensure PostgresStore implements Store
var _ Store = (*PostgresStore)(nil)

// pgTx binds the repositories to one open transaction
type pgTx struct {
	*ProductRepository
	*CartRepository
	*CategoryRepository
}

var _ Tx = (*pgTx)(nil)

func newPgTx(tx pgx.Tx) *pgTx {
	return &pgTx{
		ProductRepository:  NewProductRepository(tx, false),
		CartRepository:     NewCartRepository(tx),
		CategoryRepository: NewCategoryRepository(tx),
	}
}

func (s *PostgresStore) Products() ProductReader    { return s.products }
func (s *PostgresStore) Carts() CartReader          { return s.carts }
func (s *PostgresStore) Categories() CategoryReader { return s.categories }

// Close releases every pooled connection
func (s *PostgresStore) Close() {
	log.Printf("🔌 Close: Closing database pool")
	s.pool.Close()
}

// InTx runs fn in one read-committed transaction bounded by the store's budget.
// Any error returned by fn rolls the whole transaction back.
func (s *PostgresStore) InTx(ctx context.Context, opts TxOptions, fn func(ctx context.Context, tx Tx) error) error {
	timeout := s.budget.Timeout(opts.Relations)

	attempts := 1
	if opts.RetrySafe {
		attempts = 2
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = s.runTx(ctx, timeout, fn)
		if err == nil {
			return nil
		}
		if attempt < attempts && ctx.Err() == nil && pgconn.SafeToRetry(err) {
			log.Printf("🔄 InTx[%s]: Retrying after transient failure: %v", opts.Name, err)
			continue
		}
		break
	}
	return mapError(err)
}

func (s *PostgresStore) runTx(ctx context.Context, timeout time.Duration, fn func(ctx context.Context, tx Tx) error) error {
	txCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tx, err := s.pool.BeginTx(txCtx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(txCtx)

	if err := fn(txCtx, newPgTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// mapError translates driver failures into the repository sentinels.
// Errors that are not driver errors pass through untouched.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case "23505":
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	case "23503":
		return fmt.Errorf("%w: %s", ErrNotFound, pgErr.ConstraintName)
	case "40001", "40P01":
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.Message)
	}
	return err
}

// sendBatch sends every queued statement in one round trip and checks each result
func sendBatch(ctx context.Context, q querier, b *pgx.Batch) error {
	if b.Len() == 0 {
		return nil
	}
	br := q.SendBatch(ctx, b)
	for i := 0; i < b.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return err
		}
	}
	return br.Close()
}
