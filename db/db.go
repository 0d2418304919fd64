package db

import (
	"context"
	_ "embed"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"aqwesitod-shop/config"
)

//go:embed schema.sql
var schemaSQL string

// Open creates the connection pool and verifies it with a ping.
// The caller owns the pool and must Close it at shutdown.
func Open(ctx context.Context, cfg config.Database) (*pgxpool.Pool, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("✓ Database connection established successfully (max_conns=%d)", poolCfg.MaxConns)
	return pool, nil
}

// Migrate applies the embedded schema. Every statement is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	log.Printf("✓ Database schema is up to date")
	return nil
}

// TxBudget sizes transaction timeouts from the number of relation round trips
// a mutation performs and the expected latency of one round trip.
type TxBudget struct {
	RoundTrip time.Duration
	Headroom  float64
}

// NewTxBudget builds a budget from configuration
func NewTxBudget(cfg *config.Config) TxBudget {
	return TxBudget{RoundTrip: cfg.TxRoundTrip, Headroom: cfg.TxHeadroom}
}

// Timeout returns relations x round trip x headroom, never less than one round trip
func (b TxBudget) Timeout(relations int) time.Duration {
	if relations < 1 {
		relations = 1
	}
	headroom := b.Headroom
	if headroom < 1 {
		headroom = 1
	}
	timeout := time.Duration(float64(relations) * float64(b.RoundTrip) * headroom)
	if timeout < b.RoundTrip {
		return b.RoundTrip
	}
	return timeout
}
