package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"aqwesitod-shop/models"
)

func TestBuildProductUpdate(t *testing.T) {
	testCases := []struct {
		name          string
		patch         models.ProductPatch
		expectedQuery string
		expectedArgs  []any
	}{
		{
			name:          "empty patch only bumps the version",
			patch:         models.ProductPatch{},
			expectedQuery: "UPDATE products SET version = version + 1, updated_at = now() WHERE id = $1 RETURNING version",
			expectedArgs:  []any{"p1"},
		},
		{
			name: "present fields in column order",
			patch: models.ProductPatch{
				Name:       models.Some("X"),
				PriceCents: models.Some(int64(1500)),
			},
			expectedQuery: "UPDATE products SET name = $1, price_cents = $2, version = version + 1, updated_at = now() WHERE id = $3 RETURNING version",
			expectedArgs:  []any{"X", int64(1500), "p1"},
		},
		{
			name: "explicit null clears nullable columns",
			patch: models.ProductPatch{
				DiscountedPriceCents: models.Null[int64](),
				CategoryID:           models.Null[string](),
			},
			expectedQuery: "UPDATE products SET discounted_price_cents = $1, category_id = $2, version = version + 1, updated_at = now() WHERE id = $3 RETURNING version",
			expectedArgs:  []any{(*int64)(nil), (*string)(nil), "p1"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			query, args := buildProductUpdate("p1", tc.patch)
			assert.Equal(t, tc.expectedQuery, query)
			assert.Equal(t, tc.expectedArgs, args)
		})
	}
}

func TestBuildProductUpdateNeverTouchesAbsentColumns(t *testing.T) {
	query, _ := buildProductUpdate("p1", models.ProductPatch{Stock: models.Some(4)})
	assert.Contains(t, query, "stock = $1")
	assert.NotContains(t, query, "discounted_price_cents")
	assert.NotContains(t, query, "category_id")
	assert.NotContains(t, query, "name =")
}

func TestMapError(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		sentinel error
	}{
		{name: "no rows", err: fmt.Errorf("failed to fetch: %w", pgx.ErrNoRows), sentinel: ErrNotFound},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505", ConstraintName: "categories_name_key"}, sentinel: ErrDuplicate},
		{name: "foreign key violation", err: &pgconn.PgError{Code: "23503"}, sentinel: ErrNotFound},
		{name: "serialization failure", err: &pgconn.PgError{Code: "40001"}, sentinel: ErrConflict},
		{name: "deadlock", err: fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "40P01"}), sentinel: ErrConflict},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tc.err), tc.sentinel)
		})
	}

	plain := errors.New("boom")
	assert.Equal(t, plain, mapError(plain))
	assert.NoError(t, mapError(nil))
}
