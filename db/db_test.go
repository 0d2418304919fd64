package db

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTxBudgetTimeout(t *testing.T) {
	testCases := []struct {
		name      string
		budget    TxBudget
		relations int
		expected  time.Duration
	}{
		{name: "six relations", budget: TxBudget{RoundTrip: time.Second, Headroom: 2}, relations: 6, expected: 12 * time.Second},
		{name: "single relation", budget: TxBudget{RoundTrip: 500 * time.Millisecond, Headroom: 1.5}, relations: 1, expected: 750 * time.Millisecond},
		{name: "zero relations floors at one", budget: TxBudget{RoundTrip: time.Second, Headroom: 2}, relations: 0, expected: 2 * time.Second},
		{name: "headroom below one is ignored", budget: TxBudget{RoundTrip: time.Second, Headroom: 0.1}, relations: 3, expected: 3 * time.Second},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.budget.Timeout(tc.relations))
		})
	}
}

func TestSchemaDeclaresConstraints(t *testing.T) {
	assert.Contains(t, schemaSQL, "UNIQUE (product_id, size, color_name)")
	assert.Contains(t, schemaSQL, "UNIQUE (cart_id, variant_id)")
	assert.Contains(t, schemaSQL, "REFERENCES categories (id) ON DELETE SET NULL")
	assert.Contains(t, schemaSQL, "REFERENCES product_variants (id) ON DELETE CASCADE")
	assert.False(t, strings.Contains(schemaSQL, "REFERENCES products (id) ON DELETE CASCADE"))
}
