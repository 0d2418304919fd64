package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"aqwesitod-shop/apperror"
)

func TestResult(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "success", err: nil, expected: "ok"},
		{name: "not found", err: apperror.NotFound("product", "p1"), expected: "not_found"},
		{name: "validation", err: apperror.Field("quantity", "Quantity must be at least 1"), expected: "validation"},
		{name: "conflict", err: apperror.Conflict("taken"), expected: "conflict"},
		{name: "internal", err: errors.New("boom"), expected: "error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Result(tc.err))
		})
	}
}

func TestObserveCountsByResult(t *testing.T) {
	before := testutil.ToFloat64(operationTotal.WithLabelValues("test.observe", "not_found"))
	Observe("test.observe", time.Now(), apperror.NotFound("product", "p1"))
	after := testutil.ToFloat64(operationTotal.WithLabelValues("test.observe", "not_found"))
	assert.Equal(t, before+1, after)
}

func TestStockRejected(t *testing.T) {
	before := testutil.ToFloat64(stockRejections.WithLabelValues("test.add"))
	StockRejected("test.add")
	assert.Equal(t, before+1, testutil.ToFloat64(stockRejections.WithLabelValues("test.add")))
}
