// Package metrics holds the Prometheus collectors for the catalog and cart engines.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"aqwesitod-shop/apperror"
)

var (
	// operationTotal counts engine operations by name and outcome kind
	operationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_operation_total",
		Help: "Total engine operations by operation and result",
	}, []string{"operation", "result"})

	// operationDuration tracks end-to-end engine operation latency
	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shop_operation_duration_seconds",
		Help:    "Engine operation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
	}, []string{"operation"})

	// stockRejections counts cart writes refused by the stock ceiling
	stockRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_cart_stock_rejections_total",
		Help: "Cart writes rejected because the variant stock would be exceeded",
	}, []string{"operation"})
)

// Result returns the label recorded for err
func Result(err error) string {
	if err == nil {
		return "ok"
	}
	switch apperror.KindOf(err) {
	case apperror.KindNotFound:
		return "not_found"
	case apperror.KindValidation:
		return "validation"
	case apperror.KindConflict:
		return "conflict"
	default:
		return "error"
	}
}

// Observe records one finished operation
func Observe(operation string, start time.Time, err error) {
	operationTotal.WithLabelValues(operation, Result(err)).Inc()
	operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// StockRejected records a stock ceiling rejection
func StockRejected(operation string) {
	stockRejections.WithLabelValues(operation).Inc()
}
