package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"aqwesitod-shop/apperror"
	"aqwesitod-shop/metrics"
	"aqwesitod-shop/repository"
)

var tracer = otel.Tracer("aqwesitod-shop/service")

// readBackTrips is the round trips a full product read takes inside a transaction:
// the root row plus the six child collections
const readBackTrips = 7

// startOp opens a span for an engine operation. The returned func ends the span
// and records metrics; defer it with a pointer to the named error result.
func startOp(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(*error)) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, operation, trace.WithAttributes(attrs...))
	return ctx, func(errp *error) {
		err := *errp
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
		metrics.Observe(operation, start, err)
	}
}

// storeError turns a store failure into an apperror. Errors that already carry
// a kind pass through.
func storeError(method string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.As(err); ok {
		return err
	}

	switch {
	case errors.Is(err, repository.ErrConflict):
		log.Printf("⚠️ %s: Lost a race with a concurrent writer: %v", method, err)
		return apperror.RetryableConflict("The resource was modified concurrently, retry the request", err)
	case errors.Is(err, repository.ErrDuplicate):
		log.Printf("⚠️ %s: Unique constraint violated: %v", method, err)
		return apperror.Conflict("Resource already exists")
	case errors.Is(err, repository.ErrNotFound):
		return &apperror.Error{Kind: apperror.KindNotFound, Message: "Referenced resource not found", Err: err}
	}

	log.Printf("❌ %s: %v", method, err)
	return apperror.Internal(err)
}

func isUUID(id string) bool {
	return uuid.Validate(id) == nil
}
