package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mvarshney/nocontent/internal/metrics"
)

// Observability wraps handlers with metrics collection.
func Observability(inst *metrics.Instruments, handlerName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			start := time.Now()

			inst.ActiveRequests.Add(ctx, 1)
			defer inst.ActiveRequests.Add(ctx, -1)

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				status := statusOf(ww)
				attrs := []attribute.KeyValue{
					attribute.String("handler", handlerName),
					attribute.String("method", r.Method),
					attribute.String("status", strconv.Itoa(status)),
				}

				inst.RequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
				inst.RequestDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
					attribute.String("handler", handlerName),
					attribute.String("method", r.Method),
				))
				inst.ResponseSize.Record(ctx, int64(ww.BytesWritten()), metric.WithAttributes(
					attribute.String("handler", handlerName),
				))
				if status >= 400 {
					RecordError(ctx, inst, handlerName, "http_"+strconv.Itoa(status))
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// RecordError records an error metric for a handler.
func RecordError(ctx context.Context, inst *metrics.Instruments, handlerName, errorType string) {
	inst.ErrorsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("handler", handlerName),
		attribute.String("error_type", errorType),
	))
}
