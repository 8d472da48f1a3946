// Package router maps the single route onto its handler.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"

	"github.com/mvarshney/nocontent/internal/handlers/root"
	"github.com/mvarshney/nocontent/internal/metrics"
	"github.com/mvarshney/nocontent/internal/middleware"
)

const handlerName = "http.server"

// New returns the service router.  Only GET / is registered; unknown paths
// and methods get chi's default 404 and 405 responses.
func New(tp trace.TracerProvider, inst *metrics.Instruments) http.Handler {
	r := newMux(tp, inst)
	r.Get("/", root.Handler())
	return r
}

// newMux returns a router that traces and measures every request,
// including the 404 and 405 replies chi sends itself.  Recoverer sits
// inside the telemetry so a recovered panic is recorded as 500.
func newMux(tp trace.TracerProvider, inst *metrics.Instruments) *chi.Mux {
	r := chi.NewRouter()
	r.Use(
		middleware.Tracing(tp, handlerName),
		middleware.Observability(inst, handlerName),
		chimw.Recoverer,
	)
	return r
}
