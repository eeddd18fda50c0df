// Package httptransport is the gateway's HTTP surface: the onboarding routes
// used by the QR-code landing page plus health and metrics.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"kayit/internal/platform/middleware"
	"kayit/pkg/platform/middleware/metadata"
)

// Registrar adds routes to a router.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter builds the root router with the shared middleware chain.
func NewRouter(logger *slog.Logger, handlers ...Registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestContext)
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	for _, h := range handlers {
		h.Register(r)
	}
	return r
}
