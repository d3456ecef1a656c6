// Package httpapi exposes search, update and version operations over a
// local JSON API.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/custodia-labs/rulebook/internal/core/ports/driving"
	"github.com/custodia-labs/rulebook/internal/logger"
)

const (
	gracefulTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 60 * time.Second

	// requestTimeout bounds read-only handlers. Update passes and the
	// event stream run without it.
	requestTimeout = 15 * time.Second
)

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("httpapi: search service is required")

// Ports aggregates the driving ports served by the API.
type Ports struct {
	Search   driving.SearchService
	Updates  driving.UpdateService
	Versions driving.VersionService
	Index    driving.IndexService
	Events   driving.EventSubscriber

	// Locale is used by update routes when the request names none.
	Locale string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}

// NewRouter builds the API router.
func NewRouter(ports *Ports) (*chi.Mux, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	routes := &Routes{ports: ports}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, LoggingMiddleware)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Get("/health", routes.health)
		r.Get("/search", routes.search)
		r.Get("/documents/{id}", routes.getDocument)
		r.Get("/version", routes.version)
		r.Post("/version/ack", routes.acknowledge)
		r.Get("/index", routes.indexStats)
	})

	r.Post("/updates/check", routes.checkUpdates)
	r.Post("/updates/force", routes.forceRefresh)
	r.Post("/index/rebuild", routes.rebuildIndex)
	r.Get("/events", routes.events)

	return r, nil
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logger.Debug("HTTP %s %s %d %s %s",
			r.Method,
			r.URL.Path,
			ww.Status(),
			time.Since(start),
			middleware.GetReqID(r.Context()),
		)
	})
}

// Serve runs the API on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("httpapi: listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
