package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/osse101/HarvestRealm_Go/docs"
	"github.com/osse101/HarvestRealm_Go/internal/handler"
	"github.com/osse101/HarvestRealm_Go/internal/metrics"
)

// Ledger is the part of the persistent ledger the HTTP surface reads
type Ledger interface {
	handler.Pinger
	handler.WorldLister
}

// Options configures the HTTP edge
type Options struct {
	Port              int
	ServiceName       string
	TrustedProxies    []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
	WorldCacheTTL     time.Duration
}

type Server struct {
	httpServer *http.Server
	limiter    *RateLimiter
}

// NewServer creates a new Server instance. realm serves websocket upgrades
// on /ws and /ws/{worldId}.
func NewServer(opts Options, ledger Ledger, realm http.Handler) *Server {
	r := chi.NewRouter()

	// Chi middleware executes in order defined (outermost to innermost)
	limiter := NewRateLimiter(opts.RateLimitRequests, opts.RateLimitWindow)

	r.Use(SecurityHeadersMiddleware())
	r.Use(RateLimitMiddleware(opts.TrustedProxies, limiter))
	r.Use(RequestSizeLimitMiddleware(MaxRequestBodyBytes))
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	r.Get(RouteHealthz, handler.HandleHealthz())
	r.Get(RouteReadyz, handler.HandleReadyz(ledger))
	r.Get(RouteVersion, handler.HandleVersion(opts.ServiceName))
	r.Handle(RouteMetrics, promhttp.Handler())

	worlds := handler.NewWorldsHandler(ledger, opts.WorldCacheTTL)
	r.Get(RouteWorlds, worlds.HandleList())

	r.Get(RouteWS, realm.ServeHTTP)
	r.Get(RouteWSWorld, realm.ServeHTTP)

	// Swagger documentation
	r.Get(RouteSwagger, httpSwagger.WrapHandler)

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", opts.Port),
			Handler:           r,
			ReadHeaderTimeout: ReadHeaderTimeout,
		},
		limiter: limiter,
	}
}

// Handler exposes the router for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on an existing listener
func (s *Server) Serve(l net.Listener) error {
	slog.Default().Info(LogMsgServerStarting, "addr", l.Addr().String())
	return s.httpServer.Serve(l)
}

// Stop stops the server gracefully. Hijacked websocket connections are not
// tracked here; the room manager closes those.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
