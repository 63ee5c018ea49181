// Package server exposes the circuit processor over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"blochview/internal/circuit"
	"blochview/internal/config"
	"blochview/internal/processor"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Simulator validates and processes a circuit description.
type Simulator interface {
	Simulate(ctx context.Context, spec circuit.Spec) (*processor.Result, error)
}

// Server is the blochview HTTP API.
type Server struct {
	cfg     *config.Config
	logger  *log.Logger
	sim     Simulator
	metrics *Metrics
	cache   *responseCache
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	handler http.Handler
}

// New wires the routes and middleware described by cfg around sim.
func New(cfg *config.Config, logger *log.Logger, sim Simulator) *Server {
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		sim:     sim,
		metrics: NewMetrics(),
		cache:   newResponseCache(cfg.Cache),
	}
	if cfg.RateLimit.Rate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.Rate), cfg.RateLimit.Burst)
	}
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "process-circuit",
		MaxRequests: 1,
		Timeout:     cfg.Breaker.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Breaker.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.metrics.breaker.Set(breakerStateValue(to))
			s.logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.Handle("/api/process-circuit", breaker(s.breaker)(allowMethods(s.handleProcess, http.MethodPost)))
	mux.HandleFunc("/api/example-circuits", allowMethods(s.handleExamples, http.MethodGet))
	mux.HandleFunc("/api/supported-gates", allowMethods(s.handleGates, http.MethodGet))
	mux.Handle("/metrics", allowMethods(s.metrics.Handler().ServeHTTP, http.MethodGet))

	s.handler = chain(mux,
		recoverer(logger),
		requestID,
		accessLog(logger, s.metrics),
		cors(cfg.CORSOrigins),
		rateLimit(s.limiter),
	)
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Run listens on cfg.Addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within cfg.ShutdownTimeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
