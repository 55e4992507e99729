// If you are AI: This file implements the HTTP server lifecycle and routing.
// It owns the stream registry and wires every service onto the main and health listeners.

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"trinity/internal/auth"
	"trinity/internal/codec"
	"trinity/internal/config"
	"trinity/internal/core/bus"
	"trinity/internal/logging"
	"trinity/internal/metrics"
	"trinity/internal/store"
	"trinity/internal/svc/api"
	"trinity/internal/svc/authsvc"
	"trinity/internal/svc/health"
	"trinity/internal/svc/httpstream"
	"trinity/internal/svc/ingest"
	"trinity/internal/svc/reaper"
	"trinity/internal/svc/wsstream"
)

// Server wraps the HTTP servers and their dependencies.
// A Server serves at most once; Shutdown may be called before, during or after Serve.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	registry *bus.Registry
	store    *store.Store
	metrics  *metrics.Metrics
	reaper   *reaper.Manager
	limiter  *auth.RateLimiter

	httpServer   *http.Server
	healthServer *http.Server

	started  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	storeOnce sync.Once
	storeErr  error
}

// New creates a new server instance with the given configuration.
// The database is opened and migrated here; listeners are not opened until Start or Serve.
func New(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	registry, err := bus.NewRegistry(cfg.Registry.ShardCount)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(promReg)

	// A nil issuer disables authentication.
	var issuer *auth.Issuer
	if cfg.Auth.Enabled {
		issuer = auth.NewIssuer(cfg.Auth)
	}
	authn := auth.NewAuthenticator(issuer, logger)

	s := &Server{
		cfg:      cfg,
		logger:   logging.Component(logger, "server"),
		registry: registry,
		store:    st,
		metrics:  m,
		reaper:   reaper.NewManager(registry, cfg.Stream.IdleTimeout, cfg.Stream.ReapInterval, m, logger),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	mux := http.NewServeMux()

	httpstream.NewService(registry, httpstream.Options{
		Interval:    cfg.Stream.FragmentInterval,
		ContentType: cfg.Stream.ContentType,
	}, m, logger).RegisterRoutes(mux)

	wsstream.NewService(registry, cfg.Stream.FragmentInterval, m, logger).RegisterRoutes(mux)

	ingest.NewService(registry, authn, ingest.Options{
		MaxChunkBytes: cfg.Stream.MaxChunkBytes,
		Encoder:       codec.NewWAVEncoder(),
		Format: codec.Format{
			SampleRate:    cfg.Codec.SampleRate,
			Channels:      cfg.Codec.Channels,
			BitsPerSample: cfg.Codec.BitsPerSample,
		},
	}, m, logger).RegisterRoutes(mux)

	services := []string{"http_stream", "ws_stream", "ingest"}
	if issuer != nil {
		s.limiter = auth.NewRateLimiter(cfg.Auth.LoginRPS, cfg.Auth.LoginBurst)
		authsvc.NewService(st, issuer, s.limiter, m, logger).RegisterRoutes(mux)
		services = append(services, "auth")
	}
	if s.reaper.Enabled() {
		services = append(services, "reaper")
	}

	api.NewService(registry, s.reaper, authn, m, logger, services).RegisterRoutes(mux)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.BindAddress, cfg.Server.HTTPPort),
		Handler:           Chain(mux, Recovery(logger), RequestLogger(logger), Metrics(m)),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	healthMux := http.NewServeMux()
	health.New(registry, promReg, st).RegisterRoutes(healthMux)
	s.healthServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.BindAddress, cfg.Server.HealthPort),
		Handler:           Chain(healthMux, Recovery(logger)),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
	}

	return s, nil
}

// Registry returns the stream registry owned by this server.
func (s *Server) Registry() *bus.Registry {
	return s.registry
}

// Store returns the user store.
func (s *Server) Store() *store.Store {
	return s.store
}

// Start opens the configured listeners and serves until Shutdown or a listener error.
func (s *Server) Start(ctx context.Context) error {
	httpLn, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen http: %w", err)
	}
	healthLn, err := net.Listen("tcp", s.healthServer.Addr)
	if err != nil {
		httpLn.Close()
		return fmt.Errorf("listen health: %w", err)
	}
	return s.Serve(ctx, httpLn, healthLn)
}

// Serve runs both servers on the given listeners and blocks until they stop.
// Request contexts derive from the serve context, so shutdown ends streaming loops.
func (s *Server) Serve(ctx context.Context, httpLn, healthLn net.Listener) error {
	if !s.started.CompareAndSwap(false, true) {
		return errors.New("server already started")
	}
	defer close(s.done)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	base := func(net.Listener) context.Context { return gctx }
	s.httpServer.BaseContext = base
	s.healthServer.BaseContext = base

	s.reaper.Start()
	defer s.reaper.Stop()

	s.logger.Info("server started",
		zap.String("http_addr", httpLn.Addr().String()),
		zap.String("health_addr", healthLn.Addr().String()),
		zap.Int("shards", s.registry.ShardCount()),
	)

	g.Go(func() error { return serveHTTP(s.httpServer, httpLn) })
	g.Go(func() error { return serveHTTP(s.healthServer, healthLn) })
	if s.limiter != nil {
		g.Go(func() error {
			s.limiter.Run(gctx)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return s.stopServers()
	})

	err := g.Wait()
	if cerr := s.closeStore(); cerr != nil {
		s.logger.Warn("closing store", zap.Error(cerr))
	}
	return err
}

// stopServers closes producer sessions and drains both servers within the shutdown timeout.
func (s *Server) stopServers() error {
	s.registry.Range(func(stream *bus.Stream) bool {
		if sess := stream.Session(); sess != nil {
			sess.Close()
		}
		return true
	})

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	return errors.Join(s.httpServer.Shutdown(ctx), s.healthServer.Shutdown(ctx))
}

// Shutdown gracefully stops the server and waits for Serve to return or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stop) })
	if !s.started.Load() {
		return s.closeStore()
	}

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ShutdownWithTimeout stops the server using the configured shutdown timeout.
// This is a convenience wrapper around Shutdown.
func (s *Server) ShutdownWithTimeout() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout+time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}

// closeStore closes the user store exactly once.
func (s *Server) closeStore() error {
	s.storeOnce.Do(func() {
		s.storeErr = s.store.Close()
	})
	return s.storeErr
}

// serveHTTP runs srv on ln, treating a graceful close as success.
func serveHTTP(srv *http.Server, ln net.Listener) error {
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
