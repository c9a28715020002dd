// server/server.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package server provides the HTTP interface to the landing location
// catalog and the reachability zones computed from it.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/TilBlechschmidt/AviationEmergencyLocations/aviation"
	"github.com/TilBlechschmidt/AviationEmergencyLocations/log"
	"github.com/TilBlechschmidt/AviationEmergencyLocations/zones"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const DefaultAddr = ":8080"
const DefaultCacheSize = 256

// DefaultWarmAltitudes are the altitudes (m) precomputed at startup.
var DefaultWarmAltitudes = []float64{150, 300, 600, 900}

type Config struct {
	Addr      string
	CacheSize int
	// Zero keeps cached responses until they are evicted.
	CacheTTL time.Duration
	// Optional shared cache.
	Redis *redis.Client
	// Maximum number of concurrent computations while warming the cache;
	// zero selects GOMAXPROCS.
	WarmWorkers int
	// Prometheus registry for the service's metrics; nil selects the
	// global one.
	Registerer prometheus.Registerer
}

type Server struct {
	config    Config
	catalog   *aviation.Catalog
	engine    *zones.Engine
	cache     *tieredCache
	metrics   *Metrics
	inflight  singleflight.Group
	router    *mux.Router
	startTime time.Time
	lg        *log.Logger
}

func NewServer(config Config, catalog *aviation.Catalog, engine *zones.Engine, lg *log.Logger) (*Server, error) {
	if catalog == nil || engine == nil {
		return nil, fmt.Errorf("catalog and engine must be provided: %w", ErrServerMisconfigured)
	}
	if config.Addr == "" {
		config.Addr = DefaultAddr
	}
	if config.CacheSize <= 0 {
		config.CacheSize = DefaultCacheSize
	}

	metrics, err := NewMetrics(config.Registerer)
	if err != nil {
		return nil, err
	}

	layers := []Cache{NewMemoryCache(config.CacheSize, config.CacheTTL)}
	if config.Redis != nil {
		layers = append(layers, NewRedisCache(config.Redis, config.CacheTTL, lg))
	}

	s := &Server{
		config:    config,
		catalog:   catalog,
		engine:    engine,
		cache:     newTieredCache(metrics, layers...),
		metrics:   metrics,
		startTime: time.Now(),
		lg:        lg,
	}
	s.router = s.makeRouter()

	return s, nil
}

func (s *Server) makeRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.instrument)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/aircraft", s.aircraftListHandler).Methods(http.MethodGet)
	api.HandleFunc("/aircraft/{id}", s.aircraftHandler).Methods(http.MethodGet)
	api.HandleFunc("/locations/{id}", s.locationHandler).Methods(http.MethodGet)
	api.HandleFunc("/closest", s.closestHandler).Methods(http.MethodGet)
	api.HandleFunc("/reachability", s.reachabilityHandler).Methods(http.MethodGet)
	api.HandleFunc("/lines", s.linesHandler).Methods(http.MethodGet)

	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/sup", s.statsHandler).Methods(http.MethodGet)

	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves requests until ctx is canceled and then shuts the
// server down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}

func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.lg.Infof("HTTP server listening on %s", listener.Addr())
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		s.lg.Info("shutting down HTTP server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server shutdown: %w", err)
		}
		return nil
	}
}

// Warm precomputes the reachability zones of every aircraft at each of
// the given altitudes. Aircraft whose zones can't be computed are logged
// and skipped.
func (s *Server) Warm(ctx context.Context, altitudes []float64) error {
	start := time.Now()

	eg, ctx := errgroup.WithContext(ctx)
	if s.config.WarmWorkers > 0 {
		eg.SetLimit(s.config.WarmWorkers)
	} else {
		eg.SetLimit(runtime.GOMAXPROCS(0))
	}

	for _, ac := range s.catalog.Aircraft() {
		for _, alt := range altitudes {
			eg.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				if _, err := s.reachability(ctx, ac, alt); err != nil {
					if classifyError(err).status == http.StatusUnprocessableEntity {
						s.lg.Warnf("%s at %.0fm: %v", ac.ID, alt, err)
						return nil
					}
					return err
				}
				return nil
			})
		}
	}

	if err := eg.Wait(); err != nil {
		return err
	}

	s.lg.Info("warmed reachability cache", "aircraft", len(s.catalog.Aircraft()),
		"altitudes", altitudes, "elapsed", time.Since(start))
	return nil
}
