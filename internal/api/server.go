// Package api exposes the administrative control surface of the
// logging runtime over HTTP: component levels, facility lifecycle, a
// recent-lines tail, and an SSE feed of change events. It is a thin
// adapter over the Logger's operations.
package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/zhanghaozz/nfs-ganesha/internal/events"
	"github.com/zhanghaozz/nfs-ganesha/internal/log"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/component"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/facility"
	"github.com/zhanghaozz/nfs-ganesha/internal/version"
)

// Options configures the API server.
type Options struct {
	Logger *log.Logger
	Bus    *events.Bus
	// Tail backs the recent-lines endpoint and SSE history; may be nil.
	Tail *facility.MemoryWriter
	// PrometheusHandler serves /metrics when set.
	PrometheusHandler http.Handler
}

// Server is the Huma v2 API server.
type Server struct {
	api        huma.API
	mux        *http.ServeMux
	httpServer *http.Server
	logger     *log.Logger
	bus        *events.Bus
	tail       *facility.MemoryWriter
}

// NewServer creates the API server with Go 1.22+ native routing.
func NewServer(opts *Options) *Server {
	mux := http.NewServeMux()

	config := huma.DefaultConfig("Log Runtime API", version.String())
	config.Info.Description = "Administrative surface for the multi-destination logging runtime"
	// Relative paths in OpenAPI, working with any host
	config.Servers = []*huma.Server{}

	api := humago.New(mux, config)

	s := &Server{
		api:    api,
		mux:    mux,
		logger: opts.Logger,
		bus:    opts.Bus,
		tail:   opts.Tail,
	}

	if opts.PrometheusHandler != nil {
		mux.Handle("GET /metrics", opts.PrometheusHandler)
	}

	s.registerRoutes()
	return s
}

// GetMux returns the underlying HTTP ServeMux for additional setup.
func (s *Server) GetMux() *http.ServeMux {
	return s.mux
}

// GetAPI returns the Huma API instance.
func (s *Server) GetAPI() huma.API {
	return s.api
}

// Start serves the API on addr, blocking until shutdown.
func (s *Server) Start(addr string) error {
	s.logger.Eventf(component.Main, "Starting admin API server on %s", addr)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}
	return s.httpServer.ListenAndServe()
}

// Stop shuts the server down immediately.
func (s *Server) Stop() error {
	s.logger.Eventf(component.Main, "Stopping admin API server")
	if s.httpServer != nil {
		return s.httpServer.Close()
	}
	return nil
}

// registerRoutes sets up all API endpoints.
func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health",
		Description: "Check API health status",
		Tags:        []string{"health"},
	}, func(ctx context.Context, input *struct{}) (*HealthResponse, error) {
		return &HealthResponse{Body: HealthData{Status: "ok"}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Version",
		Description: "Get application version information",
		Tags:        []string{"system"},
	}, func(ctx context.Context, input *struct{}) (*VersionResponse, error) {
		info := version.Get()
		return &VersionResponse{
			Body: VersionData{
				Version:   info.Version,
				GitCommit: info.GitCommit,
				BuildDate: info.BuildDate,
				GoVersion: info.GoVersion,
				Platform:  info.Platform,
			},
		}, nil
	})

	s.registerComponentRoutes()
	s.registerFacilityRoutes()
	s.registerTailRoutes()
	s.registerSSERoutes()
}
