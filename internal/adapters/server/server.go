// Package server mounts the board API, the MCP tools, and liveness and
// readiness checks on one listener.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hylla/statusboard/internal/adapters/server/common"
	"github.com/hylla/statusboard/internal/adapters/server/httpapi"
	"github.com/hylla/statusboard/internal/adapters/server/mcpapi"
)

const (
	defaultBindAddress  = "127.0.0.1:8080"
	defaultAPIEndpoint  = "/api/v1"
	defaultMCPEndpoint  = "/mcp"
	defaultServerName   = "statusboard"
	readHeaderTimeout   = 10 * time.Second
	shutdownGracePeriod = 5 * time.Second
)

// Config holds the listener address, mount points, and MCP server identity.
type Config struct {
	HTTPBind      string
	APIEndpoint   string
	MCPEndpoint   string
	ServerName    string
	ServerVersion string
}

// Dependencies are the board-facing services the transports call into.
type Dependencies struct {
	OptionMetadata common.OptionMetadataReader
	Boards         common.BoardService
}

// mounted is one built handler tree and its readiness gate.
type mounted struct {
	cfg   Config
	mux   *http.ServeMux
	ready *readiness
}

// NewHandler builds the handler tree without listening.
func NewHandler(cfg Config, deps Dependencies) (http.Handler, Config, error) {
	m, err := mount(cfg, deps)
	if err != nil {
		return nil, Config{}, err
	}
	return m.mux, m.cfg, nil
}

func mount(cfg Config, deps Dependencies) (*mounted, error) {
	cfg, err := normalizeConfig(cfg)
	if err != nil {
		return nil, err
	}
	if deps.OptionMetadata == nil {
		return nil, errors.New("option metadata dependency is required")
	}

	ready := newReadiness(deps.Boards, readinessTimeout)
	boards := ready.track(deps.Boards)

	tools, err := mcpapi.NewHandler(mcpapi.Config{
		ServerName:    cfg.ServerName,
		ServerVersion: cfg.ServerVersion,
		EndpointPath:  cfg.MCPEndpoint,
	}, deps.OptionMetadata, boards)
	if err != nil {
		return nil, fmt.Errorf("configure mcp handler: %w", err)
	}
	api := http.StripPrefix(cfg.APIEndpoint, httpapi.NewHandler(boards, deps.OptionMetadata))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", serveLiveness)
	mux.Handle("GET /readyz", ready)
	mux.Handle(cfg.MCPEndpoint, tools)
	mux.Handle(cfg.APIEndpoint, api)
	mux.Handle(cfg.APIEndpoint+"/", api)
	return &mounted{cfg: cfg, mux: mux, ready: ready}, nil
}

// Run listens until ctx is canceled or the listener fails. The first board
// load starts right away so /readyz flips without waiting for a client.
func Run(ctx context.Context, cfg Config, deps Dependencies) error {
	if ctx == nil {
		ctx = context.Background()
	}
	m, err := mount(cfg, deps)
	if err != nil {
		return fmt.Errorf("build server handler: %w", err)
	}
	srv := &http.Server{
		Addr:              m.cfg.HTTPBind,
		Handler:           m.mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	served := make(chan error, 1)
	go func() {
		served <- srv.ListenAndServe()
	}()
	go m.ready.check(ctx)

	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen and serve %s: %w", m.cfg.HTTPBind, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGracePeriod)
	defer cancel()
	shutdownErr := srv.Shutdown(shutdownCtx)
	if err := <-served; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve after shutdown: %w", err)
	}
	if shutdownErr != nil {
		return fmt.Errorf("shutdown server: %w", shutdownErr)
	}
	return nil
}

func normalizeConfig(cfg Config) (Config, error) {
	cfg.HTTPBind = strings.TrimSpace(cfg.HTTPBind)
	if cfg.HTTPBind == "" {
		cfg.HTTPBind = defaultBindAddress
	}
	cfg.APIEndpoint = normalizeEndpoint(cfg.APIEndpoint, defaultAPIEndpoint)
	cfg.MCPEndpoint = normalizeEndpoint(cfg.MCPEndpoint, defaultMCPEndpoint)
	if cfg.APIEndpoint == cfg.MCPEndpoint {
		return Config{}, fmt.Errorf("api and mcp endpoints must differ: both %s", cfg.APIEndpoint)
	}
	for _, reserved := range []string{"/healthz", "/readyz"} {
		if cfg.APIEndpoint == reserved || cfg.MCPEndpoint == reserved {
			return Config{}, fmt.Errorf("endpoint %s is reserved for health checks", reserved)
		}
	}
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = defaultServerName
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	return cfg, nil
}

// normalizeEndpoint returns path as "/a/b", or fallback when path is empty or root.
func normalizeEndpoint(path, fallback string) string {
	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" {
		return fallback
	}
	return "/" + path
}

func serveLiveness(w http.ResponseWriter, _ *http.Request) {
	writeHealth(w, http.StatusOK, healthStatus{Status: "ok"})
}
