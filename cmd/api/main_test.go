package main

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/creatorhub/app"
	"github.com/upb/creatorhub/config"
	"github.com/upb/creatorhub/repositories/memory"
	"github.com/upb/creatorhub/routes"
	"go.uber.org/zap/zaptest"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            0,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			ShutdownTimeout: 2 * time.Second,
		},
		Session: config.SessionConfig{
			Secret:        "main-test-secret-that-is-long-enough",
			SigningMethod: "HS256",
			TTL:           time.Hour,
		},
		Ghost: config.GhostConfig{
			URL:           "http://127.0.0.1:1",
			MembersAPIURL: "http://127.0.0.1:1/members/api",
			Timeout:       time.Second,
			MaxAttempts:   1,
		},
		Observability: config.ObservabilityConfig{LogLevel: "error", LogFormat: "json"},
	}
}

func testDependencies(t *testing.T, cfg *config.Config) *app.Dependencies {
	t.Helper()
	store := memory.NewStore()
	deps, err := app.NewDependenciesWithRepositories(cfg, nil, store.Repositories(), store.TransactionManager(), zaptest.NewLogger(t))
	require.NoError(t, err)
	return deps
}

func TestNewServer(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Port = 8080

	srv := newServer(cfg.Server, http.NotFoundHandler())

	assert.Equal(t, "127.0.0.1:8080", srv.Addr)
	assert.Equal(t, 5*time.Second, srv.ReadTimeout)
	assert.Equal(t, 5*time.Second, srv.WriteTimeout)
}

func TestServe_GracefulShutdown(t *testing.T) {
	cfg := testConfig()
	deps := testDependencies(t, cfg)
	srv := newServer(cfg.Server, routes.SetupRoutes(deps))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, deps, cfg.Server, deps.Logger) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}
}

func TestServe_ListenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := testConfig()
	cfg.Server.Port = ln.Addr().(*net.TCPAddr).Port
	deps := testDependencies(t, cfg)
	srv := newServer(cfg.Server, http.NotFoundHandler())
	require.Equal(t, "127.0.0.1:"+strconv.Itoa(cfg.Server.Port), srv.Addr)

	err = serve(context.Background(), srv, deps, cfg.Server, deps.Logger)
	assert.Error(t, err)
}
