package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probite-fr/probite/internal/config"
	"github.com/probite-fr/probite/internal/infrastructure/monitoring/logging"
)

func TestNewServerAppliesTimeoutDefaults(t *testing.T) {
	handler := http.NewServeMux()
	srv := NewServer(config.ServerConfig{Port: 8080}, handler, logging.NewNopLogger())

	assert.Equal(t, ":8080", srv.srv.Addr)
	assert.Equal(t, 15*time.Second, srv.srv.ReadTimeout)
	assert.Equal(t, 15*time.Second, srv.srv.WriteTimeout)
	assert.Equal(t, 30*time.Second, srv.shutdownTimeout)
	assert.Equal(t, http.Handler(handler), srv.Handler())
}

func TestNewServerHonoursConfiguredTimeouts(t *testing.T) {
	srv := NewServer(config.ServerConfig{
		Port:            9090,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    7 * time.Second,
		ShutdownTimeout: time.Second,
	}, http.NewServeMux(), logging.NewNopLogger())

	assert.Equal(t, 5*time.Second, srv.srv.ReadTimeout)
	assert.Equal(t, 7*time.Second, srv.srv.WriteTimeout)
	assert.Equal(t, time.Second, srv.shutdownTimeout)
}

func TestServerStopBeforeStart(t *testing.T) {
	srv := NewServer(config.ServerConfig{Port: 0}, http.NewServeMux(), logging.NewNopLogger())
	require.NoError(t, srv.Stop(context.Background()))
}
