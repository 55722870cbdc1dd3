package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probite-fr/probite/internal/infrastructure/monitoring/logging"
)

// captureLogger records every entry for assertion.
type captureLogger struct {
	mu      sync.Mutex
	entries []capturedEntry
}

type capturedEntry struct {
	level  string
	msg    string
	fields map[string]interface{}
}

func (l *captureLogger) log(level, msg string, fields []logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	l.entries = append(l.entries, capturedEntry{level: level, msg: msg, fields: m})
}

func (l *captureLogger) Debug(msg string, fields ...logging.Field) { l.log("debug", msg, fields) }
func (l *captureLogger) Info(msg string, fields ...logging.Field)  { l.log("info", msg, fields) }
func (l *captureLogger) Warn(msg string, fields ...logging.Field)  { l.log("warn", msg, fields) }
func (l *captureLogger) Error(msg string, fields ...logging.Field) { l.log("error", msg, fields) }
func (l *captureLogger) Fatal(msg string, fields ...logging.Field) { l.log("fatal", msg, fields) }
func (l *captureLogger) With(...logging.Field) logging.Logger      { return l }
func (l *captureLogger) Named(string) logging.Logger               { return l }

func (l *captureLogger) last(t *testing.T) capturedEntry {
	t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	require.NotEmpty(t, l.entries)
	return l.entries[len(l.entries)-1]
}

func serveWithLogging(logger logging.Logger, cfg LoggingConfig, status int, path string) {
	mw := RequestLogging(logger, cfg)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
}

func TestRequestLoggingLevels(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{"success logs info", http.StatusOK, "info"},
		{"client error logs warn", http.StatusNotFound, "warn"},
		{"server error logs error", http.StatusBadGateway, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &captureLogger{}
			serveWithLogging(logger, DefaultLoggingConfig(), tt.status, "/api/v1/discovery/run")

			entry := logger.last(t)
			assert.Equal(t, tt.wantLevel, entry.level)
			assert.Equal(t, "/api/v1/discovery/run", entry.fields["path"])
			assert.Equal(t, tt.status, entry.fields["status"])
		})
	}
}

func TestRequestLoggingSkipsConfiguredPaths(t *testing.T) {
	logger := &captureLogger{}
	serveWithLogging(logger, DefaultLoggingConfig(), http.StatusOK, "/healthz")
	assert.Empty(t, logger.entries)
}

func TestRequestLoggingFlagsSlowRequests(t *testing.T) {
	logger := &captureLogger{}
	cfg := LoggingConfig{SlowThreshold: time.Nanosecond}

	mw := RequestLogging(logger, cfg)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/discovery/run", nil))

	assert.Equal(t, "warn", logger.last(t).level)
}
