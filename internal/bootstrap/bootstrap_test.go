package bootstrap_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/ericfisherdev/postpilot/internal/bootstrap"
	"github.com/ericfisherdev/postpilot/internal/config"
	"github.com/ericfisherdev/postpilot/internal/observability"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenUserStore_Backends(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	dir := t.TempDir()
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{name: "sqlite", cfg: config.Config{Store: config.StoreSQLite, DBPath: filepath.Join(dir, "p.db")}},
		{name: "file", cfg: config.Config{Store: config.StoreFile, UsersFile: filepath.Join(dir, "users.json")}},
		{name: "redis", cfg: config.Config{Store: config.StoreRedis, RedisURL: "redis://" + mr.Addr(), RedisPrefix: "bt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			metrics := observability.NewMetrics(prometheus.NewRegistry())

			store, closeStore, err := bootstrap.OpenUserStore(ctx, &tt.cfg, metrics, discardLogger())
			require.NoError(t, err)
			t.Cleanup(func() { _ = closeStore() })

			u, err := store.Consume(ctx, "a@x.com")
			require.NoError(t, err)
			assert.Equal(t, 2, u.Credits)

			got, err := store.Get(ctx, "a@x.com")
			require.NoError(t, err)
			assert.Equal(t, 2, got.Credits)
		})
	}
}

func TestOpenUserStore_Unknown(t *testing.T) {
	_, _, err := bootstrap.OpenUserStore(context.Background(), &config.Config{Store: "mongo"}, nil, discardLogger())
	assert.Error(t, err)
}

func TestNewUpstreamClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	client := bootstrap.NewUpstreamClient(2 * time.Second)
	assert.Equal(t, 2*time.Second, client.Timeout)

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestTracing_InboundAndUpstreamShareTrace(t *testing.T) {
	_, err := observability.InitTracing(context.Background(), observability.TracingConfig{}, discardLogger())
	require.NoError(t, err)

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(noop.NewTracerProvider())
		_ = tp.Shutdown(context.Background())
	})

	traceparents := make(chan string, 1)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceparents <- r.Header.Get("traceparent")
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(upstream.Close)

	client := bootstrap.NewUpstreamClient(2 * time.Second)
	inbound := otelhttp.NewHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, upstream.URL, nil)
		require.NoError(t, err)
		resp, err := client.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		w.WriteHeader(http.StatusOK)
	}), "postpilot")

	rec := httptest.NewRecorder()
	inbound.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/generate-linkedin", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	outbound, served := spans[0], spans[1]
	assert.Equal(t, trace.SpanKindClient, outbound.SpanKind())
	assert.Equal(t, trace.SpanKindServer, served.SpanKind())
	assert.Equal(t, served.SpanContext().TraceID(), outbound.SpanContext().TraceID())
	assert.Equal(t, served.SpanContext().SpanID(), outbound.Parent().SpanID())

	traceparent := <-traceparents
	assert.Contains(t, traceparent, served.SpanContext().TraceID().String())
	assert.Contains(t, traceparent, outbound.SpanContext().SpanID().String())
}
