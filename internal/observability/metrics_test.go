package observability

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/postpilot/internal/domain/model"
	"github.com/ericfisherdev/postpilot/internal/domain/port/driven"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveHTTP(http.MethodGet, "/api/health", http.StatusOK, time.Millisecond)
		m.ObserveGeneration("free", OutcomeSuccess)
		m.ObserveProviderLatency(time.Second)
		m.ObserveOrder("starter", OutcomeSuccess)
		m.ObserveVerification("starter", OutcomeInvalid)
		m.ObserveStore("sqlite", "get", nil, time.Millisecond)
	})
}

func TestObserveCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.ObserveGeneration("free", OutcomeSuccess)
	m.ObserveGeneration("free", OutcomeSuccess)
	m.ObserveGeneration("free", OutcomeQuotaExceeded)
	m.ObserveVerification("starter", OutcomeInvalid)
	m.ObserveHTTP(http.MethodPost, "/api/create-order", http.StatusInternalServerError, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.GenerationsTotal.WithLabelValues("free", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerationsTotal.WithLabelValues("free", OutcomeQuotaExceeded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VerificationsTotal.WithLabelValues("starter", OutcomeInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/create-order", "500")))
}

func TestRegisterMetricsEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)
	m.ObserveOrder("starter", OutcomeSuccess)

	mux := http.NewServeMux()
	RegisterMetricsEndpoint(mux, registry)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `postpilot_payment_orders_total{outcome="success",plan="starter"} 1`))
}

type stubStore struct {
	consumeErr error
	getErr     error
}

func (s *stubStore) Get(_ context.Context, id string) (model.User, error) {
	return model.DefaultUser(id), s.getErr
}

func (s *stubStore) Update(_ context.Context, id string, patch model.UserPatch) (model.User, error) {
	return patch.Apply(model.DefaultUser(id)), nil
}

func (s *stubStore) Consume(_ context.Context, id string) (model.User, error) {
	return model.DefaultUser(id), s.consumeErr
}

func TestInstrumentUserStore(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)
	ctx := context.Background()

	store := InstrumentUserStore(&stubStore{
		consumeErr: driven.ErrInsufficientCredits,
		getErr:     errors.New("disk on fire"),
	}, m, "file")

	_, err := store.Get(ctx, "a@x.com")
	require.Error(t, err)
	_, err = store.Consume(ctx, "a@x.com")
	require.ErrorIs(t, err, driven.ErrInsufficientCredits)
	_, err = store.Update(ctx, "a@x.com", model.UserPatch{})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreOperationsTotal.WithLabelValues("file", "get", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreOperationsTotal.WithLabelValues("file", "consume", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreOperationsTotal.WithLabelValues("file", "update", "ok")))
}
