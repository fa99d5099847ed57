package observability

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestConsoleMetricsExporter(t *testing.T) {
	buf := &bytes.Buffer{}
	shutdown, err := NewConsoleMetricsExporter(time.Hour, time.Second, stdoutmetric.WithWriter(buf))
	require.NoError(t, err)

	counter, err := otel.Meter("xtree/test/console").Int64Counter("test.console.count")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	// Flushed on shutdown.
	require.NoError(t, shutdown(context.Background()))
	require.Contains(t, buf.String(), "test.console.count")
	require.Contains(t, buf.String(), "xtree/test/console")
}

func TestPrometheusMetricsExporter(t *testing.T) {
	reg := prometheus.NewRegistry()
	shutdown, err := NewPrometheusMetricsExporter(otelprom.WithRegisterer(reg))
	require.NoError(t, err)
	defer func() {
		require.NoError(t, shutdown(context.Background()))
	}()

	counter, err := otel.Meter("xtree/test/prometheus").Int64Counter("test.prometheus.count")
	require.NoError(t, err)
	counter.Add(context.Background(), 7)

	srv := httptest.NewServer(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "test_prometheus_count_total")
}

func TestAppStatsName(t *testing.T) {
	require.Equal(t, "xtree/app/default", appStatsName(""))
	require.Equal(t, "xtree/app/default", appStatsName("  "))
	require.Equal(t, "xtree/app/demo", appStatsName("demo"))
}

func TestInitAppStats(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() {
		_ = provider.Shutdown(context.Background())
	}()
	otel.SetMeterProvider(provider)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	InitAppStats(ctx, "test")
	InitAppStats(ctx, "ignored")

	rm := metricdata.ResourceMetrics{}
	require.NoError(t, reader.Collect(context.Background(), &rm))
	names := make(map[string]struct{}, 8)
	for _, sm := range rm.ScopeMetrics {
		if sm.Scope.Name != "xtree/app/test" {
			require.NotEqual(t, "xtree/app/ignored", sm.Scope.Name)
			continue
		}
		for _, m := range sm.Metrics {
			names[m.Name] = struct{}{}
		}
	}
	require.Contains(t, names, "app.core.goroutines")
	require.Contains(t, names, "app.core.processes")
}
