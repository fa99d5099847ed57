package observability

import (
	"context"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/shirou/gopsutil/v3/process"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const AppStatsName = "xtree/app"

var (
	once sync.Once
)

type appStats struct {
	ctx          context.Context
	goroutines   metric.Int64ObservableUpDownCounter
	processes    metric.Int64ObservableUpDownCounter
	rss          metric.Int64ObservableGauge
	registration metric.Registration
}

func (stats *appStats) waitForShutdown() {
	if stats == nil || stats.ctx == nil {
		return
	}
	go func() {
		<-stats.ctx.Done()
		if stats.registration != nil {
			_ = stats.registration.Unregister()
		}
	}()
}

func appStatsName(name string) string {
	builder := &strings.Builder{}
	builder.WriteString(AppStatsName)
	builder.WriteString("/")
	if name = strings.TrimSpace(name); len(name) > 0 {
		builder.WriteString(name)
	} else {
		builder.WriteString("default")
	}
	return builder.String()
}

// InitAppStats registers the process level gauges into the global meter
// provider once, the later calls are ignored. The callbacks are dropped
// when ctx is done.
func InitAppStats(ctx context.Context, name string) {
	once.Do(func() {
		meter := otel.Meter(
			appStatsName(name),
			metric.WithInstrumentationVersion(otelruntime.Version()),
		)
		stats := &appStats{
			ctx: ctx,
			goroutines: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
				"app.core.goroutines",
				metric.WithDescription(`The application goroutines' info.`),
			)),
			processes: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
				"app.core.processes",
				metric.WithDescription(`The application processes' info.`),
			)),
			rss: lo.Must[metric.Int64ObservableGauge](meter.Int64ObservableGauge(
				"app.process.memory.rss",
				metric.WithDescription(`The resident set size of the application process.`),
				metric.WithUnit("By"),
			)),
		}
		proc, procErr := process.NewProcess(int32(os.Getpid()))
		stats.registration = lo.Must[metric.Registration](meter.RegisterCallback(
			func(ctx context.Context, ob metric.Observer) error {
				ob.ObserveInt64(stats.goroutines, int64(runtime.NumGoroutine()))
				ob.ObserveInt64(stats.processes, int64(runtime.GOMAXPROCS(0)))
				if procErr != nil {
					return nil
				}
				// Not every platform reports the memory info.
				if mem, err := proc.MemoryInfoWithContext(ctx); err == nil && mem != nil {
					ob.ObserveInt64(stats.rss, int64(mem.RSS))
				}
				return nil
			},
			stats.goroutines, stats.processes, stats.rss,
		))
		_ = otelruntime.Start()
		stats.waitForShutdown()
	})
}
