package main

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xtree/lib/tree"
	"github.com/benz9527/xtree/observability"
	"github.com/benz9527/xtree/xlog"
)

type demoOut struct {
	io.Writer
}

type demoBanner struct{}

func (demoBanner) JSON() string {
	return `{"app":"rbtree-demo"}`
}

func (demoBanner) PlainText() string {
	return "rbtree-demo\n"
}

func newLogger(opts *options) xlog.XLogger {
	enc := xlog.JSON
	if opts.logEncoder == "text" {
		enc = xlog.PlainText
	}
	// The level comes from XLOG_LVL.
	logger := xlog.NewXLogger(xlog.WithXLoggerEncoder(enc))
	logger.Banner(demoBanner{})
	return logger
}

// metrics is the installed meter provider, nil when disabled.
type metrics struct {
	shutdown observability.ShutdownFunc
}

func newMetrics(lc fx.Lifecycle, opts *options, out *demoOut, logger xlog.XLogger) (*metrics, error) {
	m := &metrics{}
	var err error
	switch opts.metrics {
	case metricsStdout:
		m.shutdown, err = observability.NewConsoleMetricsExporter(
			10*time.Second,
			5*time.Second,
			stdoutmetric.WithWriter(out),
		)
	case metricsPrometheus:
		m.shutdown, err = observability.NewPrometheusMetricsExporter()
		if err == nil {
			lc.Append(scrapeHook(opts.metricsAddr, logger))
		}
	default:
		return m, nil
	}
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	observability.InitAppStats(ctx, "rbtree-demo")
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			cancel()
			return m.shutdown(ctx)
		},
	})
	return m, nil
}

func (m *metrics) enabled() bool {
	return m != nil && m.shutdown != nil
}

func scrapeHook(addr string, logger xlog.XLogger) fx.Hook {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			logger.Info("prometheus scrape endpoint", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error(err, "prometheus scrape endpoint closed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	}
}

func newDemoTree(opts *options, logger xlog.XLogger, m *metrics) tree.RBTree[int64, string] {
	treeOpts := make([]tree.RBTreeOpt[int64, string], 0, 4)
	treeOpts = append(treeOpts, tree.WithRBTreeCapacity[int64, string](len(opts.keys)+opts.random))
	if opts.desc {
		treeOpts = append(treeOpts, tree.WithRBTreeDesc[int64, string]())
	}
	if opts.trace {
		treeOpts = append(treeOpts, tree.WithRBTreeTracer[int64, string](
			xlog.ComponentLogger(logger, "rbtree", zap.NewAtomicLevelAt(zapcore.DebugLevel)),
		))
	}
	if m.enabled() {
		treeOpts = append(treeOpts, tree.WithRBTreeStats[int64, string]("demo"))
	}
	return tree.NewRBTree[int64, string](treeOpts...)
}

func setMaxProcs(lc fx.Lifecycle, logger xlog.XLogger) error {
	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Logf(zapcore.DebugLevel, format, args...)
	}))
	if err != nil {
		return err
	}
	lc.Append(fx.StopHook(undo))
	return nil
}

func newApp(opts *options, stdout io.Writer) *fx.App {
	return fx.New(
		fx.Supply(opts, &demoOut{Writer: stdout}),
		fx.Provide(
			newLogger,
			newMetrics,
			newDemoTree,
		),
		fx.WithLogger(func(logger xlog.XLogger) fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.Invoke(setMaxProcs),
		fx.Invoke(func(lc fx.Lifecycle, opts *options, out *demoOut, logger xlog.XLogger, t tree.RBTree[int64, string]) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					return runDemo(opts, out, logger, t)
				},
				OnStop: func(ctx context.Context) error {
					t.Release()
					return multierr.Append(logger.Sync(), logger.Close())
				},
			})
		}),
	)
}
