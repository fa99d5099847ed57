package xlog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/fx/fxtest"
)

type testFxComponent struct {
	name string
}

func TestFxXLogger(t *testing.T) {
	w := registerTestMemOut(t)
	logger := NewXLogger(
		WithXLoggerLevel(LogLevelDebug),
		WithXLoggerWriter(testMemAsOut),
	)

	app := fxtest.New(t,
		fx.WithLogger(func() fxevent.Logger {
			return NewFxXLogger(logger)
		}),
		fx.Provide(func() *testFxComponent {
			return &testFxComponent{name: "rbtree"}
		}),
		fx.Invoke(func(lc fx.Lifecycle, c *testFxComponent) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					return nil
				},
			})
		}),
	)
	app.RequireStart().RequireStop()
	require.NoError(t, logger.Sync())

	out := w.String()
	require.Contains(t, out, `"component":"Fx"`)
	require.Contains(t, out, `"msg":"PROVIDE"`)
	require.Contains(t, out, `"msg":"HOOK OnStart done"`)
	require.Contains(t, out, `"msg":"RUNNING"`)
	require.NotContains(t, out, "callAt")
}

func TestFxXLogger_Failures(t *testing.T) {
	w := registerTestMemOut(t)
	logger := NewXLogger(
		WithXLoggerLevel(LogLevelError),
		WithXLoggerWriter(testMemAsOut),
	)
	fxLogger := NewFxXLogger(logger)

	errStart := errors.New("start failed")
	fxLogger.LogEvent(&fxevent.OnStartExecuted{FunctionName: "start", Err: errStart})
	fxLogger.LogEvent(&fxevent.RollingBack{StartErr: errStart})
	fxLogger.LogEvent(&fxevent.Started{})
	fxLogger.LogEvent(&fxevent.Invoked{FunctionName: "invoke", ModuleName: "tree", Err: errStart})
	require.NoError(t, logger.Sync())

	lines := w.Lines()
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], `"msg":"HOOK OnStart failed","error":"start failed","function":"start"`)
	require.Contains(t, lines[1], `"msg":"START failed, rolling back","error":"start failed"}`)
	require.Contains(t, lines[2], `"module":"tree"`)

	var nilLogger *FxXLogger
	require.NotPanics(t, func() {
		nilLogger.LogEvent(&fxevent.Started{})
	})
}
