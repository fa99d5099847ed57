package xlog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestConsoleCore(t *testing.T) {
	lvlEnabler := zap.NewAtomicLevelAt(LogLevelDebug.zapLevel())
	cc := newConsoleCore(
		context.TODO(),
		&lvlEnabler,
		JSON,
		_writerMax,
		zapcore.CapitalLevelEncoder,
		zapcore.ISO8601TimeEncoder,
	)
	require.Nil(t, cc)

	w := registerTestMemOut(t)
	ctx := context.TODO()
	cc = newConsoleCore(
		ctx,
		&lvlEnabler,
		JSON,
		testMemAsOut,
		zapcore.CapitalLevelEncoder,
		zapcore.ISO8601TimeEncoder,
	)
	require.Equal(t, ctx, cc.context())
	require.NotNil(t, cc.outEncoder())
	require.NotNil(t, cc.writeSyncer())
	require.NotNil(t, cc.levelEncoder())
	require.NotNil(t, cc.timeEncoder())
	require.NotNil(t, cc.(*consoleCore).core.lvlEnabler)
	require.NotNil(t, cc.(*consoleCore).core.core)

	require.True(t, cc.Enabled(zapcore.DebugLevel))
	require.True(t, cc.Enabled(zapcore.InfoLevel))
	require.True(t, cc.Enabled(zapcore.WarnLevel))
	require.True(t, cc.Enabled(zapcore.ErrorLevel))

	lvlEnabler.SetLevel(zapcore.ErrorLevel)
	require.False(t, cc.Enabled(zapcore.DebugLevel))
	require.False(t, cc.Enabled(zapcore.InfoLevel))
	require.False(t, cc.Enabled(zapcore.WarnLevel))
	require.True(t, cc.Enabled(zapcore.ErrorLevel))

	lvlEnabler.SetLevel(zapcore.DebugLevel)

	core := cc.With([]zap.Field{zap.String("key", "value")})
	require.NotNil(t, core)
	require.NoError(t, core.Write(zapcore.Entry{Level: zapcore.InfoLevel, Message: "with"}, nil))
	require.Contains(t, w.String(), `"msg":"with","key":"value"}`)
	w.Reset()

	ce := cc.Check(zapcore.Entry{Level: zapcore.DebugLevel, Message: "console"}, nil)
	err := cc.Write(ce.Entry, []zap.Field{zap.String("key", "value")})
	require.NoError(t, err)
	require.NoError(t, cc.Sync())
	require.Contains(t, w.String(), `"msg":"console","key":"value"}`)
}

func TestTeeCore(t *testing.T) {
	tee := make(xLogMultiCore, 0, 2)
	require.Nil(t, tee.context())
	require.Nil(t, tee.writeSyncer())
	require.Nil(t, tee.levelEncoder())
	require.Nil(t, tee.timeEncoder())
	require.Nil(t, tee.outEncoder())
	require.False(t, tee.Enabled(zapcore.ErrorLevel))

	w := registerTestMemOut(t)
	debugLvl := zap.NewAtomicLevelAt(zapcore.DebugLevel)
	warnLvl := zap.NewAtomicLevelAt(zapcore.WarnLevel)
	tee = XLogTeeCore(
		newConsoleCore(context.TODO(), &warnLvl, JSON, testMemAsOut, zapcore.CapitalLevelEncoder, zapcore.ISO8601TimeEncoder),
		nil,
		newConsoleCore(context.TODO(), &debugLvl, PlainText, testMemAsOut, zapcore.CapitalLevelEncoder, zapcore.ISO8601TimeEncoder),
	).(xLogMultiCore)
	require.Len(t, tee, 2)
	require.Equal(t, zapcore.DebugLevel, tee.Level())
	require.True(t, tee.Enabled(zapcore.DebugLevel))

	ce := tee.Check(zapcore.Entry{Level: zapcore.InfoLevel, Message: "info"}, nil)
	require.NotNil(t, ce)
	ce.Write(zap.Int("n", 1))
	require.Len(t, w.Lines(), 1)
	w.Reset()

	require.NoError(t, tee.Write(zapcore.Entry{Level: zapcore.ErrorLevel, Message: "error"}, nil))
	lines := w.Lines()
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], `"msg":"error"`)
	require.Contains(t, lines[1], "error")
	require.NoError(t, tee.Sync())

	wrapped, err := WrapCoresNewLevelEnabler(tee, zap.NewAtomicLevelAt(zapcore.ErrorLevel), componentCoreEncoderCfg())
	require.NoError(t, err)
	require.False(t, wrapped.Enabled(zapcore.WarnLevel))
	require.True(t, wrapped.Enabled(zapcore.ErrorLevel))
	require.Len(t, wrapped.(xLogMultiCore), 2)

	with := tee.With([]zap.Field{zap.String("k", "v")})
	require.NotNil(t, with)
}
