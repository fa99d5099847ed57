package xlog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xtree/lib/infra"
)

func TestCommonCore(t *testing.T) {
	var cc xLogCore = &commonCore{}
	require.Nil(t, cc.outEncoder())
	require.Nil(t, cc.writeSyncer())
	require.Nil(t, cc.levelEncoder())
	require.Nil(t, cc.timeEncoder())
	require.Nil(t, cc.context())
	require.Nil(t, cc.(*commonCore).lvlEnabler)
	require.Nil(t, cc.(*commonCore).core)

	w := registerTestMemOut(t)
	lvlEnabler := zap.NewAtomicLevelAt(LogLevelDebug.zapLevel())
	cc = &commonCore{
		lvlEnabler: &lvlEnabler,
		lvlEnc:     zapcore.CapitalLevelEncoder,
		tsEnc:      zapcore.ISO8601TimeEncoder,
		ws:         getOutWriterByType(testMemAsOut),
		enc:        getEncoderByType(logEncoderType(6)),
	}

	config := defaultCoreEncoderCfg()
	config.EncodeLevel = cc.levelEncoder()
	config.EncodeTime = cc.timeEncoder()
	cc.(*commonCore).core = zapcore.NewCore(cc.outEncoder()(config), cc.writeSyncer(), cc.(*commonCore).lvlEnabler)
	require.NotNil(t, cc.outEncoder())
	require.NotNil(t, cc.writeSyncer())
	require.NotNil(t, cc.levelEncoder())
	require.NotNil(t, cc.timeEncoder())

	require.True(t, cc.Enabled(zapcore.DebugLevel))
	require.True(t, cc.Enabled(zapcore.ErrorLevel))

	lvlEnabler.SetLevel(zapcore.ErrorLevel)
	require.False(t, cc.Enabled(zapcore.DebugLevel))
	require.False(t, cc.Enabled(zapcore.InfoLevel))
	require.False(t, cc.Enabled(zapcore.WarnLevel))
	require.True(t, cc.Enabled(zapcore.ErrorLevel))
	require.Nil(t, cc.Check(zapcore.Entry{Level: zapcore.InfoLevel}, nil))

	lvlEnabler.SetLevel(zapcore.DebugLevel)

	core := cc.With([]zap.Field{zap.String("key", "value")})
	require.NotNil(t, core)

	ce := cc.Check(zapcore.Entry{Level: zapcore.DebugLevel, Message: "common"}, nil)
	require.NotNil(t, ce)
	err := cc.Write(ce.Entry, []zap.Field{zap.String("key", "value")})
	require.NoError(t, err)
	require.NoError(t, cc.Sync())
	require.Contains(t, w.String(), `"lvl":"DEBUG"`)
	require.Contains(t, w.String(), `"msg":"common","key":"value"}`)
	w.Reset()

	cc, err = WrapCore(cc, componentCoreEncoderCfg())
	require.NoError(t, err)
	require.NotNil(t, cc)
	err = cc.Write(zapcore.Entry{Level: zapcore.DebugLevel, LoggerName: "commonCore", Message: "wrapped"}, []zap.Field{zap.String("key", "value")})
	require.NoError(t, err)
	require.NoError(t, cc.Sync())
	require.Contains(t, w.String(), `"component":"commonCore","msg":"wrapped","key":"value"}`)

	// The wrapped core follows the level of the origin.
	lvlEnabler.SetLevel(zapcore.WarnLevel)
	require.False(t, cc.Enabled(zapcore.InfoLevel))
	lvlEnabler.SetLevel(zapcore.DebugLevel)
}

func TestWrapCore_Errors(t *testing.T) {
	_, err := WrapCore(nil, componentCoreEncoderCfg())
	var es infra.ErrorStack
	require.True(t, errors.As(err, &es))

	lvlEnabler := zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cc := newConsoleCore(nil, &lvlEnabler, JSON, StdOut, zapcore.CapitalLevelEncoder, zapcore.ISO8601TimeEncoder)
	_, err = WrapCoreNewLevelEnabler(cc, nil, componentCoreEncoderCfg())
	require.Error(t, err)

	_, err = WrapCores([]xLogCore{cc, nil}, componentCoreEncoderCfg())
	require.Error(t, err)
	_, err = WrapCoresNewLevelEnabler([]xLogCore{nil}, &lvlEnabler, componentCoreEncoderCfg())
	require.Error(t, err)
}
