package xlog

import (
	"context"
	"errors"
	"os"
	"sync"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xtree/lib/tree"
)

type logLevel string

const (
	LogLevelDebug logLevel = "DEBUG"
	LogLevelInfo  logLevel = "INFO"
	LogLevelWarn  logLevel = "WARN"
	LogLevelError logLevel = "ERROR"
)

func (lvl logLevel) zapLevel() zapcore.Level {
	switch lvl {
	case LogLevelInfo:
		return zapcore.InfoLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelError:
		return zapcore.ErrorLevel
	case LogLevelDebug:
		fallthrough
	default:
	}
	return zapcore.DebugLevel
}

func (lvl logLevel) String() string {
	return string(lvl)
}

type logEncoderType uint8

const (
	JSON logEncoderType = iota
	PlainText
	_encMax
)

type logOutWriterType uint8

const (
	StdOut logOutWriterType = iota
	testMemAsOut
	_writerMax
)

const (
	ContextKeyMapToOmitempty = "_"
	ContextKeyMapToItself    = ""
	coreKeyIgnored           = ""
)

// writerRegistry keeps the out writers ordered by type. Writers are
// registered at init (and by tests), loggers only read them.
type writerRegistry struct {
	lock    sync.RWMutex
	writers tree.RBTree[logOutWriterType, zapcore.WriteSyncer]
}

func (r *writerRegistry) Put(typ logOutWriterType, ws zapcore.WriteSyncer) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	_, _, err := r.writers.Put(typ, ws)
	return err
}

func (r *writerRegistry) Get(typ logOutWriterType) (zapcore.WriteSyncer, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	ws, ok, _ := r.writers.Get(typ)
	return ws, ok
}

// Stop flushes every registered writer, in writer type order, and stops
// the flush loop of the buffered ones. A stopped buffered writer still
// accepts entries but only flushes them on Sync or when it is full.
func (r *writerRegistry) Stop() error {
	r.lock.RLock()
	defer r.lock.RUnlock()
	var err error
	r.writers.Foreach(func(_ int64, _ tree.RBColor, _ logOutWriterType, ws zapcore.WriteSyncer) bool {
		if s, ok := ws.(interface{ Stop() error }); ok {
			err = multierr.Append(err, s.Stop())
		} else {
			err = multierr.Append(err, ws.Sync())
		}
		return true
	})
	return err
}

// stdoutSyncer ignores the fsync errors of the std streams attached to a
// pipe or a terminal, there is nothing on disk to flush.
type stdoutSyncer struct {
	*os.File
}

func (s stdoutSyncer) Sync() error {
	if err := s.File.Sync(); err != nil &&
		!errors.Is(err, syscall.EINVAL) &&
		!errors.Is(err, syscall.ENOTTY) {
		return err
	}
	return nil
}

var (
	writerMap = &writerRegistry{
		writers: tree.NewRBTree[logOutWriterType, zapcore.WriteSyncer](),
	}
	encoderMap = map[logEncoderType]func(cfg zapcore.EncoderConfig) zapcore.Encoder{
		JSON:      zapcore.NewJSONEncoder,
		PlainText: zapcore.NewConsoleEncoder,
	}
)

func init() {
	_ = writerMap.Put(StdOut, &zapcore.BufferedWriteSyncer{
		WS:            stdoutSyncer{File: os.Stdout},
		Size:          512 * 1024,
		FlushInterval: 30 * time.Second,
	})
}

func getEncoderByType(typ logEncoderType) func(cfg zapcore.EncoderConfig) zapcore.Encoder {
	enc, ok := encoderMap[typ]
	if !ok {
		return zapcore.NewJSONEncoder
	}
	return enc
}

func getOutWriterByType(typ logOutWriterType) zapcore.WriteSyncer {
	out, ok := writerMap.Get(typ)
	if !ok {
		return zapcore.Lock(stdoutSyncer{File: os.Stdout})
	}
	return out
}

type Banner interface {
	JSON() string
	PlainText() string
}

type xLogCore interface {
	context() context.Context
	timeEncoder() zapcore.TimeEncoder
	levelEncoder() zapcore.LevelEncoder
	writeSyncer() zapcore.WriteSyncer
	outEncoder() func(cfg zapcore.EncoderConfig) zapcore.Encoder

	zapcore.Core
}

type XLogCoreConstructor func(
	context.Context,
	zapcore.LevelEnabler,
	logEncoderType,
	logOutWriterType,
	zapcore.LevelEncoder,
	zapcore.TimeEncoder,
) xLogCore

// XLogger mainly implemented by Uber zap logger.
//
// zap() exposes the underlying logger to build component loggers, which
// redefine the zapcore.Core by the xLogCore accessors.
//
// ErrorStack prints the error with its call frames in JSON, so a log
// aggregator can parse the stack instead of a zap stacktrace blob.
//
// The context methods append the fields extracted from the context, like
// the trace ID, in the ascending order of the context keys.
type XLogger interface {
	zap() *zap.Logger

	IncreaseLogLevel(level zapcore.Level)
	Level() string
	Sync() error
	Close() error
	Banner(banner Banner)

	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(err error, msg string, fields ...zap.Field)
	ErrorStack(err error, msg string, fields ...zap.Field)

	DebugContext(ctx context.Context, msg string, fields ...zap.Field)
	InfoContext(ctx context.Context, msg string, fields ...zap.Field)
	WarnContext(ctx context.Context, msg string, fields ...zap.Field)
	ErrorContext(ctx context.Context, err error, msg string, fields ...zap.Field)
	ErrorStackContext(ctx context.Context, err error, msg string, fields ...zap.Field)

	Logf(lvl zapcore.Level, format string, args ...any)
	ErrorStackf(err error, format string, args ...any)
}
