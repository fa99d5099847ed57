package xlog

import (
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

var _ fxevent.Logger = (*FxXLogger)(nil)

// FxXLogger prints the fx application lifecycle by the "Fx" component
// logger. Hook and invoke details are debug entries, failures are errors.
type FxXLogger struct {
	logger XLogger
}

func withModule(module string, fields ...zap.Field) []zap.Field {
	if module == "" {
		return fields
	}
	return append(fields, zap.String("module", module))
}

func (l *FxXLogger) LogEvent(event fxevent.Event) {
	if l == nil || l.logger == nil {
		return
	}

	switch e := event.(type) {
	case *fxevent.OnStartExecuting:
		l.logger.Debug("HOOK OnStart",
			zap.String("function", e.FunctionName),
			zap.String("caller", e.CallerName),
		)
	case *fxevent.OnStartExecuted:
		fields := []zap.Field{
			zap.String("function", e.FunctionName),
			zap.String("caller", e.CallerName),
			zap.Duration("in", e.Runtime),
		}
		if e.Err != nil {
			l.logger.Error(e.Err, "HOOK OnStart failed", fields...)
			return
		}
		l.logger.Debug("HOOK OnStart done", fields...)
	case *fxevent.OnStopExecuting:
		l.logger.Debug("HOOK OnStop",
			zap.String("function", e.FunctionName),
			zap.String("caller", e.CallerName),
		)
	case *fxevent.OnStopExecuted:
		fields := []zap.Field{
			zap.String("function", e.FunctionName),
			zap.String("caller", e.CallerName),
			zap.Duration("in", e.Runtime),
		}
		if e.Err != nil {
			l.logger.Error(e.Err, "HOOK OnStop failed", fields...)
			return
		}
		l.logger.Debug("HOOK OnStop done", fields...)
	case *fxevent.Supplied:
		if e.Err != nil {
			l.logger.Error(e.Err, "SUPPLY failed",
				withModule(e.ModuleName,
					zap.String("type", e.TypeName),
					zap.Strings("stacktrace", e.StackTrace),
				)...,
			)
			return
		}
		l.logger.Debug("SUPPLY", withModule(e.ModuleName, zap.String("type", e.TypeName))...)
	case *fxevent.Provided:
		for _, rtype := range e.OutputTypeNames {
			l.logger.Debug("PROVIDE",
				withModule(e.ModuleName,
					zap.Bool("private", e.Private),
					zap.String("type", rtype),
					zap.String("constructor", e.ConstructorName),
				)...,
			)
		}
		if e.Err != nil {
			l.logger.Error(e.Err, "PROVIDE failed", zap.Strings("stacktrace", e.StackTrace))
		}
	case *fxevent.Replaced:
		for _, rtype := range e.OutputTypeNames {
			l.logger.Debug("REPLACE", withModule(e.ModuleName, zap.String("type", rtype))...)
		}
		if e.Err != nil {
			l.logger.Error(e.Err, "REPLACE failed", zap.Strings("stacktrace", e.StackTrace))
		}
	case *fxevent.Decorated:
		for _, rtype := range e.OutputTypeNames {
			l.logger.Debug("DECORATE",
				withModule(e.ModuleName,
					zap.String("type", rtype),
					zap.String("decorator", e.DecoratorName),
				)...,
			)
		}
		if e.Err != nil {
			l.logger.Error(e.Err, "DECORATE failed", zap.Strings("stacktrace", e.StackTrace))
		}
	case *fxevent.Invoking:
		l.logger.Debug("INVOKE", withModule(e.ModuleName, zap.String("function", e.FunctionName))...)
	case *fxevent.Invoked:
		if e.Err != nil {
			l.logger.Error(e.Err, "INVOKE failed",
				withModule(e.ModuleName,
					zap.String("function", e.FunctionName),
					zap.String("trace", e.Trace),
				)...,
			)
		}
	case *fxevent.Stopping:
		l.logger.Info("STOPPING", zap.String("signal", e.Signal.String()))
	case *fxevent.Stopped:
		if e.Err != nil {
			l.logger.Error(e.Err, "STOP failed")
		}
	case *fxevent.RollingBack:
		l.logger.Error(e.StartErr, "START failed, rolling back")
	case *fxevent.RolledBack:
		if e.Err != nil {
			l.logger.Error(e.Err, "ROLLBACK failed")
		}
	case *fxevent.Started:
		if e.Err != nil {
			l.logger.Error(e.Err, "START failed")
			return
		}
		l.logger.Debug("RUNNING")
	case *fxevent.LoggerInitialized:
		if e.Err != nil {
			l.logger.Error(e.Err, "LOGGER initialize failed")
			return
		}
		l.logger.Debug("LOGGER initialized", zap.String("constructor", e.ConstructorName))
	}
}

func NewFxXLogger(logger XLogger) *FxXLogger {
	l := &xLogger{}
	if xl, ok := logger.(*xLogger); ok {
		l.ctxFields = xl.ctxFields
		l.dynamicLevelEnabler = xl.dynamicLevelEnabler
		l.writer, l.encoder = xl.writer, xl.encoder
	} else {
		l.dynamicLevelEnabler = zap.NewAtomicLevel()
	}
	l.logger.Store(ComponentLogger(logger, "Fx"))
	return &FxXLogger{logger: l}
}
