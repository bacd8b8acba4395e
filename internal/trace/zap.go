package trace

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapTracer forwards events to a structured zap logger. Span ends and points
// log at info, error-scope events at error, span begins at debug.
type ZapTracer struct {
	log   *zap.Logger
	level Level
}

// NewZapTracer wraps log. A nil logger is replaced with zap.NewNop.
func NewZapTracer(log *zap.Logger, level Level) *ZapTracer {
	if log == nil {
		log = zap.NewNop()
	}
	return &ZapTracer{log: log, level: level}
}

// NewDevelopmentZapTracer builds a console zap logger writing to stderr.
func NewDevelopmentZapTracer(level Level) (*ZapTracer, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	log, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return NewZapTracer(log.Named("rcgen"), level), nil
}

// Emit logs the event.
func (t *ZapTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) {
		return
	}
	ev.Seq = NextSeq()

	fields := make([]zap.Field, 0, 6+len(ev.Extra))
	fields = append(fields,
		zap.Uint64("seq", ev.Seq),
		zap.String("scope", ev.Scope.String()),
		zap.Uint64("span", ev.SpanID),
	)
	if ev.ParentID != 0 {
		fields = append(fields, zap.Uint64("parent", ev.ParentID))
	}
	if ev.Detail != "" {
		fields = append(fields, zap.String("detail", ev.Detail))
	}
	for k, v := range ev.Extra {
		fields = append(fields, zap.String(k, v))
	}

	lvl := zapcore.InfoLevel
	switch {
	case ev.Scope == ScopeError:
		lvl = zapcore.ErrorLevel
	case ev.Kind == KindSpanBegin:
		lvl = zapcore.DebugLevel
	}
	if ce := t.log.Check(lvl, ev.Kind.String()+" "+ev.Name); ce != nil {
		ce.Write(fields...)
	}
}

// Flush syncs the logger.
func (t *ZapTracer) Flush() error {
	// Sync on a console stderr sink reports EINVAL on some platforms.
	_ = t.log.Sync() //nolint:errcheck
	return nil
}

func (t *ZapTracer) Close() error  { return t.Flush() }
func (t *ZapTracer) Level() Level  { return t.level }
func (t *ZapTracer) Enabled() bool { return t.level > LevelOff }
