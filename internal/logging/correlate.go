package logging

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field keys shared by all correlated records.
const (
	TraceIDKey = "trace_id"
	SpanIDKey  = "span_id"
	RuntimeKey = "runtime"
	ServiceKey = "service"
)

// For returns a child logger bound to the span active in ctx. Records it
// emits carry the span's trace and span identifiers, so any log line can
// be joined back to the trace that produced it. When ctx carries no valid
// span context the receiver is returned unchanged.
func (l *Logger) For(ctx context.Context) *Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return l
	}

	fields := make([]zap.Field, 0, 2)
	if sc.HasTraceID() {
		fields = append(fields, zap.String(TraceIDKey, sc.TraceID().String()))
	}
	if sc.HasSpanID() {
		fields = append(fields, zap.String(SpanIDKey, sc.SpanID().String()))
	}
	return l.With(fields...)
}

// WithRuntime binds the process runtime facts to every record.
func (l *Logger) WithRuntime(rc zapcore.ObjectMarshaler) *Logger {
	return l.With(zap.Object(RuntimeKey, rc))
}

// WithService binds the service name to every record.
func (l *Logger) WithService(name string) *Logger {
	return l.With(zap.String(ServiceKey, name))
}

// InstallGlobals routes zap's package-level loggers and the standard
// library logger through l, so records emitted outside this package still
// carry the bound runtime and service fields. The returned function
// restores the previous globals.
func InstallGlobals(l *Logger) func() {
	restoreGlobals := zap.ReplaceGlobals(l.Logger)
	restoreStdLog := zap.RedirectStdLog(l.Logger)
	return func() {
		restoreStdLog()
		restoreGlobals()
	}
}
