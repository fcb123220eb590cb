// pkg/eos_io/context.go

package eos_io

import (
	"context"
	"os"
	"os/user"
	"runtime"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/eos_err"
	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RuntimeContext carries per-command state through pkg/* operations.
type RuntimeContext struct {
	Ctx        context.Context
	Log        *zap.Logger
	Timestamp  time.Time
	Span       trace.Span
	Command    string
	Attributes map[string]string
}

// NewContext starts a span for cmdName and scopes the global logger to it.
func NewContext(parent context.Context, cmdName string) *RuntimeContext {
	ctx, span := telemetry.Start(parent, cmdName)

	log := zap.L().With(zap.String("command", cmdName))
	if sc := span.SpanContext(); sc.IsValid() {
		log = log.With(zap.String("trace_id", sc.TraceID().String()))
	}

	return &RuntimeContext{
		Ctx:        ctx,
		Span:       span,
		Log:        log.Named(cmdName),
		Timestamp:  time.Now(),
		Command:    cmdName,
		Attributes: make(map[string]string),
	}
}

// HandlePanic recovers panics, logs them, and converts to an error.
func (rc *RuntimeContext) HandlePanic(errPtr *error) {
	if r := recover(); r != nil {
		*errPtr = eos_err.NewInternalError("panic recovered", cerr.AssertionFailedf("panic: %v", r))
		rc.Log.Error("Panic recovered", zap.Any("panic", r))
	}
}

// End logs outcome, records it on the command span, and ends the span.
func (rc *RuntimeContext) End(errPtr *error) {
	defer rc.Span.End()

	duration := time.Since(rc.Timestamp)
	var err error
	if errPtr != nil {
		err = *errPtr
	}

	attrs := []attribute.KeyValue{
		attribute.Bool("success", err == nil),
		attribute.Int64("duration_ms", duration.Milliseconds()),
		attribute.String("os", runtime.GOOS),
		attribute.String("error_type", classifyError(err)),
	}
	for k, v := range rc.Attributes {
		attrs = append(attrs, attribute.String(k, v))
	}
	rc.Span.SetAttributes(attrs...)

	switch {
	case err == nil:
		rc.Log.Info("Command completed", zap.Duration("duration", duration))
	case cerr.Is(err, eos_err.ErrReexecCompleted):
		rc.Log.Info("Command handed over to elevated process", zap.Duration("duration", duration))
	case eos_err.IsUserCancelled(err):
		rc.Log.Warn("Command cancelled", zap.Duration("duration", duration))
	default:
		rc.Span.RecordError(err)
		rc.Span.SetStatus(codes.Error, classifyError(err))
		rc.Log.Error("Command failed", zap.Duration("duration", duration), zap.Error(err))
	}
}

func classifyError(err error) string {
	if err == nil || cerr.Is(err, eos_err.ErrReexecCompleted) {
		return ""
	}
	return eos_err.CategoryOf(err).String()
}

// LogRuntimeExecutionContext records who is running the binary and with which privileges.
func LogRuntimeExecutionContext(rc *RuntimeContext) {
	fields := []zap.Field{
		zap.Int("real_uid", os.Getuid()),
		zap.Int("effective_uid", os.Geteuid()),
		zap.Strings("args", os.Args[1:]),
	}
	if u, err := user.Current(); err == nil {
		fields = append(fields, zap.String("username", u.Username))
	}
	if exe, err := os.Executable(); err == nil {
		fields = append(fields, zap.String("executable", exe))
	}
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" {
		fields = append(fields, zap.String("sudo_user", strings.TrimSpace(sudoUser)))
	}
	rc.Log.Debug("User + UID context", fields...)
}
