package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

type attrsKey struct{}

// Initialize sets up the global logger writing to stdout.
func Initialize(level, format string) {
	InitializeWithWriter(level, format, os.Stdout)
}

// InitializeWithWriter sets up the global logger with the given level
// ("debug", "info", "warn", "error") and format ("json" or "text").
// Attributes attached to a context with WithAttrs are added to every
// record logged through the *Context functions.
func InitializeWithWriter(level, format string, w io.Writer) {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var base slog.Handler = slog.NewTextHandler(w, opts)
	if strings.EqualFold(format, "json") {
		base = slog.NewJSONHandler(w, opts)
	}

	defaultLogger = slog.New(contextHandler{base})
	slog.SetDefault(defaultLogger)
}

// ParseLevel maps a config level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Get returns the default logger
func Get() *slog.Logger {
	if defaultLogger == nil {
		Initialize("info", "text")
	}
	return defaultLogger
}

// WithAttrs returns a copy of ctx carrying key/value pairs, such as the
// desk device id, for request-scoped log records.
func WithAttrs(ctx context.Context, args ...any) context.Context {
	prev, _ := ctx.Value(attrsKey{}).([]any)
	merged := make([]any, 0, len(prev)+len(args))
	merged = append(merged, prev...)
	merged = append(merged, args...)
	return context.WithValue(ctx, attrsKey{}, merged)
}

type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if args, ok := ctx.Value(attrsKey{}).([]any); ok {
			r.Add(args...)
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{h.Handler.WithGroup(name)}
}

func Debug(msg string, args ...any) {
	Get().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	Get().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	Get().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Get().Error(msg, args...)
}

func InfoContext(ctx context.Context, msg string, args ...any) {
	Get().InfoContext(ctx, msg, args...)
}

func ErrorContext(ctx context.Context, msg string, args ...any) {
	Get().ErrorContext(ctx, msg, args...)
}

// WithSession returns a logger tagged with a rental session id
func WithSession(sessionID string) *slog.Logger {
	return Get().With("session_id", sessionID)
}

// WithComponent returns a logger tagged with a component name
func WithComponent(name string) *slog.Logger {
	return Get().With("component", name)
}

// EnterMethod and ExitMethod trace service calls at debug level.
func EnterMethod(methodName string, args ...any) {
	emit(slog.LevelDebug, "→ Method entered", []any{"method", methodName, "event", "enter"}, args)
}

func ExitMethod(methodName string, args ...any) {
	emit(slog.LevelDebug, "← Method exited", []any{"method", methodName, "event", "exit"}, args)
}

func ExitMethodWithError(methodName string, err error, args ...any) {
	emit(slog.LevelError, "← Method exited with error", []any{"method", methodName, "event", "exit", "error", err}, args)
}

// DatabaseCall logs a session store operation before it runs
func DatabaseCall(operation, target string, args ...any) {
	emit(slog.LevelDebug, "→ Database call", []any{"operation", operation, "target", target}, args)
}

// DatabaseResult logs the outcome of a session store operation. Failures
// are logged at error level.
func DatabaseResult(operation string, rowsAffected int64, err error, args ...any) {
	outcome("Database call", err, []any{"operation", operation, "rows_affected", rowsAffected}, args)
}

// ExternalServiceCall logs a call to SendGrid, S3 and similar services
func ExternalServiceCall(service, operation string, args ...any) {
	emit(slog.LevelDebug, "→ External service call", []any{"service", service, "operation", operation}, args)
}

// ExternalServiceResult logs the outcome of an external service call
func ExternalServiceResult(service, operation string, err error, args ...any) {
	outcome("External service call", err, []any{"service", service, "operation", operation}, args)
}

func outcome(call string, err error, lead, args []any) {
	if err != nil {
		emit(slog.LevelError, "← "+call+" failed", append(lead, "error", err), args)
		return
	}
	emit(slog.LevelDebug, "← "+call+" succeeded", lead, args)
}

// emit logs msg with the lead pairs ahead of the caller's args.
func emit(level slog.Level, msg string, lead, args []any) {
	Get().Log(context.Background(), level, msg, append(lead, args...)...)
}
