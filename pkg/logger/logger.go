package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with request and booking-flow helpers
type Logger struct {
	*slog.Logger
}

// New creates a logger writing to stdout. Level comes from LOG_LEVEL.
func New() *Logger {
	return NewWithWriter(os.Stdout, os.Getenv("LOG_LEVEL"))
}

// NewWithWriter builds a logger on an arbitrary sink. Gin debug mode gets the
// text handler, everything else emits JSON.
func NewWithWriter(w io.Writer, levelStr string) *Logger {
	level := parseLevel(levelStr)
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

func parseLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
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

// WithRequestID adds request ID to logger context
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("request_id", requestID))}
}

// WithUserID adds user ID to logger context
func (l *Logger) WithUserID(userID string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("user_id", userID))}
}

// WithSession scopes the logger to one booking session
func (l *Logger) WithSession(sessionID string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("session_id", sessionID))}
}

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.String("user_agent", c.Request.UserAgent()),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogHTTPError logs an HTTP error
func (l *Logger) LogHTTPError(c *gin.Context, err error, statusCode int) {
	l.Logger.ErrorContext(c.Request.Context(),
		"HTTP Error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", statusCode),
		slog.String("error", err.Error()),
		slog.String("ip", c.ClientIP()),
	)
}

// Booking flow

// LogSessionStarted logs a new booking session for a flight
func (l *Logger) LogSessionStarted(ctx context.Context, sessionID, flightID string, passengers int) {
	l.Logger.InfoContext(ctx,
		"Booking Session Started",
		slog.String("session_id", sessionID),
		slog.String("flight_id", flightID),
		slog.Int("passenger_count", passengers),
	)
}

// LogSeatRejected logs a seat toggle that the seat map refused
func (l *Logger) LogSeatRejected(ctx context.Context, sessionID, seat, reason string) {
	l.Logger.WarnContext(ctx,
		"Seat Rejected",
		slog.String("session_id", sessionID),
		slog.String("seat", seat),
		slog.String("reason", reason),
	)
}

// LogStepAdvanced logs a wizard step transition
func (l *Logger) LogStepAdvanced(ctx context.Context, sessionID, from, to string) {
	l.Logger.InfoContext(ctx,
		"Booking Step Changed",
		slog.String("session_id", sessionID),
		slog.String("from", from),
		slog.String("to", to),
	)
}

// LogBookingConfirmed logs when payment succeeded and a receipt was issued
func (l *Logger) LogBookingConfirmed(ctx context.Context, sessionID, reference, transactionID string, total float64) {
	l.Logger.InfoContext(ctx,
		"Booking Confirmed",
		slog.String("session_id", sessionID),
		slog.String("booking_reference", reference),
		slog.String("transaction_id", transactionID),
		slog.Float64("total", total),
	)
}

// LogSearchSuperseded logs a flight search cancelled by a newer one
func (l *Logger) LogSearchSuperseded(ctx context.Context, clientKey string) {
	l.Logger.InfoContext(ctx,
		"Flight Search Superseded",
		slog.String("client_key", clientKey),
	)
}

// Security

// LogAuthSuccess logs successful authentication
func (l *Logger) LogAuthSuccess(ctx context.Context, userID, method string) {
	l.Logger.InfoContext(ctx,
		"Authentication Success",
		slog.String("user_id", userID),
		slog.String("method", method),
	)
}

// LogAuthFailure logs failed authentication
func (l *Logger) LogAuthFailure(ctx context.Context, reason, ip string) {
	l.Logger.WarnContext(ctx,
		"Authentication Failure",
		slog.String("reason", reason),
		slog.String("ip", ip),
	)
}

// LogRateLimitExceeded logs rate limit exceeded
func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx,
		"Rate Limit Exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
	)
}

// InfoWithContext logs an info message with context
func (l *Logger) InfoWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	l.Logger.InfoContext(ctx, msg, fieldArgs(fields)...)
}

// ErrorWithContext logs an error message with context
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := append([]interface{}{slog.String("error", err.Error())}, fieldArgs(fields)...)
	l.Logger.ErrorContext(ctx, msg, args...)
}

// DebugWithContext logs a debug message with context
func (l *Logger) DebugWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	l.Logger.DebugContext(ctx, msg, fieldArgs(fields)...)
}

func fieldArgs(fields map[string]interface{}) []interface{} {
	args := make([]interface{}, 0, len(fields))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return args
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
