// Package logger provides structured logging for the linkguard application
package logger

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Fields represents structured log fields
type Fields map[string]interface{}

// Logger wraps logrus.Logger with additional functionality
type Logger struct {
	*logrus.Logger
}

// Options selects formatter and output for NewLoggerWithOptions.
type Options struct {
	Level  string
	Format string // "text" or "json"

	// File enables rotated file output when set.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// NewLogger creates a new structured logger
func NewLogger(level logrus.Level) *Logger {
	logger := logrus.New()

	// Set log level
	logger.SetLevel(level)

	// Use JSON formatter for structured logging in production
	if os.Getenv("ENV") == "production" {
		logger.SetFormatter(jsonFormatter())
	} else {
		// Use text formatter for development
		logger.SetFormatter(textFormatter())
	}

	return &Logger{Logger: logger}
}

// NewLoggerWithOptions creates a logger from configuration values. Invalid
// levels fall back to info.
func NewLoggerWithOptions(opts Options) *Logger {
	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l := NewLogger(level)

	if strings.EqualFold(opts.Format, "json") {
		l.SetFormatter(jsonFormatter())
	}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			l.WithError(err).Warn("Failed to create log directory, logging to stderr only")
			return l
		}
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		}
		if level >= logrus.DebugLevel {
			l.SetOutput(io.MultiWriter(os.Stderr, rotator))
		} else {
			l.SetOutput(rotator)
		}
	}

	return l
}

func jsonFormatter() logrus.Formatter {
	return &logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
	}
}

func textFormatter() logrus.Formatter {
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	}
}

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	sessionIDKey ctxKey = "session_id"
)

// ContextWithRequestID stores a request id picked up by WithContext.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// ContextWithSessionID stores a session id picked up by WithContext.
func ContextWithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// RequestIDFromContext returns the request id stored in ctx, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithContext adds context-specific fields to the logger
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	entry := l.Logger.WithContext(ctx)

	if reqID := ctx.Value(requestIDKey); reqID != nil {
		entry = entry.WithField("request_id", reqID)
	}

	if sessID := ctx.Value(sessionIDKey); sessID != nil {
		entry = entry.WithField("session_id", sessID)
	}

	return entry
}

// WithScan adds scan-specific fields to the logger
func (l *Logger) WithScan(target, protocol string) *logrus.Entry {
	return l.Logger.WithFields(logrus.Fields{
		"target":   target,
		"protocol": protocol,
	})
}

// WithError adds error context to the logger
func (l *Logger) WithError(err error) *logrus.Entry {
	return l.Logger.WithError(err)
}

// WithFields adds multiple fields to the logger
func (l *Logger) WithFields(fields Fields) *logrus.Entry {
	return l.Logger.WithFields(logrus.Fields(fields))
}

// LogRequest logs the start and end of one backend request
func (l *Logger) LogRequest(ctx context.Context, target string, fn func() error) error {
	start := time.Now()

	l.WithContext(ctx).WithFields(logrus.Fields{
		"target": target,
		"action": "start",
	}).Info("Backend request started")

	err := fn()
	duration := time.Since(start)

	fields := logrus.Fields{
		"target":   target,
		"action":   "complete",
		"duration": duration.String(),
	}

	if err != nil {
		fields["error"] = err.Error()
		l.WithContext(ctx).WithFields(fields).Error("Backend request failed")
	} else {
		l.WithContext(ctx).WithFields(fields).Info("Backend request completed successfully")
	}

	return err
}

// Default logger instance
var defaultLogger = NewLogger(logrus.InfoLevel)

// Default returns the package-level logger.
func Default() *Logger {
	return defaultLogger
}

// SetDefault replaces the package-level logger.
func SetDefault(l *Logger) {
	if l != nil {
		defaultLogger = l
	}
}

// WithContext returns an entry with context using the default logger
func WithContext(ctx context.Context) *logrus.Entry {
	return defaultLogger.WithContext(ctx)
}
