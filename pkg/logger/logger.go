package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/DMHCAIT/crm-backend-sub002/pkg/config"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const timestampFormat = "2006-01-02 15:04:05"

// Logger is a logrus logger carrying a fixed set of fields. Derived
// loggers share the underlying output and level.
type Logger struct {
	*logrus.Logger
	fields logrus.Fields
}

// NewLogger creates a new logger instance from logging configuration
func NewLogger(cfg config.LoggingConfig) *Logger {
	log := logrus.New()

	logLevel, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	log.SetLevel(logLevel)

	l := &Logger{
		Logger: log,
		fields: make(logrus.Fields),
	}
	l.SetFormatter(cfg.Format)

	if cfg.File != "" {
		logDir := filepath.Dir(cfg.File)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			fmt.Printf("Failed to create log directory: %v\n", err)
		} else {
			fileLogger := &lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    orDefault(cfg.MaxSize, 100),
				MaxBackups: orDefault(cfg.MaxBackups, 3),
				MaxAge:     orDefault(cfg.MaxAge, 28),
				Compress:   cfg.Compress,
			}

			// Write to both file and stdout
			log.SetOutput(io.MultiWriter(os.Stdout, fileLogger))
		}
	}

	return l
}

// FromLogrus wraps an existing logrus logger
func FromLogrus(log *logrus.Logger) *Logger {
	return &Logger{
		Logger: log,
		fields: make(logrus.Fields),
	}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return FromLogrus(log)
}

// WithField returns a derived logger with one more field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a derived logger; the receiver is left untouched
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	newFields := make(logrus.Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &Logger{
		Logger: l.Logger,
		fields: newFields,
	}
}

// WithComponent adds a component field to the logger
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithField("component", component)
}

// Debug logs a debug message with optional key-value pairs
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.log(logrus.DebugLevel, msg, keysAndValues)
}

// Info logs an info message. keysAndValues alternate string keys and
// values, e.g. log.Info("Starting server", "addr", addr).
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.log(logrus.InfoLevel, msg, keysAndValues)
}

// Warning logs a warning message with optional key-value pairs
func (l *Logger) Warning(msg string, keysAndValues ...interface{}) {
	l.log(logrus.WarnLevel, msg, keysAndValues)
}

// Error logs an error message with optional key-value pairs
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.log(logrus.ErrorLevel, msg, keysAndValues)
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(msg string, keysAndValues ...interface{}) {
	l.log(logrus.FatalLevel, msg, keysAndValues)
	l.Logger.Exit(1)
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.entry().Logf(logrus.DebugLevel, format, args...)
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.entry().Logf(logrus.InfoLevel, format, args...)
}

// Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.entry().Logf(logrus.WarnLevel, format, args...)
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.entry().Logf(logrus.ErrorLevel, format, args...)
}

func (l *Logger) entry() *logrus.Entry {
	return l.Logger.WithFields(l.fields)
}

func (l *Logger) log(level logrus.Level, msg string, keysAndValues []interface{}) {
	entry := l.entry()
	if len(keysAndValues) > 0 {
		entry = entry.WithFields(pairs(keysAndValues))
	}
	entry.Log(level, msg)
}

// pairs turns alternating key, value arguments into fields. A non-string
// key or a trailing value without a key is kept under "arg<N>".
func pairs(keysAndValues []interface{}) logrus.Fields {
	fields := make(logrus.Fields, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok || i+1 == len(keysAndValues) {
			fields[fmt.Sprintf("arg%d", i)] = keysAndValues[i]
			i--
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}

// SecurityLogger records a rejected request or failed login at warning
// level. details carries the internal reason and never reaches a client.
func (l *Logger) SecurityLogger(event, userID, details string) {
	l.WithFields(map[string]interface{}{
		"event_type": "security",
		"event":      event,
		"user_id":    userID,
		"details":    details,
		"timestamp":  time.Now().Unix(),
	}).Warning("Security event logged")
}

// AuditLogger records a successful login or lead mutation
func (l *Logger) AuditLogger(action, userID, resource, details string) {
	l.WithFields(map[string]interface{}{
		"event_type": "audit",
		"action":     action,
		"user_id":    userID,
		"resource":   resource,
		"details":    details,
		"timestamp":  time.Now().Unix(),
	}).Info("Audit event logged")
}

// SetLogLevel changes the level of the shared logrus logger
func (l *Logger) SetLogLevel(level string) error {
	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	l.Logger.SetLevel(logLevel)
	return nil
}

// SetFormatter selects JSON output for "json" and text otherwise
func (l *Logger) SetFormatter(format string) {
	switch format {
	case "json":
		l.Logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
		})
	default:
		l.Logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: timestampFormat,
		})
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
