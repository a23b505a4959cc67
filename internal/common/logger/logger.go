package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

type ctxKey struct{}

var base = newBase()

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "timestamp",
			logrus.FieldKeyMsg:  "message",
		},
	})
	return l
}

// SetLevel changes the level of every logger created by New.
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	base.SetLevel(lvl)
	return nil
}

// SetOutput redirects all loggers, mostly for tests.
func SetOutput(w io.Writer) { base.SetOutput(w) }

type Logger struct{ entry *logrus.Entry }

func New(service string) *Logger {
	return &Logger{entry: base.WithFields(logrus.Fields{
		"service":    service,
		"hostname":   hostname(),
		"request_id": "",
	})}
}

// For returns a logger carrying the request id stored in ctx, if any.
func (l *Logger) For(ctx context.Context) *Logger {
	id := RequestID(ctx)
	if id == "" {
		return l
	}
	return &Logger{entry: l.entry.WithField("request_id", id)}
}

func (l *Logger) with(action string, fields map[string]any) *logrus.Entry {
	e := l.entry.WithField("action", action)
	if len(fields) > 0 {
		e = e.WithFields(logrus.Fields(fields))
	}
	return e
}

func (l *Logger) Info(action string, fields map[string]any)  { l.with(action, fields).Info(action) }
func (l *Logger) Debug(action string, fields map[string]any) { l.with(action, fields).Debug(action) }
func (l *Logger) Warn(action string, fields map[string]any)  { l.with(action, fields).Warn(action) }
func (l *Logger) Error(action string, err error, fields map[string]any) {
	l.with(action, fields).WithError(err).Error(action)
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func hostname() string { h, _ := os.Hostname(); return h }
