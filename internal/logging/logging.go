// Package logging adapts logging backends to paging.Logger.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pders01/lazyload/internal/config"
	"github.com/pders01/lazyload/internal/debuglog"
	"github.com/pders01/lazyload/internal/paging"
)

// Debuglog writes through the package-level debuglog file logger.
type Debuglog struct{}

func (Debuglog) Debug(msg string, f paging.Fields) { debuglog.WithFields(f).Debugf("%s", msg) }
func (Debuglog) Info(msg string, f paging.Fields)  { debuglog.WithFields(f).Infof("%s", msg) }
func (Debuglog) Warn(msg string, f paging.Fields)  { debuglog.WithFields(f).Warnf("%s", msg) }
func (Debuglog) Error(msg string, f paging.Fields) { debuglog.WithFields(f).Errorf("%s", msg) }

type Slog struct{ L *slog.Logger }

func (s Slog) Debug(msg string, f paging.Fields) {
	s.L.LogAttrs(context.Background(), slog.LevelDebug, msg, attrs(f)...)
}
func (s Slog) Info(msg string, f paging.Fields) {
	s.L.LogAttrs(context.Background(), slog.LevelInfo, msg, attrs(f)...)
}
func (s Slog) Warn(msg string, f paging.Fields) {
	s.L.LogAttrs(context.Background(), slog.LevelWarn, msg, attrs(f)...)
}
func (s Slog) Error(msg string, f paging.Fields) {
	s.L.LogAttrs(context.Background(), slog.LevelError, msg, attrs(f)...)
}

func attrs(f paging.Fields) []slog.Attr {
	if len(f) == 0 {
		return nil
	}
	out := make([]slog.Attr, 0, len(f))
	for k, v := range f {
		out = append(out, slog.Any(k, v))
	}
	return out
}

type Logrus struct{ E *logrus.Entry }

func (l Logrus) Debug(msg string, f paging.Fields) { l.E.WithFields(logrus.Fields(f)).Debug(msg) }
func (l Logrus) Info(msg string, f paging.Fields)  { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l Logrus) Warn(msg string, f paging.Fields)  { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l Logrus) Error(msg string, f paging.Fields) { l.E.WithFields(logrus.Fields(f)).Error(msg) }

type Zap struct{ L *zap.Logger }

func (z Zap) Debug(msg string, f paging.Fields) { z.L.Debug(msg, zf(f)...) }
func (z Zap) Info(msg string, f paging.Fields)  { z.L.Info(msg, zf(f)...) }
func (z Zap) Warn(msg string, f paging.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z Zap) Error(msg string, f paging.Fields) { z.L.Error(msg, zf(f)...) }

func zf(f paging.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		out = append(out, zap.Any(k, v))
	}
	return out
}

// New builds the logger selected by cfg.Backend. Output goes to cfg.Path,
// or to stderr when the path is empty. The returned function flushes and
// releases the backend.
func New(cfg config.LogConfig) (paging.Logger, func() error, error) {
	level := debuglog.ParseLogLevel(cfg.Level)
	noop := func() error { return nil }

	switch cfg.Backend {
	case "", "debuglog":
		if cfg.Path == "" {
			debuglog.SetOutput(level, os.Stderr)
		} else if err := debuglog.Setup(level, cfg.Path); err != nil {
			return nil, nil, err
		}
		return Debuglog{}, debuglog.Close, nil
	case "nop", "off":
		return paging.NopLogger{}, noop, nil
	}

	w, closeW, err := output(cfg.Path)
	if err != nil {
		return nil, nil, err
	}

	switch cfg.Backend {
	case "slog":
		h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slogLevel(level)})
		return Slog{L: slog.New(h)}, closeW, nil
	case "logrus":
		l := logrus.New()
		l.SetOutput(w)
		l.SetFormatter(&logrus.JSONFormatter{})
		l.SetLevel(logrusLevel(level))
		return Logrus{E: logrus.NewEntry(l)}, closeW, nil
	case "zap":
		core := zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(w),
			zapLevel(level),
		)
		l := zap.New(core)
		return Zap{L: l}, func() error {
			_ = l.Sync()
			return closeW()
		}, nil
	default:
		_ = closeW()
		return nil, nil, fmt.Errorf("unknown log backend %q", cfg.Backend)
	}
}

func output(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stderr, func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return f, f.Close, nil
}

func slogLevel(l debuglog.LogLevel) slog.Level {
	switch l {
	case debuglog.LevelDebug:
		return slog.LevelDebug
	case debuglog.LevelWarn:
		return slog.LevelWarn
	case debuglog.LevelError:
		return slog.LevelError
	case debuglog.LevelOff:
		return slog.LevelError + 4
	default:
		return slog.LevelInfo
	}
}

func logrusLevel(l debuglog.LogLevel) logrus.Level {
	switch l {
	case debuglog.LevelDebug:
		return logrus.DebugLevel
	case debuglog.LevelWarn:
		return logrus.WarnLevel
	case debuglog.LevelError:
		return logrus.ErrorLevel
	case debuglog.LevelOff:
		return logrus.PanicLevel
	default:
		return logrus.InfoLevel
	}
}

func zapLevel(l debuglog.LogLevel) zapcore.Level {
	switch l {
	case debuglog.LevelDebug:
		return zapcore.DebugLevel
	case debuglog.LevelWarn:
		return zapcore.WarnLevel
	case debuglog.LevelError:
		return zapcore.ErrorLevel
	case debuglog.LevelOff:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}
