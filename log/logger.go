// Package log provides structured logging for the Fuselage engine.
//
// Two logger variants are available, mirroring the teacher's split:
//   - Logger: non-sugared zap.Logger for the runner's hot apply loop
//   - SugaredLogger: printf-style logging for CLI/debug surfaces
//
// Use Logger.Sugar() to obtain a SugaredLogger when needed.
package log

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Meta is the identity every log record from a single run carries: which
// bundle and which run produced it.
type Meta struct {
	BundleID string
	RunID    string
}

// Logger wraps a non-sugared zap.Logger pre-loaded with run identity
// fields.
type Logger struct {
	zap *zap.Logger
}

// SugaredLogger wraps zap.SugaredLogger for CLI/debug convenience.
type SugaredLogger struct {
	sugar *zap.SugaredLogger
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:     "timestamp",
		LevelKey:    "level",
		MessageKey:  "message",
		EncodeTime:  zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}
}

// New creates a logger carrying meta's identity fields, writing to stderr
// at level (DebugLevel by default covers every verbosity --verbose/--quiet
// can reach; the runner filters by calling the right method, not by
// changing the core's level).
func New(meta Meta) *Logger {
	return newWithWriter(meta, os.Stderr)
}

// WithOutput returns a new Logger writing to a different sink without
// losing context fields. No CLI command calls it.
func (l *Logger) WithOutput(w io.Writer) *Logger {
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(w), zapcore.DebugLevel)
	return &Logger{zap: l.zap.WithOptions(zap.WrapCore(func(zapcore.Core) zapcore.Core { return core }))}
}

func newWithWriter(meta Meta, w io.Writer) *Logger {
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(w), zapcore.DebugLevel)

	fields := []zap.Field{}
	if meta.BundleID != "" {
		fields = append(fields, zap.String("bundle_id", meta.BundleID))
	}
	if meta.RunID != "" {
		fields = append(fields, zap.String("run_id", meta.RunID))
	}

	return &Logger{zap: zap.New(core).With(fields...)}
}

// WithResource returns a Logger scoped to a single resource id, the way
// the runner's apply loop tags every record with the resource it is
// currently converging.
func (l *Logger) WithResource(id string) *Logger {
	return &Logger{zap: l.zap.With(zap.String("resource", id))}
}

func (l *Logger) Debug(msg string, fields ...zap.Field) { l.zap.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...zap.Field)  { l.zap.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...zap.Field)  { l.zap.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...zap.Field) { l.zap.Error(msg, fields...) }

// Sugar returns a SugaredLogger for printf-style logging, used by CLI and
// debug surfaces where convenience matters more than performance.
func (l *Logger) Sugar() *SugaredLogger {
	return &SugaredLogger{sugar: l.zap.Sugar()}
}

func (s *SugaredLogger) Debugf(template string, args ...any) { s.sugar.Debugf(template, args...) }
func (s *SugaredLogger) Infof(template string, args ...any)  { s.sugar.Infof(template, args...) }
func (s *SugaredLogger) Warnf(template string, args ...any)  { s.sugar.Warnf(template, args...) }
func (s *SugaredLogger) Errorf(template string, args ...any) { s.sugar.Errorf(template, args...) }

// With returns a SugaredLogger with additional context fields.
func (s *SugaredLogger) With(args ...any) *SugaredLogger {
	return &SugaredLogger{sugar: s.sugar.With(args...)}
}
