package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	With(args ...any) Logger
}

type Config struct {
	// Level: debug, info, warn, error
	Level string `mapstructure:"level" toml:"level" yaml:"level"`
	// Format: plain, text, json
	Format string `mapstructure:"format" toml:"format" yaml:"format"`
	// Output: stdout, stderr, file
	Output string `mapstructure:"output" toml:"output" yaml:"output"`
	// FilePath is used when Output=file.
	FilePath string `mapstructure:"file_path" toml:"file_path,omitempty" yaml:"file_path,omitempty"`

	// Writer overrides Output when set.
	Writer io.Writer `mapstructure:"-" toml:"-" yaml:"-"`
}

func DefaultConfig() Config {
	return Config{
		Level:  "warn",
		Format: "plain",
		Output: "stderr",
	}
}

type SlogLogger struct {
	logger *slog.Logger
	// closer is the log file opened for Output=file.
	closer io.Closer
}

func New(cfg Config) (*SlogLogger, error) {
	level := parseLevel(cfg.Level)
	writer := cfg.Writer
	var closer io.Closer
	if writer == nil {
		w, c, err := selectWriter(cfg.Output, cfg.FilePath)
		if err != nil {
			return nil, err
		}
		writer, closer = w, c
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "text":
		handler = slog.NewTextHandler(writer, opts)
	case "json":
		handler = slog.NewJSONHandler(writer, opts)
	default:
		handler = newPlainHandler(writer, level)
	}

	return &SlogLogger{logger: slog.New(handler), closer: closer}, nil
}

// Nop returns a logger that drops everything.
func Nop() Logger {
	return &SlogLogger{logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))}
}

// Close releases the log file, if New opened one. Loggers derived with With
// share the file and must not be used afterwards.
func (l *SlogLogger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}

func (l *SlogLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

func (l *SlogLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

func (l *SlogLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

func (l *SlogLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

func (l *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{logger: l.logger.With(args...)}
}

// ValidLevel reports whether level is one parseLevel understands.
func ValidLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "info", "warn", "warning", "error", "":
		return true
	default:
		return false
	}
}

// ValidFormat reports whether format names a known handler.
func ValidFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "plain", "text", "json", "":
		return true
	default:
		return false
	}
}

// ValidOutput reports whether output names a known destination.
func ValidOutput(output string) bool {
	switch strings.ToLower(strings.TrimSpace(output)) {
	case "stdout", "stderr", "file", "":
		return true
	default:
		return false
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	case "warn", "warning", "":
		return slog.LevelWarn
	default:
		return slog.LevelWarn
	}
}

func selectWriter(output string, filePath string) (io.Writer, io.Closer, error) {
	switch strings.ToLower(strings.TrimSpace(output)) {
	case "stdout":
		return os.Stdout, nil, nil
	case "stderr", "":
		return os.Stderr, nil, nil
	case "file":
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		return f, f, nil
	default:
		return os.Stderr, nil, nil
	}
}
