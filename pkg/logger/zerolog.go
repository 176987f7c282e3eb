package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

const (
	permission = 0664
)

// LogBuild assembles a zerolog-backed Logger writing to a file or a writer.
type LogBuild struct {
	writer io.Writer
	path   string
	level  zerolog.Level
}

// ZeroLogger adapts a zerolog.Logger to the Logger interface.
type ZeroLogger struct {
	Logger  zerolog.Logger
	LogFile *os.File
}

func Build() *LogBuild {
	return &LogBuild{level: zerolog.InfoLevel}
}

func (build *LogBuild) FromPath(path string) *LogBuild {
	build.path = path
	return build
}

func (build *LogBuild) FromWriter(w io.Writer) *LogBuild {
	build.writer = w
	return build
}

// WithLevel sets the minimum level by name ("debug", "info", ...).
// Unknown names leave the level unchanged.
func (build *LogBuild) WithLevel(name string) *LogBuild {
	if lvl, err := zerolog.ParseLevel(name); err == nil && name != "" {
		build.level = lvl
	}
	return build
}

func (build *LogBuild) Make() (*ZeroLogger, error) {
	out := new(ZeroLogger)
	w := build.writer
	if w == nil {
		w = os.Stderr
	}
	if build.path != "" {
		f, err := os.OpenFile(build.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out.LogFile = f
		w = zerolog.SyncWriter(f)
	}
	out.Logger = zerolog.New(w).Level(build.level).With().Timestamp().Logger()
	return out, nil
}

func (z *ZeroLogger) Error(msg string, args ...any) {
	z.Logger.Error().Fields(args).Msg(msg)
}

func (z *ZeroLogger) Warn(msg string, args ...any) {
	z.Logger.Warn().Fields(args).Msg(msg)
}

func (z *ZeroLogger) Info(msg string, args ...any) {
	z.Logger.Info().Fields(args).Msg(msg)
}

func (z *ZeroLogger) Debug(msg string, args ...any) {
	z.Logger.Debug().Fields(args).Msg(msg)
}

// Close releases the log file, if any.
func (z *ZeroLogger) Close() error {
	if z.LogFile == nil {
		return nil
	}
	return z.LogFile.Close()
}
