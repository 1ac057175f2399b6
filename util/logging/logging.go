// Package logging configures zerolog the way the reference daemon's
// util/logging package does: a console writer, optionally colored, plus
// an optional rolling file writer for long-running daemon processes.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	WithConsoleLog   bool
	WithColor        bool
	EncodeLogsAsJSON bool
	Level            zerolog.Level

	WithLogFile bool
	Directory   string
	Filename    string
	MaxSize     int
	MaxBackups  int
	MaxAge      int
}

// Configure builds a *zerolog.Logger writing to the console and,
// optionally, a lumberjack-rolled file, matching the reference daemon's
// Configure(Config) *Logger.
func Configure(cfg Config) *zerolog.Logger {
	zerolog.SetGlobalLevel(cfg.Level)

	var writers []io.Writer
	if cfg.WithConsoleLog {
		if cfg.EncodeLogsAsJSON {
			writers = append(writers, os.Stdout)
		} else {
			writers = append(writers, zerolog.ConsoleWriter{Out: os.Stdout, NoColor: !cfg.WithColor})
		}
	}
	if cfg.WithLogFile {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    orDefault(cfg.MaxSize, 100),
			MaxBackups: orDefault(cfg.MaxBackups, 3),
			MaxAge:     orDefault(cfg.MaxAge, 28),
		})
	}
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	l := zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Logger()
	return &l
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
