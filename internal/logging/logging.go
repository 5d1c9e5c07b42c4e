// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dkeye/Remote/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup installs a console logger on stderr, teeing into a rotating file
// when cfg.File is set. The returned closer flushes the file.
func Setup(cfg config.LogConfig) (io.Closer, error) {
	return setup(cfg, os.Stderr)
}

func setup(cfg config.LogConfig, console io.Writer) (io.Closer, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		l, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		level = l
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	out := zerolog.ConsoleWriter{Out: console, TimeFormat: time.TimeOnly}
	if cfg.File == "" {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
		return nopCloser{}, nil
	}

	file := NewRotatingWriter(cfg)
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(out, file)).With().Timestamp().Logger()
	return file, nil
}

// NewRotatingWriter creates a log writer with rotation support.
func NewRotatingWriter(cfg config.LogConfig) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
}
