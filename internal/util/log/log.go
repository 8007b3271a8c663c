// Package log builds the go-kit loggers used by the commands.
package log

import (
	"io"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

// Config holds the logging flags.
type Config struct {
	Level  string
	Format string
}

// RegisterFlags registers the logging flags on app.
func (c *Config) RegisterFlags(app *kingpin.Application) {
	app.Flag("log.level", "Only log messages with the given severity or above. One of: [debug, info, warn, error]").
		Default("info").Envar("HAVERSINE_LOG_LEVEL").EnumVar(&c.Level, "debug", "info", "warn", "error")
	app.Flag("log.format", "Output format of log messages. One of: [logfmt, json]").
		Default("logfmt").EnumVar(&c.Format, "logfmt", "json")
}

// New returns a leveled logger writing to w.
func New(w io.Writer, cfg Config) (log.Logger, error) {
	var logger log.Logger
	switch cfg.Format {
	case "", "logfmt":
		logger = log.NewLogfmtLogger(log.NewSyncWriter(w))
	case "json":
		logger = log.NewJSONLogger(log.NewSyncWriter(w))
	default:
		return nil, errors.Errorf("unrecognized log format %q", cfg.Format)
	}

	opt, err := levelOption(cfg.Level)
	if err != nil {
		return nil, err
	}
	logger = level.NewFilter(logger, opt)
	return log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller), nil
}

func levelOption(lvl string) (level.Option, error) {
	switch lvl {
	case "debug":
		return level.AllowDebug(), nil
	case "", "info":
		return level.AllowInfo(), nil
	case "warn":
		return level.AllowWarn(), nil
	case "error":
		return level.AllowError(), nil
	}
	return nil, errors.Errorf("unrecognized log level %q", lvl)
}
