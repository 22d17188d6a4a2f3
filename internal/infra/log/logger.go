// Package logs builds the process-wide slog logger.
package logs

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"ventas/config"
	"ventas/internal/errors"

	"go.uber.org/fx"
)

const redacted = "[REDACTED]"

// sensitiveKeys never reach the log sink with their value, whatever group they are in.
var sensitiveKeys = map[string]struct{}{
	"password":      {},
	"password_hash": {},
	"access_token":  {},
	"refresh_token": {},
	"token":         {},
	"authorization": {},
	"signature":     {},
}

// Params defines the parameters required for the logger
type Params struct {
	fx.In

	Config *config.Config
}

// New returns the root logger writing to stdout.
func New(params Params) (*slog.Logger, error) {
	return newLogger(os.Stdout, params.Config)
}

func newLogger(w io.Writer, cfg *config.Config) (*slog.Logger, error) {
	level, err := parseLogLevel(cfg.Env.Log.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: redactSecrets,
	}

	var handler slog.Handler = slog.NewJSONHandler(w, opts)
	if cfg.Env.Log.Pretty {
		handler = slog.NewTextHandler(w, opts)
	}

	attrs := make([]any, 0, 2)
	if cfg.Env.ServiceName != "" {
		attrs = append(attrs, slog.String("service", cfg.Env.ServiceName))
	}
	if cfg.Env.Env != "" {
		attrs = append(attrs, slog.String("env", cfg.Env.Env))
	}

	return slog.New(handler).With(attrs...), nil
}

func redactSecrets(_ []string, attr slog.Attr) slog.Attr {
	if _, ok := sensitiveKeys[strings.ToLower(attr.Key)]; ok {
		return slog.String(attr.Key, redacted)
	}

	return attr
}

// parseLogLevel accepts slog's level names plus "warning". Empty means info.
func parseLogLevel(level string) (slog.Level, error) {
	level = strings.TrimSpace(level)
	switch strings.ToLower(level) {
	case "":
		return slog.LevelInfo, nil
	case "warning":
		return slog.LevelWarn, nil
	}

	var parsed slog.Level
	if err := parsed.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo, errors.Wrapf(err, "unknown log level %q", level)
	}

	return parsed, nil
}
