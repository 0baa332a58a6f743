package logger

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Config настройки логгера, заполняются из окружения приложения
type Config struct {
	Encoding string `envconfig:"ENCODING"`
	Level    string `envconfig:"LEVEL"`
}

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// New собирает корневой slog-логгер: json пишет в stdout, console в stderr.
// Неизвестный уровень или кодировка даёт панику сразу на старте
func New(app string, cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = &Config{}
	}

	level, ok := levels[strings.ToLower(orDefault(cfg.Level, "info"))]
	if !ok {
		panic(fmt.Errorf("logger: unknown level %q", cfg.Level))
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
	}

	var handler slog.Handler
	switch encoding := orDefault(cfg.Encoding, "console"); encoding {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	case "console":
		handler = slog.NewTextHandler(os.Stderr, opts)
	default:
		panic(fmt.Errorf("logger: unknown encoding %q", encoding))
	}

	return slog.New(handler).With("app", app)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
