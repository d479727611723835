package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/turbot/tailpipe-extractor/constants"
)

// levelOff is above every level slog emits
const levelOff = slog.Level(100)

// keys whose values are never written to the log
var redactedKeys = []string{"secret", "password", "token", "credentials", "access_key"}

func Initialize(name string) {
	slog.SetDefault(extractorLogger(name))
}

// extractorLogger returns a logger that writes JSON to stderr and redacts secret values
func extractorLogger(name string) *slog.Logger {
	level := getLogLevel()
	if level == levelOff {
		return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	}

	handlerOptions := &slog.HandlerOptions{
		Level: level,

		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if isRedacted(a.Key) {
				return slog.String(a.Key, "<redacted>")
			}
			return a
		},
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, handlerOptions)).With("source", name)
}

func isRedacted(key string) bool {
	key = strings.ToLower(key)
	for _, r := range redactedKeys {
		if strings.Contains(key, r) {
			return true
		}
	}
	return false
}

func getLogLevel() slog.Leveler {
	levelEnv := os.Getenv(constants.EnvLogLevel)

	switch strings.ToLower(levelEnv) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case constants.LogLevelOff:
		return levelOff
	default:
		return levelOff
	}
}
