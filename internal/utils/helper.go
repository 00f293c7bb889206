package utils

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Truncate shortens engine output for log lines and error messages.
// Default maxLen is 500 if not specified.
func Truncate(s string, maxLen ...int) string {
	limit := 500
	if len(maxLen) > 0 && maxLen[0] > 0 {
		limit = maxLen[0]
	}
	s = strings.TrimSpace(s)
	if len(s) > limit {
		return s[:limit] + "... (truncated)"
	}
	return s
}

// GetEnv returns the value of key, or fallback when it is unset or empty.
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func GetIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
		slog.Warn("Invalid integer in environment", "key", key, "value", value)
	}
	return fallback
}

func GetInt64Env(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			return v
		}
		slog.Warn("Invalid integer in environment", "key", key, "value", value)
	}
	return fallback
}

func GetDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		slog.Warn("Invalid duration in environment", "key", key, "value", value)
	}
	return fallback
}

// SplitList splits a comma or OS path-list separated string, dropping blanks.
func SplitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == os.PathListSeparator
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func ExitOnError(msg string, err error) {
	slog.Error(msg, "err", err)
	os.Exit(1)
}
