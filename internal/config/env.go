package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// env returns the parsed value of key, or fallback when the variable is
// unset or does not parse
func env[T any](key string, fallback T, parse func(string) (T, error)) T {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	v, err := parse(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envString(key, fallback string) string {
	return env(key, fallback, func(s string) (string, error) { return s, nil })
}

func envInt(key string, fallback int) int {
	return env(key, fallback, strconv.Atoi)
}

func envBool(key string, fallback bool) bool {
	return env(key, fallback, strconv.ParseBool)
}

// envDuration accepts whole seconds ("30") or a Go duration ("1m30s")
func envDuration(key string, fallback time.Duration) time.Duration {
	return env(key, fallback, func(s string) (time.Duration, error) {
		if secs, err := strconv.Atoi(s); err == nil {
			return time.Duration(secs) * time.Second, nil
		}
		return time.ParseDuration(s)
	})
}

// envList splits a comma separated value, dropping blank entries
func envList(key string, fallback []string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
