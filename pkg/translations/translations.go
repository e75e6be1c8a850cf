// Package translations lets deployments override tool descriptions
// through the environment without rebuilding.
package translations

import (
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"sync"
)

const envPrefix = "GITHUB_PROJECT_MCP_"

// TranslationHelperFunc returns the override for key, or defaultValue
// when none is set.
type TranslationHelperFunc func(key, defaultValue string) string

// NullTranslationHelper always returns the default. Used in tests.
func NullTranslationHelper(_ string, defaultValue string) string {
	return defaultValue
}

// TranslationHelper builds a helper that consults GITHUB_PROJECT_MCP_<KEY>
// environment variables. The returned dump function writes every key the
// helper has seen, with its effective value, to the given path so
// operators can discover what is overridable.
func TranslationHelper() (TranslationHelperFunc, func(path string)) {
	var mu sync.Mutex
	seen := map[string]string{}

	helper := func(key, defaultValue string) string {
		key = strings.ToUpper(key)
		value := defaultValue
		if override := os.Getenv(envPrefix + key); override != "" {
			value = override
		}
		mu.Lock()
		seen[key] = value
		mu.Unlock()
		return value
	}

	dump := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		data, err := json.MarshalIndent(seen, "", "  ")
		if err != nil {
			slog.Error("marshalling translation keys", "error", err)
			return
		}
		if err := os.WriteFile(path, data, 0o600); err != nil {
			slog.Error("writing translation dump", "path", path, "error", err)
		}
	}
	return helper, dump
}
