package env

import "os"

// LogFormatKey selects "json" (default) or "console" log output.
const LogFormatKey = "CATALOG_LOG_FORMAT"

// Get returns the value of the given environment variable or a fallback.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
