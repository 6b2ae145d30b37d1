package env

import "os"

// Get reads key from the process environment, returning def when the
// variable is unset or empty. Used for the few knobs read before the typed
// config is parsed.
func Get(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
