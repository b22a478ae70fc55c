// Package env reads raw environment variables for the few knobs that must be
// resolved before the typed config layer loads.
package env

import "os"

// Get returns the variable's value, or fallback when unset or empty.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
