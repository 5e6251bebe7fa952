package env

import "os"

// Get reads an environment variable, treating blank as unset so an empty
// export cannot blank out a default.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
