// Package config holds runtime settings for the tracker backend.
package config

import (
	"os"
	"path/filepath"
)

// Settings represents the process configuration, populated from the
// environment with sensible defaults for a local deployment.
type Settings struct {
	// ListenAddr is the address the HTTP server binds to.
	ListenAddr string
	// DataDir is where the sqlite database lives.
	DataDir string
	// TMDBAPIKey is the bearer token for the TMDB v3 API. When empty,
	// movie/tv list responses fall back to stored metadata.
	TMDBAPIKey string
	// LogFile enables rotating file logging when non-empty.
	LogFile string
}

// Load reads settings from the environment.
func Load() Settings {
	return Settings{
		ListenAddr: envOr("LISTEN_ADDR", ":8080"),
		DataDir:    envOr("DATA_DIR", "./data"),
		TMDBAPIKey: os.Getenv("TMDB_API_KEY"),
		LogFile:    os.Getenv("LOG_FILE"),
	}
}

// DatabasePath returns the sqlite file location inside the data directory.
func (s Settings) DatabasePath() string {
	return filepath.Join(s.DataDir, "tracker.db")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
