package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the composition root needs to wire the service.
type Config struct {
	ListenAddr string

	// Catalog source and sync
	SourceURL       string
	DataDir         string
	RefreshInterval time.Duration

	// Reminder dispatch
	ReminderLead          time.Duration // alert this long before the showtime
	ReminderCheckInterval time.Duration

	LogFile string
}

// Load reads configuration from the environment, falling back to defaults.
// A .env file in the working directory is honored when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ListenAddr:            getEnv("CINEDAY_ADDR", ":8080"),
		SourceURL:             getEnv("CINEDAY_SOURCE_URL", "https://data.cineday.example.org/catalog.json"),
		DataDir:               getEnv("CINEDAY_DATA_DIR", "./data"),
		RefreshInterval:       getDuration("CINEDAY_REFRESH_INTERVAL", 6*time.Hour),
		ReminderLead:          getDuration("CINEDAY_REMINDER_LEAD", 30*time.Minute),
		ReminderCheckInterval: getDuration("CINEDAY_REMINDER_CHECK_INTERVAL", time.Minute),
		LogFile:               getEnv("CINEDAY_LOG_FILE", ""),
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	log.Printf("[config] %s=%q is not a duration, using default %s", key, v, def)
	return def
}
