package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage driver names accepted in STORAGE_DRIVER.
const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
)

const (
	defaultStoragePath  = "tomorrow_reminder.db"
	defaultScanInterval = 30 * time.Second
	// Scan cadence bounds: below 5s is pointless churn, at 60s and above
	// exact-minute matching can skip a window.
	minScanInterval = 5 * time.Second
	maxScanInterval = 59 * time.Second
)

// Config keeps runtime settings for the reminder app.
type Config struct {
	TelegramToken string
	ChatID        int64
	StoragePath   string
	StorageDriver string
	ScanInterval  time.Duration
	PurgeAt       string // HH:MM of the daily stale-task sweep
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		TelegramToken: strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		ChatID:        parseChatID(strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID"))),
		StoragePath:   strings.TrimSpace(os.Getenv("STORAGE_PATH")),
		StorageDriver: strings.ToLower(strings.TrimSpace(os.Getenv("STORAGE_DRIVER"))),
		ScanInterval:  parseScanInterval(strings.TrimSpace(os.Getenv("SCAN_INTERVAL_SECONDS"))),
		PurgeAt:       "00:05",
	}

	if cfg.StoragePath == "" {
		cfg.StoragePath = defaultStoragePath
	}

	if cfg.StorageDriver == "" {
		cfg.StorageDriver = DriverSQLite
	}
	if cfg.StorageDriver != DriverSQLite && cfg.StorageDriver != DriverFile {
		return cfg, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_TOKEN is required")
	}

	return cfg, nil
}

func parseChatID(raw string) int64 {
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// parseScanInterval clamps out-of-range or malformed values back to the
// default rather than failing startup.
func parseScanInterval(raw string) time.Duration {
	if raw == "" {
		return defaultScanInterval
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil {
		return defaultScanInterval
	}
	interval := time.Duration(seconds) * time.Second
	if interval < minScanInterval || interval > maxScanInterval {
		return defaultScanInterval
	}
	return interval
}
