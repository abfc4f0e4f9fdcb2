package config

import (
	"os"
	"strconv"
	"time"

	"offerbot/pkg/errors"
)

// History backend names accepted by HISTORY_BACKEND
const (
	HistoryBackendFile     = "file"
	HistoryBackendMemcache = "memcache"
)

// Config represents the application configuration
type Config struct {
	// Dispatch configuration
	DispatchInterval time.Duration
	CatalogPath      string

	// Destination chat: an explicit ID wins over a display name
	ChatID   string
	ChatName string

	// Messaging platform
	TelegramToken string

	// Anti-repetition history
	HistoryPath    string
	HistoryLimit   int
	HistoryBackend string

	// Memcache configuration (history backend)
	MemcacheAddr string

	// Redis configuration (outcome publisher, disabled when RedisAddr is empty)
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	// Operational modes
	ListChats bool

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	intervalMS, _ := strconv.Atoi(getEnv("DISPATCH_INTERVAL_MS", "720000"))
	if intervalMS <= 0 {
		intervalMS = 720000
	}
	historyLimit, _ := strconv.Atoi(getEnv("HISTORY_LIMIT", "30"))
	if historyLimit < 1 {
		historyLimit = 1
	}
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "500"))

	return Config{
		DispatchInterval:     time.Duration(intervalMS) * time.Millisecond,
		CatalogPath:          getEnv("CATALOG_PATH", "./catalog.json"),
		ChatID:               getEnv("CHAT_ID", ""),
		ChatName:             getEnv("CHAT_NAME", ""),
		TelegramToken:        getEnv("TELEGRAM_BOT_TOKEN", ""),
		HistoryPath:          getEnv("HISTORY_PATH", "./.sent_history.json"),
		HistoryLimit:         historyLimit,
		HistoryBackend:       getEnv("HISTORY_BACKEND", HistoryBackendFile),
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", "localhost:11211"),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "offer_dispatch"),
		RedisStreamMaxLength: redisMaxLen,
		ListChats:            getEnv("LIST_CHATS", "") == "1",
		Environment:          getEnv("OFFERBOT_ENVIRONMENT", "development"),
	}
}

// Validate checks that the configuration is usable for the selected mode
func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return errors.NewConfiguration("TELEGRAM_BOT_TOKEN is required", nil)
	}
	if !c.ListChats && c.ChatID == "" && c.ChatName == "" {
		return errors.NewConfiguration("no destination: set CHAT_ID or CHAT_NAME", nil)
	}
	switch c.HistoryBackend {
	case HistoryBackendFile, HistoryBackendMemcache:
	default:
		return errors.NewConfiguration("HISTORY_BACKEND must be \"file\" or \"memcache\"", nil)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
