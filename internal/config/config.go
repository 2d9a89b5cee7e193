package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// AuditTextLimit caps how many runes of a text message are kept in the
	// audit log. Media messages store only their kind tag.
	AuditTextLimit = 100

	// DefaultRetention is the age after which ended chats, resolved
	// invitations and messages are removed. Users are kept twice as long.
	DefaultRetention    = 30 * 24 * time.Hour
	UserRetentionFactor = 2

	// SendTimeout bounds every outbound Telegram API call.
	SendTimeout = 10 * time.Second

	// ProbeText is the throwaway reachability probe, deleted right after
	// sending.
	ProbeText = "🔍"

	// List page sizes for the admin bot commands.
	UserListLimit = 50
	ChatListLimit = 20

	DefaultLanguage = "uz"
)

// Config holds the environment-backed settings of the process.
type Config struct {
	BotToken string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	RedisAddr     string
	RedisPassword string

	HTTPAddr       string
	AdminAPISecret string
	JWTSecret      string

	// AdminIDs are the Telegram IDs allowed to run admin bot commands.
	AdminIDs map[int64]bool
}

// Load reads the configuration from the environment. Optional values fall
// back to the docker-compose defaults used in development.
func Load() *Config {
	cfg := &Config{
		BotToken:       os.Getenv("BOT_TOKEN"),
		DBHost:         getenv("DB_HOST", "localhost"),
		DBUser:         getenv("DB_USER", "user"),
		DBPassword:     getenv("DB_PASSWORD", "password"),
		DBName:         getenv("DB_NAME", "pairlinkdb"),
		DBPort:         getenv("DB_PORT", "5432"),
		RedisAddr:      getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		HTTPAddr:       getenv("HTTP_ADDR", ":8080"),
		AdminAPISecret: os.Getenv("ADMIN_API_SECRET"),
		JWTSecret:      getenv("JWT_SECRET", "change-me-in-production"),
		AdminIDs:       parseAdminIDs(os.Getenv("ADMIN_IDS")),
	}
	return cfg
}

// DSN builds the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// IsAdmin reports whether the given Telegram ID may run admin commands.
func (c *Config) IsAdmin(telegramID int64) bool {
	return c.AdminIDs[telegramID]
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseAdminIDs parses a comma-separated list of Telegram IDs.
// Malformed entries are skipped.
func parseAdminIDs(raw string) map[int64]bool {
	ids := make(map[int64]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		ids[id] = true
	}
	return ids
}
