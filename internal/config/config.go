package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr           string
	LogLevel       slog.Level
	IdleTimeout    time.Duration
	SweepInterval  time.Duration
	PostgresURL    string
	KafkaBrokers   []string
	KafkaTopic     string
	KafkaGroupID   string
	ReportInterval time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	addr := GetEnv("ADDR", ":8080")
	// PORT is what most hosting platforms set.
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	return &Config{
		Addr:           addr,
		LogLevel:       ParseLevel(GetEnv("LOG_LEVEL", "info")),
		IdleTimeout:    DurationEnv("IDLE_TIMEOUT", 10*time.Minute),
		SweepInterval:  DurationEnv("SWEEP_INTERVAL", 30*time.Second),
		PostgresURL:    GetEnv("POSTGRES_URL", ""),
		KafkaBrokers:   splitList(GetEnv("KAFKA_BROKERS", "")),
		KafkaTopic:     GetEnv("KAFKA_TOPIC", "connect4-events"),
		KafkaGroupID:   GetEnv("KAFKA_GROUP_ID", "connect4-analytics"),
		ReportInterval: DurationEnv("ANALYTICS_REPORT_INTERVAL", 30*time.Second),
	}
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		slog.Warn("invalid integer in environment", "key", key, "value", valueStr, "default", defaultValue)
		return defaultValue
	}
	return value
}

// DurationEnv reads a whole number of seconds.
func DurationEnv(key string, defaultValue time.Duration) time.Duration {
	secs := GetEnvAsInt(key, -1)
	if secs < 0 {
		return defaultValue
	}
	return time.Duration(secs) * time.Second
}

// ParseLevel maps debug|info|warn|error to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
