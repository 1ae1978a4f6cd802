package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppHost   string
	HTTPPort  string
	AppEnv    string
	LogLevel  string
	LogFormat string

	// DataPath is the local sqlite file backing the persisted snapshot.
	DataPath string

	// AutosaveInterval is the periodic persistence flush; TimeTrackInterval
	// is the periodic recomputation of time spent on in-progress tickets.
	AutosaveInterval  time.Duration
	TimeTrackInterval time.Duration

	// SMSGatewayURL — if set, composed client messages are also posted to
	// this gateway (POST /sms/send). Empty disables sending.
	SMSGatewayURL string

	// SeedSampleData loads demo tickets on first run when the store is
	// empty.
	SeedSampleData bool
}

func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg := &Config{
		AppHost:           getEnv("APP_HOST", "127.0.0.1"),
		HTTPPort:          firstEnv("APP_PORT", "HTTP_PORT", "8090"),
		AppEnv:            getEnv("APP_ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
		DataPath:          getEnv("DATA_PATH", "repairbox.db"),
		AutosaveInterval:  durationEnv("AUTOSAVE_INTERVAL", 30*time.Second),
		TimeTrackInterval: durationEnv("TIMETRACK_INTERVAL", time.Minute),
		SMSGatewayURL:     getEnv("SMS_GATEWAY_URL", ""),
		SeedSampleData:    boolEnv("SEED_SAMPLE_DATA", false),
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DataPath == "" {
		return errors.New("config: DATA_PATH is required")
	}
	if c.AutosaveInterval <= 0 || c.TimeTrackInterval <= 0 {
		return errors.New("config: intervals must be positive")
	}
	return nil
}

func (c *Config) Addr() string {
	return c.AppHost + ":" + c.HTTPPort
}

func firstEnv(keysAndDef ...string) string {
	if len(keysAndDef) == 0 {
		return ""
	}
	def := keysAndDef[len(keysAndDef)-1]
	for _, k := range keysAndDef[:len(keysAndDef)-1] {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func boolEnv(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
