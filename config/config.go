package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ivugurura/radio-landing/internal/logging"
)

type Config struct {
	Host string
	Port string

	// Files
	CredentialsPath string
	IPDataPath      string
	MusicDir        string
	HomepagePath    string

	// Upstream APIs
	GeoAPIURL         string
	TelegramAPIURL    string
	HTTPClientTimeout time.Duration

	// Offline geo fallback
	GeoIPDBPath string
	EnableGeoIp bool

	// IP directory backend: "file" or "redis"
	IPDirectory string
	RedisAddr   string
	RedisPass   string
	RedisDB     int
	RedisPrefix string

	EnableMetrics   bool
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	Credentials Credentials
}

// ListenAddr is the host:port the server binds to.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// LoadConfig reads process settings from the environment and the credentials
// document from CredentialsPath. A credentials error is returned alongside a
// usable config holding placeholder credentials.
func LoadConfig() (*Config, error) {
	get := func(key, dfault string) string {
		v := os.Getenv(key)
		if v == "" {
			return dfault
		}
		return v
	}

	cfg := &Config{
		Host:              get("HOST", "0.0.0.0"),
		Port:              get("PORT", "3000"),
		CredentialsPath:   get("CONFIG_PATH", "config.json"),
		IPDataPath:        get("IP_DATA_FILE", "ip_data.json"),
		MusicDir:          get("MUSIC_DIR", "music"),
		HomepagePath:      get("HOMEPAGE_PATH", ""),
		GeoAPIURL:         get("GEO_API_URL", "http://ip-api.com/json"),
		TelegramAPIURL:    get("TELEGRAM_API_URL", "https://api.telegram.org"),
		HTTPClientTimeout: durationEnv("HTTP_CLIENT_TIMEOUT", 10*time.Second),
		GeoIPDBPath:       get("GEOIP_DB_PATH", "./GeoLite2-City.mmdb"),
		EnableGeoIp:       get("ENABLE_GEOIP", "1") == "1",
		IPDirectory:       get("IP_DIRECTORY", "file"),
		RedisAddr:         get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPass:         get("REDIS_PASS", ""),
		RedisDB:           intEnv("REDIS_DB", 0),
		RedisPrefix:       get("REDIS_PREFIX", "ipdir"),
		EnableMetrics:     get("ENABLE_METRICS", "1") == "1",
		LogLevel:          get("LOG_LEVEL", "info"),
		LogFormat:         get("LOG_FORMAT", "console"),
		ShutdownTimeout:   durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	creds, err := LoadCredentials(cfg.CredentialsPath)
	cfg.Credentials = creds
	return cfg, err
}

func durationEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
		invalidEnv(key, v)
	}
	return def
}

func intEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
		invalidEnv(key, v)
	}
	return def
}

func invalidEnv(key, value string) {
	logging.Warn().Str("key", key).Str("value", value).Msg("config: invalid value (using default)")
}
