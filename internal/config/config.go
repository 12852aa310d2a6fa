package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const DefaultSearchAPIURL = "https://sal-ai-agent-pipeline.onrender.com"

type Config struct {
	Port      string
	PageTitle string
	LogLevel  string

	SearchAPIURL      string
	SearchTimeout     time.Duration
	SearchRateLimit   float64
	DateFilterEnabled bool

	AudioFetchTimeout  time.Duration
	AudioCacheMaxBytes int64
	AudioPrefetch      bool

	SessionIdleTTL time.Duration

	RedisURL       string
	MetricsEnabled bool
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using process environment")
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		Port:      getenv("PORT", "5175"),
		PageTitle: getenv("PAGE_TITLE", "Spirit-and-Life"),
		LogLevel:  getenv("LOG_LEVEL", "info"),

		SearchAPIURL:      strings.TrimRight(getenv("SEARCH_API_URL", DefaultSearchAPIURL), "/"),
		SearchTimeout:     getenvDuration("SEARCH_TIMEOUT", 60*time.Second),
		SearchRateLimit:   getenvFloat("SEARCH_RATE_LIMIT_RPS", 5),
		DateFilterEnabled: getenvBool("DATE_FILTER_ENABLED", false),

		AudioFetchTimeout:  getenvDuration("AUDIO_FETCH_TIMEOUT", 30*time.Second),
		AudioCacheMaxBytes: getenvInt64("AUDIO_CACHE_MAX_BYTES", 256<<20),
		AudioPrefetch:      getenvBool("AUDIO_PREFETCH", false),

		SessionIdleTTL: getenvDuration("SESSION_IDLE_TTL", 2*time.Hour),

		RedisURL:       getenv("REDIS_URL", ""),
		MetricsEnabled: getenvBool("METRICS_ENABLED", true),
	}

	u, err := url.Parse(cfg.SearchAPIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Config{}, errors.New("config: invalid SEARCH_API_URL: " + cfg.SearchAPIURL)
	}

	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt64(key string, def int64) int64 {
	raw := getenv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func getenvFloat(key string, def float64) float64 {
	raw := getenv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func getenvBool(key string, def bool) bool {
	raw := getenv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func getenvDuration(key string, def time.Duration) time.Duration {
	raw := getenv(key, "")
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
