package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr            string        // API bind address
	LogDir          string        // logs directory
	DatabaseURL     string        // empty means in-memory feedback store
	FeedURL         string        // CSV alert export
	DefaultVideoURL string        // playback fallback when a record has no locator
	RedisAddr       string        // push-messaging broker
	Topic           string        // broadcast topic for alert pushes
	SlackWebhook    string        // optional prompt fan-out
	PublicAPIKeys   []string
	AdminAPIKeys    []string
	PollInterval    time.Duration // 0 disables the background feed poller
	DedupWindow     time.Duration // 0 keeps the historical no-dedup behavior
	FetchTimeout    time.Duration
	AuthorizedPush  bool // whether this install is provisioned for notifications
	RateLimitPerMin int
	RateLimitBurst  int
}

func FromEnv() Config {
	// .env is a convenience for local runs; absence is fine
	_ = godotenv.Load()

	addr := os.Getenv("API_ADDR")
	if addr == "" {
		addr = "127.0.0.1:8080"
	}

	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	topic := os.Getenv("ALERT_TOPIC")
	if topic == "" {
		topic = "drowning-alerts"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "127.0.0.1:6379"
	}

	return Config{
		Addr:            addr,
		LogDir:          logDir,
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		FeedURL:         os.Getenv("ALERTS_CSV_URL"),
		DefaultVideoURL: os.Getenv("DEFAULT_VIDEO_URL"),
		RedisAddr:       redisAddr,
		Topic:           topic,
		SlackWebhook:    os.Getenv("SLACK_WEBHOOK"),
		PublicAPIKeys:   splitKeys(os.Getenv("PUBLIC_API_KEYS")),
		AdminAPIKeys:    splitKeys(os.Getenv("ADMIN_API_KEYS")),
		PollInterval:    durationEnv("POLL_INTERVAL_SEC", 0),
		DedupWindow:     durationEnv("DEDUP_WINDOW_SEC", 0),
		FetchTimeout:    durationEnv("FETCH_TIMEOUT_SEC", 10*time.Second),
		AuthorizedPush:  boolEnv("PUSH_AUTHORIZED", true),
		RateLimitPerMin: intEnv("RATE_LIMIT_PER_MIN", 120),
		RateLimitBurst:  intEnv("RATE_LIMIT_BURST", 60),
	}
}

func splitKeys(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func durationEnv(name string, def time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return time.Duration(n) * time.Second
}

func intEnv(name string, def int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func boolEnv(name string, def bool) bool {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
