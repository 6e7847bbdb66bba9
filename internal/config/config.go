package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	// Filesystem
	BaseDir   string
	ConfigDir string
	AppsFile  string
	CoresFile string
	User      string

	// Conversation state
	RedisURL   string
	PendingTTL time.Duration

	// Transports
	NatsURL      string
	NatsSubject  string
	BusURL       string
	BusName      string
	HTTPAddr     string
	RouteTimeout time.Duration

	// Remote cores
	OpenAIKey  string
	GeminiKey  string
	OllamaHost string
	SocksProxy string

	// Voice
	Mode         string
	WhisperModel string
	Language     string
	BeepFile     string
	Duck         bool
}

func Load() *Config {
	configDir := getEnv("MURMUR_CONFIG_DIR", defaultConfigDir())

	return &Config{
		BaseDir:   getEnv("MURMUR_BASE_DIR", ""),
		ConfigDir: configDir,
		AppsFile:  getEnv("MURMUR_APPS_FILE", filepath.Join(configDir, "apps.json")),
		CoresFile: getEnv("MURMUR_CORES_FILE", filepath.Join(configDir, "cores.yaml")),
		User:      getEnv("MURMUR_USER", "default"),

		RedisURL:   getEnv("MURMUR_REDIS_URL", ""),
		PendingTTL: getDurationEnv("MURMUR_PENDING_TTL", 0), // 0 keeps pending actions until answered

		NatsURL:      getEnv("MURMUR_NATS_URL", ""),
		NatsSubject:  getEnv("MURMUR_NATS_SUBJECT", "murmur.route"),
		BusURL:       getEnv("MURMUR_BUS_URL", ""),
		BusName:      getEnv("MURMUR_BUS_NAME", "murmur"),
		HTTPAddr:     getEnv("MURMUR_HTTP_ADDR", ""),
		RouteTimeout: getDurationEnv("MURMUR_ROUTE_TIMEOUT", 60*time.Second),

		OpenAIKey:  getEnv("OPENAI_API_KEY", ""),
		GeminiKey:  getEnv("GEMINI_API_KEY", ""),
		OllamaHost: getEnv("OLLAMA_HOST", ""),
		SocksProxy: getEnv("MURMUR_SOCKS_PROXY", ""),

		Mode:         getEnv("MURMUR_MODE", "auto"),
		WhisperModel: getEnv("MURMUR_WHISPER_MODEL", "third_party/whisper.cpp/models/ggml-medium.bin"),
		Language:     getEnv("MURMUR_LANGUAGE", "auto"),
		BeepFile:     getEnv("MURMUR_BEEP_FILE", "beep.mp3"),
		Duck:         getBoolEnv("MURMUR_DUCK", true),
	}
}

func defaultConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "murmur")
	}
	return ".murmur"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
