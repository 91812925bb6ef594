package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default location of the YAML config file.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML. Secrets are never
// read from the file, only from environment variables.
type FileConfig struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"logLevel"`
	LogsDir  string `yaml:"logsDir"`

	AnthropicModel   string `yaml:"anthropicModel"`
	AnthropicBaseURL string `yaml:"anthropicBaseURL"`
	ImageModel       string `yaml:"imageModel"`

	SessionBackend string `yaml:"sessionBackend"`
	SessionTTL     string `yaml:"sessionTTL"`
	RedisAddr      string `yaml:"redisAddr"`
	RedisPassword  string `yaml:"redisPassword"`

	ImageRateLimitPerMinute int `yaml:"imageRateLimitPerMinute"`

	ArchiveEndpoint string `yaml:"archiveEndpoint"`
	ArchiveBucket   string `yaml:"archiveBucket"`
	ArchiveUseSSL   bool   `yaml:"archiveUseSSL"`

	TrustedProxyCIDRs []string `yaml:"trustedProxyCidrs"`

	StaticDir string `yaml:"staticDir"`

	// Env-only secrets.
	AnthropicAPIKey  string `yaml:"-"`
	OpenAIAPIKey     string `yaml:"-"`
	SitePassword     string `yaml:"-"`
	GateCookieSecret string `yaml:"-"`
	ArchiveAccessKey string `yaml:"-"`
	ArchiveSecretKey string `yaml:"-"`
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if v := os.Getenv("BUREAU_PORT"); v != "" {
		cfg.Port = strings.TrimSpace(v)
	}
	if v := os.Getenv("BUREAU_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.TrimSpace(v)
	}
	if v := os.Getenv("ANTHROPIC_MODEL"); v != "" {
		cfg.AnthropicModel = v
	}
	if v := os.Getenv("ANTHROPIC_BASE_URL"); v != "" {
		cfg.AnthropicBaseURL = v
	}
	if v := os.Getenv("BUREAU_IMAGE_MODEL"); v != "" {
		cfg.ImageModel = v
	}
	if v := os.Getenv("BUREAU_SESSION_BACKEND"); v != "" {
		cfg.SessionBackend = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("BUREAU_SESSION_TTL"); v != "" {
		cfg.SessionTTL = strings.TrimSpace(v)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("BUREAU_IMAGE_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.ImageRateLimitPerMinute = n
		}
	}
	if v := os.Getenv("BUREAU_ARCHIVE_ENDPOINT"); v != "" {
		cfg.ArchiveEndpoint = v
	}
	if v := os.Getenv("BUREAU_ARCHIVE_BUCKET"); v != "" {
		cfg.ArchiveBucket = v
	}
	if v := os.Getenv("BUREAU_ARCHIVE_USE_SSL"); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			cfg.ArchiveUseSSL = b
		}
	}
	if v := os.Getenv("BUREAU_TRUSTED_PROXY_CIDRS"); v != "" {
		cfg.TrustedProxyCIDRs = splitCSV(v)
	}
	if v := os.Getenv("BUREAU_STATIC_DIR"); v != "" {
		cfg.StaticDir = v
	}

	cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.SitePassword = os.Getenv("SITE_PASSWORD")
	cfg.GateCookieSecret = os.Getenv("GATE_COOKIE_SECRET")
	cfg.ArchiveAccessKey = os.Getenv("BUREAU_ARCHIVE_ACCESS_KEY")
	cfg.ArchiveSecretKey = os.Getenv("BUREAU_ARCHIVE_SECRET_KEY")

	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml)")
	}
	switch cfg.SessionBackend {
	case "", "memory":
	case "redis":
		if strings.TrimSpace(cfg.RedisAddr) == "" {
			return errors.New("config: redisAddr is required when sessionBackend is redis (set in config.yaml or REDIS_ADDR)")
		}
	default:
		return fmt.Errorf("config: unknown sessionBackend %q (memory or redis)", cfg.SessionBackend)
	}
	if cfg.SessionTTL != "" {
		if _, err := time.ParseDuration(cfg.SessionTTL); err != nil {
			return fmt.Errorf("config: invalid sessionTTL duration: %w", err)
		}
	}
	if cfg.ImageRateLimitPerMinute < 0 {
		return errors.New("config: imageRateLimitPerMinute must be >= 0")
	}
	if cfg.SitePassword != "" && cfg.GateCookieSecret == "" {
		return errors.New("config: GATE_COOKIE_SECRET is required when SITE_PASSWORD is set")
	}
	if cfg.ArchiveEndpoint != "" {
		if cfg.ArchiveAccessKey == "" || cfg.ArchiveSecretKey == "" {
			return errors.New("config: BUREAU_ARCHIVE_ACCESS_KEY and BUREAU_ARCHIVE_SECRET_KEY are required when archiveEndpoint is set")
		}
		if cfg.ArchiveBucket == "" {
			return errors.New("config: archiveBucket is required when archiveEndpoint is set")
		}
	}
	return nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// ParseSessionTTL parses the optional session TTL duration string.
func ParseSessionTTL(ttl string) (time.Duration, error) {
	if ttl == "" {
		return 24 * time.Hour, nil
	}
	dur, err := time.ParseDuration(ttl)
	if err != nil {
		return 0, fmt.Errorf("invalid sessionTTL duration: %w", err)
	}
	return dur, nil
}
