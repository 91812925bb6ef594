package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("BUREAU_SESSION_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6380")
	t.Setenv("BUREAU_IMAGE_RATE_LIMIT_PER_MINUTE", "12")
	t.Setenv("SITE_PASSWORD", "")
	t.Setenv("GATE_COOKIE_SECRET", "")

	cfgPath := writeConfig(t, `
port: "8090"
logLevel: "info"
anthropicModel: "claude-sonnet-4-20250514"
imageModel: "dall-e-3"
sessionBackend: "memory"
sessionTTL: "12h"
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SessionBackend != "redis" {
		t.Fatalf("sessionBackend = %q, want redis", cfg.SessionBackend)
	}
	if cfg.RedisAddr != "localhost:6380" {
		t.Fatalf("redisAddr = %q", cfg.RedisAddr)
	}
	if cfg.ImageRateLimitPerMinute != 12 {
		t.Fatalf("imageRateLimitPerMinute = %d", cfg.ImageRateLimitPerMinute)
	}
	if cfg.AnthropicAPIKey != "sk-ant-test" {
		t.Fatalf("anthropic key not read from env")
	}
}

func TestLoadRequiresPort(t *testing.T) {
	t.Setenv("BUREAU_PORT", "")
	t.Setenv("BUREAU_SESSION_BACKEND", "")
	t.Setenv("SITE_PASSWORD", "")
	cfgPath := writeConfig(t, `logLevel: "info"`)
	if _, err := Load(cfgPath); err == nil {
		t.Fatalf("expected error for missing port")
	}
}

func TestLoadRedisBackendRequiresAddr(t *testing.T) {
	t.Setenv("BUREAU_PORT", "")
	t.Setenv("BUREAU_SESSION_BACKEND", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("SITE_PASSWORD", "")
	cfgPath := writeConfig(t, `
port: "8090"
sessionBackend: "redis"
`)
	if _, err := Load(cfgPath); err == nil {
		t.Fatalf("expected error for redis backend without addr")
	}
}

func TestLoadGateSecretRequiredWithPassword(t *testing.T) {
	t.Setenv("BUREAU_PORT", "")
	t.Setenv("BUREAU_SESSION_BACKEND", "")
	t.Setenv("SITE_PASSWORD", "hunter2")
	t.Setenv("GATE_COOKIE_SECRET", "")
	cfgPath := writeConfig(t, `port: "8090"`)
	if _, err := Load(cfgPath); err == nil {
		t.Fatalf("expected error for password without cookie secret")
	}

	t.Setenv("GATE_COOKIE_SECRET", "0123456789abcdef")
	if _, err := Load(cfgPath); err != nil {
		t.Fatalf("load config: %v", err)
	}
}

func TestParseSessionTTL(t *testing.T) {
	if d, err := ParseSessionTTL(""); err != nil || d != 24*time.Hour {
		t.Fatalf("default ttl = %v, %v", d, err)
	}
	if d, err := ParseSessionTTL("90m"); err != nil || d != 90*time.Minute {
		t.Fatalf("parsed ttl = %v, %v", d, err)
	}
	if _, err := ParseSessionTTL("soon"); err == nil {
		t.Fatalf("expected error for bad duration")
	}
}
