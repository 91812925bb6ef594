package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"bureau/internal/archive"
	"bureau/internal/config"
	"bureau/internal/ratelimit"
	"bureau/internal/server"
	"bureau/internal/session"
	"bureau/internal/util"
	"bureau/pkg/ai"
)

func main() {
	cfg, err := config.Load(os.Getenv("BUREAU_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := util.InitLogger(cfg.LogLevel)

	sessionTTL, err := config.ParseSessionTTL(cfg.SessionTTL)
	if err != nil {
		util.Fatal("failed to parse session ttl", "err", err)
	}

	var backend session.Backend
	switch cfg.SessionBackend {
	case "redis":
		backend = session.NewRedisBackend(cfg.RedisAddr, cfg.RedisPassword, "bureau:session", sessionTTL)
	default:
		backend = session.NewMemoryBackend()
	}
	sessions := session.New(backend, logger)

	anthropic, err := ai.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	if err != nil {
		util.Fatal("failed to init anthropic client", "err", err)
	}
	if cfg.AnthropicBaseURL != "" {
		anthropic.SetBaseURL(cfg.AnthropicBaseURL)
	}
	imageClient, err := ai.NewOpenAIImageClient(cfg.OpenAIAPIKey, cfg.ImageModel)
	if err != nil {
		util.Fatal("failed to init image client", "err", err)
	}

	var imageLimiter *ratelimit.FixedWindowLimiter
	if cfg.ImageRateLimitPerMinute > 0 && cfg.RedisAddr != "" {
		imageLimiter, err = ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, "bureau:ratelimit:images", cfg.ImageRateLimitPerMinute, time.Minute)
		if err != nil {
			util.Fatal("failed to init image rate limiter", "err", err)
		}
	}

	trustedProxies, err := util.NewTrustedProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		util.Fatal("failed to parse trusted proxy cidrs", "err", err)
	}

	var dossierArchive archive.Store
	if cfg.ArchiveEndpoint != "" {
		dossierArchive, err = archive.NewMinioStore(cfg.ArchiveEndpoint, cfg.ArchiveAccessKey, cfg.ArchiveSecretKey, cfg.ArchiveBucket, cfg.ArchiveUseSSL)
		if err != nil {
			util.Fatal("failed to init dossier archive", "err", err)
		}
	}

	httpServer := server.New(server.Config{
		Sessions:       sessions,
		Streamer:       anthropic,
		Images:         imageClient,
		Headlines:      ai.NewHeadlineWriter(anthropic),
		ImageLimiter:   imageLimiter,
		Archive:        dossierArchive,
		SitePassword:   cfg.SitePassword,
		GateSecret:     []byte(cfg.GateCookieSecret),
		TrustedProxies: trustedProxies,
		StaticDir:      cfg.StaticDir,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           httpServer.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// No WriteTimeout: chat streams stay open for the whole turn.
		IdleTimeout: 60 * time.Second,
	}

	slog.Info("bureau server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
