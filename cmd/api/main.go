package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/chanwoo-dev/melogate/internal/api"
	"github.com/chanwoo-dev/melogate/internal/archive"
	"github.com/chanwoo-dev/melogate/internal/cache"
	"github.com/chanwoo-dev/melogate/internal/config"
	"github.com/chanwoo-dev/melogate/internal/engine"
	"github.com/chanwoo-dev/melogate/internal/registry"
	"github.com/chanwoo-dev/melogate/internal/store"
)

func main() {
	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.TimeOnly,
	}))
	slog.SetDefault(log)

	if err := run(log); err != nil {
		log.Error("gateway exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	eng, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	log.Info("speech engine ready", slog.String("engine", eng.Name()))

	// Prime the registry with the default language so the service never runs
	// without a valid speaker set. Fail fast if the engine can't load it.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	speakers, err := eng.Speakers(ctx, cfg.DefaultLanguage)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to load speakers for default language %q: %w", cfg.DefaultLanguage, err)
	}
	reg := registry.New(cfg.DefaultLanguage, speakers)
	log.Info("registry primed",
		slog.String("language", cfg.DefaultLanguage),
		slog.Int("speakers", len(speakers)))

	c, err := buildCache(cfg, log)
	if err != nil {
		return err
	}
	defer c.Close()

	var st *store.Store
	if cfg.DatabaseURL != "" {
		st, err = store.New(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer st.Close()
		log.Info("synthesis history enabled")
	}

	var arc *archive.Archive
	if cfg.OutputDir != "" {
		arc, err = archive.New(cfg.OutputDir)
		if err != nil {
			return fmt.Errorf("failed to prepare output directory: %w", err)
		}
		log.Info("output archive enabled", slog.String("dir", cfg.OutputDir))
	}

	handler := api.NewHandler(cfg, eng, reg, c, st, arc, log)
	router := api.NewRouter(handler, api.RouterConfig{
		APIKey:             cfg.APIKey,
		CorsAllowedOrigins: cfg.CorsAllowedOrigins,
	})

	if cfg.APIKey != "" {
		log.Info("API key authentication enabled")
	} else {
		log.Warn("no API_KEY set, API is unprotected (dev mode)")
	}

	server := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("gateway listening", slog.String("addr", cfg.Addr()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info("shutting down", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("gateway exited")
	return nil
}

// buildEngine constructs the configured speech backend. For the melo engine a
// health check runs first so a bad MELO_API_URL is caught at startup, not on
// the first request.
func buildEngine(cfg *config.Config) (engine.Engine, error) {
	switch cfg.Engine {
	case config.EngineMelo:
		melo := engine.NewMeloEngine(cfg.MeloAPIURL, cfg.RequestTimeout)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := melo.HealthCheck(ctx); err != nil {
			return nil, fmt.Errorf("melo model server unavailable: %w", err)
		}
		return melo, nil

	case config.EngineExec:
		return engine.NewExecEngine(cfg.TTSCommand)

	case config.EngineOpenAI:
		return engine.NewOpenAIEngine(cfg.OpenAIKey), nil

	case config.EngineGemini:
		return engine.NewGeminiEngine(cfg.GeminiKey), nil
	}

	return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
}

func buildCache(cfg *config.Config, log *slog.Logger) (cache.Cache, error) {
	if cfg.RedisURL != "" {
		c, err := cache.NewRedis(cfg.RedisURL, cfg.CacheTTL, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Info("redis synthesis cache enabled")
		return c, nil
	}
	return cache.NewMemory(cfg.CacheMaxEntries), nil
}
