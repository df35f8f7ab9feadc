package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/soaringjerry/Disha/internal/api"
	"github.com/soaringjerry/Disha/internal/config"
	dbstore "github.com/soaringjerry/Disha/internal/db"
	"github.com/soaringjerry/Disha/internal/platform/logger"
	"github.com/soaringjerry/Disha/internal/services"
)

// loadConfig reads the config file and applies the --log-mode flag.
func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if logMode != "" {
		cfg.Log.Mode = logMode
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

// openStore returns the configured session store and a close func. For
// SQLite the first run imports the memory snapshot when one exists.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (api.Store, func() error, error) {
	if cfg.Store.Driver == config.StoreMemory {
		st, err := api.NewMemoryStoreFromPath(cfg.Store.SnapshotPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open memory store: %w", err)
		}
		log.Info("using memory store", "snapshot", cfg.Store.SnapshotPath)
		return st, func() error { return nil }, nil
	}

	if _, err := MigrateIfNeeded(ctx, cfg.Store.SnapshotPath, cfg.Store.Path, cfg.Store.MigrationsDir, cfg.Store.Driver, log); err != nil {
		return nil, nil, err
	}
	conn, err := dbstore.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return nil, nil, err
	}
	applied, err := dbstore.RunMigrations(conn, cfg.Store.MigrationsDir)
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	if len(applied) > 0 {
		log.Info("applied migrations", "files", applied)
	}
	st, err := dbstore.NewSQLiteStore(conn)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	log.Info("using sqlite store", "driver", cfg.Store.Driver, "path", cfg.Store.Path)
	return st, st.Close, nil
}

// newSummarizer picks the remote provider. Missing keys or client errors
// leave the template generator in charge.
func newSummarizer(ctx context.Context, cfg *config.Config, log *logger.Logger) *services.BestEffortSummarizer {
	var remote services.SummaryGenerator
	switch cfg.Summary.Provider {
	case config.ProviderOpenAI:
		if cfg.Summary.OpenAIKey == "" {
			log.Warn("summary provider openai has no OPENAI_API_KEY, using template summaries")
			break
		}
		client := &http.Client{Timeout: cfg.Summary.Timeout}
		remote = services.NewOpenAISummarizer(client, cfg.Summary.OpenAIKey, cfg.Summary.OpenAIBaseURL, cfg.Summary.Model)
	case config.ProviderGemini:
		g, err := services.NewGeminiSummarizer(ctx, cfg.Summary.GeminiKey, cfg.Summary.Model)
		if err != nil {
			log.Warn("gemini summary provider unavailable, using template summaries", "error", err)
			break
		}
		remote = g
	}
	if remote != nil {
		log.Info("remote summaries enabled", "provider", cfg.Summary.Provider)
	}
	return services.NewBestEffortSummarizer(remote, cfg.Summary.Timeout, log)
}
