package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/soaringjerry/Disha/internal/api"
	"github.com/soaringjerry/Disha/internal/config"
	"github.com/soaringjerry/Disha/internal/middleware"
	"github.com/soaringjerry/Disha/internal/platform/logger"
	"github.com/soaringjerry/Disha/internal/services"
	"github.com/soaringjerry/Disha/internal/tokenstore"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeStore(); cerr != nil {
			log.Warn("close store", "error", cerr)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)

	tokenAuth := middleware.NewTokenAuth(cfg.Admin.JWTSecret)
	if cfg.Admin.JWTSecret == "" {
		log.Warn("DISHA_JWT_SECRET not set, using the development signing secret")
	}
	auth, err := newAuthService(gctx, g, cfg, store, tokenAuth, log)
	if err != nil {
		return err
	}

	router := api.NewRouter(api.Deps{
		Store:       store,
		Summary:     newSummarizer(ctx, cfg, log),
		Auth:        auth,
		TokenAuth:   tokenAuth,
		Log:         log,
		Build:       api.BuildInfo{Commit: cfg.Build.Commit, BuildTime: cfg.Build.BuildTime},
		StaticDir:   cfg.HTTP.StaticDir,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		TrustProxy:  cfg.HTTP.TrustProxy,
	})
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Info("disha server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newAuthService wires admin login. Without a password admin login stays
// disabled. Tokens live in Redis when DISHA_REDIS_ADDR is set, otherwise in
// memory with a background sweeper joined to g.
func newAuthService(ctx context.Context, g *errgroup.Group, cfg *config.Config, store api.Store, signer *middleware.TokenAuth, log *logger.Logger) (*services.AuthService, error) {
	if !cfg.AdminEnabled() {
		log.Warn("DISHA_ADMIN_PASSWORD not set, admin API disabled")
		return nil, nil
	}
	hash, err := services.HashPassword(cfg.Admin.Password)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	var tokens services.TokenStore
	if cfg.Admin.RedisAddr != "" {
		rt, err := tokenstore.NewRedis(ctx, cfg.Admin.RedisAddr, cfg.Admin.RedisPrefix)
		if err != nil {
			return nil, fmt.Errorf("connect redis token store: %w", err)
		}
		g.Go(func() error {
			<-ctx.Done()
			return rt.Close()
		})
		tokens = rt
		log.Info("admin tokens stored in redis", "addr", cfg.Admin.RedisAddr)
	} else {
		mem := tokenstore.NewMemory()
		g.Go(func() error { return mem.Run(ctx, cfg.Admin.SweepEvery) })
		tokens = mem
	}

	auth := services.NewAuthService(cfg.Admin.Username, hash, tokens, signer.SignToken, store, log)
	auth.SetTokenTTL(cfg.Admin.TokenTTL)
	return auth, nil
}
