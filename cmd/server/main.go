package main // entry point of the rental API server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/property-rental/internal/config"
	"github.com/iliyamo/property-rental/internal/database"
	"github.com/iliyamo/property-rental/internal/listing"
	"github.com/iliyamo/property-rental/internal/logging"
	"github.com/iliyamo/property-rental/internal/queue"
	"github.com/iliyamo/property-rental/internal/repository"
	"github.com/iliyamo/property-rental/internal/router"
	"github.com/iliyamo/property-rental/internal/service"
	"github.com/iliyamo/property-rental/internal/utils"
)

const appName = "rental api"

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}

func run() error {
	cfg := config.Load()
	logger := logging.Setup(cfg.Env, cfg.IsDevelopment(), nil)
	displayAppname(appName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}

	users := repository.NewUserRepo(db)
	codec := utils.NewTokenCodec(&cfg)
	var opts []service.Option
	if cfg.EventsEnabled {
		opts = append(opts, service.WithPublisher(queue.NewPublisher(cfg.AMQPURL)))
		go func() {
			if err := queue.StartAuditConsumer(ctx, cfg.AMQPURL, cfg.AuditLogDir); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("audit consumer stopped")
			}
		}()
	}
	auth := service.NewAuthService(&cfg, users, utils.NewBcryptHasher(cfg.BcryptCost), codec, opts...)

	e := router.New(router.Deps{
		Config:    cfg,
		Logger:    logger,
		Verifier:  codec,
		Auth:      auth,
		Users:     users,
		Catalog:   listing.DefaultCatalog(),
		Redis:     rdb,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Dur("token_ttl", codec.TTL()).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func displayAppname(name string) {
	figure.NewFigure(name, "cybermedium", true).Print()
	fmt.Println()
}
