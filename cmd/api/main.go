package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/participadf/ouvidoria/internal/auth"
	"github.com/participadf/ouvidoria/internal/config"
	"github.com/participadf/ouvidoria/internal/db"
	internalhttp "github.com/participadf/ouvidoria/internal/http"
	"github.com/participadf/ouvidoria/internal/manifestacao"
	"github.com/participadf/ouvidoria/internal/notify"
	"github.com/participadf/ouvidoria/internal/repo"
	"github.com/participadf/ouvidoria/internal/service"
	"github.com/participadf/ouvidoria/internal/storage"
	"github.com/participadf/ouvidoria/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	configureLogger(cfg)

	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.ServiceName)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn().Err(err).Msg("falha ao encerrar exportador de traces")
		}
	}()

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, cfg.DBDSN, "up"); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis parse: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	authService := service.NewAuthService(repo.New(pool), redisClient, jwtManager)

	var notifier notify.Notifier
	if webhook := notify.NewWebhookNotifier(cfg.Notification.WebhookURL, cfg.Notification.Timeout, cfg.Notification.Retries); webhook != nil {
		notifier = webhook
	}
	manifestacoes := manifestacao.NewService(manifestacao.NewPGRepository(pool), notifier, cfg.ListMaxLimit)

	uploader, err := storage.New(ctx, storage.Config{
		Provider:    cfg.Storage.Provider,
		LocalDir:    cfg.Storage.LocalDir,
		PublicURL:   cfg.Storage.PublicURL,
		S3Endpoint:  cfg.Storage.S3Endpoint,
		S3Region:    cfg.Storage.S3Region,
		S3Bucket:    cfg.Storage.S3Bucket,
		S3AccessKey: cfg.Storage.S3AccessKey,
		S3SecretKey: cfg.Storage.S3SecretKey,
	})
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	var uploadsDir string
	if local, ok := uploader.(*storage.LocalUploader); ok {
		uploadsDir = local.Dir()
	}

	handler, err := internalhttp.NewRouter(cfg, internalhttp.Deps{
		Auth:          authService,
		Manifestacoes: manifestacoes,
		Storage:       uploader,
		Sessions:      redisClient,
		Checks: map[string]func(context.Context) error{
			"db":    pool.Ping,
			"redis": func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		},
		UploadsDir: uploadsDir,
	})
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("storage", cfg.Storage.Provider).Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func configureLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogFormat == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
