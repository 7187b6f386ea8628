package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hikari-systems/image-service/config"
	"github.com/hikari-systems/image-service/internal/controller/restapi"
	"github.com/hikari-systems/image-service/internal/controller/worker/deferred"
	"github.com/hikari-systems/image-service/internal/infrastructure"
	"github.com/hikari-systems/image-service/internal/infrastructure/cdn"
	"github.com/hikari-systems/image-service/internal/infrastructure/fetch"
	"github.com/hikari-systems/image-service/internal/infrastructure/sanitize"
	"github.com/hikari-systems/image-service/internal/infrastructure/transform"
	"github.com/hikari-systems/image-service/internal/repo/persistent"
	"github.com/hikari-systems/image-service/internal/usecase/transcode"
	"github.com/hikari-systems/image-service/pkg/httpserver"
	"github.com/hikari-systems/image-service/pkg/logger"
	"github.com/hikari-systems/image-service/pkg/s3client"
)

func Run(cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Logger
	l := logger.New(cfg.Log.Level)

	// Resize profile, immutable after load
	profile, err := config.LoadProfile(cfg.Resize.ProfilePath)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - config.LoadProfile: %w", err))
	}

	if err := os.MkdirAll(cfg.Resize.UploadDir, 0o755); err != nil {
		l.Fatal(fmt.Errorf("app - Run - os.MkdirAll upload dir: %w", err))
	}

	// Repository

	// s3
	s3Ctx, s3Cancel := context.WithTimeout(ctx, cfg.S3.CfgLoadTimeout)
	defer s3Cancel()
	s3c, err := s3client.New(s3Ctx, cfg.S3.Region, cfg.S3.AccessKey, cfg.S3.SecretKey,
		s3client.Endpoint(cfg.S3.Endpoint))
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - s3client.New: %w", err))
	}

	// metadata documents
	recordRepo, err := persistent.NewImageRecordRepo(cfg.Metadata.ParentPath)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - persistent.NewImageRecordRepo: %w", err))
	}

	// Infrastructure

	signer, err := cdn.NewSigner(cfg.CDN, s3c, cfg.S3.Bucket, l)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - cdn.NewSigner: %w", err))
	}

	var transformer infrastructure.ImageTransformer
	if cfg.Resize.MagickBin != "" {
		transformer = transform.NewMagick(
			cfg.Resize.MagickBin,
			cfg.Resize.MemoryLimitMiB,
			cfg.Resize.MapLimitMiB,
			cfg.Resize.TransformTimeout,
			l,
		)
	} else {
		transformer = transform.NewImaging()
	}

	// Use-Case

	imageUseCase := transcode.New(
		persistent.NewImageBlobRepo(s3c, cfg.S3.Bucket),
		recordRepo,
		signer,
		transformer,
		sanitize.New(),
		fetch.NewDownloader(l),
		profile,
		cfg.Resize.MaxParallel,
		l,
	)

	// Deferred Transcode Worker
	var deferredWorker *deferred.Worker
	if cfg.Worker.Enabled {
		deferredWorker = deferred.New(imageUseCase, l, cfg.Worker.PollInterval, cfg.Worker.BatchSize)
	}

	// HTTP Server
	httpServer := httpserver.New(l, httpserver.Port(cfg.HTTP.Port), httpserver.Prefork(cfg.HTTP.UsePreforkMode))
	restapi.NewRouter(httpServer.App, cfg, profile, imageUseCase, l)

	// Start Components
	if deferredWorker != nil {
		if err := deferredWorker.Start(ctx); err != nil {
			l.Fatal(fmt.Errorf("app - Run - deferredWorker.Start: %w", err))
		}
	}
	httpServer.Start()

	// Waiting Signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		l.Info("app - Run - signal: %s", s.String())
	case err = <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	}

	// Shutdown
	err = httpServer.Shutdown()
	if err != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}

	if deferredWorker != nil {
		wShutdownCtx, wShutdownCancel := context.WithTimeout(ctx, cfg.Worker.ShutdownTimeout)
		defer wShutdownCancel()
		err = deferredWorker.Shutdown(wShutdownCtx)
		if err != nil {
			l.Error(fmt.Errorf("app - Run - deferredWorker.Shutdown: %w", err))
		}
	}
}
