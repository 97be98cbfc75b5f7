package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/wolfman30/property-lead-bridge/cmd/mainconfig"
	"github.com/wolfman30/property-lead-bridge/internal/app/bootstrap"
	appconfig "github.com/wolfman30/property-lead-bridge/internal/config"
	"github.com/wolfman30/property-lead-bridge/internal/inbound"
	"github.com/wolfman30/property-lead-bridge/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.InboundQueueURL == "" {
		logger.Error("email worker requires INBOUND_QUEUE_URL")
		os.Exit(1)
	}

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	pipeline := bootstrap.BuildPipeline(ctx, cfg, nil, logger)
	defer pipeline.Close()
	processor := bootstrap.BuildEmailProcessor(cfg, pipeline, logger)

	opts := []inbound.WorkerOption{inbound.WithPollers(cfg.WorkerCount)}
	if cfg.InboundEmailBucket != "" {
		loader := inbound.NewS3Loader(mainconfig.NewS3Client(awsCfg, cfg), cfg.InboundEmailBucket, cfg.InboundEmailPrefix)
		opts = append(opts, inbound.WithObjectLoader(loader))
	}

	queue := inbound.NewSQSQueue(mainconfig.NewSQSClient(awsCfg, cfg), cfg.InboundQueueURL)
	worker := inbound.NewWorker(processor, queue, logger, opts...)
	worker.Start(ctx)
	logger.Info("email worker started", "queue_url", cfg.InboundQueueURL, "workers", cfg.WorkerCount)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("email worker shutting down")
	cancel()
	worker.Wait()
}
