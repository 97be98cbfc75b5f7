package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/wolfman30/property-lead-bridge/cmd/mainconfig"
	"github.com/wolfman30/property-lead-bridge/internal/app/bootstrap"
	appconfig "github.com/wolfman30/property-lead-bridge/internal/config"
	"github.com/wolfman30/property-lead-bridge/internal/inbound"
	"github.com/wolfman30/property-lead-bridge/pkg/logging"
)

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	if cfg.InboundEmailBucket == "" {
		logger.Error("email lambda requires INBOUND_EMAIL_BUCKET")
		os.Exit(1)
	}

	ctx := context.Background()
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	pipeline := bootstrap.BuildPipeline(ctx, cfg, nil, logger)
	processor := bootstrap.BuildEmailProcessor(cfg, pipeline, logger)
	loader := inbound.NewS3Loader(mainconfig.NewS3Client(awsCfg, cfg), cfg.InboundEmailBucket, cfg.InboundEmailPrefix)
	handler := inbound.NewSESHandler(processor, loader, logger)

	logger.Info("email lambda ready",
		"bucket", cfg.InboundEmailBucket,
		"prefix", cfg.InboundEmailPrefix,
	)
	lambda.Start(handler.Handle)
}
