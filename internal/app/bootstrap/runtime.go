package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/property-lead-bridge/internal/config"
	"github.com/wolfman30/property-lead-bridge/internal/crm"
	"github.com/wolfman30/property-lead-bridge/internal/inbound"
	"github.com/wolfman30/property-lead-bridge/internal/leads"
	"github.com/wolfman30/property-lead-bridge/internal/observability/metrics"
	"github.com/wolfman30/property-lead-bridge/internal/propertypage"
	"github.com/wolfman30/property-lead-bridge/pkg/logging"
)

// Pipeline bundles the lead service with the collaborators the binaries
// need to reach directly.
type Pipeline struct {
	Service *leads.Service
	Metrics *metrics.LeadMetrics
	Redis   *redis.Client
}

// Close releases the Redis connection pool when one was opened.
func (p *Pipeline) Close() error {
	if p == nil || p.Redis == nil {
		return nil
	}
	return p.Redis.Close()
}

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available, property page cache disabled", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildPropertyPageClient wires the remote classifier, cached in Redis when
// a client is available.
func BuildPropertyPageClient(cfg *appconfig.Config, redisClient *redis.Client, logger *logging.Logger) *propertypage.Client {
	opts := []propertypage.ClientOption{
		propertypage.WithUserAgent(cfg.PropertyPageUserAgent),
		propertypage.WithTimeout(cfg.PropertyPageTimeout),
		propertypage.WithLogger(logger),
	}
	if redisClient != nil {
		opts = append(opts, propertypage.WithCache(propertypage.NewRedisCache(redisClient, cfg.PropertyPageCacheTTL)))
	}
	return propertypage.NewClient(opts...)
}

// BuildCRMClient returns the CRM submitter. A missing endpoint is logged;
// submissions then fail with crm.ErrNotConfigured and leads are only logged.
func BuildCRMClient(cfg *appconfig.Config, logger *logging.Logger) *crm.Client {
	if strings.TrimSpace(cfg.CRMAPIURL) == "" {
		logger.Warn("CRM_API_URL not set; leads will be parsed but not submitted")
	}
	return crm.NewClient(crm.Config{
		Endpoint:   cfg.CRMAPIURL,
		APIKey:     cfg.CRMAPIKey,
		LeadSource: cfg.CRMLeadSource,
		Timeout:    cfg.CRMTimeout,
	}, crm.WithLogger(logger))
}

// BuildPipeline wires the shared lead pipeline used by every transport.
// A nil registerer falls back to the Prometheus default registry.
func BuildPipeline(ctx context.Context, cfg *appconfig.Config, reg prometheus.Registerer, logger *logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.Default()
	}

	leadMetrics := metrics.NewLeadMetrics(reg)
	redisClient := BuildRedisClient(ctx, cfg, logger, true)

	service := leads.NewService(
		BuildCRMClient(cfg, logger),
		logger,
		leads.WithPageClassifier(BuildPropertyPageClient(cfg, redisClient, logger)),
		leads.WithMetrics(leadMetrics),
	)

	return &Pipeline{
		Service: service,
		Metrics: leadMetrics,
		Redis:   redisClient,
	}
}

// BuildEmailProcessor wraps the pipeline with the configured origin policy.
func BuildEmailProcessor(cfg *appconfig.Config, pipeline *Pipeline, logger *logging.Logger) *inbound.Processor {
	policy := inbound.DefaultOriginPolicy()
	if domain := strings.TrimSpace(cfg.EmailAllowedDomain); domain != "" {
		policy.AllowedDomain = domain
	}
	if phrase := strings.TrimSpace(cfg.EmailSubjectPhrase); phrase != "" {
		policy.SubjectPhrase = phrase
	}
	return inbound.NewProcessor(
		pipeline.Service,
		logger,
		inbound.WithOriginPolicy(policy),
		inbound.WithMetrics(pipeline.Metrics),
	)
}
