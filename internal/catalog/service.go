// File: internal/catalog/service.go
package catalog

import (
	"context"
	"strings"
	"time"

	"carmatch_backend/internal/common"
	"carmatch_backend/internal/config"
	"carmatch_backend/internal/platform/metrics"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// Service serves the make and model reference lists.
type Service interface {
	ListMakes(ctx context.Context) ([]Make, error)
	ListModels(ctx context.Context, makeName string) ([]Model, error)
}

// CachedService reads through a time-expiring cache in front of Upstream.
// Concurrent misses may each hit upstream.
type CachedService struct {
	upstream Upstream
	ttl      time.Duration
	makes    holder[[]Make]
	models   *keyedHolder[[]Model]
	logger   *zap.Logger
	now      func() time.Time
}

// NewCachedService creates a cached catalog over upstream.
func NewCachedService(upstream Upstream, cfg *config.Config, logger *zap.Logger) *CachedService {
	ttl := cfg.CatalogCacheTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedService{
		upstream: upstream,
		ttl:      ttl,
		models:   newKeyedHolder[[]Model](cfg.CatalogCacheMaxMakes),
		logger:   logger.Named("Catalog"),
		now:      time.Now,
	}
}

// NewService wires the vPIC client behind the cache.
func NewService(cfg *config.Config, logger *zap.Logger) *CachedService {
	return NewCachedService(NewVPICClient(cfg.CatalogAPIURL, cfg.CatalogHTTPTimeout), cfg, logger)
}

func (s *CachedService) ListMakes(ctx context.Context) ([]Make, error) {
	now := s.now()
	cached := s.makes.load()
	if cached.fresh(now, s.ttl) {
		metrics.CatalogLookups.WithLabelValues("cache").Inc()
		return cached.value, nil
	}

	makes, err := s.upstream.FetchMakes(ctx)
	if err != nil {
		return fallback(s.logger, cached, err, zap.String("list", "makes"))
	}
	s.makes.store(makes, now)
	metrics.CatalogLookups.WithLabelValues("upstream").Inc()
	return makes, nil
}

func (s *CachedService) ListModels(ctx context.Context, makeName string) ([]Model, error) {
	key := slug.Make(makeName)
	if key == "" {
		return nil, common.NewFieldValidationError("make", "The make field is required.")
	}

	now := s.now()
	cached := s.models.load(key)
	if cached.fresh(now, s.ttl) {
		metrics.CatalogLookups.WithLabelValues("cache").Inc()
		return cached.value, nil
	}

	models, err := s.upstream.FetchModels(ctx, strings.TrimSpace(makeName))
	if err != nil {
		return fallback(s.logger, cached, err, zap.String("list", "models"), zap.String("make", key))
	}
	s.models.store(key, models, now)
	metrics.CatalogLookups.WithLabelValues("upstream").Inc()
	return models, nil
}

// fallback serves a stale snapshot when there is one.
func fallback[T any](logger *zap.Logger, cached *snapshot[T], err error, fields ...zap.Field) (T, error) {
	var zero T
	fields = append(fields, zap.Error(err))
	if cached != nil {
		logger.Warn("Catalog upstream failed; serving stale data", fields...)
		metrics.CatalogLookups.WithLabelValues("stale").Inc()
		return cached.value, nil
	}
	logger.Error("Catalog upstream failed with nothing cached", fields...)
	return zero, common.ErrUpstreamUnavailable.WithDetails("The vehicle catalog is temporarily unavailable.")
}
