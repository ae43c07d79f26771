// File: internal/matching/engine.go
package matching

import (
	"context"
	"time"

	"carmatch_backend/internal/common"
	"carmatch_backend/internal/config"
	"carmatch_backend/internal/geo"
	"carmatch_backend/internal/listing"
	"carmatch_backend/internal/platform/metrics"

	"go.uber.org/zap"
)

// Engine finds the want listings a vehicle satisfies. The radius used is
// always the want listing's own.
type Engine struct {
	repo     listing.Repository
	filters  *listing.FilterBuilder
	resolver geo.Resolver
	cfg      *config.Config
	logger   *zap.Logger
}

// NewEngine creates a new matching engine.
func NewEngine(repo listing.Repository, filters *listing.FilterBuilder, resolver geo.Resolver, cfg *config.Config, logger *zap.Logger) *Engine {
	return &Engine{
		repo:     repo,
		filters:  filters,
		resolver: resolver,
		cfg:      cfg,
		logger:   logger.Named("MatchingEngine"),
	}
}

// Match returns a newest-first page of active want listings compatible with v
// that have no introduction with v yet. The caller must already have checked
// that the requester owns v.
func (e *Engine) Match(ctx context.Context, v listing.VehicleCriteria, page common.PaginationQuery) (common.Page[listing.SearchResult], error) {
	started := time.Now()
	page.Normalize(e.cfg.SearchMaxPageSize)

	pred := e.filters.ForVehicle(v)
	rows, total, err := e.repo.Search(ctx, pred, listing.SortNewest, page.Offset(), page.Limit, nil)
	if err != nil {
		e.logger.Error("Match query failed", zap.String("vehicleID", v.VehicleID.String()), zap.Error(err))
		return common.Page[listing.SearchResult]{}, err
	}

	if origin, ok := e.resolver.Resolve(v.Zip); ok {
		listing.AnnotateDistances(rows, origin, e.resolver)
	}
	metrics.ObserveQuery(metrics.QueryMatch, started, total)
	e.logger.Debug("Matched want listings",
		zap.String("vehicleID", v.VehicleID.String()),
		zap.Int64("total", total),
		zap.Int("page", page.Page),
	)
	return common.NewPage(rows, total, page.Page, page.Limit), nil
}
