// File: internal/geo/resolver.go
package geo

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Resolver looks up the coordinates of a zip code. A zip with no record is
// reported as absent, never as an error.
type Resolver interface {
	Resolve(zip string) (Coordinates, bool)
}

// StaticResolver is an immutable in-memory zip table, loaded once.
type StaticResolver struct {
	byZip map[string]Coordinates
}

func NewStaticResolver(rows []ZipGeo) *StaticResolver {
	byZip := make(map[string]Coordinates, len(rows))
	for _, r := range rows {
		byZip[NormalizeZip(r.Zip)] = r.Coordinates()
	}
	return &StaticResolver{byZip: byZip}
}

func (r *StaticResolver) Resolve(zip string) (Coordinates, bool) {
	c, ok := r.byZip[NormalizeZip(zip)]
	return c, ok
}

func (r *StaticResolver) Len() int {
	return len(r.byZip)
}

// LoadResolver snapshots the zip_geos table into a StaticResolver.
func LoadResolver(ctx context.Context, repo Repository, logger *zap.Logger) (*StaticResolver, error) {
	rows, err := repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading zip geo table: %w", err)
	}
	if len(rows) == 0 {
		logger.Warn("Zip geo table is empty; radius filters will match nothing. Run the seed-geo command.")
	}
	resolver := NewStaticResolver(rows)
	logger.Info("Zip geo resolver loaded", zap.Int("zips", resolver.Len()))
	return resolver, nil
}

// NormalizeZip trims whitespace and drops a ZIP+4 suffix.
func NormalizeZip(zip string) string {
	zip = strings.TrimSpace(zip)
	if i := strings.IndexByte(zip, '-'); i > 0 {
		zip = zip[:i]
	}
	return zip
}
