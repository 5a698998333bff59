package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/geocoder/internal/resolve"
	"github.com/sells-group/geocoder/internal/table"
	"github.com/sells-group/geocoder/pkg/geocode"
)

// Output columns written by the geocode and normalize stages.
const (
	LocationColumn  = "location"
	LatitudeColumn  = "latitude"
	LongitudeColumn = "longitude"
	AltitudeColumn  = "altitude"
)

// Geocoder resolves one free-text query. *geocode.Client satisfies it.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*geocode.Result, error)
}

// Progress is called after each row with the number of rows done and the total.
type Progress func(done, total int)

// GeocodeStats counts per-row lookup outcomes.
type GeocodeStats struct {
	Matched   int `json:"matched"`
	Unmatched int `json:"unmatched"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"` // empty query, never sent
}

// Geocode looks up geocode_col for every row in order, one request at a time,
// and writes the results to the location column. Unmatched, failed and
// skipped rows get the missing marker. A lookup error never aborts the stage.
func Geocode(ctx context.Context, t *table.Table, gc Geocoder, progress Progress) (GeocodeStats, error) {
	var stats GeocodeStats

	queries, err := t.Column(resolve.GeocodeColumn)
	if err != nil {
		return stats, err
	}

	log := zap.L().With(zap.String("stage", "geocode"))
	total := len(queries)
	locations := make([]table.Value, total)

	for i, q := range queries {
		if query := strings.TrimSpace(q.String()); query == "" {
			stats.Skipped++
		} else {
			result, lookupErr := gc.Geocode(ctx, query)
			switch {
			case lookupErr != nil:
				stats.Failed++
				log.Debug("geocode: lookup failed", zap.Int("row", i), zap.String("query", query), zap.Error(lookupErr))
			case result == nil:
				stats.Unmatched++
				log.Debug("geocode: no match", zap.Int("row", i), zap.String("query", query))
			default:
				stats.Matched++
				locations[i] = table.ObjectValue(result)
			}
		}
		if progress != nil {
			progress(i+1, total)
		}
	}

	if err := t.SetColumn(LocationColumn, locations); err != nil {
		return stats, err
	}

	log.Info("geocode: stage complete",
		zap.Int("rows", total),
		zap.Int("matched", stats.Matched),
		zap.Int("unmatched", stats.Unmatched),
		zap.Int("failed", stats.Failed),
		zap.Int("skipped", stats.Skipped),
	)
	return stats, nil
}
