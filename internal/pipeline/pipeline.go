// Package pipeline runs the resolve, geocode and normalize stages over an
// address table.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geocoder/internal/resolve"
	"github.com/sells-group/geocoder/internal/table"
)

// ErrEmptyTable is returned by Run for a table without rows.
var ErrEmptyTable = eris.New("pipeline: table has no rows")

// Report summarizes one pipeline run.
type Report struct {
	Rows int `json:"rows"`
	GeocodeStats
	NormalizeReport
	Elapsed time.Duration `json:"elapsed"`
}

// Pipeline wires a geocoder into the resolve, geocode, normalize sequence.
type Pipeline struct {
	geocoder Geocoder
	progress Progress
	now      func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithProgress reports per-row progress of the geocode stage.
func WithProgress(fn Progress) Option {
	return func(p *Pipeline) {
		p.progress = fn
	}
}

// New creates a Pipeline that looks addresses up through gc.
func New(gc Geocoder, opts ...Option) *Pipeline {
	p := &Pipeline{
		geocoder: gc,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run resolves the address column, geocodes every row and normalizes the
// results in place. The row count of t never changes. Per-row lookup
// failures are reported in the Report, not as an error.
func (p *Pipeline) Run(ctx context.Context, t *table.Table, sel resolve.Selection) (*Report, error) {
	if t.Len() == 0 {
		return nil, ErrEmptyTable
	}

	start := p.now()
	log := zap.L().With(zap.String("mode", string(sel.Mode)), zap.Int("rows", t.Len()))
	log.Info("pipeline: starting run")

	if err := resolve.Apply(t, sel); err != nil {
		return nil, err
	}

	stats, err := Geocode(ctx, t, p.geocoder, p.progress)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: geocode")
	}

	norm, err := Normalize(t)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: normalize")
	}

	rep := &Report{
		Rows:            t.Len(),
		GeocodeStats:    stats,
		NormalizeReport: norm,
		Elapsed:         p.now().Sub(start),
	}

	log.Info("pipeline: run complete",
		zap.Int("located", rep.Located),
		zap.Bool("degraded", rep.Degraded),
		zap.Duration("elapsed", rep.Elapsed),
	)
	return rep, nil
}
