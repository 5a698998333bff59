package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/geocoder/internal/table"
	"github.com/sells-group/geocoder/pkg/geocode"
)

// fakeGeocoder answers from a fixed table of queries. Unknown queries are
// unmatched; queries in fail return an error.
type fakeGeocoder struct {
	results map[string]*geocode.Result
	fail    map[string]bool
	queries []string
}

func (f *fakeGeocoder) Geocode(ctx context.Context, query string) (*geocode.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.queries = append(f.queries, query)
	if f.fail[query] {
		return nil, errors.New("upstream unavailable")
	}
	return f.results[query], nil
}

var bakerStreet = &geocode.Result{
	Latitude:  51.5237,
	Longitude: -0.1585,
	Address:   "221B Baker Street, London",
	Source:    "fake",
}

func newTextTable(t *testing.T, columns []string, rows ...[]string) *table.Table {
	t.Helper()
	tbl, err := table.New(columns)
	require.NoError(t, err)
	for _, r := range rows {
		vals := make([]table.Value, len(r))
		for i, s := range r {
			vals[i] = table.TextValue(s)
		}
		require.NoError(t, tbl.AppendRow(vals))
	}
	return tbl
}

// badLocation is an Object that does not unpack into three coordinates.
type badLocation struct{ coords []float64 }

func (b badLocation) String() string    { return "bad" }
func (b badLocation) Coords() []float64 { return b.coords }

type opaqueLocation struct{}

func (opaqueLocation) String() string { return "opaque" }
