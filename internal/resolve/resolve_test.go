package resolve

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geocoder/internal/table"
)

func newTable(t *testing.T, csv string) *table.Table {
	t.Helper()
	tbl, err := table.ReadCSV(strings.NewReader(csv), table.ReadOptions{})
	require.NoError(t, err)
	return tbl
}

func TestApply_Single(t *testing.T) {
	tbl := newTable(t, "id,addr\n1,\"221 Baker Street, London, NW1 6XE\"\n2,\n")

	require.NoError(t, Apply(tbl, Single("addr")))

	require.Equal(t, 2, tbl.Len())
	for i := 0; i < tbl.Len(); i++ {
		assert.Equal(t, tbl.Get(i, "addr").String(), tbl.Get(i, GeocodeColumn).String())
		assert.Equal(t, table.Text, tbl.Get(i, GeocodeColumn).Kind())
	}
	assert.Equal(t, "221 Baker Street, London, NW1 6XE", tbl.Get(0, GeocodeColumn).String())
}

func TestApply_SingleCoercesToText(t *testing.T) {
	tbl, err := table.New([]string{"zip"})
	require.NoError(t, err)
	require.NoError(t, tbl.AppendRow([]table.Value{table.NumberValue(90210)}))

	require.NoError(t, Apply(tbl, Single("zip")))
	v := tbl.Get(0, GeocodeColumn)
	assert.Equal(t, table.Text, v.Kind())
	assert.Equal(t, "90210", v.String())
}

func TestApply_Multi(t *testing.T) {
	tbl := newTable(t, "street,city,postcode\n10 Downing St,London,SW1A 2AA\n,,\n")

	require.NoError(t, Apply(tbl, Multi("street", "postcode", "city", "UK")))

	assert.Equal(t, "10 Downing St,London,SW1A 2AA,UK", tbl.Get(0, GeocodeColumn).String())
	assert.Equal(t, ",,,UK", tbl.Get(1, GeocodeColumn).String())
	// Source columns are untouched.
	assert.Equal(t, "10 Downing St", tbl.Get(0, "street").String())
	assert.Equal(t, []string{"street", "city", "postcode", GeocodeColumn}, tbl.Columns())
}

func TestApply_MultiCountryIsLiteral(t *testing.T) {
	// A column named like the country value must not be looked up.
	tbl := newTable(t, "s,c,p,UK\na,b,c,ignored\n")

	require.NoError(t, Apply(tbl, Multi("s", "p", "c", "UK")))
	assert.Equal(t, "a,b,c,UK", tbl.Get(0, GeocodeColumn).String())
}

func TestApply_MissingColumn(t *testing.T) {
	tests := []struct {
		name string
		sel  Selection
	}{
		{"single unknown", Single("address")},
		{"single empty", Single("")},
		{"multi unknown street", Multi("road", "postcode", "city", "UK")},
		{"multi unknown postcode", Multi("street", "zip", "city", "UK")},
		{"multi unknown city", Multi("street", "postcode", "town", "UK")},
		{"unknown mode", Selection{Mode: "guess", Column: "street"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := newTable(t, "street,city,postcode\n10 Downing St,London,SW1A 2AA\n")
			before := tbl.Columns()

			err := Apply(tbl, tt.sel)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSelection), "got %v", err)

			assert.Equal(t, before, tbl.Columns())
			assert.False(t, tbl.Has(GeocodeColumn))
			assert.Equal(t, 1, tbl.Len())
		})
	}
}

func TestApply_ReplacesExistingGeocodeColumn(t *testing.T) {
	tbl := newTable(t, "a,b\nx,y\n")

	require.NoError(t, Apply(tbl, Single("a")))
	require.NoError(t, Apply(tbl, Single("b")))
	assert.Equal(t, "y", tbl.Get(0, GeocodeColumn).String())
	assert.Equal(t, []string{"a", "b", GeocodeColumn}, tbl.Columns())
}

func TestParseSelection(t *testing.T) {
	s, err := ParseSelection([]byte("mode: multi\nstreet: Address\npostcode: Zip\ncity: Town\ncountry: UK\n"))
	require.NoError(t, err)
	assert.Equal(t, Multi("Address", "Zip", "Town", "UK"), s)

	s, err = ParseSelection([]byte("column: addr\n"))
	require.NoError(t, err)
	assert.Equal(t, Single("addr"), s)

	_, err = ParseSelection([]byte("mode: fuzzy\n"))
	assert.ErrorIs(t, err, ErrInvalidSelection)

	_, err = ParseSelection([]byte("mode: [\n"))
	require.Error(t, err)
}

func TestLoadSelection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selection.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: single\ncolumn: addr\n"), 0o644))

	s, err := LoadSelection(path)
	require.NoError(t, err)
	assert.Equal(t, ModeSingle, s.Mode)
	assert.Equal(t, "addr", s.Column)

	_, err = LoadSelection(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
