// Package resolve builds the geocode_col query column from a user's column
// selection.
package resolve

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geocoder/internal/table"
)

// GeocodeColumn is the derived column holding the query sent to the geocoder.
const GeocodeColumn = "geocode_col"

// Separator joins the address parts in multi-column mode.
const Separator = ","

// ErrInvalidSelection is returned when a selection names a column the table
// does not have, or is otherwise unusable.
var ErrInvalidSelection = eris.New("resolve: invalid column selection")

// Mode selects how geocode_col is built.
type Mode string

const (
	// ModeSingle copies one pre-formatted address column.
	ModeSingle Mode = "single"
	// ModeMulti joins street, city, postcode and a fixed country.
	ModeMulti Mode = "multi"
)

// Selection describes which columns form the address.
type Selection struct {
	Mode     Mode   `yaml:"mode" json:"mode"`
	Column   string `yaml:"column,omitempty" json:"column,omitempty"`
	Street   string `yaml:"street,omitempty" json:"street,omitempty"`
	Postcode string `yaml:"postcode,omitempty" json:"postcode,omitempty"`
	City     string `yaml:"city,omitempty" json:"city,omitempty"`
	Country  string `yaml:"country,omitempty" json:"country,omitempty"`
}

// Single selects one column that already holds a full address.
func Single(column string) Selection {
	return Selection{Mode: ModeSingle, Column: column}
}

// Multi selects discrete street, postcode and city columns. country is a
// literal applied to every row, not a column name.
func Multi(street, postcode, city, country string) Selection {
	return Selection{Mode: ModeMulti, Street: street, Postcode: postcode, City: city, Country: country}
}

// Validate checks every referenced column exists in t.
func (s Selection) Validate(t *table.Table) error {
	switch s.Mode {
	case ModeSingle:
		return requireColumn(t, "column", s.Column)
	case ModeMulti:
		for _, f := range []struct{ field, column string }{
			{"street", s.Street},
			{"postcode", s.Postcode},
			{"city", s.City},
		} {
			if err := requireColumn(t, f.field, f.column); err != nil {
				return err
			}
		}
		return nil
	default:
		return eris.Wrapf(ErrInvalidSelection, "unknown mode %q", s.Mode)
	}
}

// Apply adds geocode_col to every row of t. On error t is left unmodified.
func Apply(t *table.Table, s Selection) error {
	if err := s.Validate(t); err != nil {
		return err
	}

	vals := make([]table.Value, t.Len())
	switch s.Mode {
	case ModeSingle:
		for i := range vals {
			vals[i] = table.TextValue(t.Get(i, s.Column).String())
		}
	case ModeMulti:
		var b strings.Builder
		for i := range vals {
			b.Reset()
			b.WriteString(t.Get(i, s.Street).String())
			b.WriteString(Separator)
			b.WriteString(t.Get(i, s.City).String())
			b.WriteString(Separator)
			b.WriteString(t.Get(i, s.Postcode).String())
			b.WriteString(Separator)
			b.WriteString(s.Country)
			vals[i] = table.TextValue(b.String())
		}
	}

	if err := t.SetColumn(GeocodeColumn, vals); err != nil {
		return eris.Wrap(err, "resolve: set geocode column")
	}
	return nil
}

func requireColumn(t *table.Table, field, column string) error {
	if column == "" {
		return eris.Wrapf(ErrInvalidSelection, "%s column not selected", field)
	}
	if !t.Has(column) {
		return eris.Wrapf(ErrInvalidSelection, "%s column %q not in table", field, column)
	}
	return nil
}
