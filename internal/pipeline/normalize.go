package pipeline

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geocoder/internal/table"
)

// point is a location that can be unpacked into latitude, longitude, altitude.
type point interface {
	Coords() []float64
}

// NormalizeReport describes the outcome of Normalize.
type NormalizeReport struct {
	// Degraded is set when at least one location could not be unpacked and
	// every row's coordinates were therefore written as missing.
	Degraded bool `json:"degraded"`
	// Located counts rows that ended up with coordinates.
	Located int `json:"located"`
}

// Normalize expands the location column into latitude, longitude and
// altitude, then replaces location with its text form.
//
// A missing location yields three missing coordinates. If any non-missing
// location does not unpack into exactly three components, the whole batch
// falls back to missing coordinates and the report is marked degraded.
func Normalize(t *table.Table) (NormalizeReport, error) {
	var rep NormalizeReport

	locations, err := t.Column(LocationColumn)
	if err != nil {
		return rep, err
	}

	n := len(locations)
	lat := make([]table.Value, n)
	lon := make([]table.Value, n)
	alt := make([]table.Value, n)

	badRow := -1
	for i, loc := range locations {
		if loc.IsMissing() {
			continue
		}
		coords, ok := unpack(loc)
		if !ok {
			badRow = i
			break
		}
		lat[i] = table.NumberValue(coords[0])
		lon[i] = table.NumberValue(coords[1])
		alt[i] = table.NumberValue(coords[2])
		rep.Located++
	}

	if badRow >= 0 {
		zap.L().Warn("normalize: location could not be unpacked, all coordinates set missing",
			zap.Int("row", badRow),
			zap.String("location", locations[badRow].String()),
			zap.Int("rows", n),
		)
		rep.Degraded = true
		rep.Located = 0
		lat = make([]table.Value, n)
		lon = make([]table.Value, n)
		alt = make([]table.Value, n)
	}

	for _, col := range []struct {
		name string
		vals []table.Value
	}{
		{LatitudeColumn, lat},
		{LongitudeColumn, lon},
		{AltitudeColumn, alt},
	} {
		if err := t.SetColumn(col.name, col.vals); err != nil {
			return rep, eris.Wrapf(err, "normalize: set %s", col.name)
		}
	}

	text := make([]table.Value, n)
	for i, loc := range locations {
		text[i] = table.TextValue(loc.String())
	}
	if err := t.SetColumn(LocationColumn, text); err != nil {
		return rep, eris.Wrap(err, "normalize: stringify location")
	}

	return rep, nil
}

func unpack(v table.Value) ([]float64, bool) {
	p, ok := v.Object().(point)
	if !ok {
		return nil, false
	}
	coords := p.Coords()
	if len(coords) != 3 {
		return nil, false
	}
	return coords, true
}
