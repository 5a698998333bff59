// Package export renders normalized address tables as GeoJSON and as a
// point map page.
package export

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/geocoder/internal/pipeline"
	"github.com/sells-group/geocoder/internal/resolve"
	"github.com/sells-group/geocoder/internal/table"
)

// Point is one located row.
type Point struct {
	Row       int
	Latitude  float64
	Longitude float64
	Altitude  float64
}

// Points returns the rows of t that carry coordinates, in row order.
// Rows with missing coordinates are skipped.
func Points(t *table.Table) ([]Point, error) {
	for _, col := range []string{pipeline.LatitudeColumn, pipeline.LongitudeColumn} {
		if !t.Has(col) {
			return nil, eris.Errorf("export: table has no %s column", col)
		}
	}

	var pts []Point
	for i := 0; i < t.Len(); i++ {
		lat, okLat := t.Get(i, pipeline.LatitudeColumn).Number()
		lon, okLon := t.Get(i, pipeline.LongitudeColumn).Number()
		if !okLat || !okLon {
			continue
		}
		alt, _ := t.Get(i, pipeline.AltitudeColumn).Number()
		pts = append(pts, Point{Row: i, Latitude: lat, Longitude: lon, Altitude: alt})
	}
	return pts, nil
}

// FeatureCollection builds a GeoJSON point collection in WGS84 lon/lat
// order. Each feature carries its row number, query and matched location.
// The table is not modified.
func FeatureCollection(t *table.Table) (*geojson.FeatureCollection, error) {
	pts, err := Points(t)
	if err != nil {
		return nil, err
	}

	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(pts))}
	if len(pts) == 0 {
		return fc, nil
	}

	bounds := geom.NewBounds(geom.XY)
	for _, p := range pts {
		pt := geom.NewPointFlat(geom.XY, []float64{p.Longitude, p.Latitude}).SetSRID(4326)
		bounds.Extend(pt)

		props := map[string]any{
			"row":      p.Row,
			"altitude": p.Altitude,
		}
		if t.Has(resolve.GeocodeColumn) {
			props["query"] = t.Get(p.Row, resolve.GeocodeColumn).String()
		}
		if t.Has(pipeline.LocationColumn) {
			props["location"] = t.Get(p.Row, pipeline.LocationColumn).String()
		}

		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         strconv.Itoa(p.Row),
			Geometry:   pt,
			Properties: props,
		})
	}
	fc.BBox = bounds

	return fc, nil
}

// WriteGeoJSON writes the point collection of t to w.
func WriteGeoJSON(w io.Writer, t *table.Table) error {
	fc, err := FeatureCollection(t)
	if err != nil {
		return err
	}
	data, err := json.Marshal(fc)
	if err != nil {
		return eris.Wrap(err, "export: marshal geojson")
	}
	if _, err := w.Write(data); err != nil {
		return eris.Wrap(err, "export: write geojson")
	}
	return nil
}
