package export

import (
	_ "embed"
	"html/template"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geocoder/internal/table"
)

// Map defaults.
const (
	DefaultZoom        = 10
	DefaultTileURL     = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	DefaultAttribution = "&copy; OpenStreetMap contributors"
	DefaultTitle       = "Geocoded addresses"
)

//go:embed templates/map.html.tmpl
var mapSource string

var mapTemplate = template.Must(template.New("map").Parse(mapSource))

// MapOptions configures the rendered map page. Zero fields take the defaults.
type MapOptions struct {
	Zoom        int
	TileURL     string
	Attribution string
	Title       string
}

func (o MapOptions) withDefaults() MapOptions {
	if o.Zoom <= 0 {
		o.Zoom = DefaultZoom
	}
	if o.TileURL == "" {
		o.TileURL = DefaultTileURL
	}
	if o.Attribution == "" {
		o.Attribution = DefaultAttribution
	}
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	return o
}

type mapData struct {
	Title       string
	TileURL     string
	Attribution string
	Zoom        int
	CenterLat   float64
	CenterLon   float64
	Count       int
	Features    any
}

// RenderMap writes a standalone Leaflet page showing every located row of t
// as a marker. The view is centred on the mean of the points at a fixed
// zoom. With no located rows the page shows the whole world.
func RenderMap(w io.Writer, t *table.Table, opts MapOptions) error {
	opts = opts.withDefaults()

	fc, err := FeatureCollection(t)
	if err != nil {
		return err
	}
	pts, err := Points(t)
	if err != nil {
		return err
	}

	data := mapData{
		Title:       opts.Title,
		TileURL:     opts.TileURL,
		Attribution: opts.Attribution,
		Zoom:        opts.Zoom,
		Count:       len(pts),
		Features:    fc,
	}
	if len(pts) == 0 {
		data.Zoom = 1
	} else {
		data.CenterLat, data.CenterLon = Center(pts)
	}

	if err := mapTemplate.Execute(w, data); err != nil {
		return eris.Wrap(err, "export: render map")
	}
	return nil
}

// Center returns the mean latitude and longitude of pts.
func Center(pts []Point) (lat, lon float64) {
	if len(pts) == 0 {
		return 0, 0
	}
	for _, p := range pts {
		lat += p.Latitude
		lon += p.Longitude
	}
	n := float64(len(pts))
	return lat / n, lon / n
}
