package geocode

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
)

const nominatimEndpoint = "https://nominatim.openstreetmap.org/search"

// nominatimPlace mirrors the relevant parts of the OSM search payload.
type nominatimPlace struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Category    string  `json:"category"`
	Type        string  `json:"type"`
	Importance  float64 `json:"importance"`
}

// Nominatim geocodes via the OpenStreetMap Nominatim search API. The public
// instance requires an identifying User-Agent and at most one request per
// second, which Client enforces.
type Nominatim struct {
	hc        *http.Client
	endpoint  string
	userAgent string
	email     string
}

// NewNominatim creates a Nominatim provider identifying itself as userAgent.
func NewNominatim(userAgent string, opts ...ProviderOption) (*Nominatim, error) {
	if userAgent == "" {
		return nil, eris.New("geocode: nominatim requires a user agent")
	}
	o := buildOptions(nominatimEndpoint, opts)
	return &Nominatim{
		hc:        o.httpClient,
		endpoint:  o.baseURL,
		userAgent: userAgent,
		email:     o.email,
	}, nil
}

// Name implements Provider.
func (n *Nominatim) Name() string { return ProviderNominatim }

// Geocode implements Provider.
func (n *Nominatim) Geocode(ctx context.Context, query string) (*Result, error) {
	params := url.Values{
		"q":      {query},
		"format": {"jsonv2"},
		"limit":  {"1"},
	}
	if n.email != "" {
		params.Set("email", n.email)
	}
	header := http.Header{
		"User-Agent": {n.userAgent},
		"Accept":     {"application/json"},
	}

	var places []nominatimPlace
	if err := fetchJSON(ctx, n.hc, ProviderNominatim, n.endpoint, params, header, &places); err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return nil, nil //nolint:nilnil // no match
	}

	place := places[0]
	lat, err := strconv.ParseFloat(place.Lat, 64)
	if err != nil {
		return nil, eris.Wrapf(err, "geocode: nominatim parse lat %q", place.Lat)
	}
	lon, err := strconv.ParseFloat(place.Lon, 64)
	if err != nil {
		return nil, eris.Wrapf(err, "geocode: nominatim parse lon %q", place.Lon)
	}

	return &Result{
		Latitude:  lat,
		Longitude: lon,
		Address:   place.DisplayName,
		Source:    ProviderNominatim,
		Quality:   place.Type,
	}, nil
}
