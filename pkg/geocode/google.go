package geocode

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
)

const googleEndpoint = "https://maps.googleapis.com/maps/api/geocode/json"

type googleReply struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Formatted string `json:"formatted_address"`
		Geometry  struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
			LocationType string `json:"location_type"`
		} `json:"geometry"`
	} `json:"results"`
}

// Google geocodes via the Google Geocoding API.
type Google struct {
	hc       *http.Client
	endpoint string
	key      string
}

// NewGoogle creates a Google provider using the given API key.
func NewGoogle(key string, opts ...ProviderOption) (*Google, error) {
	if key == "" {
		return nil, eris.New("geocode: google api key not configured")
	}
	o := buildOptions(googleEndpoint, opts)
	return &Google{hc: o.httpClient, endpoint: o.baseURL, key: key}, nil
}

// Name implements Provider.
func (g *Google) Name() string { return ProviderGoogle }

// Geocode implements Provider.
func (g *Google) Geocode(ctx context.Context, query string) (*Result, error) {
	var reply googleReply
	params := url.Values{"address": {query}, "key": {g.key}}
	if err := fetchJSON(ctx, g.hc, ProviderGoogle, g.endpoint, params, nil, &reply); err != nil {
		return nil, err
	}

	switch reply.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, nil //nolint:nilnil // no match
	default:
		return nil, eris.Errorf("geocode: google status %s: %s", reply.Status, reply.ErrorMessage)
	}
	if len(reply.Results) == 0 {
		return nil, nil //nolint:nilnil // no match
	}

	top := reply.Results[0]
	return &Result{
		Latitude:  top.Geometry.Location.Lat,
		Longitude: top.Geometry.Location.Lng,
		Address:   top.Formatted,
		Source:    ProviderGoogle,
		Quality:   googleQuality(top.Geometry.LocationType),
	}, nil
}

// googleQuality maps Google's location_type onto the shared quality labels.
func googleQuality(locationType string) string {
	switch strings.ToUpper(locationType) {
	case "ROOFTOP":
		return "rooftop"
	case "RANGE_INTERPOLATED":
		return "range"
	case "GEOMETRIC_CENTER":
		return "centroid"
	}
	return "approximate"
}
