package geocode

import (
	"context"
	"net/http"
	"net/url"
)

const (
	censusEndpoint  = "https://geocoding.geo.census.gov/geocoder/locations/onelineaddress"
	censusBenchmark = "Public_AR_Current"
)

type censusReply struct {
	Result struct {
		AddressMatches []struct {
			MatchedAddress string `json:"matchedAddress"`
			Coordinates    struct {
				X float64 `json:"x"`
				Y float64 `json:"y"`
			} `json:"coordinates"`
		} `json:"addressMatches"`
	} `json:"result"`
}

// Census geocodes US addresses via the Census Bureau one-line API. No key is
// required.
type Census struct {
	hc       *http.Client
	endpoint string
}

// NewCensus creates a Census provider.
func NewCensus(opts ...ProviderOption) *Census {
	o := buildOptions(censusEndpoint, opts)
	return &Census{hc: o.httpClient, endpoint: o.baseURL}
}

// Name implements Provider.
func (c *Census) Name() string { return ProviderCensus }

// Geocode implements Provider.
func (c *Census) Geocode(ctx context.Context, query string) (*Result, error) {
	var reply censusReply
	params := url.Values{
		"address":   {query},
		"benchmark": {censusBenchmark},
		"format":    {"json"},
	}
	if err := fetchJSON(ctx, c.hc, ProviderCensus, c.endpoint, params, nil, &reply); err != nil {
		return nil, err
	}

	matches := reply.Result.AddressMatches
	if len(matches) == 0 {
		return nil, nil //nolint:nilnil // no match
	}

	// x is longitude, y is latitude.
	return &Result{
		Latitude:  matches[0].Coordinates.Y,
		Longitude: matches[0].Coordinates.X,
		Address:   matches[0].MatchedAddress,
		Source:    ProviderCensus,
		Quality:   "rooftop",
	}, nil
}
