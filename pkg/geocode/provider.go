package geocode

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Provider names accepted by NewProvider.
const (
	ProviderNominatim = "nominatim"
	ProviderGoogle    = "google"
	ProviderCensus    = "census"
)

// Provider represents a single geocoding backend.
type Provider interface {
	Name() string
	// Geocode resolves a free-text address. A nil Result with a nil error
	// means the provider found no match.
	Geocode(ctx context.Context, query string) (*Result, error)
}

// Result holds the geocoding output for an address.
type Result struct {
	Latitude  float64
	Longitude float64
	Altitude  float64 // 0 when the provider does not report one
	Address   string  // provider's display form of the match
	Source    string  // provider name
	Quality   string  // provider-specific match precision
}

// Coords returns the point as latitude, longitude, altitude.
func (r *Result) Coords() []float64 {
	return []float64{r.Latitude, r.Longitude, r.Altitude}
}

// String returns the matched address, or the coordinates when the provider
// supplied no display name.
func (r *Result) String() string {
	if r.Address != "" {
		return r.Address
	}
	return formatFloat(r.Latitude) + ", " + formatFloat(r.Longitude)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ProviderConfig selects and configures a provider.
type ProviderConfig struct {
	Name       string
	UserAgent  string // nominatim, required
	Email      string // nominatim, optional
	BaseURL    string // overrides the provider endpoint
	GoogleKey  string
	HTTPClient *http.Client
}

// NewProvider builds the provider named in cfg.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	var opts []ProviderOption
	if cfg.HTTPClient != nil {
		opts = append(opts, WithHTTPClient(cfg.HTTPClient))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, WithBaseURL(cfg.BaseURL))
	}

	switch strings.ToLower(cfg.Name) {
	case ProviderNominatim, "":
		if cfg.Email != "" {
			opts = append(opts, WithEmail(cfg.Email))
		}
		return NewNominatim(cfg.UserAgent, opts...)
	case ProviderGoogle:
		return NewGoogle(cfg.GoogleKey, opts...)
	case ProviderCensus:
		return NewCensus(opts...), nil
	default:
		return nil, eris.Errorf("geocode: unknown provider %q", cfg.Name)
	}
}

// ProviderOption configures an HTTP-backed provider.
type ProviderOption func(*providerOptions)

type providerOptions struct {
	httpClient *http.Client
	baseURL    string
	email      string
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ProviderOption {
	return func(o *providerOptions) {
		o.httpClient = hc
	}
}

// WithBaseURL overrides the provider's endpoint URL.
func WithBaseURL(u string) ProviderOption {
	return func(o *providerOptions) {
		o.baseURL = strings.TrimRight(u, "/")
	}
}

// WithEmail sets the contact address sent to Nominatim.
func WithEmail(email string) ProviderOption {
	return func(o *providerOptions) {
		o.email = email
	}
}

func buildOptions(defaultURL string, opts []ProviderOption) providerOptions {
	o := providerOptions{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultURL,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
