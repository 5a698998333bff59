package main

import (
	"net/http"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geocoder/internal/config"
	"github.com/sells-group/geocoder/pkg/geocode"
)

// newGeocodeClient builds the configured provider behind a paced client.
func newGeocodeClient(c *config.Config) (*geocode.Client, error) {
	pc := geocode.ProviderConfig{
		Name:       c.Geocode.Provider,
		UserAgent:  c.Geocode.UserAgent,
		Email:      c.Geocode.Email,
		GoogleKey:  c.Geocode.GoogleKey,
		HTTPClient: &http.Client{Timeout: c.Geocode.Timeout()},
	}
	if name := strings.ToLower(c.Geocode.Provider); name == geocode.ProviderNominatim || name == "" {
		pc.BaseURL = c.Geocode.NominatimURL
	}

	provider, err := geocode.NewProvider(pc)
	if err != nil {
		return nil, eris.Wrap(err, "geocoder: build provider")
	}

	client := geocode.NewClient(provider, geocode.WithMinDelay(c.Geocode.MinDelay()))
	zap.L().Info("geocode client ready",
		zap.String("provider", provider.Name()),
		zap.Duration("min_delay", client.MinDelay()),
	)
	return client, nil
}
