package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"
)

// fetchJSON issues GET endpoint?params and decodes a 200 response into out.
// Error messages are prefixed with the provider name.
func fetchJSON(ctx context.Context, hc *http.Client, provider, endpoint string, params url.Values, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return eris.Wrapf(err, "geocode: %s build request", provider)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := hc.Do(req)
	if err != nil {
		return eris.Wrapf(err, "geocode: %s request", provider)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("geocode: %s returned status %d", provider, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrapf(err, "geocode: %s read body", provider)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrapf(err, "geocode: %s parse response", provider)
	}
	return nil
}
