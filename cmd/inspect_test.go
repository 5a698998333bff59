package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geocoder/internal/config"
)

func TestInspectCmd(t *testing.T) {
	dir := t.TempDir()
	inspectInput = filepath.Join(dir, "clients.csv")
	inspectRows = 1
	t.Cleanup(func() { inspectInput, inspectRows = "", 5 })
	require.NoError(t, os.WriteFile(inspectInput, []byte("name,address\nHolmes,221B Baker Street\nWatson,Somewhere\n"), 0o644))

	var out bytes.Buffer
	inspectCmd.SetOut(&out)
	t.Cleanup(func() { inspectCmd.SetOut(nil) })

	require.NoError(t, inspectCmd.RunE(inspectCmd, nil))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "2 rows x 2 columns")
	assert.Equal(t, "name    address", lines[2])
	assert.Equal(t, "Holmes  221B Baker Street", lines[3])
}

func TestInspectCmd_MissingFile(t *testing.T) {
	inspectInput = filepath.Join(t.TempDir(), "nope.csv")
	t.Cleanup(func() { inspectInput = "" })

	err := inspectCmd.RunE(inspectCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inspect: read input")
}

func TestServerOptions(t *testing.T) {
	c := &config.Config{
		Geocode: config.GeocodeConfig{Provider: "census"},
		Map:     config.MapConfig{Zoom: 12, TileURL: "https://tiles.example.com/{z}/{x}/{y}.png"},
		Server: config.ServerConfig{
			MaxUploadMB:      2,
			MaxResults:       7,
			UploadsPerMinute: 3,
			CORSOrigins:      []string{"https://a.example.com"},
		},
	}

	opts := serverOptions(c)
	assert.Equal(t, int64(2<<20), opts.MaxUploadBytes)
	assert.Equal(t, 7, opts.MaxResults)
	assert.Equal(t, 3, opts.UploadsPerMinute)
	assert.Equal(t, []string{"https://a.example.com"}, opts.CORSOrigins)
	assert.Equal(t, "census", opts.Provider)
	assert.Equal(t, 12, opts.Map.Zoom)
	assert.Equal(t, "https://tiles.example.com/{z}/{x}/{y}.png", opts.Map.TileURL)
}

func TestNewGeocodeClient(t *testing.T) {
	c := testConfig("http://localhost:8088/search")
	client, err := newGeocodeClient(c)
	require.NoError(t, err)
	assert.Equal(t, "nominatim", client.Provider().Name())
	assert.Equal(t, c.Geocode.MinDelay(), client.MinDelay())

	c.Geocode.Provider = "google"
	_, err = newGeocodeClient(c)
	assert.Error(t, err, "google without a key")
}
