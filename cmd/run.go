package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geocoder/internal/export"
	"github.com/sells-group/geocoder/internal/pipeline"
	"github.com/sells-group/geocoder/internal/resolve"
	"github.com/sells-group/geocoder/internal/table"
)

var (
	runInput     string
	runColumn    string
	runStreet    string
	runCity      string
	runPostcode  string
	runCountry   string
	runSelection string
	runOutput    string
	runMap       string
	runGeoJSON   string
	runEncoding  string
	runSheet     string
	runLimit     int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Geocode every row of a CSV or XLSX file",
	Long: `Builds one address per row, geocodes it, and writes the table back with
location, latitude, longitude and altitude columns.

Examples:
  # Full address in one column
  geocoder run --input clients.csv --column Address

  # Address split over columns, fixed country
  geocoder run --input clients.xlsx --street Street --city Town --postcode Zip --country UK

  # Saved column selection, plus a map and GeoJSON
  geocoder run --input clients.csv --selection uk.yaml --map clients.html --geojson clients.geojson`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("run"); err != nil {
			return err
		}

		sel, err := selectionFromFlags()
		if err != nil {
			return err
		}

		t, err := table.ReadFile(runInput, table.ReadOptions{
			Encoding:  runEncoding,
			Sheet:     runSheet,
			TrimSpace: true,
		})
		if err != nil {
			return eris.Wrap(err, "run: read input")
		}
		if runLimit > 0 && runLimit < t.Len() {
			t = t.Head(runLimit)
		}
		zap.L().Info("run: input loaded",
			zap.String("input", runInput),
			zap.Int("rows", t.Len()),
			zap.Strings("columns", t.Columns()),
		)

		client, err := newGeocodeClient(cfg)
		if err != nil {
			return err
		}

		var opts []pipeline.Option
		if bar := newProgressBar(t.Len()); bar != nil {
			opts = append(opts, pipeline.WithProgress(func(_, _ int) { _ = bar.Add(1) }))
			defer bar.Finish() //nolint:errcheck
		}

		rep, err := pipeline.New(client, opts...).Run(ctx, t, sel)
		if err != nil {
			return err
		}

		output := runOutput
		if output == "" {
			output = defaultOutputPath(runInput)
		}
		if err := writeFile(output, func(w io.Writer) error { return table.WriteCSV(w, t) }); err != nil {
			return err
		}
		if runGeoJSON != "" {
			if err := writeFile(runGeoJSON, func(w io.Writer) error { return export.WriteGeoJSON(w, t) }); err != nil {
				return err
			}
		}
		if runMap != "" {
			mapOpts := export.MapOptions{
				Zoom:        cfg.Map.Zoom,
				TileURL:     cfg.Map.TileURL,
				Attribution: cfg.Map.Attribution,
				Title:       filepath.Base(runInput),
			}
			if err := writeFile(runMap, func(w io.Writer) error { return export.RenderMap(w, t, mapOpts) }); err != nil {
				return err
			}
		}

		printSummary(cmd.ErrOrStderr(), rep, output)
		return nil
	},
}

// selectionFromFlags picks the column selection: a profile file, the
// multi-column flags, or a single column, in that order.
func selectionFromFlags() (resolve.Selection, error) {
	switch {
	case runSelection != "":
		return resolve.LoadSelection(runSelection)
	case runStreet != "" || runCity != "" || runPostcode != "":
		return resolve.Multi(runStreet, runPostcode, runCity, runCountry), nil
	case runColumn != "":
		return resolve.Single(runColumn), nil
	default:
		return resolve.Selection{}, eris.Wrap(resolve.ErrInvalidSelection,
			"run: one of --column, --street/--city/--postcode or --selection is required")
	}
}

// newProgressBar returns a bar on stderr when it is a terminal, nil otherwise.
func newProgressBar(n int) *progressbar.ProgressBar {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}
	return progressbar.NewOptions(n,
		progressbar.OptionSetDescription("Geocoding"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func defaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_geocoded.csv"
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return eris.Wrapf(err, "run: create %s", path)
	}
	if err := write(f); err != nil {
		f.Close() //nolint:errcheck,gosec
		return eris.Wrapf(err, "run: write %s", path)
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "run: close %s", path)
	}
	zap.L().Info("run: wrote file", zap.String("path", path))
	return nil
}

func printSummary(w io.Writer, rep *pipeline.Report, output string) {
	fmt.Fprintf(w, "Geocoded %d rows: %d located, %d unmatched, %d failed, %d skipped\n", //nolint:errcheck
		rep.Rows, rep.Located, rep.Unmatched, rep.Failed, rep.Skipped)
	if rep.Degraded {
		fmt.Fprintln(w, "Warning: some locations could not be read as coordinates; all coordinates were left empty") //nolint:errcheck
	}
	fmt.Fprintf(w, "Wrote %s\n", output) //nolint:errcheck
}

func init() {
	runCmd.Flags().StringVar(&runInput, "input", "", "CSV or XLSX file to geocode (required)")
	runCmd.Flags().StringVar(&runColumn, "column", "", "column holding the full address")
	runCmd.Flags().StringVar(&runStreet, "street", "", "street column (multi-column mode)")
	runCmd.Flags().StringVar(&runCity, "city", "", "city column (multi-column mode)")
	runCmd.Flags().StringVar(&runPostcode, "postcode", "", "postcode column (multi-column mode)")
	runCmd.Flags().StringVar(&runCountry, "country", "", "country appended to every address (multi-column mode)")
	runCmd.Flags().StringVar(&runSelection, "selection", "", "YAML column selection profile")
	runCmd.Flags().StringVar(&runOutput, "output", "", "output CSV path (default <input>_geocoded.csv)")
	runCmd.Flags().StringVar(&runMap, "map", "", "write a point map HTML page to this path")
	runCmd.Flags().StringVar(&runGeoJSON, "geojson", "", "write a GeoJSON point collection to this path")
	runCmd.Flags().StringVar(&runEncoding, "encoding", "", "CSV character encoding, e.g. latin1 (default UTF-8)")
	runCmd.Flags().StringVar(&runSheet, "sheet", "", "XLSX sheet name (default first sheet)")
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "geocode only the first N rows (0 = all)")
	_ = runCmd.MarkFlagRequired("input")
	runCmd.MarkFlagsMutuallyExclusive("column", "street")
	runCmd.MarkFlagsMutuallyExclusive("column", "selection")
	runCmd.MarkFlagsMutuallyExclusive("street", "selection")
	rootCmd.AddCommand(runCmd)
}
