package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geocoder/internal/config"
	"github.com/sells-group/geocoder/internal/export"
	"github.com/sells-group/geocoder/internal/web"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the upload and geocoding web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		client, err := newGeocodeClient(cfg)
		if err != nil {
			return err
		}

		srv := web.NewServer(client, serverOptions(cfg))

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		if err := srv.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func serverOptions(c *config.Config) web.Options {
	return web.Options{
		MaxUploadBytes:   int64(c.Server.MaxUploadMB) << 20,
		MaxResults:       c.Server.MaxResults,
		UploadsPerMinute: c.Server.UploadsPerMinute,
		CORSOrigins:      c.Server.CORSOrigins,
		Provider:         c.Geocode.Provider,
		Map: export.MapOptions{
			Zoom:        c.Map.Zoom,
			TileURL:     c.Map.TileURL,
			Attribution: c.Map.Attribution,
		},
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
