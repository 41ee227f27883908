package cli

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/bichil/orgchart/internal/server"
	"github.com/bichil/orgchart/pkg/cache"
	"github.com/bichil/orgchart/pkg/export"
	"github.com/bichil/orgchart/pkg/observability"
	"github.com/bichil/orgchart/pkg/observability/metrics"
	"github.com/bichil/orgchart/pkg/upload"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chart over HTTP",
		Long: `Load the slot once and serve it through the JSON API under /api/v1.
Requests are applied one at a time; saving writes back to the slot.

Prometheus metrics are exposed at /metrics unless [server] metrics = false.
Rendered images are kept in an in-memory cache of [server] cache_size
entries.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.settings()
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			var metricsHandler http.Handler
			if cfg.Server.Metrics {
				collector := metrics.NewCollector(appName)
				observability.SetEditorHooks(collector)
				observability.SetStoreHooks(collector)
				observability.SetExportHooks(collector)
				observability.SetCacheHooks(collector)
				observability.SetHTTPHooks(collector)
				defer observability.Reset()
				metricsHandler = collector.Handler()
			}

			s, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()
			c.Logger.Info("loaded chart", "slot", s.editor.Slot(), "source", s.source, "units", s.editor.Chart().NodeCount())

			var artifacts cache.Cache = cache.NewNullCache()
			if cfg.Server.CacheSize > 0 && !cfg.Export.NoCache {
				if artifacts, err = cache.NewLRUCache(cfg.Server.CacheSize); err != nil {
					return err
				}
			}
			rast := c.rasterizer
			if rast == nil {
				rast = export.RSVGRasterizer{Path: cfg.Export.RSVGPath}
			}
			runner := export.NewRunner(artifacts, rast, c.Logger)
			runner.Options = cfg.Export.Options()
			defer runner.Close()

			var up upload.Uploader
			if cfg.Upload.Enabled() {
				if up, err = upload.NewS3Uploader(cfg.Upload); err != nil {
					return err
				}
			}

			srv := server.New(s.editor, runner, up, c.Logger, server.Config{
				Addr:          cfg.Server.Addr,
				CORSOrigins:   cfg.Server.CORSOrigins,
				ExportTimeout: cfg.Export.Timeout,
				Metrics:       metricsHandler,
			})
			printInfo(c.out, "Serving %s on %s", StyleHighlight.Render(s.editor.Slot()), StyleLink.Render(cfg.Server.Addr))
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}
