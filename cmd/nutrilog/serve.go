package nutrilog

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/saadjs/nutrilog/internal/api"
	"github.com/saadjs/nutrilog/internal/service"
)

var (
	serveAddr    string
	serveOrigins string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API for the mobile app",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return withEnv(func(e *env) error {
			cache, closeCache := newEstimateCache(ctx, e.Config, e.DB)
			defer closeCache()

			h := &api.Handler{
				DB:      e.DB,
				Clock:   e.Clock,
				Barcode: service.NewOpenFoodFactsClient(e.Config.Barcode.BaseURL),
				Cache:   cache,
				Version: version,
			}
			if e.Config.LLM.APIKey != "" {
				h.Estimator = newEstimator(e.Config)
			}
			addr := serveAddr
			if addr == "" {
				addr = e.Config.Server.Addr
			}
			return api.Serve(ctx, addr, api.NewRouter(h, splitOrigins(serveOrigins)))
		})
	},
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default server.addr)")
	serveCmd.Flags().StringVar(&serveOrigins, "cors-origins", "", "Comma-separated allowed origins (default any)")
	rootCmd.AddCommand(serveCmd)
}
