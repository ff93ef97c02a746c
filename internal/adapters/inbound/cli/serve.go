package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/complyai/comply/internal/adapters/inbound/httpapi"
	"github.com/complyai/comply/internal/adapters/outbound/extract"
	"github.com/complyai/comply/internal/adapters/outbound/logging"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long:  "Serve GET /health, POST /analyze and GET /rules. The rule set is loaded and validated once at startup; an invalid rule set aborts startup.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}

			logger := logging.InitLogger(cmd.ErrOrStderr(), cfg.LogFormat, cfg.LogLevel)
			svc, err := newAnalysisService(cfg, logger, false)
			if err != nil {
				logger.Error("startup failed", "error", err.Error())
				return err
			}
			logger.Info("rules loaded", "version", svc.Rules().Version(), "count", svc.Rules().Len())

			gin.SetMode(gin.ReleaseMode)
			router := httpapi.NewRouter(svc, extract.New(), cfg, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return httpapi.Serve(ctx, cfg.Addr, router, cfg.AnalysisTimeout, logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides COMPLY_ADDR)")
	return cmd
}
