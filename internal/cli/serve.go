package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/icancodefyi/sarthi-ai/internal/app"
)

func newServeCmd(opts *options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Example: `  sarthi serve
  sarthi serve --addr :9090 --config /etc/sarthi/config.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if addr == "" {
				addr = cfg.GetWebServiceAddr()
			}

			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			gin.SetMode(gin.ReleaseMode)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "🌐 Sarthi AI Server")
			fmt.Fprintln(out, "===================")
			fmt.Fprintf(out, "API:      http://%s\n", addr)
			fmt.Fprintf(out, "Database: %s\n", cfg.Database.Path)
			fmt.Fprintf(out, "Verify:   %s\n\n", cfg.VerifyURL("<reportId>"))
			fmt.Fprintln(out, "Press Ctrl+C to stop")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.Serve(ctx, addr)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (defaults to web_service host:port)")
	return cmd
}
