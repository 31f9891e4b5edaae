// Package cli implements the sarthi command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/icancodefyi/sarthi-ai/internal/pkg/config"
	"github.com/icancodefyi/sarthi-ai/internal/pkg/logger"
)

// Version is set at build time
var Version = "1.0.0"

type options struct {
	configPath string
	cfg        *config.Config
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "sarthi",
		Short: "Sarthi AI report integrity service",
		Long: `Sarthi certifies dataset analytics and AI narratives into tamper-evident
reports. Every report carries a SHA-256 digest over its canonical snapshot
and a QR code linking to a public verification page.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(opts.configPath)
			if err != nil {
				return err
			}
			if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			opts.cfg = cfg
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "config.yaml", "path to the YAML config file")

	root.AddCommand(
		newServeCmd(opts),
		newHashCmd(),
		newVerifyCmd(opts),
		newTokenCmd(opts),
	)
	return root
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
