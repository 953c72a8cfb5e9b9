// ifcscene imports triangulated building element streams into a scene,
// reports on them and shows them in a viewer window.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Faultbox/ifcscene/internal/config"
	"github.com/Faultbox/ifcscene/internal/logger"
)

// app carries the flags and resolved config shared by all commands.
type app struct {
	flags config.Flags
	cfg   *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "ifcscene",
		Short: "Import triangulated building elements into a scene",
		Long: `ifcscene reads element streams (triangulated building products with their
styles and placements), builds scene nodes with shared materials, and can
report on the result or show it in a viewer window.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(&a.flags)
			if err != nil {
				return err
			}
			a.cfg = cfg
			if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}
	a.flags.Register(root.PersistentFlags())

	root.AddCommand(
		newImportCmd(a),
		newInspectCmd(a),
		newViewCmd(a),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
