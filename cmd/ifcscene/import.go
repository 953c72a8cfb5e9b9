package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/ifcscene/internal/config"
	"github.com/Faultbox/ifcscene/internal/host/memscene"
	"github.com/Faultbox/ifcscene/internal/importer"
	"github.com/Faultbox/ifcscene/internal/logger"
	"github.com/Faultbox/ifcscene/internal/watcher"
	"github.com/Faultbox/ifcscene/pkg/ifcgeom"
)

const watchDebounce = 300 * time.Millisecond

func newImportCmd(a *app) *cobra.Command {
	var (
		reportPath string
		watch      bool
	)

	cmd := &cobra.Command{
		Use:   "import <stream>",
		Short: "Import an element stream and print a summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]
			out := cmd.OutOrStdout()

			run := func() error {
				scene, stats, err := importFile(ctx, a.cfg, path)
				if err != nil {
					return err
				}
				printStats(out, path, stats)
				if reportPath != "" {
					if err := scene.Report().WriteFile(reportPath); err != nil {
						return fmt.Errorf("writing report: %w", err)
					}
					fmt.Fprintf(out, "Report:       %s\n", reportPath)
				}
				return nil
			}

			if err := run(); err != nil || !watch {
				return err
			}

			log := logger.Named("watch")
			return watchFile(ctx, path, log, func() {
				if err := run(); err != nil {
					log.Error("reimport failed", zap.Error(err))
				}
			})
		},
	}

	cmd.Flags().StringVarP(&reportPath, "report", "o", "", "Write a YAML scene report to this file")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reimport whenever the stream changes")
	return cmd
}

// importFile imports the stream at path into a fresh scene.
func importFile(ctx context.Context, cfg *config.Config, path string) (*memscene.Scene, importer.Stats, error) {
	log := logger.Named("importer")
	scene := memscene.New()

	sess := importer.NewSession(scene, importer.Options{
		SlotLimit:   cfg.Import.SlotLimit,
		HiddenTypes: cfg.Import.HiddenTypes,
		Logger:      log,
	})
	it := ifcgeom.NewFileIterator(path, cfg.Import.Charset)
	progress := importer.NewLogProgress(log, cfg.Import.ProgressStep)

	stats, err := sess.RunPooled(ctx, it, progress, cfg.Import.Workers)
	if err != nil {
		return nil, stats, err
	}
	log.Info("import finished",
		zap.String("file", path),
		zap.Int("elements", stats.Elements),
		zap.Duration("took", stats.Duration),
	)
	return scene, stats, nil
}

// watchFile calls reload after each debounced change of path until ctx is
// cancelled.
func watchFile(ctx context.Context, path string, log *zap.Logger, reload func()) error {
	fw, err := watcher.NewFileWatcher(watchDebounce, log)
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Watch([]string{path}, func(string) { reload() }); err != nil {
		return err
	}
	log.Info("watching for changes", zap.String("file", path))
	if err := fw.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func printStats(w io.Writer, path string, s importer.Stats) {
	fmt.Fprintf(w, "File:         %s\n", path)
	fmt.Fprintf(w, "Elements:     %d (%d hidden)\n", s.Elements, s.HiddenNodes)
	fmt.Fprintf(w, "Faces:        %d (%d degenerate)\n", s.Faces, s.Degenerate)
	fmt.Fprintf(w, "Edges:        %d visible\n", s.VisibleEdges)
	fmt.Fprintf(w, "Materials:    %d (%d multi)\n", s.Materials, s.Composites)
	fmt.Fprintf(w, "Editor slots: %d\n", s.SlotsUsed)
	if s.BadMaterialIDs > 0 {
		fmt.Fprintf(w, "Bad ids:      %d faces fell back to the default material\n", s.BadMaterialIDs)
	}
	fmt.Fprintf(w, "Took:         %s\n", s.Duration.Round(time.Millisecond))
}
