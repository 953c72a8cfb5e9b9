package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/ifcscene/internal/config"
	"github.com/Faultbox/ifcscene/internal/logger"
	"github.com/Faultbox/ifcscene/internal/viewer/display"
	"github.com/Faultbox/ifcscene/pkg/math"
)

func newViewCmd(a *app) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "view <stream>",
		Short: "Import an element stream and show it in a window",
		Long: `Import an element stream and show it in a window.

Controls:
  Left drag       orbit
  Right drag      pan
  Wheel           zoom
  Click           select a node
  H               toggle hidden nodes
  E               toggle edges
  B               toggle scene bounds
  G               toggle ground grid
  F               fit scene
  F12, P          screenshot
  Esc             quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd.Context(), a.cfg, args[0], watch)
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload whenever the stream changes")
	return cmd
}

func runView(ctx context.Context, cfg *config.Config, path string, watch bool) error {
	scene, _, err := importFile(ctx, cfg, path)
	if err != nil {
		return err
	}

	d, err := display.New(displayConfig(cfg, path))
	if err != nil {
		return err
	}
	defer d.Close()
	d.SetScene(scene)

	// The window must stay on the main goroutine; reloads run beside it.
	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)
	if watch {
		log := logger.Named("watch")
		g.Go(func() error {
			return watchFile(ctx, path, log, func() {
				scene, _, err := importFile(ctx, cfg, path)
				if err != nil {
					log.Error("reload failed", zap.Error(err))
					return
				}
				d.SetScene(scene)
			})
		})
	}

	err = d.Run(ctx)
	cancel()
	if werr := g.Wait(); err == nil {
		err = werr
	}
	return err
}

func displayConfig(cfg *config.Config, path string) display.Config {
	v := cfg.Viewer
	return display.Config{
		Title:      "ifcscene - " + path,
		Width:      v.Width,
		Height:     v.Height,
		VSync:      v.VSync,
		ShowHidden: v.ShowHidden,
		ShowEdges:  v.ShowEdges,
		EdgeColor: math.Vec3{
			X: float32(v.EdgeColor[0]),
			Y: float32(v.EdgeColor[1]),
			Z: float32(v.EdgeColor[2]),
		},
		ScreenshotDir:    v.ScreenshotDir,
		ScreenshotFormat: v.ScreenshotFormat,
	}
}
