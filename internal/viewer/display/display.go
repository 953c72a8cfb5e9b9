// Package display runs the interactive scene window.
package display

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/ifcscene/internal/engine/camera"
	"github.com/Faultbox/ifcscene/internal/engine/debug"
	"github.com/Faultbox/ifcscene/internal/engine/input"
	"github.com/Faultbox/ifcscene/internal/engine/picking"
	"github.com/Faultbox/ifcscene/internal/engine/renderer"
	"github.com/Faultbox/ifcscene/internal/engine/window"
	"github.com/Faultbox/ifcscene/internal/host/memscene"
	"github.com/Faultbox/ifcscene/internal/logger"
	"github.com/Faultbox/ifcscene/internal/viewer"
	"github.com/Faultbox/ifcscene/pkg/math"
)

// Config holds display configuration.
type Config struct {
	Title      string
	Width      int
	Height     int
	VSync      bool
	ShowHidden bool
	ShowEdges  bool
	EdgeColor  math.Vec3

	ScreenshotDir    string
	ScreenshotFormat string
}

// Display is the viewer window.
type Display struct {
	config   Config
	log      *zap.Logger
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera
	shots    *debug.ScreenshotCapture

	state    viewer.State
	scene    *memscene.Scene
	geometry *viewer.Geometry

	mu      sync.Mutex
	pending *memscene.Scene

	// dragged is set when the mouse moved with a button held; a left
	// release without it picks.
	dragged bool
}

// New creates the window and renderer.
func New(cfg Config) (*Display, error) {
	d := &Display{
		config: cfg,
		log:    logger.Named("display"),
		input:  input.New(),
		camera: camera.NewOrbitCamera(),
		shots:  debug.NewScreenshotCapture(cfg.ScreenshotDir, "ifcscene", cfg.ScreenshotFormat),
		state:  viewer.NewState(cfg.ShowHidden, cfg.ShowEdges),
	}

	var err error
	d.window, err = window.New(window.Config{
		Title:   cfg.Title,
		Width:   cfg.Width,
		Height:  cfg.Height,
		VSync:   cfg.VSync,
		Samples: 4,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The renderer needs the GL context, so it comes after the window.
	w, h := d.window.DrawableSize()
	d.renderer, err = renderer.New(renderer.Config{
		Width:     w,
		Height:    h,
		EdgeColor: cfg.EdgeColor,
	})
	if err != nil {
		d.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	return d, nil
}

// SetScene replaces the displayed scene. It may be called from any
// goroutine; the window picks the scene up on its next frame.
func (d *Display) SetScene(scene *memscene.Scene) {
	d.mu.Lock()
	d.pending = scene
	d.mu.Unlock()
}

// Run drives the window until it is closed or ctx is cancelled.
func (d *Display) Run(ctx context.Context) error {
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	d.log.Info("starting display loop")

	for ctx.Err() == nil {
		now := time.Now()
		dt := now.Sub(lastTime)
		lastTime = now

		if d.input.Update() {
			return nil
		}
		if quit := d.handleEvents(); quit {
			return nil
		}

		d.takePending()

		d.renderer.Draw(d.frame())
		d.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			d.log.Debug("fps", zap.Int("count", frameCount), zap.Duration("dt", dt))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
	return nil
}

// Close releases the renderer and the window.
func (d *Display) Close() {
	d.log.Info("closing display")
	if d.renderer != nil {
		d.renderer.Close()
	}
	if d.window != nil {
		d.window.Close()
	}
}

func (d *Display) takePending() {
	d.mu.Lock()
	scene := d.pending
	d.pending = nil
	d.mu.Unlock()

	if scene == nil {
		return
	}
	fit := d.scene == nil
	d.scene = scene
	d.rebuild()
	if fit {
		d.fit()
	}
}

// rebuild regenerates the draw buffers after a scene or toggle change.
func (d *Display) rebuild() {
	if d.scene == nil {
		return
	}
	d.geometry = viewer.Build(d.scene, viewer.Options{ShowHidden: d.state.ShowHidden})
	d.state.Selected = -1
	d.renderer.SetScene(d.geometry.Opaque, d.geometry.Translucent, d.geometry.Edges)
	d.updateOverlay()
	d.window.SetTitle(fmt.Sprintf("%s - %d nodes, %d triangles",
		d.config.Title, len(d.geometry.Nodes), d.geometry.TriangleCount()))
}

func (d *Display) updateOverlay() {
	if d.geometry == nil {
		return
	}
	d.renderer.SetOverlay(d.state.Overlay(d.geometry))
}

func (d *Display) fit() {
	if d.geometry != nil && d.geometry.HasBounds {
		d.camera.FitToBounds(d.geometry.Bounds.Min, d.geometry.Bounds.Max)
	}
}

func (d *Display) frame() renderer.Frame {
	w, h := d.window.DrawableSize()
	aspect := float32(1)
	if h > 0 {
		aspect = float32(w) / float32(h)
	}
	return renderer.Frame{
		ViewProj:  d.camera.ProjectionMatrix(aspect).Mul(d.camera.ViewMatrix()),
		Eye:       d.camera.Position(),
		ShowEdges: d.state.ShowEdges,
	}
}

func (d *Display) handleEvents() (quit bool) {
	for _, e := range d.input.Events() {
		switch e.Type {
		case input.EventWindowResize:
			d.renderer.Resize(d.window.DrawableSize())

		case input.EventKeyDown:
			if d.handleKey(e.Key) {
				return true
			}

		case input.EventMouseDown:
			d.dragged = false

		case input.EventMouseMove:
			if e.DeltaX == 0 && e.DeltaY == 0 {
				continue
			}
			switch {
			case d.input.ButtonDown(sdl.BUTTON_LEFT):
				d.dragged = true
				d.camera.HandleDrag(float32(e.DeltaX), float32(e.DeltaY))
			case d.input.ButtonDown(sdl.BUTTON_RIGHT), d.input.ButtonDown(sdl.BUTTON_MIDDLE):
				d.dragged = true
				d.camera.HandlePan(float32(e.DeltaX), float32(e.DeltaY))
			}

		case input.EventMouseUp:
			if e.Button == sdl.BUTTON_LEFT && !d.dragged {
				d.pick(e.MouseX, e.MouseY)
			}

		case input.EventMouseWheel:
			d.camera.HandleZoom(e.Wheel)
		}
	}
	return false
}

func (d *Display) handleKey(key sdl.Scancode) (quit bool) {
	switch key {
	case sdl.SCANCODE_ESCAPE:
		return true
	case sdl.SCANCODE_H:
		d.state.ShowHidden = !d.state.ShowHidden
		d.log.Info("hidden nodes", zap.Bool("show", d.state.ShowHidden))
		d.rebuild()
	case sdl.SCANCODE_E:
		d.state.ShowEdges = !d.state.ShowEdges
	case sdl.SCANCODE_B:
		d.state.ShowBounds = !d.state.ShowBounds
		d.updateOverlay()
	case sdl.SCANCODE_G:
		d.state.ShowGrid = !d.state.ShowGrid
		d.updateOverlay()
	case sdl.SCANCODE_F:
		d.fit()
	case sdl.SCANCODE_F12, sdl.SCANCODE_P:
		d.screenshot()
	}
	return false
}

func (d *Display) pick(x, y int) {
	if d.geometry == nil {
		return
	}
	w, h := d.window.Size()
	ray := picking.ScreenToRay(float32(x), float32(y), float32(w), float32(h),
		d.camera.Position(), d.camera.Center, math.Vec3{Z: 1}, d.camera.FovY)

	if n := d.state.Pick(d.geometry, ray); n != nil {
		d.log.Info("selected", zap.String("node", viewer.Describe(n)))
	}
	d.updateOverlay()
}

func (d *Display) screenshot() {
	pixels, w, h := d.renderer.ReadPixels()
	path, err := d.shots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		d.log.Error("screenshot failed", zap.Error(err))
		return
	}
	d.log.Info("screenshot saved", zap.String("path", path))
}
