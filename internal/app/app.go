// Package app implements the main application loop: streaming the cloud
// into the renderer, flying the camera, and driving the cutaway
// annotation workflow.
package app

import (
	"fmt"
	"os"
	"time"

	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/pcview/cutaway/internal/cloud"
	"github.com/pcview/cutaway/internal/config"
	"github.com/pcview/cutaway/internal/editor"
	"github.com/pcview/cutaway/internal/engine/camera"
	"github.com/pcview/cutaway/internal/engine/framebuffer"
	"github.com/pcview/cutaway/internal/engine/input"
	"github.com/pcview/cutaway/internal/engine/renderer"
	"github.com/pcview/cutaway/internal/engine/window"
	"github.com/pcview/cutaway/internal/logger"
	"github.com/pcview/cutaway/internal/raster"
	"github.com/pcview/cutaway/pkg/math"
)

// Mode is the top-level application state.
type Mode int

const (
	// ModeView flies the camera through the 3D cloud.
	ModeView Mode = iota
	// ModeAnnotate edits the rendered cutaway raster.
	ModeAnnotate
)

// Width of the slice band in view-space units.
const sliceWidth = 0.000025

// App is the main application instance.
type App struct {
	config  *config.Config
	running bool

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.FlyCamera
	cutaway  *framebuffer.Cutaway

	session *cloud.Session

	// Cloud center used to recenter the model. Taken from the reader's
	// header bounds when present, else from the first batch.
	center    math.Vec3
	centerSet bool

	mode      Mode
	editor    *editor.Editor
	clipping  bool
	showSlice bool

	mouseLocked bool

	// File dialogs run off the main thread; the chosen path is handed
	// back here and opened on the main thread.
	pendingPath chan string
}

// New creates the application. The window and GL context come up here.
func New(cfg *config.Config) (*App, error) {
	logger.Info("initializing application",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
	)

	a := &App{
		config:      cfg,
		camera:      camera.New(),
		pendingPath: make(chan string, 1),
	}

	var err error
	a.window, err = window.New(window.Config{
		Title:      "Point Cloud Cutaway Renderer",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	a.renderer, err = renderer.New(renderer.Config{
		Width:  cfg.Graphics.Width,
		Height: cfg.Graphics.Height,
	})
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	a.cutaway, err = framebuffer.New(int32(cfg.Graphics.Width), int32(cfg.Graphics.Height))
	if err != nil {
		a.renderer.Close()
		a.window.Close()
		return nil, fmt.Errorf("failed to create cutaway target: %w", err)
	}

	a.input = input.New()

	if cfg.Cloud.File != "" {
		if err := a.OpenFile(cfg.Cloud.File); err != nil {
			a.Close()
			return nil, err
		}
	}

	logger.Info("application initialized")
	return a, nil
}

// Close releases all resources.
func (a *App) Close() {
	if a.session != nil {
		a.session.Cancel()
	}
	if a.cutaway != nil {
		a.cutaway.Destroy()
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}

// OpenFile starts loading a point cloud. A load already in flight is
// cancelled; its remaining batches are never read.
func (a *App) OpenFile(path string) error {
	reader, err := cloud.OpenPLY(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}

	if a.session != nil {
		a.session.Cancel()
	}

	a.session = cloud.BeginLoad(reader, a.config.Cloud.MaxPoints, a.config.Cloud.BatchSize)
	a.centerSet = false

	if h := reader.Header(); h.HasBounds {
		a.center = math.Vec3{
			X: float32(h.Min[0]+h.Max[0]) / 2,
			Y: float32(h.Min[1]+h.Max[1]) / 2,
			Z: float32(h.Min[2]+h.Max[2]) / 2,
		}
		a.centerSet = true
	}

	logger.Info("load started",
		zap.String("file", path),
		zap.Uint64("declared", a.session.DeclaredTotal()),
		zap.Uint64("effective", a.session.EffectiveTotal()),
	)
	return nil
}

// Progress reports load progress as batches loaded over expected batches.
func (a *App) Progress() float64 {
	if a.session == nil {
		return 0
	}
	return a.session.Progress()
}

// Loading reports whether a load session is still producing batches.
func (a *App) Loading() bool {
	return a.session != nil && !a.session.Finished()
}

// Mode returns the current application mode.
func (a *App) Mode() Mode {
	return a.mode
}

// Editor returns the annotation editor, nil outside ModeAnnotate.
func (a *App) Editor() *editor.Editor {
	return a.editor
}

// Segmented returns the annotated raster for export, nil before the
// first successful cutaway render.
func (a *App) Segmented() *raster.Raster {
	if a.editor == nil {
		return nil
	}
	return a.editor.Canvas()
}

// SelectTool forwards a tool selection to the editor.
func (a *App) SelectTool(t editor.Tool) {
	if a.editor != nil {
		a.editor.SelectTool(t)
	}
}

// Run starts the main loop.
func (a *App) Run() error {
	a.running = true
	lastTime := time.Now()

	logger.Info("starting main loop")

	for a.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		if a.input.Update() {
			break
		}
		a.handleEvents()

		select {
		case path := <-a.pendingPath:
			if err := a.OpenFile(path); err != nil {
				logger.Error("failed to open file", zap.Error(err))
			}
		default:
		}

		a.pollBatch()
		a.update(dt)
		a.render()

		a.window.SwapBuffers()
	}

	logger.Info("main loop finished")
	return nil
}

func (a *App) handleEvents() {
	for _, event := range a.input.Events() {
		switch event.Type {
		case input.EventQuit:
			a.running = false

		case input.EventWindowResize:
			a.renderer.Resize(event.Width, event.Height)
			a.cutaway.Resize(int32(event.Width), int32(event.Height))

		case input.EventKeyDown:
			a.handleKey(event.Key)

		case input.EventMouseDown:
			if a.mode != ModeView {
				break
			}
			switch event.Button {
			case sdl.BUTTON_LEFT:
				a.lockMouse(true)
			case sdl.BUTTON_RIGHT:
				a.lockMouse(false)
			}
		}
	}
}

func (a *App) handleKey(key sdl.Scancode) {
	switch key {
	case sdl.SCANCODE_ESCAPE:
		if a.mode == ModeAnnotate {
			a.mode = ModeView
		} else {
			a.lockMouse(false)
		}

	case sdl.SCANCODE_O:
		a.openFileDialog()

	case sdl.SCANCODE_C:
		a.clipping = !a.clipping

	case sdl.SCANCODE_T:
		a.showSlice = !a.showSlice

	case sdl.SCANCODE_R:
		if err := a.RequestRender(); err != nil {
			// A failed render leaves the 3D view untouched.
			logger.Error("cutaway render failed", zap.Error(err))
		}

	case sdl.SCANCODE_1:
		a.SelectTool(editor.ToolPencil)
	case sdl.SCANCODE_2:
		a.SelectTool(editor.ToolEraser)
	case sdl.SCANCODE_3:
		a.SelectTool(editor.ToolRoomFill)
	}
}

// pollBatch drains at most one batch per frame without ever blocking on
// the loader.
func (a *App) pollBatch() {
	if a.session == nil {
		return
	}
	batch, ok := a.session.Poll()
	if !ok {
		return
	}

	if !a.centerSet && len(batch) > 0 {
		// No header bounds; center on the first point seen.
		p := batch[0]
		a.center = math.Vec3{X: float32(p.X), Y: float32(p.Y), Z: float32(p.Z)}
		a.centerSet = true
	}

	a.renderer.AddChunk(cloud.ToVertices(batch))
}

func (a *App) update(dt float32) {
	if a.mode == ModeAnnotate {
		a.updateEditor()
		return
	}

	var forward, right, up float32
	if a.input.IsKeyHeld(sdl.SCANCODE_W) {
		forward++
	}
	if a.input.IsKeyHeld(sdl.SCANCODE_S) {
		forward--
	}
	if a.input.IsKeyHeld(sdl.SCANCODE_D) {
		right++
	}
	if a.input.IsKeyHeld(sdl.SCANCODE_A) {
		right--
	}
	if a.input.IsKeyHeld(sdl.SCANCODE_SPACE) {
		up++
	}
	if a.input.IsKeyHeld(sdl.SCANCODE_LCTRL) {
		up--
	}
	a.camera.Move(forward, right, up, dt)

	if a.mouseLocked {
		dx, dy := a.input.Mouse().RelativeMotion()
		a.camera.Look(float32(dx), float32(dy), dt)
	}

	a.camera.HandleZoom(a.input.Mouse().WheelDelta())
}

func (a *App) updateEditor() {
	m := a.input.Mouse()
	x, y := m.Position()
	a.editor.Apply(editor.PointerSample{
		X:            x,
		Y:            y,
		LeftHeld:     m.Button(sdl.BUTTON_LEFT).Down(),
		LeftPressed:  m.Button(sdl.BUTTON_LEFT) == input.JustPressed,
		RightPressed: m.Button(sdl.BUTTON_RIGHT) == input.JustPressed,
	})
}

func (a *App) lockMouse(locked bool) {
	if locked == a.mouseLocked {
		return
	}
	a.mouseLocked = locked
	a.window.CaptureMouse(locked)
}

// zoomPixels is pixels per world unit at the current zoom, the scale the
// point shader uses to size points on screen.
func (a *App) zoomPixels() float32 {
	width, _ := a.renderer.Size()
	return float32(width) / a.camera.ZoomFactor()
}

func (a *App) cloudParams(showSlice bool) renderer.CloudParams {
	return renderer.CloudParams{
		Clipping:   a.clipping,
		ShowSlice:  showSlice,
		SliceWidth: sliceWidth,
		ZoomPixels: a.zoomPixels(),
		PointSize:  float32(a.config.Cloud.PointSize),
	}
}

func (a *App) render() {
	if a.mode == ModeAnnotate {
		a.renderer.UpdateRaster(a.editor.Canvas())
		a.renderer.DrawRaster()
		return
	}

	width, height := a.renderer.Size()
	modelview := a.camera.ViewMatrix().Mul(camera.ModelMatrix(a.center))
	projection := a.camera.ProjectionMatrix(width, height)

	a.renderer.Clear()
	a.renderer.DrawCloud(modelview, projection, a.cloudParams(a.showSlice))
}

// RequestRender renders the cutaway into the offscreen target, links the
// boundary and enters annotation mode. On failure the raster state is
// left unchanged and the 3D view stays active.
func (a *App) RequestRender() error {
	width, height := a.renderer.Size()
	modelview := a.camera.ViewMatrix().Mul(camera.ModelMatrix(a.center))
	projection := a.camera.ProjectionMatrix(width, height)

	restore := a.cutaway.BindWithViewport()
	a.cutaway.Clear(1, 1, 1, 1)
	a.renderer.DrawCloud(modelview, projection, a.cloudParams(true))
	restore()

	color, slice, err := a.cutaway.Snapshot()
	if err != nil {
		return fmt.Errorf("capturing cutaway: %w", err)
	}

	pts := raster.BoundaryPoints(slice)
	radius := raster.LinkRadius(a.config.Cloud.PointSize, float64(a.zoomPixels()))
	canvas := color.Clone()
	raster.LinkBoundary(canvas, pts, radius)

	a.editor = editor.New(canvas)
	a.mode = ModeAnnotate
	a.lockMouse(false)

	logger.Info("cutaway rendered",
		zap.Int("boundary_points", len(pts)),
		zap.Float64("link_radius", radius),
	)
	return nil
}

// openFileDialog shows a native file dialog to select a cloud file.
func (a *App) openFileDialog() {
	// Run in goroutine to not block the UI
	// NOTE: SDL window operations must happen on the main thread, so the
	// chosen path is queued and opened from the main loop.
	go func() {
		filename, err := dialog.File().
			Filter("Point Clouds", "ply").
			Filter("All Files", "*").
			Title("Open Point Cloud").
			Load()

		if err != nil {
			// User canceled or error occurred
			if err != dialog.ErrCancelled {
				fmt.Fprintf(os.Stderr, "File dialog error: %v\n", err)
			}
			return
		}

		select {
		case a.pendingPath <- filename:
		default:
		}
	}()
}
