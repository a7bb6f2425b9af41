package editor

import (
	"go.uber.org/zap"

	"github.com/pcview/cutaway/internal/logger"
	"github.com/pcview/cutaway/internal/raster"
)

// PointerSample carries one frame's worth of pointer state into the editor.
// Press flags are edges: true only on the frame the button went down.
type PointerSample struct {
	X, Y         int
	LeftHeld     bool
	LeftPressed  bool
	RightPressed bool
}

// Editor owns the segmented raster and dispatches pointer input to the
// active tool. It is driven once per frame from the consumer loop and is
// not safe for concurrent use.
type Editor struct {
	canvas *raster.Raster
	tool   Tool

	prevX, prevY int
	stroking     bool
}

// New wraps a segmented raster, typically the outline raster produced by
// boundary linking. The editor mutates it in place.
func New(canvas *raster.Raster) *Editor {
	return &Editor{canvas: canvas, tool: ToolPencil}
}

// Canvas exposes the segmented raster read-only for export or display.
func (e *Editor) Canvas() *raster.Raster { return e.canvas }

// Tool reports the active tool.
func (e *Editor) Tool() Tool { return e.tool }

// SelectTool switches the active tool and drops any in-progress stroke.
func (e *Editor) SelectTool(t Tool) {
	if t != e.tool {
		logger.Debug("editor: tool selected", zap.String("tool", t.String()))
	}
	e.tool = t
	e.stroking = false
}

// Apply feeds one pointer sample to the active tool.
//
// Pencil and eraser stroke continuously while the left button is held,
// interpolating between the previous and current sample so no pixels are
// skipped between frames. Room fill acts only on press edges: left fills
// with the room label, right with the wall-and-floor label.
func (e *Editor) Apply(s PointerSample) {
	switch e.tool {
	case ToolPencil, ToolEraser:
		e.applyStroke(s)
	case ToolRoomFill:
		if s.LeftPressed {
			FloodFill(e.canvas, s.X, s.Y, raster.Room)
		}
		if s.RightPressed {
			FloodFill(e.canvas, s.X, s.Y, raster.WallFloor)
		}
	}
}

func (e *Editor) applyStroke(s PointerSample) {
	if !s.LeftHeld {
		e.stroking = false
		return
	}
	// A new stroke starts at the press position, not wherever the pointer
	// was when the previous stroke ended.
	if s.LeftPressed || !e.stroking {
		e.prevX, e.prevY = s.X, s.Y
		e.stroking = true
	}

	switch e.tool {
	case ToolPencil:
		StrokeOutline(e.canvas, e.prevX, e.prevY, s.X, s.Y)
	case ToolEraser:
		EraseStroke(e.canvas, e.prevX, e.prevY, s.X, s.Y)
	}
	e.prevX, e.prevY = s.X, s.Y
}
