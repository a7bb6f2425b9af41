package camera

import (
	gomath "math"
	"testing"

	"github.com/pcview/cutaway/pkg/math"
)

func almostEqual(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-5
}

func TestZoomFactor(t *testing.T) {
	c := New()
	c.Zoom = 0
	if got := c.ZoomFactor(); !almostEqual(got, 1) {
		t.Errorf("zoom factor at 0 = %v, want 1", got)
	}

	// Ten wheel clicks halve the view extent.
	c.Zoom = 10
	if got := c.ZoomFactor(); !almostEqual(got, 0.5) {
		t.Errorf("zoom factor at 10 = %v, want 0.5", got)
	}
	c.Zoom = -10
	if got := c.ZoomFactor(); !almostEqual(got, 2) {
		t.Errorf("zoom factor at -10 = %v, want 2", got)
	}
}

func TestLookClampsPitch(t *testing.T) {
	c := New()
	c.Look(0, 1e6, 1)
	if c.Pitch > float32(gomath.Pi/2)+1e-6 {
		t.Errorf("pitch %v exceeds straight down", c.Pitch)
	}
	c.Look(0, -1e6, 1)
	if c.Pitch < -float32(gomath.Pi/2)-1e-6 {
		t.Errorf("pitch %v exceeds straight up", c.Pitch)
	}
}

func TestMoveNormalizesDiagonal(t *testing.T) {
	c := New()
	c.Pitch = 0
	start := c.Position

	c.Move(1, 1, 0, 1)

	moved := c.Position.Sub(start).Length()
	if !almostEqual(moved, moveSpeed) {
		t.Errorf("diagonal move distance = %v, want %v", moved, float32(moveSpeed))
	}
}

func TestMoveZeroDirection(t *testing.T) {
	c := New()
	before := c.Position
	c.Move(0, 0, 0, 1)
	if c.Position != before {
		t.Error("camera moved with no input")
	}
}

func TestModelMatrixSwapsAxes(t *testing.T) {
	m := ModelMatrix(math.Vec3{})
	p := m.TransformPoint(math.Vec3{X: 1, Y: 2, Z: 3})
	want := math.Vec3{X: 1, Y: 3, Z: 2}
	if !almostEqual(p.X, want.X) || !almostEqual(p.Y, want.Y) || !almostEqual(p.Z, want.Z) {
		t.Errorf("transformed point = %+v, want %+v", p, want)
	}
}

func TestModelMatrixRecenters(t *testing.T) {
	center := math.Vec3{X: 10, Y: 20, Z: 30}
	m := ModelMatrix(center)
	p := m.TransformPoint(center)
	if !almostEqual(p.Length(), 0) {
		t.Errorf("bounds center maps to %+v, want origin", p)
	}
}
