// Package camera provides the free-fly camera used to navigate the cloud.
package camera

import (
	gomath "math"

	"github.com/pcview/cutaway/pkg/math"
)

const (
	zNear = 0.1
	zFar  = 1000.0

	// Units per second of held movement keys.
	moveSpeed = 15.0
	// Radians per pixel-second of mouse motion.
	angularSpeed = 0.1
)

// FlyCamera flies freely through the scene: WASD moves along the view
// direction, mouse motion yaws and pitches, and the wheel drives an
// exponential orthographic zoom.
type FlyCamera struct {
	Position math.Vec3

	// Yaw rotates about the world Y axis, pitch about the camera X axis.
	Yaw   float32
	Pitch float32

	// Zoom is the wheel accumulator; the view scale is 2^(-Zoom/10).
	Zoom float32
}

// New creates a camera at the origin looking along +Z, pitched straight
// down for a plan view.
func New() *FlyCamera {
	return &FlyCamera{
		Pitch: gomath.Pi / 2,
		Zoom:  -64,
	}
}

// Forward returns the view direction on the current yaw/pitch.
func (c *FlyCamera) Forward() math.Vec3 {
	cy := float32(gomath.Cos(float64(c.Yaw)))
	sy := float32(gomath.Sin(float64(c.Yaw)))
	cp := float32(gomath.Cos(float64(c.Pitch)))
	sp := float32(gomath.Sin(float64(c.Pitch)))
	return math.Vec3{X: sy * cp, Y: -sp, Z: cy * cp}
}

// Right returns the strafe direction, perpendicular to forward on the XZ
// plane.
func (c *FlyCamera) Right() math.Vec3 {
	cy := float32(gomath.Cos(float64(c.Yaw)))
	sy := float32(gomath.Sin(float64(c.Yaw)))
	return math.Vec3{X: cy, Y: 0, Z: -sy}
}

// Move translates the camera by the normalized sum of the requested axes
// scaled by speed and elapsed time. Axes are -1, 0 or 1.
func (c *FlyCamera) Move(forward, right, up float32, dt float32) {
	dir := c.Forward().Scale(forward).
		Add(c.Right().Scale(right)).
		Add(math.Vec3{Y: up})

	if dir.Length() == 0 {
		return
	}
	c.Position = c.Position.Add(dir.Normalize().Scale(moveSpeed * dt))
}

// Look applies a mouse motion delta in pixels. Pitch clamps to straight
// up and straight down.
func (c *FlyCamera) Look(dx, dy float32, dt float32) {
	c.Yaw += dx * angularSpeed * dt
	c.Pitch += dy * angularSpeed * dt

	limit := float32(gomath.Pi / 2)
	if c.Pitch > limit {
		c.Pitch = limit
	}
	if c.Pitch < -limit {
		c.Pitch = -limit
	}
}

// HandleZoom accumulates wheel delta.
func (c *FlyCamera) HandleZoom(delta float32) {
	c.Zoom += delta
}

// ZoomFactor returns the orthographic view extent for the current zoom.
func (c *FlyCamera) ZoomFactor() float32 {
	return float32(gomath.Pow(2, float64(-c.Zoom)/10))
}

// ViewMatrix returns the world-to-camera transform.
func (c *FlyCamera) ViewMatrix() math.Mat4 {
	// Inverse of translate(position) * rotY(yaw) * rotX(pitch).
	return math.RotateX(-c.Pitch).
		Mul(math.RotateY(-c.Yaw)).
		Mul(math.Translate(-c.Position.X, -c.Position.Y, -c.Position.Z))
}

// ProjectionMatrix returns an orthographic projection sized by the zoom
// factor and the window aspect ratio.
func (c *FlyCamera) ProjectionMatrix(width, height int) math.Mat4 {
	zoom := c.ZoomFactor()
	aspect := float32(height) / float32(width)
	return math.Ortho(-0.5*zoom, 0.5*zoom, -aspect*0.5*zoom, aspect*0.5*zoom, zNear, zFar)
}

// ModelMatrix recenters the cloud on its bounds center and swaps the Y
// and Z axes so scan files with Z-up render with Y-up.
func ModelMatrix(center math.Vec3) math.Mat4 {
	swapYZ := math.Mat4{
		1, 0, 0, 0,
		0, 0, 1, 0,
		0, 1, 0, 0,
		0, 0, 0, 1,
	}
	return swapYZ.Mul(math.Translate(-center.X, -center.Y, -center.Z))
}
