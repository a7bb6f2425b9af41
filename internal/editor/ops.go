package editor

import (
	"github.com/pcview/cutaway/internal/raster"
)

const eraserRadius = 5

// StrokeOutline stamps outline pixels along the segment between two
// pointer samples. Interpolating the path keeps fast strokes gap-free.
func StrokeOutline(r *raster.Raster, x0, y0, x1, y1 int) {
	raster.StampLine(r, x0, y0, x1, y1, raster.Outline)
}

// EraseStroke clears a disk of radius 5 around every pixel on the segment
// between two pointer samples. Cleared pixels become transparent white.
func EraseStroke(r *raster.Raster, x0, y0, x1, y1 int) {
	raster.Line(x0, y0, x1, y1, func(x, y int) {
		eraseDisk(r, x, y)
	})
}

func eraseDisk(r *raster.Raster, cx, cy int) {
	for dy := -eraserRadius; dy <= eraserRadius; dy++ {
		for dx := -eraserRadius; dx <= eraserRadius; dx++ {
			if dx*dx+dy*dy > eraserRadius*eraserRadius {
				continue
			}
			r.SetClamped(cx+dx, cy+dy, raster.Erased)
		}
	}
}

// FloodFill recolors the 4-connected region of uniform color containing
// (x, y) with target. It is a no-op when the seed pixel is outline black,
// already the target color, or out of bounds. An explicit work stack keeps
// large regions from exhausting the call stack.
func FloodFill(r *raster.Raster, x, y int, target raster.RGBA) {
	if !r.InBounds(x, y) {
		return
	}
	seed := r.At(x, y)
	if seed == raster.Outline || seed == target {
		return
	}

	stack := []raster.Point{{X: x, Y: y}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if r.At(p.X, p.Y) != seed {
			continue
		}
		r.Set(p.X, p.Y, target)

		if p.X > 0 {
			stack = append(stack, raster.Point{X: p.X - 1, Y: p.Y})
		}
		if p.X < r.W-1 {
			stack = append(stack, raster.Point{X: p.X + 1, Y: p.Y})
		}
		if p.Y > 0 {
			stack = append(stack, raster.Point{X: p.X, Y: p.Y - 1})
		}
		if p.Y < r.H-1 {
			stack = append(stack, raster.Point{X: p.X, Y: p.Y + 1})
		}
	}
}
