package raster

// Line visits every pixel of the straight segment from (x0, y0) to (x1, y1)
// using Bresenham's algorithm. Both endpoints are visited; a zero-length
// segment visits its single pixel once. Coordinates may lie outside any
// raster; callers clamp when stamping.
func Line(x0, y0, x1, y1 int, visit func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)

	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}

	err := dx + dy
	for {
		visit(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// StampLine paints the segment onto r, skipping out-of-bounds pixels.
func StampLine(r *Raster, x0, y0, x1, y1 int, c RGBA) {
	Line(x0, y0, x1, y1, func(x, y int) {
		r.SetClamped(x, y, c)
	})
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
