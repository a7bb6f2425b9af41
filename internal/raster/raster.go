// Package raster provides the 2D pixel grids behind the cutaway view: the
// rendered cross-section pair, boundary extraction, and outline linking.
package raster

// RGBA is one pixel. Alpha doubles as a classification channel in the
// annotation raster, so the named colors below are exact values, not hints.
type RGBA [4]uint8

// Pixel classifications used by the outline and annotation stages.
var (
	// Outline marks impassable wall/floor pixels.
	Outline = RGBA{0, 0, 0, 255}

	// Room labels a flood-filled room or exterior region.
	Room = RGBA{0, 0, 255, 0}

	// WallFloor labels a flood-filled wall-and-floor region.
	WallFloor = RGBA{255, 0, 0, 0}

	// Erased is what the eraser leaves behind: transparent white.
	Erased = RGBA{255, 255, 255, 0}
)

// boundaryThreshold is the slice-mask cutoff: alpha strictly above this
// marks a pixel as lying on the cutting plane.
const boundaryThreshold = 128

// Raster is a top-down, row-major RGBA8 pixel grid.
type Raster struct {
	Pix []uint8
	W   int
	H   int
}

// New returns a zeroed raster of the given dimensions.
func New(w, h int) *Raster {
	return &Raster{
		Pix: make([]uint8, w*h*4),
		W:   w,
		H:   h,
	}
}

// FromPixels wraps a readback buffer as a raster. flip reverses row order,
// converting OpenGL's bottom-left origin to the top-down orientation every
// consumer here expects.
func FromPixels(pix []uint8, w, h int, flip bool) *Raster {
	if !flip {
		return &Raster{Pix: pix, W: w, H: h}
	}

	flipped := make([]uint8, len(pix))
	stride := w * 4
	for y := 0; y < h; y++ {
		copy(flipped[y*stride:(y+1)*stride], pix[(h-1-y)*stride:(h-y)*stride])
	}
	return &Raster{Pix: flipped, W: w, H: h}
}

// InBounds reports whether (x, y) is a valid pixel coordinate.
func (r *Raster) InBounds(x, y int) bool {
	return x >= 0 && x < r.W && y >= 0 && y < r.H
}

// At returns the pixel at (x, y). The caller must ensure bounds.
func (r *Raster) At(x, y int) RGBA {
	i := (y*r.W + x) * 4
	return RGBA{r.Pix[i], r.Pix[i+1], r.Pix[i+2], r.Pix[i+3]}
}

// Set writes the pixel at (x, y). The caller must ensure bounds.
func (r *Raster) Set(x, y int, c RGBA) {
	i := (y*r.W + x) * 4
	r.Pix[i] = c[0]
	r.Pix[i+1] = c[1]
	r.Pix[i+2] = c[2]
	r.Pix[i+3] = c[3]
}

// SetClamped writes the pixel at (x, y), ignoring out-of-bounds coordinates.
// Stamping near raster borders must never fault.
func (r *Raster) SetClamped(x, y int, c RGBA) {
	if r.InBounds(x, y) {
		r.Set(x, y, c)
	}
}

// Fill sets every pixel to c.
func (r *Raster) Fill(c RGBA) {
	for i := 0; i < len(r.Pix); i += 4 {
		r.Pix[i] = c[0]
		r.Pix[i+1] = c[1]
		r.Pix[i+2] = c[2]
		r.Pix[i+3] = c[3]
	}
}

// Clone returns a deep copy.
func (r *Raster) Clone() *Raster {
	pix := make([]uint8, len(r.Pix))
	copy(pix, r.Pix)
	return &Raster{Pix: pix, W: r.W, H: r.H}
}

// Equal reports whether two rasters have identical dimensions and pixels.
func (r *Raster) Equal(other *Raster) bool {
	if r.W != other.W || r.H != other.H {
		return false
	}
	for i := range r.Pix {
		if r.Pix[i] != other.Pix[i] {
			return false
		}
	}
	return true
}
