package raster

import (
	"gonum.org/v1/gonum/spatial/kdtree"
)

// Point is an integer pixel coordinate.
type Point struct {
	X, Y int
}

// BoundaryPoints extracts the pixels the slice mask marks as lying on the
// cutting plane. The set is always derived fresh from a snapshot, never
// updated incrementally.
func BoundaryPoints(slice *Raster) []Point {
	var pts []Point
	for y := 0; y < slice.H; y++ {
		for x := 0; x < slice.W; x++ {
			if slice.At(x, y)[3] > boundaryThreshold {
				pts = append(pts, Point{x, y})
			}
		}
	}
	return pts
}

// LinkRadius is the neighbor-search radius for outline linking. It scales
// with the on-screen point size so linking density matches what the user
// sees at the current zoom.
func LinkRadius(pointSize, zoom float64) float64 {
	r := pointSize * zoom
	if r < 1 {
		r = 1
	}
	return r * 10
}

// LinkBoundary closes the gaps in a sparse boundary sample by stamping a
// straight outline segment between every pair of boundary points within
// radius of each other. Stamping is idempotent and commutative, so the
// result does not depend on point order, and re-linking an already linked
// raster changes nothing.
func LinkBoundary(dst *Raster, pts []Point, radius float64) {
	if len(pts) == 0 {
		return
	}

	coords := make(pixelCoords, len(pts))
	for i, p := range pts {
		coords[i] = pixelCoord{X: float64(p.X), Y: float64(p.Y)}
	}
	tree := kdtree.New(coords, false)

	// The keeper works in squared distances.
	r2 := radius * radius
	for _, p := range pts {
		q := pixelCoord{X: float64(p.X), Y: float64(p.Y)}

		keep := kdtree.NewDistKeeper(r2)
		tree.NearestSet(keep, q)

		for _, c := range keep.Heap {
			n, ok := c.Comparable.(pixelCoord)
			if !ok {
				continue // the keeper's bound sentinel
			}
			// A self-match stamps a single pixel, which is harmless.
			StampLine(dst, p.X, p.Y, int(n.X), int(n.Y), Outline)
		}
	}
}

// pixelCoord adapts a boundary pixel to the kd-tree interface.
type pixelCoord struct {
	X, Y float64
}

func (p pixelCoord) Dims() int { return 2 }

func (p pixelCoord) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(pixelCoord)
	switch d {
	case 0:
		return p.X - q.X
	default:
		return p.Y - q.Y
	}
}

func (p pixelCoord) Distance(c kdtree.Comparable) float64 {
	q := c.(pixelCoord)
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

// pixelCoords implements kdtree.Interface for tree construction.
type pixelCoords []pixelCoord

func (p pixelCoords) Index(i int) kdtree.Comparable { return p[i] }
func (p pixelCoords) Len() int                      { return len(p) }
func (p pixelCoords) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}
func (p pixelCoords) Pivot(d kdtree.Dim) int {
	return coordPlane{pixelCoords: p, Dim: d}.Pivot()
}

// coordPlane sorts pixelCoords along one dimension for tree building.
type coordPlane struct {
	pixelCoords
	kdtree.Dim
}

func (p coordPlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.pixelCoords[i].X < p.pixelCoords[j].X
	default:
		return p.pixelCoords[i].Y < p.pixelCoords[j].Y
	}
}

func (p coordPlane) Pivot() int {
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

func (p coordPlane) Slice(start, end int) kdtree.SortSlicer {
	p.pixelCoords = p.pixelCoords[start:end]
	return p
}

func (p coordPlane) Swap(i, j int) {
	p.pixelCoords[i], p.pixelCoords[j] = p.pixelCoords[j], p.pixelCoords[i]
}
