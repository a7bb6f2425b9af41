package raster

import (
	"testing"
)

func sliceWithBoundary(w, h int, pts ...Point) *Raster {
	s := New(w, h)
	for _, p := range pts {
		s.Set(p.X, p.Y, RGBA{0, 0, 0, 255})
	}
	return s
}

func TestBoundaryPoints(t *testing.T) {
	s := sliceWithBoundary(8, 8, Point{1, 1}, Point{6, 2}, Point{3, 7})
	// A low-alpha pixel sits below the mask threshold.
	s.Set(5, 5, RGBA{0, 0, 0, 100})

	pts := BoundaryPoints(s)
	if len(pts) != 3 {
		t.Fatalf("got %d boundary points, want 3", len(pts))
	}
	want := map[Point]bool{{1, 1}: true, {6, 2}: true, {3, 7}: true}
	for _, p := range pts {
		if !want[p] {
			t.Errorf("unexpected boundary point %v", p)
		}
	}
}

func TestLinkRadius(t *testing.T) {
	if got := LinkRadius(2, 3); got != 60 {
		t.Errorf("LinkRadius(2,3) = %v, want 60", got)
	}
	// On-screen size below one pixel clamps to one before scaling.
	if got := LinkRadius(0.01, 1); got != 10 {
		t.Errorf("LinkRadius(0.01,1) = %v, want 10", got)
	}
}

func TestLinkBoundaryClosesGaps(t *testing.T) {
	dst := New(20, 20)
	pts := []Point{{2, 10}, {8, 10}, {14, 10}}
	LinkBoundary(dst, pts, 7)

	// The two 6-pixel gaps fall inside the radius, so the whole segment
	// from x=2 to x=14 on row 10 ends up outlined.
	for x := 2; x <= 14; x++ {
		if dst.At(x, 10) != Outline {
			t.Errorf("pixel (%d,10) not linked", x)
		}
	}
}

func TestLinkBoundaryRespectsRadius(t *testing.T) {
	dst := New(30, 30)
	pts := []Point{{2, 15}, {25, 15}}
	LinkBoundary(dst, pts, 5)

	// Points farther apart than the radius are not joined.
	if dst.At(13, 15) == Outline {
		t.Error("midpoint stamped despite neighbors being out of radius")
	}
	// Each point still stamps itself via the self-match.
	if dst.At(2, 15) != Outline || dst.At(25, 15) != Outline {
		t.Error("boundary points themselves not stamped")
	}
}

func TestLinkBoundaryIdempotent(t *testing.T) {
	pts := []Point{{3, 3}, {7, 4}, {5, 9}, {12, 12}}

	once := New(16, 16)
	LinkBoundary(once, pts, 8)

	twice := once.Clone()
	LinkBoundary(twice, pts, 8)

	if !once.Equal(twice) {
		t.Error("re-linking an already linked raster changed it")
	}
}

func TestLinkBoundaryEmpty(t *testing.T) {
	dst := New(4, 4)
	LinkBoundary(dst, nil, 10)
	if !dst.Equal(New(4, 4)) {
		t.Error("linking an empty point set modified the raster")
	}
}
