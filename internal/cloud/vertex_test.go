package cloud

import (
	"testing"
)

func TestToVerticesColorQuantization(t *testing.T) {
	batch := Batch{
		{X: 1, Y: 2, Z: 3, Red: 65535, Green: 0, Blue: 32768, HasColor: true},
		{X: -4, Y: 0, Z: 9},
	}

	verts := ToVertices(batch)
	if len(verts) != 2 {
		t.Fatalf("got %d vertices, want 2", len(verts))
	}

	if verts[0].Position != [3]float32{1, 2, 3} {
		t.Errorf("position = %v, want (1,2,3)", verts[0].Position)
	}
	if verts[0].Color != [3]uint8{255, 0, 128} {
		t.Errorf("color = %v, want (255,0,128)", verts[0].Color)
	}

	// Colorless points render opaque white.
	if verts[1].Color != [3]uint8{255, 255, 255} {
		t.Errorf("default color = %v, want white", verts[1].Color)
	}
}

func TestToVerticesPreservesOrder(t *testing.T) {
	const n = 10_000
	batch := make(Batch, n)
	for i := range batch {
		batch[i] = PointRecord{X: float64(i)}
	}

	// Force plenty of workers so chunk boundaries are actually exercised.
	verts := toVertices(batch, 7)

	if len(verts) != n {
		t.Fatalf("got %d vertices, want %d", len(verts), n)
	}
	for i, v := range verts {
		if v.Position[0] != float32(i) {
			t.Fatalf("vertex %d out of order: X = %f", i, v.Position[0])
		}
	}
}

func TestToVerticesEmptyBatch(t *testing.T) {
	verts := ToVertices(Batch{})
	if len(verts) != 0 {
		t.Errorf("got %d vertices for empty batch, want 0", len(verts))
	}
}

func TestToVerticesSingleWorker(t *testing.T) {
	batch := Batch{{X: 1}, {X: 2}, {X: 3}}
	verts := toVertices(batch, 1)
	for i, v := range verts {
		if v.Position[0] != float32(i+1) {
			t.Errorf("vertex %d: X = %f, want %d", i, v.Position[0], i+1)
		}
	}
}
