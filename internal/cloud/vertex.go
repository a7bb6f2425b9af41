package cloud

import (
	"runtime"
	"sync"
)

// Vertex is a render-ready point: single-precision position plus 8-bit
// color, matching the GPU vertex layout.
type Vertex struct {
	Position [3]float32
	Color    [3]uint8
}

// ToVertices converts a batch to renderable vertices, quantizing 16-bit
// color channels to 8 bits and defaulting to opaque white where the source
// has no color. Conversion fans out across the batch but output order always
// matches input order.
func ToVertices(batch Batch) []Vertex {
	return toVertices(batch, runtime.NumCPU())
}

func toVertices(batch Batch, workers int) []Vertex {
	out := make([]Vertex, len(batch))
	if len(batch) == 0 {
		return out
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(batch) {
		workers = len(batch)
	}

	chunk := (len(batch) + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < len(batch); start += chunk {
		end := start + chunk
		if end > len(batch) {
			end = len(batch)
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			// Each worker writes a disjoint slice range; no shared state.
			for i := start; i < end; i++ {
				out[i] = convert(batch[i])
			}
		}(start, end)
	}
	wg.Wait()

	return out
}

func convert(rec PointRecord) Vertex {
	color := [3]uint8{255, 255, 255}
	if rec.HasColor {
		color = [3]uint8{
			uint8(rec.Red / 256),
			uint8(rec.Green / 256),
			uint8(rec.Blue / 256),
		}
	}
	return Vertex{
		Position: [3]float32{float32(rec.X), float32(rec.Y), float32(rec.Z)},
		Color:    color,
	}
}
