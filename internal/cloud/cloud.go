// Package cloud implements point-cloud ingestion: the reader abstraction,
// batched background streaming, and conversion to renderable vertices.
package cloud

// PointRecord is a single survey point as read from the source file.
// Positions keep full source precision; color is 16 bits per channel and
// absent for files without color properties.
type PointRecord struct {
	X, Y, Z          float64
	Red, Green, Blue uint16
	HasColor         bool
}

// Header describes what the source file declares about itself before any
// points are read.
type Header struct {
	// PointCount is the declared number of points. Some writers get this
	// wrong; iteration order and the reader's end-of-data signal are
	// authoritative, not this number.
	PointCount uint64

	// Min and Max are the spatial bounds (x, y, z), valid when HasBounds
	// is set. Used to center the camera on load.
	Min, Max  [3]float64
	HasBounds bool
}

// Reader is the sequential pull interface over a point-cloud file.
// Implementations return io.EOF from ReadNext at clean end-of-data and any
// other error for malformed records; the streaming layer treats both as the
// end of that load.
type Reader interface {
	Header() Header
	ReadNext() (PointRecord, error)
	Close() error
}

// Batch is an ordered chunk of sequentially read records, the unit of
// producer-to-consumer transfer. Batch boundaries carry no meaning beyond
// throughput and memory pressure.
type Batch []PointRecord
