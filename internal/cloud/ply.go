package cloud

import (
	"github.com/pcview/cutaway/pkg/ply"
)

// plyReader adapts a ply.File to the Reader interface.
type plyReader struct {
	f *ply.File
}

// OpenPLY opens a PLY file as a point Reader. An open or header-parse
// failure is returned immediately; no partial reader is created.
func OpenPLY(path string) (Reader, error) {
	f, err := ply.Open(path)
	if err != nil {
		return nil, err
	}
	return &plyReader{f: f}, nil
}

func (r *plyReader) Header() Header {
	h := r.f.Header()
	return Header{PointCount: h.VertexCount}
}

func (r *plyReader) ReadNext() (PointRecord, error) {
	pt, err := r.f.ReadNext()
	if err != nil {
		return PointRecord{}, err
	}
	return PointRecord{
		X: pt.X, Y: pt.Y, Z: pt.Z,
		Red: pt.Red, Green: pt.Green, Blue: pt.Blue,
		HasColor: pt.HasColor,
	}, nil
}

func (r *plyReader) Close() error {
	return r.f.Close()
}
