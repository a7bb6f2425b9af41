package ply

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// writeBinaryFixture writes a binary_little_endian PLY file with float32
// coordinates and uchar colors.
func writeBinaryFixture(t *testing.T, path string, declared int, points [][3]float32, colors [][3]uint8) {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("ply\n")
	buf.WriteString("format binary_little_endian 1.0\n")
	buf.WriteString("comment generated by ply_test\n")
	buf.WriteString("element vertex " + strconv.Itoa(declared) + "\n")
	buf.WriteString("property float x\n")
	buf.WriteString("property float y\n")
	buf.WriteString("property float z\n")
	if colors != nil {
		buf.WriteString("property uchar red\n")
		buf.WriteString("property uchar green\n")
		buf.WriteString("property uchar blue\n")
	}
	buf.WriteString("end_header\n")

	for i, p := range points {
		for _, v := range p {
			binary.Write(&buf, binary.LittleEndian, v)
		}
		if colors != nil {
			buf.Write([]byte{colors[i][0], colors[i][1], colors[i][2]})
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
}

func TestOpenBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.ply")
	points := [][3]float32{{1, 2, 3}, {-4.5, 0, 9.25}}
	colors := [][3]uint8{{255, 0, 0}, {0, 128, 64}}
	writeBinaryFixture(t, path, len(points), points, colors)

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	h := f.Header()
	if h.Format != FormatBinaryLittleEndian {
		t.Errorf("format = %v, want binary little endian", h.Format)
	}
	if h.VertexCount != 2 {
		t.Errorf("vertex count = %d, want 2", h.VertexCount)
	}

	for i, want := range points {
		pt, err := f.ReadNext()
		if err != nil {
			t.Fatalf("ReadNext %d: %v", i, err)
		}
		if pt.X != float64(want[0]) || pt.Y != float64(want[1]) || pt.Z != float64(want[2]) {
			t.Errorf("point %d = (%f,%f,%f), want %v", i, pt.X, pt.Y, pt.Z, want)
		}
		if !pt.HasColor {
			t.Errorf("point %d missing color", i)
		}
		if pt.Red != uint16(colors[i][0])*257 {
			t.Errorf("point %d red = %d, want %d (widened)", i, pt.Red, uint16(colors[i][0])*257)
		}
	}

	if _, err := f.ReadNext(); err != io.EOF {
		t.Errorf("expected io.EOF after last point, got %v", err)
	}
}

func TestOpenASCII(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.ply")
	content := `ply
format ascii 1.0
element vertex 3
property double x
property double y
property double z
end_header
0.5 1.5 -2.5
10 20 30
-1 -2 -3
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	want := [][3]float64{{0.5, 1.5, -2.5}, {10, 20, 30}, {-1, -2, -3}}
	for i, w := range want {
		pt, err := f.ReadNext()
		if err != nil {
			t.Fatalf("ReadNext %d: %v", i, err)
		}
		if pt.X != w[0] || pt.Y != w[1] || pt.Z != w[2] {
			t.Errorf("point %d = (%f,%f,%f), want %v", i, pt.X, pt.Y, pt.Z, w)
		}
		if pt.HasColor {
			t.Errorf("point %d unexpectedly has color", i)
		}
	}

	if _, err := f.ReadNext(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestTruncatedRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.ply")
	// Declares 2 vertices but carries only one full record plus 4 bytes.
	points := [][3]float32{{1, 2, 3}}
	writeBinaryFixture(t, path, 2, points, nil)

	data, _ := os.ReadFile(path)
	data = append(data, 0, 0, 0, 0)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("rewriting fixture: %v", err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	if _, err := f.ReadNext(); err != nil {
		t.Fatalf("first record should parse: %v", err)
	}
	_, err = f.ReadNext()
	if !errors.Is(err, ErrMalformedRecord) {
		t.Errorf("expected ErrMalformedRecord for truncated record, got %v", err)
	}
}

func TestDoubleCoordinates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "double.ply")

	var buf bytes.Buffer
	buf.WriteString("ply\nformat binary_little_endian 1.0\n")
	buf.WriteString("element vertex 1\n")
	buf.WriteString("property double x\nproperty double y\nproperty double z\n")
	buf.WriteString("property ushort red\nproperty ushort green\nproperty ushort blue\n")
	buf.WriteString("end_header\n")
	for _, v := range []float64{1.25, -2.5, 1e9} {
		binary.Write(&buf, binary.LittleEndian, v)
	}
	for _, c := range []uint16{65535, 32768, 0} {
		binary.Write(&buf, binary.LittleEndian, c)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	pt, err := f.ReadNext()
	if err != nil {
		t.Fatalf("ReadNext: %v", err)
	}
	if pt.X != 1.25 || pt.Y != -2.5 || pt.Z != 1e9 {
		t.Errorf("point = (%v,%v,%v)", pt.X, pt.Y, pt.Z)
	}
	if pt.Red != 65535 || pt.Green != 32768 || pt.Blue != 0 {
		t.Errorf("color = (%d,%d,%d), ushort channels must pass through", pt.Red, pt.Green, pt.Blue)
	}
}

func TestHeaderErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "bad magic",
			content: "png\nformat ascii 1.0\nelement vertex 0\nproperty float x\nproperty float y\nproperty float z\nend_header\n",
			wantErr: ErrInvalidMagic,
		},
		{
			name:    "big endian unsupported",
			content: "ply\nformat binary_big_endian 1.0\nelement vertex 0\nproperty float x\nproperty float y\nproperty float z\nend_header\n",
			wantErr: ErrUnsupportedFormat,
		},
		{
			name:    "no vertex element",
			content: "ply\nformat ascii 1.0\nend_header\n",
			wantErr: ErrNoVertexElement,
		},
		{
			name:    "missing coordinates",
			content: "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nproperty float y\nend_header\n",
			wantErr: ErrMissingCoordinates,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.ply")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("writing fixture: %v", err)
			}
			_, err := Open(path)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Open error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMalformedASCIIRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbled.ply")
	content := "ply\nformat ascii 1.0\nelement vertex 2\nproperty float x\nproperty float y\nproperty float z\nend_header\n1 2 3\n4 NOPE\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	if _, err := f.ReadNext(); err != nil {
		t.Fatalf("first record should parse: %v", err)
	}
	_, err = f.ReadNext()
	if !errors.Is(err, ErrMalformedRecord) {
		t.Errorf("expected ErrMalformedRecord, got %v", err)
	}
}

func TestNaNPassthrough(t *testing.T) {
	// Binary doubles round-trip NaN payloads; the reader must not reject them.
	path := filepath.Join(t.TempDir(), "nan.ply")
	var buf bytes.Buffer
	buf.WriteString("ply\nformat binary_little_endian 1.0\nelement vertex 1\n")
	buf.WriteString("property double x\nproperty double y\nproperty double z\nend_header\n")
	binary.Write(&buf, binary.LittleEndian, math.NaN())
	binary.Write(&buf, binary.LittleEndian, 1.0)
	binary.Write(&buf, binary.LittleEndian, 2.0)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	pt, err := f.ReadNext()
	if err != nil {
		t.Fatalf("ReadNext: %v", err)
	}
	if !math.IsNaN(pt.X) || pt.Y != 1 || pt.Z != 2 {
		t.Errorf("point = (%v,%v,%v), want (NaN,1,2)", pt.X, pt.Y, pt.Z)
	}
}
