// Package ply provides a sequential reader for PLY point-cloud files.
//
// Only the vertex element is consumed: x/y/z coordinates plus optional
// red/green/blue color channels. Both ascii and binary_little_endian
// encodings are supported. Records are pulled one at a time so files with
// hundreds of millions of points never have to fit in memory.
package ply

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// PLY format errors.
var (
	ErrInvalidMagic       = errors.New("invalid PLY magic: expected 'ply'")
	ErrUnsupportedFormat  = errors.New("unsupported PLY format")
	ErrNoVertexElement    = errors.New("PLY file has no vertex element")
	ErrMissingCoordinates = errors.New("vertex element lacks x/y/z properties")
	ErrMalformedRecord    = errors.New("malformed vertex record")
)

// Format is the PLY body encoding.
type Format int

// Supported encodings.
const (
	FormatASCII Format = iota
	FormatBinaryLittleEndian
)

// propType is a PLY scalar property type.
type propType int

const (
	typeInt8 propType = iota
	typeUint8
	typeInt16
	typeUint16
	typeInt32
	typeUint32
	typeFloat32
	typeFloat64
)

var propTypeNames = map[string]propType{
	"char": typeInt8, "int8": typeInt8,
	"uchar": typeUint8, "uint8": typeUint8,
	"short": typeInt16, "int16": typeInt16,
	"ushort": typeUint16, "uint16": typeUint16,
	"int": typeInt32, "int32": typeInt32,
	"uint": typeUint32, "uint32": typeUint32,
	"float": typeFloat32, "float32": typeFloat32,
	"double": typeFloat64, "float64": typeFloat64,
}

var propTypeSizes = [...]int{1, 1, 2, 2, 4, 4, 4, 8}

// property describes one declared vertex property.
type property struct {
	Name string
	Type propType
}

// Header holds the parsed PLY header information.
type Header struct {
	Format      Format
	VertexCount uint64
	Properties  []property
}

// Point is a single vertex record. Color channels are 16-bit to preserve
// full precision from ushort sources; 8-bit sources are widened.
type Point struct {
	X, Y, Z          float64
	Red, Green, Blue uint16
	HasColor         bool
}

// File is an open PLY file positioned for sequential vertex reads.
type File struct {
	f      *os.File
	r      *bufio.Reader
	header Header

	read      uint64 // vertices consumed so far
	recordBuf []byte // reused scratch for one binary record

	// Property offsets resolved once at open time.
	xIdx, yIdx, zIdx   int
	rIdx, gIdx, bIdx   int
	hasColor           bool
	binaryRecordSize   int
	binaryFieldOffsets []int
}

// Open opens a PLY file and parses its header.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	p := &File{
		f: f,
		r: bufio.NewReaderSize(f, 1<<20),
	}

	if err := p.parseHeader(); err != nil {
		f.Close()
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return p, nil
}

// Header returns the parsed header.
func (p *File) Header() Header {
	return p.header
}

// Close closes the underlying file.
func (p *File) Close() error {
	return p.f.Close()
}

func (p *File) parseHeader() error {
	magic, err := p.readHeaderLine()
	if err != nil {
		return err
	}
	if magic != "ply" {
		return ErrInvalidMagic
	}

	inVertex := false
	seenVertex := false

	for {
		line, err := p.readHeaderLine()
		if err != nil {
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "comment", "obj_info":
			// Ignored.

		case "format":
			if len(fields) < 2 {
				return ErrUnsupportedFormat
			}
			switch fields[1] {
			case "ascii":
				p.header.Format = FormatASCII
			case "binary_little_endian":
				p.header.Format = FormatBinaryLittleEndian
			default:
				return fmt.Errorf("%w: %s", ErrUnsupportedFormat, fields[1])
			}

		case "element":
			if len(fields) < 3 {
				return fmt.Errorf("%w: bad element line %q", ErrUnsupportedFormat, line)
			}
			if fields[1] == "vertex" {
				count, err := strconv.ParseUint(fields[2], 10, 64)
				if err != nil {
					return fmt.Errorf("%w: vertex count %q", ErrUnsupportedFormat, fields[2])
				}
				p.header.VertexCount = count
				inVertex = true
				seenVertex = true
			} else {
				// Vertices must come first; trailing elements are never read.
				if !seenVertex {
					return fmt.Errorf("%w: element %q precedes vertex", ErrUnsupportedFormat, fields[1])
				}
				inVertex = false
			}

		case "property":
			if !inVertex {
				continue
			}
			if len(fields) >= 2 && fields[1] == "list" {
				return fmt.Errorf("%w: list property in vertex element", ErrUnsupportedFormat)
			}
			if len(fields) < 3 {
				return fmt.Errorf("%w: bad property line %q", ErrUnsupportedFormat, line)
			}
			typ, ok := propTypeNames[fields[1]]
			if !ok {
				return fmt.Errorf("%w: property type %q", ErrUnsupportedFormat, fields[1])
			}
			p.header.Properties = append(p.header.Properties, property{Name: fields[2], Type: typ})

		case "end_header":
			if !seenVertex {
				return ErrNoVertexElement
			}
			return p.resolveLayout()
		}
	}
}

// readHeaderLine reads one trimmed header line.
func (p *File) readHeaderLine() (string, error) {
	line, err := p.r.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			return "", fmt.Errorf("%w: truncated header", ErrUnsupportedFormat)
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// resolveLayout locates the coordinate and color properties and precomputes
// binary field offsets.
func (p *File) resolveLayout() error {
	p.xIdx, p.yIdx, p.zIdx = -1, -1, -1
	p.rIdx, p.gIdx, p.bIdx = -1, -1, -1

	offset := 0
	p.binaryFieldOffsets = make([]int, len(p.header.Properties))
	for i, prop := range p.header.Properties {
		p.binaryFieldOffsets[i] = offset
		offset += propTypeSizes[prop.Type]

		switch prop.Name {
		case "x":
			p.xIdx = i
		case "y":
			p.yIdx = i
		case "z":
			p.zIdx = i
		case "red", "r":
			p.rIdx = i
		case "green", "g":
			p.gIdx = i
		case "blue", "b":
			p.bIdx = i
		}
	}
	p.binaryRecordSize = offset

	if p.xIdx < 0 || p.yIdx < 0 || p.zIdx < 0 {
		return ErrMissingCoordinates
	}
	p.hasColor = p.rIdx >= 0 && p.gIdx >= 0 && p.bIdx >= 0
	p.recordBuf = make([]byte, p.binaryRecordSize)

	return nil
}

// ReadNext returns the next vertex. io.EOF signals a clean end of data;
// ErrMalformedRecord (possibly wrapped) signals a truncated or garbled record.
func (p *File) ReadNext() (Point, error) {
	if p.read >= p.header.VertexCount {
		return Point{}, io.EOF
	}

	var pt Point
	var err error
	if p.header.Format == FormatBinaryLittleEndian {
		pt, err = p.readBinary()
	} else {
		pt, err = p.readASCII()
	}
	if err != nil {
		return Point{}, err
	}

	p.read++
	return pt, nil
}

func (p *File) readBinary() (Point, error) {
	if _, err := io.ReadFull(p.r, p.recordBuf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Point{}, fmt.Errorf("%w: short read", ErrMalformedRecord)
		}
		return Point{}, err
	}

	var pt Point
	pt.X = p.binaryField(p.xIdx)
	pt.Y = p.binaryField(p.yIdx)
	pt.Z = p.binaryField(p.zIdx)

	if p.hasColor {
		pt.HasColor = true
		pt.Red = p.binaryColor(p.rIdx)
		pt.Green = p.binaryColor(p.gIdx)
		pt.Blue = p.binaryColor(p.bIdx)
	}

	return pt, nil
}

// binaryField decodes property i from the current record as float64.
func (p *File) binaryField(i int) float64 {
	buf := p.recordBuf[p.binaryFieldOffsets[i]:]
	switch p.header.Properties[i].Type {
	case typeInt8:
		return float64(int8(buf[0]))
	case typeUint8:
		return float64(buf[0])
	case typeInt16:
		return float64(int16(binary.LittleEndian.Uint16(buf)))
	case typeUint16:
		return float64(binary.LittleEndian.Uint16(buf))
	case typeInt32:
		return float64(int32(binary.LittleEndian.Uint32(buf)))
	case typeUint32:
		return float64(binary.LittleEndian.Uint32(buf))
	case typeFloat32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(buf)))
	default:
		return math.Float64frombits(binary.LittleEndian.Uint64(buf))
	}
}

// binaryColor decodes a color property, widening 8-bit channels to 16-bit.
func (p *File) binaryColor(i int) uint16 {
	v := p.binaryField(i)
	if p.header.Properties[i].Type == typeUint8 || p.header.Properties[i].Type == typeInt8 {
		return uint16(v) * 257
	}
	return uint16(v)
}

func (p *File) readASCII() (Point, error) {
	line, err := p.r.ReadString('\n')
	if err != nil && err != io.EOF {
		return Point{}, err
	}
	fields := strings.Fields(line)
	if len(fields) < len(p.header.Properties) {
		return Point{}, fmt.Errorf("%w: %d fields, want %d", ErrMalformedRecord, len(fields), len(p.header.Properties))
	}

	value := func(i int) (float64, error) {
		return strconv.ParseFloat(fields[i], 64)
	}

	var pt Point
	if pt.X, err = value(p.xIdx); err != nil {
		return Point{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if pt.Y, err = value(p.yIdx); err != nil {
		return Point{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if pt.Z, err = value(p.zIdx); err != nil {
		return Point{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	if p.hasColor {
		widen := func(i int) (uint16, error) {
			v, err := value(i)
			if err != nil {
				return 0, err
			}
			t := p.header.Properties[i].Type
			if t == typeUint8 || t == typeInt8 {
				return uint16(v) * 257, nil
			}
			return uint16(v), nil
		}

		pt.HasColor = true
		if pt.Red, err = widen(p.rIdx); err != nil {
			return Point{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		}
		if pt.Green, err = widen(p.gIdx); err != nil {
			return Point{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		}
		if pt.Blue, err = widen(p.bIdx); err != nil {
			return Point{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		}
	}

	return pt, nil
}
