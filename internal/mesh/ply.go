package mesh

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
)

type plyFormat int

// maxPrealloc caps slice capacity taken from header counts. Longer
// elements grow as rows are read.
const maxPrealloc = 1 << 16

const (
	plyASCII plyFormat = iota
	plyBinaryLE
	plyBinaryBE
)

type plyProperty struct {
	name      string
	typ       string
	list      bool
	countType string
}

type plyElement struct {
	name  string
	count int
	props []plyProperty
}

func (e *plyElement) index(name string) int {
	for i, p := range e.props {
		if p.name == name {
			return i
		}
	}
	return -1
}

// ReadPLY reads a PLY file holding vertices with normals and an edge element.
func ReadPLY(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ply: read %s: %w", path, err)
	}
	defer f.Close()

	m, err := DecodePLY(f)
	if err != nil {
		return nil, fmt.Errorf("%w (in %s)", err, path)
	}
	return m, nil
}

// DecodePLY parses PLY data in ascii, binary_little_endian or
// binary_big_endian format. Vertices need x, y, z, nx, ny, nz; edges need
// vertex1, vertex2. Any other element is skipped.
func DecodePLY(r io.Reader) (*Mesh, error) {
	br := bufio.NewReader(r)
	format, elements, err := readPLYHeader(br)
	if err != nil {
		return nil, err
	}

	var vr valueReader
	switch format {
	case plyASCII:
		sc := bufio.NewScanner(br)
		sc.Split(bufio.ScanWords)
		vr = &asciiReader{sc: sc}
	case plyBinaryLE:
		vr = &binaryReader{r: br, order: binary.LittleEndian}
	case plyBinaryBE:
		vr = &binaryReader{r: br, order: binary.BigEndian}
	}

	m := &Mesh{}
	for i := range elements {
		el := &elements[i]
		switch el.name {
		case "vertex":
			if err := readVertices(vr, el, m); err != nil {
				return nil, err
			}
		case "edge":
			if err := readEdges(vr, el, m); err != nil {
				return nil, err
			}
		default:
			if err := skipElement(vr, el); err != nil {
				return nil, err
			}
		}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func readPLYHeader(br *bufio.Reader) (plyFormat, []plyElement, error) {
	magic, err := br.ReadString('\n')
	if err != nil || strings.TrimSpace(magic) != "ply" {
		return 0, nil, fmt.Errorf("ply: invalid header")
	}

	var (
		format    plyFormat
		haveFmt   bool
		elements  []plyElement
		endHeader bool
	)
	for !endHeader {
		line, err := br.ReadString('\n')
		if err != nil {
			return 0, nil, fmt.Errorf("ply: truncated header: %w", err)
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "format":
			if len(fields) < 3 {
				return 0, nil, fmt.Errorf("ply: bad format line %q", strings.TrimSpace(line))
			}
			switch fields[1] {
			case "ascii":
				format = plyASCII
			case "binary_little_endian":
				format = plyBinaryLE
			case "binary_big_endian":
				format = plyBinaryBE
			default:
				return 0, nil, fmt.Errorf("ply: unknown format %q", fields[1])
			}
			haveFmt = true
		case "comment", "obj_info":
		case "element":
			if len(fields) != 3 {
				return 0, nil, fmt.Errorf("ply: bad element line %q", strings.TrimSpace(line))
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil || n < 0 {
				return 0, nil, fmt.Errorf("ply: bad element count %q", fields[2])
			}
			elements = append(elements, plyElement{name: fields[1], count: n})
		case "property":
			if len(elements) == 0 {
				return 0, nil, fmt.Errorf("ply: property before element")
			}
			el := &elements[len(elements)-1]
			var p plyProperty
			if len(fields) == 5 && fields[1] == "list" {
				p = plyProperty{name: fields[4], typ: fields[3], list: true, countType: fields[2]}
				if _, ok := plySize(p.countType); !ok {
					return 0, nil, fmt.Errorf("ply: unknown type %q", p.countType)
				}
			} else if len(fields) == 3 {
				p = plyProperty{name: fields[2], typ: fields[1]}
			} else {
				return 0, nil, fmt.Errorf("ply: bad property line %q", strings.TrimSpace(line))
			}
			if _, ok := plySize(p.typ); !ok {
				return 0, nil, fmt.Errorf("ply: unknown type %q", p.typ)
			}
			el.props = append(el.props, p)
		case "end_header":
			endHeader = true
		default:
			return 0, nil, fmt.Errorf("ply: unexpected header keyword %q", fields[0])
		}
	}
	if !haveFmt {
		return 0, nil, fmt.Errorf("ply: missing format line")
	}
	return format, elements, nil
}

func readVertices(vr valueReader, el *plyElement, m *Mesh) error {
	var idx [6]int
	for i, name := range []string{"x", "y", "z", "nx", "ny", "nz"} {
		idx[i] = el.index(name)
	}
	if idx[0] < 0 || idx[1] < 0 || idx[2] < 0 {
		return fmt.Errorf("ply: vertex element lacks x/y/z")
	}
	if idx[3] < 0 || idx[4] < 0 || idx[5] < 0 {
		return fmt.Errorf("ply: %w", ErrMissingNormals)
	}

	m.Vertices = make([]Vertex, 0, min(el.count, maxPrealloc))
	row := make([]float64, len(el.props))
	for v := 0; v < el.count; v++ {
		if err := readRow(vr, el, row); err != nil {
			return fmt.Errorf("ply: vertex %d: %w", v, err)
		}
		m.Vertices = append(m.Vertices, Vertex{
			Position: r3.Vector{X: row[idx[0]], Y: row[idx[1]], Z: row[idx[2]]},
			Normal:   r3.Vector{X: row[idx[3]], Y: row[idx[4]], Z: row[idx[5]]},
		})
	}
	return nil
}

func readEdges(vr valueReader, el *plyElement, m *Mesh) error {
	a, b := el.index("vertex1"), el.index("vertex2")
	if a < 0 || b < 0 {
		return fmt.Errorf("ply: edge element lacks vertex1/vertex2")
	}

	m.Edges = make([]Edge, 0, min(el.count, maxPrealloc))
	row := make([]float64, len(el.props))
	for e := 0; e < el.count; e++ {
		if err := readRow(vr, el, row); err != nil {
			return fmt.Errorf("ply: edge %d: %w", e, err)
		}
		if !wholeIndex(row[a]) || !wholeIndex(row[b]) {
			return fmt.Errorf("ply: edge %d (%g-%g): %w", e, row[a], row[b], ErrEdgeIndex)
		}
		m.Edges = append(m.Edges, Edge{int(row[a]), int(row[b])})
	}
	return nil
}

// wholeIndex reports whether v is an integer that fits a vertex index.
func wholeIndex(v float64) bool {
	return v == math.Trunc(v) && math.Abs(v) <= math.MaxInt32
}

func skipElement(vr valueReader, el *plyElement) error {
	row := make([]float64, len(el.props))
	for i := 0; i < el.count; i++ {
		if err := readRow(vr, el, row); err != nil {
			return fmt.Errorf("ply: %s %d: %w", el.name, i, err)
		}
	}
	return nil
}

// readRow reads one element instance. List properties are consumed and
// recorded as their length.
func readRow(vr valueReader, el *plyElement, row []float64) error {
	for i, p := range el.props {
		if !p.list {
			v, err := vr.read(p.typ)
			if err != nil {
				return err
			}
			row[i] = v
			continue
		}
		n, err := vr.read(p.countType)
		if err != nil {
			return err
		}
		for k := 0; k < int(n); k++ {
			if _, err := vr.read(p.typ); err != nil {
				return err
			}
		}
		row[i] = n
	}
	return nil
}

func plySize(typ string) (int, bool) {
	switch typ {
	case "char", "int8", "uchar", "uint8":
		return 1, true
	case "short", "int16", "ushort", "uint16":
		return 2, true
	case "int", "int32", "uint", "uint32", "float", "float32":
		return 4, true
	case "double", "float64":
		return 8, true
	}
	return 0, false
}

type valueReader interface {
	read(typ string) (float64, error)
}

type asciiReader struct {
	sc *bufio.Scanner
}

func (a *asciiReader) read(string) (float64, error) {
	if !a.sc.Scan() {
		if err := a.sc.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	return strconv.ParseFloat(a.sc.Text(), 64)
}

type binaryReader struct {
	r     io.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (b *binaryReader) read(typ string) (float64, error) {
	n, _ := plySize(typ)
	if _, err := io.ReadFull(b.r, b.buf[:n]); err != nil {
		return 0, err
	}
	d := b.buf[:n]
	switch typ {
	case "char", "int8":
		return float64(int8(d[0])), nil
	case "uchar", "uint8":
		return float64(d[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(d))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(d)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(d))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(d)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(d))), nil
	default:
		return math.Float64frombits(b.order.Uint64(d)), nil
	}
}
