package sink

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"pkg.jsn.cam/pointgen/pkg/pointgen"
)

const csvHeader = "x,y,z\n"

// CSV writes one "x,y,z" line per point after a header line
type CSV struct {
	w       *bufio.Writer
	closers []io.Closer
	buf     []byte
	count   int64
	closed  bool
}

// NewCSV writes the header to w and returns a sink appending lines to it.
// Close flushes but does not close w.
func NewCSV(w io.Writer) (*CSV, error) {
	c := &CSV{w: bufio.NewWriterSize(w, 64*1024), buf: make([]byte, 0, 80)}
	if _, err := c.w.WriteString(csvHeader); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateCSV creates path and returns a CSV sink writing to it.
// Paths ending in ".zst" are zstd-compressed.
func CreateCSV(path string) (*CSV, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create csv: %w", err)
	}

	var w io.Writer = f
	closers := []io.Closer{f}
	if strings.HasSuffix(path, ".zst") {
		enc, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("create zstd writer: %w", err)
		}
		w = enc
		// Encoder must close before the file
		closers = []io.Closer{enc, f}
	}

	c, err := NewCSV(w)
	if err != nil {
		f.Close()
		return nil, err
	}
	c.closers = closers
	return c, nil
}

// Append writes p as one CSV line
func (c *CSV) Append(p pointgen.Point) error {
	if c.closed {
		return ErrSinkClosed
	}

	b := strconv.AppendFloat(c.buf[:0], p.X, 'g', -1, 64)
	b = append(b, ',')
	b = strconv.AppendFloat(b, p.Y, 'g', -1, 64)
	b = append(b, ',')
	b = strconv.AppendFloat(b, p.Z, 'g', -1, 64)
	b = append(b, '\n')
	c.buf = b

	if _, err := c.w.Write(b); err != nil {
		return err
	}
	c.count++
	return nil
}

// Count returns the number of points written
func (c *CSV) Count() int64 {
	return c.count
}

// Close flushes buffered lines and closes anything CreateCSV opened
func (c *CSV) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	err := c.w.Flush()
	for _, closer := range c.closers {
		if cerr := closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// ReadCSV parses points written by a CSV sink
func ReadCSV(r io.Reader) ([]pointgen.Point, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: missing header", ErrMalformedCSV)
	}
	if scanner.Text()+"\n" != csvHeader {
		return nil, fmt.Errorf("%w: unexpected header %q", ErrMalformedCSV, scanner.Text())
	}

	var points []pointgen.Point
	line := 1
	for scanner.Scan() {
		line++
		fields := strings.Split(scanner.Text(), ",")
		if len(fields) != 3 {
			return nil, fmt.Errorf("%w: line %d has %d fields", ErrMalformedCSV, line, len(fields))
		}

		var xyz [3]float64
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedCSV, line, err)
			}
			xyz[i] = v
		}
		points = append(points, pointgen.Point{X: xyz[0], Y: xyz[1], Z: xyz[2]})
	}

	return points, scanner.Err()
}

// ReadCSVFile reads a CSV sink file, decompressing ".zst" paths
func ReadCSVFile(path string) ([]pointgen.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if !strings.HasSuffix(path, ".zst") {
		return ReadCSV(f)
	}

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer dec.Close()
	return ReadCSV(dec)
}
