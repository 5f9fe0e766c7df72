package dataset

// Loader for the two-column energy table written by the orbit simulator.
// Column 0 is time, column 1 is total energy. Extra columns are ignored.

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

var (
	// ErrInputNotFound is returned when the data file does not exist.
	ErrInputNotFound = errors.New("input file not found")
	// ErrMalformedInput is returned for non-numeric values, ragged rows,
	// fewer than two columns or a file without data rows.
	ErrMalformedInput = errors.New("malformed input")
)

const minColumns = 2

// Dataset holds the time and energy series, paired by row index.
type Dataset struct {
	Time   []float64
	Energy []float64
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Time)
}

// Load reads the table at path.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer f.Close()

	ds, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return ds, nil
}

// Parse reads whitespace separated rows from r. Blank lines and anything after
// a '#' are skipped. All data rows must have the same column count. NaN and
// Inf values are rejected as malformed input rather than drawn as gaps.
func Parse(r io.Reader) (*Dataset, error) {
	ds := &Dataset{}
	columns := 0
	lineNo := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		if columns == 0 {
			columns = len(fields)
			if columns < minColumns {
				return nil, fmt.Errorf("%w: line %d has %d column, need at least %d", ErrMalformedInput, lineNo, columns, minColumns)
			}
		} else if len(fields) != columns {
			return nil, fmt.Errorf("%w: line %d has %d columns, expected %d", ErrMalformedInput, lineNo, len(fields), columns)
		}

		t, err := parseValue(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d column 1: %v", ErrMalformedInput, lineNo, err)
		}
		e, err := parseValue(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d column 2: %v", ErrMalformedInput, lineNo, err)
		}
		for i := minColumns; i < len(fields); i++ {
			if _, err := parseValue(fields[i]); err != nil {
				return nil, fmt.Errorf("%w: line %d column %d: %v", ErrMalformedInput, lineNo, i+1, err)
			}
		}

		ds.Time = append(ds.Time, t)
		ds.Energy = append(ds.Energy, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	if ds.Len() == 0 {
		return nil, fmt.Errorf("%w: no data rows", ErrMalformedInput)
	}
	return ds, nil
}

func parseValue(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not finite", s)
	}
	return v, nil
}
