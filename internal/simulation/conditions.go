package simulation

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrMalformedConditions is returned when the initial conditions cannot be read.
var ErrMalformedConditions = errors.New("malformed initial conditions")

// Physical constants used to rescale SI initial conditions.
const (
	SolarMass        = 1.989e30 // kg
	SolarGravParam   = 1.327e20 // G*Ms, m^3/s^2
	AstronomicalUnit = 1.496e11 // m
)

// LoadConditions reads the initial conditions file at path.
func LoadConditions(path string, siUnits bool) ([]Body, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open initial conditions %s: %w", path, err)
	}
	defer f.Close()

	bodies, err := ParseConditions(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if siUnits {
		bodies = FromSI(bodies)
	}
	return bodies, nil
}

// ParseConditions reads whitespace separated (mass, x, vy) triples, one body
// per triple. Every body starts on the x axis moving along y. Text after '#'
// is ignored.
func ParseConditions(r io.Reader) ([]Body, error) {
	var values []float64
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		for _, field := range strings.Fields(line) {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: line %d: invalid number %q", ErrMalformedConditions, lineNo, field)
			}
			values = append(values, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read initial conditions: %w", err)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrMalformedConditions, ErrNoBodies)
	}
	if len(values)%3 != 0 {
		return nil, fmt.Errorf("%w: %d values is not a whole number of (mass, x, vy) triples", ErrMalformedConditions, len(values))
	}

	bodies := make([]Body, 0, len(values)/3)
	for i := 0; i < len(values); i += 3 {
		if values[i] < 0 {
			return nil, fmt.Errorf("%w: body %d has negative mass", ErrMalformedConditions, i/3+1)
		}
		bodies = append(bodies, Body{
			Mass: values[i],
			Pos:  r2.Vec{X: values[i+1]},
			Vel:  r2.Vec{Y: values[i+2]},
		})
	}
	return bodies, nil
}

// FromSI converts bodies given in kg, m and m/s to solar masses, AU and
// rescaled velocity units.
func FromSI(bodies []Body) []Body {
	velocityUnit := math.Sqrt(SolarGravParam / AstronomicalUnit)
	out := make([]Body, len(bodies))
	for i, b := range bodies {
		out[i] = Body{
			Mass: b.Mass / SolarMass,
			Pos:  r2.Scale(1/AstronomicalUnit, b.Pos),
			Vel:  r2.Scale(1/velocityUnit, b.Vel),
		}
	}
	return out
}
