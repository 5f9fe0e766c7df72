package simulation

// Planar N-body integrator (velocity Verlet).
// Positions are in AU, masses in solar masses and time is rescaled by
// sqrt(G*Ms/AU^3), so G = 1 and one orbit at 1 AU takes 2*pi.

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

var (
	ErrNoBodies         = errors.New("no bodies")
	ErrCoincidentBodies = errors.New("bodies share a position")
)

// Body is one mass point of the system.
type Body struct {
	Mass float64
	Pos  r2.Vec
	Vel  r2.Vec
}

// System advances a set of bodies with a fixed step.
type System struct {
	bodies []Body
	acc    []r2.Vec
	next   []r2.Vec
	step   float64
	steps  int
}

// NewSystem copies bodies and computes their initial accelerations.
func NewSystem(bodies []Body, step float64) (*System, error) {
	if len(bodies) == 0 {
		return nil, ErrNoBodies
	}
	if !(step > 0) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("invalid step %v: must be positive", step)
	}
	for i := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			if bodies[i].Pos == bodies[j].Pos {
				return nil, fmt.Errorf("%w: bodies %d and %d", ErrCoincidentBodies, i+1, j+1)
			}
		}
	}

	s := &System{
		bodies: append([]Body(nil), bodies...),
		acc:    make([]r2.Vec, len(bodies)),
		next:   make([]r2.Vec, len(bodies)),
		step:   step,
	}
	s.accelerations(s.acc)
	return s, nil
}

// accelerations writes the gravitational acceleration of every body to dst.
func (s *System) accelerations(dst []r2.Vec) {
	for i := range dst {
		dst[i] = r2.Vec{}
	}
	for i := range s.bodies {
		for j := i + 1; j < len(s.bodies); j++ {
			d := r2.Sub(s.bodies[i].Pos, s.bodies[j].Pos)
			dist2 := r2.Norm2(d)
			inv := 1 / (dist2 * math.Sqrt(dist2))
			dst[i] = r2.Add(dst[i], r2.Scale(-s.bodies[j].Mass*inv, d))
			dst[j] = r2.Add(dst[j], r2.Scale(s.bodies[i].Mass*inv, d))
		}
	}
}

// Step advances the system by one time step.
func (s *System) Step() {
	h := s.step
	for i := range s.bodies {
		b := &s.bodies[i]
		b.Pos = r2.Add(b.Pos, r2.Add(r2.Scale(h, b.Vel), r2.Scale(h*h/2, s.acc[i])))
	}

	s.accelerations(s.next)
	for i := range s.bodies {
		b := &s.bodies[i]
		b.Vel = r2.Add(b.Vel, r2.Scale(h/2, r2.Add(s.acc[i], s.next[i])))
	}

	s.acc, s.next = s.next, s.acc
	s.steps++
}

// Time returns the elapsed simulation time.
func (s *System) Time() float64 {
	return float64(s.steps) * s.step
}

// Energy returns the total kinetic plus gravitational potential energy.
func (s *System) Energy() float64 {
	var kinetic, potential float64
	for i, b := range s.bodies {
		kinetic += 0.5 * b.Mass * r2.Norm2(b.Vel)
		for j := i + 1; j < len(s.bodies); j++ {
			potential -= b.Mass * s.bodies[j].Mass / r2.Norm(r2.Sub(b.Pos, s.bodies[j].Pos))
		}
	}
	return kinetic + potential
}

// Bodies returns a copy of the current state.
func (s *System) Bodies() []Body {
	return append([]Body(nil), s.bodies...)
}
