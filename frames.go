package orrery

import (
	"fmt"
	"strings"
	"time"

	"github.com/gonum/matrix/mat64"
)

// meanObliquity is the fixed mean obliquity of the ecliptic, in degrees.
const meanObliquity = 23.43928

// System selects the center of the displayed reference frame.
type System uint8

const (
	// Heliocentric keeps the Sun at the origin.
	Heliocentric System = iota
	// Geocentric subtracts Earth's heliocentric position.
	Geocentric
	// Barycentric subtracts the solar-system barycenter.
	Barycentric
	// Tychonic renders Earth-centered with the Sun (and its planets)
	// orbiting Earth; the subtraction is the same as Geocentric.
	Tychonic
)

// String implements the Stringer interface.
func (s System) String() string {
	switch s {
	case Heliocentric:
		return "heliocentric"
	case Geocentric:
		return "geocentric"
	case Barycentric:
		return "barycentric"
	case Tychonic:
		return "tychonic"
	}
	return "unknown"
}

// SystemFromString returns the coordinate system from its name.
func SystemFromString(name string) (System, error) {
	switch strings.ToLower(name) {
	case "heliocentric":
		return Heliocentric, nil
	case "geocentric":
		return Geocentric, nil
	case "barycentric":
		return Barycentric, nil
	case "tychonic":
		return Tychonic, nil
	default:
		return Heliocentric, fmt.Errorf("undefined coordinate system '%s'", name)
	}
}

// Plane selects the reference plane the whole assembly is rotated into.
type Plane uint8

const (
	// Equatorial applies no rotation.
	Equatorial Plane = iota
	// Ecliptic rotates the root by the mean obliquity so the ecliptic
	// plane sits level.
	Ecliptic
)

// String implements the Stringer interface.
func (p Plane) String() string {
	if p == Ecliptic {
		return "ecliptic"
	}
	return "equatorial"
}

// PlaneFromString returns the reference plane from its name.
func PlaneFromString(name string) (Plane, error) {
	switch strings.ToLower(name) {
	case "equatorial":
		return Equatorial, nil
	case "ecliptic":
		return Ecliptic, nil
	default:
		return Equatorial, fmt.Errorf("undefined reference plane '%s'", name)
	}
}

// Transformer converts heliocentric positions into the selected display
// frame. The reference-plane rotation is global and therefore exposed for the
// root node, not applied per body.
type Transformer struct {
	src PositionSource

	// Every body in a frame shares the same center of reference, so one
	// evaluation per (system, date) covers them all.
	ctrSys   System
	ctrDate  time.Time
	ctrValid bool
	ctr      []float64
}

// NewTransformer returns a transformer backed by the given position source.
func NewTransformer(src PositionSource) *Transformer {
	return &Transformer{src: src}
}

// Center returns the position of the frame's center of reference at dt, in
// heliocentric scene coordinates (AU).
func (t *Transformer) Center(sys System, dt time.Time) []float64 {
	if sys == Heliocentric {
		return []float64{0, 0, 0}
	}
	if t.ctrValid && t.ctrSys == sys && t.ctrDate.Equal(dt) {
		return t.ctr
	}
	switch sys {
	case Geocentric, Tychonic:
		t.ctr = t.src.EarthPosition(dt)
	case Barycentric:
		t.ctr = t.src.Barycenter(dt)
	}
	t.ctrSys, t.ctrDate, t.ctrValid = sys, dt, true
	return t.ctr
}

// Display converts a heliocentric position (AU, scene axes) to the display
// position in the selected system. Heliocentric is the identity.
func (t *Transformer) Display(helio []float64, sys System, dt time.Time) []float64 {
	if sys == Heliocentric {
		return helio
	}
	return sub(helio, t.Center(sys, dt))
}

// RootRotation returns the root-node rotation for the selected plane: identity
// for Equatorial, a rotation by the mean obliquity about the scene X axis for
// Ecliptic.
func (t *Transformer) RootRotation(plane Plane) *mat64.Dense {
	if plane == Ecliptic {
		return R1(Deg2rad(meanObliquity))
	}
	return mat64.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
}
