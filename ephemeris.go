package orrery

import (
	"fmt"
	"math"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/soniakeys/meeus/julian"
	"github.com/soniakeys/meeus/jupitermoons"
	"github.com/soniakeys/meeus/moonposition"
	"github.com/soniakeys/meeus/planetposition"
	"github.com/soniakeys/meeus/pluto"
)

// PositionSource supplies body positions for a given date. Positions are in AU
// in the scene axis convention. Satellites (Earth's Moon, the Galilean moons)
// yield offsets from their parent body, not standalone heliocentric vectors;
// callers must add the parent's position.
type PositionSource interface {
	Position(b *CelestialBody, dt time.Time) []float64
	EarthPosition(dt time.Time) []float64
	Barycenter(dt time.Time) []float64
}

// Ephemeris wraps the meeus tabulated theories (VSOP87 planets, Pluto, lunar,
// Galilean E5) and falls back to Keplerian propagation for element bodies.
// All axis-convention knowledge lives here: meeus returns ecliptic-frame
// vectors, the scene wants scene-X = ecliptic-X, scene-Y = ecliptic-Z,
// scene-Z = -ecliptic-Y.
type Ephemeris struct {
	dir    string
	bodies []*CelestialBody
	logger kitlog.Logger

	planets [8]*planetposition.V87Planet

	// One E5 evaluation yields all four Galilean moons; cache it for the
	// frame so four Position calls cost one theory evaluation.
	galJDE float64
	galPos [4][]float64
}

// NewEphemeris returns a provider reading VSOP87 series from dir.
func NewEphemeris(dir string, bodies []*CelestialBody, logger kitlog.Logger) *Ephemeris {
	return &Ephemeris{dir: dir, bodies: bodies, logger: kitlog.With(logger, "component", "ephemeris"), galJDE: math.NaN()}
}

// Warmup loads every VSOP87 series the body table needs. Configuration
// problems (missing data files, unknown sources) surface here, at startup,
// never at per-frame call time.
func (e *Ephemeris) Warmup() error {
	var load func(b *CelestialBody) error
	load = func(b *CelestialBody) error {
		switch b.src {
		case srcVSOP87:
			if _, err := e.planet(b.vsop); err != nil {
				return fmt.Errorf("body '%s': %s", b.Name, err)
			}
		case srcMoon:
			// Needs Earth for the heliocentric sum done by the caller.
			if _, err := e.planet(Earth.vsop); err != nil {
				return err
			}
		case srcGalilean:
			// E5 needs both Earth and Jupiter series.
			if _, err := e.planet(Earth.vsop); err != nil {
				return err
			}
			if _, err := e.planet(Jupiter.vsop); err != nil {
				return err
			}
		}
		for _, sat := range b.Satellites {
			if err := load(sat); err != nil {
				return err
			}
		}
		return nil
	}
	for _, b := range e.bodies {
		if err := load(b); err != nil {
			return err
		}
	}
	return nil
}

func (e *Ephemeris) planet(idx int) (*planetposition.V87Planet, error) {
	if e.planets[idx] != nil {
		return e.planets[idx], nil
	}
	planet, err := planetposition.LoadPlanetPath(idx, e.dir)
	if err != nil {
		return nil, fmt.Errorf("could not load VSOP87 planet %d from %s: %s", idx, e.dir, err)
	}
	e.planets[idx] = planet
	return planet, nil
}

// Position implements PositionSource. Unknown sources are a configuration
// error that ValidateBodies rejects at startup, hence the panic.
func (e *Ephemeris) Position(b *CelestialBody, dt time.Time) []float64 {
	jde := julian.TimeToJD(dt.UTC())
	switch b.src {
	case srcSun:
		return []float64{0, 0, 0}
	case srcVSOP87:
		planet, err := e.planet(b.vsop)
		if err != nil {
			panic(err)
		}
		l, lat, r := planet.Position2000(jde)
		return sceneVec(lbr2Cartesian(l.Rad(), lat.Rad(), r))
	case srcPluto:
		l, lat, r := pluto.Heliocentric(jde)
		return sceneVec(lbr2Cartesian(l.Rad(), lat.Rad(), r))
	case srcMoon:
		λ, β, Δ := moonposition.Position(jde)
		return sceneVec(lbr2Cartesian(λ.Rad(), β.Rad(), Δ/AU))
	case srcGalilean:
		return e.galilean(b.galilean, jde)
	case srcElements:
		return sceneVec(b.elements.Position(dt))
	}
	panic(fmt.Errorf("body '%s' has no position source", b.Name))
}

// EarthPosition implements PositionSource.
func (e *Ephemeris) EarthPosition(dt time.Time) []float64 {
	return e.Position(Earth, dt)
}

// Barycenter implements PositionSource. The solar-system barycenter is the
// GM-weighted mean of the Sun and the tabulated planets; element bodies carry
// negligible mass and are excluded.
func (e *Ephemeris) Barycenter(dt time.Time) []float64 {
	bary := []float64{0, 0, 0}
	total := 0.0
	for _, b := range e.bodies {
		if b.μ == 0 {
			continue
		}
		total += b.μ
		if b.src == srcSun {
			continue // at the origin, contributes only mass
		}
		bary = add(bary, scale(e.Position(b, dt), b.μ))
	}
	if total == 0 {
		return bary
	}
	return scale(bary, 1/total)
}

// galilean returns the offset of moon m from Jupiter at jde, evaluating the
// batch E5 theory once per date.
func (e *Ephemeris) galilean(m int, jde float64) []float64 {
	if jde != e.galJDE {
		earth, err := e.planet(Earth.vsop)
		if err != nil {
			panic(err)
		}
		jupiter, err := e.planet(Jupiter.vsop)
		if err != nil {
			panic(err)
		}
		var pos [4]jupitermoons.XYZ
		jupitermoons.E5(jde, earth, jupiter, &pos)
		// E5 positions are apparent offsets in units of Jupiter's
		// equatorial radius, in Jupiter's equatorial frame. The ~6°
		// tilt of that frame against the ecliptic is ignored; at
		// display scale the error is below a moon radius.
		rj := Jupiter.Radius / AU
		for i, p := range pos {
			e.galPos[i] = sceneVec([]float64{p.X * rj, p.Y * rj, p.Z * rj})
		}
		e.galJDE = jde
	}
	return e.galPos[m]
}

// lbr2Cartesian converts ecliptic spherical coordinates (longitude and
// latitude in radians, range in AU) to Cartesian AU. Latitude is measured
// from the ecliptic, so it becomes a colatitude here.
func lbr2Cartesian(l, b, r float64) []float64 {
	return Spherical2Cartesian([]float64{r, math.Pi/2 - b, l})
}

// sceneVec reorders an ecliptic-frame vector into the scene axis convention.
func sceneVec(ecl []float64) []float64 {
	return []float64{ecl[0], ecl[2], -ecl[1]}
}
