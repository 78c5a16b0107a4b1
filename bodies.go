package orrery

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	// AU is one astronomical unit in kilometers.
	AU = 1.49597870700e8
)

// ephemSource identifies where a body's position comes from. Exactly one
// source is valid per body; ValidateBodies enforces this at startup.
type ephemSource uint8

const (
	srcNone ephemSource = iota
	srcSun              // fixed at the heliocentric origin
	srcVSOP87           // tabulated planet, meeus/planetposition
	srcPluto            // meeus/pluto special case
	srcMoon             // geocentric lunar theory, offset from Earth
	srcGalilean         // E5 theory, offset from Jupiter
	srcElements         // Keplerian propagation of static elements
)

// CelestialBody defines a tracked body. Bodies are constructed once from the
// static tables below and are immutable afterwards; only display scale and
// visibility flags owned by the UI layer change at runtime.
type CelestialBody struct {
	Name           string
	Radius         float64 // km
	RotationPeriod float64 // sidereal days, negative for retrograde spin
	Color          colorful.Color
	Satellites     []*CelestialBody

	// MinMoonDistance is the innermost satellite's orbital radius in AU,
	// the reference for the moon-orbit expansion policy. Zero for moonless
	// bodies.
	MinMoonDistance float64

	// OrbitAU is the heliocentric semi-major axis in AU, used to size trail
	// sampling. Zero for the Sun and for satellites.
	OrbitAU float64

	src      ephemSource
	vsop     int // 0-based VSOP87 planet index, -1 when not tabulated
	galilean int // 0-based E5 moon index, -1 otherwise
	elements *OrbitalElements
	μ        float64 // km³/s², 0 when negligible for the barycenter
}

// GM returns μ (which is unexported because it's a lowercase letter).
func (b CelestialBody) GM() float64 {
	return b.μ
}

// Elements returns the body's orbital elements, or nil for tabulated bodies.
func (b CelestialBody) Elements() *OrbitalElements {
	return b.elements
}

// String implements the Stringer interface.
func (b CelestialBody) String() string {
	return b.Name + " body"
}

// IsSatellite returns whether the ephemeris yields a parent-relative offset
// instead of a heliocentric position for this body.
func (b CelestialBody) IsSatellite() bool {
	return b.src == srcMoon || b.src == srcGalilean
}

func mustColor(hex string) colorful.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		panic(fmt.Errorf("invalid body color %q: %s", hex, err))
	}
	return c
}

/* Definitions. Radii and GM from the usual JPL tables, colors are display-only. */

var Sun = &CelestialBody{Name: "Sun", Radius: 695700, RotationPeriod: 25.38,
	Color: mustColor("#FDB813"), src: srcSun, vsop: -1, galilean: -1, μ: 1.32712440017987e11}

var Mercury = &CelestialBody{Name: "Mercury", OrbitAU: 0.387098, Radius: 2439.7, RotationPeriod: 58.646,
	Color: mustColor("#B5B5B5"), src: srcVSOP87, vsop: 0, galilean: -1, μ: 2.2032e4}

var Venus = &CelestialBody{Name: "Venus", OrbitAU: 0.723332, Radius: 6051.8, RotationPeriod: -243.025,
	Color: mustColor("#E8CDA2"), src: srcVSOP87, vsop: 1, galilean: -1, μ: 3.24858599e5}

var Earth = &CelestialBody{Name: "Earth", OrbitAU: 1.000002, Radius: 6378.1363, RotationPeriod: 0.99726968,
	Color: mustColor("#2E86AB"), src: srcVSOP87, vsop: 2, galilean: -1, μ: 3.98600433e5,
	MinMoonDistance: 384400 / AU, Satellites: []*CelestialBody{Moon}}

var Moon = &CelestialBody{Name: "Moon", Radius: 1737.4, RotationPeriod: 27.321661,
	Color: mustColor("#C9C9C9"), src: srcMoon, vsop: -1, galilean: -1}

var Mars = &CelestialBody{Name: "Mars", OrbitAU: 1.523679, Radius: 3396.19, RotationPeriod: 1.02595676,
	Color: mustColor("#C1440E"), src: srcVSOP87, vsop: 3, galilean: -1, μ: 4.28283100e4}

var Jupiter = &CelestialBody{Name: "Jupiter", OrbitAU: 5.2044, Radius: 71492.0, RotationPeriod: 0.41354,
	Color: mustColor("#C8A97E"), src: srcVSOP87, vsop: 4, galilean: -1, μ: 1.266865361e8,
	MinMoonDistance: 421700 / AU,
	Satellites:      []*CelestialBody{Io, Europa, Ganymede, Callisto}}

var Io = &CelestialBody{Name: "Io", Radius: 1821.6, RotationPeriod: 1.769138,
	Color: mustColor("#D8B863"), src: srcGalilean, vsop: -1, galilean: 0}

var Europa = &CelestialBody{Name: "Europa", Radius: 1560.8, RotationPeriod: 3.551181,
	Color: mustColor("#B3A492"), src: srcGalilean, vsop: -1, galilean: 1}

var Ganymede = &CelestialBody{Name: "Ganymede", Radius: 2634.1, RotationPeriod: 7.154553,
	Color: mustColor("#8E8373"), src: srcGalilean, vsop: -1, galilean: 2}

var Callisto = &CelestialBody{Name: "Callisto", Radius: 2410.3, RotationPeriod: 16.689018,
	Color: mustColor("#6E675F"), src: srcGalilean, vsop: -1, galilean: 3}

var Saturn = &CelestialBody{Name: "Saturn", OrbitAU: 9.5826, Radius: 60268.0, RotationPeriod: 0.44401,
	Color: mustColor("#E3D0A5"), src: srcVSOP87, vsop: 5, galilean: -1, μ: 3.7931208e7}

var Uranus = &CelestialBody{Name: "Uranus", OrbitAU: 19.2184, Radius: 25559.0, RotationPeriod: -0.71833,
	Color: mustColor("#9FD6D2"), src: srcVSOP87, vsop: 6, galilean: -1, μ: 5.7939513e6}

var Neptune = &CelestialBody{Name: "Neptune", OrbitAU: 30.07, Radius: 24764.0, RotationPeriod: 0.67125,
	Color: mustColor("#4F6FB6"), src: srcVSOP87, vsop: 7, galilean: -1, μ: 6.836529e6}

// Pluto is not a planet and had that down ranking coming, but its meeus theory
// is still more precise than element propagation.
var Pluto = &CelestialBody{Name: "Pluto", OrbitAU: 39.482, Radius: 1188.3, RotationPeriod: -6.38718,
	Color: mustColor("#C5AB8E"), src: srcPluto, vsop: -1, galilean: -1, μ: 9e2}

/* Dwarf planets carried as Keplerian elements (J2000, degrees, AU). */

var Ceres = &CelestialBody{Name: "Ceres", OrbitAU: 2.7675, Radius: 469.7, RotationPeriod: 0.37809,
	Color: mustColor("#9B9B8F"), src: srcElements, vsop: -1, galilean: -1,
	elements: Elements(2.7675, 0.07582, 10.594, 80.327, 72.522, 95.989)}

var Haumea = &CelestialBody{Name: "Haumea", OrbitAU: 43.335, Radius: 816.0, RotationPeriod: 0.16314,
	Color: mustColor("#D7D7DE"), src: srcElements, vsop: -1, galilean: -1,
	elements: Elements(43.335, 0.19126, 28.19, 121.9, 238.778, 205.22)}

var Makemake = &CelestialBody{Name: "Makemake", OrbitAU: 45.792, Radius: 715.0, RotationPeriod: 0.95417,
	Color: mustColor("#C8A988"), src: srcElements, vsop: -1, galilean: -1,
	elements: Elements(45.792, 0.15586, 29.006, 79.62, 294.834, 165.514)}

var Eris = &CelestialBody{Name: "Eris", OrbitAU: 67.781, Radius: 1163.0, RotationPeriod: 1.079167,
	Color: mustColor("#DBDBDB"), src: srcElements, vsop: -1, galilean: -1,
	elements: Elements(67.781, 0.44068, 44.04, 35.951, 151.639, 204.16)}

// SolarSystem returns the top-level tracked bodies in display order. Satellites
// hang off their parents.
func SolarSystem() []*CelestialBody {
	return []*CelestialBody{Sun, Mercury, Venus, Earth, Mars, Jupiter, Saturn,
		Uranus, Neptune, Pluto, Ceres, Haumea, Makemake, Eris}
}

// BodyFromString returns the body from its name.
func BodyFromString(name string) (*CelestialBody, error) {
	for _, b := range SolarSystem() {
		if strings.EqualFold(b.Name, name) {
			return b, nil
		}
		for _, sat := range b.Satellites {
			if strings.EqualFold(sat.Name, name) {
				return sat, nil
			}
		}
	}
	return nil, fmt.Errorf("undefined body '%s'", name)
}

// ValidateBodies checks the configuration invariants of a body table: unique
// names, exactly one position source per body, valid elements, in-range
// ephemeris indices. A body that fails here would otherwise be silently
// misplaced or skipped at render time, so this runs once at startup and any
// error is fatal to construction.
func ValidateBodies(bodies []*CelestialBody) error {
	seen := make(map[string]bool)
	var walk func(b *CelestialBody) error
	walk = func(b *CelestialBody) error {
		if b.Name == "" {
			return fmt.Errorf("body with empty name")
		}
		if seen[b.Name] {
			return fmt.Errorf("duplicate body '%s'", b.Name)
		}
		seen[b.Name] = true
		switch b.src {
		case srcNone:
			return fmt.Errorf("body '%s' has neither an ephemeris reference nor orbital elements", b.Name)
		case srcVSOP87:
			if b.vsop < 0 || b.vsop > 7 {
				return fmt.Errorf("body '%s' has VSOP87 index %d out of range", b.Name, b.vsop)
			}
		case srcGalilean:
			if b.galilean < 0 || b.galilean > 3 {
				return fmt.Errorf("body '%s' has Galilean index %d out of range", b.Name, b.galilean)
			}
		case srcElements:
			if b.elements == nil {
				return fmt.Errorf("body '%s' declared as element-propagated but has no elements", b.Name)
			}
		}
		if b.src != srcElements && b.elements != nil {
			return fmt.Errorf("body '%s' has both an ephemeris reference and orbital elements", b.Name)
		}
		if b.elements != nil {
			if err := b.elements.Validate(); err != nil {
				return fmt.Errorf("body '%s': %s", b.Name, err)
			}
		}
		if len(b.Satellites) > 0 && b.MinMoonDistance <= 0 {
			return fmt.Errorf("body '%s' has satellites but no minimum moon distance", b.Name)
		}
		for _, sat := range b.Satellites {
			if !sat.IsSatellite() {
				return fmt.Errorf("body '%s' listed as a satellite of '%s' but is not parent-relative", sat.Name, b.Name)
			}
			if sat.RotationPeriod == 0 {
				// Tidally locked moons reuse the spin period as the
				// orbital period for trail sampling.
				return fmt.Errorf("satellite '%s' has no rotation period to derive its orbit from", sat.Name)
			}
			if err := walk(sat); err != nil {
				return err
			}
		}
		return nil
	}
	for _, b := range bodies {
		if b.IsSatellite() {
			return fmt.Errorf("satellite '%s' listed at the top level", b.Name)
		}
		if err := walk(b); err != nil {
			return err
		}
	}
	return nil
}
