package orrery

import (
	"fmt"
	"math"
	"time"
)

const (
	// gaussianN is the Earth-calibrated Gaussian mean motion for a 1 AU orbit,
	// in degrees per day.
	gaussianN = 0.9856076686
	// keplerε is the Newton-Raphson cutoff on the eccentric anomaly correction,
	// in radians.
	keplerε = 1e-6
	// keplerMaxIter caps the Newton-Raphson iterations. There is no failure
	// path: past the cap the best estimate is returned, which is a documented
	// precision limit for the near-circular orbits of this system.
	keplerMaxIter = 10
)

// J2000 is the default reference epoch for orbital elements.
var J2000 = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

// SolveKepler solves Kepler's equation M = E - e*sin(E) for the eccentric
// anomaly E via Newton-Raphson, starting from E=M. M is in radians and the
// orbit must be elliptical (0 <= e < 1).
func SolveKepler(M, e float64) float64 {
	E := M
	for iter := 0; iter < keplerMaxIter; iter++ {
		δ := (E - e*math.Sin(E) - M) / (1 - e*math.Cos(E))
		E -= δ
		if math.Abs(δ) < keplerε {
			break
		}
	}
	return E
}

// OrbitalElements defines a heliocentric elliptical orbit: semi-major axis in
// AU, angles in degrees, mean anomaly referenced to the epoch.
type OrbitalElements struct {
	a, e, i, Ω, ω, M0 float64
	epoch             time.Time
}

// Elements returns the orbital elements for the provided semi-major axis (AU),
// eccentricity, inclination, longitude of the ascending node, argument of
// periapsis and mean anomaly at epoch (all four in degrees), at the J2000 epoch.
func Elements(a, e, i, Ω, ω, M0 float64) *OrbitalElements {
	return ElementsAtEpoch(a, e, i, Ω, ω, M0, J2000)
}

// ElementsAtEpoch is Elements with an explicit reference epoch.
func ElementsAtEpoch(a, e, i, Ω, ω, M0 float64, epoch time.Time) *OrbitalElements {
	if epoch.IsZero() {
		epoch = J2000
	}
	return &OrbitalElements{a: a, e: e, i: i, Ω: Ω, ω: ω, M0: M0, epoch: epoch.UTC()}
}

// Validate checks the elliptical-orbit invariants.
func (oe OrbitalElements) Validate() error {
	if oe.a <= 0 {
		return fmt.Errorf("semi-major axis must be positive, got %f", oe.a)
	}
	if oe.e < 0 || oe.e >= 1 {
		return fmt.Errorf("only elliptical orbits supported, got e=%f", oe.e)
	}
	return nil
}

// SemiMajorAxis returns the semi-major axis in AU.
func (oe OrbitalElements) SemiMajorAxis() float64 {
	return oe.a
}

// MeanMotion returns the mean motion in degrees per day.
func (oe OrbitalElements) MeanMotion() float64 {
	return gaussianN / math.Pow(oe.a, 1.5)
}

// Period returns the orbital period in days. A time.Duration caps at about
// 292 years, which the outer dwarf planets exceed, so the period is never held
// in one.
func (oe OrbitalElements) Period() float64 {
	return 360 / oe.MeanMotion()
}

// Position returns the heliocentric ecliptic-aligned Cartesian position in AU
// at the provided date. Deterministic and side-effect free.
func (oe OrbitalElements) Position(dt time.Time) []float64 {
	d := daysBetween(oe.epoch, dt)
	M := math.Mod(oe.M0+oe.MeanMotion()*d, 360)
	if M < 0 {
		M += 360
	}
	E := SolveKepler(M*deg2rad, oe.e)
	sE, cE := math.Sincos(E)
	vPQW := []float64{oe.a * (cE - oe.e), oe.a * math.Sqrt(1-oe.e*oe.e) * sE, 0}
	return PQW2Ecliptic(Deg2rad(oe.i), Deg2rad(oe.ω), Deg2rad(oe.Ω), vPQW)
}

// daysBetween returns the fractional days from a to b, computed from Unix
// seconds so multi-century spans never saturate a time.Duration.
func daysBetween(a, b time.Time) float64 {
	return float64(b.Unix()-a.Unix())/86400 + float64(b.Nanosecond()-a.Nanosecond())/86400e9
}

// timeBack steps dt back by the given number of days, routing only the
// sub-day remainder through a time.Duration.
func timeBack(dt time.Time, days float64) time.Time {
	whole := math.Trunc(days)
	return dt.AddDate(0, 0, -int(whole)).Add(-time.Duration((days - whole) * 24 * float64(time.Hour)))
}
