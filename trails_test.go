package orrery

import (
	"testing"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/gonum/floats"
)

func newTestTrailCache() (*TrailCache, *CelestialBody) {
	planet, _ := testPlanet()
	planet.Satellites = nil
	src := stubSource{}
	cfg := DefaultSettings()
	return NewTrailCache(src, NewTransformer(src), cfg, kitlog.NewNopLogger()), planet
}

func TestTrailStepsBands(t *testing.T) {
	tc, planet := newTestTrailCache()
	if s := tc.RequiredSteps(planet, Heliocentric); s != trailMinSteps {
		t.Fatalf("1 AU heliocentric trail must clamp to the minimum: %d", s)
	}
	// The epicycle doubles the per-AU density and adds Earth's circumference.
	if helio, geo := tc.RequiredSteps(planet, Heliocentric), tc.RequiredSteps(planet, Geocentric); geo <= helio {
		t.Fatalf("geocentric sampling must be denser: %d <= %d", geo, helio)
	}
	if s := tc.RequiredSteps(Eris, Heliocentric); s != trailMaxSteps {
		t.Fatalf("Eris must clamp to the maximum: %d", s)
	}
	if s := tc.RequiredSteps(Eris, Geocentric); s != trailGeoMaxSteps {
		t.Fatalf("Eris geocentric must clamp to the geocentric maximum: %d", s)
	}
}

func TestTrailNoSpuriousRecompute(t *testing.T) {
	tc, planet := newTestTrailCache()
	bodies := []*CelestialBody{planet}

	tc.Update(Heliocentric, bodies, J2000)
	entry := tc.Entry(planet.Name, Heliocentric)
	if entry == nil || entry.Steps != trailMinSteps {
		t.Fatalf("missing or mis-sized entry: %+v", entry)
	}
	first := make([]float64, len(entry.Positions))
	copy(first, entry.Positions)

	// Same simulation time: identical buffer, no reallocation.
	tc.Update(Heliocentric, bodies, J2000)
	if &entry.Positions[0] != &tc.Entry(planet.Name, Heliocentric).Positions[0] {
		t.Fatal("position buffer was reallocated without growth")
	}
	if !vectorsEqual(first, entry.Positions) {
		t.Fatal("position buffer changed for an identical simulation time")
	}
}

func TestTrailStalenessThreshold(t *testing.T) {
	tc, planet := newTestTrailCache()
	bodies := []*CelestialBody{planet}

	tc.Update(Heliocentric, bodies, J2000)
	entry := tc.Entry(planet.Name, Heliocentric)

	// Poison the buffers to observe what gets rewritten.
	entry.Positions[0] = 99999
	entry.Colors[0] = 99999

	tc.Update(Heliocentric, bodies, J2000.Add(30*time.Minute))
	if entry.Positions[0] != 99999 {
		t.Fatal("positions recomputed although simulation time moved less than the staleness threshold")
	}
	if entry.Colors[0] == 99999 {
		t.Fatal("gradient buffer must be refreshed on every update")
	}

	tc.Update(Heliocentric, bodies, J2000.Add(2*time.Hour))
	if entry.Positions[0] == 99999 {
		t.Fatal("positions not recomputed after crossing the staleness threshold")
	}
}

func TestTrailBackwardsTimeIsStale(t *testing.T) {
	tc, planet := newTestTrailCache()
	bodies := []*CelestialBody{planet}
	tc.Update(Heliocentric, bodies, J2000)
	entry := tc.Entry(planet.Name, Heliocentric)
	entry.Positions[0] = 99999
	tc.Update(Heliocentric, bodies, J2000.Add(-2*time.Hour))
	if entry.Positions[0] == 99999 {
		t.Fatal("a clock running backwards must also invalidate trails")
	}
}

func TestTrailGrowthReallocates(t *testing.T) {
	tc, planet := newTestTrailCache()
	key := trailKey{body: planet.Name, system: Heliocentric}
	tc.entries[key] = &TrailEntry{
		Positions: make([]float64, 3*4),
		Colors:    make([]float64, 3*4),
		Steps:     4,
	}
	tc.Update(Heliocentric, []*CelestialBody{planet}, J2000)
	entry := tc.Entry(planet.Name, Heliocentric)
	if entry.Steps != trailMinSteps || len(entry.Positions) != 3*trailMinSteps {
		t.Fatalf("undersized buffer must be reallocated: steps=%d len=%d", entry.Steps, len(entry.Positions))
	}
}

func TestTrailEarthSuppressedWhenObserver(t *testing.T) {
	tc, _ := newTestTrailCache()
	for _, sys := range []System{Geocentric, Tychonic} {
		tc.Update(sys, []*CelestialBody{Earth}, J2000)
		if tc.Entry(Earth.Name, sys) != nil {
			t.Fatalf("Earth trail must be suppressed in %s", sys)
		}
	}
	tc.Update(Heliocentric, []*CelestialBody{Earth}, J2000)
	if tc.Entry(Earth.Name, Heliocentric) == nil {
		t.Fatal("Earth trail missing in heliocentric")
	}
}

func TestTrailSunHasNoTrail(t *testing.T) {
	tc, _ := newTestTrailCache()
	tc.Update(Heliocentric, []*CelestialBody{Sun}, J2000)
	if tc.Entry(Sun.Name, Heliocentric) != nil {
		t.Fatal("the Sun must not trace a heliocentric trail")
	}
}

func TestTrailGradient(t *testing.T) {
	tc, planet := newTestTrailCache()
	tc.Update(Heliocentric, []*CelestialBody{planet}, J2000)
	entry := tc.Entry(planet.Name, Heliocentric)

	head := 3 * (entry.Steps - 1)
	if !floats.EqualWithinAbs(entry.Colors[head], planet.Color.R, 1e-12) {
		t.Fatalf("trail head must carry the full body color: %f", entry.Colors[head])
	}
	if entry.Colors[0] != 0 || entry.Colors[1] != 0 || entry.Colors[2] != 0 {
		t.Fatal("trail tail must fade to black")
	}
}

func TestTrailLongPeriodSamplesPast(t *testing.T) {
	tc, _ := newTestTrailCache()
	tc.Update(Heliocentric, []*CelestialBody{Eris}, J2000)
	entry := tc.Entry(Eris.Name, Heliocentric)

	// The tail must sample one full ~558-year period before dt, not a
	// wrapped-around future date.
	tail := timeBack(J2000, orbitPeriodDays(Eris))
	src := stubSource{}
	want := scale(src.Position(Eris, tail), DefaultSettings().DistanceScale)
	if got := entry.Positions[0:3]; !vectorsEqualWithin(want, got, 1e-9) {
		t.Fatalf("tail sample: %+v != %+v", got, want)
	}
}

func TestSatelliteTrailsParentRelative(t *testing.T) {
	planet, moon := testPlanet()
	src := stubSource{positions: map[string][]float64{"Selene": {0.001, 0, 0}}}
	cfg := DefaultSettings()
	tc := NewTrailCache(src, NewTransformer(src), cfg, kitlog.NewNopLogger())
	tc.Update(Heliocentric, []*CelestialBody{planet}, J2000)

	entry := tc.Entry(moon.Name, Heliocentric)
	if entry == nil {
		t.Fatal("satellite trail missing")
	}
	if entry.Steps != trailMinSteps {
		t.Fatalf("satellite trail steps: %d", entry.Steps)
	}
	// Parent-relative: the scaled offset, not a heliocentric position.
	head := 3 * (entry.Steps - 1)
	if got := entry.Positions[head : head+3]; !vectorsEqualWithin([]float64{0.1, 0, 0}, got, 1e-9) {
		t.Fatalf("satellite trail head: %+v", got)
	}
}

func TestSatelliteTrailsCarryExpansion(t *testing.T) {
	planet, moon := testPlanet()
	src := stubSource{positions: map[string][]float64{"Selene": {0.001, 0, 0}}}
	cfg := DefaultSettings()
	cfg.PlanetScale = 1000
	tc := NewTrailCache(src, NewTransformer(src), cfg, kitlog.NewNopLogger())
	tc.Update(Heliocentric, []*CelestialBody{planet}, J2000)

	f := expansionFactor(planet, cfg)
	if f <= 1 {
		t.Fatalf("fixture must trigger expansion, factor %f", f)
	}
	entry := tc.Entry(moon.Name, Heliocentric)
	head := 3 * (entry.Steps - 1)
	want := []float64{0.001 * 100 * f, 0, 0}
	if got := entry.Positions[head : head+3]; !vectorsEqualWithin(want, got, 1e-9) {
		t.Fatalf("expanded satellite trail head: %+v != %+v", got, want)
	}
}

func TestSatelliteTrailsSurviveObserverSuppression(t *testing.T) {
	tc, _ := newTestTrailCache()
	tc.Update(Geocentric, []*CelestialBody{Earth}, J2000)
	if tc.Entry(Earth.Name, Geocentric) != nil {
		t.Fatal("Earth trail must stay suppressed in geocentric")
	}
	if tc.Entry(Moon.Name, Geocentric) == nil {
		t.Fatal("the Moon's parent-relative trail must survive Earth's suppression")
	}
}

func TestTrailHeadMatchesCurrentPosition(t *testing.T) {
	tc, planet := newTestTrailCache()
	tc.Update(Heliocentric, []*CelestialBody{planet}, J2000)
	entry := tc.Entry(planet.Name, Heliocentric)

	head := 3 * (entry.Steps - 1)
	src := stubSource{}
	want := scale(src.Position(planet, J2000), DefaultSettings().DistanceScale)
	got := []float64{entry.Positions[head], entry.Positions[head+1], entry.Positions[head+2]}
	if !vectorsEqualWithin(want, got, 1e-9) {
		t.Fatalf("trail head must sample the current position: %+v != %+v", got, want)
	}
}
