package orrery

import (
	"testing"

	kitlog "github.com/go-kit/kit/log"
)

func TestSceneVec(t *testing.T) {
	// scene-X = ecliptic-X, scene-Y = ecliptic-Z, scene-Z = -ecliptic-Y.
	got := sceneVec([]float64{1, 2, 3})
	if !vectorsEqual([]float64{1, 3, -2}, got) {
		t.Fatalf("axis reorder: %+v", got)
	}
}

func TestLBR2Cartesian(t *testing.T) {
	if got := lbr2Cartesian(0, 0, 2); !vectorsEqualWithin([]float64{2, 0, 0}, got, 1e-12) {
		t.Fatalf("l=0 b=0: %+v", got)
	}
	if got := lbr2Cartesian(Deg2rad(90), 0, 2); !vectorsEqualWithin([]float64{0, 2, 0}, got, 1e-12) {
		t.Fatalf("l=90: %+v", got)
	}
	if got := lbr2Cartesian(0, Deg2rad(90), 2); !vectorsEqualWithin([]float64{0, 0, 2}, got, 1e-12) {
		t.Fatalf("b=90: %+v", got)
	}
}

func TestEphemerisSunAtOrigin(t *testing.T) {
	eph := NewEphemeris("", SolarSystem(), kitlog.NewNopLogger())
	if got := eph.Position(Sun, J2000); !vectorsEqual([]float64{0, 0, 0}, got) {
		t.Fatalf("Sun must sit at the heliocentric origin: %+v", got)
	}
}

func TestEphemerisElementsFallback(t *testing.T) {
	eph := NewEphemeris("", SolarSystem(), kitlog.NewNopLogger())
	got := eph.Position(Ceres, J2000)
	want := sceneVec(Ceres.elements.Position(J2000))
	if !vectorsEqual(want, got) {
		t.Fatalf("element body must propagate its elements: %+v != %+v", got, want)
	}
}

func TestEphemerisWarmupFailsFast(t *testing.T) {
	eph := NewEphemeris("/nonexistent/vsop87", SolarSystem(), kitlog.NewNopLogger())
	if err := eph.Warmup(); err == nil {
		t.Fatal("missing VSOP87 data must fail at startup, not at frame time")
	}
}

func TestEphemerisUnknownSourcePanics(t *testing.T) {
	eph := NewEphemeris("", nil, kitlog.NewNopLogger())
	assertPanic(t, func() {
		eph.Position(&CelestialBody{Name: "ghost", vsop: -1, galilean: -1}, J2000)
	})
}
