package orrery

import (
	"testing"
	"time"

	"github.com/gonum/floats"
)

// stubSource is a deterministic PositionSource for tests that must not depend
// on VSOP87 data files. Element bodies propagate their elements; everything
// else comes from the fixed position map, keyed by body name.
type stubSource struct {
	positions map[string][]float64
	earth     []float64
	bary      []float64
}

func (s stubSource) Position(b *CelestialBody, dt time.Time) []float64 {
	if b.elements != nil {
		return sceneVec(b.elements.Position(dt))
	}
	if p, ok := s.positions[b.Name]; ok {
		return p
	}
	return []float64{0, 0, 0}
}

func (s stubSource) EarthPosition(dt time.Time) []float64 {
	if s.earth != nil {
		return s.earth
	}
	return []float64{0, 0, 0}
}

func (s stubSource) Barycenter(dt time.Time) []float64 {
	if s.bary != nil {
		return s.bary
	}
	return []float64{0, 0, 0}
}

func assertPanic(t *testing.T, f func()) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("code did not panic")
		}
	}()
	f()
}

func vectorsEqual(a, b []float64) bool {
	return vectorsEqualWithin(a, b, 1e-9)
}

func vectorsEqualWithin(a, b []float64, ε float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := len(a) - 1; i >= 0; i-- {
		if !floats.EqualWithinAbs(a[i], b[i], ε) {
			return false
		}
	}
	return true
}
