package orrery

import (
	"math"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	// trailStaleThreshold is how far simulation time must move before a
	// trail's sampled positions are recomputed.
	trailStaleThreshold = time.Hour

	// Sampling density in steps per AU of estimated path circumference.
	// Geocentric epicycles loop over the observer's own orbit, so their
	// apparent path is longer and gets double the per-AU density.
	trailStepsPerAU    = 8
	trailGeoStepsPerAU = 16

	trailMinSteps    = 64
	trailMaxSteps    = 512
	trailGeoMinSteps = 128
	trailGeoMaxSteps = 1024
)

// TrailEntry holds one body's sampled orbit polyline for one coordinate
// system. The position buffer is reused by reference across frames and only
// reallocated when the required step count grows; the color buffer is the
// cheap brightness gradient refreshed on every update.
type TrailEntry struct {
	Positions  []float64 // xyz triplets, scene units
	Colors     []float64 // rgb triplets
	Steps      int
	LastRecalc time.Time
}

type trailKey struct {
	body   string
	system System
}

// TrailCache maintains relative-orbit trails per (body, coordinate system).
type TrailCache struct {
	src     PositionSource
	frames  *Transformer
	cfg     *Settings
	entries map[trailKey]*TrailEntry
	logger  kitlog.Logger
}

// NewTrailCache returns an empty cache.
func NewTrailCache(src PositionSource, frames *Transformer, cfg *Settings, logger kitlog.Logger) *TrailCache {
	return &TrailCache{
		src:     src,
		frames:  frames,
		cfg:     cfg,
		entries: make(map[trailKey]*TrailEntry),
		logger:  kitlog.With(logger, "component", "trails"),
	}
}

// Entry returns the cached trail for a body in a system, or nil when none has
// been computed.
func (tc *TrailCache) Entry(name string, sys System) *TrailEntry {
	return tc.entries[trailKey{body: name, system: sys}]
}

// RequiredSteps derives the sample count for a body's trail from its estimated
// path circumference, clamped to the system's step-count band.
func (tc *TrailCache) RequiredSteps(b *CelestialBody, sys System) int {
	circumference := 2 * math.Pi * b.OrbitAU
	density, lo, hi := trailStepsPerAU, trailMinSteps, trailMaxSteps
	if sys == Geocentric || sys == Tychonic {
		// The epicycle adds the observer's own orbital circumference to
		// the apparent path length.
		circumference += 2 * math.Pi * Earth.OrbitAU
		density, lo, hi = trailGeoStepsPerAU, trailGeoMinSteps, trailGeoMaxSteps
	}
	steps := int(circumference * float64(density))
	if steps < lo {
		return lo
	}
	if steps > hi {
		return hi
	}
	return steps
}

// Update refreshes the trails of the given bodies and their satellites for
// the active coordinate system. Positions are recomputed only when simulation
// time has moved by more than the staleness threshold since the entry's last
// recalculation, or when the entry's buffer is undersized for the newly
// required step count; the gradient buffer is refreshed unconditionally.
// Satellite trails are parent-relative polylines, so they stay valid even
// when the parent's own trail is suppressed.
func (tc *TrailCache) Update(sys System, bodies []*CelestialBody, dt time.Time) {
	for _, b := range bodies {
		for _, sat := range b.Satellites {
			tc.update(sat, b, sys, dt)
		}
		if b.OrbitAU <= 0 {
			continue // the Sun traces no orbit
		}
		if b.Name == Earth.Name && (sys == Geocentric || sys == Tychonic) {
			// Earth sits at (or defines) the origin here; its trail is
			// meaningless and is suppressed.
			continue
		}
		tc.update(b, nil, sys, dt)
	}
}

func (tc *TrailCache) update(b, parent *CelestialBody, sys System, dt time.Time) {
	key := trailKey{body: b.Name, system: sys}
	entry := tc.entries[key]
	required := tc.RequiredSteps(b, sys)

	recompute := false
	if entry == nil {
		entry = &TrailEntry{}
		tc.entries[key] = entry
	}
	if required > entry.Steps {
		// Growth forces a reallocation; the old buffers are dropped here
		// and never disposed eagerly elsewhere.
		entry.Positions = make([]float64, 3*required)
		entry.Colors = make([]float64, 3*required)
		entry.Steps = required
		recompute = true
		trailReallocsTotal.Inc()
		tc.logger.Log("msg", "reallocated trail buffer", "body", b.Name, "system", sys.String(), "steps", required)
	}
	if age := dt.Sub(entry.LastRecalc); age >= trailStaleThreshold || age <= -trailStaleThreshold {
		recompute = true
	}

	if recompute {
		tc.sample(b, parent, sys, dt, entry)
		entry.LastRecalc = dt
		trailRecomputesTotal.Inc()
	}
	tc.gradient(b, entry)
}

// sample fills the position buffer with one full orbital period ending at dt.
// Satellite samples are offsets from the parent and carry the parent's
// moon-orbit expansion, matching the displayed geometry.
func (tc *TrailCache) sample(b, parent *CelestialBody, sys System, dt time.Time, entry *TrailEntry) {
	period := orbitPeriodDays(b)
	factor := tc.cfg.DistanceScale
	if parent != nil {
		factor *= expansionFactor(parent, tc.cfg)
	}
	for k := 0; k < entry.Steps; k++ {
		frac := float64(entry.Steps-1-k) / float64(entry.Steps-1)
		t := timeBack(dt, frac*period)
		pos := tc.src.Position(b, t)
		if parent == nil {
			pos = tc.frames.Display(pos, sys, t)
		}
		pos = scale(pos, factor)
		entry.Positions[3*k] = pos[0]
		entry.Positions[3*k+1] = pos[1]
		entry.Positions[3*k+2] = pos[2]
	}
}

// gradient refreshes the brightness gradient: full body color at the head of
// the trail fading to black at the tail. O(steps) indexing, no position work.
func (tc *TrailCache) gradient(b *CelestialBody, entry *TrailEntry) {
	black := colorful.Color{}
	for k := 0; k < entry.Steps; k++ {
		progress := float64(k) / float64(entry.Steps-1)
		c := black.BlendRgb(b.Color, progress)
		entry.Colors[3*k] = c.R
		entry.Colors[3*k+1] = c.G
		entry.Colors[3*k+2] = c.B
	}
}

// orbitPeriodDays estimates the orbital period in days via Kepler's third
// law. The tracked moons are all tidally locked, so a satellite's spin period
// doubles as its orbital period.
func orbitPeriodDays(b *CelestialBody) float64 {
	if b.IsSatellite() {
		return math.Abs(b.RotationPeriod)
	}
	if b.elements != nil {
		return b.elements.Period()
	}
	return 365.25 * math.Pow(b.OrbitAU, 1.5)
}
