package orrery

import (
	"fmt"
	"time"

	kitlog "github.com/go-kit/kit/log"
)

// VSOP87 series are usable over roughly this span; a jump outside it would
// silently degrade every tabulated position.
const (
	minJumpYear = 1000
	maxJumpYear = 3000
)

// Simulation ties the core together and drives it once per rendered frame, in
// dependency order: clock, body placement, origin management, trails. All of
// it runs synchronously on the frame-loop goroutine.
type Simulation struct {
	Clock    *SimulationClock
	Settings *Settings
	Bodies   []*CelestialBody
	Camera   *Camera
	Controls *Controls

	src       PositionSource
	frames    *Transformer
	placement *Placement
	origin    *OriginManager
	trails    *TrailCache
	root      *RootNode
	logger    kitlog.Logger
}

// New builds a simulation of the full solar system backed by the meeus
// ephemerides, loading every needed VSOP87 series up front so configuration
// problems surface at startup.
func New(cfg *Settings, logger kitlog.Logger) (*Simulation, error) {
	bodies := SolarSystem()
	eph := NewEphemeris(cfg.VSOP87Dir, bodies, logger)
	if err := eph.Warmup(); err != nil {
		return nil, err
	}
	return NewWithSource(cfg, bodies, eph, logger)
}

// NewWithSource builds a simulation over an arbitrary body table and position
// source. The table is validated here; an invalid body is a configuration
// error and fails construction rather than being skipped at render time.
func NewWithSource(cfg *Settings, bodies []*CelestialBody, src PositionSource, logger kitlog.Logger) (*Simulation, error) {
	if err := ValidateBodies(bodies); err != nil {
		return nil, err
	}
	root := NewRootNode()
	cam := &Camera{Position: []float64{0, 0, 0}}
	controls := &Controls{Target: []float64{0, 0, 0}}
	frames := NewTransformer(src)
	s := &Simulation{
		Clock:     NewSimulationClock(cfg.StartDate, cfg.ClockSpeed),
		Settings:  cfg,
		Bodies:    bodies,
		Camera:    cam,
		Controls:  controls,
		src:       src,
		frames:    frames,
		placement: NewPlacement(src, frames, cfg, bodies, root, logger),
		origin:    NewOriginManager(cfg, cam, controls, root, logger),
		trails:    NewTrailCache(src, frames, cfg, logger),
		root:      root,
		logger:    kitlog.With(logger, "component", "sim"),
	}
	return s, nil
}

// Root returns the scene-graph root node.
func (s *Simulation) Root() *RootNode {
	return s.root
}

// Origin returns the virtual-origin manager for camera and focus features.
func (s *Simulation) Origin() *OriginManager {
	return s.origin
}

// Trails returns the trail cache for the rendering layer.
func (s *Simulation) Trails() *TrailCache {
	return s.trails
}

// Placement returns the body placement updater.
func (s *Simulation) Placement() *Placement {
	return s.placement
}

// Frame advances the simulation by one display frame: the clock moves by
// wallDelta scaled with the speed multiplier, every body's transform is
// rewritten, camera drift is corrected and trails are conditionally refreshed.
func (s *Simulation) Frame(wallDelta time.Duration) {
	dt := s.Clock.Advance(wallDelta)
	s.placement.Update(dt)
	s.origin.Update()
	s.trails.Update(s.Settings.System, s.Bodies, dt)
	framesTotal.Inc()
}

// JumpToDate forces an immediate, synchronous recomputation of all body
// positions and trails for the new date, without waiting for the next frame.
func (s *Simulation) JumpToDate(dt time.Time, pauseAfter bool) error {
	if dt.IsZero() {
		return fmt.Errorf("jump to zero date")
	}
	if y := dt.Year(); y < minJumpYear || y > maxJumpYear {
		return fmt.Errorf("date %s outside the supported ephemeris span (years %d-%d)", dt.Format("2006-01-02"), minJumpYear, maxJumpYear)
	}
	s.Clock.SetDate(dt)
	s.placement.Update(s.Clock.Now())
	s.trails.Update(s.Settings.System, s.Bodies, s.Clock.Now())
	if pauseAfter {
		s.Clock.Paused = true
	}
	s.logger.Log("msg", "jumped to date", "date", dt.Format("2006-01-02 15:04:05"), "paused", pauseAfter)
	return nil
}
