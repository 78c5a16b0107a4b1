package orrery

import "time"

// SimulationClock tracks simulation time decoupled from the wall clock. Speed
// is the number of simulated seconds elapsing per wall-clock second and may be
// negative to run time backwards. The clock is advanced exactly once per frame
// by the Simulation; all access happens on the single frame-loop goroutine, so
// no locking is needed.
type SimulationClock struct {
	current time.Time
	Speed   float64
	Paused  bool
}

// NewSimulationClock returns a clock set to start, running at the given speed.
func NewSimulationClock(start time.Time, speed float64) *SimulationClock {
	if start.IsZero() {
		start = time.Now()
	}
	return &SimulationClock{current: start.UTC(), Speed: speed}
}

// Now returns the current simulation date.
func (c *SimulationClock) Now() time.Time {
	return c.current
}

// SetDate forces the simulation date, e.g. for a jump-to-date operation.
func (c *SimulationClock) SetDate(dt time.Time) {
	c.current = dt.UTC()
}

// Advance moves simulation time by wallDelta scaled with the speed multiplier
// and returns the new simulation date. A paused clock does not move.
func (c *SimulationClock) Advance(wallDelta time.Duration) time.Time {
	if c.Paused {
		return c.current
	}
	simDelta := time.Duration(float64(wallDelta) * c.Speed)
	c.current = c.current.Add(simDelta)
	return c.current
}
