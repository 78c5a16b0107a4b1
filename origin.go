package orrery

import (
	"fmt"
	"strings"

	kitlog "github.com/go-kit/kit/log"
)

// OriginMode selects when the origin manager rebases.
type OriginMode uint8

const (
	// ModePeriodic leaves the camera alone until its render-space distance
	// from the origin exceeds the rebase threshold, then fires one discrete
	// rebase. Suits inertial/damped camera controllers.
	ModePeriodic OriginMode = iota
	// ModeContinuous captures the camera position every frame and resets it
	// to the origin, so GPU-resident camera coordinates stay at zero. Suits
	// orbit-style controllers.
	ModeContinuous
)

// String implements the Stringer interface.
func (m OriginMode) String() string {
	if m == ModeContinuous {
		return "continuous"
	}
	return "periodic"
}

// OriginModeFromString returns the origin mode from its name.
func OriginModeFromString(name string) (OriginMode, error) {
	switch strings.ToLower(name) {
	case "periodic":
		return ModePeriodic, nil
	case "continuous":
		return ModeContinuous, nil
	default:
		return ModePeriodic, fmt.Errorf("undefined origin mode '%s'", name)
	}
}

// Camera is the live render camera. The controls layer owns and moves it; the
// origin manager intercepts its position.
type Camera struct {
	Position []float64
}

// Controls is the camera controller state the origin manager must keep
// consistent with the camera across a rebase.
type Controls struct {
	Target []float64
}

// OriginManager keeps render-space coordinates near the 32-bit float sweet
// spot while the camera roams astronomical distances. It owns the accumulated
// offset between true and render-space coordinates; the root node's
// translation is always the negated offset, so the true camera position is
// liveCameraPosition - rootTranslation at every instant, including across a
// rebase.
type OriginManager struct {
	mode      OriginMode
	threshold float64
	enabled   bool

	// offset is the accumulated astronomical-to-render-space translation,
	// in scene units. True coordinates = live coordinates + offset.
	offset      []float64
	rebaseCount uint64

	cam      *Camera
	controls *Controls
	root     *RootNode
	logger   kitlog.Logger
}

// NewOriginManager returns a disabled manager bound to the given camera,
// controls and root node.
func NewOriginManager(cfg *Settings, cam *Camera, controls *Controls, root *RootNode, logger kitlog.Logger) *OriginManager {
	return &OriginManager{
		mode:      cfg.OriginMode,
		threshold: cfg.RebaseThreshold,
		offset:    []float64{0, 0, 0},
		cam:       cam,
		controls:  controls,
		root:      root,
		logger:    kitlog.With(logger, "component", "origin"),
	}
}

// Enabled reports whether the manager intercepts camera movement.
func (m *OriginManager) Enabled() bool {
	return m.enabled
}

// RebaseCount returns the diagnostic rebase counter.
func (m *OriginManager) RebaseCount() uint64 {
	return m.rebaseCount
}

// Enable switches the manager on: the world offset resets to zero and the
// camera keeps its current virtual position, so nothing moves visually.
// A no-op when already enabled.
func (m *OriginManager) Enable() {
	if m.enabled {
		return
	}
	// The camera already holds true coordinates while disabled.
	m.offset = []float64{0, 0, 0}
	m.root.Translation[0], m.root.Translation[1], m.root.Translation[2] = 0, 0, 0
	m.enabled = true
	m.logger.Log("msg", "origin management enabled", "mode", m.mode.String())
}

// Disable folds the accumulated offset back into the camera and controls so
// they carry true coordinates again. A no-op when already disabled.
func (m *OriginManager) Disable() {
	if !m.enabled {
		return
	}
	cam := add(m.cam.Position, m.offset)
	target := add(m.controls.Target, m.offset)
	m.cam.Position[0], m.cam.Position[1], m.cam.Position[2] = cam[0], cam[1], cam[2]
	m.controls.Target[0], m.controls.Target[1], m.controls.Target[2] = target[0], target[1], target[2]
	m.offset = []float64{0, 0, 0}
	m.root.Translation[0], m.root.Translation[1], m.root.Translation[2] = 0, 0, 0
	m.enabled = false
	m.logger.Log("msg", "origin management disabled")
}

// Update runs once per frame, after the controller has moved the camera. In
// continuous mode any displacement is folded into the offset immediately; in
// periodic mode nothing happens until the camera crosses the threshold.
func (m *OriginManager) Update() {
	if !m.enabled {
		return
	}
	d := norm(m.cam.Position)
	switch m.mode {
	case ModeContinuous:
		if d > 0 {
			m.rebase()
		}
	case ModePeriodic:
		if d > m.threshold {
			m.rebase()
		}
	}
}

// rebase performs the atomic offset-and-reset: the camera returns to the
// origin, the controls target and the root translation shift by the same
// vector. All three values are computed before any assignment so a rebase can
// never partially apply. The true camera position is unchanged.
func (m *OriginManager) rebase() {
	shift := []float64{m.cam.Position[0], m.cam.Position[1], m.cam.Position[2]}
	target := sub(m.controls.Target, shift)
	offset := add(m.offset, shift)

	m.cam.Position[0], m.cam.Position[1], m.cam.Position[2] = 0, 0, 0
	m.controls.Target[0], m.controls.Target[1], m.controls.Target[2] = target[0], target[1], target[2]
	m.offset = offset
	m.root.Translation[0], m.root.Translation[1], m.root.Translation[2] = -offset[0], -offset[1], -offset[2]

	m.rebaseCount++
	rebasesTotal.Inc()
	if m.mode == ModePeriodic {
		m.logger.Log("msg", "rebased origin", "shift", norm(shift), "count", m.rebaseCount)
	}
}

// VirtualPosition returns the camera position in true (unbounded) coordinates.
func (m *OriginManager) VirtualPosition() []float64 {
	return add(m.cam.Position, m.offset)
}

// SetVirtualPosition moves the camera to a true-coordinate position, e.g. for
// a fly-to feature; the live camera lands wherever the current offset puts it.
func (m *OriginManager) SetVirtualPosition(v []float64) {
	live := sub(v, m.offset)
	m.cam.Position[0], m.cam.Position[1], m.cam.Position[2] = live[0], live[1], live[2]
}

// VirtualTarget returns the controls target in true coordinates.
func (m *OriginManager) VirtualTarget() []float64 {
	return add(m.controls.Target, m.offset)
}

// SetVirtualTarget moves the controls target to a true-coordinate position.
func (m *OriginManager) SetVirtualTarget(v []float64) {
	live := sub(v, m.offset)
	m.controls.Target[0], m.controls.Target[1], m.controls.Target[2] = live[0], live[1], live[2]
}

// WorldToScene converts a true-coordinate position to render space.
func (m *OriginManager) WorldToScene(v []float64) []float64 {
	return sub(v, m.offset)
}

// SceneToWorld converts a render-space position to true coordinates.
func (m *OriginManager) SceneToWorld(v []float64) []float64 {
	return add(v, m.offset)
}
