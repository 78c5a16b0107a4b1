package orrery

import (
	"math"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/gonum/matrix/mat64"
)

// RenderTransform is a body's owned output slot in the scene graph: position
// in scene units plus the axial spin angle in radians. It is overwritten every
// frame and never read back as authoritative state; positions are always
// rederived from the simulation date.
type RenderTransform struct {
	Position []float64
	Spin     float64
}

// RootNode is the scene-graph root. Its translation carries the negated
// virtual-origin offset; its rotation carries the global reference-plane
// change.
type RootNode struct {
	Translation []float64
	Rotation    *mat64.Dense
}

// NewRootNode returns a root node at the origin with identity rotation.
func NewRootNode() *RootNode {
	return &RootNode{
		Translation: []float64{0, 0, 0},
		Rotation:    mat64.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}),
	}
}

// Placement drives per-frame body placement: it queries the ephemeris for
// every tracked body, passes positions through the frame transformer and
// writes the results into each body's render transform.
type Placement struct {
	src    PositionSource
	frames *Transformer
	cfg    *Settings
	bodies []*CelestialBody
	root   *RootNode
	slots  map[string]*RenderTransform
	logger kitlog.Logger
}

// NewPlacement allocates one render transform per tracked body.
func NewPlacement(src PositionSource, frames *Transformer, cfg *Settings, bodies []*CelestialBody, root *RootNode, logger kitlog.Logger) *Placement {
	p := &Placement{
		src:    src,
		frames: frames,
		cfg:    cfg,
		bodies: bodies,
		root:   root,
		slots:  make(map[string]*RenderTransform),
		logger: kitlog.With(logger, "component", "placement"),
	}
	var alloc func(b *CelestialBody)
	alloc = func(b *CelestialBody) {
		p.slots[b.Name] = &RenderTransform{Position: []float64{0, 0, 0}}
		for _, sat := range b.Satellites {
			alloc(sat)
		}
	}
	for _, b := range bodies {
		alloc(b)
	}
	return p
}

// Transform returns the render transform owned by the named body, or nil for
// untracked names.
func (p *Placement) Transform(name string) *RenderTransform {
	return p.slots[name]
}

// ExpansionFactor returns the moon-orbit expansion applied to a planet's
// satellites so an up-scaled planet mesh never engulfs its moons:
// max(1, displayRadius*1.1/baseMinMoonDistance). Purely a visual declutter
// transform, recomputed every frame from the current planet scale; it never
// feeds back into the physics.
func (p *Placement) ExpansionFactor(b *CelestialBody) float64 {
	return expansionFactor(b, p.cfg)
}

func expansionFactor(b *CelestialBody, cfg *Settings) float64 {
	if b.MinMoonDistance <= 0 {
		return 1
	}
	displayRadius := b.Radius / AU * cfg.DistanceScale * cfg.PlanetScale
	baseMinMoonDistance := b.MinMoonDistance * cfg.DistanceScale
	return math.Max(1, displayRadius*1.1/baseMinMoonDistance)
}

// Update recomputes every body's render transform for the given simulation
// date. Satellites are chained onto their parent's displayed position so they
// track it through any frame change; only their own offsets are expanded.
func (p *Placement) Update(dt time.Time) {
	p.root.Rotation = p.frames.RootRotation(p.cfg.Plane)
	for _, b := range p.bodies {
		if b.src == srcNone {
			// Unreachable after ValidateBodies; skip rather than crash.
			p.logger.Log("msg", "skipping body without position source", "body", b.Name)
			continue
		}
		helio := p.src.Position(b, dt)
		disp := scale(p.frames.Display(helio, p.cfg.System, dt), p.cfg.DistanceScale)
		p.place(b, disp, dt)

		expansion := p.ExpansionFactor(b)
		for _, sat := range b.Satellites {
			offset := scale(p.src.Position(sat, dt), p.cfg.DistanceScale*expansion)
			p.place(sat, add(disp, offset), dt)
		}
	}
}

// place overwrites a body's slot in place so the transform is never aliased by
// another body.
func (p *Placement) place(b *CelestialBody, pos []float64, dt time.Time) {
	slot := p.slots[b.Name]
	slot.Position[0] = pos[0]
	slot.Position[1] = pos[1]
	slot.Position[2] = pos[2]
	slot.Spin = spinAngle(b, dt)
}

// spinAngle derives the axial rotation angle from the sidereal rotation
// period and the days elapsed since J2000.
func spinAngle(b *CelestialBody, dt time.Time) float64 {
	if b.RotationPeriod == 0 {
		return 0
	}
	turns := math.Mod(daysBetween(J2000, dt)/b.RotationPeriod, 1)
	if turns < 0 {
		turns++
	}
	return turns * 2 * math.Pi
}
