package particle

import (
	"fmt"
	"math/rand"

	"github.com/Carmen-Shannon/wisp-go/common"
	"github.com/Carmen-Shannon/wisp-go/engine/curve"
	"github.com/Carmen-Shannon/wisp-go/engine/geometry"
	"github.com/Carmen-Shannon/wisp-go/engine/material"
	"github.com/Carmen-Shannon/wisp-go/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// ParticleSystem is the pooled host-animated execution strategy: a fixed pool
// of particles, each bound to its own precomputed random path through the
// waypoint boxes, launched round-robin on an emission timer. The pool size is
// fixed at construction; emission self-throttles against it because the rate
// ceiling is particleCount/life.
type ParticleSystem interface {
	System

	// SetRate sets the emission rate in particles per second, clamped to
	// [0, MaxRate]. Zero soft-stops the system; raising the rate from zero
	// starts it again.
	//
	// Parameters:
	//   - rate: particles per second
	SetRate(rate float32)

	// ChangeRate adjusts the emission rate by delta, with SetRate's clamping
	// and start/stop behavior.
	//
	// Parameters:
	//   - delta: the rate change, may be negative
	ChangeRate(delta float32)

	// Rate returns the current emission rate in particles per second.
	//
	// Returns:
	//   - float32: the emission rate
	Rate() float32

	// MaxRate returns the emission ceiling particleCount/life.
	//
	// Returns:
	//   - float32: the maximum sustainable emission rate
	MaxRate() float32

	// AddShape attaches a drawable shape to every pooled particle. A nil
	// material falls back to the system's material.
	//
	// Parameters:
	//   - geom: the shape geometry
	//   - mat: the material to render it with
	AddShape(geom geometry.Geometry, mat material.Material)

	// RemoveShapes detaches every drawable shape from every pooled particle.
	RemoveShapes()
}

var _ ParticleSystem = &particleSystem{}

// particleSystem is the implementation of the ParticleSystem interface.
type particleSystem struct {
	node      scene.Node
	particles []Particle
	curves    []curve.Curve
	shapes    []scene.Drawable
	mat       material.Material

	boxes       []common.Box
	aim         bool
	tension     float32
	life        float32
	lastFrame   int
	colorJitter float32
	scaleJitter float32

	rate    float32
	maxRate float32
	timer   float32
	cursor  int

	active    bool
	stopping  bool
	paused    bool
	destroyed bool

	dispatcher TickDispatcher
	handlerID  uint64
	registered bool

	rng     *rand.Rand
	logger  common.Logger
	overlay *boxOverlay
}

// NewParticleSystem creates a pooled particle system from the configuration
// with all specified options applied. Construction generates one random path
// per pool slot through the configured boxes, bakes it into per-frame
// transforms, and attaches the configured primitive shape to every particle.
//
// Parameters:
//   - cfg: the construction schema; Boxes is required
//   - options: optional SystemBuilderOption functions
//
// Returns:
//   - ParticleSystem: a new ParticleSystem instance
//   - error: an error if the configuration is invalid or construction fails
func NewParticleSystem(cfg Config, options ...SystemBuilderOption) (ParticleSystem, error) {
	s, err := newParticleSystem(cfg, options...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func newParticleSystem(cfg Config, options ...SystemBuilderOption) (*particleSystem, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.normalized(kindCPU)
	b := newSystemBuilder(options...)

	s := &particleSystem{
		node:        scene.NewNode(scene.WithNodeName("particle-system")),
		mat:         b.material,
		boxes:       append([]common.Box(nil), cfg.Boxes...),
		aim:         cfg.Aim,
		tension:     cfg.Tension,
		life:        cfg.Life,
		lastFrame:   int(cfg.Life*cfg.FrameRate) + 1,
		colorJitter: cfg.ColorJitter,
		scaleJitter: cfg.ScaleJitter,
		dispatcher:  b.dispatcher,
		rng:         b.rng,
		logger:      b.logger,
	}
	s.overlay = newBoxOverlay(s.node)
	s.maxRate = float32(cfg.ParticleCount) / cfg.Life
	s.rate = s.maxRate
	if cfg.Rate > 0 && cfg.Rate < s.maxRate {
		s.rate = cfg.Rate
	}
	if cfg.Parent != nil {
		cfg.Parent.AddChild(s.node)
	}

	colorKeys := cfg.colorRamp()
	scaleKeys := cfg.scaleRamp()
	s.particles = make([]Particle, cfg.ParticleCount)
	s.curves = make([]curve.Curve, cfg.ParticleCount)
	for i := range s.particles {
		c, err := s.newPathCurve()
		if err != nil {
			return nil, fmt.Errorf("generate particle path: %w", err)
		}
		p, err := NewParticle(samplePath(c, s.lastFrame),
			ParticleWithAim(s.aim),
			ParticleWithColorKeys(colorKeys),
			ParticleWithScaleKeys(scaleKeys),
			ParticleWithColorJitter(s.colorJitter),
			ParticleWithScaleJitter(s.scaleJitter),
			ParticleWithRNG(s.rng),
			ParticleWithParent(s.node),
		)
		if err != nil {
			return nil, fmt.Errorf("build pooled particle: %w", err)
		}
		s.curves[i] = c
		s.particles[i] = p
	}

	geom, err := geometry.NewShape(cfg.ParticleShape, cfg.ParticleSize)
	if err != nil {
		return nil, fmt.Errorf("build particle shape: %w", err)
	}
	s.AddShape(geom, s.mat)
	return s, nil
}

func (s *particleSystem) Node() scene.Node {
	return s.node
}

func (s *particleSystem) Active() bool {
	return s.active
}

func (s *particleSystem) Start() {
	if s.destroyed || s.active {
		return
	}
	s.active = true
	s.stopping = false
	s.paused = false
	s.timer = 0
	s.register()
}

func (s *particleSystem) Stop(hard bool) {
	if s.destroyed || (!s.active && !s.stopping) {
		return
	}
	s.active = false
	s.paused = false
	s.timer = 0
	if hard {
		s.stopping = false
		for _, p := range s.particles {
			p.Reset()
		}
		s.deregister()
		return
	}
	s.stopping = true
	// a drain needs ticks even if the system was paused when stopped
	s.register()
}

func (s *particleSystem) Pause() {
	if s.destroyed || !s.registered {
		return
	}
	s.paused = true
	s.deregister()
}

func (s *particleSystem) Play() {
	if s.destroyed || !s.paused {
		return
	}
	s.paused = false
	s.register()
}

func (s *particleSystem) SetRate(rate float32) {
	if s.destroyed {
		return
	}
	rate = mgl32.Clamp(rate, 0, s.maxRate)
	prev := s.rate
	s.rate = rate
	if rate == 0 {
		if s.active {
			s.Stop(false)
		}
		return
	}
	if prev == 0 && !s.active {
		s.Start()
	}
}

func (s *particleSystem) ChangeRate(delta float32) {
	s.SetRate(s.rate + delta)
}

func (s *particleSystem) Rate() float32 {
	return s.rate
}

func (s *particleSystem) MaxRate() float32 {
	return s.maxRate
}

func (s *particleSystem) AddShape(geom geometry.Geometry, mat material.Material) {
	if s.destroyed || geom == nil {
		return
	}
	if mat == nil {
		mat = s.mat
	}
	d := scene.Drawable{Geometry: geom, Material: mat}
	s.shapes = append(s.shapes, d)
	for _, p := range s.particles {
		p.Node().AddDrawable(d)
	}
}

func (s *particleSystem) RemoveShapes() {
	if s.destroyed {
		return
	}
	s.shapes = nil
	for _, p := range s.particles {
		p.Node().ClearDrawables()
	}
}

// Translate moves the container node only. Already-baked paths and the
// waypoint boxes stay in their generated coordinates; the whole effect,
// including paths generated later, renders shifted by the container
// transform.
func (s *particleSystem) Translate(x, y, z float32) {
	if s.destroyed {
		return
	}
	s.node.Translate(mgl32.Vec3{x, y, z})
}

func (s *particleSystem) ShowBoxes() {
	if s.destroyed {
		return
	}
	s.overlay.show(s.boxes)
}

func (s *particleSystem) HideBoxes() {
	if s.destroyed {
		return
	}
	s.overlay.hide()
}

func (s *particleSystem) SetAim(aim bool) {
	if s.destroyed || aim == s.aim {
		return
	}
	s.aim = aim
	for _, p := range s.particles {
		p.SetAim(aim)
	}
}

// SetBoxes replaces the waypoint volumes and regenerates every pool slot's
// random path through them.
func (s *particleSystem) SetBoxes(boxes []common.Box) {
	if s.destroyed || len(boxes) == 0 {
		return
	}
	s.boxes = append([]common.Box(nil), boxes...)
	for i, p := range s.particles {
		c, err := s.newPathCurve()
		if err != nil {
			s.logger.Errorf("regenerate particle path: %v", err)
			return
		}
		s.curves[i] = c
		p.SetPositions(samplePath(c, s.lastFrame))
	}
	s.overlay.refresh(s.boxes)
}

func (s *particleSystem) SetColors(values []mgl32.Vec4) {
	s.setColorRamp(common.SpreadColors(values))
}

func (s *particleSystem) SetColorKeys(keys []common.ColorKey) {
	s.setColorRamp(common.NormalizeColorKeys(keys))
}

func (s *particleSystem) SetScales(values []mgl32.Vec3) {
	s.setScaleRamp(common.SpreadScales(values))
}

func (s *particleSystem) SetScaleKeys(keys []common.ScaleKey) {
	s.setScaleRamp(common.NormalizeScaleKeys(keys))
}

func (s *particleSystem) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	s.active = false
	s.stopping = false
	s.deregister()
	s.overlay.hide()
	for _, p := range s.particles {
		p.Destroy()
	}
	s.node.Detach()
}

// onRender advances every pooled particle, then evaluates one emission slot.
// Updates run before emission so a particle can never launch and advance in
// the same tick, and they run regardless of the active flag so in-flight
// particles finish after a soft stop. The handler stays registered through a
// soft stop until the pool drains.
func (s *particleSystem) onRender(dt float32) {
	for _, p := range s.particles {
		p.Update()
	}
	if !s.active {
		if s.stopping && s.allReady() {
			s.stopping = false
			s.deregister()
		}
		return
	}
	if s.rate <= 0 {
		return
	}
	s.timer += dt
	if s.timer < 1.0/s.rate {
		return
	}
	s.timer = 0
	if p := s.particles[s.cursor]; p.Ready() {
		p.Run(1)
	}
	s.cursor = (s.cursor + 1) % len(s.particles)
}

func (s *particleSystem) setColorRamp(keys []common.ColorKey) {
	if s.destroyed {
		return
	}
	for _, p := range s.particles {
		p.SetColorKeys(keys)
	}
}

func (s *particleSystem) setScaleRamp(keys []common.ScaleKey) {
	if s.destroyed {
		return
	}
	for _, p := range s.particles {
		p.SetScaleKeys(keys)
	}
}

func (s *particleSystem) allReady() bool {
	for _, p := range s.particles {
		if !p.Ready() && !p.Destroyed() {
			return false
		}
	}
	return true
}

func (s *particleSystem) register() {
	if s.registered || s.dispatcher == nil {
		return
	}
	s.handlerID = s.dispatcher.AddTickHandler(s.onRender)
	s.registered = true
}

func (s *particleSystem) deregister() {
	if !s.registered || s.dispatcher == nil {
		return
	}
	s.dispatcher.RemoveTickHandler(s.handlerID)
	s.registered = false
}

// newPathCurve samples one random point inside each waypoint box and threads
// a cardinal spline through them, duplicating the first and last samples so
// the path's endpoints land inside the terminal boxes.
func (s *particleSystem) newPathCurve() (curve.Curve, error) {
	points := make([]mgl32.Vec3, 0, len(s.boxes)+2)
	for _, box := range s.boxes {
		points = append(points, common.RandomPoint(s.rng, box))
	}
	points = append([]mgl32.Vec3{points[0]}, points...)
	points = append(points, points[len(points)-1])
	return curve.New(points,
		curve.WithType(curve.Cardinal),
		curve.WithTension(s.tension),
	)
}

// samplePath evaluates a curve at frames evenly spaced parameters, inclusive
// of both ends.
func samplePath(c curve.Curve, frames int) []mgl32.Vec3 {
	points := make([]mgl32.Vec3, frames)
	if frames == 1 {
		points[0] = c.Interpolate(0)
		return points
	}
	step := 1.0 / float32(frames-1)
	for i := range points {
		points[i] = c.Interpolate(float32(i) * step)
	}
	return points
}
