package particle

import (
	"fmt"

	"github.com/Carmen-Shannon/wisp-go/common"
	"github.com/Carmen-Shannon/wisp-go/engine/geometry"
	"github.com/Carmen-Shannon/wisp-go/engine/material"
	"github.com/Carmen-Shannon/wisp-go/engine/scene"
	"github.com/Carmen-Shannon/wisp-go/engine/shader"
	"github.com/go-gl/mathgl/mgl32"
)

// Playback clock sentinels. A stopped system parks the clock on the dead
// pair: max_time 3.0 selects the shader's window mode with a live window no
// particle's phase can reach at time 1.1, so everything culls. stopTimeNever
// keeps rebirth unsuppressed during normal playback.
const (
	deadTime      float32 = 1.1
	deadMaxTime   float32 = 3.0
	stopTimeNever float32 = 1e9
)

// GpuParticleSystem is the shader-animated execution strategy: one node, one
// geometry holding particleCount replicas of the base primitive, and one
// variant-composed material. Per-particle differentiation lives in static
// per-vertex id and phase-offset attributes; the host only advances a shared
// clock and stages uniforms, so any particle count renders in a single draw.
type GpuParticleSystem interface {
	System

	// SetParticleShape swaps the base primitive and re-replicates it, so
	// every copy carries fresh id and phase-offset attributes. Unknown
	// shapes are logged and the current geometry stays bound.
	//
	// Parameters:
	//   - shape: the built-in primitive to instantiate
	SetParticleShape(shape geometry.Shape)

	// SetParticleSize rebuilds the base primitive at a new uniform scale.
	// Non-positive sizes are ignored.
	//
	// Parameters:
	//   - size: the uniform scale of the primitive
	SetParticleSize(size float32)

	// SetParticleCount re-replicates the base shape to a new copy count.
	// Counts below one are ignored.
	//
	// Parameters:
	//   - count: the number of particle replicas
	SetParticleCount(count int)

	// SetTension retunes the spline bend. The variant key does not depend on
	// tension, so this re-stages uniforms without recomposing.
	//
	// Parameters:
	//   - tension: the cardinal-spline tension
	SetTension(tension float32)
}

var _ GpuParticleSystem = &gpuParticleSystem{}

// gpuParticleSystem is the implementation of the GpuParticleSystem interface.
type gpuParticleSystem struct {
	node     scene.Node
	geom     geometry.Geometry
	mat      material.Material
	composer shader.Composer
	compiler shader.Compiler

	boxes     []common.Box
	colorKeys []common.ColorKey
	scaleKeys []common.ScaleKey
	aim       bool
	tension   float32
	life      float32
	shape     geometry.Shape
	size      float32
	count     int

	time     float32
	maxTime  float32
	stopTime float32

	active    bool
	destroyed bool

	dispatcher TickDispatcher
	handlerID  uint64
	registered bool
	// tick is what register adds to the dispatcher. The trail variant points
	// it at its own playback loop so base registration plumbing is shared.
	tick func(deltaTime float32)

	logger  common.Logger
	overlay *boxOverlay
}

// NewGpuParticleSystem creates a shader-animated particle system from the
// configuration with all specified options applied. Construction replicates
// the configured primitive and, once at least two boxes exist, composes and
// links the matching shader variant.
//
// Parameters:
//   - cfg: the construction schema; Boxes is required
//   - options: optional SystemBuilderOption functions
//
// Returns:
//   - GpuParticleSystem: a new GpuParticleSystem instance
//   - error: an error if the configuration is invalid or the primitive cannot be built
func NewGpuParticleSystem(cfg Config, options ...SystemBuilderOption) (GpuParticleSystem, error) {
	g, err := newGpuParticleSystem(cfg, options...)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func newGpuParticleSystem(cfg Config, options ...SystemBuilderOption) (*gpuParticleSystem, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.normalized(kindGPU)
	b := newSystemBuilder(options...)

	g := &gpuParticleSystem{
		node:       scene.NewNode(scene.WithNodeName("gpu-particle-system")),
		mat:        b.material,
		composer:   b.composer,
		compiler:   b.compiler,
		boxes:      append([]common.Box(nil), cfg.Boxes...),
		colorKeys:  cfg.colorRamp(),
		scaleKeys:  cfg.scaleRamp(),
		aim:        cfg.Aim,
		tension:    cfg.Tension,
		life:       cfg.Life,
		shape:      cfg.ParticleShape,
		size:       cfg.ParticleSize,
		count:      cfg.ParticleCount,
		time:       deadTime,
		maxTime:    deadMaxTime,
		stopTime:   stopTimeNever,
		dispatcher: b.dispatcher,
		logger:     b.logger,
	}
	g.tick = g.onRender
	g.overlay = newBoxOverlay(g.node)

	geom, err := geometry.NewShape(g.shape, g.size)
	if err != nil {
		return nil, fmt.Errorf("build particle shape: %w", err)
	}
	geom.Replicate(g.count)
	g.geom = geom
	g.node.AddDrawable(scene.Drawable{Geometry: geom, Material: g.mat})

	g.setupShaders()
	return g, nil
}

func (g *gpuParticleSystem) Node() scene.Node {
	return g.node
}

func (g *gpuParticleSystem) Active() bool {
	return g.active
}

// Start rewinds the playback clock to the 1.0/1.0 pair, which puts the shader
// in cycling mode with every phase live, and registers for ticks.
func (g *gpuParticleSystem) Start() {
	if g.destroyed || g.active {
		return
	}
	g.active = true
	g.time = 1.0
	g.maxTime = 1.0
	g.stopTime = stopTimeNever
	g.setupShaders()
	g.register()
}

// Stop parks the clock on the dead sentinel pair and deregisters. The base
// shader path has no gradual wind-down, so hard and soft stops behave the
// same here; GpuParticleTrail supplies the trailing stop.
func (g *gpuParticleSystem) Stop(hard bool) {
	if g.destroyed || !g.active {
		return
	}
	g.active = false
	g.time = deadTime
	g.maxTime = deadMaxTime
	g.stageClock()
	g.deregister()
}

// Pause suspends ticking without touching the clock, so Play resumes exactly
// where playback left off.
func (g *gpuParticleSystem) Pause() {
	if g.destroyed || !g.registered {
		return
	}
	g.deregister()
}

// Play resumes a paused system. A stopped system restarts with Start instead.
func (g *gpuParticleSystem) Play() {
	if g.destroyed || !g.active || g.registered {
		return
	}
	g.register()
}

// Translate shifts every waypoint box in place and re-stages their bounds.
// Unlike the pooled path the node stays put: the shader reads particle
// positions straight from the box uniforms.
func (g *gpuParticleSystem) Translate(x, y, z float32) {
	if g.destroyed {
		return
	}
	delta := mgl32.Vec3{x, y, z}
	for i := range g.boxes {
		g.boxes[i].Translate(delta)
	}
	g.setupShaders()
	g.overlay.refresh(g.boxes)
}

func (g *gpuParticleSystem) ShowBoxes() {
	if g.destroyed {
		return
	}
	g.overlay.show(g.boxes)
}

func (g *gpuParticleSystem) HideBoxes() {
	if g.destroyed {
		return
	}
	g.overlay.hide()
}

func (g *gpuParticleSystem) SetAim(aim bool) {
	if g.destroyed || aim == g.aim {
		return
	}
	g.aim = aim
	g.setupShaders()
}

func (g *gpuParticleSystem) SetBoxes(boxes []common.Box) {
	if g.destroyed || len(boxes) == 0 {
		return
	}
	g.boxes = append([]common.Box(nil), boxes...)
	g.setupShaders()
	g.overlay.refresh(g.boxes)
}

func (g *gpuParticleSystem) SetColors(values []mgl32.Vec4) {
	g.setColorRamp(common.SpreadColors(values))
}

func (g *gpuParticleSystem) SetColorKeys(keys []common.ColorKey) {
	g.setColorRamp(common.NormalizeColorKeys(keys))
}

func (g *gpuParticleSystem) SetScales(values []mgl32.Vec3) {
	g.setScaleRamp(common.SpreadScales(values))
}

func (g *gpuParticleSystem) SetScaleKeys(keys []common.ScaleKey) {
	g.setScaleRamp(common.NormalizeScaleKeys(keys))
}

func (g *gpuParticleSystem) SetParticleShape(shape geometry.Shape) {
	if g.destroyed || shape == g.shape {
		return
	}
	if !g.rebuildGeometry(shape, g.size, g.count) {
		return
	}
	g.shape = shape
	g.setupShaders()
}

func (g *gpuParticleSystem) SetParticleSize(size float32) {
	if g.destroyed || size <= 0 || size == g.size {
		return
	}
	if !g.rebuildGeometry(g.shape, size, g.count) {
		return
	}
	g.size = size
	g.setupShaders()
}

func (g *gpuParticleSystem) SetParticleCount(count int) {
	if g.destroyed || count < 1 || count == g.count {
		return
	}
	g.count = count
	g.geom.Replicate(count)
	g.setupShaders()
}

func (g *gpuParticleSystem) SetTension(tension float32) {
	if g.destroyed {
		return
	}
	g.tension = tension
	g.setupShaders()
}

func (g *gpuParticleSystem) Destroy() {
	if g.destroyed {
		return
	}
	g.destroyed = true
	g.active = false
	g.deregister()
	g.overlay.hide()
	g.node.ClearDrawables()
	g.node.Detach()
}

// onRender advances the shared clock by the normalized frame delta, wrapping
// by repeated subtraction so an arbitrarily long stall lands back in range.
func (g *gpuParticleSystem) onRender(dt float32) {
	if g.destroyed || !g.active || g.life <= 0 {
		return
	}
	g.time += dt / g.life
	for g.time >= 1.0 {
		g.time -= 1.0
	}
	g.stageClock()
}

// setupShaders brings the material's variant in line with the current feature
// set. It is safe to call at any time: until a material, base source, at
// least two boxes, and a node all exist it does nothing, and a matching
// variant key skips composition. Composition always starts from the
// material's pristine base sources; compose or link failures are logged and
// leave the previous program bound.
func (g *gpuParticleSystem) setupShaders() {
	if g.mat == nil || g.mat.BaseVertexSource() == "" || len(g.boxes) < 2 || g.node == nil {
		return
	}
	feats := shader.Features{
		BoxCount:      len(g.boxes),
		ColorKeyCount: len(g.colorKeys),
		ScaleKeyCount: len(g.scaleKeys),
		Aim:           g.aim,
	}
	if !feats.Valid() {
		return
	}
	if feats.Key() != g.mat.VariantKey() || g.mat.Program() == nil {
		variant, err := g.composer.Compose(g.mat.BaseVertexSource(), g.mat.BaseFragmentSource(), feats)
		if err != nil {
			g.logger.Errorf("compose particle shader variant: %v", err)
			return
		}
		prog, err := g.compiler.Compile(variant.VertexSource, variant.FragmentSource)
		if err != nil {
			g.logger.Errorf("link particle shader variant %s: %v", variant.Key, err)
			return
		}
		g.mat.SetProgram(variant.Key, prog)
	}
	g.uploadUniforms()
	g.geom.MarkDirty()
}

// uploadUniforms stages the full parameter block for the linked variant.
func (g *gpuParticleSystem) uploadUniforms() {
	if g.mat == nil || g.mat.Program() == nil {
		return
	}
	g.stageClock()
	g.mat.StageFloat(shader.ParticleParamsVar, shader.ParamTension, g.tension)
	g.mat.StageVec4Slice(shader.ParticleParamsVar, shader.ParamBoxes, boxBounds(g.boxes))
	if len(g.colorKeys) > 0 {
		values := make([]mgl32.Vec4, len(g.colorKeys))
		keys := make([]mgl32.Vec4, len(g.colorKeys))
		for i, k := range g.colorKeys {
			values[i] = k.Value
			keys[i] = mgl32.Vec4{k.Key, 0, 0, 0}
		}
		g.mat.StageVec4Slice(shader.ParticleParamsVar, shader.ParamColorValues, values)
		g.mat.StageVec4Slice(shader.ParticleParamsVar, shader.ParamColorKeys, keys)
	}
	if len(g.scaleKeys) > 0 {
		keys := make([]mgl32.Vec4, len(g.scaleKeys))
		for i, k := range g.scaleKeys {
			keys[i] = mgl32.Vec4{k.Value.X(), k.Value.Y(), k.Value.Z(), k.Key}
		}
		g.mat.StageVec4Slice(shader.ParticleParamsVar, shader.ParamScaleKeys, keys)
	}
}

// stageClock stages the three playback clock fields without touching the rest
// of the block.
func (g *gpuParticleSystem) stageClock() {
	if g.mat == nil || g.mat.Program() == nil {
		return
	}
	g.mat.StageFloat(shader.ParticleParamsVar, shader.ParamTime, g.time)
	g.mat.StageFloat(shader.ParticleParamsVar, shader.ParamMaxTime, g.maxTime)
	g.mat.StageFloat(shader.ParticleParamsVar, shader.ParamStopTime, g.stopTime)
}

func (g *gpuParticleSystem) setColorRamp(keys []common.ColorKey) {
	if g.destroyed {
		return
	}
	g.colorKeys = keys
	g.setupShaders()
}

func (g *gpuParticleSystem) setScaleRamp(keys []common.ScaleKey) {
	if g.destroyed {
		return
	}
	g.scaleKeys = keys
	g.setupShaders()
}

// rebuildGeometry swaps the node's drawable for a freshly built and
// replicated shape. On failure the current geometry stays bound.
func (g *gpuParticleSystem) rebuildGeometry(shape geometry.Shape, size float32, count int) bool {
	geom, err := geometry.NewShape(shape, size)
	if err != nil {
		g.logger.Errorf("rebuild particle shape: %v", err)
		return false
	}
	geom.Replicate(count)
	g.node.RemoveDrawable(g.geom.ID())
	g.node.AddDrawable(scene.Drawable{Geometry: geom, Material: g.mat})
	g.geom = geom
	return true
}

func (g *gpuParticleSystem) register() {
	if g.registered || g.dispatcher == nil {
		return
	}
	g.handlerID = g.dispatcher.AddTickHandler(g.tick)
	g.registered = true
}

func (g *gpuParticleSystem) deregister() {
	if !g.registered || g.dispatcher == nil {
		return
	}
	g.dispatcher.RemoveTickHandler(g.handlerID)
	g.registered = false
}

// boxBounds flattens boxes into the uniform layout the curve support
// functions index: min and max corner per box, interleaved.
func boxBounds(boxes []common.Box) []mgl32.Vec4 {
	out := make([]mgl32.Vec4, 0, len(boxes)*2)
	for _, b := range boxes {
		out = append(out, mgl32.Vec4{b.Min.X(), b.Min.Y(), b.Min.Z(), 0})
		out = append(out, mgl32.Vec4{b.Max.X(), b.Max.Y(), b.Max.Z(), 0})
	}
	return out
}
