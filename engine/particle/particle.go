package particle

import (
	"errors"
	"math/rand"
	"time"

	"github.com/Carmen-Shannon/wisp-go/common"
	"github.com/Carmen-Shannon/wisp-go/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrNoFrames reports a particle constructed without sampled path positions.
var ErrNoFrames = errors.New("particle: at least one sampled frame position is required")

// Particle is one pooled object on the host-animated path. It owns a dedicated
// scene node and a fully precomputed playback: one transform, color, and scale
// per frame, baked at configuration time so the per-tick work is a single
// array lookup. A particle is a small state machine: ready (idle, eligible to
// launch), active (advancing through frames), destroyed (terminal).
type Particle interface {
	// Node returns the scene node the particle drives. The particle owns it
	// exclusively: the node is created with the particle and detached on
	// Destroy.
	//
	// Returns:
	//   - scene.Node: the particle's node
	Node() scene.Node

	// Ready reports whether the particle is idle and eligible to launch.
	//
	// Returns:
	//   - bool: true when ready
	Ready() bool

	// Active reports whether the particle is advancing through frames.
	//
	// Returns:
	//   - bool: true when active
	Active() bool

	// Destroyed reports whether the particle has been torn down.
	//
	// Returns:
	//   - bool: true once Destroy has run
	Destroyed() bool

	// LastFrame returns the number of precomputed frames. One launch loop
	// plays lastFrame-1 updates before wrapping.
	//
	// Returns:
	//   - int: the baked frame count
	LastFrame() int

	// Run launches a ready particle for loopCount full passes over its
	// frames, making the node visible and applying the first frame. Calls on
	// a particle that is not ready are ignored.
	//
	// Parameters:
	//   - loopCount: how many passes to play before returning to ready
	Run(loopCount int)

	// Update advances an active particle by one frame and applies that
	// frame's transform and color to the node. Reaching the final frame
	// wraps to the first and consumes one loop; consuming the last loop
	// resets the particle to ready. Calls while not active are ignored.
	Update()

	// Reset forces the particle back to ready: frame cursor rewound, loop
	// counter restored to the most recent launch's total, node hidden.
	Reset()

	// Destroy tears the particle down, detaching its node and releasing the
	// node's drawables. Destroy is idempotent.
	Destroy()

	// SetAim toggles orientation along the direction of travel, rebuilding
	// the baked transforms.
	//
	// Parameters:
	//   - aim: true to orient particles along their path
	SetAim(aim bool)

	// SetPositions replaces the sampled path positions and rebuilds the
	// baked transforms. Ramp bakes are redone only when the frame count
	// changes. Empty input is ignored.
	//
	// Parameters:
	//   - points: one position per frame
	SetPositions(points []mgl32.Vec3)

	// SetColorKeys replaces the color ramp and rebakes the per-frame colors,
	// resampling jitter. Nil removes the ramp.
	//
	// Parameters:
	//   - keys: the ramp keys, normalized internally
	SetColorKeys(keys []common.ColorKey)

	// SetScaleKeys replaces the scale ramp and rebakes the per-frame scales,
	// resampling jitter. Nil removes the ramp.
	//
	// Parameters:
	//   - keys: the ramp keys, normalized internally
	SetScaleKeys(keys []common.ScaleKey)
}

var _ Particle = &particle{}

// particle is the implementation of the Particle interface.
type particle struct {
	node scene.Node

	positions []mgl32.Vec3
	matrices  []mgl32.Mat4
	colors    []mgl32.Vec4
	scales    []mgl32.Vec3

	colorKeys   []common.ColorKey
	scaleKeys   []common.ScaleKey
	colorJitter float32
	scaleJitter float32
	aim         bool
	rng         *rand.Rand

	frame      int
	totalLoops int
	loopsLeft  int
	ready      bool
	active     bool
	destroyed  bool
}

// NewParticle creates a particle over the given sampled path, one position per
// frame, with all specified options applied. The particle starts ready and
// hidden.
//
// Parameters:
//   - positions: the sampled path, one position per frame
//   - options: optional ParticleBuilderOption functions
//
// Returns:
//   - Particle: a new Particle instance
//   - error: ErrNoFrames when positions is empty
func NewParticle(positions []mgl32.Vec3, options ...ParticleBuilderOption) (Particle, error) {
	if len(positions) == 0 {
		return nil, ErrNoFrames
	}
	p := &particle{
		node:       scene.NewNode(scene.WithNodeName("particle")),
		frame:      1,
		totalLoops: 1,
		loopsLeft:  1,
		ready:      true,
	}
	for _, opt := range options {
		opt(p)
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	p.reload(positions)
	p.rebakeColors()
	p.rebakeScales()
	p.node.SetVisible(false)
	return p, nil
}

func (p *particle) Node() scene.Node {
	return p.node
}

func (p *particle) Ready() bool {
	return p.ready
}

func (p *particle) Active() bool {
	return p.active
}

func (p *particle) Destroyed() bool {
	return p.destroyed
}

func (p *particle) LastFrame() int {
	return len(p.positions)
}

func (p *particle) Run(loopCount int) {
	if p.destroyed || !p.ready {
		return
	}
	p.ready = false
	p.active = true
	p.totalLoops = loopCount
	p.loopsLeft = loopCount
	p.frame = 1
	p.node.SetVisible(true)
	p.apply()
}

func (p *particle) Update() {
	if p.destroyed || !p.active {
		return
	}
	p.frame++
	if p.frame >= len(p.positions) {
		p.frame = 1
		p.loopsLeft--
		if p.loopsLeft <= 0 {
			p.Reset()
			return
		}
	}
	p.apply()
}

func (p *particle) Reset() {
	if p.destroyed {
		return
	}
	p.frame = 1
	p.loopsLeft = p.totalLoops
	p.active = false
	p.ready = true
	p.node.SetVisible(false)
}

func (p *particle) Destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true
	p.ready = false
	p.active = false
	p.node.SetVisible(false)
	p.node.ClearDrawables()
	p.node.Detach()
}

func (p *particle) SetAim(aim bool) {
	if p.destroyed || aim == p.aim {
		return
	}
	p.aim = aim
	p.rebuildMatrices()
}

func (p *particle) SetPositions(points []mgl32.Vec3) {
	if p.destroyed || len(points) == 0 {
		return
	}
	resized := len(points) != len(p.positions)
	p.reload(points)
	if resized {
		p.rebakeColors()
		p.rebakeScales()
	}
}

func (p *particle) SetColorKeys(keys []common.ColorKey) {
	if p.destroyed {
		return
	}
	p.colorKeys = common.NormalizeColorKeys(keys)
	p.rebakeColors()
}

func (p *particle) SetScaleKeys(keys []common.ScaleKey) {
	if p.destroyed {
		return
	}
	p.scaleKeys = common.NormalizeScaleKeys(keys)
	p.rebakeScales()
}

// apply pushes the current frame's transform and color onto the node.
func (p *particle) apply() {
	i := p.frame - 1
	if i < 0 || i >= len(p.matrices) {
		return
	}
	m := p.matrices[i]
	if p.scales != nil {
		s := p.scales[i]
		m = m.Mul4(mgl32.Scale3D(s.X(), s.Y(), s.Z()))
	}
	p.node.SetMatrix(m)
	if p.colors != nil {
		p.node.SetTint(p.colors[i])
	}
}

func (p *particle) reload(points []mgl32.Vec3) {
	p.positions = make([]mgl32.Vec3, len(points))
	copy(p.positions, points)
	p.rebuildMatrices()
}

func (p *particle) rebuildMatrices() {
	p.matrices = make([]mgl32.Mat4, len(p.positions))
	for i, pos := range p.positions {
		m := mgl32.Translate3D(pos.X(), pos.Y(), pos.Z())
		if p.aim {
			m = m.Mul4(common.AimMatrix(p.travelDir(i)))
		}
		p.matrices[i] = m
	}
}

// travelDir is the central-difference direction of travel at frame i, clamped
// at the path ends.
func (p *particle) travelDir(i int) mgl32.Vec3 {
	next := min(i+1, len(p.positions)-1)
	prev := max(i-1, 0)
	return p.positions[next].Sub(p.positions[prev])
}

// rebakeColors bakes the color ramp into one value per frame. Jitter is
// sampled here and nowhere else, so a baked sequence stays fixed until the
// ramp is set again.
func (p *particle) rebakeColors() {
	if len(p.colorKeys) == 0 {
		p.colors = nil
		return
	}
	p.colors = make([]mgl32.Vec4, len(p.positions))
	for i := range p.colors {
		v := common.LerpColorKeys(p.frameT(i), p.colorKeys)
		if p.colorJitter > 0 {
			for c := range v {
				v[c] = mgl32.Clamp(v[c]+p.jitterDelta(p.colorJitter), 0, 1)
			}
		}
		p.colors[i] = v
	}
}

// rebakeScales is the scale counterpart of rebakeColors. Jittered scales are
// floored at zero.
func (p *particle) rebakeScales() {
	if len(p.scaleKeys) == 0 {
		p.scales = nil
		return
	}
	p.scales = make([]mgl32.Vec3, len(p.positions))
	for i := range p.scales {
		v := common.LerpScaleKeys(p.frameT(i), p.scaleKeys)
		if p.scaleJitter > 0 {
			for c := range v {
				v[c] = max(v[c]+p.jitterDelta(p.scaleJitter), 0)
			}
		}
		p.scales[i] = v
	}
}

// frameT maps a frame index onto the normalized lifetime [0, 1].
func (p *particle) frameT(i int) float32 {
	if len(p.positions) <= 1 {
		return 0
	}
	return float32(i) / float32(len(p.positions)-1)
}

func (p *particle) jitterDelta(amount float32) float32 {
	return (p.rng.Float32()*2 - 1) * amount
}
