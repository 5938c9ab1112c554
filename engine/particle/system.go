// Package particle animates swarms of small objects along randomly generated
// paths through a sequence of waypoint volumes. Two execution strategies share
// one configuration schema: a pooled path that precomputes every particle's
// trajectory on the host and advances it one frame per tick, and a shader path
// that replicates a single primitive per particle and evaluates position,
// color, and scale per vertex from a handful of uniforms, composing the
// required shader variant at runtime.
package particle

import (
	"github.com/Carmen-Shannon/wisp-go/common"
	"github.com/Carmen-Shannon/wisp-go/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// System is the runtime surface shared by every particle system kind.
// Lifecycle calls that do not apply to the current state are silent no-ops,
// so callers can drive a system from input handlers without bookkeeping.
type System interface {
	// Node returns the scene node anchoring the system's renderables. Attach
	// it wherever the effect should appear.
	//
	// Returns:
	//   - scene.Node: the system's node
	Node() scene.Node

	// Active reports whether playback is running.
	//
	// Returns:
	//   - bool: true while the system is playing
	Active() bool

	// Start begins playback and registers for ticks. Starting an active
	// system is a no-op.
	Start()

	// Stop ends playback. A hard stop cuts every particle off immediately;
	// a soft stop lets particles already in flight finish.
	//
	// Parameters:
	//   - hard: true to also kill in-flight particles
	Stop(hard bool)

	// Pause suspends ticking without resetting playback state.
	Pause()

	// Play resumes a paused system exactly where it left off. A stopped
	// system restarts with Start instead.
	Play()

	// Translate moves the effect by the given offset. The pooled path moves
	// its container node; the shader path rewrites the waypoint boxes.
	//
	// Parameters:
	//   - x, y, z: the offset components
	Translate(x, y, z float32)

	// ShowBoxes attaches a wireframe outline per waypoint box for debugging.
	ShowBoxes()

	// HideBoxes removes the wireframe outlines.
	HideBoxes()

	// SetAim toggles orientation along the direction of travel.
	//
	// Parameters:
	//   - aim: true to orient particles along their path
	SetAim(aim bool)

	// SetBoxes replaces the waypoint volumes. Empty input is ignored.
	//
	// Parameters:
	//   - boxes: the new volumes, in traversal order
	SetBoxes(boxes []common.Box)

	// SetColors replaces the color ramp with evenly spaced values.
	//
	// Parameters:
	//   - values: the RGBA values to spread across the lifetime
	SetColors(values []mgl32.Vec4)

	// SetColorKeys replaces the color ramp with explicit keys. Nil removes
	// the ramp.
	//
	// Parameters:
	//   - keys: the ramp keys, normalized internally
	SetColorKeys(keys []common.ColorKey)

	// SetScales replaces the scale ramp with evenly spaced values.
	//
	// Parameters:
	//   - values: the XYZ scales to spread across the lifetime
	SetScales(values []mgl32.Vec3)

	// SetScaleKeys replaces the scale ramp with explicit keys. Nil removes
	// the ramp.
	//
	// Parameters:
	//   - keys: the ramp keys, normalized internally
	SetScaleKeys(keys []common.ScaleKey)

	// Destroy tears the system down: playback stops, the tick handler is
	// removed, and the system's nodes detach. Destroy is idempotent.
	Destroy()
}

// New builds the system kind the configuration selects: Fast picks the
// shader path, Fast plus Trail the trailing playback variant, and neither
// the pooled host path.
//
// Parameters:
//   - cfg: the construction schema
//   - options: optional SystemBuilderOption functions
//
// Returns:
//   - System: the constructed system
//   - error: an error if the configuration is invalid or construction fails
func New(cfg Config, options ...SystemBuilderOption) (System, error) {
	switch {
	case cfg.Fast && cfg.Trail:
		return NewGpuParticleTrail(cfg, options...)
	case cfg.Fast:
		return NewGpuParticleSystem(cfg, options...)
	default:
		return NewParticleSystem(cfg, options...)
	}
}
