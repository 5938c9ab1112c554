package particle

import (
	"math/rand"

	"github.com/Carmen-Shannon/wisp-go/common"
	"github.com/Carmen-Shannon/wisp-go/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// ParticleBuilderOption is a function that modifies a particle during
// construction.
type ParticleBuilderOption func(*particle)

// ParticleWithAim orients the particle along its direction of travel.
//
// Parameters:
//   - aim: true to bake orientation into the per-frame transforms
//
// Returns:
//   - ParticleBuilderOption: the option function
func ParticleWithAim(aim bool) ParticleBuilderOption {
	return func(p *particle) {
		p.aim = aim
	}
}

// ParticleWithColorKeys sets the particle's color ramp from explicit keys.
//
// Parameters:
//   - keys: the ramp keys, normalized internally
//
// Returns:
//   - ParticleBuilderOption: the option function
func ParticleWithColorKeys(keys []common.ColorKey) ParticleBuilderOption {
	return func(p *particle) {
		p.colorKeys = common.NormalizeColorKeys(keys)
	}
}

// ParticleWithColors sets the particle's color ramp from evenly spaced values.
//
// Parameters:
//   - values: the RGBA values to spread across the lifetime
//
// Returns:
//   - ParticleBuilderOption: the option function
func ParticleWithColors(values []mgl32.Vec4) ParticleBuilderOption {
	return func(p *particle) {
		p.colorKeys = common.SpreadColors(values)
	}
}

// ParticleWithScaleKeys sets the particle's scale ramp from explicit keys.
//
// Parameters:
//   - keys: the ramp keys, normalized internally
//
// Returns:
//   - ParticleBuilderOption: the option function
func ParticleWithScaleKeys(keys []common.ScaleKey) ParticleBuilderOption {
	return func(p *particle) {
		p.scaleKeys = common.NormalizeScaleKeys(keys)
	}
}

// ParticleWithScales sets the particle's scale ramp from evenly spaced values.
//
// Parameters:
//   - values: the XYZ scales to spread across the lifetime
//
// Returns:
//   - ParticleBuilderOption: the option function
func ParticleWithScales(values []mgl32.Vec3) ParticleBuilderOption {
	return func(p *particle) {
		p.scaleKeys = common.SpreadScales(values)
	}
}

// ParticleWithColorJitter sets the random range added to each baked ramp
// color, resampled whenever the ramp is set.
//
// Parameters:
//   - amount: the jitter half-range per component
//
// Returns:
//   - ParticleBuilderOption: the option function
func ParticleWithColorJitter(amount float32) ParticleBuilderOption {
	return func(p *particle) {
		p.colorJitter = amount
	}
}

// ParticleWithScaleJitter sets the random range added to each baked ramp
// scale, resampled whenever the ramp is set.
//
// Parameters:
//   - amount: the jitter half-range per component
//
// Returns:
//   - ParticleBuilderOption: the option function
func ParticleWithScaleJitter(amount float32) ParticleBuilderOption {
	return func(p *particle) {
		p.scaleJitter = amount
	}
}

// ParticleWithRNG sets the random source used for ramp jitter. Systems share
// one source across their pool so runs are reproducible under a fixed seed.
//
// Parameters:
//   - rng: the random source
//
// Returns:
//   - ParticleBuilderOption: the option function
func ParticleWithRNG(rng *rand.Rand) ParticleBuilderOption {
	return func(p *particle) {
		if rng != nil {
			p.rng = rng
		}
	}
}

// ParticleWithParent attaches the particle's node to a parent at
// construction.
//
// Parameters:
//   - parent: the node to attach to, ignored when nil
//
// Returns:
//   - ParticleBuilderOption: the option function
func ParticleWithParent(parent scene.Node) ParticleBuilderOption {
	return func(p *particle) {
		if parent != nil {
			parent.AddChild(p.node)
		}
	}
}
