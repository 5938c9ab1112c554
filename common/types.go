// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Box is an axis-aligned volume used as a waypoint region for randomized path
// generation. Min and Max are assumed to satisfy Min[i] <= Max[i] componentwise;
// samplers rely on that ordering but do not enforce it.
type Box struct {
	// Min is the componentwise lower corner of the volume.
	Min mgl32.Vec3 `yaml:"min,flow"`

	// Max is the componentwise upper corner of the volume.
	Max mgl32.Vec3 `yaml:"max,flow"`
}

// Translate shifts both corners of the box by the given delta, in place.
//
// Parameters:
//   - delta: the offset to add to Min and Max
func (b *Box) Translate(delta mgl32.Vec3) {
	b.Min = b.Min.Add(delta)
	b.Max = b.Max.Add(delta)
}

// Center returns the midpoint of the box.
//
// Returns:
//   - mgl32.Vec3: the point halfway between Min and Max
func (b Box) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Corners returns the eight corner points of the box in a fixed order:
// the four corners of the Min-Y face first, then the four corners of the
// Max-Y face, each face wound counter-clockwise looking down the +Y axis.
//
// Returns:
//   - [8]mgl32.Vec3: the corner points
func (b Box) Corners() [8]mgl32.Vec3 {
	return [8]mgl32.Vec3{
		{b.Min.X(), b.Min.Y(), b.Min.Z()},
		{b.Max.X(), b.Min.Y(), b.Min.Z()},
		{b.Max.X(), b.Min.Y(), b.Max.Z()},
		{b.Min.X(), b.Min.Y(), b.Max.Z()},
		{b.Min.X(), b.Max.Y(), b.Min.Z()},
		{b.Max.X(), b.Max.Y(), b.Min.Z()},
		{b.Max.X(), b.Max.Y(), b.Max.Z()},
		{b.Min.X(), b.Max.Y(), b.Max.Z()},
	}
}

// ColorKey is a single entry in a color ramp: an RGBA value pinned to a
// normalized lifetime position. A usable ramp is an ordered-by-key sequence
// of at least two keys spanning exactly [0, 1]; use NormalizeColorKeys to
// bring arbitrary input into that shape.
type ColorKey struct {
	// Key is the normalized lifetime position in [0, 1].
	Key float32 `yaml:"key"`

	// Value is the RGBA color at this position.
	Value mgl32.Vec4 `yaml:"value,flow"`
}

// ScaleKey is a single entry in a scale ramp: a per-axis scale value pinned
// to a normalized lifetime position. The same normalization rules as ColorKey
// apply; use NormalizeScaleKeys.
type ScaleKey struct {
	// Key is the normalized lifetime position in [0, 1].
	Key float32 `yaml:"key"`

	// Value is the XYZ scale at this position.
	Value mgl32.Vec3 `yaml:"value,flow"`
}

// NormalizeColorKeys brings an arbitrary key sequence into canonical ramp
// shape: a single key is duplicated at positions 0 and 1, and a multi-key
// sequence has its first key forced to 0 and its last key forced to 1 with
// the middle keys untouched. Empty input returns nil (no ramp).
//
// Parameters:
//   - keys: the raw key sequence, assumed ordered by Key
//
// Returns:
//   - []ColorKey: a new slice in canonical shape, or nil for empty input
func NormalizeColorKeys(keys []ColorKey) []ColorKey {
	if len(keys) == 0 {
		return nil
	}
	if len(keys) == 1 {
		return []ColorKey{
			{Key: 0, Value: keys[0].Value},
			{Key: 1, Value: keys[0].Value},
		}
	}
	out := make([]ColorKey, len(keys))
	copy(out, keys)
	out[0].Key = 0
	out[len(out)-1].Key = 1
	return out
}

// NormalizeScaleKeys is the ScaleKey counterpart of NormalizeColorKeys.
//
// Parameters:
//   - keys: the raw key sequence, assumed ordered by Key
//
// Returns:
//   - []ScaleKey: a new slice in canonical shape, or nil for empty input
func NormalizeScaleKeys(keys []ScaleKey) []ScaleKey {
	if len(keys) == 0 {
		return nil
	}
	if len(keys) == 1 {
		return []ScaleKey{
			{Key: 0, Value: keys[0].Value},
			{Key: 1, Value: keys[0].Value},
		}
	}
	out := make([]ScaleKey, len(keys))
	copy(out, keys)
	out[0].Key = 0
	out[len(out)-1].Key = 1
	return out
}

// SpreadColors converts a bare value list into an evenly spaced color ramp:
// n values produce keys at i/(n-1). A single value is duplicated at 0 and 1.
//
// Parameters:
//   - values: the RGBA values to spread across [0, 1]
//
// Returns:
//   - []ColorKey: the evenly keyed ramp, or nil for empty input
func SpreadColors(values []mgl32.Vec4) []ColorKey {
	if len(values) == 0 {
		return nil
	}
	if len(values) == 1 {
		return NormalizeColorKeys([]ColorKey{{Key: 0, Value: values[0]}})
	}
	out := make([]ColorKey, len(values))
	step := 1.0 / float32(len(values)-1)
	for i, v := range values {
		out[i] = ColorKey{Key: float32(i) * step, Value: v}
	}
	return NormalizeColorKeys(out)
}

// SpreadScales is the scale counterpart of SpreadColors.
//
// Parameters:
//   - values: the XYZ scale values to spread across [0, 1]
//
// Returns:
//   - []ScaleKey: the evenly keyed ramp, or nil for empty input
func SpreadScales(values []mgl32.Vec3) []ScaleKey {
	if len(values) == 0 {
		return nil
	}
	if len(values) == 1 {
		return NormalizeScaleKeys([]ScaleKey{{Key: 0, Value: values[0]}})
	}
	out := make([]ScaleKey, len(values))
	step := 1.0 / float32(len(values)-1)
	for i, v := range values {
		out[i] = ScaleKey{Key: float32(i) * step, Value: v}
	}
	return NormalizeScaleKeys(out)
}

// LerpColorKeys evaluates a canonical color ramp at time t by scanning keys
// from the second-to-last entry backward for the last key whose position is
// at or below t, then blending linearly with the following key. Keys must be
// in canonical shape (see NormalizeColorKeys). Fewer than two keys degrades
// to opaque white, the neutral color.
//
// Parameters:
//   - t: normalized lifetime position, conceptually in [0, 1]
//   - keys: the canonical ramp to evaluate
//
// Returns:
//   - mgl32.Vec4: the blended RGBA value at t
func LerpColorKeys(t float32, keys []ColorKey) mgl32.Vec4 {
	if len(keys) < 2 {
		return mgl32.Vec4{1, 1, 1, 1}
	}
	for i := len(keys) - 2; i >= 0; i-- {
		if keys[i].Key <= t {
			span := keys[i+1].Key - keys[i].Key
			if span <= 0 {
				return keys[i].Value
			}
			f := (t - keys[i].Key) / span
			return mgl32.Vec4{
				Lerp(keys[i].Value[0], keys[i+1].Value[0], f),
				Lerp(keys[i].Value[1], keys[i+1].Value[1], f),
				Lerp(keys[i].Value[2], keys[i+1].Value[2], f),
				Lerp(keys[i].Value[3], keys[i+1].Value[3], f),
			}
		}
	}
	return keys[0].Value
}

// LerpScaleKeys is the scale counterpart of LerpColorKeys. Fewer than two
// keys degrades to unit scale.
//
// Parameters:
//   - t: normalized lifetime position, conceptually in [0, 1]
//   - keys: the canonical ramp to evaluate
//
// Returns:
//   - mgl32.Vec3: the blended XYZ scale at t
func LerpScaleKeys(t float32, keys []ScaleKey) mgl32.Vec3 {
	if len(keys) < 2 {
		return mgl32.Vec3{1, 1, 1}
	}
	for i := len(keys) - 2; i >= 0; i-- {
		if keys[i].Key <= t {
			span := keys[i+1].Key - keys[i].Key
			if span <= 0 {
				return keys[i].Value
			}
			f := (t - keys[i].Key) / span
			return mgl32.Vec3{
				Lerp(keys[i].Value[0], keys[i+1].Value[0], f),
				Lerp(keys[i].Value[1], keys[i+1].Value[1], f),
				Lerp(keys[i].Value[2], keys[i+1].Value[2], f),
			}
		}
	}
	return keys[0].Value
}
