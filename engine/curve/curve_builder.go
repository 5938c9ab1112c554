package curve

import (
	"github.com/go-gl/mathgl/mgl32"
)

// CurveBuilderOption is a functional option for configuring a Curve.
// Use the With* functions to create options that are applied directly to the curve instance.
type CurveBuilderOption func(*curve)

// WithType selects the interpolation algorithm.
//
// Parameters:
//   - t: one of the Type constants
//
// Returns:
//   - CurveBuilderOption: option function to apply
func WithType(t Type) CurveBuilderOption {
	return func(c *curve) {
		c.curveType = t
	}
}

// WithWeights sets per-waypoint Bezier weights. The slice length must match
// the waypoint count; non-uniform weights pull the blended curve toward the
// heavier waypoints without renormalizing the inputs.
//
// Parameters:
//   - weights: one weight per waypoint
//
// Returns:
//   - CurveBuilderOption: option function to apply
func WithWeights(weights []float32) CurveBuilderOption {
	return func(c *curve) {
		c.weights = make([]float32, len(weights))
		copy(c.weights, weights)
	}
}

// WithTangents sets explicit per-waypoint tangents for CubicHermite curves.
// The slice length must match the waypoint count. Cardinal curves ignore
// these and derive their own.
//
// Parameters:
//   - tangents: one tangent per waypoint
//
// Returns:
//   - CurveBuilderOption: option function to apply
func WithTangents(tangents []mgl32.Vec3) CurveBuilderOption {
	return func(c *curve) {
		n := len(tangents)
		c.tanX = make([]float32, n)
		c.tanY = make([]float32, n)
		c.tanZ = make([]float32, n)
		for i, t := range tangents {
			c.tanX[i] = t.X()
			c.tanY[i] = t.Y()
			c.tanZ[i] = t.Z()
		}
	}
}

// WithTension sets the Cardinal tension. 0 reproduces a Catmull-Rom spline;
// values toward 1 flatten tangents and straighten segments.
//
// Parameters:
//   - tension: the tension value
//
// Returns:
//   - CurveBuilderOption: option function to apply
func WithTension(tension float32) CurveBuilderOption {
	return func(c *curve) {
		c.tension = tension
	}
}

// WithInterpolator supplies the evaluation function for a Custom curve and
// selects the Custom type. The function receives the raw parameter t and
// fully replaces the built-in algorithms.
//
// Parameters:
//   - fn: the interpolation function
//
// Returns:
//   - CurveBuilderOption: option function to apply
func WithInterpolator(fn func(t float32) mgl32.Vec3) CurveBuilderOption {
	return func(c *curve) {
		c.curveType = Custom
		c.interpolator = fn
	}
}
