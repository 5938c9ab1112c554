// package curve provides the path interpolation primitives used to animate particles
// through sequences of 3D waypoints. A Curve is constructed from an ordered waypoint
// list and evaluates a position for any parameter t in [0, 1] using one of several
// interpolation algorithms selected at construction time.
package curve

import (
	"fmt"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// Type selects the interpolation algorithm a Curve evaluates with. The set is
// closed; Custom is the only escape hatch and requires an explicit
// interpolator function at construction.
type Type string

const (
	// Linear blends between the two waypoints bounding t's segment, with
	// [0, 1] partitioned into equal-width segments by waypoint count.
	Linear Type = "linear"

	// LinearNorm is Linear reparameterized by cumulative arc length, giving
	// constant-speed traversal regardless of waypoint spacing.
	LinearNorm Type = "linear_norm"

	// Bezier evaluates a full-degree Bernstein blend over all waypoints,
	// weighted per waypoint and normalized by the weighted basis sum.
	Bezier Type = "bezier"

	// CubicHermite blends between segment endpoints using the tangent stored
	// at each waypoint. Tangents must be supplied at construction.
	CubicHermite Type = "cubic_hermite"

	// Cardinal is CubicHermite with tangents derived from neighboring
	// waypoints and the curve's tension. Tension 0 reproduces Catmull-Rom.
	Cardinal Type = "cardinal"

	// Custom delegates evaluation to a caller-supplied function.
	Custom Type = "custom"
)

var validTypes = []Type{Linear, LinearNorm, Bezier, CubicHermite, Cardinal, Custom}

// Curve is an immutable-by-default path through an ordered waypoint sequence.
// Positions only change through Reload; Cardinal tangents are re-derived on
// every Reload and SetTension call.
type Curve interface {
	// Interpolate returns the position at parameter t, conceptually in [0, 1].
	// Values outside the unit interval extrapolate along the boundary segment.
	//
	// Parameters:
	//   - t: the curve parameter
	//
	// Returns:
	//   - mgl32.Vec3: the interpolated position
	Interpolate(t float32) mgl32.Vec3

	// Draw returns a polyline approximation of the curve: sampleCount+2
	// evenly spaced samples including both endpoints.
	//
	// Parameters:
	//   - sampleCount: number of interior samples (negative treated as 0)
	//
	// Returns:
	//   - []mgl32.Vec3: the sampled polyline
	Draw(sampleCount int) []mgl32.Vec3

	// Points returns a copy of the current waypoint positions.
	//
	// Returns:
	//   - []mgl32.Vec3: the waypoints in order
	Points() []mgl32.Vec3

	// Reload replaces the waypoint positions and recomputes all derived data
	// (Cardinal tangents, arc-length table). Weight and tangent slices that
	// no longer match the new point count are reset to neutral values.
	//
	// Parameters:
	//   - points: the new waypoint positions, at least one
	Reload(points []mgl32.Vec3)

	// Tension returns the current Cardinal tension.
	//
	// Returns:
	//   - float32: the tension value
	Tension() float32

	// SetTension updates the Cardinal tension and re-derives tangents.
	// It has no effect on evaluation for non-Cardinal types.
	//
	// Parameters:
	//   - tension: the new tension; 0 is Catmull-Rom, 1 flattens tangents
	SetTension(tension float32)

	// Type returns the interpolation algorithm this curve was built with.
	//
	// Returns:
	//   - Type: the curve type
	Type() Type
}

var _ Curve = &curve{}

// curve stores waypoint data as parallel per-axis arrays so the interpolation
// loops stay scalar and branch-free.
type curve struct {
	xs, ys, zs       []float32
	tanX, tanY, tanZ []float32
	weights          []float32
	tension          float32
	curveType        Type
	interpolator     func(t float32) mgl32.Vec3

	// cumulative arc length per waypoint, populated for LinearNorm
	arc         []float32
	totalLength float32
}

// New creates a Curve from an ordered waypoint list. The default type is
// Linear with uniform weights and zero tension.
//
// Parameters:
//   - points: the waypoint positions, at least one
//   - options: optional CurveBuilderOption functions to configure the curve
//
// Returns:
//   - Curve: the configured curve
//   - error: if the point list is empty, the type is unknown, Custom lacks an
//     interpolator, or supplied weights/tangents do not match the point count
func New(points []mgl32.Vec3, options ...CurveBuilderOption) (Curve, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("curve requires at least one waypoint")
	}

	c := &curve{curveType: Linear}
	c.setPositions(points)
	for _, opt := range options {
		opt(c)
	}

	if !slices.Contains(validTypes, c.curveType) {
		return nil, fmt.Errorf("unknown curve type %q", c.curveType)
	}
	if c.curveType == Custom && c.interpolator == nil {
		return nil, fmt.Errorf("custom curve requires an interpolator function")
	}
	if c.weights != nil && len(c.weights) != len(points) {
		return nil, fmt.Errorf("weight count %d does not match waypoint count %d", len(c.weights), len(points))
	}
	if c.tanX != nil && len(c.tanX) != len(points) {
		return nil, fmt.Errorf("tangent count %d does not match waypoint count %d", len(c.tanX), len(points))
	}

	if c.weights == nil {
		c.weights = uniformWeights(len(points))
	}
	if c.curveType == CubicHermite && c.tanX == nil {
		c.tanX = make([]float32, len(points))
		c.tanY = make([]float32, len(points))
		c.tanZ = make([]float32, len(points))
	}
	c.refresh()
	return c, nil
}

func (c *curve) Interpolate(t float32) mgl32.Vec3 {
	if len(c.xs) == 1 {
		return c.point(0)
	}
	switch c.curveType {
	case LinearNorm:
		return c.linearNorm(t)
	case Bezier:
		return c.bezier(t)
	case CubicHermite, Cardinal:
		return c.hermite(t)
	case Custom:
		return c.interpolator(t)
	default:
		return c.linear(t)
	}
}

func (c *curve) Draw(sampleCount int) []mgl32.Vec3 {
	if sampleCount < 0 {
		sampleCount = 0
	}
	total := sampleCount + 2
	step := 1.0 / float32(total-1)
	out := make([]mgl32.Vec3, total)
	for i := range out {
		out[i] = c.Interpolate(float32(i) * step)
	}
	return out
}

func (c *curve) Points() []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(c.xs))
	for i := range out {
		out[i] = c.point(i)
	}
	return out
}

func (c *curve) Reload(points []mgl32.Vec3) {
	if len(points) == 0 {
		return
	}
	prevCount := len(c.xs)
	c.setPositions(points)
	if len(c.weights) != len(points) {
		c.weights = uniformWeights(len(points))
	}
	if c.curveType != Cardinal && c.tanX != nil && prevCount != len(points) {
		// user-supplied tangents no longer line up, reset to zero
		c.tanX = make([]float32, len(points))
		c.tanY = make([]float32, len(points))
		c.tanZ = make([]float32, len(points))
	}
	c.refresh()
}

func (c *curve) Tension() float32 {
	return c.tension
}

func (c *curve) SetTension(tension float32) {
	c.tension = tension
	if c.curveType == Cardinal {
		c.computeCardinalTangents()
	}
}

func (c *curve) Type() Type {
	return c.curveType
}

// refresh recomputes everything derived from positions and tension.
func (c *curve) refresh() {
	if c.curveType == Cardinal {
		c.computeCardinalTangents()
	}
	if c.curveType == LinearNorm {
		c.computeArcTable()
	}
}

func (c *curve) setPositions(points []mgl32.Vec3) {
	n := len(points)
	c.xs = make([]float32, n)
	c.ys = make([]float32, n)
	c.zs = make([]float32, n)
	for i, p := range points {
		c.xs[i] = p.X()
		c.ys[i] = p.Y()
		c.zs[i] = p.Z()
	}
}

func (c *curve) point(i int) mgl32.Vec3 {
	return mgl32.Vec3{c.xs[i], c.ys[i], c.zs[i]}
}

// segment maps t onto the equal-width segmentation of [0, 1] by waypoint
// count, returning the segment index clamped to count-2 and the local
// fraction within it. The clamp keeps t=1 from indexing past the last
// waypoint pair.
func (c *curve) segment(t float32) (int, float32) {
	last := len(c.xs) - 2
	scaled := t * float32(len(c.xs)-1)
	seg := int(scaled)
	if seg > last {
		seg = last
	}
	if seg < 0 {
		seg = 0
	}
	return seg, scaled - float32(seg)
}

func (c *curve) linear(t float32) mgl32.Vec3 {
	seg, local := c.segment(t)
	return mgl32.Vec3{
		c.xs[seg] + (c.xs[seg+1]-c.xs[seg])*local,
		c.ys[seg] + (c.ys[seg+1]-c.ys[seg])*local,
		c.zs[seg] + (c.zs[seg+1]-c.zs[seg])*local,
	}
}

func (c *curve) linearNorm(t float32) mgl32.Vec3 {
	if c.totalLength <= 0 {
		return c.point(0)
	}
	target := t * c.totalLength

	// last index whose cumulative length is still below the target
	seg := 0
	for i := len(c.arc) - 1; i >= 0; i-- {
		if c.arc[i] < target {
			seg = i
			break
		}
	}
	if seg > len(c.xs)-2 {
		seg = len(c.xs) - 2
	}

	span := c.arc[seg+1] - c.arc[seg]
	if span <= 0 {
		// zero-length segment, resolve to its start
		return c.point(seg)
	}
	local := (target - c.arc[seg]) / span
	return mgl32.Vec3{
		c.xs[seg] + (c.xs[seg+1]-c.xs[seg])*local,
		c.ys[seg] + (c.ys[seg+1]-c.ys[seg])*local,
		c.zs[seg] + (c.zs[seg+1]-c.zs[seg])*local,
	}
}

func (c *curve) bezier(t float32) mgl32.Vec3 {
	n := len(c.xs) - 1
	var px, py, pz, sum float64
	ft := float64(t)
	for i := 0; i <= n; i++ {
		b := binomial(n, i) * math.Pow(ft, float64(i)) * math.Pow(1-ft, float64(n-i)) * float64(c.weights[i])
		px += b * float64(c.xs[i])
		py += b * float64(c.ys[i])
		pz += b * float64(c.zs[i])
		sum += b
	}
	if sum == 0 {
		// all contributing weights vanished at this t, snap to the nearer end
		if t < 0.5 {
			return c.point(0)
		}
		return c.point(n)
	}
	return mgl32.Vec3{float32(px / sum), float32(py / sum), float32(pz / sum)}
}

func (c *curve) hermite(t float32) mgl32.Vec3 {
	seg, l := c.segment(t)
	l2 := l * l
	l3 := l2 * l

	h00 := 2*l3 - 3*l2 + 1
	h10 := l3 - 2*l2 + l
	h01 := -2*l3 + 3*l2
	h11 := l3 - l2

	return mgl32.Vec3{
		h00*c.xs[seg] + h10*c.tanX[seg] + h01*c.xs[seg+1] + h11*c.tanX[seg+1],
		h00*c.ys[seg] + h10*c.tanY[seg] + h01*c.ys[seg+1] + h11*c.tanY[seg+1],
		h00*c.zs[seg] + h10*c.tanZ[seg] + h01*c.zs[seg+1] + h11*c.tanZ[seg+1],
	}
}

// computeCardinalTangents derives the tangent at each waypoint from its
// neighbors: (1 - tension) * (next - prev) / 2, with the first and last
// positions standing in as their own virtual neighbors.
func (c *curve) computeCardinalTangents() {
	n := len(c.xs)
	c.tanX = make([]float32, n)
	c.tanY = make([]float32, n)
	c.tanZ = make([]float32, n)

	scale := (1 - c.tension) / 2
	for i := 0; i < n; i++ {
		prev := i - 1
		if prev < 0 {
			prev = 0
		}
		next := i + 1
		if next > n-1 {
			next = n - 1
		}
		c.tanX[i] = scale * (c.xs[next] - c.xs[prev])
		c.tanY[i] = scale * (c.ys[next] - c.ys[prev])
		c.tanZ[i] = scale * (c.zs[next] - c.zs[prev])
	}
}

func (c *curve) computeArcTable() {
	n := len(c.xs)
	c.arc = make([]float32, n)
	for i := 1; i < n; i++ {
		dx := float64(c.xs[i] - c.xs[i-1])
		dy := float64(c.ys[i] - c.ys[i-1])
		dz := float64(c.zs[i] - c.zs[i-1])
		c.arc[i] = c.arc[i-1] + float32(math.Sqrt(dx*dx+dy*dy+dz*dz))
	}
	c.totalLength = c.arc[n-1]
}

func uniformWeights(n int) []float32 {
	w := make([]float32, n)
	for i := range w {
		w[i] = 1
	}
	return w
}

func binomial(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	out := 1.0
	for i := 0; i < k; i++ {
		out = out * float64(n-i) / float64(i+1)
	}
	return out
}
