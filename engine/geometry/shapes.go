package geometry

import (
	"fmt"
	"math"
	"slices"

	"github.com/Carmen-Shannon/wisp-go/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// Shape names a built-in particle mesh.
type Shape string

const (
	// ShapeCube is an axis-aligned cube centered at the origin.
	ShapeCube Shape = "cube"

	// ShapeSphere is a UV sphere centered at the origin.
	ShapeSphere Shape = "sphere"

	// ShapeArrow is a shaft-and-head arrow pointing along +Y, so aim
	// rotation carries it onto the direction of travel.
	ShapeArrow Shape = "arrow"
)

var validShapes = []Shape{ShapeCube, ShapeSphere, ShapeArrow}

// NewShape builds one of the named particle shapes at the given size.
//
// Parameters:
//   - shape: one of the Shape constants
//   - size: overall extent of the shape in local units
//   - options: optional GeometryBuilderOption functions to configure the mesh
//
// Returns:
//   - Geometry: the shape mesh
//   - error: if the shape name is unknown
func NewShape(shape Shape, size float32, options ...GeometryBuilderOption) (Geometry, error) {
	if !slices.Contains(validShapes, shape) {
		return nil, fmt.Errorf("unknown particle shape %q", shape)
	}
	switch shape {
	case ShapeSphere:
		return NewSphere(size/2, 8, 12, options...), nil
	case ShapeArrow:
		return NewArrow(size, options...), nil
	default:
		return NewCube(size, options...), nil
	}
}

// NewCube returns a cube of the given edge length centered at the origin:
// 8 shared corner vertices and 36 indices forming 12 triangles (2 per face),
// all outward faces wound counter-clockwise.
//
// Parameters:
//   - size: the edge length
//   - options: optional GeometryBuilderOption functions to configure the mesh
//
// Returns:
//   - Geometry: the cube mesh
func NewCube(size float32, options ...GeometryBuilderOption) Geometry {
	h := size / 2
	positions, indices := boxMesh(mgl32.Vec3{-h, -h, -h}, mgl32.Vec3{h, h, h})
	return New(positions, indices, options...)
}

// NewSphere returns a UV sphere centered at the origin. Rings below 2 and
// segments below 3 are raised to those minimums.
//
// Parameters:
//   - radius: the sphere radius
//   - rings: latitude subdivisions
//   - segments: longitude subdivisions
//   - options: optional GeometryBuilderOption functions to configure the mesh
//
// Returns:
//   - Geometry: the sphere mesh
func NewSphere(radius float32, rings, segments int, options ...GeometryBuilderOption) Geometry {
	if rings < 2 {
		rings = 2
	}
	if segments < 3 {
		segments = 3
	}

	var positions []mgl32.Vec3
	for r := 0; r <= rings; r++ {
		phi := math.Pi * float64(r) / float64(rings) // 0 (top) → π (bottom)
		y := float32(math.Cos(phi)) * radius
		ringRadius := float32(math.Sin(phi)) * radius

		for s := 0; s <= segments; s++ {
			theta := 2.0 * math.Pi * float64(s) / float64(segments)
			x := ringRadius * float32(math.Cos(theta))
			z := ringRadius * float32(math.Sin(theta))
			positions = append(positions, mgl32.Vec3{x, y, z})
		}
	}

	var indices []uint32
	stride := segments + 1
	for r := 0; r < rings; r++ {
		for s := 0; s < segments; s++ {
			a := uint32(r*stride + s)
			b := uint32(r*stride + s + 1)
			c := uint32((r+1)*stride + s)
			d := uint32((r+1)*stride + s + 1)

			indices = append(indices, a, c, b)
			indices = append(indices, b, c, d)
		}
	}

	return New(positions, indices, options...)
}

// NewArrow returns an arrow of the given total length pointing along +Y: a
// slim box shaft from the tail up to the head base, topped by a four-sided
// pyramid head.
//
// Parameters:
//   - size: the total arrow length from tail to tip
//   - options: optional GeometryBuilderOption functions to configure the mesh
//
// Returns:
//   - Geometry: the arrow mesh
func NewArrow(size float32, options ...GeometryBuilderOption) Geometry {
	tail := -size / 2
	tip := size / 2
	headBase := size * 0.1
	shaftHalf := size * 0.08
	headHalf := size * 0.2

	positions, indices := boxMesh(
		mgl32.Vec3{-shaftHalf, tail, -shaftHalf},
		mgl32.Vec3{shaftHalf, headBase, shaftHalf},
	)

	// pyramid head: four base corners then the apex
	base := uint32(len(positions))
	positions = append(positions,
		mgl32.Vec3{-headHalf, headBase, -headHalf},
		mgl32.Vec3{headHalf, headBase, -headHalf},
		mgl32.Vec3{headHalf, headBase, headHalf},
		mgl32.Vec3{-headHalf, headBase, headHalf},
		mgl32.Vec3{0, tip, 0},
	)
	indices = append(indices,
		base+0, base+4, base+1, // -Z face
		base+1, base+4, base+2, // +X face
		base+2, base+4, base+3, // +Z face
		base+3, base+4, base+0, // -X face
		base+0, base+1, base+2, // underside
		base+0, base+2, base+3,
	)

	return New(positions, indices, options...)
}

// NewBoxOutline returns the 12 edges of an axis-aligned box as a line list,
// for debug overlays of waypoint volumes.
//
// Parameters:
//   - box: the volume to outline
//   - options: optional GeometryBuilderOption functions to configure the mesh
//
// Returns:
//   - Geometry: the outline mesh
func NewBoxOutline(box common.Box, options ...GeometryBuilderOption) Geometry {
	corners := box.Corners()
	positions := corners[:]

	indices := []uint32{
		0, 1, 1, 2, 2, 3, 3, 0, // bottom face
		4, 5, 5, 6, 6, 7, 7, 4, // top face
		0, 4, 1, 5, 2, 6, 3, 7, // verticals
	}

	opts := append([]GeometryBuilderOption{WithTopology(wgpu.PrimitiveTopologyLineList)}, options...)
	return New(positions, indices, opts...)
}

// NewPolyline returns a connected line list through the given points, for
// debug visualization of sampled curves.
//
// Parameters:
//   - points: the polyline points in order, at least two
//   - options: optional GeometryBuilderOption functions to configure the mesh
//
// Returns:
//   - Geometry: the polyline mesh, or nil for fewer than two points
func NewPolyline(points []mgl32.Vec3, options ...GeometryBuilderOption) Geometry {
	if len(points) < 2 {
		return nil
	}
	positions := make([]mgl32.Vec3, len(points))
	copy(positions, points)

	indices := make([]uint32, 0, (len(points)-1)*2)
	for i := 0; i < len(points)-1; i++ {
		indices = append(indices, uint32(i), uint32(i+1))
	}

	opts := append([]GeometryBuilderOption{WithTopology(wgpu.PrimitiveTopologyLineList)}, options...)
	return New(positions, indices, opts...)
}

// boxMesh returns the 8 corners and 36 triangle indices of an axis-aligned
// box, outward faces wound counter-clockwise.
func boxMesh(min, max mgl32.Vec3) ([]mgl32.Vec3, []uint32) {
	positions := []mgl32.Vec3{
		{min.X(), min.Y(), min.Z()}, {max.X(), min.Y(), min.Z()},
		{max.X(), max.Y(), min.Z()}, {min.X(), max.Y(), min.Z()},
		{min.X(), min.Y(), max.Z()}, {max.X(), min.Y(), max.Z()},
		{max.X(), max.Y(), max.Z()}, {min.X(), max.Y(), max.Z()},
	}
	indices := []uint32{
		4, 5, 6, 4, 6, 7, // Front  (+Z)
		1, 0, 3, 1, 3, 2, // Back   (-Z)
		5, 1, 2, 5, 2, 6, // Right  (+X)
		0, 4, 7, 0, 7, 3, // Left   (-X)
		3, 7, 6, 3, 6, 2, // Top    (+Y)
		0, 1, 5, 0, 5, 4, // Bottom (-Y)
	}
	return positions, indices
}
