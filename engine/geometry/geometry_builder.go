package geometry

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// GeometryBuilderOption is a functional option for configuring a Geometry.
// Use the With* functions to create options that are applied directly to the geometry instance.
type GeometryBuilderOption func(*geometry)

// WithTopology sets the primitive topology the mesh is drawn with.
//
// Parameters:
//   - topology: the wgpu primitive topology
//
// Returns:
//   - GeometryBuilderOption: option function to apply
func WithTopology(topology wgpu.PrimitiveTopology) GeometryBuilderOption {
	return func(g *geometry) {
		g.topology = topology
	}
}

// WithColors sets per-vertex colors for the base shape. The slice length
// must match the base position count or it is ignored in favor of the
// opaque-white default.
//
// Parameters:
//   - colors: one RGBA color per base vertex
//
// Returns:
//   - GeometryBuilderOption: option function to apply
func WithColors(colors []mgl32.Vec4) GeometryBuilderOption {
	return func(g *geometry) {
		g.baseColors = make([]mgl32.Vec4, len(colors))
		copy(g.baseColors, colors)
	}
}

// WithUniformColor assigns a single RGBA color to every base vertex.
//
// Parameters:
//   - color: the color to assign
//
// Returns:
//   - GeometryBuilderOption: option function to apply
func WithUniformColor(color mgl32.Vec4) GeometryBuilderOption {
	return func(g *geometry) {
		g.baseColors = make([]mgl32.Vec4, len(g.basePositions))
		for i := range g.baseColors {
			g.baseColors[i] = color
		}
	}
}
