// package geometry holds the mesh primitives particles are drawn with. A Geometry
// owns a base shape (positions, colors, indices) plus the replicated vertex stream
// the GPU particle path renders: the base shape duplicated once per particle, each
// copy tagged with a distinct (particle id, time offset) vertex attribute pair.
package geometry

import (
	"github.com/Carmen-Shannon/wisp-go/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Geometry is a drawable mesh. The base shape set at construction is
// immutable; Replicate regenerates the renderable vertex stream from it.
type Geometry interface {
	// ID retrieves the unique identifier assigned at construction.
	//
	// Returns:
	//   - uuid.UUID: the geometry id
	ID() uuid.UUID

	// Topology retrieves the primitive topology this mesh is drawn with.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: triangle list for solid shapes, line list for outlines
	Topology() wgpu.PrimitiveTopology

	// Positions retrieves the replicated vertex positions.
	//
	// Returns:
	//   - []mgl32.Vec3: the vertex positions, one entry per renderable vertex
	Positions() []mgl32.Vec3

	// Indices retrieves the replicated index stream.
	//
	// Returns:
	//   - []uint32: the indices
	Indices() []uint32

	// BaseVertexCount retrieves the vertex count of the un-replicated shape.
	//
	// Returns:
	//   - int: the base shape vertex count
	BaseVertexCount() int

	// ReplicaCount retrieves the number of shape copies in the vertex stream.
	//
	// Returns:
	//   - int: the copy count, at least 1
	ReplicaCount() int

	// Replicate regenerates the vertex stream as count copies of the base
	// shape. Copy i carries particle id i and time offset i/count on every
	// vertex. The geometry is marked dirty. Counts below 1 are treated as 1.
	//
	// Parameters:
	//   - count: the number of copies
	Replicate(count int)

	// SetColor assigns one RGBA color to every vertex in the base shape and
	// the replicated stream, marking the geometry dirty.
	//
	// Parameters:
	//   - color: the color to assign
	SetColor(color mgl32.Vec4)

	// VertexData serializes the replicated vertex stream into the
	// GPUParticleVertex wire layout for buffer upload.
	//
	// Returns:
	//   - []byte: the interleaved vertex buffer contents
	VertexData() []byte

	// IndexData serializes the replicated index stream for buffer upload.
	//
	// Returns:
	//   - []byte: the index buffer contents
	IndexData() []byte

	// IndexCount retrieves the number of indices in the replicated stream.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// Dirty reports whether GPU-side buffers need to be rebuilt.
	//
	// Returns:
	//   - bool: true if the mesh changed since the last ClearDirty
	Dirty() bool

	// MarkDirty flags the mesh so the renderer rebuilds its GPU buffers.
	MarkDirty()

	// ClearDirty resets the dirty flag after buffers have been rebuilt.
	ClearDirty()
}

var _ Geometry = &geometry{}

type geometry struct {
	id       uuid.UUID
	topology wgpu.PrimitiveTopology

	// base shape, immutable except through SetColor
	basePositions []mgl32.Vec3
	baseColors    []mgl32.Vec4
	baseIndices   []uint32

	// replicated stream derived from the base shape
	positions   []mgl32.Vec3
	colors      []mgl32.Vec4
	ids         []float32
	timeOffsets []float32
	indices     []uint32
	replicas    int

	dirty bool
}

// New creates a Geometry from a base shape. Colors default to opaque white
// when not supplied via WithColors. The geometry starts as a single copy of
// the base shape (id 0, time offset 0 on every vertex) and is marked dirty.
//
// Parameters:
//   - positions: the base shape vertex positions
//   - indices: the base shape index stream
//   - options: optional GeometryBuilderOption functions to configure the mesh
//
// Returns:
//   - Geometry: the configured mesh
func New(positions []mgl32.Vec3, indices []uint32, options ...GeometryBuilderOption) Geometry {
	g := &geometry{
		id:            uuid.New(),
		topology:      wgpu.PrimitiveTopologyTriangleList,
		basePositions: positions,
		baseIndices:   indices,
	}
	for _, opt := range options {
		opt(g)
	}
	if len(g.baseColors) != len(g.basePositions) {
		g.baseColors = make([]mgl32.Vec4, len(g.basePositions))
		for i := range g.baseColors {
			g.baseColors[i] = mgl32.Vec4{1, 1, 1, 1}
		}
	}
	g.Replicate(1)
	return g
}

func (g *geometry) ID() uuid.UUID {
	return g.id
}

func (g *geometry) Topology() wgpu.PrimitiveTopology {
	return g.topology
}

func (g *geometry) Positions() []mgl32.Vec3 {
	return g.positions
}

func (g *geometry) Indices() []uint32 {
	return g.indices
}

func (g *geometry) BaseVertexCount() int {
	return len(g.basePositions)
}

func (g *geometry) ReplicaCount() int {
	return g.replicas
}

func (g *geometry) Replicate(count int) {
	if count < 1 {
		count = 1
	}
	baseV := len(g.basePositions)
	baseI := len(g.baseIndices)

	g.positions = make([]mgl32.Vec3, 0, baseV*count)
	g.colors = make([]mgl32.Vec4, 0, baseV*count)
	g.ids = make([]float32, 0, baseV*count)
	g.timeOffsets = make([]float32, 0, baseV*count)
	g.indices = make([]uint32, 0, baseI*count)

	for copyIdx := 0; copyIdx < count; copyIdx++ {
		id := float32(copyIdx)
		offset := float32(copyIdx) / float32(count)
		g.positions = append(g.positions, g.basePositions...)
		g.colors = append(g.colors, g.baseColors...)
		for v := 0; v < baseV; v++ {
			g.ids = append(g.ids, id)
			g.timeOffsets = append(g.timeOffsets, offset)
		}
		shift := uint32(copyIdx * baseV)
		for _, idx := range g.baseIndices {
			g.indices = append(g.indices, idx+shift)
		}
	}
	g.replicas = count
	g.dirty = true
}

func (g *geometry) SetColor(color mgl32.Vec4) {
	for i := range g.baseColors {
		g.baseColors[i] = color
	}
	for i := range g.colors {
		g.colors[i] = color
	}
	g.dirty = true
}

func (g *geometry) VertexData() []byte {
	var vert GPUParticleVertex
	buf := make([]byte, 0, len(g.positions)*vert.Size())
	for i, p := range g.positions {
		vert = GPUParticleVertex{
			Position:   [3]float32{p.X(), p.Y(), p.Z()},
			ParticleID: g.ids[i],
			Color:      [4]float32(g.colors[i]),
			TimeOffset: g.timeOffsets[i],
		}
		buf = append(buf, vert.Marshal()...)
	}
	return buf
}

func (g *geometry) IndexData() []byte {
	return common.SliceToBytes(g.indices)
}

func (g *geometry) IndexCount() int {
	return len(g.indices)
}

func (g *geometry) Dirty() bool {
	return g.dirty
}

func (g *geometry) MarkDirty() {
	g.dirty = true
}

func (g *geometry) ClearDirty() {
	g.dirty = false
}
