package geometry

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUParticleVertexSource is the canonical WGSL definition of the VertexInput struct for particle pipelines.
// Matches GPUParticleVertex layout exactly (36 bytes, tightly packed).
//
//go:embed assets/particle_vertex.wgsl
var GPUParticleVertexSource string

// GPUParticleVertex is the GPU representation of a single particle mesh vertex.
// Matches the WGSL VertexInput struct layout exactly (see GPUParticleVertexSource).
// Size: 36 bytes (vertex attributes only require 4-byte alignment, no padding needed).
type GPUParticleVertex struct {
	Position   [3]float32 // offset  0: vertex position in shape space (12 bytes)
	ParticleID float32    // offset 12: index of the particle copy this vertex belongs to (4 bytes)
	Color      [4]float32 // offset 16: per-vertex RGBA color (16 bytes)
	TimeOffset float32    // offset 32: normalized playback phase offset in [0, 1) (4 bytes)
}

// Size returns the size of the GPUParticleVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUParticleVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUParticleVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 36-byte buffer ready for GPU upload.
func (g *GPUParticleVertex) Marshal() []byte {
	buf := make([]byte, 36)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.ParticleID))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Color[0]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Color[1]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.Color[2]))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.Color[3]))
	binary.LittleEndian.PutUint32(buf[32:36], math.Float32bits(g.TimeOffset))
	return buf
}
