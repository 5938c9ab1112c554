// package material pairs shader sources with the CPU-side uniform staging the
// renderer uploads before a draw. A material keeps its authored host sources
// immutable so variant composition can always restart from a pristine base;
// the linked Program and its variant key are swapped in after each successful
// compile.
package material

import (
	_ "embed"

	"github.com/Carmen-Shannon/wisp-go/common"
	"github.com/Carmen-Shannon/wisp-go/engine/shader"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

//go:embed assets/particle_vert.wgsl
var particleVertexSource string

//go:embed assets/particle_frag.wgsl
var particleFragmentSource string

// material is the implementation of the Material interface.
type material struct {
	id                 uuid.UUID
	name               string
	baseVertexSource   string
	baseFragmentSource string
	variantKey         string
	prog               shader.Program
	staged             map[string][]byte
	dirty              bool
	logger             common.Logger
}

// Material encapsulates the shader sources, the linked program, and the staged
// uniform bytes a draw call needs.
//
// The base sources are set at construction and are read-only through this
// interface: composition always starts from them, never from a previously
// woven variant. The program reference and variant key are mutable so they can
// be swapped after each successful compile. Uniform staging resolves field
// names to byte offsets through the linked program's reflected layout; staging
// before a program is linked, or naming an unknown binding or field, is a
// no-op that reports false.
type Material interface {
	// ID retrieves the unique identifier assigned at construction.
	//
	// Returns:
	//   - uuid.UUID: the material id
	ID() uuid.UUID

	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// BaseVertexSource retrieves the authored vertex stage WGSL, with any
	// composition markers intact.
	//
	// Returns:
	//   - string: the host vertex source
	BaseVertexSource() string

	// BaseFragmentSource retrieves the authored fragment stage WGSL, with any
	// composition markers intact.
	//
	// Returns:
	//   - string: the host fragment source
	BaseFragmentSource() string

	// VariantKey retrieves the key of the currently linked shader variant.
	//
	// Returns:
	//   - string: the variant key, or empty before the first link
	VariantKey() string

	// Program retrieves the linked program handle.
	//
	// Returns:
	//   - shader.Program: the program, or nil before the first link
	Program() shader.Program

	// SetProgram swaps in a newly linked program. Staged uniform bytes from
	// the previous program are discarded, since the new layout may place
	// fields at different offsets.
	//
	// Parameters:
	//   - variantKey: the variant key the program was compiled from
	//   - prog: the linked program handle
	SetProgram(variantKey string, prog shader.Program)

	// StageBytes copies raw bytes into the staged block for a uniform field,
	// resolving the destination offset through the linked program.
	//
	// Parameters:
	//   - varName: the uniform binding's variable name
	//   - fieldName: the field within the binding's struct
	//   - data: the bytes to copy
	//
	// Returns:
	//   - bool: true if the field was resolved and the bytes staged
	StageBytes(varName, fieldName string, data []byte) bool

	// StageFloat stages a single f32 uniform field.
	//
	// Parameters:
	//   - varName: the uniform binding's variable name
	//   - fieldName: the field within the binding's struct
	//   - value: the value to stage
	//
	// Returns:
	//   - bool: true if the field was resolved and the value staged
	StageFloat(varName, fieldName string, value float32) bool

	// StageVec4 stages a single vec4<f32> uniform field.
	//
	// Parameters:
	//   - varName: the uniform binding's variable name
	//   - fieldName: the field within the binding's struct
	//   - value: the value to stage
	//
	// Returns:
	//   - bool: true if the field was resolved and the value staged
	StageVec4(varName, fieldName string, value mgl32.Vec4) bool

	// StageVec4Slice stages an array<vec4<f32>, N> uniform field. Slices
	// shorter than the declared array fill only their prefix.
	//
	// Parameters:
	//   - varName: the uniform binding's variable name
	//   - fieldName: the field within the binding's struct
	//   - values: the elements to stage
	//
	// Returns:
	//   - bool: true if the field was resolved and the values staged
	StageVec4Slice(varName, fieldName string, values []mgl32.Vec4) bool

	// UniformBytes retrieves the staged block for a uniform binding, sized to
	// the binding's declared struct.
	//
	// Returns:
	//   - []byte: the staged bytes, or nil if nothing was staged for varName
	UniformBytes(varName string) []byte

	// Dirty reports whether any uniform field was staged since the last
	// ClearDirty.
	//
	// Returns:
	//   - bool: true if staged bytes await upload
	Dirty() bool

	// ClearDirty marks the staged uniforms as uploaded.
	ClearDirty()
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided
// options. Without a WithSources option the material carries the embedded
// particle host pair, whose composition markers are inert comments until a
// variant is woven, so the base sources are valid WGSL on their own.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		id:                 uuid.New(),
		baseVertexSource:   particleVertexSource,
		baseFragmentSource: particleFragmentSource,
		staged:             make(map[string][]byte),
		logger:             common.NopLogger(),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) ID() uuid.UUID {
	return m.id
}

func (m *material) Name() string {
	return m.name
}

func (m *material) BaseVertexSource() string {
	return m.baseVertexSource
}

func (m *material) BaseFragmentSource() string {
	return m.baseFragmentSource
}

func (m *material) VariantKey() string {
	return m.variantKey
}

func (m *material) Program() shader.Program {
	return m.prog
}

func (m *material) SetProgram(variantKey string, prog shader.Program) {
	m.variantKey = variantKey
	m.prog = prog
	m.staged = make(map[string][]byte)
	m.dirty = false
}

func (m *material) StageBytes(varName, fieldName string, data []byte) bool {
	block, offset, ok := m.resolve(varName, fieldName)
	if !ok {
		return false
	}
	if offset+uint64(len(data)) > uint64(len(block)) {
		m.logger.Warnf("material %s: %d bytes for %s.%s overflow the %d byte block", m.name, len(data), varName, fieldName, len(block))
		return false
	}
	copy(block[offset:], data)
	m.dirty = true
	return true
}

func (m *material) StageFloat(varName, fieldName string, value float32) bool {
	return m.StageBytes(varName, fieldName, common.StructToBytes(&value))
}

func (m *material) StageVec4(varName, fieldName string, value mgl32.Vec4) bool {
	return m.StageBytes(varName, fieldName, common.StructToBytes(&value))
}

func (m *material) StageVec4Slice(varName, fieldName string, values []mgl32.Vec4) bool {
	if len(values) == 0 {
		return false
	}
	return m.StageBytes(varName, fieldName, common.SliceToBytes(values))
}

func (m *material) UniformBytes(varName string) []byte {
	return m.staged[varName]
}

func (m *material) Dirty() bool {
	return m.dirty
}

func (m *material) ClearDirty() {
	m.dirty = false
}

// resolve maps a binding variable and field name to the staged block and byte
// offset to write at, allocating the block on first use.
func (m *material) resolve(varName, fieldName string) ([]byte, uint64, bool) {
	if m.prog == nil {
		m.logger.Debugf("material %s: staging %s.%s before a program is linked", m.name, varName, fieldName)
		return nil, 0, false
	}
	offset, ok := m.prog.UniformOffset(varName, fieldName)
	if !ok {
		m.logger.Debugf("material %s: no field %s.%s in the linked program", m.name, varName, fieldName)
		return nil, 0, false
	}
	block, ok := m.staged[varName]
	if !ok {
		size, sizeOK := m.prog.UniformSize(varName)
		if !sizeOK {
			return nil, 0, false
		}
		block = make([]byte, size)
		m.staged[varName] = block
	}
	return block, offset, true
}
