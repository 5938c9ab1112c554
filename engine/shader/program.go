package shader

import "github.com/cogentcore/webgpu/wgpu"

// uniformBlock holds the reflected layout of one bound uniform or storage
// buffer: its total byte size and the span of every named field.
type uniformBlock struct {
	size   uint64
	fields map[string]fieldSpan
}

// program is the implementation of the Program interface.
type program struct {
	vertexSource   string
	fragmentSource string
	vertexEntry    string
	fragmentEntry  string
	vertexLayout   wgpu.VertexBufferLayout
	attributes     map[string]uint32
	bindGroups     map[int]wgpu.BindGroupLayoutDescriptor
	uniforms       map[string]uniformBlock
}

// Program is a compiled shader pair with its reflected layout metadata. It is
// the handle a material holds onto after linking: everything a renderer needs
// to create pipelines, and everything the particle systems need to stage
// uniform values by name.
type Program interface {
	// VertexSource retrieves the vertex stage WGSL this program was compiled from.
	//
	// Returns:
	//   - string: the vertex stage source
	VertexSource() string

	// FragmentSource retrieves the fragment stage WGSL this program was compiled from.
	//
	// Returns:
	//   - string: the fragment stage source
	FragmentSource() string

	// VertexEntry returns the name of the @vertex entry point function.
	//
	// Returns:
	//   - string: the vertex entry point name
	VertexEntry() string

	// FragmentEntry returns the name of the @fragment entry point function.
	//
	// Returns:
	//   - string: the fragment entry point name
	FragmentEntry() string

	// VertexLayout retrieves the interleaved vertex buffer layout reflected from
	// the vertex stage's input struct.
	//
	// Returns:
	//   - wgpu.VertexBufferLayout: the vertex buffer layout
	VertexLayout() wgpu.VertexBufferLayout

	// AttributeLocation retrieves the @location index of a vertex input field.
	//
	// Parameters:
	//   - name: the field name inside the vertex input struct
	//
	// Returns:
	//   - uint32: the shader location index
	//   - bool: true if the attribute exists
	AttributeLocation(name string) (uint32, bool)

	// BindGroupLayouts retrieves the bind group layout descriptors reflected
	// from both stages, keyed by group index. Entries declared in both stages
	// carry combined visibility.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayouts() map[int]wgpu.BindGroupLayoutDescriptor

	// UniformOffset retrieves the byte offset of a field within a bound buffer's
	// layout, resolved by variable and field name.
	//
	// Parameters:
	//   - varName: the binding's variable name (e.g. "particle_params")
	//   - fieldName: the field name within the bound struct
	//
	// Returns:
	//   - uint64: the field's byte offset from the start of the buffer
	//   - bool: true if the variable and field exist
	UniformOffset(varName, fieldName string) (uint64, bool)

	// UniformSize retrieves the total byte size of a bound buffer's struct type.
	//
	// Parameters:
	//   - varName: the binding's variable name
	//
	// Returns:
	//   - uint64: the struct's byte size per WGSL layout rules
	//   - bool: true if the variable exists and its type was resolved
	UniformSize(varName string) (uint64, bool)
}

var _ Program = &program{}

func (p *program) VertexSource() string {
	return p.vertexSource
}

func (p *program) FragmentSource() string {
	return p.fragmentSource
}

func (p *program) VertexEntry() string {
	return p.vertexEntry
}

func (p *program) FragmentEntry() string {
	return p.fragmentEntry
}

func (p *program) VertexLayout() wgpu.VertexBufferLayout {
	return p.vertexLayout
}

func (p *program) AttributeLocation(name string) (uint32, bool) {
	loc, ok := p.attributes[name]
	return loc, ok
}

func (p *program) BindGroupLayouts() map[int]wgpu.BindGroupLayoutDescriptor {
	return p.bindGroups
}

func (p *program) UniformOffset(varName, fieldName string) (uint64, bool) {
	block, ok := p.uniforms[varName]
	if !ok {
		return 0, false
	}
	span, ok := block.fields[fieldName]
	if !ok {
		return 0, false
	}
	return span.offset, true
}

func (p *program) UniformSize(varName string) (uint64, bool) {
	block, ok := p.uniforms[varName]
	if !ok {
		return 0, false
	}
	return block.size, true
}
