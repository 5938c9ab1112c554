package shader

import "github.com/cogentcore/webgpu/wgpu"

// vertexFormatInfo holds the wgpu vertex format and its byte size for offset calculation
type vertexFormatInfo struct {
	format wgpu.VertexFormat
	size   uint64
}

// wgslTypeLayout holds the byte size and alignment for a WGSL type per the WGSL
// specification. Used to compute MinBindingSize for buffer bindings and field
// offsets for uniform staging.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// fieldSpan locates one struct field inside its parent's buffer layout
type fieldSpan struct {
	offset uint64
	size   uint64
}

// parsedField represents a single field extracted from a WGSL struct during parsing
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct represents a WGSL struct block extracted during parsing
type parsedStruct struct {
	name   string
	fields []parsedField
}

// parsedBinding represents a @group/@binding resource declaration extracted during parsing
type parsedBinding struct {
	group        int
	binding      int
	addressSpace string
	varName      string
	typeName     string
}
