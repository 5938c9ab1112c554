package shader

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgslVertexFormatMap maps WGSL type names to their corresponding wgpu vertex format and byte size
var wgslVertexFormatMap = map[string]vertexFormatInfo{
	"f32":       {wgpu.VertexFormatFloat32, 4},
	"vec2f":     {wgpu.VertexFormatFloat32x2, 8},
	"vec2<f32>": {wgpu.VertexFormatFloat32x2, 8},
	"vec3f":     {wgpu.VertexFormatFloat32x3, 12},
	"vec3<f32>": {wgpu.VertexFormatFloat32x3, 12},
	"vec4f":     {wgpu.VertexFormatFloat32x4, 16},
	"vec4<f32>": {wgpu.VertexFormatFloat32x4, 16},
	"i32":       {wgpu.VertexFormatSint32, 4},
	"vec2i":     {wgpu.VertexFormatSint32x2, 8},
	"vec2<i32>": {wgpu.VertexFormatSint32x2, 8},
	"vec3i":     {wgpu.VertexFormatSint32x3, 12},
	"vec3<i32>": {wgpu.VertexFormatSint32x3, 12},
	"vec4i":     {wgpu.VertexFormatSint32x4, 16},
	"vec4<i32>": {wgpu.VertexFormatSint32x4, 16},
	"u32":       {wgpu.VertexFormatUint32, 4},
	"vec2u":     {wgpu.VertexFormatUint32x2, 8},
	"vec2<u32>": {wgpu.VertexFormatUint32x2, 8},
	"vec3u":     {wgpu.VertexFormatUint32x3, 12},
	"vec3<u32>": {wgpu.VertexFormatUint32x3, 12},
	"vec4u":     {wgpu.VertexFormatUint32x4, 16},
	"vec4<u32>": {wgpu.VertexFormatUint32x4, 16},
}

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex matches @location(N) attributes
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex matches a struct field line: optional attributes, name, colon, type.
	// The type capture (.+) is greedy to handle parameterized types like array<T, N>.
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// bindGroupDeclRegex captures group, binding, address space, variable name, and type
	// from declarations like: @group(1) @binding(0) var<uniform> particle_params: ParticleParams;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parseVertexEntry extracts the @vertex entry point function name from cleaned WGSL
// source. Returns an empty string if the source declares no vertex entry point.
//
// Parameters:
//   - cleaned: WGSL source with comments already stripped
//
// Returns:
//   - string: the vertex entry point name, or empty string if not found
func parseVertexEntry(cleaned string) string {
	if match := vertexEntryRegex.FindStringSubmatch(cleaned); match != nil {
		return match[1]
	}
	return ""
}

// parseFragmentEntry extracts the @fragment entry point function name from cleaned
// WGSL source. Returns an empty string if the source declares no fragment entry point.
//
// Parameters:
//   - cleaned: WGSL source with comments already stripped
//
// Returns:
//   - string: the fragment entry point name, or empty string if not found
func parseFragmentEntry(cleaned string) string {
	if match := fragmentEntryRegex.FindStringSubmatch(cleaned); match != nil {
		return match[1]
	}
	return ""
}

// parseVertexInput finds the first pure vertex input struct in the cleaned source,
// meaning a struct with at least one @location field and zero @builtin fields, and
// builds its interleaved buffer layout. Vertex output structs mix @location with
// @builtin(position) and are skipped.
//
// Parameters:
//   - cleaned: WGSL source with comments already stripped
//
// Returns:
//   - parsedStruct: the vertex input struct, for attribute name lookups
//   - wgpu.VertexBufferLayout: the constructed buffer layout
//   - bool: false if no vertex input struct was found or a field type is unknown
func parseVertexInput(cleaned string) (parsedStruct, wgpu.VertexBufferLayout, bool) {
	for _, ps := range parseStructBlocks(cleaned) {
		if !isVertexInputStruct(ps) {
			continue
		}
		layout, ok := buildVertexBufferLayout(ps)
		if !ok {
			continue
		}
		return ps, layout, true
	}
	return parsedStruct{}, wgpu.VertexBufferLayout{}, false
}

// isVertexInputStruct returns true if the struct has at least one @location field
// and zero @builtin fields.
//
// Parameters:
//   - ps: the parsed struct to check
//
// Returns:
//   - bool: true if this is a vertex input struct
func isVertexInputStruct(ps parsedStruct) bool {
	hasLocation := false
	for _, f := range ps.fields {
		if f.isBuiltin {
			return false
		}
		if f.location >= 0 {
			hasLocation = true
		}
	}
	return hasLocation
}

// buildVertexBufferLayout converts a parsed vertex input struct into a
// wgpu.VertexBufferLayout. Each field's WGSL type is mapped to a wgpu.VertexFormat
// and fields are packed sequentially, matching the byte views the geometry package
// produces.
//
// Parameters:
//   - ps: the parsed struct containing vertex input fields
//
// Returns:
//   - wgpu.VertexBufferLayout: the constructed vertex buffer layout
//   - bool: false if a field type could not be mapped to a vertex format
func buildVertexBufferLayout(ps parsedStruct) (wgpu.VertexBufferLayout, bool) {
	attrs := make([]wgpu.VertexAttribute, 0, len(ps.fields))
	var offset uint64

	for _, f := range ps.fields {
		info, ok := wgslVertexFormatMap[f.typeName]
		if !ok {
			return wgpu.VertexBufferLayout{}, false
		}

		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         info.format,
			Offset:         offset,
			ShaderLocation: uint32(f.location),
		})
		offset += info.size
	}

	return wgpu.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}, true
}

// parseBindings extracts all @group(N) @binding(M) resource declarations from
// cleaned WGSL source in declaration order.
//
// Parameters:
//   - cleaned: WGSL source with comments already stripped
//
// Returns:
//   - []parsedBinding: every resource declaration found in the source
func parseBindings(cleaned string) []parsedBinding {
	matches := bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1)
	bindings := make([]parsedBinding, 0, len(matches))

	for _, match := range matches {
		group, _ := strconv.Atoi(match[1])
		binding, _ := strconv.Atoi(match[2])
		bindings = append(bindings, parsedBinding{
			group:        group,
			binding:      binding,
			addressSpace: strings.TrimSpace(match[3]),
			varName:      strings.TrimSpace(match[4]),
			typeName:     strings.TrimSpace(match[5]),
		})
	}

	return bindings
}

// classifyBinding creates a wgpu.BindGroupLayoutEntry for a parsed buffer
// declaration. Particle materials bind only buffer resources, so the address
// space alone decides the binding type: var<uniform> produces a uniform buffer
// and var<storage[, access]> produces a storage buffer.
//
// Parameters:
//   - pb: the parsed resource declaration
//   - visibility: the shader stage visibility flag to set on the entry
//   - structSizes: resolved struct layouts used to set MinBindingSize
//
// Returns:
//   - wgpu.BindGroupLayoutEntry: a populated layout entry for the resource
func classifyBinding(pb parsedBinding, visibility wgpu.ShaderStage, structSizes map[string]wgslTypeLayout) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    uint32(pb.binding),
		Visibility: visibility,
	}

	switch {
	case pb.addressSpace == "uniform":
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	case strings.HasPrefix(pb.addressSpace, "storage"):
		if strings.Contains(pb.addressSpace, "read_write") {
			entry.Buffer.Type = wgpu.BufferBindingTypeStorage
		} else {
			entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		}
	}

	if entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
		if layout, ok := resolveTypeLayout(pb.typeName, structSizes); ok && layout.size > 0 {
			entry.Buffer.MinBindingSize = layout.size
		}
	}

	return entry
}

// parseStructBlocks finds all struct { ... } blocks in the cleaned WGSL source
// and parses their fields including @location and @builtin attributes
//
// Parameters:
//   - cleaned: WGSL source with comments already stripped
//
// Returns:
//   - []parsedStruct: all struct blocks found in the source
func parseStructBlocks(cleaned string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(cleaned, -1)
	structs := make([]parsedStruct, 0, len(matches))

	for _, match := range matches {
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: parseStructFields(match[2]),
		})
	}

	return structs
}

// parseStructFields parses the body of a struct block into individual fields,
// extracting @location and @builtin attributes along with the field name and type
//
// Parameters:
//   - body: the content between { and } of a struct declaration
//
// Returns:
//   - []parsedField: all fields found in the struct body
func parseStructFields(body string) []parsedField {
	lines := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var field parsedField

		if builtinRegex.MatchString(line) {
			field.isBuiltin = true
		}

		if locMatch := locationRegex.FindStringSubmatch(line); locMatch != nil {
			loc, err := strconv.Atoi(locMatch[1])
			if err == nil {
				field.location = loc
			}
		} else {
			field.location = -1
		}

		fm := fieldRegex.FindStringSubmatch(line)
		if fm == nil {
			continue
		}
		field.name = fm[1]
		field.typeName = strings.TrimSpace(fm[2])

		fields = append(fields, field)
	}

	return fields
}
