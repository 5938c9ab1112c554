package shader

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Carmen-Shannon/wisp-go/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// compiler is the implementation of the Compiler interface.
type compiler struct {
	logger common.Logger
}

// Compiler validates a woven shader pair and reflects its layout metadata into
// a Program. Validation is structural, not semantic: it catches missing entry
// points, unparsable vertex inputs, and unbalanced delimiters without a GPU
// device. Callers that hold a previously linked Program keep it on error, so a
// bad variant never replaces a working one.
type Compiler interface {
	// Compile parses both stages and builds the Program's reflected layout:
	// entry points, the vertex buffer layout, bind group layout descriptors
	// with stage visibility merged across both sources, and per-field byte
	// offsets for every buffer binding backed by a declared struct.
	//
	// Parameters:
	//   - vertexSource: the vertex stage WGSL
	//   - fragmentSource: the fragment stage WGSL
	//
	// Returns:
	//   - Program: the compiled program handle
	//   - error: an error describing the first structural problem found
	Compile(vertexSource, fragmentSource string) (Program, error)
}

var _ Compiler = &compiler{}

// NewCompiler creates a new Compiler with all specified options applied.
//
// Parameters:
//   - options: optional CompilerBuilderOption functions
//
// Returns:
//   - Compiler: a new Compiler instance
func NewCompiler(options ...CompilerBuilderOption) Compiler {
	c := &compiler{
		logger: common.NopLogger(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *compiler) Compile(vertexSource, fragmentSource string) (Program, error) {
	vClean := stripComments(vertexSource)
	fClean := stripComments(fragmentSource)

	if err := checkBalanced(vClean); err != nil {
		return nil, fmt.Errorf("shader: vertex stage: %w", err)
	}
	if err := checkBalanced(fClean); err != nil {
		return nil, fmt.Errorf("shader: fragment stage: %w", err)
	}

	vertexEntry := parseVertexEntry(vClean)
	if vertexEntry == "" {
		return nil, errors.New("shader: vertex stage declares no @vertex entry point")
	}
	fragmentEntry := parseFragmentEntry(fClean)
	if fragmentEntry == "" {
		return nil, errors.New("shader: fragment stage declares no @fragment entry point")
	}

	vertexInput, vertexLayout, ok := parseVertexInput(vClean)
	if !ok {
		return nil, errors.New("shader: vertex stage declares no parsable vertex input struct")
	}

	attributes := make(map[string]uint32, len(vertexInput.fields))
	for _, f := range vertexInput.fields {
		if f.location >= 0 {
			attributes[f.name] = uint32(f.location)
		}
	}

	entries := make(map[int]map[uint32]wgpu.BindGroupLayoutEntry)
	uniforms := make(map[string]uniformBlock)

	// Each stage re-declares the structs it uses, so layouts are resolved per
	// stage and bindings seen in both stages get their visibility merged.
	stages := []struct {
		cleaned    string
		visibility wgpu.ShaderStage
	}{
		{vClean, wgpu.ShaderStageVertex},
		{fClean, wgpu.ShaderStageFragment},
	}
	for _, stage := range stages {
		structs := parseStructBlocks(stage.cleaned)
		sizes := computeStructSizes(structs)

		for _, pb := range parseBindings(stage.cleaned) {
			entry := classifyBinding(pb, stage.visibility, sizes)
			if entries[pb.group] == nil {
				entries[pb.group] = make(map[uint32]wgpu.BindGroupLayoutEntry)
			}
			if prev, seen := entries[pb.group][entry.Binding]; seen {
				prev.Visibility |= stage.visibility
				entries[pb.group][entry.Binding] = prev
			} else {
				entries[pb.group][entry.Binding] = entry
			}

			if _, seen := uniforms[pb.varName]; seen {
				continue
			}
			ps, found := structByName(structs, pb.typeName)
			if !found {
				continue
			}
			fields, resolved := computeFieldOffsets(ps, sizes)
			if !resolved {
				continue
			}
			size := uint64(0)
			if layout, resolved := sizes[pb.typeName]; resolved {
				size = layout.size
			}
			uniforms[pb.varName] = uniformBlock{size: size, fields: fields}
		}
	}

	bindGroups := make(map[int]wgpu.BindGroupLayoutDescriptor, len(entries))
	for group, byBinding := range entries {
		list := make([]wgpu.BindGroupLayoutEntry, 0, len(byBinding))
		for _, entry := range byBinding {
			list = append(list, entry)
		}
		sort.Slice(list, func(i, j int) bool {
			return list[i].Binding < list[j].Binding
		})
		bindGroups[group] = wgpu.BindGroupLayoutDescriptor{Entries: list}
	}

	c.logger.Debugf("compiled program: vertex=%s fragment=%s groups=%d uniforms=%d",
		vertexEntry, fragmentEntry, len(bindGroups), len(uniforms))

	return &program{
		vertexSource:   vertexSource,
		fragmentSource: fragmentSource,
		vertexEntry:    vertexEntry,
		fragmentEntry:  fragmentEntry,
		vertexLayout:   vertexLayout,
		attributes:     attributes,
		bindGroups:     bindGroups,
		uniforms:       uniforms,
	}, nil
}

// checkBalanced verifies that braces and parentheses pair up in cleaned source.
// It is the cheap structural check that catches a mangled weave before the
// source ever reaches a GPU driver.
func checkBalanced(cleaned string) error {
	if open, closed := strings.Count(cleaned, "{"), strings.Count(cleaned, "}"); open != closed {
		return fmt.Errorf("unbalanced braces: %d opening, %d closing", open, closed)
	}
	if open, closed := strings.Count(cleaned, "("), strings.Count(cleaned, ")"); open != closed {
		return fmt.Errorf("unbalanced parentheses: %d opening, %d closing", open, closed)
	}
	return nil
}

// structByName finds a parsed struct by its declared type name.
func structByName(structs []parsedStruct, name string) (parsedStruct, bool) {
	for _, ps := range structs {
		if ps.name == name {
			return ps, true
		}
	}
	return parsedStruct{}, false
}
