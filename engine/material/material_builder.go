package material

import (
	"github.com/Carmen-Shannon/wisp-go/common"
)

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithSources is an option builder that replaces the embedded host shader pair
// with custom sources. Sources that should participate in particle variant
// composition must carry the @wisp markers and declare the contract variables
// the woven code assigns.
//
// Parameters:
//   - vertexSource: the host vertex stage WGSL
//   - fragmentSource: the host fragment stage WGSL
//
// Returns:
//   - MaterialBuilderOption: a function that applies the sources option to a material
func WithSources(vertexSource, fragmentSource string) MaterialBuilderOption {
	return func(m *material) {
		m.baseVertexSource = vertexSource
		m.baseFragmentSource = fragmentSource
	}
}

// WithLogger is an option builder that sets the logger used for staging
// diagnostics.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - MaterialBuilderOption: a function that applies the logger option to a material
func WithLogger(logger common.Logger) MaterialBuilderOption {
	return func(m *material) {
		if logger != nil {
			m.logger = logger
		}
	}
}
