package particle

import (
	"math/rand"
	"time"

	"github.com/Carmen-Shannon/wisp-go/common"
	"github.com/Carmen-Shannon/wisp-go/engine/material"
	"github.com/Carmen-Shannon/wisp-go/engine/shader"
)

// SystemBuilderOption is a function that modifies the collaborators a system
// is constructed with. The same options serve every system kind; options a
// kind has no use for are ignored.
type SystemBuilderOption func(*systemBuilder)

// systemBuilder collects construction collaborators before a system resolves
// its defaults.
type systemBuilder struct {
	dispatcher TickDispatcher
	logger     common.Logger
	rng        *rand.Rand
	material   material.Material
	composer   shader.Composer
	compiler   shader.Compiler
}

func newSystemBuilder(options ...SystemBuilderOption) *systemBuilder {
	b := &systemBuilder{
		logger: common.NopLogger(),
	}
	for _, opt := range options {
		opt(b)
	}
	if b.rng == nil {
		b.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if b.material == nil {
		b.material = material.NewMaterial(
			material.WithName("particle"),
			material.WithLogger(b.logger),
		)
	}
	if b.composer == nil {
		b.composer = shader.NewComposer(shader.ComposerWithLogger(b.logger))
	}
	if b.compiler == nil {
		b.compiler = shader.NewCompiler(shader.CompilerWithLogger(b.logger))
	}
	return b
}

// WithDispatcher sets the tick source the system registers its per-frame
// handler with. Without one the system never ticks on its own; tests drive
// systems through a fake dispatcher.
//
// Parameters:
//   - dispatcher: the tick source
//
// Returns:
//   - SystemBuilderOption: the option function
func WithDispatcher(dispatcher TickDispatcher) SystemBuilderOption {
	return func(b *systemBuilder) {
		b.dispatcher = dispatcher
	}
}

// WithLogger sets the logger for the system and the collaborators it
// constructs. Defaults to the nop logger.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - SystemBuilderOption: the option function
func WithLogger(logger common.Logger) SystemBuilderOption {
	return func(b *systemBuilder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithRNG sets the random source for path generation and ramp jitter. A
// fixed seed makes a system's generated paths reproducible.
//
// Parameters:
//   - rng: the random source
//
// Returns:
//   - SystemBuilderOption: the option function
func WithRNG(rng *rand.Rand) SystemBuilderOption {
	return func(b *systemBuilder) {
		if rng != nil {
			b.rng = rng
		}
	}
}

// WithMaterial sets the material the system renders with. The shader path
// composes its variants from this material's base sources; the pooled path
// uses it for the shared particle shapes. Defaults to a fresh material
// carrying the embedded particle host pair.
//
// Parameters:
//   - mat: the material to use
//
// Returns:
//   - SystemBuilderOption: the option function
func WithMaterial(mat material.Material) SystemBuilderOption {
	return func(b *systemBuilder) {
		if mat != nil {
			b.material = mat
		}
	}
}

// WithComposer sets the shader-variant composer the shader path weaves
// variants with.
//
// Parameters:
//   - composer: the composer to use
//
// Returns:
//   - SystemBuilderOption: the option function
func WithComposer(composer shader.Composer) SystemBuilderOption {
	return func(b *systemBuilder) {
		if composer != nil {
			b.composer = composer
		}
	}
}

// WithCompiler sets the shader compiler the shader path links variants with.
//
// Parameters:
//   - compiler: the compiler to use
//
// Returns:
//   - SystemBuilderOption: the option function
func WithCompiler(compiler shader.Compiler) SystemBuilderOption {
	return func(b *systemBuilder) {
		if compiler != nil {
			b.compiler = compiler
		}
	}
}
