package shader

import (
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hostVertex is a minimal host vertex stage carrying both @wisp markers and the
// two contract variables the woven body assigns.
const hostVertex = `struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) color: vec4<f32>,
    @location(2) particle_id: f32,
    @location(3) time_offset: f32,
}

struct VertexOutput {
    @builtin(position) clip_position: vec4<f32>,
    @location(0) color: vec4<f32>,
}

//@wisp:support

@vertex
fn vs_main(input: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    var local_position: vec3<f32> = input.position;
    var vertex_color: vec4<f32> = input.color;
    //@wisp:body
    out.clip_position = vec4<f32>(local_position, 1.0);
    out.color = vertex_color;
    return out;
}
`

const hostFragment = `//@wisp:support

@fragment
fn fs_main(@location(0) color: vec4<f32>) -> @location(0) vec4<f32> {
    var final_color: vec4<f32> = color;
    //@wisp:fragment_body
    return final_color;
}
`

func composeHost(t *testing.T, feats Features) Variant {
	t.Helper()
	variant, err := NewComposer().Compose(hostVertex, hostFragment, feats)
	require.NoError(t, err)
	return variant
}

func TestFeaturesValidity(t *testing.T) {
	tests := []struct {
		name  string
		feats Features
		valid bool
	}{
		{"minimal path", Features{BoxCount: 2}, true},
		{"everything on", Features{BoxCount: 4, ColorKeyCount: 3, ScaleKeyCount: 2, Aim: true}, true},
		{"no boxes", Features{}, false},
		{"single box", Features{BoxCount: 1}, false},
		{"single color key", Features{BoxCount: 2, ColorKeyCount: 1}, false},
		{"single scale key", Features{BoxCount: 2, ScaleKeyCount: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.feats.Valid())
		})
	}
}

func TestFeaturesKeyEncodesEveryAxis(t *testing.T) {
	assert.Equal(t, "wisp:b2:c0:s0:afalse", Features{BoxCount: 2}.Key())
	assert.Equal(t, "wisp:b3:c4:s2:atrue",
		Features{BoxCount: 3, ColorKeyCount: 4, ScaleKeyCount: 2, Aim: true}.Key())

	a := Features{BoxCount: 2, ColorKeyCount: 2}
	b := Features{BoxCount: 2, ColorKeyCount: 2}
	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), Features{BoxCount: 2, ColorKeyCount: 2, Aim: true}.Key())
}

func TestComposeRejectsInvalidFeatures(t *testing.T) {
	_, err := NewComposer().Compose(hostVertex, hostFragment, Features{BoxCount: 1})
	require.Error(t, err)
	assert.ErrorContains(t, err, "at least two boxes")
}

func TestComposeWeavesCurveSupportIntoVertexStage(t *testing.T) {
	variant := composeHost(t, Features{BoxCount: 2})

	assert.Equal(t, Features{BoxCount: 2}.Key(), variant.Key)
	assert.Contains(t, variant.VertexSource, "struct ParticleParams {")
	assert.Contains(t, variant.VertexSource,
		"@group(1) @binding(0) var<uniform> particle_params: ParticleParams;")
	assert.Contains(t, variant.VertexSource, "wisp_curve_position")
	// two boxes, min/max corners each
	assert.Contains(t, variant.VertexSource, "boxes: array<vec4<f32>, 4>")

	// disabled features stay out of the weave
	assert.NotContains(t, variant.VertexSource, "wisp_color_at")
	assert.NotContains(t, variant.VertexSource, "wisp_scale_at")
	assert.NotContains(t, variant.VertexSource, "wisp_aim_matrix")
	assert.Contains(t, variant.VertexSource, "vertex_color = input.color;")

	// markers never survive composition
	assert.NotContains(t, variant.VertexSource, "@wisp")
	assert.NotContains(t, variant.FragmentSource, "@wisp")
}

func TestComposeEnablesFeatureHelpersOnDemand(t *testing.T) {
	variant := composeHost(t, Features{BoxCount: 4, ColorKeyCount: 3, ScaleKeyCount: 2, Aim: true})

	assert.Contains(t, variant.VertexSource, "fn wisp_color_at")
	assert.Contains(t, variant.VertexSource, "fn wisp_scale_at")
	assert.Contains(t, variant.VertexSource, "fn wisp_aim_matrix")
	assert.Contains(t, variant.VertexSource, "fn wisp_tangent")
	assert.Contains(t, variant.VertexSource, "boxes: array<vec4<f32>, 8>")
	assert.Contains(t, variant.VertexSource, "color_values: array<vec4<f32>, 3>")
	assert.Contains(t, variant.VertexSource, "color_keys: array<vec4<f32>, 3>")
	assert.Contains(t, variant.VertexSource, "scale_keys: array<vec4<f32>, 2>")

	// every count and expression token is baked out
	assert.NotContains(t, variant.VertexSource, "WISP_")

	assert.Contains(t, variant.FragmentSource, "fn wisp_alpha_cull")
	assert.Contains(t, variant.FragmentSource, "discard;")
	assert.Contains(t, variant.FragmentSource, "wisp_alpha_cull(final_color);")
}

func TestComposeWithoutColorRampLeavesFragmentBare(t *testing.T) {
	variant := composeHost(t, Features{BoxCount: 2, ScaleKeyCount: 2})

	assert.NotContains(t, variant.FragmentSource, "wisp_alpha_cull")
	assert.NotContains(t, variant.FragmentSource, "@wisp")
	assert.Contains(t, variant.FragmentSource, "return final_color;")
}

func TestComposeIsIdempotent(t *testing.T) {
	feats := Features{BoxCount: 3, ColorKeyCount: 2, Aim: true}
	first := composeHost(t, feats)

	second, err := NewComposer().Compose(first.VertexSource, first.FragmentSource, feats)
	require.NoError(t, err)
	assert.Equal(t, first.VertexSource, second.VertexSource)
	assert.Equal(t, first.FragmentSource, second.FragmentSource)

	// without a color ramp the fragment carries no sentinel, so the second
	// pass re-runs marker removal and must still come out identical
	bare := composeHost(t, Features{BoxCount: 2})
	again, err := NewComposer().Compose(bare.VertexSource, bare.FragmentSource, Features{BoxCount: 2})
	require.NoError(t, err)
	assert.Equal(t, bare.VertexSource, again.VertexSource)
	assert.Equal(t, bare.FragmentSource, again.FragmentSource)
}

func TestComposePreservesMarkerIndentation(t *testing.T) {
	variant := composeHost(t, Features{BoxCount: 2})

	// module-scope support lands at column zero
	assert.Contains(t, variant.VertexSource, "\nstruct ParticleParams {")
	// the body block inherits the marker's four-space indent
	assert.Contains(t, variant.VertexSource, "\n    var wisp_alive = true;")
}

func TestComposeRequiresVertexMarkers(t *testing.T) {
	noSupport := strings.Replace(hostVertex, "//@wisp:support", "", 1)
	_, err := NewComposer().Compose(noSupport, hostFragment, Features{BoxCount: 2})
	require.Error(t, err)
	assert.ErrorContains(t, err, "no //@wisp:support marker")

	noBody := strings.Replace(hostVertex, "//@wisp:body", "", 1)
	_, err = NewComposer().Compose(noBody, hostFragment, Features{BoxCount: 2})
	require.Error(t, err)
	assert.ErrorContains(t, err, "no //@wisp:body marker")
}

func TestComposeFragmentMarkersOptionalWithoutColorRamp(t *testing.T) {
	bare := `@fragment
fn fs_main(@location(0) color: vec4<f32>) -> @location(0) vec4<f32> {
    return color;
}
`
	variant, err := NewComposer().Compose(hostVertex, bare, Features{BoxCount: 2})
	require.NoError(t, err)
	assert.Equal(t, bare, variant.FragmentSource)

	_, err = NewComposer().Compose(hostVertex, bare, Features{BoxCount: 2, ColorKeyCount: 2})
	require.Error(t, err)
	assert.ErrorContains(t, err, "missing the @wisp markers required for alpha culling")
}

func TestComposeRejectsMalformedMarkers(t *testing.T) {
	unknown := "//@wisp:glow\n" + hostVertex
	_, err := NewComposer().Compose(unknown, hostFragment, Features{BoxCount: 2})
	require.Error(t, err)
	assert.ErrorContains(t, err, `unknown @wisp marker type "glow"`)

	empty := strings.Replace(hostVertex, "//@wisp:support", "//@wisp:", 1)
	_, err = NewComposer().Compose(empty, hostFragment, Features{BoxCount: 2})
	require.Error(t, err)
	assert.ErrorContains(t, err, "empty @wisp marker")
}

func TestComposedVariantCompilesWithStagingOffsets(t *testing.T) {
	variant := composeHost(t, Features{BoxCount: 2, ColorKeyCount: 2, ScaleKeyCount: 2})
	prog, err := NewCompiler().Compile(variant.VertexSource, variant.FragmentSource)
	require.NoError(t, err)

	fields := []struct {
		name   string
		offset uint64
	}{
		{ParamTime, 0},
		{ParamMaxTime, 4},
		{ParamStopTime, 8},
		{ParamTension, 12},
		{ParamBoxes, 16},
		{ParamColorValues, 80},
		{ParamColorKeys, 112},
		{ParamScaleKeys, 144},
	}
	for _, f := range fields {
		offset, ok := prog.UniformOffset(ParticleParamsVar, f.name)
		require.True(t, ok, f.name)
		assert.Equal(t, f.offset, offset, f.name)
	}

	size, ok := prog.UniformSize(ParticleParamsVar)
	require.True(t, ok)
	assert.Equal(t, uint64(176), size)

	layouts := prog.BindGroupLayouts()
	require.Contains(t, layouts, ParticleParamsGroup)
	entries := layouts[ParticleParamsGroup].Entries
	require.Len(t, entries, 1)
	assert.Equal(t, uint32(ParticleParamsBinding), entries[0].Binding)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, entries[0].Buffer.Type)
	assert.Equal(t, wgpu.ShaderStageVertex, entries[0].Visibility)
	assert.Equal(t, uint64(176), entries[0].Buffer.MinBindingSize)
}

func TestComposedBlockShrinksWithoutRamps(t *testing.T) {
	variant := composeHost(t, Features{BoxCount: 2})
	prog, err := NewCompiler().Compile(variant.VertexSource, variant.FragmentSource)
	require.NoError(t, err)

	size, ok := prog.UniformSize(ParticleParamsVar)
	require.True(t, ok)
	assert.Equal(t, uint64(80), size)

	_, ok = prog.UniformOffset(ParticleParamsVar, ParamColorValues)
	assert.False(t, ok)
}
