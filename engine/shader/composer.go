package shader

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/wisp-go/common"
)

//go:embed assets/curve_support.wgsl
var curveSupportSource string

//go:embed assets/color_support.wgsl
var colorSupportSource string

//go:embed assets/scale_support.wgsl
var scaleSupportSource string

//go:embed assets/aim_support.wgsl
var aimSupportSource string

//go:embed assets/body.wgsl
var bodySource string

//go:embed assets/fragment_support.wgsl
var fragmentSupportSource string

// ParticleParamsGroup and ParticleParamsBinding locate the generated particle
// parameter uniform block in composed shaders. Group 0 is reserved for the
// host's camera and model bindings.
const (
	ParticleParamsGroup   = 1
	ParticleParamsBinding = 0
)

// ParticleParamsVar is the variable name of the generated uniform block,
// usable with Program.UniformOffset and Program.UniformSize.
const ParticleParamsVar = "particle_params"

// Field names within the generated ParticleParams uniform block. Arrays are
// packed into vec4 elements to satisfy the uniform address space's 16-byte
// array stride: boxes hold min/max corner pairs in consecutive elements, color
// keys carry their normalized position in x, and scale keys carry the scale in
// xyz with the position packed into w.
const (
	ParamTime        = "time"
	ParamMaxTime     = "max_time"
	ParamStopTime    = "stop_time"
	ParamTension     = "tension"
	ParamBoxes       = "boxes"
	ParamColorValues = "color_values"
	ParamColorKeys   = "color_keys"
	ParamScaleKeys   = "scale_keys"
)

// Sentinel identifiers that only appear in woven output. Their presence in a
// source marks that stage as already composed, which is what makes composition
// idempotent: a woven stage is passed through untouched.
const (
	wovenVertexSentinel   = "wisp_curve_position"
	wovenFragmentSentinel = "wisp_alpha_cull"
)

// Features describes the shader variant a particle system needs. Two systems
// with equal Features share a variant key and therefore identical woven source.
type Features struct {
	// BoxCount is the number of waypoint volumes in the path. At least two are
	// required to form a traversable curve.
	BoxCount int

	// ColorKeyCount is the number of normalized color ramp keys, or zero when
	// no color ramp is active. A count of one never reaches the composer:
	// normalization expands single entries to a two-key constant ramp.
	ColorKeyCount int

	// ScaleKeyCount is the number of normalized scale ramp keys, or zero when
	// no scale ramp is active.
	ScaleKeyCount int

	// Aim orients each particle along its direction of travel using a
	// central-difference tangent of the curve.
	Aim bool
}

// Valid reports whether the feature set can be composed: at least two boxes,
// and ramp key counts of zero or at least two.
//
// Returns:
//   - bool: true if the feature set is composable
func (f Features) Valid() bool {
	return f.BoxCount >= 2 &&
		(f.ColorKeyCount == 0 || f.ColorKeyCount >= 2) &&
		(f.ScaleKeyCount == 0 || f.ScaleKeyCount >= 2)
}

// Key returns a stable identifier for the feature set. Materials use it to
// recognize that a requested variant is already linked and skip recomposition.
//
// Returns:
//   - string: the variant key, unique per distinct feature set
func (f Features) Key() string {
	return fmt.Sprintf("wisp:b%d:c%d:s%d:a%t", f.BoxCount, f.ColorKeyCount, f.ScaleKeyCount, f.Aim)
}

// Variant is the result of composing a host shader pair against a feature set.
type Variant struct {
	// Key is the feature set's variant key.
	Key string

	// VertexSource is the woven vertex stage WGSL.
	VertexSource string

	// FragmentSource is the woven fragment stage WGSL.
	FragmentSource string
}

// composer is the implementation of the Composer interface.
type composer struct {
	logger common.Logger
}

// Composer weaves generated particle animation code into host WGSL sources at
// their @wisp markers. Hosts declare the insertion points plus two contract
// variables the woven code assigns: local_position and vertex_color in the
// vertex entry, and final_color in the fragment entry.
type Composer interface {
	// Compose weaves the feature set's generated code into the host sources.
	// A stage that already contains woven output is passed through unchanged,
	// so composing a composed variant is a no-op. The vertex stage must carry
	// support and body markers; the fragment stage only needs markers when a
	// color ramp is active.
	//
	// Parameters:
	//   - vertexSource: the host vertex stage WGSL
	//   - fragmentSource: the host fragment stage WGSL
	//   - feats: the shader variant to produce
	//
	// Returns:
	//   - Variant: the woven sources and their variant key
	//   - error: an error if the feature set is invalid or a required marker is missing
	Compose(vertexSource, fragmentSource string, feats Features) (Variant, error)
}

var _ Composer = &composer{}

// NewComposer creates a new Composer with all specified options applied.
//
// Parameters:
//   - options: optional ComposerBuilderOption functions
//
// Returns:
//   - Composer: a new Composer instance
func NewComposer(options ...ComposerBuilderOption) Composer {
	c := &composer{
		logger: common.NopLogger(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *composer) Compose(vertexSource, fragmentSource string, feats Features) (Variant, error) {
	if !feats.Valid() {
		return Variant{}, fmt.Errorf("shader: feature set %s needs at least two boxes and zero or multiple ramp keys", feats.Key())
	}

	variant := Variant{
		Key:            feats.Key(),
		VertexSource:   vertexSource,
		FragmentSource: fragmentSource,
	}

	if !strings.Contains(vertexSource, wovenVertexSentinel) {
		woven, err := composeVertex(vertexSource, feats)
		if err != nil {
			return Variant{}, err
		}
		variant.VertexSource = woven
	}

	if !strings.Contains(fragmentSource, wovenFragmentSentinel) {
		woven, err := composeFragment(fragmentSource, feats)
		if err != nil {
			return Variant{}, err
		}
		variant.FragmentSource = woven
	}

	c.logger.Debugf("composed shader variant %s", variant.Key)
	return variant, nil
}

// composeVertex replaces the host vertex stage's support and body markers with
// the generated uniform block, curve functions, and per-vertex animation block.
// Both markers are required.
func composeVertex(source string, feats Features) (string, error) {
	woven, found, err := replaceMarker(source, MarkerTypeSupport, buildVertexSupport(feats))
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("shader: vertex source has no //%s%s marker", markerPrefix, MarkerTypeSupport)
	}

	woven, found, err = replaceMarker(woven, MarkerTypeBody, buildVertexBody(feats))
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("shader: vertex source has no //%s%s marker", markerPrefix, MarkerTypeBody)
	}

	return woven, nil
}

// composeFragment replaces the host fragment stage's markers. With a color ramp
// active the markers receive the alpha cull function and its call; without one
// the markers are simply removed. Marker absence is only an error when the
// color ramp needs weaving.
func composeFragment(source string, feats Features) (string, error) {
	support := ""
	body := ""
	if feats.ColorKeyCount > 0 {
		support = fragmentSupportSource
		body = "wisp_alpha_cull(final_color);"
	}

	woven, foundSupport, err := replaceMarker(source, MarkerTypeSupport, support)
	if err != nil {
		return "", err
	}
	woven, foundBody, err := replaceMarker(woven, MarkerTypeFragmentBody, body)
	if err != nil {
		return "", err
	}
	if feats.ColorKeyCount > 0 && (!foundSupport || !foundBody) {
		return "", fmt.Errorf("shader: fragment source is missing the @wisp markers required for alpha culling")
	}

	return woven, nil
}

// buildVertexSupport assembles the module-scope block for the vertex stage: the
// generated ParticleParams uniform, the curve traversal functions, and whichever
// optional ramp and orientation helpers the feature set enables.
func buildVertexSupport(feats Features) string {
	var sb strings.Builder
	sb.WriteString(buildParamsStruct(feats))
	sb.WriteString("\n")
	sb.WriteString(substituteCounts(curveSupportSource, feats))
	if feats.ColorKeyCount > 0 {
		sb.WriteString("\n")
		sb.WriteString(substituteCounts(colorSupportSource, feats))
	}
	if feats.ScaleKeyCount > 0 {
		sb.WriteString("\n")
		sb.WriteString(substituteCounts(scaleSupportSource, feats))
	}
	if feats.Aim {
		sb.WriteString("\n")
		sb.WriteString(aimSupportSource)
	}
	return sb.String()
}

// buildParamsStruct generates the ParticleParams uniform block and its binding
// declaration sized for the feature set. Ramp arrays are only declared when
// their feature is active, so the block's layout varies per variant and callers
// must stage fields through the compiled Program's reflected offsets.
func buildParamsStruct(feats Features) string {
	var sb strings.Builder
	sb.WriteString("struct ParticleParams {\n")
	fmt.Fprintf(&sb, "    %s: f32,\n", ParamTime)
	fmt.Fprintf(&sb, "    %s: f32,\n", ParamMaxTime)
	fmt.Fprintf(&sb, "    %s: f32,\n", ParamStopTime)
	fmt.Fprintf(&sb, "    %s: f32,\n", ParamTension)
	fmt.Fprintf(&sb, "    %s: array<vec4<f32>, %d>,\n", ParamBoxes, feats.BoxCount*2)
	if feats.ColorKeyCount > 0 {
		fmt.Fprintf(&sb, "    %s: array<vec4<f32>, %d>,\n", ParamColorValues, feats.ColorKeyCount)
		fmt.Fprintf(&sb, "    %s: array<vec4<f32>, %d>,\n", ParamColorKeys, feats.ColorKeyCount)
	}
	if feats.ScaleKeyCount > 0 {
		fmt.Fprintf(&sb, "    %s: array<vec4<f32>, %d>,\n", ParamScaleKeys, feats.ScaleKeyCount)
	}
	sb.WriteString("}\n\n")
	fmt.Fprintf(&sb, "@group(%d) @binding(%d) var<uniform> %s: ParticleParams;\n",
		ParticleParamsGroup, ParticleParamsBinding, ParticleParamsVar)
	return sb.String()
}

// buildVertexBody fills the per-vertex animation block's expression slots for
// the feature set. Disabled features collapse to pass-through expressions.
func buildVertexBody(feats Features) string {
	shapeExpr := "input.position"
	if feats.ScaleKeyCount > 0 {
		shapeExpr = "input.position * wisp_scale_at(wisp_t)"
	}
	orientExpr := "wisp_shape"
	if feats.Aim {
		orientExpr = "wisp_aim_matrix(wisp_tangent(input.particle_id, wisp_t)) * wisp_shape"
	}
	colorExpr := "input.color"
	if feats.ColorKeyCount > 0 {
		colorExpr = "wisp_color_at(wisp_t)"
	}
	return strings.NewReplacer(
		"WISP_SHAPE_EXPR", shapeExpr,
		"WISP_ORIENT_EXPR", orientExpr,
		"WISP_COLOR_EXPR", colorExpr,
	).Replace(bodySource)
}

// substituteCounts bakes the feature set's counts into a support fragment,
// turning the WISP_*_COUNT tokens into literal array bounds and loop limits.
func substituteCounts(source string, feats Features) string {
	return strings.NewReplacer(
		"WISP_BOX_COUNT", strconv.Itoa(feats.BoxCount),
		"WISP_COLOR_KEY_COUNT", strconv.Itoa(feats.ColorKeyCount),
		"WISP_SCALE_KEY_COUNT", strconv.Itoa(feats.ScaleKeyCount),
	).Replace(source)
}
