package particle

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/Carmen-Shannon/wisp-go/common"
	"github.com/Carmen-Shannon/wisp-go/engine/geometry"
	"github.com/Carmen-Shannon/wisp-go/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrNoBoxes reports a configuration without waypoint volumes. Boxes are the
// only required field; everything else has a default.
var ErrNoBoxes = errors.New("particle: at least one waypoint box is required")

// Config is the construction schema shared by every system kind. All fields
// are optional except Boxes; zero values inherit the package defaults. The
// same struct loads from YAML, so a demo or tool can keep effect definitions
// in files.
type Config struct {
	// Fast selects the shader-animated path instead of the pooled host path.
	Fast bool `yaml:"fast"`

	// Trail selects the trailing start/stop playback variant. Ignored unless
	// Fast is set.
	Trail bool `yaml:"trail"`

	// Aim orients particles along their direction of travel.
	Aim bool `yaml:"aim"`

	// Boxes are the waypoint volumes generated paths pass through, in order.
	// Required.
	Boxes []common.Box `yaml:"boxes"`

	// ParticleCount is the pool size on the pooled path and the vertex
	// replication factor on the shader path. Defaults to 25 and 1
	// respectively.
	ParticleCount int `yaml:"particleCount"`

	// ParticleSize is the uniform scale of the generated primitive shape.
	ParticleSize float32 `yaml:"particleSize"`

	// ParticleShape picks the built-in primitive to instantiate.
	ParticleShape geometry.Shape `yaml:"particleShape"`

	// Life is the duration of one full traversal of the box sequence, in
	// seconds.
	Life float32 `yaml:"life"`

	// FrameRate is the pooled path's frame bake rate in frames per second.
	// One traversal precomputes life*frameRate+1 frames.
	FrameRate float32 `yaml:"frameRate"`

	// Rate is the pooled path's initial emission rate in particles per
	// second. Zero defaults to the ceiling particleCount/life.
	Rate float32 `yaml:"rate"`

	// Colors is an evenly spaced color ramp. ColorKeys wins when both are
	// set.
	Colors []mgl32.Vec4 `yaml:"colors,flow"`

	// ColorKeys is an explicitly keyed color ramp.
	ColorKeys []common.ColorKey `yaml:"colorKeys"`

	// Scales is an evenly spaced scale ramp. ScaleKeys wins when both are
	// set.
	Scales []mgl32.Vec3 `yaml:"scales,flow"`

	// ScaleKeys is an explicitly keyed scale ramp.
	ScaleKeys []common.ScaleKey `yaml:"scaleKeys"`

	// ColorJitter is the random range added to each baked ramp color on the
	// pooled path, resampled whenever the ramp is set.
	ColorJitter float32 `yaml:"colorJitter"`

	// ScaleJitter is the pooled path's counterpart for baked scales.
	ScaleJitter float32 `yaml:"scaleJitter"`

	// Tension is the cardinal-spline tension. The pooled path fixes it at
	// construction; the shader path can retune it through SetTension.
	Tension float32 `yaml:"tension"`

	// Parent is the node the pooled system's container attaches to. The
	// shader path ignores it; attach Node() wherever it should render.
	Parent scene.Node `yaml:"-"`
}

// systemKind selects which per-kind defaults apply during normalization.
type systemKind int

const (
	kindCPU systemKind = iota
	kindGPU
)

var defaults = mustDefaults()

func mustDefaults() Config {
	var c Config
	if err := yaml.Unmarshal(defaultsYAML, &c); err != nil {
		panic("particle: embedded defaults.yaml is malformed: " + err.Error())
	}
	return c
}

// ParseConfig decodes a YAML document over the package defaults, so fields
// the document omits keep their default values.
//
// Parameters:
//   - data: the YAML document bytes
//
// Returns:
//   - Config: the merged configuration
//   - error: an error if either document fails to decode
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode default config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML configuration file.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - Config: the merged configuration
//   - error: an error if reading or decoding fails
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// Validate reports whether the configuration can construct a system.
//
// Returns:
//   - error: ErrNoBoxes when no waypoint volumes are configured
func (c Config) Validate() error {
	if len(c.Boxes) == 0 {
		return ErrNoBoxes
	}
	return nil
}

// normalized fills zero-valued fields with the package defaults, resolving
// the particle count for the given system kind. Struct-literal configs get
// the same defaults a YAML load would.
func (c Config) normalized(kind systemKind) Config {
	out := c
	out.ParticleSize = common.Coalesce(c.ParticleSize, defaults.ParticleSize)
	out.ParticleShape = common.Coalesce(c.ParticleShape, defaults.ParticleShape)
	out.Life = common.Coalesce(c.Life, defaults.Life)
	out.FrameRate = common.Coalesce(c.FrameRate, defaults.FrameRate)
	if out.ParticleCount <= 0 {
		out.ParticleCount = defaults.ParticleCount
		if kind == kindGPU {
			out.ParticleCount = 1
		}
	}
	return out
}

// colorRamp resolves the configured color ramp into canonical keys. Explicit
// keys take precedence over the evenly spaced value list.
func (c Config) colorRamp() []common.ColorKey {
	if len(c.ColorKeys) > 0 {
		return common.NormalizeColorKeys(c.ColorKeys)
	}
	return common.SpreadColors(c.Colors)
}

// scaleRamp is the scale counterpart of colorRamp.
func (c Config) scaleRamp() []common.ScaleKey {
	if len(c.ScaleKeys) > 0 {
		return common.NormalizeScaleKeys(c.ScaleKeys)
	}
	return common.SpreadScales(c.Scales)
}
