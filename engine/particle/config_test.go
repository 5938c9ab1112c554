package particle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/wisp-go/common"
	"github.com/Carmen-Shannon/wisp-go/engine/geometry"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseConfigAppliesDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
boxes:
  - min: [0, 0, 0]
    max: [1, 1, 1]
`))
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.ParticleCount)
	assert.InDelta(t, 1.0, cfg.ParticleSize, 1e-6)
	assert.Equal(t, geometry.ShapeCube, cfg.ParticleShape)
	assert.InDelta(t, 5.0, cfg.Life, 1e-6)
	assert.InDelta(t, 30.0, cfg.FrameRate, 1e-6)
	assert.Len(t, cfg.Boxes, 1)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, cfg.Boxes[0].Max)
}

func TestParseConfigUserValuesWin(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
fast: true
trail: true
aim: true
particleCount: 200
particleShape: sphere
life: 2.5
rate: 10
tension: 0.5
boxes:
  - min: [-1, 0, 0]
    max: [1, 0, 0]
  - min: [0, 5, 0]
    max: [0, 9, 0]
colors: [[1, 0, 0, 1], [0, 0, 1, 0]]
scaleKeys:
  - key: 0
    value: [1, 1, 1]
  - key: 1
    value: [0, 0, 0]
`))
	require.NoError(t, err)

	assert.True(t, cfg.Fast)
	assert.True(t, cfg.Trail)
	assert.True(t, cfg.Aim)
	assert.Equal(t, 200, cfg.ParticleCount)
	assert.Equal(t, geometry.ShapeSphere, cfg.ParticleShape)
	assert.InDelta(t, 2.5, cfg.Life, 1e-6)
	assert.InDelta(t, 10.0, cfg.Rate, 1e-6)
	assert.InDelta(t, 0.5, cfg.Tension, 1e-6)
	assert.Len(t, cfg.Boxes, 2)
	assert.Len(t, cfg.Colors, 2)
	assert.Len(t, cfg.ScaleKeys, 2)
}

func TestParseConfigRejectsMalformedYAML(t *testing.T) {
	_, err := ParseConfig([]byte("boxes: [not a box"))
	assert.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "effect.yaml")
	data := []byte("particleCount: 3\nboxes:\n  - min: [0, 0, 0]\n    max: [0, 0, 0]\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.ParticleCount)
	assert.InDelta(t, 5.0, cfg.Life, 1e-6, "omitted fields keep defaults")
}

func TestValidateRequiresBoxes(t *testing.T) {
	err := Config{}.Validate()
	assert.ErrorIs(t, err, ErrNoBoxes)
	assert.NoError(t, Config{Boxes: []common.Box{{}}}.Validate())
}

func TestNormalizedFillsZeroFieldsPerKind(t *testing.T) {
	cpu := Config{}.normalized(kindCPU)
	assert.Equal(t, 25, cpu.ParticleCount)
	assert.InDelta(t, 5.0, cpu.Life, 1e-6)
	assert.InDelta(t, 30.0, cpu.FrameRate, 1e-6)
	assert.Equal(t, geometry.ShapeCube, cpu.ParticleShape)

	// the shader path replicates vertices, so its count floor is a single copy
	gpu := Config{}.normalized(kindGPU)
	assert.Equal(t, 1, gpu.ParticleCount)

	set := Config{ParticleCount: 7, Life: 1, FrameRate: 60, ParticleShape: geometry.ShapeArrow}
	assert.Equal(t, set, set.normalized(kindCPU))
}

func TestColorRampPrefersExplicitKeys(t *testing.T) {
	red := mgl32.Vec4{1, 0, 0, 1}
	blue := mgl32.Vec4{0, 0, 1, 1}
	cfg := Config{
		Colors:    []mgl32.Vec4{blue, blue, blue},
		ColorKeys: []common.ColorKey{{Key: 0.2, Value: red}, {Key: 0.9, Value: blue}},
	}

	keys := cfg.colorRamp()
	require.Len(t, keys, 2)
	assert.InDelta(t, 0.0, keys[0].Key, 1e-6, "normalization pins the first key to 0")
	assert.InDelta(t, 1.0, keys[1].Key, 1e-6, "normalization pins the last key to 1")
	assert.Equal(t, red, keys[0].Value)
}

func TestColorRampSpreadsValueList(t *testing.T) {
	a := mgl32.Vec4{1, 0, 0, 1}
	b := mgl32.Vec4{0, 1, 0, 1}
	c := mgl32.Vec4{0, 0, 1, 1}

	keys := Config{Colors: []mgl32.Vec4{a, b, c}}.colorRamp()
	require.Len(t, keys, 3)
	assert.InDelta(t, 0.5, keys[1].Key, 1e-6)
	assert.Equal(t, b, keys[1].Value)

	assert.Nil(t, Config{}.colorRamp())
}

func TestScaleRampPrefersExplicitKeys(t *testing.T) {
	cfg := Config{
		Scales:    []mgl32.Vec3{{9, 9, 9}},
		ScaleKeys: []common.ScaleKey{{Key: 0, Value: mgl32.Vec3{1, 1, 1}}, {Key: 1, Value: mgl32.Vec3{0, 0, 0}}},
	}

	keys := cfg.scaleRamp()
	require.Len(t, keys, 2)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, keys[0].Value)
}

func TestBoxYAMLRoundTrip(t *testing.T) {
	box := common.Box{Min: mgl32.Vec3{-1, -2, -3}, Max: mgl32.Vec3{1, 2, 3}}
	data, err := yaml.Marshal(box)
	require.NoError(t, err)

	var back common.Box
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, box, back)
}
