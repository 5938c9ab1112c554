package particle

import (
	"math/rand"
	"testing"

	"github.com/Carmen-Shannon/wisp-go/common"
	"github.com/Carmen-Shannon/wisp-go/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linePath samples n positions along +X at unit spacing.
func linePath(n int) []mgl32.Vec3 {
	points := make([]mgl32.Vec3, n)
	for i := range points {
		points[i] = mgl32.Vec3{float32(i), 0, 0}
	}
	return points
}

func testRNG() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

var testColorKeys = []common.ColorKey{
	{Key: 0, Value: mgl32.Vec4{1, 0, 0, 1}},
	{Key: 1, Value: mgl32.Vec4{0, 0, 1, 1}},
}

func TestNewParticleRequiresPositions(t *testing.T) {
	_, err := NewParticle(nil)
	assert.ErrorIs(t, err, ErrNoFrames)
}

func TestNewParticleStartsReadyAndHidden(t *testing.T) {
	p, err := NewParticle(linePath(4))
	require.NoError(t, err)

	assert.True(t, p.Ready())
	assert.False(t, p.Active())
	assert.False(t, p.Destroyed())
	assert.Equal(t, 4, p.LastFrame())
	assert.False(t, p.Node().Visible())
}

func TestRunMakesVisibleAndAppliesFirstFrame(t *testing.T) {
	p, err := NewParticle(linePath(4))
	require.NoError(t, err)

	p.Run(1)
	assert.True(t, p.Active())
	assert.False(t, p.Ready())
	assert.True(t, p.Node().Visible())
	assert.Equal(t, mgl32.Translate3D(0, 0, 0), p.Node().LocalMatrix())

	p.Update()
	assert.Equal(t, mgl32.Translate3D(1, 0, 0), p.Node().LocalMatrix())
}

func TestRunWhileActiveIsIgnored(t *testing.T) {
	p, err := NewParticle(linePath(4))
	require.NoError(t, err)

	p.Run(1)
	p.Run(5)
	assert.Equal(t, 1, p.(*particle).totalLoops)
}

func TestUpdateWhileIdleIsIgnored(t *testing.T) {
	p, err := NewParticle(linePath(4))
	require.NoError(t, err)

	p.Update()
	assert.True(t, p.Ready())
	assert.Equal(t, 1, p.(*particle).frame)
	assert.False(t, p.Node().Visible())
}

func TestRunPlaysExactFrameBudget(t *testing.T) {
	const frames = 4
	p, err := NewParticle(linePath(frames))
	require.NoError(t, err)

	// loopCount full passes wrap after lastFrame-1 updates each
	p.Run(2)
	for i := 0; i < 2*(frames-1)-1; i++ {
		p.Update()
		assert.True(t, p.Active(), "update %d should leave the particle in flight", i)
	}
	p.Update()
	assert.True(t, p.Ready())
	assert.False(t, p.Active())
	assert.False(t, p.Node().Visible())
}

func TestResetRestoresLaunchState(t *testing.T) {
	p, err := NewParticle(linePath(4))
	require.NoError(t, err)

	p.Run(3)
	p.Update()
	p.Reset()

	assert.True(t, p.Ready())
	assert.False(t, p.Node().Visible())
	assert.Equal(t, 3, p.(*particle).loopsLeft, "reset restores the launch's loop budget")

	p.Run(1)
	assert.True(t, p.Active())
}

func TestDestroyIsTerminal(t *testing.T) {
	p, err := NewParticle(linePath(4))
	require.NoError(t, err)
	p.Node().AddDrawable(scene.Drawable{})

	p.Destroy()
	assert.True(t, p.Destroyed())
	assert.False(t, p.Ready())
	assert.Empty(t, p.Node().Drawables())

	p.Destroy()
	p.Run(1)
	p.Update()
	assert.False(t, p.Active())
}

func TestColorRampBakesOntoNode(t *testing.T) {
	p, err := NewParticle(linePath(3), ParticleWithColorKeys(testColorKeys))
	require.NoError(t, err)

	p.Run(1)
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, p.Node().Tint())

	p.Update()
	tint := p.Node().Tint()
	assert.InDelta(t, 0.5, tint.X(), 1e-6)
	assert.InDelta(t, 0.5, tint.Z(), 1e-6)
}

func TestScaleRampScalesMatrix(t *testing.T) {
	keys := []common.ScaleKey{
		{Key: 0, Value: mgl32.Vec3{2, 2, 2}},
		{Key: 1, Value: mgl32.Vec3{0, 0, 0}},
	}
	p, err := NewParticle(linePath(3), ParticleWithScaleKeys(keys))
	require.NoError(t, err)

	p.Run(1)
	m := p.Node().LocalMatrix()
	assert.InDelta(t, 2.0, m.At(0, 0), 1e-6)
	assert.InDelta(t, 2.0, m.At(1, 1), 1e-6)
	assert.InDelta(t, 2.0, m.At(2, 2), 1e-6)
}

func TestNoRampLeavesTintAlone(t *testing.T) {
	p, err := NewParticle(linePath(3))
	require.NoError(t, err)

	p.Run(1)
	p.Update()
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, p.Node().Tint())
}

func TestJitterBakesOnceAndStaysFixed(t *testing.T) {
	p, err := NewParticle(linePath(5),
		ParticleWithColorKeys(testColorKeys),
		ParticleWithColorJitter(0.3),
		ParticleWithRNG(testRNG()),
	)
	require.NoError(t, err)

	baked := append([]mgl32.Vec4(nil), p.(*particle).colors...)
	p.Run(2)
	for i := 0; i < 10; i++ {
		p.Update()
	}
	assert.Equal(t, baked, p.(*particle).colors, "playback must never resample jitter")

	// setting the ramp again draws fresh jitter
	p.SetColorKeys(testColorKeys)
	assert.NotEqual(t, baked, p.(*particle).colors)
}

func TestJitteredColorsStayInRange(t *testing.T) {
	p, err := NewParticle(linePath(50),
		ParticleWithColorKeys(testColorKeys),
		ParticleWithColorJitter(5),
		ParticleWithRNG(testRNG()),
	)
	require.NoError(t, err)

	for _, c := range p.(*particle).colors {
		for i := 0; i < 4; i++ {
			assert.GreaterOrEqual(t, c[i], float32(0))
			assert.LessOrEqual(t, c[i], float32(1))
		}
	}
}

func TestAimOrientsAlongTravel(t *testing.T) {
	p, err := NewParticle(linePath(4), ParticleWithAim(true))
	require.NoError(t, err)

	// with w=0 the translation column drops out, leaving the pure rotation
	up := mgl32.Vec4{0, 1, 0, 0}
	for _, m := range p.(*particle).matrices {
		aimed := m.Mul4x1(up)
		assert.InDelta(t, 1.0, aimed.X(), 1e-5)
		assert.InDelta(t, 0.0, aimed.Y(), 1e-5)
		assert.InDelta(t, 0.0, aimed.Z(), 1e-5)
	}

	p.SetAim(false)
	aimed := p.(*particle).matrices[1].Mul4x1(up)
	assert.InDelta(t, 1.0, aimed.Y(), 1e-5)
}

func TestSetPositionsSameLengthKeepsBakes(t *testing.T) {
	p, err := NewParticle(linePath(4),
		ParticleWithColorKeys(testColorKeys),
		ParticleWithColorJitter(0.3),
		ParticleWithRNG(testRNG()),
	)
	require.NoError(t, err)

	baked := append([]mgl32.Vec4(nil), p.(*particle).colors...)
	shifted := linePath(4)
	for i := range shifted {
		shifted[i] = shifted[i].Add(mgl32.Vec3{0, 7, 0})
	}
	p.SetPositions(shifted)

	assert.Equal(t, baked, p.(*particle).colors)
	assert.Equal(t, shifted[0], p.(*particle).positions[0])
}

func TestSetPositionsResizedRebakes(t *testing.T) {
	p, err := NewParticle(linePath(4), ParticleWithColorKeys(testColorKeys))
	require.NoError(t, err)

	p.SetPositions(linePath(9))
	assert.Equal(t, 9, p.LastFrame())
	assert.Len(t, p.(*particle).colors, 9)

	p.SetPositions(nil)
	assert.Equal(t, 9, p.LastFrame(), "empty input is ignored")
}

func TestSetColorKeysNilRemovesRamp(t *testing.T) {
	p, err := NewParticle(linePath(3), ParticleWithColorKeys(testColorKeys))
	require.NoError(t, err)

	p.SetColorKeys(nil)
	assert.Nil(t, p.(*particle).colors)

	p.Run(1)
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, p.Node().Tint())
}

func TestParticleWithParentAttachesNode(t *testing.T) {
	parent := scene.NewNode()
	p, err := NewParticle(linePath(2), ParticleWithParent(parent))
	require.NoError(t, err)

	require.Len(t, parent.Children(), 1)
	assert.Equal(t, p.Node().ID(), parent.Children()[0].ID())

	p.Destroy()
	assert.Empty(t, parent.Children(), "destroy detaches the node")
}
