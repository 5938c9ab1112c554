package particle

import (
	"slices"
	"testing"

	"github.com/Carmen-Shannon/wisp-go/common"
	"github.com/Carmen-Shannon/wisp-go/engine/geometry"
	"github.com/Carmen-Shannon/wisp-go/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDispatcher drives tick handlers by hand. Handlers may remove themselves
// mid-tick, the way a draining system does.
type fakeDispatcher struct {
	nextID   uint64
	handlers map[uint64]func(float32)
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{handlers: map[uint64]func(float32){}}
}

func (d *fakeDispatcher) AddTickHandler(fn func(deltaTime float32)) uint64 {
	d.nextID++
	d.handlers[d.nextID] = fn
	return d.nextID
}

func (d *fakeDispatcher) RemoveTickHandler(id uint64) {
	delete(d.handlers, id)
}

func (d *fakeDispatcher) tick(dt float32) {
	ids := make([]uint64, 0, len(d.handlers))
	for id := range d.handlers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if fn, ok := d.handlers[id]; ok {
			fn(dt)
		}
	}
}

func (d *fakeDispatcher) count() int {
	return len(d.handlers)
}

// degenerate boxes pin every sampled path point, making emission geometry
// exact instead of random
func pinnedBoxes(a, b mgl32.Vec3) []common.Box {
	return []common.Box{
		{Min: a, Max: a},
		{Min: b, Max: b},
	}
}

// pooledConfig is a two-slot pool with a four-frame bake: maxRate 2/s, one
// emission every half second, three updates per traversal.
func pooledConfig() Config {
	return Config{
		Boxes:         pinnedBoxes(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{10, 0, 0}),
		ParticleCount: 2,
		Life:          1,
		FrameRate:     3,
	}
}

func newPooledSystem(t *testing.T, cfg Config, d *fakeDispatcher) ParticleSystem {
	t.Helper()
	s, err := NewParticleSystem(cfg, WithDispatcher(d), WithRNG(testRNG()))
	require.NoError(t, err)
	return s
}

func poolParticle(s ParticleSystem, i int) Particle {
	return s.(*particleSystem).particles[i]
}

func TestNewParticleSystemRequiresBoxes(t *testing.T) {
	_, err := NewParticleSystem(Config{})
	assert.ErrorIs(t, err, ErrNoBoxes)
}

func TestMaxRateIsPoolOverLife(t *testing.T) {
	cfg := pooledConfig()
	cfg.ParticleCount = 10
	cfg.Life = 5
	s := newPooledSystem(t, cfg, newFakeDispatcher())

	assert.InDelta(t, 2.0, s.MaxRate(), 1e-6)
	assert.InDelta(t, 2.0, s.Rate(), 1e-6, "rate defaults to the ceiling")

	cfg.Rate = 1
	s = newPooledSystem(t, cfg, newFakeDispatcher())
	assert.InDelta(t, 1.0, s.Rate(), 1e-6)

	cfg.Rate = 100
	s = newPooledSystem(t, cfg, newFakeDispatcher())
	assert.InDelta(t, 2.0, s.Rate(), 1e-6, "configured rates above the ceiling fall back to it")
}

func TestSetRateClampsToCeiling(t *testing.T) {
	s := newPooledSystem(t, pooledConfig(), newFakeDispatcher())

	s.SetRate(100)
	assert.InDelta(t, s.MaxRate(), s.Rate(), 1e-6)

	s.ChangeRate(-0.5)
	assert.InDelta(t, s.MaxRate()-0.5, s.Rate(), 1e-6)

	s.ChangeRate(-100)
	assert.InDelta(t, 0.0, s.Rate(), 1e-6)
}

func TestSetRateZeroStopsAndPositiveRestarts(t *testing.T) {
	d := newFakeDispatcher()
	s := newPooledSystem(t, pooledConfig(), d)

	s.Start()
	require.True(t, s.Active())

	s.SetRate(0)
	assert.False(t, s.Active())

	s.SetRate(1)
	assert.True(t, s.Active())
	assert.Equal(t, 1, d.count())
}

func TestPathEndpointsLandInTerminalBoxes(t *testing.T) {
	s := newPooledSystem(t, pooledConfig(), newFakeDispatcher())

	positions := poolParticle(s, 0).(*particle).positions
	require.Len(t, positions, 4, "life*frameRate+1 baked frames")

	first, last := positions[0], positions[len(positions)-1]
	assert.InDelta(t, 0.0, first.X(), 1e-4)
	assert.InDelta(t, 10.0, last.X(), 1e-4)
	assert.InDelta(t, 0.0, first.Y(), 1e-4)
	assert.InDelta(t, 0.0, last.Y(), 1e-4)
}

func TestEmissionRoundRobinSkipsActiveSlots(t *testing.T) {
	d := newFakeDispatcher()
	s := newPooledSystem(t, pooledConfig(), d)
	p0, p1 := poolParticle(s, 0), poolParticle(s, 1)

	s.Start()
	d.tick(0.5)
	assert.True(t, p0.Active())
	assert.True(t, p1.Ready())

	d.tick(0.5)
	assert.True(t, p0.Active())
	assert.True(t, p1.Active())

	// both slots busy: the cursor keeps advancing without launching
	d.tick(0.5)
	assert.Equal(t, 1, s.(*particleSystem).cursor)
	d.tick(0.5)
	assert.True(t, p0.Ready(), "first launch wraps after three updates")
	assert.True(t, p1.Active())

	d.tick(0.5)
	assert.True(t, p0.Active(), "freed slot relaunches on the next emission")
	assert.True(t, p1.Ready())
}

func TestEmissionAtMostOncePerTick(t *testing.T) {
	d := newFakeDispatcher()
	s := newPooledSystem(t, pooledConfig(), d)

	s.Start()
	// a huge delta still launches a single particle
	d.tick(10)
	assert.True(t, poolParticle(s, 0).Active())
	assert.True(t, poolParticle(s, 1).Ready())
	assert.InDelta(t, 0.0, s.(*particleSystem).timer, 1e-6, "emission resets the timer")
}

func TestSoftStopDrainsThenReleasesHandler(t *testing.T) {
	d := newFakeDispatcher()
	s := newPooledSystem(t, pooledConfig(), d)

	s.Start()
	d.tick(0.5)
	d.tick(0.5)

	s.Stop(false)
	assert.False(t, s.Active())
	assert.Equal(t, 1, d.count(), "draining keeps the handler registered")

	for i := 0; i < 4; i++ {
		d.tick(0.5)
	}
	assert.True(t, poolParticle(s, 0).Ready())
	assert.True(t, poolParticle(s, 1).Ready())
	assert.Equal(t, 0, d.count(), "a drained system releases its handler")
}

func TestHardStopResetsPool(t *testing.T) {
	d := newFakeDispatcher()
	s := newPooledSystem(t, pooledConfig(), d)

	s.Start()
	d.tick(0.5)
	d.tick(0.5)

	s.Stop(true)
	assert.False(t, s.Active())
	assert.Equal(t, 0, d.count())
	assert.True(t, poolParticle(s, 0).Ready())
	assert.True(t, poolParticle(s, 1).Ready())
	assert.False(t, poolParticle(s, 0).Node().Visible())
}

func TestPauseAndPlayToggleHandler(t *testing.T) {
	d := newFakeDispatcher()
	s := newPooledSystem(t, pooledConfig(), d)

	s.Pause()
	assert.Equal(t, 0, d.count(), "pausing an idle system is a no-op")

	s.Start()
	s.Pause()
	assert.True(t, s.Active(), "pause suspends ticking without stopping")
	assert.Equal(t, 0, d.count())

	s.Play()
	assert.Equal(t, 1, d.count())
	s.Play()
	assert.Equal(t, 1, d.count(), "play on a running system is a no-op")
}

func TestSoftStopWhilePausedStillDrains(t *testing.T) {
	d := newFakeDispatcher()
	s := newPooledSystem(t, pooledConfig(), d)

	s.Start()
	d.tick(0.5)
	s.Pause()
	require.Equal(t, 0, d.count())

	s.Stop(false)
	assert.Equal(t, 1, d.count(), "a drain needs ticks")

	for i := 0; i < 4; i++ {
		d.tick(0.5)
	}
	assert.Equal(t, 0, d.count())
}

func TestTranslateMovesContainerOnly(t *testing.T) {
	s := newPooledSystem(t, pooledConfig(), newFakeDispatcher())
	before := append([]mgl32.Vec3(nil), poolParticle(s, 0).(*particle).positions...)

	s.Translate(5, -2, 1)

	assert.Equal(t, mgl32.Vec3{5, -2, 1}, s.Node().Position())
	assert.Equal(t, before, poolParticle(s, 0).(*particle).positions, "baked paths stay in generated coordinates")
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, s.(*particleSystem).boxes[0].Min)
}

func TestSetBoxesRegeneratesPaths(t *testing.T) {
	s := newPooledSystem(t, pooledConfig(), newFakeDispatcher())

	s.SetBoxes(pinnedBoxes(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{0, 9, 0}))

	positions := poolParticle(s, 0).(*particle).positions
	assert.InDelta(t, 5.0, positions[0].Y(), 1e-4)
	assert.InDelta(t, 9.0, positions[len(positions)-1].Y(), 1e-4)

	s.SetBoxes(nil)
	assert.InDelta(t, 5.0, poolParticle(s, 0).(*particle).positions[0].Y(), 1e-4, "empty input is ignored")
}

func TestAddShapeFansOutToPool(t *testing.T) {
	s := newPooledSystem(t, pooledConfig(), newFakeDispatcher())
	require.Len(t, poolParticle(s, 0).Node().Drawables(), 1, "construction attaches the configured primitive")

	extra, err := geometry.NewShape(geometry.ShapeSphere, 0.5)
	require.NoError(t, err)
	s.AddShape(extra, nil)

	for i := 0; i < 2; i++ {
		drawables := poolParticle(s, i).Node().Drawables()
		require.Len(t, drawables, 2)
		assert.Equal(t, s.(*particleSystem).mat, drawables[1].Material, "nil material falls back to the system's")
	}

	s.RemoveShapes()
	assert.Empty(t, poolParticle(s, 0).Node().Drawables())
	assert.Empty(t, poolParticle(s, 1).Node().Drawables())
}

func TestShowBoxesIsIdempotent(t *testing.T) {
	s := newPooledSystem(t, pooledConfig(), newFakeDispatcher())
	base := len(s.Node().Children())

	s.ShowBoxes()
	assert.Len(t, s.Node().Children(), base+2)
	s.ShowBoxes()
	assert.Len(t, s.Node().Children(), base+2)

	s.HideBoxes()
	assert.Len(t, s.Node().Children(), base)
	s.HideBoxes()
	assert.Len(t, s.Node().Children(), base)
}

func TestShownBoxesFollowSetBoxes(t *testing.T) {
	s := newPooledSystem(t, pooledConfig(), newFakeDispatcher())
	base := len(s.Node().Children())

	s.ShowBoxes()
	s.SetBoxes([]common.Box{
		{Max: mgl32.Vec3{1, 1, 1}},
		{Min: mgl32.Vec3{2, 2, 2}, Max: mgl32.Vec3{3, 3, 3}},
		{Min: mgl32.Vec3{5, 5, 5}, Max: mgl32.Vec3{6, 6, 6}},
	})
	assert.Len(t, s.Node().Children(), base+3, "visible overlay tracks the new volumes")
}

func TestColorsAndColorKeysBakeIdentically(t *testing.T) {
	red := mgl32.Vec4{1, 0, 0, 1}
	blue := mgl32.Vec4{0, 0, 1, 1}

	byValues := pooledConfig()
	byValues.Colors = []mgl32.Vec4{red, blue}
	byKeys := pooledConfig()
	byKeys.ColorKeys = []common.ColorKey{{Key: 0, Value: red}, {Key: 1, Value: blue}}

	a := newPooledSystem(t, byValues, newFakeDispatcher())
	b := newPooledSystem(t, byKeys, newFakeDispatcher())

	assert.Equal(t,
		poolParticle(a, 0).(*particle).colors,
		poolParticle(b, 0).(*particle).colors,
		"an evenly spread value list and its explicit keys bake to the same frames")
}

func TestSetColorRampFansOutToPool(t *testing.T) {
	s := newPooledSystem(t, pooledConfig(), newFakeDispatcher())
	require.Nil(t, poolParticle(s, 0).(*particle).colors)

	s.SetColors([]mgl32.Vec4{{1, 0, 0, 1}, {0, 1, 0, 1}})
	assert.Len(t, poolParticle(s, 0).(*particle).colors, 4)
	assert.Len(t, poolParticle(s, 1).(*particle).colors, 4)

	s.SetScaleKeys([]common.ScaleKey{
		{Key: 0, Value: mgl32.Vec3{1, 1, 1}},
		{Key: 1, Value: mgl32.Vec3{3, 3, 3}},
	})
	assert.Len(t, poolParticle(s, 1).(*particle).scales, 4)
}

func TestSetAimRebuildsParticleTransforms(t *testing.T) {
	s := newPooledSystem(t, pooledConfig(), newFakeDispatcher())
	up := mgl32.Vec4{0, 1, 0, 0}

	s.SetAim(true)
	aimed := poolParticle(s, 0).(*particle).matrices[1].Mul4x1(up)
	assert.InDelta(t, 1.0, aimed.X(), 1e-4, "paths run along +X, so aim carries +Y onto +X")

	s.SetAim(false)
	straight := poolParticle(s, 0).(*particle).matrices[1].Mul4x1(up)
	assert.InDelta(t, 1.0, straight.Y(), 1e-4)
}

func TestDestroyTearsDownPool(t *testing.T) {
	parent := scene.NewNode()
	cfg := pooledConfig()
	cfg.Parent = parent
	d := newFakeDispatcher()
	s := newPooledSystem(t, cfg, d)
	require.Len(t, parent.Children(), 1)

	s.Start()
	s.Destroy()

	assert.Empty(t, parent.Children(), "the container detaches from its parent")
	assert.Equal(t, 0, d.count())
	assert.True(t, poolParticle(s, 0).Destroyed())

	s.Destroy()
	s.Start()
	assert.Equal(t, 0, d.count(), "a destroyed system never re-registers")
}

func TestFacadeSelectsExecutionStrategy(t *testing.T) {
	cfg := pooledConfig()
	sys, err := New(cfg, WithDispatcher(newFakeDispatcher()))
	require.NoError(t, err)
	_, ok := sys.(ParticleSystem)
	assert.True(t, ok, "default path is the pooled system")

	cfg.Fast = true
	sys, err = New(cfg, WithDispatcher(newFakeDispatcher()))
	require.NoError(t, err)
	_, isGpu := sys.(GpuParticleSystem)
	_, isTrail := sys.(GpuParticleTrail)
	assert.True(t, isGpu)
	assert.False(t, isTrail)

	cfg.Trail = true
	sys, err = New(cfg, WithDispatcher(newFakeDispatcher()))
	require.NoError(t, err)
	_, isTrail = sys.(GpuParticleTrail)
	assert.True(t, isTrail, "trail variant requires the fast path")

	_, err = New(Config{})
	assert.ErrorIs(t, err, ErrNoBoxes)
}
