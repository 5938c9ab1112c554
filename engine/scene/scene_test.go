package scene

import (
	"testing"

	"github.com/Carmen-Shannon/wisp-go/engine/geometry"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeAttachDetach(t *testing.T) {
	parent := NewNode(WithNodeName("parent"))
	child := NewNode(WithNodeName("child"))

	parent.AddChild(child)
	require.Len(t, parent.Children(), 1)
	assert.Equal(t, parent.ID(), child.Parent().ID())

	child.Detach()
	assert.Empty(t, parent.Children())
	assert.Nil(t, child.Parent())

	// double detach is a no-op
	child.Detach()
	assert.Nil(t, child.Parent())
}

func TestNodeReparenting(t *testing.T) {
	a := NewNode()
	b := NewNode()
	child := NewNode()

	a.AddChild(child)
	b.AddChild(child)

	assert.Empty(t, a.Children(), "reparenting must remove the child from its old parent")
	require.Len(t, b.Children(), 1)
	assert.Equal(t, b.ID(), child.Parent().ID())
}

func TestNodeSelfAndNilChildIgnored(t *testing.T) {
	n := NewNode()
	n.AddChild(nil)
	n.AddChild(n)
	assert.Empty(t, n.Children())
}

func TestNodeLocalMatrixComposition(t *testing.T) {
	n := NewNode(
		WithPosition(mgl32.Vec3{1, 2, 3}),
		WithScale(mgl32.Vec3{2, 2, 2}),
	)

	p := n.LocalMatrix().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 3.0, p.X(), 1e-6, "scale then translate")
	assert.InDelta(t, 2.0, p.Y(), 1e-6)
	assert.InDelta(t, 3.0, p.Z(), 1e-6)
}

func TestNodeExplicitMatrixOverride(t *testing.T) {
	n := NewNode(WithPosition(mgl32.Vec3{5, 5, 5}))

	m := mgl32.Translate3D(-1, 0, 0)
	n.SetMatrix(m)
	assert.Equal(t, m, n.LocalMatrix())

	n.ClearMatrix()
	assert.Equal(t, mgl32.Vec3{5, 5, 5}, n.LocalMatrix().Col(3).Vec3())
}

func TestNodeWorldMatrix(t *testing.T) {
	parent := NewNode(WithPosition(mgl32.Vec3{10, 0, 0}))
	child := NewNode(WithPosition(mgl32.Vec3{0, 5, 0}))
	parent.AddChild(child)

	origin := child.WorldMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 10.0, origin.X(), 1e-6)
	assert.InDelta(t, 5.0, origin.Y(), 1e-6)
}

func TestNodeDrawables(t *testing.T) {
	n := NewNode()
	g1 := geometry.NewCube(1)
	g2 := geometry.NewCube(1)

	n.AddDrawable(Drawable{Geometry: g1})
	n.AddDrawable(Drawable{Geometry: g2})
	require.Len(t, n.Drawables(), 2)

	assert.True(t, n.RemoveDrawable(g1.ID()))
	require.Len(t, n.Drawables(), 1)
	assert.Equal(t, g2.ID(), n.Drawables()[0].Geometry.ID())

	assert.False(t, n.RemoveDrawable(g1.ID()), "removing twice must report false")

	n.ClearDrawables()
	assert.Empty(t, n.Drawables())
}

func TestSceneAddRemoveFind(t *testing.T) {
	s := NewScene("test")
	a := NewNode(WithNodeName("a"))
	b := NewNode(WithNodeName("b"))
	inner := NewNode(WithNodeName("inner"))
	a.AddChild(inner)

	s.Add(a)
	s.Add(b)
	assert.Equal(t, 3, s.Count())

	found := s.Find(inner.ID())
	require.NotNil(t, found)
	assert.Equal(t, "inner", found.Name())

	s.Remove(a.ID())
	assert.Equal(t, 1, s.Count())
	assert.Nil(t, s.Find(inner.ID()))
}

func TestSceneUpdateFlattensVisibleDrawables(t *testing.T) {
	s := NewScene("test", WithUpdateWorkers(2))

	shown := NewNode(WithPosition(mgl32.Vec3{1, 0, 0}))
	shown.AddDrawable(Drawable{Geometry: geometry.NewCube(1)})

	hidden := NewNode(WithVisible(false))
	hidden.AddDrawable(Drawable{Geometry: geometry.NewCube(1)})

	nested := NewNode(WithPosition(mgl32.Vec3{0, 2, 0}))
	nested.AddDrawable(Drawable{Geometry: geometry.NewCube(1)})
	shown.AddChild(nested)

	s.Add(shown)
	s.Add(hidden)
	s.Update()

	items := s.DrawItems()
	require.Len(t, items, 2, "hidden node must not contribute")

	first := items[0].Transform.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 1.0, first.X(), 1e-6)

	second := items[1].Transform.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 1.0, second.X(), 1e-6)
	assert.InDelta(t, 2.0, second.Y(), 1e-6)
}

func TestSceneUpdateAppliesRootTransform(t *testing.T) {
	s := NewScene("test")
	s.Root().SetPosition(mgl32.Vec3{0, 0, -10})

	n := NewNode(WithPosition(mgl32.Vec3{1, 0, 0}))
	n.AddDrawable(Drawable{Geometry: geometry.NewCube(1)})
	s.Add(n)
	s.Update()

	items := s.DrawItems()
	require.Len(t, items, 1)
	p := items[0].Transform.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 1.0, p.X(), 1e-6)
	assert.InDelta(t, -10.0, p.Z(), 1e-6)
}

func TestSceneUpdateCarriesTint(t *testing.T) {
	s := NewScene("test")
	n := NewNode(WithTint(mgl32.Vec4{1, 0, 0, 0.5}))
	n.AddDrawable(Drawable{Geometry: geometry.NewCube(1)})
	s.Add(n)
	s.Update()

	require.Len(t, s.DrawItems(), 1)
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 0.5}, s.DrawItems()[0].Tint)
}

func TestSceneUpdateManySubtrees(t *testing.T) {
	s := NewScene("test", WithUpdateWorkers(4))
	const count = 64
	for i := 0; i < count; i++ {
		n := NewNode(WithPosition(mgl32.Vec3{float32(i), 0, 0}))
		n.AddDrawable(Drawable{Geometry: geometry.NewCube(1)})
		s.Add(n)
	}
	s.Update()

	items := s.DrawItems()
	require.Len(t, items, count)
	// merge order must follow child attachment order regardless of which
	// worker finished first
	for i, item := range items {
		p := item.Transform.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
		assert.InDelta(t, float64(i), p.X(), 1e-5, "item %d out of order", i)
	}
}
