// package scene provides the transform hierarchy particles attach to. A Scene owns a
// root Node; Nodes carry local transforms, an RGBA tint, and drawable geometry/material
// pairs. Mutation is single-threaded by design (tick handlers run sequentially on the
// engine goroutine); Scene.Update fans subtree flattening out across a worker pool, with
// each subtree visited by exactly one worker.
package scene

import (
	"slices"

	"github.com/Carmen-Shannon/wisp-go/engine/geometry"
	"github.com/Carmen-Shannon/wisp-go/engine/material"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Drawable pairs a mesh with the material it renders with.
type Drawable struct {
	Geometry geometry.Geometry
	Material material.Material
}

// Node is a scene-graph entry: a local transform (position, rotation, scale,
// or an explicit matrix override), a tint, a visibility flag, and zero or
// more drawables. Nodes form a tree through AddChild/Detach.
type Node interface {
	// ID retrieves the unique identifier assigned at construction.
	//
	// Returns:
	//   - uuid.UUID: the node id
	ID() uuid.UUID

	// Name retrieves the node's display name.
	//
	// Returns:
	//   - string: the name, possibly empty
	Name() string

	// SetName sets the node's display name.
	//
	// Parameters:
	//   - name: the new name
	SetName(name string)

	// Parent retrieves the node this node is attached to.
	//
	// Returns:
	//   - Node: the parent, or nil for detached nodes and the scene root
	Parent() Node

	// Children retrieves the node's direct children.
	//
	// Returns:
	//   - []Node: the children in attachment order
	Children() []Node

	// AddChild attaches a child to this node, detaching it from any previous
	// parent first. Attaching nil or self is a no-op.
	//
	// Parameters:
	//   - child: the node to attach
	AddChild(child Node)

	// Detach removes this node from its parent's child list. Detaching an
	// already-detached node is a no-op.
	Detach()

	// Position retrieves the local translation.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// SetPosition sets the local translation.
	//
	// Parameters:
	//   - position: the new position
	SetPosition(position mgl32.Vec3)

	// Translate adds a delta to the local translation.
	//
	// Parameters:
	//   - delta: the offset to add
	Translate(delta mgl32.Vec3)

	// Rotation retrieves the local rotation.
	//
	// Returns:
	//   - mgl32.Quat: the rotation
	Rotation() mgl32.Quat

	// SetRotation sets the local rotation.
	//
	// Parameters:
	//   - rotation: the new rotation
	SetRotation(rotation mgl32.Quat)

	// Scale retrieves the local scale.
	//
	// Returns:
	//   - mgl32.Vec3: the per-axis scale
	Scale() mgl32.Vec3

	// SetScale sets the local scale.
	//
	// Parameters:
	//   - scale: the new per-axis scale
	SetScale(scale mgl32.Vec3)

	// SetMatrix overrides the local transform with an explicit matrix. Until
	// ClearMatrix is called, position/rotation/scale no longer contribute to
	// LocalMatrix.
	//
	// Parameters:
	//   - m: the explicit local transform
	SetMatrix(m mgl32.Mat4)

	// ClearMatrix removes the explicit matrix override, returning the node to
	// its composed position/rotation/scale transform.
	ClearMatrix()

	// LocalMatrix retrieves the node's local transform: the explicit override
	// when set, otherwise translate * rotate * scale.
	//
	// Returns:
	//   - mgl32.Mat4: the local transform
	LocalMatrix() mgl32.Mat4

	// WorldMatrix retrieves the node's world transform, the product of every
	// ancestor's local matrix down to this node.
	//
	// Returns:
	//   - mgl32.Mat4: the world transform
	WorldMatrix() mgl32.Mat4

	// Tint retrieves the node's RGBA color multiplier.
	//
	// Returns:
	//   - mgl32.Vec4: the tint
	Tint() mgl32.Vec4

	// SetTint sets the node's RGBA color multiplier.
	//
	// Parameters:
	//   - tint: the new tint
	SetTint(tint mgl32.Vec4)

	// Visible reports whether this node's drawables are rendered. Visibility
	// does not propagate to children.
	//
	// Returns:
	//   - bool: true if visible
	Visible() bool

	// SetVisible shows or hides this node's drawables.
	//
	// Parameters:
	//   - visible: the new visibility
	SetVisible(visible bool)

	// Drawables retrieves the node's drawable list.
	//
	// Returns:
	//   - []Drawable: the drawables in attachment order
	Drawables() []Drawable

	// AddDrawable appends a drawable to the node.
	//
	// Parameters:
	//   - d: the drawable to append
	AddDrawable(d Drawable)

	// RemoveDrawable removes the drawable whose geometry carries the given id.
	//
	// Parameters:
	//   - geometryID: the geometry id to remove
	//
	// Returns:
	//   - bool: true if a drawable was removed
	RemoveDrawable(geometryID uuid.UUID) bool

	// ClearDrawables removes every drawable from the node.
	ClearDrawables()

	setParent(parent Node)
	removeChild(id uuid.UUID)
}

var _ Node = &node{}

type node struct {
	id       uuid.UUID
	name     string
	parent   Node
	children []Node

	position mgl32.Vec3
	rotation mgl32.Quat
	scale    mgl32.Vec3
	explicit *mgl32.Mat4

	tint      mgl32.Vec4
	visible   bool
	drawables []Drawable
}

// NewNode creates a Node with identity transform, white tint, and visibility
// enabled.
//
// Parameters:
//   - options: optional NodeBuilderOption functions to configure the node
//
// Returns:
//   - Node: the configured node
func NewNode(options ...NodeBuilderOption) Node {
	n := &node{
		id:       uuid.New(),
		rotation: mgl32.QuatIdent(),
		scale:    mgl32.Vec3{1, 1, 1},
		tint:     mgl32.Vec4{1, 1, 1, 1},
		visible:  true,
	}
	for _, opt := range options {
		opt(n)
	}
	return n
}

func (n *node) ID() uuid.UUID {
	return n.id
}

func (n *node) Name() string {
	return n.name
}

func (n *node) SetName(name string) {
	n.name = name
}

func (n *node) Parent() Node {
	return n.parent
}

func (n *node) Children() []Node {
	return n.children
}

func (n *node) AddChild(child Node) {
	if child == nil || child == Node(n) {
		return
	}
	child.Detach()
	child.setParent(n)
	n.children = append(n.children, child)
}

func (n *node) Detach() {
	if n.parent == nil {
		return
	}
	n.parent.removeChild(n.id)
	n.parent = nil
}

func (n *node) Position() mgl32.Vec3 {
	return n.position
}

func (n *node) SetPosition(position mgl32.Vec3) {
	n.position = position
}

func (n *node) Translate(delta mgl32.Vec3) {
	n.position = n.position.Add(delta)
}

func (n *node) Rotation() mgl32.Quat {
	return n.rotation
}

func (n *node) SetRotation(rotation mgl32.Quat) {
	n.rotation = rotation
}

func (n *node) Scale() mgl32.Vec3 {
	return n.scale
}

func (n *node) SetScale(scale mgl32.Vec3) {
	n.scale = scale
}

func (n *node) SetMatrix(m mgl32.Mat4) {
	n.explicit = &m
}

func (n *node) ClearMatrix() {
	n.explicit = nil
}

func (n *node) LocalMatrix() mgl32.Mat4 {
	if n.explicit != nil {
		return *n.explicit
	}
	translate := mgl32.Translate3D(n.position.X(), n.position.Y(), n.position.Z())
	scale := mgl32.Scale3D(n.scale.X(), n.scale.Y(), n.scale.Z())
	return translate.Mul4(n.rotation.Mat4()).Mul4(scale)
}

func (n *node) WorldMatrix() mgl32.Mat4 {
	if n.parent == nil {
		return n.LocalMatrix()
	}
	return n.parent.WorldMatrix().Mul4(n.LocalMatrix())
}

func (n *node) Tint() mgl32.Vec4 {
	return n.tint
}

func (n *node) SetTint(tint mgl32.Vec4) {
	n.tint = tint
}

func (n *node) Visible() bool {
	return n.visible
}

func (n *node) SetVisible(visible bool) {
	n.visible = visible
}

func (n *node) Drawables() []Drawable {
	return n.drawables
}

func (n *node) AddDrawable(d Drawable) {
	n.drawables = append(n.drawables, d)
}

func (n *node) RemoveDrawable(geometryID uuid.UUID) bool {
	for i, d := range n.drawables {
		if d.Geometry != nil && d.Geometry.ID() == geometryID {
			n.drawables = slices.Delete(n.drawables, i, i+1)
			return true
		}
	}
	return false
}

func (n *node) ClearDrawables() {
	n.drawables = nil
}

func (n *node) setParent(parent Node) {
	n.parent = parent
}

func (n *node) removeChild(id uuid.UUID) {
	for i, c := range n.children {
		if c.ID() == id {
			n.children = slices.Delete(n.children, i, i+1)
			return
		}
	}
}
