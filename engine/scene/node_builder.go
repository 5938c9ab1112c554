package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// NodeBuilderOption is a functional option for configuring a Node.
// Use the With* functions to create options that are applied directly to the node instance.
type NodeBuilderOption func(*node)

// WithNodeName sets the node's display name.
//
// Parameters:
//   - name: the name to assign
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithNodeName(name string) NodeBuilderOption {
	return func(n *node) {
		n.name = name
	}
}

// WithPosition sets the node's local translation.
//
// Parameters:
//   - position: the initial position
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithPosition(position mgl32.Vec3) NodeBuilderOption {
	return func(n *node) {
		n.position = position
	}
}

// WithRotation sets the node's local rotation.
//
// Parameters:
//   - rotation: the initial rotation
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithRotation(rotation mgl32.Quat) NodeBuilderOption {
	return func(n *node) {
		n.rotation = rotation
	}
}

// WithScale sets the node's local scale.
//
// Parameters:
//   - scale: the initial per-axis scale
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithScale(scale mgl32.Vec3) NodeBuilderOption {
	return func(n *node) {
		n.scale = scale
	}
}

// WithTint sets the node's RGBA color multiplier.
//
// Parameters:
//   - tint: the initial tint
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithTint(tint mgl32.Vec4) NodeBuilderOption {
	return func(n *node) {
		n.tint = tint
	}
}

// WithVisible sets the node's initial visibility.
//
// Parameters:
//   - visible: the initial visibility
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithVisible(visible bool) NodeBuilderOption {
	return func(n *node) {
		n.visible = visible
	}
}

// WithDrawable appends a drawable to the node at construction.
//
// Parameters:
//   - d: the drawable to append
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithDrawable(d Drawable) NodeBuilderOption {
	return func(n *node) {
		n.drawables = append(n.drawables, d)
	}
}
