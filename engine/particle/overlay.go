package particle

import (
	"fmt"
	"image/color"

	"github.com/Carmen-Shannon/wisp-go/common"
	"github.com/Carmen-Shannon/wisp-go/engine/geometry"
	"github.com/Carmen-Shannon/wisp-go/engine/material"
	"github.com/Carmen-Shannon/wisp-go/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/colornames"
)

// overlayPalette colors consecutive waypoint boxes so a path reads visually
// in order; indexes past the end wrap around.
var overlayPalette = []color.RGBA{
	colornames.Orangered,
	colornames.Gold,
	colornames.Limegreen,
	colornames.Deepskyblue,
	colornames.Mediumorchid,
	colornames.Turquoise,
}

// boxOverlay renders wireframe outlines of a system's waypoint boxes under
// the system's own node, so outlines follow whatever transform the host
// carries. Outline nodes and their shared material are created lazily on the
// first show and torn down on hide.
type boxOverlay struct {
	host    scene.Node
	mat     material.Material
	nodes   []scene.Node
	visible bool
}

func newBoxOverlay(host scene.Node) *boxOverlay {
	return &boxOverlay{host: host}
}

// show attaches one outline node per box. Showing while visible is a no-op;
// callers that need new bounds use refresh.
func (o *boxOverlay) show(boxes []common.Box) {
	if o.visible || o.host == nil || len(boxes) == 0 {
		return
	}
	if o.mat == nil {
		// outlines draw with the material's base sources; no variant is woven
		o.mat = material.NewMaterial(material.WithName("box-overlay"))
	}
	o.nodes = make([]scene.Node, 0, len(boxes))
	for i, box := range boxes {
		n := scene.NewNode(scene.WithNodeName(fmt.Sprintf("box-outline-%d", i)))
		n.AddDrawable(scene.Drawable{
			Geometry: geometry.NewBoxOutline(box, geometry.WithUniformColor(overlayColor(i))),
			Material: o.mat,
		})
		o.host.AddChild(n)
		o.nodes = append(o.nodes, n)
	}
	o.visible = true
}

// hide detaches and drops every outline node. Hiding while hidden is a no-op.
func (o *boxOverlay) hide() {
	if !o.visible {
		return
	}
	for _, n := range o.nodes {
		n.ClearDrawables()
		n.Detach()
	}
	o.nodes = nil
	o.visible = false
}

// refresh rebuilds the outlines against new bounds, but only when visible.
func (o *boxOverlay) refresh(boxes []common.Box) {
	if !o.visible {
		return
	}
	o.hide()
	o.show(boxes)
}

func overlayColor(i int) mgl32.Vec4 {
	c := overlayPalette[i%len(overlayPalette)]
	return mgl32.Vec4{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, 1}
}
