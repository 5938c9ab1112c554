package scene

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/wisp-go/common"
	"github.com/Carmen-Shannon/wisp-go/engine/geometry"
	"github.com/Carmen-Shannon/wisp-go/engine/material"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// DrawItem is one flattened renderable: a drawable snapshot paired with the
// world transform and tint of the node it came from. Scene.Update rebuilds
// the draw list each frame; renderers consume it without walking the tree.
type DrawItem struct {
	Transform mgl32.Mat4
	Tint      mgl32.Vec4
	Geometry  geometry.Geometry
	Material  material.Material
}

// Scene owns a root Node and flattens the visible tree into a draw list once
// per frame. Flattening fans out across a bounded worker pool, one task per
// root subtree; workers never share nodes so no locking is needed inside a
// subtree.
type Scene interface {
	// Name retrieves the scene's identifier.
	//
	// Returns:
	//   - string: the scene name
	Name() string

	// SetName sets the scene's identifier.
	//
	// Parameters:
	//   - name: the new name
	SetName(name string)

	// Active reports whether this scene is currently updated and rendered.
	//
	// Returns:
	//   - bool: true if active
	Active() bool

	// SetActive sets whether this scene is updated and rendered.
	//
	// Parameters:
	//   - active: the new active state
	SetActive(active bool)

	// Root retrieves the scene's root node. The root's transform applies to
	// every attached subtree.
	//
	// Returns:
	//   - Node: the root node
	Root() Node

	// Add attaches a node to the scene root.
	//
	// Parameters:
	//   - n: the node to attach
	Add(n Node)

	// Remove detaches the direct child of the root with the given id.
	//
	// Parameters:
	//   - id: the node id to detach
	Remove(id uuid.UUID)

	// Find walks the tree for a node by id.
	//
	// Parameters:
	//   - id: the node id to find
	//
	// Returns:
	//   - Node: the node, or nil if absent
	Find(id uuid.UUID) Node

	// Count returns the number of nodes in the tree, excluding the root.
	//
	// Returns:
	//   - int: the node count
	Count() int

	// Update flattens the visible tree into the draw list. Root subtrees are
	// processed in parallel on the scene's worker pool.
	Update()

	// DrawItems retrieves the draw list built by the last Update. The slice
	// is reused across frames; consumers must not retain it.
	//
	// Returns:
	//   - []DrawItem: the flattened renderables
	DrawItems() []DrawItem
}

var _ Scene = &scene{}

type scene struct {
	name   string
	active bool
	root   Node
	logger common.Logger

	drawItems []DrawItem

	// pool manages a bounded set of reusable goroutines for subtree
	// flattening. Workers persist across frames, avoiding per-frame
	// goroutine spawn/teardown overhead.
	pool        worker.DynamicWorkerPool
	poolWorkers int
}

// NewScene creates a Scene with an empty root node.
//
// Parameters:
//   - name: the scene identifier
//   - options: optional SceneBuilderOption functions to configure the scene
//
// Returns:
//   - Scene: the configured scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		name:        name,
		active:      true,
		root:        NewNode(WithNodeName("root")),
		logger:      common.NopLogger(),
		poolWorkers: max(runtime.NumCPU()-1, 1),
	}
	for _, opt := range options {
		opt(s)
	}

	// Initialize the pool after options so WithUpdateWorkers can override the
	// default. Queue size of 256 accommodates typical subtree counts with headroom.
	s.pool = worker.NewDynamicWorkerPool(s.poolWorkers, 256, 1*time.Second)
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) SetName(name string) {
	s.name = name
}

func (s *scene) Active() bool {
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.active = active
}

func (s *scene) Root() Node {
	return s.root
}

func (s *scene) Add(n Node) {
	if n == nil {
		return
	}
	s.root.AddChild(n)
	s.logger.Debugf("scene %s: attached node %s", s.name, n.ID())
}

func (s *scene) Remove(id uuid.UUID) {
	for _, c := range s.root.Children() {
		if c.ID() == id {
			c.Detach()
			return
		}
	}
}

func (s *scene) Find(id uuid.UUID) Node {
	return findNode(s.root, id)
}

func (s *scene) Count() int {
	return countNodes(s.root) - 1
}

func (s *scene) Update() {
	subtrees := s.root.Children()
	rootMatrix := s.root.LocalMatrix()

	// Phase 1: parallel flatten — one task per root subtree. A WaitGroup
	// provides per-frame barrier sync since pool.Wait() blocks until workers
	// idle-exit, which is unsuitable for frame-rate workloads.
	results := make([][]DrawItem, len(subtrees))
	var wg sync.WaitGroup
	for i, child := range subtrees {
		wg.Add(1)
		idx, c := i, child
		s.pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				results[idx] = collectDrawItems(c, rootMatrix, nil)
				return nil, nil
			},
		})
	}
	wg.Wait()

	// Phase 2: merge per-subtree lists in deterministic child order.
	s.drawItems = s.drawItems[:0]
	if s.root.Visible() {
		for _, item := range s.root.Drawables() {
			s.drawItems = append(s.drawItems, DrawItem{
				Transform: rootMatrix,
				Tint:      s.root.Tint(),
				Geometry:  item.Geometry,
				Material:  item.Material,
			})
		}
	}
	for _, items := range results {
		s.drawItems = append(s.drawItems, items...)
	}
}

func (s *scene) DrawItems() []DrawItem {
	return s.drawItems
}

// collectDrawItems walks a subtree depth-first, accumulating visible
// drawables with their world transforms.
func collectDrawItems(n Node, parentMatrix mgl32.Mat4, out []DrawItem) []DrawItem {
	world := parentMatrix.Mul4(n.LocalMatrix())
	if n.Visible() {
		for _, d := range n.Drawables() {
			out = append(out, DrawItem{
				Transform: world,
				Tint:      n.Tint(),
				Geometry:  d.Geometry,
				Material:  d.Material,
			})
		}
	}
	for _, c := range n.Children() {
		out = collectDrawItems(c, world, out)
	}
	return out
}

func findNode(n Node, id uuid.UUID) Node {
	if n.ID() == id {
		return n
	}
	for _, c := range n.Children() {
		if found := findNode(c, id); found != nil {
			return found
		}
	}
	return nil
}

func countNodes(n Node) int {
	total := 1
	for _, c := range n.Children() {
		total += countNodes(c)
	}
	return total
}
