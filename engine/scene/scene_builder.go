package scene

import (
	"github.com/Carmen-Shannon/wisp-go/common"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options that are applied directly to the scene instance.
type SceneBuilderOption func(*scene)

// WithLogger sets the scene's logger. The default discards all output.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLogger(logger common.Logger) SceneBuilderOption {
	return func(s *scene) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithUpdateWorkers overrides the worker count for parallel subtree
// flattening. The default is NumCPU-1 with a floor of 1.
//
// Parameters:
//   - workers: the worker count, minimum 1
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithUpdateWorkers(workers int) SceneBuilderOption {
	return func(s *scene) {
		if workers < 1 {
			workers = 1
		}
		s.poolWorkers = workers
	}
}

// WithActive sets the scene's initial active state. Scenes default to active.
//
// Parameters:
//   - active: the initial state
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}
