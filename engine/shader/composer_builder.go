package shader

import "github.com/Carmen-Shannon/wisp-go/common"

// ComposerBuilderOption is a function that modifies the composer settings during construction.
type ComposerBuilderOption func(*composer)

// ComposerWithLogger sets the logger the composer reports variant builds to.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - ComposerBuilderOption: the option function
func ComposerWithLogger(logger common.Logger) ComposerBuilderOption {
	return func(c *composer) {
		if logger != nil {
			c.logger = logger
		}
	}
}
