package shader

import "github.com/Carmen-Shannon/wisp-go/common"

// CompilerBuilderOption is a function that modifies the compiler settings during construction.
type CompilerBuilderOption func(*compiler)

// CompilerWithLogger sets the logger the compiler reports link results to.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - CompilerBuilderOption: the option function
func CompilerWithLogger(logger common.Logger) CompilerBuilderOption {
	return func(c *compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}
