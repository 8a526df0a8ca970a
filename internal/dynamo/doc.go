// Package dynamo provides the primitives shared by the simulation packages.
//
// It holds the error taxonomy used across the module:
//
//   - [ErrInvalidParameter]: a construction-time value is out of range
//   - [ErrInvalidState]: the integrated state became NaN or Inf
//   - [ParameterError]: names the offending parameter and wraps [ErrInvalidParameter]
//   - [SimulationError]: records the step and time at which a run failed
//
// and the small validation helpers ([Positive], [NonNegative], [Finite],
// [InRange]) the muscle and joint constructors use to fail fast.
//
// # Example
//
//	if err := dynamo.Positive("inertia", cfg.Inertia); err != nil {
//	    return nil, err
//	}
//	...
//	if errors.Is(err, dynamo.ErrInvalidParameter) {
//	    // reject the configuration
//	}
package dynamo
