package wall

import "math"

// DefaultEpsilon is the absolute tolerance, in scene units, used for every
// coplanarity, parallelism, endpoint and edge comparison unless a wall is
// built WithEpsilon.
const DefaultEpsilon = 1e-5

type config struct {
	eps  float64
	name string
}

// Option configures wall construction.
type Option func(*config)

// WithEpsilon sets the tolerance the wall is built and queried with.
// Non-positive or non-finite values are ignored.
func WithEpsilon(eps float64) Option {
	return func(c *config) {
		if eps > 0 && !math.IsInf(eps, 1) {
			c.eps = eps
		}
	}
}

// WithName labels the wall. The name is not part of its identity.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

func newConfig(opts []Option) config {
	c := config{eps: DefaultEpsilon}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
