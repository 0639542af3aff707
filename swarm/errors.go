package swarm

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every configuration validation failure, so
// callers can match the whole class with errors.Is.
var ErrInvalidConfig = errors.New("swarm: invalid configuration")

func invalidConfigf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// DivergenceError reports a particle whose velocity or position became
// non-finite during a step.  This is fatal: it almost always means the swarm
// coefficients are misconfigured (c1+c2 too close to 4), and a swarm with
// corrupted state cannot be trusted to resume.
type DivergenceError struct {
	Particle int
	Coord    int
	Value    float64
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("swarm: numeric divergence at particle %d coordinate %d (value %v)",
		e.Particle, e.Coord, e.Value)
}
