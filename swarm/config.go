package swarm

import (
	"fmt"
	"strings"
)

// These defaults come from the constriction factor analysis in:
//
//	Clerc and M.  “The swarm and the queen: towards a deterministic and
//	adaptive particle swarm optimization” Proc. 1999 Congress on
//	Evolutionary Computation, pp. 1951-1957
//
// c1 = c2 = 2.05 keeps phi = c1+c2 just above 4, the smallest sum for which
// the constriction coefficient is real.
const (
	DefaultCognition = 2.05
	DefaultSocial    = 2.05
	DefaultAlpha     = 0.1
	DefaultLearnRate = 0.5
	DefaultRho       = 2
)

// Topology selects which particles each particle learns from.
type Topology int

const (
	// Gbest is the fully-connected topology: every particle's neighborhood
	// is the entire swarm (itself included).
	Gbest Topology = iota
	// Lbest is the ring topology: each particle's neighborhood is a
	// contiguous window of 2*rho indices around it, wrapping at the
	// population boundary.
	Lbest
)

func (t Topology) String() string {
	switch t {
	case Gbest:
		return "gbest"
	case Lbest:
		return "lbest"
	}
	return fmt.Sprintf("Topology(%d)", int(t))
}

// ParseTopology converts the CLI names "gbest" and "lbest" to a Topology.
func ParseTopology(s string) (Topology, error) {
	switch strings.ToLower(s) {
	case "gbest":
		return Gbest, nil
	case "lbest":
		return Lbest, nil
	}
	return 0, invalidConfigf("only `lbest` and `gbest` are valid neighborhood types, got %q", s)
}

// Bound is a closed interval constraining one coordinate.
type Bound struct {
	Low, High float64
}

// Config holds the immutable parameters of one optimization run.
//
// Particles are flat vectors of FlatDim() = prod(Dims) coordinates, but may
// represent structured objects: Dims = [20, 3] describes twenty points in
// 3-space.  Bounds are indexed cyclically by the innermost dimension:
// coordinate j is constrained by Bounds[j mod Dims[last]], so one bound pair
// per sub-coordinate covers every repetition.
type Config struct {
	// Dims are the shape dimensions of each particle.
	Dims []int
	// PopSize is the number of particles in the swarm.
	PopSize int
	// Topology selects the neighborhood structure (Gbest or Lbest).
	Topology Topology
	// Rho is the one-sided ring radius for Lbest; neighborhoods have
	// exactly 2*Rho members.  Ignored for Gbest.
	Rho int
	// Alpha scales the per-coordinate velocity cap: vmax = Alpha * 5.
	Alpha float64
	// Cognition (c1) and Social (c2) weight the pull toward a particle's
	// own best and its neighborhood's best.  Their sum must exceed 4 for
	// the constriction coefficient to be real.
	Cognition float64
	Social    float64
	// LearnRate scales the velocity contribution to the position update.
	LearnRate float64
	// Bounds constrains each innermost coordinate; must have at least
	// Dims[last] entries.
	Bounds []Bound
	// MaxEval budgets the run: iteration stops once the number of objective
	// evaluations reaches it.
	MaxEval int
}

// FlatDim returns the flattened particle length, prod(Dims).
func (c *Config) FlatDim() int {
	n := 1
	for _, d := range c.Dims {
		n *= d
	}
	return n
}

// bound returns the bound pair for flat coordinate j.
func (c *Config) bound(j int) Bound {
	return c.Bounds[j%c.Dims[len(c.Dims)-1]]
}

// Validate checks the configuration, returning an error wrapping
// ErrInvalidConfig on the first problem found.  A config that validates
// yields a finite, positive constriction coefficient.
func (c *Config) Validate() error {
	if len(c.Dims) == 0 {
		return invalidConfigf("no particle dimensions given")
	}
	for i, d := range c.Dims {
		if d < 1 {
			return invalidConfigf("dimension %d is %d; all dimensions must be positive", i, d)
		}
	}
	if c.PopSize < 1 {
		return invalidConfigf("population size %d; need at least one particle", c.PopSize)
	}

	inner := c.Dims[len(c.Dims)-1]
	if len(c.Bounds) < inner {
		return invalidConfigf("%d bound pairs for innermost dimension %d", len(c.Bounds), inner)
	}
	for i, b := range c.Bounds[:inner] {
		if !(b.Low < b.High) {
			return invalidConfigf("bound %d is [%v, %v]; low must be less than high", i, b.Low, b.High)
		}
	}

	if phi := c.Cognition + c.Social; phi <= 4 {
		return invalidConfigf("c1+c2 = %v; the constriction coefficient requires c1+c2 > 4", phi)
	}

	if c.Topology == Lbest {
		if c.Rho < 1 {
			return invalidConfigf("ring radius rho = %d; need rho >= 1 for lbest", c.Rho)
		}
		if 2*c.Rho > c.PopSize {
			return invalidConfigf("ring window 2*rho = %d exceeds population size %d", 2*c.Rho, c.PopSize)
		}
	}
	return nil
}
