// Package bench provides benchmark objective functions for exercising the
// swarm engine, mostly from
// http://en.wikipedia.org/wiki/Test_functions_for_optimization, plus the
// Lennard-Jones cluster energy for structured particles.
package bench

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	pso "github.com/czonios/pso-rs"
	"github.com/czonios/pso-rs/swarm"
)

var (
	sin  = math.Sin
	cos  = math.Cos
	abs  = math.Abs
	exp  = math.Exp
	sqrt = math.Sqrt
)

var AllFuncs = []Func{
	Ackley{},
	CrossTray{},
	Eggholder{},
	HolderTable{},
	Schaffer2{},
	Styblinski{NDim: 2},
	Styblinski{NDim: 10},
	Rosenbrock{NDim: 2},
	Rosenbrock{NDim: 10},
	LennardJones{NPoints: 4},
}

// Func is a benchmark objective with a known search domain and optima.
type Func interface {
	Eval(v []float64) float64
	// Dims is the particle shape for the function ([n] for a plain
	// n-dimensional function, [n, d] for n points in d-space).
	Dims() []int
	// Bounds returns the low and up bound per innermost coordinate.
	Bounds() (low, up []float64)
	Optima() []pso.Point
	Name() string
}

// ByName returns the benchmark function with the given name (as reported by
// its Name method), or an error listing the valid names.
func ByName(name string) (Func, error) {
	names := make([]string, 0, len(AllFuncs))
	for _, fn := range AllFuncs {
		if fn.Name() == name {
			return fn, nil
		}
		names = append(names, fn.Name())
	}
	sort.Strings(names)
	return nil, fmt.Errorf("bench: unknown function %q (have %v)", name, names)
}

// InsideBounds reports whether every coordinate of v lies inside fn's
// (cyclically indexed) bounds.
func InsideBounds(v []float64, fn Func) bool {
	low, up := fn.Bounds()
	for i, x := range v {
		j := i % len(low)
		if x < low[j] || x > up[j] {
			return false
		}
	}
	return true
}

// NewConfig builds a swarm configuration for fn using the package defaults
// for the swarm coefficients and a fully-connected topology.
func NewConfig(fn Func, popsize, maxeval int) *swarm.Config {
	low, up := fn.Bounds()
	bounds := make([]swarm.Bound, len(low))
	for i := range low {
		bounds[i] = swarm.Bound{Low: low[i], High: up[i]}
	}
	return &swarm.Config{
		Dims:      fn.Dims(),
		PopSize:   popsize,
		Topology:  swarm.Gbest,
		Rho:       swarm.DefaultRho,
		Alpha:     swarm.DefaultAlpha,
		Cognition: swarm.DefaultCognition,
		Social:    swarm.DefaultSocial,
		LearnRate: swarm.DefaultLearnRate,
		Bounds:    bounds,
		MaxEval:   maxeval,
	}
}

// Benchmark drives it against fn until the best value is within
// tol*|optimum| (at least 0.001) of fn's known optimum or maxeval objective
// evaluations have been spent.
func Benchmark(it *swarm.Iterator, fn Func, tol float64, maxeval int) (best pso.Point, neval int, err error) {
	obj := pso.Func(fn.Eval)
	optimum := fn.Optima()[0].Val
	thresh := tol * abs(optimum)
	if 0.001 > thresh {
		thresh = 0.001
	}

	for neval < maxeval {
		var n int
		best, n, err = it.Step(obj)
		neval += n
		if err != nil {
			return best, neval, err
		} else if abs(optimum-best.Val) < thresh {
			return best, neval, nil
		}
	}
	return best, neval, nil
}

type Ackley struct{}

func (fn Ackley) Name() string { return "Ackley" }

func (fn Ackley) Dims() []int { return []int{2} }

func (fn Ackley) Eval(v []float64) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}

	x := v[0]
	y := v[1]
	return -20*math.Exp(-0.2*math.Sqrt(0.5*(x*x+y*y))) -
		math.Exp(0.5*(math.Cos(2*math.Pi*x)+math.Cos(2*math.Pi*y))) +
		20 + math.E
}

func (fn Ackley) Bounds() (low, up []float64) {
	return []float64{-5, -5}, []float64{5, 5}
}

func (fn Ackley) Optima() []pso.Point {
	return []pso.Point{
		pso.NewPoint([]float64{0, 0}, 0),
	}
}

type CrossTray struct{}

func (fn CrossTray) Name() string { return "CrossTray" }

func (fn CrossTray) Dims() []int { return []int{2} }

func (fn CrossTray) Eval(v []float64) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}

	x := v[0]
	y := v[1]
	return -.0001 * math.Pow(abs(sin(x)*sin(y)*exp(abs(100-sqrt(x*x+y*y)/math.Pi)))+1, 0.1)
}

func (fn CrossTray) Bounds() (low, up []float64) {
	return []float64{-10, -10}, []float64{10, 10}
}

func (fn CrossTray) Optima() []pso.Point {
	return []pso.Point{
		pso.NewPoint([]float64{1.34941, -1.34941}, -2.06261),
		pso.NewPoint([]float64{1.34941, 1.34941}, -2.06261),
		pso.NewPoint([]float64{-1.34941, 1.34941}, -2.06261),
		pso.NewPoint([]float64{-1.34941, -1.34941}, -2.06261),
	}
}

type Eggholder struct{}

func (fn Eggholder) Name() string { return "Eggholder" }

func (fn Eggholder) Dims() []int { return []int{2} }

func (fn Eggholder) Eval(v []float64) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}

	x := v[0]
	y := v[1]
	return -(y+47)*sin(sqrt(abs(y+x/2+47))) - x*sin(sqrt(abs(x-(y+47))))
}

func (fn Eggholder) Bounds() (low, up []float64) {
	return []float64{-512, -512}, []float64{512, 512}
}

func (fn Eggholder) Optima() []pso.Point {
	return []pso.Point{
		pso.NewPoint([]float64{512, 404.2319}, -959.6407),
	}
}

type HolderTable struct{}

func (fn HolderTable) Name() string { return "HolderTable" }

func (fn HolderTable) Dims() []int { return []int{2} }

func (fn HolderTable) Eval(v []float64) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}

	x := v[0]
	y := v[1]
	return -abs(sin(x) * cos(y) * exp(abs(1-sqrt(x*x+y*y)/math.Pi)))
}

func (fn HolderTable) Bounds() (low, up []float64) {
	return []float64{-10, -10}, []float64{10, 10}
}

func (fn HolderTable) Optima() []pso.Point {
	return []pso.Point{
		pso.NewPoint([]float64{8.05502, 9.66459}, -19.2085),
		pso.NewPoint([]float64{-8.05502, 9.66459}, -19.2085),
		pso.NewPoint([]float64{8.05502, -9.66459}, -19.2085),
		pso.NewPoint([]float64{-8.05502, -9.66459}, -19.2085),
	}
}

type Schaffer2 struct{}

func (fn Schaffer2) Name() string { return "Schaffer2" }

func (fn Schaffer2) Dims() []int { return []int{2} }

func (fn Schaffer2) Eval(v []float64) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}

	x := v[0]
	y := v[1]
	return 0.5 + (math.Pow(sin(x*x-y*y), 2)-0.5)/math.Pow(1+.0001*(x*x+y*y), 2)
}

func (fn Schaffer2) Bounds() (low, up []float64) {
	return []float64{-100, -100}, []float64{100, 100}
}

func (fn Schaffer2) Optima() []pso.Point {
	return []pso.Point{
		pso.NewPoint([]float64{0, 0}, 0),
	}
}

type Styblinski struct {
	NDim int
}

func (fn Styblinski) Name() string { return fmt.Sprintf("Styblinski_%vD", fn.NDim) }

func (fn Styblinski) Dims() []int { return []int{fn.NDim} }

func (fn Styblinski) Eval(x []float64) float64 {
	if !InsideBounds(x, fn) {
		return math.Inf(1)
	}

	tot := 0.0
	for _, v := range x {
		tot += math.Pow(v, 4) - 16*math.Pow(v, 2) + 5*v
	}
	return tot / 2
}

func (fn Styblinski) Bounds() (low, up []float64) {
	low = make([]float64, fn.NDim)
	up = make([]float64, fn.NDim)
	for i := range low {
		low[i] = -5
		up[i] = 5
	}
	return low, up
}

func (fn Styblinski) Optima() []pso.Point {
	pos := make([]float64, fn.NDim)
	for i := range pos {
		pos[i] = -2.903534
	}
	return []pso.Point{
		pso.NewPoint(pos, -39.16599*float64(fn.NDim)),
	}
}

type Rosenbrock struct {
	NDim int
}

func (fn Rosenbrock) Name() string { return fmt.Sprintf("Rosenbrock_%vD", fn.NDim) }

func (fn Rosenbrock) Dims() []int { return []int{fn.NDim} }

func (fn Rosenbrock) Eval(x []float64) float64 {
	if !InsideBounds(x, fn) {
		return math.Inf(1)
	}

	tot := 0.0
	for i := 0; i < fn.NDim-1; i++ {
		tot += 100*math.Pow(x[i+1]-x[i]*x[i], 2) + math.Pow(x[i]-1, 2)
	}
	return tot
}

func (fn Rosenbrock) Bounds() (low, up []float64) {
	low = make([]float64, fn.NDim)
	up = make([]float64, fn.NDim)
	for i := range low {
		low[i] = -5
		up[i] = 10
	}
	return low, up
}

func (fn Rosenbrock) Optima() []pso.Point {
	pos := make([]float64, fn.NDim)
	for i := range pos {
		pos[i] = 1
	}
	return []pso.Point{
		pso.NewPoint(pos, 0),
	}
}

// LennardJones is the reduced Lennard-Jones potential energy of a cluster of
// NPoints particles in 3-space.  The particle is the flattened [NPoints, 3]
// coordinate matrix; Eval reshapes internally.
type LennardJones struct {
	NPoints int
}

// Known global minimum energies for small reduced LJ clusters.
var ljMinima = map[int]float64{
	2: -1,
	3: -3,
	4: -6,
	5: -9.103852,
	6: -12.712062,
	7: -16.505384,
}

func (fn LennardJones) Name() string { return fmt.Sprintf("LennardJones_%v", fn.NPoints) }

func (fn LennardJones) Dims() []int { return []int{fn.NPoints, 3} }

func (fn LennardJones) Eval(v []float64) float64 {
	sum := 0.0
	for i := 0; i < fn.NPoints-1; i++ {
		for j := i + 1; j < fn.NPoints; j++ {
			d := floats.Distance(v[3*i:3*i+3], v[3*j:3*j+3], 2)
			inv := 1 / d
			sum += math.Pow(inv, 12) - math.Pow(inv, 6)
		}
	}
	return 4 * sum
}

func (fn LennardJones) Bounds() (low, up []float64) {
	return []float64{-2.5, -2.5, -2.5}, []float64{2.5, 2.5, 2.5}
}

func (fn LennardJones) Optima() []pso.Point {
	val, ok := ljMinima[fn.NPoints]
	if !ok {
		return nil
	}
	if fn.NPoints == 4 {
		// A minimal tetrahedral configuration.
		return []pso.Point{
			pso.NewPoint([]float64{
				-0.3616353090, 0.0439914505, 0.5828840628,
				0.2505889242, 0.6193583398, -0.1614607010,
				-0.4082757926, -0.2212115329, -0.5067996704,
				0.5193221773, -0.4421382574, 0.0853763087,
			}, val),
		}
	}
	return []pso.Point{
		pso.NewPoint(make([]float64, 3*fn.NPoints), val),
	}
}
