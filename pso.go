// Package pso provides the common types shared by the particle swarm engine
// in the swarm subpackage: objective functions, points, and evaluation
// strategies for computing objective values across a population.
package pso

import (
	"context"
	"crypto/sha1"
	"fmt"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Rng is the source of uniform random numbers used for population and
// velocity initialization.  Any generator implementing Float64 can be
// substituted for reproducible runs.
type Rng interface {
	Float64() float64
}

// Rand is the package's default random number source.  Tests and benchmark
// drivers reseed it for reproducibility.
var Rand Rng = rand.New(rand.NewSource(1))

// RandFloat returns a uniform random number in [0, 1).
func RandFloat() float64 { return Rand.Float64() }

type Objectiver interface {
	// Objective evaluates the variables in v and returns the objective
	// function value.  The objective function must be framed so that lower
	// values are better.  If the evaluation fails, positive infinity should
	// be returned along with an error.
	Objective(v []float64) (float64, error)
}

// Func adapts a plain function to the Objectiver interface.
type Func func([]float64) float64

func (f Func) Objective(v []float64) (float64, error) { return f(v), nil }

// ShapeFunc is an objective over a structured particle.  The flat vector v
// holds prod(dims) coordinates; the function reshapes internally as needed
// (e.g. dims = [20, 3] for twenty points in 3-space).
type ShapeFunc func(v []float64, dims []int) float64

// Shaped binds dims to f, yielding an Objectiver over the flat vector.
func Shaped(dims []int, f ShapeFunc) Objectiver {
	d := make([]int, len(dims))
	copy(d, dims)
	return Func(func(v []float64) float64 { return f(v, d) })
}

type Evaler interface {
	// Eval evaluates each point using obj and returns the values and number
	// of function evaluations n.  Unevaluated points should not be returned
	// in the results slice.
	Eval(obj Objectiver, points ...Point) (results []Point, n int, err error)
}

type SerialEvaler struct {
	ContinueOnErr bool
}

func (ev SerialEvaler) Eval(obj Objectiver, points ...Point) (results []Point, n int, err error) {
	results = make([]Point, 0, len(points))
	for _, p := range points {
		p.Val, err = obj.Objective(p.Pos())
		results = append(results, p)
		if err != nil && !ev.ContinueOnErr {
			return results, len(results), err
		}
	}
	return results, len(results), nil
}

// ParallelEvaler evaluates all points concurrently.  Evaluations share no
// state, so the objective must be safe to call from multiple goroutines with
// distinct arguments.  Results keep the order of the input points.  The
// first objective error cancels outstanding evaluations and is returned.
type ParallelEvaler struct {
	// NWorkers caps the number of concurrent evaluations.  Zero means
	// runtime.GOMAXPROCS(0).
	NWorkers int
}

func (ev ParallelEvaler) Eval(obj Objectiver, points ...Point) (results []Point, n int, err error) {
	nw := ev.NWorkers
	if nw <= 0 {
		nw = runtime.GOMAXPROCS(0)
	}

	results = make([]Point, len(points))
	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(nw)
	for i, p := range points {
		i, p := i, p
		g.Go(func() error {
			val, err := obj.Objective(p.Pos())
			results[i] = NewPoint(p.Pos(), val)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return results, len(points), err
	}
	return results, len(points), nil
}

// CacheEvaler wraps another Evaler and memoizes objective values by
// position so re-evaluating an unchanged particle costs nothing.
type CacheEvaler struct {
	ev    Evaler
	cache map[[sha1.Size]byte]float64
	// UseCount reports how many evaluations were answered from the cache.
	UseCount int
}

func NewCacheEvaler(ev Evaler) *CacheEvaler {
	return &CacheEvaler{
		ev:    ev,
		cache: map[[sha1.Size]byte]float64{},
	}
}

func (ev *CacheEvaler) Eval(obj Objectiver, points ...Point) (results []Point, n int, err error) {
	fromnew := make([]int, 0, len(points))
	newp := make([]Point, 0, len(points))
	for i, p := range points {
		if val, ok := ev.cache[hashPoint(p)]; ok {
			points[i].Val = val
			ev.UseCount++
		} else {
			fromnew = append(fromnew, i)
			newp = append(newp, p)
		}
	}

	if len(newp) > 0 {
		newresults, nn, err := ev.ev.Eval(obj, newp...)
		n = nn
		for i, p := range newresults {
			ev.cache[hashPoint(p)] = p.Val
			points[fromnew[i]].Val = p.Val
		}
		if err != nil {
			// shrink if the error resulted in fewer new results
			if len(newresults) == 0 {
				return nil, n, err
			}
			return points[:fromnew[len(newresults)-1]+1], n, err
		}
	}
	return points, n, nil
}

// ObjectivePrinter writes every evaluated point to stdout.  Useful for
// debugging objective functions.
type ObjectivePrinter struct {
	Objectiver
	Count int
}

func NewObjectivePrinter(obj Objectiver) *ObjectivePrinter {
	return &ObjectivePrinter{Objectiver: obj}
}

func (op *ObjectivePrinter) Objective(v []float64) (float64, error) {
	val, err := op.Objectiver.Objective(v)

	op.Count++
	fmt.Print(op.Count, " ")
	for _, x := range v {
		fmt.Print(x, " ")
	}
	fmt.Println("    ", val)

	return val, err
}
