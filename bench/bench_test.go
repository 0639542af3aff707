package bench_test

import (
	"math"
	"math/rand"
	"testing"

	pso "github.com/czonios/pso-rs"
	"github.com/czonios/pso-rs/bench"
	"github.com/czonios/pso-rs/swarm"
)

const maxeval = 10000

const seed = 7

func seedrng(seed int64) {
	pso.Rand = rand.New(rand.NewSource(seed))
}

func TestKnownOptima(t *testing.T) {
	for _, fn := range bench.AllFuncs {
		for i, opt := range fn.Optima() {
			got := fn.Eval(opt.Pos())
			tol := 1e-2 * math.Max(1, math.Abs(opt.Val))
			if math.Abs(got-opt.Val) > tol {
				t.Errorf("[ERROR:%v] optimum %v: Eval(%v) = %v, expected %v",
					fn.Name(), i, opt.Pos(), got, opt.Val)
			}
		}
	}
}

func TestRosenbrockExact(t *testing.T) {
	fn := bench.Rosenbrock{NDim: 2}
	if v := fn.Eval([]float64{2, -2}); v == 0 {
		t.Errorf("Eval(2,-2) = 0, expected nonzero")
	}
	if v := fn.Eval([]float64{1, 1}); v != 0 {
		t.Errorf("Eval(1,1) = %v, expected exactly 0", v)
	}
}

func TestLennardJonesTetrahedral(t *testing.T) {
	fn := bench.LennardJones{NPoints: 4}
	opt := fn.Optima()[0]
	if v := fn.Eval(opt.Pos()); v >= -5.9999999 {
		t.Errorf("tetrahedral energy %v, expected < -5.9999999", v)
	}
}

func TestNewConfigValid(t *testing.T) {
	for _, fn := range bench.AllFuncs {
		cfg := bench.NewConfig(fn, 30, maxeval)
		if err := cfg.Validate(); err != nil {
			t.Errorf("[ERROR:%v] config does not validate: %v", fn.Name(), err)
		}
	}
}

func TestByName(t *testing.T) {
	fn, err := bench.ByName("Eggholder")
	if err != nil {
		t.Fatal(err)
	}
	if fn.Name() != "Eggholder" {
		t.Errorf("got %v, expected Eggholder", fn.Name())
	}

	if _, err := bench.ByName("NoSuchFunc"); err == nil {
		t.Errorf("expected error for unknown function name")
	}
}

func TestBenchSwarm(t *testing.T) {
	for _, fn := range bench.AllFuncs {
		seedrng(seed)
		optimum := fn.Optima()[0].Val

		cfg := bench.NewConfig(fn, 30, maxeval)
		it, err := swarm.New(cfg)
		if err != nil {
			t.Fatalf("[ERROR:%v] %v", fn.Name(), err)
		}

		best, neval, err := bench.Benchmark(it, fn, .01, maxeval)
		if err != nil {
			t.Errorf("[FAIL:%v] %v evals: optimum is %v, got %v: %v", fn.Name(), neval, optimum, best.Val, err)
		} else if neval < maxeval {
			t.Logf("[pass:%v] %v evals: optimum is %v, got %v", fn.Name(), neval, optimum, best.Val)
		} else {
			t.Logf("[stop:%v] budget spent: optimum is %v, got %v", fn.Name(), optimum, best.Val)
		}
	}
}

func TestBenchSwarmLbest(t *testing.T) {
	seedrng(seed)
	fn := bench.Styblinski{NDim: 2}
	cfg := bench.NewConfig(fn, 30, maxeval)
	cfg.Topology = swarm.Lbest
	cfg.Rho = 3

	it, err := swarm.New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	best, neval, err := bench.Benchmark(it, fn, .01, maxeval)
	if err != nil {
		t.Fatalf("[ERROR] %v", err)
	}
	t.Logf("[INFO] %v evals: optimum is %v, got %v", neval, fn.Optima()[0].Val, best.Val)
}
