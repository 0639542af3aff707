// Command pso runs the swarm engine against a named benchmark function and
// optionally records the best-so-far trajectory to text files and a sqlite
// database.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/time/rate"

	pso "github.com/czonios/pso-rs"
	"github.com/czonios/pso-rs/bench"
	"github.com/czonios/pso-rs/swarm"
)

var (
	fnName   = flag.String("fn", "Eggholder", "benchmark function to minimize")
	popsize  = flag.Int("pop", 30, "population size")
	topology = flag.String("topology", "gbest", "neighborhood topology (lbest or gbest)")
	rho      = flag.Int("rho", swarm.DefaultRho, "one-sided ring radius for lbest")
	alpha    = flag.Float64("alpha", swarm.DefaultAlpha, "max velocity fraction (vmax = alpha*5)")
	c1       = flag.Float64("c1", swarm.DefaultCognition, "cognitive coefficient")
	c2       = flag.Float64("c2", swarm.DefaultSocial, "social coefficient")
	lr       = flag.Float64("lr", swarm.DefaultLearnRate, "learning rate multiplier")
	tmax     = flag.Int("tmax", 100000, "objective evaluation budget")
	target   = flag.Float64("target", math.NaN(), "stop once the best value is at or below this")
	seed     = flag.Int64("seed", 0, "random seed (0 seeds from the clock)")
	dbpath   = flag.String("db", "", "sqlite file for per-generation particle history")
	traj     = flag.String("traj", "", "prefix for trajectory files (<prefix>_f.txt, <prefix>_x.txt)")
	quiet    = flag.Bool("quiet", false, "suppress the progress line")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "pso:", err)
		os.Exit(1)
	}
}

func run() error {
	s := *seed
	if s == 0 {
		s = time.Now().UnixNano()
	}
	pso.Rand = rand.New(rand.NewSource(s))

	fn, err := bench.ByName(*fnName)
	if err != nil {
		return err
	}

	top, err := swarm.ParseTopology(*topology)
	if err != nil {
		return err
	}

	cfg := bench.NewConfig(fn, *popsize, *tmax)
	cfg.Topology = top
	cfg.Rho = *rho
	cfg.Alpha = *alpha
	cfg.Cognition = *c1
	cfg.Social = *c2
	cfg.LearnRate = *lr

	opts := []swarm.Option{}
	if *dbpath != "" {
		db, err := sql.Open("sqlite3", *dbpath)
		if err != nil {
			return err
		}
		defer db.Close()
		opts = append(opts, swarm.DB(db))
	}
	if !*quiet {
		// Redraws are throttled so the progress line costs nothing in the
		// hot loop.
		lim := rate.NewLimiter(rate.Every(100*time.Millisecond), 1)
		opts = append(opts, swarm.Progress(func(neval int, best float64) {
			if lim.Allow() {
				fmt.Printf("\r%v/%v evals    best %.6g        ", neval, *tmax, best)
			}
		}))
	}

	it, err := swarm.New(cfg, opts...)
	if err != nil {
		return err
	}

	var terminate func(float64) bool
	if !math.IsNaN(*target) {
		t := *target
		terminate = func(best float64) bool { return best <= t }
	}

	start := time.Now()
	neval, err := it.Run(pso.Func(fn.Eval), terminate)
	if !*quiet {
		fmt.Println()
	}
	if err != nil {
		return err
	}

	best := it.Best()
	fmt.Printf("%v evals in %v\n", neval, time.Since(start).Round(time.Millisecond))
	fmt.Printf("best value: %v\n", best.Val)
	fmt.Printf("best position: %v\n", best.Pos())
	if optima := fn.Optima(); len(optima) > 0 {
		fmt.Printf("known optimum: %v\n", optima[0].Val)
	}

	if *traj != "" {
		if err := writeTrajectory(it.Trajectory(), *traj); err != nil {
			return err
		}
	}
	return nil
}

func writeTrajectory(t *swarm.Trajectory, prefix string) error {
	ff, err := os.Create(prefix + "_f.txt")
	if err != nil {
		return err
	}
	defer ff.Close()
	if err := t.WriteScores(ff); err != nil {
		return err
	}

	xf, err := os.Create(prefix + "_x.txt")
	if err != nil {
		return err
	}
	defer xf.Close()
	return t.WritePositions(xf)
}
