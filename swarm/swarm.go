// Package swarm implements constriction-coefficient particle swarm
// optimization over box-bounded continuous variables, with ring (lbest) and
// fully-connected (gbest) neighborhood topologies.
package swarm

import (
	"database/sql"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"

	pso "github.com/czonios/pso-rs"
)

const (
	// TblParticles is the name of the sql database table that contains
	// positions and values for particles at each generation.
	TblParticles = "swarmparticles"
	// TblParticlesBest is the name of the sql database table that contains
	// each particle's personal best position at each generation.
	TblParticlesBest = "swarmparticlesbest"
	// TblBest is the name of the sql database table that contains
	// the best position for the entire swarm at each generation.
	TblBest = "swarmbest"
)

// Constriction calculates the constriction coefficient for the given c1 and
// c2 for the particle velocity equation:
//
//	v_next = chi*(v_curr + c1*rand*(p_personal-x) + c2*rand*(p_neighborhood-x))
//
// These params are calculated using a constriction factor originally
// described in:
//
//	Clerc and M.  “The swarm and the queen: towards a deterministic and
//	adaptive particle swarm optimization” Proc. 1999 Congress on
//	Evolutionary Computation, pp. 1951-1957
//
// c1+c2 must be greater than 4 for the coefficient to be real; Config.Validate
// enforces this before the engine is built.
func Constriction(c1, c2 float64) float64 {
	phi := c1 + c2
	return 2 / math.Abs(2-phi-math.Sqrt(phi*phi-4*phi))
}

// Particle is one candidate solution: a flat position vector, its velocity,
// its latest objective value, and the best point it has personally found.
type Particle struct {
	Id   int
	Pos  []float64
	Vel  []float64
	Val  float64
	Best pso.Point
}

// Update folds a freshly computed objective value into the particle's
// personal best.  The personal best value never increases.
func (p *Particle) Update(newval float64) {
	p.Val = newval
	if p.Val < p.Best.Val {
		p.Best = pso.NewPoint(p.Pos, p.Val)
	}
}

type Population []*Particle

// Points returns the current particle positions with their latest values.
func (pop Population) Points() []pso.Point {
	points := make([]pso.Point, len(pop))
	for i, p := range pop {
		points[i] = pso.NewPoint(p.Pos, p.Val)
	}
	return points
}

// Best returns the lowest personal best across the population.  Ties go to
// the lower particle index.
func (pop Population) Best() pso.Point {
	best := pop[0].Best
	for _, p := range pop[1:] {
		if p.Best.Val < best.Val {
			best = p.Best
		}
	}
	return best
}

// NewPopulation creates a swarm of cfg.PopSize particles.  Each coordinate j
// is drawn uniformly from its cyclic bound pair (coordinate j mod the
// innermost dimension); velocities are drawn uniformly from [-vmax, vmax].
// Objective values start at positive infinity (never evaluated).
// github.com/czonios/pso-rs.Rand is used for random numbers.
func NewPopulation(cfg *Config, vmax float64) Population {
	flat := cfg.FlatDim()
	pop := make(Population, cfg.PopSize)
	for i := range pop {
		pos := make([]float64, flat)
		vel := make([]float64, flat)
		for j := 0; j < flat; j++ {
			b := cfg.bound(j)
			pos[j] = b.Low + pso.RandFloat()*(b.High-b.Low)
			vel[j] = vmax * (1 - 2*pso.RandFloat())
		}
		pop[i] = &Particle{
			Id:   i,
			Pos:  pos,
			Vel:  vel,
			Val:  math.Inf(1),
			Best: pso.NewPoint(pos, math.Inf(1)),
		}
	}
	return pop
}

type Option func(*Iterator)

// Evaler sets the evaluation strategy used to score the population.  The
// default is pso.ParallelEvaler{}.
func Evaler(ev pso.Evaler) Option {
	return func(it *Iterator) { it.ev = ev }
}

// Rng sets the random source for the r1/r2 velocity draws.  The default is
// the package-level pso.Rand.
func Rng(r pso.Rng) Option {
	return func(it *Iterator) { it.rng = r }
}

// DB enables per-generation persistence of particle and best positions into
// the swarmparticles, swarmparticlesbest, and swarmbest tables.
func DB(db *sql.DB) Option {
	return func(it *Iterator) { it.db = db }
}

// Logger sets a structured logger for per-generation debug records.
func Logger(l *slog.Logger) Option {
	return func(it *Iterator) { it.log = l }
}

// Progress registers an observer called once per committed generation with
// the number of objective evaluations performed so far and the current
// global best value.  Purely observational.
func Progress(fn func(neval int, best float64)) Option {
	return func(it *Iterator) { it.progress = fn }
}

// Iterator is the swarm engine.  It owns the population, per-particle
// velocities and personal bests, the neighborhood map, and the single global
// best for the run.
type Iterator struct {
	// Chi is the constriction coefficient derived from c1+c2.
	Chi float64
	// Vmax is the per-coordinate speed limit, Alpha*5.
	Vmax float64

	cfg      *Config
	Pop      Population
	ev       pso.Evaler
	hoods    Neighborhoods
	rng      pso.Rng
	db       *sql.DB
	log      *slog.Logger
	progress func(neval int, best float64)

	seeded bool
	gen    int
	neval  int
	best   pso.Point
	traj   *Trajectory
}

// New validates cfg and builds the engine: constriction coefficient,
// randomly initialized population and velocities, and the neighborhood map.
// The initial objective evaluation happens lazily on the first Evaluate,
// Step, or Run call, since only those receive the objective.
func New(cfg *Config, opts ...Option) (*Iterator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	it := &Iterator{
		Chi:   Constriction(cfg.Cognition, cfg.Social),
		Vmax:  cfg.Alpha * 5.0,
		cfg:   cfg,
		ev:    pso.ParallelEvaler{},
		hoods: NewNeighborhoods(cfg.Topology, cfg.PopSize, cfg.Rho),
		rng:   pso.Rand,
		best:  pso.NewPoint(make([]float64, cfg.FlatDim()), math.Inf(1)),
		traj:  &Trajectory{},
	}
	it.Pop = NewPopulation(cfg, it.Vmax)

	for _, opt := range opts {
		opt(it)
	}

	if it.db != nil {
		if err := it.initdb(); err != nil {
			return nil, err
		}
	}
	return it, nil
}

// Config returns the run parameters the engine was built with.
func (it *Iterator) Config() *Config { return it.cfg }

// Best returns the best point found so far across the whole run.
func (it *Iterator) Best() pso.Point { return it.best }

// Evals returns the number of objective evaluations performed by Step/Run.
func (it *Iterator) Evals() int { return it.neval }

// Trajectory returns the per-generation log of the global best.
func (it *Iterator) Trajectory() *Trajectory { return it.traj }

// Evaluate scores every particle at its current position and returns the
// score vector.  Evaluations run under the configured Evaler (parallel by
// default) and share no state.  Fresh scores are folded into each particle's
// personal best, and the global best is improved when the batch minimum
// beats it - the stored best is never downgraded, even if the population has
// regressed since it was found.
func (it *Iterator) Evaluate(obj pso.Objectiver) ([]float64, error) {
	results, _, err := it.ev.Eval(obj, it.Pop.Points()...)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, len(results))
	for i, r := range results {
		it.Pop[i].Update(r.Val)
		scores[i] = r.Val
	}

	if i := floats.MinIdx(scores); scores[i] < it.best.Val {
		it.best = pso.NewPoint(it.Pop[i].Pos, scores[i])
	}
	return scores, nil
}

// seed runs the initial evaluation that fixes the first global best and the
// trajectory's first entry.
func (it *Iterator) seed(obj pso.Objectiver) error {
	if it.seeded {
		return nil
	}
	if _, err := it.Evaluate(obj); err != nil {
		return err
	}
	it.traj.add(it.best)
	if err := it.updateDB(); err != nil {
		return err
	}
	it.seeded = true
	return nil
}

// localBest returns the personal best of the particle with the lowest
// personal-best value in i's neighborhood.  Ties go to the lower index.
func (it *Iterator) localBest(i int) pso.Point {
	hood := it.hoods[i]
	besti := hood[0]
	for _, n := range hood[1:] {
		nb, bb := it.Pop[n].Best.Val, it.Pop[besti].Best.Val
		if nb < bb || (nb == bb && n < besti) {
			besti = n
		}
	}
	return it.Pop[besti].Best
}

// Step runs one synchronous generation: new velocities and positions for
// every particle are computed from the previous generation's committed state
// into fresh buffers, committed at once, and only then scored, so personal
// and global bests always reflect the positions that produced them.  Step is
// atomic from the caller's perspective: on error no partial generation is
// visible beyond the state at the failure point being reported.
func (it *Iterator) Step(obj pso.Objectiver) (best pso.Point, n int, err error) {
	if err := it.seed(obj); err != nil {
		return it.best, 0, err
	}

	flat := it.cfg.FlatDim()
	newpos := make([][]float64, len(it.Pop))
	newvel := make([][]float64, len(it.Pop))

	for i, p := range it.Pop {
		lbest := it.localBest(i)
		pos := make([]float64, flat)
		vel := make([]float64, flat)
		for j := 0; j < flat; j++ {
			// r1 and r2 MUST be drawn inside this loop, uniquely for each
			// coordinate of p's velocity.
			r1 := 2*it.rng.Float64() - 1
			r2 := 2*it.rng.Float64() - 1
			cog := it.cfg.Cognition * r1 * (p.Best.At(j) - p.Pos[j])
			soc := it.cfg.Social * r2 * (lbest.At(j) - p.Pos[j])

			v := it.Chi * (p.Vel[j] + cog + soc)
			// Non-finite check comes before the clamp: Copysign would fold
			// an infinite velocity back to vmax and hide the divergence.
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return it.best, 0, &DivergenceError{Particle: i, Coord: j, Value: v}
			}
			if math.Abs(v) > it.Vmax {
				v = math.Copysign(it.Vmax, v)
			}

			x := p.Pos[j] + it.cfg.LearnRate*v
			b := it.cfg.bound(j)
			if x < b.Low {
				x = b.Low
			} else if x > b.High {
				x = b.High
			}
			if math.IsNaN(x) {
				return it.best, 0, &DivergenceError{Particle: i, Coord: j, Value: x}
			}

			vel[j] = v
			pos[j] = x
		}
		newpos[i] = pos
		newvel[i] = vel
	}

	// Commit only after every particle's update is computed, so no particle
	// observes a neighbor's mid-step position.
	for i, p := range it.Pop {
		p.Pos = newpos[i]
		p.Vel = newvel[i]
	}
	it.gen++

	// Score the positions just produced - evaluating before the commit
	// would lag personal bests one generation behind.
	if _, err := it.Evaluate(obj); err != nil {
		return it.best, 0, err
	}
	it.neval += len(it.Pop)

	it.traj.add(it.best)
	if err := it.updateDB(); err != nil {
		return it.best, len(it.Pop), err
	}

	if it.log != nil {
		it.log.Debug("generation complete",
			"gen", it.gen,
			"neval", it.neval,
			"best", it.best.Val,
		)
	}
	return it.best, len(it.Pop), nil
}

// Run repeats Step until the evaluation budget cfg.MaxEval is exhausted or
// terminate (checked once per committed generation) returns true.  terminate
// may be nil.  At least one generation always runs.  Run returns the total
// number of objective evaluations performed.
func (it *Iterator) Run(obj pso.Objectiver, terminate func(best float64) bool) (neval int, err error) {
	if err := it.seed(obj); err != nil {
		return it.neval, err
	}

	for {
		if _, _, err := it.Step(obj); err != nil {
			return it.neval, err
		}
		if it.progress != nil {
			it.progress(it.neval, it.best.Val)
		}
		if terminate != nil && terminate(it.best.Val) {
			return it.neval, nil
		}
		if it.neval >= it.cfg.MaxEval {
			return it.neval, nil
		}
	}
}

func (it *Iterator) initdb() error {
	if it.db == nil {
		return nil
	}

	stmts := []string{
		"CREATE TABLE IF NOT EXISTS " + TblParticles + " (particle INTEGER, gen INTEGER, val REAL" + it.xdbsql("define") + ");",
		"CREATE TABLE IF NOT EXISTS " + TblParticlesBest + " (particle INTEGER, gen INTEGER, best REAL" + it.xdbsql("define") + ");",
		"CREATE TABLE IF NOT EXISTS " + TblBest + " (gen INTEGER, val REAL" + it.xdbsql("define") + ");",
	}
	for _, s := range stmts {
		if _, err := it.db.Exec(s); err != nil {
			return fmt.Errorf("swarm: init db: %w", err)
		}
	}
	return nil
}

func (it *Iterator) xdbsql(op string) string {
	s := ""
	for i := 0; i < it.cfg.FlatDim(); i++ {
		switch op {
		case "?":
			s += ",?"
		case "define":
			s += fmt.Sprintf(",x%v REAL", i)
		case "x":
			s += fmt.Sprintf(",x%v", i)
		default:
			panic("invalid db op " + op)
		}
	}
	return s
}

func pos2iface(pos []float64) []interface{} {
	iface := make([]interface{}, 0, len(pos))
	for _, v := range pos {
		iface = append(iface, v)
	}
	return iface
}

func (it *Iterator) updateDB() error {
	if it.db == nil {
		return nil
	}

	tx, err := it.db.Begin()
	if err != nil {
		return fmt.Errorf("swarm: update db: %w", err)
	}

	s0 := "INSERT INTO " + TblParticles + " (particle,gen,val" + it.xdbsql("x") + ") VALUES (?,?,?" + it.xdbsql("?") + ");"
	s1 := "INSERT INTO " + TblParticlesBest + " (particle,gen,best" + it.xdbsql("x") + ") VALUES (?,?,?" + it.xdbsql("?") + ");"
	for _, p := range it.Pop {
		args := []interface{}{p.Id, it.gen, p.Val}
		args = append(args, pos2iface(p.Pos)...)
		if _, err := tx.Exec(s0, args...); err != nil {
			tx.Rollback()
			return fmt.Errorf("swarm: update db: %w", err)
		}

		args = []interface{}{p.Id, it.gen, p.Best.Val}
		args = append(args, pos2iface(p.Best.Pos())...)
		if _, err := tx.Exec(s1, args...); err != nil {
			tx.Rollback()
			return fmt.Errorf("swarm: update db: %w", err)
		}
	}

	s2 := "INSERT INTO " + TblBest + " (gen,val" + it.xdbsql("x") + ") VALUES (?,?" + it.xdbsql("?") + ");"
	args := []interface{}{it.gen, it.best.Val}
	args = append(args, pos2iface(it.best.Pos())...)
	if _, err := tx.Exec(s2, args...); err != nil {
		tx.Rollback()
		return fmt.Errorf("swarm: update db: %w", err)
	}

	return tx.Commit()
}
