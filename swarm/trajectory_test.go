package swarm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pso "github.com/czonios/pso-rs"
)

func TestTrajectoryAccessors(t *testing.T) {
	traj := &Trajectory{}
	traj.add(pso.NewPoint([]float64{0, 0}, 5))
	traj.add(pso.NewPoint([]float64{1, -1}, 2.5))
	traj.add(pso.NewPoint([]float64{1, -1}, 2.5)) // unchanged best is still recorded

	require.Equal(t, 3, traj.Len())
	assert.Equal(t, 5.0, traj.At(0).Val)
	assert.Equal(t, []float64{5, 2.5, 2.5}, traj.Scores())
	assert.Equal(t, [][]float64{{0, 0}, {1, -1}, {1, -1}}, traj.Positions())
}

func TestTrajectoryWriters(t *testing.T) {
	traj := &Trajectory{}
	traj.add(pso.NewPoint([]float64{0.5, -2}, 12))
	traj.add(pso.NewPoint([]float64{1, 3}, 0.25))

	var f bytes.Buffer
	require.NoError(t, traj.WriteScores(&f))
	assert.Equal(t, "12\n0.25\n", f.String())

	var x bytes.Buffer
	require.NoError(t, traj.WritePositions(&x))
	assert.Equal(t, "0.5,-2\n1,3\n", x.String())
}

func TestTrajectoryRecordedPerGeneration(t *testing.T) {
	seedrng()
	cfg := testConfig([]int{2}, []Bound{{-3, 3}, {-3, 3}}, 4)
	cfg.MaxEval = 24

	it, err := New(cfg)
	require.NoError(t, err)

	_, err = it.Run(pso.Func(sphere), nil)
	require.NoError(t, err)

	// one initial entry plus one per generation
	gens := cfg.MaxEval / cfg.PopSize
	assert.Equal(t, gens+1, it.Trajectory().Len())

	scores := it.Trajectory().Scores()
	for i := 1; i < len(scores); i++ {
		assert.LessOrEqualf(t, scores[i], scores[i-1], "entry %d", i)
	}
}
