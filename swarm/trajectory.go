package swarm

import (
	"bufio"
	"io"
	"strconv"

	pso "github.com/czonios/pso-rs"
)

// Trajectory is the append-only log of the running global best: one entry
// for the initial evaluation plus one per generation, whether or not the
// best improved that generation.
type Trajectory struct {
	entries []pso.Point
}

func (t *Trajectory) add(p pso.Point) { t.entries = append(t.entries, p) }

func (t *Trajectory) Len() int { return len(t.entries) }

func (t *Trajectory) At(i int) pso.Point { return t.entries[i] }

// Scores returns the best objective value at each generation.
func (t *Trajectory) Scores() []float64 {
	scores := make([]float64, len(t.entries))
	for i, p := range t.entries {
		scores[i] = p.Val
	}
	return scores
}

// Positions returns the best position at each generation.
func (t *Trajectory) Positions() [][]float64 {
	positions := make([][]float64, len(t.entries))
	for i, p := range t.entries {
		positions[i] = p.Pos()
	}
	return positions
}

// WriteScores writes the best value per generation, one per line.
func (t *Trajectory) WriteScores(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, p := range t.entries {
		bw.WriteString(strconv.FormatFloat(p.Val, 'g', -1, 64))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WritePositions writes the best position per generation, one line of
// comma-separated coordinates each.
func (t *Trajectory) WritePositions(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, p := range t.entries {
		for j := 0; j < p.Len(); j++ {
			if j > 0 {
				bw.WriteByte(',')
			}
			bw.WriteString(strconv.FormatFloat(p.At(j), 'g', -1, 64))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
