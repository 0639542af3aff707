package pso

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"
)

const errcount = 3

type ErrObj struct {
	count int
}

func (o *ErrObj) Objective(x []float64) (float64, error) {
	o.count++
	if o.count >= errcount {
		return math.Inf(1), errors.New("fake error")
	}
	return 0, nil
}

func TestSerialEvalerErr(t *testing.T) {
	obj := &ErrObj{}
	ev := SerialEvaler{}

	results, n, err := ev.Eval(obj, Point{}, Point{}, Point{}, Point{}, Point{})
	if len(results) != errcount {
		t.Errorf("returned wrong number of results: expected %v, got %v", errcount, len(results))
	}
	if n != errcount {
		t.Errorf("returned wrong evaluation count: expected %v, got %v", errcount, n)
	}
	if err == nil {
		t.Errorf("did not propogate error through return")
	}
}

func TestParallelEvaler(t *testing.T) {
	var count int64
	obj := Func(func(v []float64) float64 {
		atomic.AddInt64(&count, 1)
		return v[0] * 2
	})

	points := make([]Point, 50)
	for i := range points {
		points[i] = NewPoint([]float64{float64(i)}, math.Inf(1))
	}

	ev := ParallelEvaler{}
	results, n, err := ev.Eval(obj, points...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != len(points) {
		t.Errorf("returned wrong evaluation count: expected %v, got %v", len(points), n)
	}
	if int(count) != len(points) {
		t.Errorf("objective invoked %v times, expected %v", count, len(points))
	}
	// results must keep the order of the input points
	for i, r := range results {
		if r.Val != float64(i)*2 {
			t.Errorf("result %v out of order or wrong: expected val %v, got %v", i, float64(i)*2, r.Val)
		}
	}
}

type objFunc func([]float64) (float64, error)

func (f objFunc) Objective(v []float64) (float64, error) { return f(v) }

func TestParallelEvalerErr(t *testing.T) {
	fake := errors.New("fake error")
	bad := objFunc(func(v []float64) (float64, error) {
		if v[0] == 3 {
			return math.Inf(1), fake
		}
		return 0, nil
	})

	points := make([]Point, 10)
	for i := range points {
		points[i] = NewPoint([]float64{float64(i)}, math.Inf(1))
	}

	ev := ParallelEvaler{NWorkers: 2}
	_, _, err := ev.Eval(bad, points...)
	if !errors.Is(err, fake) {
		t.Errorf("did not propogate objective error: got %v", err)
	}
}

func TestCacheEvaler(t *testing.T) {
	var count int
	obj := Func(func(v []float64) float64 {
		count++
		return v[0]
	})

	ev := NewCacheEvaler(SerialEvaler{})
	p := NewPoint([]float64{42}, math.Inf(1))

	for i := 0; i < 3; i++ {
		results, _, err := ev.Eval(obj, p)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if results[0].Val != 42 {
			t.Errorf("eval %v returned val %v, expected 42", i, results[0].Val)
		}
	}

	if count != 1 {
		t.Errorf("objective invoked %v times, expected 1 (cache misses only)", count)
	}
	if ev.UseCount != 2 {
		t.Errorf("cache answered %v evals, expected 2", ev.UseCount)
	}
}

func TestShaped(t *testing.T) {
	obj := Shaped([]int{2, 3}, func(v []float64, dims []int) float64 {
		if dims[0] != 2 || dims[1] != 3 {
			t.Errorf("objective saw dims %v, expected [2 3]", dims)
		}
		return float64(len(v))
	})

	val, err := obj.Objective(make([]float64, 6))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != 6 {
		t.Errorf("got val %v, expected 6", val)
	}
}

func TestPointImmutable(t *testing.T) {
	pos := []float64{1, 2, 3}
	p := NewPoint(pos, 0)
	pos[0] = 99
	if p.At(0) != 1 {
		t.Errorf("NewPoint did not copy its position: got %v", p.At(0))
	}

	got := p.Pos()
	got[1] = 99
	if p.At(1) != 2 {
		t.Errorf("Pos did not return a copy: got %v", p.At(1))
	}
}
