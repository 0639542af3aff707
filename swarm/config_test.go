package swarm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Dims:      []int{4, 3},
		PopSize:   20,
		Topology:  Lbest,
		Rho:       2,
		Alpha:     0.1,
		Cognition: 2.05,
		Social:    2.05,
		LearnRate: 0.5,
		Bounds:    []Bound{{-2.5, 2.5}, {-2.5, 2.5}, {-2.5, 2.5}},
		MaxEval:   1000,
	}
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no dims", func(c *Config) { c.Dims = nil }},
		{"zero dim", func(c *Config) { c.Dims = []int{4, 0} }},
		{"zero population", func(c *Config) { c.PopSize = 0 }},
		{"too few bounds", func(c *Config) { c.Bounds = c.Bounds[:2] }},
		{"inverted bound", func(c *Config) { c.Bounds[1] = Bound{3, -3} }},
		{"phi at 4", func(c *Config) { c.Cognition, c.Social = 2, 2 }},
		{"phi below 4", func(c *Config) { c.Cognition, c.Social = 0.01, 0.99 }},
		{"zero rho", func(c *Config) { c.Rho = 0 }},
		{"ring wider than swarm", func(c *Config) { c.Rho = 11 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Cognition, cfg.Social = 0.01, 0.99

	it, err := New(cfg)
	require.Nil(t, it)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConstrictionFinitePositive(t *testing.T) {
	// every valid c1+c2 > 4 must give a finite positive chi
	for _, phi := range []float64{4.0001, 4.1, 4.5, 5, 6, 10, 100} {
		c1 := phi / 2
		chi := Constriction(c1, phi-c1)
		assert.Falsef(t, math.IsNaN(chi) || math.IsInf(chi, 0), "phi=%v: chi=%v", phi, chi)
		assert.Positivef(t, chi, "phi=%v", phi)
	}

	// the canonical Clerc parameterization
	assert.InDelta(t, 0.7298437881283576, Constriction(2.05, 2.05), 1e-12)
}

func TestConfigFlatDim(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, 12, cfg.FlatDim())

	// cyclic bound indexing by the innermost dimension
	cfg.Bounds = []Bound{{0, 1}, {2, 3}, {4, 5}}
	for j := 0; j < cfg.FlatDim(); j++ {
		assert.Equal(t, cfg.Bounds[j%3], cfg.bound(j), "coordinate %d", j)
	}
}

func TestParseTopology(t *testing.T) {
	top, err := ParseTopology("lbest")
	require.NoError(t, err)
	assert.Equal(t, Lbest, top)

	top, err = ParseTopology("GBEST")
	require.NoError(t, err)
	assert.Equal(t, Gbest, top)

	_, err = ParseTopology("star")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
