package mcl

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Resample draws the next particle generation: N independent
// with-replacement draws from the discrete distribution proportional to
// the current weights. Selected particles are value-copied (diagnostics
// included) and renumbered 0…N-1; no pose is altered.
//
// A weight vector that cannot form a distribution — all zero, or any
// negative or NaN entry — returns ErrDegenerateWeights rather than
// falling back to a uniform draw.
func (f *Filter) Resample() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.initialized {
		return fmt.Errorf("resample: %w", ErrFilterNotInitialized)
	}

	weights := make([]float64, len(f.particles))
	total := 0.0
	for i := range f.particles {
		w := f.particles[i].Weight
		if w < 0 || math.IsNaN(w) {
			return fmt.Errorf("resample: particle %d has weight %g: %w", i, w, ErrDegenerateWeights)
		}
		weights[i] = w
		total += w
	}
	if total <= 0 {
		return fmt.Errorf("resample: total weight %g: %w", total, ErrDegenerateWeights)
	}

	dist := distuv.NewCategorical(weights, f.src)
	next := make([]Particle, len(f.particles))
	for i := range next {
		next[i] = f.particles[int(dist.Rand())].clone()
		next[i].ID = i
	}
	f.particles = next
	return nil
}
