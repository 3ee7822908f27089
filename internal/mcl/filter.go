package mcl

import (
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/banshee-data/localization/internal/worldmap"
)

// Filter is a fixed-size SIR particle filter. The particle count is set
// at construction and preserved by every operation.
//
// Accessors return value copies, so callers (status endpoints,
// visualizers) can read concurrently with the driving goroutine.
type Filter struct {
	cfg FilterConfig
	src rand.Source

	particles   []Particle
	initialized bool

	mu sync.RWMutex
}

// New creates a Filter with the given configuration and random source.
// A nil src falls back to a time-seeded source; tests inject a fixed
// seed for reproducible draws.
func New(cfg FilterConfig, src rand.Source) (*Filter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		src = rand.NewSource(uint64(time.Now().UnixNano()))
	}
	return &Filter{
		cfg:       cfg,
		src:       src,
		particles: make([]Particle, cfg.NumParticles),
	}, nil
}

// Init (re)initializes the particle set around the given pose prior,
// drawing each axis independently from the configured Gaussians and
// setting every weight to 1. Calling Init on a running filter discards
// all prior state.
func (f *Filter) Init(x, y, theta float64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	distX := distuv.Normal{Mu: x, Sigma: f.cfg.InitStdX, Src: f.src}
	distY := distuv.Normal{Mu: y, Sigma: f.cfg.InitStdY, Src: f.src}
	distTheta := distuv.Normal{Mu: theta, Sigma: f.cfg.InitStdTheta, Src: f.src}

	for i := range f.particles {
		f.particles[i] = Particle{
			ID:     i,
			X:      distX.Rand(),
			Y:      distY.Rand(),
			Theta:  distTheta.Rand(),
			Weight: 1.0,
		}
	}
	f.initialized = true
}

// Step runs one full estimation cycle in the required order:
// motion prediction, observation update, resampling.
func (f *Filter) Step(ctrl Control, observations []Observation, m *worldmap.Map) error {
	if err := f.Predict(ctrl.Dt, ctrl.Velocity, ctrl.YawRate); err != nil {
		return err
	}
	if err := f.Update(observations, m); err != nil {
		return err
	}
	return f.Resample()
}

// NumParticles returns the fixed particle count.
func (f *Filter) NumParticles() int {
	return f.cfg.NumParticles
}

// Config returns a copy of the filter configuration.
func (f *Filter) Config() FilterConfig {
	return f.cfg
}

// Particles returns a deep copy of the current particle set.
func (f *Filter) Particles() []Particle {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]Particle, len(f.particles))
	for i := range f.particles {
		out[i] = f.particles[i].clone()
	}
	return out
}

// Best returns a copy of the highest-weight particle. Ties go to the
// lower particle index.
func (f *Filter) Best() (Particle, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if !f.initialized {
		return Particle{}, fmt.Errorf("best: %w", ErrFilterNotInitialized)
	}
	best := 0
	for i := 1; i < len(f.particles); i++ {
		if f.particles[i].Weight > f.particles[best].Weight {
			best = i
		}
	}
	return f.particles[best].clone(), nil
}

// Mean returns the weighted mean pose of the particle set. Theta is
// averaged circularly (atan2 of weighted sin/cos sums) so headings near
// the ±π seam do not cancel. If the total weight is zero the mean is
// unweighted.
func (f *Filter) Mean() (Pose, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if !f.initialized {
		return Pose{}, fmt.Errorf("mean: %w", ErrFilterNotInitialized)
	}

	var sumW, sumX, sumY, sumSin, sumCos float64
	for i := range f.particles {
		w := f.particles[i].Weight
		sumW += w
	}
	for i := range f.particles {
		p := &f.particles[i]
		w := p.Weight
		if sumW == 0 {
			w = 1
		}
		sumX += w * p.X
		sumY += w * p.Y
		sumSin += w * math.Sin(p.Theta)
		sumCos += w * math.Cos(p.Theta)
	}
	if sumW == 0 {
		sumW = float64(len(f.particles))
	}
	return Pose{
		X:     sumX / sumW,
		Y:     sumY / sumW,
		Theta: math.Atan2(sumSin, sumCos),
	}, nil
}

// SetDiagnostics attaches association diagnostics to the particle at the
// given index. The slices are copied in. Estimation state is unaffected.
func (f *Filter) SetDiagnostics(idx int, associations []int64, senseX, senseY []float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.initialized {
		return fmt.Errorf("set diagnostics: %w", ErrFilterNotInitialized)
	}
	if idx < 0 || idx >= len(f.particles) {
		return fmt.Errorf("set diagnostics: particle index %d out of range [0, %d)", idx, len(f.particles))
	}
	if len(associations) != len(senseX) || len(associations) != len(senseY) {
		return fmt.Errorf("set diagnostics: mismatched lengths %d/%d/%d", len(associations), len(senseX), len(senseY))
	}
	p := &f.particles[idx]
	p.Associations = append([]int64(nil), associations...)
	p.SenseX = append([]float64(nil), senseX...)
	p.SenseY = append([]float64(nil), senseY...)
	return nil
}
