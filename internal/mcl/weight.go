package mcl

import (
	"fmt"
	"math"
	"sync"

	"github.com/banshee-data/localization/internal/geom"
	"github.com/banshee-data/localization/internal/monitoring"
	"github.com/banshee-data/localization/internal/worldmap"
)

// neutralWeight is assigned when a particle has no observations to score.
// Weights are overwritten (not accumulated) every update, so the neutral
// value keeps such particles at even odds in the resampling draw.
const neutralWeight = 1.0

// MeasurementLikelihood returns the bivariate Gaussian density with zero
// correlation for the residual (dx, dy) between a matched landmark and a
// map-frame observation. Its maximum, at dx = dy = 0, is
// 1/(2π·stdX·stdY).
func MeasurementLikelihood(stdX, stdY, dx, dy float64) float64 {
	norm := 1 / (2 * math.Pi * stdX * stdY)
	return norm * math.Exp(-(dx*dx/(2*stdX*stdX) + dy*dy/(2*stdY*stdY)))
}

// Update transforms this timestep's observations into the map frame for
// every particle, associates each with its nearest candidate landmark,
// and overwrites the particle's weight with the product of per-pair
// measurement likelihoods. It also records the matched landmark ids and
// coordinates on each particle as diagnostics.
//
// Weights are a fresh likelihood of the current observation set given the
// current predicted pose — never an accumulation over timesteps.
//
// The phase is randomness-free and particle-independent, so it fans out
// across WeightWorkers goroutines when configured.
func (f *Filter) Update(observations []Observation, m *worldmap.Map) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.initialized {
		return fmt.Errorf("update: %w", ErrFilterNotInitialized)
	}
	if len(observations) > 0 && len(m.Landmarks) == 0 {
		return fmt.Errorf("update: map has no landmarks: %w", ErrNoCandidateLandmark)
	}
	if len(observations) == 0 {
		monitoring.Logf("mcl: no observations this step, weights reset to neutral")
	}

	workers := f.cfg.WeightWorkers
	if workers <= 1 {
		for i := range f.particles {
			if err := f.weighParticle(&f.particles[i], observations, m); err != nil {
				return err
			}
		}
		return nil
	}

	// Static sharding: worker w owns indices w, w+workers, w+2·workers…
	// No particle is touched by two workers, so no locking is needed.
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w; i < len(f.particles); i += workers {
				if err := f.weighParticle(&f.particles[i], observations, m); err != nil {
					errs[w] = err
					return
				}
			}
		}(w)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// weighParticle scores one particle against the observation set.
func (f *Filter) weighParticle(p *Particle, observations []Observation, m *worldmap.Map) error {
	if len(observations) == 0 {
		p.Weight = neutralWeight
		p.Associations = nil
		p.SenseX = nil
		p.SenseY = nil
		return nil
	}

	// One transform per (particle, observation) pair.
	mapObs := make([]Observation, len(observations))
	for i, o := range observations {
		mx, my := geom.VehicleToMap(p.X, p.Y, p.Theta, o.X, o.Y)
		mapObs[i] = Observation{ID: o.ID, X: mx, Y: my}
	}

	matched, err := Associate(mapObs, f.candidatesFor(p, m))
	if err != nil {
		return fmt.Errorf("update: particle %d at (%.2f, %.2f): %w", p.ID, p.X, p.Y, err)
	}

	weight := 1.0
	assoc := make([]int64, len(matched))
	senseX := make([]float64, len(matched))
	senseY := make([]float64, len(matched))
	for i := range matched {
		dx := matched[i].X - mapObs[i].X
		dy := matched[i].Y - mapObs[i].Y
		weight *= MeasurementLikelihood(f.cfg.LandmarkStdX, f.cfg.LandmarkStdY, dx, dy)
		assoc[i] = matched[i].ID
		senseX[i] = matched[i].X
		senseY[i] = matched[i].Y
	}

	p.Weight = weight
	p.Associations = assoc
	p.SenseX = senseX
	p.SenseY = senseY
	return nil
}
