package mcl

import (
	"math"

	"github.com/banshee-data/localization/internal/geom"
	"github.com/banshee-data/localization/internal/worldmap"
)

// Associate pairs each map-frame observation with its nearest candidate
// landmark by Euclidean distance. The pairing has the same cardinality
// and order as the observation slice; a landmark may be matched by more
// than one observation. Ties break to the first-encountered landmark in
// candidate order, which makes the result deterministic for a given map.
//
// An empty candidate set with observations present returns
// ErrNoCandidateLandmark — callers must never fall back to an arbitrary
// landmark index.
func Associate(observations []Observation, candidates []worldmap.Landmark) ([]worldmap.Landmark, error) {
	if len(observations) == 0 {
		return nil, nil
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidateLandmark
	}

	matched := make([]worldmap.Landmark, len(observations))
	for i, obs := range observations {
		best := 0
		bestDist := math.Inf(1)
		for j, lm := range candidates {
			d := geom.Dist(obs.X, obs.Y, lm.X, lm.Y)
			if d < bestDist {
				bestDist = d
				best = j
			}
		}
		matched[i] = candidates[best]
	}
	return matched, nil
}

// candidatesFor builds the candidate landmark set for a particle
// according to the configured policy.
func (f *Filter) candidatesFor(p *Particle, m *worldmap.Map) []worldmap.Landmark {
	switch f.cfg.CandidatePolicy {
	case CandidatePrefilterRange:
		return m.InRange(p.X, p.Y, f.cfg.SensorRange)
	default:
		return m.Landmarks
	}
}
