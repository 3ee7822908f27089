package mcl

import (
	"fmt"

	"github.com/banshee-data/localization/internal/config"
)

// CandidatePolicy selects how the association engine builds the
// candidate landmark set for each particle.
type CandidatePolicy string

const (
	// CandidateScanAll considers every map landmark for every particle.
	CandidateScanAll CandidatePolicy = "scan_all"
	// CandidatePrefilterRange restricts candidates to landmarks within
	// SensorRange of the particle position before scanning. Cheaper on
	// large maps; a particle far from all landmarks then has an empty
	// candidate set, which surfaces as ErrNoCandidateLandmark.
	CandidatePrefilterRange CandidatePolicy = "prefilter_range"
)

// FilterConfig holds the tuning parameters for a Filter.
type FilterConfig struct {
	NumParticles int // Fixed particle count for the filter's lifetime

	// Initialization prior deviations (GPS-like), per axis
	InitStdX     float64
	InitStdY     float64
	InitStdTheta float64

	// Process noise deviations applied after each motion step
	MotionStdX     float64
	MotionStdY     float64
	MotionStdTheta float64

	// Sensor model deviations for the landmark likelihood
	LandmarkStdX float64
	LandmarkStdY float64

	SensorRange     float64         // Sensor reach in metres
	CandidatePolicy CandidatePolicy // Association candidate policy

	// WeightWorkers fans the randomness-free weighting phase out across
	// goroutines. 1 (or 0) keeps it serial. Prediction and resampling
	// always run on the single injected random stream.
	WeightWorkers int
}

// Validate checks the configuration. All errors wrap ErrConfig.
func (c *FilterConfig) Validate() error {
	if c.NumParticles <= 0 {
		return fmt.Errorf("num_particles must be positive, got %d: %w", c.NumParticles, ErrConfig)
	}
	stds := []struct {
		name string
		v    float64
	}{
		{"init_std_x", c.InitStdX},
		{"init_std_y", c.InitStdY},
		{"init_std_theta", c.InitStdTheta},
		{"motion_std_x", c.MotionStdX},
		{"motion_std_y", c.MotionStdY},
		{"motion_std_theta", c.MotionStdTheta},
		{"landmark_std_x", c.LandmarkStdX},
		{"landmark_std_y", c.LandmarkStdY},
	}
	for _, s := range stds {
		if s.v <= 0 {
			return fmt.Errorf("%s must be positive, got %g: %w", s.name, s.v, ErrConfig)
		}
	}
	if c.SensorRange <= 0 {
		return fmt.Errorf("sensor_range must be positive, got %g: %w", c.SensorRange, ErrConfig)
	}
	switch c.CandidatePolicy {
	case CandidateScanAll, CandidatePrefilterRange:
	default:
		return fmt.Errorf("unknown candidate_policy %q: %w", c.CandidatePolicy, ErrConfig)
	}
	if c.WeightWorkers < 0 {
		return fmt.Errorf("weight_workers must be non-negative, got %d: %w", c.WeightWorkers, ErrConfig)
	}
	return nil
}

// DefaultFilterConfig returns filter configuration loaded from the
// canonical tuning defaults file (config/tuning.defaults.json).
// Panics if the file cannot be found — intended for tests and binaries
// that have already validated config availability.
func DefaultFilterConfig() FilterConfig {
	cfg := config.MustLoadDefaultConfig()
	return FilterConfigFromTuning(cfg)
}

// FilterConfigFromTuning builds a FilterConfig from a loaded
// TuningConfig. Use this in production code where the TuningConfig is
// already loaded.
func FilterConfigFromTuning(cfg *config.TuningConfig) FilterConfig {
	return FilterConfig{
		NumParticles:    cfg.GetNumParticles(),
		InitStdX:        cfg.GetInitStdX(),
		InitStdY:        cfg.GetInitStdY(),
		InitStdTheta:    cfg.GetInitStdTheta(),
		MotionStdX:      cfg.GetMotionStdX(),
		MotionStdY:      cfg.GetMotionStdY(),
		MotionStdTheta:  cfg.GetMotionStdTheta(),
		LandmarkStdX:    cfg.GetLandmarkStdX(),
		LandmarkStdY:    cfg.GetLandmarkStdY(),
		SensorRange:     cfg.GetSensorRange(),
		CandidatePolicy: CandidatePolicy(cfg.GetCandidatePolicy()),
		WeightWorkers:   cfg.GetWeightWorkers(),
	}
}
