package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for localizer tuning
// parameters. Fields are pointers so partial JSON files are safe: any
// field omitted from the file falls back to the Get* defaults.
type TuningConfig struct {
	// Particle set
	NumParticles *int `json:"num_particles,omitempty"`

	// Initialization prior deviations (metres, metres, radians)
	InitStdX     *float64 `json:"init_std_x,omitempty"`
	InitStdY     *float64 `json:"init_std_y,omitempty"`
	InitStdTheta *float64 `json:"init_std_theta,omitempty"`

	// Motion process noise deviations (metres, metres, radians)
	MotionStdX     *float64 `json:"motion_std_x,omitempty"`
	MotionStdY     *float64 `json:"motion_std_y,omitempty"`
	MotionStdTheta *float64 `json:"motion_std_theta,omitempty"`

	// Landmark sensor model deviations (metres)
	LandmarkStdX *float64 `json:"landmark_std_x,omitempty"`
	LandmarkStdY *float64 `json:"landmark_std_y,omitempty"`

	// Sensor reach (metres) and association candidate policy
	SensorRange     *float64 `json:"sensor_range,omitempty"`
	CandidatePolicy *string  `json:"candidate_policy,omitempty"`

	// Worker count for the weighting phase
	WeightWorkers *int `json:"weight_workers,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under
// the max file size. Fields omitted from the JSON file retain their
// default values, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from
// DefaultConfigPath. It searches for the file in the current directory
// and common parent directories. Panics if the file cannot be loaded,
// intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	// Try paths from current dir up to repo root
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/storage/sqlite/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.NumParticles != nil && *c.NumParticles <= 0 {
		return fmt.Errorf("num_particles must be positive, got %d", *c.NumParticles)
	}

	stds := []struct {
		name string
		v    *float64
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
		if s.v != nil && *s.v <= 0 {
			return fmt.Errorf("%s must be positive, got %f", s.name, *s.v)
		}
	}

	if c.SensorRange != nil && *c.SensorRange <= 0 {
		return fmt.Errorf("sensor_range must be positive, got %f", *c.SensorRange)
	}

	if c.CandidatePolicy != nil {
		switch *c.CandidatePolicy {
		case "scan_all", "prefilter_range":
		default:
			return fmt.Errorf("candidate_policy must be scan_all or prefilter_range, got %q", *c.CandidatePolicy)
		}
	}

	if c.WeightWorkers != nil && *c.WeightWorkers < 0 {
		return fmt.Errorf("weight_workers must be non-negative, got %d", *c.WeightWorkers)
	}

	return nil
}

// GetNumParticles returns the num_particles value or the default.
func (c *TuningConfig) GetNumParticles() int {
	if c.NumParticles == nil {
		return 100
	}
	return *c.NumParticles
}

// GetInitStdX returns the init_std_x value or the default.
func (c *TuningConfig) GetInitStdX() float64 {
	if c.InitStdX == nil {
		return 0.3
	}
	return *c.InitStdX
}

// GetInitStdY returns the init_std_y value or the default.
func (c *TuningConfig) GetInitStdY() float64 {
	if c.InitStdY == nil {
		return 0.3
	}
	return *c.InitStdY
}

// GetInitStdTheta returns the init_std_theta value or the default.
func (c *TuningConfig) GetInitStdTheta() float64 {
	if c.InitStdTheta == nil {
		return 0.01
	}
	return *c.InitStdTheta
}

// GetMotionStdX returns the motion_std_x value or the default.
func (c *TuningConfig) GetMotionStdX() float64 {
	if c.MotionStdX == nil {
		return 0.3
	}
	return *c.MotionStdX
}

// GetMotionStdY returns the motion_std_y value or the default.
func (c *TuningConfig) GetMotionStdY() float64 {
	if c.MotionStdY == nil {
		return 0.3
	}
	return *c.MotionStdY
}

// GetMotionStdTheta returns the motion_std_theta value or the default.
func (c *TuningConfig) GetMotionStdTheta() float64 {
	if c.MotionStdTheta == nil {
		return 0.01
	}
	return *c.MotionStdTheta
}

// GetLandmarkStdX returns the landmark_std_x value or the default.
func (c *TuningConfig) GetLandmarkStdX() float64 {
	if c.LandmarkStdX == nil {
		return 0.3
	}
	return *c.LandmarkStdX
}

// GetLandmarkStdY returns the landmark_std_y value or the default.
func (c *TuningConfig) GetLandmarkStdY() float64 {
	if c.LandmarkStdY == nil {
		return 0.3
	}
	return *c.LandmarkStdY
}

// GetSensorRange returns the sensor_range value or the default.
func (c *TuningConfig) GetSensorRange() float64 {
	if c.SensorRange == nil {
		return 50.0
	}
	return *c.SensorRange
}

// GetCandidatePolicy returns the candidate_policy value or the default.
func (c *TuningConfig) GetCandidatePolicy() string {
	if c.CandidatePolicy == nil {
		return "prefilter_range"
	}
	return *c.CandidatePolicy
}

// GetWeightWorkers returns the weight_workers value or the default.
func (c *TuningConfig) GetWeightWorkers() int {
	if c.WeightWorkers == nil {
		return 1
	}
	return *c.WeightWorkers
}
