// Package mcl implements Monte Carlo localization: a fixed-size
// sequential importance resampling (SIR) particle filter estimating a
// vehicle pose (x, y, theta) against a known landmark map.
//
// Responsibilities: particle set lifecycle, CTRV motion prediction with
// process noise, observation-to-landmark association, importance
// weighting under a per-axis Gaussian sensor model, and resampling.
// Key types: Filter, Particle, Observation, Control.
//
// The filter is driven synchronously, one timestep at a time, in the
// fixed order Predict → Update → Resample (Step runs the full cycle).
// All randomness flows through the rand.Source injected at construction
// so runs are reproducible under a fixed seed.
//
// Dependency rule: mcl may depend on geom, worldmap and config, but
// never on telemetry or storage.
package mcl
