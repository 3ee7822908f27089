package mcl

import (
	"math"
	"testing"

	"github.com/banshee-data/localization/internal/worldmap"
)

// TestFullCycleConvergence drives one predict/update/resample cycle with
// near-zero noise and checks the estimate lands on the true pose.
func TestFullCycleConvergence(t *testing.T) {
	cfg := tightConfig(100)
	f := newTestFilter(t, cfg, 42)
	f.Init(0, 0, 0)

	// Drive 1 m/s for 1 s heading east: true pose becomes (1, 0, 0).
	// The landmark at (1, 0) is then observed dead ahead at the origin of
	// the vehicle frame.
	m := &worldmap.Map{Landmarks: []worldmap.Landmark{{ID: 1, X: 1, Y: 0}}}
	obs := []Observation{{X: 0, Y: 0}}

	if err := f.Step(Control{Dt: 1, Velocity: 1, YawRate: 0}, obs, m); err != nil {
		t.Fatalf("Step: %v", err)
	}

	mean, err := f.Mean()
	if err != nil {
		t.Fatalf("Mean: %v", err)
	}
	if math.Abs(mean.X-1) > 1e-6 {
		t.Errorf("mean X = %g, want ~1", mean.X)
	}
	if math.Abs(mean.Y) > 1e-6 {
		t.Errorf("mean Y = %g, want ~0", mean.Y)
	}
	if math.Abs(mean.Theta) > 1e-6 {
		t.Errorf("mean theta = %g, want ~0", mean.Theta)
	}

	best, err := f.Best()
	if err != nil {
		t.Fatalf("Best: %v", err)
	}
	if len(best.Associations) != 1 || best.Associations[0] != 1 {
		t.Errorf("best particle associations = %v, want [1]", best.Associations)
	}
}

// TestMultiStepTracking replays a short curved drive with moderate noise
// and checks the filter tracks the true trajectory.
func TestMultiStepTracking(t *testing.T) {
	cfg := testConfig(500)
	cfg.InitStdX = 0.1
	cfg.InitStdY = 0.1
	cfg.InitStdTheta = 0.01
	cfg.MotionStdX = 0.05
	cfg.MotionStdY = 0.05
	cfg.MotionStdTheta = 0.01
	f := newTestFilter(t, cfg, 99)

	m := &worldmap.Map{Landmarks: []worldmap.Landmark{
		{ID: 1, X: 5, Y: 0},
		{ID: 2, X: 5, Y: 5},
		{ID: 3, X: 0, Y: 5},
		{ID: 4, X: 10, Y: 2},
	}}

	// Simulated ground truth under constant controls.
	const (
		dt = 0.5
		v  = 2.0
		yr = 0.2
	)
	truth := Pose{X: 0, Y: 0, Theta: 0}
	f.Init(truth.X, truth.Y, truth.Theta)

	for step := 0; step < 10; step++ {
		truth.X += v / yr * (math.Sin(truth.Theta+yr*dt) - math.Sin(truth.Theta))
		truth.Y += v / yr * (math.Cos(truth.Theta) - math.Cos(truth.Theta+yr*dt))
		truth.Theta += yr * dt

		// Noiseless observations generated from the true pose.
		var obs []Observation
		for _, lm := range m.Landmarks {
			dx := lm.X - truth.X
			dy := lm.Y - truth.Y
			vx := dx*math.Cos(truth.Theta) + dy*math.Sin(truth.Theta)
			vy := -dx*math.Sin(truth.Theta) + dy*math.Cos(truth.Theta)
			obs = append(obs, Observation{X: vx, Y: vy})
		}

		if err := f.Step(Control{Dt: dt, Velocity: v, YawRate: yr}, obs, m); err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
	}

	mean, err := f.Mean()
	if err != nil {
		t.Fatalf("Mean: %v", err)
	}
	if math.Hypot(mean.X-truth.X, mean.Y-truth.Y) > 0.5 {
		t.Errorf("position estimate (%g, %g) too far from truth (%g, %g)", mean.X, mean.Y, truth.X, truth.Y)
	}
	headingErr := math.Atan2(math.Sin(mean.Theta-truth.Theta), math.Cos(mean.Theta-truth.Theta))
	if math.Abs(headingErr) > 0.2 {
		t.Errorf("heading estimate %g too far from truth %g", mean.Theta, truth.Theta)
	}
}
