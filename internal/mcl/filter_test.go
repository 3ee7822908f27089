package mcl

import (
	"errors"
	"math"
	"testing"

	"golang.org/x/exp/rand"

	"github.com/banshee-data/localization/internal/worldmap"
)

// testConfig returns a valid configuration for n particles with the
// canonical tuning deviations.
func testConfig(n int) FilterConfig {
	return FilterConfig{
		NumParticles:    n,
		InitStdX:        0.3,
		InitStdY:        0.3,
		InitStdTheta:    0.01,
		MotionStdX:      0.3,
		MotionStdY:      0.3,
		MotionStdTheta:  0.01,
		LandmarkStdX:    0.3,
		LandmarkStdY:    0.3,
		SensorRange:     50,
		CandidatePolicy: CandidateScanAll,
		WeightWorkers:   1,
	}
}

// tightConfig returns a configuration whose noise deviations are small
// enough that draws are effectively deterministic.
func tightConfig(n int) FilterConfig {
	cfg := testConfig(n)
	cfg.InitStdX = 1e-9
	cfg.InitStdY = 1e-9
	cfg.InitStdTheta = 1e-9
	cfg.MotionStdX = 1e-9
	cfg.MotionStdY = 1e-9
	cfg.MotionStdTheta = 1e-9
	return cfg
}

func newTestFilter(t *testing.T, cfg FilterConfig, seed uint64) *Filter {
	t.Helper()
	f, err := New(cfg, rand.NewSource(seed))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(0)
	if _, err := New(cfg, nil); !errors.Is(err, ErrConfig) {
		t.Fatalf("New with zero particles: err = %v, want ErrConfig", err)
	}
}

func TestInitSetsParticleSet(t *testing.T) {
	f := newTestFilter(t, testConfig(100), 1)
	f.Init(4.0, 5.0, 1.5)

	particles := f.Particles()
	if len(particles) != 100 {
		t.Fatalf("got %d particles, want 100", len(particles))
	}
	for i, p := range particles {
		if p.ID != i {
			t.Errorf("particle %d has ID %d", i, p.ID)
		}
		if p.Weight != 1.0 {
			t.Errorf("particle %d has weight %g, want 1", i, p.Weight)
		}
	}
}

func TestInitMeanConvergesToPrior(t *testing.T) {
	cfg := testConfig(20000)
	f := newTestFilter(t, cfg, 7)
	f.Init(4.0, 5.0, 0.5)

	mean, err := f.Mean()
	if err != nil {
		t.Fatalf("Mean: %v", err)
	}
	// Sample means of 20k draws with sigma 0.3 / 0.01 land well within
	// these tolerances.
	if math.Abs(mean.X-4.0) > 0.02 {
		t.Errorf("mean X = %g, want ~4.0", mean.X)
	}
	if math.Abs(mean.Y-5.0) > 0.02 {
		t.Errorf("mean Y = %g, want ~5.0", mean.Y)
	}
	if math.Abs(mean.Theta-0.5) > 0.002 {
		t.Errorf("mean theta = %g, want ~0.5", mean.Theta)
	}
}

func TestReInitDiscardsState(t *testing.T) {
	f := newTestFilter(t, tightConfig(10), 3)
	f.Init(1, 2, 0)
	if err := f.Predict(1, 5, 0); err != nil {
		t.Fatalf("Predict: %v", err)
	}

	f.Init(-3, -4, 1)
	for i, p := range f.Particles() {
		if math.Abs(p.X+3) > 1e-6 || math.Abs(p.Y+4) > 1e-6 {
			t.Errorf("particle %d at (%g, %g) after re-init, want (-3, -4)", i, p.X, p.Y)
		}
		if p.Weight != 1.0 {
			t.Errorf("particle %d weight %g after re-init, want 1", i, p.Weight)
		}
	}
}

func TestOperationsRequireInit(t *testing.T) {
	f := newTestFilter(t, testConfig(10), 1)
	m := &worldmap.Map{Landmarks: []worldmap.Landmark{{ID: 1, X: 0, Y: 0}}}

	if err := f.Predict(1, 1, 0); !errors.Is(err, ErrFilterNotInitialized) {
		t.Errorf("Predict: err = %v, want ErrFilterNotInitialized", err)
	}
	if err := f.Update(nil, m); !errors.Is(err, ErrFilterNotInitialized) {
		t.Errorf("Update: err = %v, want ErrFilterNotInitialized", err)
	}
	if err := f.Resample(); !errors.Is(err, ErrFilterNotInitialized) {
		t.Errorf("Resample: err = %v, want ErrFilterNotInitialized", err)
	}
	if _, err := f.Best(); !errors.Is(err, ErrFilterNotInitialized) {
		t.Errorf("Best: err = %v, want ErrFilterNotInitialized", err)
	}
	if _, err := f.Mean(); !errors.Is(err, ErrFilterNotInitialized) {
		t.Errorf("Mean: err = %v, want ErrFilterNotInitialized", err)
	}
	if err := f.SetDiagnostics(0, nil, nil, nil); !errors.Is(err, ErrFilterNotInitialized) {
		t.Errorf("SetDiagnostics: err = %v, want ErrFilterNotInitialized", err)
	}
}

func TestParticleCountInvariantAcrossCycle(t *testing.T) {
	const n = 50
	f := newTestFilter(t, testConfig(n), 11)
	m := &worldmap.Map{Landmarks: []worldmap.Landmark{
		{ID: 1, X: 5, Y: 5},
		{ID: 2, X: -5, Y: 5},
	}}
	obs := []Observation{{X: 4, Y: 4}}

	f.Init(0, 0, 0)
	for step := 0; step < 5; step++ {
		if err := f.Step(Control{Dt: 0.1, Velocity: 2, YawRate: 0.1}, obs, m); err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
		if got := len(f.Particles()); got != n {
			t.Fatalf("step %d: particle count %d, want %d", step, got, n)
		}
	}
}

func TestBestReturnsHighestWeight(t *testing.T) {
	f := newTestFilter(t, testConfig(3), 1)
	f.Init(0, 0, 0)
	f.particles[0].Weight = 0.1
	f.particles[1].Weight = 0.7
	f.particles[2].Weight = 0.2

	best, err := f.Best()
	if err != nil {
		t.Fatalf("Best: %v", err)
	}
	if best.ID != 1 {
		t.Errorf("best particle ID = %d, want 1", best.ID)
	}
}

func TestMeanCircularTheta(t *testing.T) {
	f := newTestFilter(t, testConfig(2), 1)
	f.Init(0, 0, 0)
	// Headings straddling the ±π seam: naive averaging gives ~0, the
	// circular mean stays at the seam.
	f.particles[0] = Particle{ID: 0, X: 0, Y: 0, Theta: math.Pi - 0.1, Weight: 1}
	f.particles[1] = Particle{ID: 1, X: 0, Y: 0, Theta: -math.Pi + 0.1, Weight: 1}

	mean, err := f.Mean()
	if err != nil {
		t.Fatalf("Mean: %v", err)
	}
	if math.Abs(math.Abs(mean.Theta)-math.Pi) > 1e-9 {
		t.Errorf("circular mean theta = %g, want ±π", mean.Theta)
	}
}

func TestMeanZeroTotalWeightFallsBackToUniform(t *testing.T) {
	f := newTestFilter(t, testConfig(2), 1)
	f.Init(0, 0, 0)
	f.particles[0] = Particle{ID: 0, X: 2, Y: 0, Theta: 0, Weight: 0}
	f.particles[1] = Particle{ID: 1, X: 4, Y: 2, Theta: 0, Weight: 0}

	mean, err := f.Mean()
	if err != nil {
		t.Fatalf("Mean: %v", err)
	}
	if math.Abs(mean.X-3) > 1e-12 || math.Abs(mean.Y-1) > 1e-12 {
		t.Errorf("uniform-fallback mean = (%g, %g), want (3, 1)", mean.X, mean.Y)
	}
}

func TestSetDiagnostics(t *testing.T) {
	f := newTestFilter(t, testConfig(5), 1)
	f.Init(0, 0, 0)

	assoc := []int64{3, 7}
	sx := []float64{1.5, 2.5}
	sy := []float64{-0.5, 0.5}
	if err := f.SetDiagnostics(2, assoc, sx, sy); err != nil {
		t.Fatalf("SetDiagnostics: %v", err)
	}

	p := f.Particles()[2]
	if len(p.Associations) != 2 || p.Associations[0] != 3 || p.Associations[1] != 7 {
		t.Errorf("associations = %v", p.Associations)
	}
	if p.SenseX[1] != 2.5 || p.SenseY[0] != -0.5 {
		t.Errorf("sense coords = %v / %v", p.SenseX, p.SenseY)
	}

	if err := f.SetDiagnostics(5, nil, nil, nil); err == nil {
		t.Error("expected error for out-of-range index")
	}
	if err := f.SetDiagnostics(0, []int64{1}, nil, nil); err == nil {
		t.Error("expected error for mismatched slice lengths")
	}
}

func TestParticlesReturnsDeepCopy(t *testing.T) {
	f := newTestFilter(t, testConfig(2), 1)
	f.Init(0, 0, 0)
	if err := f.SetDiagnostics(0, []int64{1}, []float64{2}, []float64{3}); err != nil {
		t.Fatalf("SetDiagnostics: %v", err)
	}

	snapshot := f.Particles()
	snapshot[0].X = 999
	snapshot[0].Associations[0] = 999

	again := f.Particles()
	if again[0].X == 999 {
		t.Error("mutating snapshot pose leaked into filter state")
	}
	if again[0].Associations[0] == 999 {
		t.Error("mutating snapshot diagnostics leaked into filter state")
	}
}
