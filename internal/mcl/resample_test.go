package mcl

import (
	"errors"
	"math"
	"testing"
)

func TestResampleSingleSurvivor(t *testing.T) {
	f := newTestFilter(t, testConfig(3), 5)
	f.Init(0, 0, 0)
	f.particles[0] = Particle{ID: 0, X: 1, Y: 1, Weight: 0}
	f.particles[1] = Particle{ID: 1, X: 2, Y: 2, Weight: 1, Associations: []int64{4}}
	f.particles[2] = Particle{ID: 2, X: 3, Y: 3, Weight: 0}

	if err := f.Resample(); err != nil {
		t.Fatalf("Resample: %v", err)
	}

	particles := f.Particles()
	if len(particles) != 3 {
		t.Fatalf("got %d particles, want 3", len(particles))
	}
	for i, p := range particles {
		if p.X != 2 || p.Y != 2 {
			t.Errorf("particle %d at (%g, %g), want copy of the sole positive-weight particle (2, 2)", i, p.X, p.Y)
		}
		if p.ID != i {
			t.Errorf("particle %d has ID %d, want renumbered %d", i, p.ID, i)
		}
		if len(p.Associations) != 1 || p.Associations[0] != 4 {
			t.Errorf("particle %d lost diagnostics in copy: %v", i, p.Associations)
		}
	}
}

func TestResampleProportionalFrequencies(t *testing.T) {
	const n = 1000
	f := newTestFilter(t, testConfig(n), 23)
	f.Init(0, 0, 0)
	// First half weight 1, second half weight 3: expect ~25% / ~75%.
	for i := range f.particles {
		f.particles[i].X = float64(i)
		if i < n/2 {
			f.particles[i].Weight = 1
		} else {
			f.particles[i].Weight = 3
		}
	}

	if err := f.Resample(); err != nil {
		t.Fatalf("Resample: %v", err)
	}

	heavy := 0
	for _, p := range f.Particles() {
		if p.X >= n/2 {
			heavy++
		}
	}
	frac := float64(heavy) / n
	if math.Abs(frac-0.75) > 0.1 {
		t.Errorf("heavy-group fraction = %g, want ~0.75", frac)
	}
}

func TestResampleLeavesPosesUnchanged(t *testing.T) {
	f := newTestFilter(t, testConfig(50), 31)
	f.Init(2, 3, 0.5)

	before := make(map[[3]float64]bool)
	for _, p := range f.Particles() {
		before[[3]float64{p.X, p.Y, p.Theta}] = true
	}

	if err := f.Resample(); err != nil {
		t.Fatalf("Resample: %v", err)
	}
	for i, p := range f.Particles() {
		if !before[[3]float64{p.X, p.Y, p.Theta}] {
			t.Errorf("particle %d pose (%g, %g, %g) was not in the pre-resample set", i, p.X, p.Y, p.Theta)
		}
	}
}

func TestResampleAllZeroWeights(t *testing.T) {
	f := newTestFilter(t, testConfig(3), 1)
	f.Init(0, 0, 0)
	for i := range f.particles {
		f.particles[i].Weight = 0
	}

	if err := f.Resample(); !errors.Is(err, ErrDegenerateWeights) {
		t.Fatalf("err = %v, want ErrDegenerateWeights", err)
	}
}

func TestResampleInvalidWeights(t *testing.T) {
	for name, bad := range map[string]float64{
		"negative": -0.5,
		"nan":      math.NaN(),
	} {
		t.Run(name, func(t *testing.T) {
			f := newTestFilter(t, testConfig(3), 1)
			f.Init(0, 0, 0)
			f.particles[1].Weight = bad

			if err := f.Resample(); !errors.Is(err, ErrDegenerateWeights) {
				t.Fatalf("err = %v, want ErrDegenerateWeights", err)
			}
		})
	}
}
