package mcl

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// yawRateEpsilon is the threshold below which the yaw rate is treated as
// zero and the straight-line motion branch is used, avoiding the v/ẏ
// division.
const yawRateEpsilon = 1e-4

// Predict advances every particle one timestep under the CTRV (constant
// turn rate and velocity) motion model, then perturbs each axis with an
// independent zero-mean Gaussian draw. Every particle gets fresh noise;
// shared draws would collapse filter diversity.
//
// Theta is left unwrapped — downstream trig consumes raw radians.
func (f *Filter) Predict(dt, velocity, yawRate float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.initialized {
		return fmt.Errorf("predict: %w", ErrFilterNotInitialized)
	}
	if dt <= 0 {
		return fmt.Errorf("predict: delta_t must be positive, got %g: %w", dt, ErrConfig)
	}

	noiseX := distuv.Normal{Mu: 0, Sigma: f.cfg.MotionStdX, Src: f.src}
	noiseY := distuv.Normal{Mu: 0, Sigma: f.cfg.MotionStdY, Src: f.src}
	noiseTheta := distuv.Normal{Mu: 0, Sigma: f.cfg.MotionStdTheta, Src: f.src}

	for i := range f.particles {
		p := &f.particles[i]

		if math.Abs(yawRate) > yawRateEpsilon {
			p.X += velocity / yawRate * (math.Sin(p.Theta+yawRate*dt) - math.Sin(p.Theta))
			p.Y += velocity / yawRate * (math.Cos(p.Theta) - math.Cos(p.Theta+yawRate*dt))
		} else {
			p.X += velocity * dt * math.Cos(p.Theta)
			p.Y += velocity * dt * math.Sin(p.Theta)
		}
		p.Theta += yawRate * dt

		p.X += noiseX.Rand()
		p.Y += noiseY.Rand()
		p.Theta += noiseTheta.Rand()
	}
	return nil
}
