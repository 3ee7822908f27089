package mcl

// Pose is a vehicle pose in map-frame metres and radians.
type Pose struct {
	X     float64
	Y     float64
	Theta float64
}

// Observation is a single landmark measurement in the vehicle frame.
// ID is optional on input (sensors report anonymous ranges); association
// fills landmark identity into the particle diagnostics instead.
type Observation struct {
	ID int64
	X  float64
	Y  float64
}

// Control is the motion command for one timestep.
type Control struct {
	Dt       float64 // elapsed seconds, must be > 0
	Velocity float64 // m/s
	YawRate  float64 // rad/s
}

// Particle is one weighted pose hypothesis. ID is stable within a
// generation only; resampling renumbers the new generation.
//
// Associations, SenseX and SenseY record the matched landmark ids and
// their map-frame coordinates from the most recent update. They exist
// for reporting and visualization and have no effect on estimation.
type Particle struct {
	ID     int
	X      float64
	Y      float64
	Theta  float64
	Weight float64

	Associations []int64
	SenseX       []float64
	SenseY       []float64
}

// clone returns a value copy with the diagnostic slices deep-copied, so
// resampled generations never alias each other's diagnostics.
func (p Particle) clone() Particle {
	out := p
	if len(p.Associations) > 0 {
		out.Associations = append([]int64(nil), p.Associations...)
		out.SenseX = append([]float64(nil), p.SenseX...)
		out.SenseY = append([]float64(nil), p.SenseY...)
	}
	return out
}
