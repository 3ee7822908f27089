package geom

import "math"

// VehicleToMap transforms a point (ox, oy) observed in the vehicle frame
// into the map frame, given the observer pose (px, py, ptheta). The
// transform is a rotation by ptheta followed by a translation to the
// observer position (homogeneous transform, no scaling).
func VehicleToMap(px, py, ptheta, ox, oy float64) (mx, my float64) {
	sin, cos := math.Sincos(ptheta)
	mx = px + ox*cos - oy*sin
	my = py + ox*sin + oy*cos
	return mx, my
}

// MapToVehicle is the inverse of VehicleToMap: it transforms a map-frame
// point (mx, my) into the vehicle frame of the observer pose
// (px, py, ptheta).
func MapToVehicle(px, py, ptheta, mx, my float64) (ox, oy float64) {
	sin, cos := math.Sincos(ptheta)
	dx := mx - px
	dy := my - py
	ox = dx*cos + dy*sin
	oy = -dx*sin + dy*cos
	return ox, oy
}

// Dist returns the Euclidean distance between (x1, y1) and (x2, y2).
func Dist(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}
