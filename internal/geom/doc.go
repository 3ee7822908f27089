// Package geom provides the 2-D rigid-body transforms and distance
// helpers used by the localization filter.
//
// All coordinates are metres in either the vehicle frame (sensor
// observations) or the map frame (landmarks, particle poses). Angles
// are radians, unwrapped.
//
// Dependency rule: geom depends only on the standard library.
package geom
