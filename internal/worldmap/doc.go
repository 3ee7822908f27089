// Package worldmap owns the static landmark map consumed by the
// localization filter.
//
// Responsibilities: loading landmark files, exposing a read-only ordered
// landmark list, and range queries around a position.
// Key types: Landmark, Map.
//
// The map is immutable for the lifetime of a filter run. No filter state
// is allowed in this package.
package worldmap
