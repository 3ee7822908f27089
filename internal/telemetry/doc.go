// Package telemetry reads recorded drive data for replay through the
// localization filter and writes per-step estimate output.
//
// A data directory holds one run:
//
//	map_data.txt               landmark map ("x y id" per line)
//	control_data.txt           control stream ("velocity yaw_rate" per line)
//	gt_data.txt                ground-truth poses ("x y theta" per line)
//	observation/observations_000001.txt …   per-step sensor returns ("x y" per line)
//
// Observation files are numbered from 1 and align with the ground-truth
// rows; control row i drives the transition from step i to step i+1.
package telemetry
