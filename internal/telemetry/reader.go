package telemetry

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/banshee-data/localization/internal/mcl"
)

// ControlReading is one row of the recorded control stream.
type ControlReading struct {
	Velocity float64 // m/s
	YawRate  float64 // rad/s
}

// readRows parses a whitespace-separated numeric file with a fixed
// column count, invoking emit once per non-empty line.
func readRows(path string, columns int, emit func(fields []float64)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		raw := strings.Fields(line)
		if len(raw) != columns {
			return fmt.Errorf("%s line %d: expected %d fields, got %d", path, lineNo, columns, len(raw))
		}
		fields := make([]float64, columns)
		for i, r := range raw {
			v, err := strconv.ParseFloat(r, 64)
			if err != nil {
				return fmt.Errorf("%s line %d: field %d: %w", path, lineNo, i, err)
			}
			fields[i] = v
		}
		emit(fields)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

// ReadControls reads a control stream file ("velocity yaw_rate" per line).
func ReadControls(path string) ([]ControlReading, error) {
	var out []ControlReading
	err := readRows(path, 2, func(f []float64) {
		out = append(out, ControlReading{Velocity: f[0], YawRate: f[1]})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadGroundTruth reads a ground-truth pose file ("x y theta" per line).
func ReadGroundTruth(path string) ([]mcl.Pose, error) {
	var out []mcl.Pose
	err := readRows(path, 3, func(f []float64) {
		out = append(out, mcl.Pose{X: f[0], Y: f[1], Theta: f[2]})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadObservations reads one step's vehicle-frame sensor returns
// ("x y" per line). A missing or empty file means the sensor saw
// nothing that step, which is valid.
func ReadObservations(path string) ([]mcl.Observation, error) {
	var out []mcl.Observation
	err := readRows(path, 2, func(f []float64) {
		out = append(out, mcl.Observation{X: f[0], Y: f[1]})
	})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

// ObservationFile returns the path of the observation file for a
// 1-based step within a data directory.
func ObservationFile(dataDir string, step int) string {
	return filepath.Join(dataDir, "observation", fmt.Sprintf("observations_%06d.txt", step))
}

// EstimateWriter streams per-step best estimates as CSV for the
// diagnostics sink. Output format: step,x,y,theta.
type EstimateWriter struct {
	w io.Writer
}

// NewEstimateWriter wraps w and emits the CSV header.
func NewEstimateWriter(w io.Writer) (*EstimateWriter, error) {
	if _, err := fmt.Fprintln(w, "step,x,y,theta"); err != nil {
		return nil, fmt.Errorf("write estimate header: %w", err)
	}
	return &EstimateWriter{w: w}, nil
}

// Write appends one estimate row.
func (e *EstimateWriter) Write(step int, pose mcl.Pose) error {
	if _, err := fmt.Fprintf(e.w, "%d,%.6f,%.6f,%.6f\n", step, pose.X, pose.Y, pose.Theta); err != nil {
		return fmt.Errorf("write estimate row: %w", err)
	}
	return nil
}
