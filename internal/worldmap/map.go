package worldmap

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/banshee-data/localization/internal/geom"
	"github.com/banshee-data/localization/internal/monitoring"
)

// Landmark is a single known map feature in map-frame metres.
type Landmark struct {
	ID int64
	X  float64
	Y  float64
}

// Map is a read-only ordered collection of landmarks. Order is the file
// order, which downstream association uses for deterministic tie-breaks.
type Map struct {
	Landmarks []Landmark
}

// Load reads a landmark map file. Each non-empty line holds
// "x y id" separated by whitespace (the conventional survey format:
// position first, integer landmark id last).
func Load(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open map file: %w", err)
	}
	defer f.Close()

	m := &Map{}
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("map file %s line %d: expected 3 fields, got %d", path, lineNo, len(fields))
		}
		x, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("map file %s line %d: bad x: %w", path, lineNo, err)
		}
		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("map file %s line %d: bad y: %w", path, lineNo, err)
		}
		id, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("map file %s line %d: bad landmark id: %w", path, lineNo, err)
		}
		m.Landmarks = append(m.Landmarks, Landmark{ID: id, X: x, Y: y})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read map file: %w", err)
	}
	if len(m.Landmarks) == 0 {
		return nil, fmt.Errorf("map file %s contains no landmarks", path)
	}
	monitoring.Logf("worldmap: loaded %d landmarks from %s", len(m.Landmarks), path)
	return m, nil
}

// InRange returns the landmarks within radius r of (x, y), preserving
// map order. The returned slice shares no storage with the map.
func (m *Map) InRange(x, y, r float64) []Landmark {
	var out []Landmark
	for _, lm := range m.Landmarks {
		if geom.Dist(x, y, lm.X, lm.Y) <= r {
			out = append(out, lm)
		}
	}
	return out
}
