// Package main renders a persisted localization run as a PNG: the
// landmark map, the ground-truth-relative estimate trajectory, and the
// start/end markers.
package main

import (
	"flag"
	"image/color"
	"log"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/localization/internal/storage/sqlite"
	"github.com/banshee-data/localization/internal/worldmap"
)

func main() {
	dbPath := flag.String("db", "runs.db", "SQLite run database")
	runID := flag.String("run", "", "Run ID to plot (default: most recent)")
	mapPath := flag.String("map", "", "Landmark map file (default: path stored with the run)")
	outPath := flag.String("out", "trajectory.png", "Output PNG file")
	flag.Parse()

	db, err := sqlite.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	store := sqlite.NewRunStore(db)

	run, err := resolveRun(store, *runID)
	if err != nil {
		log.Fatalf("Failed to resolve run: %v", err)
	}
	steps, err := store.ListSteps(run.RunID)
	if err != nil {
		log.Fatalf("Failed to load steps: %v", err)
	}
	if len(steps) == 0 {
		log.Fatalf("Run %s has no steps", run.RunID)
	}

	path := *mapPath
	if path == "" {
		path = run.MapPath
	}
	m, err := worldmap.Load(path)
	if err != nil {
		log.Fatalf("Failed to load map: %v", err)
	}

	p := plot.New()
	p.Title.Text = "Localization run " + run.RunID
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"

	landmarkPts := make(plotter.XYs, 0, len(m.Landmarks))
	for _, lm := range m.Landmarks {
		landmarkPts = append(landmarkPts, plotter.XY{X: lm.X, Y: lm.Y})
	}
	landmarks, err := plotter.NewScatter(landmarkPts)
	if err != nil {
		log.Fatalf("Failed to build landmark scatter: %v", err)
	}
	landmarks.GlyphStyle.Radius = vg.Points(3)
	landmarks.GlyphStyle.Color = color.RGBA{R: 60, G: 60, B: 60, A: 255}

	trackPts := make(plotter.XYs, 0, len(steps))
	for _, s := range steps {
		trackPts = append(trackPts, plotter.XY{X: s.X, Y: s.Y})
	}
	track, err := plotter.NewLine(trackPts)
	if err != nil {
		log.Fatalf("Failed to build trajectory line: %v", err)
	}
	track.Width = vg.Points(1.5)
	track.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}

	// Ground truth is recoverable from the stored per-step errors.
	truthPts := make(plotter.XYs, 0, len(steps))
	for _, s := range steps {
		truthPts = append(truthPts, plotter.XY{X: s.X - s.ErrX, Y: s.Y - s.ErrY})
	}
	truth, err := plotter.NewLine(truthPts)
	if err != nil {
		log.Fatalf("Failed to build ground-truth line: %v", err)
	}
	truth.Width = vg.Points(1)
	truth.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	truth.Color = color.RGBA{R: 44, G: 160, B: 44, A: 255}

	endpoints, err := plotter.NewScatter(plotter.XYs{trackPts[0], trackPts[len(trackPts)-1]})
	if err != nil {
		log.Fatalf("Failed to build endpoint scatter: %v", err)
	}
	endpoints.GlyphStyle.Radius = vg.Points(4)
	endpoints.GlyphStyle.Color = color.RGBA{R: 214, G: 39, B: 40, A: 255}

	p.Add(plotter.NewGrid(), landmarks, truth, track, endpoints)
	p.Legend.Add("landmarks", landmarks)
	p.Legend.Add("estimate", track)
	p.Legend.Add("ground truth", truth)

	if err := p.Save(10*vg.Inch, 10*vg.Inch, *outPath); err != nil {
		log.Fatalf("Failed to save plot: %v", err)
	}
	log.Printf("Wrote %s (%d steps, %d landmarks)", *outPath, len(steps), len(m.Landmarks))
}

// resolveRun returns the named run, or the newest run when id is empty.
func resolveRun(store *sqlite.RunStore, id string) (*sqlite.Run, error) {
	if id != "" {
		return store.GetRun(id)
	}
	runs, err := store.ListRuns()
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		log.Fatal("Database has no runs")
	}
	return runs[0], nil
}
