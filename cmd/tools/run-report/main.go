// Package main renders an HTML accuracy report for a persisted
// localization run: per-step position and heading error against ground
// truth, charted with go-echarts.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/localization/internal/storage/sqlite"
)

func main() {
	dbPath := flag.String("db", "runs.db", "SQLite run database")
	runID := flag.String("run", "", "Run ID to report on (default: most recent)")
	outPath := flag.String("out", "report.html", "Output HTML file")
	flag.Parse()

	db, err := sqlite.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	store := sqlite.NewRunStore(db)

	var run *sqlite.Run
	if *runID != "" {
		run, err = store.GetRun(*runID)
	} else {
		var runs []*sqlite.Run
		runs, err = store.ListRuns()
		if err == nil {
			if len(runs) == 0 {
				log.Fatal("Database has no runs")
			}
			run = runs[0]
		}
	}
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

	xAxis := make([]int, len(steps))
	posErr := make([]opts.LineData, len(steps))
	headingErr := make([]opts.LineData, len(steps))
	weights := make([]opts.LineData, len(steps))
	var sumSqPos float64
	for i, s := range steps {
		xAxis[i] = s.Step
		pe := math.Hypot(s.ErrX, s.ErrY)
		sumSqPos += pe * pe
		posErr[i] = opts.LineData{Value: pe}
		headingErr[i] = opts.LineData{Value: s.ErrTheta}
		weights[i] = opts.LineData{Value: s.Weight}
	}
	rmse := math.Sqrt(sumSqPos / float64(len(steps)))

	errChart := charts.NewLine()
	errChart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Localization error",
			Subtitle: fmt.Sprintf("run=%s particles=%d seed=%d rmse=%.4fm", run.RunID, run.NumParticles, run.Seed, rmse),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	errChart.SetXAxis(xAxis).
		AddSeries("position error (m)", posErr).
		AddSeries("heading error (rad)", headingErr)

	weightChart := charts.NewLine()
	weightChart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Best-particle weight"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	weightChart.SetXAxis(xAxis).AddSeries("weight", weights)

	page := components.NewPage()
	page.AddCharts(errChart, weightChart)

	f, err := os.Create(*outPath)
	if err != nil {
		log.Fatalf("Failed to create report file: %v", err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		log.Fatalf("Failed to render report: %v", err)
	}
	log.Printf("Wrote %s (%d steps, position RMSE %.4f m)", *outPath, len(steps), rmse)
}
