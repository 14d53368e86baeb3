package stats

import (
	"fmt"
	"image/color"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"rmss/internal/model"
)

// WriteSimilarityTrend renders the per-cycle similarity envelope: the max
// and min target similarity among each cycle's selected candidates, plus the
// matching input-similarity band.
func WriteSimilarityTrend(path string, records []model.CycleRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("no cycle records to plot")
	}

	type bounds struct {
		targetMax, targetMin float64
		inputMax, inputMin   float64
	}
	byCycle := map[int]*bounds{}
	for _, rec := range records {
		b := byCycle[rec.Cycle]
		if b == nil {
			b = &bounds{
				targetMax: rec.TargetSimilarity, targetMin: rec.TargetSimilarity,
				inputMax: rec.InputSimilarity, inputMin: rec.InputSimilarity,
			}
			byCycle[rec.Cycle] = b
			continue
		}
		if rec.TargetSimilarity > b.targetMax {
			b.targetMax = rec.TargetSimilarity
		}
		if rec.TargetSimilarity < b.targetMin {
			b.targetMin = rec.TargetSimilarity
		}
		if rec.InputSimilarity > b.inputMax {
			b.inputMax = rec.InputSimilarity
		}
		if rec.InputSimilarity < b.inputMin {
			b.inputMin = rec.InputSimilarity
		}
	}

	cycles := make([]int, 0, len(byCycle))
	for cycle := range byCycle {
		cycles = append(cycles, cycle)
	}
	sort.Ints(cycles)

	targetMax := make(plotter.XYs, len(cycles))
	targetMin := make(plotter.XYs, len(cycles))
	inputMax := make(plotter.XYs, len(cycles))
	inputMin := make(plotter.XYs, len(cycles))
	for i, cycle := range cycles {
		b := byCycle[cycle]
		x := float64(cycle)
		targetMax[i] = plotter.XY{X: x, Y: b.targetMax}
		targetMin[i] = plotter.XY{X: x, Y: b.targetMin}
		inputMax[i] = plotter.XY{X: x, Y: b.inputMax}
		inputMin[i] = plotter.XY{X: x, Y: b.inputMin}
	}

	p := plot.New()
	p.Title.Text = "Protein Similarity per Cycle"
	p.X.Label.Text = "Cycle"
	p.Y.Label.Text = "Similarity (%)"
	p.Y.Min = 0
	p.Y.Max = 100
	p.Add(plotter.NewGrid())

	targetColor := color.RGBA{R: 200, G: 60, B: 60, A: 255}
	inputColor := color.RGBA{R: 50, G: 100, B: 200, A: 255}

	series := []struct {
		name   string
		pts    plotter.XYs
		col    color.RGBA
		dashed bool
	}{
		{"Target similarity (max)", targetMax, targetColor, false},
		{"Target similarity (min)", targetMin, targetColor, true},
		{"Input similarity (max)", inputMax, inputColor, false},
		{"Input similarity (min)", inputMin, inputColor, true},
	}
	for _, s := range series {
		line, err := plotter.NewLine(s.pts)
		if err != nil {
			return err
		}
		line.LineStyle.Color = s.col
		line.LineStyle.Width = vg.Points(2)
		if s.dashed {
			line.LineStyle.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
		}
		p.Add(line)
		p.Legend.Add(s.name, line)
	}
	p.Legend.Top = true

	return p.Save(10*vg.Inch, 4*vg.Inch, path)
}
