package render

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// SaveTrajectoryPNG plots each series against times, one line per series
// labelled from labels, and writes a PNG to path.
func SaveTrajectoryPNG(path, title string, times []float64, series [][]float64, labels []string) error {
	if len(times) == 0 || len(series) == 0 {
		return fmt.Errorf("plot data invalid: %d times, %d series", len(times), len(series))
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (s)"
	p.Add(plotter.NewGrid())

	for i, ys := range series {
		if len(ys) != len(times) {
			return fmt.Errorf("series %d has %d points, want %d", i, len(ys), len(times))
		}
		pts := make(plotter.XYs, len(times))
		for j := range times {
			pts[j].X = times[j]
			pts[j].Y = ys[j]
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("series %d: %w", i, err)
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = plotutil.Color(i)
		p.Add(line)

		label := fmt.Sprintf("x%d", i)
		if i < len(labels) {
			label = labels[i]
		}
		p.Legend.Add(label, line)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create directory: %w", err)
		}
	}
	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}
