package report

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/reflectivity.report/internal/train"
)

// CurveFileName is the base name of the rendered complexity curve.
const CurveFileName = "model_complexity"

var (
	trainColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	testColor  = color.RGBA{R: 255, G: 127, B: 14, A: 255}
)

// ComplexityCurvePNG draws train and test accuracy against k and saves the
// plot as dir/model_complexity.png. It returns the written path.
func ComplexityCurvePNG(points []train.SweepPoint, dir string) (string, error) {
	if len(points) == 0 {
		return "", fmt.Errorf("no sweep points to plot")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create plot directory: %w", err)
	}

	p := plot.New()
	p.Title.Text = "k-NN: varying number of neighbours"
	p.X.Label.Text = "number of neighbours"
	p.Y.Label.Text = "accuracy"
	p.Y.Min = 0
	p.Y.Max = 1.05

	trainPts := make(plotter.XYs, 0, len(points))
	testPts := make(plotter.XYs, 0, len(points))
	for _, pt := range points {
		trainPts = append(trainPts, plotter.XY{X: float64(pt.K), Y: pt.TrainAccuracy})
		testPts = append(testPts, plotter.XY{X: float64(pt.K), Y: pt.TestAccuracy})
	}

	for _, s := range []struct {
		label string
		pts   plotter.XYs
		c     color.Color
	}{
		{"training accuracy", trainPts, trainColor},
		{"testing accuracy", testPts, testColor},
	} {
		line, err := plotter.NewLine(s.pts)
		if err != nil {
			return "", fmt.Errorf("failed to build %s line: %w", s.label, err)
		}
		line.Color = s.c
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(s.label, line)
	}
	p.Legend.Top = false
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = 10

	path := filepath.Join(dir, CurveFileName+".png")
	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return "", fmt.Errorf("failed to save plot: %w", err)
	}
	return path, nil
}
