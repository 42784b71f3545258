package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/reflectivity.report/internal/train"
)

// TrainingPage renders an HTML page with the complexity curve and, when ev
// is not nil, a per-digit F1 bar chart.
func TrainingPage(w io.Writer, points []train.SweepPoint, ev *train.Evaluation) error {
	if len(points) == 0 {
		return fmt.Errorf("no sweep points to chart")
	}

	ks := make([]string, 0, len(points))
	trainData := make([]opts.LineData, 0, len(points))
	testData := make([]opts.LineData, 0, len(points))
	for _, p := range points {
		ks = append(ks, strconv.Itoa(p.K))
		trainData = append(trainData, opts.LineData{Value: p.TrainAccuracy})
		testData = append(testData, opts.LineData{Value: p.TestAccuracy})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Digit classifier", Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "Model complexity", Subtitle: fmt.Sprintf("k=%d..%d", points[0].K, points[len(points)-1].K)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "neighbours", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "accuracy", Min: 0, Max: 1}),
	)
	line.SetXAxis(ks).
		AddSeries("training accuracy", trainData).
		AddSeries("testing accuracy", testData)

	page := components.NewPage()
	page.PageTitle = "Digit classifier"
	page.AddCharts(line)

	if ev != nil {
		digits := make([]string, 0, len(ev.Classes))
		f1 := make([]opts.BarData, 0, len(ev.Classes))
		for _, c := range ev.Classes {
			digits = append(digits, strconv.Itoa(c.Label))
			f1 = append(f1, opts.BarData{Value: c.F1})
		}
		bar := charts.NewBar()
		bar.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "400px"}),
			charts.WithTitleOpts(opts.Title{Title: "F1 per digit", Subtitle: fmt.Sprintf("accuracy=%.4f", ev.Accuracy)}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		)
		bar.SetXAxis(digits).AddSeries("f1", f1)
		page.AddCharts(bar)
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
