package plot

import (
	"fmt"
	"io"
	"math"
	"os"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"antcolony/internal/ant"
	"antcolony/internal/stats"
)

var actionColors = [ant.NumActions]drawing.Color{
	chart.ColorBlue,
	chart.ColorGreen,
	chart.ColorRed,
	{R: 255, G: 165, B: 0, A: 255},
	{R: 128, G: 0, B: 128, A: 255},
}

// FoodPerBatch renders food collected per batch against the batch start tick as a PNG.
func FoodPerBatch(w io.Writer, batches []stats.Batch, batchSize int) error {
	if len(batches) == 0 {
		return fmt.Errorf("no batches to plot")
	}
	xs := make([]float64, len(batches))
	ys := make([]float64, len(batches))
	for i, b := range batches {
		xs[i] = float64(b.Start)
		ys[i] = float64(b.Food)
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("Food Collected per %d Steps", batchSize),
		Width:  1024,
		Height: 512,
		XAxis: chart.XAxis{
			Name:  "Time Step",
			Range: &chart.ContinuousRange{Min: 0, Max: math.Max(xs[len(xs)-1], 1)},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		YAxis: chart.YAxis{
			Name:  "Counts",
			Range: &chart.ContinuousRange{Min: 0, Max: math.Max(maxOf(ys), 1)},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    fmt.Sprintf("Food/%d steps", batchSize),
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor:     chart.ColorBlue,
					StrokeWidth:     2.0,
					StrokeDashArray: []float64{5.0, 3.0},
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(chart.PNG, w)
}

// ActionDistribution renders the per-batch action counts stacked cumulatively, one line per action.
func ActionDistribution(w io.Writer, batches []stats.Batch, batchSize int) error {
	if len(batches) == 0 {
		return fmt.Errorf("no batches to plot")
	}
	xs := make([]float64, len(batches))
	stacked := make([][]float64, ant.NumActions)
	for a := range stacked {
		stacked[a] = make([]float64, len(batches))
	}
	top := 0.0
	for i, b := range batches {
		xs[i] = float64(i)
		running := 0
		for a, count := range b.Actions {
			running += count
			stacked[a][i] = float64(running)
		}
		top = math.Max(top, float64(running))
	}

	names := ant.ActionNames()
	series := make([]chart.Series, 0, ant.NumActions)
	for a := ant.NumActions - 1; a >= 0; a-- {
		series = append(series, chart.ContinuousSeries{
			Name:    names[a],
			XValues: xs,
			YValues: stacked[a],
			Style: chart.Style{
				StrokeColor:     actionColors[a],
				StrokeWidth:     2.0,
				StrokeDashArray: []float64{5.0, 3.0},
			},
		})
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("Action Distribution per %d Steps", batchSize),
		Width:  1024,
		Height: 512,
		XAxis: chart.XAxis{
			Name:  fmt.Sprintf("Time Step (x%d)", batchSize),
			Range: &chart.ContinuousRange{Min: 0, Max: math.Max(xs[len(xs)-1], 1)},
		},
		YAxis: chart.YAxis{
			Name:  "Counts",
			Range: &chart.ContinuousRange{Min: 0, Max: math.Max(top, 1)},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(chart.PNG, w)
}

// WritePNG creates path and hands it to render.
func WritePNG(path string, render func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func maxOf(values []float64) float64 {
	out := math.Inf(-1)
	for _, v := range values {
		out = math.Max(out, v)
	}
	return out
}
