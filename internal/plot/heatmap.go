package plot

import (
	"fmt"
	"strconv"

	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"antcolony/internal/geom"
	"antcolony/internal/pheromone"
	"antcolony/internal/stats"
)

// fieldGrid exposes a row-major field as a gonum grid with row 0 drawn at the top.
type fieldGrid struct {
	bounds geom.Bounds
	values []float64
}

func (g fieldGrid) Dims() (c, r int) {
	return g.bounds.Cols, g.bounds.Rows
}

func (g fieldGrid) Z(c, r int) float64 {
	return g.values[g.bounds.Index(geom.Vec{X: c, Y: g.bounds.Rows - 1 - r})]
}

func (g fieldGrid) X(c int) float64 {
	return float64(c)
}

func (g fieldGrid) Y(r int) float64 {
	return float64(r)
}

// FieldHeatmap saves a heat map of one trail's values, coloured on [0, maxValue]. The image
// format follows the extension of path.
func FieldHeatmap(path string, trail pheromone.Trail, bounds geom.Bounds, values []float64, maxValue float64) error {
	if len(values) != bounds.Area() {
		return fmt.Errorf("%s field has %d values for a %dx%d grid", trail, len(values), bounds.Cols, bounds.Rows)
	}
	if !(maxValue > 0) {
		return fmt.Errorf("%s field cap must be > 0, got %v", trail, maxValue)
	}

	p := gplot.New()
	p.Title.Text = fmt.Sprintf("Pheromone %s", trail)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "rows from bottom"

	hm := plotter.NewHeatMap(fieldGrid{bounds: bounds, values: values}, palette.Heat(12, 1))
	hm.Min = 0
	hm.Max = maxValue
	p.Add(hm)

	side := 6 * vg.Inch
	return p.Save(side, side, path)
}

// FoodPerAnt saves a bar chart of the cumulative food of every ant.
func FoodPerAnt(path string, rows []stats.CumulativeRow) error {
	if len(rows) == 0 {
		return fmt.Errorf("no ants to plot")
	}
	values := make(plotter.Values, len(rows))
	names := make([]string, len(rows))
	for i, row := range rows {
		values[i] = float64(row.TotalFood)
		names[i] = strconv.Itoa(i)
	}

	p := gplot.New()
	p.Title.Text = "Total Food Collected per Ant"
	p.X.Label.Text = "Ant"
	p.Y.Label.Text = "Food"

	bars, err := plotter.NewBarChart(values, vg.Points(12))
	if err != nil {
		return err
	}
	p.Add(bars)
	p.NominalX(names...)
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
