package export

import (
	"context"
	"image/color"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"macroagg/internal/dataset"
	"macroagg/internal/etlerr"
	"macroagg/internal/table"
)

var (
	colorReference = color.RGBA{R: 0, G: 102, B: 0, A: 255}
	colorEU        = color.RGBA{R: 0, G: 0, B: 204, A: 255}
	colorUS        = color.RGBA{R: 204, G: 0, B: 0, A: 255}
)

// series is one plotted line: a column of the wide table times a factor.
type series struct {
	column string
	factor float64
	label  string
}

// Chart describes one comparison chart.
type Chart struct {
	File      string
	Caption   string
	EU        series
	US        series
	Reference series
}

// Charts lists the comparison charts ChartRenderer draws by default.
func Charts() []Chart {
	return []Chart{
		{
			File:      "inflation.png",
			Caption:   "Inflation comparison EU vs USA",
			EU:        series{dataset.ColEUInflation, 1, "EU Inflation in %"},
			US:        series{dataset.ColUSInflation, 1, "US Inflation in %"},
			Reference: series{dataset.ColSP500, 1.0 / 1000, "S&P 500 in thousands"},
		},
		{
			File:      "gdp.png",
			Caption:   "GDP comparison EU vs USA",
			EU:        series{dataset.ColEUGDP, 1.0 / 1000, "EU GDP in billions USD"},
			US:        series{dataset.ColUSGDP, 1, "US GDP in billions USD"},
			Reference: series{dataset.ColSP500, 1, "S&P 500 in USD"},
		},
		{
			File:      "debt.png",
			Caption:   "Debt comparison EU vs USA",
			EU:        series{dataset.ColEUGovDebt, 1, "EU Government debt in millions USD"},
			US:        series{dataset.ColUSTotalDebt, 1, "US Debt in millions USD"},
			Reference: series{dataset.ColSP500, 10000, "S&P 500 multiplied by 10'000"},
		},
	}
}

// ChartRenderer draws PNG line charts on a shared quarter axis.
type ChartRenderer struct {
	Dir string
	// Charts overrides the default chart set when non-empty.
	Charts []Chart
}

func (r ChartRenderer) Name() string { return "chart" }

func (r ChartRenderer) Write(ctx context.Context, t *table.Table) error {
	if err := ensureDir(r.Dir); err != nil {
		return err
	}
	charts := r.Charts
	if len(charts) == 0 {
		charts = Charts()
	}
	quarters, ok := t.Column(dataset.QuarterColumn)
	if !ok {
		return etlerr.NewFormatError("chart: table has no %q column", dataset.QuarterColumn)
	}
	labels := make([]string, len(quarters))
	for i, q := range quarters {
		labels[i] = q.String()
	}

	for _, c := range charts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.draw(t, labels, c); err != nil {
			return err
		}
	}
	return nil
}

func (r ChartRenderer) draw(t *table.Table, labels []string, c Chart) error {
	p := plot.New()
	p.Title.Text = c.Caption
	p.X.Label.Text = "Quarter"
	p.X.Tick.Label.Rotation = 1.2
	p.X.Tick.Label.XAlign = -1
	p.Legend.Top = true
	p.Legend.Left = true

	for _, s := range []struct {
		series
		color color.Color
	}{
		{c.Reference, colorReference},
		{c.EU, colorEU},
		{c.US, colorUS},
	} {
		pts, err := points(t, s.series)
		if err != nil {
			return err
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return etlerr.NewFormatError("chart %s: %v", c.File, err)
		}
		line.LineStyle.Color = s.color
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(s.label, line)
	}
	p.NominalX(labels...)

	path := filepath.Join(r.Dir, c.File)
	if err := p.Save(16*vg.Inch, 9*vg.Inch, path); err != nil {
		return etlerr.NewIOError(path, err)
	}
	return nil
}

func points(t *table.Table, s series) (plotter.XYs, error) {
	col, ok := t.Column(s.column)
	if !ok {
		return nil, etlerr.NewFormatError("chart: table has no %q column", s.column)
	}
	pts := make(plotter.XYs, 0, len(col))
	for i, v := range col {
		f, ok := v.Float()
		if !ok {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(i), Y: f * s.factor})
	}
	return pts, nil
}
