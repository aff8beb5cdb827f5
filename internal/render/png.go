package render

import (
	"fmt"
	"image/color"
	"io"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// DrawOptions sizes the rendered image.
type DrawOptions struct {
	Width     vg.Length
	RowHeight vg.Length
}

// DefaultDrawOptions matches a 14in wide figure with 4in per grid row.
func DefaultDrawOptions() DrawOptions {
	return DrawOptions{Width: 14 * vg.Inch, RowHeight: 4 * vg.Inch}
}

var (
	barColor     = color.RGBA{R: 76, G: 114, B: 176, A: 160}
	densityColor = color.RGBA{R: 49, G: 83, B: 140, A: 255}
)

// WritePNG draws every panel onto one image and encodes it as PNG. Grid
// cells without a panel are left undrawn.
func (c *Chart) WritePNG(w io.Writer, o DrawOptions) error {
	if len(c.Panels) == 0 {
		return ErrNoData
	}
	img := vgimg.New(o.Width, o.RowHeight*vg.Length(c.Rows))
	dc := draw.New(img)

	plots := make([][]*plot.Plot, c.Rows)
	for r := range plots {
		plots[r] = make([]*plot.Plot, c.Cols)
	}
	for _, p := range c.Panels {
		pl, err := c.panelPlot(p)
		if err != nil {
			return fmt.Errorf("panel %q: %w", p.Title, err)
		}
		plots[p.Row][p.Col] = pl
	}

	tiles := draw.Tiles{
		Rows:      c.Rows,
		Cols:      c.Cols,
		PadTop:    vg.Points(8),
		PadBottom: vg.Points(8),
		PadLeft:   vg.Points(8),
		PadRight:  vg.Points(12),
		PadX:      vg.Points(24),
		PadY:      vg.Points(28),
	}
	canvases := plot.Align(plots, tiles, dc)
	for r := range plots {
		for col, pl := range plots[r] {
			if pl == nil {
				continue
			}
			pl.Draw(canvases[r][col])
		}
	}

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func (c *Chart) panelPlot(p Panel) (*plot.Plot, error) {
	pl := plot.New()
	pl.Title.Text = p.Title
	pl.X.Label.Text = c.Field
	pl.Y.Label.Text = "Count"

	bins := make([]plotter.HistogramBin, len(p.Bins))
	for i, b := range p.Bins {
		bins[i] = plotter.HistogramBin{Min: b.Min, Max: b.Max, Weight: float64(b.Count)}
	}
	lo, hi := p.Bins[0].Min, p.Bins[len(p.Bins)-1].Max
	pl.Add(&plotter.Histogram{
		Bins:      bins,
		Width:     (hi - lo) / float64(len(bins)),
		FillColor: barColor,
		LineStyle: plotter.DefaultLineStyle,
	})

	if len(p.Density) > 0 {
		xys := make(plotter.XYs, len(p.Density))
		for i, pt := range p.Density {
			xys[i].X, xys[i].Y = pt.X, pt.Y
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		line.Color = densityColor
		line.Width = vg.Points(2)
		pl.Add(line)
	}

	// per-bin count labels above non-empty bars
	var pts plotter.XYs
	var text []string
	for _, b := range p.Bins {
		if b.Count == 0 {
			continue
		}
		pts = append(pts, plotter.XY{X: (b.Min + b.Max) / 2, Y: float64(b.Count)})
		text = append(text, strconv.Itoa(b.Count))
	}
	if len(pts) > 0 {
		labels, err := plotter.NewLabels(plotter.XYLabels{XYs: pts, Labels: text})
		if err != nil {
			return nil, err
		}
		for i := range labels.TextStyle {
			labels.TextStyle[i].XAlign = draw.XCenter
		}
		labels.Offset = vg.Point{Y: vg.Points(2)}
		pl.Add(labels)
	}

	ticks := make([]plot.Tick, len(p.Ticks))
	for i, v := range p.Ticks {
		ticks[i] = plot.Tick{Value: v, Label: strconv.FormatFloat(v, 'f', 0, 64)}
	}
	pl.X.Tick.Marker = plot.ConstantTicks(ticks)
	pl.X.Min, pl.X.Max = lo, hi
	pl.Y.Min = 0
	return pl, nil
}
