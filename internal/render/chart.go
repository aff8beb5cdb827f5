package render

import (
	"errors"

	"github.com/KaramelBytes/histx/internal/dataset"
)

// ErrNoData indicates there are no rows to render.
var ErrNoData = errors.New("no data to render")

const (
	// GridCols is the number of panel columns used for grouped charts.
	GridCols = 2
	// MaxTicks bounds the number of value-axis tick labels per panel.
	MaxTicks = 10
)

// Panel is one histogram with its density overlay.
type Panel struct {
	Title   string    `json:"title"`
	Row     int       `json:"row"`
	Col     int       `json:"col"`
	N       int       `json:"n"`
	Bins    []Bin     `json:"bins"`
	Density []Point   `json:"density,omitempty"`
	Ticks   []float64 `json:"ticks"`
}

// Chart is the render model for one pipeline run: panels laid out on a
// Rows x Cols grid, filled row-major. Cells past the last panel are hidden.
type Chart struct {
	Field   string  `json:"field"`
	GroupBy string  `json:"group_by,omitempty"`
	Bins    int     `json:"bins"`
	Rows    int     `json:"rows"`
	Cols    int     `json:"cols"`
	Panels  []Panel `json:"panels"`
}

// Hidden returns the number of grid cells left undrawn.
func (c *Chart) Hidden() int { return c.Rows*c.Cols - len(c.Panels) }

// Build computes the chart for a numeric field, optionally split into one
// panel per distinct value of groupBy (ascending). An empty dataset yields
// ErrNoData.
func Build(ds *dataset.Dataset, field, groupBy string, bins int) (*Chart, error) {
	if ds.IsEmpty() {
		return nil, ErrNoData
	}
	c := &Chart{Field: field, GroupBy: groupBy, Bins: bins}
	if groupBy == "" {
		vals, err := ds.Values(field)
		if err != nil {
			return nil, err
		}
		c.Rows, c.Cols = 1, 1
		c.Panels = []Panel{newPanel(field, vals, bins)}
		return c, nil
	}

	keys, parts, err := ds.Group(groupBy)
	if err != nil {
		return nil, err
	}
	c.Cols = GridCols
	c.Rows = (len(keys) + GridCols - 1) / GridCols
	for i, k := range keys {
		vals, err := parts[i].Values(field)
		if err != nil {
			return nil, err
		}
		p := newPanel(dataset.DisplayValue(k), vals, bins)
		p.Row, p.Col = i/GridCols, i%GridCols
		c.Panels = append(c.Panels, p)
	}
	return c, nil
}

func newPanel(title string, vals []float64, bins int) Panel {
	hb := Histogram(vals, bins)
	lo, hi := hb[0].Min, hb[len(hb)-1].Max
	return Panel{
		Title:   title,
		N:       len(vals),
		Bins:    hb,
		Density: Density(vals, (hi-lo)/float64(len(hb))),
		Ticks:   Ticks(lo, hi, MaxTicks),
	}
}
