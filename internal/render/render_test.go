package render

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/KaramelBytes/histx/internal/dataset"
)

func groups() *dataset.Dataset {
	return dataset.New("g.csv", []string{"Group", "Val"}, [][]string{
		{"A", "1"}, {"A", "3"}, {"B", "5"},
	}, dataset.DefaultOptions())
}

func countOf(bins []Bin) int {
	n := 0
	for _, b := range bins {
		n += b.Count
	}
	return n
}

func TestBuildGroupedScenario(t *testing.T) {
	c, err := Build(groups(), "Val", "Group", 5)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(c.Panels) != 2 || c.Rows != 1 || c.Cols != 2 || c.Hidden() != 0 {
		t.Fatalf("layout = %dx%d with %d panels", c.Rows, c.Cols, len(c.Panels))
	}
	a, b := c.Panels[0], c.Panels[1]
	if a.Title != "A" || a.N != 2 || countOf(a.Bins) != 2 {
		t.Fatalf("panel A = %+v", a)
	}
	if b.Title != "B" || b.N != 1 || countOf(b.Bins) != 1 {
		t.Fatalf("panel B = %+v", b)
	}
	for _, p := range c.Panels {
		if len(p.Bins) != 5 {
			t.Fatalf("panel %s has %d bins, want 5", p.Title, len(p.Bins))
		}
	}
	if a.Bins[0].Min != 1 || a.Bins[4].Max != 3 {
		t.Fatalf("panel A range = [%v, %v]", a.Bins[0].Min, a.Bins[4].Max)
	}
	if b.Col != 1 || b.Row != 0 {
		t.Fatalf("panel B at (%d,%d)", b.Row, b.Col)
	}
}

func TestBuildGridHidesLeftoverCells(t *testing.T) {
	ds := dataset.New("g.csv", []string{"Group", "Val"}, [][]string{
		{"c", "1"}, {"a", "2"}, {"b", "3"}, {"a", "4"}, {"c", "9"},
	}, dataset.DefaultOptions())
	c, err := Build(ds, "Val", "Group", 10)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if c.Rows != 2 || len(c.Panels) != 3 || c.Hidden() != 1 {
		t.Fatalf("rows=%d panels=%d hidden=%d", c.Rows, len(c.Panels), c.Hidden())
	}
	want := []string{"a", "b", "c"}
	for i, p := range c.Panels {
		if p.Title != want[i] {
			t.Fatalf("panel %d title = %q, want %q", i, p.Title, want[i])
		}
	}
	if last := c.Panels[2]; last.Row != 1 || last.Col != 0 {
		t.Fatalf("third panel at (%d,%d)", last.Row, last.Col)
	}
}

func TestBuildUngroupedSinglePanel(t *testing.T) {
	c, err := Build(groups(), "Val", "", 20)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(c.Panels) != 1 || c.Rows != 1 || c.Cols != 1 {
		t.Fatalf("expected one aggregate panel, got %d", len(c.Panels))
	}
	p := c.Panels[0]
	if p.Title != "Val" || p.N != 3 || len(p.Bins) != 20 || countOf(p.Bins) != 3 {
		t.Fatalf("panel = %+v", p)
	}
	if len(p.Density) != densityGridSize {
		t.Fatalf("density points = %d", len(p.Density))
	}
}

func TestBuildEmptyDataset(t *testing.T) {
	if _, err := Build(dataset.Empty(""), "Val", "", 20); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestBuildMissingValuesExcludedPerGroup(t *testing.T) {
	ds := dataset.New("g.csv", []string{"Group", "Val"}, [][]string{
		{"A", "1"}, {"A", ""}, {"B", "NA"}, {"B", "4"}, {"B", "6"},
	}, dataset.DefaultOptions())
	c, err := Build(ds, "Val", "Group", 5)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if c.Panels[0].N != 1 || c.Panels[1].N != 2 {
		t.Fatalf("counts = %d, %d", c.Panels[0].N, c.Panels[1].N)
	}
}

func TestHistogramDegenerateRanges(t *testing.T) {
	single := Histogram([]float64{5}, 5)
	if len(single) != 5 || single[0].Min != 4.5 || single[4].Max != 5.5 || countOf(single) != 1 {
		t.Fatalf("single value bins = %+v", single)
	}
	none := Histogram(nil, 7)
	if len(none) != 7 || none[0].Min != 0 || none[6].Max != 1 || countOf(none) != 0 {
		t.Fatalf("empty bins = %+v", none)
	}
	last := Histogram([]float64{0, 10}, 4)
	if last[3].Count != 1 || last[0].Count != 1 {
		t.Fatalf("right edge must fall into the last bin: %+v", last)
	}
}

func TestDensityScaledToCounts(t *testing.T) {
	vals := []float64{1, 2, 2, 3, 3, 3, 4, 4, 5}
	if Density([]float64{3}, 1) != nil {
		t.Fatalf("single value must not yield a density curve")
	}
	if Density([]float64{2, 2, 2}, 1) != nil {
		t.Fatalf("zero spread must not yield a density curve")
	}
	pts := Density(vals, 0.5)
	if len(pts) != densityGridSize || pts[0].X != 1 || math.Abs(pts[len(pts)-1].X-5) > 1e-9 {
		t.Fatalf("grid = %d points from %v", len(pts), pts[0].X)
	}
	peak := 0.0
	for _, p := range pts {
		if p.Y < 0 {
			t.Fatalf("negative density at %v", p.X)
		}
		peak = math.Max(peak, p.Y)
	}
	// most mass sits near 3 with n*binWidth = 4.5 total area
	if peak <= 0 || peak > 4.5 {
		t.Fatalf("peak = %v", peak)
	}
}

func TestTicksAreBoundedIntegers(t *testing.T) {
	ticks := Ticks(0.3, 97.6, MaxTicks)
	if len(ticks) > MaxTicks || len(ticks) < 2 {
		t.Fatalf("ticks = %v", ticks)
	}
	for i, v := range ticks {
		if v != math.Trunc(v) {
			t.Fatalf("tick %v not an integer", v)
		}
		if i > 0 && ticks[i-1] >= v {
			t.Fatalf("ticks not strictly increasing: %v", ticks)
		}
	}
	narrow := Ticks(1, 3, MaxTicks)
	if len(narrow) != 3 {
		t.Fatalf("narrow range ticks = %v, want [1 2 3]", narrow)
	}
}

func TestWritePNG(t *testing.T) {
	ds := dataset.New("g.csv", []string{"Group", "Val"}, [][]string{
		{"A", "1"}, {"A", "3"}, {"B", "5"}, {"C", "2"}, {"C", "8"},
	}, dataset.DefaultOptions())
	c, err := Build(ds, "Val", "Group", 5)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	var buf bytes.Buffer
	if err := c.WritePNG(&buf, DefaultDrawOptions()); err != nil {
		t.Fatalf("write png: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")) {
		t.Fatalf("output is not a PNG")
	}
	if err := (&Chart{}).WritePNG(&buf, DefaultDrawOptions()); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}
