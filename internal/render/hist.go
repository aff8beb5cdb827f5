package render

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Bin is one histogram bar covering [Min, Max).
type Bin struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// Point is one sample of the density curve.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Histogram counts values into n equal-width bins spanning [min, max]. The
// last bin is closed on the right. A single distinct value v spans
// [v-0.5, v+0.5]; no values span [0, 1].
func Histogram(values []float64, n int) []Bin {
	if n < 1 {
		n = 1
	}
	lo, hi := 0.0, 1.0
	if len(values) > 0 {
		lo, hi = values[0], values[0]
		for _, v := range values[1:] {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if lo == hi {
			lo, hi = lo-0.5, hi+0.5
		}
	}
	width := (hi - lo) / float64(n)
	bins := make([]Bin, n)
	for i := range bins {
		bins[i].Min = lo + float64(i)*width
		bins[i].Max = lo + float64(i+1)*width
	}
	bins[n-1].Max = hi
	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= n {
			idx = n - 1
		}
		if idx < 0 {
			idx = 0
		}
		bins[idx].Count++
	}
	return bins
}

const densityGridSize = 200

// Density estimates a Gaussian KDE with Scott's bandwidth over the data
// range, scaled so the curve sits on a count axis with the given bin width.
// It returns nil when fewer than two values are present or they have no
// spread.
func Density(values []float64, binWidth float64) []Point {
	n := len(values)
	if n < 2 {
		return nil
	}
	sd := stat.StdDev(values, nil)
	if sd == 0 || math.IsNaN(sd) {
		return nil
	}
	bw := sd * math.Pow(float64(n), -1.0/5.0)
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	kernels := make([]distuv.Normal, n)
	for i, v := range values {
		kernels[i] = distuv.Normal{Mu: v, Sigma: bw}
	}
	step := (hi - lo) / float64(densityGridSize-1)
	out := make([]Point, densityGridSize)
	for g := range out {
		x := lo + float64(g)*step
		var sum float64
		for _, k := range kernels {
			sum += k.Prob(x)
		}
		// density = sum/n; scaled to counts by n*binWidth
		out[g] = Point{X: x, Y: sum * binWidth}
	}
	return out
}

// Ticks returns at most max evenly spaced tick values across [lo, hi],
// rounded to integers and deduplicated.
func Ticks(lo, hi float64, max int) []float64 {
	if max < 2 || hi <= lo {
		return []float64{math.Round(lo)}
	}
	step := (hi - lo) / float64(max-1)
	out := make([]float64, 0, max)
	for i := 0; i < max; i++ {
		v := math.Round(lo + float64(i)*step)
		if len(out) > 0 && out[len(out)-1] == v {
			continue
		}
		out = append(out, v)
	}
	return out
}
