// Package pipeline threads one explicit request through filtering and
// grouped rendering. A Runner holds no per-request state.
package pipeline

import (
	"errors"
	"fmt"
	"slices"

	"github.com/KaramelBytes/histx/internal/dataset"
	"github.com/KaramelBytes/histx/internal/logger"
	"github.com/KaramelBytes/histx/internal/render"
)

const (
	MinBins     = 5
	MaxBins     = 100
	DefaultBins = 20
)

const (
	NoticeNoData     = "No data loaded yet."
	NoticeNoFiltered = "No data available for the selected filters."
)

var (
	// ErrInvalidBins indicates a bin count outside [MinBins, MaxBins].
	ErrInvalidBins = errors.New("invalid bin count")
	// ErrGroupIsFilter indicates the grouping field is also a filter field.
	ErrGroupIsFilter = errors.New("grouping field is also a filter")
)

// Request is the full control state for one run.
type Request struct {
	Numeric string             `json:"numeric" validate:"required"`
	Filters dataset.FilterSpec `json:"filters"`
	GroupBy string             `json:"group_by"`
	Bins    int                `json:"bins" validate:"omitempty,min=5,max=100"`
}

// Result carries either a chart or a notice explaining why there is none.
type Result struct {
	Rows         int           `json:"rows"`
	FilteredRows int           `json:"filtered_rows"`
	Chart        *render.Chart `json:"chart,omitempty"`
	Notice       string        `json:"notice,omitempty"`
}

// Runner executes requests against a dataset.
type Runner struct {
	DefaultBins int
	Log         logger.Logger
}

// NewRunner returns a runner using defaultBins when a request leaves Bins
// unset. Values outside the valid range fall back to DefaultBins.
func NewRunner(defaultBins int, log logger.Logger) *Runner {
	if defaultBins < MinBins || defaultBins > MaxBins {
		defaultBins = DefaultBins
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{DefaultBins: defaultBins, Log: log}
}

// Run filters ds and builds the chart. An empty dataset or an empty filter
// result yields a notice, not an error.
func (r *Runner) Run(ds *dataset.Dataset, req Request) (*Result, error) {
	if ds.IsEmpty() {
		return &Result{Notice: NoticeNoData}, nil
	}
	bins := req.Bins
	if bins == 0 {
		bins = r.DefaultBins
	}
	if bins < MinBins || bins > MaxBins {
		return nil, fmt.Errorf("%w: %d (must be %d-%d)", ErrInvalidBins, bins, MinBins, MaxBins)
	}
	if !slices.Contains(ds.NumericFields(), req.Numeric) {
		return nil, fmt.Errorf("%w: %q is not a numeric field", dataset.ErrUnknownField, req.Numeric)
	}
	if req.GroupBy != "" {
		if _, ok := req.Filters[req.GroupBy]; ok {
			return nil, fmt.Errorf("%w: %q", ErrGroupIsFilter, req.GroupBy)
		}
	}

	filtered, err := ds.Filter(req.Filters)
	if err != nil {
		return nil, err
	}
	res := &Result{Rows: ds.Rows(), FilteredRows: filtered.Rows()}
	chart, err := render.Build(filtered, req.Numeric, req.GroupBy, bins)
	if errors.Is(err, render.ErrNoData) {
		res.Notice = NoticeNoFiltered
		return res, nil
	}
	if err != nil {
		return nil, err
	}
	res.Chart = chart
	r.Log.Debug("pipeline", "chart built", map[string]interface{}{
		"numeric":  req.Numeric,
		"group_by": req.GroupBy,
		"bins":     bins,
		"rows":     res.FilteredRows,
		"panels":   len(chart.Panels),
	})
	return res, nil
}

// Defaults returns the initial control state for ds: the first numeric
// field, every categorical field filtered with all its values selected, no
// grouping and DefaultBins.
func Defaults(ds *dataset.Dataset) Request {
	req := Request{Filters: dataset.FilterSpec{}, Bins: DefaultBins}
	if ds.IsEmpty() {
		return req
	}
	if num := ds.NumericFields(); len(num) > 0 {
		req.Numeric = num[0]
	}
	for _, f := range ds.CategoricalFields() {
		vals, _ := ds.Distinct(f)
		req.Filters[f] = vals
	}
	return req
}
