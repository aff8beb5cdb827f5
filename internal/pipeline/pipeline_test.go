package pipeline

import (
	"errors"
	"testing"

	"github.com/KaramelBytes/histx/internal/dataset"
)

func groups() *dataset.Dataset {
	return dataset.New("g.csv", []string{"Group", "Kind", "Val"}, [][]string{
		{"A", "x", "1"}, {"A", "y", "3"}, {"B", "x", "5"},
	}, dataset.DefaultOptions())
}

func TestRunGroupedScenario(t *testing.T) {
	r := NewRunner(20, nil)
	res, err := r.Run(groups(), Request{Numeric: "Val", GroupBy: "Group", Bins: 5})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Chart == nil || res.Notice != "" {
		t.Fatalf("expected chart, got notice %q", res.Notice)
	}
	if len(res.Chart.Panels) != 2 || res.Chart.Panels[0].Title != "A" || res.Chart.Panels[1].Title != "B" {
		t.Fatalf("panels = %+v", res.Chart.Panels)
	}
	if res.Chart.Panels[0].N != 2 || res.Chart.Panels[1].N != 1 {
		t.Fatalf("panel sizes = %d, %d", res.Chart.Panels[0].N, res.Chart.Panels[1].N)
	}
	if res.Rows != 3 || res.FilteredRows != 3 {
		t.Fatalf("rows = %d/%d", res.FilteredRows, res.Rows)
	}
}

func TestRunNotices(t *testing.T) {
	r := NewRunner(20, nil)
	res, err := r.Run(dataset.Empty(""), Request{})
	if err != nil || res.Notice != NoticeNoData || res.Chart != nil {
		t.Fatalf("empty dataset = %+v, %v", res, err)
	}
	res, err = r.Run(groups(), Request{Numeric: "Val", Filters: dataset.FilterSpec{"Group": {}}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Notice != NoticeNoFiltered || res.Chart != nil || res.FilteredRows != 0 {
		t.Fatalf("empty filter result = %+v", res)
	}
}

func TestRunFiltersThenRenders(t *testing.T) {
	r := NewRunner(20, nil)
	res, err := r.Run(groups(), Request{Numeric: "Val", Filters: dataset.FilterSpec{"Kind": {"x"}}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.FilteredRows != 2 || len(res.Chart.Panels) != 1 || res.Chart.Panels[0].N != 2 {
		t.Fatalf("result = %+v", res)
	}
	if len(res.Chart.Panels[0].Bins) != 20 {
		t.Fatalf("default bins not applied: %d", len(res.Chart.Panels[0].Bins))
	}
}

func TestRunRejectsInvalidRequests(t *testing.T) {
	r := NewRunner(20, nil)
	cases := []struct {
		name string
		req  Request
		want error
	}{
		{"bins low", Request{Numeric: "Val", Bins: 4}, ErrInvalidBins},
		{"bins high", Request{Numeric: "Val", Bins: 101}, ErrInvalidBins},
		{"not numeric", Request{Numeric: "Group"}, dataset.ErrUnknownField},
		{"missing numeric", Request{Numeric: "Nope"}, dataset.ErrUnknownField},
		{"group is filter", Request{Numeric: "Val", GroupBy: "Kind", Filters: dataset.FilterSpec{"Kind": {"x"}}}, ErrGroupIsFilter},
		{"unknown value", Request{Numeric: "Val", Filters: dataset.FilterSpec{"Kind": {"z"}}}, dataset.ErrUnknownValue},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := r.Run(groups(), tc.req); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestRunBinBoundsInclusive(t *testing.T) {
	r := NewRunner(20, nil)
	for _, n := range []int{MinBins, MaxBins} {
		res, err := r.Run(groups(), Request{Numeric: "Val", Bins: n})
		if err != nil {
			t.Fatalf("bins %d: %v", n, err)
		}
		if got := len(res.Chart.Panels[0].Bins); got != n {
			t.Fatalf("bins = %d, want %d", got, n)
		}
	}
}

func TestDefaults(t *testing.T) {
	ds := groups()
	req := Defaults(ds)
	if req.Numeric != "Val" || req.GroupBy != "" || req.Bins != DefaultBins {
		t.Fatalf("defaults = %+v", req)
	}
	if len(req.Filters) != 2 || len(req.Filters["Group"]) != 2 || len(req.Filters["Kind"]) != 2 {
		t.Fatalf("filters = %v", req.Filters)
	}
	res, err := NewRunner(20, nil).Run(ds, req)
	if err != nil {
		t.Fatalf("run defaults: %v", err)
	}
	if res.FilteredRows != ds.Rows() {
		t.Fatalf("full selection dropped rows: %d/%d", res.FilteredRows, ds.Rows())
	}
	if empty := Defaults(dataset.Empty("")); empty.Numeric != "" || len(empty.Filters) != 0 {
		t.Fatalf("empty defaults = %+v", empty)
	}
}

func TestNewRunnerClampsDefault(t *testing.T) {
	if r := NewRunner(500, nil); r.DefaultBins != DefaultBins {
		t.Fatalf("default bins = %d", r.DefaultBins)
	}
}
