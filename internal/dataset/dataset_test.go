package dataset

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
)

func screenTime() *Dataset {
	header := []string{"Age_Group", "Gender", "Device_Type", "Hours", "Active"}
	rows := [][]string{
		{"13-15", "F", "Phone", "20.5", "true"},
		{"13-15", "M", "Laptop", "14", "false"},
		{"16-18", "F", "Phone", "", "true"},
		{"16-18", "M", "Tablet", "31", "TRUE"},
		{"16-18", "", "Phone", "NA", "false"},
		{"13-15", "F", "Tablet", "9.25", "true"},
	}
	return New("screen.csv", header, rows, DefaultOptions())
}

func TestClassifyColumns(t *testing.T) {
	ds := screenTime()
	if got := ds.NumericFields(); !reflect.DeepEqual(got, []string{"Hours"}) {
		t.Fatalf("numeric fields = %v", got)
	}
	if got := ds.CategoricalFields(); !reflect.DeepEqual(got, []string{"Age_Group", "Gender", "Device_Type"}) {
		t.Fatalf("categorical fields = %v", got)
	}
	active, err := ds.Column("Active")
	if err != nil {
		t.Fatalf("column: %v", err)
	}
	if active.Kind != KindBoolean {
		t.Fatalf("Active kind = %s, want boolean", active.Kind)
	}
}

func TestClassifyEdgeCases(t *testing.T) {
	cases := []struct {
		name  string
		cells []string
		want  Kind
	}{
		{"all missing", []string{"", "NA", "null"}, KindNumeric},
		{"scientific", []string{"1e3", "-2.5E-2", "7"}, KindNumeric},
		{"mixed text", []string{"1", "two", "3"}, KindCategorical},
		{"hex is text", []string{"0x10", "5"}, KindCategorical},
		{"infinity is text", []string{"inf", "5"}, KindCategorical},
		{"bools", []string{"True", "false", ""}, KindBoolean},
		{"dates are text", []string{"2024-01-02", "2024-01-03"}, KindCategorical},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.cells, DefaultOptions()); got != tc.want {
				t.Fatalf("Classify(%v) = %s, want %s", tc.cells, got, tc.want)
			}
		})
	}
}

func TestParseNumericLocale(t *testing.T) {
	opt := Options{DecimalSeparator: ',', ThousandsSeparator: '.'}
	got, ok := ParseNumeric("1.234,5", opt)
	if !ok || math.Abs(got-1234.5) > 1e-9 {
		t.Fatalf("ParseNumeric locale = %v, %v", got, ok)
	}
	if _, ok := ParseNumeric("1,234.5", DefaultOptions()); ok {
		t.Fatalf("expected thousands separator to be text without a locale")
	}
}

func TestMissingValuesExcluded(t *testing.T) {
	ds := screenTime()
	vals, err := ds.Values("Hours")
	if err != nil {
		t.Fatalf("values: %v", err)
	}
	want := []float64{20.5, 14, 31, 9.25}
	if !reflect.DeepEqual(vals, want) {
		t.Fatalf("values = %v, want %v", vals, want)
	}
	if _, err := ds.Values("Gender"); !errors.Is(err, ErrNotNumeric) {
		t.Fatalf("expected ErrNotNumeric, got %v", err)
	}
}

func TestDistinctIncludesMissingLabel(t *testing.T) {
	ds := screenTime()
	got, err := ds.Distinct("Gender")
	if err != nil {
		t.Fatalf("distinct: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"", "F", "M"}) {
		t.Fatalf("distinct = %q", got)
	}
	if _, err := ds.Distinct("Hours"); !errors.Is(err, ErrNotCategorical) {
		t.Fatalf("expected ErrNotCategorical, got %v", err)
	}
	if _, err := ds.Distinct("Nope"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestNewPadsRaggedRowsAndRenamesHeaders(t *testing.T) {
	ds := New("x.csv", []string{"a", "a", " ", "b"}, [][]string{{"1", "2"}, {"3", "4", "x", "5", "extra"}}, DefaultOptions())
	var names []string
	for _, c := range ds.Columns {
		names = append(names, c.Name)
	}
	if !reflect.DeepEqual(names, []string{"a", "a.1", "Unnamed: 2", "b"}) {
		t.Fatalf("header = %q", names)
	}
	b, _ := ds.Column("b")
	if b.Kind != KindNumeric || !math.IsNaN(b.Float(0)) || b.Float(1) != 5 {
		t.Fatalf("column b = %#v", b)
	}
}

func TestHeadAndSummaryMarkdown(t *testing.T) {
	ds := screenTime()
	head := ds.Head(2)
	if len(head) != 2 || head[0][3] != "20.5" || head[1][3] != "14" {
		t.Fatalf("head = %#v", head)
	}
	md := Summarize(ds, 3).Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: screen.csv",
		"Rows: 6",
		"- Hours: numeric (non-null 4, missing 33.3%)",
		"- Gender: categorical (non-null 5, missing 16.7%) — top: F(3), M(2)",
		"- Active: boolean",
		"- numeric: Hours",
		"- categorical: Age_Group, Gender, Device_Type",
		"| Age_Group | Gender | Device_Type | Hours | Active |",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestEmptyDataset(t *testing.T) {
	ds := Empty("none")
	if !ds.IsEmpty() || ds.Rows() != 0 {
		t.Fatalf("expected empty dataset")
	}
	if len(ds.NumericFields()) != 0 || len(ds.CategoricalFields()) != 0 {
		t.Fatalf("expected no fields")
	}
	var nilDS *Dataset
	if !nilDS.IsEmpty() {
		t.Fatalf("nil dataset should be empty")
	}
}
