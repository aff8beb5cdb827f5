package parser_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/KaramelBytes/histx/internal/dataset"
	"github.com/KaramelBytes/histx/internal/parser"
	"github.com/xuri/excelize/v2"
)

func TestParseFileCSV(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "screen_time.csv")
	content := "Age_Group,Gender,Weekly_Hours\n" +
		"13-15,F,20.5\n" +
		"16-18, M,31\n" +
		"16-18,F\n"
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ds, err := parser.ParseFile(p, dataset.DefaultOptions())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ds.Name != "screen_time.csv" || ds.Rows() != 3 {
		t.Fatalf("dataset = %s rows=%d", ds.Name, ds.Rows())
	}
	if got := ds.NumericFields(); !reflect.DeepEqual(got, []string{"Weekly_Hours"}) {
		t.Fatalf("numeric = %v", got)
	}
	if got, _ := ds.Distinct("Gender"); !reflect.DeepEqual(got, []string{"F", "M"}) {
		t.Fatalf("gender = %q", got)
	}
}

func TestParseTSVAndMaxRows(t *testing.T) {
	data := []byte("k\tv\na\t1\nb\t2\nc\t3\n")
	opt := dataset.DefaultOptions()
	opt.MaxRows = 2
	ds, err := parser.Parse("upload.tsv", data, opt)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ds.Rows() != 2 {
		t.Fatalf("rows = %d, want 2", ds.Rows())
	}
	if len(ds.Warnings) != 1 || ds.Warnings[0] != "loaded only 2/3 rows due to MaxRows" {
		t.Fatalf("warnings = %#v", ds.Warnings)
	}
}

func TestParseEmptyCSV(t *testing.T) {
	ds, err := parser.Parse("empty.csv", nil, dataset.DefaultOptions())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !ds.IsEmpty() {
		t.Fatalf("expected empty dataset")
	}
}

func TestParseMalformedCSV(t *testing.T) {
	data := []byte("a,b\n1,\"unterminated\n")
	_, err := parser.Parse("bad.csv", data, dataset.DefaultOptions())
	var pe *parser.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if pe.File != "bad.csv" || !strings.Contains(pe.Error(), "bad.csv") {
		t.Fatalf("unexpected parse error: %v", pe)
	}
}

func TestParseUnsupportedExtension(t *testing.T) {
	_, err := parser.Parse("notes.docx", []byte("x"), dataset.DefaultOptions())
	if !errors.Is(err, parser.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestParseXLSXFirstSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]interface{}{
		{"Device_Type", "Hours", "Note"},
		{"Phone", 20.5, "a"},
		{"Laptop", 1234.5, "b"},
		{"Tablet", nil, "c"},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	style, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		t.Fatalf("style: %v", err)
	}
	if err := f.SetCellStyle("Sheet1", "B2", "B4", style); err != nil {
		t.Fatalf("set style: %v", err)
	}
	if _, err := f.NewSheet("Other"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	ds, err := parser.Parse("book.xlsx", buf.Bytes(), dataset.DefaultOptions())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ds.Rows() != 3 {
		t.Fatalf("rows = %d, want 3", ds.Rows())
	}
	vals, err := ds.Values("Hours")
	if err != nil {
		t.Fatalf("values: %v", err)
	}
	if !reflect.DeepEqual(vals, []float64{20.5, 1234.5}) {
		t.Fatalf("hours = %v", vals)
	}
	if got := ds.CategoricalFields(); !reflect.DeepEqual(got, []string{"Device_Type", "Note"}) {
		t.Fatalf("categorical = %v", got)
	}
}

func TestParseCorruptXLSX(t *testing.T) {
	_, err := parser.Parse("broken.xlsx", []byte("not a zip"), dataset.DefaultOptions())
	var pe *parser.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}
