package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/histx/internal/dataset"
	"github.com/xuri/excelize/v2"
)

type xlsxParser struct{}

func (xlsxParser) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xlsm")
}

// Parse reads the first sheet of the workbook. Raw cell values are used so
// number formats (thousands separators, percentages) do not leak into the
// numeric inference.
func (xlsxParser) Parse(name string, r io.Reader, opt dataset.Options) (*dataset.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{File: name, Err: fmt.Errorf("open workbook: %w", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return dataset.Empty(name), nil
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &ParseError{File: name, Err: fmt.Errorf("read sheet %q: %w", sheets[0], err)}
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return dataset.Empty(name), nil
	}
	header, records := rows[0], rows[1:]
	total := len(records)
	if opt.MaxRows > 0 && total > opt.MaxRows {
		records = records[:opt.MaxRows]
	}
	ds := dataset.New(name, header, records, opt)
	if len(records) < total {
		ds.Warnings = append(ds.Warnings, fmt.Sprintf("loaded only %d/%d rows due to MaxRows", len(records), total))
	}
	return ds, nil
}
