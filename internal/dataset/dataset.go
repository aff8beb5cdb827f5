package dataset

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

var (
	// ErrUnknownField indicates a column name that is not part of the dataset.
	ErrUnknownField = errors.New("unknown field")
	// ErrNotCategorical indicates a filter or grouping on a non-categorical column.
	ErrNotCategorical = errors.New("field is not categorical")
	// ErrNotNumeric indicates binning requested on a non-numeric column.
	ErrNotNumeric = errors.New("field is not numeric")
	// ErrUnknownValue indicates a filter value outside the field's distinct values.
	ErrUnknownValue = errors.New("value not present in field")
)

// Kind is the inferred type of a column.
type Kind int

const (
	KindCategorical Kind = iota
	KindNumeric
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindBoolean:
		return "boolean"
	default:
		return "categorical"
	}
}

// Column holds one typed column. Numeric columns store NaN for missing
// cells; categorical and boolean columns store the trimmed cell text, with
// "" standing for a missing cell.
type Column struct {
	Name string
	Kind Kind
	nums []float64
	strs []string
}

// Len returns the number of cells in the column.
func (c *Column) Len() int {
	if c.Kind == KindNumeric {
		return len(c.nums)
	}
	return len(c.strs)
}

// Float returns the numeric value at row i; NaN when missing or non-numeric.
func (c *Column) Float(i int) float64 {
	if c.Kind != KindNumeric {
		return math.NaN()
	}
	return c.nums[i]
}

// String returns the cell at row i as text.
func (c *Column) String(i int) string {
	if c.Kind == KindNumeric {
		v := c.nums[i]
		if math.IsNaN(v) {
			return ""
		}
		return formatFloat(v)
	}
	return c.strs[i]
}

// Dataset is an immutable table. Derived datasets (Filter, Subset) copy
// the selected cells and never touch the receiver.
type Dataset struct {
	Name     string
	Columns  []*Column
	Warnings []string
	rows     int
	index    map[string]int
}

// New builds a Dataset from a header and raw rows, inferring each column's
// kind. Rows shorter than the header are padded with missing cells and
// extra cells are dropped.
func New(name string, header []string, records [][]string, opt Options) *Dataset {
	names := uniqueHeader(header)
	ds := &Dataset{Name: name, rows: len(records), index: make(map[string]int, len(names))}
	for j, n := range names {
		cells := make([]string, len(records))
		for i, rec := range records {
			if j < len(rec) {
				cells[i] = strings.TrimSpace(rec[j])
			}
		}
		ds.index[n] = j
		ds.Columns = append(ds.Columns, buildColumn(n, cells, opt))
	}
	return ds
}

// Empty returns a dataset with no rows and no columns.
func Empty(name string) *Dataset {
	return &Dataset{Name: name, index: map[string]int{}}
}

// Rows returns the number of rows.
func (d *Dataset) Rows() int { return d.rows }

// IsEmpty reports whether the dataset has nothing to render.
func (d *Dataset) IsEmpty() bool { return d == nil || d.rows == 0 }

// Column looks up a column by name.
func (d *Dataset) Column(name string) (*Column, error) {
	j, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return d.Columns[j], nil
}

// NumericFields lists numeric column names in column order.
func (d *Dataset) NumericFields() []string { return d.fieldsOf(KindNumeric) }

// CategoricalFields lists categorical column names in column order.
func (d *Dataset) CategoricalFields() []string { return d.fieldsOf(KindCategorical) }

func (d *Dataset) fieldsOf(k Kind) []string {
	out := []string{}
	for _, c := range d.Columns {
		if c.Kind == k {
			out = append(out, c.Name)
		}
	}
	return out
}

// Distinct returns the sorted distinct values of a categorical field.
func (d *Dataset) Distinct(field string) ([]string, error) {
	c, err := d.categorical(field)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	out := []string{}
	for _, v := range c.strs {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

// Values returns the non-missing values of a numeric field.
func (d *Dataset) Values(field string) ([]float64, error) {
	c, err := d.Column(field)
	if err != nil {
		return nil, err
	}
	if c.Kind != KindNumeric {
		return nil, fmt.Errorf("%w: %q", ErrNotNumeric, field)
	}
	out := make([]float64, 0, len(c.nums))
	for _, v := range c.nums {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

// Head returns up to n rows as display strings, in column order.
func (d *Dataset) Head(n int) [][]string {
	if n > d.rows {
		n = d.rows
	}
	out := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		row := make([]string, len(d.Columns))
		for j, c := range d.Columns {
			row[j] = c.String(i)
		}
		out = append(out, row)
	}
	return out
}

// Subset returns a new dataset holding only the given rows, in order.
func (d *Dataset) Subset(rows []int) *Dataset {
	out := &Dataset{Name: d.Name, rows: len(rows), index: make(map[string]int, len(d.index))}
	for k, v := range d.index {
		out.index[k] = v
	}
	for _, c := range d.Columns {
		nc := &Column{Name: c.Name, Kind: c.Kind}
		if c.Kind == KindNumeric {
			nc.nums = make([]float64, len(rows))
			for i, r := range rows {
				nc.nums[i] = c.nums[r]
			}
		} else {
			nc.strs = make([]string, len(rows))
			for i, r := range rows {
				nc.strs[i] = c.strs[r]
			}
		}
		out.Columns = append(out.Columns, nc)
	}
	return out
}

func (d *Dataset) categorical(field string) (*Column, error) {
	c, err := d.Column(field)
	if err != nil {
		return nil, err
	}
	if c.Kind != KindCategorical {
		return nil, fmt.Errorf("%w: %q", ErrNotCategorical, field)
	}
	return c, nil
}

// uniqueHeader trims names, labels blank ones "Unnamed: <i>" and suffixes
// repeats with ".1", ".2", ...
func uniqueHeader(header []string) []string {
	out := make([]string, len(header))
	used := map[string]bool{}
	next := map[string]int{}
	for i, h := range header {
		base := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if base == "" {
			base = fmt.Sprintf("Unnamed: %d", i)
		}
		name := base
		for used[name] {
			next[base]++
			name = fmt.Sprintf("%s.%d", base, next[base])
		}
		used[name] = true
		out[i] = name
	}
	return out
}
