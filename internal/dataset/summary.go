package dataset

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Summary is a markdown-friendly description of a dataset.
type Summary struct {
	Name     string
	Rows     int
	Cols     []ColumnSummary
	Samples  [][]string
	Warnings []string
}

// ColumnSummary captures the kind and basic statistics of a column.
type ColumnSummary struct {
	Name    string
	Kind    Kind
	NonNull int
	Missing int
	Unique  int
	// Numeric stats
	Min  float64
	Max  float64
	Mean float64
	Std  float64
	// Categorical top values
	TopValues []CategoryCount
}

type CategoryCount struct {
	Value string
	Count int
}

// Summarize computes per-column statistics and keeps sampleRows example rows.
func Summarize(d *Dataset, sampleRows int) *Summary {
	s := &Summary{Name: d.Name, Rows: d.rows, Samples: d.Head(sampleRows), Warnings: d.Warnings}
	for _, c := range d.Columns {
		cs := ColumnSummary{Name: c.Name, Kind: c.Kind}
		if c.Kind == KindNumeric {
			// Welford update
			var n int
			var mean, m2 float64
			cs.Min, cs.Max = math.Inf(1), math.Inf(-1)
			for _, x := range c.nums {
				if math.IsNaN(x) {
					cs.Missing++
					continue
				}
				n++
				if x < cs.Min {
					cs.Min = x
				}
				if x > cs.Max {
					cs.Max = x
				}
				delta := x - mean
				mean += delta / float64(n)
				m2 += delta * (x - mean)
			}
			cs.NonNull = n
			cs.Mean = mean
			if n > 1 {
				cs.Std = math.Sqrt(m2 / float64(n-1))
			}
			if n == 0 {
				cs.Min, cs.Max = 0, 0
			}
		} else {
			counts := map[string]int{}
			for _, v := range c.strs {
				if v == "" {
					cs.Missing++
					continue
				}
				cs.NonNull++
				counts[v]++
			}
			tops := make([]CategoryCount, 0, len(counts))
			for k, v := range counts {
				tops = append(tops, CategoryCount{Value: k, Count: v})
			}
			sort.Slice(tops, func(i, j int) bool {
				if tops[i].Count == tops[j].Count {
					return tops[i].Value < tops[j].Value
				}
				return tops[i].Count > tops[j].Count
			})
			if len(tops) > 8 {
				tops = tops[:8]
			}
			cs.TopValues = tops
			cs.Unique = len(counts)
		}
		s.Cols = append(s.Cols, cs)
	}
	return s
}

// Markdown renders the summary for the terminal or a standalone doc.
func (s *Summary) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if s.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", s.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", s.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(s.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range s.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, missPct))
		switch c.Kind {
		case KindNumeric:
			if c.NonNull > 0 {
				b.WriteString(fmt.Sprintf(" — min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
			}
		case KindCategorical:
			if len(c.TopValues) > 0 {
				b.WriteString(" — top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		}
		b.WriteString("\n")
	}

	var numeric, categorical []string
	for _, c := range s.Cols {
		switch c.Kind {
		case KindNumeric:
			numeric = append(numeric, c.Name)
		case KindCategorical:
			categorical = append(categorical, c.Name)
		}
	}
	b.WriteString("\n[FIELDS]\n")
	b.WriteString(fmt.Sprintf("- numeric: %s\n", joinOrNone(numeric)))
	b.WriteString(fmt.Sprintf("- categorical: %s\n", joinOrNone(categorical)))

	if len(s.Samples) > 0 {
		b.WriteString("\n[HEAD]\n")
		b.WriteString("| ")
		for i, c := range s.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(c.Name))
		}
		b.WriteString(" |\n| ")
		for i := range s.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range s.Samples {
			b.WriteString("| ")
			for i := range s.Cols {
				if i > 0 {
					b.WriteString(" | ")
				}
				val := ""
				if i < len(row) {
					val = row[i]
				}
				if len(val) > 80 {
					val = val[:77] + "..."
				}
				b.WriteString(safeVal(val))
			}
			b.WriteString(" |\n")
		}
	}
	if len(s.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range s.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// DisplayValue renders a categorical label for people; the empty label is
// shown as "(missing)".
func DisplayValue(v string) string {
	if v == "" {
		return "(missing)"
	}
	return v
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}
func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
