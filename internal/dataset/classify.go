package dataset

import (
	"math"
	"strconv"
	"strings"
)

// Options controls how raw cells are read into a Dataset.
type Options struct {
	// MaxRows limits rows loaded; 0 means unlimited.
	MaxRows int
	// Delimiter for CSV. If 0, picked from the file extension.
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, only plain '.' decimals parse.
	DecimalSeparator   rune
	ThousandsSeparator rune
}

// DefaultOptions returns reasonable defaults for dataset loading.
func DefaultOptions() Options {
	return Options{MaxRows: 200000}
}

var missingTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"n/a":  {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
	"None": {},
	"#N/A": {},
}

// IsMissing reports whether a trimmed cell counts as a missing value.
func IsMissing(v string) bool {
	_, ok := missingTokens[v]
	return ok
}

// Classify infers a column kind: numeric when every non-missing cell parses
// as a number (an all-missing column is numeric), boolean when every
// non-missing cell is true/false, categorical otherwise.
func Classify(cells []string, opt Options) Kind {
	numeric, boolean := true, true
	for _, v := range cells {
		if IsMissing(v) {
			continue
		}
		if numeric {
			if _, ok := ParseNumeric(v, opt); !ok {
				numeric = false
			}
		}
		if boolean && !isBool(v) {
			boolean = false
		}
		if !numeric && !boolean {
			return KindCategorical
		}
	}
	if numeric {
		return KindNumeric
	}
	return KindBoolean
}

func buildColumn(name string, cells []string, opt Options) *Column {
	c := &Column{Name: name, Kind: Classify(cells, opt)}
	switch c.Kind {
	case KindNumeric:
		c.nums = make([]float64, len(cells))
		for i, v := range cells {
			if IsMissing(v) {
				c.nums[i] = math.NaN()
				continue
			}
			c.nums[i], _ = ParseNumeric(v, opt)
		}
	default:
		c.strs = make([]string, len(cells))
		for i, v := range cells {
			if IsMissing(v) {
				continue
			}
			c.strs[i] = v
		}
	}
	return c
}

func isBool(v string) bool {
	switch strings.ToLower(v) {
	case "true", "false":
		return true
	}
	return false
}

// ParseNumeric parses a cell as a float. With no locale configured only
// Go float syntax is accepted; otherwise the configured thousands separator
// is stripped and the decimal separator normalized to '.'.
func ParseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	dec := opt.DecimalSeparator
	if dec != 0 {
		if thou := opt.ThousandsSeparator; thou != 0 && thou != dec {
			raw = strings.ReplaceAll(raw, string(thou), "")
		}
		if dec != '.' {
			if strings.Contains(raw, ".") {
				return 0, false
			}
			raw = strings.ReplaceAll(raw, string(dec), ".")
		}
	}
	// Hex floats and infinities parse in Go but are text in a spreadsheet.
	if raw == "" || strings.ContainsAny(raw, "xXpP_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func formatFloat(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
