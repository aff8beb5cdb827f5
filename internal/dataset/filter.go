package dataset

import (
	"fmt"
	"sort"
)

// FilterSpec maps a categorical field to the subset of its values to keep.
type FilterSpec map[string][]string

// Fields returns the filter's field names, sorted.
func (f FilterSpec) Fields() []string {
	out := make([]string, 0, len(f))
	for k := range f {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Validate checks every key is a categorical field of d and every selected
// value is one of that field's distinct values.
func (f FilterSpec) Validate(d *Dataset) error {
	for _, field := range f.Fields() {
		c, err := d.categorical(field)
		if err != nil {
			return err
		}
		present := make(map[string]struct{}, len(c.strs))
		for _, v := range c.strs {
			present[v] = struct{}{}
		}
		for _, v := range f[field] {
			if _, ok := present[v]; !ok {
				return fmt.Errorf("%w: %q in %q", ErrUnknownValue, v, field)
			}
		}
	}
	return nil
}

// Filter returns the rows whose value in every filtered field is one of
// the selected values. Fields combine by AND, so the result does not depend
// on the order filters are applied. An empty spec returns a copy of d; an
// empty selection for any field returns an empty dataset.
func (d *Dataset) Filter(spec FilterSpec) (*Dataset, error) {
	if err := spec.Validate(d); err != nil {
		return nil, err
	}
	keep := make([]bool, d.rows)
	for i := range keep {
		keep[i] = true
	}
	for field, selected := range spec {
		c, _ := d.categorical(field)
		allowed := make(map[string]struct{}, len(selected))
		for _, v := range selected {
			allowed[v] = struct{}{}
		}
		for i, v := range c.strs {
			if _, ok := allowed[v]; !ok {
				keep[i] = false
			}
		}
	}
	rows := make([]int, 0, d.rows)
	for i, k := range keep {
		if k {
			rows = append(rows, i)
		}
	}
	return d.Subset(rows), nil
}

// GroupOptions lists categorical fields that may be used for grouping once
// the given fields are filtered on. Filter fields are never offered.
func (d *Dataset) GroupOptions(filterFields []string) []string {
	taken := make(map[string]struct{}, len(filterFields))
	for _, f := range filterFields {
		taken[f] = struct{}{}
	}
	out := []string{}
	for _, name := range d.CategoricalFields() {
		if _, ok := taken[name]; ok {
			continue
		}
		out = append(out, name)
	}
	return out
}

// Group partitions the rows of d by the distinct values of a categorical
// field, returning the values in ascending order and one subset per value.
func (d *Dataset) Group(field string) ([]string, []*Dataset, error) {
	keys, err := d.Distinct(field)
	if err != nil {
		return nil, nil, err
	}
	c, _ := d.categorical(field)
	rowsByKey := make(map[string][]int, len(keys))
	for i, v := range c.strs {
		rowsByKey[v] = append(rowsByKey[v], i)
	}
	parts := make([]*Dataset, len(keys))
	for i, k := range keys {
		parts[i] = d.Subset(rowsByKey[k])
	}
	return keys, parts, nil
}
