package server

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"

	"github.com/KaramelBytes/histx/internal/dataset"
	"github.com/KaramelBytes/histx/internal/pipeline"
	"github.com/gofiber/fiber/v2"
)

// Query parameters shared by the HTML form and /chart.png.
const (
	qNumeric = "numeric"
	qFilter  = "filter"
	qSeen    = "seen"
	qGroup   = "group"
	qBins    = "bins"
	// per-field selected values: f.<field>
	qValuePrefix = "f."
)

// parseRequest reads the control state from the query string. Without a
// numeric parameter the defaults for ds are used. A filter field not yet
// listed under "seen" starts with every value selected; a seen field with
// no values selects nothing.
func parseRequest(c *fiber.Ctx, ds *dataset.Dataset) (pipeline.Request, error) {
	args := c.Context().QueryArgs()
	if !args.Has(qNumeric) {
		return pipeline.Defaults(ds), nil
	}
	req := pipeline.Request{
		Numeric: string(args.Peek(qNumeric)),
		GroupBy: string(args.Peek(qGroup)),
		Filters: dataset.FilterSpec{},
	}
	if raw := string(args.Peek(qBins)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return req, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid bins: %q", raw))
		}
		req.Bins = n
	}
	seen := map[string]bool{}
	for _, f := range args.PeekMulti(qSeen) {
		seen[string(f)] = true
	}
	for _, raw := range args.PeekMulti(qFilter) {
		field := string(raw)
		if _, dup := req.Filters[field]; dup {
			continue
		}
		if !seen[field] {
			vals, err := ds.Distinct(field)
			if err != nil {
				return req, err
			}
			req.Filters[field] = vals
			continue
		}
		vals := []string{}
		for _, v := range args.PeekMulti(qValuePrefix + field) {
			vals = append(vals, string(v))
		}
		req.Filters[field] = vals
	}
	return req, nil
}

// encodeRequest is the inverse of parseRequest with every filter marked seen.
func encodeRequest(req pipeline.Request) string {
	q := url.Values{}
	q.Set(qNumeric, req.Numeric)
	for _, f := range req.Filters.Fields() {
		q.Add(qFilter, f)
		q.Add(qSeen, f)
		vals := slices.Clone(req.Filters[f])
		slices.Sort(vals)
		for _, v := range vals {
			q.Add(qValuePrefix+f, v)
		}
	}
	if req.GroupBy != "" {
		q.Set(qGroup, req.GroupBy)
	}
	if req.Bins != 0 {
		q.Set(qBins, strconv.Itoa(req.Bins))
	}
	return q.Encode()
}
