package server

import (
	"bytes"
	_ "embed"
	"html/template"
	"slices"

	"github.com/KaramelBytes/histx/internal/dataset"
	"github.com/KaramelBytes/histx/internal/pipeline"
	"github.com/gofiber/fiber/v2"
)

//go:embed templates/index.html
var indexHTML string

var indexTmpl = template.Must(template.New("index").Parse(indexHTML))

type option struct {
	Value    string
	Label    string
	Selected bool
}

type filterControl struct {
	Field  string
	Values []option
}

type pageData struct {
	Message  string
	Error    string
	Notice   string
	Name     string
	Rows     int
	Warnings []string
	Preview  previewTable

	Loaded       bool
	Numeric      []option
	FilterFields []option
	Filters      []filterControl
	Groups       []option
	Bins         int
	MinBins      int
	MaxBins      int

	ChartURL     string
	FilteredRows int
	Panels       int
}

func (s *Server) index(c *fiber.Ctx) error {
	sess := session(c)
	ds, msg := sess.Current()
	data := pageData{
		Message: msg,
		Error:   sess.takeError(),
		MinBins: pipeline.MinBins,
		MaxBins: pipeline.MaxBins,
		Bins:    s.runner.DefaultBins,
	}
	if ds.IsEmpty() {
		data.Notice = pipeline.NoticeNoData
		return s.renderPage(c, data)
	}
	data.Loaded = true
	data.Name, data.Rows, data.Warnings = ds.Name, ds.Rows(), ds.Warnings
	data.Preview = s.preview(ds)

	req, err := parseRequest(c, ds)
	if err != nil {
		data.Error = err.Error()
		req = pipeline.Defaults(ds)
	}
	if !c.Context().QueryArgs().Has(qNumeric) || req.Bins == 0 {
		req.Bins = s.runner.DefaultBins
	}
	// the grouping choice is only offered among non-filter fields
	if _, ok := req.Filters[req.GroupBy]; ok {
		req.GroupBy = ""
	}
	data.Bins = req.Bins
	s.fillControls(&data, ds, req)

	res, err := s.runner.Run(ds, req)
	switch {
	case err != nil:
		data.Error = err.Error()
	case res.Notice != "":
		data.Notice = res.Notice
		data.FilteredRows = res.FilteredRows
	default:
		data.ChartURL = "/chart.png?" + encodeRequest(req)
		data.FilteredRows = res.FilteredRows
		data.Panels = len(res.Chart.Panels)
	}
	return s.renderPage(c, data)
}

func (s *Server) fillControls(data *pageData, ds *dataset.Dataset, req pipeline.Request) {
	for _, f := range ds.NumericFields() {
		data.Numeric = append(data.Numeric, option{Value: f, Label: f, Selected: f == req.Numeric})
	}
	for _, f := range ds.CategoricalFields() {
		_, on := req.Filters[f]
		data.FilterFields = append(data.FilterFields, option{Value: f, Label: f, Selected: on})
	}
	for _, f := range req.Filters.Fields() {
		vals, err := ds.Distinct(f)
		if err != nil {
			continue
		}
		fc := filterControl{Field: f}
		for _, v := range vals {
			fc.Values = append(fc.Values, option{
				Value:    v,
				Label:    dataset.DisplayValue(v),
				Selected: slices.Contains(req.Filters[f], v),
			})
		}
		data.Filters = append(data.Filters, fc)
	}
	data.Groups = []option{{Value: "", Label: "None", Selected: req.GroupBy == ""}}
	for _, f := range ds.GroupOptions(req.Filters.Fields()) {
		data.Groups = append(data.Groups, option{Value: f, Label: f, Selected: f == req.GroupBy})
	}
}

func (s *Server) renderPage(c *fiber.Ctx, data pageData) error {
	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, data); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}
