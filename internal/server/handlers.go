package server

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/KaramelBytes/histx/internal/dataset"
	"github.com/KaramelBytes/histx/internal/ingest"
	"github.com/KaramelBytes/histx/internal/pipeline"
	"github.com/gofiber/fiber/v2"
)

type previewTable struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

type datasetResponse struct {
	Message  string   `json:"message"`
	Name     string   `json:"name"`
	Rows     int      `json:"rows"`
	Cols     int      `json:"cols"`
	Cached   bool     `json:"cached"`
	Warnings []string `json:"warnings,omitempty"`
}

type fieldsResponse struct {
	Name         string              `json:"name"`
	Rows         int                 `json:"rows"`
	Numeric      []string            `json:"numeric"`
	Categorical  []string            `json:"categorical"`
	Values       map[string][]string `json:"values"`
	GroupOptions []string            `json:"group_options"`
	Preview      previewTable        `json:"preview"`
	Warnings     []string            `json:"warnings,omitempty"`
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "sessions": s.sessions.Len()})
}

// load runs ingestion for the submitted form and makes the result the
// session's current dataset.
func (s *Server) load(c *fiber.Ctx, sess *Session) (*ingest.Result, error) {
	src, err := ingest.ParseSource(c.FormValue("source"))
	if err != nil {
		return nil, err
	}
	var up *ingest.Upload
	if fh, err := c.FormFile("file"); err == nil {
		data, err := readFormFile(fh)
		if err != nil {
			return nil, err
		}
		up = &ingest.Upload{Name: fh.Filename, Data: data}
	}
	res, err := sess.Loader.Load(src, up)
	if err != nil {
		return nil, err
	}
	sess.set(res.Dataset, res.Message)
	return res, nil
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return b, nil
}

// uploadForm handles the HTML form; failures are shown on the next page view.
func (s *Server) uploadForm(c *fiber.Ctx) error {
	sess := session(c)
	if _, err := s.load(c, sess); err != nil {
		s.log.Warn("server", "dataset load failed", map[string]interface{}{"session": sess.ID, "error": err.Error()})
		sess.fail(err.Error())
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (s *Server) uploadAPI(c *fiber.Ctx) error {
	res, err := s.load(c, session(c))
	if err != nil {
		return err
	}
	ds := res.Dataset
	return c.JSON(datasetResponse{
		Message:  res.Message,
		Name:     ds.Name,
		Rows:     ds.Rows(),
		Cols:     len(ds.Columns),
		Cached:   res.Cached,
		Warnings: ds.Warnings,
	})
}

func (s *Server) fields(c *fiber.Ctx) error {
	ds, err := session(c).Dataset()
	if err != nil {
		return err
	}
	var filters []string
	for _, f := range c.Context().QueryArgs().PeekMulti(qFilter) {
		filters = append(filters, string(f))
	}
	resp := fieldsResponse{
		Name:         ds.Name,
		Rows:         ds.Rows(),
		Numeric:      ds.NumericFields(),
		Categorical:  ds.CategoricalFields(),
		Values:       map[string][]string{},
		GroupOptions: ds.GroupOptions(filters),
		Preview:      s.preview(ds),
		Warnings:     ds.Warnings,
	}
	for _, f := range resp.Categorical {
		resp.Values[f], _ = ds.Distinct(f)
	}
	return c.JSON(resp)
}

func (s *Server) histogram(c *fiber.Ctx) error {
	var req pipeline.Request
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if err := s.validate.Struct(req); err != nil {
		return err
	}
	ds, err := session(c).Dataset()
	if err != nil {
		return err
	}
	res, err := s.runner.Run(ds, req)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// chartPNG renders the chart for the query. An empty filter result has no
// image and answers 204.
func (s *Server) chartPNG(c *fiber.Ctx) error {
	ds, err := session(c).Dataset()
	if err != nil {
		return err
	}
	req, err := parseRequest(c, ds)
	if err != nil {
		return err
	}
	res, err := s.runner.Run(ds, req)
	if err != nil {
		return err
	}
	if res.Chart == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	var buf bytes.Buffer
	if err := res.Chart.WritePNG(&buf, s.opts.Draw); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(buf.Bytes())
}

func (s *Server) preview(ds *dataset.Dataset) previewTable {
	t := previewTable{Rows: ds.Head(s.opts.PreviewRows)}
	for _, col := range ds.Columns {
		t.Header = append(t.Header, col.Name)
	}
	return t
}
