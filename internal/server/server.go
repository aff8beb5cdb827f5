package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/KaramelBytes/histx/internal/dataset"
	"github.com/KaramelBytes/histx/internal/ingest"
	"github.com/KaramelBytes/histx/internal/logger"
	"github.com/KaramelBytes/histx/internal/parser"
	"github.com/KaramelBytes/histx/internal/pipeline"
	"github.com/KaramelBytes/histx/internal/render"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Options configures the web server.
type Options struct {
	Port        int
	BodyLimitMB int
	SessionTTL  time.Duration
	PreviewRows int
	DefaultBins int
	SamplePath  string
	Dataset     dataset.Options
	Draw        render.DrawOptions
}

type Server struct {
	app      *fiber.App
	opts     Options
	sessions *SessionStore
	runner   *pipeline.Runner
	validate *validator.Validate
	log      logger.Logger
}

func New(opts Options, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = time.Hour
	}
	if opts.BodyLimitMB <= 0 {
		opts.BodyLimitMB = 200
	}
	s := &Server{
		opts:     opts,
		runner:   pipeline.NewRunner(opts.DefaultBins, log),
		validate: validator.New(),
		log:      log,
	}
	s.sessions = NewSessionStore(opts.SessionTTL, func() *ingest.Loader {
		return ingest.NewLoader(opts.Dataset, opts.SamplePath, opts.SessionTTL, log)
	})

	s.app = fiber.New(fiber.Config{
		AppName:               "histx",
		BodyLimit:             opts.BodyLimitMB * 1024 * 1024,
		ErrorHandler:          s.handleError,
		DisableStartupMessage: true,
	})
	s.app.Use(recover.New())
	s.registerRoutes()
	return s
}

func (s *Server) App() *fiber.App {
	return s.app
}

// Run blocks serving HTTP on the configured port.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.opts.Port)
	s.log.Info("server", "listening", map[string]interface{}{"addr": addr})
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) registerRoutes() {
	s.app.Get("/healthz", s.health)

	s.app.Get("/", s.withSession(true), s.index)
	s.app.Post("/datasets", s.withSession(true), s.uploadForm)
	s.app.Get("/chart.png", s.withSession(false), s.chartPNG)

	api := s.app.Group("/api")
	api.Post("/datasets", s.withSession(true), s.uploadAPI)
	api.Get("/fields", s.withSession(false), s.fields)
	api.Post("/histogram", s.withSession(false), s.histogram)
}

// withSession resolves the session cookie. With create set, a missing or
// expired session is replaced by a fresh one; otherwise the request fails
// with ErrNoSession.
func (s *Server) withSession(create bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, ok := s.sessions.Get(c.Cookies(sessionCookie))
		if !ok {
			if !create {
				return ErrNoSession
			}
			sess = s.sessions.Create()
			c.Cookie(&fiber.Cookie{
				Name:     sessionCookie,
				Value:    sess.ID,
				Path:     "/",
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
				Expires:  time.Now().Add(s.opts.SessionTTL),
			})
			s.log.Debug("server", "session created", map[string]interface{}{"session": sess.ID})
		}
		c.Locals("session", sess)
		return c.Next()
	}
}

func session(c *fiber.Ctx) *Session {
	return c.Locals("session").(*Session)
}

// handleError maps domain errors to HTTP status codes and a JSON body.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	msg := err.Error()
	if errors.Is(err, ErrNoDataset) {
		msg = pipeline.NoticeNoData
	}
	details := map[string]interface{}{"path": c.Path(), "status": code, "error": err}
	if code >= fiber.StatusInternalServerError {
		s.log.Error("server", "request failed", details)
	} else {
		s.log.Debug("server", "request rejected", details)
	}
	return c.Status(code).JSON(fiber.Map{"message": msg})
}

func statusFor(err error) int {
	var fe *fiber.Error
	var ve validator.ValidationErrors
	var pe *parser.ParseError
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.As(err, &ve):
		return fiber.StatusBadRequest
	case errors.As(err, &pe), errors.Is(err, parser.ErrUnsupported):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, ErrNoSession), errors.Is(err, ErrNoDataset):
		return fiber.StatusConflict
	case errors.Is(err, pipeline.ErrInvalidBins),
		errors.Is(err, pipeline.ErrGroupIsFilter),
		errors.Is(err, ingest.ErrInvalidSource),
		errors.Is(err, dataset.ErrUnknownField),
		errors.Is(err, dataset.ErrNotCategorical),
		errors.Is(err, dataset.ErrNotNumeric),
		errors.Is(err, dataset.ErrUnknownValue):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}
