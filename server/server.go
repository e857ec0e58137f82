// Package server exposes a ledger over a local HTTP API, the backend of a
// browser UI running on the same device.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/etnz/bloodpressure"
	"github.com/etnz/bloodpressure/date"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// SaveErrorHeader is set on responses to mutations whose result could not be
// persisted. The mutation still applies to the in-memory ledger.
const SaveErrorHeader = "X-Ledger-Save-Error"

// Config wraps the knobs that impact runtime behavior.
type Config struct {
	Addr string
}

// Server exposes the Fiber application. Requests touching the ledger are
// served one at a time.
type Server struct {
	app    *fiber.App
	cfg    Config
	mu     sync.Mutex
	ledger *bloodpressure.Ledger
}

// New wires handlers and middleware around l.
func New(cfg Config, l *bloodpressure.Ledger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		Immutable:             true,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
		ErrorHandler:          handleError,
	})
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{Format: "${time} | ${status} | ${latency} | ${method} ${path}\n"}))
	app.Use(cors.New())

	s := &Server{app: app, cfg: cfg, ledger: l}
	s.registerRoutes()
	return s
}

// App returns the underlying Fiber application.
func (s *Server) App() *fiber.App { return s.app }

// Run starts listening for HTTP traffic until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.app.Shutdown()
	}()

	log.Printf("serve-ledger addr=%s", s.cfg.Addr)
	return s.app.Listen(s.cfg.Addr)
}

func (s *Server) registerRoutes() {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := s.app.Group("/api/v1")
	api.Get("/readings", s.handleList)
	api.Post("/readings", s.handleCreate)
	api.Get("/readings/:id", s.handleGet)
	api.Put("/readings/:id", s.handleUpdate)
	api.Delete("/readings/:id", s.handleDelete)
	api.Post("/import", s.handleImport)
	api.Get("/export", s.handleExport)
}

// handleError renders errors as {"error": "..."}.
func handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		code = ferr.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// readingView is a reading as served to the UI.
type readingView struct {
	ID     string `json:"id"`
	Sys    int    `json:"sys"`
	Dia    int    `json:"dia"`
	Puls   int    `json:"puls"`
	Date   string `json:"date"`
	Status string `json:"status"`
}

func view(r bloodpressure.Reading) readingView {
	return readingView{
		ID:     r.ID,
		Sys:    r.Sys,
		Dia:    r.Dia,
		Puls:   r.Puls,
		Date:   date.FormatInstant(r.Date),
		Status: r.Status().String(),
	}
}

// field accepts a JSON string or number, as forms send either.
type field string

func (f *field) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = field(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("want a string or a number, got %s", b)
	}
	*f = field(n)
	return nil
}

// fieldsPayload is the body of create and update requests. The date is a
// local wall-clock value, e.g. "2024-01-01T08:00".
type fieldsPayload struct {
	Sys  field `json:"sys"`
	Dia  field `json:"dia"`
	Puls field `json:"puls"`
	Date field `json:"date"`
}

func (p fieldsPayload) fields() bloodpressure.Fields {
	return bloodpressure.Fields{Sys: string(p.Sys), Dia: string(p.Dia), Puls: string(p.Puls), Date: string(p.Date)}
}

func parseFields(c *fiber.Ctx) (bloodpressure.Fields, error) {
	var payload fieldsPayload
	if err := c.BodyParser(&payload); err != nil {
		return bloodpressure.Fields{}, fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	return payload.fields(), nil
}

// ledgerError maps a ledger error to a response.
func ledgerError(c *fiber.Ctx, err error) error {
	var verr *bloodpressure.ValidationError
	var nerr *bloodpressure.NotFoundError
	var perr *bloodpressure.ParseError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": verr.Error(), "fields": verr.Fields})
	case errors.As(err, &nerr):
		return fiber.NewError(fiber.StatusNotFound, nerr.Error())
	case errors.As(err, &perr):
		return fiber.NewError(fiber.StatusBadRequest, perr.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

// reportSave flags a failed write on the response. It must be called with s.mu held.
func (s *Server) reportSave(c *fiber.Ctx) {
	if err := s.ledger.SaveErr(); err != nil {
		c.Set(SaveErrorHeader, err.Error())
	}
}

func parseQuery(c *fiber.Ctx) (bloodpressure.Query, error) {
	q := bloodpressure.Query{Limit: c.QueryInt("limit", 0)}
	if q.Limit < 0 {
		return q, fiber.NewError(fiber.StatusBadRequest, "limit must not be negative")
	}
	if statuses := c.Query("status"); statuses != "" {
		for _, name := range strings.Split(statuses, ",") {
			st, err := bloodpressure.ParseStatus(strings.TrimSpace(name))
			if err != nil {
				return q, fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			q.Statuses = append(q.Statuses, st)
		}
	}
	from, to := c.Query("from"), c.Query("to")
	if from != "" || to != "" {
		var rng date.Range
		var err error
		if rng.From, err = parseDay(from, date.New(1, 1, 1)); err != nil {
			return q, err
		}
		if rng.To, err = parseDay(to, date.New(9999, 12, 31)); err != nil {
			return q, err
		}
		q.Range = &rng
	}
	return q, nil
}

func parseDay(s string, def date.Date) (date.Date, error) {
	if s == "" {
		return def, nil
	}
	d, err := date.Parse(s)
	if err != nil {
		return d, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return d, nil
}

func (s *Server) handleList(c *fiber.Ctx) error {
	q, err := parseQuery(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	readings := s.ledger.Select(q)
	s.mu.Unlock()

	items := make([]readingView, 0, len(readings))
	for _, r := range readings {
		items = append(items, view(r))
	}
	return c.JSON(fiber.Map{
		"data": items,
		"meta": fiber.Map{"count": len(items)},
	})
}

func (s *Server) handleGet(c *fiber.Ctx) error {
	s.mu.Lock()
	r, ok := s.ledger.Get(c.Params("id"))
	s.mu.Unlock()
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("reading %q not found", c.Params("id")))
	}
	return c.JSON(fiber.Map{"data": view(r)})
}

func (s *Server) handleCreate(c *fiber.Ctx) error {
	f, err := parseFields(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.ledger.Create(f)
	if err != nil {
		return ledgerError(c, err)
	}
	s.reportSave(c)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": view(r)})
}

func (s *Server) handleUpdate(c *fiber.Ctx) error {
	f, err := parseFields(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.ledger.Update(c.Params("id"), f)
	if err != nil {
		return ledgerError(c, err)
	}
	s.reportSave(c)
	return c.JSON(fiber.Map{"data": view(r)})
}

func (s *Server) handleDelete(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.Delete(c.Params("id"))
	s.reportSave(c)
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleImport(c *fiber.Ctx) error {
	var opts []bloodpressure.ImportOption
	if sel := c.Query("selector"); sel != "" {
		opts = append(opts, bloodpressure.WithSelector(sel))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.ledger.Import(c.Body(), opts...)
	if err != nil {
		return ledgerError(c, err)
	}
	s.reportSave(c)
	return c.JSON(fiber.Map{"data": fiber.Map{"imported": n}})
}

func (s *Server) handleExport(c *fiber.Ctx) error {
	s.mu.Lock()
	doc := s.ledger.Export()
	today := date.Of(s.ledger.Now(), s.ledger.Location())
	s.mu.Unlock()

	c.Attachment(bloodpressure.ExportFileName(today))
	return c.Send(doc)
}
