package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/valyala/fasthttp"

	"github.com/theirongolddev/demandcast/internal/forecast"
	"github.com/theirongolddev/demandcast/internal/model"
	"github.com/theirongolddev/demandcast/internal/pipeline"
	"github.com/theirongolddev/demandcast/internal/source"
	"github.com/theirongolddev/demandcast/internal/store"
)

const keepAliveInterval = 15 * time.Second

// forecastRequest is the JSON body of /v1/forecast, /v1/inspect and
// /v1/compare. CSV and XLSX bodies are mapped onto it as well.
type forecastRequest struct {
	CSV    string  `json:"csv"`
	Model  string  `json:"model"`
	Seed   *uint64 `json:"seed"`
	Source string  `json:"source"`
	Save   *bool   `json:"save"`
}

type forecastSummary struct {
	ID               string    `json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	Source           string    `json:"source"`
	Model            string    `json:"model"`
	Rows             int       `json:"rows"`
	PredictedUnits   int       `json:"predicted_units"`
	SalesTrend       string    `json:"sales_trend"`
	PeakDemandPeriod string    `json:"peak_demand_period"`
	Accuracy         float64   `json:"accuracy"`
}

type modelInfo struct {
	Model       string  `json:"model"`
	NoiseFactor float64 `json:"noise_factor"`
	Confidence  string  `json:"confidence"`
	Accuracy    float64 `json:"accuracy"`
	F1Score     float64 `json:"f1_score"`
	Overridden  bool    `json:"overridden,omitempty"`
	Default     bool    `json:"default,omitempty"`
}

type comparisonEntry struct {
	Rank      int                   `json:"rank"`
	Model     string                `json:"model"`
	Result    *model.ForecastResult `json:"result,omitempty"`
	Benchmark modelInfo             `json:"benchmark"`
	Error     string                `json:"error,omitempty"`
}

// App builds the fiber application serving the API.
func (s *Service) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "demandcast",
		DisableStartupMessage: true,
		BodyLimit:             source.MaxInputBytes,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	if s.cfg.AccessLog != nil {
		app.Use(logger.New(logger.Config{Output: s.cfg.AccessLog}))
	}
	app.Use(cors.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok\n")
	})

	v1 := app.Group("/v1")
	v1.Get("/status", s.handleStatus)
	v1.Get("/models", s.handleModels)
	v1.Post("/forecast", s.handleForecast)
	v1.Post("/inspect", s.handleInspect)
	v1.Post("/compare", s.handleCompare)
	v1.Get("/events", s.handleEvents)
	v1.Get("/stream", s.handleStream)

	history := v1.Group("/forecasts", s.requireStore)
	history.Get("/", s.handleListForecasts)
	history.Get("/:id", s.handleGetForecast)
	history.Delete("/:id", s.handleDeleteForecast)

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func (s *Service) requireStore(c *fiber.Ctx) error {
	if s.cfg.Store == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "forecast history is disabled")
	}
	return c.Next()
}

func (s *Service) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.snapshotStatus())
}

func (s *Service) handleModels(c *fiber.Ctx) error {
	out := make([]modelInfo, 0, len(s.cfg.Catalog))
	for _, b := range s.cfg.Catalog {
		out = append(out, s.modelInfo(b.Model))
	}
	return c.JSON(out)
}

func (s *Service) modelInfo(m forecast.Model) modelInfo {
	p := m.Preset()
	info := modelInfo{
		Model:       p.Label,
		NoiseFactor: p.NoiseFactor,
		Confidence:  p.Confidence,
		Default:     m == s.cfg.Options.Model,
	}
	for _, b := range s.cfg.Catalog {
		if b.Model == m {
			info.Accuracy = b.Accuracy
			info.F1Score = b.F1Score
			info.Overridden = b.Overridden
			break
		}
	}
	return info
}

func (s *Service) handleForecast(c *fiber.Ctx) error {
	req, err := readRequest(c)
	if err != nil {
		return err
	}
	opts, err := s.options(req)
	if err != nil {
		return err
	}

	name := req.Source
	if name == "" {
		name = "api"
	}
	rec, err := pipeline.ForecastDataset(source.Dataset{Name: name, CSV: req.CSV}, opts)
	if err != nil {
		var de *forecast.DataError
		if errors.As(err, &de) {
			s.publishEvent(Event{Type: EventFailed, Source: name, Model: opts.Model.String(), Error: err.Error()})
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":         err.Error(),
				"valid_rows":    de.Valid,
				"required_rows": de.Need,
			})
		}
		return err
	}

	if s.cfg.Store != nil && (req.Save == nil || *req.Save) {
		if err := s.cfg.Store.SaveForecast(&rec); err != nil {
			s.log.Error("saving forecast", "source", name, "err", err)
			return fiber.NewError(fiber.StatusInternalServerError, "saving forecast: "+err.Error())
		}
	}

	s.mu.Lock()
	s.served++
	s.mu.Unlock()
	s.publishEvent(forecastEvent(rec))
	s.log.Debug("forecast served", "source", name, "model", rec.Model, "units", rec.Result.PredictedUnits)

	return c.JSON(rec)
}

func (s *Service) handleInspect(c *fiber.Ctx) error {
	req, err := readRequest(c)
	if err != nil {
		return err
	}
	return c.JSON(forecast.Profile(req.CSV))
}

func (s *Service) handleCompare(c *fiber.Ctx) error {
	req, err := readRequest(c)
	if err != nil {
		return err
	}
	opts, err := s.options(req)
	if err != nil {
		return err
	}

	results := pipeline.Compare(req.CSV, opts, s.cfg.Catalog)
	out := make([]comparisonEntry, 0, len(results))
	for i, r := range results {
		e := comparisonEntry{Rank: i + 1, Model: r.Model.String(), Benchmark: s.modelInfo(r.Model)}
		if r.Err != nil {
			e.Rank = 0
			e.Error = r.Err.Error()
		} else {
			res := r.Result
			e.Result = &res
		}
		out = append(out, e)
	}
	return c.JSON(out)
}

func (s *Service) handleListForecasts(c *fiber.Ctx) error {
	opts := store.ListOptions{
		Model:  c.Query("model"),
		Source: c.Query("source"),
		Limit:  c.QueryInt("limit", 50),
	}
	if v := c.Query("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "since must be an RFC 3339 timestamp")
		}
		opts.Since = t
	}

	records, err := s.cfg.Store.ListForecasts(opts)
	if err != nil {
		return err
	}
	out := make([]forecastSummary, 0, len(records))
	for _, rec := range records {
		out = append(out, forecastSummary{
			ID:               rec.ID,
			CreatedAt:        rec.CreatedAt,
			Source:           rec.Source,
			Model:            rec.Model,
			Rows:             rec.Rows,
			PredictedUnits:   rec.Result.PredictedUnits,
			SalesTrend:       rec.Result.SalesTrend,
			PeakDemandPeriod: rec.Result.PeakDemandPeriod,
			Accuracy:         rec.Result.Accuracy,
		})
	}
	return c.JSON(out)
}

func (s *Service) lookup(ref string) (model.ForecastRecord, error) {
	rec, err := s.cfg.Store.Resolve(ref)
	if errors.Is(err, store.ErrNotFound) {
		return rec, fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("forecast %q not found", ref))
	}
	if err != nil {
		return rec, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return rec, nil
}

func (s *Service) handleGetForecast(c *fiber.Ctx) error {
	rec, err := s.lookup(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(rec)
}

func (s *Service) handleDeleteForecast(c *fiber.Ctx) error {
	rec, err := s.lookup(c.Params("id"))
	if err != nil {
		return err
	}
	if err := s.cfg.Store.DeleteForecast(rec.ID); err != nil {
		return err
	}
	s.publishEvent(Event{Type: EventDeleted, ForecastID: rec.ID, Source: rec.Source, Model: rec.Model})
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Service) handleEvents(c *fiber.Ctx) error {
	after, err := strconv.ParseInt(c.Query("after", "0"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "after must be an event id")
	}
	return c.JSON(s.eventsSince(after))
}

// handleStream sends events as they are published. A reconnecting client
// that sends Last-Event-ID first receives the buffered events it missed.
func (s *Service) handleStream(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	lastID, _ := strconv.ParseInt(c.Get("Last-Event-ID"), 10, 64)

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	backlog := s.eventsSince(lastID)
	if lastID == 0 {
		backlog = nil
	}

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer s.removeSubscriber(id)

		sent := lastID
		hello := Event{Type: EventHello, Timestamp: time.Now(), Model: s.cfg.Options.Model.String()}
		if err := writeSSE(w, hello); err != nil {
			return
		}
		for _, ev := range backlog {
			if err := writeSSE(w, ev); err != nil {
				return
			}
			sent = ev.ID
		}
		if err := w.Flush(); err != nil {
			return
		}

		keepAlive := time.NewTicker(keepAliveInterval)
		defer keepAlive.Stop()
		for {
			select {
			case <-s.stop:
				return
			case ev := <-ch:
				if ev.ID <= sent {
					continue
				}
				sent = ev.ID
				if err := writeSSE(w, ev); err != nil {
					return
				}
			case <-keepAlive.C:
				if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
					return
				}
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))
	return nil
}

func writeSSE(w io.Writer, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if ev.ID > 0 {
		if _, err := fmt.Fprintf(w, "id: %d\n", ev.ID); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
	return err
}

// readRequest accepts a JSON body, a multipart upload in field "file", or a
// raw CSV body. Query parameters fill fields the body leaves empty.
func readRequest(c *fiber.Ctx) (forecastRequest, error) {
	var req forecastRequest
	ct := strings.ToLower(c.Get(fiber.HeaderContentType))

	switch {
	case strings.HasPrefix(ct, fiber.MIMEMultipartForm):
		fh, err := c.FormFile("file")
		if err != nil {
			return req, fiber.NewError(fiber.StatusBadRequest, `multipart upload needs a "file" field`)
		}
		format := source.FormatOf(fh.Filename)
		if format == "" {
			return req, fiber.NewError(fiber.StatusUnsupportedMediaType, "unsupported file type: "+fh.Filename)
		}
		f, err := fh.Open()
		if err != nil {
			return req, err
		}
		defer func() { _ = f.Close() }()
		text, err := source.Decode(format, f)
		if err != nil {
			return req, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		req.CSV = text
		req.Source = fh.Filename
		req.Model = c.FormValue("model")
	case strings.HasPrefix(ct, fiber.MIMEApplicationJSON):
		if err := c.BodyParser(&req); err != nil {
			return req, fiber.NewError(fiber.StatusBadRequest, "invalid JSON body: "+err.Error())
		}
	default:
		text, err := source.Decode(source.FormatCSV, bytes.NewReader(c.Body()))
		if err != nil {
			return req, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		req.CSV = text
	}

	if req.Model == "" {
		req.Model = c.Query("model")
	}
	if req.Source == "" {
		req.Source = c.Query("source")
	}
	if req.Seed == nil && c.Query("seed") != "" {
		seed, err := strconv.ParseUint(c.Query("seed"), 10, 64)
		if err != nil {
			return req, fiber.NewError(fiber.StatusBadRequest, "seed must be an unsigned integer")
		}
		req.Seed = &seed
	}
	if req.Save == nil && c.Query("save") != "" {
		save := c.QueryBool("save", true)
		req.Save = &save
	}
	return req, nil
}

func (s *Service) options(req forecastRequest) (pipeline.Options, error) {
	opts := s.cfg.Options
	if req.Model != "" {
		m, err := forecast.ParseModel(req.Model)
		if err != nil {
			return opts, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		opts.Model = m
	}
	if req.Seed != nil {
		opts.Seed = req.Seed
	}
	return opts, nil
}
