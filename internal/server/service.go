// Package server provides the long-running forecast service: an HTTP API,
// an optional inbox poller and a server-sent event stream.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/theirongolddev/demandcast/internal/config"
	"github.com/theirongolddev/demandcast/internal/model"
	"github.com/theirongolddev/demandcast/internal/pipeline"
	"github.com/theirongolddev/demandcast/internal/store"
)

// Event types.
const (
	EventForecast = "forecast"
	EventFailed   = "forecast_failed"
	EventDeleted  = "deleted"
	EventHello    = "hello"
)

// Config controls the service runtime behavior.
type Config struct {
	Addr         string
	InboxDir     string
	Interval     time.Duration
	EventsBuffer int
	Options      pipeline.Options
	Catalog      []config.Benchmark
	Store        *store.Store // nil disables history endpoints and the inbox
	Logger       *slog.Logger
	AccessLog    io.Writer // nil disables the request logger
}

// Event is emitted whenever a forecast is produced, fails or is deleted.
type Event struct {
	ID             int64     `json:"id"`
	Type           string    `json:"type"`
	Timestamp      time.Time `json:"timestamp"`
	ForecastID     string    `json:"forecast_id,omitempty"`
	Source         string    `json:"source,omitempty"`
	Model          string    `json:"model,omitempty"`
	PredictedUnits int       `json:"predicted_units,omitempty"`
	SalesTrend     string    `json:"sales_trend,omitempty"`
	Error          string    `json:"error,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	InboxDir        string    `json:"inbox_dir,omitempty"`
	DefaultModel    string    `json:"default_model"`
	History         bool      `json:"history"`
	Served          int64     `json:"served"`
	StoredForecasts int       `json:"stored_forecasts"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the runtime and HTTP API.
type Service struct {
	cfg Config
	log *slog.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	served      int64
	lastError   string
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event

	stop     chan struct{}
	stopOnce sync.Once
}

// New returns a service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 15 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.Catalog == nil {
		cfg.Catalog = config.Catalog(config.DefaultConfig())
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		cfg:       cfg,
		log:       logger,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
		stop:      make(chan struct{}),
	}
}

// Run serves the HTTP API and polls the inbox until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.InboxDir != "" && s.cfg.Store == nil {
		return errors.New("inbox polling needs forecast history enabled")
	}

	app := s.App()
	errCh := make(chan error, 1)
	go func() {
		if err := app.Listen(s.cfg.Addr); err != nil {
			errCh <- err
		}
	}()
	s.log.Info("listening", "addr", s.cfg.Addr, "model", s.cfg.Options.Model.String(), "history", s.cfg.Store != nil)

	var tick <-chan time.Time
	if s.cfg.InboxDir != "" {
		s.pollOnce()
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		tick = ticker.C
		s.log.Info("watching inbox", "dir", s.cfg.InboxDir, "interval", s.cfg.Interval)
	}

	for {
		select {
		case <-ctx.Done():
			s.shutdownStreams()
			return app.ShutdownWithTimeout(5 * time.Second)
		case <-tick:
			s.pollOnce()
		case err := <-errCh:
			s.shutdownStreams()
			return fmt.Errorf("http server: %w", err)
		}
	}
}

func (s *Service) shutdownStreams() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// pollOnce forecasts inbox files that are new or changed since the last poll.
func (s *Service) pollOnce() {
	now := time.Now()
	var res *pipeline.IncrementalResult
	info, err := os.Stat(s.cfg.InboxDir)
	switch {
	case err != nil:
		err = fmt.Errorf("inbox: %w", err)
	case !info.IsDir():
		err = fmt.Errorf("inbox %s is not a directory", s.cfg.InboxDir)
	default:
		res, err = pipeline.LoadIncremental(s.cfg.InboxDir, s.cfg.Options, s.cfg.Store, nil)
	}

	s.mu.Lock()
	s.lastPollAt = now
	s.pollCount++
	if err != nil {
		s.lastError = err.Error()
	} else {
		s.lastError = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Error("inbox poll failed", "dir", s.cfg.InboxDir, "err", err)
		return
	}

	for _, fr := range res.Results {
		s.publishEvent(forecastEvent(fr.Record))
	}
	for _, fr := range res.Failed {
		s.publishEvent(Event{Type: EventFailed, Source: fr.File.Path, Model: s.cfg.Options.Model.String(), Error: fr.Err.Error()})
		s.log.Warn("inbox file rejected", "file", fr.File.Path, "err", fr.Err)
	}
	if res.Forecast > 0 || res.SaveErrors > 0 {
		s.log.Info("inbox poll",
			"files", res.TotalFiles,
			"forecast", len(res.Results),
			"failed", len(res.Failed),
			"unchanged", res.Unchanged,
			"save_errors", res.SaveErrors,
			"took", time.Since(now).Round(time.Millisecond))
	}
}

func forecastEvent(rec model.ForecastRecord) Event {
	return Event{
		Type:           EventForecast,
		ForecastID:     rec.ID,
		Source:         rec.Source,
		Model:          rec.Model,
		PredictedUnits: rec.Result.PredictedUnits,
		SalesTrend:     rec.Result.SalesTrend,
	}
}

// publishEvent numbers ev, appends it to the ring buffer and offers it to
// every subscriber without blocking.
func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.nextEventID++
	ev.ID = s.nextEventID
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

// eventsSince returns buffered events with an ID greater than after.
func (s *Service) eventsSince(after int64) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Event, 0, len(s.events))
	for _, ev := range s.events {
		if ev.ID > after {
			out = append(out, ev)
		}
	}
	return out
}

func (s *Service) snapshotStatus() Status {
	stored := 0
	if s.cfg.Store != nil {
		if n, err := s.cfg.Store.ForecastCount(); err == nil {
			stored = n
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollCount:       s.pollCount,
		InboxDir:        s.cfg.InboxDir,
		DefaultModel:    s.cfg.Options.Model.String(),
		History:         s.cfg.Store != nil,
		Served:          s.served,
		StoredForecasts: stored,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
	if s.cfg.InboxDir != "" {
		st.PollIntervalSec = int(s.cfg.Interval.Seconds())
	}
	return st
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
