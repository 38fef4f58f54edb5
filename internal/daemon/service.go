// Package daemon provides the long-running background PTS monitor service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/ptstrack/internal/model"
	"github.com/theirongolddev/ptstrack/internal/pipeline"
)

// StateSource is where the daemon reads tracker state from.
type StateSource interface {
	Revision(ctx context.Context) (int64, error)
	Load(ctx context.Context) (model.TrackerState, error)
}

// Config controls the daemon runtime behavior.
type Config struct {
	DBPath       string
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	MinMatches   int

	// AllowedOrigins enables CORS for the listed browser origins.
	AllowedOrigins []string
}

// Snapshot is a compact tracker state for status/event payloads.
type Snapshot struct {
	At              time.Time `json:"at"`
	Revision        int64     `json:"revision"`
	CurrentPTS      int       `json:"current_pts"`
	TargetPTS       int       `json:"target_pts"`
	ProgressPercent int       `json:"progress_percent"`
	ClosedDays      int       `json:"closed_days"`
	DayOpen         bool      `json:"day_open"`
	TotalMatches    int       `json:"total_matches"`
	TodayWinrate    int       `json:"today_winrate"`
	WeekWinrate     int       `json:"week_winrate"`
	MonthWinrate    int       `json:"month_winrate"`
	AllTimeWinrate  int       `json:"all_time_winrate"`
	Forecast        string    `json:"forecast"`
	ForecastDays    int       `json:"forecast_days"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	Revisions  int64 `json:"revisions"`
	PTS        int   `json:"pts"`
	TargetPTS  int   `json:"target_pts"`
	Matches    int   `json:"matches"`
	ClosedDays int   `json:"closed_days"`
}

func (d Delta) isZero() bool {
	return d.Revisions == 0 &&
		d.PTS == 0 &&
		d.TargetPTS == 0 &&
		d.Matches == 0 &&
		d.ClosedDays == 0
}

// Event is emitted whenever the tracker snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	DBPath          string    `json:"db_path"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

type metrics struct {
	registry     *prometheus.Registry
	currentPTS   prometheus.Gauge
	targetPTS    prometheus.Gauge
	progress     prometheus.Gauge
	winrate      *prometheus.GaugeVec
	forecastDays prometheus.Gauge
	polls        prometheus.Counter
	pollErrors   prometheus.Counter
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &metrics{
		registry: reg,
		currentPTS: f.NewGauge(prometheus.GaugeOpts{
			Name: "ptstrack_current_pts",
			Help: "Current PTS",
		}),
		targetPTS: f.NewGauge(prometheus.GaugeOpts{
			Name: "ptstrack_target_pts",
			Help: "Target PTS",
		}),
		progress: f.NewGauge(prometheus.GaugeOpts{
			Name: "ptstrack_progress_percent",
			Help: "Progress toward the target PTS",
		}),
		winrate: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ptstrack_winrate_percent",
			Help: "Winrate per time window",
		}, []string{"window"}),
		forecastDays: f.NewGauge(prometheus.GaugeOpts{
			Name: "ptstrack_forecast_days",
			Help: "Estimated days to target, -1 when no estimate is available",
		}),
		polls: f.NewCounter(prometheus.CounterOpts{
			Name: "ptstrack_daemon_polls_total",
			Help: "Total number of state polls",
		}),
		pollErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "ptstrack_daemon_poll_errors_total",
			Help: "Total number of failed state polls",
		}),
	}
}

func (m *metrics) observe(snap Snapshot) {
	m.currentPTS.Set(float64(snap.CurrentPTS))
	m.targetPTS.Set(float64(snap.TargetPTS))
	m.progress.Set(float64(snap.ProgressPercent))
	m.winrate.WithLabelValues("today").Set(float64(snap.TodayWinrate))
	m.winrate.WithLabelValues("week").Set(float64(snap.WeekWinrate))
	m.winrate.WithLabelValues("month").Set(float64(snap.MonthWinrate))
	m.winrate.WithLabelValues("all_time").Set(float64(snap.AllTimeWinrate))
	m.forecastDays.Set(float64(snap.ForecastDays))
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg        Config
	src        StateSource
	log        zerolog.Logger
	forecaster pipeline.Forecaster
	metrics    *metrics
	now        func() time.Time

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	state       model.TrackerState
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service reading from src.
func New(cfg Config, src StateSource, log zerolog.Logger) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 10 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}

	return &Service{
		cfg:        cfg,
		src:        src,
		log:        log,
		forecaster: pipeline.NewForecaster(cfg.MinMatches),
		metrics:    newMetrics(),
		now:        time.Now,
		startedAt:  time.Now(),
		subs:       make(map[int]chan Event),
	}
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Cache-Control"},
			MaxAge:         300,
		}))
	}
	r.Get("/healthz", s.handleHealth)
	r.Get("/v1/status", s.handleStatus)
	r.Get("/v1/events", s.handleEvents)
	r.Get("/v1/stream", s.handleStream)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	return r
}

// Run serves the HTTP API and polls the state until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("daemon listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("daemon http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		// Seed initial snapshot so status is useful immediately.
		s.pollOnce(ctx)

		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				s.pollOnce(ctx)
			}
		}
	})

	return g.Wait()
}

func (s *Service) pollOnce(ctx context.Context) {
	s.metrics.polls.Inc()

	state, rev, err := s.loadState(ctx)
	if err != nil {
		s.metrics.pollErrors.Inc()
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = s.now()
		s.pollCount++
		s.mu.Unlock()
		s.log.Error().Err(err).Msg("daemon poll failed")
		return
	}

	now := s.now()
	snap := snapshotFromState(state, rev, s.forecaster, now)
	s.metrics.observe(snap)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.state = state
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      "snapshot",
			Timestamp: now,
			Snapshot:  snap,
		}
		publish = true
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      "state_delta",
			Timestamp: now,
			Snapshot:  snap,
			Delta:     delta,
		}
		publish = true
	}
	s.mu.Unlock()

	if publish {
		s.log.Debug().
			Int64("event", ev.ID).
			Str("type", ev.Type).
			Int64("revision", rev).
			Int("pts", snap.CurrentPTS).
			Msg("state changed")
		s.publishEvent(ev)
	}
}

// loadState reloads the document only when its revision moved since the
// last successful poll.
func (s *Service) loadState(ctx context.Context) (model.TrackerState, int64, error) {
	rev, err := s.src.Revision(ctx)
	if err != nil {
		return model.TrackerState{}, 0, fmt.Errorf("reading revision: %w", err)
	}

	s.mu.RLock()
	cached, ok := s.state, s.hasSnapshot && s.snapshot.Revision == rev
	s.mu.RUnlock()
	if ok {
		return cached, rev, nil
	}

	state, err := s.src.Load(ctx)
	if err != nil {
		return model.TrackerState{}, 0, fmt.Errorf("loading state: %w", err)
	}
	return state, rev, nil
}

func snapshotFromState(state model.TrackerState, rev int64, f pipeline.Forecaster, at time.Time) Snapshot {
	sum := pipeline.Summarize(state, at, f)
	days := -1
	if sum.Forecast.Kind == model.OutcomeEstimate {
		days = sum.Forecast.Days
	} else if sum.Forecast.Kind == model.OutcomeAlreadyAchieved {
		days = 0
	}
	return Snapshot{
		At:              at,
		Revision:        rev,
		CurrentPTS:      sum.CurrentPTS,
		TargetPTS:       sum.TargetPTS,
		ProgressPercent: sum.ProgressPercent,
		ClosedDays:      sum.ClosedDays,
		DayOpen:         sum.DayOpen,
		TotalMatches:    sum.Periods.AllTime.Count,
		TodayWinrate:    sum.Periods.Today.Percent,
		WeekWinrate:     sum.Periods.Week.Percent,
		MonthWinrate:    sum.Periods.Month.Percent,
		AllTimeWinrate:  sum.Periods.AllTime.Percent,
		Forecast:        sum.Forecast.String(),
		ForecastDays:    days,
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Revisions:  curr.Revision - prev.Revision,
		PTS:        curr.CurrentPTS - prev.CurrentPTS,
		TargetPTS:  curr.TargetPTS - prev.TargetPTS,
		Matches:    curr.TotalMatches - prev.TotalMatches,
		ClosedDays: curr.ClosedDays - prev.ClosedDays,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
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

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		DBPath:          s.cfg.DBPath,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	writeSSE(w, Event{
		Type:      "snapshot",
		Timestamp: s.now(),
		Snapshot:  s.snapshotStatus().Summary,
	})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
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
