package usecases

import (
	"context"
	"sync"
	"time"

	"github.com/hailgo/hailgo/internal/core/domain"
	"github.com/hailgo/hailgo/internal/pkg/geospatial"
)

// SessionConfig tunes the emission cadence of one tracking session.
type SessionConfig struct {
	// UpdateInterval is the real-time cadence between updates at speed
	// factor 1. Defaults to 1s.
	UpdateInterval time.Duration
	// SpeedFactor scales playback: 2 halves the wall-clock interval between
	// ticks. Defaults to 1.
	SpeedFactor float64
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.UpdateInterval <= 0 {
		c.UpdateInterval = time.Second
	}
	if c.SpeedFactor <= 0 {
		c.SpeedFactor = 1
	}
	return c
}

type subscriber struct {
	id int
	fn func(domain.TrackingUpdate)
}

// TrackingSession replays a route estimate's path as a live position feed.
// It is an explicit state machine (idle → running ⇄ paused → finished,
// reset → idle) whose every field is inspectable, driven by a single timer
// goroutine while running. One session belongs to one trip; sessions are
// never shared across trips.
type TrackingSession struct {
	id       string
	path     []domain.GeoPoint
	headings []float64 // degrees, one per path vertex
	cfg      SessionConfig

	mu        sync.Mutex
	idx       int
	status    domain.TrackingStatus
	lastSpeed float64
	subs      []subscriber
	nextSubID int
	cancel    context.CancelFunc // non-nil only while the timer loop runs
	onFinish  func(tripID string)
}

// NewTrackingSession validates the route and precomputes per-vertex
// headings: the bearing toward the next vertex, with the final vertex
// repeating the previous heading since it has nothing to bear toward.
func NewTrackingSession(id string, route domain.RouteEstimate, cfg SessionConfig) (*TrackingSession, error) {
	if len(route.Path) < 2 {
		return nil, domain.ErrInvalidRoute
	}

	path := make([]domain.GeoPoint, len(route.Path))
	copy(path, route.Path)

	headings := make([]float64, len(path))
	for i := 0; i < len(path)-1; i++ {
		headings[i] = geospatial.Bearing(path[i].Lat, path[i].Lon, path[i+1].Lat, path[i+1].Lon)
	}
	headings[len(path)-1] = headings[len(path)-2]

	return &TrackingSession{
		id:       id,
		path:     path,
		headings: headings,
		cfg:      cfg.withDefaults(),
		status:   domain.StatusIdle,
	}, nil
}

// ID returns the session's trip ID.
func (s *TrackingSession) ID() string { return s.id }

// Status returns the current lifecycle state.
func (s *TrackingSession) Status() domain.TrackingStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// CurrentIndex returns the next path vertex to be emitted.
func (s *TrackingSession) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idx
}

// PathLen returns the number of path vertices.
func (s *TrackingSession) PathLen() int { return len(s.path) }

// Start begins (or resumes) emission. No-op unless the session is idle or
// paused.
func (s *TrackingSession) Start() {
	s.mu.Lock()
	if s.status != domain.StatusIdle && s.status != domain.StatusPaused {
		s.mu.Unlock()
		return
	}
	s.status = domain.StatusRunning

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	go s.run(ctx)
}

// Pause stops the timer without resetting progress. No-op unless running.
func (s *TrackingSession) Pause() {
	s.mu.Lock()
	if s.status != domain.StatusRunning {
		s.mu.Unlock()
		return
	}
	s.status = domain.StatusPaused
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Reset returns the session to idle at index 0. Safe from any state and
// idempotent; any active timer is cleared before returning.
func (s *TrackingSession) Reset() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.idx = 0
	s.lastSpeed = 0
	s.status = domain.StatusIdle
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Subscribe registers a callback for every future update — there is no
// replay of past positions. The returned function removes the callback;
// once it returns, no further deliveries reach the callback.
func (s *TrackingSession) Subscribe(fn func(domain.TrackingUpdate)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// run is the session's single timer loop. Intervals are scaled by the speed
// factor; ticks of one session never overlap because they all run here.
func (s *TrackingSession) run(ctx context.Context) {
	interval := time.Duration(float64(s.cfg.UpdateInterval) / s.cfg.SpeedFactor)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Tick(now)
		}
	}
}

// Tick advances the session by one step: emit the current vertex to all
// subscribers (in subscription order, against a snapshot taken under the
// lock) and move to the next, or transition to finished once the path is
// exhausted. Exported so tests and deterministic consumers can single-step
// without a real timer; a no-op unless the session is running.
func (s *TrackingSession) Tick(now time.Time) {
	s.mu.Lock()
	if s.status != domain.StatusRunning {
		s.mu.Unlock()
		return
	}

	if s.idx >= len(s.path) {
		s.status = domain.StatusFinished
		cancel := s.cancel
		s.cancel = nil
		onFinish := s.onFinish
		s.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		if onFinish != nil {
			onFinish(s.id)
		}
		return
	}

	speed := s.lastSpeed
	if s.idx+1 < len(s.path) {
		seg := geospatial.Haversine(
			s.path[s.idx].Lat, s.path[s.idx].Lon,
			s.path[s.idx+1].Lat, s.path[s.idx+1].Lon,
		)
		speed = seg / (s.cfg.UpdateInterval.Seconds() / s.cfg.SpeedFactor)
		s.lastSpeed = speed
	}

	update := domain.TrackingUpdate{
		TripID:    s.id,
		Location:  s.path[s.idx],
		Bearing:   s.headings[s.idx],
		Speed:     speed,
		Index:     s.idx,
		Timestamp: now,
	}

	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.idx++
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(update)
	}
}

// SessionState is an inspectable snapshot of a session for API responses.
type SessionState struct {
	TripID       string                `json:"trip_id"`
	Status       domain.TrackingStatus `json:"status"`
	CurrentIndex int                   `json:"current_index"`
	PathLength   int                   `json:"path_length"`
	Path         []domain.GeoPoint     `json:"path,omitempty"`
}

// State returns a point-in-time snapshot of the session.
func (s *TrackingSession) State(includePath bool) SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := SessionState{
		TripID:       s.id,
		Status:       s.status,
		CurrentIndex: s.idx,
		PathLength:   len(s.path),
	}
	if includePath {
		st.Path = make([]domain.GeoPoint, len(s.path))
		copy(st.Path, s.path)
	}
	return st
}
