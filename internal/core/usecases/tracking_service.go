package usecases

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/hailgo/hailgo/internal/core/domain"
	"github.com/hailgo/hailgo/internal/core/ports"
)

// TrackingService owns the registry of live tracking sessions, keyed by
// trip ID. Each created session is wired to the event publisher so every
// tick fans out to NATS in addition to in-process subscribers.
type TrackingService struct {
	mu        sync.RWMutex
	sessions  map[string]*TrackingSession
	publisher ports.EventPublisher
	defaults  SessionConfig
	logger    *slog.Logger
}

// NewTrackingService builds a registry. publisher may be nil, in which case
// updates are delivered to in-process subscribers only.
func NewTrackingService(publisher ports.EventPublisher, defaults SessionConfig, logger *slog.Logger) *TrackingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TrackingService{
		sessions:  make(map[string]*TrackingSession),
		publisher: publisher,
		defaults:  defaults.withDefaults(),
		logger:    logger,
	}
}

// Create registers a new session replaying the given route. The session
// starts idle; callers start it explicitly.
func (t *TrackingService) Create(ctx context.Context, route domain.RouteEstimate) (*TrackingSession, error) {
	tripID := uuid.NewString()

	sess, err := NewTrackingSession(tripID, route, t.defaults)
	if err != nil {
		return nil, err
	}

	if t.publisher != nil {
		sess.Subscribe(func(u domain.TrackingUpdate) {
			if err := t.publisher.PublishTrackingUpdate(context.Background(), &u); err != nil {
				t.logger.Warn("failed to publish tracking update",
					slog.String("trip_id", u.TripID),
					slog.Int("index", u.Index),
					slog.String("error", err.Error()))
			}
		})
		sess.onFinish = func(tripID string) {
			if err := t.publisher.PublishTripFinished(context.Background(), tripID); err != nil {
				t.logger.Warn("failed to publish trip finished",
					slog.String("trip_id", tripID),
					slog.String("error", err.Error()))
			}
		}
	}

	t.mu.Lock()
	t.sessions[tripID] = sess
	t.mu.Unlock()

	t.logger.Info("tracking session created",
		slog.String("trip_id", tripID),
		slog.Int("path_points", sess.PathLen()))

	t.announce("trip_created", tripID)

	return sess, nil
}

// fleetEvent is the payload announced on the broadcast subject so dashboard
// clients can track the fleet roster without subscribing per trip.
type fleetEvent struct {
	Event  string `json:"event"`
	TripID string `json:"trip_id"`
}

func (t *TrackingService) announce(event, tripID string) {
	if t.publisher == nil {
		return
	}
	data, err := json.Marshal(fleetEvent{Event: event, TripID: tripID})
	if err != nil {
		return
	}
	if err := t.publisher.PublishBroadcast(context.Background(), data); err != nil {
		t.logger.Warn("failed to publish fleet event",
			slog.String("event", event),
			slog.String("trip_id", tripID),
			slog.String("error", err.Error()))
	}
}

// Get looks up a session by trip ID.
func (t *TrackingService) Get(tripID string) (*TrackingSession, error) {
	t.mu.RLock()
	sess, ok := t.sessions[tripID]
	t.mu.RUnlock()
	if !ok {
		return nil, domain.ErrTripNotFound
	}
	return sess, nil
}

// Remove stops and deletes a session. Removing an unknown trip ID is a
// no-op.
func (t *TrackingService) Remove(tripID string) {
	t.mu.Lock()
	sess, ok := t.sessions[tripID]
	delete(t.sessions, tripID)
	t.mu.Unlock()

	if ok {
		sess.Reset()
		t.announce("trip_removed", tripID)
	}
}

// Count returns the number of registered sessions.
func (t *TrackingService) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}

// List snapshots all sessions, without paths.
func (t *TrackingService) List() []SessionState {
	t.mu.RLock()
	sessions := make([]*TrackingSession, 0, len(t.sessions))
	for _, s := range t.sessions {
		sessions = append(sessions, s)
	}
	t.mu.RUnlock()

	states := make([]SessionState, 0, len(sessions))
	for _, s := range sessions {
		states = append(states, s.State(false))
	}
	return states
}
