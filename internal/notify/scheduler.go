package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rowanvale/morrow/internal/model"
	"github.com/rowanvale/morrow/internal/store"
	"github.com/rowanvale/morrow/internal/websocket"
)

const datetimeLayout = "2006-01-02 15:04"

// Broadcaster pushes reminder notifications to connected clients.
type Broadcaster interface {
	Broadcast(msg websocket.Message)
}

// reminderKey identifies one scheduled alert. The date and start time are
// part of the key so a rescheduled event earns a fresh reminder at its new
// slot instead of staying silenced by the one that already fired.
type reminderKey struct {
	id        int64
	date      string
	startTime string
}

// Scheduler periodically scans for events whose notification lead time has
// arrived and pushes a reminder to connected clients. Each slot is reminded
// at most once, and fired entries are dropped once the event starts.
type Scheduler struct {
	mu       sync.Mutex
	events   *store.EventStore
	hub      Broadcaster
	interval time.Duration
	clock    func() time.Time
	logger   *slog.Logger
	notified map[reminderKey]time.Time // value is the event start, for pruning
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewScheduler(events *store.EventStore, hub Broadcaster, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		events:   events,
		hub:      hub,
		interval: 30 * time.Second,
		clock:    time.Now,
		logger:   logger,
		notified: make(map[reminderKey]time.Time),
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick() {
	events, err := s.events.List()
	if err != nil {
		s.logger.Error("list events for reminders", "error", err)
		return
	}

	now := s.clock()
	s.prune(now)

	for _, r := range dueReminders(events, now) {
		key := reminderKey{r.event.ID, r.event.Date, r.event.StartTime}
		s.mu.Lock()
		_, seen := s.notified[key]
		if !seen {
			s.notified[key] = r.start
		}
		s.mu.Unlock()
		if seen {
			continue
		}

		e := r.event
		s.logger.Info("event reminder", "id", e.ID, "title", e.Title, "starts", e.Date+" "+e.StartTime)
		s.hub.Broadcast(websocket.Reminder(e.ID, e.Title, e.NotificationTime))
	}
}

// prune drops fired entries whose event has already started, keeping the
// dedup map bounded on a long-running server.
func (s *Scheduler) prune(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, start := range s.notified {
		if !now.Before(start) {
			delete(s.notified, key)
		}
	}
}

type reminder struct {
	event model.Event
	start time.Time
}

// dueReminders returns the events whose reminder window is open: the current
// time is at or past start minus the lead minutes, and the event has not
// started yet. Events with unparseable dates are skipped.
func dueReminders(events []model.Event, now time.Time) []reminder {
	var due []reminder
	for _, e := range events {
		start, err := time.ParseInLocation(datetimeLayout, e.Date+" "+e.StartTime, now.Location())
		if err != nil {
			continue
		}
		notifyAt := start.Add(-time.Duration(e.NotificationTime) * time.Minute)
		if !now.Before(notifyAt) && now.Before(start) {
			due = append(due, reminder{event: e, start: start})
		}
	}
	return due
}
