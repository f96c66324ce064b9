package notify

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/rowanvale/morrow/internal/database"
	"github.com/rowanvale/morrow/internal/model"
	"github.com/rowanvale/morrow/internal/store"
	"github.com/rowanvale/morrow/internal/websocket"
)

func reminderEvent(id int64, date, start string, lead int) model.Event {
	return model.Event{
		ID:               id,
		Title:            "event",
		Date:             date,
		StartTime:        start,
		EndTime:          "23:59",
		Repeat:           model.None(),
		NotificationTime: lead,
	}
}

func TestDueReminders(t *testing.T) {
	now := time.Date(2024, 11, 7, 9, 50, 0, 0, time.UTC)

	events := []model.Event{
		reminderEvent(1, "2024-11-07", "10:00", 10),  // window just opened
		reminderEvent(2, "2024-11-07", "10:00", 5),   // not yet
		reminderEvent(3, "2024-11-07", "09:30", 10),  // already started
		reminderEvent(4, "2024-11-08", "10:00", 10),  // tomorrow
		reminderEvent(5, "2024-11-07", "11:00", 120), // long lead, window already open
	}

	due := dueReminders(events, now)
	if len(due) != 2 {
		ids := make([]int64, len(due))
		for i, r := range due {
			ids[i] = r.event.ID
		}
		t.Fatalf("due = %v, want [1 5]", ids)
	}
	if due[0].event.ID != 1 || due[1].event.ID != 5 {
		t.Errorf("due ids = [%d %d], want [1 5]", due[0].event.ID, due[1].event.ID)
	}
}

func TestDueRemindersExactBoundaries(t *testing.T) {
	start := time.Date(2024, 11, 7, 10, 0, 0, 0, time.UTC)
	e := reminderEvent(1, "2024-11-07", "10:00", 10)

	// Exactly at the notification instant: due.
	if got := dueReminders([]model.Event{e}, start.Add(-10*time.Minute)); len(got) != 1 {
		t.Error("reminder should fire exactly at start minus lead")
	}
	// Exactly at start: no longer due.
	if got := dueReminders([]model.Event{e}, start); len(got) != 0 {
		t.Error("reminder should not fire once the event has started")
	}
}

func TestDueRemindersSkipsMalformedDates(t *testing.T) {
	now := time.Date(2024, 11, 7, 9, 50, 0, 0, time.UTC)
	e := reminderEvent(1, "someday", "10:00", 10)

	if got := dueReminders([]model.Event{e}, now); len(got) != 0 {
		t.Errorf("malformed date produced %d reminders", len(got))
	}
}

type captureBroadcaster struct {
	msgs []websocket.Message
}

func (c *captureBroadcaster) Broadcast(msg websocket.Message) {
	c.msgs = append(c.msgs, msg)
}

func setupScheduler(t *testing.T) (*Scheduler, *store.EventStore, *captureBroadcaster) {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	st := store.NewEventStore(db)
	hub := &captureBroadcaster{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewScheduler(st, hub, logger), st, hub
}

func TestTickRemindsOncePerSlot(t *testing.T) {
	s, st, hub := setupScheduler(t)

	if _, err := st.Create(model.EventForm{
		Title:            "standup",
		Date:             "2024-11-07",
		StartTime:        "10:00",
		EndTime:          "10:30",
		Repeat:           model.None(),
		NotificationTime: 10,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	now := time.Date(2024, 11, 7, 9, 55, 0, 0, time.UTC)
	s.clock = func() time.Time { return now }

	s.tick()
	s.tick()
	if len(hub.msgs) != 1 {
		t.Fatalf("broadcast %d reminders across two ticks, want 1", len(hub.msgs))
	}
	if hub.msgs[0].Type != "event_reminder" {
		t.Errorf("message type = %q, want event_reminder", hub.msgs[0].Type)
	}

	// Once the event has started, its fired entry is dropped.
	now = time.Date(2024, 11, 7, 10, 5, 0, 0, time.UTC)
	s.tick()
	if len(s.notified) != 0 {
		t.Errorf("notified map holds %d entries after the event started, want 0", len(s.notified))
	}
	if len(hub.msgs) != 1 {
		t.Errorf("broadcast %d reminders after the event started, want 1", len(hub.msgs))
	}
}

func TestTickRemindsAgainAfterReschedule(t *testing.T) {
	s, st, hub := setupScheduler(t)

	created, err := st.Create(model.EventForm{
		Title:            "dentist",
		Date:             "2024-11-07",
		StartTime:        "10:00",
		EndTime:          "11:00",
		Repeat:           model.None(),
		NotificationTime: 10,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	now := time.Date(2024, 11, 7, 9, 55, 0, 0, time.UTC)
	s.clock = func() time.Time { return now }
	s.tick()
	if len(hub.msgs) != 1 {
		t.Fatalf("broadcast %d reminders before the edit, want 1", len(hub.msgs))
	}

	// Pushing the event to a later slot re-arms its reminder.
	moved := *created
	moved.StartTime = "10:30"
	moved.EndTime = "11:30"
	moved.NotificationTime = 60
	if _, err := st.Update(created.ID, moved); err != nil {
		t.Fatalf("update: %v", err)
	}

	s.tick()
	if len(hub.msgs) != 2 {
		t.Fatalf("broadcast %d reminders after the edit, want 2", len(hub.msgs))
	}
	if hub.msgs[1].ID != created.ID {
		t.Errorf("second reminder id = %d, want %d", hub.msgs[1].ID, created.ID)
	}
}
