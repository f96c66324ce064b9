package store

import (
	"database/sql"
	"fmt"

	"github.com/rowanvale/morrow/internal/model"
)

const eventColumns = `id, series_id, title, description, location, category,
	date, start_time, end_time, repeat_type, repeat_interval, repeat_end_date,
	notification_time, created_at, updated_at`

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

// List returns all events ordered by date then start time.
func (s *EventStore) List() ([]model.Event, error) {
	rows, err := s.db.Query(
		`SELECT ` + eventColumns + ` FROM events ORDER BY date ASC, start_time ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *EventStore) GetByID(id int64) (*model.Event, error) {
	row := s.db.QueryRow(`SELECT `+eventColumns+` FROM events WHERE id = ?`, id)

	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a standalone event from a form draft.
func (s *EventStore) Create(form model.EventForm) (*model.Event, error) {
	result, err := s.db.Exec(
		`INSERT INTO events (series_id, title, description, location, category,
		 date, start_time, end_time, repeat_type, repeat_interval, repeat_end_date, notification_time)
		 VALUES ('', ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		form.Title, form.Description, form.Location, form.Category,
		form.Date, form.StartTime, form.EndTime,
		string(form.Repeat.Type), form.Repeat.Interval, form.Repeat.EndDate,
		form.NotificationTime,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(id)
}

// CreateBulk inserts all events in one transaction; either the whole series
// is stored or none of it.
func (s *EventStore) CreateBulk(events []model.Event) ([]model.Event, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin bulk insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO events (series_id, title, description, location, category,
		 date, start_time, end_time, repeat_type, repeat_interval, repeat_end_date, notification_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return nil, fmt.Errorf("prepare bulk insert: %w", err)
	}
	defer stmt.Close()

	ids := make([]int64, 0, len(events))
	for _, e := range events {
		result, err := stmt.Exec(
			e.SeriesID, e.Title, e.Description, e.Location, e.Category,
			e.Date, e.StartTime, e.EndTime,
			string(e.Repeat.Type), e.Repeat.Interval, e.Repeat.EndDate,
			e.NotificationTime,
		)
		if err != nil {
			return nil, fmt.Errorf("insert event %s: %w", e.Date, err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit bulk insert: %w", err)
	}

	created := make([]model.Event, 0, len(ids))
	for _, id := range ids {
		e, err := s.GetByID(id)
		if err != nil {
			return nil, err
		}
		created = append(created, *e)
	}
	return created, nil
}

// Update replaces every stored field of one event, including its series
// membership, so callers can persist a detached copy.
func (s *EventStore) Update(id int64, e model.Event) (*model.Event, error) {
	_, err := s.db.Exec(
		`UPDATE events
		 SET series_id = ?, title = ?, description = ?, location = ?, category = ?,
		     date = ?, start_time = ?, end_time = ?,
		     repeat_type = ?, repeat_interval = ?, repeat_end_date = ?,
		     notification_time = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		e.SeriesID, e.Title, e.Description, e.Location, e.Category,
		e.Date, e.StartTime, e.EndTime,
		string(e.Repeat.Type), e.Repeat.Interval, e.Repeat.EndDate,
		e.NotificationTime, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	return s.GetByID(id)
}

func (s *EventStore) Delete(id int64) error {
	_, err := s.db.Exec("DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// UpdateSeries applies the shared fields to every record in a series. Each
// instance keeps its own date.
func (s *EventStore) UpdateSeries(seriesID string, fields model.EventForm) ([]model.Event, error) {
	if seriesID == "" {
		return nil, fmt.Errorf("update series: empty series id")
	}

	_, err := s.db.Exec(
		`UPDATE events
		 SET title = ?, description = ?, location = ?, category = ?,
		     start_time = ?, end_time = ?,
		     repeat_type = ?, repeat_interval = ?, repeat_end_date = ?,
		     notification_time = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE series_id = ?`,
		fields.Title, fields.Description, fields.Location, fields.Category,
		fields.StartTime, fields.EndTime,
		string(fields.Repeat.Type), fields.Repeat.Interval, fields.Repeat.EndDate,
		fields.NotificationTime, seriesID,
	)
	if err != nil {
		return nil, fmt.Errorf("update series: %w", err)
	}

	return s.ListBySeries(seriesID)
}

// DeleteSeries removes every record in a series.
func (s *EventStore) DeleteSeries(seriesID string) error {
	if seriesID == "" {
		return fmt.Errorf("delete series: empty series id")
	}
	_, err := s.db.Exec("DELETE FROM events WHERE series_id = ?", seriesID)
	if err != nil {
		return fmt.Errorf("delete series: %w", err)
	}
	return nil
}

func (s *EventStore) ListBySeries(seriesID string) ([]model.Event, error) {
	rows, err := s.db.Query(
		`SELECT `+eventColumns+` FROM events WHERE series_id = ? ORDER BY date ASC`,
		seriesID,
	)
	if err != nil {
		return nil, fmt.Errorf("query series: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (model.Event, error) {
	var e model.Event
	var repeatType string

	err := row.Scan(
		&e.ID, &e.SeriesID, &e.Title, &e.Description, &e.Location, &e.Category,
		&e.Date, &e.StartTime, &e.EndTime,
		&repeatType, &e.Repeat.Interval, &e.Repeat.EndDate,
		&e.NotificationTime, &e.CreatedAt, &e.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return e, err
	}
	if err != nil {
		return e, fmt.Errorf("scan event: %w", err)
	}

	e.Repeat.Type = model.RepeatType(repeatType)
	return e, nil
}
