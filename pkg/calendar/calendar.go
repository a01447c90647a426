// Package calendar is the calendar collaborator for the scheduling flow.
// The Service interface stands in for a device calendar; Local is a
// SQLite-backed implementation with a seeded default calendar.
package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Calendar is one event calendar.
type Calendar struct {
	ID    string `db:"id" json:"id"`
	Title string `db:"title" json:"title"`
	Color string `db:"color" json:"color"`
}

// Event is a calendar event to create.
type Event struct {
	Title     string
	Notes     string
	StartDate time.Time
	EndDate   time.Time
}

// Service creates events on a calendar.
type Service interface {
	Calendars(ctx context.Context) ([]Calendar, error)
	CreateEvent(ctx context.Context, calendarID string, ev Event) (string, error)
	Close() error
}

const calendarSchema = `
CREATE TABLE IF NOT EXISTS calendars (
    id    TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    color TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS events (
    id          TEXT PRIMARY KEY,
    calendar_id TEXT NOT NULL REFERENCES calendars(id),
    title       TEXT NOT NULL,
    notes       TEXT NOT NULL DEFAULT '',
    start_at    DATETIME NOT NULL,
    end_at      DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_calendar ON events(calendar_id);
CREATE INDEX IF NOT EXISTS idx_events_start ON events(start_at);
`

// Local implements Service on a SQLite database.
type Local struct {
	db *sqlx.DB
}

// OpenLocal opens the local calendar database at path, creating it and a
// default calendar if needed.
func OpenLocal(path string) (*Local, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open calendar db %s: %w", path, err)
	}

	if _, err := db.Exec(calendarSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run calendar migrations: %w", err)
	}

	l := &Local{db: db}
	if err := l.seed(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

func (l *Local) seed() error {
	var count int
	if err := l.db.Get(&count, "SELECT COUNT(*) FROM calendars"); err != nil {
		return fmt.Errorf("count calendars: %w", err)
	}
	if count > 0 {
		return nil
	}
	_, err := l.db.Exec(
		"INSERT INTO calendars (id, title, color) VALUES (?, ?, ?)",
		uuid.NewString(), "Ressa", "#232946",
	)
	if err != nil {
		return fmt.Errorf("seed default calendar: %w", err)
	}
	return nil
}

func (l *Local) Close() error {
	return l.db.Close()
}

// Calendars lists the available calendars.
func (l *Local) Calendars(ctx context.Context) ([]Calendar, error) {
	var calendars []Calendar
	if err := l.db.SelectContext(ctx, &calendars, "SELECT * FROM calendars ORDER BY title"); err != nil {
		return nil, fmt.Errorf("list calendars: %w", err)
	}
	return calendars, nil
}

// CreateEvent inserts an event into the given calendar and returns its id.
func (l *Local) CreateEvent(ctx context.Context, calendarID string, ev Event) (string, error) {
	var exists int
	if err := l.db.GetContext(ctx, &exists, "SELECT COUNT(*) FROM calendars WHERE id = ?", calendarID); err != nil {
		return "", fmt.Errorf("check calendar %s: %w", calendarID, err)
	}
	if exists == 0 {
		return "", fmt.Errorf("calendar %s not found", calendarID)
	}

	id := uuid.NewString()
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO events (id, calendar_id, title, notes, start_at, end_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, calendarID, ev.Title, ev.Notes, ev.StartDate.UTC(), ev.EndDate.UTC())
	if err != nil {
		return "", fmt.Errorf("create event: %w", err)
	}
	return id, nil
}
