package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	// DefaultLimit is used by Recent when limit <= 0.
	DefaultLimit = 50

	// MaxLimit caps Recent.
	MaxLimit = 200
)

// Entry is one journal row.
type Entry struct {
	ID            int64     `json:"id"`
	Kind          string    `json:"kind"`
	Action        string    `json:"action,omitempty"`
	Source        string    `json:"source,omitempty"`
	LEDOn         bool      `json:"led_state"`
	RelayOn       bool      `json:"relay_state"`
	AnalogValue   int       `json:"analog_value"`
	ButtonPressed bool      `json:"button_pressed"`
	CreatedAt     time.Time `json:"created_at"`
}

// Journal stores entries in the events table.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a journal over an open, migrated SQLite connection.
//
// Parameters:
//   - db: Open SQLite connection used for queries
//
// Returns:
//   - *Journal: Journal ready for use
func New(db *sql.DB) *Journal {
	return &Journal{db: db, now: time.Now}
}

// Record appends an entry. A zero CreatedAt is stamped with the current time.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - e: Entry to persist (ID is ignored)
//
// Returns:
//   - error: nil on success, ErrKindRequired or the underlying database error
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if e.Kind == "" {
		return ErrKindRequired
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = j.now()
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO events
		 (kind, action, source, led_on, relay_on, analog_value, button_pressed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Kind,
		e.Action,
		e.Source,
		boolToInt(e.LEDOn),
		boolToInt(e.RelayOn),
		e.AnalogValue,
		boolToInt(e.ButtonPressed),
		created.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("inserting journal entry: %w", err)
	}
	return nil
}

// Recent returns the newest entries first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - limit: Maximum entries to return (default 50, max 200)
//
// Returns:
//   - []Entry: Entries ordered newest first
//   - error: nil on success, otherwise the underlying query error
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, kind, action, source, led_on, relay_on, analog_value, button_pressed, created_at
		 FROM events
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			e                   Entry
			led, relay, pressed int
			createdMillis       int64
		)
		if err := rows.Scan(&e.ID, &e.Kind, &e.Action, &e.Source,
			&led, &relay, &e.AnalogValue, &pressed, &createdMillis); err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}
		e.LEDOn = led != 0
		e.RelayOn = relay != 0
		e.ButtonPressed = pressed != 0
		e.CreatedAt = time.UnixMilli(createdMillis).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal: %w", err)
	}

	return entries, nil
}

// Prune deletes entries older than now-olderThan.
//
// Returns:
//   - int64: Number of rows deleted
//   - error: nil on success, ErrInvalidRetention or the underlying database error
func (j *Journal) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, ErrInvalidRetention
	}

	cutoff := j.now().UTC().Add(-olderThan).UnixMilli()
	result, err := j.db.ExecContext(ctx, "DELETE FROM events WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting journal entries: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
