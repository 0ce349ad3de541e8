// Package sqlite is the file-backed event store used by the admin
// surface. Identity and rating columns are relational; the rest of the
// record rides along as a JSON payload.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/formansean/ufo-timline/internal/model"
	"github.com/formansean/ufo-timline/internal/store"
)

// Open opens (or creates) a SQLite database in WAL mode and verifies
// connectivity.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		return nil, errors.New("sqlite path is empty")
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS events (
    event_id   TEXT PRIMARY KEY,
    title      TEXT NOT NULL,
    category   TEXT NOT NULL,
    event_date TEXT NOT NULL,
    likes      INTEGER NOT NULL DEFAULT 0,
    dislikes   INTEGER NOT NULL DEFAULT 0,
    payload    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_category ON events(category);
`

// EnsureSchema creates the events table and indexes if missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return errors.Wrap(err, "ensure schema")
}

// NewWithDB constructs a SQLite store backed directly by database/sql.
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

// Store is the sqlite-backed event store.
type Store struct{ db *sql.DB }

// Events returns the event collection.
func (s *Store) Events() store.Events { return &events{db: s.db} }

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// HealthPing verifies database connectivity.
func (s *Store) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type events struct{ db *sql.DB }

func encode(ev *model.Event) (string, error) {
	raw, err := json.Marshal(ev)
	if err != nil {
		return "", errors.Wrap(err, "encode event")
	}
	return string(raw), nil
}

func scanEvent(row *sql.Row) (*model.Event, error) {
	var payload string
	var likes, dislikes int
	if err := row.Scan(&payload, &likes, &dislikes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	var ev model.Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return nil, errors.Wrap(err, "decode event")
	}
	ev.Likes, ev.Dislikes = likes, dislikes
	return &ev, nil
}

func (e *events) All(ctx context.Context) ([]model.Event, error) {
	rows, err := e.db.QueryContext(ctx, `
        SELECT payload, likes, dislikes FROM events ORDER BY rowid
    `)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Event
	for rows.Next() {
		var payload string
		var likes, dislikes int
		if err := rows.Scan(&payload, &likes, &dislikes); err != nil {
			return nil, err
		}
		var ev model.Event
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			return nil, errors.Wrap(err, "decode event")
		}
		ev.Likes, ev.Dislikes = likes, dislikes
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (e *events) List(ctx context.Context, q store.ListQuery) ([]model.Event, int, error) {
	var where []string
	var args []any
	if q.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(q.Category))
	}
	if term := strings.TrimSpace(q.Search); term != "" {
		// LIKE is case-insensitive for ASCII in SQLite.
		where = append(where, "(title LIKE ? OR payload LIKE ?)")
		pat := "%" + term + "%"
		args = append(args, pat, pat)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := e.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events"+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT payload, likes, dislikes FROM events" + clause + " ORDER BY rowid"
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
		if q.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", q.Offset)
		}
	} else if q.Offset > 0 {
		query += fmt.Sprintf(" LIMIT -1 OFFSET %d", q.Offset)
	}

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Event
	for rows.Next() {
		var payload string
		var likes, dislikes int
		if err := rows.Scan(&payload, &likes, &dislikes); err != nil {
			return nil, 0, err
		}
		var ev model.Event
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			return nil, 0, errors.Wrap(err, "decode event")
		}
		ev.Likes, ev.Dislikes = likes, dislikes
		out = append(out, ev)
	}
	return out, total, rows.Err()
}

func (e *events) Get(ctx context.Context, id string) (*model.Event, error) {
	row := e.db.QueryRowContext(ctx, `
        SELECT payload, likes, dislikes FROM events WHERE event_id = ?
    `, id)
	ev, err := scanEvent(row)
	if err != nil {
		return nil, errors.Wrapf(err, "event %q", id)
	}
	return ev, nil
}

func (e *events) Create(ctx context.Context, ev *model.Event) (*model.Event, error) {
	out := *ev
	if out.ID == "" {
		out.ID = uuid.NewString()
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	payload, err := encode(&out)
	if err != nil {
		return nil, err
	}
	_, err = e.db.ExecContext(ctx, `
        INSERT INTO events (event_id, title, category, event_date, likes, dislikes, payload)
        VALUES (?,?,?,?,?,?,?)
    `, out.ID, out.Title, string(out.Category), out.Date, out.Likes, out.Dislikes, payload)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, errors.Wrapf(model.ErrConflict, "event %q", out.ID)
		}
		return nil, err
	}
	return &out, nil
}

func (e *events) Update(ctx context.Context, ev *model.Event) (*model.Event, error) {
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	out := *ev
	payload, err := encode(&out)
	if err != nil {
		return nil, err
	}
	res, err := e.db.ExecContext(ctx, `
        UPDATE events
        SET title = ?, category = ?, event_date = ?, likes = ?, dislikes = ?, payload = ?
        WHERE event_id = ?
    `, out.Title, string(out.Category), out.Date, out.Likes, out.Dislikes, payload, out.ID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, errors.Wrapf(model.ErrNotFound, "event %q", out.ID)
	}
	return &out, nil
}

func (e *events) Delete(ctx context.Context, id string) error {
	res, err := e.db.ExecContext(ctx, `DELETE FROM events WHERE event_id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Wrapf(model.ErrNotFound, "event %q", id)
	}
	return nil
}

func (e *events) Rate(ctx context.Context, id string, likeDelta, dislikeDelta int) (*model.Event, error) {
	res, err := e.db.ExecContext(ctx,
		`UPDATE events SET likes = MAX(0, likes + ?), dislikes = MAX(0, dislikes + ?) WHERE event_id = ?`,
		likeDelta, dislikeDelta, id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, errors.Wrapf(model.ErrNotFound, "event %q", id)
	}
	return e.Get(ctx, id)
}
