// Package memory is the in-memory event store. It seeds from a JSON
// dataset (an embedded fallback or a file on disk) and can hot-reload
// the file wholesale when it changes.
package memory

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/formansean/ufo-timline/internal/model"
	"github.com/formansean/ufo-timline/internal/store"
)

// Store keeps all events in memory, in insertion order.
type Store struct {
	mu     sync.RWMutex
	events []model.Event
	byID   map[string]int
	path   string
}

// New builds an empty store.
func New() *Store {
	return &Store{byID: make(map[string]int)}
}

// NewFromEvents seeds a store with a dataset. Events without IDs get one
// minted; invalid events are rejected.
func NewFromEvents(events []model.Event) (*Store, error) {
	s := New()
	if err := s.replace(events); err != nil {
		return nil, err
	}
	return s, nil
}

// NewFromFile seeds a store from a JSON array on disk and remembers the
// path for Reload.
func NewFromFile(path string) (*Store, error) {
	s := New()
	s.path = path
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the seed file and replaces the dataset wholesale.
func (s *Store) Reload() error {
	if s.path == "" {
		return errors.New("memory store has no seed file")
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return errors.Wrap(err, "read seed file")
	}
	var events []model.Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return errors.Wrap(err, "parse seed file")
	}
	return s.replace(events)
}

func (s *Store) replace(events []model.Event) error {
	next := make([]model.Event, 0, len(events))
	byID := make(map[string]int, len(events))
	for i := range events {
		ev := events[i]
		if ev.ID == "" {
			ev.ID = uuid.NewString()
		}
		if err := ev.Validate(); err != nil {
			return errors.Wrapf(err, "event %d (%q)", i, ev.Title)
		}
		if _, dup := byID[ev.ID]; dup {
			return errors.Wrapf(model.ErrConflict, "duplicate event id %q", ev.ID)
		}
		byID[ev.ID] = len(next)
		next = append(next, ev)
	}
	s.mu.Lock()
	s.events = next
	s.byID = byID
	s.mu.Unlock()
	return nil
}

// Watch hot-reloads the seed file on change until ctx is done. Bad
// intermediate writes are logged and skipped; the last good dataset
// stays live. onReload, if non-nil, runs after each successful reload.
func (s *Store) Watch(ctx context.Context, log zerolog.Logger, onReload func()) error {
	if s.path == "" {
		return errors.New("memory store has no seed file")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	// Watch the directory: editors often replace the file, which drops a
	// watch held on the file itself.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return errors.Wrap(err, "watch seed directory")
	}

	go func() {
		defer func() { _ = watcher.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(s.path) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				if err := s.Reload(); err != nil {
					log.Error().Stack().Err(err).Str("path", s.path).Msg("seed reload failed")
					continue
				}
				log.Info().Str("path", s.path).Int("events", s.len()).Msg("seed reloaded")
				if onReload != nil {
					onReload()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Error().Stack().Err(err).Msg("seed watcher error")
			}
		}
	}()
	return nil
}

func (s *Store) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Events returns the event collection.
func (s *Store) Events() store.Events { return (*events)(s) }

// Close is a no-op for the in-memory driver.
func (s *Store) Close() error { return nil }

// HealthPing reports the store usable.
func (s *Store) HealthPing(ctx context.Context) error { return ctx.Err() }

type events Store

func (e *events) All(_ context.Context) ([]model.Event, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]model.Event, len(e.events))
	copy(out, e.events)
	return out, nil
}

func (e *events) List(_ context.Context, q store.ListQuery) ([]model.Event, int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	matched := make([]model.Event, 0, len(e.events))
	term := strings.ToLower(strings.TrimSpace(q.Search))
	for i := range e.events {
		ev := e.events[i]
		if q.Category != "" && ev.Category != q.Category {
			continue
		}
		if term != "" && !matchesTerm(&ev, term) {
			continue
		}
		matched = append(matched, ev)
	}

	total := len(matched)
	if q.Offset > 0 {
		if q.Offset >= total {
			return nil, total, nil
		}
		matched = matched[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}
	out := make([]model.Event, len(matched))
	copy(out, matched)
	return out, total, nil
}

func matchesTerm(ev *model.Event, term string) bool {
	for _, f := range []string{ev.Title, ev.City, ev.State, ev.Country, ev.DetailedSummary, ev.CraftType, ev.EntityType} {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func (e *events) Get(_ context.Context, id string) (*model.Event, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	idx, ok := e.byID[id]
	if !ok {
		return nil, errors.Wrapf(model.ErrNotFound, "event %q", id)
	}
	ev := e.events[idx]
	return &ev, nil
}

func (e *events) Create(_ context.Context, ev *model.Event) (*model.Event, error) {
	out := *ev
	if out.ID == "" {
		out.ID = uuid.NewString()
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, dup := e.byID[out.ID]; dup {
		return nil, errors.Wrapf(model.ErrConflict, "event %q", out.ID)
	}
	e.byID[out.ID] = len(e.events)
	e.events = append(e.events, out)
	return &out, nil
}

func (e *events) Update(_ context.Context, ev *model.Event) (*model.Event, error) {
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	idx, ok := e.byID[ev.ID]
	if !ok {
		return nil, errors.Wrapf(model.ErrNotFound, "event %q", ev.ID)
	}
	out := *ev
	e.events[idx] = out
	return &out, nil
}

func (e *events) Delete(_ context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx, ok := e.byID[id]
	if !ok {
		return errors.Wrapf(model.ErrNotFound, "event %q", id)
	}
	e.events = append(e.events[:idx], e.events[idx+1:]...)
	delete(e.byID, id)
	for i := idx; i < len(e.events); i++ {
		e.byID[e.events[i].ID] = i
	}
	return nil
}

func (e *events) Rate(_ context.Context, id string, likeDelta, dislikeDelta int) (*model.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx, ok := e.byID[id]
	if !ok {
		return nil, errors.Wrapf(model.ErrNotFound, "event %q", id)
	}
	e.events[idx].Likes = max(0, e.events[idx].Likes+likeDelta)
	e.events[idx].Dislikes = max(0, e.events[idx].Dislikes+dislikeDelta)
	ev := e.events[idx]
	return &ev, nil
}
