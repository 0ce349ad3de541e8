// Package selection coordinates the active event across views: selecting
// an event recenters the globe on it, clearing the selection hands the
// globe back to auto-rotation, and next/previous steps walk the visible
// set in chronological order.
package selection

import (
	"sort"
	"sync"
	"time"

	"github.com/formansean/ufo-timline/internal/model"
)

// Focuser is the globe-side surface the coordinator drives. Select tweens
// the globe to the event's coordinates; Clear resumes auto-rotation.
type Focuser interface {
	TweenTo(lat, lon float64, eventID string, now time.Time)
	Resume(now time.Time)
}

// Coordinator tracks which event is selected. All state transitions go
// through it so the globe and the detail panes never disagree.
type Coordinator struct {
	mu       sync.Mutex
	selected string
	focus    Focuser
}

// NewCoordinator wires a coordinator to a globe focuser. A nil focuser is
// allowed for views without a globe.
func NewCoordinator(focus Focuser) *Coordinator {
	return &Coordinator{focus: focus}
}

// Select makes ev the active event. If the event carries coordinates the
// globe tweens to them; events without coordinates still select but leave
// the globe alone.
func (c *Coordinator) Select(ev model.Event, now time.Time) {
	c.mu.Lock()
	c.selected = ev.ID
	c.mu.Unlock()
	if c.focus == nil {
		return
	}
	if lat, lon, ok := ev.Coordinates(); ok {
		c.focus.TweenTo(lat, lon, ev.ID, now)
	}
}

// Clear drops the selection and resumes globe auto-rotation.
func (c *Coordinator) Clear(now time.Time) {
	c.mu.Lock()
	c.selected = ""
	c.mu.Unlock()
	if c.focus != nil {
		c.focus.Resume(now)
	}
}

// Selected returns the active event ID, or "" when nothing is selected.
func (c *Coordinator) Selected() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// Next returns the event after the current selection in the visible set,
// ordered chronologically ascending. It returns nil when nothing is
// selected, the selection is no longer visible, or the selection is
// already the last event.
func (c *Coordinator) Next(visible []model.Event) *model.Event {
	return c.step(visible, +1)
}

// Prev is Next's mirror: nil at the first event.
func (c *Coordinator) Prev(visible []model.Event) *model.Event {
	return c.step(visible, -1)
}

func (c *Coordinator) step(visible []model.Event, dir int) *model.Event {
	c.mu.Lock()
	id := c.selected
	c.mu.Unlock()
	if id == "" {
		return nil
	}

	ordered := Chronological(visible)
	idx := -1
	for i := range ordered {
		if ordered[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	idx += dir
	if idx < 0 || idx >= len(ordered) {
		return nil
	}
	ev := ordered[idx]
	return &ev
}

// Chronological returns a copy of events sorted ascending by parsed date.
// Undated events sort last, keeping their relative order.
func Chronological(events []model.Event) []model.Event {
	ordered := make([]model.Event, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		ti, erri := ordered[i].When()
		tj, errj := ordered[j].When()
		if erri != nil {
			return false
		}
		if errj != nil {
			return true
		}
		return ti.Before(tj)
	})
	return ordered
}
