// Package filter computes the visible-event set from the full dataset and
// the active filter state. All five filter dimensions combine by
// conjunction; recomputation is wholesale on every change.
package filter

import (
	"sort"
	"strings"

	"github.com/formansean/ufo-timline/internal/favorites"
	"github.com/formansean/ufo-timline/internal/model"
)

// State is an immutable filter snapshot. Toggle methods return a new State
// rather than mutating in place, so views can hold old snapshots safely.
type State struct {
	// Search is the committed (post-debounce) free-text term.
	Search string

	// Categories is the active category set. Unlike the craft and entity
	// sets, an empty set hides everything.
	Categories map[model.Category]bool

	// CraftTypes and EntityTypes are pass-through when empty.
	CraftTypes  map[string]bool
	EntityTypes map[string]bool

	// FavoritesOnly restricts the set to favorited events of the active
	// colors when any color toggle is on.
	FavoritesOnly map[favorites.Color]bool
}

// NewState returns the initial filter state: all categories active, no
// craft/entity filter, no favorites filter, empty search.
func NewState() State {
	cats := make(map[model.Category]bool, len(model.Categories))
	for _, c := range model.Categories {
		cats[c] = true
	}
	return State{
		Categories:    cats,
		CraftTypes:    map[string]bool{},
		EntityTypes:   map[string]bool{},
		FavoritesOnly: map[favorites.Color]bool{},
	}
}

func (s State) clone() State {
	out := s
	out.Categories = make(map[model.Category]bool, len(s.Categories))
	for k, v := range s.Categories {
		out.Categories[k] = v
	}
	out.CraftTypes = make(map[string]bool, len(s.CraftTypes))
	for k, v := range s.CraftTypes {
		out.CraftTypes[k] = v
	}
	out.EntityTypes = make(map[string]bool, len(s.EntityTypes))
	for k, v := range s.EntityTypes {
		out.EntityTypes[k] = v
	}
	out.FavoritesOnly = make(map[favorites.Color]bool, len(s.FavoritesOnly))
	for k, v := range s.FavoritesOnly {
		out.FavoritesOnly[k] = v
	}
	return out
}

// WithSearch returns s with the committed search term replaced.
func (s State) WithSearch(term string) State {
	out := s.clone()
	out.Search = term
	return out
}

// ToggleCategory flips membership of c in the active category set.
func (s State) ToggleCategory(c model.Category) State {
	out := s.clone()
	if out.Categories[c] {
		delete(out.Categories, c)
	} else {
		out.Categories[c] = true
	}
	return out
}

// SoloCategory activates only c, the long-press "solo" gesture.
func (s State) SoloCategory(c model.Category) State {
	out := s.clone()
	out.Categories = map[model.Category]bool{c: true}
	return out
}

// AllCategories reactivates every category.
func (s State) AllCategories() State {
	out := s.clone()
	out.Categories = make(map[model.Category]bool, len(model.Categories))
	for _, c := range model.Categories {
		out.Categories[c] = true
	}
	return out
}

// ToggleCraftType flips membership of t in the craft-type filter.
func (s State) ToggleCraftType(t string) State {
	out := s.clone()
	if out.CraftTypes[t] {
		delete(out.CraftTypes, t)
	} else {
		out.CraftTypes[t] = true
	}
	return out
}

// ToggleEntityType flips membership of t in the entity-type filter.
func (s State) ToggleEntityType(t string) State {
	out := s.clone()
	if out.EntityTypes[t] {
		delete(out.EntityTypes, t)
	} else {
		out.EntityTypes[t] = true
	}
	return out
}

// ToggleFavoriteColor flips the favorites-only toggle for one color.
func (s State) ToggleFavoriteColor(c favorites.Color) State {
	out := s.clone()
	if out.FavoritesOnly[c] {
		delete(out.FavoritesOnly, c)
	} else {
		out.FavoritesOnly[c] = true
	}
	return out
}

// FavoritesActive reports whether any favorites-only toggle is on.
func (s State) FavoritesActive() bool {
	for _, on := range s.FavoritesOnly {
		if on {
			return true
		}
	}
	return false
}

// ActiveCategories returns the active categories in canonical order.
func (s State) ActiveCategories() []model.Category {
	out := make([]model.Category, 0, len(s.Categories))
	for _, c := range model.Categories {
		if s.Categories[c] {
			out = append(out, c)
		}
	}
	return out
}

// Apply produces the ordered visible-event sequence: search, category,
// craft-type, entity-type, and favorites predicates ANDed together, then
// sorted descending by combined score. favs may be nil when no favorites
// filter is active.
func Apply(events []model.Event, s State, favs *favorites.Registry) []model.Event {
	term := strings.ToLower(strings.TrimSpace(s.Search))
	favActive := s.FavoritesActive()

	out := make([]model.Event, 0, len(events))
	for i := range events {
		e := &events[i]
		if term != "" && !matchesSearch(e, term) {
			continue
		}
		if !s.Categories[e.Category] {
			continue
		}
		if !matchesMulti(e.CraftTypeList(), s.CraftTypes) {
			continue
		}
		if !matchesMulti(e.EntityTypeList(), s.EntityTypes) {
			continue
		}
		if favActive && !matchesFavorites(e, s, favs) {
			continue
		}
		out = append(out, *e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score() > out[j].Score()
	})
	return out
}

// matchesSearch is a case-insensitive substring match across the
// searchable fields, OR-combined.
func matchesSearch(e *model.Event, term string) bool {
	for _, field := range []string{
		e.Title, e.DetailedSummary, string(e.Category), e.CraftType,
		e.EntityType, e.City, e.State, e.Country, e.Witnesses, e.Location,
	} {
		if field != "" && strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// matchesMulti implements the empty-set pass-through asymmetry: an empty
// active set means no filter, a non-empty one requires intersection with
// the event's comma-split value list.
func matchesMulti(values []string, active map[string]bool) bool {
	if len(active) == 0 {
		return true
	}
	for _, v := range values {
		if active[v] {
			return true
		}
	}
	return false
}

func matchesFavorites(e *model.Event, s State, favs *favorites.Registry) bool {
	if favs == nil {
		return false
	}
	for color, on := range s.FavoritesOnly {
		if on && favs.Has(color, e.ID) {
			return true
		}
	}
	return false
}
