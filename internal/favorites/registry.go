// Package favorites keeps the three color-tagged bookmark sets and their
// on-disk JSON form.
package favorites

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Color is one of the three user-assignable bookmark tags.
type Color string

const (
	Yellow Color = "yellow"
	Orange Color = "orange"
	Red    Color = "red"
)

// Colors lists the colors in display order.
var Colors = []Color{Yellow, Orange, Red}

// ValidColor reports whether c is a known favorite color.
func ValidColor(c Color) bool {
	return c == Yellow || c == Orange || c == Red
}

// Registry holds the favorite sets, keyed by surrogate event ID. The sets
// are disjoint: assigning a color to an event removes it from the others.
type Registry struct {
	mu   sync.RWMutex
	sets map[Color]map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	r := &Registry{sets: make(map[Color]map[string]struct{}, len(Colors))}
	for _, c := range Colors {
		r.sets[c] = make(map[string]struct{})
	}
	return r
}

// Mark assigns color to the event key, clearing any other color it held.
func (r *Registry) Mark(color Color, key string) error {
	if !ValidColor(color) {
		return fmt.Errorf("unknown favorite color %q", color)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range Colors {
		delete(r.sets[c], key)
	}
	r.sets[color][key] = struct{}{}
	return nil
}

// Unmark removes the event key from every color set.
func (r *Registry) Unmark(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range Colors {
		delete(r.sets[c], key)
	}
}

// Has reports whether key is marked with color.
func (r *Registry) Has(color Color, key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sets[color][key]
	return ok
}

// ColorOf returns the color assigned to key, if any.
func (r *Registry) ColorOf(key string) (Color, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range Colors {
		if _, ok := r.sets[c][key]; ok {
			return c, true
		}
	}
	return "", false
}

// Keys returns the sorted membership of one color set.
func (r *Registry) Keys(color Color) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.sets[color]))
	for k := range r.sets[color] {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Len returns the total number of favorited events across all colors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, c := range Colors {
		n += len(r.sets[c])
	}
	return n
}

// snapshot is the serialized form: each color's membership as an array.
type snapshot struct {
	Yellow []string `json:"yellow"`
	Orange []string `json:"orange"`
	Red    []string `json:"red"`
}

// Save writes the registry as JSON, creating parent directories as needed.
func (r *Registry) Save(path string) error {
	snap := snapshot{
		Yellow: r.Keys(Yellow),
		Orange: r.Keys(Orange),
		Red:    r.Keys(Red),
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a registry from disk. A missing file yields an empty registry.
func Load(path string) (*Registry, error) {
	r := NewRegistry()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, err
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse favorites %s: %w", path, err)
	}
	for _, k := range snap.Yellow {
		r.sets[Yellow][k] = struct{}{}
	}
	for _, k := range snap.Orange {
		r.sets[Orange][k] = struct{}{}
	}
	for _, k := range snap.Red {
		r.sets[Red][k] = struct{}{}
	}
	return r, nil
}
