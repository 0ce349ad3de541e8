package storetest

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/formansean/ufo-timline/internal/model"
	"github.com/formansean/ufo-timline/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store and return it
// from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()
	ev := s.Events()

	// Create mints an ID and persists the record.
	created, err := ev.Create(ctx, &model.Event{
		Title:    "Roswell Crash",
		Category: model.CategoryMajorEvents,
		Date:     "July 8, 1947",
		City:     "Roswell",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("Create: empty event id")
	}
	if got, err := ev.Get(ctx, created.ID); err != nil || got == nil || got.Title != "Roswell Crash" {
		t.Fatalf("Get: got=%v err=%v", got, err)
	}

	// Invalid records are rejected, not stored.
	if _, err := ev.Create(ctx, &model.Event{Title: "bad", Category: "Nonsense", Date: "May 1, 1950"}); err == nil {
		t.Fatalf("Create with unknown category: want error")
	}

	// Duplicate IDs conflict.
	if _, err := ev.Create(ctx, &model.Event{
		ID: created.ID, Title: "dup", Category: model.CategorySighting, Date: "May 1, 1950",
	}); err == nil {
		t.Fatalf("Create duplicate id: want error")
	}

	second, err := ev.Create(ctx, &model.Event{
		Title:    "Phoenix Lights",
		Category: model.CategoryMassSighting,
		Date:     "March 13, 1997",
	})
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}

	// List: unfiltered, by category, by search term, paged.
	if all, total, err := ev.List(ctx, store.ListQuery{}); err != nil || total != 2 || len(all) != 2 {
		t.Fatalf("List all: n=%d total=%d err=%v", len(all), total, err)
	}
	if got, total, err := ev.List(ctx, store.ListQuery{Category: model.CategoryMajorEvents}); err != nil || total != 1 || len(got) != 1 || got[0].ID != created.ID {
		t.Fatalf("List by category: got=%v total=%d err=%v", got, total, err)
	}
	if got, total, err := ev.List(ctx, store.ListQuery{Search: "roswell"}); err != nil || total != 1 || len(got) != 1 {
		t.Fatalf("List by search: got=%v total=%d err=%v", got, total, err)
	}
	if got, total, err := ev.List(ctx, store.ListQuery{Limit: 1, Offset: 1}); err != nil || total != 2 || len(got) != 1 {
		t.Fatalf("List paged: n=%d total=%d err=%v", len(got), total, err)
	}

	// All returns the full set for the filter engine.
	if all, err := ev.All(ctx); err != nil || len(all) != 2 {
		t.Fatalf("All: n=%d err=%v", len(all), err)
	}

	// Update replaces the record in place.
	created.Witnesses = "many"
	if got, err := ev.Update(ctx, created); err != nil || got.Witnesses != "many" {
		t.Fatalf("Update: got=%v err=%v", got, err)
	}
	if got, err := ev.Get(ctx, created.ID); err != nil || got.Witnesses != "many" {
		t.Fatalf("Get after update: got=%v err=%v", got, err)
	}

	// Rate applies vote deltas and never drops a counter below zero.
	if got, err := ev.Rate(ctx, created.ID, 1, 0); err != nil || got.Likes != 1 || got.Dislikes != 0 {
		t.Fatalf("Rate like: got=%v err=%v", got, err)
	}
	if got, err := ev.Rate(ctx, created.ID, 0, 1); err != nil || got.Likes != 1 || got.Dislikes != 1 {
		t.Fatalf("Rate dislike: got=%v err=%v", got, err)
	}
	if got, err := ev.Rate(ctx, created.ID, 1, -1); err != nil || got.Likes != 2 || got.Dislikes != 0 {
		t.Fatalf("Rate switch: got=%v err=%v", got, err)
	}
	if got, err := ev.Rate(ctx, created.ID, 0, -1); err != nil || got.Likes != 2 || got.Dislikes != 0 {
		t.Fatalf("Rate floor: got=%v err=%v", got, err)
	}

	// Delete removes; further lookups are ErrNotFound.
	if err := ev.Delete(ctx, second.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := ev.Get(ctx, second.ID); err == nil {
		t.Fatalf("Get after delete: want error")
	}

	// Unknown IDs fail consistently across operations.
	missing := uuid.NewString()
	if _, err := ev.Get(ctx, missing); err == nil {
		t.Fatalf("Get missing: want error")
	}
	if err := ev.Delete(ctx, missing); err == nil {
		t.Fatalf("Delete missing: want error")
	}
	if _, err := ev.Rate(ctx, missing, 1, 0); err == nil {
		t.Fatalf("Rate missing: want error")
	}
	if _, err := ev.Update(ctx, &model.Event{
		ID: missing, Title: "ghost", Category: model.CategorySighting, Date: "May 1, 1950",
	}); err == nil {
		t.Fatalf("Update missing: want error")
	}
}
