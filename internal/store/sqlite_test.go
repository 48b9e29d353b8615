package store

import (
	"context"
	"testing"
	"time"

	"nanosheet/internal/doc"
	"nanosheet/internal/model"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	s := Store{Dir: t.TempDir()}
	if err := s.Ensure(); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	db, err := s.Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestCardRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	c := model.Card{
		ID: "card-1", Title: "Hero", Color: "#6BCB77", Prompt: "wide shot",
		Number: 42, CreatedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		MediaURL: "https://example.com/a.png", MediaType: model.MediaTypeImage,
	}
	if err := db.SaveCard(ctx, c); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := db.GetCard(ctx, "card-1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.Title != "Hero" || got.Number != 42 || got.MediaType != model.MediaTypeImage {
		t.Fatalf("got %+v", got)
	}

	// Upsert replaces.
	c.Title = "Hero v2"
	if err := db.SaveCard(ctx, c); err != nil {
		t.Fatalf("resave: %v", err)
	}
	got, _, _ = db.GetCard(ctx, "card-1")
	if got.Title != "Hero v2" {
		t.Fatalf("upsert title = %q", got.Title)
	}

	if _, ok, err := db.GetCard(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing card: ok=%v err=%v", ok, err)
	}
}

func TestGetCardsPreservesRequestOrder(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := db.SaveCard(ctx, model.Card{ID: id, Title: id}); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	cards, err := db.GetCards(ctx, []string{"c", "missing", "a"})
	if err != nil {
		t.Fatalf("get cards: %v", err)
	}
	if len(cards) != 2 || cards[0].ID != "c" || cards[1].ID != "a" {
		t.Fatalf("order = %+v", cards)
	}
}

func TestLaneTitles(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.SaveLaneTitle(ctx, "sheet-1", "c-0", "Opening"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := db.SaveLaneTitle(ctx, "sheet-1", "c-0", "Opening v2"); err != nil {
		t.Fatalf("resave: %v", err)
	}
	if err := db.SaveLaneTitle(ctx, "sheet-2", "c-0", "Other sheet"); err != nil {
		t.Fatalf("save other: %v", err)
	}

	titles, err := db.LaneTitles(ctx, "sheet-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(titles) != 1 || titles["c-0"] != "Opening v2" {
		t.Fatalf("titles = %v", titles)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	updates := []doc.Update{
		{Kind: doc.UpdateListInsert, Target: "rowOrder", Index: 0, ID: "r-1"},
		{Kind: doc.UpdateMapSet, Target: "cells", Key: "r-1:c-1", Value: "card-1"},
	}
	if err := db.SaveSnapshot(ctx, "sheet-1", updates); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := db.LoadSnapshot(ctx, "sheet-1")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if len(got) != 2 || got[0].ID != "r-1" || got[1].Value != "card-1" {
		t.Fatalf("got %+v", got)
	}

	if _, ok, err := db.LoadSnapshot(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing snapshot: ok=%v err=%v", ok, err)
	}
}
