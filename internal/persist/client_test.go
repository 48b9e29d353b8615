package persist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"nanosheet/internal/model"
)

func TestUpdateCardPatchesByID(t *testing.T) {
	var gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		var c model.Card
		_ = json.NewDecoder(r.Body).Decode(&c)
		_ = json.NewEncoder(w).Encode(c)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	out, err := c.UpdateCard(context.Background(), model.Card{ID: "card-1", Title: "Hero"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if gotMethod != http.MethodPatch || gotPath != "/api/cards/card-1" {
		t.Fatalf("request = %s %s", gotMethod, gotPath)
	}
	if out.Title != "Hero" {
		t.Fatalf("echoed card = %+v", out)
	}
}

func TestFetchCardsBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CardIDs []string `json:"cardIds"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		out := make([]model.Card, 0, len(req.CardIDs))
		for _, id := range req.CardIDs {
			out = append(out, model.Card{ID: id})
		}
		_ = json.NewEncoder(w).Encode(out)
	}))
	defer srv.Close()

	cards, err := NewClient(srv.URL).FetchCards(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(cards) != 2 || cards[0].ID != "a" {
		t.Fatalf("cards = %+v", cards)
	}
}

func TestErrorStatusSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).UpdateCard(context.Background(), model.Card{ID: "x"}); err == nil {
		t.Fatalf("non-200 must error")
	}
}

func TestRegenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sheets/demo/regenerate" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(RegenerateResult{
			Status: "success", SheetID: "demo", Cols: 3, TotalCards: 7,
		})
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL).Regenerate(context.Background(), "demo", 3, []int{4, 1, 2})
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if res.Status != "success" || res.TotalCards != 7 {
		t.Fatalf("result = %+v", res)
	}
}
