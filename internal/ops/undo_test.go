package ops

import (
	"testing"

	"nanosheet/internal/model"
	"nanosheet/internal/undo"
)

func TestUndoRedoDelete(t *testing.T) {
	e := testEngine(t)
	if err := e.Delete("t1", "l0"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	e.Undo()
	wantCells(t, e, map[string]string{"t0:l0": "A", "t1:l0": "B", "t0:l1": "C"})
	if e.Ledger.RedoDepth("user-a") != 1 {
		t.Fatalf("undo must push the entry onto the redo stack")
	}

	e.Redo()
	wantCells(t, e, map[string]string{"t0:l0": "A", "t0:l1": "C"})
	if e.Ledger.UndoDepth("user-a") != 1 {
		t.Fatalf("redo must push the entry back onto the undo stack")
	}
}

func TestUndoRedoMove(t *testing.T) {
	e := testEngine(t)
	if err := e.Move("t1", "l0", "t0", "l1", true); err != nil {
		t.Fatalf("move: %v", err)
	}

	e.Undo()
	wantCells(t, e, map[string]string{"t0:l0": "A", "t1:l0": "B", "t0:l1": "C"})

	e.Redo()
	wantCells(t, e, map[string]string{"t0:l0": "A", "t0:l1": "B", "t1:l1": "C"})
}

func TestUndoDeleteRestoresRemovedLane(t *testing.T) {
	sh := specSheet(t)
	sh.LaneAxis().Push("l2")
	sh.SetCell("t1", "l2", "D")
	sh.LaneTitles().Set("l2", "Extras")
	e := NewEngine(sh, "user-a", undo.NewLedger())

	if err := e.Delete("t1", "l2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	wantLanes(t, e, "l0", "l1")
	if _, ok := sh.LaneTitles().Get("l2"); ok {
		t.Fatalf("removed lane must drop its title")
	}

	e.Undo()
	wantLanes(t, e, "l0", "l1", "l2")
	if got, ok := sh.CardAt("t1", "l2"); !ok || got != "D" {
		t.Fatalf("restored lane must hold its card, got %q ok=%v", got, ok)
	}
	if title, _ := sh.LaneTitles().Get("l2"); title != "Extras" {
		t.Fatalf("restored lane must keep its title, got %q", title)
	}
}

func TestUndoRedoLaneDelete(t *testing.T) {
	e := testEngine(t)
	e.Confirm = func(string) bool { return true }

	if err := e.Delete("t0", "l0"); err != nil {
		t.Fatalf("lane delete: %v", err)
	}
	wantLanes(t, e, "l1")

	e.Undo()
	wantLanes(t, e, "l0", "l1")
	wantCells(t, e, map[string]string{"t0:l0": "A", "t1:l0": "B", "t0:l1": "C"})

	e.Redo()
	wantLanes(t, e, "l1")
	wantCells(t, e, map[string]string{"t0:l1": "C"})
}

func TestUndoRedoDuplicateLane(t *testing.T) {
	e := testEngine(t)
	if err := e.DuplicateLane("l0"); err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if e.Sheet.LaneAxis().Len() != 3 {
		t.Fatalf("expected 3 lanes after duplicate")
	}
	newLane := e.Sheet.LaneAxis().ToArray()[1]

	e.Undo()
	wantLanes(t, e, "l0", "l1")
	if _, ok := e.Sheet.CardAt("t0", newLane); ok {
		t.Fatalf("undo must remove the duplicated lane's cells")
	}

	e.Redo()
	lanes := e.Sheet.LaneAxis().ToArray()
	if len(lanes) != 3 || lanes[1] != newLane {
		t.Fatalf("redo must reinsert the same lane id, got %v", lanes)
	}
	if got, _ := e.Sheet.CardAt("t0", newLane); got != "A" {
		t.Fatalf("redo must restore the duplicated cells, got %q", got)
	}
}

func TestUndoRedoReorderLane(t *testing.T) {
	e := testEngine(t)
	if err := e.ReorderLane(0, 1); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	wantLanes(t, e, "l1", "l0")

	e.Undo()
	wantLanes(t, e, "l0", "l1")

	e.Redo()
	wantLanes(t, e, "l1", "l0")
}

func TestUndoRedoInsert(t *testing.T) {
	e := testEngine(t)
	card := model.Card{ID: "E", Title: "Fresh"}
	if err := e.InsertCard("l0", card, 0); err != nil {
		t.Fatalf("insert: %v", err)
	}
	wantCells(t, e, map[string]string{
		"t0:l0": "A", "t1:l0": "E", "t2:l0": "B", "t0:l1": "C",
	})

	e.Undo()
	wantCells(t, e, map[string]string{"t0:l0": "A", "t1:l0": "B", "t0:l1": "C"})

	e.Redo()
	wantCells(t, e, map[string]string{
		"t0:l0": "A", "t1:l0": "E", "t2:l0": "B", "t0:l1": "C",
	})
}

func TestUndoRedoEditTogglesIndefinitely(t *testing.T) {
	sh := specSheet(t)
	sh.PutCard(model.Card{ID: "A", Title: "Old", Color: "#fff"})
	e := NewEngine(sh, "user-a", undo.NewLedger())

	if err := e.Rename("A", "New"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	for i := 0; i < 3; i++ {
		e.Undo()
		if v, _ := sh.Cards().Field("A", "title"); v != "Old" {
			t.Fatalf("round %d: undo title = %v, want Old", i, v)
		}
		e.Redo()
		if v, _ := sh.Cards().Field("A", "title"); v != "New" {
			t.Fatalf("round %d: redo title = %v, want New", i, v)
		}
	}
}

func TestUndoRenameRemovesAddedTitleField(t *testing.T) {
	e := testEngine(t)

	// Card B has no title field at all; undoing the rename must delete
	// the field again, not write an empty string.
	if err := e.Rename("B", "New"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	e.Undo()
	if v, ok := e.Sheet.Cards().Field("B", "title"); ok {
		t.Fatalf("title field must be gone after undo, got %v", v)
	}

	e.Redo()
	if v, _ := e.Sheet.Cards().Field("B", "title"); v != "New" {
		t.Fatalf("redo title = %v, want New", v)
	}
}

func TestUndoIsPerUser(t *testing.T) {
	sh := specSheet(t)
	ledger := undo.NewLedger()
	alice := NewEngine(sh, "user-a", ledger)
	bob := NewEngine(sh, "user-b", ledger)

	if err := alice.Delete("t1", "l0"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// Bob has nothing to undo; Alice's entry must stay put.
	bob.Undo()
	wantCells(t, bob, map[string]string{"t0:l0": "A", "t0:l1": "C"})
	if ledger.UndoDepth("user-a") != 1 {
		t.Fatalf("another user's undo must not consume the entry")
	}

	alice.Undo()
	wantCells(t, alice, map[string]string{"t0:l0": "A", "t1:l0": "B", "t0:l1": "C"})
}

func TestNewMutationClearsOwnRedoOnly(t *testing.T) {
	sh := specSheet(t)
	sh.SetCell("t1", "l1", "D")
	ledger := undo.NewLedger()
	alice := NewEngine(sh, "user-a", ledger)
	bob := NewEngine(sh, "user-b", ledger)

	if err := alice.Delete("t1", "l0"); err != nil {
		t.Fatalf("alice delete: %v", err)
	}
	if err := bob.Delete("t1", "l1"); err != nil {
		t.Fatalf("bob delete: %v", err)
	}
	alice.Undo()
	bob.Undo()
	if ledger.RedoDepth("user-a") != 1 || ledger.RedoDepth("user-b") != 1 {
		t.Fatalf("both users should hold one redo entry")
	}

	// A fresh mutation by Alice clears her redo branch, not Bob's.
	if err := alice.Delete("t1", "l0"); err != nil {
		t.Fatalf("alice second delete: %v", err)
	}
	if ledger.RedoDepth("user-a") != 0 {
		t.Fatalf("alice's redo stack must be cleared by her new mutation")
	}
	if ledger.RedoDepth("user-b") != 1 {
		t.Fatalf("bob's redo stack must survive alice's mutation")
	}
}

func TestUndoRedoCover(t *testing.T) {
	sh := specSheet(t)
	sh.PutCard(model.Card{ID: "A", Title: "Header", Color: "#111"})
	sh.PutCard(model.Card{ID: "B", Title: "Source", Color: "#222",
		MediaURL: "https://example.com/b.png", ThumbURL: "https://example.com/b_thumb.png",
		MediaType: model.MediaTypeImage})
	e := NewEngine(sh, "user-a", undo.NewLedger())

	if err := e.SetCover("B"); err != nil {
		t.Fatalf("set cover: %v", err)
	}
	if v, _ := sh.Cards().Field("A", "mediaUrl"); v != "https://example.com/b.png" {
		t.Fatalf("cover must copy media onto the header, got %v", v)
	}

	e.Undo()
	if _, ok := sh.Cards().Field("A", "mediaUrl"); ok {
		t.Fatalf("undo must clear the copied media field")
	}
	if v, _ := sh.Cards().Field("A", "color"); v != "#111" {
		t.Fatalf("undo must keep the header color, got %v", v)
	}

	e.Redo()
	if v, _ := sh.Cards().Field("A", "mediaUrl"); v != "https://example.com/b.png" {
		t.Fatalf("redo must restore the cover, got %v", v)
	}
}
