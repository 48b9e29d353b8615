package ops

import (
	"errors"
	"strings"
	"testing"

	"nanosheet/internal/sheet"
	"nanosheet/internal/undo"
)

// specSheet is the canonical fixture: three time slots, two lanes,
// cells {t0:l0→A, t1:l0→B, t0:l1→C}.
func specSheet(t *testing.T) *sheet.Sheet {
	t.Helper()
	sh := sheet.New("sheet-test")
	sh.TimeAxis().Replace([]string{"t0", "t1", "t2"})
	sh.LaneAxis().Replace([]string{"l0", "l1"})
	sh.SetCell("t0", "l0", "A")
	sh.SetCell("t1", "l0", "B")
	sh.SetCell("t0", "l1", "C")
	return sh
}

func testEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(specSheet(t), "user-a", undo.NewLedger())
}

func wantCells(t *testing.T, e *Engine, want map[string]string) {
	t.Helper()
	got := map[string]string{}
	e.Sheet.Cells().ForEach(func(key, cardID string) {
		got[key] = cardID
	})
	if len(got) != len(want) {
		t.Fatalf("cells = %v, want %v", got, want)
	}
	for key, cardID := range want {
		if got[key] != cardID {
			t.Fatalf("cell %s = %q, want %q (all: %v)", key, got[key], cardID, got)
		}
	}
}

func wantLanes(t *testing.T, e *Engine, want ...string) {
	t.Helper()
	got := e.Sheet.LaneAxis().ToArray()
	if len(got) != len(want) {
		t.Fatalf("lane axis = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("lane axis = %v, want %v", got, want)
		}
	}
}

func TestDeleteFrozenSlotRoutesToLaneDelete(t *testing.T) {
	e := testEngine(t)

	var asked string
	e.Confirm = func(msg string) bool {
		asked = msg
		return true
	}

	if err := e.Delete("t0", "l0"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if asked == "" {
		t.Fatalf("expected a confirmation prompt")
	}
	if !strings.Contains(asked, "2 card(s)") {
		t.Fatalf("prompt should count the lane's 2 cards, got %q", asked)
	}
	wantLanes(t, e, "l1")
	wantCells(t, e, map[string]string{"t0:l1": "C"})
}

func TestDeleteFrozenSlotUnknownLane(t *testing.T) {
	e := testEngine(t)

	asked := false
	e.Confirm = func(msg string) bool {
		asked = true
		return true
	}

	// The lane must exist before the user is asked to confirm anything.
	err := e.Delete("t0", "l9")
	var nf NotFoundError
	if !errors.As(err, &nf) || nf.Kind != "lane" {
		t.Fatalf("err = %v, want lane not-found", err)
	}
	if asked {
		t.Fatalf("no confirmation prompt for an unknown lane")
	}
	wantLanes(t, e, "l0", "l1")
}

func TestDeleteFrozenSlotDeclinedIsNoop(t *testing.T) {
	e := testEngine(t)
	// No Confirm callback set: destructive prompt declines.
	if err := e.Delete("t0", "l0"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	wantLanes(t, e, "l0", "l1")
	wantCells(t, e, map[string]string{"t0:l0": "A", "t1:l0": "B", "t0:l1": "C"})
	if e.Ledger.UndoDepth("user-a") != 0 {
		t.Fatalf("declined delete must not record an undo entry")
	}
}

func TestDeleteCompactsLane(t *testing.T) {
	e := testEngine(t)
	if err := e.Delete("t1", "l0"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	wantCells(t, e, map[string]string{"t0:l0": "A", "t0:l1": "C"})
	if e.Ledger.UndoDepth("user-a") != 1 {
		t.Fatalf("delete should record one undo entry")
	}
}

func TestDeleteClosesGap(t *testing.T) {
	e := testEngine(t)
	e.Sheet.SetCell("t2", "l0", "D")

	if err := e.Delete("t1", "l0"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// D must head-compact into the freed slot.
	wantCells(t, e, map[string]string{"t0:l0": "A", "t1:l0": "D", "t0:l1": "C"})
}

func TestMoveDisplacesFrozenHeader(t *testing.T) {
	e := testEngine(t)
	if err := e.Move("t1", "l0", "t0", "l1", true); err != nil {
		t.Fatalf("move: %v", err)
	}
	wantCells(t, e, map[string]string{"t0:l0": "A", "t0:l1": "B", "t1:l1": "C"})
}

func TestDuplicateLaneSharesCards(t *testing.T) {
	sh := sheet.New("sheet-test")
	sh.TimeAxis().Replace([]string{"t0"})
	sh.LaneAxis().Replace([]string{"l0", "l1"})
	sh.SetCell("t0", "l0", "A")
	e := NewEngine(sh, "user-a", undo.NewLedger())

	if err := e.DuplicateLane("l0"); err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	lanes := sh.LaneAxis().ToArray()
	if len(lanes) != 3 || lanes[0] != "l0" || lanes[2] != "l1" {
		t.Fatalf("new lane must sit immediately after its source, got %v", lanes)
	}
	newLane := lanes[1]
	got, ok := sh.CardAt("t0", newLane)
	if !ok || got != "A" {
		t.Fatalf("duplicated cell must reference the same card id, got %q ok=%v", got, ok)
	}
}

func TestEnsureRoomGrowsTimeAxis(t *testing.T) {
	e := testEngine(t)
	e.Sheet.SetCell("t2", "l0", "D")

	before := e.Sheet.TimeAxis().Len()
	e.ensureRoom("l0")
	if e.Sheet.TimeAxis().Len() != before+1 {
		t.Fatalf("occupied final slot must grow the axis")
	}
	// l1's final slot is free: no growth.
	before = e.Sheet.TimeAxis().Len()
	e.ensureRoom("l1")
	if e.Sheet.TimeAxis().Len() != before {
		t.Fatalf("free final slot must not grow the axis")
	}
}
