package ops

import (
	"nanosheet/internal/model"
	"nanosheet/internal/orient"
)

// dragState is the session's transient drag: the source cell plus the
// current preview candidate. It exists only between DragStart and DragEnd.
type dragState struct {
	timeID string
	laneID string
	cardID string

	preview *Preview
}

// Preview is the single drop candidate under the pointer.
type Preview struct {
	TargetLane   string
	TargetTime   string
	InsertBefore bool
}

// Dragging reports the active drag's card id, if any.
func (e *Engine) Dragging() (string, bool) {
	if e.drag == nil {
		return "", false
	}
	return e.drag.cardID, true
}

// CurrentPreview returns the active drop candidate, or nil.
func (e *Engine) CurrentPreview() *Preview {
	if e.drag == nil {
		return nil
	}
	return e.drag.preview
}

// DragStart begins dragging the card at (timeID, laneID). Frozen header
// cards are not draggable: starting from the first time slot is a no-op.
func (e *Engine) DragStart(timeID, laneID, cardID string) {
	times := e.Sheet.TimeAxis().ToArray()
	if len(times) == 0 || timeID == times[0] {
		return
	}
	got, ok := e.Sheet.CardAt(timeID, laneID)
	if !ok || got != cardID {
		opLog("dragStart: card %s is not at %s:%s", cardID, timeID, laneID)
		return
	}
	e.drag = &dragState{timeID: timeID, laneID: laneID, cardID: cardID}
}

// DragOver recomputes the preview for the hovered cell. The preview is
// rejected (nil) when the target is the frozen slot or the drag source;
// insert-before comes from the orientation's geometry test.
func (e *Engine) DragOver(targetTime, targetLane string, bounds orient.Rect, pointer orient.Point) {
	if e.drag == nil {
		return
	}
	times := e.Sheet.TimeAxis().ToArray()
	if len(times) == 0 || targetTime == times[0] {
		e.drag.preview = nil
		return
	}
	if targetTime == e.drag.timeID && targetLane == e.drag.laneID {
		e.drag.preview = nil
		return
	}
	e.drag.preview = &Preview{
		TargetLane:   targetLane,
		TargetTime:   targetTime,
		InsertBefore: e.Orientation.InsertBefore(bounds, pointer),
	}
}

// Drop commits the drag at the current preview as one atomic sequence:
// remove the card from its source cell, head-compact the source lane,
// tail-shift the destination lane from the insertion index, then place the
// card into the freed slot. Same-lane moves run both passes on that lane,
// producing a net reorder. Records a move undo entry.
func (e *Engine) Drop() error {
	d := e.drag
	if d == nil || d.preview == nil {
		return nil
	}
	p := d.preview

	srcIdx := e.Sheet.TimeAxis().IndexOf(d.timeID)
	if srcIdx < 0 {
		opLog("drop: source slot %s vanished", d.timeID)
		e.DragEnd()
		return NotFoundError{Kind: "time slot", ID: d.timeID}
	}
	if got, ok := e.Sheet.CardAt(d.timeID, d.laneID); !ok || got != d.cardID {
		// A concurrent edit moved the source card out from under us.
		opLog("drop: card %s no longer at %s:%s", d.cardID, d.timeID, d.laneID)
		e.DragEnd()
		return NotFoundError{Kind: "card cell", ID: d.timeID + ":" + d.laneID}
	}

	insertIdx := e.Sheet.TimeAxis().IndexOf(p.TargetTime)
	if insertIdx < 0 {
		opLog("drop: target slot %s vanished", p.TargetTime)
		e.DragEnd()
		return NotFoundError{Kind: "time slot", ID: p.TargetTime}
	}
	if !p.InsertBefore {
		insertIdx++
	}
	// A same-lane move below the source: compacting the source lane will
	// pull the target card one slot earlier, so an index resolved against
	// the pre-compaction lane is one too far.
	if d.laneID == p.TargetLane && srcIdx < insertIdx {
		insertIdx--
	}

	toTime := e.moveCard(d.cardID, d.timeID, d.laneID, srcIdx, p.TargetLane, insertIdx)

	e.Ledger.Record(model.UndoOperation{
		Kind:     model.UndoMove,
		User:     e.User,
		CardID:   d.cardID,
		FromTime: d.timeID,
		FromLane: d.laneID,
		ToTime:   toTime,
		ToLane:   p.TargetLane,
	})

	e.DragEnd()
	return nil
}

// Move runs the drop sequence directly, without drag state: remove the
// card at (fromTime, fromLane), compact that lane, tail-shift targetLane
// from the target slot, and place the card. Records a move undo entry.
func (e *Engine) Move(fromTime, fromLane, targetTime, targetLane string, insertBefore bool) error {
	srcIdx := e.Sheet.TimeAxis().IndexOf(fromTime)
	if srcIdx < 0 {
		return NotFoundError{Kind: "time slot", ID: fromTime}
	}
	cardID, ok := e.Sheet.CardAt(fromTime, fromLane)
	if !ok {
		opLog("move: no card at %s:%s", fromTime, fromLane)
		return NotFoundError{Kind: "card cell", ID: fromTime + ":" + fromLane}
	}
	insertIdx := e.Sheet.TimeAxis().IndexOf(targetTime)
	if insertIdx < 0 {
		return NotFoundError{Kind: "time slot", ID: targetTime}
	}
	if !insertBefore {
		insertIdx++
	}
	// Same correction as Drop: the target index is relative to the lane
	// before the source compaction.
	if fromLane == targetLane && srcIdx < insertIdx {
		insertIdx--
	}

	toTime := e.moveCard(cardID, fromTime, fromLane, srcIdx, targetLane, insertIdx)

	e.Ledger.Record(model.UndoOperation{
		Kind:     model.UndoMove,
		User:     e.User,
		CardID:   cardID,
		FromTime: fromTime,
		FromLane: fromLane,
		ToTime:   toTime,
		ToLane:   targetLane,
	})
	return nil
}

// moveCard is the atomic double-shift shared by Drop, Move, and move
// inversion: (1) clear the source cell, (2) head-compact the source lane,
// (3) tail-shift the destination lane from insertIdx, iterated from the
// axis end backward, (4) place the card into the freed slot. Same-lane
// moves run both passes on the one lane.
func (e *Engine) moveCard(cardID, fromTime, fromLane string, srcIdx int, targetLane string, insertIdx int) (toTime string) {
	e.Sheet.ClearCell(fromTime, fromLane)
	e.Orientation.ShiftBackward(e.Sheet, fromLane, srcIdx+1)

	e.ensureRoom(targetLane)
	e.ensureTimeIndex(insertIdx)
	e.Orientation.ShiftForward(e.Sheet, targetLane, insertIdx, -1)

	toTime, _ = e.Sheet.TimeAxis().At(insertIdx)
	e.Sheet.SetCell(toTime, targetLane, cardID)
	return toTime
}

// DragEnd unconditionally clears transient drag state. It covers cancel,
// drop-outside-target, and escape, and is always safe to call.
func (e *Engine) DragEnd() {
	e.drag = nil
}
