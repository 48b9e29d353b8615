package ops

import (
	"context"

	"nanosheet/internal/model"
	"nanosheet/internal/sheet"
)

// DeleteLane removes every cell of laneID across all time slots and drops
// the lane from the lane axis. The undo entry stores the lane's index,
// title, and removed cells so it can be restored verbatim in order.
func (e *Engine) DeleteLane(laneID string) error {
	idx := e.Sheet.LaneAxis().IndexOf(laneID)
	if idx < 0 {
		opLog("deleteLane: unknown lane %s", laneID)
		return NotFoundError{Kind: "lane", ID: laneID}
	}
	title, _ := e.Sheet.LaneTitles().Get(laneID)

	removed := e.removeLane(laneID)
	e.Ledger.Record(model.UndoOperation{
		Kind: model.UndoLaneDelete,
		User: e.User,
		RemovedLane: &model.RemovedLane{
			LaneID: laneID,
			Index:  idx,
			Title:  title,
			Cells:  removed,
		},
	})
	return nil
}

// removeLane clears the lane's cells and axis entry and returns the
// removed occupancy, keyed by canonical cell key.
func (e *Engine) removeLane(laneID string) map[string]string {
	removed := map[string]string{}
	for _, timeID := range e.Sheet.TimeAxis().ToArray() {
		if cardID, ok := e.Sheet.CardAt(timeID, laneID); ok {
			removed[e.Orientation.CellKey(timeID, laneID)] = cardID
			e.Sheet.ClearCell(timeID, laneID)
		}
	}
	e.Sheet.LaneAxis().Delete(laneID)
	e.Sheet.LaneTitles().Delete(laneID)
	return removed
}

// restoreLane reinserts a removed lane at its stored index and rewrites
// every stored cell verbatim.
func (e *Engine) restoreLane(r *model.RemovedLane) {
	if r == nil {
		return
	}
	if e.Sheet.LaneAxis().IndexOf(r.LaneID) < 0 {
		e.Sheet.LaneAxis().Insert(r.Index, r.LaneID)
	}
	for key, cardID := range r.Cells {
		e.Sheet.Cells().Set(key, cardID)
	}
	if r.Title != "" {
		e.Sheet.LaneTitles().Set(r.LaneID, r.Title)
	}
}

// DuplicateLane copies sourceLaneID into a fresh lane inserted immediately
// after it. The lane axis is rewritten in one atomic update rather than
// incrementally, so remote replicas never observe a half-inserted axis.
// Copied cells reference the same card ids — cards are shared, not cloned.
func (e *Engine) DuplicateLane(sourceLaneID string) error {
	lanes := e.Sheet.LaneAxis().ToArray()
	srcIdx := -1
	for i, id := range lanes {
		if id == sourceLaneID {
			srcIdx = i
			break
		}
	}
	if srcIdx < 0 {
		opLog("duplicateLane: unknown lane %s", sourceLaneID)
		return NotFoundError{Kind: "lane", ID: sourceLaneID}
	}

	newLaneID := sheet.NewLaneID()
	e.duplicateInto(sourceLaneID, newLaneID, srcIdx)

	e.Ledger.Record(model.UndoOperation{
		Kind:         model.UndoLaneDuplicate,
		User:         e.User,
		NewLaneID:    newLaneID,
		SourceLaneID: sourceLaneID,
	})
	return nil
}

// duplicateInto inserts newLaneID after srcIdx via a whole-axis rewrite and
// copies the source lane's occupied cells at identical time indices.
func (e *Engine) duplicateInto(sourceLaneID, newLaneID string, srcIdx int) {
	lanes := e.Sheet.LaneAxis().ToArray()
	rewritten := make([]string, 0, len(lanes)+1)
	rewritten = append(rewritten, lanes[:srcIdx+1]...)
	rewritten = append(rewritten, newLaneID)
	rewritten = append(rewritten, lanes[srcIdx+1:]...)
	e.Sheet.LaneAxis().Replace(rewritten)

	for _, cell := range e.Sheet.LaneCells(sourceLaneID) {
		e.Sheet.SetCell(cell.TimeID, newLaneID, cell.CardID)
	}
	if title, ok := e.Sheet.LaneTitles().Get(sourceLaneID); ok {
		e.Sheet.LaneTitles().Set(newLaneID, title)
	}
}

// ReorderLane moves the lane at fromIndex to toIndex with one atomic
// whole-axis rewrite.
func (e *Engine) ReorderLane(fromIndex, toIndex int) error {
	lanes := e.Sheet.LaneAxis().ToArray()
	if fromIndex < 0 || fromIndex >= len(lanes) {
		return BadIndexError{Index: fromIndex, Len: len(lanes)}
	}
	if toIndex < 0 || toIndex >= len(lanes) {
		return BadIndexError{Index: toIndex, Len: len(lanes)}
	}
	if fromIndex == toIndex {
		return nil
	}

	laneID := lanes[fromIndex]
	e.rewriteOrder(fromIndex, toIndex)

	e.Ledger.Record(model.UndoOperation{
		Kind:      model.UndoLaneReorder,
		User:      e.User,
		LaneID:    laneID,
		FromIndex: fromIndex,
		ToIndex:   toIndex,
	})
	return nil
}

func (e *Engine) rewriteOrder(fromIndex, toIndex int) {
	lanes := e.Sheet.LaneAxis().ToArray()
	if fromIndex < 0 || fromIndex >= len(lanes) {
		return
	}
	id := lanes[fromIndex]
	lanes = append(lanes[:fromIndex], lanes[fromIndex+1:]...)
	if toIndex < 0 {
		toIndex = 0
	}
	if toIndex > len(lanes) {
		toIndex = len(lanes)
	}
	lanes = append(lanes, "")
	copy(lanes[toIndex+1:], lanes[toIndex:])
	lanes[toIndex] = id
	e.Sheet.LaneAxis().Replace(lanes)
}

// DownloadLane gathers the lane's occupied cards in time order and hands
// them to the archival service. Non-mutating; no undo entry.
func (e *Engine) DownloadLane(ctx context.Context, laneID string) ([]byte, error) {
	if e.Sheet.LaneAxis().IndexOf(laneID) < 0 {
		return nil, NotFoundError{Kind: "lane", ID: laneID}
	}
	var cards []model.Card
	for _, cell := range e.Sheet.LaneCells(laneID) {
		if c, ok := e.Sheet.Card(cell.CardID); ok {
			cards = append(cards, c)
		}
	}
	title, _ := e.Sheet.LaneTitles().Get(laneID)

	if e.Persist == nil {
		return nil, nil
	}
	archive, err := e.Persist.DownloadLane(ctx, title, cards)
	if err != nil {
		opLog("downloadLane %s: %v", laneID, err)
		e.toast("Couldn't download lane")
		return nil, err
	}
	return archive, nil
}

// InsertCard places a new card at the front of a lane (just after the
// frozen header, plus offset for ordered batch inserts), tail-shifting the
// lane's existing cards one slot later. Records an insert undo entry.
func (e *Engine) InsertCard(laneID string, card model.Card, offset int) error {
	if e.Sheet.LaneAxis().IndexOf(laneID) < 0 {
		opLog("insert: unknown lane %s", laneID)
		return NotFoundError{Kind: "lane", ID: laneID}
	}
	if offset < 0 {
		offset = 0
	}
	target := 1 + offset

	e.Sheet.PutCard(card)
	e.ensureRoom(laneID)
	e.ensureTimeIndex(target)
	e.Orientation.ShiftForward(e.Sheet, laneID, target, -1)

	timeID, _ := e.Sheet.TimeAxis().At(target)
	e.Sheet.SetCell(timeID, laneID, card.ID)

	e.Ledger.Record(model.UndoOperation{
		Kind:   model.UndoInsert,
		User:   e.User,
		CardID: card.ID,
		TimeID: timeID,
		LaneID: laneID,
	})
	return nil
}
