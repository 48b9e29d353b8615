package ops

import "nanosheet/internal/model"

// Undo reverts the calling user's most recent operation and pushes the
// complementary entry onto the redo stack. It never touches another user's
// entries; with no eligible entry it is a no-op.
//
// Inversion targets recorded identifiers where possible, but move and
// delete inversion is positional: if remote edits repositioned the affected
// cells since the entry was recorded, the inverse applies against current
// state without reconciliation.
func (e *Engine) Undo() {
	op, ok := e.Ledger.TakeUndo(e.User)
	if !ok {
		return
	}
	e.applyInverse(op)
	e.Ledger.PushRedo(op)
}

// Redo re-applies the calling user's most recently undone operation and
// pushes the complement back onto the undo stack.
func (e *Engine) Redo() {
	op, ok := e.Ledger.TakeRedo(e.User)
	if !ok {
		return
	}
	e.applyForward(op)
	e.Ledger.PushUndo(op)
}

// applyForward replays op as originally performed (the redo direction).
func (e *Engine) applyForward(op model.UndoOperation) {
	switch op.Kind {
	case model.UndoMove:
		srcIdx := e.Sheet.TimeAxis().IndexOf(op.FromTime)
		dstIdx := e.Sheet.TimeAxis().IndexOf(op.ToTime)
		if srcIdx < 0 || dstIdx < 0 {
			opLog("redo move: slot gone (%s -> %s)", op.FromTime, op.ToTime)
			return
		}
		e.moveCard(op.CardID, op.FromTime, op.FromLane, srcIdx, op.ToLane, dstIdx)

	case model.UndoDelete:
		if op.RemovedLane != nil {
			e.removeLane(op.RemovedLane.LaneID)
			return
		}
		idx := e.Sheet.TimeAxis().IndexOf(op.TimeID)
		if idx < 0 {
			opLog("redo delete: slot %s gone", op.TimeID)
			return
		}
		e.Sheet.ClearCell(op.TimeID, op.LaneID)
		e.Orientation.ShiftBackward(e.Sheet, op.LaneID, idx+1)

	case model.UndoInsert:
		idx := e.Sheet.TimeAxis().IndexOf(op.TimeID)
		if idx < 0 {
			opLog("redo insert: slot %s gone", op.TimeID)
			return
		}
		e.ensureRoom(op.LaneID)
		e.Orientation.ShiftForward(e.Sheet, op.LaneID, idx, -1)
		e.Sheet.SetCell(op.TimeID, op.LaneID, op.CardID)

	case model.UndoEdit:
		e.writeCardFields(op.CardID, op.After)

	case model.UndoLaneDelete:
		if op.RemovedLane != nil {
			e.removeLane(op.RemovedLane.LaneID)
		}

	case model.UndoLaneDuplicate:
		srcIdx := e.Sheet.LaneAxis().IndexOf(op.SourceLaneID)
		if srcIdx < 0 {
			opLog("redo duplicate: lane %s gone", op.SourceLaneID)
			return
		}
		e.duplicateInto(op.SourceLaneID, op.NewLaneID, srcIdx)

	case model.UndoLaneReorder:
		e.rewriteOrder(op.FromIndex, op.ToIndex)
	}
}

// applyInverse applies the inverse of op (the undo direction):
//
//	move           swap from/to, rerun the double-shift in reverse
//	delete         tail-shift forward from the original index, re-place
//	insert         head-compact from the inserted index
//	edit           write back the pre-edit snapshot
//	lane-delete    reinsert the lane id at its index, rewrite cells verbatim
//	lane-duplicate remove the created lane and its cells
//	lane-reorder   swap from/to indices
func (e *Engine) applyInverse(op model.UndoOperation) {
	switch op.Kind {
	case model.UndoMove:
		srcIdx := e.Sheet.TimeAxis().IndexOf(op.ToTime)
		dstIdx := e.Sheet.TimeAxis().IndexOf(op.FromTime)
		if srcIdx < 0 || dstIdx < 0 {
			opLog("undo move: slot gone (%s -> %s)", op.ToTime, op.FromTime)
			return
		}
		e.moveCard(op.CardID, op.ToTime, op.ToLane, srcIdx, op.FromLane, dstIdx)

	case model.UndoDelete:
		if op.RemovedLane != nil {
			e.restoreLane(op.RemovedLane)
			return
		}
		idx := e.Sheet.TimeAxis().IndexOf(op.TimeID)
		if idx < 0 {
			opLog("undo delete: slot %s gone", op.TimeID)
			return
		}
		e.ensureRoom(op.LaneID)
		e.Orientation.ShiftForward(e.Sheet, op.LaneID, idx, -1)
		e.Sheet.SetCell(op.TimeID, op.LaneID, op.CardID)

	case model.UndoInsert:
		idx := e.Sheet.TimeAxis().IndexOf(op.TimeID)
		if idx < 0 {
			opLog("undo insert: slot %s gone", op.TimeID)
			return
		}
		e.Sheet.ClearCell(op.TimeID, op.LaneID)
		e.Orientation.ShiftBackward(e.Sheet, op.LaneID, idx+1)

	case model.UndoEdit:
		e.writeCardFields(op.CardID, op.Before)

	case model.UndoLaneDelete:
		e.restoreLane(op.RemovedLane)

	case model.UndoLaneDuplicate:
		e.removeLane(op.NewLaneID)

	case model.UndoLaneReorder:
		e.rewriteOrder(op.ToIndex, op.FromIndex)
	}
}
