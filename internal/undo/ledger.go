// Package undo holds the per-session undo/redo ledger: two append-ordered
// stacks of recorded operations. The ledger stores and filters entries;
// inversion semantics live in the operation engine.
//
// A ledger is owned by one client session and handed to its engine by
// dependency injection. Entries from several users can share a board, so
// every take scans for the most recent entry authored by the calling user
// and leaves everyone else's history alone.
package undo

import "nanosheet/internal/model"

type Ledger struct {
	undo []model.UndoOperation
	redo []model.UndoOperation
}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Record appends a fresh (non-undo/redo) mutation and clears the acting
// user's redo entries; other users' redo history survives.
func (l *Ledger) Record(op model.UndoOperation) {
	l.undo = append(l.undo, op)
	l.ClearRedo(op.User)
}

// TakeUndo removes and returns the most recent undo entry authored by user.
func (l *Ledger) TakeUndo(user string) (model.UndoOperation, bool) {
	return take(&l.undo, user)
}

// TakeRedo removes and returns the most recent redo entry authored by user.
func (l *Ledger) TakeRedo(user string) (model.UndoOperation, bool) {
	return take(&l.redo, user)
}

// PushUndo appends the complement of a redone operation without touching
// any redo entries.
func (l *Ledger) PushUndo(op model.UndoOperation) {
	l.undo = append(l.undo, op)
}

// PushRedo appends the complement of an undone operation.
func (l *Ledger) PushRedo(op model.UndoOperation) {
	l.redo = append(l.redo, op)
}

func (l *Ledger) ClearRedo(user string) {
	kept := l.redo[:0]
	for _, op := range l.redo {
		if op.User != user {
			kept = append(kept, op)
		}
	}
	l.redo = kept
}

func (l *Ledger) UndoDepth(user string) int { return depth(l.undo, user) }
func (l *Ledger) RedoDepth(user string) int { return depth(l.redo, user) }

func take(stack *[]model.UndoOperation, user string) (model.UndoOperation, bool) {
	s := *stack
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].User == user {
			op := s[i]
			*stack = append(s[:i], s[i+1:]...)
			return op, true
		}
	}
	return model.UndoOperation{}, false
}

func depth(stack []model.UndoOperation, user string) int {
	n := 0
	for _, op := range stack {
		if op.User == user {
			n++
		}
	}
	return n
}
