// Package ops is the operation engine: every mutation of a sheet — card
// delete/rename/cover, drag moves, lane delete/duplicate/reorder, inserts,
// undo and redo — expressed as primitive document operations so concurrent
// clients converge.
//
// One Engine serves one client session. It owns that session's transient
// drag state and debounced persistence timers; the ledger and callbacks are
// injected so nothing here is process-global.
package ops

import (
	"context"
	"log"

	"nanosheet/internal/model"
	"nanosheet/internal/orient"
	"nanosheet/internal/sheet"
	"nanosheet/internal/undo"
)

// Persister is the external persistence collaborator. Calls are optimistic:
// local state is applied first and failures are logged, never rolled back.
type Persister interface {
	UpdateCard(ctx context.Context, c model.Card) (model.Card, error)
	FetchCards(ctx context.Context, ids []string) ([]model.Card, error)
	// DownloadLane sends the lane's ordered cards to the archival service
	// and returns the binary archive.
	DownloadLane(ctx context.Context, title string, cards []model.Card) ([]byte, error)
	FetchMedia(ctx context.Context, url string) ([]byte, error)
}

type Engine struct {
	Sheet *sheet.Sheet

	// User identifies the session for undo/redo ownership.
	User string

	// Orientation is the session's current view strategy. Swapping it is a
	// pure view change; no canonical state moves.
	Orientation orient.Strategy

	Ledger *undo.Ledger

	// Confirm asks the user to approve a destructive operation. A nil
	// Confirm declines everything.
	Confirm func(msg string) bool
	// Toast surfaces a short notice; nil drops it.
	Toast func(msg string)

	// Persist may be nil (offline session): persistence calls are skipped.
	Persist Persister

	titleFlush *debouncer
	drag       *dragState
}

func NewEngine(s *sheet.Sheet, user string, ledger *undo.Ledger) *Engine {
	return &Engine{
		Sheet:       s,
		User:        user,
		Orientation: orient.ColumnLanes{},
		Ledger:      ledger,
	}
}

func (e *Engine) toast(msg string) {
	if e.Toast != nil {
		e.Toast(msg)
	}
}

func (e *Engine) confirm(msg string) bool {
	return e.Confirm != nil && e.Confirm(msg)
}

// ensureRoom grows the time axis by one slot when the lane's last slot is
// occupied, so a tail-shift never pushes a card off the end.
func (e *Engine) ensureRoom(laneID string) {
	times := e.Sheet.TimeAxis().ToArray()
	if len(times) == 0 {
		return
	}
	if _, ok := e.Sheet.CardAt(times[len(times)-1], laneID); ok {
		e.Sheet.TimeAxis().Push(sheet.NewTimeID())
	}
}

// ensureTimeIndex grows the time axis until index exists.
func (e *Engine) ensureTimeIndex(index int) {
	for e.Sheet.TimeAxis().Len() <= index {
		e.Sheet.TimeAxis().Push(sheet.NewTimeID())
	}
}

func opLog(format string, args ...any) {
	log.Printf("ops: "+format, args...)
}
