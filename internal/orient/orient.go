// Package orient maps the canonical sheet axes onto screen roles. It is a
// pure view transform: both variants read and write identical canonical
// state and identical cell keys, and differ only in drag geometry and in
// which screen direction the timeline flows.
package orient

import (
	"nanosheet/internal/sheet"
)

// Rect is the screen bounding box of a hovered cell during a drag.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Strategy is the orientation contract. Two stateless variants implement
// it; a client selects one via a single mutable field and may switch at any
// time without touching canonical data.
type Strategy interface {
	Name() string

	// Timeline and Lanes pick the semantic role of each canonical axis.
	// Both variants agree (time axis first); an earlier design where the
	// flipped variant swapped roles also swapped stored cell keys, which
	// breaks cross-orientation sharing and is deliberately not reproduced.
	Timeline(timeAxis, laneAxis []string) []string
	Lanes(timeAxis, laneAxis []string) []string

	// TimeFlowsDown reports whether the timeline runs down the screen
	// (lanes as columns) or across it (lanes as rows).
	TimeFlowsDown() bool

	// CellKey / ParseCellKey are the canonical key codec. Identical across
	// variants by contract.
	CellKey(timeID, laneID string) string
	ParseCellKey(key string) (timeID, laneID string, ok bool)

	// InsertBefore tests the pointer against the hovered cell's midpoint
	// along this orientation's time direction.
	InsertBefore(bounds Rect, p Point) bool

	// ShiftForward moves every occupied cell of laneID at time index
	// >= fromIndex one slot later, iterating from the axis end backward so
	// no cell is overwritten. An occupied run that reaches the final time
	// slot stays in place rather than lose a card. toIndex < 0 means the
	// end of the axis; otherwise only cells at index <= toIndex shift.
	ShiftForward(s *sheet.Sheet, laneID string, fromIndex, toIndex int)

	// ShiftBackward moves every occupied cell of laneID at time index
	// >= fromIndex one slot earlier (head-compaction after a removal).
	ShiftBackward(s *sheet.Sheet, laneID string, fromIndex int)
}

// ColumnLanes renders lanes as columns with time flowing down the screen.
type ColumnLanes struct{}

// RowLanes renders lanes as rows with time flowing across the screen.
type RowLanes struct{}

func ByName(name string) Strategy {
	if name == "rows" {
		return RowLanes{}
	}
	return ColumnLanes{}
}

func (ColumnLanes) Name() string { return "columns" }
func (RowLanes) Name() string    { return "rows" }

func (ColumnLanes) Timeline(timeAxis, _ []string) []string { return timeAxis }
func (RowLanes) Timeline(timeAxis, _ []string) []string    { return timeAxis }

func (ColumnLanes) Lanes(_, laneAxis []string) []string { return laneAxis }
func (RowLanes) Lanes(_, laneAxis []string) []string    { return laneAxis }

func (ColumnLanes) TimeFlowsDown() bool { return true }
func (RowLanes) TimeFlowsDown() bool    { return false }

func (ColumnLanes) CellKey(timeID, laneID string) string { return sheet.CellKey(timeID, laneID) }
func (RowLanes) CellKey(timeID, laneID string) string    { return sheet.CellKey(timeID, laneID) }

func (ColumnLanes) ParseCellKey(key string) (string, string, bool) { return sheet.ParseCellKey(key) }
func (RowLanes) ParseCellKey(key string) (string, string, bool)    { return sheet.ParseCellKey(key) }

// Time flows down, so the before/after boundary is the horizontal midline.
func (ColumnLanes) InsertBefore(bounds Rect, p Point) bool {
	return p.Y < bounds.Y+bounds.Height/2
}

// Time flows right, so the boundary is the vertical midline.
func (RowLanes) InsertBefore(bounds Rect, p Point) bool {
	return p.X < bounds.X+bounds.Width/2
}

func (ColumnLanes) ShiftForward(s *sheet.Sheet, laneID string, fromIndex, toIndex int) {
	shiftForward(s, laneID, fromIndex, toIndex)
}

func (RowLanes) ShiftForward(s *sheet.Sheet, laneID string, fromIndex, toIndex int) {
	shiftForward(s, laneID, fromIndex, toIndex)
}

func (ColumnLanes) ShiftBackward(s *sheet.Sheet, laneID string, fromIndex int) {
	shiftBackward(s, laneID, fromIndex)
}

func (RowLanes) ShiftBackward(s *sheet.Sheet, laneID string, fromIndex int) {
	shiftBackward(s, laneID, fromIndex)
}

// shiftForward opens a hole at fromIndex by moving occupied cells one slot
// later, last cell first. An occupied run that reaches the final time slot
// has nowhere to go and stays put in full — a shift never overwrites a
// card. Callers grow the axis before shifting when that matters.
func shiftForward(s *sheet.Sheet, laneID string, fromIndex, toIndex int) {
	times := s.TimeAxis().ToArray()
	if fromIndex < 0 {
		fromIndex = 0
	}
	// blocked is the first index of the occupied run ending at the axis
	// end, or len(times) when the final slot is free. No cell may shift
	// into the run.
	blocked := len(times)
	for blocked > 0 {
		if _, ok := s.CardAt(times[blocked-1], laneID); !ok {
			break
		}
		blocked--
	}
	last := len(times) - 1
	if toIndex >= 0 && toIndex < last {
		last = toIndex
	}
	for i := last; i >= fromIndex; i-- {
		if i+1 >= blocked {
			continue
		}
		cardID, ok := s.CardAt(times[i], laneID)
		if !ok {
			continue
		}
		s.ClearCell(times[i], laneID)
		s.SetCell(times[i+1], laneID, cardID)
	}
}

// shiftBackward closes the hole left at fromIndex-1 by moving every
// occupied cell at index >= fromIndex one slot earlier, first cell first.
// Ordinary deletes remove at index >= 1 and compact from index >= 2, so the
// frozen slot is only ever refilled when a replayed inverse vacated it.
func shiftBackward(s *sheet.Sheet, laneID string, fromIndex int) {
	times := s.TimeAxis().ToArray()
	if fromIndex < 1 {
		fromIndex = 1
	}
	for i := fromIndex; i < len(times); i++ {
		cardID, ok := s.CardAt(times[i], laneID)
		if !ok {
			continue
		}
		s.ClearCell(times[i], laneID)
		s.SetCell(times[i-1], laneID, cardID)
	}
}
