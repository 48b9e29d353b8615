// Package sheet is the canonical store for one collaborative card grid: two
// ordered axes, a sparse cell-occupancy map, per-card metadata, and lane
// titles, all held in a replicated document.
//
// The store is orientation-agnostic. rowOrder is the time axis (index 0 is
// the frozen header slot), colOrder is the lane axis. Cell keys are always
// "timeId:laneId" no matter how a client displays the grid.
package sheet

import (
	"strings"
	"time"

	"nanosheet/internal/doc"
	"nanosheet/internal/model"
)

const (
	timeAxisName   = "rowOrder"
	laneAxisName   = "colOrder"
	cellsName      = "cells"
	cardsName      = "cardsMetadata"
	laneTitlesName = "laneTitles"

	// PlaceholderID is the synthetic trailing entry appended to the derived
	// timeline/lane views so presentation can render an append affordance.
	// It never appears in canonical state.
	PlaceholderID = "placeholder"
)

type Sheet struct {
	ID  string
	Doc *doc.Doc
}

func New(id string) *Sheet {
	return &Sheet{ID: id, Doc: doc.New()}
}

func (s *Sheet) TimeAxis() *doc.List  { return s.Doc.List(timeAxisName) }
func (s *Sheet) LaneAxis() *doc.List  { return s.Doc.List(laneAxisName) }
func (s *Sheet) Cells() *doc.Map      { return s.Doc.Map(cellsName) }
func (s *Sheet) Cards() *doc.Nested   { return s.Doc.Nested(cardsName) }
func (s *Sheet) LaneTitles() *doc.Map { return s.Doc.Map(laneTitlesName) }

// CellKey builds the canonical occupancy key. The format is fixed at
// time-first for every orientation; switching a client's view must never
// rewrite stored keys.
func CellKey(timeID, laneID string) string {
	return timeID + ":" + laneID
}

// ParseCellKey is the exact inverse of CellKey. A key without a separator
// is a caller defect; ok=false lets the caller log and abort.
func ParseCellKey(key string) (timeID, laneID string, ok bool) {
	i := strings.IndexByte(key, ':')
	if i <= 0 || i >= len(key)-1 {
		return "", "", false
	}
	return key[:i], key[i+1:], true
}

// Timeline returns the time axis with the trailing placeholder appended.
func (s *Sheet) Timeline() []string {
	return append(s.TimeAxis().ToArray(), PlaceholderID)
}

// Lanes returns the lane axis with the trailing placeholder appended.
func (s *Sheet) Lanes() []string {
	return append(s.LaneAxis().ToArray(), PlaceholderID)
}

// CardAt returns the card id occupying (timeID, laneID), if any.
func (s *Sheet) CardAt(timeID, laneID string) (string, bool) {
	return s.Cells().Get(CellKey(timeID, laneID))
}

func (s *Sheet) SetCell(timeID, laneID, cardID string) {
	s.Cells().Set(CellKey(timeID, laneID), cardID)
}

func (s *Sheet) ClearCell(timeID, laneID string) {
	s.Cells().Delete(CellKey(timeID, laneID))
}

// FindCard locates the unique cell referencing cardID. A card occupies at
// most one cell at a time.
func (s *Sheet) FindCard(cardID string) (timeID, laneID string, ok bool) {
	s.Cells().ForEach(func(key, value string) {
		if ok || value != cardID {
			return
		}
		if t, l, kOK := ParseCellKey(key); kOK {
			timeID, laneID, ok = t, l, true
		}
	})
	return timeID, laneID, ok
}

// LaneCells returns the occupied cells of one lane in time order as
// (timeIndex, cardID) pairs.
func (s *Sheet) LaneCells(laneID string) []LaneCell {
	var out []LaneCell
	for i, timeID := range s.TimeAxis().ToArray() {
		if cardID, ok := s.CardAt(timeID, laneID); ok {
			out = append(out, LaneCell{TimeIndex: i, TimeID: timeID, CardID: cardID})
		}
	}
	return out
}

type LaneCell struct {
	TimeIndex int
	TimeID    string
	CardID    string
}

// OccupiedCount counts occupied cells in a lane, frozen slot included.
func (s *Sheet) OccupiedCount(laneID string) int {
	return len(s.LaneCells(laneID))
}

// PutCard writes every populated field of c into the card metadata map,
// field by field so concurrent writers to other fields merge cleanly.
func (s *Sheet) PutCard(c model.Card) {
	cards := s.Cards()
	cards.SetField(c.ID, "title", c.Title)
	cards.SetField(c.ID, "color", c.Color)
	if c.Prompt != "" {
		cards.SetField(c.ID, "prompt", c.Prompt)
	}
	if c.Number != 0 {
		cards.SetField(c.ID, "number", c.Number)
	}
	if !c.CreatedAt.IsZero() {
		cards.SetField(c.ID, "createdAt", c.CreatedAt.Format(time.RFC3339))
	}
	if c.MediaURL != "" {
		cards.SetField(c.ID, "mediaUrl", c.MediaURL)
	}
	if c.ThumbURL != "" {
		cards.SetField(c.ID, "thumbUrl", c.ThumbURL)
	}
	if c.MediaType != "" {
		cards.SetField(c.ID, "mediaType", string(c.MediaType))
	}
	if c.Loading {
		cards.SetField(c.ID, "loading", true)
	}
}

// Reset clears both axes, all cells, all card metadata and all lane titles
// so the sheet can be reseeded from scratch.
func (s *Sheet) Reset() {
	s.TimeAxis().Replace(nil)
	s.LaneAxis().Replace(nil)

	cells := s.Cells()
	cells.ForEach(func(key, _ string) { cells.Delete(key) })

	titles := s.LaneTitles()
	titles.ForEach(func(key, _ string) { titles.Delete(key) })

	cards := s.Cards()
	for _, id := range cards.Keys() {
		fields, ok := cards.Get(id)
		if !ok {
			continue
		}
		for field := range fields {
			cards.DeleteField(id, field)
		}
	}
}

// Card materializes the metadata map for cardID into a model.Card.
func (s *Sheet) Card(cardID string) (model.Card, bool) {
	fields, ok := s.Cards().Get(cardID)
	if !ok {
		return model.Card{}, false
	}
	c := model.Card{ID: cardID}
	c.Title = fieldString(fields, "title")
	c.Color = fieldString(fields, "color")
	c.Prompt = fieldString(fields, "prompt")
	c.Number = fieldInt(fields, "number")
	c.MediaURL = fieldString(fields, "mediaUrl")
	c.ThumbURL = fieldString(fields, "thumbUrl")
	c.MediaType = model.MediaType(fieldString(fields, "mediaType"))
	if v, ok := fields["loading"].(bool); ok {
		c.Loading = v
	}
	if raw := fieldString(fields, "createdAt"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			c.CreatedAt = t
		}
	}
	return c, true
}

func fieldString(fields map[string]any, name string) string {
	v, _ := fields[name].(string)
	return v
}

func fieldInt(fields map[string]any, name string) int {
	switch v := fields[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		// JSON decoding of relayed updates produces float64.
		return int(v)
	}
	return 0
}
