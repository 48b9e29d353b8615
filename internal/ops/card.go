package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"nanosheet/internal/model"
)

// Delete removes the card at (timeID, laneID) and head-compacts the lane.
//
// The frozen header slot is special: its card is never deleted alone.
// Instead the user is asked to confirm deleting the whole lane, with the
// occupied-cell count in the message, and the delete is delegated to
// DeleteLane.
func (e *Engine) Delete(timeID, laneID string) error {
	times := e.Sheet.TimeAxis().ToArray()
	if len(times) == 0 {
		return nil
	}
	if timeID == times[0] {
		if e.Sheet.LaneAxis().IndexOf(laneID) < 0 {
			opLog("delete: unknown lane %s", laneID)
			return NotFoundError{Kind: "lane", ID: laneID}
		}
		count := e.Sheet.OccupiedCount(laneID)
		msg := fmt.Sprintf("Delete this lane? %d card(s) will be removed.", count)
		if !e.confirm(msg) {
			return nil
		}
		return e.DeleteLane(laneID)
	}

	idx := e.Sheet.TimeAxis().IndexOf(timeID)
	if idx < 0 {
		opLog("delete: unknown time slot %s", timeID)
		return NotFoundError{Kind: "time slot", ID: timeID}
	}
	cardID, ok := e.Sheet.CardAt(timeID, laneID)
	if !ok {
		opLog("delete: no card at %s:%s", timeID, laneID)
		return NotFoundError{Kind: "card cell", ID: timeID + ":" + laneID}
	}

	e.Sheet.ClearCell(timeID, laneID)
	e.Orientation.ShiftBackward(e.Sheet, laneID, idx+1)

	op := model.UndoOperation{
		Kind:   model.UndoDelete,
		User:   e.User,
		CardID: cardID,
		TimeID: timeID,
		LaneID: laneID,
	}

	// A lane with no occupied cells left (frozen slot included) leaves the
	// lane axis; the undo entry must then restore the whole lane.
	if e.Sheet.OccupiedCount(laneID) == 0 {
		laneIdx := e.Sheet.LaneAxis().IndexOf(laneID)
		title, _ := e.Sheet.LaneTitles().Get(laneID)
		op.RemovedLane = &model.RemovedLane{
			LaneID: laneID,
			Index:  laneIdx,
			Title:  title,
			Cells:  map[string]string{e.Orientation.CellKey(timeID, laneID): cardID},
		}
		e.Sheet.LaneAxis().Delete(laneID)
		e.Sheet.LaneTitles().Delete(laneID)
	}

	e.Ledger.Record(op)
	return nil
}

// Rename writes the card title immediately — remote viewers see it live —
// and schedules one debounced persistence call for the card, replacing any
// pending timer. CommitRename flushes the pending call without waiting.
func (e *Engine) Rename(cardID, title string) error {
	// An absent title records as nil so the edit inverse deletes the
	// field instead of writing "".
	before, had := e.Sheet.Cards().Field(cardID, "title")
	if had && before == title {
		return nil
	}
	if !had {
		if title == "" {
			return nil
		}
		before = nil
	}

	e.Sheet.Cards().SetField(cardID, "title", title)
	e.Ledger.Record(model.UndoOperation{
		Kind:   model.UndoEdit,
		User:   e.User,
		CardID: cardID,
		Before: map[string]any{"title": before},
		After:  map[string]any{"title": title},
	})

	if e.Persist == nil {
		return nil
	}
	if e.titleFlush == nil {
		e.titleFlush = newDebouncer(titleDebounce)
	}
	e.titleFlush.Schedule(cardID, func() { e.persistCard(cardID) })
	return nil
}

// CommitRename fires the pending debounced persistence call for cardID
// immediately (blur / explicit commit).
func (e *Engine) CommitRename(cardID string) {
	if e.titleFlush != nil {
		e.titleFlush.Flush(cardID)
	}
}

// SetPrompt edits the card's prompt text with the same live-write plus
// debounced-persist behavior as Rename.
func (e *Engine) SetPrompt(cardID, prompt string) error {
	before, had := e.Sheet.Cards().Field(cardID, "prompt")
	if had && before == prompt {
		return nil
	}
	if !had {
		if prompt == "" {
			return nil
		}
		before = nil
	}

	e.Sheet.Cards().SetField(cardID, "prompt", prompt)
	e.Ledger.Record(model.UndoOperation{
		Kind:   model.UndoEdit,
		User:   e.User,
		CardID: cardID,
		Before: map[string]any{"prompt": before},
		After:  map[string]any{"prompt": prompt},
	})

	if e.Persist == nil {
		return nil
	}
	if e.titleFlush == nil {
		e.titleFlush = newDebouncer(titleDebounce)
	}
	e.titleFlush.Schedule(cardID, func() { e.persistCard(cardID) })
	return nil
}

func (e *Engine) persistCard(cardID string) {
	c, ok := e.Sheet.Card(cardID)
	if !ok {
		return
	}
	if _, err := e.Persist.UpdateCard(context.Background(), c); err != nil {
		// Optimistic local state stays; the user can undo to self-correct.
		opLog("persist card %s: %v", cardID, err)
		e.toast("Couldn't save card changes")
	}
}

// coverFields are the frozen-card fields SetCover rewrites atomically.
var coverFields = []string{"mediaUrl", "thumbUrl", "mediaType", "color"}

// SetCover copies the source card's media onto the frozen header card of
// the lane containing it — or, when the source has no media, its color
// (with media fields cleared). The frozen card's prior state is recorded so
// undo restores it exactly.
func (e *Engine) SetCover(cardID string) error {
	_, laneID, ok := e.Sheet.FindCard(cardID)
	if !ok {
		opLog("setCover: card %s is not on the sheet", cardID)
		return NotFoundError{Kind: "card", ID: cardID}
	}
	times := e.Sheet.TimeAxis().ToArray()
	if len(times) == 0 {
		return nil
	}
	frozenID, ok := e.Sheet.CardAt(times[0], laneID)
	if !ok {
		opLog("setCover: lane %s has no header card", laneID)
		return NotFoundError{Kind: "header card", ID: laneID}
	}

	src, ok := e.Sheet.Card(cardID)
	if !ok {
		return NotFoundError{Kind: "card", ID: cardID}
	}

	before := map[string]any{}
	after := map[string]any{}
	for _, f := range coverFields {
		if v, has := e.Sheet.Cards().Field(frozenID, f); has {
			before[f] = v
		} else {
			before[f] = nil
		}
	}

	if src.MediaURL != "" {
		after["mediaUrl"] = src.MediaURL
		after["thumbUrl"] = src.ThumbURL
		after["mediaType"] = string(src.MediaType)
		after["color"] = before["color"]
	} else {
		after["color"] = src.Color
		after["mediaUrl"] = nil
		after["thumbUrl"] = nil
		after["mediaType"] = nil
	}

	e.writeCardFields(frozenID, after)
	e.Ledger.Record(model.UndoOperation{
		Kind:   model.UndoEdit,
		User:   e.User,
		CardID: frozenID,
		Before: before,
		After:  after,
	})

	if e.Persist != nil {
		if frozen, ok := e.Sheet.Card(frozenID); ok {
			if _, err := e.Persist.UpdateCard(context.Background(), frozen); err != nil {
				opLog("persist cover %s: %v", frozenID, err)
				e.toast("Couldn't save cover")
			}
		}
	}
	return nil
}

// writeCardFields applies a field snapshot: nil values delete the field.
func (e *Engine) writeCardFields(cardID string, fields map[string]any) {
	for f, v := range fields {
		if v == nil {
			e.Sheet.Cards().DeleteField(cardID, f)
			continue
		}
		e.Sheet.Cards().SetField(cardID, f, v)
	}
}

// DownloadArtifacts is the result of a card download: the media asset plus
// a JSON metadata document, named for saving side by side.
type DownloadArtifacts struct {
	MediaName    string
	Media        []byte
	MetadataName string
	Metadata     []byte
}

// Download produces the card's media and metadata. Non-mutating; records no
// undo entry.
func (e *Engine) Download(ctx context.Context, cardID string) (DownloadArtifacts, error) {
	c, ok := e.Sheet.Card(cardID)
	if !ok {
		return DownloadArtifacts{}, NotFoundError{Kind: "card", ID: cardID}
	}

	out := DownloadArtifacts{MetadataName: cardID + ".json"}
	meta, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return DownloadArtifacts{}, err
	}
	out.Metadata = meta

	if c.MediaURL != "" && e.Persist != nil {
		data, err := e.Persist.FetchMedia(ctx, c.MediaURL)
		if err != nil {
			opLog("download media %s: %v", cardID, err)
			return DownloadArtifacts{}, err
		}
		out.Media = data
		ext := path.Ext(c.MediaURL)
		if ext == "" {
			ext = ".bin"
		}
		out.MediaName = MediaPath(cardID, ext[1:], false)
	}
	return out, nil
}

// MediaPath builds the date-based media path used by the persistence
// service: mm-dd-yyyy/<id>[_thumb].<ext>.
func MediaPath(fileID, ext string, thumbnail bool) string {
	suffix := ""
	if thumbnail {
		suffix = "_thumb"
	}
	return time.Now().Format("01-02-2006") + "/" + fileID + suffix + "." + ext
}
