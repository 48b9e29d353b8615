package model

import "time"

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// Card is the shared per-card metadata record. All clients see the same
// card; fields are written one at a time so concurrent edits to different
// fields merge cleanly.
type Card struct {
	ID        string    `json:"cardId"`
	Title     string    `json:"title"`
	Color     string    `json:"color"`
	Prompt    string    `json:"prompt,omitempty"`
	Number    int       `json:"number,omitempty"`
	CreatedAt time.Time `json:"createdAt"`

	MediaURL  string    `json:"mediaUrl,omitempty"`
	ThumbURL  string    `json:"thumbUrl,omitempty"`
	MediaType MediaType `json:"mediaType,omitempty"`

	Attachments []Attachment `json:"attachments,omitempty"`

	// Loading marks a card whose media is still being produced externally.
	Loading bool `json:"loading,omitempty"`
}

type Attachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type UndoKind string

const (
	UndoMove          UndoKind = "move"
	UndoDelete        UndoKind = "delete"
	UndoInsert        UndoKind = "insert"
	UndoEdit          UndoKind = "edit"
	UndoLaneDelete    UndoKind = "lane-delete"
	UndoLaneDuplicate UndoKind = "lane-duplicate"
	UndoLaneReorder   UndoKind = "lane-reorder"
)

// UndoOperation is one recorded, invertible mutation. Only the fields for
// the given Kind are populated. User is the session that authored the
// mutation; another user's undo never touches it.
type UndoOperation struct {
	Kind UndoKind `json:"kind"`
	User string   `json:"user"`

	// move
	FromTime string `json:"fromTime,omitempty"`
	FromLane string `json:"fromLane,omitempty"`
	ToTime   string `json:"toTime,omitempty"`
	ToLane   string `json:"toLane,omitempty"`

	// move, delete, insert
	CardID string `json:"cardId,omitempty"`
	TimeID string `json:"timeId,omitempty"`
	LaneID string `json:"laneId,omitempty"`

	// delete (when the delete emptied the lane), lane-delete
	RemovedLane *RemovedLane `json:"removedLane,omitempty"`

	// edit
	Before map[string]any `json:"before,omitempty"`
	After  map[string]any `json:"after,omitempty"`

	// lane-duplicate
	NewLaneID    string `json:"newLaneId,omitempty"`
	SourceLaneID string `json:"sourceLaneId,omitempty"`

	// lane-reorder
	FromIndex int `json:"fromIndex,omitempty"`
	ToIndex   int `json:"toIndex,omitempty"`
}

// RemovedLane captures everything needed to restore a deleted lane at its
// original position: the lane id, its index in the lane axis, its title,
// and every occupied cell keyed by the canonical cell key.
type RemovedLane struct {
	LaneID string            `json:"laneId"`
	Index  int               `json:"index"`
	Title  string            `json:"title,omitempty"`
	Cells  map[string]string `json:"cells"`
}
