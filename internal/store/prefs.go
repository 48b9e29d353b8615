package store

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
)

// Prefs stores per-client display settings. These are ephemeral view
// preferences — orientation above all — and are never written into the
// replicated document. Best effort: callers tolerate missing or corrupted
// data.
type Prefs struct {
	Version int `json:"version"`

	// Orientation is "columns" (lanes as columns, time flowing down) or
	// "rows".
	Orientation string `json:"orientation,omitempty"`

	// ThumbSize is the preferred card thumbnail edge in pixels.
	ThumbSize int `json:"thumbSize,omitempty"`

	LastSheetID string `json:"lastSheetId,omitempty"`
}

func (s Store) LoadPrefs() (*Prefs, error) {
	if strings.TrimSpace(s.Dir) == "" {
		return &Prefs{Version: 1}, nil
	}
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.prefsPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Prefs{Version: 1}, nil
		}
		return nil, err
	}
	var p Prefs
	if err := json.Unmarshal(b, &p); err != nil {
		// Best-effort; if corrupted, treat as missing.
		return &Prefs{Version: 1}, nil
	}
	if p.Version == 0 {
		p.Version = 1
	}
	return &p, nil
}

func (s Store) SavePrefs(p *Prefs) error {
	if p == nil {
		return errors.New("nil prefs")
	}
	if err := s.Ensure(); err != nil {
		return err
	}
	if p.Version == 0 {
		p.Version = 1
	}
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.prefsPath(), append(b, '\n'), 0o644)
}
