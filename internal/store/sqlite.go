package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"nanosheet/internal/doc"
	"nanosheet/internal/model"

	_ "modernc.org/sqlite"
)

func (s Store) Open(ctx context.Context) (*DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.dbPath())
	if err != nil {
		return nil, err
	}
	// Pragmas for multi-process local usage.
	// WAL enables one writer + many readers; busy_timeout helps avoid
	// "database is locked" flakiness.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	out := &DB{sql: db}
	if err := out.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return out, nil
}

type DB struct {
	sql *sql.DB
}

func (d *DB) Close() error { return d.sql.Close() }

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cards (
			card_id    TEXT PRIMARY KEY,
			title      TEXT NOT NULL,
			color      TEXT NOT NULL,
			prompt     TEXT NOT NULL DEFAULT '',
			number     INTEGER NOT NULL DEFAULT 0,
			media_url  TEXT NOT NULL DEFAULT '',
			thumb_url  TEXT NOT NULL DEFAULT '',
			media_type TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS lane_titles (
			sheet_id TEXT NOT NULL,
			lane_id  TEXT NOT NULL,
			title    TEXT NOT NULL,
			PRIMARY KEY (sheet_id, lane_id)
		);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			sheet_id   TEXT PRIMARY KEY,
			state      TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) SaveCard(ctx context.Context, c model.Card) error {
	_, err := d.sql.ExecContext(ctx, `
		INSERT INTO cards (card_id, title, color, prompt, number, media_url, thumb_url, media_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(card_id) DO UPDATE SET
			title = excluded.title,
			color = excluded.color,
			prompt = excluded.prompt,
			number = excluded.number,
			media_url = excluded.media_url,
			thumb_url = excluded.thumb_url,
			media_type = excluded.media_type`,
		c.ID, c.Title, c.Color, c.Prompt, c.Number,
		c.MediaURL, c.ThumbURL, string(c.MediaType),
		c.CreatedAt.UTC().Format(time.RFC3339))
	return err
}

func (d *DB) GetCard(ctx context.Context, cardID string) (model.Card, bool, error) {
	row := d.sql.QueryRowContext(ctx, `
		SELECT card_id, title, color, prompt, number, media_url, thumb_url, media_type, created_at
		FROM cards WHERE card_id = ?`, cardID)
	c, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Card{}, false, nil
	}
	if err != nil {
		return model.Card{}, false, err
	}
	return c, true, nil
}

// GetCards fetches cards by id, skipping ids with no record, preserving
// request order.
func (d *DB) GetCards(ctx context.Context, ids []string) ([]model.Card, error) {
	out := make([]model.Card, 0, len(ids))
	for _, id := range ids {
		c, ok, err := d.GetCard(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, c)
		}
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(r rowScanner) (model.Card, error) {
	var c model.Card
	var mediaType, createdAt string
	err := r.Scan(&c.ID, &c.Title, &c.Color, &c.Prompt, &c.Number,
		&c.MediaURL, &c.ThumbURL, &mediaType, &createdAt)
	if err != nil {
		return model.Card{}, err
	}
	c.MediaType = model.MediaType(mediaType)
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		c.CreatedAt = t
	}
	return c, nil
}

func (d *DB) SaveLaneTitle(ctx context.Context, sheetID, laneID, title string) error {
	_, err := d.sql.ExecContext(ctx, `
		INSERT INTO lane_titles (sheet_id, lane_id, title) VALUES (?, ?, ?)
		ON CONFLICT(sheet_id, lane_id) DO UPDATE SET title = excluded.title`,
		sheetID, laneID, title)
	return err
}

// LaneTitles returns laneID -> title for every stored lane of a sheet.
func (d *DB) LaneTitles(ctx context.Context, sheetID string) (map[string]string, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT lane_id, title FROM lane_titles WHERE sheet_id = ?`, sheetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var laneID, title string
		if err := rows.Scan(&laneID, &title); err != nil {
			return nil, err
		}
		out[laneID] = title
	}
	return out, rows.Err()
}

// SaveSnapshot stores the sheet's full document state, JSON-encoded as the
// flat update list that rebuilds it.
func (d *DB) SaveSnapshot(ctx context.Context, sheetID string, updates []doc.Update) error {
	state, err := json.Marshal(updates)
	if err != nil {
		return err
	}
	_, err = d.sql.ExecContext(ctx, `
		INSERT INTO snapshots (sheet_id, state, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(sheet_id) DO UPDATE SET
			state = excluded.state,
			updated_at = excluded.updated_at`,
		sheetID, string(state), time.Now().UTC().Format(time.RFC3339))
	return err
}

// LoadSnapshot returns the stored update list for a sheet, or ok=false if
// none has been saved.
func (d *DB) LoadSnapshot(ctx context.Context, sheetID string) ([]doc.Update, bool, error) {
	var state string
	err := d.sql.QueryRowContext(ctx,
		`SELECT state FROM snapshots WHERE sheet_id = ?`, sheetID).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var updates []doc.Update
	if err := json.Unmarshal([]byte(state), &updates); err != nil {
		// A corrupted snapshot is treated as missing; the sheet starts
		// empty rather than failing to open.
		return nil, false, nil
	}
	return updates, true, nil
}
