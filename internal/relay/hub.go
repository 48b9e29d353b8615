// Package relay synchronizes sheet documents between clients over
// websockets. The hub keeps one authoritative room per sheet; every
// primitive update a client sends is applied to the room's document and
// fanned out to the other clients, and the full state is snapshotted to the
// local store on a debounce.
package relay

import (
	"context"
	"log"
	"sync"
	"time"

	"nanosheet/internal/doc"
	"nanosheet/internal/sheet"
	"nanosheet/internal/store"
)

const snapshotDebounce = 800 * time.Millisecond

type Hub struct {
	// DB may be nil: rooms then live purely in memory.
	DB *store.DB

	mu    sync.Mutex
	rooms map[string]*Room
}

func NewHub(db *store.DB) *Hub {
	return &Hub{DB: db, rooms: map[string]*Room{}}
}

// Room returns the room for sheetID, creating it — and loading its stored
// snapshot — on first access.
func (h *Hub) Room(sheetID string) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()

	if r, ok := h.rooms[sheetID]; ok {
		return r
	}
	r := newRoom(h, sheetID)
	h.rooms[sheetID] = r
	return r
}

func newRoom(h *Hub, sheetID string) *Room {
	r := &Room{
		hub:   h,
		Sheet: sheet.New(sheetID),
		conns: map[*conn]bool{},
	}

	if h.DB != nil {
		updates, ok, err := h.DB.LoadSnapshot(context.Background(), sheetID)
		if err != nil {
			log.Printf("relay: load snapshot %s: %v", sheetID, err)
		} else if ok {
			for _, u := range updates {
				r.Sheet.Doc.ApplyRemote(u)
			}
			log.Printf("relay: loaded snapshot for %s (%d updates)", sheetID, len(updates))
		}
	}

	// Snapshot after any change; server-side mutations (regenerate) also
	// broadcast here, since they have no originating connection.
	r.Sheet.Doc.Subscribe(func(u doc.Update, remote bool) {
		r.scheduleSnapshot()
		if !remote {
			r.broadcast(nil, u)
		}
	})
	return r
}

type Room struct {
	hub   *Hub
	Sheet *sheet.Sheet

	mu    sync.Mutex
	conns map[*conn]bool

	timer   *time.Timer
	pending bool
}

// scheduleSnapshot arms (or re-arms) the debounced save, so bursts of
// updates cost one write.
func (r *Room) scheduleSnapshot() {
	if r.hub.DB == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pending = true
	if r.timer == nil {
		r.timer = time.AfterFunc(snapshotDebounce, r.saveSnapshot)
		return
	}
	r.timer.Reset(snapshotDebounce)
}

func (r *Room) saveSnapshot() {
	r.mu.Lock()
	if !r.pending {
		r.mu.Unlock()
		return
	}
	r.pending = false
	r.mu.Unlock()

	updates := r.Sheet.Doc.Snapshot()
	if err := r.hub.DB.SaveSnapshot(context.Background(), r.Sheet.ID, updates); err != nil {
		log.Printf("relay: save snapshot %s: %v", r.Sheet.ID, err)
		return
	}
	log.Printf("relay: saved snapshot for %s (%d updates)", r.Sheet.ID, len(updates))
}

// FlushAll saves every room's state, used on server shutdown.
func (h *Hub) FlushAll() {
	h.mu.Lock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.Unlock()

	for _, r := range rooms {
		r.FlushSnapshot()
	}
}

// FlushSnapshot forces a pending save (shutdown path).
func (r *Room) FlushSnapshot() {
	if r.hub.DB == nil {
		return
	}
	r.mu.Lock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.pending = true
	r.mu.Unlock()
	r.saveSnapshot()
}
