package relay

import (
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"nanosheet/internal/doc"
)

// Message is the websocket envelope. A fresh connection receives one
// snapshot message, then both directions carry single updates.
type Message struct {
	Type     string       `json:"type"` // snapshot|update
	Update   *doc.Update  `json:"update,omitempty"`
	Snapshot []doc.Update `json:"snapshot,omitempty"`
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  32 * 1024,
	WriteBufferSize: 32 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" {
			return true
		}
		// Basic same-origin check; good enough for localhost use.
		host := strings.TrimSpace(r.Host)
		return strings.Contains(origin, "://"+host)
	},
}

type conn struct {
	ws *websocket.Conn

	// writeMu serializes writes; broadcasts and the snapshot race
	// otherwise.
	writeMu sync.Mutex
}

func (c *conn) send(m Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteJSON(m)
}

// HandleWS upgrades the request and joins the connection to the room:
// snapshot first, then a read loop applying and fanning out updates.
func (r *Room) HandleWS(w http.ResponseWriter, req *http.Request) {
	ws, err := wsUpgrader.Upgrade(w, req, nil)
	if err != nil {
		http.Error(w, "websocket upgrade failed", http.StatusBadRequest)
		return
	}
	c := &conn{ws: ws}
	defer func() {
		r.leave(c)
		_ = ws.Close()
	}()

	if err := c.send(Message{Type: "snapshot", Snapshot: r.Sheet.Doc.Snapshot()}); err != nil {
		return
	}
	r.join(c)

	for {
		var m Message
		if err := ws.ReadJSON(&m); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("relay: read %s: %v", r.Sheet.ID, err)
			}
			return
		}
		if m.Type != "update" || m.Update == nil {
			continue
		}
		r.Sheet.Doc.ApplyRemote(*m.Update)
		r.broadcast(c, *m.Update)
	}
}

func (r *Room) join(c *conn) {
	r.mu.Lock()
	r.conns[c] = true
	n := len(r.conns)
	r.mu.Unlock()
	log.Printf("relay: client joined %s (%d connected)", r.Sheet.ID, n)
}

func (r *Room) leave(c *conn) {
	r.mu.Lock()
	delete(r.conns, c)
	r.mu.Unlock()
}

// broadcast sends u to every connection except origin. Send errors just
// drop the connection; the read loop notices the close shortly after.
func (r *Room) broadcast(origin *conn, u doc.Update) {
	r.mu.Lock()
	targets := make([]*conn, 0, len(r.conns))
	for c := range r.conns {
		if c != origin {
			targets = append(targets, c)
		}
	}
	r.mu.Unlock()

	msg := Message{Type: "update", Update: &u}
	for _, c := range targets {
		if err := c.send(msg); err != nil {
			r.leave(c)
			_ = c.ws.Close()
		}
	}
}
