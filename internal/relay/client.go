package relay

import (
	"context"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"nanosheet/internal/doc"
	"nanosheet/internal/sheet"
)

// Connector keeps one client sheet in sync with a relay room: incoming
// updates are applied as remote, and local mutations are forwarded. Local
// mutations made while disconnected are lost to peers (but not locally);
// the next connect re-seeds from the server snapshot.
type Connector struct {
	Sheet *sheet.Sheet

	mu sync.Mutex
	ws *websocket.Conn
}

// Connect dials the relay and runs the sync loop until ctx is done or the
// connection fails. The server snapshot is applied before any local update
// is sent.
func Connect(ctx context.Context, url string, s *sheet.Sheet) (*Connector, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	c := &Connector{Sheet: s, ws: ws}

	// First frame is the snapshot.
	var m Message
	if err := ws.ReadJSON(&m); err != nil {
		_ = ws.Close()
		return nil, err
	}
	if m.Type == "snapshot" {
		for _, u := range m.Snapshot {
			s.Doc.ApplyRemote(u)
		}
	}

	s.Doc.Subscribe(func(u doc.Update, remote bool) {
		if remote {
			return
		}
		c.mu.Lock()
		ws := c.ws
		c.mu.Unlock()
		if ws == nil {
			return
		}
		if err := ws.WriteJSON(Message{Type: "update", Update: &u}); err != nil {
			log.Printf("relay: send update: %v", err)
		}
	})

	go c.readLoop(ctx)
	return c, nil
}

func (c *Connector) readLoop(ctx context.Context) {
	defer c.Close()
	c.mu.Lock()
	ws := c.ws
	c.mu.Unlock()
	if ws == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		var m Message
		if err := ws.ReadJSON(&m); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("relay: recv: %v", err)
			}
			return
		}
		if m.Type == "update" && m.Update != nil {
			c.Sheet.Doc.ApplyRemote(*m.Update)
		}
	}
}

func (c *Connector) Close() {
	c.mu.Lock()
	ws := c.ws
	c.ws = nil
	c.mu.Unlock()
	if ws != nil {
		_ = ws.Close()
	}
}
