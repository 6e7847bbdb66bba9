package transport

import (
	"context"
	"encoding/json"
	"fmt"
	log "log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	KindText  = "text"
	KindReply = "reply"
)

type BusMessage struct {
	ID      string `json:"id,omitempty"`
	From    string `json:"from"`
	To      string `json:"to"`
	Kind    string `json:"kind"`
	Content string `json:"content"`
}

// Bus is a client of the hub websocket. Text messages addressed to name are
// routed with the sender as user and answered with a reply message.
type Bus struct {
	url     string
	name    string
	router  Router
	backoff time.Duration

	mu   sync.Mutex
	conn *websocket.Conn
}

func NewBus(url, name string, router Router) *Bus {
	return &Bus{url: url, name: name, router: router, backoff: 2 * time.Second}
}

// Run keeps a connection to the hub open, redialing after failures, until
// ctx is done.
func (b *Bus) Run(ctx context.Context) error {
	for {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, b.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Warn("Bus dial failed", "url", b.url, "err", err)
		} else {
			log.Info("Connected to bus", "url", b.url)
			b.serve(ctx, conn)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(b.backoff):
		}
	}
}

func (b *Bus) serve(ctx context.Context, conn *websocket.Conn) {
	b.mu.Lock()
	b.conn = conn
	b.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer func() {
		stop()
		conn.Close()
		b.mu.Lock()
		b.conn = nil
		b.mu.Unlock()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && !isClosed(err) {
				log.Warn("Bus read failed", "err", err)
			}
			return
		}

		var m BusMessage
		if err := json.Unmarshal(data, &m); err != nil {
			log.Debug("Ignoring malformed bus message", "err", err)
			continue
		}
		if m.To != b.name || m.Kind != KindText {
			continue
		}

		reply := b.router.Route(ctx, m.Content, m.From)
		if err := b.Write(BusMessage{ID: m.ID, From: b.name, To: m.From, Kind: KindReply, Content: reply}); err != nil {
			log.Warn("Bus write failed", "err", err)
			return
		}
	}
}

// Write sends m on the current connection.
func (b *Bus) Write(m BusMessage) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return fmt.Errorf("bus not connected")
	}
	return b.conn.WriteMessage(websocket.TextMessage, data)
}

func isClosed(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure)
}
