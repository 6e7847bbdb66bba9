package transport

import (
	"context"
	"encoding/json"
	"fmt"
	log "log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

type NATS struct {
	conn    *nats.Conn
	sub     *nats.Subscription
	subject string
	router  Router
	user    string
}

func NewNATS(url, subject, defaultUser string, router Router) (*NATS, error) {
	conn, err := nats.Connect(url,
		nats.Name("murmur"),
		nats.Timeout(10*time.Second),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	log.Info("Connected to NATS", "url", url)
	return &NATS{conn: conn, subject: subject, router: router, user: defaultUser}, nil
}

func (n *NATS) Start() error {
	sub, err := n.conn.Subscribe(n.subject, n.handle)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", n.subject, err)
	}
	n.sub = sub

	log.Info("Subscribed", "subject", n.subject)
	return nil
}

func (n *NATS) handle(msg *nats.Msg) {
	var req Request
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		log.Warn("Bad NATS request", "err", err)
		n.respond(msg, Response{Reply: "invalid request format"})
		return
	}

	res := serve(context.Background(), n.router, req, n.user)
	n.respond(msg, res)
}

func (n *NATS) respond(msg *nats.Msg, res Response) {
	if msg.Reply == "" {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		log.Error("Failed to marshal response", "err", err)
		return
	}
	if err := msg.Respond(data); err != nil {
		log.Warn("Failed to send response", "id", res.ID, "err", err)
	}
}

func (n *NATS) Close() error {
	if n.sub != nil {
		_ = n.sub.Unsubscribe()
	}
	if n.conn != nil {
		n.conn.Close()
		log.Info("NATS connection closed")
	}
	return nil
}
