// Package transport exposes the router over the network: NATS request/reply,
// a websocket hub bus and an HTTP API.
package transport

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"murmur/internal/intent"
)

type Router interface {
	Route(ctx context.Context, text, user string) string
	SendDirect(ctx context.Context, backend, text string) string
	ClearPendingAction(ctx context.Context, user string) error
	Diagnose(text string) intent.Diagnosis
}

// Request is the wire form shared by the NATS and HTTP transports. Backend,
// when set, bypasses classification.
type Request struct {
	ID      string `json:"id,omitempty"`
	User    string `json:"user,omitempty"`
	Text    string `json:"text"`
	Backend string `json:"backend,omitempty"`
}

type Response struct {
	ID    string `json:"id"`
	User  string `json:"user,omitempty"`
	Reply string `json:"reply"`
}

func serve(ctx context.Context, r Router, req Request, defaultUser string) Response {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	req.User = strings.TrimSpace(req.User)
	if req.User == "" {
		req.User = defaultUser
	}

	var reply string
	if req.Backend != "" {
		reply = r.SendDirect(ctx, req.Backend, req.Text)
	} else {
		reply = r.Route(ctx, req.Text, req.User)
	}
	return Response{ID: req.ID, User: req.User, Reply: reply}
}
