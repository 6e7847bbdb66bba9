// Package router decides what happens to each utterance: finish a pending
// clarification, run a system command, or hand the text to a generative core.
package router

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strings"
	"time"

	"murmur/internal/backend"
	"murmur/internal/command"
	"murmur/internal/fault"
	"murmur/internal/intent"
)

const DefaultUser = "default"

const emptyReply = "I didn't hear anything, could you repeat?"

type Intents interface {
	ClassifyWithContext(text string, pending bool) intent.Intent
	Diagnose(text string) intent.Diagnosis
}

type Commands interface {
	Classify(text string) command.Command
}

type Conversation interface {
	HasPending(ctx context.Context, user string) bool
	HandleCommand(ctx context.Context, user string, cmd command.Command) (string, error)
	HandleResponse(ctx context.Context, user, text string) (string, error)
	Clear(ctx context.Context, user string) error
}

type Backends interface {
	Get(name string) (backend.Backend, bool)
}

type Option func(*Router)

// WithTimeout bounds every Route and SendDirect call.
func WithTimeout(d time.Duration) Option {
	return func(r *Router) { r.timeout = d }
}

type Router struct {
	intents  Intents
	commands Commands
	conv     Conversation
	backends Backends

	timeout time.Duration
	users   *keyedMutex
}

func New(intents Intents, commands Commands, conv Conversation, backends Backends, opts ...Option) *Router {
	r := &Router{
		intents:  intents,
		commands: commands,
		conv:     conv,
		backends: backends,
		users:    newKeyedMutex(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Route produces the reply for text said by user. It never fails: errors and
// panics are rendered as reply text.
func (r *Router) Route(ctx context.Context, text, user string) (reply string) {
	if strings.TrimSpace(text) == "" {
		return emptyReply
	}
	if user == "" {
		user = DefaultUser
	}

	unlock := r.users.Lock(user)
	defer unlock()

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			log.Error("Route panicked", "user", user, "panic", p)
			reply = fault.Message(fmt.Errorf("%v: %w", p, fault.ErrExecution))
		}
	}()

	reply, err := r.route(ctx, text, user)
	if err != nil {
		log.Warn("Route failed", "user", user, "err", err)
		return fault.Message(err)
	}
	return reply
}

func (r *Router) route(ctx context.Context, text, user string) (string, error) {
	pending := r.conv.HasPending(ctx, user)
	in := r.intents.ClassifyWithContext(text, pending)
	log.Info("Intent classified", "user", user, "intent", in)

	switch in {
	case intent.ConversationResponse:
		return r.conv.HandleResponse(ctx, user, text)

	case intent.SystemCommand:
		cmd := r.commands.Classify(text)
		log.Info("Command classified", "kind", cmd.Kind, "params", cmd.Params.Tag, "confidence", cmd.Confidence)
		if cmd.Kind == command.Unrecognized {
			return "", fault.ErrClassificationAmbiguous
		}
		return r.conv.HandleCommand(ctx, user, cmd)
	}

	b, err := r.backend(string(in))
	if err != nil {
		return "", err
	}
	return generate(ctx, b, text)
}

// backend returns the core named after the intent, falling back to the
// conversational core.
func (r *Router) backend(name string) (backend.Backend, error) {
	if b, ok := r.backends.Get(name); ok {
		return b, nil
	}
	log.Warn("Core not available, using conversational", "core", name)

	if b, ok := r.backends.Get(string(intent.Conversational)); ok {
		return b, nil
	}
	return nil, fmt.Errorf("%s and %s: %w", name, intent.Conversational, fault.ErrBackendUnavailable)
}

// SendDirect hands text to the named core without classification.
func (r *Router) SendDirect(ctx context.Context, name, text string) (reply string) {
	b, ok := r.backends.Get(name)
	if !ok {
		return fmt.Sprintf("backend %s not found", name)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			log.Error("Core panicked", "core", name, "panic", p)
			reply = fault.Message(fmt.Errorf("%v: %w", p, fault.ErrExecution))
		}
	}()

	reply, err := generate(ctx, b, text)
	if err != nil {
		log.Warn("Direct send failed", "core", name, "err", err)
		return fault.Message(err)
	}
	return reply
}

func (r *Router) ClearPendingAction(ctx context.Context, user string) error {
	if user == "" {
		user = DefaultUser
	}
	unlock := r.users.Lock(user)
	defer unlock()

	return r.conv.Clear(ctx, user)
}

func (r *Router) Diagnose(text string) intent.Diagnosis {
	return r.intents.Diagnose(text)
}

func (r *Router) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func generate(ctx context.Context, b backend.Backend, text string) (string, error) {
	out, err := b.Generate(ctx, text)
	if err == nil {
		return out, nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "", fmt.Errorf("core timed out: %w: %w", fault.ErrBackendUnavailable, err)
	}
	return "", fault.Execution("generate", err)
}
