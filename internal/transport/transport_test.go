package transport

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"murmur/internal/intent"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type call struct{ text, user, backend string }

type stubRouter struct {
	mu      sync.Mutex
	calls   []call
	cleared []string
}

func (s *stubRouter) Route(_ context.Context, text, user string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call{text: text, user: user})
	return "routed: " + text
}

func (s *stubRouter) SendDirect(_ context.Context, backend, text string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call{text: text, backend: backend})
	return backend + ": " + text
}

func (s *stubRouter) ClearPendingAction(_ context.Context, user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared = append(s.cleared, user)
	return nil
}

func (s *stubRouter) Diagnose(text string) intent.Diagnosis {
	return intent.Diagnosis{Input: text, Intent: intent.Coder, Reasons: []string{"programming terms: [python]"}}
}

func (s *stubRouter) Calls() []call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]call(nil), s.calls...)
}

func TestServeDefaults(t *testing.T) {
	r := &stubRouter{}

	res := serve(context.Background(), r, Request{Text: "hola", User: "  "}, "default")
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "default", res.User)
	assert.Equal(t, "routed: hola", res.Reply)

	res = serve(context.Background(), r, Request{ID: "7", Text: "hola", Backend: "coder"}, "default")
	assert.Equal(t, "7", res.ID)
	assert.Equal(t, "coder: hola", res.Reply)

	assert.Equal(t, []call{{text: "hola", user: "default"}, {text: "hola", backend: "coder"}}, r.Calls())
}
