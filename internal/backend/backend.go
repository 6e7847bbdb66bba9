// Package backend holds the generative cores the router hands non-command
// text to, keyed by intent name.
package backend

import (
	"context"
	"fmt"
	"io"
	log "log/slog"
	"net/http"
	"sort"
)

// Backend produces a text reply for a prompt.
type Backend interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Credentials carries what the remote providers need. HTTPClient, when set,
// is used for OpenAI traffic (typically a SOCKS client).
type Credentials struct {
	OpenAIKey  string
	GeminiKey  string
	OllamaHost string
	HTTPClient *http.Client
}

// Set is the collection of loaded backends.
type Set struct {
	backends map[string]Backend
}

func NewSet(backends map[string]Backend) *Set {
	if backends == nil {
		backends = map[string]Backend{}
	}
	return &Set{backends: backends}
}

// Build instantiates every configured core. A core that cannot be built is
// left out and logged; the router falls back to the conversational core.
func Build(ctx context.Context, cores map[string]Core, creds Credentials) *Set {
	set := NewSet(nil)
	for name, c := range cores {
		b, err := build(ctx, c, creds)
		if err != nil {
			log.Warn("Core not loaded", "core", name, "provider", c.Provider, "err", err)
			continue
		}
		log.Info("Core loaded", "core", name, "provider", c.Provider, "model", c.Model)
		set.backends[name] = b
	}
	return set
}

func build(ctx context.Context, c Core, creds Credentials) (Backend, error) {
	switch c.Provider {
	case ProviderOpenAI:
		if creds.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set")
		}
		return NewOpenAI(creds.OpenAIKey, c, creds.HTTPClient), nil
	case ProviderOllama:
		host := c.Host
		if host == "" {
			host = creds.OllamaHost
		}
		return NewOllama(host, c)
	case ProviderGemini:
		if creds.GeminiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY not set")
		}
		return NewGemini(ctx, creds.GeminiKey, c)
	case ProviderExec:
		return NewExec(c), nil
	case ProviderService:
		return nil, fmt.Errorf("service cores are not implemented")
	}
	return nil, fmt.Errorf("unknown provider %q", c.Provider)
}

func (s *Set) Get(name string) (Backend, bool) {
	b, ok := s.backends[name]
	return b, ok
}

func (s *Set) Names() []string {
	names := make([]string, 0, len(s.backends))
	for n := range s.backends {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Close releases backends that hold connections.
func (s *Set) Close() {
	for name, b := range s.backends {
		if c, ok := b.(io.Closer); ok {
			if err := c.Close(); err != nil {
				log.Warn("Failed to close core", "core", name, "err", err)
			}
		}
	}
}
