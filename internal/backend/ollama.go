package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

type Ollama struct {
	llm  *ollama.LLM
	core Core
}

func NewOllama(host string, core Core) (*Ollama, error) {
	opts := []ollama.Option{ollama.WithModel(core.Model)}
	if host != "" {
		opts = append(opts, ollama.WithServerURL(host))
	}
	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("ollama client: %w", err)
	}
	return &Ollama{llm: llm, core: core}, nil
}

func (b *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	var callOpts []llms.CallOption
	if b.core.Temperature != nil {
		callOpts = append(callOpts, llms.WithTemperature(*b.core.Temperature))
	}

	out, err := llms.GenerateFromSinglePrompt(ctx, b.llm, withSystem(b.core.System, prompt), callOpts...)
	if err != nil {
		return "", fmt.Errorf("ollama %s: %w", b.core.Model, err)
	}
	return strings.TrimSpace(out), nil
}

// withSystem prefixes the instructions for providers that take a single prompt.
func withSystem(system, prompt string) string {
	if system == "" {
		return prompt
	}
	return system + "\n\n" + prompt
}
