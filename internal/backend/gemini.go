package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGemini(ctx context.Context, apiKey string, core Core) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	name := core.Model
	if name == "" {
		name = "gemini-2.0-flash"
	}
	model := client.GenerativeModel(name)
	if core.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(core.System)}}
	}
	if core.Temperature != nil {
		model.SetTemperature(float32(*core.Temperature))
	}

	return &Gemini{client: client, model: model}, nil
}

func (b *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := b.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no response candidates from gemini")
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			out.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(out.String()), nil
}

func (b *Gemini) Close() error {
	return b.client.Close()
}
