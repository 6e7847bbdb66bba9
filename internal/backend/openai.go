package backend

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"net/http"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

type OpenAI struct {
	client openai.Client
	core   Core
}

func NewOpenAI(apiKey string, core Core, httpClient *http.Client, opts ...option.RequestOption) *OpenAI {
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(httpClient))
	}
	if core.Host != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(core.Host))
	}
	if core.Model == "" {
		core.Model = string(openai.ChatModelGPT5Nano)
	}
	return &OpenAI{client: openai.NewClient(append(reqOpts, opts...)...), core: core}
}

func (b *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if b.core.System != "" {
		messages = append(messages, openai.SystemMessage(b.core.System))
	}
	messages = append(messages, openai.UserMessage(prompt))

	params := openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    openai.ChatModel(b.core.Model),
	}
	if b.core.Temperature != nil {
		params.Temperature = openai.Float(*b.core.Temperature)
	}

	resp, err := b.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", errors.New("empty message content")
	}

	log.Debug("Completion received", "model", b.core.Model, "chars", len(content))
	return content, nil
}
