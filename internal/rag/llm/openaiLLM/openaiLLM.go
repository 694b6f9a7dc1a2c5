package openaiLLM

import (
	"context"
	"fmt"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/docuchat/api/internal/config"
	"github.com/docuchat/api/internal/rag/llm"
	"github.com/docuchat/api/pkg/logger_i"
)

var logger = logger_i.NewLogger("openaiLLM")

type openaiGateway struct {
	client openai.Client
}

var (
	instance *openaiGateway
	once     sync.Once
)

// GetOpenAIGateway returns the shared gateway for externally hosted models,
// or nil when no API key is configured.
func GetOpenAIGateway(ctx context.Context) llm.Gateway {
	once.Do(func() {
		apiKey := config.OpenAIAPIKey()
		if apiKey == "" {
			logger.Warn("OPENAI_API_KEY not set, external models unavailable")
			return
		}
		instance = &openaiGateway{
			client: openai.NewClient(option.WithAPIKey(apiKey)),
		}
	})
	if instance == nil {
		return nil
	}
	return instance
}

func (g *openaiGateway) GenerateStream(ctx context.Context, prompt string, model string) (<-chan llm.Token, error) {
	stream := g.client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModel(model),
	})

	out := make(chan llm.Token, config.BufferLimit)
	go func() {
		defer close(out)
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta.Content
			if delta == "" {
				continue
			}

			select {
			case out <- llm.Token{Text: delta}:
			case <-ctx.Done():
				// The consumer may already be gone, never block on the
				// final token.
				select {
				case out <- llm.Token{Err: ctx.Err()}:
				default:
				}
				return
			}
		}

		if err := stream.Err(); err != nil {
			logger.Error("OpenAI stream failed", "model", model, "error", err)
			select {
			case out <- llm.Token{Err: fmt.Errorf("streaming completion: %w", err)}:
			case <-ctx.Done():
			}
		}
	}()

	return out, nil
}
