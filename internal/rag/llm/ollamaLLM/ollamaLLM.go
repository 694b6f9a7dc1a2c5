package ollamaLLM

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/docuchat/api/internal/config"
	"github.com/docuchat/api/internal/rag/llm"
	"github.com/docuchat/api/pkg/logger_i"
)

var logger = logger_i.NewLogger("ollamaLLM")

type ollamaClient struct {
	baseURL    string
	httpClient *http.Client
}

var (
	instance *ollamaClient
	once     sync.Once
)

// GetOllamaGateway returns the shared gateway for locally hosted models.
func GetOllamaGateway() llm.Gateway {
	once.Do(func() {
		instance = &ollamaClient{
			baseURL: config.OllamaBaseURL,
			httpClient: &http.Client{
				Timeout: config.ChatTurnTimeout,
			},
		}
	})
	return instance
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (c *ollamaClient) GenerateStream(ctx context.Context, prompt string, model string) (<-chan llm.Token, error) {
	payload, err := json.Marshal(generateRequest{Model: model, Prompt: prompt, Stream: true})
	if err != nil {
		return nil, fmt.Errorf("marshaling generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling ollama: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("ollama returned %d: %s", resp.StatusCode, string(body))
	}

	out := make(chan llm.Token, config.BufferLimit)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		decoder := json.NewDecoder(resp.Body)
		for {
			var chunk generateResponse
			if err := decoder.Decode(&chunk); err != nil {
				if err == io.EOF {
					return
				}
				logger.Error("Decoding ollama stream failed", "model", model, "error", err)
				select {
				case out <- llm.Token{Err: fmt.Errorf("decoding ollama stream: %w", err)}:
				case <-ctx.Done():
				}
				return
			}

			if chunk.Response != "" {
				select {
				case out <- llm.Token{Text: chunk.Response}:
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

			if chunk.Done {
				return
			}
		}
	}()

	return out, nil
}
