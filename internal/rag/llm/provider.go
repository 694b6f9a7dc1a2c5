package llm

import (
	"context"
	"errors"

	"github.com/docuchat/api/internal/security"
)

// Token is one increment of a streamed generation. A token with Err set is
// always the last one delivered; the channel closes after the final token.
type Token struct {
	Text string
	Err  error
}

// Gateway streams a model's answer. The stream is finite, cancellable via
// ctx and not restartable mid-flight.
type Gateway interface {
	GenerateStream(ctx context.Context, prompt string, model string) (<-chan Token, error)
}

type routerGateway struct {
	local    Gateway
	external Gateway
}

// NewRouter dispatches to the local (ollama) or external (OpenAI) gateway
// based on the model name.
func NewRouter(local, external Gateway) Gateway {
	return &routerGateway{local: local, external: external}
}

func (r *routerGateway) GenerateStream(ctx context.Context, prompt string, model string) (<-chan Token, error) {
	if security.IsLocalModel(model) {
		if r.local == nil {
			return nil, errors.New("no local model gateway configured")
		}
		return r.local.GenerateStream(ctx, prompt, model)
	}
	if r.external == nil {
		return nil, errors.New("no external model gateway configured")
	}
	return r.external.GenerateStream(ctx, prompt, model)
}
