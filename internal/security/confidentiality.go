package security

import (
	"context"
	"fmt"
	"strings"

	"github.com/docuchat/api/internal/domain/docModel"
)

// Local models run on-prem (ollama) and may see confidential documents.
// Everything else is treated as external and is capped at public material.
var localModels = map[string]bool{
	"mistral":  true,
	"llama3":   true,
	"llama3.1": true,
	"gemma2":   true,
	"phi3":     true,
}

var externalModelPrefixes = []string{"gpt-", "o1", "o3", "chatgpt"}

func IsLocalModel(model string) bool {
	name := strings.ToLower(strings.TrimSpace(model))
	if localModels[name] {
		return true
	}
	for _, prefix := range externalModelPrefixes {
		if strings.HasPrefix(name, prefix) {
			return false
		}
	}
	// Unknown names are assumed ollama-served; confidentiality enforcement
	// below still fails closed when documents cannot be checked.
	return true
}

func IsKnownModel(model string) bool {
	name := strings.ToLower(strings.TrimSpace(model))
	if name == "" {
		return false
	}
	if localModels[name] {
		return true
	}
	for _, prefix := range externalModelPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// Ceiling returns the highest confidentiality a model may read.
func Ceiling(model string) docModel.Confidentiality {
	if IsLocalModel(model) {
		return docModel.Confidential
	}
	return docModel.Public
}

// AccessError is a hard policy rejection raised before any retrieval or
// generation happens. Never retryable with the same inputs.
type AccessError struct {
	Model string
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("external model %q cannot access confidential documents; use a local model or remove the confidential attachments", e.Model)
}

// ValidateModelAccess blocks the turn when an external model is paired with
// confidential attachments. A store miss for an attached id counts as
// confidential: fail closed.
func ValidateModelAccess(ctx context.Context, model string, documentIDs []string, docs docModel.DocumentStore) error {
	if IsLocalModel(model) {
		return nil
	}
	for _, id := range documentIDs {
		doc, found := docs.GetDocument(ctx, id)
		if !found || doc.Confidentiality == docModel.Confidential {
			return &AccessError{Model: model}
		}
	}
	return nil
}
