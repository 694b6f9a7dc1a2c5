package chat

import (
	"fmt"
	"strings"

	"github.com/docuchat/api/internal/domain/chatModel"
	"github.com/docuchat/api/internal/domain/docModel"
)

const promptTemplate = `You are an intelligent assistant designed to help users answer business-related questions based on their own documents.

Use only the content from the DOCUMENTS section below to formulate your answer.
If the answer is not directly supported by the information in the documents, clearly say:

> "I'm sorry, but I could not find sufficient information in the provided documents to answer your question."

Respond in **English**.

DOCUMENTS:
%s

OPTIONAL CHAT HISTORY:
%s

USER QUESTION:
%s
`

// buildPrompt grounds the model on the retrieved chunks. An empty chunk set
// still produces a full prompt so the model falls back to its refusal line.
func buildPrompt(chunks []docModel.ScoredChunk, history []chatModel.Message, question string) string {
	chunkTexts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		chunkTexts = append(chunkTexts, chunk.Text)
	}

	historyLines := make([]string, 0, len(history))
	for _, msg := range history {
		if msg.Content == "" {
			continue
		}
		historyLines = append(historyLines, fmt.Sprintf("%s: %s", msg.Role, msg.Content))
	}

	return fmt.Sprintf(promptTemplate,
		strings.Join(chunkTexts, "\n\n"),
		strings.Join(historyLines, "\n"),
		question,
	)
}
