package chatModel

import (
	"context"
	"time"

	"github.com/docuchat/api/internal/domain/docModel"
)

type Role string
type MessageStatus string
type SearchMode string
type EventType string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"

	MessagePending   MessageStatus = "pending"
	MessageSending   MessageStatus = "sending"
	MessageStreaming MessageStatus = "streaming"
	MessageCompleted MessageStatus = "completed"
	MessageError     MessageStatus = "error"

	SearchSelected SearchMode = "selected"
	SearchHybrid   SearchMode = "hybrid"
	SearchAll      SearchMode = "all"

	EventContent EventType = "content"
	EventSources EventType = "sources"
	EventDone    EventType = "done"
	EventError   EventType = "error"
)

func ParseSearchMode(s string) (SearchMode, bool) {
	switch SearchMode(s) {
	case SearchSelected, SearchHybrid, SearchAll:
		return SearchMode(s), true
	case "":
		return SearchAll, true
	}
	return "", false
}

type ChatSession struct {
	Id        string            `json:"id"`
	Title     string            `json:"title"`
	Model     string            `json:"model"`
	Status    string            `json:"status,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Source is one attributed retrieval hit attached to a completed message.
type Source struct {
	Text     string             `json:"text"`
	Score    float64            `json:"score"`
	Metadata docModel.ChunkMeta `json:"metadata"`
}

type TurnError struct {
	Message string `json:"message"`
	Retry   bool   `json:"can_retry"`
}

// Message is append-only while streaming and immutable once completed or
// errored. Sources, Confidence and Hallucination stay nil until completion.
type Message struct {
	Id            string        `json:"id"`
	SessionId     string        `json:"session_id"`
	Role          Role          `json:"role"`
	Content       string        `json:"content"`
	Status        MessageStatus `json:"status"`
	Sources       []Source      `json:"sources,omitempty"`
	Confidence    *float64      `json:"confidence,omitempty"`
	Hallucination *bool         `json:"hallucination,omitempty"`
	Error         *TurnError    `json:"error,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// StreamEvent is the tagged event any transport can deliver: content deltas
// while streaming, one sources event, then exactly one done or error.
type StreamEvent struct {
	Type    EventType  `json:"type"`
	Delta   string     `json:"delta,omitempty"`
	Sources []Source   `json:"sources,omitempty"`
	Error   *TurnError `json:"error,omitempty"`
	Message *Message   `json:"message,omitempty"` //final snapshot on done/error
}

type SessionStore interface {
	SaveSession(ctx context.Context, session ChatSession) error
	GetSession(ctx context.Context, id string) (ChatSession, bool)
	DeleteSession(ctx context.Context, id string) error
}

type MessageStore interface {
	SaveMessage(ctx context.Context, msg Message) error
	GetMessage(ctx context.Context, sessionId, msgId string) (Message, bool)
	ListMessages(ctx context.Context, sessionId string) ([]Message, error)
	DeleteSessionMessages(ctx context.Context, sessionId string) error
}
