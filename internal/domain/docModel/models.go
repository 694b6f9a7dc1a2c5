package docModel

import (
	"context"
	"time"
)

type Confidentiality string

const (
	Public       Confidentiality = "public"
	Confidential Confidentiality = "confidential"
)

// ParseConfidentiality treats anything that is not explicitly confidential as public.
func ParseConfidentiality(s string) Confidentiality {
	if Confidentiality(s) == Confidential {
		return Confidential
	}
	return Public
}

type Document struct {
	Id              string          `json:"id"`
	Filename        string          `json:"filename"`
	Confidentiality Confidentiality `json:"confidentiality"`
	Department      string          `json:"department,omitempty"`
	Client          string          `json:"client,omitempty"`
	StoragePath     string          `json:"storage_path"`
	Processed       bool            `json:"processed"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ChunkMeta is the metadata bag stored next to every chunk and used for
// filtering and source attribution.
type ChunkMeta struct {
	DocumentId      string          `json:"document_id"`
	Filename        string          `json:"filename"`
	Confidentiality Confidentiality `json:"confidentiality"`
	Department      string          `json:"department,omitempty"`
	Client          string          `json:"client,omitempty"`
	ChunkIndex      int             `json:"chunk_index"`
}

// ChunkRecord is the unit written to the vector index.
type ChunkRecord struct {
	Id     string
	Text   string
	Vector []float32
	Meta   ChunkMeta
}

// ScoredChunk is a search hit. Score is cosine similarity clamped to [0,1].
type ScoredChunk struct {
	Id    string    `json:"id"`
	Text  string    `json:"text"`
	Score float64   `json:"score"`
	Meta  ChunkMeta `json:"metadata"`
}

type DocumentStore interface {
	SaveDocument(ctx context.Context, doc Document) error
	GetDocument(ctx context.Context, id string) (Document, bool)
	ListDocuments(ctx context.Context) ([]Document, error)
	DeleteDocument(ctx context.Context, id string) error
}

type DocType string

var (
	PDF  DocType = "PDF"
	DOCX DocType = "DOCX"
	TXT  DocType = "TXT"
	ERR  DocType = "ERROR"
)
