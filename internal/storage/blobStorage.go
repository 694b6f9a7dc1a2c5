package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docuchat/api/internal/domain/docModel"
	"github.com/docuchat/api/pkg/logger_i"
)

// BlobStorage persists uploaded files and extracts their text. PDF parsing
// is a black box behind ReadText as far as the ingestion pipeline cares.
type BlobStorage interface {
	Save(filename string, data []byte) (string, error)
	Delete(path string) error
	ReadText(path string) (string, error)
}

type localStorage struct {
	dir    string
	logger *logger_i.Logger
}

func NewLocalStorage(dir string) (BlobStorage, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &localStorage{
		dir:    dir,
		logger: logger_i.NewLogger("BlobStorage"),
	}, nil
}

func (s *localStorage) Save(filename string, data []byte) (string, error) {
	name := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(filename))
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0640); err != nil {
		return "", fmt.Errorf("writing blob: %w", err)
	}
	s.logger.Debug("Saved blob", "path", path, "bytes", len(data))
	return path, nil
}

func (s *localStorage) Delete(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting blob: %w", err)
	}
	return nil
}

func (s *localStorage) ReadText(path string) (string, error) {
	docType := GetDocType(path)
	if docType == docModel.ERR {
		return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}

	pages, err := extractText(path, docType)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, page := range pages {
		sb.WriteString(page.Content)
	}
	return sb.String(), nil
}

// GetDocType is used by the upload handler to reject unsupported files
// before a task is ever created.
func GetDocType(docPath string) docModel.DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return docModel.PDF
	case ".docx", ".rtf", ".odt":
		return docModel.DOCX
	case ".txt":
		return docModel.TXT
	default:
		return docModel.ERR
	}
}
