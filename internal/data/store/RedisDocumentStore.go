package store

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/docuchat/api/internal/config"
	"github.com/docuchat/api/internal/data/redisStore"
	"github.com/docuchat/api/internal/domain/docModel"
	"github.com/docuchat/api/pkg/logger_i"
)

const documentCatalogKey = "documents"

type RedisDocumentStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisDocumentStore(ctx context.Context) *RedisDocumentStore {
	inner := redisStore.GetRedisStore(ctx, config.RedisDocumentStore)
	if inner == nil {
		return nil
	}
	return &RedisDocumentStore{
		store:  inner,
		logger: logger_i.NewLogger("DocumentStore"),
	}
}

func (s *RedisDocumentStore) SaveDocument(ctx context.Context, doc docModel.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return s.store.HashSet(ctx, documentCatalogKey, doc.Id, data)
}

func (s *RedisDocumentStore) GetDocument(ctx context.Context, id string) (docModel.Document, bool) {
	var doc docModel.Document
	val, err := s.store.HashGet(ctx, documentCatalogKey, id)
	if err != nil {
		return doc, false
	}
	if err = json.Unmarshal([]byte(val), &doc); err != nil {
		return doc, false
	}
	return doc, true
}

func (s *RedisDocumentStore) ListDocuments(ctx context.Context) ([]docModel.Document, error) {
	all, err := s.store.HashGetAll(ctx, documentCatalogKey)
	if err != nil {
		return nil, err
	}
	docs := make([]docModel.Document, 0, len(all))
	for _, raw := range all {
		var doc docModel.Document
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			s.logger.Error("Skipping corrupt document record", "error", err)
			continue
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].CreatedAt.Before(docs[j].CreatedAt) })
	return docs, nil
}

func (s *RedisDocumentStore) DeleteDocument(ctx context.Context, id string) error {
	return s.store.HashDel(ctx, documentCatalogKey, id)
}

func TestDocumentStore(store *redisStore.Store) *RedisDocumentStore {
	return &RedisDocumentStore{
		store:  store,
		logger: logger_i.NewLogger("test redis"),
	}
}
