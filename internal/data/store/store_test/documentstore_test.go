package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/docuchat/api/internal/config"
	"github.com/docuchat/api/internal/data/redisStore"
	"github.com/docuchat/api/internal/data/store"
	"github.com/docuchat/api/internal/domain/docModel"
)

func TestRedisDocumentStore_Lifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	docStore := store.TestDocumentStore(redisStore.NewTestStore(client))

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	base := time.Now()

	docs := []docModel.Document{
		{Id: "d2", Filename: "later.pdf", Confidentiality: docModel.Public, CreatedAt: base.Add(time.Minute)},
		{Id: "d1", Filename: "earlier.pdf", Confidentiality: docModel.Confidential, CreatedAt: base},
	}
	for _, doc := range docs {
		if err := docStore.SaveDocument(ctx, doc); err != nil {
			t.Fatalf("SaveDocument failed: %v", err)
		}
	}

	t.Run("Get preserves confidentiality", func(t *testing.T) {
		doc, found := docStore.GetDocument(ctx, "d1")
		if !found {
			t.Fatal("Document was saved but not found in Redis")
		}
		if doc.Confidentiality != docModel.Confidential {
			t.Errorf("Got confidentiality %s, want %s", doc.Confidentiality, docModel.Confidential)
		}
	})

	t.Run("List is ordered by creation time", func(t *testing.T) {
		listed, err := docStore.ListDocuments(ctx)
		if err != nil {
			t.Fatalf("ListDocuments failed: %v", err)
		}
		if len(listed) != 2 {
			t.Fatalf("Expected 2 documents, got %d", len(listed))
		}
		if listed[0].Id != "d1" || listed[1].Id != "d2" {
			t.Errorf("Wrong order: got [%s %s], want [d1 d2]", listed[0].Id, listed[1].Id)
		}
	})

	t.Run("Processed flag survives an update", func(t *testing.T) {
		doc, _ := docStore.GetDocument(ctx, "d1")
		doc.Processed = true
		if err := docStore.SaveDocument(ctx, doc); err != nil {
			t.Fatalf("SaveDocument failed: %v", err)
		}
		updated, _ := docStore.GetDocument(ctx, "d1")
		if !updated.Processed {
			t.Error("Processed flag was not persisted")
		}
	})

	t.Run("Delete removes only the target", func(t *testing.T) {
		if err := docStore.DeleteDocument(ctx, "d1"); err != nil {
			t.Fatalf("DeleteDocument failed: %v", err)
		}
		if _, found := docStore.GetDocument(ctx, "d1"); found {
			t.Error("Document still exists after DeleteDocument call")
		}
		if _, found := docStore.GetDocument(ctx, "d2"); !found {
			t.Error("Unrelated document was deleted")
		}
	})
}
