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
	"github.com/docuchat/api/internal/domain/chatModel"
)

func TestRedisSessionStore_Lifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionStore := store.TestSessionStore(redisStore.NewTestStore(client))

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")

	session := chatModel.ChatSession{
		Id:        "session-1",
		Title:     "quarterly numbers",
		Model:     "mistral",
		CreatedAt: time.Now(),
	}

	t.Run("Save and Get Roundtrip", func(t *testing.T) {
		if err := sessionStore.SaveSession(ctx, session); err != nil {
			t.Fatalf("SaveSession failed: %v", err)
		}

		retrieved, found := sessionStore.GetSession(ctx, "session-1")
		if !found {
			t.Fatal("Session was saved but not found in Redis")
		}
		if retrieved.Model != session.Model {
			t.Errorf("Data mismatch! Got %s, want %s", retrieved.Model, session.Model)
		}
	})

	t.Run("Get Non-Existent Session", func(t *testing.T) {
		_, found := sessionStore.GetSession(ctx, "ghost-id")
		if found {
			t.Error("Expected found=false for non-existent session")
		}
	})

	t.Run("Delete Session", func(t *testing.T) {
		if err := sessionStore.DeleteSession(ctx, "session-1"); err != nil {
			t.Fatalf("DeleteSession failed: %v", err)
		}
		_, found := sessionStore.GetSession(ctx, "session-1")
		if found {
			t.Error("Session still exists after DeleteSession call")
		}
	})
}

func TestRedisMessageStore_OrderAndDelete(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	messageStore := store.TestMessageStore(redisStore.NewTestStore(client))

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	base := time.Now()

	// saved out of order on purpose
	msgs := []chatModel.Message{
		{Id: "m2", SessionId: "s1", Role: chatModel.RoleAssistant, Content: "answer", CreatedAt: base.Add(time.Second)},
		{Id: "m1", SessionId: "s1", Role: chatModel.RoleUser, Content: "question", CreatedAt: base},
		{Id: "m3", SessionId: "s1", Role: chatModel.RoleUser, Content: "followup", CreatedAt: base.Add(2 * time.Second)},
	}
	for _, msg := range msgs {
		if err := messageStore.SaveMessage(ctx, msg); err != nil {
			t.Fatalf("SaveMessage failed: %v", err)
		}
	}

	t.Run("ListMessages returns chronological order", func(t *testing.T) {
		listed, err := messageStore.ListMessages(ctx, "s1")
		if err != nil {
			t.Fatalf("ListMessages failed: %v", err)
		}
		if len(listed) != 3 {
			t.Fatalf("Expected 3 messages, got %d", len(listed))
		}
		for i, wantId := range []string{"m1", "m2", "m3"} {
			if listed[i].Id != wantId {
				t.Errorf("Position %d: got %s, want %s", i, listed[i].Id, wantId)
			}
		}
	})

	t.Run("GetMessage finds a single message", func(t *testing.T) {
		msg, found := messageStore.GetMessage(ctx, "s1", "m2")
		if !found {
			t.Fatal("Message was saved but not found")
		}
		if msg.Content != "answer" {
			t.Errorf("Got content %q, want %q", msg.Content, "answer")
		}
	})

	t.Run("DeleteSessionMessages clears the hash", func(t *testing.T) {
		if err := messageStore.DeleteSessionMessages(ctx, "s1"); err != nil {
			t.Fatalf("DeleteSessionMessages failed: %v", err)
		}
		listed, err := messageStore.ListMessages(ctx, "s1")
		if err != nil {
			t.Fatalf("ListMessages failed: %v", err)
		}
		if len(listed) != 0 {
			t.Errorf("Expected 0 messages after delete, got %d", len(listed))
		}
	})
}
