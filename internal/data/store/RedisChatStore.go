package store

import (
	"context"
	"encoding/json"

	"github.com/docuchat/api/internal/config"
	"github.com/docuchat/api/internal/data/redisStore"
	"github.com/docuchat/api/internal/domain/chatModel"
	"github.com/docuchat/api/pkg/logger_i"
)

const sessionCatalogKey = "sessions"

func messagesKey(sessionId string) string { return "messages:" + sessionId }

type RedisSessionStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisSessionStore(ctx context.Context) *RedisSessionStore {
	inner := redisStore.GetRedisStore(ctx, config.RedisSessionStore)
	if inner == nil {
		return nil
	}
	return &RedisSessionStore{
		store:  inner,
		logger: logger_i.NewLogger("SessionStore"),
	}
}

func (s *RedisSessionStore) SaveSession(ctx context.Context, session chatModel.ChatSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.store.HashSet(ctx, sessionCatalogKey, session.Id, data)
}

func (s *RedisSessionStore) GetSession(ctx context.Context, id string) (chatModel.ChatSession, bool) {
	var session chatModel.ChatSession
	val, err := s.store.HashGet(ctx, sessionCatalogKey, id)
	if err != nil {
		return session, false
	}
	if err = json.Unmarshal([]byte(val), &session); err != nil {
		return session, false
	}
	return session, true
}

func (s *RedisSessionStore) DeleteSession(ctx context.Context, id string) error {
	return s.store.HashDel(ctx, sessionCatalogKey, id)
}

type RedisMessageStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisMessageStore(ctx context.Context) *RedisMessageStore {
	inner := redisStore.GetRedisStore(ctx, config.RedisMessageStore)
	if inner == nil {
		return nil
	}
	return &RedisMessageStore{
		store:  inner,
		logger: logger_i.NewLogger("MessageStore"),
	}
}

func (s *RedisMessageStore) SaveMessage(ctx context.Context, msg chatModel.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.store.HashSet(ctx, messagesKey(msg.SessionId), msg.Id, data)
}

func (s *RedisMessageStore) GetMessage(ctx context.Context, sessionId, msgId string) (chatModel.Message, bool) {
	var msg chatModel.Message
	val, err := s.store.HashGet(ctx, messagesKey(sessionId), msgId)
	if err != nil {
		return msg, false
	}
	if err = json.Unmarshal([]byte(val), &msg); err != nil {
		return msg, false
	}
	return msg, true
}

func (s *RedisMessageStore) ListMessages(ctx context.Context, sessionId string) ([]chatModel.Message, error) {
	all, err := s.store.HashGetAll(ctx, messagesKey(sessionId))
	if err != nil {
		return nil, err
	}
	msgs := make([]chatModel.Message, 0, len(all))
	for _, raw := range all {
		var msg chatModel.Message
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			s.logger.Error("Skipping corrupt message record", "error", err)
			continue
		}
		msgs = append(msgs, msg)
	}
	sortMessages(msgs)
	return msgs, nil
}

func (s *RedisMessageStore) DeleteSessionMessages(ctx context.Context, sessionId string) error {
	return s.store.Del(ctx, messagesKey(sessionId))
}

func TestSessionStore(store *redisStore.Store) *RedisSessionStore {
	return &RedisSessionStore{store: store, logger: logger_i.NewLogger("test redis")}
}

func TestMessageStore(store *redisStore.Store) *RedisMessageStore {
	return &RedisMessageStore{store: store, logger: logger_i.NewLogger("test redis")}
}
