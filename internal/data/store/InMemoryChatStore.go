package store

import (
	"context"
	"sort"
	"sync"

	"github.com/docuchat/api/internal/domain/chatModel"
)

type InMemorySessionStore struct {
	mu       *sync.RWMutex
	sessions map[string]chatModel.ChatSession
}

func InitInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		mu:       new(sync.RWMutex),
		sessions: make(map[string]chatModel.ChatSession),
	}
}

func (s *InMemorySessionStore) SaveSession(ctx context.Context, session chatModel.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Id] = session
	return nil
}

func (s *InMemorySessionStore) GetSession(ctx context.Context, id string) (chatModel.ChatSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, found := s.sessions[id]
	return session, found
}

func (s *InMemorySessionStore) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

type InMemoryMessageStore struct {
	mu       *sync.RWMutex
	messages map[string]map[string]chatModel.Message //sessionId -> msgId -> message
}

func InitInMemoryMessageStore() *InMemoryMessageStore {
	return &InMemoryMessageStore{
		mu:       new(sync.RWMutex),
		messages: make(map[string]map[string]chatModel.Message),
	}
}

func (s *InMemoryMessageStore) SaveMessage(ctx context.Context, msg chatModel.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.messages[msg.SessionId]
	if !ok {
		session = make(map[string]chatModel.Message)
		s.messages[msg.SessionId] = session
	}
	session[msg.Id] = msg
	return nil
}

func (s *InMemoryMessageStore) GetMessage(ctx context.Context, sessionId, msgId string) (chatModel.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, found := s.messages[sessionId][msgId]
	return msg, found
}

func (s *InMemoryMessageStore) ListMessages(ctx context.Context, sessionId string) ([]chatModel.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := make([]chatModel.Message, 0, len(s.messages[sessionId]))
	for _, m := range s.messages[sessionId] {
		msgs = append(msgs, m)
	}
	sortMessages(msgs)
	return msgs, nil
}

func (s *InMemoryMessageStore) DeleteSessionMessages(ctx context.Context, sessionId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.messages, sessionId)
	return nil
}

func sortMessages(msgs []chatModel.Message) {
	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].Id < msgs[j].Id
		}
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
}
