package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/docuchat/api/internal/adapter/utils"
	"github.com/docuchat/api/internal/config"
	"github.com/docuchat/api/internal/domain/chatModel"
	"github.com/docuchat/api/internal/domain/docModel"
	"github.com/docuchat/api/internal/metrics"
	"github.com/docuchat/api/internal/rag/embedding"
	"github.com/docuchat/api/internal/rag/llm"
	"github.com/docuchat/api/internal/rag/retrieval"
	"github.com/docuchat/api/internal/rag/vectorDB"
	"github.com/docuchat/api/internal/security"
	"github.com/docuchat/api/pkg/logger_i"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrEmptyMessage    = errors.New("message must not be empty")
)

type TurnRequest struct {
	SessionId   string
	Message     string
	Model       string //overrides the session model for this turn
	Mode        chatModel.SearchMode
	DocumentIDs []string
}

// Service runs chat turns. StreamTurn validates synchronously and streams
// asynchronously: policy rejections surface as errors before any event is
// emitted, everything after that arrives on the event channel.
type Service interface {
	CreateSession(ctx context.Context, title string, model string) (chatModel.ChatSession, error)
	GetSession(ctx context.Context, id string) (chatModel.ChatSession, bool)
	DeleteSession(ctx context.Context, id string) error
	History(ctx context.Context, sessionId string) ([]chatModel.Message, error)
	StreamTurn(ctx context.Context, req TurnRequest) (<-chan chatModel.StreamEvent, error)
}

type ServiceConfig struct {
	Sessions  chatModel.SessionStore
	Messages  chatModel.MessageStore
	Documents docModel.DocumentStore
	Planner   retrieval.Planner
	Gateway   llm.Gateway
	Embedder  embedding.Embedder
	Cache     vectorDB.AnswerCache //optional, nil disables answer caching
}

type service struct {
	sessions  chatModel.SessionStore
	messages  chatModel.MessageStore
	documents docModel.DocumentStore
	planner   retrieval.Planner
	gateway   llm.Gateway
	embedder  embedding.Embedder
	cache     vectorDB.AnswerCache
	logger    *logger_i.Logger
}

func NewService(cfg ServiceConfig) Service {
	return &service{
		sessions:  cfg.Sessions,
		messages:  cfg.Messages,
		documents: cfg.Documents,
		planner:   cfg.Planner,
		gateway:   cfg.Gateway,
		embedder:  cfg.Embedder,
		cache:     cfg.Cache,
		logger:    logger_i.NewLogger("ChatOrchestrator"),
	}
}

func (s *service) CreateSession(ctx context.Context, title string, model string) (chatModel.ChatSession, error) {
	if title == "" {
		title = "New chat"
	}
	if model == "" {
		model = config.DefaultLocalModel
	}
	session := chatModel.ChatSession{
		Id:        utils.GetNewUUID(),
		Title:     title,
		Model:     model,
		CreatedAt: time.Now(),
	}
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return chatModel.ChatSession{}, fmt.Errorf("saving session: %w", err)
	}
	return session, nil
}

func (s *service) GetSession(ctx context.Context, id string) (chatModel.ChatSession, bool) {
	return s.sessions.GetSession(ctx, id)
}

func (s *service) DeleteSession(ctx context.Context, id string) error {
	if _, found := s.sessions.GetSession(ctx, id); !found {
		return ErrSessionNotFound
	}
	if err := s.messages.DeleteSessionMessages(ctx, id); err != nil {
		return fmt.Errorf("deleting session messages: %w", err)
	}
	return s.sessions.DeleteSession(ctx, id)
}

func (s *service) History(ctx context.Context, sessionId string) ([]chatModel.Message, error) {
	if _, found := s.sessions.GetSession(ctx, sessionId); !found {
		return nil, ErrSessionNotFound
	}
	return s.messages.ListMessages(ctx, sessionId)
}

func (s *service) StreamTurn(ctx context.Context, req TurnRequest) (<-chan chatModel.StreamEvent, error) {
	if req.Message == "" {
		return nil, ErrEmptyMessage
	}
	session, found := s.sessions.GetSession(ctx, req.SessionId)
	if !found {
		return nil, ErrSessionNotFound
	}

	model := req.Model
	if model == "" {
		model = session.Model
	}
	if model == "" {
		model = config.DefaultLocalModel
	}

	// Policy gate. Nothing is retrieved or generated for a blocked turn.
	if err := security.ValidateModelAccess(ctx, model, req.DocumentIDs, s.documents); err != nil {
		return nil, err
	}

	history, err := s.messages.ListMessages(ctx, req.SessionId)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	now := time.Now()
	userMsg := chatModel.Message{
		Id:        utils.GetNewUUID(),
		SessionId: req.SessionId,
		Role:      chatModel.RoleUser,
		Content:   req.Message,
		Status:    chatModel.MessageCompleted,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.messages.SaveMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("saving user message: %w", err)
	}

	assistant := chatModel.Message{
		Id:        utils.GetNewUUID(),
		SessionId: req.SessionId,
		Role:      chatModel.RoleAssistant,
		Status:    chatModel.MessagePending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.messages.SaveMessage(ctx, assistant); err != nil {
		return nil, fmt.Errorf("saving assistant message: %w", err)
	}

	events := make(chan chatModel.StreamEvent, config.BufferLimit)
	go s.runTurn(ctx, events, req, model, history, assistant)
	return events, nil
}

func (s *service) runTurn(ctx context.Context, events chan<- chatModel.StreamEvent, req TurnRequest, model string, history []chatModel.Message, assistant chatModel.Message) {
	start := time.Now()
	statusLabel := "completed"
	defer func() {
		metrics.CaptureChatTurnMetrics(statusLabel, time.Since(start))
		close(events)
	}()

	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "sessionId", req.SessionId, "model", model)

	emit := func(event chatModel.StreamEvent) bool {
		select {
		case events <- event:
			return true
		case <-ctx.Done():
			return false
		}
	}

	// Terminal states must land in the store even when the request context
	// is already cancelled, so saves run on a detached context.
	persistCtx := context.WithoutCancel(ctx)
	saveMessage := func() {
		assistant.UpdatedAt = time.Now()
		if err := s.messages.SaveMessage(persistCtx, assistant); err != nil {
			log.Error("Failed to persist assistant message", "messageId", assistant.Id, "err", err)
		}
	}

	// Any partial content already streamed stays on the message.
	failTurn := func(message string, retry bool) {
		statusLabel = "error"
		assistant.Status = chatModel.MessageError
		assistant.Error = &chatModel.TurnError{Message: message, Retry: retry}
		saveMessage()
		emit(chatModel.StreamEvent{Type: chatModel.EventError, Error: assistant.Error, Message: &assistant})
	}

	cancelTurn := func() {
		statusLabel = "cancelled"
		metrics.IncrementStreamCancellations()
		assistant.Status = chatModel.MessageError
		assistant.Error = &chatModel.TurnError{Message: "stream cancelled by client", Retry: true}
		saveMessage()
		log.Info("Chat stream cancelled", "messageId", assistant.Id, "partialBytes", len(assistant.Content))
	}

	var queryVector []float32
	if s.cache != nil {
		vector, err := s.embedder.EmbedQuery(ctx, req.Message)
		if err != nil {
			log.Warn("Query embedding for cache failed, skipping cache", "err", err)
		} else {
			queryVector = vector
			if answer, hit, err := s.cache.GetCachedAnswer(ctx, vector); err == nil && hit {
				log.Info("Answer cache hit", "messageId", assistant.Id)
				s.completeFromCache(ctx, emit, saveMessage, &assistant, answer)
				return
			}
		}
	}

	chunks, err := s.planner.Retrieve(ctx, retrieval.Request{
		Query:       req.Message,
		Mode:        req.Mode,
		DocumentIDs: req.DocumentIDs,
		Ceiling:     security.Ceiling(model),
	})
	if err != nil {
		failTurn(fmt.Sprintf("retrieving context: %v", err), true)
		return
	}
	log.Debug("Retrieved context", "chunks", len(chunks))

	assistant.Status = chatModel.MessageSending
	saveMessage()

	tokens, err := s.gateway.GenerateStream(ctx, buildPrompt(chunks, history, req.Message), model)
	if err != nil {
		failTurn(fmt.Sprintf("starting generation: %v", err), true)
		return
	}

	assistant.Status = chatModel.MessageStreaming
	for token := range tokens {
		if token.Err != nil {
			if errors.Is(token.Err, context.Canceled) || errors.Is(token.Err, context.DeadlineExceeded) {
				cancelTurn()
				return
			}
			failTurn(fmt.Sprintf("generating answer: %v", token.Err), true)
			return
		}
		assistant.Content += token.Text
		if !emit(chatModel.StreamEvent{Type: chatModel.EventContent, Delta: token.Text}) {
			cancelTurn()
			return
		}
	}

	assistant.Sources = dedupeSources(chunks)
	if len(assistant.Sources) > 0 {
		confidence := maxScore(assistant.Sources)
		assistant.Confidence = &confidence
	}
	assistant.Status = chatModel.MessageCompleted
	saveMessage()

	emit(chatModel.StreamEvent{Type: chatModel.EventSources, Sources: assistant.Sources})
	emit(chatModel.StreamEvent{Type: chatModel.EventDone, Message: &assistant})

	if s.cache != nil && queryVector != nil && assistant.Content != "" && !anyConfidential(chunks) {
		if err := s.cache.SaveToCache(ctx, assistant.Id, queryVector, assistant.Content); err != nil {
			log.Warn("Failed to save answer to cache", "err", err)
		}
	}
}

// completeFromCache replays a cached answer as a single content event. A
// cached turn carries no sources and no confidence.
func (s *service) completeFromCache(ctx context.Context, emit func(chatModel.StreamEvent) bool, saveMessage func(), assistant *chatModel.Message, answer string) {
	assistant.Content = answer
	assistant.Sources = []chatModel.Source{}
	assistant.Status = chatModel.MessageCompleted
	saveMessage()

	if !emit(chatModel.StreamEvent{Type: chatModel.EventContent, Delta: answer}) {
		return
	}
	emit(chatModel.StreamEvent{Type: chatModel.EventSources, Sources: assistant.Sources})
	emit(chatModel.StreamEvent{Type: chatModel.EventDone, Message: assistant})
}

// dedupeSources keeps one source per filename, first hit in rank order wins.
// The result is never nil so a completed message always carries a sources
// list, possibly empty.
func dedupeSources(chunks []docModel.ScoredChunk) []chatModel.Source {
	sources := make([]chatModel.Source, 0, len(chunks))
	seen := make(map[string]struct{}, len(chunks))
	for _, chunk := range chunks {
		if _, dup := seen[chunk.Meta.Filename]; dup {
			continue
		}
		seen[chunk.Meta.Filename] = struct{}{}
		sources = append(sources, chatModel.Source{
			Text:     chunk.Text,
			Score:    chunk.Score,
			Metadata: chunk.Meta,
		})
	}
	return sources
}

func maxScore(sources []chatModel.Source) float64 {
	best := 0.0
	for _, src := range sources {
		if src.Score > best {
			best = src.Score
		}
	}
	return best
}

func anyConfidential(chunks []docModel.ScoredChunk) bool {
	for _, chunk := range chunks {
		if chunk.Meta.Confidentiality == docModel.Confidential {
			return true
		}
	}
	return false
}
