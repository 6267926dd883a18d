package repository

import (
	"context"
	"sync"
	"time"

	"github.com/yourorg/chat-app/services/dm-service/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryMessageStore is the fallback MessageStore used when no Mongo URI is
// configured, and the substrate for unit tests.
type MemoryMessageStore struct {
	mu     sync.RWMutex
	byID   map[primitive.ObjectID]*models.Message
	lastTS time.Time
	maxLen int
}

func NewMemoryMessageStore(maxLen int) *MemoryMessageStore {
	return &MemoryMessageStore{
		byID:   make(map[primitive.ObjectID]*models.Message),
		maxLen: maxLen,
	}
}

func (s *MemoryMessageStore) Create(ctx context.Context, senderID, receiverID, body string) (*models.Message, error) {
	trimmed, err := validateMessage(senderID, receiverID, body, s.maxLen)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	// keep timestamps non-decreasing even if the wall clock steps back
	if now.Before(s.lastTS) {
		now = s.lastTS
	}
	s.lastTS = now

	m := &models.Message{
		ID:         primitive.NewObjectID(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       trimmed,
		CreatedAt:  now,
	}
	s.byID[m.ID] = m
	return m, nil
}

func (s *MemoryMessageStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return m, nil
}

// MemoryConversationStore keys conversations by the pair key, giving the same
// race-loses-on-duplicate semantics as the Mongo unique index.
type MemoryConversationStore struct {
	mu       sync.RWMutex
	byPair   map[string]*models.Conversation
	byID     map[primitive.ObjectID]*models.Conversation
	messages *MemoryMessageStore
}

func NewMemoryConversationStore(messages *MemoryMessageStore) *MemoryConversationStore {
	return &MemoryConversationStore{
		byPair:   make(map[string]*models.Conversation),
		byID:     make(map[primitive.ObjectID]*models.Conversation),
		messages: messages,
	}
}

func (s *MemoryConversationStore) FindByParticipants(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byPair[models.PairKey(userA, userB)]
	if !ok {
		return nil, ErrNotFound
	}
	return snapshot(c), nil
}

func (s *MemoryConversationStore) Create(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := models.PairKey(userA, userB)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byPair[key]; ok {
		return nil, ErrDuplicateConversation
	}
	now := time.Now().UTC()
	c := &models.Conversation{
		ID:           primitive.NewObjectID(),
		PairKey:      key,
		Participants: models.SortedPair(userA, userB),
		Messages:     []primitive.ObjectID{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.byPair[key] = c
	s.byID[c.ID] = c
	return snapshot(c), nil
}

func (s *MemoryConversationStore) AppendMessage(ctx context.Context, convID, msgID primitive.ObjectID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[convID]
	if !ok {
		return ErrNotFound
	}
	c.Messages = append(c.Messages, msgID)
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryConversationStore) GetHistory(ctx context.Context, convID primitive.ObjectID) ([]*models.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	c, ok := s.byID[convID]
	var ids []primitive.ObjectID
	if ok {
		ids = append(ids, c.Messages...)
	}
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	out := make([]*models.Message, 0, len(ids))
	for _, id := range ids {
		m, err := s.messages.GetByID(ctx, id)
		if err != nil {
			// a dangling id means a partially applied append leaked; skip it
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func snapshot(c *models.Conversation) *models.Conversation {
	cp := *c
	cp.Messages = append([]primitive.ObjectID(nil), c.Messages...)
	cp.Participants = append([]string(nil), c.Participants...)
	return &cp
}
