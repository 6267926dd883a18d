package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/yourorg/chat-app/services/dm-service/internal/models"
	"github.com/yourorg/chat-app/services/dm-service/internal/repository"
	"go.uber.org/zap"
)

// ErrInvalidRecipient rejects self-addressed messages before any store call.
var ErrInvalidRecipient = errors.New("sender and receiver must differ")

// Publisher emits a message-sent event after a successful persist. Publish
// failures are logged and dropped; they never fail the send.
type Publisher interface {
	PublishMessageSent(ctx context.Context, key string, value []byte) error
}

type MessagingService struct {
	conversations repository.ConversationStore
	messages      repository.MessageStore
	publisher     Publisher
	maxBody       int
	log           *zap.SugaredLogger
}

func NewMessagingService(convs repository.ConversationStore, msgs repository.MessageStore, pub Publisher, maxBody int, log *zap.SugaredLogger) *MessagingService {
	return &MessagingService{
		conversations: convs,
		messages:      msgs,
		publisher:     pub,
		maxBody:       maxBody,
		log:           log,
	}
}

// SendMessage validates input, finds or creates the conversation for the
// pair, persists the message, and appends it to the conversation's history.
// The message is inserted before the list append, so a reader resolving the
// list never sees an id that points at nothing.
func (s *MessagingService) SendMessage(ctx context.Context, senderID, receiverID, body string) (*models.Message, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return nil, repository.ErrInvalidInput
	}
	if s.maxBody > 0 && len(trimmed) > s.maxBody {
		return nil, repository.ErrInvalidInput
	}
	if senderID == receiverID {
		return nil, ErrInvalidRecipient
	}

	conv, err := s.findOrCreate(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}

	msg, err := s.messages.Create(ctx, senderID, receiverID, trimmed)
	if err != nil {
		return nil, err
	}
	if err := s.conversations.AppendMessage(ctx, conv.ID, msg.ID); err != nil {
		// the unlinked message stays invisible to history reads
		return nil, fmt.Errorf("append to conversation: %w", err)
	}

	if s.publisher != nil {
		b, _ := json.Marshal(msg)
		if err := s.publisher.PublishMessageSent(ctx, senderID, b); err != nil {
			s.log.Errorw("publish message.sent", "error", err, "message_id", msg.ID.Hex())
		}
	}
	return msg, nil
}

// GetHistory returns the pair's messages in insertion order. A pair that
// never exchanged messages yields an empty slice, not an error.
func (s *MessagingService) GetHistory(ctx context.Context, callerID, otherID string) ([]*models.Message, error) {
	conv, err := s.conversations.FindByParticipants(ctx, callerID, otherID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []*models.Message{}, nil
		}
		return nil, err
	}
	msgs, err := s.conversations.GetHistory(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []*models.Message{}
	}
	return msgs, nil
}

// findOrCreate is idempotent under concurrent calls for the same pair: the
// store's pair-key uniqueness makes the losing insert fail with
// ErrDuplicateConversation, which is recovered here by re-fetching.
func (s *MessagingService) findOrCreate(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	conv, err := s.conversations.FindByParticipants(ctx, userA, userB)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	conv, err = s.conversations.Create(ctx, userA, userB)
	if err == nil {
		return conv, nil
	}
	if errors.Is(err, repository.ErrDuplicateConversation) {
		return s.conversations.FindByParticipants(ctx, userA, userB)
	}
	return nil, err
}
