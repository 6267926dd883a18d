package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/yourorg/chat-app/services/dm-service/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidInput          = errors.New("invalid input")
	ErrDuplicateConversation = errors.New("conversation already exists")
)

// ConversationStore maps an unordered participant pair to a conversation and
// its ordered message list.
type ConversationStore interface {
	// FindByParticipants is a symmetric pair lookup; it never creates.
	FindByParticipants(ctx context.Context, userA, userB string) (*models.Conversation, error)
	// Create inserts a conversation for the pair. Returns
	// ErrDuplicateConversation when the pair key already exists, so racing
	// callers can re-fetch instead of producing a second conversation.
	Create(ctx context.Context, userA, userB string) (*models.Conversation, error)
	// AppendMessage appends a message id to the conversation's ordered list.
	AppendMessage(ctx context.Context, convID, msgID primitive.ObjectID) error
	// GetHistory resolves the conversation's message ids to full records in
	// insertion order.
	GetHistory(ctx context.Context, convID primitive.ObjectID) ([]*models.Message, error)
}

// MessageStore persists immutable message records.
type MessageStore interface {
	Create(ctx context.Context, senderID, receiverID, body string) (*models.Message, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error)
}

// validateMessage trims the body and enforces the store-level input contract.
// maxLen <= 0 disables the length bound.
func validateMessage(senderID, receiverID, body string, maxLen int) (string, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return "", ErrInvalidInput
	}
	if maxLen > 0 && len(trimmed) > maxLen {
		return "", ErrInvalidInput
	}
	if senderID == "" || receiverID == "" || senderID == receiverID {
		return "", ErrInvalidInput
	}
	return trimmed, nil
}
