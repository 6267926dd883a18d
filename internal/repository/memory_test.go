package repository

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newMemoryStores(t *testing.T, maxLen int) (*MemoryConversationStore, *MemoryMessageStore) {
	t.Helper()
	msgs := NewMemoryMessageStore(maxLen)
	return NewMemoryConversationStore(msgs), msgs
}

func TestFindByParticipantsIsSymmetric(t *testing.T) {
	req := require.New(t)
	convs, _ := newMemoryStores(t, 0)
	ctx := context.Background()

	created, err := convs.Create(ctx, "alice", "bob")
	req.NoError(err)

	ab, err := convs.FindByParticipants(ctx, "alice", "bob")
	req.NoError(err)
	ba, err := convs.FindByParticipants(ctx, "bob", "alice")
	req.NoError(err)

	req.Equal(created.ID, ab.ID)
	req.Equal(ab.ID, ba.ID)
}

func TestFindByParticipantsMissingPair(t *testing.T) {
	req := require.New(t)
	convs, _ := newMemoryStores(t, 0)

	_, err := convs.FindByParticipants(context.Background(), "alice", "bob")
	req.ErrorIs(err, ErrNotFound)
}

func TestCreateRejectsDuplicatePair(t *testing.T) {
	req := require.New(t)
	convs, _ := newMemoryStores(t, 0)
	ctx := context.Background()

	_, err := convs.Create(ctx, "alice", "bob")
	req.NoError(err)

	_, err = convs.Create(ctx, "bob", "alice")
	req.ErrorIs(err, ErrDuplicateConversation)
}

func TestAppendMessageUnknownConversation(t *testing.T) {
	req := require.New(t)
	convs, _ := newMemoryStores(t, 0)

	err := convs.AppendMessage(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
	req.ErrorIs(err, ErrNotFound)
}

func TestHistoryKeepsInsertionOrder(t *testing.T) {
	req := require.New(t)
	convs, msgs := newMemoryStores(t, 0)
	ctx := context.Background()

	conv, err := convs.Create(ctx, "alice", "bob")
	req.NoError(err)

	bodies := []string{"hello", "hi there", "how are you"}
	for _, b := range bodies {
		m, err := msgs.Create(ctx, "alice", "bob", b)
		req.NoError(err)
		req.NoError(convs.AppendMessage(ctx, conv.ID, m.ID))
	}

	for read := 0; read < 3; read++ { // repeated reads never reorder
		history, err := convs.GetHistory(ctx, conv.ID)
		req.NoError(err)
		req.Len(history, len(bodies))
		for i, m := range history {
			req.Equal(bodies[i], m.Body)
			if i > 0 {
				req.False(m.CreatedAt.Before(history[i-1].CreatedAt))
			}
		}
	}
}

func TestHistoryEmptyConversation(t *testing.T) {
	req := require.New(t)
	convs, _ := newMemoryStores(t, 0)
	ctx := context.Background()

	conv, err := convs.Create(ctx, "alice", "bob")
	req.NoError(err)

	history, err := convs.GetHistory(ctx, conv.ID)
	req.NoError(err)
	req.Empty(history)
}

func TestMessageCreateValidation(t *testing.T) {
	req := require.New(t)
	_, msgs := newMemoryStores(t, 10)
	ctx := context.Background()

	_, err := msgs.Create(ctx, "alice", "bob", "")
	req.ErrorIs(err, ErrInvalidInput)

	_, err = msgs.Create(ctx, "alice", "bob", "   ")
	req.ErrorIs(err, ErrInvalidInput)

	_, err = msgs.Create(ctx, "alice", "alice", "hi")
	req.ErrorIs(err, ErrInvalidInput)

	_, err = msgs.Create(ctx, "alice", "bob", strings.Repeat("x", 11))
	req.ErrorIs(err, ErrInvalidInput)

	m, err := msgs.Create(ctx, "alice", "bob", "  hi  ")
	req.NoError(err)
	req.Equal("hi", m.Body)
}

func TestMessageGetByID(t *testing.T) {
	req := require.New(t)
	_, msgs := newMemoryStores(t, 0)
	ctx := context.Background()

	m, err := msgs.Create(ctx, "alice", "bob", "hello")
	req.NoError(err)

	got, err := msgs.GetByID(ctx, m.ID)
	req.NoError(err)
	req.Equal(m.Body, got.Body)

	_, err = msgs.GetByID(ctx, primitive.NewObjectID())
	req.ErrorIs(err, ErrNotFound)
}
