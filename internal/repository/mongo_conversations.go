package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yourorg/chat-app/services/dm-service/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoConversationStore struct {
	convColl *mongo.Collection
	msgColl  *mongo.Collection
}

func NewMongoConversationStore(convColl, msgColl *mongo.Collection) *MongoConversationStore {
	// unique index on the pair key; racing inserts for the same pair lose
	// with a duplicate key error instead of producing a second conversation
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "pair_key", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("pair_key_idx"),
	}
	_, _ = convColl.Indexes().CreateOne(context.Background(), idx)
	return &MongoConversationStore{convColl: convColl, msgColl: msgColl}
}

func (s *MongoConversationStore) FindByParticipants(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	var c models.Conversation
	err := s.convColl.FindOne(ctx, bson.M{"pair_key": models.PairKey(userA, userB)}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	return &c, nil
}

func (s *MongoConversationStore) Create(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	now := time.Now().UTC()
	c := &models.Conversation{
		PairKey:      models.PairKey(userA, userB),
		Participants: models.SortedPair(userA, userB),
		Messages:     []primitive.ObjectID{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	res, err := s.convColl.InsertOne(ctx, c)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateConversation
		}
		return nil, fmt.Errorf("insert conversation: %w", err)
	}
	c.ID = res.InsertedID.(primitive.ObjectID)
	return c, nil
}

func (s *MongoConversationStore) AppendMessage(ctx context.Context, convID, msgID primitive.ObjectID) error {
	update := bson.M{
		"$push": bson.M{"messages": msgID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := s.convColl.UpdateOne(ctx, bson.M{"_id": convID}, update)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoConversationStore) GetHistory(ctx context.Context, convID primitive.ObjectID) ([]*models.Message, error) {
	var c models.Conversation
	if err := s.convColl.FindOne(ctx, bson.M{"_id": convID}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	if len(c.Messages) == 0 {
		return []*models.Message{}, nil
	}

	cur, err := s.msgColl.Find(ctx, bson.M{"_id": bson.M{"$in": c.Messages}})
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}
	defer cur.Close(ctx)

	byID := make(map[primitive.ObjectID]*models.Message, len(c.Messages))
	for cur.Next(ctx) {
		var m models.Message
		if err := cur.Decode(&m); err != nil {
			return nil, fmt.Errorf("decode message: %w", err)
		}
		byID[m.ID] = &m
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("cursor: %w", err)
	}

	// return in the conversation's list order, not $in result order
	out := make([]*models.Message, 0, len(c.Messages))
	for _, id := range c.Messages {
		if m, ok := byID[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}
