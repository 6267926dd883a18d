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
)

type MongoMessageStore struct {
	coll   *mongo.Collection
	maxLen int
}

func NewMongoMessageStore(coll *mongo.Collection, maxLen int) *MongoMessageStore {
	return &MongoMessageStore{coll: coll, maxLen: maxLen}
}

func (s *MongoMessageStore) Create(ctx context.Context, senderID, receiverID, body string) (*models.Message, error) {
	trimmed, err := validateMessage(senderID, receiverID, body, s.maxLen)
	if err != nil {
		return nil, err
	}
	m := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       trimmed,
		CreatedAt:  time.Now().UTC(),
	}
	res, err := s.coll.InsertOne(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	m.ID = res.InsertedID.(primitive.ObjectID)
	return m, nil
}

func (s *MongoMessageStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error) {
	var m models.Message
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find message: %w", err)
	}
	return &m, nil
}
