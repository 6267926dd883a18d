package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is write-once: no update or delete path exists anywhere above the
// store layer.
type Message struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SenderID   string             `bson:"sender_id" json:"senderId"`
	ReceiverID string             `bson:"receiver_id" json:"receiverId"`
	Body       string             `bson:"body" json:"message"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
}
