package models

import (
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conversation pairs two users with their ordered message history. Messages
// holds message ids in insertion order; chronological order follows from the
// append-only discipline.
type Conversation struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	PairKey      string               `bson:"pair_key" json:"-"`
	Participants []string             `bson:"participants" json:"participants"`
	Messages     []primitive.ObjectID `bson:"messages" json:"messages"`
	CreatedAt    time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updated_at" json:"updatedAt"`
}

// PairKey builds the natural key for an unordered participant pair, so
// {A,B} and {B,A} resolve to the same conversation. The conversations
// collection carries a unique index on this field.
func PairKey(a, b string) string {
	p := SortedPair(a, b)
	return strings.Join(p, "|")
}

// SortedPair returns the two participant ids in canonical order.
func SortedPair(a, b string) []string {
	p := []string{a, b}
	sort.Strings(p)
	return p
}
