package entity

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Room is a private conversation between exactly two users. Participants are
// stored in canonical (sorted) order so the unordered pair {A,B} always maps
// to the same document; a unique index on the pair makes creation idempotent.
type Room struct {
	ID            bson.ObjectID `bson:"_id,omitempty"`
	Participants  []string      `bson:"participants"`
	CreatedAt     time.Time     `bson:"createdAt"`
	LastMessageAt time.Time     `bson:"lastMessageAt"`
}

// CanonicalPair normalizes an unordered user pair into its canonical order.
// Every room lookup and creation must go through this.
func CanonicalPair(a, b string) []string {
	pair := []string{a, b}
	sort.Strings(pair)
	return pair
}

func (r *Room) HasParticipant(userID string) bool {
	for _, p := range r.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// OtherParticipant resolves the peer of userID, or "" if userID is not a member.
func (r *Room) OtherParticipant(userID string) string {
	if !r.HasParticipant(userID) {
		return ""
	}
	for _, p := range r.Participants {
		if p != userID {
			return p
		}
	}
	return userID // self-pair, kept for completeness
}
