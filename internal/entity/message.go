package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Message struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	RoomID    bson.ObjectID `bson:"roomId"`
	SenderID  string        `bson:"senderId"`
	Text      string        `bson:"text"`
	CreatedAt time.Time     `bson:"createdAt"`
}
