package chat_repo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/adrnhkm/nearby-chat/internal/entity"
	app_error "github.com/adrnhkm/nearby-chat/internal/errors"
	"github.com/adrnhkm/nearby-chat/state"
)

const (
	databaseName       = "nearby_chat"
	roomsCollection    = "rooms"
	messagesCollection = "messages"
)

type ChatRepo struct {
	AppState *state.AppState
}

func NewChatRepo(appState *state.AppState) ChatRepoContract {
	return &ChatRepo{
		AppState: appState,
	}
}

func (r *ChatRepo) rooms() *mongo.Collection {
	return r.AppState.Mongo.Database(databaseName).Collection(roomsCollection)
}

func (r *ChatRepo) messages() *mongo.Collection {
	return r.AppState.Mongo.Database(databaseName).Collection(messagesCollection)
}

// EnsureIndexes creates the unique participants index that backs idempotent
// room creation, plus the message history index. Call once at startup.
func EnsureIndexes(ctx context.Context, client *mongo.Client) error {
	rooms := client.Database(databaseName).Collection(roomsCollection)
	messages := client.Database(databaseName).Collection(messagesCollection)

	_, err := rooms.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "participants", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create rooms index: %w", err)
	}

	_, err = messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "roomId", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create messages index: %w", err)
	}

	return nil
}

// GetOrCreateRoom resolves the single room for an unordered user pair. The
// pair is canonicalized before lookup and creation runs as an upsert, so two
// callers racing on first contact both observe the same room.
func (r *ChatRepo) GetOrCreateRoom(ctx context.Context, userA, userB string) (*entity.Room, *app_error.AppError) {
	pair := entity.CanonicalPair(userA, userB)
	now := time.Now().UTC()

	filter := bson.M{"participants": pair}
	update := bson.M{"$setOnInsert": bson.M{
		"participants":  pair,
		"createdAt":     now,
		"lastMessageAt": now,
	}}

	var room entity.Room
	err := r.rooms().FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&room)
	if err != nil {
		return nil, app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to get or create room: %v", err), "mongo")
	}

	return &room, nil
}

func (r *ChatRepo) FindRoomByID(ctx context.Context, roomID string) (*entity.Room, *app_error.AppError) {
	objID, err := bson.ObjectIDFromHex(roomID)
	if err != nil {
		return nil, app_error.Validation(fmt.Sprintf("invalid room ID: %v", err), "room-id")
	}

	var room entity.Room
	if err := r.rooms().FindOne(ctx, bson.M{"_id": objID}).Decode(&room); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, app_error.NotFound("room not found", "room-id")
		}
		return nil, app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to fetch room: %v", err), "mongo")
	}

	return &room, nil
}

func (r *ChatRepo) RoomsForUser(ctx context.Context, userID string) ([]*entity.Room, *app_error.AppError) {
	cur, err := r.rooms().Find(ctx, bson.M{"participants": userID},
		options.Find().SetSort(bson.D{{Key: "lastMessageAt", Value: -1}}),
	)
	if err != nil {
		return nil, app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to fetch rooms: %v", err), "mongo")
	}
	defer cur.Close(ctx)

	var rooms []*entity.Room
	if err := cur.All(ctx, &rooms); err != nil {
		return nil, app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to decode rooms: %v", err), "mongo")
	}

	return rooms, nil
}

// AppendMessage inserts a message and advances the room's lastMessageAt in a
// single transaction. That update is the serialization point for concurrent
// appends to the same room, making the store the ordering authority.
func (r *ChatRepo) AppendMessage(ctx context.Context, roomID, senderID, text string) (*entity.Message, *app_error.AppError) {
	if text == "" {
		return nil, app_error.Validation("message text must not be empty", "text")
	}

	roomObjID, err := bson.ObjectIDFromHex(roomID)
	if err != nil {
		return nil, app_error.Validation(fmt.Sprintf("invalid room ID: %v", err), "room-id")
	}

	msg := &entity.Message{
		ID:        bson.NewObjectID(),
		RoomID:    roomObjID,
		SenderID:  senderID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}

	session, err := r.AppState.Mongo.StartSession()
	if err != nil {
		return nil, app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to start session: %v", err), "mongo")
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		if _, err := r.messages().InsertOne(ctx, msg); err != nil {
			return nil, err
		}

		result, err := r.rooms().UpdateOne(ctx,
			bson.M{"_id": roomObjID},
			bson.M{"$set": bson.M{"lastMessageAt": msg.CreatedAt}},
		)
		if err != nil {
			return nil, err
		}
		if result.MatchedCount == 0 {
			return nil, mongo.ErrNoDocuments
		}
		return nil, nil
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, app_error.NotFound("room not found", "room-id")
		}
		log.Error().Err(err).Str("roomID", roomID).Msg("chat: message append failed")
		return nil, app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to append message: %v", err), "mongo")
	}

	return msg, nil
}

// RecentMessages returns the trailing window of a room's log, oldest first.
func (r *ChatRepo) RecentMessages(ctx context.Context, roomID string, limit int) ([]*entity.Message, *app_error.AppError) {
	objID, err := bson.ObjectIDFromHex(roomID)
	if err != nil {
		return nil, app_error.Validation(fmt.Sprintf("invalid room ID: %v", err), "room-id")
	}

	cur, err := r.messages().Find(ctx, bson.M{"roomId": objID},
		options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}).SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to fetch messages: %v", err), "mongo")
	}
	defer cur.Close(ctx)

	var messages []*entity.Message
	if err := cur.All(ctx, &messages); err != nil {
		return nil, app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to decode messages: %v", err), "mongo")
	}

	// reverse so callers see append order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
