package data

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MessagesStore provides message database operations.
type MessagesStore struct {
	coll *mongo.Collection
}

// NewMessagesStore returns a MessagesStore using the given collection.
func NewMessagesStore(coll *mongo.Collection) *MessagesStore {
	return &MessagesStore{coll: coll}
}

// pairFilter matches messages between two users in either direction. This is
// the derived conversation: no conversation document exists, the pair filter
// defines it.
func pairFilter(a, b bson.ObjectID) bson.M {
	return bson.M{
		"$or": bson.A{
			bson.M{"sender_id": a, "receiver_id": b},
			bson.M{"sender_id": b, "receiver_id": a},
		},
	}
}

// Insert persists a message document with a server-assigned timestamp and
// returns the saved record with its generated ID.
func (m *MessagesStore) Insert(ctx context.Context, msg *Message) (*Message, error) {
	msg.CreatedAt = time.Now()
	if msg.FileType == "" {
		msg.FileType = FileTypeText
	}

	result, err := m.coll.InsertOne(ctx, msg)
	if err != nil {
		return nil, err
	}

	msg.ID = result.InsertedID.(bson.ObjectID)
	return msg, nil
}

// HistoryBetween returns all messages between two users ordered oldest
// first, the order the conversation view renders them in.
func (m *MessagesStore) HistoryBetween(ctx context.Context, a, b bson.ObjectID) ([]*Message, error) {
	opts := options.Find().SetSort(bson.M{"created_at": 1})

	cursor, err := m.coll.Find(ctx, pairFilter(a, b), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []*Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// LastBetween returns the most recent message between two users, or nil
// if the pair has no history.
func (m *MessagesStore) LastBetween(ctx context.Context, a, b bson.ObjectID) (*Message, error) {
	opts := options.FindOne().SetSort(bson.M{"created_at": -1})

	var msg Message
	err := m.coll.FindOne(ctx, pairFilter(a, b), opts).Decode(&msg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

// CountUnread counts unread messages sent from one user to another.
func (m *MessagesStore) CountUnread(ctx context.Context, from, to bson.ObjectID) (int64, error) {
	return m.coll.CountDocuments(ctx, bson.M{
		"sender_id":   from,
		"receiver_id": to,
		"read":        false,
	})
}

// MarkRead flips every unread message from one user to another to read in a
// single bulk update. Running it again is a no-op, which is what makes the
// mark-read endpoint idempotent.
func (m *MessagesStore) MarkRead(ctx context.Context, from, to bson.ObjectID) error {
	_, err := m.coll.UpdateMany(ctx,
		bson.M{
			"sender_id":   from,
			"receiver_id": to,
			"read":        false,
		},
		bson.M{"$set": bson.M{"read": true}},
	)
	return err
}

// GetByID returns a single message by its ObjectID.
func (m *MessagesStore) GetByID(ctx context.Context, id bson.ObjectID) (*Message, error) {
	var msg Message
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&msg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &msg, nil
}

// DeleteByID hard-deletes a message. There is no tombstone; a deleted
// message simply disappears from history.
func (m *MessagesStore) DeleteByID(ctx context.Context, id bson.ObjectID) error {
	result, err := m.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// Search finds messages between two users whose text contains the query,
// case-insensitively, newest first, capped at limit results. The query is
// quoted so user input cannot inject regex syntax.
func (m *MessagesStore) Search(ctx context.Context, a, b bson.ObjectID, query string, limit int64) ([]*Message, error) {
	filter := pairFilter(a, b)
	filter["text"] = bson.M{
		"$regex":   regexp.QuoteMeta(query),
		"$options": "i",
	}

	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetLimit(limit)

	cursor, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []*Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
