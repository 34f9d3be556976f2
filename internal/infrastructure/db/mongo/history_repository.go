package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gccn-chatbot/session-service/internal/core/domain"
)

const historyCollection = "chat_histories"

// HistoryRepository implements ports.HistoryRepository using MongoDB. Each
// user owns one document; appends are a single upserting $push, which the
// server applies atomically per document.
type HistoryRepository struct {
	coll *mongo.Collection
}

func NewHistoryRepository(db *mongo.Database) *HistoryRepository {
	return &HistoryRepository{coll: db.Collection(historyCollection)}
}

func (r *HistoryRepository) Get(ctx context.Context, userID string) ([]domain.Turn, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rec domain.ConversationRecord
	err := r.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []domain.Turn{}, nil
		}
		return nil, fmt.Errorf("find history: %w: %w", domain.ErrStorageUnavailable, err)
	}
	if rec.Messages == nil {
		rec.Messages = []domain.Turn{}
	}
	return rec.Messages, nil
}

// Append pushes turns in call order, creating the document when absent.
func (r *HistoryRepository) Append(ctx context.Context, userID string, turns ...domain.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"user_id": userID}
	update := bson.M{
		"$push": bson.M{"messages": bson.M{"$each": turns}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	if _, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("append history: %w: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// Clear removes the document. Deleting nothing is not an error.
func (r *HistoryRepository) Clear(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("clear history: %w: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// EnsureIndexes makes user_id unique so concurrent first appends cannot
// create two records for one user.
func (r *HistoryRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
