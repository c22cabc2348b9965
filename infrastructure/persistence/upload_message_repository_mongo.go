package persistence

import (
	"context"
	"fmt"
	"time"

	"youtube-auto-post/domain/model"
	"youtube-auto-post/infrastructure/logger"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// UploadMessageRepositoryMongo keeps the activity log in MongoDB. Message ids
// are unix nanoseconds, which keeps them ordered without a counter document.
type UploadMessageRepositoryMongo struct {
	collection *mongo.Collection
}

func NewUploadMessageRepositoryMongo(client *mongo.Client, database string) *UploadMessageRepositoryMongo {
	return &UploadMessageRepositoryMongo{collection: client.Database(database).Collection("upload_messages")}
}

func (r *UploadMessageRepositoryMongo) Post(ctx context.Context, msg *model.UploadMessage) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	msg.ID = msg.CreatedAt.UnixNano()
	if _, err := r.collection.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("failed to post upload message: %w", err)
	}
	return nil
}

func (r *UploadMessageRepositoryMongo) ListByUpload(ctx context.Context, uploadID int64) ([]*model.UploadMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.D{{Key: "upload_id", Value: uploadID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list upload messages: %w", err)
	}
	defer func(cursor *mongo.Cursor, ctx context.Context) {
		if err := cursor.Close(ctx); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing cursor")
		}
	}(cursor, ctx)

	var out []*model.UploadMessage
	for cursor.Next(ctx) {
		var m model.UploadMessage
		if err := cursor.Decode(&m); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while decoding")
			continue
		}
		out = append(out, &m)
	}
	return out, cursor.Err()
}
