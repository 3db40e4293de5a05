package feedbackRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"repairhub/models"
)

type MongoFeedbackRepo struct {
	coll   *mongo.Collection
	logger *zap.Logger
}

func NewMongoFeedbackRepo(db *mongo.Database, logger *zap.Logger) *MongoFeedbackRepo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MongoFeedbackRepo{coll: db.Collection(CollectionName), logger: logger}
}

func (r *MongoFeedbackRepo) QueryByProvider(ctx context.Context, providerID string, limit int) ([]models.ProviderFeedbackRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := r.coll.Find(ctx, bson.M{"providerId": providerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback for provider %s: %w", providerID, err)
	}
	defer cursor.Close(ctx)

	return decodeFeedback(ctx, cursor, r.logger)
}

// decodeFeedback skips, and logs, documents the external intake wrote in a
// shape that does not decode.
func decodeFeedback(ctx context.Context, cursor *mongo.Cursor, logger *zap.Logger) ([]models.ProviderFeedbackRecord, error) {
	var records []models.ProviderFeedbackRecord
	for cursor.Next(ctx) {
		var rec models.ProviderFeedbackRecord
		if err := cursor.Decode(&rec); err != nil {
			id, _ := cursor.Current.Lookup("id").StringValueOK()
			logger.Warn("skipping undecodable feedback", zap.String("feedbackId", id), zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to read feedback: %w", err)
	}
	return records, nil
}

func (r *MongoFeedbackRepo) Create(ctx context.Context, rec models.ProviderFeedbackRecord) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if _, err := r.coll.InsertOne(ctx, rec); err != nil {
		return "", fmt.Errorf("failed to insert feedback: %w", err)
	}
	return rec.ID, nil
}

// EnsureIndexes creates the provider/timestamp index and enforces one feedback per request.
func (r *MongoFeedbackRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "serviceId", Value: 1}}, Options: options.Index().SetUnique(true).SetName("one_per_request")},
		{Keys: bson.D{{Key: "providerId", Value: 1}, {Key: "timestamp", Value: -1}}, Options: options.Index().SetName("provider_timestamp_idx")},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create feedback indexes: %w", err)
	}
	return nil
}
