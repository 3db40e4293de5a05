package requestRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"repairhub/models"
)

// MongoRequestRepo implements RequestStore on a MongoDB collection.
type MongoRequestRepo struct {
	coll   *mongo.Collection
	logger *zap.Logger
}

// NewMongoRequestRepo creates a RequestStore backed by db's "bookings" collection.
func NewMongoRequestRepo(db *mongo.Database, logger *zap.Logger) *MongoRequestRepo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MongoRequestRepo{coll: db.Collection(CollectionName), logger: logger}
}

func (r *MongoRequestRepo) Get(ctx context.Context, id string) (*models.ServiceRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var req models.ServiceRequest
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch request %s: %w", id, err)
	}
	return &req, nil
}

func (r *MongoRequestRepo) QueryByStatus(ctx context.Context, statuses []models.RequestStatus) ([]models.ServiceRequest, error) {
	filter := bson.M{"status": bson.M{"$in": statusStrings(statuses)}}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *MongoRequestRepo) QueryCompletedByProvider(ctx context.Context, providerID string) ([]models.ServiceRequest, error) {
	filter := bson.M{
		"preferredProvider": providerID,
		"status":            string(models.StatusCompleted),
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "completedAt", Value: -1}}))
}

func (r *MongoRequestRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.ServiceRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeRequests(ctx, cursor, r.logger)
}

// decodeRequests decodes one document at a time. A document that does not
// decode is logged and skipped so one bad record cannot hide the rest.
func decodeRequests(ctx context.Context, cursor *mongo.Cursor, logger *zap.Logger) ([]models.ServiceRequest, error) {
	var out []models.ServiceRequest
	for cursor.Next(ctx) {
		var req models.ServiceRequest
		if err := cursor.Decode(&req); err != nil {
			id, _ := cursor.Current.Lookup("id").StringValueOK()
			logger.Warn("skipping undecodable request", zap.String("requestId", id), zap.Error(err))
			continue
		}
		out = append(out, req)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to read requests: %w", err)
	}
	return out, nil
}

// ConditionalUpdate uses a single FindOneAndUpdate whose filter is the precondition,
// so the check and the write are one atomic document operation.
func (r *MongoRequestRepo) ConditionalUpdate(ctx context.Context, id string, expected models.RequestSnapshot, mutation models.RequestMutation) (*models.ServiceRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": mutationSet(mutation)}

	var updated models.ServiceRequest
	err := r.coll.FindOneAndUpdate(ctx, conditionalFilter(id, expected), update, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("conditional update of request %s failed: %w", id, err)
	}

	// Nothing matched: either the id is unknown or someone else moved the record first.
	n, err := r.coll.CountDocuments(ctx, bson.M{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to check request %s after missed update: %w", id, err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrPreconditionFailed
}

func (r *MongoRequestRepo) Create(ctx context.Context, req models.ServiceRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if _, err := r.coll.InsertOne(ctx, req); err != nil {
		return "", fmt.Errorf("failed to insert request: %w", err)
	}
	return req.ID, nil
}

func conditionalFilter(id string, expected models.RequestSnapshot) bson.M {
	filter := bson.M{
		"id":     id,
		"status": string(expected.Status),
	}
	if expected.ProviderID == "" {
		// matches both a missing and an empty claimant field
		filter["preferredProvider"] = bson.M{"$in": bson.A{nil, ""}}
	} else {
		filter["preferredProvider"] = expected.ProviderID
	}
	return filter
}

func mutationSet(m models.RequestMutation) bson.M {
	set := bson.M{"status": string(m.Status)}
	if m.ProviderID != nil {
		set["preferredProvider"] = *m.ProviderID
	}
	if m.ProviderName != nil {
		set["providerName"] = *m.ProviderName
	}
	if m.AcceptedAt != nil {
		set["acceptedAt"] = *m.AcceptedAt
	}
	if m.StartedAt != nil {
		set["startedAt"] = *m.StartedAt
	}
	if m.CompletedAt != nil {
		set["completedAt"] = *m.CompletedAt
	}
	if m.Settlement != nil {
		set["paymentAmount"] = m.Settlement.Amount
		set["paymentMethod"] = m.Settlement.Method
		set["paymentTimestamp"] = m.Settlement.Timestamp
	}
	return set
}
