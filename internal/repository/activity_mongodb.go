package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"jersey-stock-api/internal/model"
	"jersey-stock-api/pkg/uid"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// activityDocument is the MongoDB shape of an activity entry. Details are kept
// as a native document so they stay queryable.
type activityDocument struct {
	ID        string      `bson:"_id"`
	Actor     *string     `bson:"actor"`
	Action    string      `bson:"action"`
	Details   interface{} `bson:"details"`
	CreatedAt time.Time   `bson:"created_at"`
}

// MongoActivityRepository implements ActivityRepository for MongoDB
type MongoActivityRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoActivityRepository connects and pings before returning.
func NewMongoActivityRepository(uri, dbName, collectionName string) (*MongoActivityRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	collection := client.Database(dbName).Collection(collectionName)

	_, err = collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &MongoActivityRepository{
		client:     client,
		collection: collection,
	}, nil
}

// InsertActivity appends an entry.
func (r *MongoActivityRepository) InsertActivity(ctx context.Context, entry *model.ActivityLogEntry) error {
	if entry.ID == "" {
		entry.ID = uid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.CreatedAt = entry.CreatedAt.UTC()

	var details interface{}
	if len(entry.Details) > 0 {
		if err := json.Unmarshal(entry.Details, &details); err != nil {
			details = string(entry.Details)
		}
	}

	doc := activityDocument{
		ID:        entry.ID,
		Actor:     entry.Actor,
		Action:    entry.Action,
		Details:   details,
		CreatedAt: entry.CreatedAt,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

// ListActivity returns the newest entries first.
func (r *MongoActivityRepository) ListActivity(ctx context.Context, limit int) ([]model.ActivityLogEntry, error) {
	findOptions := options.Find()
	findOptions.SetSort(bson.D{{Key: "created_at", Value: -1}})
	findOptions.SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []model.ActivityLogEntry{}
	for cursor.Next(ctx) {
		var doc struct {
			ID        string        `bson:"_id"`
			Actor     *string       `bson:"actor"`
			Action    string        `bson:"action"`
			Details   bson.RawValue `bson:"details"`
			CreatedAt time.Time     `bson:"created_at"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode activity: %w", err)
		}
		entries = append(entries, model.ActivityLogEntry{
			ID:        doc.ID,
			Actor:     doc.Actor,
			Action:    doc.Action,
			Details:   detailsJSON(doc.Details),
			CreatedAt: doc.CreatedAt.UTC(),
		})
	}
	return entries, cursor.Err()
}

// CountActivitySince counts entries created at or after since.
func (r *MongoActivityRepository) CountActivitySince(ctx context.Context, since time.Time) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": since.UTC()}})
	if err != nil {
		return 0, fmt.Errorf("failed to count activity: %w", err)
	}
	return count, nil
}

// Close closes the MongoDB connection
func (r *MongoActivityRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

// detailsJSON renders a stored details value back to relaxed JSON.
func detailsJSON(v bson.RawValue) json.RawMessage {
	if v.Type == 0 {
		return json.RawMessage("null")
	}
	var out interface{}
	if err := v.Unmarshal(&out); err != nil {
		return json.RawMessage("null")
	}
	raw, err := bson.MarshalExtJSON(bson.M{"v": out}, false, false)
	if err != nil {
		return json.RawMessage("null")
	}
	var wrapped struct {
		V json.RawMessage `json:"v"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return json.RawMessage("null")
	}
	return wrapped.V
}

var _ ActivityRepository = (*MongoActivityRepository)(nil)
