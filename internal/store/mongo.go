package store

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mlarcade/internal/model"
)

// MongoStore keeps the stats record as a single document in MongoDB.
type MongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore creates a Mongo-backed store.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{collection: db.Collection("stats")}
}

func (s *MongoStore) Load(ctx context.Context) (*model.GameStats, error) {
	var doc struct {
		ID    string          `bson:"_id"`
		Stats model.GameStats `bson:"stats"`
	}
	err := s.collection.FindOne(ctx, bson.M{"_id": statsKey}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return model.DefaultGameStats(), nil
	}
	if err != nil {
		// A document that cannot be decoded is treated like a missing one.
		log.Printf("Stored stats document is unreadable, falling back to defaults: %v", err)
		return model.DefaultGameStats(), nil
	}
	return &doc.Stats, nil
}

func (s *MongoStore) Save(ctx context.Context, stats *model.GameStats) error {
	_, err := s.collection.ReplaceOne(ctx,
		bson.M{"_id": statsKey},
		bson.M{"_id": statsKey, "stats": stats},
		options.Replace().SetUpsert(true),
	)
	return err
}
