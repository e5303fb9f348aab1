package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mlarcade/internal/model"
)

// CatalogRepo stores and retrieves the question catalog. The embedded
// catalog covers standalone play; a Mongo-backed catalog lets operators
// edit questions without rebuilding the binary.
type CatalogRepo interface {
	Insert(ctx context.Context, question *model.Question) error
	GetByID(ctx context.Context, id string) (*model.Question, error)
	GetByCategory(ctx context.Context, category model.Category) ([]model.Question, error)
	GetByLevelRange(ctx context.Context, minLevel, maxLevel int) ([]model.Question, error)
	GetAll(ctx context.Context) ([]model.Question, error)
	ReplaceAll(ctx context.Context, questions []model.Question) error
}

type catalogRepo struct {
	collection *mongo.Collection
}

func NewCatalogRepo(db *mongo.Database) CatalogRepo {
	return &catalogRepo{collection: db.Collection("questions")}
}

func (r *catalogRepo) Insert(ctx context.Context, question *model.Question) error {
	if question.ID == "" {
		return fmt.Errorf("question has no id")
	}
	_, err := r.collection.InsertOne(ctx, question)
	return err
}

func (r *catalogRepo) GetByID(ctx context.Context, id string) (*model.Question, error) {
	var question model.Question
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&question)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &question, nil
}

func (r *catalogRepo) GetByCategory(ctx context.Context, category model.Category) ([]model.Question, error) {
	return r.find(ctx, bson.M{"category": category})
}

func (r *catalogRepo) GetByLevelRange(ctx context.Context, minLevel, maxLevel int) ([]model.Question, error) {
	return r.find(ctx, bson.M{"level": bson.M{"$gte": minLevel, "$lte": maxLevel}})
}

func (r *catalogRepo) GetAll(ctx context.Context) ([]model.Question, error) {
	return r.find(ctx, bson.M{})
}

func (r *catalogRepo) find(ctx context.Context, filter bson.M) ([]model.Question, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "level", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questions []model.Question
	if err = cursor.All(ctx, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// ReplaceAll swaps the stored catalog for the given one. Used by the seed
// command so reseeding never leaves stale questions behind.
func (r *catalogRepo) ReplaceAll(ctx context.Context, questions []model.Question) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clearing catalog: %w", err)
	}
	docs := make([]interface{}, len(questions))
	for i := range questions {
		docs[i] = questions[i]
	}
	if len(docs) == 0 {
		return nil
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}
