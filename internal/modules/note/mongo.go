package note

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "notes"

type mongoRepo struct{ coll *mongo.Collection }

// NewMongoRepository stores notes in the "notes" collection of db.
func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepo{coll: db.Collection(collectionName)}
}

// EnsureMongoIndexes creates the created_at index used by List.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(collectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	return err
}

func (r *mongoRepo) Create(ctx context.Context, n *Note) error {
	_, err := r.coll.InsertOne(ctx, n)
	return err
}

func (r *mongoRepo) List(ctx context.Context) ([]*Note, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	notes := []*Note{}
	if err := cur.All(ctx, &notes); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}
	return notes, nil
}

func (r *mongoRepo) GetByID(ctx context.Context, id string) (*Note, error) {
	n := &Note{}
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (r *mongoRepo) Update(ctx context.Context, id string, req UpdateNoteRequest) (*Note, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Content != nil {
		set["content"] = *req.Content
	}
	for k, v := range req.Attributes {
		set["attributes."+k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	n := &Note{}
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (r *mongoRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
