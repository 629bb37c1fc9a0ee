package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"playercore/internal/domain"
)

type resumePositionDoc struct {
	ID        string  `bson:"_id"`
	Title     string  `bson:"title,omitempty"`
	Position  float64 `bson:"position"`
	Duration  float64 `bson:"duration"`
	UpdatedAt int64   `bson:"updatedAt"`
}

// ResumeRepository persists playback positions keyed by media ID.
type ResumeRepository struct {
	collection *mongo.Collection
}

func NewResumeRepository(client *mongo.Client, dbName string) *ResumeRepository {
	return &ResumeRepository{collection: client.Database(dbName).Collection("resume_positions")}
}

func (r *ResumeRepository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "updatedAt", Value: -1}}},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, models)
	return err
}

func (r *ResumeRepository) Upsert(ctx context.Context, pos domain.ResumePosition) error {
	update := bson.M{
		"$set": bson.M{
			"title":     pos.Title,
			"position":  pos.Position,
			"duration":  pos.Duration,
			"updatedAt": time.Now().Unix(),
		},
	}
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": string(pos.MediaID)},
		update,
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *ResumeRepository) Get(ctx context.Context, id domain.MediaID) (domain.ResumePosition, error) {
	var doc resumePositionDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ResumePosition{}, domain.ErrNotFound
		}
		return domain.ResumePosition{}, err
	}
	return resumeDocToPosition(doc), nil
}

func (r *ResumeRepository) List(ctx context.Context, limit int) ([]domain.ResumePosition, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []domain.ResumePosition
	for cursor.Next(ctx) {
		var doc resumePositionDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, resumeDocToPosition(doc))
	}
	return out, cursor.Err()
}

func (r *ResumeRepository) Delete(ctx context.Context, id domain.MediaID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func resumeDocToPosition(doc resumePositionDoc) domain.ResumePosition {
	return domain.ResumePosition{
		MediaID:   domain.MediaID(doc.ID),
		Title:     doc.Title,
		Position:  doc.Position,
		Duration:  doc.Duration,
		UpdatedAt: time.Unix(doc.UpdatedAt, 0).UTC(),
	}
}
