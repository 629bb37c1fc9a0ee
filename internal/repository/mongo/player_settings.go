package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"playercore/internal/domain/ports"
)

const playerSettingsID = "player"

type playerSettingsDoc struct {
	ID            string `bson:"_id"`
	Pause         bool   `bson:"pause"`
	LoopFile      int    `bson:"loopFile"`
	KeepOpen      string `bson:"keepOpen"`
	KeepOpenPause bool   `bson:"keepOpenPause"`
	UpdatedAt     int64  `bson:"updatedAt"`
}

type PlayerSettingsRepository struct {
	collection *mongo.Collection
}

func NewPlayerSettingsRepository(client *mongo.Client, dbName string) *PlayerSettingsRepository {
	return &PlayerSettingsRepository{collection: client.Database(dbName).Collection("settings")}
}

func (r *PlayerSettingsRepository) Get(ctx context.Context) (ports.PlayerSettings, bool, error) {
	var doc playerSettingsDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": playerSettingsID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ports.PlayerSettings{}, false, nil
		}
		return ports.PlayerSettings{}, false, err
	}
	return ports.PlayerSettings{
		Pause:         doc.Pause,
		LoopFile:      doc.LoopFile,
		KeepOpen:      doc.KeepOpen,
		KeepOpenPause: doc.KeepOpenPause,
	}, true, nil
}

func (r *PlayerSettingsRepository) Set(ctx context.Context, s ports.PlayerSettings) error {
	update := bson.M{
		"$set": bson.M{
			"pause":         s.Pause,
			"loopFile":      s.LoopFile,
			"keepOpen":      s.KeepOpen,
			"keepOpenPause": s.KeepOpenPause,
			"updatedAt":     time.Now().Unix(),
		},
	}
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": playerSettingsID},
		update,
		options.Update().SetUpsert(true),
	)
	return err
}
