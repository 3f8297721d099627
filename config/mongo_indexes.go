package config

import (
	"context"
	"errors"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureMongoIndexes() error {
	if MongoClient == nil {
		return errors.New("MongoClient is nil; call InitMongo() first")
	}

	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "balasin"
	}
	db := MongoClient.Database(dbName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// wa_sessions: one document per transport instance.
	sessions := db.Collection("wa_sessions")
	_, err := sessions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "instance_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_instance_id").
				SetUnique(true),
		},
		// Connected-session lookup on every webhook delivery.
		{
			Keys:    bson.D{{Key: "instance_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("by_instance_status"),
		},
		{
			Keys:    bson.D{{Key: "merchant_id", Value: 1}, {Key: "updated_at", Value: -1}},
			Options: options.Index().SetName("by_merchant_updated"),
		},
	})
	return err
}
