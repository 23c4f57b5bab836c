package database

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCollection = "card_state"

type stateDocument struct {
	Key   string `bson:"_id"`
	Value string `bson:"value"`
}

// MongoKV stores each key as one document in the card_state collection.
type MongoKV struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func OpenMongo(ctx context.Context, uri, dbName string) (*MongoKV, error) {
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	if dbName == "" {
		dbName = "coupon_card"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("unable to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("unable to ping mongo: %w", err)
	}

	return &MongoKV{
		client:     client,
		collection: client.Database(dbName).Collection(mongoCollection),
	}, nil
}

func (m *MongoKV) Get(ctx context.Context, key string) (string, error) {
	var doc stateDocument
	err := m.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get %q: %w", key, err)
	}
	return doc.Value, nil
}

func (m *MongoKV) Set(ctx context.Context, key, value string) error {
	_, err := m.collection.UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$set": bson.M{"value": value}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to set %q: %w", key, err)
	}
	return nil
}

func (m *MongoKV) Delete(ctx context.Context, key string) error {
	if _, err := m.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

func (m *MongoKV) Close() error {
	return m.client.Disconnect(context.Background())
}
