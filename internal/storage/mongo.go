package storage

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo keeps one document per key: {_id: key, value: "..."}.
type Mongo struct{ coll *mongo.Collection }

type kvDocument struct {
	Key   string `bson:"_id"`
	Value string `bson:"value"`
}

func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, errors.Wrap(err, "pinging mongodb")
	}
	return client, nil
}

func NewMongo(coll *mongo.Collection) *Mongo { return &Mongo{coll: coll} }

func (m *Mongo) Get(ctx context.Context, key string) (string, error) {
	var doc kvDocument
	err := m.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", errors.Wrapf(err, "find %s", key)
	}
	return doc.Value, nil
}

func (m *Mongo) Set(ctx context.Context, key, value string) error {
	_, err := m.coll.UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$set": bson.M{"value": value}},
		options.Update().SetUpsert(true))
	if err != nil {
		return errors.Wrapf(err, "upsert %s", key)
	}
	return nil
}

func (m *Mongo) Remove(ctx context.Context, key string) error {
	if _, err := m.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return errors.Wrapf(err, "delete %s", key)
	}
	return nil
}
