package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names shared with the repositories.
const (
	ProjectsCollection = "projects"
	AdminsCollection   = "admins"
)

// NewMongo returns a lazy handle to a MongoDB database.
// Indexes are ensured on the first successful connection.
func NewMongo(uri, dbName string, opts Options) *Handle[*mongo.Database] {
	opts = opts.withDefaults()
	return NewHandle("mongodb", opts.ConnectTimeout, Driver[*mongo.Database]{
		Connect: func(ctx context.Context) (*mongo.Database, error) {
			clientOpts := options.Client().
				ApplyURI(uri).
				SetConnectTimeout(opts.ConnectTimeout).
				SetServerSelectionTimeout(opts.ConnectTimeout).
				SetSocketTimeout(opts.SocketTimeout).
				SetMaxConnIdleTime(opts.SocketTimeout)

			client, err := mongo.Connect(ctx, clientOpts)
			if err != nil {
				return nil, fmt.Errorf("connect mongodb: %w", err)
			}
			if err := client.Ping(ctx, readpref.Primary()); err != nil {
				_ = client.Disconnect(context.WithoutCancel(ctx))
				return nil, fmt.Errorf("ping mongodb: %w", err)
			}

			db := client.Database(dbName)
			if err := ensureIndexes(ctx, db); err != nil {
				_ = client.Disconnect(context.WithoutCancel(ctx))
				return nil, err
			}
			return db, nil
		},
		Ping: func(ctx context.Context, db *mongo.Database) error {
			return db.Client().Ping(ctx, readpref.Primary())
		},
		Close: func(ctx context.Context, db *mongo.Database) error {
			return db.Client().Disconnect(ctx)
		},
	})
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(ProjectsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create projects index: %w", err)
	}

	_, err = db.Collection(AdminsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create admins index: %w", err)
	}
	return nil
}
