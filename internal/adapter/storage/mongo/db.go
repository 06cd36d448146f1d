package mongo

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const connectTimeout = 10 * time.Second

// DB wraps a connected mongo database handle.
type DB struct {
	client   *mongo.Client
	database *mongo.Database
}

func NewDB(ctx context.Context, uri, database string) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))

	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Info().Str("database", database).Msg("connected to mongodb")

	return &DB{
		client:   client,
		database: client.Database(database),
	}, nil
}

func (db *DB) Collection(name string) *mongo.Collection {
	return db.database.Collection(name)
}

func (db *DB) Ping(ctx context.Context) error {
	return db.client.Ping(ctx, readpref.Primary())
}

func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}
