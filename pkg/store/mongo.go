package store

import (
	"context"
	stderrors "errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/vlanimate/pkg/errors"
)

// Collection holds the compiled graph records.
const Collection = "graphs"

// Mongo stores records in a MongoDB collection.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongo connects to uri, verifies the connection and ensures the lookup
// index on (doc_hash, compiler, created_at).
func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongodb")
	}

	coll := client.Database(database).Collection(Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "doc_hash", Value: 1},
			{Key: "compiler", Value: 1},
			{Key: "created_at", Value: -1},
		},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &Mongo{client: client, coll: coll}, nil
}

func (m *Mongo) Put(ctx context.Context, r *Record) error {
	if err := errors.ValidateGraphID(r.ID); err != nil {
		return err
	}
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": r.ID}, r, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("store graph %s: %w", r.ID, err)
	}
	return nil
}

func (m *Mongo) Get(ctx context.Context, id string) (*Record, error) {
	return m.one(ctx, bson.M{"_id": id}, nil, "graph "+id)
}

func (m *Mongo) Lookup(ctx context.Context, docHash, compiler string) (*Record, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return m.one(ctx, bson.M{"doc_hash": docHash, "compiler": compiler}, opts, "graph for document "+docHash)
}

func (m *Mongo) one(ctx context.Context, filter bson.M, opts *options.FindOneOptions, what string) (*Record, error) {
	var r Record
	var err error
	if opts != nil {
		err = m.coll.FindOne(ctx, filter, opts).Decode(&r)
	} else {
		err = m.coll.FindOne(ctx, filter).Decode(&r)
	}
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.New(errors.ErrCodeNotFound, "%s not found", what)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", what, err)
	}
	return &r, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

var _ Store = (*Mongo)(nil)
